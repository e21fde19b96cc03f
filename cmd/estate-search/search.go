// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/estate-search/internal/fetch"
	"github.com/pdiddy/estate-search/internal/filter"
	"github.com/pdiddy/estate-search/internal/query"
	"github.com/pdiddy/estate-search/internal/session"
	"github.com/pdiddy/estate-search/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search listings with sidebar-style filters",
	Long: `Search stages the given filters the way the listing sidebar does, applies
them in one step and fetches the matching page. Start from a shared link
with --link or a saved search with --load; flags then refine it.

Prices accept "50 L", "1.5 Cr" or plain digits; bedrooms accept "2 BHK",
"1 RK" or "5+ BHK".`,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.String("link", "", "start from a shareable link, path or query string")
	f.String("load", "", "start from a saved search file")
	f.String("save", "", "write the resulting search to this file")
	f.String("name", "", "name stored with --save")

	addFilterFlags(searchCmd)
	f.Bool("next", false, "fetch the page after the first result page")
	f.Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

// addFilterFlags registers the intent flags shared by search and link.
func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("location", "", "location slug or name (e.g. sector-77-noida)")
	f.String("purpose", "", "buy, rent or pg")
	f.String("type", "", "property type (apartment, villa, plot)")
	f.String("bhk", "", `bedrooms ("2 BHK", "1 RK", "5+ BHK")`)
	f.String("min-price", "", `minimum budget ("50 L", "1 Cr", "2500000")`)
	f.String("max-price", "", "maximum budget")
	f.String("quick-price", "", "quick budget pick, sets the maximum ("+strings.Join(filter.QuickPrices, ", ")+")")
	f.String("furnishing", "", "furnished, semi-furnished or unfurnished")
	f.String("posted-by", "", "owner, dealer or builder")
	f.String("availability", "", "immediately, within-15-days, within-30-days, after-30-days")
	f.StringSlice("amenity", nil, "required amenity (repeatable)")
	f.String("sort", "", "relevance, price-asc, price-desc, newest, area-asc, area-desc")
	f.Int("page", 0, "page to fetch")
}

// filterFlags are the flags staged through the filter coordinator.
var filterFlags = []string{
	"purpose", "type", "bhk", "min-price", "max-price", "quick-price",
	"furnishing", "posted-by", "availability", "amenity",
}

func runSearch(cmd *cobra.Command, args []string) error {
	base, err := startingIntent(cmd)
	if err != nil {
		return err
	}

	intent, invalid := stageIntent(cmd, base)
	for _, v := range invalid {
		fmt.Fprintf(os.Stderr, "Warning: %v (ignored)\n", v.Error())
	}

	cfg := loadConfig()
	client := newListingClient(cfg)
	s := session.New(client, client, "", query.Serialize(intent), session.WithLogger(logger))
	defer s.Close()
	s.Wait()

	if next, _ := cmd.Flags().GetBool("next"); next {
		if !s.Next() {
			fmt.Fprintln(os.Stderr, "Already on the last page.")
		}
		s.Wait()
	}

	st := s.State()
	if st.Failed() {
		return fmt.Errorf("fetching listings: %w", st.Err)
	}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		name, _ := cmd.Flags().GetString("name")
		if err := query.WriteSavedSearch(path, name, s.Intent()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved search to %s\n", path)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return writeResultsJSON(os.Stdout, s)
	}
	writeResults(os.Stdout, s.Title(), st, s.PageWindow(5), query.Link("/properties", s.Intent()), client.PageSize())
	return nil
}

// startingIntent decodes --load or --link. Without either it is the
// empty intent.
func startingIntent(cmd *cobra.Command) (types.SearchIntent, error) {
	if path, _ := cmd.Flags().GetString("load"); path != "" {
		saved, err := query.ReadSavedSearch(path)
		if err != nil {
			return types.SearchIntent{}, err
		}
		return saved.ToIntent(), nil
	}
	if link, _ := cmd.Flags().GetString("link"); link != "" {
		return query.ParseString(link), nil
	}
	return types.SearchIntent{}.Normalize(), nil
}

// stageIntent layers the command-line flags over base. Location and sort
// are direct intent changes; purpose and the sidebar filters are staged on
// a coordinator and applied together. An explicit --page is set last.
func stageIntent(cmd *cobra.Command, base types.SearchIntent) (types.SearchIntent, []filter.ValidationError) {
	flags := cmd.Flags()
	m := query.NewManager(base, query.WithLogger(logger.Named("query")))

	m.Update(func(i *types.SearchIntent) {
		if flags.Changed("location") {
			v, _ := flags.GetString("location")
			i.Location = v
		}
		if flags.Changed("sort") {
			v, _ := flags.GetString("sort")
			i.SortBy = types.ParseSortOrder(v)
		}
	})

	var invalid []filter.ValidationError
	if anyChanged(cmd, filterFlags) {
		c := filter.NewCoordinator(m, logger.Named("filter"))
		stageFilters(cmd, c)
		invalid = c.Apply()
	}

	if flags.Changed("page") {
		page, _ := flags.GetInt("page")
		m.SetPage(page)
	}
	return m.Intent(), invalid
}

// stageFilters selects each flag's value on c. Single-select groups toggle
// only when the value differs, so repeating a value already in the link
// keeps it.
func stageFilters(cmd *cobra.Command, c *filter.Coordinator) {
	flags := cmd.Flags()
	sel := c.Selection()

	if flags.Changed("purpose") {
		v, _ := flags.GetString("purpose")
		c.SetPurpose(types.ParsePurpose(v))
	}
	if flags.Changed("type") {
		v, _ := flags.GetString("type")
		if !strings.EqualFold(v, sel.PropertyType) {
			c.TogglePropertyType(v)
		}
	}
	if flags.Changed("bhk") {
		v, _ := flags.GetString("bhk")
		if v != sel.BHK {
			c.ToggleBHK(v)
		}
	}
	if flags.Changed("min-price") {
		v, _ := flags.GetString("min-price")
		c.SetMinPrice(v)
	}
	if flags.Changed("max-price") {
		v, _ := flags.GetString("max-price")
		c.SetMaxPrice(v)
	}
	if flags.Changed("quick-price") {
		v, _ := flags.GetString("quick-price")
		c.QuickPrice(v)
	}
	if flags.Changed("furnishing") {
		v, _ := flags.GetString("furnishing")
		if f := types.ParseFurnishing(v); f != sel.Furnishing {
			c.ToggleFurnishing(f)
		}
	}
	if flags.Changed("posted-by") {
		v, _ := flags.GetString("posted-by")
		if p := types.ParsePostedBy(v); p != sel.PostedBy {
			c.TogglePostedBy(p)
		}
	}
	if flags.Changed("availability") {
		v, _ := flags.GetString("availability")
		if a := types.ParseAvailability(v); a != sel.Availability {
			c.ToggleAvailability(a)
		}
	}
	if flags.Changed("amenity") {
		tags, _ := flags.GetStringSlice("amenity")
		for _, tag := range tags {
			if !containsFold(c.Selection().Amenities, tag) {
				c.ToggleAmenity(tag)
			}
		}
	}
}

func anyChanged(cmd *cobra.Command, names []string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func writeResults(w io.Writer, title string, st types.FetchState, window []int, link string, pageSize int) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w)

	if st.Page == nil || st.Empty() {
		fmt.Fprintln(w, "No properties match these filters.")
		fmt.Fprintf(w, "\nLink: %s\n", link)
		return
	}

	fmt.Fprintf(w, "%-4s  %-12s  %-24s  %-10s  %-28s  %-14s  %s\n",
		"#", "ID", "Title", "Price", "Location", "Area", "Verified")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	offset := (st.Page.CurrentPage - 1) * pageSize
	for i, p := range st.Page.Items {
		verified := ""
		if p.Verified() {
			verified = "yes"
		}
		fmt.Fprintf(w, "%-4d  %-12s  %-24s  %-10s  %-28s  %-14s  %s\n",
			offset+i+1, truncate(p.ID, 12), truncate(p.Title(), 24), filter.FormatPrice(p.ExpectedPrice),
			truncate(p.LocationLabel(), 28), p.Area(), verified)
	}

	fmt.Fprintf(w, "\nPage %d of %d (%d results)  %s\n",
		st.Page.CurrentPage, st.Page.TotalPages, st.Page.TotalCount, formatWindow(window, st.Page.CurrentPage))
	fmt.Fprintf(w, "Link: %s\n", link)
}

// formatWindow renders page buttons, bracketing the current page.
func formatWindow(window []int, current int) string {
	parts := make([]string, 0, len(window))
	for _, n := range window {
		switch {
		case n == fetch.Ellipsis:
			parts = append(parts, "...")
		case n == current:
			parts = append(parts, "["+strconv.Itoa(n)+"]")
		default:
			parts = append(parts, strconv.Itoa(n))
		}
	}
	return strings.Join(parts, " ")
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

type resultsJSON struct {
	Title       string                  `json:"title"`
	Link        string                  `json:"link"`
	Query       url.Values              `json:"query"`
	Items       []types.PropertySummary `json:"items"`
	TotalCount  int                     `json:"totalCount"`
	TotalPages  int                     `json:"totalPages"`
	CurrentPage int                     `json:"currentPage"`
}

func writeResultsJSON(w io.Writer, s *session.Session) error {
	st := s.State()
	out := resultsJSON{
		Title: s.Title(),
		Link:  query.Link("/properties", s.Intent()),
		Query: query.Serialize(s.Intent()),
		Items: []types.PropertySummary{},
	}
	if st.Page != nil {
		out.Items = st.Page.Items
		out.TotalCount = st.Page.TotalCount
		out.TotalPages = st.Page.TotalPages
		out.CurrentPage = st.Page.CurrentPage
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
