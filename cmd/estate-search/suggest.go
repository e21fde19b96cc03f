// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/estate-search/internal/cache"
	"github.com/pdiddy/estate-search/internal/fetch"
	"github.com/pdiddy/estate-search/internal/filter"
	"github.com/pdiddy/estate-search/pkg/types"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <term...>",
	Short: "Type a term into the search box and print suggestions",
	Long: `Suggest types the term one character at a time through the type-ahead
debouncer, pausing --keystroke between characters, and prints the
suggestions of the single lookup that survives. Short terms never reach
the backend.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().Duration("keystroke", 80*time.Millisecond, "pause between simulated keystrokes")
	suggestCmd.Flags().String("cache", "", "suggestion cache backend: none, memory or redis (default from config)")

	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	term := strings.Join(args, " ")
	keystroke, _ := cmd.Flags().GetDuration("keystroke")

	cfg := loadConfig()
	if backend, _ := cmd.Flags().GetString("cache"); backend != "" {
		cfg.Cache.Backend = types.CacheBackend(strings.ToLower(backend))
	}

	ctx := context.Background()
	src, closeCache, err := cache.New(ctx, cfg.Cache, newListingClient(cfg), logger.Named("cache"))
	if err != nil {
		return err
	}
	defer closeCache()

	s := fetch.NewSuggester(src, cfg.Typeahead, fetch.RealClock(), logger.Named("suggest"))
	defer s.Close()

	typed := []rune(term)
	for i := range typed {
		s.Input(string(typed[:i+1]))
		time.Sleep(keystroke)
	}
	// Let the debounce window elapse so the last keystroke's lookup starts.
	time.Sleep(cfg.Typeahead.Debounce + 50*time.Millisecond)
	s.Wait()

	return writeSuggestions(os.Stdout, s.State(), cfg.Typeahead.MinLength)
}

func writeSuggestions(w io.Writer, st fetch.Suggestions, minLen int) error {
	if st.Err != nil {
		return fmt.Errorf("looking up %q: %w", st.Term, st.Err)
	}
	if len([]rune(st.Term)) < minLen {
		fmt.Fprintf(w, "Type at least %d characters for suggestions.\n", minLen)
		return nil
	}
	if len(st.Items) == 0 {
		fmt.Fprintf(w, "No suggestions for %q.\n", st.Term)
		return nil
	}

	fmt.Fprintf(w, "Suggestions for %q:\n", st.Term)
	for _, p := range st.Items {
		line := p.Title()
		if loc := p.LocationLabel(); loc != "" {
			line += ", " + loc
		}
		if p.ExpectedPrice > 0 {
			line += "  " + filter.FormatPrice(p.ExpectedPrice)
		}
		fmt.Fprintf(w, "  %-12s  %s\n", p.ID, line)
	}
	return nil
}
