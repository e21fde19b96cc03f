// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/estate-search/pkg/types"
)

// Committer receives committed filter sets. query.Manager implements it.
type Committer interface {
	Intent() types.SearchIntent
	Replace(types.SearchIntent) types.SearchIntent
}

// Selection is the staged, not yet applied, state of the sidebar. Budget
// fields hold the text as entered.
type Selection struct {
	Purpose      types.Purpose      `json:"purpose,omitempty"`
	MinPrice     string             `json:"minPrice,omitempty"`
	MaxPrice     string             `json:"maxPrice,omitempty"`
	PropertyType string             `json:"propertyType,omitempty"`
	BHK          string             `json:"bhk,omitempty"`
	PostedBy     types.PostedBy     `json:"postedBy,omitempty"`
	Furnishing   types.Furnishing   `json:"furnishing,omitempty"`
	Availability types.Availability `json:"availability,omitempty"`
	Amenities    []string           `json:"amenities,omitempty"`
}

// ActiveCount returns the number of filter groups with a value, as shown
// on the sidebar badge. Both budget bounds count as one group; purpose is a
// tab, not a filter, and is not counted.
func (s Selection) ActiveCount() int {
	n := 0
	for _, active := range []bool{
		s.MinPrice != "" || s.MaxPrice != "",
		s.PropertyType != "",
		s.BHK != "",
		s.PostedBy != types.PostedByUnset,
		s.Furnishing != types.FurnishingUnset,
		s.Availability != types.AvailabilityUnset,
		len(s.Amenities) > 0,
	} {
		if active {
			n++
		}
	}
	return n
}

// Coordinator stages sidebar edits and commits them atomically. Nothing
// reaches the Committer until Apply or Clear.
type Coordinator struct {
	mu     sync.Mutex
	staged Selection
	target Committer
	logger *zap.Logger
}

// NewCoordinator returns a Coordinator seeded from the committer's current
// intent. A nil logger disables logging.
func NewCoordinator(target Committer, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{target: target, logger: logger}
	c.Load(target.Intent())
	return c
}

// Load replaces the staged selection with the filters of intent, e.g.
// when the visitor lands on a shared link.
func (c *Coordinator) Load(intent types.SearchIntent) {
	s := selectionOf(intent)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged = s
}

// Rebase carries a direct intent change from prev to next into the staged
// selection. Only groups that differ between the two are re-seeded; every
// other staged edit is kept until Apply or Clear.
func (c *Coordinator) Rebase(prev, next types.SearchIntent) {
	from, to := selectionOf(prev), selectionOf(next)

	c.mu.Lock()
	defer c.mu.Unlock()
	s := &c.staged
	if from.Purpose != to.Purpose {
		s.Purpose = to.Purpose
	}
	if from.MinPrice != to.MinPrice {
		s.MinPrice = to.MinPrice
	}
	if from.MaxPrice != to.MaxPrice {
		s.MaxPrice = to.MaxPrice
	}
	if from.PropertyType != to.PropertyType {
		s.PropertyType = to.PropertyType
	}
	if from.BHK != to.BHK {
		s.BHK = to.BHK
	}
	if from.PostedBy != to.PostedBy {
		s.PostedBy = to.PostedBy
	}
	if from.Furnishing != to.Furnishing {
		s.Furnishing = to.Furnishing
	}
	if from.Availability != to.Availability {
		s.Availability = to.Availability
	}
	if !slices.Equal(from.Amenities, to.Amenities) {
		s.Amenities = to.Amenities
	}
}

func selectionOf(intent types.SearchIntent) Selection {
	n := intent.Normalize()
	s := Selection{
		Purpose:      n.Purpose,
		PropertyType: n.PropertyType,
		PostedBy:     n.PostedBy,
		Furnishing:   n.Furnishing,
		Availability: n.Availability,
		Amenities:    slices.Clone(n.Amenities),
	}
	if n.MinPrice != nil {
		s.MinPrice = FormatPrice(*n.MinPrice)
	}
	if n.MaxPrice != nil {
		s.MaxPrice = FormatPrice(*n.MaxPrice)
	}
	if n.Bedrooms != nil && *n.Bedrooms > 0 {
		s.BHK = BHKLabel(*n.Bedrooms, isRKType(n.PropertyType))
	}
	return s
}

// Selection returns a copy of the staged selection.
func (c *Coordinator) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.staged
	s.Amenities = slices.Clone(s.Amenities)
	return s
}

// ActiveCount returns the badge count of the staged selection.
func (c *Coordinator) ActiveCount() int {
	return c.Selection().ActiveCount()
}

// ToggleAmenity adds tag to the staged amenity set, or removes it when
// already present. Toggling twice restores the original set.
func (c *Coordinator) ToggleAmenity(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.Contains(tag, ",") {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := slices.Index(c.staged.Amenities, tag); i >= 0 {
		c.staged.Amenities = slices.Delete(c.staged.Amenities, i, i+1)
		return
	}
	c.staged.Amenities = append(c.staged.Amenities, tag)
	slices.Sort(c.staged.Amenities)
}

// SetPurpose stages the buy, rent or PG tab. Unknown values unset it.
func (c *Coordinator) SetPurpose(p types.Purpose) {
	p = types.ParsePurpose(string(p))
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged.Purpose = p
}

// TogglePropertyType selects a property type, or clears it when it is
// already selected.
func (c *Coordinator) TogglePropertyType(kind string) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged.PropertyType = toggle(c.staged.PropertyType, kind, "")
}

// ToggleBHK selects a bedroom label ("2 BHK", "1 RK"), or clears it when it
// is already selected. "1 RK" and "1 BHK" are distinct selections.
func (c *Coordinator) ToggleBHK(label string) {
	label = strings.TrimSpace(label)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged.BHK = toggle(c.staged.BHK, label, "")
}

// TogglePostedBy selects who posted the listing, or clears the selection.
func (c *Coordinator) TogglePostedBy(p types.PostedBy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged.PostedBy = toggle(c.staged.PostedBy, p, types.PostedByUnset)
}

// ToggleFurnishing selects a furnishing state, or clears the selection.
func (c *Coordinator) ToggleFurnishing(f types.Furnishing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged.Furnishing = toggle(c.staged.Furnishing, f, types.FurnishingUnset)
}

// ToggleAvailability selects a possession window, or clears the selection.
func (c *Coordinator) ToggleAvailability(a types.Availability) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged.Availability = toggle(c.staged.Availability, a, types.AvailabilityUnset)
}

// SetMinPrice stages the minimum budget text. Parsing waits for Apply.
func (c *Coordinator) SetMinPrice(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged.MinPrice = strings.TrimSpace(text)
}

// SetMaxPrice stages the maximum budget text. Parsing waits for Apply.
func (c *Coordinator) SetMaxPrice(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged.MaxPrice = strings.TrimSpace(text)
}

// QuickPrice stages one of the QuickPrices labels as the maximum budget.
// It overwrites whatever was typed; the last write wins.
func (c *Coordinator) QuickPrice(label string) {
	c.SetMaxPrice(strings.ReplaceAll(label, " ", ""))
}

// Clear empties the staged selection and commits an intent without
// filters. Location, purpose and sort order are kept.
func (c *Coordinator) Clear() types.SearchIntent {
	cur := c.target.Intent()
	c.mu.Lock()
	c.staged = Selection{Purpose: cur.Purpose}
	c.mu.Unlock()

	next := cur.WithoutFilters()
	next.Purpose = cur.Purpose
	c.logger.Debug("filters cleared")
	return c.target.Replace(next)
}

// Apply validates the staged selection and commits it in one Replace. A
// field that fails validation is dropped from the commit and reported;
// the remaining fields are still applied.
func (c *Coordinator) Apply() []ValidationError {
	s := c.Selection()
	cur := c.target.Intent()

	next := cur.WithoutFilters()
	next.Purpose = s.Purpose
	next.PropertyType = s.PropertyType
	next.PostedBy = s.PostedBy
	next.Furnishing = s.Furnishing
	next.Availability = s.Availability
	next.Amenities = s.Amenities

	var errs []ValidationError
	collect := func(field string, err error) {
		var ve *ValidationError
		if errors.As(err, &ve) {
			v := *ve
			v.Field = field
			errs = append(errs, v)
		}
	}

	if s.MinPrice != "" {
		v, err := ParsePrice(s.MinPrice)
		if err != nil {
			collect("minPrice", err)
		} else {
			next.MinPrice = types.Int64(v)
		}
	}
	if s.MaxPrice != "" {
		v, err := ParsePrice(s.MaxPrice)
		if err != nil {
			collect("maxPrice", err)
		} else {
			next.MaxPrice = types.Int64(v)
		}
	}
	if next.MinPrice != nil && next.MaxPrice != nil && *next.MinPrice > *next.MaxPrice {
		errs = append(errs, ValidationError{Field: "maxPrice", Input: s.MaxPrice, Reason: "below the minimum price"})
		next.MaxPrice = nil
	}
	if s.BHK != "" {
		n, err := ParseBedrooms(s.BHK)
		if err != nil {
			collect("bedrooms", err)
		} else {
			next.Bedrooms = types.Int(n)
		}
	}

	committed := c.target.Replace(next)
	c.logger.Debug("filters applied",
		zap.Int("active", s.ActiveCount()),
		zap.Int("invalid", len(errs)),
		zap.Int("page", committed.Page),
	)
	return errs
}

func toggle[T comparable](cur, v, unset T) T {
	if cur == v {
		return unset
	}
	return v
}
