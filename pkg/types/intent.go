// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for estate-search: the
// canonical search intent, the listing projections returned by the
// backend, fetch state and configuration.
package types

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Purpose is the transaction type a visitor is browsing for.
type Purpose string

const (
	PurposeUnset Purpose = ""
	PurposeBuy   Purpose = "buy"
	PurposeRent  Purpose = "rent"
	PurposePG    Purpose = "pg"
)

// ParsePurpose maps a raw value to a Purpose. Unknown values map to
// PurposeUnset so they are never mistaken for another purpose.
func ParsePurpose(s string) Purpose {
	switch p := Purpose(Slug(s)); p {
	case PurposeBuy, PurposeRent, PurposePG:
		return p
	}
	return PurposeUnset
}

// Label returns the display form used in page titles ("Sale", "Rent", "PG").
func (p Purpose) Label() string {
	switch p {
	case PurposeBuy:
		return "Sale"
	case PurposeRent:
		return "Rent"
	case PurposePG:
		return "PG"
	}
	return ""
}

// Furnishing is the furnishing state of a property.
type Furnishing string

const (
	FurnishingUnset       Furnishing = ""
	FurnishingFurnished   Furnishing = "furnished"
	FurnishingSemi        Furnishing = "semi-furnished"
	FurnishingUnfurnished Furnishing = "unfurnished"
)

// ParseFurnishing accepts sidebar labels ("Semi-Furnished") and URL values
// ("semi-furnished"). Unknown values map to FurnishingUnset.
func ParseFurnishing(s string) Furnishing {
	switch f := Furnishing(Slug(s)); f {
	case FurnishingFurnished, FurnishingSemi, FurnishingUnfurnished:
		return f
	}
	return FurnishingUnset
}

// PostedBy identifies who published a listing.
type PostedBy string

const (
	PostedByUnset   PostedBy = ""
	PostedByOwner   PostedBy = "owner"
	PostedByDealer  PostedBy = "dealer"
	PostedByBuilder PostedBy = "builder"
)

// ParsePostedBy maps a raw value to a PostedBy. Unknown values map to
// PostedByUnset.
func ParsePostedBy(s string) PostedBy {
	switch p := PostedBy(Slug(s)); p {
	case PostedByOwner, PostedByDealer, PostedByBuilder:
		return p
	}
	return PostedByUnset
}

// Availability is the possession window of a listing.
type Availability string

const (
	AvailabilityUnset        Availability = ""
	AvailabilityImmediately  Availability = "immediately"
	AvailabilityWithin15Days Availability = "within-15-days"
	AvailabilityWithin30Days Availability = "within-30-days"
	AvailabilityAfter30Days  Availability = "after-30-days"
)

// ParseAvailability accepts sidebar labels ("Within 15 Days") and URL
// values ("within-15-days"). Unknown values map to AvailabilityUnset.
func ParseAvailability(s string) Availability {
	switch a := Availability(Slug(s)); a {
	case AvailabilityImmediately, AvailabilityWithin15Days, AvailabilityWithin30Days, AvailabilityAfter30Days:
		return a
	}
	return AvailabilityUnset
}

// SortOrder selects the listing order requested from the backend.
type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortNewest    SortOrder = "newest"
	SortAreaAsc   SortOrder = "area-asc"
	SortAreaDesc  SortOrder = "area-desc"
)

// sortAliases maps the listing page's select values onto SortOrder.
var sortAliases = map[string]SortOrder{
	"price-low":  SortPriceAsc,
	"price-high": SortPriceDesc,
	"area-low":   SortAreaAsc,
	"area-high":  SortAreaDesc,
}

// ParseSortOrder maps a raw value to a SortOrder. Empty and unknown values
// map to SortRelevance, the default order.
func ParseSortOrder(s string) SortOrder {
	v := Slug(s)
	switch o := SortOrder(v); o {
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortNewest, SortAreaAsc, SortAreaDesc:
		return o
	}
	if o, ok := sortAliases[v]; ok {
		return o
	}
	return SortRelevance
}

// SearchIntent is the canonical filter, sort and page state of a property
// search. The zero value is a valid "everything, page 1" intent once
// normalized.
type SearchIntent struct {
	// Location is a city or locality slug such as "sector-77-noida".
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	Purpose Purpose `json:"purpose,omitempty" yaml:"purpose,omitempty"`

	// PropertyType is a free-form category key ("apartment", "house", "plot").
	PropertyType string `json:"propertyType,omitempty" yaml:"property_type,omitempty"`

	Bedrooms *int   `json:"bedrooms,omitempty" yaml:"bedrooms,omitempty"`
	MinPrice *int64 `json:"minPrice,omitempty" yaml:"min_price,omitempty"`
	MaxPrice *int64 `json:"maxPrice,omitempty" yaml:"max_price,omitempty"`

	Furnishing   Furnishing   `json:"furnishing,omitempty" yaml:"furnishing,omitempty"`
	PostedBy     PostedBy     `json:"postedBy,omitempty" yaml:"posted_by,omitempty"`
	Availability Availability `json:"availability,omitempty" yaml:"availability,omitempty"`

	// Amenities is a set; Normalize sorts and deduplicates it. Tags never
	// contain commas.
	Amenities []string `json:"amenities,omitempty" yaml:"amenities,omitempty"`

	SortBy SortOrder `json:"sortBy,omitempty" yaml:"sort_by,omitempty"`

	// Page is 1-based.
	Page int `json:"page,omitempty" yaml:"page,omitempty"`
}

// Normalize returns a copy of the intent with every invariant enforced:
// page >= 1, unknown enums unset, negative numbers dropped, amenities
// sorted and deduplicated, and MaxPrice dropped when it is below MinPrice.
func (s SearchIntent) Normalize() SearchIntent {
	n := s.Clone()
	n.Location = Slug(n.Location)
	n.PropertyType = strings.ToLower(strings.TrimSpace(n.PropertyType))
	n.Purpose = ParsePurpose(string(n.Purpose))
	n.Furnishing = ParseFurnishing(string(n.Furnishing))
	n.PostedBy = ParsePostedBy(string(n.PostedBy))
	n.Availability = ParseAvailability(string(n.Availability))
	n.SortBy = ParseSortOrder(string(n.SortBy))

	if n.Bedrooms != nil && *n.Bedrooms < 0 {
		n.Bedrooms = nil
	}
	if n.MinPrice != nil && *n.MinPrice < 0 {
		n.MinPrice = nil
	}
	if n.MaxPrice != nil && *n.MaxPrice < 0 {
		n.MaxPrice = nil
	}
	if n.MinPrice != nil && n.MaxPrice != nil && *n.MinPrice > *n.MaxPrice {
		n.MaxPrice = nil
	}
	n.Amenities = normalizeTags(n.Amenities)
	if n.Page < 1 {
		n.Page = 1
	}
	return n
}

// Clone returns a deep copy that shares no pointers with s.
func (s SearchIntent) Clone() SearchIntent {
	c := s
	if s.Bedrooms != nil {
		c.Bedrooms = Int(*s.Bedrooms)
	}
	if s.MinPrice != nil {
		c.MinPrice = Int64(*s.MinPrice)
	}
	if s.MaxPrice != nil {
		c.MaxPrice = Int64(*s.MaxPrice)
	}
	if s.Amenities != nil {
		c.Amenities = slices.Clone(s.Amenities)
	}
	return c
}

// Equal reports semantic equality: both intents are compared in normalized
// form, so amenity order and default-vs-empty values do not matter.
func (s SearchIntent) Equal(o SearchIntent) bool {
	a, b := s.Normalize(), o.Normalize()
	return a.Page == b.Page && a.EqualIgnoringPage(b)
}

// EqualIgnoringPage reports whether every field other than Page matches.
func (s SearchIntent) EqualIgnoringPage(o SearchIntent) bool {
	a, b := s.Normalize(), o.Normalize()
	return a.Location == b.Location &&
		a.Purpose == b.Purpose &&
		a.PropertyType == b.PropertyType &&
		eqPtr(a.Bedrooms, b.Bedrooms) &&
		eqPtr(a.MinPrice, b.MinPrice) &&
		eqPtr(a.MaxPrice, b.MaxPrice) &&
		a.Furnishing == b.Furnishing &&
		a.PostedBy == b.PostedBy &&
		a.Availability == b.Availability &&
		slices.Equal(a.Amenities, b.Amenities) &&
		a.SortBy == b.SortBy
}

// WithoutFilters returns an intent that keeps only the route location and
// sort order, on page 1.
func (s SearchIntent) WithoutFilters() SearchIntent {
	return SearchIntent{Location: s.Location, SortBy: s.SortBy, Page: 1}
}

// HasAmenity reports whether tag is in the amenity set.
func (s SearchIntent) HasAmenity(tag string) bool {
	return slices.Contains(s.Amenities, strings.TrimSpace(tag))
}

// Describe returns the listing page heading for the intent, e.g.
// "Properties for Rent in Sector 77 Noida".
func (s SearchIntent) Describe() string {
	purpose := s.Purpose.Label()
	if purpose == "" {
		purpose = "Sale"
	}
	return fmt.Sprintf("Properties for %s in %s", purpose, LocationName(s.Location))
}

// LocationName turns a location slug into a display name
// ("sector-77-noida" -> "Sector 77 Noida"). An empty slug is "All Locations".
func LocationName(loc string) string {
	if loc == "" {
		return "All Locations"
	}
	words := strings.Split(loc, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Slug lowercases s and joins its words with "-", treating spaces,
// underscores and dashes as separators.
func Slug(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-'
	})
	return strings.Join(fields, "-")
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		// A comma separates tags on the wire, so it can never be part of one.
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}
