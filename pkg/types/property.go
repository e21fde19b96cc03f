// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// PropertySummary is the read-only projection of a backend property record
// shown on a listing card. The backend owns it; clients only display it.
type PropertySummary struct {
	ID              string   `json:"id" yaml:"id"`
	PropertySubType string   `json:"propertySubType,omitempty" yaml:"property_sub_type,omitempty"`
	PropertyType    string   `json:"propertyType,omitempty" yaml:"property_type,omitempty"`
	Purpose         string   `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	Bedrooms        int      `json:"bedrooms,omitempty" yaml:"bedrooms,omitempty"`
	Bathrooms       int      `json:"bathrooms,omitempty" yaml:"bathrooms,omitempty"`
	ExpectedPrice   int64    `json:"expectedPrice,omitempty" yaml:"expected_price,omitempty"`
	PricePerSqFt    int64    `json:"pricePerSqFt,omitempty" yaml:"price_per_sq_ft,omitempty"`
	Locality        string   `json:"locality,omitempty" yaml:"locality,omitempty"`
	City            string   `json:"city,omitempty" yaml:"city,omitempty"`
	CarpetArea      float64  `json:"carpetArea,omitempty" yaml:"carpet_area,omitempty"`
	BuiltUpArea     float64  `json:"builtUpArea,omitempty" yaml:"built_up_area,omitempty"`
	PlotArea        float64  `json:"plotArea,omitempty" yaml:"plot_area,omitempty"`
	AreaUnit        string   `json:"areaUnit,omitempty" yaml:"area_unit,omitempty"`
	Furnishing      string   `json:"furnishing,omitempty" yaml:"furnishing,omitempty"`
	Ownership       string   `json:"ownership,omitempty" yaml:"ownership,omitempty"`
	Photos          []string `json:"photos,omitempty" yaml:"photos,omitempty"`
	Status          string   `json:"status,omitempty" yaml:"status,omitempty"`
	Featured        bool     `json:"featured,omitempty" yaml:"featured,omitempty"`
}

// Verified reports whether the listing passed admin review.
func (p PropertySummary) Verified() bool { return p.Status == "approved" }

// Thumbnail returns the first photo URL, or "" when the listing has none.
func (p PropertySummary) Thumbnail() string {
	if len(p.Photos) == 0 {
		return ""
	}
	return p.Photos[0]
}

// Title is the card heading, e.g. "3 BHK Apartment".
func (p PropertySummary) Title() string {
	if p.PropertySubType == "" {
		return "Property"
	}
	if p.Bedrooms > 0 {
		return fmt.Sprintf("%d BHK %s", p.Bedrooms, p.PropertySubType)
	}
	return p.PropertySubType
}

// LocationLabel joins locality and city ("Sector 77, Noida").
func (p PropertySummary) LocationLabel() string {
	parts := make([]string, 0, 2)
	for _, s := range []string{p.Locality, p.City} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// Area returns the most specific area figure with its unit: carpet, then
// built-up, then plot. It returns "" when no area is known.
func (p PropertySummary) Area() string {
	unit := p.AreaUnit
	if unit == "" {
		unit = "sq.ft"
	}
	for _, a := range []float64{p.CarpetArea, p.BuiltUpArea, p.PlotArea} {
		if a > 0 {
			return fmt.Sprintf("%g %s", a, unit)
		}
	}
	return ""
}

// ResultPage is the outcome of one listing fetch. It is replaced wholesale
// on the next successful fetch, never patched.
type ResultPage struct {
	Items       []PropertySummary `json:"items" yaml:"items"`
	TotalCount  int               `json:"totalCount" yaml:"total_count"`
	TotalPages  int               `json:"totalPages" yaml:"total_pages"`
	CurrentPage int               `json:"currentPage" yaml:"current_page"`
}

// IsEmpty reports whether the backend found no listings at all. An empty
// page is a successful outcome, distinct from a failed fetch.
func (r ResultPage) IsEmpty() bool { return r.TotalCount == 0 }

// HasNext reports whether a page after CurrentPage exists.
func (r ResultPage) HasNext() bool { return r.CurrentPage < r.TotalPages }

// HasPrevious reports whether a page before CurrentPage exists.
func (r ResultPage) HasPrevious() bool { return r.CurrentPage > 1 }

// PageCount returns ceil(total/pageSize), the fallback used when the backend
// omits totalPages.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// FetchStatus is the phase of a fetch.
type FetchStatus int

const (
	StatusIdle FetchStatus = iota
	StatusLoading
	StatusSuccess
	StatusFailure
)

func (s FetchStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	}
	return fmt.Sprintf("FetchStatus(%d)", int(s))
}

// FetchState is the single authoritative outcome for the current intent.
// Page is set only in StatusSuccess and Err only in StatusFailure.
type FetchState struct {
	Status FetchStatus
	Intent SearchIntent
	Page   *ResultPage
	Err    error

	// Seq is the token of the request this state belongs to; 0 means none.
	Seq uint64
}

// Idle reports whether no fetch has been issued yet.
func (s FetchState) Idle() bool { return s.Status == StatusIdle }

// Loading reports whether a request is in flight.
func (s FetchState) Loading() bool { return s.Status == StatusLoading }

// Empty reports a successful fetch with no results ("No properties found").
func (s FetchState) Empty() bool {
	return s.Status == StatusSuccess && s.Page != nil && s.Page.IsEmpty()
}

// Failed reports whether the fetch failed and a retry should be offered.
func (s FetchState) Failed() bool { return s.Status == StatusFailure }
