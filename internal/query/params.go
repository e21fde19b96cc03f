// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query keeps the shareable URL form of a property search in step
// with the canonical SearchIntent. Parse and Serialize convert between the
// two; Manager owns the current intent and broadcasts every change.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/estate-search/pkg/types"
)

// Query parameter names used on shareable links and backend requests.
const (
	ParamLocation     = "location"
	ParamPurpose      = "purpose"
	ParamPropertyType = "propertyType"
	ParamBedrooms     = "bedrooms"
	ParamMinPrice     = "minPrice"
	ParamMaxPrice     = "maxPrice"
	ParamFurnishing   = "furnishing"
	ParamPostedBy     = "postedBy"
	ParamAvailability = "availability"
	ParamAmenities    = "amenities"
	ParamSortBy       = "sortBy"
	ParamPage         = "page"
)

// routePrefix is the listing route whose last segment is a location slug.
const routePrefix = "/properties/"

// Parse decodes query parameters into a normalized SearchIntent. It never
// fails: non-numeric numbers are ignored, unknown enum values are unset and
// the page is clamped to at least 1.
func Parse(values url.Values) types.SearchIntent {
	intent := types.SearchIntent{
		Location:     values.Get(ParamLocation),
		Purpose:      types.ParsePurpose(values.Get(ParamPurpose)),
		PropertyType: values.Get(ParamPropertyType),
		Bedrooms:     parseInt(values.Get(ParamBedrooms)),
		MinPrice:     parseInt64(values.Get(ParamMinPrice)),
		MaxPrice:     parseInt64(values.Get(ParamMaxPrice)),
		Furnishing:   types.ParseFurnishing(values.Get(ParamFurnishing)),
		PostedBy:     types.ParsePostedBy(values.Get(ParamPostedBy)),
		Availability: types.ParseAvailability(values.Get(ParamAvailability)),
		Amenities:    values[ParamAmenities],
		SortBy:       types.ParseSortOrder(values.Get(ParamSortBy)),
	}
	if p := parseInt(values.Get(ParamPage)); p != nil {
		intent.Page = *p
	}
	return intent.Normalize()
}

// ParseRoute decodes values and layers the route location slug from
// /properties/:location over the location parameter. An empty route
// location leaves the parameter in effect.
func ParseRoute(location string, values url.Values) types.SearchIntent {
	intent := Parse(values)
	if strings.TrimSpace(location) == "" {
		return intent
	}
	intent.Location = location
	return intent.Normalize()
}

// ParseString decodes a raw query string ("?purpose=rent&page=2", with or
// without the leading "?"), a path with a query, or a full URL. A
// /properties/:location path contributes its location slug. Malformed
// pairs are skipped.
func ParseString(raw string) types.SearchIntent {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "/") {
		u, err := url.Parse(raw)
		if err == nil {
			values, _ := url.ParseQuery(u.RawQuery)
			return ParseRoute(routeLocation(u.Path), values)
		}
	}
	values, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return Parse(values)
}

// Serialize encodes intent as query parameters, omitting unset and default
// fields: no empty values, no page=1 and no sortBy=relevance. It is the
// inverse of Parse for normalized intents.
func Serialize(intent types.SearchIntent) url.Values {
	n := intent.Normalize()
	v := url.Values{}
	setString(v, ParamLocation, n.Location)
	setString(v, ParamPurpose, string(n.Purpose))
	setString(v, ParamPropertyType, n.PropertyType)
	if n.Bedrooms != nil {
		v.Set(ParamBedrooms, strconv.Itoa(*n.Bedrooms))
	}
	if n.MinPrice != nil {
		v.Set(ParamMinPrice, strconv.FormatInt(*n.MinPrice, 10))
	}
	if n.MaxPrice != nil {
		v.Set(ParamMaxPrice, strconv.FormatInt(*n.MaxPrice, 10))
	}
	setString(v, ParamFurnishing, string(n.Furnishing))
	setString(v, ParamPostedBy, string(n.PostedBy))
	setString(v, ParamAvailability, string(n.Availability))
	if len(n.Amenities) > 0 {
		v.Set(ParamAmenities, strings.Join(n.Amenities, ","))
	}
	if n.SortBy != types.SortRelevance {
		v.Set(ParamSortBy, string(n.SortBy))
	}
	if n.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(n.Page))
	}
	return v
}

// Encode returns the canonical query string for intent with keys sorted.
// Equal intents always encode to the same string.
func Encode(intent types.SearchIntent) string {
	return Serialize(intent).Encode()
}

// Link joins path and the canonical query string of intent. The "?" is
// omitted when intent has nothing to encode.
func Link(path string, intent types.SearchIntent) string {
	q := Encode(intent)
	if q == "" {
		return path
	}
	return path + "?" + q
}

func routeLocation(path string) string {
	i := strings.Index(path, routePrefix)
	if i < 0 {
		return ""
	}
	loc := strings.Trim(path[i+len(routePrefix):], "/")
	if strings.Contains(loc, "/") {
		return ""
	}
	return loc
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func parseInt(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

func parseInt64(s string) *int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
