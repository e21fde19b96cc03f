// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter stages filter-sidebar selections and commits them to the
// query manager in one step. It also parses the sidebar's human-entered
// budget ("1.5 Cr", "50 L") and bedroom ("3 BHK", "1 RK") labels.
package filter

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	crore = 10_000_000
	lakh  = 100_000
)

// QuickPrices are the one-click budget ceilings shown under the budget
// inputs.
var QuickPrices = []string{"10 L", "20 L", "30 L", "40 L", "50 L", "60 L", "70 L", "80 L", "90 L", "1 Cr"}

// ValidationError reports a staged value that could not be committed. The
// offending field is left unset.
type ValidationError struct {
	Field  string
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Input, e.Reason)
}

var priceRe = regexp.MustCompile(`(?i)^(\d+)(?:\.(\d+))?\s*(cr|crore|crores|l|lac|lacs|lakh|lakhs)?$`)

// ParsePrice converts a budget label to rupees. "<qty> Cr" is multiplied by
// 10,000,000 and "<qty> L" (also Lac, Lakh) by 100,000; decimals are
// allowed with a unit. A bare digit string passes through unchanged and
// may use "," as a thousands separator. Anything else is a
// *ValidationError; garbage never becomes 0.
func ParsePrice(s string) (int64, error) {
	raw := s
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, &ValidationError{Field: "price", Input: raw, Reason: "empty"}
	}
	m := priceRe.FindStringSubmatch(s)
	if m == nil {
		return 0, &ValidationError{Field: "price", Input: raw, Reason: "expected a number, optionally followed by Cr or L"}
	}
	whole, frac, unit := m[1], m[2], strings.ToLower(m[3])

	var mult int64 = 1
	switch unit {
	case "":
		if frac != "" {
			return 0, &ValidationError{Field: "price", Input: raw, Reason: "decimals need a Cr or L unit"}
		}
	case "cr", "crore", "crores":
		mult = crore
	default:
		mult = lakh
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w > math.MaxInt64/mult {
		return 0, &ValidationError{Field: "price", Input: raw, Reason: "out of range"}
	}
	v := w * mult

	if frac != "" {
		// Digits beyond the unit's precision are below one rupee.
		scale := int64(1)
		digits := 0
		for f := mult; f > 1 && digits < len(frac); f /= 10 {
			scale *= 10
			digits++
		}
		fv, _ := strconv.ParseInt(frac[:digits], 10, 64)
		add := fv * (mult / scale)
		if v > math.MaxInt64-add {
			return 0, &ValidationError{Field: "price", Input: raw, Reason: "out of range"}
		}
		v += add
	}
	return v, nil
}

// FormatPrice renders rupees in the sidebar's notation: whole and two
// decimal crores ("1 Cr", "1.25 Cr"), lakhs ("50 L", "7.5 L"), or raw
// digits. ParsePrice(FormatPrice(v)) == v for any realistic budget.
func FormatPrice(v int64) string {
	switch {
	case v >= crore && v%lakh == 0:
		return strconv.FormatFloat(float64(v)/crore, 'f', -1, 64) + " Cr"
	case v >= lakh && v%1000 == 0:
		return strconv.FormatFloat(float64(v)/lakh, 'f', -1, 64) + " L"
	}
	return strconv.FormatInt(v, 10)
}
