// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// BHKOptions are the bedroom labels offered by the sidebar.
var BHKOptions = []string{"1 RK", "1 BHK", "2 BHK", "3 BHK", "4 BHK", "5 BHK", "5+ BHK"}

var bhkRe = regexp.MustCompile(`^(\d+)\s*\+?\s*(bhk|rk|bed|beds|bedroom|bedrooms)?$`)

// ParseBedrooms returns the leading bedroom count of a label such as
// "3 BHK", "1 RK" or "5+ BHK". A bare number is accepted as well.
func ParseBedrooms(label string) (int, error) {
	m := bhkRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(label)))
	if m == nil {
		return 0, &ValidationError{Field: "bedrooms", Input: label, Reason: "expected a label like \"3 BHK\""}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, &ValidationError{Field: "bedrooms", Input: label, Reason: "bedroom count must be at least 1"}
	}
	return n, nil
}

// IsRK reports whether label names a one-room-kitchen unit. RK commits as
// bedrooms=1; the distinction survives only in staged selections and
// display.
func IsRK(label string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(label)), "rk")
}

// isRKType reports whether a property type key names one-room-kitchen
// units, i.e. has "rk" as a whole dash or space separated token.
func isRKType(kind string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(kind), func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	return slices.Contains(tokens, "rk")
}

// BHKLabel renders a bedroom count as a sidebar label.
func BHKLabel(n int, rk bool) string {
	if rk && n == 1 {
		return "1 RK"
	}
	return fmt.Sprintf("%d BHK", n)
}
