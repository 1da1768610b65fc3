package query

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// minTermLen is the shortest normalized term that triggers a search.
// Anything shorter is "no query" and must not reach the store.
const minTermLen = 2

var upperCaser = cases.Upper(language.Und)

// Term is a normalized search input: an uppercased copy for code
// (ICAO/IATA) matching and the trimmed original for free-text matching.
type Term struct {
	Code string
	Text string
}

// NormalizeTerm trims and validates a raw search term. ok is false when
// the term is too short to query.
func NormalizeTerm(raw string) (t Term, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if utf8.RuneCountInString(trimmed) < minTermLen {
		return Term{}, false
	}
	return Term{
		Code: upperCaser.String(trimmed),
		Text: trimmed,
	}, true
}

// ValidateCoordinates rejects non-finite or out-of-range coordinates.
// Values are never clamped.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return validationf("coordinates must be finite numbers")
	}
	if lat < -90 || lat > 90 {
		return validationf("latitude %v out of range [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return validationf("longitude %v out of range [-180, 180]", lon)
	}
	return nil
}

// ClampLimit maps an unspecified (<=0) limit to def and clamps everything
// else into [min, max]. Limits are clamped rather than rejected.
func ClampLimit(n, def, min, max int) int {
	if n <= 0 {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
