package reply

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

// formatDistance mirrors original_source/app/messages.py's
// _format_distance: under 10 km renders with one decimal using
// round(km*10)/10 (not round(km, 1), which is banker's-rounding
// inconsistent at .x5 boundaries); at or above 10 km renders as an
// integer. A trailing ".0" is always stripped.
func formatDistance(meters float64) string {
	km := meters / 1000
	var rounded float64
	if km < 10 {
		rounded = math.Round(km*10) / 10
	} else {
		rounded = math.Round(km)
	}
	s := strconv.FormatFloat(rounded, 'f', -1, 64)
	return strings.TrimSuffix(s, ".0")
}

// formatHectares renders whole hectares per §4.F: round(float(size)).
func formatHectares(ha float64) string {
	return strconv.Itoa(int(math.Round(ha)))
}

// utf16Units counts UTF-16 code units, the unit the 159-character SMS
// budget is measured in (half the byte count of a UTF-16-LE encoding).
func utf16Units(s string) int {
	return len(utf16.Encode([]rune(s)))
}
