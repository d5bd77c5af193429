// Package parser extracts coordinates and filter directives from freeform
// inbound message text, grounded on original_source/app/helpers.py's
// parse_message and its supporting regexes.
package parser

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"treksafer/internal/types"
)

var (
	urlToken = regexp.MustCompile(`https?://\S+`)

	// Trailing "(lat, lon)" pair at the end of the message, InReach style.
	// Whitespace/newlines are permitted inside the brackets and around the
	// comma.
	trailingBracket = regexp.MustCompile(`(?s)\(\s*(-?\d{1,3}(?:\.\d{1,8})?)\s*,\s*(-?\d{1,3}(?:\.\d{1,8})?)\s*\)\s*$`)

	// Any "lat, lon" pair, bracketed or bare, with optional sign and up to
	// 8 fractional digits.
	anyPair = regexp.MustCompile(`(-?\d{1,3}(?:\.\d{1,8})?)\s*,\s*(-?\d{1,3}(?:\.\d{1,8})?)`)

	degNum = `(\d{1,3}(?:\.\d+)?)`

	// "<num>[°]? [NS] [,;]? <num>[°]? [EW]"
	degHemiA = regexp.MustCompile(`(?i)` + degNum + `\s*°?\s*([NS])\s*[,;]?\s*` + degNum + `\s*°?\s*([EW])`)
	// "[NS] <num>[°]? [,;]? [EW] <num>[°]?"
	degHemiB = regexp.MustCompile(`(?i)([NS])\s*` + degNum + `\s*°?\s*[,;]?\s*([EW])\s*` + degNum + `\s*°?`)

	distanceToken = regexp.MustCompile(`(?i)\b(\d+)\s*(km|mi)\b`)
	wordActive    = regexp.MustCompile(`(?i)\bactive\b`)
	wordManaged   = regexp.MustCompile(`(?i)\bmanaged\b`)
	wordControl   = regexp.MustCompile(`(?i)\bcontrolled\b`)
	wordOut       = regexp.MustCompile(`(?i)\bout\b`)
	wordAll       = regexp.MustCompile(`(?i)\ball\b`)

	wordAvalanche = regexp.MustCompile(`(?i)\bavalanches?\b`)
	wordFire      = regexp.MustCompile(`(?i)\bfires?\b`)

	wordCurrent  = regexp.MustCompile(`(?i)\bcurrent\b`)
	wordToday    = regexp.MustCompile(`(?i)\btoday\b`)
	wordTomorrow = regexp.MustCompile(`(?i)\btomorrow\b`)

	milesPerKM = 1.609344
)

// Parse extracts a ParsedRequest from freeform text. ok is false ("no
// coordinates") only when every extraction step in §4.A fails.
func Parse(message string) (req types.ParsedRequest, ok bool) {
	coords, found := extractCoords(message)
	if !found {
		return types.ParsedRequest{}, false
	}
	req.Coords = coords
	req.Filters = extractFireFilters(message)
	req.DataType = extractDataType(message)
	req.AvalancheFilter = extractForecastFilter(message)
	return req, true
}

func extractCoords(message string) (types.Coordinate, bool) {
	if c, ok := fromURLs(message); ok {
		return c, true
	}
	if m := trailingBracket.FindStringSubmatch(message); m != nil {
		if c, ok := pairFromStrings(m[1], m[2]); ok {
			return c, true
		}
	}
	for _, m := range anyPair.FindAllStringSubmatch(message, -1) {
		if c, ok := pairFromStrings(m[1], m[2]); ok {
			return c, true
		}
	}
	if c, ok := fromDegreeHemisphere(message); ok {
		return c, true
	}
	return types.Coordinate{}, false
}

func pairFromStrings(latS, lonS string) (types.Coordinate, bool) {
	lat, err1 := strconv.ParseFloat(latS, 64)
	lon, err2 := strconv.ParseFloat(lonS, 64)
	if err1 != nil || err2 != nil {
		return types.Coordinate{}, false
	}
	c := types.NewCoordinate(lat, lon)
	return c, c.Valid()
}

func fromURLs(message string) (types.Coordinate, bool) {
	for _, tok := range urlToken.FindAllString(message, -1) {
		u, err := url.Parse(strings.TrimRight(tok, ").,;"))
		if err != nil {
			continue
		}
		host := strings.ToLower(u.Hostname())
		switch {
		case strings.Contains(host, "maps.apple.com"):
			if c, ok := coordsFromApple(u); ok {
				return c, true
			}
		case strings.Contains(host, "google.") || strings.Contains(host, "goo.gl"):
			if strings.Contains(u.Path, "/maps") || strings.Contains(host, "goo.gl") {
				if c, ok := coordsFromGoogle(u); ok {
					return c, true
				}
			}
		}
	}
	return types.Coordinate{}, false
}

func coordsFromApple(u *url.URL) (types.Coordinate, bool) {
	coord := u.Query().Get("coordinate")
	if coord == "" {
		return types.Coordinate{}, false
	}
	parts := strings.SplitN(coord, ",", 2)
	if len(parts) != 2 {
		return types.Coordinate{}, false
	}
	return pairFromStrings(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
}

var googleAtPattern = regexp.MustCompile(`@(-?\d{1,3}(?:\.\d+)?),(-?\d{1,3}(?:\.\d+)?)`)

func coordsFromGoogle(u *url.URL) (types.Coordinate, bool) {
	if m := googleAtPattern.FindStringSubmatch(u.Path); m != nil {
		if c, ok := pairFromStrings(m[1], m[2]); ok {
			return c, true
		}
	}
	q := u.Query().Get("q")
	if q == "" {
		q = u.Query().Get("query")
	}
	if q == "" {
		return types.Coordinate{}, false
	}
	parts := strings.SplitN(q, ",", 2)
	if len(parts) != 2 {
		return types.Coordinate{}, false
	}
	return pairFromStrings(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
}

func fromDegreeHemisphere(message string) (types.Coordinate, bool) {
	if m := degHemiA.FindStringSubmatch(message); m != nil {
		return coordFromHemiMatch(m[1], m[2], m[3], m[4])
	}
	if m := degHemiB.FindStringSubmatch(message); m != nil {
		// Group order here is hemiLat, numLat, hemiLon, numLon.
		return coordFromHemiMatch(m[2], m[1], m[4], m[3])
	}
	return types.Coordinate{}, false
}

func coordFromHemiMatch(numLat, hemiLat, numLon, hemiLon string) (types.Coordinate, bool) {
	lat, err1 := strconv.ParseFloat(numLat, 64)
	lon, err2 := strconv.ParseFloat(numLon, 64)
	if err1 != nil || err2 != nil {
		return types.Coordinate{}, false
	}
	lat = applyHemisphere(lat, hemiLat)
	lon = applyHemisphere(lon, hemiLon)
	c := types.NewCoordinate(lat, lon)
	return c, c.Valid()
}

// applyHemisphere mirrors _apply_hemisphere: the hemisphere letter
// overrides any sign already present in the parsed number.
func applyHemisphere(value float64, hemi string) float64 {
	v := value
	if v < 0 {
		v = -v
	}
	switch strings.ToUpper(hemi) {
	case "S", "W":
		return -v
	default:
		return v
	}
}

func extractFireFilters(message string) types.Filters {
	var f types.Filters
	switch {
	case wordActive.MatchString(message):
		f.Status, f.HasStatus = "active", true
	case wordManaged.MatchString(message):
		f.Status, f.HasStatus = "managed", true
	case wordControl.MatchString(message):
		f.Status, f.HasStatus = "controlled", true
	case wordOut.MatchString(message):
		f.Status, f.HasStatus = "out", true
	case wordAll.MatchString(message):
		f.Status, f.HasStatus = "all", true
	}

	if m := distanceToken.FindStringSubmatch(message); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			if strings.EqualFold(m[2], "mi") {
				n *= milesPerKM
			}
			f.DistanceKM, f.HasDistance = n, true
		}
	}
	return f
}

func extractDataType(message string) types.DataType {
	switch {
	case wordAvalanche.MatchString(message):
		return types.DataAvalanche
	case wordFire.MatchString(message):
		return types.DataFire
	default:
		return types.DataAuto
	}
}

func extractForecastFilter(message string) types.ForecastFilter {
	switch {
	case wordCurrent.MatchString(message):
		return types.ForecastCurrent
	case wordToday.MatchString(message):
		return types.ForecastToday
	case wordTomorrow.MatchString(message):
		return types.ForecastTomorrow
	case wordAll.MatchString(message):
		return types.ForecastAll
	default:
		return types.ForecastCurrent
	}
}
