package reply

import "fmt"

// AQILine renders the optional air-quality prefix line. Callers only call
// this when include_aqi is set and the fetch succeeded (§4.G step 3).
func AQILine(value int) string {
	return fmt.Sprintf("AQI: %d", value)
}

// WithAQI prepends the AQI line, if present, ahead of body.
func WithAQI(aqiLine string, body string) string {
	if aqiLine == "" {
		return body
	}
	return aqiLine + "\n\n" + body
}
