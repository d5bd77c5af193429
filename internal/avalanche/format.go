package avalanche

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"treksafer/internal/types"
)

// ResolveDates applies the avalanche date filter (§4.D) against doc's
// available forecast dates, given the current instant and the provider's
// forecast cutoff hour. An unrecognized filter value defaults to
// ForecastCurrent, per the spec text overriding
// original_source/app/avalanche/report.py's actual (looser) fallback.
func ResolveDates(doc *types.ForecastDocument, filter types.ForecastFilter, now time.Time, cutoffHour int) []string {
	loc, err := time.LoadLocation(doc.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := local.Format("2006-01-02")
	tomorrow := local.AddDate(0, 0, 1).Format("2006-01-02")

	switch filter {
	case types.ForecastToday:
		return filterExisting(doc, []string{today})
	case types.ForecastTomorrow:
		return filterExisting(doc, []string{tomorrow})
	case types.ForecastAll:
		var dates []string
		for d := range doc.Forecasts {
			dates = append(dates, d)
		}
		sort.Strings(dates)
		return dates
	default: // ForecastCurrent and any unrecognized value
		if local.Hour() >= cutoffHour {
			return filterExisting(doc, []string{tomorrow})
		}
		return filterExisting(doc, []string{today})
	}
}

func filterExisting(doc *types.ForecastDocument, dates []string) []string {
	var out []string
	for _, d := range dates {
		if _, ok := doc.Forecasts[d]; ok {
			out = append(out, d)
		}
	}
	return out
}

// FormatForecast renders doc restricted to dates, per §4.D's Formatting
// rule: header with region, a single "Date:" line for one date or
// "Issued:" for many, per-date danger rating lines, then one shared
// "Problems:" section.
func FormatForecast(doc *types.ForecastDocument, dates []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Avalanche Forecast: %s\n", doc.Region)

	if len(dates) == 1 {
		fmt.Fprintf(&b, "Date: %s\n", dates[0])
	} else if len(dates) > 1 {
		fmt.Fprintf(&b, "Issued: %s\n", doc.DateIssued)
	}
	b.WriteString("\n")

	indent := "  "
	if len(dates) > 1 {
		indent = "    "
	}
	for _, d := range dates {
		df := doc.Forecasts[d]
		if len(dates) > 1 {
			fmt.Fprintf(&b, "Date: %s\n", d)
		}
		b.WriteString("Danger Ratings:\n")
		fmt.Fprintf(&b, "%sAlpine: %s\n", indent, df.Alpine)
		fmt.Fprintf(&b, "%sTreeline: %s\n", indent, df.Treeline)
		fmt.Fprintf(&b, "%sBelow Treeline: %s\n", indent, df.BelowTreeline)
		b.WriteString("\n")
	}

	b.WriteString(FormatProblems(doc.Problems))
	return strings.TrimRight(b.String(), "\n")
}

// FormatProblems renders the shared problems section, omitting the header
// entirely when there are no problems to report.
func FormatProblems(problems []types.AvalancheProblem) string {
	if len(problems) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Problems:\n")
	for _, p := range problems {
		fmt.Fprintf(&b, "  - %s\n", p.Type)
		if len(p.Elevations) > 0 {
			fmt.Fprintf(&b, "    Elevations: %s\n", strings.Join(p.Elevations, ", "))
		}
		if len(p.Aspects) > 0 {
			fmt.Fprintf(&b, "    Aspects: %s\n", strings.Join(p.Aspects, ", "))
		}
		if p.Likelihood != "" || p.SizeMin != "" || p.SizeMax != "" {
			fmt.Fprintf(&b, "    %s, Size %s-%s\n", p.Likelihood, p.SizeMin, p.SizeMax)
		}
	}
	return b.String()
}
