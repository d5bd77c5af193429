package avalanche

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"treksafer/internal/geo"
	"treksafer/internal/timezone"
	"treksafer/internal/types"
)

// CanadaProvider covers Canadian subregions via a polygon set loaded once
// at construction and a per-point REST forecast endpoint, grounded on
// original_source/app/avalanche/canada.py.
type CanadaProvider struct {
	logger     *slog.Logger
	index      *geo.Index
	subregions geo.BoundaryLayer
	httpClient httpGetter
	tz         timezone.Service // may be nil; used only as a fallback
	apiBase    string           // template containing "{lang}"
	lang       string
	bufferKM   float64
	cutoffHour int
}

func NewCanadaProvider(logger *slog.Logger, index *geo.Index, subregions geo.BoundaryLayer, httpClient httpGetter, tz timezone.Service, apiBase, lang string, bufferKM float64, cutoffHour int) *CanadaProvider {
	return &CanadaProvider{
		logger:     logger.With("component", "avalanche.Canada"),
		index:      index,
		subregions: subregions,
		httpClient: httpClient,
		tz:         tz,
		apiBase:    apiBase,
		lang:       lang,
		bufferKM:   bufferKM,
		cutoffHour: cutoffHour,
	}
}

func (p *CanadaProvider) Name() string    { return "canada" }
func (p *CanadaProvider) CutoffHour() int { return p.cutoffHour }

func (p *CanadaProvider) DistanceFromRegion(point types.Coordinate) geo.RegionDistance {
	return p.index.DistanceKM(p.subregions, geo.ToMercator(point), p.bufferKM)
}

func (p *CanadaProvider) regionName(point types.Coordinate) string {
	if name, found := p.index.CoverOrNearest(p.subregions, geo.ToMercator(point), p.bufferKM); found {
		return name
	}
	return ""
}

func (p *CanadaProvider) GetForecast(point types.Coordinate) (*types.ForecastDocument, error) {
	base := strings.ReplaceAll(p.apiBase, "{lang}", p.lang)
	u, err := url.Parse(base + "/products/point")
	if err != nil {
		return nil, fmt.Errorf("build canada forecast url: %w", err)
	}
	q := u.Query()
	q.Set("lat", fmt.Sprintf("%.6f", point.Latitude))
	q.Set("long", fmt.Sprintf("%.6f", point.Longitude))
	u.RawQuery = q.Encode()

	p.logger.Debug("fetching canada forecast", "url", u.String())
	body, err := p.httpClient.Get(u.String())
	if err != nil {
		return nil, fmt.Errorf("fetch canada forecast: %w", err)
	}

	var resp canadaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode canada forecast: %w", err)
	}
	if resp.Report.ID == "" {
		return nil, fmt.Errorf("canada forecast has no report id")
	}
	return p.mapForecast(point, &resp), nil
}

type canadaResponse struct {
	Report struct {
		ID            string `json:"id"`
		Timezone      string `json:"timezone"`
		Title         string `json:"title"`
		DateIssued    string `json:"dateIssued"`
		DangerRatings []struct {
			Date struct {
				Value string `json:"value"`
			} `json:"date"`
			Ratings map[string]struct {
				Rating struct {
					Display string `json:"display"`
				} `json:"rating"`
			} `json:"ratings"`
		} `json:"dangerRatings"`
		Problems []struct {
			Type struct {
				Display string `json:"display"`
			} `json:"type"`
			Data struct {
				Elevations []struct {
					Display string `json:"display"`
				} `json:"elevations"`
				Aspects []struct {
					Value string `json:"value"`
				} `json:"aspects"`
				Likelihood struct {
					Display string `json:"display"`
				} `json:"likelihood"`
				ExpectedSize struct {
					Min string `json:"min"`
					Max string `json:"max"`
				} `json:"expectedSize"`
			} `json:"data"`
		} `json:"problems"`
	} `json:"report"`
}

func (p *CanadaProvider) mapForecast(point types.Coordinate, resp *canadaResponse) *types.ForecastDocument {
	doc := &types.ForecastDocument{
		Timezone:   resp.Report.Timezone,
		DateIssued: resp.Report.DateIssued,
		Forecasts:  map[string]types.DangerForecast{},
	}
	if doc.Timezone == "" {
		if p.tz != nil {
			if tz, err := p.tz.GetTimezone(point); err == nil {
				doc.Timezone = tz
			}
		}
		if doc.Timezone == "" {
			doc.Timezone = "America/Vancouver"
		}
	}

	doc.Region = p.regionName(point)
	if doc.Region == "" {
		doc.Region = resp.Report.Title
	}
	if doc.Region == "" {
		doc.Region = "Unknown"
	}

	for _, dr := range resp.Report.DangerRatings {
		dateStr := parseISODate(dr.Date.Value, p.logger)
		if dateStr == "" {
			continue
		}
		df := types.DangerForecast{
			Alpine:        "No Rating",
			Treeline:      "No Rating",
			BelowTreeline: "No Rating",
		}
		for band, rating := range dr.Ratings {
			display := rating.Rating.Display
			if display == "" {
				display = "No Rating"
			}
			switch band {
			case "alp":
				df.Alpine = display
			case "tln":
				df.Treeline = display
			case "btl":
				df.BelowTreeline = display
			default:
				p.logger.Warn("unrecognized danger rating band", "band", band)
			}
		}
		doc.Forecasts[dateStr] = df
	}

	for _, raw := range resp.Report.Problems {
		prob := types.AvalancheProblem{
			Type:       raw.Type.Display,
			Likelihood: raw.Data.Likelihood.Display,
			SizeMin:    raw.Data.ExpectedSize.Min,
			SizeMax:    raw.Data.ExpectedSize.Max,
		}
		for _, e := range raw.Data.Elevations {
			prob.Elevations = append(prob.Elevations, e.Display)
		}
		for _, a := range raw.Data.Aspects {
			prob.Aspects = append(prob.Aspects, a.Value)
		}
		doc.Problems = append(doc.Problems, prob)
	}

	return doc
}

func parseISODate(value string, logger *slog.Logger) string {
	if value == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02T15:04:05Z", value)
	if err != nil {
		logger.Warn("unparsable danger rating date", "value", value, "error", err)
		return ""
	}
	return t.Format("2006-01-02")
}
