package avalanche

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"treksafer/internal/geo"
	"treksafer/internal/types"
)

// QuebecProvider covers a single named region (Chic-Chocs) gated by
// containment in the Quebec province polygon, grounded on
// original_source/app/avalanche/quebec.py.
type QuebecProvider struct {
	logger     *slog.Logger
	index      *geo.Index
	province   geo.BoundaryLayer // canada_provinces.zip filtered to postal=="QC"
	httpClient httpGetter
	apiBase    string // template containing "{lang}"
	lang       string
	bufferKM   float64
	cutoffHour int
}

const quebecRegion = "Chic-Chocs"
const quebecTimezone = "America/Toronto"

func NewQuebecProvider(logger *slog.Logger, index *geo.Index, province geo.BoundaryLayer, httpClient httpGetter, apiBase, lang string, bufferKM float64, cutoffHour int) *QuebecProvider {
	return &QuebecProvider{
		logger:     logger.With("component", "avalanche.Quebec"),
		index:      index,
		province:   province,
		httpClient: httpClient,
		apiBase:    apiBase,
		lang:       lang,
		bufferKM:   bufferKM,
		cutoffHour: cutoffHour,
	}
}

func (p *QuebecProvider) Name() string    { return "quebec" }
func (p *QuebecProvider) CutoffHour() int { return p.cutoffHour }

func (p *QuebecProvider) DistanceFromRegion(point types.Coordinate) geo.RegionDistance {
	return p.index.DistanceKM(p.province, geo.ToMercator(point), p.bufferKM)
}

type quebecResponse struct {
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
		Type string `json:"type"`
	} `json:"problems"`
	DateIssued string `json:"dateIssued"`
}

func (p *QuebecProvider) GetForecast(point types.Coordinate) (*types.ForecastDocument, error) {
	url := strings.ReplaceAll(p.apiBase, "{lang}", p.lang)
	p.logger.Debug("fetching quebec forecast", "url", url)
	body, err := p.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch quebec forecast: %w", err)
	}

	var resp quebecResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode quebec forecast: %w", err)
	}

	doc := &types.ForecastDocument{
		Region:     quebecRegion,
		DateIssued: resp.DateIssued,
		Timezone:   quebecTimezone,
		Forecasts:  map[string]types.DangerForecast{},
	}

	for _, dr := range resp.DangerRatings {
		dateStr := parseISODate(dr.Date.Value, p.logger)
		if dateStr == "" {
			continue
		}
		df := types.DangerForecast{Alpine: "No Rating", Treeline: "No Rating", BelowTreeline: "No Rating"}
		if r, ok := dr.Ratings["alp"]; ok && r.Rating.Display != "" {
			df.Alpine = r.Rating.Display
		}
		if r, ok := dr.Ratings["tln"]; ok && r.Rating.Display != "" {
			df.Treeline = r.Rating.Display
		}
		if r, ok := dr.Ratings["btl"]; ok && r.Rating.Display != "" {
			df.BelowTreeline = r.Rating.Display
		}
		doc.Forecasts[dateStr] = df
	}

	for _, raw := range resp.Problems {
		doc.Problems = append(doc.Problems, types.AvalancheProblem{Type: raw.Type})
	}
	return doc, nil
}
