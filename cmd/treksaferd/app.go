package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"treksafer/internal/aqi"
	"treksafer/internal/avalanche"
	"treksafer/internal/config"
	"treksafer/internal/fires"
	"treksafer/internal/geo"
	"treksafer/internal/httpcache"
	"treksafer/internal/router"
	"treksafer/internal/timezone"
	"treksafer/internal/transport"
)

// drainWindow bounds how long in-flight requests get to finish after a
// transport shutdown signal, per §5's cancellation policy.
const drainWindow = 5 * time.Second

// App wires every component named in spec.md §2 into a running daemon:
// the geospatial index, fire finder, avalanche dispatcher, AQI fetcher,
// router, and the configured set of transports.
type App struct {
	logger     *slog.Logger
	cfg        *config.Settings
	transports []transport.Transport
}

// New constructs the full dependency graph from cfg. Settings is
// immutable after Load; every component below receives it, or the pieces
// of it relevant to that component, at construction time only.
func New(logger *slog.Logger, cfg *config.Settings) (*App, error) {
	httpClient := httpcache.New(logger, cfg.CacheDir, cfg.RequestCacheTimeout, cfg.RequestTimeout)

	index := geo.NewIndex(logger, len(cfg.Data)+4)
	countries := cfg.Boundaries.Countries.ToBoundaryLayer()
	provinces := cfg.Boundaries.CanadaProvinces.ToBoundaryLayer()
	subregions := cfg.Boundaries.CanadianSubregions.ToBoundaryLayer()

	finder := fires.NewFinder(logger, index, countries, provinces, cfg.FireSources(), httpClient, cfg.MaxRadiusKM)

	tz, err := timezone.NewService()
	if err != nil {
		return nil, fmt.Errorf("init timezone service: %w", err)
	}

	dispatcher, err := buildDispatcher(logger, cfg, index, provinces, subregions, httpClient, tz)
	if err != nil {
		return nil, err
	}

	aqiClient := aqi.NewClient(logger, httpClient)
	rt := router.New(logger, cfg, finder, dispatcher, aqiClient)

	transports, err := buildTransports(logger, cfg, rt.Handle)
	if err != nil {
		return nil, err
	}

	return &App{logger: logger, cfg: cfg, transports: transports}, nil
}

// buildDispatcher constructs one avalanche.Provider per configured entry,
// in configuration order (§4.D provider selection is order-sensitive),
// and wraps them in a Dispatcher.
func buildDispatcher(logger *slog.Logger, cfg *config.Settings, index *geo.Index, provinces, subregions geo.BoundaryLayer, httpClient *httpcache.Client, tz timezone.Service) (*avalanche.Dispatcher, error) {
	var providers []avalanche.Provider
	for _, p := range cfg.Avalanche.Providers {
		bufferKM := cfg.ProviderBufferKM(p)
		switch p.Kind {
		case "canada":
			providers = append(providers, avalanche.NewCanadaProvider(logger, index, subregions, httpClient, tz, p.APIBase, p.Lang, bufferKM, p.CutoffHour))
		case "quebec":
			qcLayer := provinces
			qcLayer.FilterField = "postal"
			qcLayer.FilterValue = "QC"
			providers = append(providers, avalanche.NewQuebecProvider(logger, index, qcLayer, httpClient, p.APIBase, p.Lang, bufferKM, p.CutoffHour))
		default:
			return nil, fmt.Errorf("avalanche provider %q: unrecognized kind %q", p.Region, p.Kind)
		}
	}
	return avalanche.NewDispatcher(logger, providers), nil
}

// buildTransports constructs one transport.Transport per enabled entry in
// cfg.Transports. The SMS gateway client itself is an external
// collaborator (§1) this repo does not implement; an enabled sms
// transport fails startup with a clear error rather than silently
// dropping inbound messages.
func buildTransports(logger *slog.Logger, cfg *config.Settings, handler transport.Handler) ([]transport.Transport, error) {
	var transports []transport.Transport
	for _, t := range cfg.Transports {
		if !t.Enabled {
			continue
		}
		switch t.Type {
		case "socket":
			transports = append(transports, transport.NewSocket(logger, t.Host, t.Port, handler))
		case "sms":
			return nil, fmt.Errorf("sms transport enabled but no gateway client is configured for this deployment")
		}
	}
	if len(transports) == 0 {
		return nil, fmt.Errorf("no transports enabled in configuration")
	}
	return transports, nil
}

// Run starts every transport and blocks until ctx is canceled or a
// transport exits with an error. On cancellation, every transport is
// stopped and given drainWindow to finish in-flight requests before Run
// returns, per §5.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, len(a.transports))
	for _, t := range a.transports {
		t := t
		go func() { errCh <- t.Listen(ctx) }()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown requested, draining in-flight requests", "window", drainWindow)
		for _, t := range a.transports {
			t.Stop()
		}
		time.Sleep(drainWindow)
		return nil
	case err := <-errCh:
		for _, t := range a.transports {
			t.Stop()
		}
		if err != nil {
			return fmt.Errorf("transport exited: %w", err)
		}
		return nil
	}
}
