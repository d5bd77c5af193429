// Package config implements the Configuration Model (H): a typed Settings
// record loaded once at process startup from a YAML file selected by
// TREKSAFER_ENV, placeholder-expanded against the environment, and bound
// strictly (unknown keys rejected). It follows the teacher's
// viper-plus-slog shape while adding the richer loader §4.H calls for:
// godotenv sidecar loading, ${VAR}/${VAR:-default} expansion, and
// UnmarshalExact.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"treksafer/internal/fires"
	"treksafer/internal/geo"
)

// Settings holds every typed field consumed by the request-processing
// pipeline and its transports (§3). It is constructed once by Load and
// never mutated afterward; every component that needs it receives it by
// reference at construction, per §9's "dependency-injected record" note.
type Settings struct {
	FireRadiusKM              float64 `mapstructure:"fire_radius"`
	MaxRadiusKM               float64 `mapstructure:"max_radius"`
	FireStatus                string  `mapstructure:"fire_status"`
	FireSizeHa                float64 `mapstructure:"fire_size"`
	IncludeAQI                bool    `mapstructure:"include_aqi"`
	AvalancheDistanceBufferKM float64 `mapstructure:"avalanche_distance_buffer"`

	RequestCacheTimeout time.Duration `mapstructure:"request_cache_timeout"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	CacheDir            string        `mapstructure:"cache_dir"`

	Shapefiles string             `mapstructure:"shapefiles"`
	Boundaries BoundariesConfig   `mapstructure:"boundaries"`
	Avalanche  AvalancheConfig    `mapstructure:"avalanche"`
	Data       []DataSourceConfig `mapstructure:"data"`
	Transports []TransportConfig  `mapstructure:"transports"`
	Log        LogConfig          `mapstructure:"log"`
}

// BoundariesConfig names the fixed boundary sets of §6's filesystem
// layout: world countries, Canadian provinces, and the avalanche Canada
// subregions index.
type BoundariesConfig struct {
	Countries          StaticLayerConfig `mapstructure:"countries"`
	CanadaProvinces    StaticLayerConfig `mapstructure:"canada_provinces"`
	CanadianSubregions StaticLayerConfig `mapstructure:"canadian_subregions"`
}

// StaticLayerConfig is the YAML shape of a geo.BoundaryLayer.
type StaticLayerConfig struct {
	Path        string `mapstructure:"path"`
	KeyField    string `mapstructure:"key_field"`
	NameField   string `mapstructure:"name_field"`
	FilterField string `mapstructure:"filter_field"`
	FilterValue string `mapstructure:"filter_value"`
}

// ToBoundaryLayer converts the YAML shape to the geo package's runtime type.
func (l StaticLayerConfig) ToBoundaryLayer() geo.BoundaryLayer {
	return geo.BoundaryLayer{
		Path:        l.Path,
		KeyField:    l.KeyField,
		NameField:   l.NameField,
		FilterField: l.FilterField,
		FilterValue: l.FilterValue,
	}
}

// AvalancheConfig holds the provider list. Providers is a slice, not a
// map, because §4.D's selection algorithm is order-sensitive ("first
// wins" on containment, ties among non-containing providers broken by
// distance) and a YAML mapping decodes into a Go map with no stable
// iteration order; the slice preserves the YAML document order as the
// insertion order spec.md refers to.
type AvalancheConfig struct {
	Providers []AvalancheProviderConfig `mapstructure:"providers"`
}

// AvalancheProviderConfig describes one configured provider entry. Kind
// selects which concrete Provider implementation (avalanche.CanadaProvider
// or avalanche.QuebecProvider) the entrypoint constructs from it.
type AvalancheProviderConfig struct {
	Region     string  `mapstructure:"region"`
	Kind       string  `mapstructure:"kind"` // "canada" or "quebec"
	APIBase    string  `mapstructure:"api_base"`
	Lang       string  `mapstructure:"lang"`
	CutoffHour int     `mapstructure:"cutoff_hour"`
	BufferKM   float64 `mapstructure:"buffer_km"` // 0 => use AvalancheDistanceBufferKM
}

// FieldMappingConfig is the YAML shape of a fires.FieldMapping.
type FieldMappingConfig struct {
	RawField  string `mapstructure:"raw_field"`
	Transform string `mapstructure:"transform"`
}

func (m FieldMappingConfig) toFieldMapping() fires.FieldMapping {
	return fires.FieldMapping{RawField: m.RawField, Transform: m.Transform}
}

// AuxAPIConfig is the YAML shape of a fires.AuxAPI.
type AuxAPIConfig struct {
	URLTemplate string                        `mapstructure:"url_template"`
	Fields      map[string]FieldMappingConfig `mapstructure:"fields"`
}

// DataSourceConfig is the YAML shape of one entry in `data` (§3's
// DataSource record).
type DataSourceConfig struct {
	Name             string                        `mapstructure:"name"`
	ShapefileDir     string                        `mapstructure:"shapefile_dir"`
	FilenameTemplate string                        `mapstructure:"filename_template"`
	Fields           map[string]FieldMappingConfig `mapstructure:"fields"`
	StatusMap        map[string]string             `mapstructure:"status_map"`
	Aux              *AuxAPIConfig                 `mapstructure:"aux"`
}

// ToDataSource converts the YAML shape to the fires package's runtime type.
func (d DataSourceConfig) ToDataSource() fires.DataSource {
	ds := fires.DataSource{
		Name:             d.Name,
		ShapefileDir:     d.ShapefileDir,
		FilenameTemplate: d.FilenameTemplate,
		StatusMap:        d.StatusMap,
	}
	if len(d.Fields) > 0 {
		ds.Fields = make(map[string]fires.FieldMapping, len(d.Fields))
		for k, v := range d.Fields {
			ds.Fields[k] = v.toFieldMapping()
		}
	}
	if d.Aux != nil {
		aux := &fires.AuxAPI{URLTemplate: d.Aux.URLTemplate}
		if len(d.Aux.Fields) > 0 {
			aux.Fields = make(map[string]fires.FieldMapping, len(d.Aux.Fields))
			for k, v := range d.Aux.Fields {
				aux.Fields[k] = v.toFieldMapping()
			}
		}
		ds.Aux = aux
	}
	return ds
}

// TransportConfig describes one entry in `transports`: a socket listener or
// an SMS gateway consumer (§6). Fields irrelevant to Type are left zero.
type TransportConfig struct {
	Type    string `mapstructure:"type"` // "socket" or "sms"
	Enabled bool   `mapstructure:"enabled"`

	// socket
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// sms
	ProjectID  string `mapstructure:"project_id"`
	APIToken   string `mapstructure:"api_token"`
	FromNumber string `mapstructure:"from_number"`
}

// LogConfig mirrors the teacher's log configuration exactly.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandPlaceholders resolves ${VAR} and ${VAR:-default} tokens against
// the process environment before the YAML is parsed, per §4.H and §6.
func expandPlaceholders(raw []byte) []byte {
	return placeholderPattern.ReplaceAllFunc(raw, func(tok []byte) []byte {
		m := placeholderPattern.FindSubmatch(tok)
		name, def := string(m[1]), string(m[3])
		if v, ok := os.LookupEnv(name); ok {
			return []byte(v)
		}
		return []byte(def)
	})
}

// loadDotenv loads the optional .env.<env> and .env sidecars (in that
// order) into the process environment before the placeholder expansion
// pass runs, per §4.H. Both files are optional; a missing file is not an
// error.
func loadDotenv(env string) {
	for _, path := range []string{".env." + env, ".env"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

// locateConfigFile finds the YAML variant for env, searching the same
// directories the teacher's viper.AddConfigPath chain does.
func locateConfigFile(env string) (string, error) {
	candidates := []string{
		filepath.Join("config", env+".yaml"),
		filepath.Join("config", env+".yml"),
		env + ".yaml",
		env + ".yml",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("no config file found for env %q (tried %v)", env, candidates)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("fire_radius", 50.0)
	v.SetDefault("max_radius", 100.0)
	v.SetDefault("fire_status", "controlled")
	v.SetDefault("fire_size", 1.0)
	v.SetDefault("include_aqi", false)
	v.SetDefault("avalanche_distance_buffer", 25.0)
	v.SetDefault("request_cache_timeout", "4h")
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("cache_dir", "cache")
	v.SetDefault("shapefiles", "shapefiles")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads, expands, and binds Settings for the environment named by
// TREKSAFER_ENV (default "dev"). Config validation is strict: unknown keys
// and enabled-but-incomplete transport entries are both rejected, per
// §4.H. A configuration error here is fatal, per §7.
func Load() (*Settings, error) {
	env := os.Getenv("TREKSAFER_ENV")
	if env == "" {
		env = "dev"
	}
	loadDotenv(env)

	path, err := locateConfigFile(env)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	expanded := expandPlaceholders(raw)

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	if err := v.ReadConfig(bytes.NewReader(expanded)); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	v.SetEnvPrefix("TREKSAFER")
	v.AutomaticEnv()

	var s Settings
	if err := v.UnmarshalExact(&s); err != nil {
		return nil, fmt.Errorf("bind config %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &s, nil
}

// Validate rejects configuration that would otherwise fail silently at
// runtime: an enabled transport missing the fields its Type requires.
func (s *Settings) Validate() error {
	for i, t := range s.Transports {
		if !t.Enabled {
			continue
		}
		switch t.Type {
		case "socket":
			if t.Host == "" || t.Port == 0 {
				return fmt.Errorf("transports[%d]: enabled socket transport requires host and port", i)
			}
		case "sms":
			if t.ProjectID == "" || t.APIToken == "" || t.FromNumber == "" {
				return fmt.Errorf("transports[%d]: enabled sms transport requires project_id, api_token, and from_number", i)
			}
		default:
			return fmt.Errorf("transports[%d]: unrecognized transport type %q", i, t.Type)
		}
	}
	for i, p := range s.Avalanche.Providers {
		if p.Kind != "canada" && p.Kind != "quebec" {
			return fmt.Errorf("avalanche.providers[%d]: unrecognized kind %q", i, p.Kind)
		}
	}
	return nil
}

// FireSources converts the configured data list to the runtime type the
// fire finder consumes.
func (s *Settings) FireSources() []fires.DataSource {
	out := make([]fires.DataSource, len(s.Data))
	for i, d := range s.Data {
		out[i] = d.ToDataSource()
	}
	return out
}

// ProviderBufferKM returns p's effective avalanche_distance_buffer: its
// own override if set, else the global default.
func (s *Settings) ProviderBufferKM(p AvalancheProviderConfig) float64 {
	if p.BufferKM > 0 {
		return p.BufferKM
	}
	return s.AvalancheDistanceBufferKM
}

// NewLogger builds a slog.Logger from LogConfig, exactly as the teacher's
// config.NewLogger does.
func (s *Settings) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(s.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(s.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
