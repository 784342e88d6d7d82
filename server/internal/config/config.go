package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort     = 8059
	DefaultGRPCPort     = 50051
	DefaultDatasetPath  = "spacex_launch_dash.csv"
	DefaultSliderStep   = 1000
	DefaultShutdownWait = 10 * time.Second
	DefaultServiceName  = "launchdash"
)

// Config holds the whole launchdash configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds listener and authentication settings.
type ServerConfig struct {
	// HTTPPort serves the page, REST API, metrics and WebSocket sessions (default 8059).
	HTTPPort int `yaml:"http_port"`

	// GRPCPort serves the grpc.health.v1 service (default 50051).
	GRPCPort int `yaml:"grpc_port"`

	// ShutdownWait bounds graceful shutdown of the HTTP server.
	ShutdownWait time.Duration `yaml:"shutdown_wait"`

	// Auth configures how REST and WebSocket clients authenticate.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig controls client authentication on /api/ and /ws/.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header to read the key from. Defaults to "x-api-key".
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// DatasetConfig locates the launch CSV and names its columns.
type DatasetConfig struct {
	Path    string        `yaml:"path"`
	Columns ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig maps record fields to CSV header names.
type ColumnsConfig struct {
	Site                   string `yaml:"site"`
	PayloadMass            string `yaml:"payload_mass"`
	Class                  string `yaml:"class"`
	BoosterVersionCategory string `yaml:"booster_version_category"`
}

// DashboardConfig holds page content and control settings.
type DashboardConfig struct {
	// Title is the page heading.
	Title string `yaml:"title"`

	// SliderStep is the payload slider step and mark spacing in kg.
	SliderStep float64 `yaml:"slider_step"`

	// Sites overrides the dropdown entries. When empty, every site found in the
	// dataset is offered, labelled by its name.
	Sites []SiteOption `yaml:"sites"`

	// Questions is the static question/answer block shown under the charts.
	Questions []QA `yaml:"questions"`

	// PieFootnote and ScatterFootnote are shown under the two charts.
	PieFootnote     string `yaml:"pie_footnote"`
	ScatterFootnote string `yaml:"scatter_footnote"`

	// Footnote is shown at the bottom of the page.
	Footnote string `yaml:"footnote"`
}

// SiteOption is one dropdown entry.
type SiteOption struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// QA is one static question with its answer.
type QA struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// TracingConfig enables OTLP/HTTP trace export. Tracing is off unless
// Endpoint is set.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// LogConfig controls the slog level: debug | info | warn | error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel parses Level. Load has already validated it.
func (l LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// envOverrides are applied on top of the YAML file.
type envOverrides struct {
	HTTPPort        int    `env:"LAUNCHDASH_HTTP_PORT"`
	GRPCPort        int    `env:"LAUNCHDASH_GRPC_PORT"`
	DatasetPath     string `env:"LAUNCHDASH_DATASET"`
	LogLevel        string `env:"LAUNCHDASH_LOG_LEVEL"`
	TracingEndpoint string `env:"LAUNCHDASH_OTEL_ENDPOINT"`
}

// Load reads and parses the config file at path. An empty path skips the file
// and uses defaults. Environment overrides are applied before validation.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if ov.HTTPPort != 0 {
		cfg.Server.HTTPPort = ov.HTTPPort
	}
	if ov.GRPCPort != 0 {
		cfg.Server.GRPCPort = ov.GRPCPort
	}
	if ov.DatasetPath != "" {
		cfg.Dataset.Path = ov.DatasetPath
	}
	if ov.LogLevel != "" {
		cfg.Log.Level = ov.LogLevel
	}
	if ov.TracingEndpoint != "" {
		cfg.Tracing.Endpoint = ov.TracingEndpoint
	}
	return nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:     DefaultHTTPPort,
			GRPCPort:     DefaultGRPCPort,
			ShutdownWait: DefaultShutdownWait,
		},
		Dataset: DatasetConfig{
			Path: DefaultDatasetPath,
			Columns: ColumnsConfig{
				Site:                   "Launch Site",
				PayloadMass:            "Payload Mass (kg)",
				Class:                  "class",
				BoosterVersionCategory: "Booster Version Category",
			},
		},
		Dashboard: DashboardConfig{
			Title:      "SpaceX Launch Records Dashboard",
			SliderStep: DefaultSliderStep,
			Questions:  defaultQuestions(),
			Footnote:   "Answers are static and based on the overall dataset.",

			PieFootnote:     "This pie chart represents the success count for all launch sites.",
			ScatterFootnote: "This scatter chart represents the correlation between payload and launch success.",
		},
		Tracing: TracingConfig{ServiceName: DefaultServiceName},
		Log:     LogConfig{Level: "info"},
	}
}

func defaultQuestions() []QA {
	return []QA{
		{"Which site has the largest successful launches?", "CCAFS LC-40"},
		{"Which site has the highest launch success rate?", "KSC LC-39A"},
		{"Which payload range(s) has the highest launch success rate?", "0 to 1000 kg"},
		{"Which payload range(s) has the lowest launch success rate?", "8000 to 9000 kg"},
		{"Which F9 Booster version has the highest launch success rate?", "F9 B5"},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if cfg.Server.GRPCPort <= 0 || cfg.Server.GRPCPort > 65535 {
		return fmt.Errorf("server.grpc_port %d is out of range [1, 65535]", cfg.Server.GRPCPort)
	}
	if cfg.Server.GRPCPort == cfg.Server.HTTPPort {
		return fmt.Errorf("server.grpc_port and server.http_port must differ")
	}
	if cfg.Server.ShutdownWait < 0 {
		return fmt.Errorf("server.shutdown_wait must not be negative")
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}
	if cfg.Dataset.Path == "" {
		return fmt.Errorf("dataset.path is required")
	}
	c := cfg.Dataset.Columns
	if c.Site == "" || c.PayloadMass == "" || c.Class == "" || c.BoosterVersionCategory == "" {
		return fmt.Errorf("dataset.columns: all four column names are required")
	}
	if cfg.Dashboard.SliderStep <= 0 {
		return fmt.Errorf("dashboard.slider_step must be positive")
	}
	for i, s := range cfg.Dashboard.Sites {
		if s.Value == "" {
			return fmt.Errorf("dashboard.sites[%d]: value is required", i)
		}
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level %q: %w", cfg.Log.Level, err)
	}
	return nil
}
