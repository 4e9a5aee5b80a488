package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv is the environment variable holding the ENTSO-E security token
const APIKeyEnv = "ENTSOE_API_KEY"

// Config holds the application configuration
type Config struct {
	Entsoe     EntsoeConfig     `yaml:"entsoe"`
	Generation GenerationConfig `yaml:"generation"`
	Plants     PlantsConfig     `yaml:"plants"`
	MQTT       MQTTConfig       `yaml:"mqtt,omitempty"`
	Metrics    MetricsConfig    `yaml:"metrics,omitempty"`
	Log        LogConfig        `yaml:"log,omitempty"`

	// APIKey is read from the environment, never from the file
	APIKey string `yaml:"-"`
}

// EntsoeConfig holds Transparency Platform API settings
type EntsoeConfig struct {
	BaseURL      string        `yaml:"base_url,omitempty" validate:"omitempty,url"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	LookbackDays int           `yaml:"lookback_days,omitempty" validate:"gte=0"` // how far back to search for the latest data (fallback: 30)
	WindowDays   int           `yaml:"window_days,omitempty" validate:"gte=0"`   // analysis window ending at the latest data (fallback: 10)
}

// GenerationConfig holds generation mix pipeline settings
type GenerationConfig struct {
	Countries  []string      `yaml:"countries,omitempty"`  // bidding zone codes (fallback: FR, DE_LU, IT, ES)
	OutputDir  string        `yaml:"output_dir,omitempty"` // chart directory (fallback: images)
	Resolution time.Duration `yaml:"resolution,omitempty"` // 0 = coarsest native resolution
	Timezone   string        `yaml:"timezone,omitempty"`   // day boundaries (fallback: Europe/Brussels)
	Chart      ChartConfig   `yaml:"chart,omitempty"`
}

// ChartConfig holds PNG chart dimensions
type ChartConfig struct {
	WidthInches  float64 `yaml:"width_inches,omitempty" validate:"gte=0"`
	HeightInches float64 `yaml:"height_inches,omitempty" validate:"gte=0"`
	DPI          int     `yaml:"dpi,omitempty" validate:"gte=0,lte=1200"`
}

// PlantsConfig holds plant map pipeline settings
type PlantsConfig struct {
	Database     string     `yaml:"database,omitempty"`     // plant database CSV (fallback: global_power_plant_database.csv)
	Countries    []string   `yaml:"countries,omitempty"`    // country_long values (fallback: Spain, France, Germany, Italy)
	Technologies []string   `yaml:"technologies,omitempty"` // primary_fuel values (fallback: Solar, Wind)
	Output       string     `yaml:"output,omitempty"`       // HTML file (fallback: renewable_plants_map.html)
	Center       [2]float64 `yaml:"center,omitempty"`
	Zoom         int        `yaml:"zoom,omitempty" validate:"gte=0,lte=19"`
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker" validate:"required_if=Enabled true"` // e.g., "localhost:1883"
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // fallback: energyanalysis
}

// MetricsConfig controls the node exporter textfile output
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"` // e.g., /var/lib/node_exporter/energyanalysis.prom
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format,omitempty" validate:"omitempty,oneof=console json"`
}

// Load reads the config file and the API key from the environment (and .env if present)
func Load(configPath string) (*Config, error) {
	// A missing .env is fine, the variable may come from the real environment
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case os.IsNotExist(err):
		// Defaults only
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg.APIKey = strings.TrimSpace(os.Getenv(APIKeyEnv))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// RequireAPIKey returns the API key or an error naming the variable to set
func (c *Config) RequireAPIKey() (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("missing API credential: set %s in the environment or .env", APIKeyEnv)
	}
	return c.APIKey, nil
}

// GetBaseURL returns the ENTSO-E API endpoint
func (c *Config) GetBaseURL() string {
	if c.Entsoe.BaseURL == "" {
		return "https://web-api.tp.entsoe.eu/api"
	}
	return c.Entsoe.BaseURL
}

// GetTimeout returns the HTTP timeout with a default of 60s
func (c *Config) GetTimeout() time.Duration {
	if c.Entsoe.Timeout <= 0 {
		return 60 * time.Second
	}
	return c.Entsoe.Timeout
}

// GetLookback returns how far back to search for the latest published data
func (c *Config) GetLookback() time.Duration {
	days := c.Entsoe.LookbackDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

// GetWindow returns the analysis window length
func (c *Config) GetWindow() time.Duration {
	days := c.Entsoe.WindowDays
	if days <= 0 {
		days = 10
	}
	return time.Duration(days) * 24 * time.Hour
}

// GetCountries returns the bidding zones to analyze
func (c *Config) GetCountries() []string {
	if len(c.Generation.Countries) == 0 {
		return []string{"FR", "DE_LU", "IT", "ES"}
	}
	return c.Generation.Countries
}

// GetOutputDir returns the chart output directory
func (c *Config) GetOutputDir() string {
	if c.Generation.OutputDir == "" {
		return "images"
	}
	return c.Generation.OutputDir
}

// GetLocation returns the timezone used for day boundaries
func (c *Config) GetLocation() (*time.Location, error) {
	name := c.Generation.Timezone
	if name == "" {
		name = "Europe/Brussels"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %s: %w", name, err)
	}
	return loc, nil
}

// GetChartSize returns width and height in inches plus DPI (fallback: 15x8 at 300 DPI)
func (c *Config) GetChartSize() (width, height float64, dpi int) {
	width, height, dpi = c.Generation.Chart.WidthInches, c.Generation.Chart.HeightInches, c.Generation.Chart.DPI
	if width <= 0 {
		width = 15
	}
	if height <= 0 {
		height = 8
	}
	if dpi <= 0 {
		dpi = 300
	}
	return width, height, dpi
}

// GetPlantDatabase returns the plant database CSV path
func (c *Config) GetPlantDatabase() string {
	if c.Plants.Database == "" {
		return "global_power_plant_database.csv"
	}
	return c.Plants.Database
}

// GetPlantCountries returns the countries shown on the map
func (c *Config) GetPlantCountries() []string {
	if len(c.Plants.Countries) == 0 {
		return []string{"Spain", "France", "Germany", "Italy"}
	}
	return c.Plants.Countries
}

// GetPlantTechnologies returns the technologies shown on the map
func (c *Config) GetPlantTechnologies() []string {
	if len(c.Plants.Technologies) == 0 {
		return []string{"Solar", "Wind"}
	}
	return c.Plants.Technologies
}

// GetMapOutput returns the HTML map path
func (c *Config) GetMapOutput() string {
	if c.Plants.Output == "" {
		return "renewable_plants_map.html"
	}
	return c.Plants.Output
}

// GetMapView returns the initial map center and zoom (fallback: Western Europe)
func (c *Config) GetMapView() (lat, lon float64, zoom int) {
	lat, lon, zoom = c.Plants.Center[0], c.Plants.Center[1], c.Plants.Zoom
	if lat == 0 && lon == 0 {
		lat, lon = 47, 5
	}
	if zoom == 0 {
		zoom = 5
	}
	return lat, lon, zoom
}

// GetTopicPrefix returns the MQTT topic prefix
func (c *Config) GetTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return "energyanalysis"
	}
	return c.MQTT.TopicPrefix
}

// GetLogLevel returns the log level
func (c *Config) GetLogLevel() string {
	if c.Log.Level == "" {
		return "info"
	}
	return c.Log.Level
}
