package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the tool reads.
const EnvPrefix = "EMOJISCRAPER_"

// Config holds all configuration options for the emoji scraper
type Config struct {
	// Browser that renders the chat application
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// How the page is scanned for emoji elements
	Scan ScanConfig `yaml:"scan" json:"scan"`

	// Where and how emoji-data.json is delivered
	Export ExportConfig `yaml:"export" json:"export"`

	// Emoji image download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Emoji mosaic matching
	Mosaic MosaicConfig `yaml:"mosaic" json:"mosaic"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Terminal UI preferences
	UI UIConfig `yaml:"ui" json:"ui"`
}

// BrowserConfig controls the Chrome instance driven through CDP
type BrowserConfig struct {
	URL               string        `yaml:"url" json:"url"`
	RemoteURL         string        `yaml:"remote_url" json:"remote_url"`
	Headless          bool          `yaml:"headless" json:"headless"`
	Stealth           bool          `yaml:"stealth" json:"stealth"`
	UserDataDir       string        `yaml:"user_data_dir" json:"user_data_dir"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	KeepOpen          bool          `yaml:"keep_open" json:"keep_open"`
}

// ScanConfig describes the host DOM contract and the polling cadence
type ScanConfig struct {
	Interval       time.Duration `yaml:"interval" json:"interval"`
	Selector       string        `yaml:"selector" json:"selector"`
	IDAttribute    string        `yaml:"id_attribute" json:"id_attribute"`
	NameAttribute  string        `yaml:"name_attribute" json:"name_attribute"`
	LabelAttribute string        `yaml:"label_attribute" json:"label_attribute"`
	LabelPattern   string        `yaml:"label_pattern" json:"label_pattern"`
	FailFast       bool          `yaml:"fail_fast" json:"fail_fast"`
	// Snapshot is a saved HTML page scanned instead of a live browser tab.
	Snapshot string `yaml:"snapshot" json:"snapshot"`
}

// ExportConfig holds export delivery configuration
type ExportConfig struct {
	Directory       string `yaml:"directory" json:"directory"`
	FileName        string `yaml:"file_name" json:"file_name"`
	Delivery        string `yaml:"delivery" json:"delivery"`
	SaveOnInterrupt bool   `yaml:"save_on_interrupt" json:"save_on_interrupt"`
}

// DownloadConfig holds emoji image download configuration
type DownloadConfig struct {
	URLTemplate         string        `yaml:"url_template" json:"url_template"`
	FilePattern         string        `yaml:"file_pattern" json:"file_pattern"`
	ConcurrentDownloads int           `yaml:"concurrent_downloads" json:"concurrent_downloads"`
	DownloadTimeout     time.Duration `yaml:"download_timeout" json:"download_timeout"`
	RequestsPerMinute   int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	Burst               int           `yaml:"burst" json:"burst"`
	MaxRetries          int           `yaml:"max_retries" json:"max_retries"`
	ImageSize           int           `yaml:"image_size" json:"image_size"`
	Background          string        `yaml:"background" json:"background"`
	// Headers are added to every CDN request.
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// MosaicConfig holds the mosaic defaults. Suffix may use the {we}, {r},
// {hw}, {sw} and {vw} placeholders.
type MosaicConfig struct {
	Suffix           string  `yaml:"suffix" json:"suffix"`
	HueWeight        float64 `yaml:"hue_weight" json:"hue_weight"`
	SaturationWeight float64 `yaml:"saturation_weight" json:"saturation_weight"`
	ValueWeight      float64 `yaml:"value_weight" json:"value_weight"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// UIConfig holds terminal presentation preferences
type UIConfig struct {
	TUI   bool `yaml:"tui" json:"tui"`
	Color bool `yaml:"color" json:"color"`
	Quiet bool `yaml:"quiet" json:"quiet"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			URL:               "https://discord.com/app",
			Headless:          false,
			Stealth:           true,
			UserDataDir:       defaultUserDataDir(),
			NavigationTimeout: 60 * time.Second,
		},
		Scan: ScanConfig{
			Interval:       100 * time.Millisecond,
			Selector:       `button[data-type="emoji"]`,
			IDAttribute:    "data-id",
			NameAttribute:  "data-name",
			LabelAttribute: "aria-label",
			LabelPattern:   `^:.*?: from (.*)$`,
		},
		Export: ExportConfig{
			Directory:       ".",
			FileName:        "emoji-data.json",
			Delivery:        "file",
			SaveOnInterrupt: true,
		},
		Download: DownloadConfig{
			URLTemplate:         "https://cdn.discordapp.com/emojis/{id}.webp?size=96&quality=lossless",
			FilePattern:         "{id}.png",
			ConcurrentDownloads: 4,
			DownloadTimeout:     30 * time.Second,
			RequestsPerMinute:   120,
			MaxRetries:          3,
			ImageSize:           96,
			Background:          "#313338",
		},
		Mosaic: MosaicConfig{
			Suffix:           "_mosaic_{we}_{r}_{hw}_{sw}_{vw}",
			HueWeight:        1,
			SaturationWeight: 1,
			ValueWeight:      1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			Color: true,
		},
	}
}

func defaultUserDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "emojiscraper", "chrome")
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	setString := func(key string, dst *string) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = strings.ToLower(v) == "true" || v == "1"
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			d, err := parseInterval(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	setString("BROWSER_URL", &c.Browser.URL)
	setString("REMOTE_URL", &c.Browser.RemoteURL)
	setBool("HEADLESS", &c.Browser.Headless)
	setString("USER_DATA_DIR", &c.Browser.UserDataDir)

	setDuration("SCAN_INTERVAL", &c.Scan.Interval)
	setString("SELECTOR", &c.Scan.Selector)
	setString("LABEL_PATTERN", &c.Scan.LabelPattern)
	setString("SNAPSHOT", &c.Scan.Snapshot)
	setBool("FAIL_FAST", &c.Scan.FailFast)

	setString("OUTPUT_DIR", &c.Export.Directory)
	setString("DELIVERY", &c.Export.Delivery)

	setInt("CONCURRENT_DOWNLOADS", &c.Download.ConcurrentDownloads)
	setInt("REQUESTS_PER_MINUTE", &c.Download.RequestsPerMinute)
	setInt("BURST", &c.Download.Burst)

	setString("MOSAIC_SUFFIX", &c.Mosaic.Suffix)

	setString("LOG_LEVEL", &c.Logging.Level)
	setString("LOG_FILE", &c.Logging.File)

	return errors.Join(errs...)
}

// parseInterval accepts a Go duration or a bare number of milliseconds.
func parseInterval(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".emojiscraper.yaml",
		".emojiscraper.yml",
		filepath.Join(home, ".config", "emojiscraper", "config.yaml"),
		filepath.Join(home, ".config", "emojiscraper", "config.yml"),
		filepath.Join(home, ".emojiscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Scan.Interval <= 0 {
		errs = append(errs, errors.New("scan interval must be positive"))
	}
	if c.Scan.Selector == "" {
		errs = append(errs, errors.New("scan selector is required"))
	}
	if c.Scan.IDAttribute == "" || c.Scan.NameAttribute == "" || c.Scan.LabelAttribute == "" {
		errs = append(errs, errors.New("id, name and label attributes are required"))
	}
	if re, err := regexp.Compile(c.Scan.LabelPattern); err != nil {
		errs = append(errs, fmt.Errorf("invalid label pattern: %w", err))
	} else if re.NumSubexp() != 1 {
		errs = append(errs, errors.New("label pattern must have exactly one capture group"))
	}
	if c.Scan.Snapshot == "" && c.Browser.URL == "" && c.Browser.RemoteURL == "" {
		errs = append(errs, errors.New("browser url is required when no snapshot is given"))
	}

	if c.Export.Directory == "" {
		errs = append(errs, errors.New("export directory is required"))
	}
	if c.Export.FileName == "" {
		errs = append(errs, errors.New("export file name is required"))
	}
	validDelivery := map[string]bool{"file": true, "browser": true}
	if !validDelivery[strings.ToLower(c.Export.Delivery)] {
		errs = append(errs, errors.New("delivery must be file or browser"))
	}
	if strings.EqualFold(c.Export.Delivery, "browser") && c.Scan.Snapshot != "" {
		errs = append(errs, errors.New("browser delivery needs a live browser, not a snapshot"))
	}

	if c.Download.ConcurrentDownloads <= 0 {
		errs = append(errs, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.ConcurrentDownloads > 16 {
		errs = append(errs, errors.New("concurrent downloads should not exceed 16"))
	}
	if c.Download.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.Download.Burst < 0 {
		errs = append(errs, errors.New("burst cannot be negative"))
	}
	if c.Download.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.Download.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.ImageSize <= 0 {
		errs = append(errs, errors.New("image size must be positive"))
	}
	if !strings.Contains(c.Download.URLTemplate, "{id}") {
		errs = append(errs, errors.New("download url template must contain {id}"))
	}
	if !strings.Contains(c.Download.FilePattern, "{id}") {
		errs = append(errs, errors.New("download file pattern must contain {id}"))
	}
	if _, err := ParseHexColor(c.Download.Background); err != nil {
		errs = append(errs, err)
	}

	if c.Mosaic.HueWeight < 0 || c.Mosaic.SaturationWeight < 0 || c.Mosaic.ValueWeight < 0 {
		errs = append(errs, errors.New("mosaic weights cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["url"].(string); ok && v != "" {
		c.Browser.URL = v
	}
	if v, ok := flags["remote-url"].(string); ok && v != "" {
		c.Browser.RemoteURL = v
	}
	if v, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = v
	}
	if v, ok := flags["keep-open"].(bool); ok {
		c.Browser.KeepOpen = v
	}
	if v, ok := flags["interval"].(time.Duration); ok && v > 0 {
		c.Scan.Interval = v
	}
	if v, ok := flags["snapshot"].(string); ok && v != "" {
		c.Scan.Snapshot = v
	}
	if v, ok := flags["fail-fast"].(bool); ok {
		c.Scan.FailFast = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Export.Directory = v
	}
	if v, ok := flags["delivery"].(string); ok && v != "" {
		c.Export.Delivery = v
	}
	if v, ok := flags["concurrent-downloads"].(int); ok && v > 0 {
		c.Download.ConcurrentDownloads = v
	}
	if v, ok := flags["requests-per-minute"].(int); ok && v > 0 {
		c.Download.RequestsPerMinute = v
	}
	if v, ok := flags["burst"].(int); ok && v > 0 {
		c.Download.Burst = v
	}
	if v, ok := flags["suffix"].(string); ok {
		c.Mosaic.Suffix = v
	}
	if v, ok := flags["hue-weight"].(float64); ok {
		c.Mosaic.HueWeight = v
	}
	if v, ok := flags["saturation-weight"].(float64); ok {
		c.Mosaic.SaturationWeight = v
	}
	if v, ok := flags["value-weight"].(float64); ok {
		c.Mosaic.ValueWeight = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["tui"].(bool); ok {
		c.UI.TUI = v
	}
	if v, ok := flags["no-color"].(bool); ok && v {
		c.UI.Color = false
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".emojiscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
