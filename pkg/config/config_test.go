package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://discord.com/app", cfg.Browser.URL)
	assert.True(t, cfg.Browser.Stealth)
	assert.False(t, cfg.Browser.Headless)

	assert.Equal(t, 100*time.Millisecond, cfg.Scan.Interval)
	assert.Equal(t, `button[data-type="emoji"]`, cfg.Scan.Selector)
	assert.Equal(t, "data-id", cfg.Scan.IDAttribute)
	assert.Equal(t, "data-name", cfg.Scan.NameAttribute)
	assert.Equal(t, "aria-label", cfg.Scan.LabelAttribute)

	assert.Equal(t, "emoji-data.json", cfg.Export.FileName)
	assert.Equal(t, "file", cfg.Export.Delivery)
	assert.True(t, cfg.Export.SaveOnInterrupt)

	assert.Equal(t, 96, cfg.Download.ImageSize)
	assert.Equal(t, "#313338", cfg.Download.Background)
	assert.Contains(t, cfg.Download.URLTemplate, "{id}")

	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("EMOJISCRAPER_SCAN_INTERVAL", "250")
	t.Setenv("EMOJISCRAPER_SNAPSHOT", "/tmp/page.html")
	t.Setenv("EMOJISCRAPER_OUTPUT_DIR", "/tmp/out")
	t.Setenv("EMOJISCRAPER_CONCURRENT_DOWNLOADS", "6")
	t.Setenv("EMOJISCRAPER_HEADLESS", "true")
	t.Setenv("EMOJISCRAPER_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 250*time.Millisecond, cfg.Scan.Interval)
	assert.Equal(t, "/tmp/page.html", cfg.Scan.Snapshot)
	assert.Equal(t, "/tmp/out", cfg.Export.Directory)
	assert.Equal(t, 6, cfg.Download.ConcurrentDownloads)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvDurationString(t *testing.T) {
	t.Setenv("EMOJISCRAPER_SCAN_INTERVAL", "2s")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, 2*time.Second, cfg.Scan.Interval)
}

func TestLoadFromEnvInvalidNumber(t *testing.T) {
	t.Setenv("EMOJISCRAPER_CONCURRENT_DOWNLOADS", "many")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMOJISCRAPER_CONCURRENT_DOWNLOADS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Scan.Interval = 0 },
			wantErr: "scan interval must be positive",
		},
		{
			name:    "pattern without capture group",
			mutate:  func(c *Config) { c.Scan.LabelPattern = `^:.*: from .*$` },
			wantErr: "exactly one capture group",
		},
		{
			name:    "negative burst",
			mutate:  func(c *Config) { c.Download.Burst = -1 },
			wantErr: "burst cannot be negative",
		},
		{
			name:    "broken pattern",
			mutate:  func(c *Config) { c.Scan.LabelPattern = `(` },
			wantErr: "invalid label pattern",
		},
		{
			name:    "unknown delivery",
			mutate:  func(c *Config) { c.Export.Delivery = "email" },
			wantErr: "delivery must be file or browser",
		},
		{
			name: "browser delivery with snapshot",
			mutate: func(c *Config) {
				c.Export.Delivery = "browser"
				c.Scan.Snapshot = "page.html"
			},
			wantErr: "needs a live browser",
		},
		{
			name:    "too many downloads",
			mutate:  func(c *Config) { c.Download.ConcurrentDownloads = 64 },
			wantErr: "should not exceed 16",
		},
		{
			name:    "template without id",
			mutate:  func(c *Config) { c.Download.URLTemplate = "https://example.com/emoji.webp" },
			wantErr: "url template must contain {id}",
		},
		{
			name:    "bad background",
			mutate:  func(c *Config) { c.Download.Background = "grey" },
			wantErr: "invalid background color",
		},
		{
			name:    "negative mosaic weight",
			mutate:  func(c *Config) { c.Mosaic.ValueWeight = -0.5 },
			wantErr: "mosaic weights cannot be negative",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()

	cfg.MergeCommandLineFlags(map[string]interface{}{
		"snapshot":             "picker.html",
		"interval":             500 * time.Millisecond,
		"output":               "/flag/output",
		"concurrent-downloads": 7,
		"log-level":            "error",
		"tui":                  true,
		"no-color":             true,
	})

	assert.Equal(t, "picker.html", cfg.Scan.Snapshot)
	assert.Equal(t, 500*time.Millisecond, cfg.Scan.Interval)
	assert.Equal(t, "/flag/output", cfg.Export.Directory)
	assert.Equal(t, 7, cfg.Download.ConcurrentDownloads)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.True(t, cfg.UI.TUI)
	assert.False(t, cfg.UI.Color)
}

func TestMergeMosaicFlags(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "_mosaic_{we}_{r}_{hw}_{sw}_{vw}", cfg.Mosaic.Suffix)

	cfg.MergeCommandLineFlags(map[string]interface{}{
		"suffix":            "",
		"hue-weight":        0.0,
		"saturation-weight": 2.5,
	})

	assert.Equal(t, "", cfg.Mosaic.Suffix)
	assert.Equal(t, 0.0, cfg.Mosaic.HueWeight)
	assert.Equal(t, 2.5, cfg.Mosaic.SaturationWeight)
	assert.Equal(t, 1.0, cfg.Mosaic.ValueWeight)
}

func TestMergeCommandLineFlagsIgnoresAbsentKeys(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(nil)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Scan.Interval = 250 * time.Millisecond
	cfg.Scan.Selector = "div.emoji"
	cfg.Download.ConcurrentDownloads = 8
	cfg.Download.Headers = map[string]string{"Referer": "https://discord.com/"}

	require.NoError(t, cfg.Save(configPath))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(configPath))

	assert.Equal(t, 250*time.Millisecond, loaded.Scan.Interval)
	assert.Equal(t, "div.emoji", loaded.Scan.Selector)
	assert.Equal(t, 8, loaded.Download.ConcurrentDownloads)
	assert.Equal(t, map[string]string{"Referer": "https://discord.com/"}, loaded.Download.Headers)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan: [unterminated"), 0644))

	err := DefaultConfig().LoadFromFile(path)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to parse config file"))
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := `
scan:
  interval: 1s
  snapshot: from-file.html
export:
  directory: from-file
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0644))
	t.Setenv("EMOJISCRAPER_OUTPUT_DIR", "from-env")

	cfg, err := Load(path, map[string]interface{}{"snapshot": "from-flag.html"})
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Scan.Interval)
	assert.Equal(t, "from-env", cfg.Export.Directory)
	assert.Equal(t, "from-flag.html", cfg.Scan.Snapshot)
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#313338")
	require.NoError(t, err)
	assert.Equal(t, uint8(49), c.R)
	assert.Equal(t, uint8(51), c.G)
	assert.Equal(t, uint8(56), c.B)
	assert.Equal(t, uint8(255), c.A)

	_, err = ParseHexColor("#abc")
	assert.Error(t, err)
	_, err = ParseHexColor("#gggggg")
	assert.Error(t, err)
}
