package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Recognized values for input.source.
const (
	SourceExcel    = "excel"
	SourcePostgres = "postgres"
)

// Defaults applied when the settings file leaves a field blank.
const (
	defaultChargeOffSheet = "Charge Off"
	defaultPrepaySheet    = "Prepay"
	defaultOutputDir      = "."
)

// Duration wraps time.Duration so settings can spell intervals the
// time.ParseDuration way ("45m", "2h30m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Postgres identifies the curve tables used when input.source is "postgres".
type Postgres struct {
	Conn           string `yaml:"conn"`
	ChargeOffTable string `yaml:"chargeoff_table"`
	PrepayTable    string `yaml:"prepay_table"`
}

// Input says where the charge-off and prepay speed curves come from.
type Input struct {
	Source       string   `yaml:"source"`
	Filename     string   `yaml:"filename"`
	DefaultSheet string   `yaml:"default_sheetname"`
	PrepaySheet  string   `yaml:"prepay_sheetname"`
	Postgres     Postgres `yaml:"postgres"`
}

// Cache configures the optional projection result cache. A zero TTL
// stores entries without expiry.
type Cache struct {
	Enabled bool     `yaml:"enabled"`
	Addr    string   `yaml:"addr"`
	TTL     Duration `yaml:"ttl"`
}

// Output controls where projection CSVs are written.
type Output struct {
	Dir string `yaml:"dir"`
}

// Log selects the logger profile ("production" or anything else for
// development output).
type Log struct {
	Env string `yaml:"env"`
}

// Config is the parsed settings file.
type Config struct {
	Input  Input  `yaml:"input"`
	Cache  Cache  `yaml:"cache"`
	Output Output `yaml:"output"`
	Log    Log    `yaml:"log"`
}

// Load reads the settings file at path, fills in defaults, and rejects
// configurations the loaders cannot serve.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Input.Source == "" {
		c.Input.Source = SourceExcel
	}
	if c.Input.DefaultSheet == "" {
		c.Input.DefaultSheet = defaultChargeOffSheet
	}
	if c.Input.PrepaySheet == "" {
		c.Input.PrepaySheet = defaultPrepaySheet
	}
	if c.Output.Dir == "" {
		c.Output.Dir = defaultOutputDir
	}
}

func (c *Config) validate() error {
	switch c.Input.Source {
	case SourceExcel:
		if c.Input.Filename == "" {
			return fmt.Errorf("config: input.filename is required when input.source is %q", SourceExcel)
		}
		if !strings.HasSuffix(c.Input.Filename, ".xlsx") {
			return fmt.Errorf("config: input.filename %q is not an .xlsx workbook", c.Input.Filename)
		}
	case SourcePostgres:
		pg := c.Input.Postgres
		if pg.Conn == "" {
			return fmt.Errorf("config: input.postgres.conn is required when input.source is %q", SourcePostgres)
		}
		if pg.ChargeOffTable == "" || pg.PrepayTable == "" {
			return fmt.Errorf("config: input.postgres.chargeoff_table and prepay_table are required when input.source is %q", SourcePostgres)
		}
	default:
		return fmt.Errorf("config: unknown input.source %q", c.Input.Source)
	}
	if c.Cache.Enabled && c.Cache.Addr == "" {
		return fmt.Errorf("config: cache.addr is required when cache.enabled is true")
	}
	return nil
}
