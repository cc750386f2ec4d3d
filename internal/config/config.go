package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/cgdscraper/internal/cgd"
)

// FileName is the default config file name.
const FileName = "cgdscraper.yaml"

// DefaultPortalURL is the base of the CGD online banking portal.
const DefaultPortalURL = "https://caixadirecta.cgd.pt/CaixaDirecta"

// MacSafariUserAgent is the browser identity presented to the portal.
const MacSafariUserAgent = "Mozilla/5.0 (Macintosh; U; Intel Mac OS X 10_6_2; de-at) AppleWebKit/531.21.8 (KHTML, like Gecko) Version/4.0.4 Safari/531.21.10"

// Config represents the top-level cgdscraper.yaml configuration.
type Config struct {
	Accounts    []Account      `yaml:"accounts,omitempty"`
	Charset     string         `yaml:"charset"`
	LogDir      string         `yaml:"log_dir"`
	SecretsFile string         `yaml:"secrets_file,omitempty"`
	Portal      PortalConfig   `yaml:"portal"`
	Schedule    ScheduleConfig `yaml:"schedule"`
	Database    DatabaseConfig `yaml:"database"`
	Influx      InfluxConfig   `yaml:"influx"`
}

// Account names an account number so it can be referenced by label.
type Account struct {
	Label  string `yaml:"label"`
	Number string `yaml:"number"`
}

// PortalConfig controls the online banking session.
type PortalConfig struct {
	BaseURL     string        `yaml:"base_url"`
	UserAgent   string        `yaml:"user_agent"`
	LoginSettle time.Duration `yaml:"login_settle"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ScheduleConfig controls the schedule command.
type ScheduleConfig struct {
	Cron      string `yaml:"cron"`
	OutputDir string `yaml:"output_dir"`
}

// DatabaseConfig controls the postgres sink.
type DatabaseConfig struct {
	URL   string `yaml:"url,omitempty"`
	Table string `yaml:"table"`
}

// InfluxConfig controls the balance metrics sink.
type InfluxConfig struct {
	Endpoint    string `yaml:"endpoint,omitempty"`
	Database    string `yaml:"database"`
	Measurement string `yaml:"measurement"`
}

// Load reads a cgdscraper.yaml file from disk. Keys missing from the file
// keep their defaults; keys set to zero stay zero.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Charset: cgd.DefaultCharset,
		LogDir:  "logs",
		Portal: PortalConfig{
			BaseURL:     DefaultPortalURL,
			UserAgent:   MacSafariUserAgent,
			LoginSettle: 3 * time.Second,
			Timeout:     30 * time.Second,
		},
		Schedule: ScheduleConfig{
			Cron:      "0 0 7 * * *",
			OutputDir: "statements",
		},
		Database: DatabaseConfig{
			Table: "cgd_transactions",
		},
		Influx: InfluxConfig{
			Database:    "cgd",
			Measurement: "cgd_balance",
		},
	}
}

// AccountNumber resolves a label from Accounts to its number. Anything
// else is returned unchanged.
func (c *Config) AccountNumber(labelOrNumber string) string {
	for _, a := range c.Accounts {
		if a.Label == labelOrNumber {
			return a.Number
		}
	}
	return labelOrNumber
}
