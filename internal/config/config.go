// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/TheBoringBakery/MoonCaker/internal/riot"
)

// Config captures all service configuration knobs loaded via Viper.
// Components receive plain sub-structs; Viper never leaks past this package.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Riot    RiotConfig    `mapstructure:"riot"`
	DB      DBConfig      `mapstructure:"db"`
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls the ops HTTP server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// RiotConfig holds upstream API access settings. Exactly one of APIKey or
// APIKeyFile must be set; the file form keeps the key out of the environment.
type RiotConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	APIKeyFile        string  `mapstructure:"api_key_file"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
}

// DBConfig controls the Postgres store.
type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

// CrawlConfig governs the partition space and page batching.
type CrawlConfig struct {
	Regions   []string `mapstructure:"regions"`
	Tiers     []string `mapstructure:"tiers"`
	Divisions []string `mapstructure:"divisions"`
	BatchSize int      `mapstructure:"batch_size"`
	DryRun    bool     `mapstructure:"dry_run"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from an optional file plus the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MOONCAKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// setDefaults registers every key the Config reads. Viper only consults the
// environment for keys it already knows, so even the keys with no meaningful
// default get an empty registration; without it, MOONCAKER_RIOT_API_KEY and
// MOONCAKER_DB_DSN would never reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("riot.api_key", "")
	v.SetDefault("riot.api_key_file", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("riot.requests_per_second", 0.8)
	v.SetDefault("riot.timeout_seconds", 15)
	v.SetDefault("crawl.regions", []string{"euw1", "eun1", "jp1", "kr", "na1", "br1"})
	v.SetDefault("crawl.tiers", []string{"DIAMOND", "PLATINUM", "GOLD", "SILVER", "BRONZE", "IRON"})
	v.SetDefault("crawl.divisions", []string{"I", "II", "III", "IV"})
	v.SetDefault("crawl.batch_size", 100)
	v.SetDefault("crawl.dry_run", false)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Riot.APIKey == "" && c.Riot.APIKeyFile == "" {
		return fmt.Errorf("one of riot.api_key or riot.api_key_file must be set")
	}
	if c.Riot.TimeoutSeconds <= 0 {
		return fmt.Errorf("riot.timeout_seconds must be > 0")
	}
	if c.Crawl.BatchSize <= 0 {
		return fmt.Errorf("crawl.batch_size must be > 0")
	}
	if len(c.Crawl.Regions) == 0 || len(c.Crawl.Tiers) == 0 || len(c.Crawl.Divisions) == 0 {
		return fmt.Errorf("crawl.regions, crawl.tiers and crawl.divisions must be non-empty")
	}
	for _, region := range c.Crawl.Regions {
		if _, ok := riot.BigRegion(region); !ok {
			return fmt.Errorf("crawl.regions: unknown region %q (known: %s)",
				region, strings.Join(riot.KnownRegions(), ", "))
		}
	}
	if !c.Crawl.DryRun && c.DB.DSN == "" {
		return fmt.Errorf("db.dsn must be set unless crawl.dry_run is enabled")
	}
	return nil
}

// ResolveAPIKey returns the initial credential, reading APIKeyFile if the
// inline key is not set.
func (c RiotConfig) ResolveAPIKey() (string, error) {
	if c.APIKey != "" {
		return c.APIKey, nil
	}
	raw, err := os.ReadFile(c.APIKeyFile)
	if err != nil {
		return "", fmt.Errorf("read api key file: %w", err)
	}
	key := strings.TrimSpace(string(raw))
	if key == "" {
		return "", fmt.Errorf("api key file %s is empty", c.APIKeyFile)
	}
	return key, nil
}

// Timeout converts the upstream timeout knob into a duration.
func (c RiotConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
