// Package config loads geoqa settings from defaults, an optional geoqa.yaml,
// GEOQA_ environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/duynguyendang/geoqa/pkg/query"
)

// EnvPrefix prefixes every environment variable, e.g. GEOQA_MATCH_MODE.
const EnvPrefix = "GEOQA"

// Config is the resolved configuration.
type Config struct {
	Ontology  string       `mapstructure:"ontology"`
	MatchMode string       `mapstructure:"match_mode"`
	Cache     CacheConfig  `mapstructure:"cache"`
	Log       LogConfig    `mapstructure:"log"`
	Server    ServerConfig `mapstructure:"server"`
	Crawl     CrawlConfig  `mapstructure:"crawl"`
}

type CacheConfig struct {
	Size int `mapstructure:"size"`
}

// LogConfig selects the log level, format and optional rotating file.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type ServerConfig struct {
	Addr  string `mapstructure:"addr"`
	Watch bool   `mapstructure:"watch"`
}

type CrawlConfig struct {
	Concurrency int    `mapstructure:"concurrency"`
	UserAgent   string `mapstructure:"user_agent"`
}

// New returns a viper instance with defaults and environment binding set.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// PORT is honoured without the prefix, as hosting platforms set it.
	_ = v.BindEnv("port", "PORT")

	v.SetDefault("ontology", "ontology.nt")
	v.SetDefault("match_mode", string(query.DefaultMatchMode))
	v.SetDefault("cache.size", 1024)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("server.addr", "")
	v.SetDefault("server.watch", false)
	v.SetDefault("crawl.concurrency", 8)
	v.SetDefault("crawl.user_agent", "geoqa/1.0 (country ontology builder)")
	return v
}

// Load reads the config file into v and resolves the configuration. An
// explicit file must exist; otherwise geoqa.yaml is looked up in the working
// directory and the user config directory and may be absent.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("geoqa")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "geoqa"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Server.Addr == "" {
		port := v.GetString("port")
		if port == "" {
			port = "8080"
		}
		cfg.Server.Addr = ":" + port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option values.
func (c *Config) Validate() error {
	if c.Ontology == "" {
		return fmt.Errorf("ontology path is required")
	}
	if _, err := query.ParseMatchMode(c.MatchMode); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.Log.Format)
	}
	if c.Crawl.Concurrency < 1 {
		return fmt.Errorf("crawl concurrency must be at least 1, got %d", c.Crawl.Concurrency)
	}
	return nil
}

// Mode returns the parsed match mode. Call after Validate.
func (c *Config) Mode() query.MatchMode {
	m, _ := query.ParseMatchMode(c.MatchMode)
	return m
}
