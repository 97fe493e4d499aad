// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	SCB      SCBConfig      `yaml:"scb" mapstructure:"scb"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SCBConfig configures the Statistics Sweden PxAPI client.
type SCBConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Language    string  `yaml:"language" mapstructure:"language"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// AnalysisConfig configures the merge and classification run.
type AnalysisConfig struct {
	Years    []int  `yaml:"years" mapstructure:"years"`
	Method   string `yaml:"method" mapstructure:"method"`
	Language string `yaml:"language" mapstructure:"language"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ExportConfig configures result output.
type ExportConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"`
}

// ServerConfig configures the results API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DESO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("scb.base_url", "https://api.scb.se/OV0104/v2beta/api/v2")
	v.SetDefault("scb.language", "sv")
	v.SetDefault("scb.rate_per_sec", 10)
	v.SetDefault("scb.timeout_secs", 30)
	v.SetDefault("scb.max_retries", 3)
	v.SetDefault("scb.user_agent", "deso-cli/1.0")
	v.SetDefault("analysis.method", "deso_statistics")
	v.SetDefault("analysis.language", "sv")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "deso.db")
	v.SetDefault("export.format", "csv")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the parts of the config a command is about to use.
func (c *Config) Validate() error {
	var errs []string

	if c.SCB.BaseURL == "" {
		errs = append(errs, "scb.base_url is required")
	}
	if c.SCB.RatePerSec <= 0 {
		errs = append(errs, "scb.rate_per_sec must be > 0")
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
