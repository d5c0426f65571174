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
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-history database backend. The pool fields
// only apply to the postgres driver.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// PathsConfig locates the canonical data and config directories.
type PathsConfig struct {
	CanonicalDir string `yaml:"canonical_dir" mapstructure:"canonical_dir"`
	OutputDir    string `yaml:"output_dir" mapstructure:"output_dir"`
	SampleDir    string `yaml:"sample_dir" mapstructure:"sample_dir"`
	ClientsDir   string `yaml:"clients_dir" mapstructure:"clients_dir"`
	Objectives   string `yaml:"objectives" mapstructure:"objectives"`
}

// IngestConfig configures workbook ingestion.
type IngestConfig struct {
	PerformanceSheet string             `yaml:"performance_sheet" mapstructure:"performance_sheet"`
	ModellerSheet    string             `yaml:"modeller_sheet" mapstructure:"modeller_sheet"`
	DefaultBeta      float64            `yaml:"default_beta" mapstructure:"default_beta"`
	ChannelBetas     map[string]float64 `yaml:"channel_betas" mapstructure:"channel_betas"`
}

// ServerConfig configures the optimization HTTP server.
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
	v.SetEnvPrefix("ROI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "roi-modeler.db")
	v.SetDefault("paths.canonical_dir", "data/canonical")
	v.SetDefault("paths.output_dir", "data/canonical/outputs")
	v.SetDefault("paths.sample_dir", "data/sample")
	v.SetDefault("paths.clients_dir", "configs/clients")
	v.SetDefault("paths.objectives", "configs/objectives.yaml")
	v.SetDefault("ingest.performance_sheet", "All Data")
	v.SetDefault("ingest.modeller_sheet", "ROI Modeller")
	v.SetDefault("ingest.default_beta", 0.72)
	v.SetDefault("ingest.channel_betas", map[string]float64{
		"content syndication": 0.72,
		"paid search":         0.78,
		"paid social":         0.74,
		"paid review site":    0.70,
		"paid referral":       0.68,
		"paid programmatic":   0.69,
		"paid display":        0.66,
		"paid video":          0.67,
	})
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
