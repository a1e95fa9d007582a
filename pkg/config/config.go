package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/denysvitali/audio-renamer/pkg/renamer"
)

// Defaults used when neither flags, env nor config file set a value.
const (
	DefaultFolder    = "./凉"
	DefaultExtension = ".wav"
	DefaultPrefix    = "凉"
)

// Config represents the application configuration
type Config struct {
	Rename    RenameConfig    `mapstructure:"rename"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

// RenameConfig holds the folder, suffix filter and output prefix
type RenameConfig struct {
	Folder    string `mapstructure:"folder"`
	Extension string `mapstructure:"extension"`
	Prefix    string `mapstructure:"prefix"`
	Order     string `mapstructure:"order"`
	Preflight bool   `mapstructure:"preflight"`
}

// ServerConfig contains server-specific configuration
type ServerConfig struct {
	Port          int    `mapstructure:"port"`
	WorkingDir    string `mapstructure:"working_dir"`
	SessionAPIKey string `mapstructure:"session_api_key"`
}

// TelemetryConfig contains telemetry configuration
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Load loads the configuration from viper
func Load() (*Config, error) {
	cfg := &Config{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if err := postProcess(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Rename: RenameConfig{
			Folder:    DefaultFolder,
			Extension: DefaultExtension,
			Prefix:    DefaultPrefix,
			Order:     string(renamer.OrderListing),
			Preflight: true,
		},
		Server: ServerConfig{Port: 8000},
		Log:    LogConfig{Level: "info"},
	}
}

func setDefaults() {
	def := Default()

	viper.SetDefault("rename.folder", def.Rename.Folder)
	viper.SetDefault("rename.extension", def.Rename.Extension)
	viper.SetDefault("rename.prefix", def.Rename.Prefix)
	viper.SetDefault("rename.order", def.Rename.Order)
	viper.SetDefault("rename.preflight", def.Rename.Preflight)

	viper.SetDefault("server.port", def.Server.Port)

	viper.SetDefault("telemetry.enabled", false)

	viper.SetDefault("log.level", def.Log.Level)
	viper.SetDefault("log.json", false)

	_ = viper.BindEnv("server.session_api_key", "SESSION_API_KEY")
	_ = viper.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func postProcess(cfg *Config) error {
	if _, err := renamer.ParseOrder(cfg.Rename.Order); err != nil {
		return err
	}

	// The rename folder is kept verbatim; only the server working dir is resolved.
	if cfg.Server.WorkingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg.Server.WorkingDir = wd
	}

	if !filepath.IsAbs(cfg.Server.WorkingDir) {
		abs, err := filepath.Abs(cfg.Server.WorkingDir)
		if err != nil {
			return err
		}
		cfg.Server.WorkingDir = abs
	}

	return nil
}

// RenamerOptions translates the rename section into renamer options.
func (c RenameConfig) RenamerOptions() ([]renamer.Option, error) {
	order, err := renamer.ParseOrder(c.Order)
	if err != nil {
		return nil, err
	}
	return []renamer.Option{
		renamer.WithOrder(order),
		renamer.WithPreflight(c.Preflight),
	}, nil
}
