package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix for configuration environment variables.
const EnvPrefix = "PUSH"

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/pushpulse.log"`
}

// DataConfig contains dataset configuration.
type DataConfig struct {
	// ReportFile, when set, is loaded at startup. The dashboard starts
	// empty otherwise and waits for an upload.
	ReportFile string `yaml:"report_file" envconfig:"REPORT_FILE"`
	ExportDir  string `yaml:"export_dir" envconfig:"EXPORT_DIR" default:"exports"`
}

// SecurityConfig contains request throttling configuration.
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// Load builds the configuration: defaults and environment first, then an
// optional YAML file overlay for anything the environment left unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if path := configFilePath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			fileCfg, err := loadFromFile(path)
			if err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
			cfg = merge(*fileCfg, cfg)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

func configFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}
	return "pushpulse.yaml"
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge overlays file values onto env values; env takes precedence for
// anything it set explicitly, file values fill the gaps that still hold
// zero values.
func merge(file, env Config) Config {
	if env.Data.ReportFile == "" {
		env.Data.ReportFile = file.Data.ReportFile
	}
	if file.Server.Port != 0 && os.Getenv(EnvPrefix+"_SERVER_PORT") == "" {
		env.Server.Port = file.Server.Port
	}
	if file.Logging.Level != "" && os.Getenv(EnvPrefix+"_LOGGING_LEVEL") == "" {
		env.Logging.Level = file.Logging.Level
	}
	if file.Data.ExportDir != "" && os.Getenv(EnvPrefix+"_DATA_EXPORT_DIR") == "" {
		env.Data.ExportDir = file.Data.ExportDir
	}
	return env
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive, got %v", c.Security.RateLimit.RPS)
	}
	return nil
}

// ListenAddr returns the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
