package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Events  EventsConfig  `yaml:"events"`
	Batch   BatchConfig   `yaml:"batch"`
	Report  ReportConfig  `yaml:"report"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port               int   `yaml:"port"`
	MetricsPort        int   `yaml:"metrics_port"`
	MaxUploadBytes     int64 `yaml:"max_upload_bytes"`
	RateLimitPerMinute int   `yaml:"rate_limit_per_minute"`
}

// EventsConfig points at the NATS server scoring events are published to.
// An empty URL disables publishing.
type EventsConfig struct {
	URL string `yaml:"url"`
}

type BatchConfig struct {
	MaxRows int `yaml:"max_rows"`
}

// ReportConfig controls PDF reports. FontFile points at a UTF-8 TrueType
// font; when empty the cp1252 core fonts are used.
type ReportConfig struct {
	Title    string `yaml:"title"`
	FontFile string `yaml:"font_file"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			MaxUploadBytes:     10 << 20,
			RateLimitPerMinute: 120,
		},
		Batch: BatchConfig{
			MaxRows: 10000,
		},
		Report: ReportConfig{
			Title: "Relatório Brief-MPI",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Server.RateLimitPerMinute <= 0 {
		return fmt.Errorf("server.rate_limit_per_minute must be positive, got %d", c.Server.RateLimitPerMinute)
	}
	if c.Batch.MaxRows <= 0 {
		return fmt.Errorf("batch.max_rows must be positive, got %d", c.Batch.MaxRows)
	}
	if c.Report.FontFile != "" {
		if _, err := os.Stat(c.Report.FontFile); err != nil {
			return fmt.Errorf("report.font_file: %w", err)
		}
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BRIEFMPI_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("BRIEFMPI_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("BRIEFMPI_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Server.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("BRIEFMPI_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("BRIEFMPI_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("BRIEFMPI_BATCH_MAX_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Batch.MaxRows = n
		}
	}
	if v := os.Getenv("BRIEFMPI_REPORT_TITLE"); v != "" {
		cfg.Report.Title = v
	}
	if v := os.Getenv("BRIEFMPI_REPORT_FONT_FILE"); v != "" {
		cfg.Report.FontFile = v
	}
	if v := os.Getenv("BRIEFMPI_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BRIEFMPI_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
