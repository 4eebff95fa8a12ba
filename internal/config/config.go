// Package config loads the YAML configuration shared by the CLI, the MCP
// server and the HTTP API.
//
// Settings are resolved in three layers: built-in defaults, then the YAML
// file (from --config or SKETCH_MCP_CONFIG), then environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/sketch-tools-mcp/internal/log"
	"github.com/ironsheep/sketch-tools-mcp/internal/pipeline"
	"github.com/ironsheep/sketch-tools-mcp/internal/svg"
)

type PipelineConfig struct {
	MaxDimension  int     `yaml:"max_dimension"`
	SigmaLow      float64 `yaml:"sigma_low"`
	SigmaHigh     float64 `yaml:"sigma_high"`
	LowThreshold  float64 `yaml:"low_threshold"`
	HighThreshold float64 `yaml:"high_threshold"`
}

type OutputConfig struct {
	FrameSize   int     `yaml:"frame_size"`
	Smoothing   float64 `yaml:"smoothing"`
	StrokeColor string  `yaml:"stroke_color"`
	StrokeWidth float64 `yaml:"stroke_width"`
}

type HTTPConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadMB    int    `yaml:"max_upload_mb"`
	ReadTimeoutSec int    `yaml:"read_timeout_sec"`
	// WriteTimeoutSec bounds the whole request, including both conversions.
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Config is the complete application configuration.
type Config struct {
	ConfigVersion int            `yaml:"config_version"`
	Pipeline      PipelineConfig `yaml:"pipeline"`
	Output        OutputConfig   `yaml:"output"`
	HTTP          HTTPConfig     `yaml:"http"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() Config {
	return Config{
		ConfigVersion: 1,
		Pipeline: PipelineConfig{
			MaxDimension:  800,
			SigmaLow:      1.0,
			SigmaHigh:     2.0,
			LowThreshold:  0.1,
			HighThreshold: 0.2,
		},
		Output: OutputConfig{
			FrameSize:   256,
			Smoothing:   1.0,
			StrokeColor: "black",
			StrokeWidth: 0.5,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			MaxUploadMB:     20,
			ReadTimeoutSec:  30,
			WriteTimeoutSec: 120,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile   = "SKETCH_MCP_CONFIG"
	EnvFrameSize    = "SKETCH_MCP_FRAME_SIZE"
	EnvSigmaLow     = "SKETCH_MCP_SIGMA_LOW"
	EnvSigmaHigh    = "SKETCH_MCP_SIGMA_HIGH"
	EnvSmoothing    = "SKETCH_MCP_SMOOTHING"
	EnvMaxDimension = "SKETCH_MCP_MAX_DIMENSION"
	EnvHTTPAddr     = "SKETCH_MCP_HTTP_ADDR"
	EnvLogLevel     = "SKETCH_MCP_LOG_LEVEL"
	EnvLogFormat    = "SKETCH_MCP_LOG_FORMAT"
	EnvLogSource    = "SKETCH_MCP_LOG_SOURCE"
	EnvLogFile      = "SKETCH_MCP_LOG_FILE"
)

// Load resolves the configuration. An empty path falls back to
// SKETCH_MCP_CONFIG; when neither is set only defaults and environment
// overrides apply. A named file that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigFile))
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// decode unmarshals YAML on top of cfg, so absent keys keep their current
// values. Unknown keys are rejected.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	intVar := func(name string, dst *int) error {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = n
		}
		return nil
	}
	floatVar := func(name string, dst *float64) error {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = f
		}
		return nil
	}

	if err := intVar(EnvFrameSize, &cfg.Output.FrameSize); err != nil {
		return err
	}
	if err := intVar(EnvMaxDimension, &cfg.Pipeline.MaxDimension); err != nil {
		return err
	}
	if err := floatVar(EnvSigmaLow, &cfg.Pipeline.SigmaLow); err != nil {
		return err
	}
	if err := floatVar(EnvSigmaHigh, &cfg.Pipeline.SigmaHigh); err != nil {
		return err
	}
	if err := floatVar(EnvSmoothing, &cfg.Output.Smoothing); err != nil {
		return err
	}
	if v := strings.TrimSpace(os.Getenv(EnvHTTPAddr)); v != "" {
		cfg.HTTP.Addr = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	return nil
}

// Validate reports the first setting that cannot produce a drawing.
func (c Config) Validate() error {
	p, o := c.Pipeline, c.Output
	switch {
	case o.FrameSize <= 0:
		return fmt.Errorf("output.frame_size must be positive, got %d", o.FrameSize)
	case p.MaxDimension < 0:
		return fmt.Errorf("pipeline.max_dimension must not be negative, got %d", p.MaxDimension)
	case p.SigmaLow <= 0 || p.SigmaHigh <= 0:
		return fmt.Errorf("pipeline sigmas must be positive, got %g and %g", p.SigmaLow, p.SigmaHigh)
	case o.Smoothing < 0:
		return fmt.Errorf("output.smoothing must not be negative, got %g", o.Smoothing)
	case p.LowThreshold < 0 || p.HighThreshold < p.LowThreshold:
		return fmt.Errorf("pipeline thresholds must satisfy 0 <= low <= high, got %g and %g",
			p.LowThreshold, p.HighThreshold)
	case o.StrokeWidth <= 0:
		return fmt.Errorf("output.stroke_width must be positive, got %g", o.StrokeWidth)
	case c.HTTP.MaxUploadMB <= 0:
		return fmt.Errorf("http.max_upload_mb must be positive, got %d", c.HTTP.MaxUploadMB)
	}
	if _, err := svg.ParseColor(o.StrokeColor); err != nil {
		return fmt.Errorf("output.stroke_color: %w", err)
	}
	return nil
}

// PipelineOptions converts the configuration into pipeline options.
func (c Config) PipelineOptions() (pipeline.Options, error) {
	stroke, err := svg.ParseColor(c.Output.StrokeColor)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("output.stroke_color: %w", err)
	}
	return pipeline.Options{
		MaxDimension:  c.Pipeline.MaxDimension,
		SigmaLow:      c.Pipeline.SigmaLow,
		SigmaHigh:     c.Pipeline.SigmaHigh,
		LowThreshold:  c.Pipeline.LowThreshold,
		HighThreshold: c.Pipeline.HighThreshold,
		Emit: svg.Options{
			Frame:     c.Output.FrameSize,
			Smoothing: c.Output.Smoothing,
			Style:     svg.Style{Stroke: stroke, StrokeWidth: c.Output.StrokeWidth},
		},
	}, nil
}

// LogOptions converts the logging section into logger options.
func (c Config) LogOptions() log.Options {
	return log.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}

// MaxUploadBytes is the HTTP upload limit in bytes.
func (h HTTPConfig) MaxUploadBytes() int64 { return int64(h.MaxUploadMB) << 20 }

// ReadTimeout is the HTTP read timeout.
func (h HTTPConfig) ReadTimeout() time.Duration { return time.Duration(h.ReadTimeoutSec) * time.Second }

// WriteTimeout is the HTTP write timeout.
func (h HTTPConfig) WriteTimeout() time.Duration {
	return time.Duration(h.WriteTimeoutSec) * time.Second
}
