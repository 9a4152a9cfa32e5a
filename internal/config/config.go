package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the conventional configuration file name.
	ConfigFileName = "coopsync.yaml"

	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "COOPSYNC_"

	DefaultWorldSize         = 1000
	DefaultAddr              = ":7777"
	DefaultPath              = "/ws"
	DefaultMetricsPath       = "/metrics"
	DefaultMaxMalformed      = 16
	DefaultInboundRate       = 120
	DefaultInboundBurst      = 240
	DefaultKeepAlive         = 15 * time.Second
	DefaultCompressThreshold = 512
	DefaultTelemetryInterval = 10 * time.Second
	DefaultDeltaThreshold    = 0.1
	DefaultService           = "coopsync"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Config is the complete coopsync configuration.
type Config struct {
	World     WorldConfig     `yaml:"world" envPrefix:"WORLD_"`
	Relay     RelayConfig     `yaml:"relay" envPrefix:"RELAY_"`
	Protocol  ProtocolConfig  `yaml:"protocol" envPrefix:"PROTOCOL_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
	Delta     DeltaConfig     `yaml:"delta" envPrefix:"DELTA_"`
	Tracing   TracingConfig   `yaml:"tracing" envPrefix:"TRACING_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`

	// path stores where the config was loaded from.
	path string
}

// WorldConfig sets the quantization span.
type WorldConfig struct {
	// Size is the edge length of the world; positions span [-Size/2, Size/2].
	Size float32 `yaml:"size" env:"SIZE"`
}

// RelayConfig configures the relay server.
type RelayConfig struct {
	Addr        string `yaml:"addr" env:"ADDR"`
	Path        string `yaml:"path" env:"PATH"`
	MetricsPath string `yaml:"metrics_path" env:"METRICS_PATH"`

	// MaxMalformed is the malformed-frame budget per peer; 0 disables it.
	MaxMalformed int `yaml:"max_malformed" env:"MAX_MALFORMED"`

	// InboundRate is the per-peer frame rate limit per second; 0 disables it.
	InboundRate  float64 `yaml:"inbound_rate" env:"INBOUND_RATE"`
	InboundBurst int     `yaml:"inbound_burst" env:"INBOUND_BURST"`

	// KeepAlive is the ping interval used to measure latency.
	KeepAlive time.Duration `yaml:"keepalive" env:"KEEPALIVE"`
}

// ProtocolConfig configures the envelope codec.
type ProtocolConfig struct {
	// CompressThreshold is the body size from which bodies are compressed;
	// 0 disables compression.
	CompressThreshold int `yaml:"compress_threshold" env:"COMPRESS_THRESHOLD"`
}

// TelemetryConfig configures the traffic monitor.
type TelemetryConfig struct {
	Interval time.Duration `yaml:"interval" env:"INTERVAL"`
}

// DeltaConfig configures orb delta filtering.
type DeltaConfig struct {
	Threshold float32 `yaml:"threshold" env:"THRESHOLD"`
}

// TracingConfig configures OTLP trace export. An empty endpoint disables
// export.
type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint" env:"ENDPOINT"`
	Service     string  `yaml:"service" env:"SERVICE"`
	Insecure    bool    `yaml:"insecure" env:"INSECURE"`
	SampleRatio float64 `yaml:"sample_ratio" env:"SAMPLE_RATIO"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		World: WorldConfig{Size: DefaultWorldSize},
		Relay: RelayConfig{
			Addr:         DefaultAddr,
			Path:         DefaultPath,
			MetricsPath:  DefaultMetricsPath,
			MaxMalformed: DefaultMaxMalformed,
			InboundRate:  DefaultInboundRate,
			InboundBurst: DefaultInboundBurst,
			KeepAlive:    DefaultKeepAlive,
		},
		Protocol:  ProtocolConfig{CompressThreshold: DefaultCompressThreshold},
		Telemetry: TelemetryConfig{Interval: DefaultTelemetryInterval},
		Delta:     DeltaConfig{Threshold: DefaultDeltaThreshold},
		Tracing:   TracingConfig{Service: DefaultService, SampleRatio: 1},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := cfg.decodeYAML(data); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
		cfg.path = path
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeYAML overlays data on c. Unknown keys are rejected.
func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides c with COOPSYNC_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}

// Normalize trims and canonicalizes string fields.
func (c *Config) Normalize() {
	c.Relay.Addr = strings.TrimSpace(c.Relay.Addr)
	c.Relay.Path = normalizePath(c.Relay.Path)
	c.Relay.MetricsPath = normalizePath(c.Relay.MetricsPath)
	c.Tracing.Endpoint = strings.TrimSpace(c.Tracing.Endpoint)
	c.Tracing.Service = strings.TrimSpace(c.Tracing.Service)
	if c.Tracing.Service == "" {
		c.Tracing.Service = DefaultService
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// Validate checks every field and reports the first problem.
func (c *Config) Validate() error {
	size := float64(c.World.Size)
	switch {
	case math.IsNaN(size) || math.IsInf(size, 0) || size <= 0:
		return invalid("world.size must be positive, got %v", c.World.Size)
	case c.Relay.Addr == "":
		return invalid("relay.addr is required")
	case c.Relay.Path == "":
		return invalid("relay.path is required")
	case c.Relay.Path == c.Relay.MetricsPath:
		return invalid("relay.path and relay.metrics_path must differ")
	case c.Relay.MaxMalformed < 0:
		return invalid("relay.max_malformed must not be negative")
	case c.Relay.InboundRate < 0:
		return invalid("relay.inbound_rate must not be negative")
	case c.Relay.InboundRate > 0 && c.Relay.InboundBurst < 1:
		return invalid("relay.inbound_burst must be at least 1 when inbound_rate is set")
	case c.Relay.KeepAlive < 0:
		return invalid("relay.keepalive must not be negative")
	case c.Protocol.CompressThreshold < 0:
		return invalid("protocol.compress_threshold must not be negative")
	case c.Telemetry.Interval < time.Second:
		return invalid("telemetry.interval must be at least 1s, got %s", c.Telemetry.Interval)
	case !(c.Delta.Threshold > 0):
		return invalid("delta.threshold must be positive, got %v", c.Delta.Threshold)
	case c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1:
		return invalid("tracing.sample_ratio must be within [0, 1], got %v", c.Tracing.SampleRatio)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// SlogLevel parses the configured level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, invalid("log.level %q", l.Level)
	}
	return lvl, nil
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteFile writes c as YAML to path.
func (c *Config) WriteFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.path = path
	return nil
}
