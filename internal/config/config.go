// Package config loads and validates the simulation configuration.
//
// All probabilities are expressed in [0,1] and all durations as
// millisecond integers, matching the knobs described in the README.
// The config is loaded once at startup and never mutated afterwards.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MaxConfigFileSize caps config files at 256KB. Anything bigger is
// almost certainly not a config file.
const MaxConfigFileSize = 256 * 1024

// Config holds every tunable of the failure simulation. Fields map 1:1
// to YAML keys.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	OpsAddr    string `yaml:"ops_addr"`   // "" disables the ops listener
	RedisAddr  string `yaml:"redis_addr"` // "" disables analytics export

	BaseSuccessRate float64 `yaml:"base_success_rate" validate:"gte=0,lte=1"`

	OutageChance float64 `yaml:"outage_chance" validate:"gte=0,lte=1"`
	MinOutageMs  int64   `yaml:"min_outage_ms" validate:"gte=0"`
	MaxOutageMs  int64   `yaml:"max_outage_ms" validate:"gtefield=MinOutageMs"`

	NormalPeriodChance float64 `yaml:"normal_period_chance" validate:"gte=0,lte=1"`
	MinNormalPeriodMs  int64   `yaml:"min_normal_period_ms" validate:"gte=0"`
	MaxNormalPeriodMs  int64   `yaml:"max_normal_period_ms" validate:"gtefield=MinNormalPeriodMs"`

	SlowResponseChance float64 `yaml:"slow_response_chance" validate:"gte=0,lte=1"`
	MinSlowDelayMs     int64   `yaml:"min_slow_delay_ms" validate:"gte=0"`
	MaxSlowDelayMs     int64   `yaml:"max_slow_delay_ms" validate:"gtefield=MinSlowDelayMs"`

	ServerErrorChance float64 `yaml:"server_error_chance" validate:"gte=0,lte=1"`
	ClientErrorChance float64 `yaml:"client_error_chance" validate:"gte=0,lte=1"`
	TimeoutChance     float64 `yaml:"timeout_chance" validate:"gte=0,lte=1"`

	RateLimitWindowMs int64 `yaml:"rate_limit_window_ms" validate:"gt=0"`
	RateLimitMax      int   `yaml:"rate_limit_max" validate:"gt=0"`

	CircuitBreakerThreshold        int   `yaml:"circuit_breaker_threshold" validate:"gt=0"`
	CircuitBreakerWindowMs         int64 `yaml:"circuit_breaker_window_ms" validate:"gt=0"`
	CircuitBreakerRecoveryMs       int64 `yaml:"circuit_breaker_recovery_ms" validate:"gt=0"`
	CircuitBreakerHalfOpenRequests int   `yaml:"circuit_breaker_half_open_requests" validate:"gt=0"`
}

// Default returns the baseline configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr: ":8080",

		BaseSuccessRate: 0.9,

		OutageChance: 0.01,
		MinOutageMs:  5000,
		MaxOutageMs:  15000,

		NormalPeriodChance: 0.05,
		MinNormalPeriodMs:  10000,
		MaxNormalPeriodMs:  30000,

		SlowResponseChance: 0.2,
		MinSlowDelayMs:     500,
		MaxSlowDelayMs:     3000,

		ServerErrorChance: 0.05,
		ClientErrorChance: 0.03,
		TimeoutChance:     0.02,

		RateLimitWindowMs: 10000,
		RateLimitMax:      50,

		CircuitBreakerThreshold:        15,
		CircuitBreakerWindowMs:         60000,
		CircuitBreakerRecoveryMs:       20000,
		CircuitBreakerHalfOpenRequests: 2,
	}
}

// Load reads the YAML file at path on top of the defaults and validates
// the result. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return cfg, fmt.Errorf("config file: %w", err)
		}
		if info.Size() > MaxConfigFileSize {
			return cfg, fmt.Errorf("config file %s exceeds %d bytes", path, MaxConfigFileSize)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field ranges and cross-field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if sum := c.ServerErrorChance + c.ClientErrorChance + c.TimeoutChance; sum > 1 {
		return fmt.Errorf("invalid config: error chances sum to %.3f, must be <= 1", sum)
	}
	return nil
}

// Duration accessors keep callers out of the millisecond arithmetic.

func (c Config) RateLimitWindow() time.Duration { return msToDur(c.RateLimitWindowMs) }
func (c Config) MinOutage() time.Duration       { return msToDur(c.MinOutageMs) }
func (c Config) MaxOutage() time.Duration       { return msToDur(c.MaxOutageMs) }
func (c Config) MinNormalPeriod() time.Duration { return msToDur(c.MinNormalPeriodMs) }
func (c Config) MaxNormalPeriod() time.Duration { return msToDur(c.MaxNormalPeriodMs) }
func (c Config) MinSlowDelay() time.Duration    { return msToDur(c.MinSlowDelayMs) }
func (c Config) MaxSlowDelay() time.Duration    { return msToDur(c.MaxSlowDelayMs) }
func (c Config) BreakerWindow() time.Duration   { return msToDur(c.CircuitBreakerWindowMs) }
func (c Config) BreakerRecovery() time.Duration { return msToDur(c.CircuitBreakerRecoveryMs) }

func msToDur(ms int64) time.Duration { return time.Duration(ms) * time.Millisecond }
