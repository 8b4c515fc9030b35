package voevent

import (
	"math"
	"math/rand"
	"time"
)

// BackoffConfig defines the reconnect delay policy.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// DefaultBackoffConfig returns the policy of the reference GCN client:
// 1s doubling up to 1024s, no jitter.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		InitialDelay: time.Second,
		Multiplier:   2.0,
		MaxDelay:     1024 * time.Second,
	}
}

// withDefaults fills unset fields from DefaultBackoffConfig.
func (cfg BackoffConfig) withDefaults() BackoffConfig {
	def := DefaultBackoffConfig()
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.Multiplier < 1.0 {
		cfg.Multiplier = def.Multiplier
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		cfg.InitialDelay = cfg.MaxDelay
	}
	return cfg
}

// NextBackoffDelay returns the delay before the next connection attempt
// after failures consecutive failed attempts. Zero failures means connect
// right away. The result never exceeds MaxDelay, jitter included.
func NextBackoffDelay(cfg BackoffConfig, failures int, rng *rand.Rand) time.Duration {
	if failures <= 0 || cfg.InitialDelay <= 0 {
		return 0
	}
	if cfg.Multiplier < 1.0 {
		cfg.Multiplier = 1.0
	}
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(failures-1))
	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter {
		f := 0.75
		if rng != nil {
			f = 0.5 + rng.Float64()/2
		}
		delay *= f
	}
	return time.Duration(delay)
}
