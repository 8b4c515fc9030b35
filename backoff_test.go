package voevent

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextBackoffDelay_Default(t *testing.T) {
	cfg := DefaultBackoffConfig()

	want := []time.Duration{
		0,
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
	}
	for failures, d := range want {
		assert.Equal(t, d, NextBackoffDelay(cfg, failures, nil), "failures=%d", failures)
	}

	assert.Equal(t, 512*time.Second, NextBackoffDelay(cfg, 10, nil))
	assert.Equal(t, 1024*time.Second, NextBackoffDelay(cfg, 11, nil))
	assert.Equal(t, 1024*time.Second, NextBackoffDelay(cfg, 12, nil))
	assert.Equal(t, 1024*time.Second, NextBackoffDelay(cfg, 500, nil), "no overflow past the cap")
}

func TestNextBackoffDelay_Capped(t *testing.T) {
	cfg := DefaultBackoffConfig()
	cfg.MaxDelay = 4 * time.Second

	var got []time.Duration
	for failures := 0; failures <= 6; failures++ {
		got = append(got, NextBackoffDelay(cfg, failures, nil))
	}
	assert.Equal(t, []time.Duration{0, time.Second, 2 * time.Second, 4 * time.Second,
		4 * time.Second, 4 * time.Second, 4 * time.Second}, got)
}

func TestNextBackoffDelay_Monotonic(t *testing.T) {
	cfg := BackoffConfig{InitialDelay: 300 * time.Millisecond, Multiplier: 1.5, MaxDelay: time.Minute}

	prev := time.Duration(0)
	for failures := 0; failures < 40; failures++ {
		d := NextBackoffDelay(cfg, failures, nil)
		assert.GreaterOrEqual(t, d, prev)
		assert.LessOrEqual(t, d, cfg.MaxDelay)
		prev = d
	}
}

func TestNextBackoffDelay_Jitter(t *testing.T) {
	cfg := DefaultBackoffConfig()
	cfg.Jitter = true
	rng := rand.New(rand.NewSource(42))

	assert.Equal(t, time.Duration(0), NextBackoffDelay(cfg, 0, rng))
	for i := 0; i < 100; i++ {
		d := NextBackoffDelay(cfg, 3, rng)
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.LessOrEqual(t, d, 4*time.Second)
	}
	for i := 0; i < 100; i++ {
		assert.LessOrEqual(t, NextBackoffDelay(cfg, 20, rng), cfg.MaxDelay)
	}
}

func TestBackoffConfig_WithDefaults(t *testing.T) {
	assert.Equal(t, DefaultBackoffConfig(), BackoffConfig{}.withDefaults())

	cfg := BackoffConfig{MaxDelay: 4 * time.Second}.withDefaults()
	assert.Equal(t, time.Second, cfg.InitialDelay)
	assert.Equal(t, 2.0, cfg.Multiplier)
	assert.Equal(t, 4*time.Second, cfg.MaxDelay)

	cfg = BackoffConfig{InitialDelay: time.Minute, MaxDelay: time.Second}.withDefaults()
	assert.Equal(t, time.Second, cfg.InitialDelay, "initial delay is clamped to the cap")
}
