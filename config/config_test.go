//go:build testing

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestScraperConfigYamlOverride(t *testing.T) {
	cfg := defaultScraperConfig()
	overrides := `
min_body_words: 30
blocked_cooldown: 90s
politeness:
  min_delay: 1.5s
  max_delay: 3s
  batch_break_every: 5
retry:
  max_attempts: 5
`
	require.NoError(t, yaml.Unmarshal([]byte(overrides), &cfg))

	require.Equal(t, 30, cfg.MinBodyWords)
	require.Equal(t, 90*time.Second, cfg.BlockedCooldown.Std())
	require.Equal(t, 1500*time.Millisecond, cfg.Politeness.MinDelay.Std())
	require.Equal(t, 3*time.Second, cfg.Politeness.MaxDelay.Std())
	require.Equal(t, 5, cfg.Politeness.BatchBreakEvery)
	require.Equal(t, 5, cfg.Retry.MaxAttempts)

	// untouched values keep their defaults
	require.Equal(t, 500, cfg.MinPageChars)
	require.Equal(t, 2, cfg.RotateEveryDays)
	require.Equal(t, 50, cfg.Politeness.LongBreakEvery)
}

func TestDurationRejectsMalformedValues(t *testing.T) {
	var d Duration
	err := yaml.Unmarshal([]byte(`"not a duration"`), &d)
	require.Error(t, err)
}

func TestDBConfigValidate(t *testing.T) {
	require.Error(t, DBConfig{URL: ""}.Validate())
	require.NoError(t, DBConfig{URL: "postgres://localhost/newscr"}.Validate())
}
