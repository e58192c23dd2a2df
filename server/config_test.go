package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, Config{
		Addr:             ":3000",
		Store:            "sqlite",
		SQLitePath:       "narrative.db",
		LogLevel:         "info",
		DefaultMaxLength: 5,
		MaxTrajectories:  100000,
		Workers:          1,
	}, cfg)
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := loadConfig(map[string]string{
		"STORE":        "postgres",
		"DATABASE_URL": "postgres://localhost/narrative",
		"WORKERS":      "4",
		"LOG_LEVEL":    "debug",
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		want    []string
	}{
		{"unknown store", map[string]string{"STORE": "redis"}, []string{`STORE "redis" is invalid`}},
		{"postgres without url", map[string]string{"STORE": "postgres"}, []string{"DATABASE_URL is required"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, []string{`LOG_LEVEL "loud" is invalid`}},
		{"several", map[string]string{"WORKERS": "0", "DEFAULT_MAX_LENGTH": "-1"}, []string{"WORKERS 0", "DEFAULT_MAX_LENGTH -1"}},
		{"not a number", map[string]string{"WORKERS": "many"}, []string{"config: parse env"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(tt.environ)
			require.Error(t, err)
			for _, w := range tt.want {
				assert.Contains(t, err.Error(), w)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1))

	_, err = newLogger("loud")
	assert.Error(t, err)
}
