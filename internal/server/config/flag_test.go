package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		check       func(t *testing.T, c *Config)
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"-a", ":9999", "-d", "dsn", "-s", "k", "-t", "30", "-o", "http://x.test,http://y.test", "-l", "debug", "-b", "bkt", "-e", "http://s3"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, ":9999", c.Address)
				assert.Equal(t, "dsn", c.DatabaseDSN)
				assert.Equal(t, "k", c.SecretKey)
				assert.Equal(t, 30*time.Minute, c.TokenValidity)
				assert.Equal(t, []string{"http://x.test", "http://y.test"}, c.AllowedOrigins)
				assert.Equal(t, "debug", c.LogLevel)
				assert.Equal(t, "bkt", c.S3Bucket)
				assert.Equal(t, "http://s3", c.S3BaseEndpoint)
			},
		},
		{
			name: "unset flags keep previous values",
			args: []string{"-c", "file.json", "-x", "1"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, defaults(), c)
			},
		},
		{
			name:        "bad int",
			args:        []string{"-t", "abc"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			if tt.expectPanic {
				assert.Panics(t, func() { parseFlags(cfg, tt.args) })
				return
			}
			parseFlags(cfg, tt.args)
			tt.check(t, cfg)
		})
	}
}

func TestParseFlags_KeepsSubMinuteValidityWhenUnset(t *testing.T) {
	cfg := defaults()
	cfg.TokenValidity = 90 * time.Second

	parseFlags(cfg, []string{"-a", ":1"})

	assert.Equal(t, 90*time.Second, cfg.TokenValidity)
}
