package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ModeServer, cfg.Mode)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, SourceDir, cfg.TemplateSource)
	assert.Equal(t, int64(16), cfg.MaxBodyMB)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, DefaultTrelloURL, cfg.TrelloURL)
	assert.True(t, cfg.Preload)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config - server mode",
			modify: func(*Config) {},
		},
		{
			name:   "valid config - stdio mode ignores port",
			modify: func(c *Config) { c.Mode = ModeStdio; c.Port = 0 },
		},
		{
			name:   "valid config - s3 source",
			modify: func(c *Config) { c.TemplateSource = SourceS3; c.S3Bucket = "forms" },
		},
		{
			name:    "invalid mode",
			modify:  func(c *Config) { c.Mode = "invalid" },
			wantErr: "mode must be",
		},
		{
			name:    "invalid port - too low",
			modify:  func(c *Config) { c.Port = 0 },
			wantErr: "port must be",
		},
		{
			name:    "invalid port - too high",
			modify:  func(c *Config) { c.Port = 65536 },
			wantErr: "port must be",
		},
		{
			name:    "empty templates directory",
			modify:  func(c *Config) { c.TemplatesDir = "" },
			wantErr: "templates directory",
		},
		{
			name:    "s3 without bucket",
			modify:  func(c *Config) { c.TemplateSource = SourceS3 },
			wantErr: "requires a bucket",
		},
		{
			name:    "unknown template source",
			modify:  func(c *Config) { c.TemplateSource = "ftp" },
			wantErr: "invalid template source",
		},
		{
			name:    "zero body limit",
			modify:  func(c *Config) { c.MaxBodyMB = 0 },
			wantErr: "maximum body size",
		},
		{
			name:    "negative template limit",
			modify:  func(c *Config) { c.MaxTemplateMB = -1 },
			wantErr: "maximum template size",
		},
		{
			name:    "zero task board rate",
			modify:  func(c *Config) { c.TrelloRate = 0 },
			wantErr: "rate must be positive",
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "invalid log format",
			modify:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "localhost"
	cfg.Port = 9000

	assert.Equal(t, "localhost:9000", cfg.Address())
	assert.Equal(t, int64(16*1024*1024), cfg.MaxBodyBytes())
	assert.Equal(t, int64(50*1024*1024), cfg.MaxTemplateBytes())
	assert.True(t, cfg.IsServerMode())
	assert.False(t, cfg.IsStdioMode())
	assert.False(t, cfg.IsDebug())

	cfg.Mode = ModeStdio
	cfg.LogLevel = "debug"
	assert.True(t, cfg.IsStdioMode())
	assert.True(t, cfg.IsDebug())
}

func TestConfigTrelloConfigured(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.TrelloConfigured())

	cfg.TrelloKey = "key"
	cfg.TrelloToken = "token"
	assert.False(t, cfg.TrelloConfigured())

	cfg.TrelloListID = "list"
	assert.True(t, cfg.TrelloConfigured())
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrelloKey = "secret-key"
	cfg.TrelloToken = "secret-token"
	cfg.TrelloListID = "list"

	s := cfg.String()

	assert.True(t, strings.HasPrefix(s, "Config{"))
	assert.Contains(t, s, "Mode: server")
	assert.Contains(t, s, "Port: 5000")
	assert.Contains(t, s, "Trello: configured")
	assert.NotContains(t, s, "secret-key")
	assert.NotContains(t, s, "secret-token")
}
