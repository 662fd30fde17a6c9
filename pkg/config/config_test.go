package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 20, cfg.Console.PageSize)
	assert.Equal(t, 3*time.Second, cfg.Console.ProgramsWait)
	assert.Equal(t, 7*24*time.Hour, cfg.Invitations.ExpiryTTL)
	assert.Equal(t, "mail:suppressed", cfg.Invitations.SuppressionKey)
	assert.Equal(t, 15*time.Minute, cfg.Invitations.SweepInterval)
	assert.Equal(t, "./exports", cfg.Console.ExportDir)
	assert.False(t, cfg.Events.Enabled)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("CONSOLE_PAGE_SIZE", 0)
	v.Set("CONSOLE_BASE_URL", "http://admin.local/api/v1/")
	v.Set("CONSOLE_PROGRAMS_WAIT", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := fromViper(v)
	assert.Equal(t, 20, cfg.Console.PageSize)
	assert.Equal(t, "http://admin.local/api/v1", cfg.Console.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Console.ProgramsWait)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}
