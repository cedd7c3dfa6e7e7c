package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(env(nil))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.RevealStars)
	assert.Equal(t, 15*time.Minute, cfg.ReplyTTL)
	assert.Equal(t, 10*time.Second, cfg.SpamWindow)
	assert.Equal(t, 5, cfg.SpamMaxMessages)
	assert.Equal(t, time.Hour, cfg.SpamStaleAfter)
	assert.Equal(t, "*/5 * * * *", cfg.SweepSchedule)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"BOT_USERNAME":      "@anon_bot",
		"DATABASE_URL":      "postgres://x",
		"REPLY_TTL":         "600",
		"SPAM_WINDOW":       "30s",
		"REVEAL_STARS_COST": "25",
	}))
	require.NoError(t, err)
	assert.Equal(t, "anon_bot", cfg.BotUsername)
	assert.Equal(t, "postgres://x", cfg.DatabaseURL)
	assert.Equal(t, 10*time.Minute, cfg.ReplyTTL)
	assert.Equal(t, 30*time.Second, cfg.SpamWindow)
	assert.Equal(t, 25, cfg.RevealStars)
}

func TestFromEnv_Errors(t *testing.T) {
	_, err := FromEnv(env(map[string]string{"REVEAL_STARS_COST": "lots"}))
	assert.ErrorContains(t, err, "REVEAL_STARS_COST")

	_, err = FromEnv(env(map[string]string{"SWEEP_SCHEDULE": "every minute"}))
	assert.ErrorContains(t, err, "SWEEP_SCHEDULE")

	_, err = FromEnv(env(map[string]string{"REVEAL_STARS_COST": "0"}))
	assert.Error(t, err)
}
