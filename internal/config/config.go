// Package config collects runtime settings from the environment (optionally seeded from a .env file).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/joho/godotenv"

	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/scheduler"
)

type Config struct {
	BotToken    string
	BotUsername string
	DatabaseURL string
	// RedisURL is optional: without it the locale cache is in-process and
	// payment confirmations run inline.
	RedisURL string
	HTTPAddr string

	RevealStars int
	ReplyTTL    time.Duration
	SendTimeout time.Duration
	SendRate    float64

	SpamWindow      time.Duration
	SpamMaxMessages int
	SpamStaleAfter  time.Duration
	BannedWords     string
	BannedWordsFile string

	SweepSchedule  string
	DashboardToken string
	QueueWeights   string
	Concurrency    int
	LogLevel       string
	PaySupportText string
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a getenv-style lookup and validates it.
func FromEnv(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}
	cfg := &Config{
		BotToken:    p.str("BOT_TOKEN", ""),
		BotUsername: strings.TrimPrefix(p.str("BOT_USERNAME", ""), "@"),
		DatabaseURL: p.str("DB_URL", p.str("DATABASE_URL", "")),
		RedisURL:    p.str("REDIS_URL", ""),
		HTTPAddr:    p.str("HTTP_ADDR", ":8080"),

		RevealStars: p.int("REVEAL_STARS_COST", 50),
		ReplyTTL:    p.duration("REPLY_TTL", 15*time.Minute),
		SendTimeout: p.duration("SEND_TIMEOUT", 15*time.Second),
		SendRate:    p.float("SEND_RATE_PER_SEC", 25),

		SpamWindow:      p.duration("SPAM_WINDOW", 10*time.Second),
		SpamMaxMessages: p.int("SPAM_MAX_MESSAGES", 5),
		SpamStaleAfter:  p.duration("SPAM_STALE_AFTER", time.Hour),
		BannedWords:     p.str("BANNED_WORDS", ""),
		BannedWordsFile: p.str("BANNED_WORDS_FILE", ""),

		SweepSchedule:  p.str("SWEEP_SCHEDULE", scheduler.DefaultCron),
		DashboardToken: p.str("DASHBOARD_TOKEN", ""),
		QueueWeights:   p.str("QUEUE_WEIGHTS", ""),
		Concurrency:    p.int("WORKER_CONCURRENCY", 4),
		LogLevel:       p.str("LOG_LEVEL", "info"),
		PaySupportText: p.str("PAY_SUPPORT_TEXT", ""),
	}
	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings every command needs. Command-specific requirements
// such as the bot token are checked by the command.
func (c *Config) Validate() error {
	var errs []error
	if c.RevealStars <= 0 {
		errs = append(errs, fmt.Errorf("REVEAL_STARS_COST must be positive, got %d", c.RevealStars))
	}
	if c.SpamWindow <= 0 || c.SpamMaxMessages <= 0 {
		errs = append(errs, errors.New("SPAM_WINDOW and SPAM_MAX_MESSAGES must be positive"))
	}
	if !gronx.IsValid(c.SweepSchedule) {
		errs = append(errs, fmt.Errorf("SWEEP_SCHEDULE is not a valid cron expression: %q", c.SweepSchedule))
	}
	if c.SendRate < 0 {
		errs = append(errs, errors.New("SEND_RATE_PER_SEC must not be negative"))
	}
	return errors.Join(errs...)
}

type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) int(key string, def int) int {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

// duration accepts Go durations ("90s") and bare integers as seconds.
func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
