package config

import (
	"time"

	"github.com/vietddude/namecord/internal/core/worker"
	"github.com/vietddude/namecord/internal/infra/btn"
	redisclient "github.com/vietddude/namecord/internal/infra/redis"
	"github.com/vietddude/namecord/internal/resolve/usage"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Provider btn.Config         `yaml:"provider"`
	Pacing   PacingConfig       `yaml:"pacing"`
	Redis    redisclient.Config `yaml:"redis"`
	Worker   worker.Config      `yaml:"worker"`
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Usage    UsageConfig        `yaml:"usage"`
	Profiles ProfilesConfig     `yaml:"profiles"`
}

// PacingConfig controls how provider calls are spaced.
type PacingConfig struct {
	Delay      time.Duration `yaml:"delay"`       // fixed wait before every call
	Rate       float64       `yaml:"rate"`        // calls per second shared by all resolutions, 0 = off
	Burst      int           `yaml:"burst"`
	DailyQuota int           `yaml:"daily_quota"` // 0 = unlimited
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// UsageConfig holds the usage code rewrite rules, applied in order.
type UsageConfig struct {
	Rewrites []usage.RuleSpec `yaml:"rewrites"`
}

// ProfilesConfig overrides the profile page hosts used by the about lookup.
type ProfilesConfig struct {
	FirstNameBase string `yaml:"first_name_base"`
	LastNameBase  string `yaml:"last_name_base"`
}
