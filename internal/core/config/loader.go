package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/namecord/internal/infra/pacing"
	"github.com/vietddude/namecord/internal/resolve/usage"
)

// APIKeyEnv is read when the config leaves provider.api_key empty.
const APIKeyEnv = "BTN_API_KEY"

// Load reads configuration from a YAML file. A missing file yields the
// defaults, with the API key taken from the environment.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if _, err := usage.NewRewriteTable(cfg.Usage.Rewrites); err != nil {
		return nil, fmt.Errorf("invalid usage rewrites: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv(APIKeyEnv)
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = 10 * time.Second
	}

	if cfg.Pacing.Delay == 0 {
		cfg.Pacing.Delay = pacing.DefaultDelay
	}
	if cfg.Pacing.Rate == 0 {
		cfg.Pacing.Rate = 2
	}
	if cfg.Pacing.Burst == 0 {
		cfg.Pacing.Burst = 1
	}
	if cfg.Pacing.DailyQuota == 0 {
		cfg.Pacing.DailyQuota = 4000
	}

	if cfg.Redis.WindowLimit == 0 {
		cfg.Redis.WindowLimit = 2
	}

	if cfg.Worker.Workers == 0 {
		cfg.Worker.Workers = 4
	}
	if cfg.Worker.QueueSize == 0 {
		cfg.Worker.QueueSize = 32
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Usage.Rewrites == nil {
		cfg.Usage.Rewrites = usage.DefaultRules
	}
}
