package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/namecord/internal/control"
	"github.com/vietddude/namecord/internal/core/config"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "namecord",
	Short: "Random name generator backed by Behind the Name",
	Long: `Namecord generates plausible full names: a random first name paired with a
last name drawn from one of the first name's cultural usages.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// loadConfig loads .env and the config file, then sets up logging.
func loadConfig() (*config.AppConfig, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		return nil, err
	}

	stylelog.InitDefault(&tint.Options{
		Level:      logLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
	})
	return cfg, nil
}

func logLevel(level string) slog.Level {
	if isDebug {
		return slog.LevelDebug
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// newApp builds the application for one-shot commands.
func newApp() (*control.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	app, err := control.NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize namecord", "error", err)
		return nil, err
	}
	return app, nil
}
