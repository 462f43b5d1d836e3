package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"slotkeeper/backend/internal/config"
)

const serviceName = "slotkeeper-server"

func main() {
	log := newLogger("info")
	slog.SetDefault(log)

	var cfg config.Config
	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Weekly availability and slot arbitration for professionals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			cfg = loaded
			log = newLogger(cfg.LogLevel)
			slog.SetDefault(log)
			return nil
		},
	}

	rootCmd.AddCommand(serveCmd(&cfg))
	rootCmd.AddCommand(migrateCmd(&cfg))
	rootCmd.AddCommand(availabilityCmd(&cfg))
	rootCmd.AddCommand(scheduleCmd(&cfg))

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(level)})).With(
		slog.String("service", serviceName),
	)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
