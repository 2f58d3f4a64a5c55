package commands

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/mrcode/nightscout-report/internal/nightscout"
	"github.com/mrcode/nightscout-report/internal/web"
	"github.com/spf13/cobra"
)

var (
	// Connection
	nightscoutURL string
	apiToken      string

	// Server
	listenAddr string
	timezone   string
	configFile string

	// Logging
	debug bool

	rootCmd = &cobra.Command{
		Use:   "nightscout-report [flags]",
		Short: "Daily Nightscout report server",
		Long: `nightscout-report serves a daily glucose and treatment report built from a
Nightscout site: a chart of the day's readings, a per-treatment table with
parsed notes and correlated CGM values, and daily totals.

Credentials come from the settings file or the environment (NIGHTSCOUT_URL,
API_SECRET, API_TOKEN); flags override both.

Examples:
  nightscout-report                                  # serve on :5000
  nightscout-report --listen :8080 --timezone UTC
  NIGHTSCOUT_URL=https://cgm.example.com nightscout-report`,
		RunE: runServe,
	}
)

func init() {
	rootCmd.Flags().StringVar(&nightscoutURL, "url", "",
		"Nightscout base URL (overrides settings and NIGHTSCOUT_URL)")
	rootCmd.Flags().StringVar(&apiToken, "token", "",
		"Nightscout access token (overrides settings and API_TOKEN)")
	rootCmd.Flags().StringVar(&listenAddr, "listen", "",
		"Listen address (default from settings, :5000)")
	rootCmd.Flags().StringVar(&timezone, "timezone", "",
		"Report display timezone (default from settings, Asia/Tokyo)")
	rootCmd.Flags().StringVar(&configFile, "config", "",
		"Settings file path (default per-OS config dir)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug logging")
}

func runServe(_ *cobra.Command, _ []string) error {
	initLogging()

	settings := models.DefaultSettings()
	if err := settings.Load(configFile); err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	settings.ApplyEnv()
	applyFlags(settings)

	if !settings.IsConfigured() {
		return fmt.Errorf("nightscout URL is not configured (set NIGHTSCOUT_URL or --url)")
	}

	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}

	client := nightscout.NewClient(
		settings.NightscoutURL,
		settings.APISecret,
		settings.APIToken,
		settings.UseToken,
		settings.FetchCount,
	)
	if err := client.TestConnection(); err != nil {
		slog.Warn("nightscout not reachable at startup", "url", settings.NightscoutURL, "err", err)
	}

	server, err := web.NewServer(client, loc, slog.Default())
	if err != nil {
		return err
	}

	slog.Info("serving daily reports",
		"addr", settings.ListenAddr,
		"nightscout", settings.NightscoutURL,
		"timezone", settings.Timezone)

	return http.ListenAndServe(settings.ListenAddr, server.Router())
}

func applyFlags(s *models.Settings) {
	if nightscoutURL != "" {
		s.NightscoutURL = nightscoutURL
	}
	if apiToken != "" {
		s.APIToken = apiToken
		s.UseToken = true
	}
	if listenAddr != "" {
		s.ListenAddr = listenAddr
	}
	if timezone != "" {
		s.Timezone = timezone
	}
}

func initLogging() {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})))
}

func Execute() error {
	return rootCmd.Execute()
}
