package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tonmaster/internal/config"
	"tonmaster/internal/scenario"
)

var (
	configDir string
	envName   string
)

var rootCmd = &cobra.Command{
	Use:   "tonmaster",
	Short: "Ton Master - merchant training on a simulated card terminal",
	Long: `Ton Master puts you behind the counter: a customer asks for items, you charge
the total on the terminal, and every correct charge earns money and XP.

Customers are written by Gemini when GEMINI_API_KEY (or API_KEY) is set and come
from a bundled pool otherwise.

Run without arguments to play in the terminal.`,
	SilenceUsage: true,
	RunE:         runPlay,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	RunE:  runPlay,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the game over HTTP for the web front-end",
	RunE:  runServe,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "configs", "directory holding base.yaml and <env>.yaml")
	rootCmd.PersistentFlags().StringVar(&envName, "env", envOr("APP_ENV", "dev"), "config environment (dev | staging | prod)")
	rootCmd.AddCommand(playCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newScenarioSource connects to Gemini when a key is configured. A client that
// can't be built is logged and the game carries on with the fallback pool.
func newScenarioSource(ctx context.Context, cfg config.Config, logger *slog.Logger) (*scenario.Source, func()) {
	opts := []scenario.Option{
		scenario.WithTimeout(cfg.Gemini.Timeout),
		scenario.WithLogger(logger.With("component", "scenario")),
	}
	cleanup := func() {}

	if cfg.Gemini.APIKey == "" {
		logger.Warn("no Gemini API key found, using fallback customer data")
		return scenario.New(opts...), cleanup
	}

	gen, err := scenario.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		logger.Error("failed to create Gemini client, using fallback customer data", "err", err)
		return scenario.New(opts...), cleanup
	}
	logger.Info("Gemini scenario generation enabled", "model", cfg.Gemini.Model)
	return scenario.New(append(opts, scenario.WithGenerator(gen))...), func() { _ = gen.Close() }
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
