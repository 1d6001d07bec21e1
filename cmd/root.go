// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/devnullvoid/pvetui-stats/internal/config"
	"github.com/devnullvoid/pvetui-stats/internal/gateway"
	"github.com/devnullvoid/pvetui-stats/internal/metrics"
	"github.com/devnullvoid/pvetui-stats/internal/store"
	"github.com/devnullvoid/pvetui-stats/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "pvetui-stats",
	Short: "Serves cached GitHub statistics for the pvetui website.",
	Long: `pvetui-stats fetches the star count, latest release, release count and
contributor count of a GitHub repository, caches them for an hour and falls back
to stale data or built-in defaults when GitHub cannot be reached.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringP("owner", "o", "", "Owner of the tracked repository")
	rootCmd.PersistentFlags().StringP("repo", "r", "", "Name of the tracked repository")
	rootCmd.PersistentFlags().String("store", "", "Cache store backend (file, sqlite, memory)")
	rootCmd.PersistentFlags().String("store-path", "", "Cache directory (file) or database path (sqlite)")
	rootCmd.PersistentFlags().Duration("ttl", 0, "How long cached stats are served before refreshing")
	rootCmd.PersistentFlags().String("api-url", "", "GitHub REST API base URL")
}

// newLogger discards all logs unless --verbose is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// loadConfig layers the command-line flags over config.Load.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("owner") {
		cfg.GitHub.Owner, _ = flags.GetString("owner")
	}
	if flags.Changed("repo") {
		cfg.GitHub.Repo, _ = flags.GetString("repo")
	}
	if flags.Changed("store") {
		cfg.Cache.Store, _ = flags.GetString("store")
	}
	if flags.Changed("store-path") {
		cfg.Cache.Path, _ = flags.GetString("store-path")
	}
	if flags.Changed("ttl") {
		cfg.Cache.TTL, _ = flags.GetDuration("ttl")
	}
	if flags.Changed("api-url") {
		cfg.GitHub.APIURL, _ = flags.GetString("api-url")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newStatsService injects the gateway and store into the use case.
// The caller owns the returned store and must close it.
func newStatsService(cfg *config.Config, recorder metrics.Recorder, logger *log.Logger) (*usecase.StatsService, store.Store, error) {
	st, err := store.Open(cfg.Cache.Store, cfg.Cache.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache store: %w", err)
	}
	githubGateway, err := gateway.NewGitHubGateway(gateway.Options{
		Token:   cfg.GitHub.Token,
		BaseURL: cfg.GitHub.APIURL,
	}, logger)
	if err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	svc := usecase.NewStatsService(githubGateway, st, cfg.GitHub.Owner, cfg.GitHub.Repo, logger,
		usecase.WithTTL(cfg.Cache.TTL),
		usecase.WithRecorder(recorder),
	)
	return svc, st, nil
}

// mustSetup is the common prologue of every command.
func mustSetup(cmd *cobra.Command, recorder metrics.Recorder) (*config.Config, *usecase.StatsService, store.Store, *log.Logger) {
	logger := newLogger(cmd)
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	svc, st, err := newStatsService(cfg, recorder, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg, svc, st, logger
}
