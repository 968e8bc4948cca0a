package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/gtm-quest/internal/catalog"
	"github.com/BerylCAtieno/gtm-quest/internal/config"
	"github.com/BerylCAtieno/gtm-quest/internal/logging"
	"github.com/BerylCAtieno/gtm-quest/internal/render"
	"github.com/BerylCAtieno/gtm-quest/internal/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gtmquest",
		Short:         "GTM Quest agency catalog and AI GTM strategist",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newSeedCmd(), newRenderCmd())
	return root
}

// loadConfig reads the configuration and builds the logger it asks for.
func loadConfig() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load catalog fixtures into the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			store, err := catalog.Open(cfg.DatabasePath, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			if file == "" {
				file = cfg.SeedFile
			}
			stats, err := seed(cmd.Context(), store, file)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d agencies, %d articles, %d pages\n",
				stats.Agencies, stats.Articles, stats.SEOPages)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalog YAML file (defaults to the built-in catalog)")
	return cmd
}

// seed loads file, or the embedded catalog when file is empty.
func seed(ctx context.Context, store *catalog.Store, file string) (catalog.SeedStats, error) {
	if file == "" {
		return store.LoadDefaultSeed(ctx)
	}
	f, err := os.Open(file)
	if err != nil {
		return catalog.SeedStats{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return store.LoadSeed(ctx, f)
}

func newRenderCmd() *cobra.Command {
	var statePath string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the rendered report for an agent state JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(statePath)
			if err != nil {
				return fmt.Errorf("read state: %w", err)
			}
			state, err := session.DecodeState(raw)
			if err != nil {
				return err
			}
			report := render.Render(session.Snapshot{
				Session:   statePath,
				Version:   1,
				State:     state,
				UpdatedAt: time.Now().UTC(),
			})
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVar(&statePath, "state", "", "path to a GTM state JSON document")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}
