// Command publish validates the converted content and, when it passes, makes
// it the content set served from Redis.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/baytides/climate-quest/internal/cli"
	"github.com/baytides/climate-quest/internal/config"
	"github.com/baytides/climate-quest/internal/logger"
	"github.com/baytides/climate-quest/internal/pipeline"
	"github.com/baytides/climate-quest/internal/report"
	"github.com/baytides/climate-quest/internal/storage"
	pkgstorage "github.com/baytides/climate-quest/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cli.Execute(rootCmd(cfg))
}

func rootCmd(cfg *config.Config) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish validated content to Redis",
		Long: `Publish validates the converted content and, if no errors were found,
replaces the content set in Redis with it in a single transaction. Content
that fails validation is never published.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := cli.Setup(cfg)
			if err != nil {
				return err
			}
			p := pipeline.New(cfg, log)

			catalog, locations, err := p.Catalog()
			if err != nil {
				return err
			}
			rep := p.Validator(locations).Validate(catalog)
			if err := report.Write(cmd.ErrOrStderr(), cmd.OutOrStdout(), rep, report.Options{Color: true}); err != nil {
				return err
			}
			if err := rep.Err(); err != nil {
				log.Error("Refusing to publish content that failed validation", "run_id", rep.RunID, "errors", len(rep.Errors))
				return err
			}

			manifest := pkgstorage.NewManifest(rep.RunID, catalog, locations, len(rep.Warnings))
			runLog := logger.WithRunID(log, rep.RunID.String())

			if dryRun {
				runLog.Info("Dry run: content not published",
					"questions", manifest.Questions,
					"events", manifest.Events,
					"summaries", manifest.Summaries)
				return nil
			}

			store, err := storage.NewRedisStore(cfg.RedisURL, runLog)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := store.WaitForConnection(ctx, 5, 2*time.Second); err != nil {
				return err
			}
			if err := store.Publish(ctx, catalog, locations, manifest); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Published run %s: %d questions, %d events, %d summaries across %d locations.\n",
				manifest.RunID, manifest.Questions, manifest.Events, manifest.Summaries, manifest.Locations)
			return nil
		},
	}

	cli.BindContentFlags(cmd, cfg)
	cmd.Flags().StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL to publish to")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and count, but do not publish")

	return cmd
}
