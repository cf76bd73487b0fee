// Command validate checks the emitted content JSON against the location
// registry and prints every error and warning found.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baytides/climate-quest/internal/cli"
	"github.com/baytides/climate-quest/internal/config"
	"github.com/baytides/climate-quest/internal/pipeline"
	"github.com/baytides/climate-quest/internal/report"
	"github.com/baytides/climate-quest/pkg/validate"
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
	var (
		watch   bool
		convert bool
		plain   bool
		width   int
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate converted content",
		Long: `Validate loads events.json, questions.json and summaries.json and checks
them against each other and the location registry. Errors are printed to
stderr and warnings to stdout. The exit status is 1 when any error was found.

With --watch the sources are converted and validated again whenever a CSV or
the location registry changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := cli.Setup(cfg)
			if err != nil {
				return err
			}
			p := pipeline.New(cfg, log)
			opts := report.Options{Width: width, Color: !plain}
			stderr, stdout := cmd.ErrOrStderr(), cmd.OutOrStdout()

			if watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return runWatch(ctx, p, func(rep *validate.Report, err error) {
					if err != nil {
						fmt.Fprintf(stderr, "Content pipeline failed: %v\n", err)
						return
					}
					_ = report.Write(stderr, stdout, rep, opts)
				})
			}

			var rep *validate.Report
			if convert {
				rep, err = p.Run(cmd.Context())
			} else {
				rep, err = p.Validate(cmd.Context())
			}
			if err != nil {
				return err
			}
			if err := report.Write(stderr, stdout, rep, opts); err != nil {
				return err
			}
			return rep.Err()
		},
	}

	cli.BindContentFlags(cmd, cfg)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and revalidate when sources change")
	cmd.Flags().BoolVar(&convert, "convert", false, "Convert the CSV sources before validating")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable styled output")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap messages at this many columns (0 disables)")
	cmd.Flags().DurationVar(&cfg.WatchDebounce, "debounce", cfg.WatchDebounce, "Quiet period before a watch run")

	return cmd
}

func runWatch(ctx context.Context, p *pipeline.Pipeline, onReport pipeline.ReportFunc) error {
	w, err := pipeline.NewWatcher(p, onReport)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
