// Package cli holds the flag wiring shared by the content commands.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baytides/climate-quest/internal/config"
	"github.com/baytides/climate-quest/internal/logger"
	"github.com/baytides/climate-quest/pkg/validate"
)

// BindContentFlags lets flags override the content locations loaded from the
// environment. Every flag defaults to the environment value.
func BindContentFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVar(&cfg.SourceDir, "src", cfg.SourceDir, "Directory holding events.csv, questions.csv and summaries.csv")
	cmd.Flags().StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Directory the JSON content is written to and read from")
	cmd.Flags().StringVar(&cfg.LocationsFile, "locations", cfg.LocationsFile, "Location registry (YAML)")
	cmd.Flags().BoolVar(&cfg.LanguageScreen, "language-screen", cfg.LanguageScreen, "Warn about words unsuitable for grades 4-8")
	cmd.Flags().Var(levelFlag{&cfg.LogLevel}, "log-level", "Log level (debug, info, warn, error)")
}

// Setup validates cfg after flag parsing and installs the default logger.
func Setup(cfg *config.Config) (*slog.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return logger.Setup(cfg), nil
}

// Execute runs cmd and exits. Validation failures exit 1 quietly because the
// report was already printed; other errors are printed first.
func Execute(cmd *cobra.Command) {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, validate.ErrValidationFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

type levelFlag struct {
	level *slog.Level
}

func (f levelFlag) String() string {
	if f.level == nil {
		return "info"
	}
	return strings.ToLower(f.level.String())
}

func (f levelFlag) Set(s string) error {
	return f.level.UnmarshalText([]byte(s))
}

func (f levelFlag) Type() string {
	return "level"
}
