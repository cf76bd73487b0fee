// Command review opens the validation report in a scrollable terminal view
// so authors can work through issues and re-run the checks after editing.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/baytides/climate-quest/internal/cli"
	"github.com/baytides/climate-quest/internal/config"
	"github.com/baytides/climate-quest/internal/pipeline"
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
	var convert bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Browse the validation report interactively",
		Long: `Review runs validation and shows the per-location coverage table followed
by every error and warning in a scrollable view.

Keys: r re-runs, c copies the plain report to the clipboard, q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := cli.Setup(cfg)
			if err != nil {
				return err
			}
			p := pipeline.New(cfg, log)

			prog := tea.NewProgram(NewReviewUI(p, convert),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion())
			if _, err := prog.Run(); err != nil {
				return fmt.Errorf("error running program: %w", err)
			}
			return nil
		},
	}

	cli.BindContentFlags(cmd, cfg)
	cmd.Flags().BoolVar(&convert, "convert", false, "Convert the CSV sources before each run")

	return cmd
}
