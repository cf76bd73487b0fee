// Command convert turns the authored content CSVs into the JSON documents the
// game loads.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/baytides/climate-quest/internal/cli"
	"github.com/baytides/climate-quest/internal/config"
	"github.com/baytides/climate-quest/internal/pipeline"
	"github.com/baytides/climate-quest/pkg/content"
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
	var kinds []string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert content CSVs to JSON",
		Long: `Convert reads events.csv, questions.csv and summaries.csv from the source
directory and writes events.json, questions.json and summaries.json to the
output directory. Rows keep their CSV order. A file that fails to parse or
build leaves its previous JSON untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := cli.Setup(cfg)
			if err != nil {
				return err
			}

			selected := make([]content.Kind, 0, len(kinds))
			for _, k := range kinds {
				kind, err := content.ParseKind(k)
				if err != nil {
					return err
				}
				selected = append(selected, kind)
			}

			results, err := pipeline.New(cfg, log).Convert(cmd.Context(), selected...)
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d %s to %s\n", r.Rows, r.Kind, r.Output)
			}
			return err
		},
	}

	cli.BindContentFlags(cmd, cfg)
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Only convert these kinds (events, questions, summaries)")

	return cmd
}
