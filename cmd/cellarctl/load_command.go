package main

import (
	"fmt"
	"strconv"

	"wine-cellar/internal/app"
	"wine-cellar/internal/imagery"
	"wine-cellar/internal/loader"

	"github.com/spf13/cobra"
)

func newLoadCommand(ctx *commandContext) *cobra.Command {
	var file string
	var fetchImages bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Reset the schema and bulk load a wine snapshot",
		Long: "Drops and recreates every table, then inserts the wines from a JSON snapshot " +
			"of the form {\"wines\": [...]}. Existing data, comments included, is lost.",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Read before touching the store so a bad file leaves it intact.
			snapshot, err := loader.ReadSnapshot(file)
			if err != nil {
				return err
			}

			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				result, err := a.Loader.Load(cmd.Context(), snapshot)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Inserted %d wines, skipped %d\n", len(result.Inserted), len(result.Skipped))
				if len(result.Skipped) > 0 {
					fmt.Fprintln(out, skippedTable(result.Skipped))
				}

				if !fetchImages {
					return nil
				}

				counts := make(map[imagery.Outcome]int)
				for _, wine := range result.Inserted {
					if err := cmd.Context().Err(); err != nil {
						return err
					}
					outcome, err := a.Pipeline.Process(cmd.Context(), wine)
					if err != nil {
						return err
					}
					counts[outcome]++
				}
				fmt.Fprintln(out, outcomeTable(counts))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "wines.json", "Path to the JSON snapshot")
	cmd.Flags().BoolVar(&fetchImages, "fetch-images", false, "Run the image pipeline for every inserted wine")

	return cmd
}

func skippedTable(skipped []loader.Skipped) string {
	rows := make([][]string, 0, len(skipped))
	for _, s := range skipped {
		rows = append(rows, []string{strconv.Itoa(s.Index), s.Reason})
	}
	return renderTable([]string{"Record", "Reason"}, rows, []columnAlignment{alignRight, alignLeft})
}
