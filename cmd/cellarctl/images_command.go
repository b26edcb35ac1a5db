package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"wine-cellar/internal/app"
	"wine-cellar/internal/imagery"

	"github.com/spf13/cobra"
)

func newImagesCommand(ctx *commandContext) *cobra.Command {
	imagesCmd := &cobra.Command{
		Use:   "images",
		Short: "Acquire and normalize bottle images",
	}

	imagesCmd.AddCommand(newImagesSyncCommand(ctx))
	imagesCmd.AddCommand(newImagesFetchCommand(ctx))

	return imagesCmd
}

func newImagesSyncCommand(ctx *commandContext) *cobra.Command {
	var renormalize bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch images for every wine without one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				report, runErr := a.Batch.Run(cmd.Context(), renormalize)
				if report != nil {
					out := cmd.OutOrStdout()
					if renormalize {
						fmt.Fprintf(out, "Renormalized %d stored images\n", report.Renormalized)
					}
					fmt.Fprintln(out, outcomeTable(report.Outcomes))
					for _, name := range report.Failed {
						fmt.Fprintf(out, "failed: %s\n", name)
					}
				}
				return runErr
			})
		},
	}

	cmd.Flags().BoolVar(&renormalize, "renormalize", false, "Re-letterbox every stored image before fetching")

	return cmd
}

func newImagesFetchCommand(ctx *commandContext) *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run the image pipeline for one wine",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id <= 0 {
				return errors.New("--id must be a positive wine id")
			}
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				wine, err := a.Wines.FindByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				outcome, err := a.Pipeline.Process(cmd.Context(), wine)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", wine.Name, outcome)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Wine id")

	return cmd
}

func outcomeTable(counts map[imagery.Outcome]int) string {
	outcomes := make([]string, 0, len(counts))
	for outcome := range counts {
		outcomes = append(outcomes, string(outcome))
	}
	sort.Strings(outcomes)

	rows := make([][]string, 0, len(outcomes)+1)
	total := 0
	for _, outcome := range outcomes {
		n := counts[imagery.Outcome(outcome)]
		total += n
		rows = append(rows, []string{outcome, strconv.Itoa(n)})
	}
	rows = append(rows, []string{"total", strconv.Itoa(total)})

	return renderTable([]string{"Outcome", "Wines"}, rows, []columnAlignment{alignLeft, alignRight})
}
