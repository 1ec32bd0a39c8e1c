package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mfroelund/json2tab/internal/report"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted match runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if err := s.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		runs, err := s.ListRuns(ctx, runsLimit)
		if err != nil {
			return eris.Wrap(err, "list runs")
		}

		table := &report.Table{Headers: []string{"Run ID", "Generated", "Records", "Suffix"}}
		for _, run := range runs {
			table.Rows = append(table.Rows, []string{
				run.ID,
				run.Generated.Format(time.RFC3339),
				strconv.Itoa(run.Total),
				run.Suffix,
			})
		}
		fmt.Println(table.Render())
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs to list")
	rootCmd.AddCommand(runsCmd)
}
