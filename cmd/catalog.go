package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mfroelund/json2tab/internal/catalog"
	"github.com/mfroelund/json2tab/internal/report"
)

var catalogLimit int

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Load and inspect the reference type catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("catalog"); err != nil {
			return err
		}

		cat, err := catalog.Load(cfg.Catalog.Files...)
		if err != nil {
			return eris.Wrap(err, "load catalog")
		}

		filtered := cat.Indexes(true)
		fmt.Printf("Catalog: %d entries, %d with usable curve data\n\n", cat.Len(), len(filtered))

		limit := catalogLimit
		if limit <= 0 || limit > cat.Len() {
			limit = cat.Len()
		}

		table := &report.Table{
			Headers: []string{"Line", "Model Designation", "Manufacturer", "Diameter", "Height", "Power (kW)", "Curve Points"},
		}
		for i := 0; i < limit; i++ {
			e := cat.Entry(i)
			table.Rows = append(table.Rows, []string{
				strconv.Itoa(i),
				e.ModelDesignation,
				e.Manufacturer,
				formatDim(e.Diameter),
				formatDim(e.Height),
				formatDim(e.RatedPower),
				strconv.Itoa(e.WindSpeedsLen),
			})
		}
		fmt.Println(table.Render())
		return nil
	},
}

func formatDim(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func init() {
	catalogCmd.Flags().IntVar(&catalogLimit, "limit", 0, "show at most this many entries (0 = all)")
	rootCmd.AddCommand(catalogCmd)
}
