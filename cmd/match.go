package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mfroelund/json2tab/internal/catalog"
	"github.com/mfroelund/json2tab/internal/geo"
	"github.com/mfroelund/json2tab/internal/heuristic"
	"github.com/mfroelund/json2tab/internal/matcher"
	"github.com/mfroelund/json2tab/internal/model"
	"github.com/mfroelund/json2tab/internal/report"
	"github.com/mfroelund/json2tab/internal/source"
)

var (
	matchCatalogFiles []string
	matchSourceFiles  []string
	matchMatchedOut   string
	matchSave         bool
	matchRunID        string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match turbine locations against the reference catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if len(matchCatalogFiles) > 0 {
			cfg.Catalog.Files = matchCatalogFiles
		}
		if len(matchSourceFiles) > 0 {
			cfg.Sources.Files = matchSourceFiles
		}
		if err := cfg.Validate("match"); err != nil {
			return err
		}

		cat, err := catalog.Load(cfg.Catalog.Files...)
		if err != nil {
			return eris.Wrap(err, "load catalog")
		}

		rules, err := source.ParseRenameRules(cfg.Sources.RenameRules)
		if err != nil {
			return eris.Wrap(err, "parse rename rules")
		}
		records, err := source.ReadAll(ctx, cfg.Sources.Files, rules)
		if err != nil {
			return eris.Wrap(err, "read locations")
		}

		if cfg.Geo.EEZFile != "" {
			if err := annotateFromBorders(records); err != nil {
				return err
			}
		}

		selector := heuristic.NewDefaultSelector()
		if cfg.Matcher.RegionsFile != "" {
			if err := selector.LoadRegions(cfg.Matcher.RegionsFile); err != nil {
				return eris.Wrap(err, "load regions")
			}
		}

		orch := matcher.New(cat, selector, matcher.Options{
			ForbiddenTypes:         cfg.Matcher.ForbiddenTypesList(),
			UseProbabilisticMapper: cfg.Matcher.UseProbabilisticMapper,
			UseDefaultSelector:     cfg.Matcher.UseDefaultSelector,
		})
		run, stats := orch.MatchAll(records)

		writer := &report.Writer{
			OutputDir:   cfg.Output.Directory,
			SummaryFile: cfg.Output.MatchingSummary,
			PerCountry:  cfg.Output.SummaryPerCountry,
		}
		summary, err := writer.Write(stats)
		if err != nil {
			return eris.Wrap(err, "write summary")
		}
		fmt.Println(summary)

		if matchMatchedOut != "" {
			if err := writeMatchedCSV(matchMatchedOut, records); err != nil {
				return err
			}
		}

		if matchSave {
			if matchRunID != "" {
				run.ID = matchRunID
			}
			if err := saveRun(ctx, run, records); err != nil {
				return err
			}
		}

		zap.L().Info("match run complete",
			zap.String("run_id", run.ID),
			zap.Int("records", run.Total),
		)
		return nil
	},
}

// annotateFromBorders backfills country and offshore fields from the
// configured border datasets.
func annotateFromBorders(records []*model.TurbineRecord) error {
	eez, err := geo.LoadCountries(cfg.Geo.EEZFile, cfg.Geo.PreferISO3)
	if err != nil {
		return eris.Wrap(err, "load EEZ borders")
	}
	var land *geo.CountryIndex
	if cfg.Geo.LandFile != "" {
		if land, err = geo.LoadCountries(cfg.Geo.LandFile, cfg.Geo.PreferISO3); err != nil {
			return eris.Wrap(err, "load land borders")
		}
	}
	geo.NewClassifier(eez, land).Annotate(records, cfg.Geo.UpdateCountry, cfg.Geo.UpdateOffshore)
	return nil
}

// writeMatchedCSV writes the matched records to a CSV file under the output
// directory.
func writeMatchedCSV(filename string, records []*model.TurbineRecord) error {
	rows := make([]model.TurbineRecord, len(records))
	for i, rec := range records {
		rows[i] = *rec
	}
	raw, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "marshal matched records")
	}
	path := filepath.Join(cfg.Output.Directory, filename)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	zap.L().Info("wrote matched records", zap.String("file", path), zap.Int("records", len(rows)))
	return nil
}

func init() {
	matchCmd.Flags().StringSliceVar(&matchCatalogFiles, "catalog", nil, "reference type files (overrides config)")
	matchCmd.Flags().StringSliceVar(&matchSourceFiles, "source", nil, "turbine location files (overrides config)")
	matchCmd.Flags().StringVar(&matchMatchedOut, "matched-out", "", "write matched records to this CSV file")
	matchCmd.Flags().BoolVar(&matchSave, "save", false, "persist the run to the configured store")
	matchCmd.Flags().StringVar(&matchRunID, "run-id", "", "save under a fixed run id, updating its records when it exists")
	rootCmd.AddCommand(matchCmd)
}
