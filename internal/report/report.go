// Package report renders match-run summaries as aligned text tables and CSV
// files: a per-strategy breakdown per country plus cross-country hit and
// percentage matrices.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mfroelund/json2tab/internal/matcher"
	"github.com/mfroelund/json2tab/internal/model"
)

// totalColumn labels the synthetic country holding the global counters.
const totalColumn = "Total"

// strategyRows returns the report row order: the known strategy tags first,
// then any unexpected tags seen in this run, sorted for determinism.
func strategyRows(stats *matcher.Stats) []string {
	rows := append([]string{}, model.KnownStrategies...)
	known := make(map[string]bool, len(rows))
	for _, tag := range rows {
		known[tag] = true
	}

	var extra []string
	for tag := range stats.Global {
		if !known[tag] {
			extra = append(extra, tag)
		}
	}
	sort.Strings(extra)
	return append(rows, extra...)
}

func countryTotal(counter map[string]int) int {
	total := 0
	for _, n := range counter {
		total += n
	}
	return total
}

// detailRow is one line of a per-country summary file.
type detailRow struct {
	Matcher    string `csv:"Matcher"`
	Hits       int    `csv:"Nr of Hits"`
	Percentage int    `csv:"Percentage (%)"`
}

// countryDetails builds the per-strategy breakdown for one country, sorted by
// percentage descending. The Total row counts every outcome for the country.
func countryDetails(stats *matcher.Stats, counter map[string]int) []detailRow {
	total := countryTotal(counter)
	rows := make([]detailRow, 0, len(model.KnownStrategies))
	for _, tag := range strategyRows(stats) {
		value := counter[tag]
		if tag == totalColumn {
			value = total
		}
		percent := 0
		if total > 0 {
			percent = value * 100 / total
		}
		rows = append(rows, detailRow{Matcher: tag, Hits: value, Percentage: percent})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Percentage > rows[j].Percentage })
	return rows
}

// crossTable builds the strategy-by-country matrix. With percentages enabled
// cells hold integer percentages of each country's total instead of raw hit
// counts. Rows are sorted by the Total column, descending.
func crossTable(stats *matcher.Stats, percentages bool) *Table {
	countries := append(stats.Countries(), totalColumn)
	tags := strategyRows(stats)

	headers := []string{"Matcher"}
	for _, country := range countries {
		if percentages {
			headers = append(headers, country+" (%)")
		} else {
			headers = append(headers, country)
		}
	}

	type rowWithKey struct {
		cells []string
		key   int
	}
	rows := make([]rowWithKey, 0, len(tags))
	for _, tag := range tags {
		cells := []string{tag}
		key := 0
		for _, country := range countries {
			counter := stats.PerCountry[country]
			if country == totalColumn {
				counter = stats.Global
			}
			total := countryTotal(counter)
			value := counter[tag]
			if tag == totalColumn {
				value = total
			}
			if percentages {
				if total > 0 {
					value = value * 100 / total
				} else {
					value = 0
				}
			}
			if country == totalColumn {
				key = value
			}
			cells = append(cells, strconv.Itoa(value))
		}
		rows = append(rows, rowWithKey{cells: cells, key: key})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].key > rows[j].key })

	table := &Table{Headers: headers}
	for _, row := range rows {
		table.Rows = append(table.Rows, row.cells)
	}
	return table
}

// Writer persists match summaries under OutputDir. SummaryFile names the base
// file; its extension may be a multi-extension list like
// "summary.[csv,txt]". With PerCountry enabled every country gets its own
// breakdown file next to the cross-country matrices.
type Writer struct {
	OutputDir   string
	SummaryFile string
	PerCountry  bool
}

// Write renders and persists the summary files and returns the plain-text
// cross-country tables for display.
func (w *Writer) Write(stats *matcher.Stats) (string, error) {
	header := fmt.Sprintf("Matching Summary (total towers matched: %d):\n\n", stats.Total())

	if w.PerCountry {
		for _, country := range append(stats.Countries(), totalColumn) {
			counter := stats.PerCountry[country]
			if country == totalColumn {
				counter = stats.Global
			}
			rows := countryDetails(stats, counter)
			countryHeader := fmt.Sprintf(
				"Matching Summary (total towers matched in %s: %d):\n\n",
				country, countryTotal(counter))
			name := InjectSuffix(w.SummaryFile, "_"+country)
			if err := w.writeTable(name, countryHeader, detailTable(rows), rows); err != nil {
				return "", err
			}
		}
	}

	var rendered []string
	for _, matrix := range []struct {
		suffix      string
		percentages bool
	}{
		{"_hits", false},
		{"_percent", true},
	} {
		table := crossTable(stats, matrix.percentages)
		if err := w.writeTable(InjectSuffix(w.SummaryFile, matrix.suffix), header, table, nil); err != nil {
			return "", err
		}
		rendered = append(rendered, table.Render())
	}

	return header + strings.Join(rendered, "\n\n"), nil
}

func detailTable(rows []detailRow) *Table {
	table := &Table{Headers: []string{"Matcher", "Nr of Hits", "Percentage (%)"}}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			row.Matcher, strconv.Itoa(row.Hits), strconv.Itoa(row.Percentage),
		})
	}
	return table
}

// writeTable writes one logical table in every requested extension. CSV files
// prefer the typed rows when available so csvutil controls quoting.
func (w *Writer) writeTable(filename, header string, table *Table, rows []detailRow) error {
	if filename == "" {
		return nil
	}

	for _, ext := range ParseExtList(filepath.Ext(filename)) {
		path := filepath.Join(w.OutputDir, OutputFilename(filename, ext))
		switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
		case "csv":
			if err := w.writeCSV(path, table, rows); err != nil {
				return err
			}
		case "txt":
			content := header + table.Render()
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return eris.Wrapf(err, "report: write %s", path)
			}
		default:
			zap.L().Warn("no writer for summary extension, file skipped",
				zap.String("extension", ext))
		}
	}
	return nil
}

func (w *Writer) writeCSV(path string, table *Table, rows []detailRow) error {
	var raw []byte
	var err error
	if rows != nil {
		raw, err = csvutil.Marshal(rows)
		if err != nil {
			return eris.Wrapf(err, "report: marshal %s", path)
		}
	} else {
		var sb strings.Builder
		sb.WriteString(strings.Join(table.Headers, ",") + "\n")
		for _, row := range table.Rows {
			sb.WriteString(strings.Join(row, ",") + "\n")
		}
		raw = []byte(sb.String())
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	return nil
}

// InjectSuffix inserts suffix between the filename stem and its extension.
func InjectSuffix(filename, suffix string) string {
	if filename == "" {
		return filename
	}
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + suffix + ext
}

// OutputFilename swaps the filename's extension for the given one.
func OutputFilename(filename, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ext
}

// ParseExtList expands a multi-extension marker like ".[csv,txt]" into its
// parts; a plain extension comes back as a single-element list.
func ParseExtList(ext string) []string {
	if strings.HasPrefix(ext, ".[") && strings.HasSuffix(ext, "]") {
		return strings.Split(ext[2:len(ext)-1], ",")
	}
	return []string{ext}
}
