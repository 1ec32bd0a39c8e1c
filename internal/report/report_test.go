package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfroelund/json2tab/internal/matcher"
	"github.com/mfroelund/json2tab/internal/model"
)

func sampleStats() *matcher.Stats {
	stats := matcher.NewStats()
	for i := 0; i < 6; i++ {
		stats.Add(model.StrategyLookupType, "NL")
	}
	for i := 0; i < 3; i++ {
		stats.Add(model.StrategyCacheHitType, "NL")
	}
	stats.Add(model.StrategyDefaultSelector, "DK")
	return stats
}

func TestInjectSuffix(t *testing.T) {
	assert.Equal(t, "summary_NL.txt", InjectSuffix("summary.txt", "_NL"))
	assert.Equal(t, "summary_hits.[csv,txt]", InjectSuffix("summary.[csv,txt]", "_hits"))
	assert.Equal(t, "", InjectSuffix("", "_NL"))
}

func TestOutputFilename(t *testing.T) {
	assert.Equal(t, "summary.csv", OutputFilename("summary.[csv,txt]", "csv"))
	assert.Equal(t, "summary.txt", OutputFilename("summary.csv", ".txt"))
}

func TestParseExtList(t *testing.T) {
	assert.Equal(t, []string{"csv", "txt"}, ParseExtList(".[csv,txt]"))
	assert.Equal(t, []string{".csv"}, ParseExtList(".csv"))
}

func TestCrossTable_HitsSortedByTotal(t *testing.T) {
	table := crossTable(sampleStats(), false)

	assert.Equal(t, []string{"Matcher", "DK", "NL", "Total"}, table.Headers)
	// Total row first (10 outcomes), then the most frequent strategy.
	assert.Equal(t, []string{"Total", "1", "9", "10"}, table.Rows[0])
	assert.Equal(t, []string{model.StrategyLookupType, "0", "6", "6"}, table.Rows[1])
}

func TestCrossTable_Percentages(t *testing.T) {
	table := crossTable(sampleStats(), true)

	assert.Equal(t, []string{"Matcher", "DK (%)", "NL (%)", "Total (%)"}, table.Headers)
	assert.Equal(t, []string{"Total", "100", "100", "100"}, table.Rows[0])
	assert.Equal(t, []string{model.StrategyLookupType, "0", "66", "60"}, table.Rows[1])
}

func TestCountryDetails_SortedByPercentage(t *testing.T) {
	stats := sampleStats()
	rows := countryDetails(stats, stats.PerCountry["NL"])

	assert.Equal(t, "Total", rows[0].Matcher)
	assert.Equal(t, 9, rows[0].Hits)
	assert.Equal(t, 100, rows[0].Percentage)
	assert.Equal(t, model.StrategyLookupType, rows[1].Matcher)
	assert.Equal(t, 66, rows[1].Percentage)
	assert.Equal(t, model.StrategyCacheHitType, rows[2].Matcher)
	assert.Equal(t, 33, rows[2].Percentage)
}

func TestStrategyRows_AppendsUnknownTags(t *testing.T) {
	stats := sampleStats()
	stats.Add("SomethingNew", "NL")

	rows := strategyRows(stats)
	assert.Equal(t, "Total", rows[0])
	assert.Equal(t, "SomethingNew", rows[len(rows)-1])
}

func TestTableRender_PSQLStyle(t *testing.T) {
	table := &Table{
		Headers: []string{"Matcher", "Nr of Hits"},
		Rows:    [][]string{{"Total", "10"}, {"DatabaseLookup(TurbineType)", "6"}},
	}

	rendered := table.Render()
	lines := strings.Split(rendered, "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "+-"))
	assert.Contains(t, lines[1], "| Matcher")
	assert.True(t, strings.HasPrefix(lines[2], "|-"))
	// Numeric cells right-aligned.
	assert.Contains(t, lines[3], "10 |")
	// All lines share the same width.
	for _, line := range lines[1:] {
		assert.Len(t, line, len(lines[0]))
	}
}

func TestWriter_WriteFiles(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{OutputDir: dir, SummaryFile: "summary.[csv,txt]", PerCountry: true}

	rendered, err := w.Write(sampleStats())
	require.NoError(t, err)
	assert.Contains(t, rendered, "Matching Summary (total towers matched: 10)")
	assert.Contains(t, rendered, "DatabaseLookup(TurbineType)")

	for _, name := range []string{
		"summary_hits.csv", "summary_hits.txt",
		"summary_percent.csv", "summary_percent.txt",
		"summary_NL.csv", "summary_NL.txt",
		"summary_DK.txt", "summary_Total.txt",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "summary_NL.csv"))
	require.NoError(t, err)
	content := string(raw)
	assert.True(t, strings.HasPrefix(content, "Matcher,Nr of Hits,Percentage (%)"))
	assert.Contains(t, content, "Total,9,100")

	raw, err = os.ReadFile(filepath.Join(dir, "summary_hits.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Matching Summary (total towers matched: 10)")
	assert.Contains(t, string(raw), "+-")
}

func TestWriter_EmptyFilenameSkipsFiles(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{OutputDir: dir, SummaryFile: ""}

	rendered, err := w.Write(sampleStats())
	require.NoError(t, err)
	assert.Contains(t, rendered, "Matching Summary")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
