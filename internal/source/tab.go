package source

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// knmiColumns is the fixed layout of KNMI tab files.
var knmiColumns = []string{"lon", "lat", "type", "r", "z"}

// readTab reads a whitespace-separated KNMI tab file. Lines starting with "#"
// are comments. The numeric type column is rewritten to a synthetic KN_n
// code.
func readTab(path string) ([]map[string]any, error) {
	lines, err := dataLines(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read tab %s", path)
	}

	var rows []map[string]any
	for _, fields := range lines {
		if len(fields) != len(knmiColumns) {
			return nil, eris.Errorf("source: tab file %s has %d columns, want %d",
				path, len(fields), len(knmiColumns))
		}
		row := make(map[string]any, len(knmiColumns))
		for i, name := range knmiColumns {
			row[name] = fields[i]
		}
		if typeNum, err := strconv.ParseFloat(fields[2], 64); err == nil {
			row["type"] = "KN_" + strconv.Itoa(int(typeNum))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// wf101Columns is the fixed layout of wf101 txt files.
var wf101Columns = []string{"longitude", "latitude", "height_offset", "hub_height", "wf101_type", "country"}

// readTxt reads a whitespace-separated wf101 txt file. The type column gets
// the FO_ placeholder prefix so the parser's wf101 rules pick it up.
func readTxt(path string) ([]map[string]any, error) {
	lines, err := dataLines(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read txt %s", path)
	}

	var rows []map[string]any
	for _, fields := range lines {
		if len(fields) != len(wf101Columns) {
			return nil, eris.Errorf("source: txt file %s has %d columns, want %d",
				path, len(fields), len(wf101Columns))
		}
		row := make(map[string]any, len(wf101Columns))
		for i, name := range wf101Columns {
			row[name] = fields[i]
		}
		row["wf101_type"] = "FO_" + fields[4]
		rows = append(rows, row)
	}
	return rows, nil
}

// dataLines returns the whitespace-split fields of every non-comment,
// non-blank line.
func dataLines(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out [][]string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, strings.Fields(line))
	}
	return out, scanner.Err()
}
