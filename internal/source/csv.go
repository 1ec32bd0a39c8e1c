package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// readCSV reads a location CSV into raw header-keyed rows. The column
// separator is sniffed from the header line, since the datasets use commas,
// semicolons and tabs interchangeably.
func readCSV(path string) ([]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read csv %s", path)
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = sniffSeparator(raw)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "source: read csv header %s", path)
	}

	var rows []map[string]any
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "source: read csv %s", path)
		}
		row := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// sniffSeparator picks the most frequent candidate separator in the header
// line.
func sniffSeparator(raw []byte) rune {
	header := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		header = raw[:i]
	}
	best := ','
	bestCount := strings.Count(string(header), ",")
	for _, sep := range []rune{';', '\t'} {
		if n := strings.Count(string(header), string(sep)); n > bestCount {
			best = sep
			bestCount = n
		}
	}
	if best != ',' {
		zap.L().Debug("sniffed non-comma csv separator", zap.String("separator", string(best)))
	}
	return best
}
