// Package source reads wind turbine location records from the heterogeneous
// file formats the datasets come in: CSV exports, GeoJSON/Overpass dumps,
// whitespace tab files and wf101 text files. Rows are standardized into
// TurbineRecord fields through alias lists; unrecognized columns are kept in
// the record's Extra map.
package source

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mfroelund/json2tab/internal/model"
)

// Read loads the turbine records of one file, picking the reader from the
// file extension. renameRules maps source column names onto canonical ones
// before standardization.
func Read(path string, renameRules map[string]string) ([]*model.TurbineRecord, error) {
	var (
		rows []map[string]any
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".json", ".geojson":
		rows, err = readGeoJSON(path)
	case ".tab":
		rows, err = readTab(path)
	case ".txt":
		rows, err = readTxt(path)
	default:
		return nil, eris.Errorf("source: unsupported location file %s", path)
	}
	if err != nil {
		return nil, err
	}

	records := make([]*model.TurbineRecord, 0, len(rows))
	for _, row := range rows {
		applyRenameRules(row, renameRules)
		records = append(records, rowToRecord(row, filepath.Base(path)))
	}

	zap.L().Info("loaded turbine locations",
		zap.String("file", path), zap.Int("turbines", len(records)))
	return records, nil
}

// ReadAll loads several location files concurrently, preserving file order in
// the combined result.
func ReadAll(ctx context.Context, paths []string, renameRules map[string]string) ([]*model.TurbineRecord, error) {
	perFile := make([][]*model.TurbineRecord, len(paths))

	g, _ := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			records, err := Read(path, renameRules)
			if err != nil {
				return err
			}
			perFile[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []*model.TurbineRecord
	for _, records := range perFile {
		out = append(out, records...)
	}
	return out, nil
}

// ParseRenameRules parses a "from=to,from2=to2" rule string.
func ParseRenameRules(rules string) (map[string]string, error) {
	out := make(map[string]string)
	if rules == "" {
		return out, nil
	}
	for _, rule := range strings.Split(rules, ",") {
		key, value, ok := strings.Cut(rule, "=")
		if !ok {
			return nil, eris.Errorf("source: malformed rename rule %q", rule)
		}
		const trim = `'" `
		out[strings.Trim(key, trim)] = strings.Trim(value, trim)
	}
	if len(out) > 0 {
		zap.L().Info("parsed column rename rules", zap.Any("rules", out))
	}
	return out, nil
}

func applyRenameRules(row map[string]any, rules map[string]string) {
	for from, to := range rules {
		if v, ok := row[from]; ok {
			delete(row, from)
			row[to] = v
		}
	}
}
