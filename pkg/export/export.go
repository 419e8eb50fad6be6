// Package export writes the record table of a run to CSV, JSON or Parquet
// files and can upload the result to S3.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kilianp07/baysim/core/model"
)

// Format identifies an export file format.
type Format string

const (
	CSV     Format = "csv"
	JSON    Format = "json"
	Parquet Format = "parquet"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case CSV, JSON, Parquet:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// FormatFromPath derives the format from the file extension, defaulting to CSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".parquet":
		return Parquet
	default:
		return CSV
	}
}

// Header returns the CSV header for n bays.
func Header(n int) []string {
	h := make([]string, 0, n+5)
	h = append(h, "time_index")
	for i := 1; i <= n; i++ {
		h = append(h, "bay_"+strconv.Itoa(i))
	}
	return append(h, "total_trucks", "total_cars", "total_power_mw", "timestep_type")
}

// WriteCSV writes the records to w with one column per bay holding the
// vehicle code.
func WriteCSV(w io.Writer, recs []model.OutputRecord) error {
	n := 0
	if len(recs) > 0 {
		n = len(recs[0].Bays)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(n)); err != nil {
		return err
	}
	row := make([]string, 0, n+5)
	for _, r := range recs {
		if len(r.Bays) != n {
			return fmt.Errorf("record %d has %d bays, want %d", r.TimeIndex, len(r.Bays), n)
		}
		row = append(row[:0], strconv.Itoa(r.TimeIndex))
		for _, b := range r.Bays {
			row = append(row, strconv.Itoa(int(b)))
		}
		row = append(row,
			strconv.Itoa(r.TotalTrucks),
			strconv.Itoa(r.TotalCars),
			strconv.FormatFloat(r.TotalPowerMW, 'f', -1, 64),
			r.TimestepType,
		)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the records to w as a JSON array.
func WriteJSON(w io.Writer, recs []model.OutputRecord) error {
	if recs == nil {
		recs = []model.OutputRecord{}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(recs)
}

// WriteFile writes the records to path in the given format, creating the
// parent directory.
func WriteFile(path string, f Format, recs []model.OutputRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if f == Parquet {
		return WriteParquet(path, recs)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	switch f {
	case CSV:
		err = WriteCSV(file, recs)
	case JSON:
		err = WriteJSON(file, recs)
	default:
		err = fmt.Errorf("unknown export format %q", f)
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}
