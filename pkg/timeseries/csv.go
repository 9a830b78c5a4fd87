package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrBadRow is returned when a CSV row cannot be parsed. Loading stops at the
// first bad row rather than skipping it.
var ErrBadRow = errors.New("timeseries: malformed csv row")

var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

// LoadCSV reads a two-column date,value file into a series. A single header
// row is tolerated; any other unparseable row fails the load. A non-positive
// freq defaults to monthly.
func LoadCSV(path string, freq int) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("timeseries: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("timeseries: read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("timeseries: %s: %w", path, ErrEmpty)
	}

	start := 0
	if looksLikeHeader(rows[0]) {
		start = 1
	}
	if start >= len(rows) {
		return nil, fmt.Errorf("timeseries: %s has no data rows: %w", path, ErrEmpty)
	}

	var (
		first  time.Time
		values = make([]float64, 0, len(rows)-start)
	)
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if len(row) != 2 {
			return nil, fmt.Errorf("%w: line %d has %d fields, want 2", ErrBadRow, i+1, len(row))
		}
		ts, err := ParseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d date %q", ErrBadRow, i+1, row[0])
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d value %q", ErrBadRow, i+1, row[1])
		}
		if i == start {
			first = ts
		}
		values = append(values, v)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return New(name, first, freq, values), nil
}

// SaveCSV writes the series as date,value rows with a header.
func (s *Series) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("timeseries: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "value"}); err != nil {
		return fmt.Errorf("timeseries: write %s: %w", path, err)
	}
	for i, v := range s.Values {
		row := []string{
			s.TimeAt(i).Format("2006-01-02"),
			strconv.FormatFloat(v, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("timeseries: write %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// ParseDate parses a timestamp in any of the supported layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// looksLikeHeader reports whether the row reads as column labels rather than
// data: two fields, neither parseable as its column type.
func looksLikeHeader(row []string) bool {
	if len(row) != 2 {
		return false
	}
	if _, err := ParseDate(row[0]); err == nil {
		return false
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64); err == nil {
		return false
	}
	return true
}
