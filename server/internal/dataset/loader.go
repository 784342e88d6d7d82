package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/launchdash/launchdash/pkg/types"
)

// ErrMissingColumn is returned when the CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Columns maps the LaunchRecord fields to CSV header names.
type Columns struct {
	Site         string
	PayloadMass  string
	Class        string
	BoosterClass string
}

// DefaultColumns are the header names of the published launch CSV.
var DefaultColumns = Columns{
	Site:         "Launch Site",
	PayloadMass:  "Payload Mass (kg)",
	Class:        "class",
	BoosterClass: "Booster Version Category",
}

// Load reads the CSV file at path and returns the Dataset.
func Load(path string, cols Columns) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer f.Close()

	ds, err := Parse(f, cols)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes CSV from r. The first row must be a header; extra columns are
// ignored.
func Parse(r io.Reader, cols Columns) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := columnIndex(header, cols)
	if err != nil {
		return nil, err
	}

	var records []types.LaunchRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return New(records)
}

// colIndex holds the header positions of the required columns.
type colIndex struct {
	site, payload, class, booster int
}

func columnIndex(header []string, cols Columns) (colIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		// Spreadsheet exports often prefix the first header with a BOM.
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		pos[h] = i
	}

	var idx colIndex
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{cols.Site, &idx.site},
		{cols.PayloadMass, &idx.payload},
		{cols.Class, &idx.class},
		{cols.BoosterClass, &idx.booster},
	} {
		i, ok := pos[c.name]
		if !ok {
			return colIndex{}, fmt.Errorf("%w %q", ErrMissingColumn, c.name)
		}
		*c.dst = i
	}
	return idx, nil
}

func parseRow(row []string, idx colIndex) (types.LaunchRecord, error) {
	payload, err := strconv.ParseFloat(strings.TrimSpace(row[idx.payload]), 64)
	if err != nil {
		return types.LaunchRecord{}, fmt.Errorf("payload mass %q: %w", row[idx.payload], err)
	}

	class, err := strconv.Atoi(strings.TrimSpace(row[idx.class]))
	if err != nil {
		return types.LaunchRecord{}, fmt.Errorf("class %q: %w", row[idx.class], err)
	}

	rec := types.LaunchRecord{
		Site:                   strings.TrimSpace(row[idx.site]),
		PayloadMassKg:          payload,
		OutcomeClass:           class,
		BoosterVersionCategory: strings.TrimSpace(row[idx.booster]),
	}
	if err := Validate(rec); err != nil {
		return types.LaunchRecord{}, err
	}
	return rec, nil
}
