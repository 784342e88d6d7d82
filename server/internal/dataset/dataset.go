package dataset

import (
	"errors"
	"fmt"
	"math"

	"github.com/launchdash/launchdash/pkg/types"
)

// ErrEmpty is returned when a dataset would contain no records.
var ErrEmpty = errors.New("dataset has no records")

// ErrInvalidRecord is returned for a record whose payload is negative or not
// finite, or whose outcome class is not 0 or 1.
var ErrInvalidRecord = errors.New("invalid record")

// Dataset is an immutable, ordered set of launch records together with the
// values derived from it at load time. It is safe for concurrent use because
// nothing mutates it after New returns.
type Dataset struct {
	records    []types.LaunchRecord
	sites      []string
	siteIndex  map[string]struct{}
	minPayload float64
	maxPayload float64
}

// New builds a Dataset from records. The slice is copied so later changes by
// the caller are not observed. Every record is checked with Validate.
func New(records []types.LaunchRecord) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	for i, r := range records {
		if err := Validate(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	ds := &Dataset{
		records:    make([]types.LaunchRecord, len(records)),
		siteIndex:  make(map[string]struct{}),
		minPayload: records[0].PayloadMassKg,
		maxPayload: records[0].PayloadMassKg,
	}
	copy(ds.records, records)

	for _, r := range ds.records {
		if _, ok := ds.siteIndex[r.Site]; !ok {
			ds.siteIndex[r.Site] = struct{}{}
			ds.sites = append(ds.sites, r.Site)
		}
		if r.PayloadMassKg < ds.minPayload {
			ds.minPayload = r.PayloadMassKg
		}
		if r.PayloadMassKg > ds.maxPayload {
			ds.maxPayload = r.PayloadMassKg
		}
	}
	return ds, nil
}

// Validate reports whether r may belong to a Dataset. The error wraps
// ErrInvalidRecord.
func Validate(r types.LaunchRecord) error {
	switch {
	case math.IsNaN(r.PayloadMassKg) || math.IsInf(r.PayloadMassKg, 0):
		return fmt.Errorf("%w: payload mass %v is not finite", ErrInvalidRecord, r.PayloadMassKg)
	case r.PayloadMassKg < 0:
		return fmt.Errorf("%w: payload mass %v is negative", ErrInvalidRecord, r.PayloadMassKg)
	case r.OutcomeClass != types.OutcomeFailure && r.OutcomeClass != types.OutcomeSuccess:
		return fmt.Errorf("%w: class %d not in {0, 1}", ErrInvalidRecord, r.OutcomeClass)
	}
	return nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns a copy of all records in load order.
func (d *Dataset) Records() []types.LaunchRecord {
	out := make([]types.LaunchRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Each calls fn for every record in load order without copying the set.
// fn receives the record by value.
func (d *Dataset) Each(fn func(types.LaunchRecord)) {
	for _, r := range d.records {
		fn(r)
	}
}

// Sites returns the distinct launch sites in order of first appearance.
func (d *Dataset) Sites() []string {
	out := make([]string, len(d.sites))
	copy(out, d.sites)
	return out
}

// HasSite reports whether site is one of the known sites.
func (d *Dataset) HasSite(site string) bool {
	_, ok := d.siteIndex[site]
	return ok
}

// MinPayload is the smallest payload mass in the dataset.
func (d *Dataset) MinPayload() float64 { return d.minPayload }

// MaxPayload is the largest payload mass in the dataset.
func (d *Dataset) MaxPayload() float64 { return d.maxPayload }

// Bounds returns the full payload range of the dataset.
func (d *Dataset) Bounds() types.PayloadRange {
	return types.PayloadRange{Low: d.minPayload, High: d.maxPayload}
}
