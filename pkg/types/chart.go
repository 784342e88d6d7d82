package types

// ChartKind selects how a ChartData value is drawn.
type ChartKind string

const (
	ChartPie     ChartKind = "pie"
	ChartScatter ChartKind = "scatter"
)

// Slice is one segment of a proportion chart: a site with its success count,
// or an outcome class with its record count.
type Slice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// ScatterPoint is one launch plotted on the correlation chart. PayloadMassKg
// is the x coordinate, OutcomeClass the y coordinate and
// BoosterVersionCategory the colour group.
type ScatterPoint struct {
	PayloadMassKg          float64 `json:"payload_mass_kg"`
	OutcomeClass           int     `json:"class"`
	BoosterVersionCategory string  `json:"booster_version_category"`
}

// ChartData is the renderer-agnostic series for one chart. Exactly one of
// Slices or Points is meaningful, depending on Kind. Both are always non-nil
// so JSON encodes them as [] rather than null.
type ChartData struct {
	Kind   ChartKind      `json:"kind"`
	Title  string         `json:"title"`
	Slices []Slice        `json:"slices"`
	Points []ScatterPoint `json:"points"`
}

// Empty reports whether the chart has nothing to draw.
func (c ChartData) Empty() bool {
	return len(c.Slices) == 0 && len(c.Points) == 0
}

// Total returns the sum of all slice values.
func (c ChartData) Total() int {
	var n int
	for _, s := range c.Slices {
		n += s.Value
	}
	return n
}
