package dashboard

import (
	"fmt"
	"math"
	"sort"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/dataset"
)

// Insight is one finding derived from the dataset, answering the same
// questions as the static Q&A block but computed from the loaded records.
type Insight struct {
	// Key is a stable machine-readable identifier.
	Key string `json:"key"`
	// Question is the question the insight answers.
	Question string `json:"question"`
	// Answer is the winning site, booster category or payload bucket.
	Answer string `json:"answer"`
	// Value is the metric that decided the answer (a count or a rate in %).
	Value float64 `json:"value"`
}

type tally struct {
	launches, successes int
}

func (t tally) rate() float64 {
	if t.launches == 0 {
		return 0
	}
	return float64(t.successes) / float64(t.launches) * 100
}

// Insights computes the dataset findings. Buckets for the payload questions
// are step kg wide. Ties resolve to the first key in sorted order.
func Insights(ds *dataset.Dataset, step float64) []Insight {
	bySite := map[string]*tally{}
	byBooster := map[string]*tally{}
	byBucket := map[float64]*tally{}

	ds.Each(func(r types.LaunchRecord) {
		bucket := math.Floor(r.PayloadMassKg/step) * step
		for _, t := range []*tally{
			get(bySite, r.Site),
			get(byBooster, r.BoosterVersionCategory),
			get(byBucket, bucket),
		} {
			t.launches++
			t.successes += r.OutcomeClass
		}
	})

	var out []Insight

	site, n := best(bySite, func(t tally) float64 { return float64(t.successes) }, false)
	out = append(out, Insight{
		Key:      "most_successes_site",
		Question: "Which site has the largest successful launches?",
		Answer:   site,
		Value:    n,
	})

	site, rate := best(bySite, tally.rate, false)
	out = append(out, Insight{
		Key:      "best_rate_site",
		Question: "Which site has the highest launch success rate?",
		Answer:   site,
		Value:    rate,
	})

	bucket, rate := best(byBucket, tally.rate, false)
	out = append(out, Insight{
		Key:      "best_rate_payload",
		Question: "Which payload range has the highest launch success rate?",
		Answer:   bucketLabel(bucket, step),
		Value:    rate,
	})

	bucket, rate = best(byBucket, tally.rate, true)
	out = append(out, Insight{
		Key:      "worst_rate_payload",
		Question: "Which payload range has the lowest launch success rate?",
		Answer:   bucketLabel(bucket, step),
		Value:    rate,
	})

	booster, rate := best(byBooster, tally.rate, false)
	out = append(out, Insight{
		Key:      "best_rate_booster",
		Question: "Which booster version category has the highest launch success rate?",
		Answer:   booster,
		Value:    rate,
	})

	return out
}

func get[K comparable](m map[K]*tally, k K) *tally {
	t, ok := m[k]
	if !ok {
		t = &tally{}
		m[k] = t
	}
	return t
}

// best returns the key with the highest metric, or the lowest when lowest is
// set. Keys are visited in sorted order so the result is deterministic.
func best[K string | float64](m map[K]*tally, metric func(tally) float64, lowest bool) (K, float64) {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var (
		bestKey K
		bestVal float64
	)
	for i, k := range keys {
		v := metric(*m[k])
		if i == 0 || (!lowest && v > bestVal) || (lowest && v < bestVal) {
			bestKey, bestVal = k, v
		}
	}
	return bestKey, bestVal
}

func bucketLabel(low, step float64) string {
	return fmt.Sprintf("%.0f to %.0f kg", low, low+step)
}
