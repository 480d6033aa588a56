package emotion

import "math"

// SumTolerance is the accepted deviation from 1.0 for a probability
// distribution.
const SumTolerance = 1e-6

// Distribution is a probability vector over the fixed label set,
// index-aligned with Labels(). It is a value type; copies are cheap and
// callers never share backing storage.
type Distribution [LabelCount]float64

// Sum returns the total probability mass.
func (d Distribution) Sum() float64 {
	total := 0.0
	for _, v := range d {
		total += v
	}
	return total
}

// Dominant returns the argmax label and its probability. Ties resolve to the
// label appearing first in the fixed order, which the strict greater-than
// comparison guarantees.
func (d Distribution) Dominant() (Label, float64) {
	labels := Labels()
	best := 0
	for i := 1; i < LabelCount; i++ {
		if d[i] > d[best] {
			best = i
		}
	}
	return labels[best], d[best]
}

// Get returns the probability assigned to the label, or zero for labels
// outside the fixed set.
func (d Distribution) Get(label Label) float64 {
	idx := label.Index()
	if idx < 0 {
		return 0
	}
	return d[idx]
}

// Valid reports whether the vector is a usable probability distribution:
// no negative entries and mass within tolerance of 1.0.
func (d Distribution) Valid(tolerance float64) bool {
	for _, v := range d {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return math.Abs(d.Sum()-1.0) <= tolerance
}

// Map renders the distribution keyed by label name for JSON surfaces.
func (d Distribution) Map() map[string]float64 {
	out := make(map[string]float64, LabelCount)
	for i, label := range Labels() {
		out[string(label)] = d[i]
	}
	return out
}

// NeutralDefault is the defined distribution returned when no observation has
// been made yet: full mass on Neutral.
func NeutralDefault() Distribution {
	var d Distribution
	d[Neutral.Index()] = 1.0
	return d
}

// FromMap builds a distribution from a label-keyed map. The second return is
// false when a key falls outside the fixed label set.
func FromMap(values map[string]float64) (Distribution, bool) {
	var d Distribution
	for name, p := range values {
		idx := Label(name).Index()
		if idx < 0 {
			return Distribution{}, false
		}
		d[idx] = p
	}
	return d, true
}
