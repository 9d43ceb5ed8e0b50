package scoring

import (
	"fmt"
	"math"
	"sort"
)

// ScoreMap maps each domain to its coded value.
type ScoreMap map[Domain]float64

// Values returns the coded values in canonical domain order.
func (m ScoreMap) Values() []float64 {
	out := make([]float64, len(Domains))
	for i, d := range Domains {
		out[i] = m[d]
	}
	return out
}

// Validate checks the score map invariant: exactly the eight domains, each
// holding a coded value.
func (m ScoreMap) Validate() error {
	var issues []Issue
	if len(m) != DomainCount {
		issues = append(issues, Issue{Reason: fmt.Sprintf("expected %d domains, got %d", DomainCount, len(m))})
	}
	for _, d := range Domains {
		v, ok := m[d]
		if !ok {
			issues = append(issues, Issue{Domain: d, Reason: "missing domain"})
			continue
		}
		if !IsCoded(v) {
			issues = append(issues, Issue{Domain: d, Reason: fmt.Sprintf("value %v is not one of 0, 0.5, 1", v)})
		}
	}

	var unknown []string
	for d := range m {
		if _, ok := rules[d]; !ok {
			unknown = append(unknown, string(d))
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		issues = append(issues, Issue{Domain: Domain(name), Reason: "unknown domain"})
	}

	if len(issues) > 0 {
		return invalid(issues...)
	}
	return nil
}

// ParseScoreMap builds a ScoreMap from loosely named keys, resolving each
// key case-insensitively against the domain names.
func ParseScoreMap(raw map[string]float64) (ScoreMap, error) {
	m := make(ScoreMap, len(raw))
	var issues []Issue
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d, err := ParseDomain(k)
		if err != nil {
			issues = append(issues, Issue{Domain: Domain(k), Reason: "unknown domain"})
			continue
		}
		if _, dup := m[d]; dup {
			issues = append(issues, Issue{Domain: d, Reason: "domain given more than once"})
			continue
		}
		m[d] = raw[k]
	}
	if len(issues) > 0 {
		return nil, invalid(issues...)
	}
	return m, nil
}

// Tier is the three-level risk classification of an MPI index.
type Tier int

const (
	TierMild     Tier = 1
	TierModerate Tier = 2
	TierHigh     Tier = 3
)

// Tier thresholds, inclusive upper bounds.
const (
	MildUpperBound     = 0.33
	ModerateUpperBound = 0.66
)

func (t Tier) String() string {
	switch t {
	case TierMild:
		return "mild"
	case TierModerate:
		return "moderate"
	case TierHigh:
		return "high"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Label is the user-facing risk label.
func (t Tier) Label() string {
	switch t {
	case TierMild:
		return "Mild (MPI 1)"
	case TierModerate:
		return "Moderate (MPI 2)"
	case TierHigh:
		return "High (MPI 3)"
	}
	return t.String()
}

// Classify maps a rounded index to its tier.
func Classify(index float64) Tier {
	switch {
	case index <= MildUpperBound:
		return TierMild
	case index <= ModerateUpperBound:
		return TierModerate
	}
	return TierHigh
}

// RoundIndex rounds a non-negative index to two decimals, halves going up:
// 0.125 becomes 0.13 and 0.4375 becomes 0.44.
func RoundIndex(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

// Result is the outcome of aggregating one score map.
type Result struct {
	MPI  float64 `json:"mpi"`
	Tier Tier    `json:"tier"`
	Risk string  `json:"risk"`
}

// Aggregate averages the eight coded values into the MPI and classifies it.
// The tier is chosen on the rounded index.
func Aggregate(m ScoreMap) (Result, error) {
	if err := m.Validate(); err != nil {
		return Result{}, err
	}

	var sum float64
	for _, v := range m.Values() {
		sum += v
	}
	mean := sum / DomainCount
	if math.IsNaN(mean) || mean < 0 || mean > 1 {
		return Result{}, &ComputationError{Op: "aggregate", Reason: fmt.Sprintf("mean %v outside [0, 1]", mean)}
	}

	index := RoundIndex(mean)
	tier := Classify(index)
	return Result{MPI: index, Tier: tier, Risk: tier.Label()}, nil
}
