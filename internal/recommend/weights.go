// Package recommend implements the rule-based job recommendation engine:
// candidate selection, multi-factor scoring, and generation orchestration.
package recommend

import (
	"fmt"
	"math"
)

// Weights configures how the six sub-scores combine into the overall
// match score. Passed into NewScorer so tests can run alternate sets.
type Weights struct {
	Skills      float64
	Location    float64
	Salary      float64
	Company     float64
	Experience  float64
	Sponsorship float64
}

// DefaultWeights returns the production weight set
func DefaultWeights() Weights {
	return Weights{
		Skills:      0.25,
		Location:    0.20,
		Salary:      0.15,
		Company:     0.15,
		Experience:  0.15,
		Sponsorship: 0.10,
	}
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Skills + w.Location + w.Salary + w.Company + w.Experience + w.Sponsorship
}

// Validate checks that the weights are non-negative and sum to 1
func (w Weights) Validate() error {
	for _, v := range []float64{w.Skills, w.Location, w.Salary, w.Company, w.Experience, w.Sponsorship} {
		if v < 0 {
			return fmt.Errorf("weights must be non-negative")
		}
	}
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("weights must sum to 1.0, got %v", w.Sum())
	}
	return nil
}
