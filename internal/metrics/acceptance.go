package metrics

import "github.com/san-kum/molopt/internal/driver"

// AcceptanceRate is the fraction of steps whose move was kept.
type AcceptanceRate struct {
	name     string
	accepted int
	samples  int
}

func NewAcceptanceRate() *AcceptanceRate {
	return &AcceptanceRate{name: "acceptance_rate"}
}

func (a *AcceptanceRate) Name() string {
	return a.name
}

func (a *AcceptanceRate) Observe(s driver.Sample) {
	a.samples++
	if s.Accepted {
		a.accepted++
	}
}

func (a *AcceptanceRate) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return float64(a.accepted) / float64(a.samples)
}

func (a *AcceptanceRate) Reset() {
	a.accepted = 0
	a.samples = 0
}
