package metrics

import (
	"math"

	"github.com/san-kum/piddle/internal/dynamo"
)

// IAE is the integral of absolute tracking error |target - x[index]|,
// accumulated with the sample spacing seen by Observe.
type IAE struct {
	target float64
	index  int
	sum    float64
	prevT  float64
	seen   bool
	last   float64
}

func NewIAE(target float64, index int) *IAE {
	return &IAE{target: target, index: index}
}

func (m *IAE) Name() string { return "iae" }

func (m *IAE) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if m.index >= len(x) {
		return
	}
	e := math.Abs(m.target - x[m.index])
	if m.seen {
		m.sum += 0.5 * (e + m.last) * (t - m.prevT)
	}
	m.last = e
	m.prevT = t
	m.seen = true
}

func (m *IAE) Value() float64 { return m.sum }

func (m *IAE) Target() float64 { return m.target }

// SetTarget moves the setpoint mid-run. Error accumulated so far is kept.
func (m *IAE) SetTarget(target float64) { m.target = target }

func (m *IAE) Reset() {
	m.sum = 0
	m.prevT = 0
	m.last = 0
	m.seen = false
}

// Overshoot is the largest excursion past the target, relative to the
// initial distance from it. A response that never crosses the target
// scores 0.
type Overshoot struct {
	target float64
	index  int
	start  float64
	peak   float64
	seen   bool
}

func NewOvershoot(target float64, index int) *Overshoot {
	return &Overshoot{target: target, index: index}
}

func (m *Overshoot) Name() string { return "overshoot" }

func (m *Overshoot) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if m.index >= len(x) {
		return
	}
	y := x[m.index]
	if !m.seen {
		m.start = y
		m.seen = true
		return
	}
	var past float64
	if m.start <= m.target {
		past = y - m.target
	} else {
		past = m.target - y
	}
	if past > m.peak {
		m.peak = past
	}
}

func (m *Overshoot) Target() float64 { return m.target }

// SetTarget moves the setpoint mid-run. A changed target starts a new step
// response: the next sample becomes the starting point and the peak is
// cleared.
func (m *Overshoot) SetTarget(target float64) {
	if target == m.target {
		return
	}
	m.target = target
	m.start = 0
	m.peak = 0
	m.seen = false
}

func (m *Overshoot) Value() float64 {
	span := math.Abs(m.target - m.start)
	if span == 0 {
		return 0
	}
	return m.peak / span
}

func (m *Overshoot) Reset() {
	m.start = 0
	m.peak = 0
	m.seen = false
}
