package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/piddle/internal/dynamo"
)

// Chatter is the standard deviation of tick-to-tick changes in the first
// control input. An unfiltered derivative on a noisy measurement shows up
// here long before it shows up in tracking error.
type Chatter struct {
	deltas []float64
	prev   float64
	seen   bool
}

func NewChatter() *Chatter {
	return &Chatter{}
}

func (c *Chatter) Name() string { return "chatter" }

func (c *Chatter) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(u) == 0 {
		return
	}
	if c.seen {
		c.deltas = append(c.deltas, u[0]-c.prev)
	}
	c.prev = u[0]
	c.seen = true
}

func (c *Chatter) Value() float64 {
	if len(c.deltas) < 2 {
		return 0
	}
	return stat.StdDev(c.deltas, nil)
}

func (c *Chatter) Reset() {
	c.deltas = c.deltas[:0]
	c.prev = 0
	c.seen = false
}
