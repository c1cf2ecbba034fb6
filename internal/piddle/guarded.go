package piddle

import "sync"

// Guarded serialises access to a PID shared between goroutines. Each call
// holds the lock for the whole tick.
type Guarded struct {
	mu  sync.Mutex
	pid *PID
}

func NewGuarded(p *PID) *Guarded {
	return &Guarded{pid: p}
}

func (g *Guarded) Setup(err, dt float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pid.Setup(err, dt)
}

func (g *Guarded) Step(err, dt float64) (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pid.Step(err, dt)
}

func (g *Guarded) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pid.Reset()
}

func (g *Guarded) Enable() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pid.Enable()
}

func (g *Guarded) Disable() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pid.Disable()
}

func (g *Guarded) IsEnabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pid.IsEnabled()
}

func (g *Guarded) IsDisabled() bool { return !g.IsEnabled() }

// Do runs fn with the lock held, for multi-call updates such as retuning
// gains and bounds together.
func (g *Guarded) Do(fn func(p *PID)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.pid)
}
