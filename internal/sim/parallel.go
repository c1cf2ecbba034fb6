package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/piddle/internal/dynamo"
)

// Job is one independent simulation in a batch. Simulators must not share
// controllers or integrators: each job owns its own instances.
type Job struct {
	Name string
	Sim  *Simulator
	X0   dynamo.State
	Cfg  Config
}

type Outcome struct {
	Name   string
	Result *dynamo.Result
	Err    error
}

// RunAll runs the jobs on at most GOMAXPROCS goroutines and returns
// outcomes in job order. A failing job does not stop the others.
func RunAll(ctx context.Context, jobs []Job) []Outcome {
	out := make([]Outcome, len(jobs))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, job := range jobs {
		g.Go(func() error {
			res, err := job.Sim.Run(ctx, job.X0, job.Cfg)
			out[i] = Outcome{Name: job.Name, Result: res, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return out
}
