package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/piddle/internal/control"
	"github.com/san-kum/piddle/internal/dynamo"
	"github.com/san-kum/piddle/internal/integrators"
	"github.com/san-kum/piddle/internal/physics"
	"github.com/san-kum/piddle/internal/piddle"
	"github.com/san-kum/piddle/internal/sim"
)

type decay struct{}

func (d *decay) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{-x[0]}
}
func (d *decay) StateDim() int   { return 1 }
func (d *decay) ControlDim() int { return 0 }

type zero struct{}

func (z *zero) Compute(x dynamo.State, t float64) dynamo.Control { return dynamo.Control{} }

type counter struct {
	n int
}

func (c *counter) Name() string                                        { return "count" }
func (c *counter) Observe(x dynamo.State, u dynamo.Control, t float64) { c.n++ }
func (c *counter) Value() float64                                      { return float64(c.n) }
func (c *counter) Reset()                                              { c.n = 0 }

type blowup struct{}

func (b *blowup) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{math.Inf(1)}
}
func (b *blowup) StateDim() int   { return 1 }
func (b *blowup) ControlDim() int { return 0 }

func thermalLoop(strict bool) (*sim.Simulator, *control.Loop) {
	pid, err := piddle.NewPID(piddle.Gains{P: 2, I: 0.5}, 0, 1, 0)
	Expect(err).NotTo(HaveOccurred())
	loop := control.NewLoop(pid, 10, 0.05)
	loop.Strict = strict
	return sim.New(physics.NewThermal(), integrators.NewRK4(), loop, nil), loop
}

var _ = Describe("Simulator", func() {
	var cfg sim.Config

	BeforeEach(func() {
		cfg = sim.Config{Dt: 0.1, Duration: 1.0, ValidateState: true}
	})

	It("records every tick of an open-loop run", func() {
		s := sim.New(&decay{}, integrators.NewEuler(), &zero{}, nil)
		res, err := s.Run(context.Background(), dynamo.State{1}, cfg)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.States).To(HaveLen(11))
		Expect(res.Times).To(HaveLen(11))
		Expect(res.Controls).To(HaveLen(10))
		Expect(res.Times[10]).To(BeNumerically("~", 1.0, 1e-12))
		Expect(res.States[10][0]).To(BeNumerically("~", math.Pow(0.9, 10), 1e-12))
	})

	It("collects metrics", func() {
		s := sim.New(&decay{}, integrators.NewEuler(), &zero{}, nil)
		c := &counter{}
		s.AddMetric(c)

		res, err := s.Run(context.Background(), dynamo.State{1}, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Metrics).To(HaveKeyWithValue("count", 10.0))
	})

	DescribeTable("rejects invalid configuration",
		func(c sim.Config, x0 dynamo.State) {
			s := sim.New(&decay{}, integrators.NewEuler(), &zero{}, nil)
			_, err := s.Run(context.Background(), x0, c)
			Expect(err).To(HaveOccurred())
		},
		Entry("zero dt", sim.Config{Dt: 0, Duration: 1}, dynamo.State{1}),
		Entry("negative dt", sim.Config{Dt: -0.1, Duration: 1}, dynamo.State{1}),
		Entry("zero duration", sim.Config{Dt: 0.1, Duration: 0}, dynamo.State{1}),
		Entry("infinite duration", sim.Config{Dt: 0.1, Duration: math.Inf(1)}, dynamo.State{1}),
		Entry("NaN dt", sim.Config{Dt: math.NaN(), Duration: 1}, dynamo.State{1}),
		Entry("wrong state size", sim.Config{Dt: 0.1, Duration: 1}, dynamo.State{1, 2}),
	)

	It("stops on a diverging state", func() {
		s := sim.New(&blowup{}, integrators.NewEuler(), &zero{}, nil)
		res, err := s.Run(context.Background(), dynamo.State{1}, cfg)

		Expect(err).To(MatchError(dynamo.ErrInvalidState))
		var se *dynamo.SimulationError
		Expect(err).To(BeAssignableToTypeOf(se))
		Expect(res.StepsTaken).To(BeZero())
	})

	It("honours cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := sim.New(&decay{}, integrators.NewEuler(), &zero{}, nil)
		_, err := s.Run(ctx, dynamo.State{1}, cfg)
		Expect(err).To(MatchError(context.Canceled))
	})

	Context("with a PID loop on the thermal plant", func() {
		It("settles on the target inside the actuator range", func() {
			s, _ := thermalLoop(true)
			res, err := s.Run(context.Background(), dynamo.State{0}, sim.Config{Dt: 0.05, Duration: 120})

			Expect(err).NotTo(HaveOccurred())
			final := res.States[len(res.States)-1][0]
			Expect(final).To(BeNumerically("~", 10, 0.05))
			for _, u := range res.Controls {
				Expect(u[0]).To(BeNumerically(">=", 0))
				Expect(u[0]).To(BeNumerically("<=", 1))
			}
		})

		It("surfaces a rejected step from a strict loop", func() {
			s, _ := thermalLoop(true)
			x := dynamo.State{0}
			_, _, err := s.Advance(x, 0, 0.05)
			Expect(err).NotTo(HaveOccurred())
			_, _, err = s.Advance(x, 0, 0.05)
			Expect(err).To(MatchError(piddle.ErrInvalidTimeStep))
		})
	})
})

var _ = Describe("RunAll", func() {
	It("runs independent jobs and keeps their order", func() {
		jobs := make([]sim.Job, 0, 3)
		for _, name := range []string{"a", "b", "c"} {
			s, _ := thermalLoop(false)
			jobs = append(jobs, sim.Job{Name: name, Sim: s, X0: dynamo.State{0}, Cfg: sim.Config{Dt: 0.05, Duration: 5}})
		}
		jobs[2].Cfg.Dt = 0

		out := sim.RunAll(context.Background(), jobs)
		Expect(out).To(HaveLen(3))
		Expect(out[0].Name).To(Equal("a"))
		Expect(out[0].Err).NotTo(HaveOccurred())
		Expect(out[1].Result.States).To(Equal(out[0].Result.States))
		Expect(out[2].Err).To(HaveOccurred())
	})
})
