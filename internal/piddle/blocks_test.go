package piddle

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"
)

func TestProportional(t *testing.T) {
	g := NewWithT(t)
	p := NewProportional(2.5)

	for _, e := range []float64{-3, 0, 1.25, 1e6} {
		for _, dt := range []float64{1e-3, 0.1, 10} {
			g.Expect(p.Setup(e, dt)).To(Equal(2.5 * e))
		}
	}

	p.SetGain(-1)
	g.Expect(p.Gain()).To(Equal(-1.0))
	g.Expect(p.Setup(4, 0.1)).To(Equal(-4.0))
}

func TestIntegralConstantError(t *testing.T) {
	g := NewWithT(t)
	const (
		gain = 0.5
		e    = 2.0
		dt   = 0.1
		n    = 50
	)
	in := NewIntegral(gain)

	var prev, out float64
	for k := 1; k <= n; k++ {
		out = in.Setup(e, dt)
		if k > 1 {
			// once prevInput == e, every step adds a full rectangle
			g.Expect(out - prev).To(BeNumerically("~", gain*e*dt, 1e-12))
		}
		prev = out
	}
	// the first step averages against the zero initial sample
	g.Expect(out).To(BeNumerically("~", gain*e*(n-0.5)*dt, 1e-9))
	g.Expect(in.Accumulator()).To(BeNumerically("~", e*(n-0.5)*dt, 1e-9))
}

func TestIntegralTrapezoid(t *testing.T) {
	g := NewWithT(t)
	in := NewIntegral(1)

	g.Expect(in.Setup(1, 1)).To(Equal(0.5))
	g.Expect(in.Setup(3, 1)).To(Equal(2.5))
	g.Expect(in.Setup(3, 0)).To(Equal(2.5))
	g.Expect(in.Setup(-1, 2)).To(Equal(4.5))
}

func TestIntegralAdvancesWhileDisabled(t *testing.T) {
	g := NewWithT(t)
	ref := NewIntegral(2)
	in := NewIntegral(2)

	in.Disable()
	for _, e := range []float64{1, -2, 0} {
		g.Expect(in.Setup(e, 0.5)).To(BeZero())
		ref.Setup(e, 0.5)
	}
	in.Enable()
	g.Expect(in.Setup(4, 0.5)).To(Equal(ref.Setup(4, 0.5)))
}

func TestFilterAlpha(t *testing.T) {
	g := NewWithT(t)
	f := NewFilter(1)

	dt := 0.01
	alpha := 1 - math.Exp(-dt*2*math.Pi)
	g.Expect(f.Alpha(dt)).To(BeNumerically("~", alpha, 1e-15))
	g.Expect(f.Setup(1, dt)).To(BeNumerically("~", alpha, 1e-15))
	g.Expect(f.Setup(1, dt)).To(BeNumerically("~", alpha+(1-alpha)*alpha, 1e-15))
	g.Expect(f.Output()).To(BeNumerically("~", alpha+(1-alpha)*alpha, 1e-15))
}

func TestFilterSteadyState(t *testing.T) {
	g := NewWithT(t)
	// exp(-2*pi*1000) underflows to 0, so alpha is exactly 1
	f := NewFilter(1000)

	g.Expect(f.Setup(3.5, 1)).To(Equal(3.5))
	for i := 0; i < 5; i++ {
		g.Expect(f.Setup(3.5, 1)).To(Equal(3.5))
	}
}

func TestFilterVariableRateAndCutoff(t *testing.T) {
	g := NewWithT(t)
	f := NewFilter(2)

	slow := f.Alpha(0.5)
	fast := f.Alpha(0.01)
	g.Expect(slow).To(BeNumerically(">", fast))

	f.SetCutoffFrequency(0)
	g.Expect(f.CutoffFrequency()).To(BeZero())
	g.Expect(f.Alpha(0.1)).To(BeZero())
	g.Expect(f.Setup(10, 0.1)).To(BeZero())
}

func TestDerivativeConstantError(t *testing.T) {
	g := NewWithT(t)
	d := NewDerivative(3, 0)
	g.Expect(d.FilterEnabled()).To(BeFalse())

	g.Expect(d.Setup(2, 0.5)).To(Equal(12.0))
	for i := 0; i < 3; i++ {
		g.Expect(d.Setup(2, 0.5)).To(BeZero())
	}
}

func TestDerivativeFiltered(t *testing.T) {
	g := NewWithT(t)
	d := NewDerivative(1, 5)
	g.Expect(d.FilterEnabled()).To(BeTrue())

	f := NewFilter(5)
	raw := (1.0 - 0) / 0.01
	g.Expect(d.Setup(1, 0.01)).To(Equal(f.Setup(raw, 0.01)))

	d.DisableFilter()
	g.Expect(d.Setup(1.5, 0.01)).To(BeNumerically("~", 50, 1e-9))
}

func TestDerivativeZeroDt(t *testing.T) {
	g := NewWithT(t)
	d := NewDerivative(1, 0)

	g.Expect(math.IsInf(d.Setup(1, 0), 1)).To(BeTrue())
	g.Expect(math.IsNaN(d.Setup(1, 0))).To(BeTrue())
}

func TestDerivativeResetClearsDisabledFilter(t *testing.T) {
	g := NewWithT(t)
	d := NewDerivative(1, 10)

	d.Setup(5, 0.1)
	d.DisableFilter()
	d.Reset()
	d.EnableFilter()
	g.Expect(d.filter.Output()).To(BeZero())

	fresh := NewDerivative(1, 10)
	g.Expect(d.Setup(2, 0.1)).To(Equal(fresh.Setup(2, 0.1)))
}

func TestAntiwindupClamp(t *testing.T) {
	g := NewWithT(t)
	a, err := NewAntiwindup(10, -10)
	g.Expect(err).NotTo(HaveOccurred())

	in := []float64{15, -15, 5}
	want := []float64{10, -10, 5}
	for i := range in {
		g.Expect(a.Setup(in[i], 0.1)).To(Equal(want[i]))
	}

	g.Expect(a.Integration(15)).To(BeZero())
	g.Expect(a.Integration(-15)).To(BeZero())
	g.Expect(a.Integration(10)).To(Equal(1.0))
	g.Expect(a.Integration(5)).To(Equal(1.0))
	g.Expect(a.Integration(math.NaN())).To(BeZero())
}

func TestAntiwindupBounds(t *testing.T) {
	g := NewWithT(t)

	_, err := NewAntiwindup(-1, 1)
	g.Expect(err).To(MatchError(ErrInvalidBounds))

	a, err := NewAntiwindup(2, 2)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(a.Setup(3, 1)).To(Equal(2.0))

	g.Expect(a.SetBounds(0, 1)).To(MatchError(ErrInvalidBounds))
	g.Expect(a.SetBounds(math.NaN(), 1)).To(MatchError(ErrInvalidBounds))
	g.Expect(a.Upper()).To(Equal(2.0))
	g.Expect(a.Lower()).To(Equal(2.0))
}

func TestAntiwindupNaNPassesThrough(t *testing.T) {
	g := NewWithT(t)
	a, _ := NewAntiwindup(1, -1)
	g.Expect(math.IsNaN(a.Setup(math.NaN(), 1))).To(BeTrue())
}

func TestDisabledBlocks(t *testing.T) {
	aw, _ := NewAntiwindup(1, -1)
	blocks := map[string]Block{
		"proportional": NewProportional(2),
		"integral":     NewIntegral(2),
		"filter":       NewFilter(10),
		"derivative":   NewDerivative(2, 10),
	}
	inputs := []float64{-7, 0, 3.5}

	for name, b := range blocks {
		t.Run(name, func(t *testing.T) {
			g := NewWithT(t)
			b.Disable()
			g.Expect(b.IsDisabled()).To(BeTrue())
			for _, in := range inputs {
				g.Expect(b.Setup(in, 0.1)).To(BeZero())
			}
			b.Reset()
			g.Expect(b.IsEnabled()).To(BeFalse())
		})
	}

	t.Run("antiwindup", func(t *testing.T) {
		g := NewWithT(t)
		aw.Disable()
		for _, in := range inputs {
			g.Expect(aw.Setup(in, 0.1)).To(Equal(in))
		}
	})
}

func TestResetMatchesFreshBlock(t *testing.T) {
	build := map[string]func() Block{
		"proportional": func() Block { return NewProportional(1.5) },
		"integral":     func() Block { return NewIntegral(0.7) },
		"filter":       func() Block { return NewFilter(3) },
		"derivative":   func() Block { return NewDerivative(0.2, 4) },
		"antiwindup": func() Block {
			a, _ := NewAntiwindup(2, -2)
			return a
		},
	}

	for name, mk := range build {
		t.Run(name, func(t *testing.T) {
			g := NewWithT(t)
			used := mk()
			for _, e := range []float64{1, -4, 2.5, 9} {
				used.Setup(e, 0.05)
			}
			used.Reset()

			fresh := mk()
			g.Expect(used.Setup(0.8, 0.05)).To(Equal(fresh.Setup(0.8, 0.05)))
			g.Expect(used.Setup(-0.3, 0.05)).To(Equal(fresh.Setup(-0.3, 0.05)))
		})
	}
}
