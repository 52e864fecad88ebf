package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mnasim/internal/circuit"
	"github.com/san-kum/mnasim/internal/linalg"
	"github.com/san-kum/mnasim/internal/sim"
)

type rowPlotter struct {
	xLabel, yLabel string
	rows           [][3]float64
	plotted        int
}

func (p *rowPlotter) SetLabels(x, y string) { p.xLabel, p.yLabel = x, y }
func (p *rowPlotter) AddRow(x float64, series int, y float64) {
	p.rows = append(p.rows, [3]float64{x, float64(series), y})
}
func (p *rowPlotter) Plot() error { p.plotted++; return nil }

type countingObserver struct {
	setup   *linalg.Matrix[float64]
	samples []sim.Sample
	done    bool
}

func (o *countingObserver) OnSetup(g *linalg.Matrix[float64]) error { o.setup = g; return nil }
func (o *countingObserver) OnSample(s sim.Sample) error             { o.samples = append(o.samples, s); return nil }
func (o *countingObserver) OnFinish() error                         { o.done = true; return nil }

var _ = Describe("DC motor transient", func() {
	const h = 0.001

	run := func(tmax float64, solver string) *sim.Result {
		cfg := sim.DefaultConfig()
		cfg.H, cfg.TMax, cfg.Solver = h, tmax, solver
		res, err := sim.New(circuit.DCMotor(circuit.DefaultMotorParams(), h)).Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	Context("over ten steps", func() {
		var (
			s   *sim.Simulator
			obs *countingObserver
			plt *rowPlotter
			res *sim.Result
		)

		BeforeEach(func() {
			s = sim.New(circuit.DCMotor(circuit.DefaultMotorParams(), h))
			obs = &countingObserver{}
			plt = &rowPlotter{}
			s.AddObserver(obs)
			s.AddPlotter(plt)

			cfg := sim.DefaultConfig()
			cfg.TMax = 0.01
			var err error
			res, err = s.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("emits one sample per step at t = i·h", func() {
			Expect(obs.samples).To(HaveLen(10))
			for i, smp := range obs.samples {
				Expect(smp.Step).To(Equal(i))
				Expect(smp.Time).To(Equal(float64(i) * h))
			}
			Expect(res.StepsTaken).To(Equal(10))
		})

		It("emits the cold start before the first solve", func() {
			Expect(obs.samples[0].State).To(HaveEach(0.0))
			Expect(obs.samples[0].Record).To(BeZero())
		})

		It("matches the first solved state", func() {
			first := obs.samples[1]
			Expect(first.State[circuit.MotorV0]).To(BeNumerically("~", 10, 1e-12))
			Expect(first.State[circuit.MotorV1]).To(BeNumerically("~", 9.523809872639927, 1e-9))
			Expect(first.Record).To(BeNumerically("~", 7.325438464119272e-05, 1e-12))
			Expect(first.Series).To(HaveLen(1))
			Expect(first.Series[0]).To(BeNumerically("~", 0.9523802547201463, 1e-9))
			Expect(first.State[circuit.MotorSourceCurrent]).To(BeZero())
		})

		It("feeds the plotter and notifies observers", func() {
			Expect(plt.xLabel).To(Equal("Wr(Angular Frequency)"))
			Expect(plt.yLabel).To(Equal("ia (A)"))
			Expect(plt.rows).To(HaveLen(10))
			Expect(plt.rows[1][1]).To(BeZero())
			Expect(plt.plotted).To(Equal(1))

			Expect(obs.setup).NotTo(BeNil())
			Expect(obs.setup.Rows()).To(Equal(7))
			Expect(obs.done).To(BeTrue())
		})

		It("keeps the supply current branch at zero", func() {
			for _, st := range res.States {
				Expect(st[circuit.MotorSourceCurrent]).To(BeZero())
			}
		})
	})

	It("produces identical trajectories with cached and per-step inversion", func() {
		cached := run(0.05, "cached")
		inverse := run(0.05, "inverse")
		Expect(cached.States).To(Equal(inverse.States))
	})

	It("agrees with LU within tolerance", func() {
		cached := run(0.05, "cached")
		lu := run(0.05, "lu")
		Expect(lu.States).To(HaveLen(len(cached.States)))
		for i := range cached.States {
			for j := range cached.States[i] {
				Expect(lu.States[i][j]).To(BeNumerically("~", cached.States[i][j], 1e-9))
			}
		}
	})

	It("settles to the analytic steady state", func() {
		res := run(1.0, "cached")
		Expect(res.StepsTaken).To(Equal(1000))

		// ω = Kt·Va/Ra / (1/Bm + Bload + Kt·Ke/Ra)
		p := circuit.DefaultMotorParams()
		want := p.Kt * p.Va / p.Ra / (1/p.Bm + p.Bload + p.Kt*p.Ke/p.Ra)
		Expect(res.Final[circuit.MotorSpeed]).To(BeNumerically("~", want, 1e-9))
		Expect(res.Final[circuit.MotorCurrent]).To(BeNumerically("~", 19.998001199280374, 1e-6))
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		s := sim.New(circuit.DCMotor(circuit.DefaultMotorParams(), h))
		s.AddObserver(&cancelAfter{n: 3, cancel: cancel})

		res, err := s.Run(ctx, sim.DefaultConfig())
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Samples).To(HaveLen(3))
	})
})

type cancelAfter struct {
	n      int
	seen   int
	cancel context.CancelFunc
}

func (c *cancelAfter) OnSetup(*linalg.Matrix[float64]) error { return nil }
func (c *cancelAfter) OnFinish() error                       { return nil }
func (c *cancelAfter) OnSample(sim.Sample) error {
	c.seen++
	if c.seen == c.n {
		c.cancel()
	}
	return nil
}
