package circuit_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mnasim/internal/circuit"
	"github.com/san-kum/mnasim/internal/linalg"
)

func divider(eps float64) *circuit.Circuit {
	return &circuit.Circuit{
		Name: "divider",
		Dim:  2,
		Stamps: []circuit.Stamp{
			{Row: 0, Col: 0, Value: 1},
			{Row: 0, Col: 1, Value: -1},
			{Row: 1, Col: 0, Value: -1},
			{Row: 1, Col: 1, Value: 1},
			{Row: 0, Col: 0, Value: eps},
			{Row: 1, Col: 1, Value: eps},
		},
		Sources: []circuit.Source{{Row: 0, Value: 1}},
		Record:  circuit.Probe{Index: 1, Label: "v1"},
	}
}

var _ = Describe("Circuit", func() {
	Describe("Validate", func() {
		It("accepts a well-formed circuit", func() {
			Expect(divider(1e-3).Validate()).To(Succeed())
		})

		DescribeTable("rejects out-of-range descriptions",
			func(mutate func(c *circuit.Circuit)) {
				c := divider(1e-3)
				mutate(c)
				Expect(c.Validate()).To(MatchError(circuit.ErrInvalidCircuit))
			},
			Entry("zero dimension", func(c *circuit.Circuit) { c.Dim = 0 }),
			Entry("stamp row", func(c *circuit.Circuit) { c.Stamps[0].Row = 2 }),
			Entry("stamp column", func(c *circuit.Circuit) { c.Stamps[0].Col = -1 }),
			Entry("source row", func(c *circuit.Circuit) { c.Sources[0].Row = 5 }),
			Entry("source state", func(c *circuit.Circuit) {
				c.Sources[0].Gain = 1
				c.Sources[0].State = 9
			}),
			Entry("record probe", func(c *circuit.Circuit) { c.Record.Index = 2 }),
			Entry("plot probe", func(c *circuit.Circuit) { c.Plot = []circuit.Probe{{Index: 3, Label: "bad"}} }),
			Entry("unknown labels", func(c *circuit.Circuit) { c.Unknowns = []string{"only-one"} }),
		)
	})

	Describe("Assemble", func() {
		It("accumulates repeated stamps in order", func() {
			g, err := divider(0.5).Assemble()
			Expect(err).NotTo(HaveOccurred())
			Expect(g.RowsData()).To(Equal([][]float64{{1.5, -1}, {-1, 1.5}}))
		})

		It("fails on an invalid circuit", func() {
			c := divider(0)
			c.Dim = 0
			_, err := c.Assemble()
			Expect(err).To(MatchError(circuit.ErrInvalidCircuit))
		})

		It("solves the two-node divider to the conductance split", func() {
			const eps = 1e-3
			g, err := divider(eps).Assemble()
			Expect(err).NotTo(HaveOccurred())
			inv, err := g.Inverse()
			Expect(err).NotTo(HaveOccurred())

			b := linalg.NewVector[float64](2)
			Expect(divider(eps).RHS(linalg.NewVector[float64](2), b)).To(Succeed())
			x, err := inv.MulVec(b)
			Expect(err).NotTo(HaveOccurred())

			det := (1+eps)*(1+eps) - 1
			Expect(x.Data()[0]).To(BeNumerically("~", (1+eps)/det, 1e-6))
			Expect(x.Data()[1]).To(BeNumerically("~", 1/det, 1e-6))
		})
	})

	Describe("RHS", func() {
		var c *circuit.Circuit

		BeforeEach(func() {
			c = &circuit.Circuit{
				Name: "rhs",
				Dim:  3,
				Sources: []circuit.Source{
					{Row: 0, Value: 2},
					{Row: 1, State: 2, Gain: 10},
					{Row: 1, Value: 1, State: 0, Gain: -1},
				},
				Record: circuit.Probe{Index: 0},
			}
		})

		It("combines constant and history terms from the previous state", func() {
			b := linalg.VectorOf(9.0, 9.0, 9.0)
			Expect(c.RHS(linalg.VectorOf(3.0, 0.0, 0.5), b)).To(Succeed())
			Expect(b.Data()).To(Equal([]float64{2, 5 + 1 - 3, 0}))
		})

		It("rebuilds from zero on every call", func() {
			b := linalg.NewVector[float64](3)
			prev := linalg.NewVector[float64](3)
			Expect(c.RHS(prev, b)).To(Succeed())
			Expect(c.RHS(prev, b)).To(Succeed())
			Expect(b.Data()).To(Equal([]float64{2, 1, 0}))
		})

		It("rejects vectors of the wrong size", func() {
			Expect(c.RHS(linalg.NewVector[float64](2), linalg.NewVector[float64](3))).To(MatchError(linalg.ErrSizeMismatch))
			Expect(c.RHS(linalg.NewVector[float64](3), linalg.NewVector[float64](4))).To(MatchError(linalg.ErrSizeMismatch))
		})
	})

	It("labels unknowns", func() {
		c := circuit.DCMotor(circuit.DefaultMotorParams(), 0.001)
		Expect(c.Label(circuit.MotorSpeed)).To(Equal("wr"))
		Expect(divider(0).Label(1)).To(Equal("x1"))
	})
})
