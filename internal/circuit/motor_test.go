package circuit_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mnasim/internal/circuit"
	"github.com/san-kum/mnasim/internal/linalg"
)

var _ = Describe("DCMotor", func() {
	const h = 0.001

	var (
		p circuit.MotorParams
		c *circuit.Circuit
	)

	BeforeEach(func() {
		p = circuit.DefaultMotorParams()
		c = circuit.DCMotor(p, h)
	})

	It("is a valid seven-unknown system", func() {
		Expect(c.Validate()).To(Succeed())
		Expect(c.Dim).To(Equal(7))
		Expect(c.Record).To(Equal(circuit.Probe{Index: 3, Label: "Wr"}))
		Expect(c.Plot).To(ConsistOf(circuit.Probe{Index: 4, Label: "ia"}))
	})

	It("stamps the shaft and inductor companion entries", func() {
		g, err := c.Assemble()
		Expect(err).NotTo(HaveOccurred())

		shaft, _ := g.At(circuit.MotorSpeed, circuit.MotorSpeed)
		Expect(shaft).To(BeNumerically("~", p.Jm/h+1/p.Bm+p.Bload+p.Jload/h, 1e-9))

		ind, _ := g.At(circuit.MotorCurrent, circuit.MotorCurrent)
		Expect(ind).To(Equal(-p.La / h))

		vs, _ := g.At(circuit.MotorSourceCurrent, circuit.MotorV0)
		Expect(vs).To(Equal(1.0))
	})

	It("is invertible", func() {
		g, err := c.Assemble()
		Expect(err).NotTo(HaveOccurred())
		det, err := g.Determinant()
		Expect(err).NotTo(HaveOccurred())
		Expect(det).NotTo(BeZero())
		_, err = g.Inverse()
		Expect(err).NotTo(HaveOccurred())
	})

	It("drives the supply row with Va from a cold start", func() {
		b := linalg.NewVector[float64](c.Dim)
		Expect(c.RHS(linalg.NewVector[float64](c.Dim), b)).To(Succeed())
		Expect(b.Data()).To(Equal([]float64{0, 0, 0, 0, 0, 0, 10}))
	})

	It("feeds speed and current history back into b", func() {
		prev := linalg.NewVector[float64](c.Dim)
		Expect(prev.Set(circuit.MotorSpeed, 2)).To(Succeed())
		Expect(prev.Set(circuit.MotorCurrent, 3)).To(Succeed())

		b := linalg.NewVector[float64](c.Dim)
		Expect(c.RHS(prev, b)).To(Succeed())
		Expect(b.Data()[circuit.MotorSpeed]).To(BeNumerically("~", 2*(p.Jm+p.Jload)/h, 1e-9))
		Expect(b.Data()[circuit.MotorCurrent]).To(BeNumerically("~", -3*p.La/h, 1e-9))
	})

	Describe("params", func() {
		It("round-trips through SetParam", func() {
			Expect(p.SetParam("va", 24)).To(Succeed())
			Expect(p.GetParams()).To(HaveKeyWithValue("va", 24.0))
			Expect(p.ParamNames()).To(HaveLen(9))
		})

		It("rejects unknown names", func() {
			Expect(p.SetParam("flux", 1)).To(MatchError(circuit.ErrUnknownParam))
		})

		It("rejects zero resistance and friction", func() {
			p.Ra = 0
			Expect(p.Validate()).To(MatchError(circuit.ErrInvalidCircuit))
		})
	})
})
