package circuit

import (
	"fmt"
	"sort"
)

// Unknown indices of the DC motor system.
const (
	MotorV0 = iota
	MotorV1
	MotorEMF
	MotorSpeed
	MotorCurrent
	MotorTorque
	MotorSourceCurrent
	MotorDim
)

// MotorParams are the armature, shaft and load constants of the DC motor.
type MotorParams struct {
	Ra    float64 `yaml:"ra" json:"ra"`       // armature resistance (ohm)
	La    float64 `yaml:"la" json:"la"`       // armature inductance (H)
	Jm    float64 `yaml:"jm" json:"jm"`       // rotor inertia (kg·m²)
	Bm    float64 `yaml:"bm" json:"bm"`       // viscous friction
	Ke    float64 `yaml:"ke" json:"ke"`       // back-EMF constant (V·s/rad)
	Kt    float64 `yaml:"kt" json:"kt"`       // torque constant (N·m/A)
	Va    float64 `yaml:"va" json:"va"`       // supply voltage (V)
	Bload float64 `yaml:"bload" json:"bload"` // load damping
	Jload float64 `yaml:"jload" json:"jload"` // load inertia
}

func DefaultMotorParams() MotorParams {
	return MotorParams{
		Ra:    0.5,
		La:    10.0e-3,
		Jm:    0.1,
		Bm:    0.005,
		Ke:    0.1,
		Kt:    0.1,
		Va:    10,
		Bload: 0.1,
		Jload: 1.0,
	}
}

func (p *MotorParams) GetParams() map[string]float64 {
	return map[string]float64{
		"ra":    p.Ra,
		"la":    p.La,
		"jm":    p.Jm,
		"bm":    p.Bm,
		"ke":    p.Ke,
		"kt":    p.Kt,
		"va":    p.Va,
		"bload": p.Bload,
		"jload": p.Jload,
	}
}

func (p *MotorParams) SetParam(name string, value float64) error {
	switch name {
	case "ra":
		p.Ra = value
	case "la":
		p.La = value
	case "jm":
		p.Jm = value
	case "bm":
		p.Bm = value
	case "ke":
		p.Ke = value
	case "kt":
		p.Kt = value
	case "va":
		p.Va = value
	case "bload":
		p.Bload = value
	case "jload":
		p.Jload = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}

// ParamNames lists the parameter names accepted by SetParam, sorted.
func (p *MotorParams) ParamNames() []string {
	params := p.GetParams()
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Validate rejects parameters that would divide by zero during stamping.
func (p *MotorParams) Validate() error {
	if p.Ra == 0 {
		return fmt.Errorf("%w: ra must be nonzero", ErrInvalidCircuit)
	}
	if p.Bm == 0 {
		return fmt.Errorf("%w: bm must be nonzero", ErrInvalidCircuit)
	}
	return nil
}

// DCMotor builds the seven-unknown armature and shaft system for step h.
//
// Unknowns are [v0 v1 emf ω ia Te iVa]. The supply Va drives node 0, Ra sits
// between nodes 0 and 1, and the armature inductance is discretized with
// backward Euler into the -La/h entry of row 4 and its history source. The
// shaft row balances Jm/h·ω, friction and load damping against Kt·ia.
func DCMotor(p MotorParams, h float64) *Circuit {
	gr := 1 / p.Ra

	return &Circuit{
		Name:     "dc_motor",
		Dim:      MotorDim,
		Unknowns: []string{"v0", "v1", "emf", "wr", "ia", "torque", "iva"},
		Stamps: []Stamp{
			// armature resistance and branch current
			{MotorV0, MotorV0, gr},
			{MotorV0, MotorV1, -gr},
			{MotorV0, MotorCurrent, -1},
			{MotorV1, MotorV0, -gr},
			{MotorV1, MotorV1, gr},
			{MotorV1, MotorCurrent, 1},

			// back-EMF
			{MotorEMF, MotorEMF, 1},
			{MotorEMF, MotorSpeed, -p.Ke},

			// shaft
			{MotorSpeed, MotorSpeed, p.Jm/h + 1/p.Bm},
			{MotorSpeed, MotorCurrent, -p.Kt},

			// armature inductance companion
			{MotorCurrent, MotorV1, 1},
			{MotorCurrent, MotorSpeed, -p.Ke},
			{MotorCurrent, MotorCurrent, -p.La / h},

			// electromagnetic torque
			{MotorTorque, MotorCurrent, -p.Kt},
			{MotorTorque, MotorTorque, 1},

			// supply Va
			{MotorV0, MotorSourceCurrent, 1},
			{MotorSourceCurrent, MotorV0, 1},

			// mechanical load
			{MotorSpeed, MotorSpeed, p.Bload},
			{MotorSpeed, MotorSpeed, p.Jload / h},
		},
		Sources: []Source{
			{Row: MotorSpeed, State: MotorSpeed, Gain: p.Jm / h, Label: "rotor inertia history"},
			{Row: MotorCurrent, State: MotorCurrent, Gain: -p.La / h, Label: "inductor history"},
			{Row: MotorSourceCurrent, Value: p.Va, Label: "Va"},
			{Row: MotorSpeed, State: MotorSpeed, Gain: p.Jload / h, Label: "load inertia history"},
		},
		Record: Probe{Index: MotorSpeed, Label: "Wr"},
		Plot:   []Probe{{Index: MotorCurrent, Label: "ia"}},
	}
}
