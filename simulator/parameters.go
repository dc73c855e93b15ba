package simulator

import (
	"fmt"
	"math"
	"strings"

	"weldsim/material"
)

type Process string

const (
	GTAW Process = "GTAW"
	GMAW Process = "GMAW"
)

func ParseProcess(s string) (Process, error) {
	switch Process(strings.ToUpper(strings.TrimSpace(s))) {
	case GTAW:
		return GTAW, nil
	case GMAW:
		return GMAW, nil
	}
	return "", fmt.Errorf("%w: unknown process %q", ErrInvalidParameter, s)
}

// DefaultEfficiency is the tabulated arc efficiency of the process on the given material.
func (p Process) DefaultEfficiency(rec material.Record) float64 {
	if p == GMAW {
		return rec.EfficiencyGMAW
	}
	return rec.EfficiencyGTAW
}

// Mode selects the heat conduction solution.
type Mode string

const (
	// PointSource is the 3D moving point source on a semi-infinite plate.
	PointSource Mode = "point"
	// ThinPlate is the 2D moving line source through a plate of given thickness.
	ThinPlate Mode = "thin-plate"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", PointSource:
		return PointSource, nil
	case ThinPlate:
		return ThinPlate, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidParameter, s)
}

// Param names a sweepable welding parameter.
type Param string

const (
	ParamCurrent       Param = "current"
	ParamVoltage       Param = "voltage"
	ParamTravelSpeed   Param = "travel_speed"
	ParamArcEfficiency Param = "arc_efficiency"
)

// SensitivityParams are the inputs varied by Sensitivity, in report order.
var SensitivityParams = []Param{ParamCurrent, ParamVoltage, ParamTravelSpeed, ParamArcEfficiency}

func ParseParam(s string) (Param, error) {
	p := Param(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SensitivityParams {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown sweep parameter %q", ErrInvalidParameter, s)
}

// ParameterInput is the raw, unchecked form of Parameters. SI units throughout.
type ParameterInput struct {
	Current        float64 // A
	Voltage        float64 // V
	TravelSpeed    float64 // m/s
	ArcEfficiency  float64 // fraction in (0, 1]
	Process        Process
	Material       material.Record
	Mode           Mode
	PlateThickness float64 // m, required in ThinPlate mode
}

// Parameters is a validated, immutable welding set-up.
type Parameters struct {
	in ParameterInput
}

// NewParameters checks every constraint and rejects the input on the first violation.
func NewParameters(in ParameterInput) (Parameters, error) {
	positive := []struct {
		field string
		value float64
	}{
		{"current", in.Current},
		{"voltage", in.Voltage},
		{"travel_speed", in.TravelSpeed},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			return Parameters{}, &ParameterError{Field: p.field, Value: p.value, Reason: "must be positive"}
		}
		if math.IsInf(p.value, 0) {
			return Parameters{}, &ParameterError{Field: p.field, Value: p.value, Reason: "must be finite"}
		}
	}
	if !(in.ArcEfficiency > 0 && in.ArcEfficiency <= 1) {
		return Parameters{}, &ParameterError{Field: "arc_efficiency", Value: in.ArcEfficiency, Reason: "must be in (0, 1]"}
	}
	if in.Process != GTAW && in.Process != GMAW {
		return Parameters{}, fmt.Errorf("%w: unknown process %q", ErrInvalidParameter, in.Process)
	}
	m := in.Material
	if !(m.ThermalConductivity > 0 && m.Density > 0 && m.SpecificHeat > 0 && m.MeltingTemperature > 0) {
		return Parameters{}, fmt.Errorf("%w: material %q has no usable thermal constants", ErrInvalidParameter, m.Name)
	}
	if in.Mode == "" {
		in.Mode = PointSource
	}
	switch in.Mode {
	case PointSource:
	case ThinPlate:
		if !(in.PlateThickness > 0) || math.IsInf(in.PlateThickness, 0) {
			return Parameters{}, &ParameterError{Field: "plate_thickness", Value: in.PlateThickness, Reason: "must be positive and finite in thin-plate mode"}
		}
	default:
		return Parameters{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidParameter, in.Mode)
	}
	p := Parameters{in: in}
	if q := HeatInput(p); math.IsInf(q, 0) {
		return Parameters{}, &ParameterError{Field: "heat_input", Value: q, Reason: "overflows"}
	}
	if q := HeatInputPerLength(p); math.IsInf(q, 0) {
		return Parameters{}, &ParameterError{Field: "heat_input_per_length", Value: q, Reason: "overflows"}
	}
	return p, nil
}

func (p Parameters) Current() float64          { return p.in.Current }
func (p Parameters) Voltage() float64          { return p.in.Voltage }
func (p Parameters) TravelSpeed() float64      { return p.in.TravelSpeed }
func (p Parameters) ArcEfficiency() float64    { return p.in.ArcEfficiency }
func (p Parameters) Process() Process          { return p.in.Process }
func (p Parameters) Material() material.Record { return p.in.Material }
func (p Parameters) Mode() Mode                { return p.in.Mode }
func (p Parameters) PlateThickness() float64   { return p.in.PlateThickness }

// Value reads a sweepable parameter.
func (p Parameters) Value(param Param) float64 {
	switch param {
	case ParamCurrent:
		return p.in.Current
	case ParamVoltage:
		return p.in.Voltage
	case ParamTravelSpeed:
		return p.in.TravelSpeed
	case ParamArcEfficiency:
		return p.in.ArcEfficiency
	}
	return 0
}

// With returns a copy with one parameter replaced, validated like NewParameters.
func (p Parameters) With(param Param, value float64) (Parameters, error) {
	in := p.in
	switch param {
	case ParamCurrent:
		in.Current = value
	case ParamVoltage:
		in.Voltage = value
	case ParamTravelSpeed:
		in.TravelSpeed = value
	case ParamArcEfficiency:
		in.ArcEfficiency = value
	default:
		return Parameters{}, fmt.Errorf("%w: unknown sweep parameter %q", ErrInvalidParameter, param)
	}
	return NewParameters(in)
}

// HeatInput is the net arc power delivered to the workpiece, η·I·U, in W.
func HeatInput(p Parameters) float64 {
	return p.in.ArcEfficiency * p.in.Current * p.in.Voltage
}

// HeatInputPerLength is the energy deposited per unit weld length, in J/mm.
func HeatInputPerLength(p Parameters) float64 {
	return HeatInput(p) / (p.in.TravelSpeed * 1000)
}
