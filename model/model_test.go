package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weldsim/material"
	"weldsim/simulator"
)

func ptr(v float64) *float64 { return &v }

func TestToParametersConvertsUnits(t *testing.T) {
	req := SimulateRequest{
		Material:       "steel",
		Current:        150,
		Voltage:        20,
		TravelSpeed:    5,
		ArcEfficiency:  ptr(0.75),
		Mode:           "thin-plate",
		PlateThickness: 3,
	}
	p, err := req.ToParameters(material.Default())
	require.NoError(t, err)

	assert.Equal(t, "Steel", p.Material().Name)
	assert.InDelta(t, 0.005, p.TravelSpeed(), 1e-15)
	assert.InDelta(t, 0.003, p.PlateThickness(), 1e-15)
	assert.Equal(t, simulator.GTAW, p.Process())
	assert.Equal(t, simulator.ThinPlate, p.Mode())
	assert.InDelta(t, 2250.0, simulator.HeatInput(p), 1e-9)
}

func TestToParametersDefaultsEfficiency(t *testing.T) {
	req := SimulateRequest{Material: "Steel", Current: 200, Voltage: 25, TravelSpeed: 5, Process: "gmaw"}
	p, err := req.ToParameters(material.Default())
	require.NoError(t, err)
	assert.Equal(t, simulator.GMAW, p.Process())
	assert.Equal(t, 0.56, p.ArcEfficiency())
}

func TestToParametersRejects(t *testing.T) {
	table := material.Default()

	_, err := SimulateRequest{Material: "Unobtainium", Current: 1, Voltage: 1, TravelSpeed: 1}.ToParameters(table)
	assert.ErrorIs(t, err, material.ErrUnknownMaterial)

	_, err = SimulateRequest{Material: "Steel", Current: 1, Voltage: 1, TravelSpeed: 1, ArcEfficiency: ptr(0)}.ToParameters(table)
	assert.ErrorIs(t, err, simulator.ErrInvalidParameter)

	_, err = SimulateRequest{Material: "Steel", Current: 1, Voltage: 1, TravelSpeed: 1, Process: "laser"}.ToParameters(table)
	assert.ErrorIs(t, err, simulator.ErrInvalidParameter)

	_, err = SimulateRequest{Material: "Steel", Current: 1, Voltage: 1, TravelSpeed: 1, Mode: "thin-plate"}.ToParameters(table)
	assert.ErrorIs(t, err, simulator.ErrInvalidParameter)
}

func TestSimulateRequestJSON(t *testing.T) {
	var req SimulateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"material":"Aluminum","current":180,"voltage":22,"travel_speed":6}`), &req))
	assert.Nil(t, req.ArcEfficiency)

	require.NoError(t, json.Unmarshal([]byte(`{"material":"Aluminum","arc_efficiency":0}`), &req))
	require.NotNil(t, req.ArcEfficiency)
	assert.Equal(t, 0.0, *req.ArcEfficiency)
}

func TestSweepResolve(t *testing.T) {
	param, values, err := SweepRequest{Parameter: "current", Start: 100, Stop: 350, Step: 25}.Resolve(50)
	require.NoError(t, err)
	assert.Equal(t, simulator.ParamCurrent, param)
	assert.Len(t, values, 10)
	assert.Equal(t, 100.0, values[0])
	assert.Equal(t, 325.0, values[9])

	param, values, err = SweepRequest{Parameter: "travel_speed", Values: []float64{4, 8}}.Resolve(50)
	require.NoError(t, err)
	assert.Equal(t, simulator.ParamTravelSpeed, param)
	assert.InDeltaSlice(t, []float64{0.004, 0.008}, values, 1e-15)

	_, _, err = SweepRequest{Parameter: "voltage"}.Resolve(50)
	assert.ErrorIs(t, err, simulator.ErrInvalidParameter)

	_, _, err = SweepRequest{Parameter: "gas_flow", Values: []float64{1}}.Resolve(50)
	assert.ErrorIs(t, err, simulator.ErrInvalidParameter)
}

func TestSweepResolveLimitsSamples(t *testing.T) {
	_, values, err := SweepRequest{Parameter: "current", Start: 100, Stop: 350, Step: 25}.Resolve(10)
	require.NoError(t, err)
	assert.Len(t, values, 10)

	tests := map[string]SweepRequest{
		"fine step":       {Parameter: "current", Start: 100, Stop: 350, Step: 1e-4},
		"unbounded range": {Parameter: "current", Start: 1, Stop: 1e18, Step: 1},
		"infinite stop":   {Parameter: "voltage", Start: 1, Stop: math.Inf(1), Step: 1},
		"too many values": {Parameter: "voltage", Values: make([]float64, 11)},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, values, err := req.Resolve(10)
			assert.ErrorIs(t, err, simulator.ErrInvalidParameter)
			assert.Nil(t, values)
		})
	}
}

func TestNewSummary(t *testing.T) {
	res := &simulator.Result{
		HeatInput:          2250,
		HeatInputPerLength: 450,
		Geometry: simulator.Geometry{
			Width:           0.006,
			Depth:           0.003,
			Length:          0.009,
			AspectRatio:     1.5,
			Volume:          1e-9,
			Fused:           true,
			PeakTemperature: 3500,
		},
	}
	s := NewSummary(res)
	assert.InDelta(t, 6.0, s.Width, 1e-9)
	assert.InDelta(t, 3.0, s.Depth, 1e-9)
	assert.InDelta(t, 9.0, s.Length, 1e-9)
	assert.InDelta(t, 1.0, s.Volume, 1e-9)
	assert.InDelta(t, 0.5, s.DilutionRatio, 1e-9)
	assert.Equal(t, 3500.0, s.PeakTemperature)
	assert.Zero(t, s.MeanTemperature)

	assert.Zero(t, NewSummary(&simulator.Result{}).DilutionRatio)
}

func TestWithDefaults(t *testing.T) {
	req := SimulateRequest{Material: "Steel", Current: 150, Voltage: 20, TravelSpeed: 5}

	got := req.WithDefaults("thin-plate", 6)
	assert.Equal(t, "thin-plate", got.Mode)
	assert.Equal(t, 6.0, got.PlateThickness)
	assert.Empty(t, req.Mode)

	req.Mode = "point"
	got = req.WithDefaults("thin-plate", 6)
	assert.Equal(t, "point", got.Mode)
	assert.Zero(t, got.PlateThickness)

	req.Mode, req.PlateThickness = "thin-plate", 3
	assert.Equal(t, 3.0, req.WithDefaults("point", 6).PlateThickness)
}
