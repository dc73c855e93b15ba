package material

// ComparisonRow is one line of the side-by-side material table.
type ComparisonRow struct {
	Material              string  `json:"material"`
	ThermalConductivity   float64 `json:"thermal_conductivity"`
	ConductivityAtMelting float64 `json:"conductivity_at_melting"`
	Density               float64 `json:"density"`
	MeltingPointC         float64 `json:"melting_point_c"`
	DiffusivityMM2        float64 `json:"diffusivity_mm2_s"`
	EfficiencyGTAW        float64 `json:"efficiency_gtaw"`
	EfficiencyGMAW        float64 `json:"efficiency_gmaw"`
	DropletEfficiencyGMAW float64 `json:"droplet_efficiency_gmaw"` // share of GMAW heat carried by the droplets
	MeltingEnthalpyPerKg  float64 `json:"melting_enthalpy_per_kg"` // J/kg to heat from room temperature and melt
	SpecificHeatLiquid    float64 `json:"specific_heat_liquid"`
	SurfaceTension        float64 `json:"surface_tension"`
}

// Comparison is the record's row of the comparison table.
func (r Record) Comparison() ComparisonRow {
	return ComparisonRow{
		Material:              r.Name,
		ThermalConductivity:   r.ThermalConductivity,
		ConductivityAtMelting: r.ConductivityAt(r.MeltingTemperature),
		Density:               r.Density,
		MeltingPointC:         r.MeltingTemperature - 273.15,
		DiffusivityMM2:        r.Diffusivity() * 1e6,
		EfficiencyGTAW:        r.EfficiencyGTAW,
		EfficiencyGMAW:        r.EfficiencyGMAW,
		DropletEfficiencyGMAW: r.DropletEfficiencyGMAW,
		MeltingEnthalpyPerKg:  r.SpecificHeat*(r.MeltingTemperature-RoomTemperature) + r.LatentHeat,
		SpecificHeatLiquid:    r.SpecificHeatLiquid,
		SurfaceTension:        r.SurfaceTension,
	}
}

// Comparison lists the key properties of every material in table order.
func (t *Table) Comparison() []ComparisonRow {
	rows := make([]ComparisonRow, len(t.records))
	for i, r := range t.records {
		rows[i] = r.Comparison()
	}
	return rows
}
