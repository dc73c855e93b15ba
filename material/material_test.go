package material

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSteel(t *testing.T) {
	steel, err := Lookup("Steel")
	require.NoError(t, err)

	assert.Equal(t, "Steel", steel.Name)
	assert.Equal(t, 50.0, steel.ThermalConductivity)
	assert.Equal(t, 7850.0, steel.Density)
	assert.Equal(t, 490.0, steel.SpecificHeat)
	assert.Equal(t, 1808.0, steel.MeltingTemperature)
	assert.InDelta(t, 50.0/(7850.0*490.0), steel.Diffusivity(), 1e-15)
}

func TestLookupIsRepeatable(t *testing.T) {
	first, err := Lookup("Steel")
	require.NoError(t, err)
	first.ThermalConductivity = 1

	second, err := Lookup("Steel")
	require.NoError(t, err)
	third, err := Lookup("  steel ")
	require.NoError(t, err)

	assert.Equal(t, 50.0, second.ThermalConductivity, "mutating a returned record must not reach the table")
	assert.Equal(t, second, third)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("Unobtainium")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownMaterial)
}

func TestNamesKeepTableOrder(t *testing.T) {
	assert.Equal(t, []string{"Steel", "Aluminum", "Stainless Steel", "Titanium"}, Default().Names())
}

func TestConductivityAt(t *testing.T) {
	steel, err := Lookup("Steel")
	require.NoError(t, err)

	assert.InDelta(t, 50.0, steel.ConductivityAt(RoomTemperature), 1e-9)
	assert.InDelta(t, 35.0, steel.ConductivityAt(steel.MeltingTemperature), 1e-9)
	assert.InDelta(t, 50.0, steel.ConductivityAt(100), 1e-9, "colder than room temperature is capped at k")
	assert.InDelta(t, 15.0, steel.ConductivityAt(1e6), 1e-9, "factor floors at 0.3")
}

func TestComparison(t *testing.T) {
	rows := Default().Comparison()
	require.Len(t, rows, 4)

	al := rows[1]
	assert.Equal(t, "Aluminum", al.Material)
	assert.InDelta(t, 943.0-273.15, al.MeltingPointC, 1e-9)
	assert.InDelta(t, 237.0/(2700.0*903.0)*1e6, al.DiffusivityMM2, 1e-9)
	assert.Greater(t, al.MeltingEnthalpyPerKg, al.ThermalConductivity)
	assert.Equal(t, 1080.0, al.SpecificHeatLiquid)
	assert.Equal(t, 0.9, al.SurfaceTension)
	assert.Equal(t, 0.20, al.DropletEfficiencyGMAW)
}

func TestParseRejectsBadTables(t *testing.T) {
	_, err := Parse([]byte("[]"))
	assert.Error(t, err)

	_, err = Parse([]byte(`
- name: Lead
  thermal_conductivity: 35
  density: 0
  specific_heat: 130
  melting_temperature: 600
  latent_heat: 2.3e4
`))
	assert.Error(t, err)

	_, err = Parse([]byte(`
- {name: A, thermal_conductivity: 1, density: 1, specific_heat: 1, melting_temperature: 500, latent_heat: 1}
- {name: a, thermal_conductivity: 1, density: 1, specific_heat: 1, melting_temperature: 500, latent_heat: 1}
`))
	assert.Error(t, err, "names are case-insensitive so duplicates collide")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: Copper
  thermal_conductivity: 401
  density: 8960
  specific_heat: 385
  melting_temperature: 1358
  solidus_temperature: 1358
  latent_heat: 2.05e5
`), 0o644))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Copper"}, table.Names())

	_, err = table.Lookup("Steel")
	assert.ErrorIs(t, err, ErrUnknownMaterial)

	builtin, err := Load("")
	require.NoError(t, err)
	assert.Same(t, Default(), builtin)
}
