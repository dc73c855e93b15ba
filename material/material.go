package material

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// RoomTemperature is the reference temperature of the tabulated constants, K.
const RoomTemperature = 298.0

var ErrUnknownMaterial = errors.New("unknown material")

//go:embed materials.yaml
var builtin []byte

// Record holds the thermophysical constants of one material. Records are handed out by value,
// so callers can never modify the table through them.
type Record struct {
	Name                  string  `yaml:"name" json:"name"`
	ThermalConductivity   float64 `yaml:"thermal_conductivity" json:"thermal_conductivity"` // W/m·K
	ConductivityDrop      float64 `yaml:"conductivity_drop" json:"conductivity_drop"`       // fractional loss of k at melting
	Density               float64 `yaml:"density" json:"density"`                           // kg/m³
	SpecificHeat          float64 `yaml:"specific_heat" json:"specific_heat"`               // J/kg·K, solid
	SpecificHeatLiquid    float64 `yaml:"specific_heat_liquid" json:"specific_heat_liquid"` // J/kg·K
	MeltingTemperature    float64 `yaml:"melting_temperature" json:"melting_temperature"`   // K, liquidus
	SolidusTemperature    float64 `yaml:"solidus_temperature" json:"solidus_temperature"`   // K
	LatentHeat            float64 `yaml:"latent_heat" json:"latent_heat"`                   // J/kg
	SurfaceTension        float64 `yaml:"surface_tension" json:"surface_tension"`           // N/m
	EfficiencyGTAW        float64 `yaml:"efficiency_gtaw" json:"efficiency_gtaw"`
	EfficiencyGMAW        float64 `yaml:"efficiency_gmaw" json:"efficiency_gmaw"`
	DropletEfficiencyGMAW float64 `yaml:"droplet_efficiency_gmaw" json:"droplet_efficiency_gmaw"`
}

// Diffusivity returns α = k / (ρ·c) in m²/s.
func (r Record) Diffusivity() float64 {
	return r.ThermalConductivity / (r.Density * r.SpecificHeat)
}

// ConductivityAt approximates k(T) as a linear decrease from room temperature to the melting
// point. The factor never leaves [0.3, 1].
func (r Record) ConductivityAt(t float64) float64 {
	factor := 1 - r.ConductivityDrop*(t-RoomTemperature)/(r.MeltingTemperature-RoomTemperature)
	factor = max(0.3, min(1, factor))
	return r.ThermalConductivity * factor
}

func (r Record) validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"thermal_conductivity", r.ThermalConductivity},
		{"density", r.Density},
		{"specific_heat", r.SpecificHeat},
		{"melting_temperature", r.MeltingTemperature},
		{"latent_heat", r.LatentHeat},
	}
	for _, f := range fields {
		if !(f.value > 0) {
			return fmt.Errorf("material %q: %s must be positive, got %v", r.Name, f.name, f.value)
		}
	}
	if r.SolidusTemperature > r.MeltingTemperature {
		return fmt.Errorf("material %q: solidus %v above melting temperature %v",
			r.Name, r.SolidusTemperature, r.MeltingTemperature)
	}
	if r.MeltingTemperature <= RoomTemperature {
		return fmt.Errorf("material %q: melting temperature %v not above room temperature", r.Name, r.MeltingTemperature)
	}
	if r.ConductivityDrop < 0 || r.ConductivityDrop >= 1 {
		return fmt.Errorf("material %q: conductivity_drop must be in [0, 1), got %v", r.Name, r.ConductivityDrop)
	}
	return nil
}

// Table is a read-only set of materials keyed by name.
type Table struct {
	records []Record
	index   map[string]int
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Parse builds a table from a YAML list of records.
func Parse(data []byte) (*Table, error) {
	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode material table: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("material table is empty")
	}
	t := &Table{
		records: records,
		index:   make(map[string]int, len(records)),
	}
	for i, r := range records {
		if err := r.validate(); err != nil {
			return nil, err
		}
		k := key(r.Name)
		if _, dup := t.index[k]; dup {
			return nil, fmt.Errorf("material %q listed twice", r.Name)
		}
		t.index[k] = i
	}
	return t, nil
}

// Load reads a table from a YAML file. An empty path yields the built-in table.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read material table: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"path":      path,
		"materials": t.Names(),
	}).Info("material table loaded")
	return t, nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built-in table, parsed on first use.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(builtin)
		if err != nil {
			panic(fmt.Sprintf("built-in material table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Lookup finds a material in the built-in table.
func Lookup(name string) (Record, error) {
	return Default().Lookup(name)
}

// Lookup finds a material by name, ignoring case and surrounding spaces.
func (t *Table) Lookup(name string) (Record, error) {
	i, ok := t.index[key(name)]
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	return t.records[i], nil
}

// Names lists the materials in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.records))
	for i, r := range t.records {
		names[i] = r.Name
	}
	return names
}
