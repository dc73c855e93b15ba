package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// DefaultPath is where the server looks for its ini file when no path is given.
const DefaultPath = "conf/config.ini"

type Config struct {
	Server        ServerConfig
	Log           LogConfig
	Simulation    SimulationConfig
	Grid          GridConfig
	Sweep         SweepConfig
	MaterialsFile string
}

type ServerConfig struct {
	Addr          string
	RateLimit     float64 // requests per second per client
	RateBurst     int
	AllowedOrigin string
	ReadTimeout   time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type SimulationConfig struct {
	AmbientTemperature float64 // K
	SourceRadiusMM     float64
	MaxTemperature     float64 // K, 0 disables the display cap
	Workers            int
	DefaultMode        string
	PlateThicknessMM   float64
}

// GridConfig is the evaluation window around the arc, in millimetres.
type GridConfig struct {
	XMinMM  float64
	XMaxMM  float64
	YHalfMM float64
	ZMaxMM  float64
	StepMM  float64
}

type SweepConfig struct {
	CurrentStart         float64
	CurrentStop          float64
	CurrentStep          float64
	VoltageStart         float64
	VoltageStop          float64
	VoltageStep          float64
	SensitivityVariation float64
	MaxSamples           int // per sweep request
}

// LoadEnv reads .env style files into the process environment. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.WithField("file", f).Debug("env file not found, skipped")
				continue
			}
			return fmt.Errorf("load env file %s: %w", f, err)
		}
		log.WithField("file", f).Info("env file loaded")
	}
	return nil
}

// Load reads the ini file at path (defaults apply for a missing file or missing keys) and
// then applies WELD_* environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err != nil {
		log.WithField("path", path).Warn("config file not readable, using defaults")
	}
	file, err := ini.LooseLoad(path)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := loadCfg(file)
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadCfg(file *ini.File) *Config {
	server := file.Section("server")
	logSec := file.Section("log")
	sim := file.Section("simulation")
	grid := file.Section("grid")
	sweep := file.Section("sweep")

	return &Config{
		Server: ServerConfig{
			Addr:          server.Key("addr").MustString(":9000"),
			RateLimit:     server.Key("rate_limit").MustFloat64(20),
			RateBurst:     server.Key("rate_burst").MustInt(40),
			AllowedOrigin: server.Key("allowed_origin").MustString("*"),
			ReadTimeout:   server.Key("read_timeout").MustDuration(15 * time.Second),
		},
		Log: LogConfig{
			Level:  logSec.Key("level").MustString("info"),
			Format: logSec.Key("format").MustString("text"),
		},
		Simulation: SimulationConfig{
			AmbientTemperature: sim.Key("ambient_temperature").MustFloat64(298),
			SourceRadiusMM:     sim.Key("source_radius_mm").MustFloat64(0.1),
			MaxTemperature:     sim.Key("max_temperature").MustFloat64(3500),
			Workers:            sim.Key("workers").MustInt(4),
			DefaultMode:        sim.Key("default_mode").MustString("point"),
			PlateThicknessMM:   sim.Key("plate_thickness_mm").MustFloat64(10),
		},
		Grid: GridConfig{
			XMinMM:  grid.Key("x_min_mm").MustFloat64(-40),
			XMaxMM:  grid.Key("x_max_mm").MustFloat64(10),
			YHalfMM: grid.Key("y_half_mm").MustFloat64(15),
			ZMaxMM:  grid.Key("z_max_mm").MustFloat64(10),
			StepMM:  grid.Key("step_mm").MustFloat64(0.5),
		},
		Sweep: SweepConfig{
			CurrentStart:         sweep.Key("current_start").MustFloat64(100),
			CurrentStop:          sweep.Key("current_stop").MustFloat64(350),
			CurrentStep:          sweep.Key("current_step").MustFloat64(25),
			VoltageStart:         sweep.Key("voltage_start").MustFloat64(15),
			VoltageStop:          sweep.Key("voltage_stop").MustFloat64(35),
			VoltageStep:          sweep.Key("voltage_step").MustFloat64(2),
			SensitivityVariation: sweep.Key("sensitivity_variation").MustFloat64(0.1),
			MaxSamples:           sweep.Key("max_samples").MustInt(100),
		},
		MaterialsFile: file.Section("materials").Key("file").String(),
	}
}

// applyEnv lets deployment knobs be set from the environment without touching the ini file.
func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("WELD")
	v.AutomaticEnv()

	v.SetDefault("server_addr", cfg.Server.Addr)
	v.SetDefault("log_level", cfg.Log.Level)
	v.SetDefault("log_format", cfg.Log.Format)
	v.SetDefault("materials_file", cfg.MaterialsFile)

	cfg.Server.Addr = v.GetString("server_addr")
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.Format = v.GetString("log_format")
	cfg.MaterialsFile = v.GetString("materials_file")
}

func (c *Config) Validate() error {
	g := c.Grid
	switch {
	case g.StepMM <= 0:
		return fmt.Errorf("config: grid step_mm must be positive, got %v", g.StepMM)
	case g.XMinMM >= g.XMaxMM:
		return fmt.Errorf("config: grid x_min_mm (%v) must be below x_max_mm (%v)", g.XMinMM, g.XMaxMM)
	case g.YHalfMM <= 0:
		return fmt.Errorf("config: grid y_half_mm must be positive, got %v", g.YHalfMM)
	case g.ZMaxMM < 0:
		return fmt.Errorf("config: grid z_max_mm must not be negative, got %v", g.ZMaxMM)
	}
	if c.Simulation.Workers < 1 {
		c.Simulation.Workers = 1
	}
	if c.Simulation.SourceRadiusMM < 0 {
		return fmt.Errorf("config: source_radius_mm must not be negative, got %v", c.Simulation.SourceRadiusMM)
	}
	if v := c.Sweep.SensitivityVariation; v <= 0 || v >= 1 {
		return fmt.Errorf("config: sensitivity_variation must be in (0, 1), got %v", v)
	}
	if t := c.Simulation.PlateThicknessMM; t > g.ZMaxMM {
		return fmt.Errorf("config: plate_thickness_mm %v exceeds grid z_max_mm %v", t, g.ZMaxMM)
	}
	if c.Sweep.MaxSamples < 1 {
		return fmt.Errorf("config: sweep max_samples must be positive, got %d", c.Sweep.MaxSamples)
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0 {
		return fmt.Errorf("config: rate_limit and rate_burst must be positive")
	}
	return nil
}
