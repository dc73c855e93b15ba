package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"weldsim/config"
	"weldsim/material"
	"weldsim/model"
	"weldsim/report"
	"weldsim/server"
	"weldsim/simulator"
)

var (
	configPath string
	envFile    string
)

// app is everything a command needs, loaded once per invocation.
type app struct {
	cfg   *config.Config
	table *material.Table
	sim   *simulator.Simulator
}

var rootCmd = &cobra.Command{
	Use:           "weldsim",
	Short:         "Weld pool simulation with Rosenthal's moving heat source",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the interactive websocket",
	RunE:  runServe,
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate one set of welding parameters and write a report",
	Long: `Simulate one set of welding parameters and write the report to stdout or a file.

Lengths are in millimetres and the travel speed in mm/s. The report format is
json (default), pdf or xlsx.`,
	RunE: runSimulate,
}

var materialsCmd = &cobra.Command{
	Use:   "materials",
	Short: "List the material table with derived comparison values",
	RunE:  runMaterials,
}

var simFlags struct {
	req        model.SimulateRequest
	efficiency float64
	format     string
	out        string
	sweep      string
	sensitive  bool
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "ini configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "environment file loaded before the configuration")

	f := simulateCmd.Flags()
	f.StringVarP(&simFlags.req.Material, "material", "m", "Steel", "base material")
	f.Float64VarP(&simFlags.req.Current, "current", "i", 150, "welding current, A")
	f.Float64VarP(&simFlags.req.Voltage, "voltage", "u", 20, "arc voltage, V")
	f.Float64VarP(&simFlags.req.TravelSpeed, "speed", "s", 5, "travel speed, mm/s")
	f.Float64Var(&simFlags.efficiency, "efficiency", 0, "arc efficiency, tabulated value for the process when unset")
	f.StringVar(&simFlags.req.Process, "process", "GTAW", "GTAW or GMAW")
	f.StringVar(&simFlags.req.Mode, "mode", "", "point or thin-plate, configured default when unset")
	f.Float64Var(&simFlags.req.PlateThickness, "thickness", 0, "plate thickness for thin-plate mode, mm")
	f.StringVarP(&simFlags.format, "format", "f", "json", "report format: json, pdf or xlsx")
	f.StringVarP(&simFlags.out, "out", "o", "", "output file, stdout when unset")
	f.StringVar(&simFlags.sweep, "sweep", "", "also sweep this parameter over its configured range")
	f.BoolVar(&simFlags.sensitive, "sensitivity", false, "include the sensitivity study")

	rootCmd.AddCommand(serveCmd, simulateCmd, materialsCmd)
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func load() (*app, error) {
	if err := config.LoadEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	initLogger(cfg)

	table, err := material.Load(cfg.MaterialsFile)
	if err != nil {
		return nil, err
	}
	sim, err := cfg.NewSimulator()
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, table: table, sim: sim}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := load()
	if err != nil {
		return err
	}
	nx, ny, nz := a.sim.Grid().Dims()
	log.WithFields(log.Fields{
		"materials": len(a.table.Names()),
		"grid":      fmt.Sprintf("%dx%dx%d", nx, ny, nz),
		"workers":   a.cfg.Simulation.Workers,
	}).Info("simulator ready")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.NewServer(a.cfg, a.sim, a.table).Serve(ctx)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	a, err := load()
	if err != nil {
		return err
	}
	req := simFlags.req
	if cmd.Flags().Changed("efficiency") {
		req.ArcEfficiency = &simFlags.efficiency
	}
	sim := a.cfg.Simulation
	p, err := req.WithDefaults(sim.DefaultMode, sim.PlateThicknessMM).ToParameters(a.table)
	if err != nil {
		return err
	}
	res, err := a.sim.Simulate(p)
	if err != nil {
		return err
	}
	doc := report.New(res, a.table)

	ctx := cmd.Context()
	if simFlags.sweep != "" {
		if err := addSweep(ctx, a, doc, p, simFlags.sweep); err != nil {
			return err
		}
	}
	if simFlags.sensitive {
		rows, err := a.sim.Sensitivity(ctx, p, a.cfg.Sweep.SensitivityVariation)
		if err != nil {
			return err
		}
		doc.SetSensitivity(rows)
	}

	w := cmd.OutOrStdout()
	if simFlags.out != "" {
		f, err := os.Create(simFlags.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := writeReport(doc, simFlags.format, w); err != nil {
		return err
	}
	if simFlags.out != "" {
		log.WithField("file", simFlags.out).Info("report written")
	}
	return nil
}

func addSweep(ctx context.Context, a *app, doc *report.Document, base simulator.Parameters, name string) error {
	param, err := simulator.ParseParam(name)
	if err != nil {
		return err
	}
	sw := a.cfg.Sweep
	var values []float64
	switch param {
	case simulator.ParamCurrent:
		values = simulator.Range(sw.CurrentStart, sw.CurrentStop, sw.CurrentStep)
	case simulator.ParamVoltage:
		values = simulator.Range(sw.VoltageStart, sw.VoltageStop, sw.VoltageStep)
	default:
		v := base.Value(param)
		values = simulator.Linspace(v*(1-sw.SensitivityVariation), v*(1+sw.SensitivityVariation), 5)
		if param == simulator.ParamArcEfficiency {
			for i := range values {
				values[i] = min(values[i], 1)
			}
		}
	}
	points, err := a.sim.Sweep(ctx, base, param, values)
	if err != nil {
		return err
	}
	doc.AddSweep(param, points)
	return nil
}

func writeReport(doc *report.Document, format string, w io.Writer) error {
	switch format {
	case "json":
		return doc.WriteJSON(w)
	case "pdf":
		return doc.WritePDF(w)
	case "xlsx":
		return doc.WriteXLSX(w)
	}
	return fmt.Errorf("unsupported report format %q", format)
}

func runMaterials(cmd *cobra.Command, _ []string) error {
	a, err := load()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(a.table.Comparison())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.WithError(err).Error("weldsim failed")
		os.Exit(1)
	}
}
