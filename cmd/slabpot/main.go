package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/slabpot/internal/charge"
	"github.com/san-kum/slabpot/internal/config"
	"github.com/san-kum/slabpot/internal/epsilon"
	"github.com/san-kum/slabpot/internal/export"
	"github.com/san-kum/slabpot/internal/figure"
	"github.com/san-kum/slabpot/internal/grid"
	"github.com/san-kum/slabpot/internal/logging"
	"github.com/san-kum/slabpot/internal/pipeline"
	"github.com/san-kum/slabpot/internal/potential"
	"github.com/san-kum/slabpot/internal/slab"
	"github.com/san-kum/slabpot/internal/storage"
	"github.com/san-kum/slabpot/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logMode    string
	verbose    bool
	// dielectric profile
	numGrid  int
	mul      int
	center   float64
	epsSigma float64
	// charge model
	chargeSigma float64
	defectZ     float64
	// solver
	workers int
	cutoff  float64
	// energy
	chargeState float64
	window      float64
	isolated    float64
	fpLength    float64
	// plot
	outFile     string
	overlayFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "slabpot",
		Short:         "electrostatics of charged defects in 2D slabs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "dev", "log format (dev, prod)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	epsCmd := &cobra.Command{
		Use:   "epsilon",
		Short: "build the gaussian dielectric profile",
		RunE:  makeEpsilon,
	}
	addEpsilonFlags(epsCmd)

	chargeCmd := &cobra.Command{
		Use:   "charge",
		Short: "build the gaussian model charge",
		RunE:  makeChargeModel,
	}
	addChargeFlags(chargeCmd)

	potCmd := &cobra.Command{
		Use:   "potential",
		Short: "solve the model potential",
		RunE:  calcPotential,
	}
	addSolverFlags(potCmd)

	fpCmd := &cobra.Command{
		Use:   "fp [defect] [perfect]",
		Short: "import plane-averaged first-principles potentials (two-column z, V files)",
		Args:  cobra.ExactArgs(2),
		RunE:  makeFP,
	}
	fpCmd.Flags().Float64Var(&fpLength, "length", 0, "cell length along z in Å (default: c × mul)")

	energyCmd := &cobra.Command{
		Use:   "energy",
		Short: "compute the electrostatic energy and alignment",
		RunE:  calcEnergy,
	}
	addEnergyFlags(energyCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run every stage from one configuration",
		RunE:  runPipeline,
	}
	addEpsilonFlags(runCmd)
	addChargeFlags(runCmd)
	addSolverFlags(runCmd)
	addEnergyFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored documents",
		RunE:  listDocuments,
	}

	showCmd := &cobra.Command{
		Use:   "show [name]",
		Short: "print a stored document",
		Args:  cobra.ExactArgs(1),
		RunE:  showDocument,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		RunE:  listPresets,
	}

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot the profiles of the stored slab model",
		RunE:  plotProfiles,
	}
	plotCmd.Flags().StringVarP(&outFile, "out", "o", "profiles.png", "output image (png, svg, pdf, eps)")
	plotCmd.Flags().StringVar(&overlayFile, "overlay", "", "also write a single-panel svg of the potentials")

	rootCmd.AddCommand(epsCmd, chargeCmd, potCmd, fpCmd, energyCmd, runCmd, listCmd, showCmd, presetsCmd, plotCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addEpsilonFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&numGrid, "num-grid", config.DefaultNumGrid, "grid points along z")
	cmd.Flags().IntVar(&mul, "mul", config.DefaultMul, "supercell multiplier along z")
	cmd.Flags().Float64Var(&center, "center", config.DefaultCenter, "slab center (fractional z)")
	cmd.Flags().Float64Var(&epsSigma, "eps-sigma", config.DefaultEpsilonSigma, "dielectric gaussian width (Å)")
}

func addChargeFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&chargeSigma, "charge-sigma", config.DefaultChargeSigma, "model charge width (Å)")
	cmd.Flags().Float64Var(&defectZ, "defect-z", 0.5, "defect position (fractional z)")
}

func addSolverFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "concurrent mode solves (0 = all cpus)")
	cmd.Flags().Float64Var(&cutoff, "cutoff", 0, "drop in-plane modes above this |k| (1/Å, 0 keeps all)")
}

func addEnergyFlags(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&chargeState, "charge", "q", 1, "defect charge state")
	cmd.Flags().Float64Var(&window, "window", 0, "far-region half width in Å (0 = c/10)")
	cmd.Flags().Float64Var(&isolated, "isolated", 0, "isolated-defect energy in eV, prints the correction when set")
}

// loadConfig resolves defaults, preset and config file, then applies the
// flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("num-grid") {
		cfg.Epsilon.NumGrid = numGrid
	}
	if flags.Changed("mul") {
		cfg.Epsilon.Mul = mul
	}
	if flags.Changed("center") {
		cfg.Epsilon.Center = center
	}
	if flags.Changed("eps-sigma") {
		cfg.Epsilon.Sigma = epsSigma
	}
	if flags.Changed("charge-sigma") {
		cfg.Charge.Sigma = chargeSigma
	}
	if flags.Changed("defect-z") {
		cfg.Structure.DefectZ = defectZ
	}
	if flags.Changed("workers") {
		cfg.Solver.Workers = workers
	}
	if flags.Changed("cutoff") {
		cfg.Solver.InPlaneCutoff = cutoff
	}
	if flags.Changed("charge") {
		cfg.Charge.State = chargeState
	}
	if flags.Changed("window") {
		cfg.Alignment.Window = window
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func newLogger() (*logging.Logger, error) {
	return logging.New(logMode, verbose)
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func makeEpsilon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eps, err := pipeline.BuildEpsilon(cfg)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	path, err := st.Save(storage.EpsilonName, eps)
	if err != nil {
		return err
	}
	fmt.Println(eps)
	fmt.Printf("\nsaved: %s\n", path)
	return nil
}

func makeChargeModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	eps, err := st.LoadEpsilon(storage.EpsilonName)
	if err != nil {
		return fmt.Errorf("run `slabpot epsilon` first: %w", err)
	}

	model, err := pipeline.BuildChargeModel(cfg, eps)
	if err != nil {
		return err
	}
	path, err := st.Save(storage.ChargeModelName, model)
	if err != nil {
		return err
	}

	dims := model.Grids().Dims()
	fmt.Printf("grids: %d × %d × %d\n", dims[0], dims[1], dims[2])
	fmt.Printf("defect z: %.3f Å\n", model.DefectZPos())
	fmt.Printf("total charge: %.6f\n", model.TotalCharge())
	fmt.Println(viz.SparklineChart(model.PlaneAverage(), 60))
	fmt.Printf("\nsaved: %s\n", path)
	return nil
}

func calcPotential(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	st := storage.New(cfg.DataDir)
	eps, err := st.LoadEpsilon(storage.EpsilonName)
	if err != nil {
		return err
	}
	model, err := st.LoadChargeModel(storage.ChargeModelName)
	if err != nil {
		return fmt.Errorf("run `slabpot charge` first: %w", err)
	}

	ctx, cancel := interruptible()
	defer cancel()

	start := time.Now()
	pot, err := pipeline.SolvePotential(ctx, cfg, eps, model, log)
	if err != nil {
		return err
	}
	log.Info("potential solved", "modes", pot.Solver().SolvedModes, "workers", pot.Solver().Workers, "elapsed", time.Since(start))

	path, err := st.Save(storage.PotentialName, pot)
	if err != nil {
		return err
	}
	avg := grid.Profile{Name: "plane-averaged potential (V)", X: model.Grids()[grid.Z].Points(), Y: pot.PlaneAverage()}
	fmt.Println(viz.ProfileGraph(avg, 80, 12))
	fmt.Printf("\nsaved: %s\n", path)
	return nil
}

func makeFP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	length := fpLength
	if length == 0 {
		length = cfg.Structure.C * float64(cfg.Epsilon.Mul)
	}

	_, defect, err := storage.ReadColumns(args[0])
	if err != nil {
		return err
	}
	_, perfect, err := storage.ReadColumns(args[1])
	if err != nil {
		return err
	}
	fp, err := potential.NewFP1dPotentialFromAverages(length, defect, perfect)
	if err != nil {
		return err
	}

	path, err := storage.New(cfg.DataDir).Save(storage.FPName, fp)
	if err != nil {
		return err
	}
	fmt.Printf("grid: %d points over %.3f Å\n", fp.Grid().NumGrid(), fp.Grid().Length())
	fmt.Println(viz.SparklineChart(fp.Values(), 60))
	fmt.Printf("\nsaved: %s\n", path)
	return nil
}

func calcEnergy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)

	eps, err := st.LoadEpsilon(storage.EpsilonName)
	if err != nil {
		return err
	}
	model, err := st.LoadChargeModel(storage.ChargeModelName)
	if err != nil {
		return err
	}
	pot, err := st.LoadPotential(storage.PotentialName)
	if err != nil {
		return fmt.Errorf("run `slabpot potential` first: %w", err)
	}
	fp, err := st.LoadFP(storage.FPName)
	if err != nil {
		return fmt.Errorf("run `slabpot fp` first: %w", err)
	}

	sm, err := slab.New(cfg.Charge.State, eps, model, pot, fp)
	if err != nil {
		return err
	}
	sm.Window = cfg.Alignment.Window
	e, err := sm.ElectrostaticEnergy()
	if err != nil {
		return err
	}

	res := &pipeline.Result{Epsilon: eps, ChargeModel: model, Potential: pot, FP: fp, Slab: sm, Energy: e}
	if _, err := res.Save(st); err != nil {
		return err
	}
	return printEnergy(cmd, sm, e)
}

func printEnergy(cmd *cobra.Command, sm *slab.Model, e *slab.Energy) error {
	fmt.Println(viz.EnergyPanel(e))
	if cmd.Flags().Changed("isolated") {
		fmt.Printf("\ncorrection: %.4f eV\n", e.Correction(isolated))
	}

	profiles, err := sm.Profiles()
	if err != nil {
		return err
	}
	for _, p := range profiles {
		switch p.Name {
		case "model potential", "fp potential", "fp - model":
			fmt.Println()
			fmt.Println(viz.ProfileGraph(p, 80, 10))
		}
	}
	return nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := interruptible()
	defer cancel()

	res, err := pipeline.Run(ctx, cfg, log)
	if err != nil {
		return err
	}
	paths, err := res.Save(storage.New(cfg.DataDir))
	if err != nil {
		return err
	}

	fmt.Println(viz.HeaderStyle.Render("slabpot run"))
	fmt.Printf("ε average (electronic): %.3f %.3f %.3f\n", res.Epsilon.AveElectronic()[0], res.Epsilon.AveElectronic()[1], res.Epsilon.AveElectronic()[2])
	fmt.Printf("ε average (ionic):      %.3f %.3f %.3f\n", res.Epsilon.AveIonic()[0], res.Epsilon.AveIonic()[1], res.Epsilon.AveIonic()[2])
	fmt.Printf("solved modes: %d\n", res.Potential.Solver().SolvedModes)
	if res.Energy != nil {
		fmt.Println()
		if err := printEnergy(cmd, res.Slab, res.Energy); err != nil {
			return err
		}
	} else {
		fmt.Println(viz.Subtle.Render("no fp profiles configured, skipped energy"))
	}

	fmt.Println()
	for _, p := range paths {
		fmt.Printf("saved: %s\n", p)
	}
	return nil
}

func listDocuments(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	entries, err := st.List()
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("no documents found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tSIZE\tMODIFIED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			e.Name,
			e.Kind,
			e.Size,
			e.ModTime.Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

func showDocument(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	var head struct {
		Kind string `json:"kind"`
	}
	if err := st.Load(args[0], &head); err != nil {
		return err
	}

	switch head.Kind {
	case string(epsilon.KindTabulated), string(epsilon.KindGaussian):
		eps, err := st.LoadEpsilon(args[0])
		if err != nil {
			return err
		}
		fmt.Println(eps)
	case string(charge.KindGauss), string(charge.KindSingleGauss):
		m, err := st.LoadChargeModel(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("kind: %s\nsigma: %.3f Å\ndefect z: %.3f Å\ntotal charge: %.6f\n", m.Kind(), m.Sigma(), m.DefectZPos(), m.TotalCharge())
		fmt.Println(viz.SparklineChart(m.PlaneAverage(), 60))
	case string(potential.KindGaussCharge), string(potential.KindCalcSingleCharge):
		p, err := st.LoadPotential(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("kind: %s\n", p.Kind())
		if info := p.Solver(); info != nil {
			fmt.Printf("modes: %d  workers: %d  cutoff: %g  zero mode: %s\n", info.SolvedModes, info.Workers, info.InPlaneCutoff, info.ZeroMode)
		}
		fmt.Println(viz.ProfileGraph(grid.Profile{Name: "plane average", X: p.Grids()[grid.Z].Points(), Y: p.PlaneAverage()}, 80, 10))
	case potential.KindFP1d:
		fp, err := st.LoadFP(args[0])
		if err != nil {
			return err
		}
		fmt.Println(viz.ProfileGraph(grid.Profile{Name: args[0], X: fp.Points(), Y: fp.Values()}, 80, 10))
	case slab.Kind:
		sm, err := st.LoadSlabModel(args[0])
		if err != nil {
			return err
		}
		e, err := sm.ElectrostaticEnergy()
		if err != nil {
			return err
		}
		fmt.Println(viz.EnergyPanel(e))
	case "":
		e, err := st.LoadEnergy(args[0])
		if err != nil {
			return err
		}
		fmt.Println(e)
	default:
		return fmt.Errorf("unknown document kind %q", head.Kind)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tA\tB\tC\tε∞ (x,y,z)\tε_ion (x,y,z)\tQ")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%v\t%v\t%+g\n",
			name, p.Structure.A, p.Structure.B, p.Structure.C,
			p.Dielectric.Electronic, p.Dielectric.Ionic, p.Charge.State)
	}
	return w.Flush()
}

func plotProfiles(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	sm, err := st.LoadSlabModel(storage.SlabModelName)
	if err != nil {
		return fmt.Errorf("run `slabpot energy` first: %w", err)
	}
	profiles, err := sm.Profiles()
	if err != nil {
		return err
	}

	if err := figure.Save(profiles, figure.DefaultPanels, outFile); err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", outFile)

	if overlayFile != "" {
		panel := figure.Panel{Prefixes: []string{"model potential", "fp potential", "fp - model"}}
		svg := export.ProfilesToSVG(panel.Select(profiles), 800, 400)
		if err := os.WriteFile(overlayFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("saved: %s\n", filepath.Clean(overlayFile))
	}
	return nil
}
