package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/phsim/internal/automation"
	"github.com/san-kum/phsim/internal/chem"
	"github.com/san-kum/phsim/internal/config"
	"github.com/san-kum/phsim/internal/experiment"
	"github.com/san-kum/phsim/internal/storage"
	"github.com/san-kum/phsim/internal/substance"
	"github.com/san-kum/phsim/internal/viz"
)

var (
	dataDir      string
	storeBackend string
	configFile   string
	catalogFile  string
	verbose      bool

	preset          string
	molarity        float64
	beakerVolume    float64
	titrantMolarity float64
	maxVolume       float64
	samples         int
	steps           int
	saltSteps       int
	numRuns         int
	sweepParam      string
	sweepMin        float64
	sweepMax        float64
	sweepPoints     int
	waterLevel      float64
	columns         int
	rows            int
	seed            int64

	mode      string
	save      bool
	output    string
	themeName string
	plotWidth int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "phsim",
		Short:        "acid/base equilibrium and titration lab",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(verbose))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, nil)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultStorePath, "data directory")
	pf.StringVar(&storeBackend, "store", config.DefaultStoreBackend, "run store backend (fs, sqlite)")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&catalogFile, "catalog", "", "extra substance catalog (yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")

	phCmd := &cobra.Command{
		Use:   "ph [substance]",
		Short: "equilibrium pH, concentrations and particle counts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPH,
	}
	addSolutionFlags(phCmd)

	titrateCmd := &cobra.Command{
		Use:   "titrate [substance]",
		Short: "titration curve against a strong titrant",
		Args:  cobra.MaximumNArgs(1),
		RunE:  titrate,
	}
	addSolutionFlags(titrateCmd)
	addTitrationFlags(titrateCmd)
	titrateCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "curve samples")
	titrateCmd.Flags().BoolVar(&save, "save", false, "store the run")
	titrateCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")

	bufferCmd := &cobra.Command{
		Use:   "buffer [substance]",
		Short: "pH while adding conjugate salt to a weak substance",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showBuffer,
	}
	addSolutionFlags(bufferCmd)
	addGridFlags(bufferCmd)
	bufferCmd.Flags().IntVar(&saltSteps, "steps", 10, "salt steps")

	beakerCmd := &cobra.Command{
		Use:   "beaker [substance]",
		Short: "step a scenario through the particle beaker",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBeaker,
	}
	addSolutionFlags(beakerCmd)
	addTitrationFlags(beakerCmd)
	addGridFlags(beakerCmd)
	beakerCmd.Flags().StringVar(&mode, "mode", string(experiment.ModeTitration), "scenario ("+strings.Join(experiment.DefaultRegistry().ListModes(), ", ")+")")
	beakerCmd.Flags().IntVar(&steps, "steps", experiment.DefaultSteps, "scenario steps")
	beakerCmd.Flags().BoolVar(&save, "save", false, "store the run")
	beakerCmd.Flags().StringVar(&output, "svg", "", "write the final beaker as SVG")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [substance]",
		Short: "run a scenario over several placement seeds in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addSolutionFlags(ensembleCmd)
	addTitrationFlags(ensembleCmd)
	addGridFlags(ensembleCmd)
	ensembleCmd.Flags().StringVar(&mode, "mode", string(experiment.ModeTitration), "scenario")
	ensembleCmd.Flags().IntVar(&steps, "steps", experiment.DefaultSteps, "scenario steps")
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "run a scripted sequence of experiments (yaml)",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	addGridFlags(scriptCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [substance]",
		Short: "titrate across a range of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSolutionFlags(sweepCmd)
	addTitrationFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "curve samples")
	sweepCmd.Flags().StringVar(&sweepParam, "param", automation.ParamMolarity, "parameter to sweep (molarity, titrant_molarity, beaker_volume)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.05, "smallest value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.2, "largest value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 7, "number of values")

	substancesCmd := &cobra.Command{
		Use:   "substances",
		Short: "list known substances",
		Args:  cobra.NoArgs,
		RunE:  listSubstances,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [family]",
		Short: "list preset families, or the presets of one family",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Println("preset families:")
				for _, f := range config.ListFamilies() {
					fmt.Printf("  %s\n", f)
				}
				return nil
			}
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for family: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s/%s\n", args[0], p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the run curve to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the run curve as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <run_id>.svg)")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "export the run curve as PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <run_id>.png)")

	tuiCmd := &cobra.Command{
		Use:   "tui [substance]",
		Short: "interactive beaker",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTUI,
	}
	addSolutionFlags(tuiCmd)
	addTitrationFlags(tuiCmd)
	addGridFlags(tuiCmd)
	tuiCmd.Flags().StringVar(&themeName, "theme", viz.ThemeIndicator.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	rootCmd.AddCommand(phCmd, titrateCmd, bufferCmd, beakerCmd, ensembleCmd, scriptCmd, sweepCmd, substancesCmd, presetsCmd, listCmd, plotCmd,
		exportJSONCmd, exportCSVCmd, exportSVGCmd, exportPNGCmd, tuiCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func addSolutionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "preset as family/name")
	cmd.Flags().Float64Var(&molarity, "molarity", config.DefaultMolarity, "substance molarity (mol/L)")
}

func addTitrationFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&beakerVolume, "volume", config.DefaultBeakerVolume, "beaker volume")
	cmd.Flags().Float64Var(&titrantMolarity, "titrant", config.DefaultTitrantMolarity, "titrant molarity (mol/L)")
	cmd.Flags().Float64Var(&maxVolume, "max-volume", config.DefaultMaxVolume, "largest titrant volume")
}

func addGridFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&columns, "columns", config.DefaultColumns, "beaker columns")
	cmd.Flags().IntVar(&rows, "rows", config.DefaultRows, "beaker rows")
	cmd.Flags().Float64Var(&waterLevel, "water", config.DefaultWaterLevel, "water level in rows")
	cmd.Flags().Int64Var(&seed, "seed", 0, "placement seed (0 for random)")
}

// loadSettings layers defaults, preset, config file and explicitly set flags,
// in that order.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		family, name, ok := strings.Cut(preset, "/")
		p := config.GetPreset(family, name)
		if !ok || p == nil {
			return nil, fmt.Errorf("unknown preset: %s (families: %v)", preset, config.ListFamilies())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("molarity") {
		cfg.Molarity = molarity
	}
	if flags.Changed("volume") {
		cfg.BeakerVolume = beakerVolume
	}
	if flags.Changed("titrant") {
		cfg.TitrantMolarity = titrantMolarity
	}
	if flags.Changed("max-volume") {
		cfg.MaxVolume = maxVolume
	}
	if flags.Changed("samples") {
		cfg.Samples = samples
	}
	if flags.Changed("water") {
		cfg.WaterLevel = waterLevel
	}
	if flags.Changed("columns") {
		cfg.Grid.Columns = columns
	}
	if flags.Changed("rows") {
		cfg.Grid.Rows = rows
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("data") || cfg.Store.Path == "" {
		cfg.Store.Path = dataDir
	}
	if flags.Changed("store") || cfg.Store.Backend == "" {
		cfg.Store.Backend = storeBackend
	}
	if catalogFile != "" {
		cfg.Catalog = catalogFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slog.Debug("settings resolved", "substance", cfg.Substance, "molarity", cfg.Molarity,
		"preset", preset, "config", configFile, "store", cfg.Store.Backend)
	return cfg, nil
}

// resolveSubstance picks the positional substance, or the configured one,
// from the built-in catalog plus any custom catalog.
func resolveSubstance(cfg *config.Config, args []string) (chem.Substance, error) {
	catalog := substance.Default()
	if cfg.Catalog != "" {
		extra, err := substance.LoadCatalog(cfg.Catalog)
		if err != nil {
			return chem.Substance{}, err
		}
		catalog.Merge(extra)
		slog.Debug("catalog merged", "path", cfg.Catalog, "substances", catalog.Len())
	}

	name := cfg.Substance
	if len(args) > 0 {
		name = args[0]
	}
	return catalog.Get(name)
}

func openStore(cfg *config.Config) (storage.Store, error) {
	st, err := storage.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Init(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	s, err := resolveSubstance(cfg, args)
	if err != nil {
		return err
	}
	if themeName != "" {
		viz.SetTheme(themeName)
	}
	return viz.RunBeaker(viz.AppConfig{
		Substance:       s,
		Molarity:        cfg.Molarity,
		BeakerVolume:    cfg.BeakerVolume,
		TitrantMolarity: cfg.TitrantMolarity,
		MaxVolume:       cfg.MaxVolume,
		Columns:         cfg.Grid.Columns,
		Rows:            cfg.Grid.Rows,
		WaterLevel:      cfg.WaterLevel,
		Seed:            cfg.Seed,
	})
}
