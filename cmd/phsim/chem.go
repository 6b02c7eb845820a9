package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/phsim/internal/analysis"
	"github.com/san-kum/phsim/internal/buffer"
	"github.com/san-kum/phsim/internal/chem"
	"github.com/san-kum/phsim/internal/config"
	"github.com/san-kum/phsim/internal/experiment"
	"github.com/san-kum/phsim/internal/export"
	"github.com/san-kum/phsim/internal/metrics"
	"github.com/san-kum/phsim/internal/storage"
	"github.com/san-kum/phsim/internal/substance"
	"github.com/san-kum/phsim/internal/viz"
)

const scaleWidth = 43

func showPH(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	s, err := resolveSubstance(cfg, args)
	if err != nil {
		return err
	}

	ph := chem.CalculatePH(s, cfg.Molarity)
	sp := chem.Concentrations(s, cfg.Molarity)
	units := cfg.Grid.Columns * cfg.Grid.Rows / 2
	counts := chem.SpeciesCounts(s, cfg.Molarity, units)

	fmt.Printf("%s (%s), %s, %g M\n\n", s.Name, s.Symbol, s.Type, cfg.Molarity)
	fmt.Println(viz.RenderPHScale(ph, scaleWidth))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "pH\t%.4f\n", ph)
	fmt.Fprintf(w, "pOH\t%.4f\n", chem.POH(ph))
	fmt.Fprintf(w, "[H⁺]\t%.4e\n", chem.HydrogenConcentration(ph))
	fmt.Fprintf(w, "[OH⁻]\t%.4e\n", chem.HydroxideConcentration(ph))
	if !s.IsStrong() {
		fmt.Fprintf(w, "pKa\t%.4f\n", s.PKA())
		fmt.Fprintf(w, "pKb\t%.4f\n", s.PKB())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SPECIES\tCONCENTRATION\tPARTICLES")
	fmt.Fprintf(w, "%s\t%.4e\t%d\n", s.Symbol, sp.Substance, counts.Substance)
	fmt.Fprintf(w, "%s\t%.4e\t%d\n", s.PrimaryIon, sp.Primary, counts.Primary)
	fmt.Fprintf(w, "%s\t%.4e\t%d\n", s.SecondaryIon, sp.Secondary, counts.Secondary)
	return w.Flush()
}

// bufferPKA is the pKa whose neighborhood forms the buffer region of a
// titration curve, NaN for strong substances.
func bufferPKA(s chem.Substance) float64 {
	switch {
	case s.IsStrong():
		return math.NaN()
	case s.IsAcid():
		return s.PKA()
	default:
		return chem.PKw - s.PKB()
	}
}

func titrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	s, err := resolveSubstance(cfg, args)
	if err != nil {
		return err
	}

	start := time.Now()
	curve := chem.GenerateTitrationCurveN(s, cfg.Molarity, cfg.BeakerVolume, cfg.TitrantMolarity, cfg.MaxVolume, cfg.Samples)
	veq := chem.EquivalenceVolume(cfg.Molarity, cfg.BeakerVolume, cfg.TitrantMolarity)
	summary, err := analysis.Summarize(curve, veq, bufferPKA(s))
	if err != nil {
		return err
	}
	slog.Debug("curve generated", "samples", len(curve), "elapsed", time.Since(start))

	titrant := "NaOH"
	if !s.IsAcid() {
		titrant = "HCl"
	}
	fmt.Printf("titrating %g M %s (%g) with %g M %s\n\n", cfg.Molarity, s.Symbol, cfg.BeakerVolume, cfg.TitrantMolarity, titrant)
	fmt.Println(viz.PlotCurve(curve, plotWidth, 14, "pH vs titrant volume"))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "equivalence volume\t%.3f\n", veq)
	fmt.Fprintf(w, "steepest point\t%.3f (pH %.2f, slope %.3f)\n", summary.Steepest.Volume, summary.Steepest.PH, summary.Steepest.Slope)
	if !math.IsNaN(summary.HalfEquivalencePH) {
		fmt.Fprintf(w, "half-equivalence pH\t%.3f\n", summary.HalfEquivalencePH)
	}
	if summary.Buffer != nil {
		fmt.Fprintf(w, "buffer region\t%.2f – %.2f\n", summary.Buffer.Start, summary.Buffer.End)
	}
	fmt.Fprintf(w, "pH range\t%.2f – %.2f\n", summary.MinPH, summary.MaxPH)
	if err := w.Flush(); err != nil {
		return err
	}

	if !save {
		return nil
	}

	run := &storage.Run{
		Meta:  runMetadata(cfg, s, string(experiment.ModeTitration), veq),
		Curve: curve,
	}
	run.Meta.Metrics = map[string]float64{
		"steepest_volume": summary.Steepest.Volume,
		"steepest_ph":     summary.Steepest.PH,
		"initial_ph":      summary.InitialPH,
		"final_ph":        summary.FinalPH,
	}
	if !math.IsNaN(summary.HalfEquivalencePH) {
		run.Meta.Metrics["half_equivalence_ph"] = summary.HalfEquivalencePH
	}
	if summary.Buffer != nil {
		run.Meta.Metrics["buffer_width"] = summary.Buffer.Width()
	}
	return saveRun(cfg, run)
}

func showBuffer(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	s, err := resolveSubstance(cfg, args)
	if err != nil {
		return err
	}
	if s.IsStrong() {
		return fmt.Errorf("%s is a %s; salt addition needs a weak acid or base", s.Name, s.Type)
	}

	units := cfg.Grid.Columns * cfg.Grid.Rows / 2
	initial := chem.SpeciesCounts(s, cfg.Molarity, units)
	m := buffer.NewForSubstance(s, cfg.Molarity, initial)

	fmt.Printf("adding %s salt to %g M %s (pK %.2f, %d particles)\n\n", s.SecondaryIon, cfg.Molarity, s.Symbol, m.PK(), initial.Total())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SALT\tPH\t[%s]\t[%s]\t[%s]\tPARTICLES\n", s.Symbol, s.PrimaryIon, s.SecondaryIon)
	for _, p := range m.Sample(saltSteps + 1) {
		c := experiment.BufferCounts(initial, int(math.Round(p.Salt)))
		fmt.Fprintf(w, "%.1f\t%.3f\t%.4e\t%.4e\t%.4e\t%d/%d/%d\n",
			p.Salt, p.PH, p.Species.Substance, p.Species.Primary, p.Species.Secondary,
			c.Substance, c.Primary, c.Secondary)
	}
	return w.Flush()
}

func runBeaker(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	s, err := resolveSubstance(cfg, args)
	if err != nil {
		return err
	}
	m, err := experiment.ParseMode(mode)
	if err != nil {
		return err
	}

	exp, err := experiment.New(experimentConfig(cfg, s, m))
	if err != nil {
		return err
	}
	ms := metrics.Defaults()
	exp.AddObserver(metrics.Observer(ms))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s scenario for %s...\n", m, s.Name)
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		fmt.Printf("interrupted after %d steps\n", len(result.Steps))
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "STEP\tINPUT\tPH\t%s\t%s\t%s\tCHURN\tTRANSMUTED\n", s.Symbol, s.PrimaryIon, s.SecondaryIon)
	for _, st := range result.Steps {
		fmt.Fprintf(w, "%d\t%.2f\t%.3f\t%d\t%d\t%d\t%d\t%d\n",
			st.Index, st.Input, st.PH, st.Counts.Substance, st.Counts.Primary, st.Counts.Secondary, st.Churn, st.Transmuted)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	b := exp.Beaker()
	fmt.Println()
	fmt.Println(viz.RenderBeaker(result.Particles, b.Columns(), b.Rows(), b.EffectiveRows(), nil, time.Now()))
	fmt.Println("\nmetrics:")
	values := metrics.Values(ms)
	for _, metric := range ms {
		fmt.Printf("  %s: %.6f\n", metric.Name(), values[metric.Name()])
	}

	if output != "" {
		svg := export.BeakerToSVG(result.Particles, b.Columns(), b.Rows(), 24, 1)
		if err := os.WriteFile(output, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("beaker written to %s\n", output)
	}

	if !save {
		return nil
	}
	run := &storage.Run{
		Meta:  runMetadata(cfg, s, string(m), result.EquivalenceVolume),
		Curve: result.Curve(),
	}
	run.Meta.Metrics = values
	return saveRun(cfg, run)
}

func experimentConfig(cfg *config.Config, s chem.Substance, m experiment.Mode) experiment.Config {
	return experiment.Config{
		Substance:       s,
		Mode:            m,
		Molarity:        cfg.Molarity,
		BeakerVolume:    cfg.BeakerVolume,
		TitrantMolarity: cfg.TitrantMolarity,
		MaxVolume:       cfg.MaxVolume,
		Steps:           steps,
		WaterLevel:      cfg.WaterLevel,
		Columns:         cfg.Grid.Columns,
		Rows:            cfg.Grid.Rows,
		Seed:            cfg.Seed,
		Logger:          slog.Default(),
	}
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	s, err := resolveSubstance(cfg, args)
	if err != nil {
		return err
	}
	m, err := experiment.ParseMode(mode)
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", numRuns)
	}

	seedStart := cfg.Seed
	if seedStart == 0 {
		seedStart = 1
	}
	perRun := make([][]metrics.Metric, numRuns)
	ens := experiment.NewEnsemble(experimentConfig(cfg, s, m), numRuns, seedStart).
		WithObservers(func(run int) []experiment.Observer {
			perRun[run] = metrics.Defaults()
			return []experiment.Observer{metrics.Observer(perRun[run])}
		})

	fmt.Printf("running %d %s scenarios for %s...\n", numRuns, m, s.Name)
	start := time.Now()
	if _, err := ens.Run(context.Background()); err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	names := make([]string, 0, len(perRun[0]))
	for _, metric := range perRun[0] {
		names = append(names, metric.Name())
	}
	sums := make(map[string]float64, len(names))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SEED\t%s\n", strings.ToUpper(strings.Join(names, "\t")))
	for i, ms := range perRun {
		values := metrics.Values(ms)
		row := make([]string, len(names))
		for j, name := range names {
			row[j] = fmt.Sprintf("%.4f", values[name])
			sums[name] += values[name]
		}
		fmt.Fprintf(w, "%d\t%s\n", seedStart+int64(i), strings.Join(row, "\t"))
	}
	mean := make([]string, len(names))
	for j, name := range names {
		mean[j] = fmt.Sprintf("%.4f", sums[name]/float64(numRuns))
	}
	fmt.Fprintf(w, "mean\t%s\n", strings.Join(mean, "\t"))
	return w.Flush()
}

func listSubstances(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	catalog := substance.Default()
	if cfg.Catalog != "" {
		extra, err := substance.LoadCatalog(cfg.Catalog)
		if err != nil {
			return err
		}
		catalog.Merge(extra)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSYMBOL\tTYPE\tKA\tKB\tIONS")
	for _, s := range catalog.List() {
		ka, kb := "-", "-"
		if !s.IsStrong() {
			ka = fmt.Sprintf("%.2e", s.KA)
			kb = fmt.Sprintf("%.2e", s.KB)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s %s\n", s.Name, s.Symbol, s.Type, ka, kb, s.PrimaryIon, s.SecondaryIon)
	}
	return w.Flush()
}
