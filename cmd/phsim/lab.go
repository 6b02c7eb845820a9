package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/phsim/internal/automation"
	"github.com/san-kum/phsim/internal/storage"
	"github.com/san-kum/phsim/internal/substance"
)

func runScript(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load script: %w", err)
	}
	catalog := substance.Default()
	if cfg.Catalog != "" {
		extra, err := substance.LoadCatalog(cfg.Catalog)
		if err != nil {
			return err
		}
		catalog.Merge(extra)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if sc.Description != "" {
		fmt.Printf("%s: %s\n\n", sc.Name, sc.Description)
	}
	outcomes, runErr := automation.RunScenario(ctx, sc, catalog, cfg, slog.Default())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSUBSTANCE\tMODE\tSTEPS\tFINAL PH\tFIDELITY\tSAVED AS")
	for i, o := range outcomes {
		final := math.NaN()
		if n := len(o.Result.Steps); n > 0 {
			final = o.Result.Steps[n-1].PH
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.3f\t%.3f\t%s\n",
			i+1, o.Step.Substance, o.Result.Mode, len(o.Result.Steps), final, o.Metrics["fidelity"], o.Step.SaveAs)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, o := range outcomes {
		if o.Step.SaveAs == "" {
			continue
		}
		s, err := catalog.Get(o.Step.Substance)
		if err != nil {
			return err
		}
		stepCfg := *cfg
		stepCfg.Molarity = o.Step.Molarity
		stepCfg.BeakerVolume = o.Step.BeakerVolume
		stepCfg.TitrantMolarity = o.Step.TitrantMolarity
		stepCfg.MaxVolume = o.Step.MaxVolume
		stepCfg.Seed = o.Step.Seed

		run := &storage.Run{
			Meta:  runMetadata(&stepCfg, s, string(o.Result.Mode), o.Result.EquivalenceVolume),
			Curve: o.Result.Curve(),
		}
		run.Meta.ID = o.Step.SaveAs
		run.Meta.Metrics = o.Metrics
		if err := saveRun(cfg, run); err != nil {
			return err
		}
	}
	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	s, err := resolveSubstance(cfg, args)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(context.Background(), &automation.ParameterSweep{
		Substance: s,
		Base:      *cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepPoints,
	}, slog.Default())
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %s for %s\n\n", sweepParam, s.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tINITIAL PH\tVEQ\tSTEEPEST\tPH AT STEEPEST\tHALF-EQ PH\n", sweepParam)
	for _, r := range results {
		half := "-"
		if !math.IsNaN(r.HalfEquivalencePH) {
			half = fmt.Sprintf("%.3f", r.HalfEquivalencePH)
		}
		fmt.Fprintf(w, "%g\t%.3f\t%.2f\t%.2f\t%.3f\t%s\n",
			r.ParamValue, r.InitialPH, r.EquivalenceVolume, r.Steepest.Volume, r.Steepest.PH, half)
	}
	return w.Flush()
}
