package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/phsim/internal/analysis"
	"github.com/san-kum/phsim/internal/chem"
	"github.com/san-kum/phsim/internal/config"
	"github.com/san-kum/phsim/internal/export"
	"github.com/san-kum/phsim/internal/storage"
	"github.com/san-kum/phsim/internal/viz"
)

const (
	svgWidth    = 800
	svgHeight   = 480
	curveStroke = "#00ccff"
)

func runMetadata(cfg *config.Config, s chem.Substance, mode string, veq float64) storage.RunMetadata {
	return storage.RunMetadata{
		Substance:         s.Name,
		Type:              s.Type.String(),
		Mode:              mode,
		Seed:              cfg.Seed,
		Molarity:          cfg.Molarity,
		BeakerVolume:      cfg.BeakerVolume,
		TitrantMolarity:   cfg.TitrantMolarity,
		MaxVolume:         cfg.MaxVolume,
		EquivalenceVolume: veq,
	}
}

func saveRun(cfg *config.Config, run *storage.Run) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.Save(run)
	if err != nil {
		return err
	}
	slog.Debug("run saved", "id", id, "backend", cfg.Store.Backend, "path", cfg.Store.Path)
	fmt.Printf("\nrun id: %s\n", id)
	return nil
}

// loadRun reads a run's metadata and curve from the configured store.
func loadRun(cmd *cobra.Command, id string) (*storage.RunMetadata, []chem.CurvePoint, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, err
	}
	curve, err := st.LoadCurve(id)
	if err != nil {
		return nil, nil, err
	}
	return meta, curve, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSUBSTANCE\tMODE\tTIME\tMOLARITY\tVEQ\tSAMPLES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%.2f\t%d\n",
			run.ID,
			run.Substance,
			run.Mode,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Molarity,
			run.EquivalenceVolume,
			run.Samples,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, curve, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	if len(curve) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("substance: %s (%s)\n", meta.Substance, meta.Type)
	fmt.Printf("mode: %s\n", meta.Mode)
	fmt.Printf("samples: %d\n\n", len(curve))

	fmt.Println(viz.PlotCurve(curve, plotWidth, 14, "pH vs "+inputLabel(meta.Mode)))

	if s, err := analysis.SteepestPoint(curve); err == nil {
		fmt.Printf("\nsteepest point: %.3f (pH %.2f)\n", s.Volume, s.PH)
	}
	if meta.EquivalenceVolume > 0 {
		fmt.Printf("equivalence volume: %.3f\n", meta.EquivalenceVolume)
	}

	if len(meta.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		names := make([]string, 0, len(meta.Metrics))
		for name := range meta.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: %.6f\n", name, meta.Metrics[name])
		}
	}
	return nil
}

func inputLabel(mode string) string {
	switch mode {
	case "buffer":
		return "salt added"
	case "equilibrium":
		return "fraction dissolved"
	default:
		return "titrant volume"
	}
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, curve, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	return export.ExportJSON(output, export.FromRun(*meta, curve))
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, curve, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	if output == "" || output == "-" {
		return export.WriteCSV(os.Stdout, curve)
	}
	if err := export.WriteFile(output, func(w io.Writer) error { return export.WriteCSV(w, curve) }); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", output)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, curve, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	svg := export.CurveToSVG(curve, svgWidth, svgHeight, curveStroke, equivalenceMarker(meta))
	if svg == "" {
		return fmt.Errorf("no data to export")
	}

	path := output
	if path == "" {
		path = meta.ID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	meta, curve, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	path := output
	if path == "" {
		path = meta.ID + ".png"
	}
	title := fmt.Sprintf("%s %g M (%s)", meta.Substance, meta.Molarity, meta.Mode)
	err = export.WriteFile(path, func(w io.Writer) error {
		return export.CurveToPNG(w, curve, title, curveStroke, equivalenceMarker(meta))
	})
	if err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

// equivalenceMarker is the volume to mark on exported titration curves, or
// NaN when the run has none.
func equivalenceMarker(meta *storage.RunMetadata) float64 {
	if meta.Mode != "titration" || meta.EquivalenceVolume <= 0 {
		return math.NaN()
	}
	return meta.EquivalenceVolume
}
