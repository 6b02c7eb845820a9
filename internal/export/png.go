package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/san-kum/phsim/internal/chem"
)

// CurveToPNG renders a titration curve with go-chart. A positive
// equivalenceVolume adds a vertical marker series.
func CurveToPNG(w io.Writer, curve []chem.CurvePoint, title, strokeHex string, equivalenceVolume float64) error {
	if len(curve) < 2 {
		return fmt.Errorf("export: curve needs at least two points, got %d", len(curve))
	}

	xs := make([]float64, len(curve))
	ys := make([]float64, len(curve))
	for i, p := range curve {
		xs[i], ys[i] = p.Volume, p.PH
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "pH",
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: drawing.ColorFromHex(strings.TrimPrefix(strokeHex, "#")), StrokeWidth: 3.0},
		},
	}
	if equivalenceVolume > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    "equivalence",
			XValues: []float64{equivalenceVolume, equivalenceVolume},
			YValues: []float64{0, chem.PKw},
			Style:   chart.Style{StrokeColor: chart.ColorAlternateGray, StrokeWidth: 1.0, StrokeDashArray: []float64{5, 5}},
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  800,
		Height: 480,
		XAxis: chart.XAxis{
			Name:  "titrant volume",
			Style: chart.Style{FontSize: 10.0},
		},
		YAxis: chart.YAxis{
			Name:  "pH",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: chem.PKw},
		},
		Series: series,
	}

	return graph.Render(chart.PNG, w)
}
