package viz

import (
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/phsim/internal/chem"
)

// PlotCurve renders pH against sample index on a fixed 0–14 axis.
func PlotCurve(curve []chem.CurvePoint, width, height int, caption string) string {
	if len(curve) < 2 {
		return ""
	}
	ys := make([]float64, len(curve))
	for i, p := range curve {
		ys[i] = p.PH
	}
	return asciigraph.Plot(ys,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(chem.PKw),
		asciigraph.Precision(1),
		asciigraph.Caption(caption),
	)
}

// StyledCurve is PlotCurve in the graph style.
func StyledCurve(curve []chem.CurvePoint, width, height int, caption string) string {
	plot := PlotCurve(curve, width, height, caption)
	if plot == "" {
		return ""
	}
	return graphStyle.Render(plot)
}
