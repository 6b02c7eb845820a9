// Package viz renders the simulator in the terminal.
//
//   - [RenderBeaker]: the particle grid as colored glyphs
//   - [PlotCurve]: a titration curve via asciigraph
//   - [Gauge]: a spring-smoothed pH scale
//   - [App]: the interactive Bubble Tea beaker
//
// # Key Bindings
//
//	A       - Add a step of titrant
//	S       - Add a step of salt (weak substances)
//	Up/Down - Raise or lower the water level
//	U       - Undo the last addition
//	T       - Cycle color themes
//	R       - Reset the beaker
//	Q       - Quit
package viz
