// Package viz renders optimization runs in the terminal.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: steps an optimizer on every tick and draws the molecule
//   - [Canvas]: Braille-based pixel canvas, 2x4 dots per cell
//   - [Camera]: orthographic-ish projection of atom positions
//   - [EnergyChart]: asciigraph plot of the energy trace
//
// # Key Bindings
//
//	Space - Pause/Resume optimization
//	R     - Restart from the input geometry
//	T     - Cycle color themes
//	x/y/z - Rotate the view (shift reverses)
//	+/-   - Zoom
//	F     - Fit the molecule to the view
//	?     - Show help overlay
//	[]    - Step through recorded configurations
package viz
