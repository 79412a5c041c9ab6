// Package viz draws the star jar in the terminal.
//
// The package implements a live view using the Bubble Tea framework:
//
//   - [Model]: live jar view that drives the simulator like a render loop
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - [DrawJar]: side projection of the silhouette and every star
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	A     - Drop a star
//	S     - Settle every star
//	W     - Warm up without drawing
//	R     - Empty the jar
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
