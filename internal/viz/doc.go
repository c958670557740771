// Package viz renders tracks and riders in the terminal.
//
// The package implements a frame scrubber using the Bubble Tea framework:
//
//   - [Scrubber]: interactive timeline stepping with a shelf edit
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - [Scene]: layered canvases colored per line type by a [Theme]
//
// # Key Bindings
//
//	←/→     - Step one frame
//	⇧←/⇧→   - Step ten frames
//	Space   - Play/Pause
//	E       - Toggle a shelf line under the rider
//	+/-     - Zoom
//	T       - Cycle color themes
//	?       - Show help
package viz
