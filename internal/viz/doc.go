// Package viz is the interactive terminal front end of the press.
//
// [Model] is a Bubble Tea program that owns one [press.Session] and steps
// it on a fixed tick, drawing a side view of the machine on a Braille
// [Canvas] next to the live readings and a force curve.
//
// # Key Bindings
//
//	Space - Start, pause or resume the test
//	Tab   - Place the next material from the catalog on the machine
//	C     - Calibrate the crosshead for the current specimen
//	K     - Switch between compression and tensile (clears the machine)
//	R     - Clear the machine for a new test
//	Q     - Quit
package viz
