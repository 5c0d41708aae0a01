// Package press implements the deformation stepper of a compression and
// tensile testing press.
//
// A [Session] owns exactly one test run. The caller (a timer loop, a TUI,
// a batch driver) calls [Session.Step] at its own cadence; each call either
// advances the deformation by a fixed increment and returns a [Snapshot],
// or reports that the test has completed.
//
//	s := press.NewSession(press.DefaultMachine())
//	_ = s.Start(brick, press.Compression)
//	for {
//		snap, out := s.Step()
//		if out != press.Advanced {
//			break
//		}
//		render(snap)
//	}
//
// # Thread Safety
//
// Session is NOT safe for concurrent use. One goroutine drives it.
package press
