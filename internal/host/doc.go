// Package host simulates the display host a latency probe runs against.
//
// The model has two parts. The main context runs queued tasks, spends a
// fixed render cost, commits the frame and fires one-shot presentation
// callbacks. The downstream Stage then takes a fixed serial cost per
// frame before the frame is visible.
//
// A probe armed against Host.RequestPresent sees only the main context.
// RequestVisible observes the end of the downstream stage, so a harness
// can measure both and show the difference.
//
// With a virtual clock (see testutil.ManualClock) Frame is deterministic
// and the stage delivers synchronously. Run drives frames in real time
// and delivers visibility on a separate goroutine.
package host
