// Package harness runs deterministic probe scenarios.
//
// A scenario combines a walk, a simulated host and a list of assertions.
// The harness drives all three in virtual time, so each run produces the
// same trace and the trace can be pinned in a golden file.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: slow_compositor
//	description: "What this scenario validates"
//	seed: "42"
//	board: { height: 20, width: 20 }
//	origin: { row: 10, col: 10 }     # optional, defaults to (10,10)
//	max_steps: 30
//	interval_ms: 50
//	host:
//	  frame_ms: 16
//	  main_work_ms: 2
//	  downstream_ms: 25
//	assertions:
//	  - type: step_count
//	    count: 31
//	  - type: min_gap_us
//	    min_us: 25000
//
// The same fields can be written in CUE (files ending in .cue). CUE
// scenarios are validated against the embedded #Scenario schema, which
// also supplies defaults for board and host.
//
// # Assertion Types
//
//   - step_count: the walk produced exactly count steps, origin included
//   - sample_count: the probe recorded exactly count samples
//   - max_latency_us: no probe latency exceeded max_us
//   - min_gap_us: every frame became visible at least min_us after the
//     probe reported it; this is how a scenario demonstrates the
//     measurement gap
//   - in_bounds: every step lies on the board
//
// # Deterministic Testing
//
// The harness uses:
//   - testutil.ManualClock starting at testutil.Epoch
//   - walk.Walker, which owns its generator
//   - host.Host with synchronous downstream delivery
//
// Trace times are integer microseconds since the start of the run, so
// the canonical trace never contains floats.
package harness
