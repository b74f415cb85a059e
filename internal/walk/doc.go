// Package walk implements the deterministic input sequencer.
//
// A walk is a reproducible pseudo-random sequence of grid positions. The
// same seed, bounds, origin and step count always produce the same
// positions, on any machine, because the generator algorithm is fixed:
//
//	h      = FNV-1a-64(seed)
//	s0, s1 = SplitMix64(h), SplitMix64(h)   (two successive outputs)
//	next   = xorshift128+(s0, s1)
//	u      = float64(next >> 11) / 2^53      in [0, 1)
//
// Each step draws u; u < 0.5 moves the row, otherwise the column. On the
// chosen axis a position at 0 moves +1, a position at the upper bound moves
// -1, an axis of size 1 does not move, and anywhere else a second draw
// d < 0.5 moves +1 and otherwise -1. Positions at a boundary consume only
// one draw.
//
// Walker is the untimed core. Sequencer wraps a Walker with a ticker and
// delivers each step to an OnStep callback on its own goroutine, one step
// at a time.
//
// Every Walker owns its generator. There is no package-level random state,
// so concurrent walks never interfere.
package walk
