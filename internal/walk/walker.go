package walk

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// DefaultOrigin is the starting square used when a caller does not pick one.
var DefaultOrigin = Position{Row: 10, Col: 10}

// Bounds is the board size. Both dimensions must be at least 1.
type Bounds struct {
	Height int `json:"height" yaml:"height"`
	Width  int `json:"width" yaml:"width"`
}

// Contains reports whether p lies on the board.
func (b Bounds) Contains(p Position) bool {
	return p.Row >= 0 && p.Row < b.Height && p.Col >= 0 && p.Col < b.Width
}

// Position is a square on the board.
type Position struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// String returns "(row,col)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Step is one position produced by a walk. Index 0 is the origin.
type Step struct {
	Index int `json:"index"`
	Position
}

// Config describes one walk.
type Config struct {
	Seed   Seed     `json:"seed"`
	Bounds Bounds   `json:"bounds"`
	Origin Position `json:"origin"`

	// MaxSteps is the number of steps produced after the origin.
	MaxSteps int `json:"max_steps"`

	// Interval is the time between steps. Only the timed Sequencer uses it.
	Interval time.Duration `json:"interval_ns"`
}

// validate checks the parts of cfg an untimed walk depends on.
func (cfg Config) validate() error {
	if !utf8.ValidString(string(cfg.Seed)) {
		return newConfigError("seed %q is not valid UTF-8", string(cfg.Seed))
	}
	if cfg.Bounds.Height <= 0 || cfg.Bounds.Width <= 0 {
		return newBoundsError(cfg.Bounds, cfg.Origin, "board dimensions must be positive")
	}
	if !cfg.Bounds.Contains(cfg.Origin) {
		return newBoundsError(cfg.Bounds, cfg.Origin, "origin lies outside the board")
	}
	if cfg.MaxSteps < 0 {
		return newConfigError("max steps must not be negative, got %d", cfg.MaxSteps)
	}
	return nil
}

// Walker produces the positions of a walk without any timing.
//
// Next returns the origin first, then MaxSteps further steps. Walker is not
// safe for concurrent use.
type Walker struct {
	cfg        Config
	rng        *Rand
	pos        Position
	index      int
	originSent bool
}

// NewWalker validates cfg and returns a walker positioned at the origin.
func NewWalker(cfg Config) (*Walker, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Walker{
		cfg: cfg,
		rng: NewRand(cfg.Seed),
		pos: cfg.Origin,
	}, nil
}

// Remaining returns how many calls to Next will still succeed.
func (w *Walker) Remaining() int {
	n := w.cfg.MaxSteps - w.index
	if !w.originSent {
		n++
	}
	return n
}

// Next returns the next step, or false once the walk has terminated.
func (w *Walker) Next() (Step, bool) {
	if !w.originSent {
		w.originSent = true
		return Step{Index: 0, Position: w.pos}, true
	}
	if w.index >= w.cfg.MaxSteps {
		return Step{}, false
	}
	if w.rng.Float64() < 0.5 {
		w.pos.Row = w.move(w.pos.Row, w.cfg.Bounds.Height)
	} else {
		w.pos.Col = w.move(w.pos.Col, w.cfg.Bounds.Width)
	}
	w.index++
	return Step{Index: w.index, Position: w.pos}, true
}

// move applies the boundary policy to one axis of size n.
func (w *Walker) move(v, n int) int {
	switch {
	case n == 1:
		return v
	case v == 0:
		return v + 1
	case v == n-1:
		return v - 1
	case w.rng.Float64() < 0.5:
		return v + 1
	default:
		return v - 1
	}
}

// Steps returns the complete walk for cfg: the origin followed by every step.
func Steps(cfg Config) ([]Step, error) {
	w, err := NewWalker(cfg)
	if err != nil {
		return nil, err
	}
	steps := make([]Step, 0, cfg.MaxSteps+1)
	for {
		s, ok := w.Next()
		if !ok {
			return steps, nil
		}
		steps = append(steps, s)
	}
}
