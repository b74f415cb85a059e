package walk

import "github.com/roach88/framewalk/internal/canon"

// Hash returns the content address of the configuration. Two runs with
// the same hash replay the same positions at the same times. The seed
// is hashed in the NFC form NewRand draws from; configurations whose
// seed is not valid UTF-8 are rejected before they can walk.
func (cfg Config) Hash() string {
	return canon.MustHash(canon.DomainWalkConfig, map[string]any{
		"seed":        cfg.Seed.normalized(),
		"height":      cfg.Bounds.Height,
		"width":       cfg.Bounds.Width,
		"origin_row":  cfg.Origin.Row,
		"origin_col":  cfg.Origin.Col,
		"max_steps":   cfg.MaxSteps,
		"interval_us": cfg.Interval.Microseconds(),
	})
}
