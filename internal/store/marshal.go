package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/framewalk/internal/canon"
	"github.com/roach88/framewalk/internal/host"
)

// hostJSON is the stored form of host.Config, in integer microseconds.
type hostJSON struct {
	FrameUs      int64 `json:"frame_us"`
	MainWorkUs   int64 `json:"main_work_us"`
	DownstreamUs int64 `json:"downstream_us"`
}

// marshalHost converts a host timing model to canonical JSON TEXT.
func marshalHost(cfg host.Config) (string, error) {
	data, err := canon.MarshalCanonical(map[string]any{
		"frame_us":      cfg.FrameInterval.Microseconds(),
		"main_work_us":  cfg.MainWork.Microseconds(),
		"downstream_us": cfg.DownstreamDelay.Microseconds(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal host: %w", err)
	}
	return string(data), nil
}

// unmarshalHost parses the stored host timing model.
func unmarshalHost(text string) (host.Config, error) {
	var h hostJSON
	if err := json.Unmarshal([]byte(text), &h); err != nil {
		return host.Config{}, fmt.Errorf("unmarshal host: %w", err)
	}
	return host.Config{
		FrameInterval:   time.Duration(h.FrameUs) * time.Microsecond,
		MainWork:        time.Duration(h.MainWorkUs) * time.Microsecond,
		DownstreamDelay: time.Duration(h.DownstreamUs) * time.Microsecond,
	}, nil
}
