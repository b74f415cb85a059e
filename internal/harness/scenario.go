package harness

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/framewalk/internal/host"
	"github.com/roach88/framewalk/internal/walk"
)

//go:embed schema.cue
var schemaCUE []byte

// Scenario defines one deterministic probe run and what it must show.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description"`

	// Seed fully determines the walk.
	Seed string `yaml:"seed" json:"seed"`

	Board walk.Bounds `yaml:"board" json:"board"`

	// Origin defaults to walk.DefaultOrigin.
	Origin *walk.Position `yaml:"origin,omitempty" json:"origin,omitempty"`

	MaxSteps   int `yaml:"max_steps" json:"max_steps"`
	IntervalMs int `yaml:"interval_ms" json:"interval_ms"`

	Host HostSpec `yaml:"host" json:"host"`

	// Assertions validate the resulting trace.
	// Supported types: step_count, sample_count, max_latency_us, min_gap_us, in_bounds
	Assertions []Assertion `yaml:"assertions" json:"assertions"`
}

// HostSpec is the simulated host's timing model in milliseconds.
type HostSpec struct {
	FrameMs      int `yaml:"frame_ms" json:"frame_ms"`
	MainWorkMs   int `yaml:"main_work_ms" json:"main_work_ms"`
	DownstreamMs int `yaml:"downstream_ms" json:"downstream_ms"`
}

// Config converts the millisecond settings to a host configuration.
func (h HostSpec) Config() host.Config {
	return host.Config{
		FrameInterval:   time.Duration(h.FrameMs) * time.Millisecond,
		MainWork:        time.Duration(h.MainWorkMs) * time.Millisecond,
		DownstreamDelay: time.Duration(h.DownstreamMs) * time.Millisecond,
	}
}

// WalkConfig returns the walk the scenario describes.
func (s *Scenario) WalkConfig() walk.Config {
	origin := walk.DefaultOrigin
	if s.Origin != nil {
		origin = *s.Origin
	}
	return walk.Config{
		Seed:     walk.Seed(s.Seed),
		Bounds:   s.Board,
		Origin:   origin,
		MaxSteps: s.MaxSteps,
		Interval: time.Duration(s.IntervalMs) * time.Millisecond,
	}
}

// Assertion validates the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "step_count": exactly Count steps, origin included
	// - "sample_count": exactly Count samples
	// - "max_latency_us": no probe latency above MaxUs
	// - "min_gap_us": every frame became visible at least MinUs after the probe resolved
	// - "in_bounds": every step lies on the board
	Type string `yaml:"type" json:"type"`

	Count int   `yaml:"count,omitempty" json:"count,omitempty"`
	MaxUs int64 `yaml:"max_us,omitempty" json:"max_us,omitempty"`
	MinUs int64 `yaml:"min_us,omitempty" json:"min_us,omitempty"`
}

// Assertion type constants.
const (
	AssertStepCount    = "step_count"
	AssertSampleCount  = "sample_count"
	AssertMaxLatencyUs = "max_latency_us"
	AssertMinGapUs     = "min_gap_us"
	AssertInBounds     = "in_bounds"
)

// LoadScenario reads a scenario file. Files ending in .cue are validated
// against the embedded #Scenario schema; anything else is parsed as YAML.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario *Scenario
	if filepath.Ext(path) == ".cue" {
		scenario, err = parseCUEScenario(path, data)
	} else {
		scenario, err = parseYAMLScenario(data)
	}
	if err != nil {
		return nil, err
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

func parseYAMLScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

func parseCUEScenario(path string, data []byte) (*Scenario, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling scenario schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Scenario"))

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("scenario does not match schema: %w", err)
	}

	var scenario Scenario
	if err := unified.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("decoding CUE scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
// Board and origin are checked by the walk itself.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}
	if s.IntervalMs <= 0 {
		return fmt.Errorf("interval_ms must be positive")
	}
	if err := s.Host.Config().Validate(); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertStepCount, AssertSampleCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertMaxLatencyUs:
		if a.MaxUs <= 0 {
			return fmt.Errorf("assertions[%d]: max_us is required for max_latency_us", index)
		}
	case AssertMinGapUs:
		if a.MinUs < 0 {
			return fmt.Errorf("assertions[%d]: min_us must be non-negative for %s", index, a.Type)
		}
	case AssertInBounds:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
