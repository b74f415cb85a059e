package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/framewalk/internal/canon"
	"github.com/roach88/framewalk/internal/stats"
)

// TraceSnapshot is the part of a result that golden files pin down.
type TraceSnapshot struct {
	ScenarioName string
	Result       *Result
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	steps := make([]any, len(s.Result.Steps))
	for i, st := range s.Result.Steps {
		steps[i] = map[string]any{
			"index": st.Index,
			"row":   st.Row,
			"col":   st.Col,
		}
	}

	samples := make([]any, len(s.Result.Samples))
	for i, sm := range s.Result.Samples {
		samples[i] = map[string]any{
			"seq":          sm.Seq,
			"issued_us":    sm.IssuedUs,
			"presented_us": sm.PresentedUs,
			"latency_us":   sm.LatencyUs,
			"visible_us":   sm.VisibleUs,
		}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"config_hash":   s.Result.ConfigHash,
		"steps":         steps,
		"samples":       samples,
		"probe":         summaryMap(s.Result.Probe),
		"end_to_end":    summaryMap(s.Result.EndToEnd),
	}
}

func summaryMap(s stats.Summary) map[string]any {
	return map[string]any{
		"count":     s.Count,
		"min_us":    s.Min.Microseconds(),
		"max_us":    s.Max.Microseconds(),
		"mean_us":   s.Mean.Microseconds(),
		"median_us": s.Median.Microseconds(),
		"p95_us":    s.P95.Microseconds(),
	}
}

// MarshalTrace returns the canonical JSON trace of a result.
func MarshalTrace(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{ScenarioName: scenarioName, Result: result}
	return canon.MarshalCanonical(snapshot.toCanonicalMap())
}

// TraceHash returns the content address of a result's canonical trace.
func TraceHash(scenarioName string, result *Result) (string, error) {
	snapshot := TraceSnapshot{ScenarioName: scenarioName, Result: result}
	return canon.Hash(canon.DomainTrace, snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
