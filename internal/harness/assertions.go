package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/framewalk/internal/walk"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Detail   []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Detail) > 0 {
		fmt.Fprintf(&buf, "\nOffending entries:\n")
		for _, d := range e.Detail {
			fmt.Fprintf(&buf, "  %s\n", d)
		}
	}
	return buf.String()
}

// maxDetail caps how many offending entries an AssertionError lists.
const maxDetail = 5

func assertStepCount(result *Result, a Assertion) error {
	if len(result.Steps) != a.Count {
		return &AssertionError{
			Type:     AssertStepCount,
			Expected: fmt.Sprintf("%d steps", a.Count),
			Actual:   fmt.Sprintf("%d steps", len(result.Steps)),
		}
	}
	return nil
}

func assertSampleCount(result *Result, a Assertion) error {
	if len(result.Samples) != a.Count {
		return &AssertionError{
			Type:     AssertSampleCount,
			Expected: fmt.Sprintf("%d samples", a.Count),
			Actual:   fmt.Sprintf("%d samples", len(result.Samples)),
		}
	}
	return nil
}

func assertMaxLatency(result *Result, a Assertion) error {
	var detail []string
	over := 0
	for _, s := range result.Samples {
		if s.LatencyUs > a.MaxUs {
			over++
			if len(detail) < maxDetail {
				detail = append(detail, fmt.Sprintf("[seq %d] latency %dus", s.Seq, s.LatencyUs))
			}
		}
	}
	if over > 0 {
		return &AssertionError{
			Type:     AssertMaxLatencyUs,
			Expected: fmt.Sprintf("every probe latency <= %dus", a.MaxUs),
			Actual:   fmt.Sprintf("%d samples over the limit", over),
			Detail:   detail,
		}
	}
	return nil
}

func assertMinGap(result *Result, a Assertion) error {
	var detail []string
	under := 0
	for _, s := range result.Samples {
		if s.GapUs() < a.MinUs {
			under++
			if len(detail) < maxDetail {
				detail = append(detail, fmt.Sprintf("[seq %d] presented %dus visible %dus", s.Seq, s.PresentedUs, s.VisibleUs))
			}
		}
	}
	if under > 0 {
		return &AssertionError{
			Type:     AssertMinGapUs,
			Expected: fmt.Sprintf("every frame visible >= %dus after presentation", a.MinUs),
			Actual:   fmt.Sprintf("%d samples under the gap", under),
			Detail:   detail,
		}
	}
	return nil
}

func assertInBounds(result *Result, board walk.Bounds) error {
	var detail []string
	outside := 0
	for _, s := range result.Steps {
		if !board.Contains(walk.Position{Row: s.Row, Col: s.Col}) {
			outside++
			if len(detail) < maxDetail {
				detail = append(detail, fmt.Sprintf("[step %d] (%d,%d)", s.Index, s.Row, s.Col))
			}
		}
	}
	if outside > 0 {
		return &AssertionError{
			Type:     AssertInBounds,
			Expected: fmt.Sprintf("every step on the %dx%d board", board.Height, board.Width),
			Actual:   fmt.Sprintf("%d steps outside", outside),
			Detail:   detail,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns one message per failed assertion.
func EvaluateAssertions(result *Result, assertions []Assertion, board walk.Bounds) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertStepCount:
			err = assertStepCount(result, assertion)
		case AssertSampleCount:
			err = assertSampleCount(result, assertion)
		case AssertMaxLatencyUs:
			err = assertMaxLatency(result, assertion)
		case AssertMinGapUs:
			err = assertMinGap(result, assertion)
		case AssertInBounds:
			err = assertInBounds(result, board)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
