package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/bdblink/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes the decision log to help debug the failure.
type AssertionError struct {
	Type      string           // Assertion type for categorization
	Expected  string           // Human-readable expected outcome
	Actual    string           // Human-readable actual outcome
	Decisions []store.Decision // Full decision log for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Decisions) > 0 {
		fmt.Fprintf(&buf, "\nDecisions:\n")
		for _, d := range e.Decisions {
			fmt.Fprintf(&buf, "  line %d: %s %q (%d candidate(s))\n", d.Line, d.Outcome, d.NameKey, d.Candidates)
		}
	}

	return buf.String()
}

// AssertionContext provides audit log access for outcome assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
	RunID string
}

// assertOutcome checks the audited decision for one line.
func assertOutcome(ctx context.Context, st *store.Store, runID string, a Assertion) error {
	decisions, err := st.Decisions(ctx, runID, "")
	if err != nil {
		return fmt.Errorf("outcome: failed to read decisions: %w", err)
	}

	idx := slices.IndexFunc(decisions, func(d store.Decision) bool { return d.Line == a.Line })
	if idx < 0 {
		return &AssertionError{
			Type:      AssertOutcome,
			Expected:  fmt.Sprintf("decision for line %d", a.Line),
			Actual:    "no decision recorded",
			Decisions: decisions,
		}
	}
	d := decisions[idx]

	if d.Outcome != a.Outcome {
		return &AssertionError{
			Type:      AssertOutcome,
			Expected:  fmt.Sprintf("line %d %s", a.Line, a.Outcome),
			Actual:    fmt.Sprintf("line %d %s", a.Line, d.Outcome),
			Decisions: decisions,
		}
	}

	if a.CanonicalID != nil {
		if d.CanonicalID == nil || *d.CanonicalID != *a.CanonicalID {
			return &AssertionError{
				Type:      AssertOutcome,
				Expected:  fmt.Sprintf("line %d linked to %d", a.Line, *a.CanonicalID),
				Actual:    fmt.Sprintf("line %d linked to %s", a.Line, formatID(d.CanonicalID)),
				Decisions: decisions,
			}
		}
	}

	return nil
}

// assertOutcomeCount checks how many decisions ended with an outcome.
func assertOutcomeCount(decisions []store.Decision, a Assertion) error {
	count := 0
	for _, d := range decisions {
		if d.Outcome == a.Outcome {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:      AssertOutcomeCount,
			Expected:  fmt.Sprintf("%s exactly %d time(s)", a.Outcome, a.Count),
			Actual:    fmt.Sprintf("%s %d time(s)", a.Outcome, count),
			Decisions: decisions,
		}
	}
	return nil
}

// assertCell checks one rendered output cell.
func assertCell(result *Result, a Assertion) error {
	row, ok := result.Rows[a.Line]
	if !ok {
		return &AssertionError{
			Type:     AssertCell,
			Expected: fmt.Sprintf("output row for line %d", a.Line),
			Actual:   "row not found",
		}
	}
	if a.Position >= len(row) {
		return &AssertionError{
			Type:     AssertCell,
			Expected: fmt.Sprintf("line %d position %d = %q", a.Line, a.Position, a.Value),
			Actual:   fmt.Sprintf("row has %d cell(s)", len(row)),
		}
	}
	if row[a.Position] != a.Value {
		return &AssertionError{
			Type:     AssertCell,
			Expected: fmt.Sprintf("line %d position %d = %q", a.Line, a.Position, a.Value),
			Actual:   fmt.Sprintf("%q", row[a.Position]),
		}
	}
	return nil
}

// assertStats checks the listed statistics (subset match).
func assertStats(result *Result, a Assertion) error {
	data, err := json.Marshal(result.Stats)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	var actual map[string]int
	if err := json.Unmarshal(data, &actual); err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	keys := make([]string, 0, len(a.Stats))
	for k := range a.Stats {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var mismatches []string
	for _, k := range keys {
		got, ok := actual[k]
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("%s: unknown statistic", k))
			continue
		}
		if got != a.Stats[k] {
			mismatches = append(mismatches, fmt.Sprintf("%s: want %d, got %d", k, a.Stats[k], got))
		}
	}

	if len(mismatches) > 0 {
		return &AssertionError{
			Type:      AssertStats,
			Expected:  fmt.Sprintf("%v", a.Stats),
			Actual:    strings.Join(mismatches, "; "),
			Decisions: result.Decisions,
		}
	}
	return nil
}

func formatID(id *int64) string {
	if id == nil {
		return "nothing"
	}
	return fmt.Sprintf("%d", *id)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides audit log access for outcome assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertOutcome:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: outcome requires audit log context", i)
			} else {
				err = assertOutcome(actx.Ctx, actx.Store, actx.RunID, assertion)
			}
		case AssertOutcomeCount:
			err = assertOutcomeCount(result.Decisions, assertion)
		case AssertCell:
			err = assertCell(result, assertion)
		case AssertStats:
			err = assertStats(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
