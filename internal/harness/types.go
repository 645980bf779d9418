package harness

import (
	"github.com/roach88/bdblink/internal/linker"
	"github.com/roach88/bdblink/internal/store"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// RunID is the fixed run ID the scenario executed under.
	RunID string `json:"run_id"`

	// Stats are the linker statistics of the run.
	Stats linker.Stats `json:"stats"`

	// Decisions are the audited per-record decisions in line order.
	Decisions []store.Decision `json:"decisions"`

	// Output is the rendered Rosetta output, header included.
	Output []byte `json:"-"`

	// Rows maps a Rosetta line number to its rendered output row.
	Rows map[int][]string `json:"-"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Decisions: []store.Decision{},
		Rows:      make(map[int][]string),
		Errors:    []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
