package store

import "github.com/roach88/bdblink/internal/linker"

// Run is the audit record of one link run.
type Run struct {
	ID            string       `json:"id"`
	Seq           int64        `json:"seq"`
	CanonicalPath string       `json:"canonical_path"`
	SecondaryPath string       `json:"secondary_path"`
	OutPath       string       `json:"out_path"`
	DryRun        bool         `json:"dry_run"`
	Stats         linker.Stats `json:"stats"`
}

// Decision is the audit record of one secondary record within a run.
type Decision struct {
	Line        int    `json:"line"`
	Outcome     string `json:"outcome"`
	NameKey     string `json:"name_key"`
	Candidates  int    `json:"candidates"`
	CanonicalID *int64 `json:"canonical_id,omitempty"`
	Changed     []int  `json:"changed"`
}

// DecisionFromResult converts a linker result into its audit form.
func DecisionFromResult(r linker.Result) Decision {
	d := Decision{
		Line:       r.Line,
		Outcome:    r.Outcome.String(),
		NameKey:    string(r.Key),
		Candidates: r.Candidates,
		Changed:    r.Changed,
	}
	if r.Outcome == linker.OutcomeLinked {
		id := r.CanonicalID
		d.CanonicalID = &id
	}
	if d.Changed == nil {
		d.Changed = []int{}
	}
	return d
}

// DecisionsFromResults converts results in order.
func DecisionsFromResults(results []linker.Result) []Decision {
	decisions := make([]Decision, len(results))
	for i, r := range results {
		decisions[i] = DecisionFromResult(r)
	}
	return decisions
}
