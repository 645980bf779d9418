package linker

import "fmt"

// Outcome classifies what the linker did with one record.
type Outcome int

const (
	// OutcomeAlreadyLinked means the record carried a canonical link on load.
	OutcomeAlreadyLinked Outcome = iota

	// OutcomeUnmatched means no unclaimed canonical entry has the record's name.
	OutcomeUnmatched

	// OutcomeAmbiguous means two or more unclaimed canonical entries share the name.
	OutcomeAmbiguous

	// OutcomeLinked means exactly one canonical entry matched.
	OutcomeLinked
)

var outcomeNames = [...]string{
	OutcomeAlreadyLinked: "already_linked",
	OutcomeUnmatched:     "unmatched",
	OutcomeAmbiguous:     "ambiguous",
	OutcomeLinked:        "linked",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	for i, name := range outcomeNames {
		if name == s {
			return Outcome(i), nil
		}
	}
	return 0, fmt.Errorf("unknown outcome %q", s)
}

// Stats counts outcomes over a run.
type Stats struct {
	Total         int `json:"total"`
	AlreadyLinked int `json:"already_linked"`
	Unmatched     int `json:"unmatched"`
	Ambiguous     int `json:"ambiguous"`
	Linked        int `json:"linked"`

	// FieldsUpdated counts individual cells filled in across all links.
	FieldsUpdated int `json:"fields_updated"`
}

// Add records one result.
func (s *Stats) Add(r Result) {
	s.Total++
	switch r.Outcome {
	case OutcomeAlreadyLinked:
		s.AlreadyLinked++
	case OutcomeUnmatched:
		s.Unmatched++
	case OutcomeAmbiguous:
		s.Ambiguous++
	case OutcomeLinked:
		s.Linked++
		s.FieldsUpdated += len(r.Changed)
	}
}
