package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bdblink/internal/linker"
	"github.com/roach88/bdblink/internal/testutil"
)

// Scenario defines an end-to-end linkage scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunID is an optional fixed run ID.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// NullText overrides the literal written for null cells.
	NullText *string `yaml:"null_text,omitempty"`

	// Master lists the canonical registry rows.
	Master []MasterRow `yaml:"master"`

	// Rosetta lists the secondary registry rows, header excluded.
	Rosetta []RosettaRow `yaml:"rosetta"`

	// Assertions validate the linked output and the audited decisions.
	// Supported types: outcome, outcome_count, cell, stats
	Assertions []Assertion `yaml:"assertions"`
}

// MasterRow is a Master player. Cells the linker never reads stay empty.
type MasterRow struct {
	ID     int64  `yaml:"id"`
	Lahman string `yaml:"lahman"`
	First  string `yaml:"first"`
	Last   string `yaml:"last"`
	Retro  string `yaml:"retro"`
	BBRef  string `yaml:"bbref"`
}

// RosettaRow is a Rosetta record. Identifier cells default to NULL.
type RosettaRow struct {
	ID    int            `yaml:"id"`
	First string         `yaml:"first"`
	Last  string         `yaml:"last"`
	Set   map[int]string `yaml:"set,omitempty"`
}

// Assertion validates part of a scenario result.
type Assertion struct {
	// Type specifies the assertion type:
	// - "outcome": Check the decision recorded for Line
	// - "outcome_count": Check how many records ended with Outcome
	// - "cell": Check one rendered output cell
	// - "stats": Check a subset of the run statistics
	Type string `yaml:"type"`

	// Line is the Rosetta line number (used by outcome and cell).
	Line int `yaml:"line,omitempty"`

	// Outcome is the expected outcome name (used by outcome and outcome_count).
	Outcome string `yaml:"outcome,omitempty"`

	// CanonicalID is the expected Master ID (optional, used by outcome).
	CanonicalID *int64 `yaml:"canonical_id,omitempty"`

	// Count is the expected number of records (used by outcome_count).
	Count int `yaml:"count,omitempty"`

	// Position is the output column (used by cell).
	Position int `yaml:"position,omitempty"`

	// Value is the expected rendered cell (used by cell).
	Value string `yaml:"value,omitempty"`

	// Stats are the expected statistics, keyed by their JSON names
	// (used by stats). Subset match.
	Stats map[string]int `yaml:"stats,omitempty"`
}

// Assertion type constants.
const (
	AssertOutcome      = "outcome"
	AssertOutcomeCount = "outcome_count"
	AssertCell         = "cell"
	AssertStats        = "stats"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenarios found in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", filepath.Base(path), s.Name, prev)
		}
		seen[s.Name] = filepath.Base(path)
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// masterRecords renders the Master rows.
func (s *Scenario) masterRecords() [][]string {
	records := make([][]string, len(s.Master))
	for i, m := range s.Master {
		records[i] = testutil.CanonicalRow(testutil.Player{
			ID:     m.ID,
			Lahman: m.Lahman,
			First:  m.First,
			Last:   m.Last,
			Retro:  m.Retro,
			BBRef:  m.BBRef,
		})
	}
	return records
}

// rosettaRecords renders the header followed by the Rosetta rows.
func (s *Scenario) rosettaRecords() [][]string {
	records := make([][]string, 0, len(s.Rosetta)+1)
	records = append(records, testutil.SecondaryHeader)
	for _, r := range s.Rosetta {
		records = append(records, testutil.SecondaryRow(r.ID, r.First, r.Last, r.Set))
	}
	return records
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Rosetta) == 0 {
		return fmt.Errorf("rosetta list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, r := range s.Rosetta {
		for pos := range r.Set {
			if pos < 0 || pos >= testutil.SecondaryWidth {
				return fmt.Errorf("rosetta[%d]: set position %d outside 0..%d", i, pos, testutil.SecondaryWidth-1)
			}
		}
	}

	maxLine := len(s.Rosetta) + 1
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, maxLine); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, maxLine int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOutcome:
		if a.Line < 2 || a.Line > maxLine {
			return fmt.Errorf("assertions[%d]: line must be between 2 and %d for outcome", index, maxLine)
		}
		if _, err := linker.ParseOutcome(a.Outcome); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertOutcomeCount:
		if _, err := linker.ParseOutcome(a.Outcome); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for outcome_count", index)
		}
	case AssertCell:
		if a.Line < 2 || a.Line > maxLine {
			return fmt.Errorf("assertions[%d]: line must be between 2 and %d for cell", index, maxLine)
		}
		if a.Position < 0 || a.Position >= testutil.SecondaryWidth {
			return fmt.Errorf("assertions[%d]: position must be between 0 and %d for cell", index, testutil.SecondaryWidth-1)
		}
	case AssertStats:
		if len(a.Stats) == 0 {
			return fmt.Errorf("assertions[%d]: stats is required for stats", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
