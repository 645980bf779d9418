package harness

import (
	"bytes"
	"context"
	"fmt"

	"github.com/roach88/bdblink/internal/config"
	"github.com/roach88/bdblink/internal/pipeline"
	"github.com/roach88/bdblink/internal/store"
	"github.com/roach88/bdblink/internal/tabular"
	"github.com/roach88/bdblink/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory audit log for isolation.
//
// Execution flow:
// 1. Load the Rosetta rows, then the Master rows, through the pipeline
// 2. Link every Rosetta record
// 3. Record the decisions in the audit log
// 4. Render the output and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	cfg := config.Default()
	cfg.CanonicalPath = "scenario:" + scenario.Name + "/master"
	cfg.SecondaryPath = "scenario:" + scenario.Name + "/rosetta"
	cfg.OutPath = ""
	cfg.DryRun = true
	if scenario.NullText != nil {
		cfg.NullText = *scenario.NullText
	}

	p := pipeline.New(cfg, pipeline.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(scenario.RunID)))
	if err := p.LoadSecondary(tabular.FromRecords(scenario.rosettaRecords())); err != nil {
		return nil, fmt.Errorf("failed to load rosetta: %w", err)
	}
	if err := p.LoadCanonical(tabular.FromRecords(scenario.masterRecords())); err != nil {
		return nil, fmt.Errorf("failed to load master: %w", err)
	}
	if err := p.Link(ctx); err != nil {
		return nil, fmt.Errorf("failed to link: %w", err)
	}
	rep := p.Report()

	if _, err := st.WriteRun(ctx, store.Run{
		ID:            rep.RunID,
		CanonicalPath: cfg.CanonicalPath,
		SecondaryPath: cfg.SecondaryPath,
		DryRun:        true,
		Stats:         rep.Stats,
	}, store.DecisionsFromResults(rep.Results)); err != nil {
		return nil, fmt.Errorf("failed to record decisions: %w", err)
	}

	var out bytes.Buffer
	if err := tabular.Write(&out, p.Header(), p.Rows()); err != nil {
		return nil, fmt.Errorf("failed to render output: %w", err)
	}

	result := NewResult()
	result.RunID = rep.RunID
	result.Stats = rep.Stats
	result.Output = out.Bytes()

	i := 0
	for row := range p.Rows() {
		result.Rows[rep.Results[i].Line] = row
		i++
	}

	// Decisions are read back so assertions see what the audit log holds.
	result.Decisions, err = st.Decisions(ctx, rep.RunID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to read decisions: %w", err)
	}

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
		RunID: rep.RunID,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}
