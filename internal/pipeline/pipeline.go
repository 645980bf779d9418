package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/gofrs/flock"

	"github.com/roach88/bdblink/internal/cell"
	"github.com/roach88/bdblink/internal/config"
	"github.com/roach88/bdblink/internal/linker"
	"github.com/roach88/bdblink/internal/registry"
	"github.com/roach88/bdblink/internal/runid"
	"github.com/roach88/bdblink/internal/store"
	"github.com/roach88/bdblink/internal/tabular"
)

var (
	// ErrStageOrder is returned when a stage runs before its prerequisites.
	ErrStageOrder = errors.New("pipeline stage out of order")

	// ErrLocked is returned when another run holds the output lock.
	ErrLocked = errors.New("output is locked by another run")
)

// Report summarizes a run.
type Report struct {
	RunID   string       `json:"run_id"`
	Stats   linker.Stats `json:"stats"`
	OutPath string       `json:"out_path,omitempty"`
	Written bool         `json:"written"`

	// CanonicalLoaded and CanonicalSkipped count canonical rows kept and
	// skipped because their identifier was already claimed.
	CanonicalLoaded  int `json:"canonical_loaded"`
	CanonicalSkipped int `json:"canonical_skipped"`

	// AuditSeq is the audit log sequence of this run, 0 when not audited.
	AuditSeq int64 `json:"audit_seq,omitempty"`

	// Results holds the per-record decisions in source order.
	Results []linker.Result `json:"-"`
}

// Pipeline holds the state of a single run.
type Pipeline struct {
	cfg    config.Config
	runIDs runid.Generator
	runID  string

	secondary *registry.Secondary
	canonical *registry.Canonical
	results   []linker.Result
	stats     linker.Stats
	linked    bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRunIDGenerator overrides the UUIDv7 run ID generator (for testing).
func WithRunIDGenerator(g runid.Generator) Option {
	return func(p *Pipeline) { p.runIDs = g }
}

// New creates a pipeline for cfg.
func New(cfg config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, runIDs: runid.UUIDv7Generator{}}
	for _, opt := range opts {
		opt(p)
	}
	p.runID = p.runIDs.Generate()
	return p
}

// RunID returns the identifier of this run.
func (p *Pipeline) RunID() string {
	return p.runID
}

// LoadSecondary loads the secondary registry. It must run first.
func (p *Pipeline) LoadSecondary(rows iter.Seq2[tabular.Row, error]) error {
	if p.secondary != nil {
		return fmt.Errorf("%w: secondary registry already loaded", ErrStageOrder)
	}
	sec, err := registry.LoadSecondary(rows, p.cfg.Schema)
	if err != nil {
		return err
	}
	p.secondary = sec
	return nil
}

// LoadCanonical loads the canonical registry, skipping identifiers claimed
// by the secondary registry.
func (p *Pipeline) LoadCanonical(rows iter.Seq2[tabular.Row, error]) error {
	if p.secondary == nil {
		return fmt.Errorf("%w: canonical registry needs the secondary registry's claimed identifiers", ErrStageOrder)
	}
	if p.canonical != nil {
		return fmt.Errorf("%w: canonical registry already loaded", ErrStageOrder)
	}
	can, err := registry.LoadCanonical(rows, p.secondary.Linked, p.cfg.Schema)
	if err != nil {
		return err
	}
	p.canonical = can
	return nil
}

// Link decides every secondary record in source order.
// Cancellation is checked between records.
func (p *Pipeline) Link(ctx context.Context) error {
	if p.secondary == nil || p.canonical == nil {
		return fmt.Errorf("%w: both registries must be loaded before linking", ErrStageOrder)
	}

	results, stats, err := linker.New(p.canonical, p.cfg.Schema).LinkAll(ctx, p.secondary.Records)
	if err != nil {
		return err
	}

	p.results = results
	p.stats = stats
	p.linked = true
	return nil
}

// Header returns the secondary header row, or nil before LoadSecondary.
func (p *Pipeline) Header() []string {
	if p.secondary == nil {
		return nil
	}
	return p.secondary.Header
}

// Rows yields the rendered output rows in source order.
func (p *Pipeline) Rows() iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		for _, r := range p.results {
			if !yield(cell.RenderRow(r.Cells, p.cfg.NullText)) {
				return
			}
		}
	}
}

// Report summarizes the stages run so far.
func (p *Pipeline) Report() *Report {
	rep := &Report{
		RunID:   p.runID,
		Stats:   p.stats,
		Results: p.results,
	}
	if p.canonical != nil {
		rep.CanonicalLoaded = p.canonical.Len()
		rep.CanonicalSkipped = p.canonical.Skipped
	}
	return rep
}

// Run executes every stage against the configured files.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	if !p.cfg.DryRun {
		unlock, err := lockOutput(p.cfg.OutPath)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	slog.Info("loading secondary registry", "path", p.cfg.SecondaryPath)
	if err := tabular.ReadFile(p.cfg.SecondaryPath, p.LoadSecondary); err != nil {
		return nil, err
	}

	slog.Info("loading canonical registry", "path", p.cfg.CanonicalPath)
	if err := tabular.ReadFile(p.cfg.CanonicalPath, p.LoadCanonical); err != nil {
		return nil, err
	}

	if err := p.Link(ctx); err != nil {
		return nil, err
	}
	rep := p.Report()
	slog.Info("linking complete",
		"run_id", p.runID,
		"total", rep.Stats.Total,
		"linked", rep.Stats.Linked,
		"ambiguous", rep.Stats.Ambiguous,
		"unmatched", rep.Stats.Unmatched,
		"already_linked", rep.Stats.AlreadyLinked,
	)

	if p.cfg.AuditDB != "" {
		seq, err := p.writeAudit(ctx)
		if err != nil {
			return nil, err
		}
		rep.AuditSeq = seq
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.cfg.DryRun {
		slog.Info("dry run, output not written")
		return rep, nil
	}

	if err := tabular.WriteFile(p.cfg.OutPath, p.Header(), p.Rows(), 0); err != nil {
		return nil, fmt.Errorf("write %s: %w", p.cfg.OutPath, err)
	}
	rep.OutPath = p.cfg.OutPath
	rep.Written = true
	slog.Info("output written", "path", p.cfg.OutPath, "rows", len(p.results))

	return rep, nil
}

func (p *Pipeline) writeAudit(ctx context.Context) (int64, error) {
	st, err := store.Open(p.cfg.AuditDB)
	if err != nil {
		return 0, fmt.Errorf("open audit log: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing audit log", "error", closeErr)
		}
	}()

	seq, err := st.WriteRun(ctx, store.Run{
		ID:            p.runID,
		CanonicalPath: p.cfg.CanonicalPath,
		SecondaryPath: p.cfg.SecondaryPath,
		OutPath:       p.cfg.OutPath,
		DryRun:        p.cfg.DryRun,
		Stats:         p.stats,
	}, store.DecisionsFromResults(p.results))
	if err != nil {
		return 0, fmt.Errorf("write audit log: %w", err)
	}
	slog.Debug("audit log written", "path", p.cfg.AuditDB, "seq", seq)
	return seq, nil
}

// lockOutput takes an exclusive lock next to the output file.
func lockOutput(outPath string) (func(), error) {
	lockPath := outPath + ".lock"
	lock := flock.New(lockPath)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("failed to release output lock", "path", lockPath, "error", err)
		}
	}, nil
}
