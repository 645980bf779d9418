package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bdblink/internal/linker"
	"github.com/roach88/bdblink/internal/store"
)

// AuditOptions holds flags for the audit command.
type AuditOptions struct {
	*RootOptions
	Database string
	Outcome  string // optional - filter decisions by outcome
}

// AuditRunResult is the JSON payload for a single audited run.
type AuditRunResult struct {
	Run       store.Run        `json:"run"`
	Decisions []store.Decision `json:"decisions"`
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "audit [run-id]",
		Short: "Inspect the audit log of past link runs",
		Long: `List audited link runs, or the per-record decisions of one run.

Without a run ID every run is listed in the order it was recorded. With a run
ID the run summary is printed followed by one decision per Rosetta record.

Exit codes:
  0 - Success
  2 - Command error (database not found, unknown run, bad outcome filter)

Examples:
  bdblink audit --db ./audit.db
  bdblink audit --db ./audit.db 0192a1b2-...
  bdblink audit --db ./audit.db 0192a1b2-... --outcome ambiguous --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runAudit(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite audit log (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "only show decisions with this outcome")

	return cmd
}

func runAudit(opts *AuditOptions, runID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Outcome != "" {
		if _, err := linker.ParseOutcome(opts.Outcome); err != nil {
			return formatter.Fail(ErrCodeConfig, ExitCommandError, "invalid --outcome", err)
		}
	}

	// Opening creates missing databases, which is never wanted here.
	if _, err := os.Stat(opts.Database); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return formatter.Fail(ErrCodeAudit, ExitCommandError, "audit log not found", err)
		}
		return formatter.Fail(ErrCodeAudit, ExitCommandError, "failed to open audit log", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ErrCodeAudit, ExitCommandError, "failed to open audit log", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if runID == "" {
		return listRuns(ctx, st, formatter)
	}
	return showRun(ctx, st, formatter, runID, opts.Outcome)
}

func listRuns(ctx context.Context, st *store.Store, f *OutputFormatter) error {
	runs, err := st.Runs(ctx)
	if err != nil {
		return f.Fail(ErrCodeAudit, ExitCommandError, "failed to list runs", err)
	}

	if f.Format == "json" {
		return f.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs found in audit log.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(r.Seq, 10),
			r.ID,
			r.OutPath,
			dryRunLabel(r.DryRun),
			strconv.Itoa(r.Stats.Total),
			strconv.Itoa(r.Stats.Linked),
			strconv.Itoa(r.Stats.Ambiguous),
			strconv.Itoa(r.Stats.Unmatched),
		})
	}
	fmt.Fprintln(f.Writer, renderTable(
		[]string{"Seq", "Run", "Output", "Mode", "Total", "Linked", "Ambiguous", "Unmatched"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
	return nil
}

func showRun(ctx context.Context, st *store.Store, f *OutputFormatter, runID, outcome string) error {
	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return f.Fail(ErrCodeNotFound, ExitCommandError, fmt.Sprintf("run %s not found", runID), nil)
		}
		return f.Fail(ErrCodeAudit, ExitCommandError, "failed to read run", err)
	}

	decisions, err := st.Decisions(ctx, runID, outcome)
	if err != nil {
		return f.Fail(ErrCodeAudit, ExitCommandError, "failed to read decisions", err)
	}

	if f.Format == "json" {
		return f.Success(AuditRunResult{Run: run, Decisions: decisions})
	}

	fmt.Fprintf(f.Writer, "Run %s (#%d, %s)\n", run.ID, run.Seq, dryRunLabel(run.DryRun))
	fmt.Fprintf(f.Writer, "  Master:  %s\n", run.CanonicalPath)
	fmt.Fprintf(f.Writer, "  Rosetta: %s\n", run.SecondaryPath)
	fmt.Fprintf(f.Writer, "  Output:  %s\n\n", run.OutPath)

	if len(decisions) == 0 {
		fmt.Fprintln(f.Writer, "No decisions recorded.")
		return nil
	}

	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		canonical := ""
		if d.CanonicalID != nil {
			canonical = strconv.FormatInt(*d.CanonicalID, 10)
		}
		rows = append(rows, []string{
			strconv.Itoa(d.Line),
			d.Outcome,
			d.NameKey,
			strconv.Itoa(d.Candidates),
			canonical,
			joinInts(d.Changed),
		})
	}
	fmt.Fprintln(f.Writer, renderTable(
		[]string{"Line", "Outcome", "Name", "Candidates", "Master ID", "Changed"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
	return nil
}

func dryRunLabel(dryRun bool) string {
	if dryRun {
		return "dry-run"
	}
	return "write"
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}
