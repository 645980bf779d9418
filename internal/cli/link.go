package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/bdblink/internal/config"
	"github.com/roach88/bdblink/internal/linker"
	"github.com/roach88/bdblink/internal/pipeline"
	"github.com/roach88/bdblink/internal/runid"
)

// LinkOptions holds flags for a link run.
type LinkOptions struct {
	*RootOptions
	ConfigPath    string
	CanonicalPath string
	SecondaryPath string
	OutPath       string
	AuditDB       string
	DryRun        bool

	// RunIDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDGenerator runid.Generator
}

func addLinkFlags(cmd *cobra.Command, opts *LinkOptions) {
	def := config.Default()
	cmd.Flags().StringVarP(&opts.CanonicalPath, "bdb", "b", def.CanonicalPath, "Baseball Databank Master file")
	cmd.Flags().StringVarP(&opts.SecondaryPath, "rosetta", "r", def.SecondaryPath, "MLB Rosetta file")
	cmd.Flags().StringVarP(&opts.OutPath, "out", "o", def.OutPath, "output file")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "CUE config file")
	cmd.Flags().StringVar(&opts.AuditDB, "audit-db", "", "SQLite audit log (disabled when empty)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "link and report without writing output")
}

// resolveConfig layers the config file over the defaults and explicitly set
// flags over both.
func resolveConfig(opts *LinkOptions, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("bdb") {
		cfg.CanonicalPath = opts.CanonicalPath
	}
	if flags.Changed("rosetta") {
		cfg.SecondaryPath = opts.SecondaryPath
	}
	if flags.Changed("out") {
		cfg.OutPath = opts.OutPath
	}
	if flags.Changed("audit-db") {
		cfg.AuditDB = opts.AuditDB
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = opts.DryRun
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runLink(opts *LinkOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		return formatter.Fail(ErrCodeConfig, ExitCommandError, "invalid configuration", err)
	}

	var pipeOpts []pipeline.Option
	if opts.RunIDGenerator != nil {
		pipeOpts = append(pipeOpts, pipeline.WithRunIDGenerator(opts.RunIDGenerator))
	}
	p := pipeline.New(cfg, pipeOpts...)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := p.Run(ctx)
	if err != nil {
		code, exitCode := classifyRunError(err)
		return formatter.Fail(code, exitCode, "link run failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(rep)
	}
	outputLinkText(formatter, cfg, rep)
	return nil
}

// outputLinkText prints the run summary and, when verbose, every record
// that could not be linked.
func outputLinkText(f *OutputFormatter, cfg config.Config, rep *pipeline.Report) {
	w := f.Writer
	s := rep.Stats

	fmt.Fprintf(w, "Run %s: linked %d of %d record(s)\n\n", rep.RunID, s.Linked, s.Total)
	fmt.Fprintln(w, renderTable(
		[]string{"Outcome", "Records"},
		[][]string{
			{linker.OutcomeAlreadyLinked.String(), strconv.Itoa(s.AlreadyLinked)},
			{linker.OutcomeLinked.String(), strconv.Itoa(s.Linked)},
			{linker.OutcomeAmbiguous.String(), strconv.Itoa(s.Ambiguous)},
			{linker.OutcomeUnmatched.String(), strconv.Itoa(s.Unmatched)},
		},
		[]columnAlignment{alignLeft, alignRight},
	))
	fmt.Fprintf(w, "\nFields updated: %d\n", s.FieldsUpdated)
	fmt.Fprintf(w, "Master players indexed: %d (%d already claimed)\n", rep.CanonicalLoaded, rep.CanonicalSkipped)

	if f.Verbose {
		var rows [][]string
		for _, r := range rep.Results {
			if r.Outcome != linker.OutcomeAmbiguous && r.Outcome != linker.OutcomeUnmatched {
				continue
			}
			rows = append(rows, []string{
				strconv.Itoa(r.Line),
				r.Outcome.String(),
				string(r.Key),
				strconv.Itoa(r.Candidates),
			})
		}
		if len(rows) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, renderTable(
				[]string{"Line", "Outcome", "Name", "Candidates"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			))
		}
	}

	if rep.AuditSeq > 0 {
		fmt.Fprintf(w, "Audit log: %s (run #%d)\n", cfg.AuditDB, rep.AuditSeq)
	}
	if rep.Written {
		fmt.Fprintf(w, "Wrote %s\n", rep.OutPath)
	} else {
		fmt.Fprintln(w, "Dry run: no output written")
	}
}
