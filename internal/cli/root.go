package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/bdblink/internal/runid"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the bdblink CLI.
// Invoked without a subcommand it performs a link run.
func NewRootCommand() *cobra.Command {
	return newRootCommand(nil)
}

// newRootCommand builds the root command with an optional run ID generator.
func newRootCommand(runIDs runid.Generator) *cobra.Command {
	rootOpts := &RootOptions{}
	linkOpts := &LinkOptions{RootOptions: rootOpts, RunIDGenerator: runIDs}

	cmd := &cobra.Command{
		Use:   "bdblink",
		Short: "Backfill Baseball Databank identifiers into MLB Rosetta",
		Long: `Link MLB Rosetta records to the Baseball Databank Master registry.

Every Rosetta record without a retrosheet link is matched by exact first and
last name against Master players whose identifier is not already claimed.
When exactly one player matches, the missing identifier cells are filled in.
Existing values are never overwritten.

Exit codes:
  0 - Run completed
  1 - Run failed (interrupted, audit log error, etc.)
  2 - Command error (invalid flags or config, output locked)
  3 - Input file missing or unreadable
  4 - Input file violates the registry schema

Examples:
  bdblink
  bdblink --bdb Master.txt --rosetta mlb_rosetta.csv --out new_mlb_rosetta.csv
  bdblink --config bdblink.cue --audit-db audit.db
  bdblink --dry-run --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(rootOpts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", rootOpts.Format, ValidFormats))
			}
			setupLogging(rootOpts.Verbose, cmd.ErrOrStderr())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(linkOpts, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&rootOpts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&rootOpts.Format, "format", "text", "output format (json|text)")

	addLinkFlags(cmd, linkOpts)

	cmd.AddCommand(NewAuditCommand(rootOpts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Errors already reported through an OutputFormatter are not printed again.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if !exitErr.reported {
			fmt.Fprintln(stderr, "Error:", exitErr)
		}
		return exitErr.Code
	}

	// Flag parsing and argument validation errors come straight from cobra.
	fmt.Fprintln(stderr, "Error:", err)
	return ExitCommandError
}

// setupLogging installs the default slog handler on w.
func setupLogging(verbose bool, w io.Writer) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
