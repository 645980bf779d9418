package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/bdblink/internal/registry"
)

//go:embed schema.cue
var schemaCUE string

// Config holds the settings of one link run.
type Config struct {
	// CanonicalPath is the Master registry file.
	CanonicalPath string `json:"bdb"`

	// SecondaryPath is the Rosetta registry file.
	SecondaryPath string `json:"rosetta"`

	// OutPath receives the updated Rosetta registry.
	OutPath string `json:"out"`

	// AuditDB is an optional SQLite audit log path. Empty disables auditing.
	AuditDB string `json:"audit_db"`

	// NullText is written for null cells.
	NullText string `json:"null_text"`

	// DryRun links and reports without writing OutPath.
	DryRun bool `json:"dry_run"`

	Schema registry.Schema `json:"schema"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		CanonicalPath: "Master.txt",
		SecondaryPath: "mlb_rosetta.csv",
		OutPath:       "new_mlb_rosetta.csv",
		NullText:      "NULL",
		Schema:        registry.DefaultSchema(),
	}
}

// Load reads a CUE config file and resolves it against the schema.
// Keys missing from the file take their schema defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse resolves CUE source against the schema. filename is used in errors.
func Parse(src []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("config schema: %w", err)
	}

	file := ctx.CompileBytes(src, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return Config{}, formatCUEError(filename, err)
	}

	v := schema.Unify(file)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(filename, err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, formatCUEError(filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

// Validate checks settings that the CUE schema cannot express.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.CanonicalPath) == "" {
		errs = append(errs, errors.New("bdb: path is required"))
	}
	if strings.TrimSpace(c.SecondaryPath) == "" {
		errs = append(errs, errors.New("rosetta: path is required"))
	}
	if !c.DryRun && strings.TrimSpace(c.OutPath) == "" {
		errs = append(errs, errors.New("out: path is required"))
	}
	if strings.ContainsAny(c.NullText, "\r\n") {
		errs = append(errs, errors.New("null_text: must not contain line breaks"))
	}
	if err := c.Schema.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("schema: %w", err))
	}
	return errors.Join(errs...)
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(filename string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return fmt.Errorf("%s: %w", filename, err)
	}

	first := errs[0]
	msg := first.Error()
	if positions := cueerrors.Positions(first); len(positions) > 0 && positions[0].IsValid() {
		pos := positions[0]
		msg = fmt.Sprintf("%s (%s:%d:%d)", msg, pos.Filename(), pos.Line(), pos.Column())
	}
	return fmt.Errorf("%s: %s", filename, msg)
}
