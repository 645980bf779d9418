package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bdblink/internal/registry"
)

func TestParse_EmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""), "empty.cue")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Overrides(t *testing.T) {
	src := `
bdb:       "data/Master.txt"
audit_db:  "audit.db"
null_text: ""
schema: secondary_link: 7
`
	cfg, err := Parse([]byte(src), "link.cue")
	require.NoError(t, err)

	assert.Equal(t, "data/Master.txt", cfg.CanonicalPath)
	assert.Equal(t, "mlb_rosetta.csv", cfg.SecondaryPath)
	assert.Equal(t, "audit.db", cfg.AuditDB)
	assert.Equal(t, "", cfg.NullText)
	assert.Equal(t, 7, cfg.Schema.SecondaryLink)
	assert.Equal(t, 16, cfg.Schema.CanonicalFirst)
	assert.Equal(t, registry.DefaultSchema().Fields, cfg.Schema.Fields)
}

func TestParse_CustomFields(t *testing.T) {
	src := `schema: fields: [{secondary: 8, canonical: 0}]`
	cfg, err := Parse([]byte(src), "link.cue")
	require.NoError(t, err)
	assert.Equal(t, []registry.FieldMap{{Secondary: 8, Canonical: 0}}, cfg.Schema.Fields)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown key", `bdbfile: "x"`},
		{"negative position", `schema: canonical_id: -1`},
		{"wrong type", `dry_run: "yes"`},
		{"syntax", `bdb: `},
		{"duplicate target", `schema: fields: [{secondary: 8, canonical: 0}, {secondary: 8, canonical: 1}]`},
		{"empty fields", `schema: fields: []`},
		{"empty path", `rosetta: ""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.cue")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "bad.cue")
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link.cue")
	require.NoError(t, os.WriteFile(path, []byte(`out: "linked.csv"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "linked.csv", cfg.OutPath)

	_, err = Load(filepath.Join(t.TempDir(), "missing.cue"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	cfg := Default()
	cfg.OutPath = ""
	assert.Error(t, cfg.Validate())

	cfg.DryRun = true
	assert.NoError(t, cfg.Validate(), "dry runs need no output path")

	cfg.NullText = "a\nb"
	assert.Error(t, cfg.Validate())
}
