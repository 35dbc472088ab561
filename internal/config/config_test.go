package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "replaytab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("replaytab", []string{"-demo", "match.dem"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "match.dem", cfg.Demo)
	assert.Equal(t, []string{"csv"}, cfg.Formats)
	assert.Equal(t, ";", cfg.Delimiter)
	assert.Equal(t, "utf-8", cfg.Charset)
	assert.Equal(t, 0, cfg.Verbosity)
	assert.False(t, cfg.Compress)
	assert.NoError(t, cfg.Validate())
}

func TestLayering(t *testing.T) {
	path := writeConfig(t, `
script: from-file.yaml
formats: [msgpack]
delimiter: ","
verbosity: 1
`)
	t.Setenv("REPLAYTAB_VERBOSITY", "2")
	t.Setenv("REPLAYTAB_FORMATS", "csv,sqlite")
	t.Setenv("REPLAYTAB_COMPRESS", "true")

	cfg, err := Load("replaytab", []string{"-config", path, "-format", "sqlite", "-out", "/tmp/tables"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "from-file.yaml", cfg.Script, "file beats default")
	assert.Equal(t, ",", cfg.Delimiter)
	assert.Equal(t, 2, cfg.Verbosity, "environment beats file")
	assert.True(t, cfg.Compress)
	assert.Equal(t, []string{"sqlite"}, cfg.Formats, "explicit flag beats environment")
	assert.Equal(t, "/tmp/tables", cfg.Out)
}

func TestUnsetFlagsDoNotOverride(t *testing.T) {
	t.Setenv("REPLAYTAB_CHARSET", "windows-1252")

	cfg, err := Load("replaytab", []string{"-script", "a.yaml"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", cfg.Charset, "the -charset default must not reset the environment")
}

func TestLoadRejects(t *testing.T) {
	_, err := Load("replaytab", []string{"-config", writeConfig(t, "formats: [csv]\nbogus: 1\n")}, io.Discard)
	assert.ErrorContains(t, err, "bogus")

	_, err = Load("replaytab", []string{"-demo", "a.dem", "extra"}, io.Discard)
	assert.ErrorContains(t, err, "unexpected arguments")

	_, err = Load("replaytab", []string{"-verbosity", "loud"}, io.Discard)
	assert.Error(t, err)

	t.Setenv("REPLAYTAB_VERBOSITY", "loud")
	_, err = Load("replaytab", nil, io.Discard)
	assert.ErrorContains(t, err, "parse env")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.Demo = "match.dem"
		return cfg
	}

	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{name: "NoInput", modify: func(c *Config) { c.Demo = "" }, want: "one of demo or script"},
		{name: "BothInputs", modify: func(c *Config) { c.Script = "a.yaml" }, want: "mutually exclusive"},
		{name: "UnknownFormat", modify: func(c *Config) { c.Formats = []string{"csv", "xlsx"} }, want: `unknown format "xlsx"`},
		{name: "DuplicateFormat", modify: func(c *Config) { c.Formats = []string{"csv", "csv"} }, want: "listed twice"},
		{name: "NoFormat", modify: func(c *Config) { c.Formats = nil }, want: "at least one"},
		{name: "LongDelimiter", modify: func(c *Config) { c.Delimiter = ";;" }, want: "single character"},
		{name: "EmptyDelimiter", modify: func(c *Config) { c.Delimiter = "" }, want: "single character"},
		{name: "QuoteDelimiter", modify: func(c *Config) { c.Delimiter = `"` }, want: "quote"},
		{name: "Charset", modify: func(c *Config) { c.Charset = "koi8" }, want: `unknown charset "koi8"`},
		{name: "Verbosity", modify: func(c *Config) { c.Verbosity = 3 }, want: "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	cfg := valid()
	cfg.Delimiter = "\t"
	r, err := cfg.DelimiterRune()
	require.NoError(t, err)
	assert.Equal(t, '\t', r)
}

func TestOutputDir(t *testing.T) {
	cfg := Config{Demo: filepath.Join("replays", "de_inferno.dem")}
	assert.Equal(t, filepath.Join("replays", "de_inferno"), cfg.OutputDir())

	cfg = Config{Script: "fixture.yaml"}
	assert.Equal(t, "fixture", cfg.OutputDir())

	cfg.Out = "tables"
	assert.Equal(t, "tables", cfg.OutputDir())
}
