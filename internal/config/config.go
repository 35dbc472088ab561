// Package config resolves run settings from defaults, a YAML file, the
// environment and command-line flags, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"replaytab/internal/log"
	"replaytab/internal/sink"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "REPLAYTAB_"

// Config controls one extraction run.
type Config struct {
	Demo      string   `yaml:"demo"      env:"DEMO"`
	Script    string   `yaml:"script"    env:"SCRIPT"`
	Out       string   `yaml:"out"       env:"OUT"`
	Formats   []string `yaml:"formats"   env:"FORMATS" envSeparator:","`
	Compress  bool     `yaml:"compress"  env:"COMPRESS"`
	Delimiter string   `yaml:"delimiter" env:"DELIMITER"`
	Charset   string   `yaml:"charset"   env:"CHARSET"`
	Verbosity int      `yaml:"verbosity" env:"VERBOSITY"`
	LogFile   string   `yaml:"log_file"  env:"LOG_FILE"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Formats:   []string{"csv"},
		Delimiter: string(sink.DefaultDelimiter),
		Charset:   sink.DefaultCharset,
		Verbosity: log.Silent,
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the
// file leave cfg unchanged; unknown keys are an error.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays REPLAYTAB_* variables that are set onto cfg.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses args and resolves the full configuration. Only flags given on
// the command line override the file and the environment.
func Load(name string, args []string, output io.Writer) (Config, error) {
	def := Default()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		configPath = fs.String("config", "", "YAML configuration file")
		demo       = fs.String("demo", "", "demo file to extract")
		script     = fs.String("script", "", "event script to extract instead of a demo")
		out        = fs.String("out", "", "output directory (default: <input dir>/<input name>)")
		formats    = fs.String("format", strings.Join(def.Formats, ","), "comma-separated output formats: "+strings.Join(sink.Formats(), ", "))
		compress   = fs.Bool("compress", def.Compress, "gzip file outputs")
		delimiter  = fs.String("delimiter", def.Delimiter, "CSV field delimiter")
		charset    = fs.String("charset", def.Charset, "CSV charset: "+strings.Join(sink.Charsets(), ", "))
		verbosity  = fs.Int("verbosity", def.Verbosity, "0 silent, 1 lifecycle, 2 every record")
		logFile    = fs.String("log-file", "", "append logs to this file instead of stderr")
	)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg := def
	if *configPath != "" {
		if err := LoadFile(*configPath, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "demo":
			cfg.Demo = *demo
		case "script":
			cfg.Script = *script
		case "out":
			cfg.Out = *out
		case "format":
			cfg.Formats = splitList(*formats)
		case "compress":
			cfg.Compress = *compress
		case "delimiter":
			cfg.Delimiter = *delimiter
		case "charset":
			cfg.Charset = *charset
		case "verbosity":
			cfg.Verbosity = *verbosity
		case "log-file":
			cfg.LogFile = *logFile
		}
	})
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	switch {
	case c.Demo == "" && c.Script == "":
		errs = append(errs, errors.New("one of demo or script is required"))
	case c.Demo != "" && c.Script != "":
		errs = append(errs, errors.New("demo and script are mutually exclusive"))
	}

	if len(c.Formats) == 0 {
		errs = append(errs, errors.New("at least one output format is required"))
	}
	for i, f := range c.Formats {
		if !sink.Known(f) {
			errs = append(errs, fmt.Errorf("unknown format %q (want one of %s)", f, strings.Join(sink.Formats(), ", ")))
		}
		if slices.Contains(c.Formats[:i], f) {
			errs = append(errs, fmt.Errorf("format %q listed twice", f))
		}
	}

	if _, err := c.DelimiterRune(); err != nil {
		errs = append(errs, err)
	}
	if !sink.KnownCharset(c.Charset) {
		errs = append(errs, fmt.Errorf("unknown charset %q (want one of %s)", c.Charset, strings.Join(sink.Charsets(), ", ")))
	}
	if c.Verbosity < log.Silent || c.Verbosity > log.Records {
		errs = append(errs, fmt.Errorf("verbosity %d out of range %d..%d", c.Verbosity, log.Silent, log.Records))
	}
	return errors.Join(errs...)
}

// DelimiterRune returns the CSV delimiter as a single rune.
func (c Config) DelimiterRune() (rune, error) {
	r, size := utf8.DecodeRuneInString(c.Delimiter)
	if size == 0 || size != len(c.Delimiter) || r == utf8.RuneError {
		return 0, fmt.Errorf("delimiter %q must be a single character", c.Delimiter)
	}
	if r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("delimiter %q cannot be a quote or line break", c.Delimiter)
	}
	return r, nil
}

// Input returns the demo or script path, whichever is set.
func (c Config) Input() string {
	if c.Demo != "" {
		return c.Demo
	}
	return c.Script
}

// OutputDir returns Out, or a directory named after the input next to it.
func (c Config) OutputDir() string {
	if c.Out != "" {
		return c.Out
	}
	in := c.Input()
	stem := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return filepath.Join(filepath.Dir(in), stem)
}
