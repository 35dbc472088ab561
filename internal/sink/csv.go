package sink

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"replaytab/internal/replay"
)

// DefaultDelimiter separates CSV fields unless configured otherwise.
const DefaultDelimiter = ';'

// DefaultCharset leaves CSV text as UTF-8.
const DefaultCharset = "utf-8"

// charsets are the legacy encodings CSV output can be converted to, for
// spreadsheet tools that do not read UTF-8.
var charsets = map[string]*charmap.Charmap{
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1250": charmap.Windows1250,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
}

// Charsets lists the accepted charset names.
func Charsets() []string {
	names := []string{DefaultCharset}
	for name := range charsets {
		names = append(names, name)
	}
	sort.Strings(names[1:])
	return names
}

// KnownCharset reports whether name is an accepted charset.
func KnownCharset(name string) bool {
	name = strings.ToLower(name)
	_, ok := charsets[name]
	return ok || name == DefaultCharset || name == ""
}

func init() {
	Register("csv", newCSVWriter)
}

type csvWriter struct {
	opts    Options
	charmap *charmap.Charmap
}

func newCSVWriter(opts Options) (Writer, error) {
	w := &csvWriter{opts: opts}
	if w.opts.Delimiter == 0 {
		w.opts.Delimiter = DefaultDelimiter
	}
	name := strings.ToLower(opts.Charset)
	if name != "" && name != DefaultCharset {
		cm, ok := charsets[name]
		if !ok {
			return nil, fmt.Errorf("unknown charset %q", opts.Charset)
		}
		w.charmap = cm
	}
	return w, nil
}

func (w *csvWriter) Open(table replay.Table) (replay.Sink, error) {
	out, err := createOutput(w.opts, string(table), "csv")
	if err != nil {
		return nil, err
	}

	s := &CSV{out: out}
	var text io.Writer = out
	if w.charmap != nil {
		// Runes the charset lacks become its replacement byte instead of
		// failing the whole row.
		s.enc = transform.NewWriter(out, encoding.ReplaceUnsupported(w.charmap.NewEncoder()))
		text = s.enc
	}
	s.w = csv.NewWriter(text)
	s.w.Comma = w.opts.Delimiter
	if err := s.w.Write(table.Columns()); err != nil {
		s.Close()
		return nil, fmt.Errorf("write %s header: %w", table, err)
	}
	return s, nil
}

// CSV writes one table as delimited text with a header row.
type CSV struct {
	out    *output
	enc    *transform.Writer // nil for UTF-8
	w      *csv.Writer
	row    []string
	closed bool
}

func (s *CSV) Append(rec replay.Record) error {
	if s.closed {
		return fmt.Errorf("%s csv sink closed", rec.Table())
	}
	values := rec.Values()
	s.row = s.row[:0]
	for _, v := range values {
		s.row = append(s.row, formatValue(v))
	}
	return s.w.Write(s.row)
}

func (s *CSV) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.w.Flush()
	err := s.w.Error()
	if s.enc != nil {
		if cerr := s.enc.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := s.out.Close(); err == nil {
		err = cerr
	}
	return err
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
