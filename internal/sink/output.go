package sink

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"replaytab/internal/replay"
)

// output is one table file, optionally gzip-compressed.
type output struct {
	file *os.File
	gz   *gzip.Writer
	buf  *bufio.Writer
}

// FileName returns the file a table is written to for a format extension.
func FileName(table replay.Table, ext string, compress bool) string {
	return outputName(string(table), ext, compress)
}

func outputName(base, ext string, compress bool) string {
	name := base + "." + ext
	if compress {
		name += ".gz"
	}
	return name
}

func createOutput(opts Options, base, ext string) (*output, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(opts.Dir, outputName(base, ext, opts.Compress))
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	out := &output{file: file}
	var w io.Writer = file
	if opts.Compress {
		out.gz = gzip.NewWriter(file)
		out.gz.Name = outputName(base, ext, false)
		out.gz.ModTime = opts.StartedAt
		w = out.gz
	}
	out.buf = bufio.NewWriter(w)
	return out, nil
}

func (o *output) Write(p []byte) (int, error) {
	return o.buf.Write(p)
}

// Close flushes the buffer and the gzip stream, if any, then closes the file.
func (o *output) Close() error {
	flushErr := o.buf.Flush()
	var gzErr error
	if o.gz != nil {
		gzErr = o.gz.Close()
	}
	return errors.Join(flushErr, gzErr, o.file.Close())
}
