package sink

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"replaytab/internal/replay"
)

func init() {
	Register("msgpack", newMsgpackWriter)
}

// MsgpackHeader opens every msgpack table file. Each following value is one
// row encoded as an array in Columns order.
type MsgpackHeader struct {
	RunID   string   `msgpack:"run_id"`
	Table   string   `msgpack:"table"`
	Columns []string `msgpack:"columns"`
}

type msgpackWriter struct {
	opts Options
}

func newMsgpackWriter(opts Options) (Writer, error) {
	return &msgpackWriter{opts: opts}, nil
}

func (w *msgpackWriter) Open(table replay.Table) (replay.Sink, error) {
	out, err := createOutput(w.opts, string(table), "msgpack")
	if err != nil {
		return nil, err
	}

	s := &Msgpack{out: out, enc: msgpack.NewEncoder(out)}
	header := MsgpackHeader{
		RunID:   w.opts.RunID.String(),
		Table:   string(table),
		Columns: table.Columns(),
	}
	if err := s.enc.Encode(&header); err != nil {
		s.Close()
		return nil, fmt.Errorf("write %s header: %w", table, err)
	}
	return s, nil
}

// Msgpack writes one table as a stream of MessagePack values.
type Msgpack struct {
	out    *output
	enc    *msgpack.Encoder
	closed bool
}

func (s *Msgpack) Append(rec replay.Record) error {
	if s.closed {
		return fmt.Errorf("%s msgpack sink closed", rec.Table())
	}
	return s.enc.Encode(rec.Values())
}

func (s *Msgpack) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.out.Close()
}
