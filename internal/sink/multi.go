package sink

import (
	"errors"

	"replaytab/internal/replay"
)

// Multi fans each record out to several sinks of the same table, in order.
type Multi struct {
	sinks  []replay.Sink
	closed bool
}

// NewMulti combines sinks. They are closed with the Multi.
func NewMulti(sinks ...replay.Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Append stops at the first failing sink.
func (m *Multi) Append(rec replay.Record) error {
	for _, s := range m.sinks {
		if err := s.Append(rec); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, even after a failure, and joins the errors.
func (m *Multi) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return closeAll(m.sinks)
}

func closeAll(sinks []replay.Sink) error {
	var errs []error
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
