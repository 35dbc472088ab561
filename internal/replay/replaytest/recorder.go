// Package replaytest provides in-memory sinks and directories for testing
// code built on package replay.
package replaytest

import (
	"replaytab/internal/replay"
)

// Recorder is a Sink that keeps every record in memory.
type Recorder struct {
	Records []replay.Record
	Closes  int
}

func (r *Recorder) Append(rec replay.Record) error {
	r.Records = append(r.Records, rec)
	return nil
}

func (r *Recorder) Close() error {
	r.Closes++
	return nil
}

// Journal records every table of a run, plus the global append order.
type Journal struct {
	Sinks map[replay.Table]*Recorder
	Order []replay.Record
}

// NewJournal returns a Journal and the Tables writing into it.
func NewJournal() (*Journal, *replay.Tables) {
	j := &Journal{Sinks: make(map[replay.Table]*Recorder)}
	tables, err := replay.NewTables(func(t replay.Table) (replay.Sink, error) {
		rec := &Recorder{}
		j.Sinks[t] = rec
		return &orderedSink{Recorder: rec, journal: j}, nil
	})
	if err != nil {
		panic(err)
	}
	return j, tables
}

// Count returns how many records table received.
func (j *Journal) Count(t replay.Table) int {
	return len(j.Sinks[t].Records)
}

// Records returns the records of one table.
func (j *Journal) Records(t replay.Table) []replay.Record {
	return j.Sinks[t].Records
}

type orderedSink struct {
	*Recorder
	journal *Journal
}

func (s *orderedSink) Append(rec replay.Record) error {
	s.journal.Order = append(s.journal.Order, rec)
	return s.Recorder.Append(rec)
}
