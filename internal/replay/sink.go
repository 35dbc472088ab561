package replay

import (
	"errors"
	"fmt"
)

//go:generate go tool mockgen -destination=./mocks/sink_mock.go -package=mocks . Sink

// Sink is an append-only destination for one table.
type Sink interface {
	// Append writes one record. Failures are returned, never swallowed.
	Append(rec Record) error
	// Close flushes and releases the sink. Calling it again is a no-op.
	Close() error
}

// Tables groups the five table sinks of one run.
type Tables struct {
	Tick             Sink
	PlayerDeath      Sink
	WeaponFire       Sink
	UtilityLifecycle Sink
	BombLifecycle    Sink

	closed bool
}

// NewTables builds Tables by asking open for each table in AllTables order.
// If one fails, the sinks opened so far are closed.
func NewTables(open func(Table) (Sink, error)) (*Tables, error) {
	t := &Tables{}
	for _, table := range AllTables {
		s, err := open(table)
		if err != nil {
			closeErr := t.Close()
			return nil, errors.Join(fmt.Errorf("open %s sink: %w", table, err), closeErr)
		}
		t.set(table, s)
	}
	return t, nil
}

func (t *Tables) set(table Table, s Sink) {
	switch table {
	case TableTick:
		t.Tick = s
	case TablePlayerDeath:
		t.PlayerDeath = s
	case TableWeaponFire:
		t.WeaponFire = s
	case TableUtilityLifecycle:
		t.UtilityLifecycle = s
	case TableBombLifecycle:
		t.BombLifecycle = s
	}
}

// Sink returns the sink for table, or nil.
func (t *Tables) Sink(table Table) Sink {
	switch table {
	case TableTick:
		return t.Tick
	case TablePlayerDeath:
		return t.PlayerDeath
	case TableWeaponFire:
		return t.WeaponFire
	case TableUtilityLifecycle:
		return t.UtilityLifecycle
	case TableBombLifecycle:
		return t.BombLifecycle
	}
	return nil
}

// Append routes rec to the sink of its table.
func (t *Tables) Append(rec Record) error {
	s := t.Sink(rec.Table())
	if s == nil {
		return NewError(CodeSinkWrite, "no sink for table %s", rec.Table())
	}
	return Wrap(CodeSinkWrite, "append "+string(rec.Table()), s.Append(rec))
}

// Close closes every sink once. Later calls return nil.
func (t *Tables) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	var errs []error
	for _, table := range AllTables {
		s := t.Sink(table)
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil {
			errs = append(errs, Wrap(CodeSinkWrite, "close "+string(table), err))
		}
	}
	return errors.Join(errs...)
}
