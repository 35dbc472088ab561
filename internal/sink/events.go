package sink

import (
	"encoding/csv"
	"errors"
	"fmt"
)

// EventDumpBase names the file listing the game events a replay declares.
const EventDumpBase = "events_dump"

// EventDumpName returns the event dump file name.
func EventDumpName(compress bool) string {
	return outputName(EventDumpBase, "csv", compress)
}

// WriteEventDump writes one event name per line, without a header, into the
// output directory. Compress applies as it does to the tables.
func WriteEventDump(opts Options, names []string) error {
	out, err := createOutput(opts, EventDumpBase, "csv")
	if err != nil {
		return fmt.Errorf("create event dump: %w", err)
	}
	w := csv.NewWriter(out)
	for _, name := range names {
		if err := w.Write([]string{name}); err != nil {
			return errors.Join(fmt.Errorf("write event dump: %w", err), out.Close())
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Join(fmt.Errorf("write event dump: %w", err), out.Close())
	}
	return out.Close()
}
