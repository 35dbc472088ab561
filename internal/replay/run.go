package replay

import (
	"context"
	"errors"

	"replaytab/internal/log"
)

// Run drives src through a fresh engine into tables. Tables are closed
// exactly once however the stream ends. Errors from the source that carry no
// code are reported as CodeStreamDecode.
func Run(ctx context.Context, src Source, tables *Tables) (Stats, error) {
	eng := NewEngine(src.Directory(), tables)

	streamErr := src.Stream(ctx, eng.Handle)
	if streamErr != nil && !isCoded(streamErr) && ctx.Err() == nil {
		streamErr = Wrap(CodeStreamDecode, "decode replay", streamErr)
	}
	closeErr := tables.Close()

	stats := eng.Stats()
	if streamErr != nil {
		log.Error("Parsing aborted", "error", streamErr)
		return stats, errors.Join(streamErr, closeErr)
	}
	if closeErr != nil {
		return stats, closeErr
	}

	args := []any{"live", eng.Live(), "lookup_misses", stats.LookupMisses, "unknown_utility", stats.UnknownUtility}
	for _, t := range AllTables {
		args = append(args, string(t), stats.Records[t])
	}
	log.Info("Parsing ended", args...)
	return stats, nil
}

func isCoded(err error) bool {
	var coded *Error
	return errors.As(err, &coded)
}
