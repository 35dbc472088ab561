package script

import (
	"context"
	"fmt"

	"replaytab/internal/replay"
)

// Source streams the steps of a Script.
type Source struct {
	script *Script
	dir    *Directory
}

// NewSource prepares s for streaming. The directory starts from the script's
// initial tick, round and roster.
func NewSource(s *Script) *Source {
	return &Source{
		script: s,
		dir:    newDirectory(s.Tick, s.Round, s.Players),
	}
}

// Open loads the script at path.
func Open(path string) (*Source, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewSource(s), nil
}

func (s *Source) Directory() replay.Directory { return s.dir }

// EventNames returns the named events the script uses, in order of first use.
func (s *Source) EventNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, step := range s.script.Steps {
		if step.Event != "" && !seen[step.Event] {
			seen[step.Event] = true
			names = append(names, step.Event)
		}
	}
	return names
}

func (s *Source) Stream(ctx context.Context, handle func(replay.Event) error) error {
	for i, step := range s.script.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.dir.apply(step)

		var ev replay.Event
		switch {
		case step.Start:
			ev = replay.Start{}
		case step.TickEnd:
			ev = replay.TickEnd{}
		case step.Event != "":
			var err error
			ev, err = replay.ParseGameEvent(step.Event, step.Fields)
			if err != nil {
				return replay.Wrap(replay.CodeStreamDecode, stepLabel(i), err)
			}
		case step.Fail != "":
			return replay.NewError(replay.CodeStreamDecode, "%s: %s", stepLabel(i), step.Fail)
		default:
			continue
		}

		if err := handle(ev); err != nil {
			return err
		}
	}
	return nil
}

func stepLabel(i int) string {
	return fmt.Sprintf("step %d", i)
}
