package replaytest

import (
	"context"

	"replaytab/internal/replay"
)

// Directory is a hand-driven entity directory.
type Directory struct {
	Tick    int
	Round   int
	Players []replay.Player
	Weapons map[int]replay.Weapon
}

func (d *Directory) Roster() []replay.Player {
	out := make([]replay.Player, len(d.Players))
	copy(out, d.Players)
	return out
}

func (d *Directory) PlayerByID(userID int) (replay.Player, bool) {
	for _, p := range d.Players {
		if p.UserID == userID {
			return p, true
		}
	}
	return replay.Player{}, false
}

func (d *Directory) EquippedWeapon(userID int) (replay.Weapon, bool) {
	w, ok := d.Weapons[userID]
	return w, ok
}

func (d *Directory) CurrentRound() int { return d.Round }

func (d *Directory) CurrentTick() int { return d.Tick }

// Source replays a fixed list of events against a Directory. Step, when set,
// runs before each event is delivered and may mutate the directory.
type Source struct {
	Dir    *Directory
	Events []replay.Event
	Step   func(i int, dir *Directory)
	Err    error // returned after all events, as a decode failure would be
}

func (s *Source) Directory() replay.Directory { return s.Dir }

func (s *Source) Stream(ctx context.Context, handle func(replay.Event) error) error {
	for i, ev := range s.Events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Step != nil {
			s.Step(i, s.Dir)
		}
		if err := handle(ev); err != nil {
			return err
		}
	}
	return s.Err
}
