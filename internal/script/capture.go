package script

import (
	"context"
	"errors"
	"slices"

	"replaytab/internal/replay"
)

var errWindowClosed = errors.New("capture window closed")

// Capture records the events src delivers between ticks from and to
// (inclusive, to < 0 for the end of the stream) as a Script. Start and
// MatchStarted are always kept so the captured script still leaves warmup.
// A step carries the tick, round and roster only when they changed since the
// previous step; a roster that empties is recorded as clear_players.
func Capture(ctx context.Context, src replay.Source, from, to int) (*Script, error) {
	s := &Script{}
	dir := src.Directory()
	tick, round := s.Tick, s.Round
	var roster []Player

	err := src.Stream(ctx, func(ev replay.Event) error {
		now := dir.CurrentTick()
		if to >= 0 && now > to {
			return errWindowClosed
		}
		kind := ev.Kind()
		if now < from && kind != replay.KindStart && kind != replay.KindMatchStarted {
			return nil
		}

		var step Step
		if now != tick {
			tick = now
			step.Tick = &now
		}
		if r := dir.CurrentRound(); r != round {
			round = r
			step.Round = &r
		}
		if current := captureRoster(dir); !slices.Equal(current, roster) {
			roster = current
			if len(current) == 0 {
				step.ClearPlayers = true
			} else {
				step.Players = current
			}
		}

		switch e := ev.(type) {
		case replay.Start:
			step.Start = true
		case replay.TickEnd:
			step.TickEnd = true
		case replay.Unknown:
			step.Event = e.Name
		default:
			name, fields, _ := replay.Describe(ev)
			step.Event = name
			if len(fields) > 0 {
				step.Fields = fields
			}
		}
		s.Steps = append(s.Steps, step)
		return nil
	})
	if err != nil && !errors.Is(err, errWindowClosed) {
		return s, err
	}
	return s, nil
}

func captureRoster(dir replay.Directory) []Player {
	entries := dir.Roster()
	out := make([]Player, 0, len(entries))
	for _, e := range entries {
		p := Player{
			UserID:   e.UserID,
			SteamID:  e.SteamID,
			Name:     e.Name,
			Health:   e.Health,
			Position: e.Position,
			Pitch:    e.Pitch,
			Yaw:      e.Yaw,
			Speed:    e.Speed,
			Place:    e.Place,
		}
		if w, ok := dir.EquippedWeapon(e.UserID); ok {
			p.Weapon = w.Class
		}
		out = append(out, p)
	}
	return out
}
