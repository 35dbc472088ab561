package demo

import (
	dem "github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs"

	"replaytab/internal/replay"
)

// Directory answers from the parser's live game state.
type Directory struct {
	state func() dem.GameState
}

func (d *Directory) Roster() []replay.Player {
	playing := d.state().Participants().Playing()
	out := make([]replay.Player, 0, len(playing))
	for _, p := range playing {
		if p != nil {
			out = append(out, player(p))
		}
	}
	return out
}

func (d *Directory) PlayerByID(userID int) (replay.Player, bool) {
	p := d.state().Participants().ByUserID()[userID]
	if p == nil {
		return replay.Player{}, false
	}
	return player(p), true
}

func (d *Directory) EquippedWeapon(userID int) (replay.Weapon, bool) {
	p := d.state().Participants().ByUserID()[userID]
	if p == nil {
		return replay.Weapon{}, false
	}
	w := p.ActiveWeapon()
	if w == nil {
		return replay.Weapon{}, false
	}
	pos := p.Position()
	return replay.Weapon{
		Class:         WeaponClass(w),
		OwnerPosition: replay.Vector{X: pos.X, Y: pos.Y, Z: pos.Z},
	}, true
}

func (d *Directory) CurrentRound() int { return d.state().TotalRoundsPlayed() }

func (d *Directory) CurrentTick() int { return d.state().IngameTick() }
