package script

import "replaytab/internal/replay"

// Directory is the entity directory of a script, as of the current step.
type Directory struct {
	tick    int
	round   int
	players []Player
}

func newDirectory(tick, round int, players []Player) *Directory {
	d := &Directory{tick: tick, round: round}
	d.setRoster(players)
	return d
}

func (d *Directory) apply(step Step) {
	if step.Tick != nil {
		d.tick = *step.Tick
	}
	if step.Round != nil {
		d.round = *step.Round
	}
	if step.ClearPlayers {
		d.setRoster(nil)
	}
	if step.Players != nil {
		d.setRoster(step.Players)
	}
}

func (d *Directory) setRoster(players []Player) {
	d.players = append(d.players[:0:0], players...)
}

func (d *Directory) Roster() []replay.Player {
	out := make([]replay.Player, 0, len(d.players))
	for _, p := range d.players {
		out = append(out, p.entry())
	}
	return out
}

func (d *Directory) PlayerByID(userID int) (replay.Player, bool) {
	p, ok := d.find(userID)
	if !ok {
		return replay.Player{}, false
	}
	return p.entry(), true
}

func (d *Directory) EquippedWeapon(userID int) (replay.Weapon, bool) {
	p, ok := d.find(userID)
	if !ok || p.Weapon == "" {
		return replay.Weapon{}, false
	}
	return replay.Weapon{Class: p.Weapon, OwnerPosition: p.Position}, true
}

func (d *Directory) CurrentRound() int { return d.round }

func (d *Directory) CurrentTick() int { return d.tick }

func (d *Directory) find(userID int) (Player, bool) {
	for _, p := range d.players {
		if p.UserID == userID {
			return p, true
		}
	}
	return Player{}, false
}

func (p Player) entry() replay.Player {
	return replay.Player{
		UserID:   p.UserID,
		SteamID:  p.SteamID,
		Name:     p.Name,
		Health:   p.Health,
		Position: p.Position,
		Pitch:    p.Pitch,
		Yaw:      p.Yaw,
		Speed:    p.Speed,
		Place:    p.Place,
	}
}
