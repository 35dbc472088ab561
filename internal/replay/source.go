package replay

import "context"

// Player is a roster entry as the entity directory sees it right now.
type Player struct {
	UserID   int
	SteamID  uint64
	Name     string
	Health   int
	Position Vector
	Pitch    float64
	Yaw      float64
	Speed    float64
	Place    string
}

// Weapon is a player's equipped item.
type Weapon struct {
	Class         string // e.g. "weapon_hegrenade"
	OwnerPosition Vector
}

// Directory is the live entity directory of the replay. Answers are only
// valid while the event being handled is being delivered.
type Directory interface {
	Roster() []Player
	PlayerByID(userID int) (Player, bool)
	EquippedWeapon(userID int) (Weapon, bool)
	CurrentRound() int
	CurrentTick() int
}

// Source delivers an ordered, single-pass stream of events.
//
// Stream calls handle for each event in arrival order and waits for it to
// return before decoding further. A non-nil error from handle stops the
// stream and is returned unchanged. A nil return means natural end of stream.
type Source interface {
	Directory() Directory
	Stream(ctx context.Context, handle func(Event) error) error
}
