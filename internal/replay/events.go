package replay

// Kind enumerates the closed set of events the engine understands.
type Kind int

const (
	KindUnknown Kind = iota
	KindStart
	KindTickEnd
	KindMatchStarted
	KindRoundStarted
	KindRoundEnded
	KindWeaponFire
	KindPlayerDeath
	KindUtility
	KindBomb
)

// Event is one typed occurrence delivered by a Source.
type Event interface {
	Kind() Kind
}

// Start fires once before gameplay.
type Start struct{}

// TickEnd marks the end of one simulation frame.
type TickEnd struct{}

// MatchStarted is round_announce_match_start: live play begins after warmup.
type MatchStarted struct{}

// RoundStarted is round_start.
type RoundStarted struct{}

// RoundEnded is round_officially_ended.
type RoundEnded struct{}

// WeaponFire is weapon_fire.
type WeaponFire struct {
	Shooter int
	Weapon  string
}

// PlayerDeath is player_death.
type PlayerDeath struct {
	Victim        int
	Attacker      int
	Assister      int
	AssistedFlash bool
	Weapon        string
	Headshot      bool
	Penetrated    int
}

// UtilityEventName is the literal name of a grenade lifecycle event.
type UtilityEventName string

const (
	HEGrenadeDetonate    UtilityEventName = "hegrenade_detonate"
	FlashbangDetonate    UtilityEventName = "flashbang_detonate"
	SmokeGrenadeDetonate UtilityEventName = "smokegrenade_detonate"
	SmokeGrenadeExpired  UtilityEventName = "smokegrenade_expired"
	MolotovDetonate      UtilityEventName = "molotov_detonate"
	InfernoStartBurn     UtilityEventName = "inferno_startburn"
	InfernoExpire        UtilityEventName = "inferno_expire"
	InfernoExtinguish    UtilityEventName = "inferno_extinguish"
	DecoyStarted         UtilityEventName = "decoy_started"
	DecoyDetonate        UtilityEventName = "decoy_detonate"
)

var utilityEventNames = map[UtilityEventName]bool{
	HEGrenadeDetonate:    true,
	FlashbangDetonate:    true,
	SmokeGrenadeDetonate: true,
	SmokeGrenadeExpired:  true,
	MolotovDetonate:      true,
	InfernoStartBurn:     true,
	InfernoExpire:        true,
	InfernoExtinguish:    true,
	DecoyStarted:         true,
	DecoyDetonate:        true,
}

// UtilityEvent is a dedicated grenade lifecycle event.
type UtilityEvent struct {
	Name     UtilityEventName
	Actor    int
	Entity   int
	Position Vector
}

// BombEventKind is the literal name of a bomb event.
type BombEventKind string

const (
	BombPlanted  BombEventKind = "bomb_planted"
	BombDefused  BombEventKind = "bomb_defused"
	BombExploded BombEventKind = "bomb_exploded"
	BombDropped  BombEventKind = "bomb_dropped"
	BombPickup   BombEventKind = "bomb_pickup"
)

var bombEventKinds = map[BombEventKind]bool{
	BombPlanted:  true,
	BombDefused:  true,
	BombExploded: true,
	BombDropped:  true,
	BombPickup:   true,
}

// BombEvent is one of the five bomb events.
type BombEvent struct {
	Type  BombEventKind
	Actor int
}

// Unknown is any named event the engine has no handler for.
type Unknown struct {
	Name string
}

func (Start) Kind() Kind        { return KindStart }
func (TickEnd) Kind() Kind      { return KindTickEnd }
func (MatchStarted) Kind() Kind { return KindMatchStarted }
func (RoundStarted) Kind() Kind { return KindRoundStarted }
func (RoundEnded) Kind() Kind   { return KindRoundEnded }
func (WeaponFire) Kind() Kind   { return KindWeaponFire }
func (PlayerDeath) Kind() Kind  { return KindPlayerDeath }
func (UtilityEvent) Kind() Kind { return KindUtility }
func (BombEvent) Kind() Kind    { return KindBomb }
func (Unknown) Kind() Kind      { return KindUnknown }
