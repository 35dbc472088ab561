package replay

import "github.com/leighmacdonald/steamid/v4/steamid"

// Vector is a world-space position.
type Vector struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Table names one output table. The value doubles as the file stem.
type Table string

const (
	TableTick             Table = "tick"
	TablePlayerDeath      Table = "player_death"
	TableWeaponFire       Table = "weapon_fire"
	TableUtilityLifecycle Table = "utility_lifecycle"
	TableBombLifecycle    Table = "bomb_lifecycle"
)

// AllTables lists the output tables in a stable order.
var AllTables = []Table{
	TableTick,
	TablePlayerDeath,
	TableWeaponFire,
	TableUtilityLifecycle,
	TableBombLifecycle,
}

var tableColumns = map[Table][]string{
	TableTick: {
		"tick", "round", "user_id", "steam_id", "user_name", "health",
		"pitch", "yaw", "speed", "x", "y", "z", "place_name",
	},
	TablePlayerDeath: {
		"tick", "round", "user_id", "attacker", "assister", "assisted_flash",
		"weapon", "headshot", "penetrated",
	},
	TableWeaponFire: {
		"tick", "round", "user_id", "weapon",
	},
	TableUtilityLifecycle: {
		"tick", "round", "event", "user_id", "entity_id", "x", "y", "z",
	},
	TableBombLifecycle: {
		"tick", "round", "event", "user_id",
	},
}

// Columns returns the header of the table, in the order Record.Values uses.
func (t Table) Columns() []string {
	cols := tableColumns[t]
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// Record is one immutable output row.
type Record interface {
	Table() Table
	Values() []any
}

// PlayerSnapshot is a player's state at one tick.
type PlayerSnapshot struct {
	Tick     int
	Round    int
	UserID   int
	SteamID  steamid.SteamID
	Name     string
	Health   int
	Pitch    float64
	Yaw      float64
	Speed    float64
	Position Vector
	Place    string
}

func (PlayerSnapshot) Table() Table { return TableTick }

func (r PlayerSnapshot) Values() []any {
	return []any{
		r.Tick, r.Round, r.UserID, identity(r.SteamID), r.Name, r.Health,
		r.Pitch, r.Yaw, r.Speed, r.Position.X, r.Position.Y, r.Position.Z, r.Place,
	}
}

// identity renders an account id, leaving bots and unknown accounts blank.
func identity(sid steamid.SteamID) string {
	if !sid.Valid() {
		return ""
	}
	return sid.String()
}

// DeathRecord mirrors one player_death event.
type DeathRecord struct {
	Tick          int
	Round         int
	Victim        int
	Attacker      int
	Assister      int
	AssistedFlash bool
	Weapon        string
	Headshot      bool
	Penetrated    int
}

func (DeathRecord) Table() Table { return TablePlayerDeath }

func (r DeathRecord) Values() []any {
	return []any{
		r.Tick, r.Round, r.Victim, r.Attacker, r.Assister, r.AssistedFlash,
		r.Weapon, r.Headshot, r.Penetrated,
	}
}

// WeaponFireRecord mirrors one weapon_fire event.
type WeaponFireRecord struct {
	Tick    int
	Round   int
	Shooter int
	Weapon  string
}

func (WeaponFireRecord) Table() Table { return TableWeaponFire }

func (r WeaponFireRecord) Values() []any {
	return []any{r.Tick, r.Round, r.Shooter, r.Weapon}
}

// UtilityLifecycleRecord is one step in a grenade's life: thrown, detonated,
// burning, expired.
type UtilityLifecycleRecord struct {
	Tick     int
	Round    int
	Event    string
	Actor    int
	Entity   int
	Position Vector
}

func (UtilityLifecycleRecord) Table() Table { return TableUtilityLifecycle }

func (r UtilityLifecycleRecord) Values() []any {
	return []any{
		r.Tick, r.Round, r.Event, r.Actor, r.Entity,
		r.Position.X, r.Position.Y, r.Position.Z,
	}
}

// BombLifecycleRecord mirrors one bomb event.
type BombLifecycleRecord struct {
	Tick  int
	Round int
	Event BombEventKind
	Actor int
}

func (BombLifecycleRecord) Table() Table { return TableBombLifecycle }

func (r BombLifecycleRecord) Values() []any {
	return []any{r.Tick, r.Round, string(r.Event), r.Actor}
}
