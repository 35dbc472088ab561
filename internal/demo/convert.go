package demo

import (
	"strings"
	"unicode"

	common "github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs/common"
	events "github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs/events"

	"replaytab/internal/replay"
)

// grenadeClasses are the engine class names of throwable utility.
var grenadeClasses = map[common.EquipmentType]string{
	common.EqHE:         "weapon_hegrenade",
	common.EqFlash:      "weapon_flashbang",
	common.EqSmoke:      "weapon_smokegrenade",
	common.EqMolotov:    "weapon_molotov",
	common.EqIncendiary: "weapon_incgrenade",
	common.EqDecoy:      "weapon_decoy",
}

// WeaponClass names a piece of equipment the way game events do. Grenades
// use their engine class; other weapons derive it from the display name.
func WeaponClass(eq *common.Equipment) string {
	if eq == nil {
		return ""
	}
	if class, ok := grenadeClasses[eq.Type]; ok {
		return class
	}
	return "weapon_" + strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, eq.Type.String())
}

// userID is 0 for the world and for disconnected players.
func userID(p *common.Player) int {
	if p == nil {
		return 0
	}
	return p.UserID
}

func weaponFire(e events.WeaponFire) replay.WeaponFire {
	return replay.WeaponFire{
		Shooter: userID(e.Shooter),
		Weapon:  WeaponClass(e.Weapon),
	}
}

func playerDeath(e events.Kill) replay.PlayerDeath {
	return replay.PlayerDeath{
		Victim:        userID(e.Victim),
		Attacker:      userID(e.Killer),
		Assister:      userID(e.Assister),
		AssistedFlash: e.AssistedFlash,
		Weapon:        WeaponClass(e.Weapon),
		Headshot:      e.IsHeadshot,
		Penetrated:    e.PenetratedObjects,
	}
}

func utility(name replay.UtilityEventName, e events.GrenadeEvent) replay.UtilityEvent {
	return replay.UtilityEvent{
		Name:   name,
		Actor:  userID(e.Thrower),
		Entity: e.GrenadeEntityID,
		Position: replay.Vector{
			X: e.Position.X,
			Y: e.Position.Y,
			Z: e.Position.Z,
		},
	}
}

func player(p *common.Player) replay.Player {
	pos := p.Position()
	return replay.Player{
		UserID:   p.UserID,
		SteamID:  p.SteamID64,
		Name:     p.Name,
		Health:   p.Health(),
		Position: replay.Vector{X: pos.X, Y: pos.Y, Z: pos.Z},
		Pitch:    float64(p.ViewDirectionY()),
		Yaw:      float64(p.ViewDirectionX()),
		Speed:    p.Velocity().Norm(),
		Place:    p.LastPlaceName(),
	}
}

// eventNames lists descriptor names in order, skipping unnamed entries.
func eventNames[D interface{ GetName() string }](descriptors []D) []string {
	names := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		if name := d.GetName(); name != "" {
			names = append(names, name)
		}
	}
	return names
}
