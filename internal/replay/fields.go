package replay

import (
	"fmt"
	"math"
)

// Fields is the free-form payload of a named game event.
type Fields map[string]any

// Named game events outside the utility and bomb families.
const (
	EventMatchStart  = "round_announce_match_start"
	EventRoundStart  = "round_start"
	EventRoundEnd    = "round_officially_ended"
	EventWeaponFire  = "weapon_fire"
	EventPlayerDeath = "player_death"
)

// ParseGameEvent validates a named game event and returns its typed variant.
// Names without a handler come back as Unknown. Missing or mistyped required
// fields fail with a CodeStreamDecode error.
func ParseGameEvent(name string, fields Fields) (Event, error) {
	r := &fieldReader{event: name, fields: fields}

	var ev Event
	switch {
	case name == EventMatchStart:
		ev = MatchStarted{}
	case name == EventRoundStart:
		ev = RoundStarted{}
	case name == EventRoundEnd:
		ev = RoundEnded{}
	case name == EventWeaponFire:
		ev = WeaponFire{
			Shooter: r.int("userid", true),
			Weapon:  r.string("weapon"),
		}
	case name == EventPlayerDeath:
		ev = PlayerDeath{
			Victim:        r.int("userid", true),
			Attacker:      r.int("attacker", true),
			Assister:      r.int("assister", false),
			AssistedFlash: r.bool("assistedflash"),
			Weapon:        r.string("weapon"),
			Headshot:      r.bool("headshot"),
			Penetrated:    r.int("penetrated", false),
		}
	case utilityEventNames[UtilityEventName(name)]:
		ev = UtilityEvent{
			Name:   UtilityEventName(name),
			Actor:  r.int("userid", true),
			Entity: r.int("entityid", false),
			Position: Vector{
				X: r.float("x"),
				Y: r.float("y"),
				Z: r.float("z"),
			},
		}
	case bombEventKinds[BombEventKind(name)]:
		ev = BombEvent{
			Type:  BombEventKind(name),
			Actor: r.int("userid", true),
		}
	default:
		return Unknown{Name: name}, nil
	}

	if r.err != nil {
		return nil, r.err
	}
	return ev, nil
}

// Describe is the inverse of ParseGameEvent. It reports false for events that
// are not named game events (Start, TickEnd, Unknown).
func Describe(ev Event) (string, Fields, bool) {
	switch e := ev.(type) {
	case MatchStarted:
		return EventMatchStart, Fields{}, true
	case RoundStarted:
		return EventRoundStart, Fields{}, true
	case RoundEnded:
		return EventRoundEnd, Fields{}, true
	case WeaponFire:
		return EventWeaponFire, Fields{"userid": e.Shooter, "weapon": e.Weapon}, true
	case PlayerDeath:
		return EventPlayerDeath, Fields{
			"userid":        e.Victim,
			"attacker":      e.Attacker,
			"assister":      e.Assister,
			"assistedflash": e.AssistedFlash,
			"weapon":        e.Weapon,
			"headshot":      e.Headshot,
			"penetrated":    e.Penetrated,
		}, true
	case UtilityEvent:
		return string(e.Name), Fields{
			"userid":   e.Actor,
			"entityid": e.Entity,
			"x":        e.Position.X,
			"y":        e.Position.Y,
			"z":        e.Position.Z,
		}, true
	case BombEvent:
		return string(e.Type), Fields{"userid": e.Actor}, true
	}
	return "", nil, false
}

// fieldReader keeps the first validation failure so callers can read every
// field and check once.
type fieldReader struct {
	event  string
	fields Fields
	err    error
}

func (r *fieldReader) fail(key, format string, args ...any) {
	if r.err == nil {
		r.err = NewError(CodeStreamDecode, "%s: field %q: %s", r.event, key, fmt.Sprintf(format, args...))
	}
}

func (r *fieldReader) lookup(key string, required bool) (any, bool) {
	v, ok := r.fields[key]
	if !ok || v == nil {
		if required {
			r.fail(key, "missing")
		}
		return nil, false
	}
	return v, true
}

func (r *fieldReader) int(key string, required bool) int {
	v, ok := r.lookup(key, required)
	if !ok {
		return 0
	}
	n, ok := asInt(v)
	if !ok {
		r.fail(key, "want integer, got %T", v)
	}
	return n
}

func (r *fieldReader) float(key string) float64 {
	v, ok := r.lookup(key, true)
	if !ok {
		return 0
	}
	f, ok := asFloat(v)
	if !ok {
		r.fail(key, "want number, got %T", v)
	}
	return f
}

func (r *fieldReader) string(key string) string {
	v, ok := r.lookup(key, true)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(key, "want string, got %T", v)
	}
	return s
}

// bool fields are always optional; game events send them as bool or 0/1.
func (r *fieldReader) bool(key string) bool {
	v, ok := r.lookup(key, false)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	default:
		n, ok := asInt(v)
		if !ok || (n != 0 && n != 1) {
			r.fail(key, "want bool, got %v", v)
			return false
		}
		return n == 1
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	// float64(math.MaxInt) rounds up to 2^63, which is already out of range.
	if f != math.Trunc(f) || f < math.MinInt || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	return 0, false
}
