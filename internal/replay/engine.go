package replay

import (
	"github.com/leighmacdonald/steamid/v4/steamid"

	"replaytab/internal/log"
)

// Stats counts what one run produced. It is for logging only.
type Stats struct {
	Records        map[Table]int
	LookupMisses   int
	UnknownUtility int
}

// Engine correlates replay events into table records. It is driven by a
// single goroutine: every event is handled to completion before the next.
type Engine struct {
	dir    Directory
	tables *Tables
	phase  Phase
	stats  Stats
}

// NewEngine creates an engine reading live state from dir and appending to
// tables.
func NewEngine(dir Directory, tables *Tables) *Engine {
	return &Engine{
		dir:    dir,
		tables: tables,
		stats:  Stats{Records: make(map[Table]int, len(AllTables))},
	}
}

// Live reports whether the match has officially started.
func (e *Engine) Live() bool {
	return e.phase.Live()
}

// Stats returns a copy of the run counters.
func (e *Engine) Stats() Stats {
	out := e.stats
	out.Records = make(map[Table]int, len(e.stats.Records))
	for t, n := range e.stats.Records {
		out.Records[t] = n
	}
	return out
}

// Handle processes one event. The only errors returned are sink failures.
func (e *Engine) Handle(ev Event) error {
	switch ev.(type) {
	case Start:
		log.Info("Parsing started")
		return nil
	case MatchStarted:
		if e.phase.Begin() {
			log.Info("Match has started", "tick", e.dir.CurrentTick())
		}
		return nil
	case RoundStarted:
		if round := e.dir.CurrentRound(); round > 0 {
			log.Info("Round started", "round", round, "tick", e.dir.CurrentTick())
		}
		return nil
	case RoundEnded:
		log.Info("Round ended", "round", e.dir.CurrentRound(), "tick", e.dir.CurrentTick())
		return nil
	}

	if !e.phase.Live() {
		return nil
	}

	switch ev := ev.(type) {
	case TickEnd:
		return e.onTickEnd()
	case WeaponFire:
		return e.onWeaponFire(ev)
	case PlayerDeath:
		return e.onPlayerDeath(ev)
	case UtilityEvent:
		return e.onUtility(ev)
	case BombEvent:
		return e.onBomb(ev)
	}
	return nil
}

// onTickEnd snapshots every living player. Dead players are left to
// onPlayerDeath, which records their final state.
func (e *Engine) onTickEnd() error {
	for _, p := range e.dir.Roster() {
		if p.Health <= 0 {
			continue
		}
		if err := e.emit(e.snapshot(p)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) onWeaponFire(ev WeaponFire) error {
	if err := e.emit(WeaponFireRecord{
		Tick:    e.dir.CurrentTick(),
		Round:   e.dir.CurrentRound(),
		Shooter: ev.Shooter,
		Weapon:  ev.Weapon,
	}); err != nil {
		return err
	}

	// The replay has no "grenade left the hand" event; a fire event with a
	// grenade equipped stands in for it.
	weapon, ok := e.dir.EquippedWeapon(ev.Shooter)
	if !ok {
		e.skip(NewError(CodeEntityLookupMiss, "weapon of player %d", ev.Shooter))
		return nil
	}
	category, ok := UtilityCategory(weapon.Class)
	if !ok {
		e.skip(NewError(CodeUnknownUtilityClass, "class %q", weapon.Class))
		return nil
	}
	return e.emit(UtilityLifecycleRecord{
		Tick:     e.dir.CurrentTick(),
		Round:    e.dir.CurrentRound(),
		Event:    ThrownEvent(category),
		Actor:    ev.Shooter,
		Position: weapon.OwnerPosition,
	})
}

func (e *Engine) onPlayerDeath(ev PlayerDeath) error {
	if err := e.emit(DeathRecord{
		Tick:          e.dir.CurrentTick(),
		Round:         e.dir.CurrentRound(),
		Victim:        ev.Victim,
		Attacker:      ev.Attacker,
		Assister:      ev.Assister,
		AssistedFlash: ev.AssistedFlash,
		Weapon:        ev.Weapon,
		Headshot:      ev.Headshot,
		Penetrated:    ev.Penetrated,
	}); err != nil {
		return err
	}

	victim, ok := e.dir.PlayerByID(ev.Victim)
	if !ok {
		e.skip(NewError(CodeEntityLookupMiss, "victim %d", ev.Victim))
		return nil
	}
	if log.DebugEnabled() {
		killer, _ := e.dir.PlayerByID(ev.Attacker)
		log.Debug("Kill", "killer", killer.Name, "victim", victim.Name, "weapon", ev.Weapon)
	}
	// Health is already zero here, so the tick filter would never record it.
	return e.emit(e.snapshot(victim))
}

func (e *Engine) onUtility(ev UtilityEvent) error {
	return e.emit(UtilityLifecycleRecord{
		Tick:     e.dir.CurrentTick(),
		Round:    e.dir.CurrentRound(),
		Event:    string(ev.Name),
		Actor:    ev.Actor,
		Entity:   ev.Entity,
		Position: ev.Position,
	})
}

func (e *Engine) onBomb(ev BombEvent) error {
	return e.emit(BombLifecycleRecord{
		Tick:  e.dir.CurrentTick(),
		Round: e.dir.CurrentRound(),
		Event: ev.Type,
		Actor: ev.Actor,
	})
}

func (e *Engine) snapshot(p Player) PlayerSnapshot {
	return PlayerSnapshot{
		Tick:     e.dir.CurrentTick(),
		Round:    e.dir.CurrentRound(),
		UserID:   p.UserID,
		SteamID:  steamid.New(p.SteamID),
		Name:     p.Name,
		Health:   p.Health,
		Pitch:    p.Pitch,
		Yaw:      p.Yaw,
		Speed:    p.Speed,
		Position: p.Position,
		Place:    p.Place,
	}
}

func (e *Engine) emit(rec Record) error {
	if err := e.tables.Append(rec); err != nil {
		return err
	}
	e.stats.Records[rec.Table()]++
	if log.DebugEnabled() {
		log.Debug("Record", "table", string(rec.Table()), "values", rec.Values())
	}
	return nil
}

// skip counts a non-fatal enrichment failure.
func (e *Engine) skip(err *Error) {
	switch err.Code {
	case CodeEntityLookupMiss:
		e.stats.LookupMisses++
	case CodeUnknownUtilityClass:
		e.stats.UnknownUtility++
	}
	log.Debug("Enrichment skipped", "reason", err.Code.String(), "detail", err.Message)
}
