package replay_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"replaytab/internal/replay"
	"replaytab/internal/replay/mocks"
	"replaytab/internal/replay/replaytest"
)

const (
	alice = 2
	bob   = 3
	carol = 4
)

func newDirectory() *replaytest.Directory {
	return &replaytest.Directory{
		Tick:  1200,
		Round: 3,
		Players: []replay.Player{
			{UserID: alice, SteamID: 76561198000000001, Name: "alice", Health: 100, Position: replay.Vector{X: 10, Y: 20, Z: 30}, Pitch: 1.5, Yaw: 90, Speed: 250, Place: "BombsiteA"},
			{UserID: bob, SteamID: 76561198000000002, Name: "bob", Health: 0, Position: replay.Vector{X: -5, Y: 7, Z: 0}, Place: "Middle"},
			{UserID: carol, Name: "BOT Carol", Health: 1, Position: replay.Vector{X: 1, Y: 1, Z: 1}},
		},
		Weapons: map[int]replay.Weapon{},
	}
}

func liveEngine(t *testing.T, dir *replaytest.Directory) (*replay.Engine, *replaytest.Journal) {
	t.Helper()
	journal, tables := replaytest.NewJournal()
	eng := replay.NewEngine(dir, tables)
	require.NoError(t, eng.Handle(replay.MatchStarted{}))
	require.True(t, eng.Live())
	return eng, journal
}

func TestEngineGatesOnMatchStart(t *testing.T) {
	dir := newDirectory()
	dir.Weapons[alice] = replay.Weapon{Class: "weapon_hegrenade"}
	journal, tables := replaytest.NewJournal()
	eng := replay.NewEngine(dir, tables)

	warmup := []replay.Event{
		replay.Start{},
		replay.TickEnd{},
		replay.RoundStarted{},
		replay.WeaponFire{Shooter: alice, Weapon: "weapon_hegrenade"},
		replay.PlayerDeath{Victim: bob, Attacker: alice, Weapon: "weapon_ak47"},
		replay.UtilityEvent{Name: replay.HEGrenadeDetonate, Actor: alice},
		replay.BombEvent{Type: replay.BombPlanted, Actor: alice},
		replay.RoundEnded{},
		replay.Unknown{Name: "player_jump"},
	}
	for _, ev := range warmup {
		require.NoError(t, eng.Handle(ev))
	}
	assert.False(t, eng.Live())
	assert.Empty(t, journal.Order, "no record may precede the match start")

	require.NoError(t, eng.Handle(replay.MatchStarted{}))
	require.NoError(t, eng.Handle(replay.MatchStarted{}))
	assert.Empty(t, journal.Order)

	require.NoError(t, eng.Handle(replay.TickEnd{}))
	assert.Equal(t, 2, journal.Count(replay.TableTick))
}

func TestEngineTickSnapshots(t *testing.T) {
	dir := newDirectory()
	eng, journal := liveEngine(t, dir)

	require.NoError(t, eng.Handle(replay.TickEnd{}))

	snaps := journal.Records(replay.TableTick)
	require.Len(t, snaps, 2, "one snapshot per player with health > 0")

	byID := map[int]replay.PlayerSnapshot{}
	for _, rec := range snaps {
		s := rec.(replay.PlayerSnapshot)
		byID[s.UserID] = s
	}
	require.Contains(t, byID, alice)
	require.Contains(t, byID, carol)
	assert.NotContains(t, byID, bob)

	a := byID[alice]
	assert.Equal(t, 1200, a.Tick)
	assert.Equal(t, 3, a.Round)
	assert.Equal(t, "alice", a.Name)
	assert.Equal(t, replay.Vector{X: 10, Y: 20, Z: 30}, a.Position)
	assert.Equal(t, "BombsiteA", a.Place)

	values := a.Values()
	assert.Equal(t, "76561198000000001", values[3])
	assert.Equal(t, "", byID[carol].Values()[3], "bots have no account id")
}

func TestEngineDeathEnrichment(t *testing.T) {
	t.Run("VictimResolves", func(t *testing.T) {
		eng, journal := liveEngine(t, newDirectory())

		require.NoError(t, eng.Handle(replay.PlayerDeath{
			Victim: bob, Attacker: alice, Assister: carol, AssistedFlash: true,
			Weapon: "weapon_ak47", Headshot: true, Penetrated: 1,
		}))

		require.Equal(t, 1, journal.Count(replay.TablePlayerDeath))
		death := journal.Records(replay.TablePlayerDeath)[0].(replay.DeathRecord)
		assert.Equal(t, replay.DeathRecord{
			Tick: 1200, Round: 3, Victim: bob, Attacker: alice, Assister: carol,
			AssistedFlash: true, Weapon: "weapon_ak47", Headshot: true, Penetrated: 1,
		}, death)

		require.Equal(t, 1, journal.Count(replay.TableTick))
		snap := journal.Records(replay.TableTick)[0].(replay.PlayerSnapshot)
		assert.Equal(t, bob, snap.UserID, "death snapshot follows the victim, not the killer")
		assert.Equal(t, 0, snap.Health)
		assert.Equal(t, death.Tick, snap.Tick)
	})

	t.Run("VictimMissing", func(t *testing.T) {
		eng, journal := liveEngine(t, newDirectory())

		require.NoError(t, eng.Handle(replay.PlayerDeath{Victim: 99, Attacker: alice, Weapon: "weapon_awp"}))

		assert.Equal(t, 1, journal.Count(replay.TablePlayerDeath))
		assert.Equal(t, 0, journal.Count(replay.TableTick))
		assert.Equal(t, 1, eng.Stats().LookupMisses)
	})
}

func TestEngineUtilityCorrelation(t *testing.T) {
	tests := []struct {
		name      string
		weapon    *replay.Weapon
		wantThrow string
	}{
		{name: "HEGrenade", weapon: &replay.Weapon{Class: "weapon_hegrenade", OwnerPosition: replay.Vector{X: 10, Y: 20, Z: 30}}, wantThrow: "hegrenade_thrown"},
		{name: "Flashbang", weapon: &replay.Weapon{Class: "weapon_flashbang"}, wantThrow: "flashbang_thrown"},
		{name: "Smoke", weapon: &replay.Weapon{Class: "weapon_smokegrenade"}, wantThrow: "smokegrenade_thrown"},
		{name: "Molotov", weapon: &replay.Weapon{Class: "weapon_molotov"}, wantThrow: "molotov_thrown"},
		{name: "Incendiary", weapon: &replay.Weapon{Class: "weapon_incgrenade"}, wantThrow: "incgrenade_thrown"},
		{name: "Decoy", weapon: &replay.Weapon{Class: "weapon_decoy"}, wantThrow: "decoy_thrown"},
		{name: "Rifle", weapon: &replay.Weapon{Class: "weapon_ak47"}},
		{name: "NoWeapon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newDirectory()
			if tt.weapon != nil {
				dir.Weapons[alice] = *tt.weapon
			}
			eng, journal := liveEngine(t, dir)

			require.NoError(t, eng.Handle(replay.WeaponFire{Shooter: alice, Weapon: "weapon_fired"}))

			require.Equal(t, 1, journal.Count(replay.TableWeaponFire))
			fire := journal.Records(replay.TableWeaponFire)[0].(replay.WeaponFireRecord)
			assert.Equal(t, replay.WeaponFireRecord{Tick: 1200, Round: 3, Shooter: alice, Weapon: "weapon_fired"}, fire)

			if tt.wantThrow == "" {
				assert.Equal(t, 0, journal.Count(replay.TableUtilityLifecycle))
				assert.Len(t, journal.Order, 1)
				return
			}
			require.Len(t, journal.Order, 2)
			throw := journal.Records(replay.TableUtilityLifecycle)[0].(replay.UtilityLifecycleRecord)
			assert.Equal(t, tt.wantThrow, throw.Event)
			assert.Equal(t, alice, throw.Actor)
			assert.Equal(t, tt.weapon.OwnerPosition, throw.Position)
			assert.Equal(t, 0, throw.Entity)
		})
	}
}

func TestEngineUtilitySkipsAreCounted(t *testing.T) {
	dir := newDirectory()
	dir.Weapons[alice] = replay.Weapon{Class: "weapon_knife"}
	eng, _ := liveEngine(t, dir)

	require.NoError(t, eng.Handle(replay.WeaponFire{Shooter: alice, Weapon: "weapon_knife"}))
	require.NoError(t, eng.Handle(replay.WeaponFire{Shooter: carol, Weapon: "weapon_glock"}))

	stats := eng.Stats()
	assert.Equal(t, 1, stats.UnknownUtility)
	assert.Equal(t, 1, stats.LookupMisses)
	assert.Equal(t, 2, stats.Records[replay.TableWeaponFire])
}

func TestEngineLifecycleEvents(t *testing.T) {
	eng, journal := liveEngine(t, newDirectory())

	require.NoError(t, eng.Handle(replay.UtilityEvent{
		Name: replay.InfernoStartBurn, Actor: alice, Entity: 311,
		Position: replay.Vector{X: 1, Y: 2, Z: 3},
	}))
	require.NoError(t, eng.Handle(replay.UtilityEvent{Name: replay.SmokeGrenadeExpired, Actor: bob, Entity: 312}))
	require.NoError(t, eng.Handle(replay.BombEvent{Type: replay.BombDropped, Actor: carol}))

	utility := journal.Records(replay.TableUtilityLifecycle)
	require.Len(t, utility, 2)
	assert.Equal(t, replay.UtilityLifecycleRecord{
		Tick: 1200, Round: 3, Event: "inferno_startburn", Actor: alice, Entity: 311,
		Position: replay.Vector{X: 1, Y: 2, Z: 3},
	}, utility[0])
	assert.Equal(t, "smokegrenade_expired", utility[1].(replay.UtilityLifecycleRecord).Event)

	bomb := journal.Records(replay.TableBombLifecycle)
	require.Len(t, bomb, 1)
	assert.Equal(t, []any{1200, 3, "bomb_dropped", carol}, bomb[0].Values())
}

func TestEngineIgnoresUnknownEvents(t *testing.T) {
	eng, journal := liveEngine(t, newDirectory())

	require.NoError(t, eng.Handle(replay.Unknown{Name: "player_footstep"}))
	require.NoError(t, eng.Handle(replay.RoundStarted{}))
	require.NoError(t, eng.Handle(replay.RoundEnded{}))

	assert.Empty(t, journal.Order)
}

func TestEngineSinkFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	failing := mocks.NewMockSink(ctrl)
	diskFull := errors.New("disk full")
	failing.EXPECT().Append(gomock.Any()).Return(diskFull)

	tables, err := replay.NewTables(func(tb replay.Table) (replay.Sink, error) {
		if tb == replay.TableWeaponFire {
			return failing, nil
		}
		return &replaytest.Recorder{}, nil
	})
	require.NoError(t, err)

	dir := newDirectory()
	dir.Weapons[alice] = replay.Weapon{Class: "weapon_hegrenade"}
	eng := replay.NewEngine(dir, tables)
	require.NoError(t, eng.Handle(replay.MatchStarted{}))

	err = eng.Handle(replay.WeaponFire{Shooter: alice, Weapon: "weapon_hegrenade"})
	require.Error(t, err)
	assert.ErrorIs(t, err, replay.ErrSinkWrite)
	assert.ErrorIs(t, err, diskFull)

	utility := tables.UtilityLifecycle.(*replaytest.Recorder)
	assert.Empty(t, utility.Records, "nothing is synthesized after a failed append")
}
