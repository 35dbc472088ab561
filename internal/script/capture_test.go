package script

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replaytab/internal/replay"
	"replaytab/internal/replay/replaytest"
)

func captureSource() *replaytest.Source {
	a := replay.Player{UserID: 1, SteamID: 76561198000000001, Name: "A", Health: 100, Position: replay.Vector{X: 1, Y: 2, Z: 3}}
	ticks := []int{1, 5, 10, 12, 12, 20}
	return &replaytest.Source{
		Dir: &replaytest.Directory{
			Players: []replay.Player{a},
			Weapons: map[int]replay.Weapon{1: {Class: "weapon_flashbang", OwnerPosition: a.Position}},
		},
		Events: []replay.Event{
			replay.Start{},
			replay.TickEnd{},
			replay.MatchStarted{},
			replay.WeaponFire{Shooter: 1, Weapon: "weapon_flashbang"},
			replay.Unknown{Name: "player_footstep"},
			replay.TickEnd{},
		},
		Step: func(i int, dir *replaytest.Directory) {
			dir.Tick = ticks[i]
			if i >= 2 {
				dir.Round = 1
			}
		},
	}
}

func TestCaptureWindow(t *testing.T) {
	s, err := Capture(context.Background(), captureSource(), 11, 15)
	require.NoError(t, err)
	require.Len(t, s.Steps, 4)

	assert.True(t, s.Steps[0].Start, "start is kept before the window")
	assert.Equal(t, 1, *s.Steps[0].Tick)
	require.Len(t, s.Steps[0].Players, 1)
	assert.Equal(t, "weapon_flashbang", s.Steps[0].Players[0].Weapon)

	assert.Equal(t, replay.EventMatchStart, s.Steps[1].Event, "match start is kept before the window")
	assert.Equal(t, 1, *s.Steps[1].Round)
	assert.Nil(t, s.Steps[1].Players, "unchanged roster is not repeated")

	assert.Equal(t, replay.EventWeaponFire, s.Steps[2].Event)
	assert.Equal(t, 12, *s.Steps[2].Tick)
	assert.Nil(t, s.Steps[2].Round)

	assert.Equal(t, "player_footstep", s.Steps[3].Event)
	assert.Nil(t, s.Steps[3].Tick)
}

func TestCaptureReplaysTheSameRecords(t *testing.T) {
	live, liveTables := replaytest.NewJournal()
	_, err := replay.Run(context.Background(), captureSource(), liveTables)
	require.NoError(t, err)

	s, err := Capture(context.Background(), captureSource(), 0, -1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, s))
	decoded, err := Parse(buf.Bytes())
	require.NoError(t, err)

	replayed, replayedTables := replaytest.NewJournal()
	_, err = replay.Run(context.Background(), NewSource(decoded), replayedTables)
	require.NoError(t, err)

	assert.Equal(t, live.Order, replayed.Order)
	for _, table := range replay.AllTables {
		assert.Equal(t, live.Records(table), replayed.Records(table), string(table))
	}
}

func emptyingRosterSource() *replaytest.Source {
	return &replaytest.Source{
		Dir: &replaytest.Directory{
			Players: []replay.Player{{UserID: 1, Name: "A", Health: 100}},
		},
		Events: []replay.Event{
			replay.MatchStarted{},
			replay.TickEnd{},
			replay.TickEnd{},
			replay.TickEnd{},
		},
		Step: func(i int, dir *replaytest.Directory) {
			dir.Tick = i
			if i == 3 {
				dir.Players = nil
			}
		},
	}
}

func TestCaptureRecordsEmptiedRoster(t *testing.T) {
	live, liveTables := replaytest.NewJournal()
	_, err := replay.Run(context.Background(), emptyingRosterSource(), liveTables)
	require.NoError(t, err)
	require.Equal(t, 2, live.Count(replay.TableTick))

	s, err := Capture(context.Background(), emptyingRosterSource(), 0, -1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, s))
	assert.Contains(t, buf.String(), "clear_players: true")

	decoded, err := Parse(buf.Bytes())
	require.NoError(t, err)
	replayed, replayedTables := replaytest.NewJournal()
	_, err = replay.Run(context.Background(), NewSource(decoded), replayedTables)
	require.NoError(t, err)

	assert.Equal(t, live.Records(replay.TableTick), replayed.Records(replay.TableTick))
}

func TestCaptureKeepsStreamErrors(t *testing.T) {
	src := captureSource()
	src.Err = replay.NewError(replay.CodeStreamDecode, "truncated")

	s, err := Capture(context.Background(), src, 0, -1)
	assert.ErrorIs(t, err, replay.ErrStreamDecode)
	assert.Len(t, s.Steps, 6, "steps captured before the failure are returned")

	src = captureSource()
	src.Err = errors.New("unused")
	_, err = Capture(context.Background(), src, 0, 10)
	assert.NoError(t, err, "the stream is stopped before it can fail")
}
