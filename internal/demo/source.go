// Package demo adapts CS2 demo files to replay.Source.
package demo

import (
	"context"
	"errors"
	"fmt"
	"os"

	dem "github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs"
	events "github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs/events"
	msgs2 "github.com/markus-wa/demoinfocs-golang/v5/pkg/demoinfocs/msg"

	"replaytab/internal/log"
	"replaytab/internal/replay"
)

// Source streams the events of one demo file. It can be streamed once.
type Source struct {
	path   string
	file   *os.File
	parser dem.Parser
	dir    *Directory
	events []string // Game events declared by the demo, in list order
}

// Open opens a demo file. Close releases it.
func Open(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open demo: %w", err)
	}
	parser := dem.NewParser(file)
	return &Source{
		path:   path,
		file:   file,
		parser: parser,
		dir:    &Directory{state: parser.GameState},
	}, nil
}

func (s *Source) Directory() replay.Directory { return s.dir }

// EventNames returns the game events the demo declared so far. The list
// arrives with the signon data, before the first frame.
func (s *Source) EventNames() []string {
	return append([]string(nil), s.events...)
}

// Stream parses the demo to its end. Handlers run on the parser goroutine
// between frames, so directory answers match the event being delivered.
func (s *Source) Stream(ctx context.Context, handle func(replay.Event) error) error {
	var stopErr error
	dispatch := func(ev replay.Event) {
		if stopErr != nil {
			return
		}
		if err := ctx.Err(); err != nil {
			stopErr = err
		} else if err := handle(ev); err != nil {
			stopErr = err
		}
		if stopErr != nil {
			s.parser.Cancel()
		}
	}

	s.register(dispatch)
	log.Debug("Parsing demo", "path", s.path)
	dispatch(replay.Start{})

	err := s.parser.ParseToEnd()
	if stopErr != nil {
		return stopErr
	}
	if err != nil && !errors.Is(err, dem.ErrCancelled) {
		return replay.Wrap(replay.CodeStreamDecode, "parse "+s.path, err)
	}
	return nil
}

// Close releases the parser and the file.
func (s *Source) Close() error {
	s.parser.Close()
	return s.file.Close()
}

func (s *Source) register(dispatch func(replay.Event)) {
	p := s.parser

	p.RegisterNetMessageHandler(func(m *msgs2.CMsgSource1LegacyGameEventList) {
		s.events = eventNames(m.GetDescriptors())
		log.Debug("Game event list", "events", len(s.events))
	})

	p.RegisterEventHandler(func(events.FrameDone) { dispatch(replay.TickEnd{}) })
	p.RegisterEventHandler(func(events.MatchStart) { dispatch(replay.MatchStarted{}) })
	p.RegisterEventHandler(func(events.RoundStart) { dispatch(replay.RoundStarted{}) })
	p.RegisterEventHandler(func(events.RoundEndOfficial) { dispatch(replay.RoundEnded{}) })

	p.RegisterEventHandler(func(e events.WeaponFire) { dispatch(weaponFire(e)) })
	p.RegisterEventHandler(func(e events.Kill) { dispatch(playerDeath(e)) })

	// Grenades
	p.RegisterEventHandler(func(e events.HeExplode) {
		dispatch(utility(replay.HEGrenadeDetonate, e.GrenadeEvent))
	})
	p.RegisterEventHandler(func(e events.FlashExplode) {
		dispatch(utility(replay.FlashbangDetonate, e.GrenadeEvent))
	})
	p.RegisterEventHandler(func(e events.SmokeStart) {
		dispatch(utility(replay.SmokeGrenadeDetonate, e.GrenadeEvent))
	})
	p.RegisterEventHandler(func(e events.SmokeExpired) {
		dispatch(utility(replay.SmokeGrenadeExpired, e.GrenadeEvent))
	})
	p.RegisterEventHandler(func(e events.FireGrenadeStart) {
		dispatch(utility(replay.InfernoStartBurn, e.GrenadeEvent))
	})
	p.RegisterEventHandler(func(e events.FireGrenadeExpired) {
		dispatch(utility(replay.InfernoExpire, e.GrenadeEvent))
	})
	p.RegisterEventHandler(func(e events.DecoyStart) {
		dispatch(utility(replay.DecoyStarted, e.GrenadeEvent))
	})
	p.RegisterEventHandler(func(e events.DecoyExpired) {
		dispatch(utility(replay.DecoyDetonate, e.GrenadeEvent))
	})

	// Bomb
	p.RegisterEventHandler(func(e events.BombPlanted) {
		dispatch(replay.BombEvent{Type: replay.BombPlanted, Actor: userID(e.Player)})
	})
	p.RegisterEventHandler(func(e events.BombDefused) {
		dispatch(replay.BombEvent{Type: replay.BombDefused, Actor: userID(e.Player)})
	})
	p.RegisterEventHandler(func(e events.BombExplode) {
		dispatch(replay.BombEvent{Type: replay.BombExploded, Actor: userID(e.Player)})
	})
	p.RegisterEventHandler(func(e events.BombDropped) {
		dispatch(replay.BombEvent{Type: replay.BombDropped, Actor: userID(e.Player)})
	})
	p.RegisterEventHandler(func(e events.BombPickup) {
		dispatch(replay.BombEvent{Type: replay.BombPickup, Actor: userID(e.Player)})
	})
}
