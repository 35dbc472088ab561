// Package script replays recorded event scripts. A script is a YAML list of
// steps; each step may change the entity directory and then deliver at most
// one event.
package script

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"replaytab/internal/replay"
)

// Script is a recorded replay.
type Script struct {
	Name        string   `yaml:"name,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Tick        int      `yaml:"tick,omitempty"`  // Initial tick
	Round       int      `yaml:"round,omitempty"` // Initial round
	Players     []Player `yaml:"players,omitempty"`
	Steps       []Step   `yaml:"steps"`
}

// Player is one roster entry. Weapon is the equipped class, empty for none.
type Player struct {
	UserID   int           `yaml:"user_id"`
	SteamID  uint64        `yaml:"steam_id,omitempty"`
	Name     string        `yaml:"name,omitempty"`
	Health   int           `yaml:"health"`
	Position replay.Vector `yaml:"position,omitempty,flow"`
	Pitch    float64       `yaml:"pitch,omitempty"`
	Yaw      float64       `yaml:"yaw,omitempty"`
	Speed    float64       `yaml:"speed,omitempty"`
	Place    string        `yaml:"place,omitempty"`
	Weapon   string        `yaml:"weapon,omitempty"`
}

// Step applies its directory changes, then delivers its event, if any.
type Step struct {
	Tick    *int     `yaml:"tick,omitempty"`
	Round   *int     `yaml:"round,omitempty"`
	Players []Player `yaml:"players,omitempty"` // Replaces the whole roster

	// ClearPlayers empties the roster; an empty players list cannot be told
	// apart from an absent one.
	ClearPlayers bool `yaml:"clear_players,omitempty"`

	Start   bool          `yaml:"start,omitempty"`
	TickEnd bool          `yaml:"tick_end,omitempty"`
	Event   string        `yaml:"event,omitempty"`
	Fields  replay.Fields `yaml:"fields,omitempty,flow"`
	Fail    string        `yaml:"fail,omitempty"` // Ends the stream with a decode error
}

func (s Step) deliveries() int {
	n := 0
	for _, set := range []bool{s.Start, s.TickEnd, s.Event != "", s.Fail != ""} {
		if set {
			n++
		}
	}
	return n
}

// Load reads and validates a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a script. Unknown keys are rejected.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the structure of the script. Event fields are checked when
// the event is delivered, like a decoder would.
func (s *Script) Validate() error {
	if err := validateRoster(s.Players); err != nil {
		return fmt.Errorf("players: %w", err)
	}
	tick, round := s.Tick, s.Round
	for i, step := range s.Steps {
		if step.deliveries() > 1 {
			return fmt.Errorf("step %d: start, tick_end, event and fail are exclusive", i)
		}
		if step.Fields != nil && step.Event == "" {
			return fmt.Errorf("step %d: fields without event", i)
		}
		if step.Tick != nil {
			if *step.Tick < tick {
				return fmt.Errorf("step %d: tick %d goes back from %d", i, *step.Tick, tick)
			}
			tick = *step.Tick
		}
		if step.Round != nil {
			if *step.Round < round {
				return fmt.Errorf("step %d: round %d goes back from %d", i, *step.Round, round)
			}
			round = *step.Round
		}
		if step.ClearPlayers && len(step.Players) > 0 {
			return fmt.Errorf("step %d: clear_players with players", i)
		}
		if err := validateRoster(step.Players); err != nil {
			return fmt.Errorf("step %d: players: %w", i, err)
		}
	}
	return nil
}

func validateRoster(players []Player) error {
	seen := make(map[int]bool, len(players))
	for _, p := range players {
		if seen[p.UserID] {
			return fmt.Errorf("duplicate user_id %d", p.UserID)
		}
		seen[p.UserID] = true
	}
	return nil
}

// Encode writes s as YAML.
func Encode(w io.Writer, s *Script) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}
