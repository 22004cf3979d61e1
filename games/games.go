// Package games holds the control tables of the games built into the LED
// matrix module firmware.
package games

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	Snake byte = 0x00
	Pong  byte = 0x01
)

// Game describes one game the firmware can run.
type Game struct {
	ID     byte
	Name   string
	Keyset Keyset
	// Scheme is printed to the player when the game starts.
	Scheme []string
}

var table = map[byte]Game{
	Snake: {
		ID:   Snake,
		Name: "Snake",
		Keyset: FlatKeyset{Bindings: []Binding{
			{"up", 0x00},
			{"down", 0x01},
			{"left", 0x02},
			{"right", 0x03},
			{"w", 0x00},
			{"s", 0x01},
			{"a", 0x02},
			{"d", 0x03},
		}},
		Scheme: []string{"Use arrow keys or WASD"},
	},
	Pong: {
		ID:   Pong,
		Name: "Pong",
		Keyset: RoleSplitKeyset{
			Top: Role{
				Name:         "top",
				LeftKey:      "a",
				RightKey:     "d",
				LeftControl:  0x02,
				RightControl: 0x03,
			},
			Bottom: Role{
				Name:         "bottom",
				LeftKey:      "left",
				RightKey:     "right",
				LeftControl:  0x05,
				RightControl: 0x06,
			},
		},
		Scheme: []string{
			"Player Top: A and D",
			"Player Bottom: left and right arrow keys",
		},
	},
}

// Lookup returns the game with the given id.
func Lookup(id byte) (Game, bool) {
	g, ok := table[id]
	return g, ok
}

// All returns every known game ordered by id.
func All() []Game {
	all := make([]Game, 0, len(table))
	for _, g := range table {
		all = append(all, g)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Resolve maps key to a control byte for the game with the given id. It
// returns false for unknown games and for keys the game does not use.
func Resolve(id byte, key string) (byte, bool) {
	g, ok := table[id]
	if !ok {
		return 0, false
	}
	return g.Keyset.Resolve(key)
}

// ParseID parses a game id given either as a name ("pong") or a number
// ("1", "0x01").
func ParseID(s string) (byte, error) {
	for _, g := range table {
		if strings.EqualFold(g.Name, s) {
			return g.ID, nil
		}
	}
	id, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown game %q", s)
	}
	if _, ok := table[byte(id)]; !ok {
		return 0, fmt.Errorf("unknown game %q", s)
	}
	return byte(id), nil
}

// Describe returns the lines shown to the player for the game's controls.
func (g Game) Describe() []string {
	lines := []string{fmt.Sprintf("Controls for Game %02X:", g.ID)}
	return append(lines, g.Scheme...)
}
