package input

import (
	"encoding/json"
	"fmt"
	"strings"
)

var aliases = map[string]string{
	"escape":      "esc",
	"arrowup":     "up",
	"arrowdown":   "down",
	"arrowleft":   "left",
	"arrowright":  "right",
	"up arrow":    "up",
	"down arrow":  "down",
	"left arrow":  "left",
	"right arrow": "right",
	"return":      "enter",
	"spacebar":    "space",
}

// Normalize maps the different spellings used by capture backends and
// browsers onto a single key name.
func Normalize(name string) string {
	if name == " " {
		return "space"
	}
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "key_")
	if alias, ok := aliases[key]; ok {
		return alias
	}
	return key
}

// parseRemoteEvent decodes events received from remote sources. Both a JSON
// KeyEvent and a bare key name (taken as key-down) are accepted.
func parseRemoteEvent(data []byte) (KeyEvent, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return KeyEvent{}, fmt.Errorf("empty key event")
	}
	if strings.HasPrefix(trimmed, "{") {
		var ev KeyEvent
		if err := json.Unmarshal([]byte(trimmed), &ev); err != nil {
			return KeyEvent{}, fmt.Errorf("could not unmarshal key event: %v", err)
		}
		if ev.Key == "" {
			return KeyEvent{}, fmt.Errorf("key event without key: %s", trimmed)
		}
		ev.Key = Normalize(ev.Key)
		return ev, nil
	}
	return KeyEvent{Key: Normalize(trimmed), Down: true}, nil
}
