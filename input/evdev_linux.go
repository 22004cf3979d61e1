//go:build linux

package input

import (
	"fmt"
	"log"
	"path/filepath"

	evdev "github.com/gvalkov/golang-evdev"
)

var keyboardGlobs = []string{
	"/dev/input/by-id/*-event-kbd",
	"/dev/input/by-path/*-event-kbd",
}

// EvdevSource reads key events from a Linux input device.
type EvdevSource struct {
	*stream
	dev *evdev.InputDevice
}

// DetectKeyboard returns the first keyboard event device found.
func DetectKeyboard() (string, error) {
	for _, g := range keyboardGlobs {
		matches, _ := filepath.Glob(g)
		if len(matches) > 0 {
			return matches[0], nil
		}
	}
	return "", fmt.Errorf("no keyboard device found under /dev/input")
}

// NewEvdevSource opens the device at path, or detects a keyboard if path is
// empty.
func NewEvdevSource(path string) (*EvdevSource, error) {
	if path == "" {
		var err error
		if path, err = DetectKeyboard(); err != nil {
			return nil, err
		}
	}
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open keyboard %s: %v", path, err)
	}
	log.Printf("reading keys from %s (%s)\n", path, dev.Name)
	s := &EvdevSource{stream: newStream(), dev: dev}
	go s.read()
	return s, nil
}

func (s *EvdevSource) read() {
	defer s.end()
	for {
		ev, err := s.dev.ReadOne()
		if err != nil {
			if !s.stopped() {
				log.Printf("failed to read key event: %v\n", err)
			}
			return
		}
		if ev.Type != evdev.EV_KEY {
			continue
		}
		// key repeat is reported as a third state and is not a new press
		if ev.Value != int32(evdev.KeyDown) && ev.Value != int32(evdev.KeyUp) {
			continue
		}
		name, found := evdev.KEY[int(ev.Code)]
		if !found {
			continue
		}
		if !s.emit(KeyEvent{Key: Normalize(name), Down: ev.Value == int32(evdev.KeyDown)}) {
			return
		}
	}
}

// Close implements Source.
func (s *EvdevSource) Close() error {
	s.stop()
	return s.dev.File.Close()
}

func newPlatformSource(cfg Config) (Source, error) {
	return NewEvdevSource(cfg.Device)
}

func defaultKind() string {
	return KindEvdev
}
