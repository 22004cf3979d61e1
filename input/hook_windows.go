//go:build windows

package input

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.MustLoadDLL("user32.dll")
	getAsyncKeyStateProc = user32.MustFindProc("GetAsyncKeyState")
)

const hookPollInterval = 10 * time.Millisecond

// virtualKeys maps Windows virtual key codes to key names.
var virtualKeys = func() map[uintptr]string {
	keys := map[uintptr]string{
		0x08: "backspace",
		0x09: "tab",
		0x0D: "enter",
		0x1B: "esc",
		0x20: "space",
		0x25: "left",
		0x26: "up",
		0x27: "right",
		0x28: "down",
	}
	for c := 'A'; c <= 'Z'; c++ {
		keys[uintptr(c)] = string(c + ('a' - 'A'))
	}
	for c := '0'; c <= '9'; c++ {
		keys[uintptr(c)] = string(c)
	}
	for i := 0; i < 12; i++ {
		keys[uintptr(0x70+i)] = fmt.Sprintf("f%d", i+1)
	}
	return keys
}()

// HookSource polls the global key state of the tracked virtual keys and
// reports transitions, so keys are seen even when the console has no focus.
type HookSource struct {
	*stream
}

func NewHookSource() *HookSource {
	s := &HookSource{stream: newStream()}
	go s.poll()
	return s
}

func keyDown(vk uintptr) bool {
	ret, _, _ := getAsyncKeyStateProc.Call(vk)
	return ret&0x8000 != 0
}

func (s *HookSource) poll() {
	defer s.end()
	pressed := make(map[uintptr]bool, len(virtualKeys))
	ticker := time.NewTicker(hookPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}
		for vk, name := range virtualKeys {
			down := keyDown(vk)
			if down == pressed[vk] {
				continue
			}
			pressed[vk] = down
			if !s.emit(KeyEvent{Key: name, Down: down}) {
				return
			}
		}
	}
}

// Close implements Source.
func (s *HookSource) Close() error {
	s.stop()
	return nil
}

func newPlatformSource(cfg Config) (Source, error) {
	log.Println("capturing keys with GetAsyncKeyState")
	return NewHookSource(), nil
}

func defaultKind() string {
	return KindHook
}
