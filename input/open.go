package input

import (
	"fmt"
	"os"
)

// Source kinds accepted by Open.
const (
	KindEvdev     = "evdev"
	KindHook      = "hook"
	KindWebSocket = "websocket"
	KindSSE       = "sse"
	KindMQTT      = "mqtt"
	KindStdin     = "stdin"
)

// Config selects and configures an input source.
type Config struct {
	// Kind is one of the Kind constants. Empty selects the platform default.
	Kind string `yaml:"kind" env:"KIND"`
	// Device is the evdev device path; empty auto-detects a keyboard.
	Device string `yaml:"device" env:"DEVICE"`
	// Listen is the websocket keypad listen address.
	Listen string `yaml:"listen" env:"LISTEN"`
	// URL is the SSE stream or MQTT broker URL.
	URL      string `yaml:"url" env:"URL"`
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
}

const DefaultListen = "127.0.0.1:48400"

// Open creates the source described by cfg.
func Open(cfg Config) (Source, error) {
	kind := cfg.Kind
	if kind == "" {
		kind = defaultKind()
	}
	switch kind {
	case KindEvdev, KindHook:
		if kind != defaultKind() {
			return nil, fmt.Errorf("input %q is not available on this platform", kind)
		}
		return newPlatformSource(cfg)
	case KindWebSocket:
		listen := cfg.Listen
		if listen == "" {
			listen = DefaultListen
		}
		return NewWebSocketSource(listen)
	case KindSSE:
		if cfg.URL == "" {
			return nil, fmt.Errorf("input %q needs a url", kind)
		}
		return NewSSESource(cfg.URL, Credentials{Username: cfg.Username, Password: cfg.Password})
	case KindMQTT:
		if cfg.URL == "" {
			return nil, fmt.Errorf("input %q needs a url", kind)
		}
		return NewMQTTSource(cfg.URL)
	case KindStdin:
		return NewLineSource(os.Stdin), nil
	default:
		return nil, fmt.Errorf("unknown input %q", kind)
	}
}
