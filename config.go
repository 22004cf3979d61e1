package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"

	"github.com/thiefmaster/ledgames/comm"
	"github.com/thiefmaster/ledgames/games"
	"github.com/thiefmaster/ledgames/input"
)

type moduleConfig struct {
	Name string
	Port string
}

type appConfig struct {
	// Modules is the port registry. Order matters: the first ActiveModules
	// entries receive game traffic.
	Modules        []moduleConfig
	Game           string        `env:"LEDGAMES_GAME"`
	ActiveModules  int           `yaml:"active_modules" env:"LEDGAMES_MODULES"`
	ExitKey        string        `yaml:"exit_key" env:"LEDGAMES_EXIT_KEY"`
	SettleDelay    time.Duration `yaml:"settle_delay" env:"LEDGAMES_SETTLE_DELAY"`
	RetryInterval  time.Duration `yaml:"retry_interval" env:"LEDGAMES_RETRY_INTERVAL"`
	ReadyTimeout   time.Duration `yaml:"ready_timeout" env:"LEDGAMES_READY_TIMEOUT"`
	StatusInterval time.Duration `yaml:"status_interval" env:"LEDGAMES_STATUS_INTERVAL"`
	Input          input.Config  `envPrefix:"LEDGAMES_INPUT_"`

	gameID byte
	shell  bool
}

func defaultModules() []moduleConfig {
	switch runtime.GOOS {
	case "windows":
		return []moduleConfig{{"module1", "COM3"}, {"module2", "COM4"}}
	case "darwin":
		return []moduleConfig{{"module1", "/dev/tty.usbmodem1"}, {"module2", "/dev/tty.usbmodem2"}}
	default:
		return []moduleConfig{{"module1", "/dev/ttyACM0"}, {"module2", "/dev/ttyACM1"}}
	}
}

func defaultConfig() *appConfig {
	return &appConfig{
		Modules:       defaultModules(),
		Game:          "pong",
		ActiveModules: 1,
		ExitKey:       "esc",
		SettleDelay:   1 * time.Second,
		RetryInterval: comm.DefaultRetryInterval,
		ReadyTimeout:  comm.DefaultReadyTimeout,
	}
}

func (c *appConfig) load(path string) error {
	log.Printf("loading config file: %s\n", path)
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not open config file: %v", err)
	}
	if err = yaml.UnmarshalStrict(yamlFile, c); err != nil {
		return fmt.Errorf("could not parse config file: %v", err)
	}
	return nil
}

func (c *appConfig) validate() error {
	id, err := games.ParseID(c.Game)
	if err != nil {
		return err
	}
	c.gameID = id
	if len(c.Modules) == 0 {
		return fmt.Errorf("no modules configured")
	}
	names := make(map[string]bool, len(c.Modules))
	for i, m := range c.Modules {
		if m.Port == "" {
			return fmt.Errorf("module %d (%s) has no port", i+1, m.Name)
		}
		if m.Name == "" {
			c.Modules[i].Name = fmt.Sprintf("module%d", i+1)
		}
		if names[c.Modules[i].Name] {
			return fmt.Errorf("duplicate module name %q", c.Modules[i].Name)
		}
		names[c.Modules[i].Name] = true
	}
	if c.ActiveModules < 1 || c.ActiveModules > len(c.Modules) {
		return fmt.Errorf("active modules must be between 1 and %d, got %d", len(c.Modules), c.ActiveModules)
	}
	c.ExitKey = input.Normalize(c.ExitKey)
	if c.ExitKey == "" {
		return fmt.Errorf("exit key must not be empty")
	}
	return nil
}

// activePorts returns the ports that receive game traffic.
func (c *appConfig) activePorts() []string {
	return c.allPorts()[:c.ActiveModules]
}

func (c *appConfig) allPorts() []string {
	ports := make([]string, 0, len(c.Modules))
	for _, m := range c.Modules {
		ports = append(ports, m.Port)
	}
	return ports
}

// lookupPort resolves a module name or a raw port.
func (c *appConfig) lookupPort(nameOrPort string) string {
	for _, m := range c.Modules {
		if m.Name == nameOrPort {
			return m.Port
		}
	}
	return nameOrPort
}

// parseConfig layers defaults, the optional config file, the environment
// and command line flags, in that order.
func parseConfig(fs *flag.FlagSet, args []string) (*appConfig, error) {
	var (
		configPath     string
		game           string
		modules        int
		inputKind      string
		device         string
		statusInterval time.Duration
		shellMode      bool
	)
	fs.StringVar(&configPath, "config", "", "Path to a YAML config file.")
	fs.StringVar(&game, "game", "", "Game to start, by name or id.")
	fs.IntVar(&modules, "modules", 0, "Number of active modules.")
	fs.StringVar(&inputKind, "input", "", "Key source: evdev, hook, websocket, sse, mqtt or stdin.")
	fs.StringVar(&device, "device", "", "Keyboard device for the evdev source.")
	fs.DurationVar(&statusInterval, "status-interval", 0, "Poll game status at this interval, 0 disables.")
	fs.BoolVar(&shellMode, "shell", false, "Start the service console instead of the key loop.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if configPath != "" {
		if err := cfg.load(configPath); err != nil {
			return nil, err
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "game":
			cfg.Game = game
		case "modules":
			cfg.ActiveModules = modules
		case "input":
			cfg.Input.Kind = inputKind
		case "device":
			cfg.Input.Device = device
		case "status-interval":
			cfg.StatusInterval = statusInterval
		}
	})
	cfg.shell = shellMode
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
