package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/thiefmaster/ledgames/games"
	"github.com/thiefmaster/ledgames/input"
)

// consoleCmd is a service console command. Output goes to state.out.
type consoleCmd struct {
	name string
	help string
	fn   func(ctx context.Context, state *appState, args []string) error
}

var consoleCmds = []consoleCmd{
	{"ports", "List the configured modules and whether their ports can be opened.", cmdPorts},
	{"ready", "ready <module|port>: check whether a port can be opened.", cmdReady},
	{"start", "Start the selected game on the active modules.", cmdStart},
	{"ctrl", "ctrl <key>...: send the controls for keys to the active modules.", cmdCtrl},
	{"resolve", "resolve <key>...: show the control byte of keys.", cmdResolve},
	{"status", "Query the game status of the first module.", cmdStatus},
	{"sleep", "Put every module to sleep.", cmdSleep},
	{"games", "List the known games and their controls.", cmdGames},
}

func cmdPorts(_ context.Context, state *appState, _ []string) error {
	for i, m := range state.config.Modules {
		active := ""
		if i < state.config.ActiveModules {
			active = " (active)"
		}
		ready := "busy"
		if state.transport.IsPortReady(m.Port) {
			ready = "ready"
		}
		state.printf("%s\t%s\t%s%s\n", m.Name, m.Port, ready, active)
	}
	return nil
}

func cmdReady(_ context.Context, state *appState, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: ready <module|port>")
	}
	port := state.config.lookupPort(args[0])
	if state.transport.IsPortReady(port) {
		state.printf("%s ready\n", port)
	} else {
		state.printf("%s not ready\n", port)
	}
	return nil
}

func cmdStart(_ context.Context, state *appState, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: start")
	}
	startGames(state)
	printBanner(state)
	return nil
}

func cmdCtrl(ctx context.Context, state *appState, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: ctrl <key>...")
	}
	for _, arg := range args {
		key := input.Normalize(arg)
		control, ok := state.game.Keyset.Resolve(key)
		if !ok {
			return fmt.Errorf("key %q is not used by %s", key, state.game.Name)
		}
		ports := state.config.activePorts()
		sent := sendControl(ctx, state, control, ports)
		state.printf("%s -> %02X sent to %d/%d module(s)\n", key, control, sent, len(ports))
	}
	return nil
}

func cmdResolve(_ context.Context, state *appState, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: resolve <key>...")
	}
	for _, arg := range args {
		key := input.Normalize(arg)
		if control, ok := state.game.Keyset.Resolve(key); ok {
			state.printf("%s -> %02X\n", key, control)
		} else {
			state.printf("%s -> no action\n", key)
		}
	}
	return nil
}

func cmdStatus(_ context.Context, state *appState, _ []string) error {
	getGameStatus(state)
	return nil
}

func cmdSleep(_ context.Context, state *appState, _ []string) error {
	putModulesToSleep(state)
	return nil
}

func cmdGames(_ context.Context, state *appState, _ []string) error {
	for _, g := range games.All() {
		selected := ""
		if g.ID == state.game.ID {
			selected = " (selected)"
		}
		state.printf("%02X %s%s: keys %s\n", g.ID, g.Name, selected, strings.Join(g.Keyset.Keys(), ", "))
	}
	return nil
}

func runShell(ctx context.Context, state *appState) {
	shell := ishell.New()
	shell.SetPrompt(fmt.Sprintf("[%s] > ", strings.ToLower(state.game.Name)))
	for _, cmd := range consoleCmds {
		cmd := cmd
		shell.AddCmd(&ishell.Cmd{
			Name: cmd.name,
			Help: cmd.help,
			Func: func(c *ishell.Context) {
				if err := cmd.fn(ctx, state, c.Args); err != nil {
					c.Err(err)
				}
			},
		})
	}
	shell.Println("LED games service console, type help for commands")
	shell.Run()
}
