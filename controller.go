package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thiefmaster/ledgames/comm"
	"github.com/thiefmaster/ledgames/games"
	"github.com/thiefmaster/ledgames/input"
)

type appState struct {
	config    *appConfig
	game      games.Game
	transport *comm.Transport
	out       io.Writer
	sleep     func(time.Duration)

	// lastControl is kept for diagnostics only.
	lastControl    byte
	hasLastControl bool
}

func newAppState(config *appConfig, transport *comm.Transport, out io.Writer) *appState {
	game, _ := games.Lookup(config.gameID)
	transport.RetryInterval = config.RetryInterval
	transport.ReadyTimeout = config.ReadyTimeout
	transport.Notify = func(format string, args ...interface{}) {
		fmt.Fprintf(out, format, args...)
	}
	return &appState{
		config:    config,
		game:      game,
		transport: transport,
		out:       out,
		sleep:     time.Sleep,
	}
}

func (s *appState) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

// handleKey dispatches a single key event. It returns true when the exit key
// was pressed; the caller then runs the shutdown sequence.
func handleKey(ctx context.Context, state *appState, ev input.KeyEvent) bool {
	if !ev.Down {
		return false
	}
	key := input.Normalize(ev.Key)
	if key == state.config.ExitKey {
		return true
	}
	control, ok := state.game.Keyset.Resolve(key)
	if !ok {
		return false
	}
	sendControl(ctx, state, control, state.config.activePorts())
	return false
}

// run starts the game, then processes key events until the exit key is
// pressed, the source runs dry or ctx is cancelled.
func run(ctx context.Context, state *appState, source input.Source) error {
	var statusTick <-chan time.Time
	if state.config.StatusInterval > 0 {
		ticker := time.NewTicker(state.config.StatusInterval)
		defer ticker.Stop()
		statusTick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			source.Close()
			return ctx.Err()
		case <-statusTick:
			getGameStatus(state)
		case ev, ok := <-source.Events():
			if !ok {
				log.Println("input source closed")
				return nil
			}
			if handleKey(ctx, state, ev) {
				shutdown(state, source)
				return nil
			}
		}
	}
}

func shutdown(state *appState, source input.Source) {
	state.printf("Exiting the script.\n")
	putModulesToSleep(state)
	if err := source.Close(); err != nil {
		log.Printf("closing input source: %v\n", err)
	}
	if state.hasLastControl {
		log.Printf("last control sent: 0x%02X\n", state.lastControl)
	}
}

func main() {
	config, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("%v\n", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state := newAppState(config, comm.NewTransport(), os.Stdout)
	if config.shell {
		runShell(ctx, state)
		return
	}

	startGames(state)
	source, err := input.Open(config.Input)
	if err != nil {
		putModulesToSleep(state)
		log.Fatalf("could not open input: %v\n", err)
	}
	printBanner(state)

	if err := run(ctx, state, source); err != nil && err != context.Canceled {
		log.Fatalf("controller stopped: %v\n", err)
	}
}
