package main

import (
	"bytes"
	"context"
	"log"

	"github.com/thiefmaster/ledgames/comm"
	"github.com/thiefmaster/ledgames/games"
)

// startGames starts the selected game on every active module and gives each
// module time to come up before any control traffic is sent.
func startGames(state *appState) {
	for _, port := range state.config.activePorts() {
		state.transport.SendCommand(port, comm.NewStartGameCommand(state.game.ID))
		state.sleep(state.config.SettleDelay)
	}
}

func printBanner(state *appState) {
	state.printf("Started game with ID %02X.\n", state.game.ID)
	state.printf("Using %d module(s).\n", state.config.ActiveModules)
	state.printf("Press %s to exit.\n", exitKeyLabel(state.config.ExitKey))
	reportControls(state, state.game)
}

func exitKeyLabel(key string) string {
	if key == "esc" {
		return "Esc"
	}
	return key
}

func reportControls(state *appState, game games.Game) {
	for _, line := range game.Describe() {
		state.printf("%s\n", line)
	}
}

// sendControl sends control to each port in turn. A port that does not become
// ready is skipped; the others are still tried. It returns the number of
// frames written. Bytes outside the selected game's control set are never
// sent.
func sendControl(ctx context.Context, state *appState, control byte, ports []string) int {
	if bytes.IndexByte(state.game.Keyset.Controls(), control) < 0 {
		log.Printf("control 0x%02X is not used by %s, not sending\n", control, state.game.Name)
		return 0
	}
	sent := 0
	for _, port := range ports {
		if err := state.transport.WaitReady(ctx, port); err != nil {
			state.printf("Port %s unavailable, dropping control %02X: %v\n", port, control, err)
			continue
		}
		if _, err := state.transport.SendCommand(port, comm.NewControlCommand(control)); err != nil {
			continue
		}
		state.lastControl, state.hasLastControl = control, true
		sent++
	}
	return sent
}

// getGameStatus asks the first module for its game status and prints the raw
// response.
func getGameStatus(state *appState) []byte {
	res, _ := state.transport.SendCommand(state.config.Modules[0].Port, comm.NewStatusCommand())
	if len(res) > 0 {
		state.printf("Game Status Response: % X\n", res)
	} else {
		state.printf("No response received.\n")
	}
	return res
}

// putModulesToSleep blanks every registered module, active or not.
func putModulesToSleep(state *appState) {
	for _, port := range state.config.allPorts() {
		state.transport.SendCommand(port, comm.NewSleepCommand())
	}
}
