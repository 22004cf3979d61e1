package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thiefmaster/ledgames/comm"
	"github.com/thiefmaster/ledgames/games"
	"github.com/thiefmaster/ledgames/input"
)

type sentFrame struct {
	port  string
	frame []byte
}

// portRecorder stands in for the serial ports and records every frame.
type portRecorder struct {
	lock     sync.Mutex
	sent     []sentFrame
	broken   map[string]bool
	response []byte
}

func (r *portRecorder) open(port string) (io.ReadWriteCloser, error) {
	if r.broken[port] {
		return nil, errors.New("no such device")
	}
	return &recordingConn{recorder: r, port: port, response: bytes.NewReader(r.response)}, nil
}

func (r *portRecorder) frames(port string) [][]byte {
	r.lock.Lock()
	defer r.lock.Unlock()
	var frames [][]byte
	for _, s := range r.sent {
		if s.port == port {
			frames = append(frames, s.frame)
		}
	}
	return frames
}

type recordingConn struct {
	recorder *portRecorder
	port     string
	response *bytes.Reader
}

func (c *recordingConn) Read(p []byte) (int, error) {
	return c.response.Read(p)
}

func (c *recordingConn) Write(p []byte) (int, error) {
	c.recorder.lock.Lock()
	defer c.recorder.lock.Unlock()
	c.recorder.sent = append(c.recorder.sent, sentFrame{port: c.port, frame: append([]byte(nil), p...)})
	return len(p), nil
}

func (c *recordingConn) Close() error {
	return nil
}

type scriptedSource struct {
	ch     chan input.KeyEvent
	closed bool
}

func newScriptedSource(events ...input.KeyEvent) *scriptedSource {
	s := &scriptedSource{ch: make(chan input.KeyEvent, len(events)+1)}
	for _, ev := range events {
		s.ch <- ev
	}
	return s
}

func (s *scriptedSource) Events() <-chan input.KeyEvent {
	return s.ch
}

func (s *scriptedSource) Close() error {
	s.closed = true
	return nil
}

func down(key string) input.KeyEvent {
	return input.KeyEvent{Key: key, Down: true}
}

func up(key string) input.KeyEvent {
	return input.KeyEvent{Key: key}
}

type testEnv struct {
	state    *appState
	recorder *portRecorder
	out      *bytes.Buffer
	delays   []time.Duration
}

func newTestEnv(t *testing.T, game string, active int) *testEnv {
	config := defaultConfig()
	config.Modules = []moduleConfig{
		{"module1", "/dev/fake1"},
		{"module2", "/dev/fake2"},
		{"module3", "/dev/fake3"},
	}
	config.Game = game
	config.ActiveModules = active
	config.RetryInterval = time.Millisecond
	config.ReadyTimeout = 20 * time.Millisecond
	require.NoError(t, config.validate())

	env := &testEnv{
		recorder: &portRecorder{broken: make(map[string]bool)},
		out:      &bytes.Buffer{},
	}
	transport := comm.NewTransport()
	transport.Open = env.recorder.open
	env.state = newAppState(config, transport, env.out)
	env.state.sleep = func(d time.Duration) { env.delays = append(env.delays, d) }
	return env
}

func frame(id byte, params ...byte) []byte {
	return comm.BuildFrame(id, params...)
}

func TestEndToEndPong(t *testing.T) {
	env := newTestEnv(t, "pong", 1)
	source := newScriptedSource(down("d"), up("d"), down("left"), down("x"), down("w"), down("esc"), down("a"))

	require.NoError(t, run(context.Background(), env.state, source))

	require.Equal(t, [][]byte{
		frame(comm.CmdGameCtrl, 0x03),
		frame(comm.CmdGameCtrl, 0x05),
		frame(comm.CmdSleep),
	}, env.recorder.frames("/dev/fake1"))
	require.Equal(t, [][]byte{frame(comm.CmdSleep)}, env.recorder.frames("/dev/fake2"))
	require.Equal(t, [][]byte{frame(comm.CmdSleep)}, env.recorder.frames("/dev/fake3"))
	require.True(t, source.closed)
	require.Contains(t, env.out.String(), "Exiting the script.")
	require.Equal(t, byte(0x05), env.state.lastControl)
}

func TestDispatchSnakeToActiveModules(t *testing.T) {
	env := newTestEnv(t, "snake", 2)
	for _, key := range []string{"w", "up", "KEY_S", "right"} {
		require.False(t, handleKey(context.Background(), env.state, down(key)))
	}
	expect := [][]byte{
		frame(comm.CmdGameCtrl, 0x00),
		frame(comm.CmdGameCtrl, 0x00),
		frame(comm.CmdGameCtrl, 0x01),
		frame(comm.CmdGameCtrl, 0x03),
	}
	require.Equal(t, expect, env.recorder.frames("/dev/fake1"))
	require.Equal(t, expect, env.recorder.frames("/dev/fake2"))
	require.Empty(t, env.recorder.frames("/dev/fake3"))
}

func TestHandleKeyIgnoresOtherEvents(t *testing.T) {
	env := newTestEnv(t, "pong", 1)
	require.False(t, handleKey(context.Background(), env.state, up("d")))
	require.False(t, handleKey(context.Background(), env.state, up("esc")))
	require.False(t, handleKey(context.Background(), env.state, down("space")))
	require.Empty(t, env.recorder.sent)
	require.True(t, handleKey(context.Background(), env.state, down("Escape")))
	require.Empty(t, env.recorder.sent)
}

func TestSendControlContinuesAfterFailure(t *testing.T) {
	env := newTestEnv(t, "pong", 3)
	env.recorder.broken["/dev/fake2"] = true

	sent := sendControl(context.Background(), env.state, 0x06, env.state.config.activePorts())

	require.Equal(t, 2, sent)
	require.Equal(t, [][]byte{frame(comm.CmdGameCtrl, 0x06)}, env.recorder.frames("/dev/fake1"))
	require.Empty(t, env.recorder.frames("/dev/fake2"))
	require.Equal(t, [][]byte{frame(comm.CmdGameCtrl, 0x06)}, env.recorder.frames("/dev/fake3"))
	require.Contains(t, env.out.String(), "Port /dev/fake2 not ready, waiting...")
	require.Contains(t, env.out.String(), "Port /dev/fake2 unavailable, dropping control 06")
}

func TestSendControlRejectsForeignControl(t *testing.T) {
	env := newTestEnv(t, "pong", 2)
	for _, control := range []byte{0x00, 0x01, 0x04, 0x07} {
		require.Equal(t, 0, sendControl(context.Background(), env.state, control, env.state.config.activePorts()))
	}
	require.Empty(t, env.recorder.sent)
	require.False(t, env.state.hasLastControl)
}

func TestSendControlOnePerPort(t *testing.T) {
	env := newTestEnv(t, "snake", 3)
	require.Equal(t, 3, sendControl(context.Background(), env.state, 0x02, env.state.config.activePorts()))
	require.Len(t, env.recorder.sent, 3)
}

func TestShutdownSleepsAllModules(t *testing.T) {
	for _, active := range []int{1, 2, 3} {
		env := newTestEnv(t, "snake", active)
		source := newScriptedSource(down("esc"))
		require.NoError(t, run(context.Background(), env.state, source))
		for _, port := range env.state.config.allPorts() {
			require.Equal(t, [][]byte{frame(comm.CmdSleep)}, env.recorder.frames(port))
		}
		require.True(t, source.closed)
	}
}

func TestStartGames(t *testing.T) {
	env := newTestEnv(t, "pong", 2)
	startGames(env.state)
	require.Equal(t, [][]byte{frame(comm.CmdStartGame, games.Pong)}, env.recorder.frames("/dev/fake1"))
	require.Equal(t, [][]byte{frame(comm.CmdStartGame, games.Pong)}, env.recorder.frames("/dev/fake2"))
	require.Empty(t, env.recorder.frames("/dev/fake3"))
	require.Equal(t, []time.Duration{time.Second, time.Second}, env.delays)
}

func TestPrintBanner(t *testing.T) {
	env := newTestEnv(t, "pong", 1)
	printBanner(env.state)
	require.Equal(t, "Started game with ID 01.\n"+
		"Using 1 module(s).\n"+
		"Press Esc to exit.\n"+
		"Controls for Game 01:\n"+
		"Player Top: A and D\n"+
		"Player Bottom: left and right arrow keys\n", env.out.String())
}

func TestGetGameStatus(t *testing.T) {
	env := newTestEnv(t, "snake", 1)
	env.recorder.response = []byte{0x01, 0xAB}
	require.Equal(t, []byte{0x01, 0xAB}, getGameStatus(env.state))
	require.Equal(t, [][]byte{frame(comm.CmdGameStatus)}, env.recorder.frames("/dev/fake1"))
	require.Contains(t, env.out.String(), "Game Status Response: 01 AB")

	env = newTestEnv(t, "snake", 1)
	require.Empty(t, getGameStatus(env.state))
	require.Contains(t, env.out.String(), "No response received.")
}

func TestRunSourceEnded(t *testing.T) {
	env := newTestEnv(t, "snake", 1)
	source := newScriptedSource(down("a"))
	close(source.ch)
	require.NoError(t, run(context.Background(), env.state, source))
	require.Equal(t, [][]byte{frame(comm.CmdGameCtrl, 0x02)}, env.recorder.frames("/dev/fake1"))
	require.Empty(t, env.recorder.frames("/dev/fake2"))
}

func TestRunCancelled(t *testing.T) {
	env := newTestEnv(t, "snake", 1)
	source := newScriptedSource()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, run(ctx, env.state, source))
	require.True(t, source.closed)
	require.Empty(t, env.recorder.sent)
}

func TestRunPollsStatus(t *testing.T) {
	env := newTestEnv(t, "snake", 1)
	env.state.config.StatusInterval = 5 * time.Millisecond
	source := newScriptedSource()
	go func() {
		time.Sleep(50 * time.Millisecond)
		source.ch <- down("esc")
	}()
	require.NoError(t, run(context.Background(), env.state, source))
	frames := env.recorder.frames("/dev/fake1")
	require.True(t, len(frames) >= 2)
	require.Equal(t, frame(comm.CmdGameStatus), frames[0])
	require.Equal(t, frame(comm.CmdSleep), frames[len(frames)-1])
}
