package comm

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/tarm/serial"
)

const (
	DefaultRetryInterval = 100 * time.Millisecond
	DefaultReadyTimeout  = 5 * time.Second
	DefaultReadTimeout   = 1 * time.Second
)

// Opener opens a serial connection to the named port.
type Opener func(port string) (io.ReadWriteCloser, error)

// Transport sends framed commands over serial, opening a fresh connection for
// every command.
type Transport struct {
	Open          Opener
	RetryInterval time.Duration
	// ReadyTimeout bounds WaitReady. Zero or negative retries forever.
	ReadyTimeout time.Duration
	// Notify receives human readable retry notices. Defaults to stdout.
	Notify func(format string, args ...interface{})
}

// NewTransport creates a Transport backed by real serial ports.
func NewTransport() *Transport {
	return &Transport{
		Open:          openSerialPort,
		RetryInterval: DefaultRetryInterval,
		ReadyTimeout:  DefaultReadyTimeout,
	}
}

func openSerialPort(port string) (io.ReadWriteCloser, error) {
	return serial.OpenPort(&serial.Config{
		Name:        port,
		Baud:        BaudRate,
		ReadTimeout: DefaultReadTimeout,
	})
}

func (t *Transport) open(port string) (io.ReadWriteCloser, error) {
	open := t.Open
	if open == nil {
		open = openSerialPort
	}
	conn, err := open(port)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPortUnavailable, port, err)
	}
	return conn, nil
}

// SendCommand writes cmd to port and, if the command expects one, returns up
// to ResponseSize bytes of response. A short or empty response is returned
// as-is. The connection is closed before returning on every path.
func (t *Transport) SendCommand(port string, cmd Command) ([]byte, error) {
	conn, err := t.open(port)
	if err != nil {
		log.Printf("failed to send command 0x%02X on port %s: %v\n", cmd.ID(), port, err)
		return nil, err
	}
	defer conn.Close()

	if _, err := conn.Write(cmd.Bytes()); err != nil {
		log.Printf("failed to send command 0x%02X on port %s: %v\n", cmd.ID(), port, err)
		return nil, fmt.Errorf("write %s: %w", port, err)
	}
	if !cmd.WithResponse() {
		return nil, nil
	}

	return readResponse(port, conn), nil
}

// readResponse reads until ResponseSize bytes arrived or the port stops
// delivering data (read timeout, EOF or error).
func readResponse(port string, r io.Reader) []byte {
	buf := make([]byte, ResponseSize)
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			if err != io.EOF {
				log.Printf("reading response from port %s: %v\n", port, err)
			}
			break
		}
		if m == 0 {
			break
		}
	}
	return buf[:n]
}

// IsPortReady reports whether port can be opened right now. The answer is a
// hint: another process may grab the port before the next open.
func (t *Transport) IsPortReady(port string) bool {
	conn, err := t.open(port)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// WaitReady blocks until port is ready, ctx is done or the ready timeout
// expires.
func (t *Transport) WaitReady(ctx context.Context, port string) error {
	interval := t.RetryInterval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	var deadline <-chan time.Time
	if t.ReadyTimeout > 0 {
		timer := time.NewTimer(t.ReadyTimeout)
		defer timer.Stop()
		deadline = timer.C
	}
	retry := time.NewTimer(interval)
	defer retry.Stop()
	for {
		if t.IsPortReady(port) {
			return nil
		}
		t.notify("Port %s not ready, waiting...\n", port)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("%w: %s not ready after %v", ErrPortUnavailable, port, t.ReadyTimeout)
		case <-retry.C:
			retry.Reset(interval)
		}
	}
}

func (t *Transport) notify(format string, args ...interface{}) {
	if t.Notify != nil {
		t.Notify(format, args...)
		return
	}
	fmt.Printf(format, args...)
}
