package input

import (
	"bufio"
	"io"
	"log"
)

// LineSource reads one key name per line. Every line is a key-down event.
type LineSource struct {
	*stream
	r io.Reader
}

// NewLineSource starts reading key names from r.
func NewLineSource(r io.Reader) *LineSource {
	s := &LineSource{stream: newStream(), r: r}
	go s.read()
	return s
}

func (s *LineSource) read() {
	defer s.end()
	scanner := bufio.NewScanner(s.r)
	for scanner.Scan() {
		key := Normalize(scanner.Text())
		if key == "" {
			continue
		}
		if !s.emit(KeyEvent{Key: key, Down: true}) {
			return
		}
	}
	if err := scanner.Err(); err != nil && !s.stopped() {
		log.Printf("reading key names: %v\n", err)
	}
}

// Close implements Source. The reader is left open; it belongs to the caller.
func (s *LineSource) Close() error {
	s.stop()
	return nil
}
