package input

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/thiefmaster/eventsource"
)

// Credentials for remote event streams.
type Credentials struct {
	Username string
	Password string
}

// SSESource subscribes to a server-sent-event stream whose event data are
// key events.
type SSESource struct {
	*stream
	url         string
	credentials Credentials
}

// NewSSESource starts subscribing to url. Subscription failures are retried
// until the source is closed.
func NewSSESource(url string, credentials Credentials) (*SSESource, error) {
	if _, err := newSSERequest(url, credentials); err != nil {
		return nil, err
	}
	s := &SSESource{stream: newStream(), url: url, credentials: credentials}
	go s.subscribe()
	return s, nil
}

func newSSERequest(url string, credentials Credentials) (*http.Request, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	if credentials.Username != "" && credentials.Password != "" {
		req.SetBasicAuth(credentials.Username, credentials.Password)
	}
	return req, nil
}

func (s *SSESource) subscribe() {
	for !s.stopped() {
		req, _ := newSSERequest(s.url, s.credentials)
		stream, err := eventsource.SubscribeWithRequest("", req)
		if err != nil {
			log.Printf("key stream subscribe failed: %v\n", err)
			select {
			case <-s.done:
				return
			case <-time.After(1 * time.Second):
			}
			continue
		}
		stream.InitialRetryDelay = 500 * time.Millisecond
		stream.MaxRetryDelay = 5 * time.Second
		stream.Logger = log.New(os.Stderr, "", log.LstdFlags)
		s.consume(stream)
		stream.Close()
		return
	}
}

func (s *SSESource) consume(stream *eventsource.Stream) {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-stream.Events:
			if !ok {
				return
			}
			ev, err := parseRemoteEvent([]byte(event.Data()))
			if err != nil {
				log.Printf("ignoring key stream event: %v\n", err)
				continue
			}
			if !s.emit(ev) {
				return
			}
		case err := <-stream.Errors:
			log.Printf("key stream error: %v\n", err)
		}
	}
}

// Close implements Source.
func (s *SSESource) Close() error {
	s.stop()
	return nil
}
