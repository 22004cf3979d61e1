package input

import (
	"log"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocketSource runs a small local server that a browser based keypad
// connects to. Every text message is one key event.
type WebSocketSource struct {
	*stream
	server   *http.Server
	listener net.Listener
	upgrader websocket.Upgrader

	connLock   sync.Mutex
	activeConn *websocket.Conn
}

// NewWebSocketSource listens on addr and serves the keypad socket on /ws.
func NewWebSocketSource(addr string) (*WebSocketSource, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &WebSocketSource{
		stream:   newStream(),
		listener: l,
		upgrader: websocket.Upgrader{CheckOrigin: checkLocalOrigin},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.ws)
	s.server = &http.Server{Handler: mux}
	go func() {
		if err := s.server.Serve(l); err != nil && err != http.ErrServerClosed {
			log.Printf("keypad server exited: %v\n", err)
		}
	}()
	log.Printf("keypad listening on ws://%s/ws\n", l.Addr())
	return s, nil
}

// Addr returns the address the server listens on.
func (s *WebSocketSource) Addr() net.Addr {
	return s.listener.Addr()
}

func checkLocalOrigin(r *http.Request) bool {
	origin := r.Header["Origin"]
	if len(origin) == 0 {
		return true
	}
	u, err := url.Parse(origin[0])
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1" || u.Scheme == "moz-extension"
}

func (s *WebSocketSource) ws(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %s\n", err)
		return
	}
	s.connLock.Lock()
	if s.activeConn != nil {
		log.Printf("closing previous keypad conn %p\n", s.activeConn)
		s.activeConn.Close()
	}
	s.activeConn = c
	s.connLock.Unlock()
	defer func() {
		c.Close()
		s.connLock.Lock()
		if c == s.activeConn {
			s.activeConn = nil
		}
		s.connLock.Unlock()
	}()

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if !s.stopped() {
				log.Printf("websocket read failed: %s\n", err)
			}
			return
		}
		ev, err := parseRemoteEvent(message)
		if err != nil {
			log.Printf("ignoring keypad message: %v\n", err)
			continue
		}
		if !s.emit(ev) {
			return
		}
	}
}

// Close implements Source.
func (s *WebSocketSource) Close() error {
	s.stop()
	err := s.server.Close()
	// hijacked connections are not closed by the server
	s.connLock.Lock()
	if s.activeConn != nil {
		s.activeConn.Close()
	}
	s.connLock.Unlock()
	return err
}
