// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"accelerometer/internal/log"
)

// WebSocketPath is the endpoint clients connect to.
const WebSocketPath = "/ws"

// broadcastQueue bounds the spectra waiting for delivery; Send drops
// spectra beyond it.
const broadcastQueue = 16

// WebSocketTransport broadcasts every spectrum as JSON to all connected
// WebSocket clients. It is an http.Handler so it can be mounted on any
// server; Listen serves it on its own.
type WebSocketTransport struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan Spectrum
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	server    *http.Server
	addr      string
}

// NewWebSocketTransport returns a transport with no server attached.
func NewWebSocketTransport() *WebSocketTransport {
	wst := &WebSocketTransport{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local instrument, any dashboard may connect
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Spectrum, broadcastQueue),
		done:      make(chan struct{}),
	}
	wst.wg.Add(1)
	go wst.handleBroadcasts()
	return wst
}

// Listen serves a new transport on addr at WebSocketPath. The listener is
// bound before Listen returns.
func Listen(addr string) (*WebSocketTransport, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	wst := NewWebSocketTransport()
	mux := http.NewServeMux()
	mux.Handle(WebSocketPath, wst)
	wst.server = &http.Server{Handler: mux}
	wst.addr = ln.Addr().String()

	go func() {
		log.Infof("WebSocketTransport: serving spectra on ws://%s%s", wst.addr, WebSocketPath)
		if err := wst.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("WebSocketTransport: server error: %v", err)
		}
	}()
	return wst, nil
}

// Addr returns the bound address when started by Listen.
func (wst *WebSocketTransport) Addr() string { return wst.addr }

// ServeHTTP upgrades the connection and registers the client.
func (wst *WebSocketTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("WebSocketTransport: upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	select {
	case <-wst.done:
		wst.clientsMu.Unlock()
		conn.Close()
		return
	default:
	}
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	log.Debugf("WebSocketTransport: client connected, total: %d", total)

	// Clients never send; a read error means they went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.drop(conn)
				return
			}
		}
	}()
}

// Clients returns the number of connected clients.
func (wst *WebSocketTransport) Clients() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

func (wst *WebSocketTransport) drop(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	_, ok := wst.clients[conn]
	delete(wst.clients, conn)
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	if ok {
		conn.Close()
		log.Debugf("WebSocketTransport: client disconnected, total: %d", total)
	}
}

func (wst *WebSocketTransport) handleBroadcasts() {
	defer wst.wg.Done()
	for {
		select {
		case <-wst.done:
			return
		case s := <-wst.broadcast:
			wst.clientsMu.Lock()
			for client := range wst.clients {
				if err := client.WriteJSON(s); err != nil {
					log.Warnf("WebSocketTransport: error sending to client: %v", err)
					client.Close()
					delete(wst.clients, client)
				}
			}
			wst.clientsMu.Unlock()
		}
	}
}

// Send queues s for broadcast. The magnitudes are copied. When the queue is
// full the spectrum is dropped.
func (wst *WebSocketTransport) Send(s Spectrum) error {
	select {
	case <-wst.done:
		return ErrClosed
	default:
	}
	s.Magnitudes = append([]float64(nil), s.Magnitudes...)
	select {
	case wst.broadcast <- s:
	default:
		log.Debugf("WebSocketTransport: queue full, dropping cycle %d", s.Cycle)
	}
	return nil
}

// Close disconnects every client and shuts the server down.
func (wst *WebSocketTransport) Close() error {
	var err error
	wst.closeOnce.Do(func() {
		close(wst.done)
		wst.wg.Wait()

		wst.clientsMu.Lock()
		for client := range wst.clients {
			client.Close()
		}
		wst.clients = make(map[*websocket.Conn]bool)
		wst.clientsMu.Unlock()

		if wst.server != nil {
			err = wst.server.Close()
		}
	})
	return err
}

var _ Transport = (*WebSocketTransport)(nil)
