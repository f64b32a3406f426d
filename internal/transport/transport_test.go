// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"accelerometer/internal/log"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketBroadcast(t *testing.T) {
	wst := NewWebSocketTransport()
	srv := httptest.NewServer(wst)
	defer srv.Close()
	defer wst.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	a, b := dial(t, url), dial(t, url)
	waitFor(t, func() bool { return wst.Clients() == 2 })

	mags := []float64{0, 1.5, 9, 2}
	if err := wst.Send(Spectrum{Cycle: 3, Size: 6, PeakBin: 2, PeakHz: 2666.5, Magnitudes: mags}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	mags[2] = -1 // the transport owns a copy

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got Spectrum
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if got.Cycle != 3 || got.PeakBin != 2 || len(got.Magnitudes) != 4 || got.Magnitudes[2] != 9 {
			t.Errorf("received %+v", got)
		}
	}
}

func TestWebSocketClientDisconnect(t *testing.T) {
	wst := NewWebSocketTransport()
	srv := httptest.NewServer(wst)
	defer srv.Close()
	defer wst.Close()

	conn := dial(t, "ws"+strings.TrimPrefix(srv.URL, "http"))
	waitFor(t, func() bool { return wst.Clients() == 1 })
	conn.Close()
	waitFor(t, func() bool { return wst.Clients() == 0 })
}

func TestWebSocketListenAndClose(t *testing.T) {
	wst, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	conn := dial(t, "ws://"+wst.Addr()+WebSocketPath)
	waitFor(t, func() bool { return wst.Clients() == 1 })

	if err := wst.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := wst.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := wst.Send(Spectrum{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Send() after Close error = %v, want ErrClosed", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("client connection should be closed")
	}
}

type syncBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestLoggingTransport(t *testing.T) {
	sink := &syncBuffer{}
	log.SetOutput(sink)
	log.SetLevel(log.LevelDebug)
	t.Cleanup(func() {
		log.SetOutput(io.Discard)
		log.SetLevel(log.LevelInfo)
	})

	lt := NewLoggingTransport()
	if err := lt.Send(Spectrum{Cycle: 1, PeakBin: 440, PeakHz: 440}); err != nil {
		t.Fatal(err)
	}
	if err := lt.Close(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sink.String(), "cycle 1 peak bin 440 (440.00 Hz)") {
		t.Errorf("log output = %q", sink.String())
	}
}
