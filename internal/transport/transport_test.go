// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rtlpower/internal/report"
	"rtlpower/internal/spectrum"
	"rtlpower/pkg/utils"

	"github.com/gorilla/websocket"
)

type failingTransport struct{ err error }

func (f failingTransport) Send(any) error { return f.err }
func (f failingTransport) Close() error   { return f.err }

func TestMulti(t *testing.T) {
	a, b := &utils.MockTransport{}, &utils.MockTransport{}
	boom := errors.New("boom")
	m := Multi{a, failingTransport{boom}, b}

	if err := m.Send("payload"); !errors.Is(err, boom) {
		t.Errorf("Send() error = %v, want %v", err, boom)
	}
	for i, mt := range []*utils.MockTransport{a, b} {
		if got := len(mt.Messages()); got != 1 {
			t.Errorf("transport %d received %d messages, want 1", i, got)
		}
	}

	if err := m.Close(); !errors.Is(err, boom) {
		t.Errorf("Close() error = %v, want %v", err, boom)
	}
	if !a.Closed || !b.Closed {
		t.Error("Close() skipped transports after a failure")
	}
}

func TestLoggingTransport(t *testing.T) {
	lt := NewLoggingTransport()
	s := report.NewSpectrum(spectrum.Result{Pwr: []float64{1, 4}, RepeatsDone: 1}, 0, 2)
	for _, v := range []any{s, 42} {
		if err := lt.Send(v); err != nil {
			t.Errorf("Send(%T) error = %v", v, err)
		}
	}
	if err := lt.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestWebSocketBroadcast(t *testing.T) {
	wst := NewWebSocketTransport("")
	defer wst.Close()

	srv := httptest.NewServer(wst.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for wst.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	s := report.NewSpectrum(spectrum.Result{Session: "abc", Pwr: []float64{10, 100}, RepeatsDone: 1}, 1000, 200)
	if err := wst.Send(s); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got report.Spectrum
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.Session != "abc" || len(got.PowerDB) != 2 || got.Frequencies[1] != 1000 {
		t.Errorf("received %+v", got)
	}
}

func TestWebSocketCloseTwice(t *testing.T) {
	wst := NewWebSocketTransport("")
	if err := wst.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := wst.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
