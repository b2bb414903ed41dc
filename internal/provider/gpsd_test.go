package provider

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"
)

// serveGpsd accepts one connection, waits for the WATCH command, writes the
// given lines, then keeps the connection open until the listener closes.
func serveGpsd(t *testing.T, lines ...string) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		// Consume the ?WATCH command before streaming.
		r := bufio.NewReader(conn)
		if _, err := r.ReadString('\n'); err != nil {
			return
		}

		for _, line := range lines {
			if _, err := conn.Write([]byte(line + "\n")); err != nil {
				return
			}
		}
		// Hold the stream open; the provider's Stop closes its end.
		time.Sleep(5 * time.Second)
	}()

	return ln.Addr().String()
}

func TestGpsd_ParsesTPVStream(t *testing.T) {
	addr := serveGpsd(t,
		`{"class":"VERSION","release":"3.25"}`,
		`{"class":"SKY","satellites":[]}`,
		`{"class":"TPV","mode":1}`,
		`{"class":"TPV","mode":3,"lat":48.8584,"lon":2.2945,"time":"2026-03-14T12:00:00Z","eph":12.5}`,
		`{"class":"TPV","mode":2,"lat":48.8590,"lon":2.2950,"time":"2026-03-14T12:00:05Z","epx":20,"epy":35}`,
	)

	p := NewGpsd(addr, time.Second)
	obs := newRecordingObserver()
	p.Subscribe(obs)
	p.Start()
	defer p.Stop()

	obs.waitEvents(t, 2)
	batches, failures := obs.snapshot()
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}

	first := batches[0][0]
	if first.Latitude != 48.8584 || first.AccuracyM != 12.5 {
		t.Errorf("first sample = %+v", first)
	}
	if !first.Time.Equal(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("first sample time = %s", first.Time)
	}

	// Without eph the larger of epx/epy stands in for horizontal accuracy.
	second := batches[1][0]
	if second.AccuracyM != 35 {
		t.Errorf("second sample accuracy = %v, want 35", second.AccuracyM)
	}

	cached, ok := p.CachedSample()
	if !ok || cached != second {
		t.Errorf("CachedSample = %+v, %v, want last fix", cached, ok)
	}
}

func TestGpsd_DialFailureReportsOnce(t *testing.T) {
	// Grab a port and close it so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	p := NewGpsd(addr, 200*time.Millisecond)
	obs := newRecordingObserver()
	p.Subscribe(obs)
	p.Start()

	obs.waitEvents(t, 1)
	_, failures := obs.snapshot()
	if len(failures) != 1 {
		t.Fatalf("failures = %v, want exactly one", failures)
	}
	if !strings.Contains(failures[0].Error(), "dial gpsd") {
		t.Errorf("failure = %v, want dial error", failures[0])
	}
}

func TestGpsd_NoFailureAfterStop(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	p := NewGpsd(addr, 200*time.Millisecond)
	obs := newRecordingObserver()
	p.Subscribe(obs)
	p.Stop()
	p.Start()

	select {
	case <-obs.arrived:
		t.Fatal("event delivered after Stop")
	case <-time.After(500 * time.Millisecond):
	}
}
