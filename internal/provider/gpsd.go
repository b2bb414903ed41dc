package provider

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/abhisek/geofix/internal/geo"
)

// watchCommand enables streaming JSON reports from gpsd.
const watchCommand = `?WATCH={"enable":true,"json":true};` + "\n"

// unknownAccuracyM is assigned when a TPV report carries no error estimate.
// Wide enough to classify as untrusted, so the sample survives only as a
// last-resort fallback.
const unknownAccuracyM = 5000.0

// Gpsd streams TPV reports from a gpsd daemon over TCP.
type Gpsd struct {
	addr        string
	dialTimeout time.Duration

	mu      sync.Mutex
	obs     Observer
	conn    net.Conn
	stopped bool
	lastFix *geo.Sample

	failOnce sync.Once
}

// NewGpsd creates a Gpsd provider for the given TCP address.
func NewGpsd(addr string, dialTimeout time.Duration) *Gpsd {
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	return &Gpsd{addr: addr, dialTimeout: dialTimeout}
}

func (g *Gpsd) Subscribe(obs Observer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.obs = obs
}

// Start dials gpsd and streams reports on a background goroutine.
func (g *Gpsd) Start() {
	go g.run()
}

// Stop closes the connection, which unblocks the reader goroutine.
func (g *Gpsd) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped = true
	if g.conn != nil {
		g.conn.Close()
		g.conn = nil
	}
}

// CachedSample returns the last fix seen on this connection, if any.
func (g *Gpsd) CachedSample() (geo.Sample, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastFix == nil {
		return geo.Sample{}, false
	}
	return *g.lastFix, true
}

// tpvReport is the subset of a gpsd TPV record this adapter consumes.
type tpvReport struct {
	Class string  `json:"class"`
	Mode  int     `json:"mode"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Time  string  `json:"time"`
	Eph   float64 `json:"eph"`
	Epx   float64 `json:"epx"`
	Epy   float64 `json:"epy"`
}

func (g *Gpsd) run() {
	conn, err := net.DialTimeout("tcp", g.addr, g.dialTimeout)
	if err != nil {
		g.fail(fmt.Errorf("dial gpsd %s: %w", g.addr, err))
		return
	}

	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		conn.Close()
		return
	}
	g.conn = conn
	g.mu.Unlock()

	if _, err := conn.Write([]byte(watchCommand)); err != nil {
		g.fail(fmt.Errorf("enable gpsd watch: %w", err))
		return
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var tpv tpvReport
		if err := json.Unmarshal(scanner.Bytes(), &tpv); err != nil {
			// Interleaved SKY/VERSION records that fail our shape are
			// skipped, not fatal; only a broken stream is.
			continue
		}
		if tpv.Class != "TPV" || tpv.Mode < 2 {
			continue
		}

		sample, ok := sampleFromTPV(tpv)
		if !ok {
			continue
		}

		g.mu.Lock()
		stopped := g.stopped
		obs := g.obs
		g.lastFix = &sample
		g.mu.Unlock()

		if stopped || obs == nil {
			return
		}
		obs.OnSamples([]geo.Sample{sample})
	}

	if err := scanner.Err(); err != nil {
		g.fail(fmt.Errorf("read gpsd stream: %w", err))
	}
}

// fail reports at most one failure, and never after Stop.
func (g *Gpsd) fail(err error) {
	g.mu.Lock()
	stopped := g.stopped
	obs := g.obs
	g.mu.Unlock()

	if stopped || obs == nil {
		return
	}
	g.failOnce.Do(func() {
		obs.OnFailure(err)
	})
}

// sampleFromTPV converts a TPV report to a Sample. Reports without a
// parseable timestamp are dropped.
func sampleFromTPV(tpv tpvReport) (geo.Sample, bool) {
	ts, err := time.Parse(time.RFC3339, tpv.Time)
	if err != nil {
		return geo.Sample{}, false
	}

	acc := tpv.Eph
	if acc <= 0 {
		acc = max(tpv.Epx, tpv.Epy)
	}
	if acc <= 0 {
		acc = unknownAccuracyM
	}

	return geo.Sample{
		Latitude:  tpv.Lat,
		Longitude: tpv.Lon,
		AccuracyM: acc,
		Time:      ts,
	}, true
}
