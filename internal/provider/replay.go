package provider

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/abhisek/geofix/internal/geo"
)

// replayLine is one JSONL record in a recorded track file.
type replayLine struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	AccuracyM float64 `json:"accuracy_m"`
	Time      string  `json:"time"`

	// AfterMs is the delay before delivering this sample, relative to the
	// previous line.
	AfterMs int64 `json:"after_ms"`
}

// Replay delivers samples from a JSONL track file on their recorded
// schedule. Lets the CLI run without positioning hardware.
type Replay struct {
	path string

	mu      sync.Mutex
	obs     Observer
	stop    chan struct{}
	stopped bool
}

// NewReplay creates a Replay provider for the given track file.
func NewReplay(path string) *Replay {
	return &Replay{path: path, stop: make(chan struct{})}
}

func (r *Replay) Subscribe(obs Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = obs
}

// Start reads and delivers the track on a background goroutine.
func (r *Replay) Start() {
	go r.run()
}

// Stop halts delivery. Safe to call more than once.
func (r *Replay) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stopped {
		r.stopped = true
		close(r.stop)
	}
}

// CachedSample always reports no cached sample; a track file has no
// notion of a last-known fix prior to replay.
func (r *Replay) CachedSample() (geo.Sample, bool) {
	return geo.Sample{}, false
}

func (r *Replay) run() {
	r.mu.Lock()
	obs := r.obs
	r.mu.Unlock()
	if obs == nil {
		return
	}

	f, err := os.Open(r.path)
	if err != nil {
		obs.OnFailure(fmt.Errorf("open replay file: %w", err))
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var line replayLine
		if err := json.Unmarshal(raw, &line); err != nil {
			obs.OnFailure(fmt.Errorf("replay line %d: %w", lineNo, err))
			return
		}

		ts, err := time.Parse(time.RFC3339, line.Time)
		if err != nil {
			obs.OnFailure(fmt.Errorf("replay line %d time: %w", lineNo, err))
			return
		}

		if line.AfterMs > 0 {
			select {
			case <-r.stop:
				return
			case <-time.After(time.Duration(line.AfterMs) * time.Millisecond):
			}
		} else {
			select {
			case <-r.stop:
				return
			default:
			}
		}

		obs.OnSamples([]geo.Sample{{
			Latitude:  line.Lat,
			Longitude: line.Lon,
			AccuracyM: line.AccuracyM,
			Time:      ts,
		}})
	}

	if err := scanner.Err(); err != nil {
		obs.OnFailure(fmt.Errorf("read replay file: %w", err))
	}
	// End of track: the query's deadline decides what happens with
	// whatever was delivered.
}
