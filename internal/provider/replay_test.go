package provider

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/geofix/internal/config"
)

func testConfig(providerName string) config.Config {
	cfg := config.DefaultConfig()
	cfg.Provider = providerName
	cfg.Replay.Path = "track.jsonl"
	return cfg
}

func writeTrack(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReplay_DeliversTrack(t *testing.T) {
	path := writeTrack(t,
		`{"lat":40.4168,"lon":-3.7038,"accuracy_m":80,"time":"2026-03-14T12:00:00Z"}`,
		``,
		`{"lat":40.4170,"lon":-3.7040,"accuracy_m":40,"time":"2026-03-14T12:00:10Z","after_ms":1}`,
	)

	p := NewReplay(path)
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
	if batches[0][0].AccuracyM != 80 || batches[1][0].AccuracyM != 40 {
		t.Errorf("samples out of order: %v", batches)
	}
}

func TestReplay_MalformedLineFails(t *testing.T) {
	path := writeTrack(t,
		`{"lat":40.4168,"lon":-3.7038,"accuracy_m":80,"time":"2026-03-14T12:00:00Z"}`,
		`not json`,
	)

	p := NewReplay(path)
	obs := newRecordingObserver()
	p.Subscribe(obs)
	p.Start()

	obs.waitEvents(t, 2)
	batches, failures := obs.snapshot()
	if len(batches) != 1 {
		t.Errorf("batches before failure = %d, want 1", len(batches))
	}
	if len(failures) != 1 || !strings.Contains(failures[0].Error(), "line 2") {
		t.Errorf("failures = %v, want line 2 error", failures)
	}
}

func TestReplay_MissingFileFails(t *testing.T) {
	p := NewReplay(filepath.Join(t.TempDir(), "nope.jsonl"))
	obs := newRecordingObserver()
	p.Subscribe(obs)
	p.Start()

	obs.waitEvents(t, 1)
	_, failures := obs.snapshot()
	if len(failures) != 1 || !strings.Contains(failures[0].Error(), "open replay file") {
		t.Errorf("failures = %v", failures)
	}
}

func TestNew_FactorySelection(t *testing.T) {
	tests := []struct {
		provider string
		wantErr  bool
	}{
		{"gpsd", false},
		{"replay", false},
		{"script", false},
		{"bogus", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := testConfig(tt.provider)
			p, err := New(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v", tt.provider, err)
			}
			if !tt.wantErr && p == nil {
				t.Fatal("nil provider without error")
			}
		})
	}
}

func TestSmokeScript_HasCachedAndFreshSample(t *testing.T) {
	p := newSmokeScript()
	cached, ok := p.CachedSample()
	if !ok {
		t.Fatal("smoke script should seed a cached sample")
	}
	if cached.AccuracyM <= 100 && time.Since(cached.Time) <= 30*time.Second {
		t.Error("cached sample should not already be perfect, or the fresh sample is never exercised")
	}
}
