package track

import (
	"encoding/json"
	"image"
	"math"
	"testing"
	"time"
)

func TestRecorder_CompletesOnGap(t *testing.T) {
	r := NewRecorder(100, 3, 2)
	now := time.Now()

	pts := []image.Point{
		{X: 100, Y: 100}, {X: 120, Y: 100}, {X: 140, Y: 100}, {X: 160, Y: 100},
	}
	for i := range pts {
		if path, done := r.Observe(&pts[i], now.Add(time.Duration(i)*100*time.Millisecond)); done {
			t.Fatalf("path completed early at point %d: %v", i, path)
		}
	}
	if r.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", r.Len())
	}

	// One missed frame is tolerated, the second ends the path.
	if _, done := r.Observe(nil, now); done {
		t.Fatal("path completed after a single missed frame")
	}
	path, done := r.Observe(nil, now)
	if !done {
		t.Fatal("path not completed after the gap limit")
	}
	if len(path) != 4 {
		t.Errorf("path has %d points, want 4", len(path))
	}
	if path[0].X != 100 || path[3].X != 160 {
		t.Errorf("path endpoints = %f..%f, want 100..160", path[0].X, path[3].X)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after completion, want 0", r.Len())
	}
}

func TestRecorder_DiscardsShortPaths(t *testing.T) {
	r := NewRecorder(100, 3, 1)
	now := time.Now()

	p := image.Pt(50, 50)
	r.Observe(&p, now)
	r.Observe(&p, now)

	if _, done := r.Observe(nil, now); done {
		t.Error("two-point path must be discarded as jitter")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after discard, want 0", r.Len())
	}
}

func TestRecorder_CompletesAtCapacity(t *testing.T) {
	r := NewRecorder(5, 2, 2)
	now := time.Now()

	var path []PathPoint
	done := false
	for i := 0; i < 5; i++ {
		p := image.Pt(i*10, 0)
		path, done = r.Observe(&p, now.Add(time.Duration(i)*time.Second))
	}
	if !done {
		t.Fatal("path not completed at capacity")
	}
	if len(path) != 5 {
		t.Errorf("path has %d points, want 5", len(path))
	}

	// Timestamps carry through in milliseconds.
	if got := path[1].Timestamp - path[0].Timestamp; got != 1000 {
		t.Errorf("timestamp delta = %d ms, want 1000", got)
	}
}

func TestTrainer_Train(t *testing.T) {
	tr := NewTrainer()

	t.Run("averages equal-length samples", func(t *testing.T) {
		s1, _ := json.Marshal(Sample{Path: []PathPoint{{X: 0, Y: 0}, {X: 10, Y: 0}}})
		s2, _ := json.Marshal(Sample{Path: []PathPoint{{X: 0, Y: 4}, {X: 10, Y: 4}}})

		avg, err := tr.Train([]json.RawMessage{s1, s2})
		if err != nil {
			t.Fatalf("Train() error: %v", err)
		}
		if len(avg) != 2 {
			t.Fatalf("averaged path has %d points, want 2", len(avg))
		}
		if avg[0].Y != 2 || avg[1].Y != 2 {
			t.Errorf("averaged Y = %f,%f, want 2,2", avg[0].Y, avg[1].Y)
		}
	})

	t.Run("resamples unequal lengths", func(t *testing.T) {
		s1, _ := json.Marshal(Sample{Path: []PathPoint{
			{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0},
		}})
		s2, _ := json.Marshal(Sample{Path: []PathPoint{
			{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 4, Y: 0}, {X: 6, Y: 0}, {X: 8, Y: 0}, {X: 10, Y: 0},
		}})

		avg, err := tr.Train([]json.RawMessage{s1, s2})
		if err != nil {
			t.Fatalf("Train() error: %v", err)
		}
		// Output matches the first sample's length.
		if len(avg) != 3 {
			t.Fatalf("averaged path has %d points, want 3", len(avg))
		}
		if math.Abs(avg[0].X) > 1e-9 || math.Abs(avg[2].X-10) > 1e-9 {
			t.Errorf("averaged endpoints = %f..%f, want 0..10", avg[0].X, avg[2].X)
		}
		if math.Abs(avg[1].X-5) > 1e-9 {
			t.Errorf("averaged midpoint = %f, want 5", avg[1].X)
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		if _, err := tr.Train(nil); err == nil {
			t.Error("Train(nil) succeeded, want error")
		}

		short, _ := json.Marshal(Sample{Path: []PathPoint{{X: 0, Y: 0}}})
		if _, err := tr.Train([]json.RawMessage{short}); err == nil {
			t.Error("Train() accepted a single-point sample")
		}

		if _, err := tr.Train([]json.RawMessage{json.RawMessage(`{bad`)}); err == nil {
			t.Error("Train() accepted malformed JSON")
		}
	})
}

func TestResamplePath(t *testing.T) {
	path := []PathPoint{
		{X: 0, Y: 0, Timestamp: 0},
		{X: 10, Y: 10, Timestamp: 100},
	}

	out := resamplePath(path, 5)
	if len(out) != 5 {
		t.Fatalf("resampled to %d points, want 5", len(out))
	}
	if out[0] != path[0] || out[4] != path[1] {
		t.Error("resampling must preserve endpoints")
	}
	if math.Abs(out[2].X-5) > 1e-9 || math.Abs(out[2].Y-5) > 1e-9 {
		t.Errorf("midpoint = (%f,%f), want (5,5)", out[2].X, out[2].Y)
	}
	if out[2].Timestamp != 50 {
		t.Errorf("midpoint timestamp = %d, want 50", out[2].Timestamp)
	}
}
