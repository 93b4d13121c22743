package track

import (
	"math"
	"testing"
)

func TestDTWDistance_IdenticalPaths(t *testing.T) {
	path := []PathPoint{
		{X: 0, Y: 0, Timestamp: 0},
		{X: 1, Y: 1, Timestamp: 100},
		{X: 2, Y: 2, Timestamp: 200},
	}

	if d := DTWDistance(path, path); d != 0 {
		t.Errorf("distance = %f for identical paths, want 0", d)
	}
}

func TestDTWDistance_DifferentPaths(t *testing.T) {
	horizontal := []PathPoint{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0},
	}
	shifted := []PathPoint{
		{X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2},
	}

	if d := DTWDistance(horizontal, shifted); d <= 0 {
		t.Errorf("distance = %f for different paths, want > 0", d)
	}
}

func TestDTWDistance_SpeedInvariant(t *testing.T) {
	// The same trajectory sampled at different rates should stay close.
	fast := []PathPoint{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0},
	}
	slow := []PathPoint{
		{X: 0, Y: 0}, {X: 0.25, Y: 0}, {X: 0.5, Y: 0}, {X: 0.75, Y: 0},
		{X: 1, Y: 0}, {X: 1.25, Y: 0}, {X: 1.5, Y: 0}, {X: 1.75, Y: 0},
		{X: 2, Y: 0},
	}

	if d := DTWDistance(fast, slow); d > 0.5 {
		t.Errorf("distance = %f for resampled trajectory, want < 0.5", d)
	}
}

func TestDTWDistance_EmptyPaths(t *testing.T) {
	path := []PathPoint{{X: 0, Y: 0}, {X: 1, Y: 1}}

	if d := DTWDistance(nil, path); !math.IsInf(d, 1) {
		t.Errorf("distance = %f with empty first path, want +Inf", d)
	}
	if d := DTWDistance(path, nil); !math.IsInf(d, 1) {
		t.Errorf("distance = %f with empty second path, want +Inf", d)
	}
}

func TestNormalizePath(t *testing.T) {
	t.Run("scales into unit square", func(t *testing.T) {
		path := []PathPoint{
			{X: 100, Y: 200, Timestamp: 1},
			{X: 300, Y: 400, Timestamp: 2},
			{X: 200, Y: 300, Timestamp: 3},
		}

		n := normalizePath(path)
		for i, p := range n {
			if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
				t.Errorf("point %d = (%f,%f), outside unit square", i, p.X, p.Y)
			}
		}
		if n[0].X != 0 || n[0].Y != 0 {
			t.Errorf("min corner = (%f,%f), want (0,0)", n[0].X, n[0].Y)
		}
		if n[1].X != 1 || n[1].Y != 1 {
			t.Errorf("max corner = (%f,%f), want (1,1)", n[1].X, n[1].Y)
		}
		if n[2].Timestamp != 3 {
			t.Error("timestamps must be preserved")
		}
	})

	t.Run("degenerate axis maps to zero", func(t *testing.T) {
		// A purely horizontal path has no Y range.
		path := []PathPoint{{X: 0, Y: 5}, {X: 10, Y: 5}}
		n := normalizePath(path)
		if n[0].Y != 0 || n[1].Y != 0 {
			t.Errorf("flat axis = %f,%f, want 0,0", n[0].Y, n[1].Y)
		}
	})

	t.Run("single point collapses to origin", func(t *testing.T) {
		n := normalizePath([]PathPoint{{X: 42, Y: 17, Timestamp: 9}})
		if n[0].X != 0 || n[0].Y != 0 || n[0].Timestamp != 9 {
			t.Errorf("got %+v, want origin with timestamp 9", n[0])
		}
	})
}

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher()

	swipe := &Pattern{
		ID:   "p1",
		Name: "swipe-right",
		Path: []PathPoint{
			{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 100, Y: 0},
		},
		Tolerance: 0.3,
	}
	circle := &Pattern{
		ID:   "p2",
		Name: "circle",
		Path: []PathPoint{
			{X: 50, Y: 0}, {X: 100, Y: 50}, {X: 50, Y: 100}, {X: 0, Y: 50}, {X: 50, Y: 0},
		},
		Tolerance: 0.3,
	}
	m.AddPattern(swipe)
	m.AddPattern(circle)

	t.Run("matches scale invariantly", func(t *testing.T) {
		// A much larger horizontal sweep still matches the swipe template.
		input := []PathPoint{
			{X: 100, Y: 240}, {X: 300, Y: 240}, {X: 500, Y: 240},
		}
		matches := m.Match(input)
		if len(matches) == 0 {
			t.Fatal("no matches for a horizontal sweep")
		}
		if matches[0].Pattern.ID != "p1" {
			t.Errorf("best match = %s, want p1", matches[0].Pattern.ID)
		}
		if matches[0].Score <= 0 || matches[0].Score > 1 {
			t.Errorf("score = %f, want (0, 1]", matches[0].Score)
		}
	})

	t.Run("rejects out-of-tolerance paths", func(t *testing.T) {
		// A zigzag resembles neither template.
		input := []PathPoint{
			{X: 0, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 200}, {X: 100, Y: 300},
		}
		for _, match := range m.Match(input) {
			if match.Distance > match.Pattern.Tolerance {
				t.Errorf("match %s exceeds tolerance: %f > %f",
					match.Pattern.ID, match.Distance, match.Pattern.Tolerance)
			}
		}
	})

	t.Run("empty path yields no matches", func(t *testing.T) {
		if got := m.Match(nil); got != nil {
			t.Errorf("Match(nil) = %v, want nil", got)
		}
	})
}

func TestMatcher_AddRemove(t *testing.T) {
	m := NewMatcher()
	m.AddPattern(nil)
	if m.Len() != 0 {
		t.Error("nil pattern must be ignored")
	}

	m.AddPattern(&Pattern{ID: "a", Path: []PathPoint{{X: 0}, {X: 1}}, Tolerance: 1})
	m.AddPattern(&Pattern{ID: "b", Path: []PathPoint{{X: 0}, {X: 1}}, Tolerance: 1})
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}

	m.RemovePattern("a")
	if m.Len() != 1 {
		t.Errorf("Len() = %d after remove, want 1", m.Len())
	}
	m.RemovePattern("missing")
	if m.Len() != 1 {
		t.Errorf("Len() = %d after removing a missing ID, want 1", m.Len())
	}

	m.SetPatterns(nil)
	if m.Len() != 0 {
		t.Errorf("Len() = %d after SetPatterns(nil), want 0", m.Len())
	}
}
