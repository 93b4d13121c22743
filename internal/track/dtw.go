package track

import (
	"math"
	"sort"
	"sync"
)

// DTWDistance computes the dynamic time warping distance between two paths,
// normalized by the longer path's length. Either path being empty yields
// infinity.
func DTWDistance(a, b []PathPoint) float64 {
	n := len(a)
	m := len(b)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}

	dtw := make([][]float64, n+1)
	for i := range dtw {
		dtw[i] = make([]float64, m+1)
		for j := range dtw[i] {
			dtw[i][j] = math.Inf(1)
		}
	}
	dtw[0][0] = 0

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := sampleDistance(a[i-1], b[j-1])
			dtw[i][j] = cost + min3(dtw[i-1][j], dtw[i][j-1], dtw[i-1][j-1])
		}
	}

	longer := n
	if m > longer {
		longer = m
	}
	return dtw[n][m] / float64(longer)
}

// sampleDistance is the Euclidean distance between two path samples.
func sampleDistance(a, b PathPoint) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func min3(a, b, c float64) float64 {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}

// Matcher compares motion paths against a set of registered patterns.
// It is safe for concurrent use; the pipeline matches while the HTTP API
// swaps pattern sets.
type Matcher struct {
	mu       sync.RWMutex
	patterns []*Pattern
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// AddPattern registers a pattern. Nil patterns are ignored.
func (m *Matcher) AddPattern(p *Pattern) {
	if p == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, p)
}

// RemovePattern removes a pattern by ID.
func (m *Matcher) RemovePattern(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.patterns {
		if p.ID == id {
			m.patterns = append(m.patterns[:i], m.patterns[i+1:]...)
			return
		}
	}
}

// SetPatterns replaces the whole pattern set.
func (m *Matcher) SetPatterns(patterns []*Pattern) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = patterns
}

// Len returns the number of registered patterns.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.patterns)
}

// Match scores the path against every registered pattern and returns the
// matches within tolerance, best first. Paths are scale-normalized before
// comparison, so a small circle matches a large circle template.
func (m *Matcher) Match(path []PathPoint) []Match {
	if len(path) == 0 {
		return nil
	}

	input := normalizePath(path)
	if len(input) == 0 {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Match
	for _, pattern := range m.patterns {
		if len(pattern.Path) == 0 {
			continue
		}

		distance := DTWDistance(input, normalizePath(pattern.Path))
		if math.IsInf(distance, 1) || distance > pattern.Tolerance {
			continue
		}

		matches = append(matches, Match{
			Pattern:  pattern,
			Score:    1.0 / (1.0 + distance),
			Distance: distance,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// normalizePath scales path coordinates into the 0-1 square, preserving
// timestamps. A single-point path collapses to the origin.
func normalizePath(path []PathPoint) []PathPoint {
	n := len(path)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []PathPoint{{Timestamp: path[0].Timestamp}}
	}

	minX, maxX := path[0].X, path[0].X
	minY, maxY := path[0].Y, path[0].Y
	for _, p := range path {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY

	normalized := make([]PathPoint, n)
	for i, p := range path {
		var nx, ny float64
		if rangeX > 0 {
			nx = (p.X - minX) / rangeX
		}
		if rangeY > 0 {
			ny = (p.Y - minY) / rangeY
		}
		normalized[i] = PathPoint{X: nx, Y: ny, Timestamp: p.Timestamp}
	}

	return normalized
}
