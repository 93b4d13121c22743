package track

import (
	"encoding/json"
	"fmt"
)

// Sample is one recorded motion path submitted for training.
type Sample struct {
	Path      []PathPoint `json:"path"`
	Timestamp int64       `json:"timestamp"`
}

// Trainer folds recorded samples into a single pattern path.
type Trainer struct{}

// NewTrainer creates a Trainer.
func NewTrainer() *Trainer {
	return &Trainer{}
}

// Train averages multiple path samples into one template path. Sample paths
// of different lengths are resampled to the first sample's length before
// averaging.
func (t *Trainer) Train(samples []json.RawMessage) ([]PathPoint, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	var paths [][]PathPoint
	for i, raw := range samples {
		var sample Sample
		if err := json.Unmarshal(raw, &sample); err != nil {
			return nil, fmt.Errorf("failed to parse sample %d: %w", i, err)
		}
		if len(sample.Path) < 2 {
			return nil, fmt.Errorf("sample %d has insufficient path points", i)
		}
		paths = append(paths, sample.Path)
	}

	target := len(paths[0])
	averaged := make([]PathPoint, target)

	for i := 0; i < target; i++ {
		var sumX, sumY float64
		var refTimestamp int64

		for idx, path := range paths {
			resampled := resamplePath(path, target)
			sumX += resampled[i].X
			sumY += resampled[i].Y
			if idx == 0 {
				refTimestamp = resampled[i].Timestamp
			}
		}

		n := float64(len(paths))
		averaged[i] = PathPoint{
			X:         sumX / n,
			Y:         sumY / n,
			Timestamp: refTimestamp,
		}
	}

	return averaged, nil
}

// resamplePath linearly interpolates a path to exactly targetLength points.
func resamplePath(path []PathPoint, targetLength int) []PathPoint {
	if len(path) == 0 {
		return nil
	}
	if len(path) == 1 || targetLength <= 1 {
		return []PathPoint{path[0]}
	}

	result := make([]PathPoint, targetLength)
	for i := 0; i < targetLength; i++ {
		pos := float64(i) / float64(targetLength-1) * float64(len(path)-1)

		idx := int(pos)
		if idx >= len(path)-1 {
			idx = len(path) - 2
		}
		frac := pos - float64(idx)

		p1 := path[idx]
		p2 := path[idx+1]
		result[i] = PathPoint{
			X:         p1.X + frac*(p2.X-p1.X),
			Y:         p1.Y + frac*(p2.Y-p1.Y),
			Timestamp: p1.Timestamp + int64(frac*float64(p2.Timestamp-p1.Timestamp)),
		}
	}

	return result
}
