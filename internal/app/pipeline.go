package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/track"
	"github.com/ayusman/mudra/internal/vision"
)

// runPipeline is the main detection loop that processes frames from the
// camera. It manages the state transitions between idle and active modes
// based on hand presence.
//
// Pipeline logic:
// 1. Start in idle mode (low FPS)
// 2. When a hand appears, switch to active mode (high FPS)
// 3. Mask out detected faces before segmentation
// 4. Record the smoothed hand center into a motion path
// 5. Match completed paths against the trained patterns
// 6. After 2s without a hand, flush the path and switch back to idle
func (a *App) runPipeline(stopCh chan struct{}) {
	exclusion := gocv.NewMat()
	defer exclusion.Close()

	activeMode := false
	lastSeenTime := time.Now()

	frameInterval := time.Second / time.Duration(a.config.IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// Skip processing if detection is disabled
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Mask out faces so skin segmentation ignores them
			var excl *gocv.Mat
			if a.faces != nil {
				a.faces.Mask(*frame, &exclusion)
				excl = &exclusion
			}

			// Step 2: Pose detection
			now := time.Now()
			pose, err := a.Detector().Process(frame, excl)
			if err != nil {
				log.Printf("Error detecting pose: %v", err)
				frame.Close()
				continue
			}

			// Step 3: Mode switching on hand presence
			if pose.Found() {
				lastSeenTime = now

				if !activeMode {
					activeMode = true
					a.Camera().SetFPS(a.config.ActiveFPS)
					frameInterval = time.Second / time.Duration(a.config.ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				if time.Since(lastSeenTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.Camera().SetFPS(a.config.IdleFPS)
					frameInterval = time.Second / time.Duration(a.config.IdleFPS)
					ticker.Reset(frameInterval)

					// A path cut off by the idle switch still counts
					if path, ok := a.recorder.Flush(); ok {
						a.matchPath(path, now)
					}
					log.Println("Switched to idle mode")
				}
			}

			// Step 4: Record the center into the motion path
			if path, ok := a.recorder.Observe(pose.Center, now); ok {
				a.matchPath(path, now)
			}

			// Step 5: Publish the annotated frame for the stream and UI
			vision.DrawOverlay(frame, pose)
			if hd, ok := a.Detector().(*vision.HandDetector); ok {
				mask := hd.SnapshotMask()
				vision.DrawMaskCorner(frame, mask)
				mask.Close()
			}
			a.publishFrame(frame, pose, now)
		}
	}
}

// matchPath compares a completed motion path against the trained patterns
// and publishes the best match, if any.
func (a *App) matchPath(path []track.PathPoint, at time.Time) {
	matches := a.matcher.Match(path)
	if len(matches) == 0 {
		return
	}

	best := matches[0]
	log.Printf("Pattern matched: %s (score: %.3f, distance: %.3f)",
		best.Pattern.Name, best.Score, best.Distance)
	a.publishMatch(best, at)
}
