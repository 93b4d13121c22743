// Package app wires the capture, vision and tracking layers into the
// detection pipeline and exposes its live state to the HTTP server.
package app

import (
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/track"
	"github.com/ayusman/mudra/internal/vision"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no hand is in view.
	IdleFPS = 5
	// ActiveFPS is the frame rate while a hand is being tracked.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds without a hand before
	// switching back to idle mode.
	IdleTimeoutMs = 2000

	// PathMaxPoints caps a recorded motion path.
	PathMaxPoints = 60
	// PathMinPoints is the minimum path length worth matching.
	PathMinPoints = 10
	// PathGapFrames is how many consecutive empty frames end a path.
	PathGapFrames = 5
)

// Config holds configuration options for the application.
type Config struct {
	Store       *store.Store
	CameraID    int
	Mirror      bool
	CascadePath string
	IdleFPS     int
	ActiveFPS   int
}

// App owns the camera and the detection pipeline. The HTTP server and the
// tray read its published state; they never touch the camera directly.
type App struct {
	config   Config
	camera   capture.Camera
	detector vision.Detector
	faces    *vision.FaceMasker
	matcher  *track.Matcher
	recorder *track.Recorder

	enabled bool
	stopCh  chan struct{}
	mu      sync.RWMutex

	// Published pipeline state, guarded by stateMu.
	stateMu     sync.RWMutex
	lastPose    vision.Pose
	lastPoseAt  time.Time
	lastMatch   *track.Match
	lastMatchAt time.Time
	annotated   gocv.Mat
	hasFrame    bool
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.IdleFPS <= 0 {
		config.IdleFPS = IdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = ActiveFPS
	}

	a := &App{
		config:    config,
		camera:    capture.NewCamera(config.CameraID, config.Mirror),
		detector:  vision.NewHandDetector(vision.DefaultConfig()),
		matcher:   track.NewMatcher(),
		recorder:  track.NewRecorder(PathMaxPoints, PathMinPoints, PathGapFrames),
		annotated: gocv.NewMat(),
	}

	if config.CascadePath != "" {
		if masker, err := vision.NewFaceMasker(config.CascadePath); err == nil {
			a.faces = masker
			log.Println("Face exclusion enabled")
		} else {
			log.Printf("Face exclusion unavailable (%v), continuing without", err)
		}
	}

	return a
}

// SetEnabled enables or disables pose detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether pose detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the pose detector implementation to use.
func (a *App) SetDetector(d vision.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera sets the camera implementation to use.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Detector returns the pose detector.
func (a *App) Detector() vision.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Matcher returns the motion pattern matcher.
func (a *App) Matcher() *track.Matcher {
	return a.matcher
}

// LoadPatterns loads trained motion patterns from the database into the
// matcher, replacing the current set. Patterns without a trained path are
// skipped.
func (a *App) LoadPatterns() error {
	if a.config.Store == nil {
		return nil
	}

	stored, err := a.config.Store.Patterns().List()
	if err != nil {
		return err
	}

	var patterns []*track.Pattern
	for _, p := range stored {
		path, err := a.config.Store.Patterns().GetPath(p.ID)
		if err != nil {
			log.Printf("Failed to load path for %s: %v", p.Name, err)
			continue
		}
		if len(path) == 0 {
			continue
		}

		patterns = append(patterns, &track.Pattern{
			ID:        p.ID,
			Name:      p.Name,
			Path:      storePathToTrack(path),
			Tolerance: p.Tolerance,
		})
	}

	a.matcher.SetPatterns(patterns)
	log.Printf("Loaded %d trained patterns from database", len(patterns))
	return nil
}

// LoadProfile applies the active calibration profile, if any.
func (a *App) LoadProfile() error {
	if a.config.Store == nil {
		return nil
	}

	profile, err := a.config.Store.Profiles().GetActive()
	if err != nil {
		return err
	}
	if profile == nil {
		return nil
	}

	a.ApplyProfile(profile)
	log.Printf("Applied calibration profile %q", profile.Name)
	return nil
}

// ApplyProfile pushes a profile's skin color range into the live detector.
func (a *App) ApplyProfile(p *store.Profile) {
	if p == nil {
		return
	}
	if hd, ok := a.Detector().(*vision.HandDetector); ok {
		hd.SetSkinRange(
			gocv.NewScalar(p.LowerH, p.LowerS, p.LowerV, 0),
			gocv.NewScalar(p.UpperH, p.UpperS, p.UpperV, 0),
		)
	}
}

// Recalibrate discards the detector's learned background so it can relearn
// the current scene.
func (a *App) Recalibrate() {
	if hd, ok := a.Detector().(*vision.HandDetector); ok {
		hd.Recalibrate()
		log.Println("Background recalibration requested")
	}
}

// storePathToTrack converts store.PathPoint slice to track.PathPoint slice.
func storePathToTrack(path []store.PathPoint) []track.PathPoint {
	points := make([]track.PathPoint, len(path))
	for i, p := range path {
		points[i] = track.PathPoint{X: p.X, Y: p.Y, Timestamp: p.TimestampMS}
	}
	return points
}

// Start begins the detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.camera.SetFPS(a.config.IdleFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	if a.faces != nil {
		a.faces.Close()
	}

	a.stateMu.Lock()
	a.annotated.Close()
	a.annotated = gocv.NewMat()
	a.hasFrame = false
	a.stateMu.Unlock()

	log.Println("Detection pipeline stopped")
}

// LatestPose returns the most recently published pose and its capture time.
func (a *App) LatestPose() (vision.Pose, time.Time) {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.lastPose, a.lastPoseAt
}

// LastMatch returns a copy of the most recent pattern match and when it
// happened, or nil when no pattern has matched yet.
func (a *App) LastMatch() (*track.Match, time.Time) {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()

	if a.lastMatch == nil {
		return nil, time.Time{}
	}
	m := *a.lastMatch
	return &m, a.lastMatchAt
}

// SnapshotJPEG encodes the most recent annotated frame as JPEG. Returns
// nil when no frame has been published yet.
func (a *App) SnapshotJPEG() ([]byte, error) {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()

	if !a.hasFrame || a.annotated.Empty() {
		return nil, nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, a.annotated)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}

// publishFrame takes ownership of the annotated frame and records the pose
// it carries.
func (a *App) publishFrame(frame *gocv.Mat, pose vision.Pose, at time.Time) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()

	a.annotated.Close()
	a.annotated = *frame
	a.hasFrame = true
	a.lastPose = pose
	a.lastPoseAt = at
}

// publishMatch records a completed pattern match.
func (a *App) publishMatch(m track.Match, at time.Time) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()

	a.lastMatch = &m
	a.lastMatchAt = at
}
