package vision

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a configurable Detector for testing consumers of the
// pipeline without camera input or OpenCV processing.
type MockDetector struct {
	mu    sync.Mutex
	pose  Pose
	err   error
	calls int
}

// NewMockDetector creates a MockDetector that reports an empty pose.
func NewMockDetector() *MockDetector {
	return &MockDetector{
		pose: Pose{Gesture: GestureUnknown},
	}
}

// SetPose configures the pose returned by subsequent Process calls.
func (m *MockDetector) SetPose(pose Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pose = pose
}

// SetError configures an error returned by subsequent Process calls.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Process has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Process returns the configured pose or error, ignoring the frame.
func (m *MockDetector) Process(frame *gocv.Mat, exclusion *gocv.Mat) (Pose, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return Pose{Gesture: GestureUnknown}, m.err
	}
	return m.pose, nil
}

// Close is a no-op.
func (m *MockDetector) Close() error {
	return nil
}
