// internal/render/surface.go
package render

import (
	"sync"
	"time"

	"github.com/tamzrod/vision-dashboard/internal/status"
)

// Snapshot is a consistent read of the surface.
type Snapshot struct {
	Frame    Frame     `json:"frame"`
	Version  uint64    `json:"version"`
	Rendered time.Time `json:"rendered"`
}

// Surface holds the current state of the dashboard's visual elements.
//
// Only the telemetry loop renders into it. HTTP handlers and the viewer hub
// read it, hence the lock.
type Surface struct {
	mu       sync.RWMutex
	frame    Frame
	version  uint64
	rendered time.Time
	now      func() time.Time
}

func NewSurface() *Surface {
	return &Surface{
		frame: InitialFrame(),
		now:   time.Now,
	}
}

// Render replaces every element with the projection of st.
func (s *Surface) Render(st status.DisplayState) {
	f := Project(st)

	s.mu.Lock()
	s.frame = f
	s.version++
	s.rendered = s.now()
	s.mu.Unlock()
}

// Frame returns a copy of the current frame.
func (s *Surface) Frame() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// Snapshot returns the frame together with its version and render time.
// Version 0 means nothing has been rendered yet.
func (s *Surface) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Frame:    s.frame,
		Version:  s.version,
		Rendered: s.rendered,
	}
}
