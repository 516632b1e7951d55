package forum

import (
	"context"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/emilythestrangee/forum/backend/internal/models"
)

// ViewWindow is how long a viewer's visit to a thread suppresses further view
// count increments from the same viewer.
const ViewWindow = 24 * time.Hour

const maxTrackedViews = 10000

type viewKey struct {
	viewer   string
	threadID int
}

type viewTracker struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[viewKey]time.Time
}

func newViewTracker(window time.Duration) *viewTracker {
	return &viewTracker{window: window, seen: make(map[viewKey]time.Time)}
}

// mark records a view and reports whether it should be counted.
func (v *viewTracker) mark(key viewKey, now time.Time) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if at, ok := v.seen[key]; ok && now.Sub(at) < v.window {
		return false
	}
	if len(v.seen) >= maxTrackedViews {
		for k, at := range v.seen {
			if now.Sub(at) >= v.window {
				delete(v.seen, k)
			}
		}
	}
	v.seen[key] = now
	return true
}

func (v *viewTracker) forget(key viewKey) {
	v.mu.Lock()
	delete(v.seen, key)
	v.mu.Unlock()
}

// RecordView bumps a thread's view count once per viewer per ViewWindow.
// It is telemetry: errors are logged, never returned.
func (s *Service) RecordView(ctx context.Context, threadID int, viewer string) {
	if viewer == "" {
		return
	}
	key := viewKey{viewer: viewer, threadID: threadID}
	if !s.views.mark(key, s.now()) {
		return
	}

	err := s.db.WithContext(ctx).Model(&models.Thread{}).
		Where("id = ?", threadID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		s.views.forget(key)
		log.Printf("[FORUM] view count for thread %d: %v", threadID, err)
	}
}
