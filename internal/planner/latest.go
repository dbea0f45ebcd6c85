package planner

import (
	"sync"

	"github.com/couchcryptid/trip-safety-service/internal/domain"
)

// LatestRoute keeps the most recent plan result. Concurrent plans can finish
// out of order; Publish only accepts a result whose sequence number is newer
// than the stored one, so a slow in-flight response never clobbers the route
// the user asked for last.
type LatestRoute struct {
	mu     sync.RWMutex
	result domain.PlanResult
	set    bool
}

// Publish stores the result if it is newer than the current one. Returns
// true when the result was accepted.
func (l *LatestRoute) Publish(result domain.PlanResult) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.set && result.Seq <= l.result.Seq {
		return false
	}
	l.result = result
	l.set = true
	return true
}

// Current returns the stored result and whether one has been published.
func (l *LatestRoute) Current() (domain.PlanResult, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.result, l.set
}
