package web

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/iockit/component"
	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/scope"
)

// SessionReaper periodically invalidates sessions idle for longer than
// MaxIdle. Registered as a singleton it is started and stopped with the
// container's generation.
type SessionReaper struct {
	Manager  *scope.SessionManager
	MaxIdle  time.Duration
	Interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	reaped int
}

var (
	_ component.Lifecycle     = (*SessionReaper)(nil)
	_ component.HealthChecker = (*SessionReaper)(nil)
	_ component.Describable   = (*SessionReaper)(nil)
)

// NewSessionReaper creates a reaper for manager. Interval defaults to a
// quarter of maxIdle.
func NewSessionReaper(manager *scope.SessionManager, maxIdle time.Duration) *SessionReaper {
	return &SessionReaper{Manager: manager, MaxIdle: maxIdle, Interval: maxIdle / 4}
}

// Start launches the reaping loop.
func (s *SessionReaper) Start(context.Context) error {
	if s.Manager == nil || s.MaxIdle <= 0 {
		return fmt.Errorf("session reaper needs a manager and a positive max idle time")
	}
	interval := s.Interval
	if interval <= 0 {
		interval = s.MaxIdle
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, interval, s.done)
	logger.Debug("Session reaper started", map[string]interface{}{
		"max_idle": s.MaxIdle.String(),
		"interval": interval.String(),
	})
	return nil
}

func (s *SessionReaper) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Reap(ctx)
		}
	}
}

// Reap runs one pass and returns the number of invalidated sessions.
func (s *SessionReaper) Reap(ctx context.Context) int {
	n := s.Manager.InvalidateIdle(ctx, s.MaxIdle)
	s.mu.Lock()
	s.reaped += n
	s.mu.Unlock()
	return n
}

// Stop ends the loop and waits for a running pass to finish.
func (s *SessionReaper) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health reports the number of live sessions.
func (s *SessionReaper) Health(context.Context) component.Health {
	s.mu.Lock()
	running := s.cancel != nil
	reaped := s.reaped
	s.mu.Unlock()

	h := component.Health{
		Name:    "session-reaper",
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d live, %d reaped", s.Manager.Count(), reaped),
	}
	if !running {
		h.Status = component.StatusUnhealthy
		h.Message = "not running"
	}
	return h
}

// Describe implements component.Describable.
func (s *SessionReaper) Describe() component.Description {
	return component.Description{
		Name:    "Session reaper",
		Type:    "scope",
		Details: fmt.Sprintf("max idle %s", s.MaxIdle),
	}
}
