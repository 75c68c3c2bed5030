// Package scheduler provides background services that run on a fixed interval.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oszuidwest/zwfm-voice/internal/metrics"
	"github.com/oszuidwest/zwfm-voice/pkg/logger"
)

// checkTimeout bounds a single round of tool checks.
const checkTimeout = 10 * time.Second

// Checker reports, per tool name, nil when the tool is usable.
type Checker interface {
	Check(ctx context.Context) map[string]error
}

// ToolCheckService periodically verifies that the external audio tools
// (ffmpeg, ffprobe) can be executed. Results feed the health endpoint and
// the voice_tool_available gauge.
type ToolCheckService struct {
	checker  Checker
	metrics  *metrics.Metrics
	interval time.Duration

	mu     sync.RWMutex
	status map[string]bool

	// ticker controls the execution schedule
	ticker *time.Ticker
	// done channel enables graceful shutdown signaling
	done chan bool
	// stopOnce ensures Stop() can only be called once, preventing double-stop race conditions
	stopOnce sync.Once
}

// NewToolCheckService creates a new background tool check service.
// The service must be started with [ToolCheckService.Start] to begin operations.
func NewToolCheckService(checker Checker, m *metrics.Metrics, interval time.Duration) *ToolCheckService {
	return &ToolCheckService{
		checker:  checker,
		metrics:  m,
		interval: interval,
		status:   make(map[string]bool),
		done:     make(chan bool),
	}
}

// Start runs one check immediately and then repeats it every interval in a
// separate goroutine. A non-positive interval only runs the initial check.
func (s *ToolCheckService) Start() {
	s.Run(context.Background())
	if s.interval <= 0 {
		return
	}

	logger.Info("Starting tool check service (every %s)", s.interval)
	s.ticker = time.NewTicker(s.interval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.Run(context.Background())
			case <-s.done:
				return
			}
		}
	}()
}

// Stop gracefully shuts down the service.
func (s *ToolCheckService) Stop() {
	s.stopOnce.Do(func() {
		if s.ticker == nil {
			return
		}
		logger.Info("Stopping tool check service")
		select {
		case s.done <- true:
		case <-time.After(5 * time.Second):
			logger.Info("Tool check service shutdown timeout")
		}
		s.ticker.Stop()
	})
}

// Run performs one round of checks and records the results.
func (s *ToolCheckService) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	results := s.checker.Check(ctx)

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		err := results[name]
		available := err == nil
		if was, seen := s.status[name]; !seen || was != available {
			if available {
				logger.Info("%s is available", name)
			} else {
				logger.Warn("%s is unavailable, compressed input will fail: %v", name, err)
			}
		}
		s.status[name] = available
		s.metrics.RecordToolAvailability(name, available)
	}
}

// Status returns a copy of the latest availability per tool.
func (s *ToolCheckService) Status() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.status))
	for k, v := range s.status {
		out[k] = v
	}
	return out
}
