// Package delivery transmits serialized reports without blocking the caller.
package delivery

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultEndpoint = "https://api.raygun.com/entries"
	ApiKeyHeader    = "X-ApiKey"

	// Component marks log entries written by the SDK itself.
	Component    = "crashes"
	ComponentKey = "component"

	defaultTimeout = 30 * time.Second
)

// PostService issues one POST per report on its own goroutine.
// The response is only used for diagnostics.
type PostService struct {
	client *http.Client
	logger log.FieldLogger

	mu       sync.Mutex
	inflight int
	// idle is closed when inflight drops to zero
	idle chan struct{}
}

var (
	instanceOnce sync.Once
	instance     *PostService
	instanceMu   sync.RWMutex
	closed       bool
)

// Instance returns the process wide PostService, creating it on first use.
// It returns nil once Shutdown has been called.
func Instance() *PostService {
	instanceMu.RLock()
	defer instanceMu.RUnlock()
	if closed {
		return nil
	}
	instanceOnce.Do(func() {
		instance = New(nil, nil)
	})
	return instance
}

// Shutdown waits up to timeout for in-flight deliveries of the shared instance and
// disables it for the rest of the process.
func Shutdown(timeout time.Duration) bool {
	instanceMu.Lock()
	closed = true
	s := instance
	instanceMu.Unlock()

	if s == nil {
		return true
	}
	return s.Flush(timeout)
}

func New(client *http.Client, logger log.FieldLogger) *PostService {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &PostService{
		client: client,
		logger: logger.WithField(ComponentKey, Component),
	}
}

// Post starts the delivery of payload and returns immediately.
func (s *PostService) Post(endpoint, apiKey string, payload []byte) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	s.started()
	go func() {
		defer s.finished()
		s.deliver(endpoint, apiKey, payload)
	}()
}

// Flush waits until the deliveries in flight at the time of the call have completed
// or timeout expires. Deliveries started while waiting may extend the wait.
func (s *PostService) Flush(timeout time.Duration) bool {
	s.mu.Lock()
	if s.inflight == 0 {
		s.mu.Unlock()
		return true
	}
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (s *PostService) started() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == 0 {
		s.idle = make(chan struct{})
	}
	s.inflight++
}

func (s *PostService) finished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if s.inflight == 0 {
		close(s.idle)
	}
}

func (s *PostService) deliver(endpoint, apiKey string, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", r).Warn("Error occurred during report delivery")
		}
	}()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		s.logger.WithError(err).Warn("Error occurred during report delivery")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ApiKeyHeader, apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.WithError(err).Warn("Error occurred during report delivery")
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	logResponseCode(s.logger.WithField("status", resp.StatusCode), resp.StatusCode)
}

func logResponseCode(logger log.FieldLogger, code int) {
	switch {
	case code >= 200 && code < 300:
		logger.Debug("Report delivered")
	case code == http.StatusBadRequest:
		logger.Warn("API Response: Bad message - could not parse the provided JSON")
	case code == http.StatusForbidden:
		logger.Warn("API Response: Invalid API Key - The value specified in the header X-ApiKey did not match with an application")
	case code == http.StatusRequestEntityTooLarge:
		logger.Warn("API Response: Request entity too large - The maximum size of a JSON payload has been exceeded")
	case code == http.StatusTooManyRequests:
		logger.Warn("API Response: Too Many Requests - Plan limit exceeded for month or plan expired")
	default:
		logger.Warnf("API Response: unexpected status - %d %s", code, http.StatusText(code))
	}
}
