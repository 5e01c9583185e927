package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"greenearth/backend/internal/blockchain/hiro"
)

// APIState is the result of the last upstream probe
type APIState string

const (
	APIStateChecking      APIState = "checking"
	APIStateConnected     APIState = "connected"
	APIStateError         APIState = "error"
	APIStateNotConfigured APIState = "not-configured"
)

// APIStatus describes upstream reachability and credential validity
type APIStatus struct {
	State         APIState        `json:"state"`
	Authenticated bool            `json:"authenticated"`
	Message       string          `json:"message"`
	CheckedAt     time.Time       `json:"checkedAt"`
	Network       json.RawMessage `json:"network,omitempty"`
}

// StatusMonitor periodically verifies the upstream credential
type StatusMonitor struct {
	upstream Upstream
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	probeMu sync.Mutex // one probe at a time
	mu      sync.RWMutex
	status  APIStatus
}

// NewStatusMonitor creates a monitor probing every interval. An interval of
// zero disables periodic probing; CheckNow still works.
func NewStatusMonitor(upstream Upstream, interval time.Duration, logger *zap.Logger) *StatusMonitor {
	return &StatusMonitor{
		upstream: upstream,
		interval: interval,
		logger:   logger.Named("monitor"),
		now:      time.Now,
		status:   APIStatus{State: APIStateChecking},
	}
}

// Run probes immediately, then on every tick until ctx is cancelled
func (m *StatusMonitor) Run(ctx context.Context) {
	m.logger.Info("Status monitor started", zap.Duration("interval", m.interval))
	m.CheckNow(ctx)

	if m.interval <= 0 {
		<-ctx.Done()
		m.logger.Info("Status monitor stopping")
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Status monitor stopping")
			return
		case <-ticker.C:
			m.CheckNow(ctx)
		}
	}
}

// CheckNow runs one probe and returns its result
func (m *StatusMonitor) CheckNow(ctx context.Context) APIStatus {
	m.probeMu.Lock()
	defer m.probeMu.Unlock()

	m.setState(APIStateChecking)
	status := m.probe(ctx)

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()

	if status.State == APIStateError {
		m.logger.Warn("Upstream API check failed", zap.String("message", status.Message))
	} else {
		m.logger.Debug("Upstream API check", zap.String("state", string(status.State)))
	}
	return status
}

// Status returns the last probe result
func (m *StatusMonitor) Status() APIStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *StatusMonitor) probe(ctx context.Context) APIStatus {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	status := APIStatus{CheckedAt: m.now().UTC()}

	if !m.upstream.IsConfigured() {
		status.State = APIStateNotConfigured
		status.Message = "Hiro API key not configured"
		return status
	}

	if err := m.upstream.ProbeAuth(ctx); err != nil {
		_, msg := hiro.AuthFailure(err)
		status.State = APIStateError
		status.Message = msg
		return status
	}
	status.Authenticated = true

	network, err := m.upstream.GetNetworkBlockTimes(ctx)
	if err != nil {
		status.State = APIStateError
		status.Message = err.Error()
		return status
	}

	status.State = APIStateConnected
	status.Message = "API key authenticated and verified"
	status.Network = network
	return status
}

func (m *StatusMonitor) setState(state APIState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.State = state
}
