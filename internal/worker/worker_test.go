package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"greenearth/backend/internal/blockchain/hiro"
	"greenearth/backend/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeUpstream struct {
	configured bool
	authErr    error
	networkErr error
	txs        map[string]string // txID -> tx_status, missing means 404
}

func (f *fakeUpstream) IsConfigured() bool { return f.configured }

func (f *fakeUpstream) ProbeAuth(context.Context) error { return f.authErr }

func (f *fakeUpstream) GetNetworkBlockTimes(context.Context) (json.RawMessage, error) {
	if f.networkErr != nil {
		return nil, f.networkErr
	}
	return json.RawMessage(`{"testnet":{"target_block_time":30}}`), nil
}

func (f *fakeUpstream) GetTransaction(_ context.Context, txID string) (json.RawMessage, error) {
	status, ok := f.txs[txID]
	if !ok {
		return nil, &hiro.UpstreamError{StatusCode: 404, Status: "Not Found"}
	}
	return json.RawMessage(`{"tx_id":"` + txID + `","tx_status":"` + status + `"}`), nil
}

func TestStatusMonitor_CheckNow(t *testing.T) {
	tests := []struct {
		name      string
		upstream  *fakeUpstream
		wantState APIState
		wantAuth  bool
		wantMsg   string
	}{
		{
			name:      "not configured",
			upstream:  &fakeUpstream{},
			wantState: APIStateNotConfigured,
			wantMsg:   "Hiro API key not configured",
		},
		{
			name:      "connected",
			upstream:  &fakeUpstream{configured: true},
			wantState: APIStateConnected,
			wantAuth:  true,
			wantMsg:   "API key authenticated and verified",
		},
		{
			name:      "rejected key",
			upstream:  &fakeUpstream{configured: true, authErr: &hiro.UpstreamError{StatusCode: 401, Status: "Unauthorized"}},
			wantState: APIStateError,
			wantMsg:   "Invalid API key - Authentication failed",
		},
		{
			name:      "network failure after auth",
			upstream:  &fakeUpstream{configured: true, networkErr: errors.New("timeout")},
			wantState: APIStateError,
			wantAuth:  true,
			wantMsg:   "timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewStatusMonitor(tt.upstream, 0, zap.NewNop())
			if got := m.Status().State; got != APIStateChecking {
				t.Fatalf("initial state = %s, want checking", got)
			}

			status := m.CheckNow(context.Background())
			if status.State != tt.wantState {
				t.Errorf("state = %s, want %s", status.State, tt.wantState)
			}
			if status.Authenticated != tt.wantAuth {
				t.Errorf("authenticated = %v, want %v", status.Authenticated, tt.wantAuth)
			}
			if status.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", status.Message, tt.wantMsg)
			}
			if status.CheckedAt.IsZero() {
				t.Error("checkedAt not set")
			}
			if m.Status().State != tt.wantState {
				t.Error("Status() does not reflect last check")
			}
		})
	}
}

type memorySettlements struct {
	mu      sync.Mutex
	pending []models.Pledge
	settled map[string]models.PledgeStatus
}

func (m *memorySettlements) PendingSettlements(_ context.Context, limit int) ([]models.Pledge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Pledge
	for _, p := range m.pending {
		if _, done := m.settled[p.PledgeID]; !done && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memorySettlements) Settle(_ context.Context, pledge *models.Pledge, status models.PledgeStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settled[pledge.PledgeID] = status
	return nil
}

func strPtr(s string) *string { return &s }

func TestPledgeConfirmer_Poll(t *testing.T) {
	settlements := &memorySettlements{
		pending: []models.Pledge{
			{PledgeID: "confirmed", TxID: strPtr("0x01")},
			{PledgeID: "aborted", TxID: strPtr("0x02")},
			{PledgeID: "mempool", TxID: strPtr("0x03")},
			{PledgeID: "unindexed", TxID: strPtr("0x04")},
		},
		settled: map[string]models.PledgeStatus{},
	}
	upstream := &fakeUpstream{
		configured: true,
		txs: map[string]string{
			"0x01": "success",
			"0x02": "abort_by_post_condition",
			"0x03": "pending",
		},
	}

	c := NewPledgeConfirmer(upstream, settlements, time.Minute, zap.NewNop())
	if n := c.poll(context.Background()); n != 2 {
		t.Fatalf("poll settled %d pledges, want 2", n)
	}

	want := map[string]models.PledgeStatus{
		"confirmed": models.PledgeStatusConfirmed,
		"aborted":   models.PledgeStatusFailed,
	}
	if len(settlements.settled) != len(want) {
		t.Fatalf("settled = %v, want %v", settlements.settled, want)
	}
	for id, status := range want {
		if settlements.settled[id] != status {
			t.Errorf("pledge %s = %s, want %s", id, settlements.settled[id], status)
		}
	}

	// Already settled pledges are not revisited
	if n := c.poll(context.Background()); n != 0 {
		t.Errorf("second poll settled %d pledges, want 0", n)
	}
}

func TestPledgeConfirmer_SkipsWithoutCredential(t *testing.T) {
	settlements := &memorySettlements{
		pending: []models.Pledge{{PledgeID: "p", TxID: strPtr("0x01")}},
		settled: map[string]models.PledgeStatus{},
	}
	c := NewPledgeConfirmer(&fakeUpstream{txs: map[string]string{"0x01": "success"}}, settlements, time.Minute, zap.NewNop())

	if n := c.poll(context.Background()); n != 0 {
		t.Errorf("poll settled %d pledges without a credential", n)
	}
}

func TestWorkerManager_StartShutdown(t *testing.T) {
	monitor := NewStatusMonitor(&fakeUpstream{configured: true}, time.Hour, zap.NewNop())
	confirmer := NewPledgeConfirmer(&fakeUpstream{}, &memorySettlements{settled: map[string]models.PledgeStatus{}}, time.Hour, zap.NewNop())

	taskStarted := make(chan struct{})
	taskStopped := make(chan struct{})
	task := Task{Name: "test", Run: func(ctx context.Context) error {
		close(taskStarted)
		<-ctx.Done()
		close(taskStopped)
		return nil
	}}

	wm := NewWorkerManager(monitor, confirmer, zap.NewNop(), task)
	wm.Start()
	<-taskStarted

	if err := wm.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	select {
	case <-taskStopped:
	default:
		t.Error("task did not observe cancellation")
	}
	if wm.Monitor() != monitor {
		t.Error("Monitor() returned a different monitor")
	}
}
