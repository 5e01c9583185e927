package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"greenearth/backend/internal/models"
)

type memoryStorage struct {
	mu    sync.Mutex
	items map[models.StorageScope]map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{items: map[models.StorageScope]map[string]string{
		models.ScopeLocal:   {},
		models.ScopeSession: {},
	}}
}

func (m *memoryStorage) GetItem(_ context.Context, scope models.StorageScope, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[scope][key]
	return v, ok, nil
}

func (m *memoryStorage) SetItem(_ context.Context, scope models.StorageScope, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[scope][key] = value
	return nil
}

func (m *memoryStorage) RemoveItem(_ context.Context, scope models.StorageScope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items[scope], key)
	return nil
}

func (m *memoryStorage) ClearScope(_ context.Context, scope models.StorageScope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[scope] = map[string]string{}
	return nil
}

func (m *memoryStorage) len(scope models.StorageScope) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items[scope])
}

func testnetUser(address string) UserData {
	return UserData{Profile: &Profile{STXAddress: &STXAddress{Testnet: address, Mainnet: "SP3MAINNET"}}}
}

func newTestProvider(storage Storage) (*Provider, *int) {
	reloads := 0
	return NewProvider(NewStoredSession(storage), storage, zap.NewNop(), func() { reloads++ }), &reloads
}

func TestProvider_ConnectAndRestore(t *testing.T) {
	ctx := context.Background()
	storage := newMemoryStorage()
	p, _ := newTestProvider(storage)

	require.NoError(t, p.Init(ctx))
	assert.Equal(t, StateDisconnected, p.Snapshot().State)

	require.NoError(t, p.Connect(ctx, testnetUser("ST1TESTNET")))
	assert.Equal(t, StateSignInPending, p.Snapshot().State)

	require.NoError(t, p.CompleteSignIn(ctx))
	snap := p.Snapshot()
	assert.Equal(t, StateConnected, snap.State)
	assert.True(t, snap.IsConnected)
	assert.Equal(t, "ST1TESTNET", snap.Address)

	// A fresh provider over the same storage restores the session
	restored, _ := newTestProvider(storage)
	require.NoError(t, restored.Init(ctx))
	assert.Equal(t, "ST1TESTNET", restored.Snapshot().Address)

	require.NoError(t, restored.Disconnect(ctx))
	assert.Equal(t, Snapshot{State: StateDisconnected}, restored.Snapshot())
	_, ok, _ := storage.GetItem(ctx, models.ScopeLocal, "blockstack-session")
	assert.False(t, ok)
}

func TestProvider_InitCompletesPendingSignIn(t *testing.T) {
	ctx := context.Background()
	storage := newMemoryStorage()
	require.NoError(t, NewStoredSession(storage).BeginSignIn(ctx, testnetUser("ST1PENDING")))

	p, _ := newTestProvider(storage)
	require.NoError(t, p.Init(ctx))
	assert.Equal(t, StateConnected, p.Snapshot().State)
	assert.Equal(t, "ST1PENDING", p.Snapshot().Address)
}

func TestProvider_MainnetFallback(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(newMemoryStorage())

	user := UserData{Profile: &Profile{STXAddress: &STXAddress{Mainnet: "SP3MAINNET"}}}
	require.NoError(t, p.Connect(ctx, user))
	require.NoError(t, p.CompleteSignIn(ctx))
	assert.Equal(t, "SP3MAINNET", p.Snapshot().Address)
}

func TestProvider_RecoversCorruptedSession(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{name: "unsupported version", stored: `{"version":"2.0.0","userData":{}}`},
		{name: "not json", stored: `{{{`},
		{name: "missing profile", stored: `{"version":"1.0.0","userData":{"username":"alice"}}`},
		{name: "missing address", stored: `{"version":"1.0.0","userData":{"profile":{"stxAddress":{}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			storage := newMemoryStorage()
			for _, key := range RecoveryKeys {
				require.NoError(t, storage.SetItem(ctx, models.ScopeLocal, key, "stale"))
			}
			require.NoError(t, storage.SetItem(ctx, models.ScopeLocal, "blockstack-session", tt.stored))
			require.NoError(t, storage.SetItem(ctx, models.ScopeLocal, "theme", "dark"))
			require.NoError(t, storage.SetItem(ctx, models.ScopeSession, "anything", "x"))

			p, reloads := newTestProvider(storage)
			require.NoError(t, p.Init(ctx))

			assert.Equal(t, StateDisconnected, p.Snapshot().State)
			assert.Equal(t, 1, *reloads)
			assert.Equal(t, 0, storage.len(models.ScopeSession))
			assert.Equal(t, 1, storage.len(models.ScopeLocal), "only unrelated keys survive")
			v, ok, _ := storage.GetItem(ctx, models.ScopeLocal, "theme")
			assert.True(t, ok)
			assert.Equal(t, "dark", v)
		})
	}
}

func TestProvider_ConnectWithoutAddressRecovers(t *testing.T) {
	ctx := context.Background()
	p, reloads := newTestProvider(newMemoryStorage())

	require.NoError(t, p.Connect(ctx, UserData{Username: "alice"}))
	require.NoError(t, p.CompleteSignIn(ctx))
	assert.Equal(t, StateDisconnected, p.Snapshot().State)
	assert.Equal(t, 1, *reloads)
}

// failingSDK fails sign-in with a fixed error
type failingSDK struct {
	StoredSession
	err error
}

func (f *failingSDK) HandlePendingSignIn(context.Context) (*UserData, error) {
	return nil, f.err
}

func TestProvider_SignInFailure(t *testing.T) {
	ctx := context.Background()
	storage := newMemoryStorage()
	sdk := &failingSDK{StoredSession: *NewStoredSession(storage), err: errors.New("user cancelled")}
	p := NewProvider(sdk, storage, zap.NewNop(), nil)

	require.NoError(t, p.Connect(ctx, testnetUser("ST1")))
	err := p.CompleteSignIn(ctx)
	assert.EqualError(t, err, "user cancelled")

	snap := p.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, "user cancelled", snap.Error)

	// Init leaves the error state alone
	require.NoError(t, p.Init(ctx))
	assert.Equal(t, StateError, p.Snapshot().State)

	assert.ErrorIs(t, p.Connect(ctx, testnetUser("ST1")), ErrInvalidTransition)
	require.NoError(t, p.ClearError())
	assert.Equal(t, StateDisconnected, p.Snapshot().State)
	assert.ErrorIs(t, p.ClearError(), ErrInvalidTransition)
}

func TestProvider_SignInCorruptionRecovers(t *testing.T) {
	ctx := context.Background()
	storage := newMemoryStorage()
	sdk := &failingSDK{
		StoredSession: *NewStoredSession(storage),
		err:           errors.New("JSON data version 0.9 not supported by SessionData"),
	}
	reloaded := false
	p := NewProvider(sdk, storage, zap.NewNop(), func() { reloaded = true })

	require.NoError(t, p.Connect(ctx, testnetUser("ST1")))
	require.NoError(t, p.CompleteSignIn(ctx))
	assert.Equal(t, StateDisconnected, p.Snapshot().State)
	assert.True(t, reloaded)
}

func TestProvider_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(newMemoryStorage())

	assert.ErrorIs(t, p.CompleteSignIn(ctx), ErrInvalidTransition)

	require.NoError(t, p.Connect(ctx, testnetUser("ST1")))
	assert.ErrorIs(t, p.Connect(ctx, testnetUser("ST1")), ErrInvalidTransition)
}

func TestProvider_Recover(t *testing.T) {
	ctx := context.Background()
	p, reloads := newTestProvider(newMemoryStorage())

	other := errors.New("network down")
	assert.Same(t, other, p.Recover(ctx, other))
	assert.Zero(t, *reloads)

	assert.NoError(t, p.Recover(ctx, fmt.Errorf("load: %w", ErrMalformedSession)))
	assert.Equal(t, 1, *reloads)
}

func TestIsSessionCorruptionError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("JSON data version 2.0.0 not supported by SessionData"), true},
		{errors.New("could not parse SessionData"), true},
		{errors.New("JSON data version mismatch"), true},
		{fmt.Errorf("wrapped: %w", ErrMalformedSession), true},
		{errors.New("timeout"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSessionCorruptionError(tt.err), "%v", tt.err)
	}
}

func TestStoredSession_VersionCheck(t *testing.T) {
	ctx := context.Background()
	storage := newMemoryStorage()
	require.NoError(t, storage.SetItem(ctx, models.ScopeLocal, "blockstack-session", `{"version":"0.1.0"}`))

	_, err := NewStoredSession(storage).LoadUserData(ctx)
	assert.EqualError(t, err, "JSON data version 0.1.0 not supported by SessionData")
	assert.True(t, IsSessionCorruptionError(err))
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	storages := map[string]*memoryStorage{}
	r := NewRegistry(func(clientID string) Storage {
		if s, ok := storages[clientID]; ok {
			return s
		}
		storages[clientID] = newMemoryStorage()
		return storages[clientID]
	}, zap.NewNop())

	a := r.Get("client-a")
	assert.Same(t, a, r.Get("client-a"))
	assert.NotSame(t, a, r.Get("client-b"))
	assert.Equal(t, 2, r.Len())

	require.NoError(t, a.Connect(ctx, testnetUser("ST1A")))
	require.NoError(t, a.CompleteSignIn(ctx))
	require.NoError(t, a.ClearSession(ctx))

	// Clearing resets the provider; the next one starts from clean storage
	assert.Equal(t, 1, r.Len())
	fresh := r.Get("client-a")
	assert.NotSame(t, a, fresh)
	require.NoError(t, fresh.Init(ctx))
	assert.Equal(t, StateDisconnected, fresh.Snapshot().State)
}

func TestRegistry_ReleaseDropsDisconnected(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(func(string) Storage { return newMemoryStorage() }, zap.NewNop())

	idle := r.Get("client-idle")
	require.NoError(t, idle.Init(ctx))
	r.Release("client-idle", idle)
	assert.Equal(t, 0, r.Len())

	active := r.Get("client-active")
	require.NoError(t, active.Connect(ctx, testnetUser("ST1A")))
	require.NoError(t, active.CompleteSignIn(ctx))
	r.Release("client-active", active)
	assert.Equal(t, 1, r.Len())
	assert.Same(t, active, r.Get("client-active"))

	// A stale handle does not remove the current provider
	r.Release("client-active", idle)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Bounded(t *testing.T) {
	ctx := context.Background()
	storages := map[string]*memoryStorage{}
	r := NewBoundedRegistry(func(clientID string) Storage {
		if s, ok := storages[clientID]; ok {
			return s
		}
		storages[clientID] = newMemoryStorage()
		return storages[clientID]
	}, 3, zap.NewNop())

	first := r.Get("client-0")
	require.NoError(t, first.Connect(ctx, testnetUser("ST1A")))
	require.NoError(t, first.CompleteSignIn(ctx))

	for i := 1; i <= 10; i++ {
		r.Get(fmt.Sprintf("client-%d", i))
		assert.LessOrEqual(t, r.Len(), 3)
	}

	// The dropped provider comes back from storage
	restored := r.Get("client-0")
	assert.NotSame(t, first, restored)
	require.NoError(t, restored.Init(ctx))
	assert.Equal(t, StateConnected, restored.Snapshot().State)
}
