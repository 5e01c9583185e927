package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"greenearth/backend/internal/models"
)

// State is the connection state of a wallet session
type State string

const (
	StateDisconnected  State = "disconnected"
	StateSignInPending State = "sign-in-pending"
	StateConnected     State = "connected"
	StateError         State = "error"
)

// ErrInvalidTransition is returned when an operation is not allowed in the
// current state
var ErrInvalidTransition = errors.New("invalid wallet state transition")

// Snapshot is a consistent view of a Provider
type Snapshot struct {
	State       State     `json:"state"`
	IsConnected bool      `json:"isConnected"`
	Address     string    `json:"address,omitempty"`
	UserData    *UserData `json:"userData,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Provider owns the wallet session of one client. Transitions are serialised.
type Provider struct {
	sdk      SessionSDK
	storage  Storage
	logger   *zap.Logger
	onReload func()

	mu       sync.RWMutex
	state    State
	userData *UserData
	address  string
	lastErr  string
}

// NewProvider creates a disconnected provider. onReload may be nil.
func NewProvider(sdk SessionSDK, storage Storage, logger *zap.Logger, onReload func()) *Provider {
	return &Provider{
		sdk:      sdk,
		storage:  storage,
		logger:   logger,
		onReload: onReload,
		state:    StateDisconnected,
	}
}

// Init completes a pending sign-in or restores a stored session. A provider
// in the error state is left alone until ClearError.
func (p *Provider) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateError {
		return nil
	}

	pending, err := p.sdk.IsSignInPending(ctx)
	if err != nil {
		return p.recoverLocked(ctx, err)
	}
	if pending {
		p.state = StateSignInPending
		return p.completeSignInLocked(ctx)
	}

	signedIn, err := p.sdk.IsUserSignedIn(ctx)
	if err != nil {
		return p.recoverLocked(ctx, err)
	}
	if !signedIn {
		p.setDisconnectedLocked()
		return nil
	}

	data, err := p.sdk.LoadUserData(ctx)
	if err != nil {
		return p.recoverLocked(ctx, err)
	}
	return p.applyUserDataLocked(ctx, data)
}

// Connect starts a sign-in with the payload returned by the wallet
func (p *Provider) Connect(ctx context.Context, payload UserData) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateDisconnected {
		return fmt.Errorf("%w: connect from %s", ErrInvalidTransition, p.state)
	}
	if err := p.sdk.BeginSignIn(ctx, payload); err != nil {
		return p.failLocked(ctx, err)
	}
	p.state = StateSignInPending
	return nil
}

// CompleteSignIn finishes a pending sign-in
func (p *Provider) CompleteSignIn(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateSignInPending {
		return fmt.Errorf("%w: complete sign-in from %s", ErrInvalidTransition, p.state)
	}
	return p.completeSignInLocked(ctx)
}

// ClearError returns an errored provider to disconnected
func (p *Provider) ClearError() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateError {
		return fmt.Errorf("%w: clear error from %s", ErrInvalidTransition, p.state)
	}
	p.setDisconnectedLocked()
	return nil
}

// Disconnect signs the user out
func (p *Provider) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.sdk.SignUserOut(ctx); err != nil {
		return p.recoverLocked(ctx, err)
	}
	p.setDisconnectedLocked()
	return nil
}

// ClearSession wipes every trace of the session from storage
func (p *Provider) ClearSession(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clearSessionLocked(ctx)
}

// Recover clears the session when err is a session corruption error and
// returns nil. Any other error is returned unchanged.
func (p *Provider) Recover(ctx context.Context, err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recoverLocked(ctx, err)
}

// Snapshot returns the current state
func (p *Provider) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot{
		State:       p.state,
		IsConnected: p.state == StateConnected,
		Address:     p.address,
		UserData:    p.userData,
		Error:       p.lastErr,
	}
}

// ==================== Internals ====================

func (p *Provider) completeSignInLocked(ctx context.Context) error {
	data, err := p.sdk.HandlePendingSignIn(ctx)
	if err != nil {
		return p.failLocked(ctx, err)
	}
	return p.applyUserDataLocked(ctx, data)
}

func (p *Provider) applyUserDataLocked(ctx context.Context, data *UserData) error {
	address := data.Address()
	if address == "" {
		return p.recoverLocked(ctx, fmt.Errorf("profile has no STX address: %w", ErrMalformedSession))
	}
	p.state = StateConnected
	p.userData = data
	p.address = address
	p.lastErr = ""
	p.logger.Info("Wallet connected", zap.String("address", address))
	return nil
}

// failLocked moves to the error state unless err is session corruption
func (p *Provider) failLocked(ctx context.Context, err error) error {
	if IsSessionCorruptionError(err) {
		return p.recoverLocked(ctx, err)
	}
	p.logger.Error("Wallet sign-in failed", zap.Error(err))
	p.state = StateError
	p.userData = nil
	p.address = ""
	p.lastErr = err.Error()
	return err
}

func (p *Provider) recoverLocked(ctx context.Context, err error) error {
	if !IsSessionCorruptionError(err) {
		return err
	}
	p.logger.Warn("Corrupted wallet session, clearing", zap.Error(err))
	return p.clearSessionLocked(ctx)
}

func (p *Provider) clearSessionLocked(ctx context.Context) error {
	if err := p.sdk.SignUserOut(ctx); err != nil {
		p.logger.Warn("Sign out during session clear failed", zap.Error(err))
	}

	var errs []error
	for _, key := range RecoveryKeys {
		if err := p.storage.RemoveItem(ctx, models.ScopeLocal, key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	if err := p.storage.ClearScope(ctx, models.ScopeSession); err != nil {
		errs = append(errs, fmt.Errorf("clear session storage: %w", err))
	}

	p.setDisconnectedLocked()
	if p.onReload != nil {
		p.onReload()
	}
	return errors.Join(errs...)
}

func (p *Provider) setDisconnectedLocked() {
	p.state = StateDisconnected
	p.userData = nil
	p.address = ""
	p.lastErr = ""
}
