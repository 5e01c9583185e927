// Package wallet tracks Stacks wallet sessions per browser client and
// recovers from corrupted session data.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"greenearth/backend/internal/models"
)

// SessionVersion is the only stored session format accepted
const SessionVersion = "1.0.0"

const (
	sessionKey = "blockstack-session"
	pendingKey = "sign-in-pending"
)

// ErrMalformedSession marks stored session data that cannot be used
var ErrMalformedSession = errors.New("malformed session data")

// RecoveryKeys are the local storage keys removed when a session is cleaned
var RecoveryKeys = []string{
	"blockstack-session",
	"stacks-session",
	"connect-session",
	"stacks-wallet-connect",
	"hiro-wallet-connect",
}

// Storage is a client's key/value storage, split into local and session scopes
type Storage interface {
	GetItem(ctx context.Context, scope models.StorageScope, key string) (string, bool, error)
	SetItem(ctx context.Context, scope models.StorageScope, key, value string) error
	RemoveItem(ctx context.Context, scope models.StorageScope, key string) error
	ClearScope(ctx context.Context, scope models.StorageScope) error
}

// SessionSDK is the session library a Provider drives
type SessionSDK interface {
	IsSignInPending(ctx context.Context) (bool, error)
	IsUserSignedIn(ctx context.Context) (bool, error)
	LoadUserData(ctx context.Context) (*UserData, error)
	BeginSignIn(ctx context.Context, payload UserData) error
	HandlePendingSignIn(ctx context.Context) (*UserData, error)
	SignUserOut(ctx context.Context) error
}

// STXAddress holds the per-network addresses of a profile
type STXAddress struct {
	Testnet string `json:"testnet,omitempty"`
	Mainnet string `json:"mainnet,omitempty"`
}

// Profile is the wallet profile of a signed-in user
type Profile struct {
	STXAddress *STXAddress `json:"stxAddress,omitempty"`
}

// UserData is what the wallet hands back after sign-in
type UserData struct {
	Username    string   `json:"username,omitempty"`
	AppURL      string   `json:"appUrl,omitempty"`
	Profile     *Profile `json:"profile,omitempty"`
	DecentralID string   `json:"decentralizedID,omitempty"`
}

// Address returns the testnet address, falling back to mainnet. Empty when
// the profile carries neither.
func (u *UserData) Address() string {
	if u == nil || u.Profile == nil || u.Profile.STXAddress == nil {
		return ""
	}
	if u.Profile.STXAddress.Testnet != "" {
		return u.Profile.STXAddress.Testnet
	}
	return u.Profile.STXAddress.Mainnet
}

// IsSessionCorruptionError reports whether err comes from unreadable stored
// session data
func IsSessionCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMalformedSession) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "JSON data version") || strings.Contains(msg, "SessionData")
}

type storedSession struct {
	Version  string    `json:"version"`
	UserData *UserData `json:"userData,omitempty"`
}

// StoredSession is a SessionSDK persisting to Storage. The signed-in session
// lives in local scope, a pending sign-in in session scope.
type StoredSession struct {
	storage Storage
}

// NewStoredSession creates a session over storage
func NewStoredSession(storage Storage) *StoredSession {
	return &StoredSession{storage: storage}
}

func (s *StoredSession) IsSignInPending(ctx context.Context) (bool, error) {
	_, ok, err := s.storage.GetItem(ctx, models.ScopeSession, pendingKey)
	return ok, err
}

func (s *StoredSession) IsUserSignedIn(ctx context.Context) (bool, error) {
	session, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return session != nil && session.UserData != nil, nil
}

func (s *StoredSession) LoadUserData(ctx context.Context) (*UserData, error) {
	session, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserData == nil {
		return nil, fmt.Errorf("no user is signed in: %w", ErrMalformedSession)
	}
	return session.UserData, nil
}

func (s *StoredSession) BeginSignIn(ctx context.Context, payload UserData) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode sign-in payload: %w", err)
	}
	return s.storage.SetItem(ctx, models.ScopeSession, pendingKey, string(raw))
}

func (s *StoredSession) HandlePendingSignIn(ctx context.Context) (*UserData, error) {
	raw, ok, err := s.storage.GetItem(ctx, models.ScopeSession, pendingKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("no sign-in is pending")
	}
	if err := s.storage.RemoveItem(ctx, models.ScopeSession, pendingKey); err != nil {
		return nil, err
	}

	var data UserData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}

	encoded, err := json.Marshal(storedSession{Version: SessionVersion, UserData: &data})
	if err != nil {
		return nil, err
	}
	if err := s.storage.SetItem(ctx, models.ScopeLocal, sessionKey, string(encoded)); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *StoredSession) SignUserOut(ctx context.Context) error {
	return s.storage.RemoveItem(ctx, models.ScopeLocal, sessionKey)
}

// load returns nil when no session is stored
func (s *StoredSession) load(ctx context.Context) (*storedSession, error) {
	raw, ok, err := s.storage.GetItem(ctx, models.ScopeLocal, sessionKey)
	if err != nil || !ok {
		return nil, err
	}

	var session storedSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}
	if session.Version != SessionVersion {
		return nil, fmt.Errorf("JSON data version %s not supported by SessionData", session.Version)
	}
	return &session, nil
}
