package client

import (
	"context"
	"encoding/json"
	"sync"

	"golang.org/x/sync/errgroup"
)

// AccountState is a point-in-time view of a tracked account
type AccountState struct {
	Address      string
	Balance      json.RawMessage
	Transactions json.RawMessage
	Loading      bool
	Err          error
}

// AccountTracker keeps the balance and transactions of the most recently
// requested address. Refreshes may overlap; only the latest one is applied.
type AccountTracker struct {
	client *Client
	limit  int

	mu    sync.RWMutex
	seq   uint64
	state AccountState
}

// NewAccountTracker creates a tracker fetching limit transactions per refresh
func NewAccountTracker(c *Client, limit int) *AccountTracker {
	return &AccountTracker{client: c, limit: limit}
}

// Refresh fetches balance and transactions of address. It returns false when
// a newer refresh started before this one finished and the result was dropped.
func (t *AccountTracker) Refresh(ctx context.Context, address string) bool {
	t.mu.Lock()
	t.seq++
	seq := t.seq
	t.state = AccountState{Address: address, Loading: true}
	t.mu.Unlock()

	var balance, txs json.RawMessage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balance, err = t.client.GetAccountBalance(gctx, address)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = t.client.GetAccountTransactions(gctx, address, t.limit)
		return err
	})
	err := g.Wait()

	t.mu.Lock()
	defer t.mu.Unlock()
	if seq != t.seq {
		return false
	}
	if err != nil {
		t.state = AccountState{Address: address, Err: err}
		return true
	}
	t.state = AccountState{Address: address, Balance: balance, Transactions: txs}
	return true
}

// Snapshot returns the current state
func (t *AccountTracker) Snapshot() AccountState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}
