package wallet

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// DefaultMaxProviders bounds the providers a registry keeps in memory
const DefaultMaxProviders = 4096

// StorageFactory returns the storage of a client
type StorageFactory func(clientID string) Storage

// Registry holds one Provider per client, created on first use. The least
// recently used provider is dropped when the registry is full; its session
// is restored from storage on the next request.
type Registry struct {
	storageFor StorageFactory
	logger     *zap.Logger

	mu        sync.Mutex
	providers *lru.Cache
}

// NewRegistry creates an empty registry holding up to DefaultMaxProviders
func NewRegistry(storageFor StorageFactory, logger *zap.Logger) *Registry {
	return NewBoundedRegistry(storageFor, DefaultMaxProviders, logger)
}

// NewBoundedRegistry creates an empty registry holding up to capacity
// providers. A non-positive capacity means DefaultMaxProviders.
func NewBoundedRegistry(storageFor StorageFactory, capacity int, logger *zap.Logger) *Registry {
	if capacity <= 0 {
		capacity = DefaultMaxProviders
	}
	providers, _ := lru.New(capacity) // only fails for a non-positive size
	return &Registry{
		storageFor: storageFor,
		logger:     logger.Named("wallet"),
		providers:  providers,
	}
}

// Get returns the provider of clientID
func (r *Registry) Get(clientID string) *Provider {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.providers.Get(clientID); ok {
		return p.(*Provider)
	}

	storage := r.storageFor(clientID)
	var p *Provider
	p = NewProvider(
		NewStoredSession(storage),
		storage,
		r.logger.With(zap.String("client_id", clientID)),
		func() { r.evict(clientID, p) },
	)
	r.providers.Add(clientID, p)
	return p
}

// Release is called when a request is done with p. A disconnected provider
// holds nothing storage cannot restore, so it is dropped.
func (r *Registry) Release(clientID string, p *Provider) {
	if p.Snapshot().State != StateDisconnected {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(clientID, p)
}

// Len returns the number of live providers
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.providers.Len()
}

// evict drops a provider after its session was cleared, so the next request
// starts from storage
func (r *Registry) evict(clientID string, p *Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.removeLocked(clientID, p) {
		r.logger.Debug("Wallet provider reset", zap.String("client_id", clientID))
	}
}

// removeLocked removes clientID only while it still maps to p
func (r *Registry) removeLocked(clientID string, p *Provider) bool {
	cur, ok := r.providers.Peek(clientID)
	if !ok || cur.(*Provider) != p {
		return false
	}
	r.providers.Remove(clientID)
	return true
}
