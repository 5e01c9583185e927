package database

import (
	"context"

	"greenearth/backend/internal/models"
)

// ClientStorage exposes one browser client's mirrored storage.
// It satisfies wallet.Storage.
type ClientStorage struct {
	db       *DB
	clientID string
}

// ClientStorage returns the storage view for a client
func (db *DB) ClientStorage(clientID string) *ClientStorage {
	return &ClientStorage{db: db, clientID: clientID}
}

// GetItem returns the item value and whether it exists
func (s *ClientStorage) GetItem(ctx context.Context, scope models.StorageScope, key string) (string, bool, error) {
	item, err := s.db.GetItem(ctx, s.clientID, scope, key)
	if err != nil || item == nil {
		return "", false, err
	}
	return item.Value, true, nil
}

// SetItem stores a value
func (s *ClientStorage) SetItem(ctx context.Context, scope models.StorageScope, key, value string) error {
	return s.db.SetItem(ctx, s.clientID, scope, key, value)
}

// RemoveItem deletes a value
func (s *ClientStorage) RemoveItem(ctx context.Context, scope models.StorageScope, key string) error {
	return s.db.RemoveItem(ctx, s.clientID, scope, key)
}

// ClearScope deletes every value in a scope
func (s *ClientStorage) ClearScope(ctx context.Context, scope models.StorageScope) error {
	return s.db.ClearScope(ctx, s.clientID, scope)
}
