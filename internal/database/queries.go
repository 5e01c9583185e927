package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"greenearth/backend/internal/models"
)

// ==================== Wallet Storage Queries ====================

// GetItem retrieves a stored item, or nil when absent
func (db *DB) GetItem(ctx context.Context, clientID string, scope models.StorageScope, key string) (*models.StorageItem, error) {
	var item models.StorageItem
	query := db.Rebind(`
		SELECT client_id, scope, item_key, item_value, updated_at
		FROM wallet_storage
		WHERE client_id = ? AND scope = ? AND item_key = ?
	`)
	err := db.GetContext(ctx, &item, query, clientID, scope, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SetItem creates or replaces a stored item
func (db *DB) SetItem(ctx context.Context, clientID string, scope models.StorageScope, key, value string) error {
	query := db.Rebind(`
		INSERT INTO wallet_storage (client_id, scope, item_key, item_value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (client_id, scope, item_key)
		DO UPDATE SET item_value = excluded.item_value, updated_at = excluded.updated_at
	`)
	_, err := db.ExecContext(ctx, query, clientID, scope, key, value, time.Now().UTC())
	return err
}

// RemoveItem deletes a stored item; removing a missing item is not an error
func (db *DB) RemoveItem(ctx context.Context, clientID string, scope models.StorageScope, key string) error {
	query := db.Rebind(`DELETE FROM wallet_storage WHERE client_id = ? AND scope = ? AND item_key = ?`)
	_, err := db.ExecContext(ctx, query, clientID, scope, key)
	return err
}

// ClearScope deletes every item a client holds in one scope
func (db *DB) ClearScope(ctx context.Context, clientID string, scope models.StorageScope) error {
	query := db.Rebind(`DELETE FROM wallet_storage WHERE client_id = ? AND scope = ?`)
	_, err := db.ExecContext(ctx, query, clientID, scope)
	return err
}

// ListItems returns every item a client holds in one scope, ordered by key
func (db *DB) ListItems(ctx context.Context, clientID string, scope models.StorageScope) ([]models.StorageItem, error) {
	var items []models.StorageItem
	query := db.Rebind(`
		SELECT client_id, scope, item_key, item_value, updated_at
		FROM wallet_storage
		WHERE client_id = ? AND scope = ?
		ORDER BY item_key
	`)
	err := db.SelectContext(ctx, &items, query, clientID, scope)
	return items, err
}

// ==================== Pledge Queries ====================

// CreatePledge inserts a new pledge record
func (db *DB) CreatePledge(ctx context.Context, pledge *models.Pledge) error {
	query := db.Rebind(`
		INSERT INTO pledges (
			pledge_id, donor_address, amount_stx, trees, plastic_kg,
			co2_lbs, marine_life_protected, status, tx_id, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := db.ExecContext(
		ctx, query,
		pledge.PledgeID,
		pledge.DonorAddress,
		pledge.AmountSTX,
		pledge.Trees,
		pledge.PlasticKg,
		pledge.CO2Lbs,
		pledge.MarineLifeProtected,
		pledge.Status,
		pledge.TxID,
		pledge.CreatedAt,
	)
	return err
}

// GetPledge retrieves a pledge by its public ID, or nil when absent
func (db *DB) GetPledge(ctx context.Context, pledgeID string) (*models.Pledge, error) {
	var pledge models.Pledge
	query := db.Rebind(`
		SELECT pledge_id, donor_address, amount_stx, trees, plastic_kg,
		       co2_lbs, marine_life_protected, status, tx_id, created_at
		FROM pledges
		WHERE pledge_id = ?
	`)
	err := db.GetContext(ctx, &pledge, query, pledgeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pledge, nil
}

// ListPledgesByDonor retrieves pledges made from an address, newest first
func (db *DB) ListPledgesByDonor(ctx context.Context, address string, limit, offset int) ([]models.Pledge, error) {
	var pledges []models.Pledge
	query := db.Rebind(`
		SELECT pledge_id, donor_address, amount_stx, trees, plastic_kg,
		       co2_lbs, marine_life_protected, status, tx_id, created_at
		FROM pledges
		WHERE donor_address = ?
		ORDER BY created_at DESC, pledge_id
		LIMIT ? OFFSET ?
	`)
	err := db.SelectContext(ctx, &pledges, query, address, limit, offset)
	return pledges, err
}

// UpdatePledgeStatus records the outcome of a pledge's transfer
func (db *DB) UpdatePledgeStatus(ctx context.Context, pledgeID string, status models.PledgeStatus, txID *string) error {
	query := db.Rebind(`UPDATE pledges SET status = ?, tx_id = ? WHERE pledge_id = ?`)
	res, err := db.ExecContext(ctx, query, status, txID, pledgeID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AttachPledgeTx records the transfer transaction of a pending pledge and
// returns the updated pledge. Returns sql.ErrNoRows when no pending pledge
// has that ID.
func (db *DB) AttachPledgeTx(ctx context.Context, pledgeID, txID string) (*models.Pledge, error) {
	var pledge models.Pledge
	err := db.InTransaction(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`UPDATE pledges SET tx_id = ? WHERE pledge_id = ? AND status = ?`)
		res, err := tx.ExecContext(ctx, query, txID, pledgeID, models.PledgeStatusPending)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}

		query = tx.Rebind(`
			SELECT pledge_id, donor_address, amount_stx, trees, plastic_kg,
			       co2_lbs, marine_life_protected, status, tx_id, created_at
			FROM pledges
			WHERE pledge_id = ?
		`)
		return tx.GetContext(ctx, &pledge, query, pledgeID)
	})
	if err != nil {
		return nil, err
	}
	return &pledge, nil
}

// GetPledgesAwaitingConfirmation returns pending pledges that have a
// transaction attached, oldest first
func (db *DB) GetPledgesAwaitingConfirmation(ctx context.Context, limit int) ([]models.Pledge, error) {
	var pledges []models.Pledge
	query := db.Rebind(`
		SELECT pledge_id, donor_address, amount_stx, trees, plastic_kg,
		       co2_lbs, marine_life_protected, status, tx_id, created_at
		FROM pledges
		WHERE status = ? AND tx_id IS NOT NULL
		ORDER BY created_at, pledge_id
		LIMIT ?
	`)
	err := db.SelectContext(ctx, &pledges, query, models.PledgeStatusPending, limit)
	return pledges, err
}

// GetPledgeTotals sums all non-failed pledges
func (db *DB) GetPledgeTotals(ctx context.Context) (*models.PledgeTotals, error) {
	var totals models.PledgeTotals
	query := db.Rebind(`
		SELECT COALESCE(SUM(amount_stx), 0) AS total_stx,
		       COUNT(DISTINCT donor_address) AS donors,
		       COUNT(*) AS pledges
		FROM pledges
		WHERE status <> ?
	`)
	if err := db.GetContext(ctx, &totals, query, models.PledgeStatusFailed); err != nil {
		return nil, err
	}
	return &totals, nil
}
