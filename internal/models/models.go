package models

import "time"

// PledgeStatus represents the state of a donation pledge
type PledgeStatus string

const (
	PledgeStatusPending   PledgeStatus = "PENDING"
	PledgeStatusConfirmed PledgeStatus = "CONFIRMED"
	PledgeStatusFailed    PledgeStatus = "FAILED"
)

// StorageScope mirrors the browser storage area an item lives in
type StorageScope string

const (
	ScopeLocal   StorageScope = "local"
	ScopeSession StorageScope = "session"
)

// Pledge represents a recorded donation intent
type Pledge struct {
	PledgeID            string       `db:"pledge_id"`
	DonorAddress        string       `db:"donor_address"`
	AmountSTX           float64      `db:"amount_stx"`
	Trees               int64        `db:"trees"`
	PlasticKg           float64      `db:"plastic_kg"`
	CO2Lbs              int64        `db:"co2_lbs"`
	MarineLifeProtected int64        `db:"marine_life_protected"`
	Status              PledgeStatus `db:"status"`
	TxID                *string      `db:"tx_id"` // nullable until the transfer is broadcast
	CreatedAt           time.Time    `db:"created_at"`
}

// StorageItem is one mirrored browser storage entry for a client
type StorageItem struct {
	ClientID  string       `db:"client_id"`
	Scope     StorageScope `db:"scope"`
	Key       string       `db:"item_key"`
	Value     string       `db:"item_value"`
	UpdatedAt time.Time    `db:"updated_at"`
}

// PledgeTotals aggregates pledges for the campaign dashboard
type PledgeTotals struct {
	TotalSTX float64 `db:"total_stx"`
	Donors   int64   `db:"donors"`
	Pledges  int64   `db:"pledges"`
}
