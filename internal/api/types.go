package api

import (
	"encoding/json"
	"time"

	"greenearth/backend/internal/campaign"
	"greenearth/backend/internal/models"
	"greenearth/backend/internal/service"
	"greenearth/backend/internal/worker"
)

// ==================== Hiro Proxy ====================

// AuthTestResponse is the body of a successful /api/hiro/test-auth
type AuthTestResponse struct {
	Message       string `json:"message"`
	Authenticated bool   `json:"authenticated"`
	TestAddress   string `json:"testAddress"`
	ResponseValid bool   `json:"responseValid"`
}

// AuthErrorResponse is the body of a failed /api/hiro/test-auth
type AuthErrorResponse struct {
	Error         string `json:"error"`
	Authenticated bool   `json:"authenticated"`
}

// DashboardResponse combines balance and recent activity of an address
type DashboardResponse struct {
	Address      string          `json:"address"`
	Balance      json.RawMessage `json:"balance"`
	Transactions json.RawMessage `json:"transactions"`
	STXBalance   string          `json:"stxBalance"` // formatted, e.g. "1,234.5 STX"
}

// ==================== Status & Config ====================

// StatusResponse reports upstream availability
type StatusResponse struct {
	API            worker.APIStatus `json:"api"`
	Configured     bool             `json:"configured"`
	KeyFormatValid bool             `json:"keyFormatValid"`
}

// NetworkInfo describes the configured Stacks network
type NetworkInfo struct {
	Network     string `json:"network"`
	Name        string `json:"name"`
	ExplorerURL string `json:"explorerUrl"`
	APIURL      string `json:"apiUrl"`
}

// ContractInfo identifies the campaign contract
type ContractInfo struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// ConfigResponse is the public client configuration. It never carries the key.
type ConfigResponse struct {
	AppName        string       `json:"appName"`
	AppIcon        string       `json:"appIcon"`
	Environment    string       `json:"environment"`
	Network        NetworkInfo  `json:"network"`
	Contract       ContractInfo `json:"contract"`
	HiroConfigured bool         `json:"hiroConfigured"`
	KeyFormatValid bool         `json:"keyFormatValid"`
}

// ==================== Donations ====================

// QuoteRequest asks for the projection of a donation
type QuoteRequest struct {
	Amount  float64 `json:"amount"`
	Address string  `json:"address,omitempty"` // checked for affordability when set
}

// CreatePledgeRequest records a donation pledge
type CreatePledgeRequest struct {
	DonorAddress string  `json:"donorAddress"`
	AmountSTX    float64 `json:"amountStx"`
}

// AttachTxRequest links a broadcast transaction to a pledge
type AttachTxRequest struct {
	TxID string `json:"txId"`
}

// PledgeResponse is a pledge as returned to clients
type PledgeResponse struct {
	PledgeID     string              `json:"pledgeId"`
	DonorAddress string              `json:"donorAddress"`
	AmountSTX    float64             `json:"amountStx"`
	Impact       service.Impact      `json:"impact"`
	Status       models.PledgeStatus `json:"status"`
	TxID         *string             `json:"txId"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// CreatePledgeResponse is returned after a pledge is recorded
type CreatePledgeResponse struct {
	Pledge     PledgeResponse `json:"pledge"`
	Message    string         `json:"message"`
	PaymentURI string         `json:"paymentUri"`
}

// ListPledgesResponse lists the pledges of a donor
type ListPledgesResponse struct {
	Address string           `json:"address"`
	Pledges []PledgeResponse `json:"pledges"`
}

// ==================== Campaign ====================

// CampaignTotals are the live pledge aggregates
type CampaignTotals struct {
	RaisedSTX       float64 `json:"raisedStx"`
	Donors          int64   `json:"donors"`
	Pledges         int64   `json:"pledges"`
	ProgressPercent float64 `json:"progressPercent"`
}

// CampaignResponse is the campaign content with live totals
type CampaignResponse struct {
	Campaign *campaign.Campaign `json:"campaign"`
	Totals   CampaignTotals     `json:"totals"`
}

// ==================== Error Response ====================

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ==================== Health Check ====================

// HealthResponse represents health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func toPledgeResponse(p *models.Pledge) PledgeResponse {
	return PledgeResponse{
		PledgeID:     p.PledgeID,
		DonorAddress: p.DonorAddress,
		AmountSTX:    p.AmountSTX,
		Impact: service.Impact{
			Trees:               p.Trees,
			PlasticKg:           p.PlasticKg,
			CO2Lbs:              p.CO2Lbs,
			MarineLifeProtected: p.MarineLifeProtected,
		},
		Status:    p.Status,
		TxID:      p.TxID,
		CreatedAt: p.CreatedAt,
	}
}
