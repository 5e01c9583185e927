package client

import "encoding/json"

// AuthResult is the body of /api/hiro/test-auth
type AuthResult struct {
	Authenticated bool   `json:"authenticated"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	TestAddress   string `json:"testAddress,omitempty"`
	ResponseValid bool   `json:"responseValid,omitempty"`
}

// ConnectionResult is the outcome of TestConnection
type ConnectionResult struct {
	Success       bool            `json:"success"`
	Authenticated bool            `json:"authenticated"`
	Message       string          `json:"message"`
	Data          json.RawMessage `json:"data,omitempty"`
}

// TransactionPage is the subset of a transaction list response the client reads
type TransactionPage struct {
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
	Total   int               `json:"total"`
	Results []json.RawMessage `json:"results"`
}
