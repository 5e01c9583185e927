// Package docs holds the OpenAPI description served under /swagger/.
// Regenerate with: swag init -g cmd/server/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}}
                }
            }
        },
        "/api/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Upstream API status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.StatusResponse"}}
                }
            }
        },
        "/api/status/check": {
            "post": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Re-check upstream API status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.StatusResponse"}}
                }
            }
        },
        "/api/config": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Public client configuration",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ConfigResponse"}}
                }
            }
        },
        "/api/impact": {
            "get": {
                "produces": ["application/json"],
                "tags": ["donations"],
                "summary": "Estimate donation impact",
                "parameters": [
                    {"type": "number", "description": "Donation in STX", "name": "amount", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Quote"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/campaign": {
            "get": {
                "produces": ["application/json"],
                "tags": ["campaign"],
                "summary": "Campaign content and live totals",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.CampaignResponse"}}
                }
            }
        },
        "/api/hiro/balance/{address}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["hiro"],
                "summary": "Account balances",
                "parameters": [
                    {"type": "string", "description": "Stacks address (ST... or SP...)", "name": "address", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/hiro/transactions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["hiro"],
                "summary": "Address transactions or a single transaction",
                "parameters": [
                    {"type": "string", "description": "Stacks address or transaction id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Page size (default 20, max 50)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/hiro/transaction/{txId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["hiro"],
                "summary": "Single transaction",
                "parameters": [
                    {"type": "string", "description": "Transaction id", "name": "txId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/hiro/contract/{address}/{name}/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["hiro"],
                "summary": "Contract events",
                "parameters": [
                    {"type": "string", "description": "Contract deployer address", "name": "address", "in": "path", "required": true},
                    {"type": "string", "description": "Contract name", "name": "name", "in": "path", "required": true},
                    {"type": "integer", "description": "Page size (default 20, max 50)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/hiro/network": {
            "get": {
                "produces": ["application/json"],
                "tags": ["hiro"],
                "summary": "Network block times",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/hiro/test-auth": {
            "get": {
                "produces": ["application/json"],
                "tags": ["hiro"],
                "summary": "Verify the API key upstream",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.AuthTestResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.AuthErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.AuthErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/api.AuthErrorResponse"}}
                }
            }
        },
        "/api/dashboard/{address}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["hiro"],
                "summary": "Donor dashboard",
                "parameters": [
                    {"type": "string", "description": "Stacks address", "name": "address", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.DashboardResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/donations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["donations"],
                "summary": "List pledges of a donor",
                "parameters": [
                    {"type": "string", "description": "Donor address", "name": "address", "in": "query", "required": true},
                    {"type": "integer", "description": "Page size (max 50)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ListPledgesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["donations"],
                "summary": "Record a donation pledge",
                "parameters": [
                    {"description": "Donor and amount", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.CreatePledgeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.CreatePledgeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/donations/quote": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["donations"],
                "summary": "Quote a donation",
                "parameters": [
                    {"description": "Amount and optional donor", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.QuoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Quote"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/donations/qr": {
            "get": {
                "produces": ["image/png"],
                "tags": ["donations"],
                "summary": "Payment QR code",
                "parameters": [
                    {"type": "number", "description": "Donation in STX", "name": "amount", "in": "query", "required": true},
                    {"type": "integer", "description": "Image size in pixels", "name": "size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/donations/{pledgeId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["donations"],
                "summary": "Get a pledge",
                "parameters": [
                    {"type": "string", "description": "Pledge ID", "name": "pledgeId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.PledgeResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/donations/{pledgeId}/tx": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["donations"],
                "summary": "Attach the transfer transaction to a pledge",
                "parameters": [
                    {"type": "string", "description": "Pledge ID", "name": "pledgeId", "in": "path", "required": true},
                    {"description": "Transaction ID", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.AttachTxRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.PledgeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/wallet/{clientId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Wallet session state",
                "parameters": [
                    {"type": "string", "description": "Browser client id (UUID)", "name": "clientId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/wallet.Snapshot"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Disconnect the wallet",
                "parameters": [
                    {"type": "string", "description": "Browser client id (UUID)", "name": "clientId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/wallet.Snapshot"}}
                }
            }
        },
        "/api/wallet/{clientId}/connect": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Connect a wallet",
                "parameters": [
                    {"type": "string", "description": "Browser client id (UUID)", "name": "clientId", "in": "path", "required": true},
                    {"description": "Wallet user data", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/wallet.UserData"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/wallet.Snapshot"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/wallet/{clientId}/clear-error": {
            "post": {
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Clear a failed sign-in",
                "parameters": [
                    {"type": "string", "description": "Browser client id (UUID)", "name": "clientId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/wallet.Snapshot"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/wallet/{clientId}/clear": {
            "post": {
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Clear all wallet session data",
                "parameters": [
                    {"type": "string", "description": "Browser client id (UUID)", "name": "clientId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/wallet.Snapshot"}}
                }
            }
        }
    },
    "definitions": {
        "api.AttachTxRequest": {
            "type": "object",
            "properties": {"txId": {"type": "string"}}
        },
        "api.AuthErrorResponse": {
            "type": "object",
            "properties": {"authenticated": {"type": "boolean"}, "error": {"type": "string"}}
        },
        "api.AuthTestResponse": {
            "type": "object",
            "properties": {
                "authenticated": {"type": "boolean"},
                "message": {"type": "string"},
                "responseValid": {"type": "boolean"},
                "testAddress": {"type": "string"}
            }
        },
        "api.CampaignResponse": {
            "type": "object",
            "properties": {
                "campaign": {"type": "object"},
                "totals": {"$ref": "#/definitions/api.CampaignTotals"}
            }
        },
        "api.CampaignTotals": {
            "type": "object",
            "properties": {
                "donors": {"type": "integer"},
                "pledges": {"type": "integer"},
                "progressPercent": {"type": "number"},
                "raisedStx": {"type": "number"}
            }
        },
        "api.ConfigResponse": {
            "type": "object",
            "properties": {
                "appIcon": {"type": "string"},
                "appName": {"type": "string"},
                "contract": {"type": "object", "properties": {"address": {"type": "string"}, "name": {"type": "string"}}},
                "environment": {"type": "string"},
                "hiroConfigured": {"type": "boolean"},
                "keyFormatValid": {"type": "boolean"},
                "network": {
                    "type": "object",
                    "properties": {
                        "apiUrl": {"type": "string"},
                        "explorerUrl": {"type": "string"},
                        "name": {"type": "string"},
                        "network": {"type": "string"}
                    }
                }
            }
        },
        "api.CreatePledgeRequest": {
            "type": "object",
            "properties": {"amountStx": {"type": "number"}, "donorAddress": {"type": "string"}}
        },
        "api.CreatePledgeResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "paymentUri": {"type": "string"},
                "pledge": {"$ref": "#/definitions/api.PledgeResponse"}
            }
        },
        "api.DashboardResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "balance": {"type": "object"},
                "stxBalance": {"type": "string"},
                "transactions": {"type": "object"}
            }
        },
        "api.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "message": {"type": "string"}}
        },
        "api.HealthResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "version": {"type": "string"}}
        },
        "api.ListPledgesResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "pledges": {"type": "array", "items": {"$ref": "#/definitions/api.PledgeResponse"}}
            }
        },
        "api.PledgeResponse": {
            "type": "object",
            "properties": {
                "amountStx": {"type": "number"},
                "createdAt": {"type": "string"},
                "donorAddress": {"type": "string"},
                "impact": {"$ref": "#/definitions/service.Impact"},
                "pledgeId": {"type": "string"},
                "status": {"type": "string", "enum": ["PENDING", "CONFIRMED", "FAILED"]},
                "txId": {"type": "string"}
            }
        },
        "api.QuoteRequest": {
            "type": "object",
            "properties": {"address": {"type": "string"}, "amount": {"type": "number"}}
        },
        "api.StatusResponse": {
            "type": "object",
            "properties": {
                "api": {
                    "type": "object",
                    "properties": {
                        "authenticated": {"type": "boolean"},
                        "checkedAt": {"type": "string"},
                        "message": {"type": "string"},
                        "state": {"type": "string", "enum": ["checking", "connected", "error", "not-configured"]}
                    }
                },
                "configured": {"type": "boolean"},
                "keyFormatValid": {"type": "boolean"}
            }
        },
        "service.Impact": {
            "type": "object",
            "properties": {
                "co2Lbs": {"type": "integer"},
                "marineLifeProtected": {"type": "integer"},
                "plasticKg": {"type": "number"},
                "trees": {"type": "integer"}
            }
        },
        "service.Quote": {
            "type": "object",
            "properties": {
                "amountStx": {"type": "number"},
                "formatted": {"type": "string"},
                "impact": {"$ref": "#/definitions/service.Impact"}
            }
        },
        "wallet.Snapshot": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "error": {"type": "string"},
                "isConnected": {"type": "boolean"},
                "state": {"type": "string", "enum": ["disconnected", "sign-in-pending", "connected", "error"]},
                "userData": {"$ref": "#/definitions/wallet.UserData"}
            }
        },
        "wallet.UserData": {
            "type": "object",
            "properties": {
                "appUrl": {"type": "string"},
                "decentralizedID": {"type": "string"},
                "profile": {
                    "type": "object",
                    "properties": {
                        "stxAddress": {
                            "type": "object",
                            "properties": {"mainnet": {"type": "string"}, "testnet": {"type": "string"}}
                        }
                    }
                },
                "username": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Green Earth Initiative API",
	Description:      "Donation backend for the Green Earth Initiative: impact estimates, pledges, wallet sessions and a Hiro Platform API proxy.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
