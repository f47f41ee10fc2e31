// Package docs registers the Swagger document served under /swagger/.
// Keep it in step with the handler annotations.
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
        "/investments/fund": {
            "post": {
                "description": "Create an investment, or top up an existing one when investment_id is set. The wallet debit, investment write and listing update commit together or not at all.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["investments"],
                "summary": "Fund an investment",
                "parameters": [
                    {
                        "description": "Funding request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.FundingRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.FundingResult"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "User, wallet, listing, investment or portfolio not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Funding aborted and rolled back", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/investments/{id}/valuation": {
            "get": {
                "description": "Current value and accumulated return of one investment, rounded to 2 decimal places",
                "produces": ["application/json"],
                "tags": ["valuations"],
                "summary": "Value an investment",
                "parameters": [
                    {"type": "string", "description": "Investment ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Valuation instant (RFC3339), defaults to now", "name": "as_of", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/valuation.Valuation"}},
                    "400": {"description": "Invalid as_of", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Investment or listing not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/investments/{id}/dividends": {
            "post": {
                "description": "Pay a flexible investment's accrual since its last dividend into the owner's wallet",
                "produces": ["application/json"],
                "tags": ["investments"],
                "summary": "Disburse a dividend",
                "parameters": [
                    {"type": "string", "description": "Investment ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Payout instant (RFC3339), defaults to now", "name": "as_of", "in": "query"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.DividendResult"}},
                    "400": {"description": "Not a flexible active investment, or nothing accrued", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Investment not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/valuation": {
            "get": {
                "description": "Aggregated current value of every investment the user owns",
                "produces": ["application/json"],
                "tags": ["valuations"],
                "summary": "Value a user's holdings",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Valuation instant (RFC3339), defaults to now", "name": "as_of", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/valuation.Summary"}},
                    "404": {"description": "User or a referenced listing not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/portfolios": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["portfolios"],
                "summary": "Create a portfolio",
                "parameters": [
                    {
                        "description": "Portfolio",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.CreatePortfolioRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Portfolio"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/portfolios/{id}/valuation": {
            "get": {
                "description": "Portfolio totals derived from its investments",
                "produces": ["application/json"],
                "tags": ["valuations"],
                "summary": "Value a portfolio",
                "parameters": [
                    {"type": "string", "description": "Portfolio ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Valuation instant (RFC3339), defaults to now", "name": "as_of", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.PortfolioValuation"}},
                    "404": {"description": "Portfolio or a referenced listing not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/portfolios/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["portfolios"],
                "summary": "Get a portfolio",
                "parameters": [
                    {"type": "string", "description": "Portfolio ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Portfolio"}},
                    "404": {"description": "Portfolio not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/portfolios": {
            "get": {
                "produces": ["application/json"],
                "tags": ["portfolios"],
                "summary": "List a user's portfolios",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Portfolio"}}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/transactions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Get a payment record",
                "parameters": [
                    {"type": "string", "description": "Transaction ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Transaction"}},
                    "404": {"description": "Transaction not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/investments/{id}/transactions": {
            "get": {
                "description": "Funding, top-up and dividend records, oldest first",
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "List an investment's payment records",
                "parameters": [
                    {"type": "string", "description": "Investment ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Transaction"}}},
                    "404": {"description": "Investment not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.CreatePortfolioRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "name": {"type": "string"},
                "plan_category": {"type": "string", "enum": ["growth", "income"]},
                "plan_occurrence": {"type": "string", "enum": ["one_off", "monthly", "quarterly"]}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "field": {"type": "string"},
                "steps": {"type": "array", "items": {"$ref": "#/definitions/handlers.StepFailureResponse"}}
            }
        },
        "handlers.StepFailureResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "models.FundingRequest": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "user_id": {"type": "string"},
                "listing_id": {"type": "string"},
                "investment_id": {"type": "string"},
                "portfolio_id": {"type": "string"},
                "investment_category": {"type": "string", "enum": ["FIXED", "FLEXIBLE"]},
                "amount": {"type": "string", "example": "500.00"},
                "duration": {"type": "integer", "description": "Months, must equal the listing holding period"}
            }
        },
        "models.FundingResult": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "investment_id": {"type": "string"},
                "transaction_id": {"type": "string"},
                "amount": {"type": "string"},
                "tokens": {"type": "integer"},
                "top_up": {"type": "boolean"},
                "state": {"type": "string"},
                "committed_at": {"type": "string", "format": "date-time"}
            }
        },
        "models.DividendResult": {
            "type": "object",
            "properties": {
                "investment_id": {"type": "string"},
                "transaction_id": {"type": "string"},
                "amount": {"type": "string"},
                "last_dividends_date": {"type": "string", "format": "date-time"},
                "dividends_paid": {"type": "string"}
            }
        },
        "models.Portfolio": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "name": {"type": "string"},
                "plan_category": {"type": "string"},
                "plan_occurrence": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "models.Transaction": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "wallet_id": {"type": "string"},
                "flow": {"type": "string", "enum": ["debit", "credit"]},
                "purpose": {"type": "string", "enum": ["investment", "top_up", "dividend"]},
                "amount": {"type": "string"},
                "status": {"type": "string"},
                "listing_id": {"type": "string"},
                "investment_id": {"type": "string"},
                "reference": {"type": "string"},
                "note": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "valuation.Valuation": {
            "type": "object",
            "properties": {
                "investment_id": {"type": "string"},
                "listing_id": {"type": "string"},
                "investment_category": {"type": "string"},
                "investment_status": {"type": "string"},
                "amount": {"type": "string"},
                "rate": {"type": "string"},
                "elapsed_fraction": {"type": "string"},
                "accumulated_return": {"type": "string"},
                "current_value": {"type": "string"},
                "expected_payout": {"type": "string"},
                "no_tokens": {"type": "integer"}
            }
        },
        "valuation.Summary": {
            "type": "object",
            "properties": {
                "investment_count": {"type": "integer"},
                "total_amount_invested": {"type": "string"},
                "total_current_value": {"type": "string"},
                "total_accumulated_return": {"type": "string"},
                "total_expected_payout": {"type": "string"},
                "total_tokens": {"type": "integer"},
                "unique_asset_count": {"type": "integer"},
                "investments": {"type": "array", "items": {"$ref": "#/definitions/valuation.Valuation"}}
            }
        },
        "services.PortfolioValuation": {
            "type": "object",
            "properties": {
                "portfolio": {"$ref": "#/definitions/models.Portfolio"},
                "summary": {"$ref": "#/definitions/valuation.Summary"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Keble API",
	Description:      "Investment funding and valuation backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
