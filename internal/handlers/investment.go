package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	apperrors "github.com/tropicaldog17/keble/internal/errors"
	"github.com/tropicaldog17/keble/internal/models"
	"github.com/tropicaldog17/keble/internal/services"
)

type InvestmentHandler struct {
	fundingService   services.FundingService
	valuationService services.ValuationService
	logger           *zap.Logger
	now              func() time.Time
}

func NewInvestmentHandler(fundingService services.FundingService, valuationService services.ValuationService, logger *zap.Logger) *InvestmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvestmentHandler{
		fundingService:   fundingService,
		valuationService: valuationService,
		logger:           logger,
		now:              time.Now,
	}
}

// HandleFund handles POST /api/investments/fund
// @Summary Fund an investment
// @Description Create an investment, or top up an existing one when investment_id is set. The wallet debit, investment write and listing update commit together or not at all.
// @Tags investments
// @Accept json
// @Produce json
// @Param request body models.FundingRequest true "Funding request"
// @Success 201 {object} models.FundingResult
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 404 {object} ErrorResponse "User, wallet, listing, investment or portfolio not found"
// @Failure 409 {object} ErrorResponse "Funding aborted and rolled back"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /investments/fund [post]
func (h *InvestmentHandler) HandleFund(w http.ResponseWriter, r *http.Request) {
	var req models.FundingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, h.logger, &apperrors.ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
		return
	}

	result, err := h.fundingService.Fund(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// HandleInvestmentValuation handles GET /api/investments/{id}/valuation
// @Summary Value an investment
// @Description Current value and accumulated return of one investment, rounded to 2 decimal places
// @Tags valuations
// @Produce json
// @Param id path string true "Investment ID"
// @Param as_of query string false "Valuation instant (RFC3339), defaults to now"
// @Success 200 {object} valuation.Valuation
// @Failure 400 {object} ErrorResponse "Invalid as_of"
// @Failure 404 {object} ErrorResponse "Investment or listing not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /investments/{id}/valuation [get]
func (h *InvestmentHandler) HandleInvestmentValuation(w http.ResponseWriter, r *http.Request) {
	at, err := asOf(r, h.now)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	v, err := h.valuationService.GetInvestmentValuation(r.Context(), mux.Vars(r)["id"], at)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// HandleDisburseDividend handles POST /api/investments/{id}/dividends
// @Summary Disburse a dividend
// @Description Pay a flexible investment's accrual since its last dividend into the owner's wallet
// @Tags investments
// @Produce json
// @Param id path string true "Investment ID"
// @Param as_of query string false "Payout instant (RFC3339), defaults to now"
// @Success 201 {object} models.DividendResult
// @Failure 400 {object} ErrorResponse "Not a flexible active investment, or nothing accrued"
// @Failure 404 {object} ErrorResponse "Investment not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /investments/{id}/dividends [post]
func (h *InvestmentHandler) HandleDisburseDividend(w http.ResponseWriter, r *http.Request) {
	at, err := asOf(r, h.now)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.fundingService.DisburseDividend(r.Context(), mux.Vars(r)["id"], at)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// HandleUserValuation handles GET /api/users/{id}/valuation
// @Summary Value a user's holdings
// @Description Aggregated current value of every investment the user owns
// @Tags valuations
// @Produce json
// @Param id path string true "User ID"
// @Param as_of query string false "Valuation instant (RFC3339), defaults to now"
// @Success 200 {object} valuation.Summary
// @Failure 404 {object} ErrorResponse "User or a referenced listing not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /users/{id}/valuation [get]
func (h *InvestmentHandler) HandleUserValuation(w http.ResponseWriter, r *http.Request) {
	at, err := asOf(r, h.now)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	summary, err := h.valuationService.GetUserValuation(r.Context(), mux.Vars(r)["id"], at)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
