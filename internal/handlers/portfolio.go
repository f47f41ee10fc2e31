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

type PortfolioHandler struct {
	portfolioService services.PortfolioService
	valuationService services.ValuationService
	logger           *zap.Logger
	now              func() time.Time
}

func NewPortfolioHandler(portfolioService services.PortfolioService, valuationService services.ValuationService, logger *zap.Logger) *PortfolioHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioHandler{
		portfolioService: portfolioService,
		valuationService: valuationService,
		logger:           logger,
		now:              time.Now,
	}
}

// CreatePortfolioRequest is the body of POST /api/portfolios
type CreatePortfolioRequest struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	PlanCategory   string `json:"plan_category"`
	PlanOccurrence string `json:"plan_occurrence"`
}

// HandleCreatePortfolio handles POST /api/portfolios
// @Summary Create a portfolio
// @Tags portfolios
// @Accept json
// @Produce json
// @Param request body CreatePortfolioRequest true "Portfolio"
// @Success 201 {object} models.Portfolio
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /portfolios [post]
func (h *PortfolioHandler) HandleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req CreatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, &apperrors.ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
		return
	}
	if req.UserID == "" {
		writeError(w, h.logger, &apperrors.ErrValidation{Field: "user_id", Message: "user ID is required"})
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(r.Context(), req.UserID, req.Name, req.PlanCategory, req.PlanOccurrence)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, portfolio)
}

// HandlePortfolioValuation handles GET /api/portfolios/{id}/valuation
// @Summary Value a portfolio
// @Description Portfolio totals derived from its investments
// @Tags valuations
// @Produce json
// @Param id path string true "Portfolio ID"
// @Param as_of query string false "Valuation instant (RFC3339), defaults to now"
// @Success 200 {object} services.PortfolioValuation
// @Failure 404 {object} ErrorResponse "Portfolio or a referenced listing not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /portfolios/{id}/valuation [get]
func (h *PortfolioHandler) HandlePortfolioValuation(w http.ResponseWriter, r *http.Request) {
	at, err := asOf(r, h.now)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	pv, err := h.valuationService.GetPortfolioValuation(r.Context(), mux.Vars(r)["id"], at)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, pv)
}

// HandleGetPortfolio handles GET /api/portfolios/{id}
// @Summary Get a portfolio
// @Tags portfolios
// @Produce json
// @Param id path string true "Portfolio ID"
// @Success 200 {object} models.Portfolio
// @Failure 404 {object} ErrorResponse "Portfolio not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /portfolios/{id} [get]
func (h *PortfolioHandler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetPortfolio(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolio)
}

// HandleListUserPortfolios handles GET /api/users/{id}/portfolios
// @Summary List a user's portfolios
// @Tags portfolios
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {array} models.Portfolio
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /users/{id}/portfolios [get]
func (h *PortfolioHandler) HandleListUserPortfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.portfolioService.ListPortfolios(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if portfolios == nil {
		portfolios = []*models.Portfolio{}
	}
	writeJSON(w, http.StatusOK, portfolios)
}
