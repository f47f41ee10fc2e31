package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tropicaldog17/keble/internal/services"
)

type TransactionHandler struct {
	service services.TransactionService
	logger  *zap.Logger
}

func NewTransactionHandler(service services.TransactionService, logger *zap.Logger) *TransactionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionHandler{service: service, logger: logger}
}

// HandleGetTransaction handles GET /api/transactions/{id}
// @Summary Get a payment record
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} ErrorResponse "Transaction not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /transactions/{id} [get]
func (h *TransactionHandler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.service.GetTransaction(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// HandleInvestmentTransactions handles GET /api/investments/{id}/transactions
// @Summary List an investment's payment records
// @Description Funding, top-up and dividend records, oldest first
// @Tags transactions
// @Produce json
// @Param id path string true "Investment ID"
// @Success 200 {array} models.Transaction
// @Failure 404 {object} ErrorResponse "Investment not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /investments/{id}/transactions [get]
func (h *TransactionHandler) HandleInvestmentTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.ListInvestmentTransactions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}
