package handlers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/tropicaldog17/keble/docs"
)

// NewRouter wires every endpoint. health reports database reachability.
func NewRouter(investments *InvestmentHandler, portfolios *PortfolioHandler, transactions *TransactionHandler, health func() error, logger *zap.Logger) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.Use(requestLogger(logger))

	r.Handle("/health", methods{http.MethodGet: func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health(); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":  "unhealthy",
					"service": "keble-backend",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "keble-backend",
		})
	}})

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/investments/fund", methods{http.MethodPost: investments.HandleFund})
	api.Handle("/investments/{id}/valuation", methods{http.MethodGet: investments.HandleInvestmentValuation})
	api.Handle("/investments/{id}/dividends", methods{http.MethodPost: investments.HandleDisburseDividend})
	api.Handle("/investments/{id}/transactions", methods{http.MethodGet: transactions.HandleInvestmentTransactions})
	api.Handle("/transactions/{id}", methods{http.MethodGet: transactions.HandleGetTransaction})
	api.Handle("/users/{id}/valuation", methods{http.MethodGet: investments.HandleUserValuation})
	api.Handle("/users/{id}/portfolios", methods{http.MethodGet: portfolios.HandleListUserPortfolios})
	api.Handle("/portfolios", methods{http.MethodPost: portfolios.HandleCreatePortfolio})
	api.Handle("/portfolios/{id}", methods{http.MethodGet: portfolios.HandleGetPortfolio})
	api.Handle("/portfolios/{id}/valuation", methods{http.MethodGet: portfolios.HandlePortfolioValuation})

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	return r
}

// methods dispatches one path by request method. Each path is registered
// once so a wrong method answers 405 instead of falling through mux's
// matcher chain to a 404.
type methods map[string]http.HandlerFunc

func (m methods) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := m[r.Method]; ok {
		h(w, r)
		return
	}
	allowed := make([]string, 0, len(m))
	for method := range m {
		allowed = append(allowed, method)
	}
	sort.Strings(allowed)
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
}

// CORS wraps the router so preflight requests are answered before routing
func CORS(origins []string) func(http.Handler) http.Handler {
	return gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(origins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Request-ID"}),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
