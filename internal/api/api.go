package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"worthit/internal/config"
	"worthit/internal/domain/models"
	"worthit/internal/lib/jwt"
	"worthit/internal/service"
)

type contextKey string

const usernameKey contextKey = "username"

// APIServer is the HTTP gateway. It extracts the caller's identity from a
// verified bearer token, delegates to the auth and ledger services, and maps
// their typed failures to status codes.
type APIServer struct {
	config *config.Config
	logger *slog.Logger
	server *http.Server
	auth   *service.Auth
	ledger *service.Ledger
	tokens *jwt.Manager
}

func New(config *config.Config, logger *slog.Logger, auth *service.Auth, ledger *service.Ledger, tokens *jwt.Manager) *APIServer {
	return &APIServer{
		config: config,
		logger: logger,
		server: &http.Server{
			Addr: config.ApiHost + ":" + strconv.Itoa(config.ApiPort),
		},
		auth:   auth,
		ledger: ledger,
		tokens: tokens,
	}
}

func (s *APIServer) Start() error {
	s.logger.Info("starting server", slog.String("addr", s.server.Addr))

	s.configureRouter()

	return s.server.ListenAndServe()
}

func (s *APIServer) MustStart() {
	err := s.Start()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic("failed to start server: " + err.Error())
	}
}

func (s *APIServer) Stop(ctx context.Context) error {
	defer s.logger.Info("server stopped")
	return s.server.Shutdown(ctx)
}

func (s *APIServer) configureRouter() {
	router := mux.NewRouter()
	router.HandleFunc("/api/auth/register", s.registerHandler()).Methods("POST")
	router.HandleFunc("/api/auth/login", s.loginHandler()).Methods("POST")
	router.HandleFunc("/api/user/me", s.authenticate(s.meHandler())).Methods("GET")
	router.HandleFunc("/api/user/budget", s.authenticate(s.budgetHandler())).Methods("PUT")
	router.HandleFunc("/api/transactions", s.authenticate(s.createTransactionHandler())).Methods("POST")
	router.HandleFunc("/api/transactions", s.authenticate(s.listTransactionsHandler())).Methods("GET")
	router.HandleFunc("/api/transactions/current-month", s.authenticate(s.currentMonthHandler())).Methods("GET")
	router.HandleFunc("/api/transactions/{id}", s.authenticate(s.updateTransactionHandler())).Methods("PUT")
	router.HandleFunc("/api/transactions/{id}", s.authenticate(s.deleteTransactionHandler())).Methods("DELETE")
	s.server.Handler = router
}

// authenticate verifies the bearer token and puts the resolved username into
// the request context. Handlers never see raw tokens.
func (s *APIServer) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.writeError(w, models.ErrAuthentication)
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.writeError(w, models.ErrAuthentication)
			return
		}

		username, err := s.tokens.Verify(parts[1])
		if err != nil {
			s.writeError(w, models.ErrAuthentication)
			return
		}

		r = r.WithContext(context.WithValue(r.Context(), usernameKey, username))
		next(w, r)
	}
}

func callerUsername(r *http.Request) string {
	username, _ := r.Context().Value(usernameKey).(string)
	return username
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token   string         `json:"token"`
	Type    string         `json:"type"`
	Profile models.Profile `json:"profile"`
}

type BudgetRequest struct {
	MonthlyBudget float64 `json:"monthlyBudget"`
}

type TransactionRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *APIServer) registerHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, models.ErrValidation)
			return
		}

		token, profile, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password, req.DisplayName)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, AuthResponse{Token: token, Type: "Bearer", Profile: profile})
	}
}

func (s *APIServer) loginHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, models.ErrValidation)
			return
		}

		token, profile, err := s.auth.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, AuthResponse{Token: token, Type: "Bearer", Profile: profile})
	}
}

func (s *APIServer) meHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := s.auth.CurrentUser(r.Context(), callerUsername(r))
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, profile)
	}
}

func (s *APIServer) budgetHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BudgetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, models.ErrValidation)
			return
		}

		profile, err := s.auth.UpdateMonthlyBudget(r.Context(), callerUsername(r), req.MonthlyBudget)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, profile)
	}
}

func (s *APIServer) createTransactionHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, models.ErrValidation)
			return
		}

		t, err := s.ledger.Create(r.Context(), callerUsername(r), req.Amount, req.Category, req.Description)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusCreated, t)
	}
}

func (s *APIServer) listTransactionsHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		txs, err := s.ledger.ListAll(r.Context(), callerUsername(r))
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, transactionList(txs))
	}
}

func (s *APIServer) currentMonthHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		txs, err := s.ledger.ListCurrentMonth(r.Context(), callerUsername(r))
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, transactionList(txs))
	}
}

func (s *APIServer) updateTransactionHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := transactionID(r)
		if err != nil {
			s.writeError(w, err)
			return
		}

		var req TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, models.ErrValidation)
			return
		}

		t, err := s.ledger.Update(r.Context(), id, callerUsername(r), req.Amount, req.Category, req.Description)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, t)
	}
}

func (s *APIServer) deleteTransactionHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := transactionID(r)
		if err != nil {
			s.writeError(w, err)
			return
		}

		if err := s.ledger.Delete(r.Context(), id, callerUsername(r)); err != nil {
			s.writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func transactionID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, models.ErrValidation
	}
	return id, nil
}

// transactionList keeps empty results as [] rather than null.
func transactionList(txs []models.Transaction) []models.Transaction {
	if txs == nil {
		return []models.Transaction{}
	}
	return txs
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps a typed failure to a status code and a minimal message.
// The message never distinguishes an unknown username from a wrong password,
// and never carries internal detail.
func (s *APIServer) writeError(w http.ResponseWriter, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, models.ErrValidation):
		status, message = http.StatusBadRequest, "invalid request"
	case errors.Is(err, models.ErrConflict):
		status, message = http.StatusBadRequest, "username or email already in use"
	case errors.Is(err, models.ErrAuthentication):
		status, message = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, models.ErrAuthorization):
		status, message = http.StatusForbidden, "forbidden"
	case errors.Is(err, models.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	default:
		status, message = http.StatusInternalServerError, "internal error"
		s.logger.Error("request failed", "error", err)
	}

	s.writeJSON(w, status, errorResponse{Error: message})
}
