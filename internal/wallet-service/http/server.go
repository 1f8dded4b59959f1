package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/keyshop-casino/internal/wallet-service/dto"
	"github.com/radieske/keyshop-casino/internal/wallet-service/repo"
)

// Repo define a interface de operações de carteira usadas pelo handler HTTP
type Repo interface {
	GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error)
	Deposit(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error)
	Debit(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error)
	Credit(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error)
	Settle(ctx context.Context, userID string, debit, credit int64, externalRef string) (walletID string, newBalance int64, err error)
}

// Server expõe endpoints HTTP para operações de carteira (wallet)
type Server struct {
	log  *zap.Logger
	repo Repo
	ops  *prometheus.CounterVec
}

// NewServer instancia o servidor HTTP de wallet e registra o contador de operações
func NewServer(log *zap.Logger, repo Repo, reg prometheus.Registerer) *Server {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_operations_total",
		Help: "operações de carteira por tipo e resultado",
	}, []string{"op", "result"})
	reg.MustRegister(ops)
	return &Server{log: log, repo: repo, ops: ops}
}

// Router retorna o mux HTTP com as rotas da API de wallet
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /wallet", s.getWallet)         // ?userId=...
	mux.HandleFunc("POST /wallet/deposit", s.deposit) // recarga
	mux.HandleFunc("POST /wallet/debit", s.debit)
	mux.HandleFunc("POST /wallet/credit", s.credit)
	mux.HandleFunc("POST /wallet/settle", s.settle)
	return mux
}

// getWallet retorna (ou cria) a carteira e saldo do usuário
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId required")
		return
	}
	walletID, bal, err := s.repo.GetOrCreateWallet(r.Context(), userID)
	if err != nil {
		s.log.Error("get wallet", zap.String("userId", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{UserID: userID, WalletID: walletID, Balance: bal})
}

// deposit adiciona saldo à carteira do usuário
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	walletID, bal, err := s.repo.Deposit(r.Context(), req.UserID, req.Amount, req.ExternalRef)
	s.reply(w, "deposit", req.UserID, walletID, bal, err)
}

func (s *Server) debit(w http.ResponseWriter, r *http.Request) {
	var req dto.AmountRequest
	if !decodeAmount(w, r, &req) {
		return
	}
	walletID, bal, err := s.repo.Debit(r.Context(), req.UserID, req.Amount, req.ExternalRef)
	s.reply(w, "debit", req.UserID, walletID, bal, err)
}

func (s *Server) credit(w http.ResponseWriter, r *http.Request) {
	var req dto.AmountRequest
	if !decodeAmount(w, r, &req) {
		return
	}
	walletID, bal, err := s.repo.Credit(r.Context(), req.UserID, req.Amount, req.ExternalRef)
	s.reply(w, "credit", req.UserID, walletID, bal, err)
}

// settle aplica débito de stakes e crédito de prêmios de uma rodada numa só transação
func (s *Server) settle(w http.ResponseWriter, r *http.Request) {
	var req dto.SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" || req.ExternalRef == "" || req.Debit < 0 || req.Credit < 0 || req.Debit+req.Credit == 0 {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	walletID, bal, err := s.repo.Settle(r.Context(), req.UserID, req.Debit, req.Credit, req.ExternalRef)
	s.reply(w, "settle", req.UserID, walletID, bal, err)
}

func decodeAmount(w http.ResponseWriter, r *http.Request, req *dto.AmountRequest) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return false
	}
	if req.UserID == "" || req.Amount <= 0 || req.ExternalRef == "" {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	return true
}

// reply traduz o erro do repo em status HTTP e conta a operação
func (s *Server) reply(w http.ResponseWriter, op, userID, walletID string, bal int64, err error) {
	switch {
	case err == nil:
		s.ops.WithLabelValues(op, "ok").Inc()
		writeJSON(w, http.StatusOK, dto.WalletResponse{UserID: userID, WalletID: walletID, Balance: bal})
	case errors.Is(err, repo.ErrInsufficientFunds):
		s.ops.WithLabelValues(op, "insufficient_funds").Inc()
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, repo.ErrInvalidAmount):
		s.ops.WithLabelValues(op, "invalid").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repo.ErrNotFound):
		s.ops.WithLabelValues(op, "not_found").Inc()
		writeError(w, http.StatusNotFound, "wallet not found")
	default:
		s.ops.WithLabelValues(op, "error").Inc()
		s.log.Error("wallet op failed", zap.String("op", op), zap.String("userId", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}
