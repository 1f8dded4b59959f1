package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/keyshop-casino/internal/history-service/cache"
	"github.com/radieske/keyshop-casino/internal/history-service/dto"
	"github.com/radieske/keyshop-casino/pkg/contracts/stats"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Reader é o repositório de leitura (Postgres em produção)
type Reader interface {
	ListRounds(ctx context.Context, userID string, limit int) ([]dto.Round, error)
	GetStats(ctx context.Context, userID string) (stats.PlayerStats, error)
}

// API expõe o histórico de rodadas e as estatísticas do jogador
type API struct {
	Log      *zap.Logger
	ReadRepo Reader        // acesso ao banco de dados
	Cache    *cache.Cache  // cache de stats (opcional)
	CacheTTL time.Duration // padrão 30s
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/players/{id}/rounds", a.listRounds) // histórico, mais recentes primeiro
	r.Get("/v1/players/{id}/stats", a.getStats)    // agregado do jogador
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) listRounds(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit := DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, MaxLimit)
	}

	rounds, err := a.ReadRepo.ListRounds(r.Context(), id, limit)
	if err != nil {
		a.Log.Error("list rounds", zap.String("userId", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rounds == nil {
		rounds = []dto.Round{}
	}
	writeJSON(w, http.StatusOK, dto.RoundPage{UserID: id, Limit: limit, Rounds: rounds})
}

// getStats retorna as stats do jogador, preferencialmente do cache
func (a *API) getStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if a.Cache != nil {
		var fromCache stats.PlayerStats
		ok, err := a.Cache.GetStats(r.Context(), id, &fromCache)
		if err != nil {
			a.Log.Warn("stats cache get", zap.String("userId", id), zap.Error(err))
		}
		if ok && err == nil {
			writeJSON(w, http.StatusOK, fromCache)
			return
		}
	}

	s, err := a.ReadRepo.GetStats(r.Context(), id)
	if err != nil {
		a.Log.Error("get stats", zap.String("userId", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if a.Cache != nil {
		ttl := a.CacheTTL
		if ttl <= 0 {
			ttl = 30 * time.Second
		}
		_ = a.Cache.SetStats(r.Context(), s, ttl) // salva no cache por 30s
	}
	writeJSON(w, http.StatusOK, s)
}
