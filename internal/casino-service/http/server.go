package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/keyshop-casino/internal/casino-service/dto"
	"github.com/radieske/keyshop-casino/internal/casino-service/service"
	"github.com/radieske/keyshop-casino/internal/wagering"
)

// API expõe as mesas (roleta e caça-níquel) via REST
type API struct {
	Log    *zap.Logger
	Casino *service.Casino
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/paytable", a.getPaytable)              // tabela publicada
	r.Post("/rounds", a.openRound)                 // abre rodada
	r.Get("/rounds/{id}", a.getRound)              // ?userId=
	r.Post("/rounds/{id}/bets", a.placeBet)        // aposta de roleta
	r.Post("/rounds/{id}/spin", a.spinRoulette)    // gira a roleta
	r.Post("/rounds/{id}/slots/spin", a.spinSlots) // gira o caça-níquel
	r.Post("/rounds/{id}/recover", a.recoverRound) // descarta rodada presa
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor traduz erros do motor em status HTTP
func statusFor(err error) int {
	switch service.Reason(err) {
	case "validation", "wrong_game":
		return http.StatusBadRequest
	case "insufficient_funds":
		return http.StatusPaymentRequired
	case "not_found":
		return http.StatusNotFound
	case "invalid_state", "round_in_flight":
		return http.StatusConflict
	case "ledger":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.Log.Error("casino request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, dto.ErrorResponse{Error: err.Error(), Reason: service.Reason(err)})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json", Reason: "validation"})
		return false
	}
	return true
}

func missingUser(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "userId required", Reason: "validation"})
}

func (a *API) getPaytable(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.Casino.Paytable())
}

func (a *API) openRound(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenRoundRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == "" {
		missingUser(w)
		return
	}
	info, err := a.Casino.OpenRound(r.Context(), req.UserID, wagering.Game(req.Game))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (a *API) getRound(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		missingUser(w)
		return
	}
	info, err := a.Casino.Round(userID, wagering.RoundHandle(chi.URLParam(r, "id")))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (a *API) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == "" {
		missingUser(w)
		return
	}
	bet, err := a.Casino.PlaceBet(r.Context(), req.UserID, wagering.RoundHandle(chi.URLParam(r, "id")),
		wagering.BetKind(req.Kind), req.Selector, req.Stake)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bet)
}

func (a *API) spinRoulette(w http.ResponseWriter, r *http.Request) {
	var req dto.SpinRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == "" {
		missingUser(w)
		return
	}
	res, err := a.Casino.SpinRoulette(r.Context(), req.UserID, wagering.RoundHandle(chi.URLParam(r, "id")))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) spinSlots(w http.ResponseWriter, r *http.Request) {
	var req dto.SlotSpinRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == "" {
		missingUser(w)
		return
	}
	res, err := a.Casino.SpinSlots(r.Context(), req.UserID, wagering.RoundHandle(chi.URLParam(r, "id")), req.Stake)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) recoverRound(w http.ResponseWriter, r *http.Request) {
	var req dto.SpinRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == "" {
		missingUser(w)
		return
	}
	id := chi.URLParam(r, "id")
	lerr, err := a.Casino.Recover(r.Context(), req.UserID, wagering.RoundHandle(id))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.RecoverResponse{RoundID: id, Status: "DISCARDED", Cause: lerr.Error()})
}
