package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/radieske/keyshop-casino/internal/casino-service/service"
	"github.com/radieske/keyshop-casino/internal/wagering"
)

// ledgers devolve sempre o mesmo ledger; falha opcional no Settle
type ledgers struct {
	l         *wagering.MemoryLedger
	settleErr error
}

type failingSettle struct {
	*wagering.MemoryLedger
	err error
}

func (f failingSettle) Settle(ctx context.Context, d, c int64, ref string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.MemoryLedger.Settle(ctx, d, c, ref)
}

func (l *ledgers) ForUser(string) wagering.Ledger {
	return failingSettle{MemoryLedger: l.l, err: l.settleErr}
}

func newAPI(t *testing.T, led *ledgers, draws ...int) *httptest.Server {
	t.Helper()
	c := service.New(service.Deps{
		Log:     zap.NewNop(),
		Table:   wagering.DefaultPaytable(),
		Ledgers: led,
		Source:  wagering.NewSequenceSource(draws...),
	})
	ts := httptest.NewServer((&API{Log: zap.NewNop(), Casino: c}).Router())
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, ts.URL+path, &buf)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode
}

func TestRouletteFlowOverHTTP(t *testing.T) {
	ts := newAPI(t, &ledgers{l: wagering.NewMemoryLedger(10000)}, 0)

	var info wagering.RoundInfo
	if code := call(t, ts, http.MethodPost, "/rounds", map[string]string{"userId": "u1", "game": "roulette"}, &info); code != http.StatusCreated {
		t.Fatalf("open status = %d", code)
	}
	base := "/rounds/" + info.ID.String()

	bet := map[string]any{"userId": "u1", "kind": "color", "selector": "red", "stake": 500}
	if code := call(t, ts, http.MethodPost, base+"/bets", bet, nil); code != http.StatusCreated {
		t.Fatalf("bet status = %d", code)
	}
	var res wagering.RouletteResult
	if code := call(t, ts, http.MethodPost, base+"/spin", map[string]string{"userId": "u1"}, &res); code != http.StatusOK {
		t.Fatalf("spin status = %d", code)
	}
	if res.Number != 0 || res.TotalPayout != 0 || res.Balance != 9500 {
		t.Fatalf("result = %+v", res)
	}

	var got map[string]any
	if code := call(t, ts, http.MethodGet, base+"?userId=u1", nil, &got); code != http.StatusOK {
		t.Fatalf("get status = %d", code)
	}
	if got["state"] != "settled" {
		t.Fatalf("state = %v", got["state"])
	}
}

func TestErrorStatusMapping(t *testing.T) {
	ts := newAPI(t, &ledgers{l: wagering.NewMemoryLedger(100)}, 5)

	var info wagering.RoundInfo
	call(t, ts, http.MethodPost, "/rounds", map[string]string{"userId": "u1", "game": "roulette"}, &info)
	base := "/rounds/" + info.ID.String()

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		reason string
	}{
		{"bad selector", http.MethodPost, base + "/bets", map[string]any{"userId": "u1", "kind": "straight", "selector": "37", "stake": 10}, http.StatusBadRequest, "validation"},
		{"over balance", http.MethodPost, base + "/bets", map[string]any{"userId": "u1", "kind": "color", "selector": "red", "stake": 101}, http.StatusPaymentRequired, "insufficient_funds"},
		{"spin without bets", http.MethodPost, base + "/spin", map[string]any{"userId": "u1"}, http.StatusConflict, "invalid_state"},
		{"second open", http.MethodPost, "/rounds", map[string]any{"userId": "u1", "game": "slots"}, http.StatusConflict, "round_in_flight"},
		{"slot spin on roulette", http.MethodPost, base + "/slots/spin", map[string]any{"userId": "u1", "stake": 10}, http.StatusBadRequest, "wrong_game"},
		{"unknown round", http.MethodGet, "/rounds/nope?userId=u1", nil, http.StatusNotFound, "not_found"},
		{"unknown game", http.MethodPost, "/rounds", map[string]any{"userId": "u2", "game": "poker"}, http.StatusBadRequest, "validation"},
		{"missing user", http.MethodPost, base + "/spin", map[string]any{}, http.StatusBadRequest, "validation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			if code := call(t, ts, tt.method, tt.path, tt.body, &body); code != tt.status {
				t.Fatalf("status = %d, want %d (%v)", code, tt.status, body)
			}
			if body["reason"] != tt.reason {
				t.Fatalf("reason = %q, want %q", body["reason"], tt.reason)
			}
		})
	}
}

func TestLedgerFailureAndRecover(t *testing.T) {
	led := &ledgers{l: wagering.NewMemoryLedger(1000), settleErr: errors.New("wallet down")}
	ts := newAPI(t, led, 3)

	var info wagering.RoundInfo
	call(t, ts, http.MethodPost, "/rounds", map[string]string{"userId": "u1", "game": "roulette"}, &info)
	base := "/rounds/" + info.ID.String()
	call(t, ts, http.MethodPost, base+"/bets", map[string]any{"userId": "u1", "kind": "straight", "selector": "3", "stake": 10}, nil)

	var body map[string]string
	if code := call(t, ts, http.MethodPost, base+"/spin", map[string]string{"userId": "u1"}, &body); code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", code)
	}
	if code := call(t, ts, http.MethodPost, "/rounds", map[string]string{"userId": "u1", "game": "slots"}, nil); code != http.StatusConflict {
		t.Fatalf("open while stuck = %d, want 409", code)
	}
	var rec map[string]string
	if code := call(t, ts, http.MethodPost, base+"/recover", map[string]string{"userId": "u1"}, &rec); code != http.StatusOK {
		t.Fatalf("recover status = %d", code)
	}
	if rec["status"] != "DISCARDED" {
		t.Fatalf("recover body = %v", rec)
	}
	if code := call(t, ts, http.MethodPost, "/rounds", map[string]string{"userId": "u1", "game": "slots"}, nil); code != http.StatusCreated {
		t.Fatalf("open after recover = %d", code)
	}
}

func TestPaytableEndpoint(t *testing.T) {
	ts := newAPI(t, &ledgers{l: wagering.NewMemoryLedger(0)})
	var p struct {
		Roulette map[string]string `json:"roulette"`
		Symbols  []struct {
			ID         string `json:"id"`
			Multiplier int64  `json:"multiplier"`
		} `json:"symbols"`
	}
	if code := call(t, ts, http.MethodGet, "/paytable", nil, &p); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if p.Roulette["straight"] != "35" || p.Roulette["color"] != "2" {
		t.Fatalf("roulette = %v", p.Roulette)
	}
	if len(p.Symbols) != 9 || p.Symbols[8].ID != "diamond" || p.Symbols[8].Multiplier != 50 {
		t.Fatalf("symbols = %+v", p.Symbols)
	}
}
