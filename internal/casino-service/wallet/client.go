package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	walletdto "github.com/radieske/keyshop-casino/internal/casino-service/wallet/dto"
	"github.com/radieske/keyshop-casino/internal/wagering"
)

// Client fala com o wallet-service; 409 vira wagering.ErrInsufficientFunds
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

func (c *Client) Balance(ctx context.Context, userID string) (int64, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/wallet?userId="+url.QueryEscape(userID), nil)
	return c.do(req, "balance")
}

func (c *Client) Debit(ctx context.Context, userID string, amount int64, externalRef string) (int64, error) {
	return c.post(ctx, "/wallet/debit", "debit", walletdto.AmountRequest{UserID: userID, Amount: amount, ExternalRef: externalRef})
}

func (c *Client) Credit(ctx context.Context, userID string, amount int64, externalRef string) (int64, error) {
	return c.post(ctx, "/wallet/credit", "credit", walletdto.AmountRequest{UserID: userID, Amount: amount, ExternalRef: externalRef})
}

func (c *Client) Settle(ctx context.Context, userID string, debit, credit int64, externalRef string) (int64, error) {
	return c.post(ctx, "/wallet/settle", "settle", walletdto.SettleRequest{UserID: userID, Debit: debit, Credit: credit, ExternalRef: externalRef})
}

func (c *Client) post(ctx context.Context, path, op string, payload any) (int64, error) {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op)
}

func (c *Client) do(req *http.Request, op string) (int64, error) {
	res, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("wallet %s: %w", op, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusConflict {
		return 0, wagering.ErrInsufficientFunds
	}
	if res.StatusCode >= 300 {
		return 0, fmt.Errorf("wallet %s http %d", op, res.StatusCode)
	}
	var out walletdto.WalletResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("wallet %s decode: %w", op, err)
	}
	return out.Balance, nil
}

// ForUser devolve o ledger de um jogador para o motor de apostas
func (c *Client) ForUser(userID string) wagering.Ledger {
	return &userLedger{c: c, userID: userID}
}

type userLedger struct {
	c      *Client
	userID string
}

func (l *userLedger) Balance(ctx context.Context) (int64, error) {
	return l.c.Balance(ctx, l.userID)
}

func (l *userLedger) Debit(ctx context.Context, amount int64, ref string) (int64, error) {
	return l.c.Debit(ctx, l.userID, amount, ref)
}

func (l *userLedger) Credit(ctx context.Context, amount int64, ref string) (int64, error) {
	return l.c.Credit(ctx, l.userID, amount, ref)
}

func (l *userLedger) Settle(ctx context.Context, debit, credit int64, ref string) (int64, error) {
	return l.c.Settle(ctx, l.userID, debit, credit, ref)
}
