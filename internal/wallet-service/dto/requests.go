package dto

type DepositRequest struct {
	UserID      string `json:"userId"`
	Amount      int64  `json:"amount"`
	ExternalRef string `json:"external_ref,omitempty"` // opcional p/ idempotência simples
}

// AmountRequest é usado por debit e credit
type AmountRequest struct {
	UserID      string `json:"userId"`
	Amount      int64  `json:"amount"`
	ExternalRef string `json:"external_ref"` // ex: roundId
}

// SettleRequest aplica débito e crédito numa única transação
type SettleRequest struct {
	UserID      string `json:"userId"`
	Debit       int64  `json:"debit"`
	Credit      int64  `json:"credit"`
	ExternalRef string `json:"external_ref"`
}
