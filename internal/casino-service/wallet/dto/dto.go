package dto

type AmountRequest struct {
	UserID      string `json:"userId"`
	Amount      int64  `json:"amount"`
	ExternalRef string `json:"external_ref"`
}

type SettleRequest struct {
	UserID      string `json:"userId"`
	Debit       int64  `json:"debit"`
	Credit      int64  `json:"credit"`
	ExternalRef string `json:"external_ref"`
}

type WalletResponse struct {
	UserID   string `json:"userId"`
	WalletID string `json:"walletId"`
	Balance  int64  `json:"balance"`
}
