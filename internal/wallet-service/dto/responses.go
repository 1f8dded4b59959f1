package dto

type WalletResponse struct {
	UserID   string `json:"userId"`
	WalletID string `json:"walletId"`
	Balance  int64  `json:"balance"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
