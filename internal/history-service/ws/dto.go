package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// UserID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type   string `json:"type"`   // subscribe | unsubscribe | ping
	UserID string `json:"userId"` // requerido em subscribe/unsubscribe
}

// RoundUpdate é o envelope publicado pelo history-worker e repassado aos clientes
type RoundUpdate struct {
	UserID  string `json:"userId"`
	Payload any    `json:"payload"`
}
