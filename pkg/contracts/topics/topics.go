package topics

const (
	// Rodadas liquidadas (key = userId)
	RoundSettled = "round_settled"

	// DLQs
	RoundSettledDLQ = "round_settled_dlq"
)
