package wagering

// State é a fase de uma rodada
type State uint8

const (
	StateIdle State = iota
	StateAcceptingBets
	StateSpinning
	StateSettled
)

var stateNames = [...]string{
	StateIdle:          "idle",
	StateAcceptingBets: "accepting_bets",
	StateSpinning:      "spinning",
	StateSettled:       "settled",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// transitions é a única fonte das transições legais. Spinning só volta para
// AcceptingBets via revert, quando o ledger recusou o Settle sem aplicar nada.
var transitions = map[State]State{
	StateIdle:          StateAcceptingBets,
	StateAcceptingBets: StateSpinning,
	StateSpinning:      StateSettled,
	StateSettled:       StateIdle,
}

// lifecycle guarda o estado de uma rodada; só muda via advance
type lifecycle struct {
	state State
}

func (l *lifecycle) current() State { return l.state }

func (l *lifecycle) advance(op string, to State) error {
	if next, ok := transitions[l.state]; !ok || next != to {
		return &StateError{Op: op, State: l.state, Err: ErrInvalidTransition}
	}
	l.state = to
	return nil
}

// revert desfaz um advance cujo efeito no ledger foi recusado por inteiro
func (l *lifecycle) revert(op string, from, to State) error {
	if l.state != from || transitions[to] != from {
		return &StateError{Op: op, State: l.state, Err: ErrInvalidTransition}
	}
	l.state = to
	return nil
}

// require valida que a rodada está em want sem mudar nada
func (l *lifecycle) require(op string, want State) error {
	if l.state != want {
		return &StateError{Op: op, State: l.state, Err: ErrInvalidTransition}
	}
	return nil
}
