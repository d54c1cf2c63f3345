package activation

// ConsumedValue is how Consumed is written to the attribute store.
const ConsumedValue = "active"

// State is the activation state of one account: Pending with a code, or
// Consumed. The zero value is Consumed, matching accounts that never had a
// code recorded.
type State struct {
	code    string
	pending bool
}

// Pending returns the state of an account still waiting for its first login.
func Pending(code string) State { return State{code: code, pending: true} }

// Consumed returns the state of an activated account.
func Consumed() State { return State{} }

func (s State) IsPending() bool  { return s.pending }
func (s State) IsConsumed() bool { return !s.pending }

// Code returns the pending code; ok is false for Consumed.
func (s State) Code() (code string, ok bool) { return s.code, s.pending }

func (s State) String() string {
	if s.pending {
		return "pending"
	}
	return "consumed"
}

// decodeState maps the stored attribute onto a State. A missing or empty
// attribute and the literal "active" both mean Consumed.
func decodeState(raw string, recorded bool) State {
	if !recorded || raw == "" || raw == ConsumedValue {
		return Consumed()
	}
	return Pending(raw)
}

// encodeState is the inverse of decodeState for recorded states.
func encodeState(s State) string {
	if s.pending {
		return s.code
	}
	return ConsumedValue
}
