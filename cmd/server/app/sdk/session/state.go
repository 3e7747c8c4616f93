package session

import "fmt"

// The set of states a session moves through. Idle and Analyzing alternate
// while the session is usable. Halted is terminal.
var (
	Idle      = newState("idle")
	Analyzing = newState("analyzing")
	Halted    = newState("halted")
)

// =============================================================================

var states = make(map[string]State)

// State represents the interaction state of one session.
type State struct {
	value string
}

func newState(state string) State {
	s := State{state}
	states[state] = s
	return s
}

// String returns the name of the state.
func (s State) String() string {
	return s.value
}

// Equal provides support for the go-cmp package and testing.
func (s State) Equal(s2 State) bool {
	return s.value == s2.value
}

// MarshalText implement the marshal interface for JSON conversions.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.value), nil
}

// =============================================================================

// ParseState parses the string value and returns a state if one exists.
func ParseState(value string) (State, error) {
	state, exists := states[value]
	if !exists {
		return State{}, fmt.Errorf("invalid state value: %q", value)
	}

	return state, nil
}
