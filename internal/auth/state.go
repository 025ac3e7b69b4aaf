package auth

import "fmt"

// State es el estado del flujo de autorización de una credencial.
//
//	Start -> CredentialParsed -> Verified -> TokenIssued
//	            |                   |
//	            +----> Rejected <---+
type State int

const (
	Start State = iota
	CredentialParsed
	Verified
	TokenIssued
	Rejected
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case CredentialParsed:
		return "credential_parsed"
	case Verified:
		return "verified"
	case TokenIssued:
		return "token_issued"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reporta TokenIssued o Rejected.
func (s State) Terminal() bool { return s == TokenIssued || s == Rejected }

var transitions = map[State][]State{
	Start:            {CredentialParsed, Rejected},
	CredentialParsed: {Verified, Rejected},
	Verified:         {TokenIssued, Rejected},
}

// CanTransition reporta si from -> to es un paso válido.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
