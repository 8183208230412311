package jingle

import "github.com/meszmate/xmpp-go/stanza"

// Protocol-error constructors mirroring the root package's Err* helpers
// (errors.go), extended with the Jingle-specific conditions spec.md §7
// names (not-acceptable).

func errBadRequest(text string) *stanza.StanzaError {
	return stanza.NewStanzaError(stanza.ErrorTypeModify, stanza.ErrorBadRequest, text)
}

func errNotAcceptable(text string) *stanza.StanzaError {
	return stanza.NewStanzaError(stanza.ErrorTypeModify, stanza.ErrorNotAcceptable, text)
}

func errServiceUnavailable(text string) *stanza.StanzaError {
	return stanza.NewStanzaError(stanza.ErrorTypeCancel, stanza.ErrorServiceUnavailable, text)
}

func errFeatureNotImplemented(text string) *stanza.StanzaError {
	return stanza.NewStanzaError(stanza.ErrorTypeCancel, stanza.ErrorFeatureNotImplemented, text)
}

func errInternalServerError(text string) *stanza.StanzaError {
	return stanza.NewStanzaError(stanza.ErrorTypeCancel, stanza.ErrorInternalServerError, text)
}
