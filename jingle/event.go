package jingle

// EventKind discriminates the variants of JingleEvent the application
// can observe from Session.GetEvent (spec.md §4.1.3).
type EventKind int

const (
	// EvAction is an accepted incoming Jingle action the application
	// may need to confirm explicitly (see requiresConfirmation).
	EvAction EventKind = iota
	// EvAccept is an incoming session-accept on an outgoing session;
	// the session has already transitioned to Active.
	EvAccept
	// EvDtmf carries aggregated DTMF digits (spec.md §4.1.4).
	EvDtmf
	// EvTerminated signals a local failure that is driving the
	// session through hangup (it is not yet destroyed).
	EvTerminated
	// EvDestroy signals the session has reached the terminal state;
	// the application must drop its reference after acknowledging.
	EvDestroy
	// EvResultOk/EvResultError/EvResultWriteFail/EvResultTimeout carry
	// the outcome of a previously sent stanza that requested notify.
	EvResultOk
	EvResultError
	EvResultWriteFail
	EvResultTimeout
)

// JingleEvent is the single event type Session.GetEvent returns. Only
// the fields relevant to Kind are populated; see the package doc
// comment on each EventKind constant above.
type JingleEvent struct {
	Kind     EventKind
	Action   Action
	StanzaID string
	Raw      []byte
	Contents []SessionContent
	Reason   Reason
	Text     string
	ErrText  string
}
