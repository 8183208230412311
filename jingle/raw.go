package jingle

// RawEventKind classifies one event delivered by the Stream transport
// (spec.md §2 data flow: "the stream delivers a raw XMPP event").
type RawEventKind int

const (
	// RawJingleSet is an inbound <iq type="set"> carrying a <jingle>
	// child.
	RawJingleSet RawEventKind = iota
	RawIQResult
	RawIQError
	// RawWriteFail means a previous send by this session could not be
	// delivered by the transport.
	RawWriteFail
	// RawStreamTerminated is a recoverable/temporary transport hiccup.
	RawStreamTerminated
	// RawStreamDestroyed means the underlying stream is gone for good.
	RawStreamDestroyed
)

// RawEvent is what a Stream implementation (or the Engine, relaying
// on its behalf) feeds into Session.AcceptEvent. It is the core's
// only view of the outside world; everything about XMPP stream I/O,
// SASL, TLS, etc. lives entirely outside this package.
type RawEvent struct {
	Kind     RawEventKind
	From     string
	To       string
	StanzaID string
	Raw      []byte

	ErrorCond string
	ErrorText string
	ErrorType string
}

// jingleSID extracts the sid="" attribute from a RawJingleSet event's
// raw <jingle> element, used only for engine-level session routing
// (spec.md §4.3); it does not perform full validation.
func (e RawEvent) jingleSID() (string, bool) {
	if e.Kind != RawJingleSet {
		return "", false
	}
	return peekJingleAttr(e.Raw, "sid")
}
