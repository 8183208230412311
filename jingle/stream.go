package jingle

import (
	"context"

	"github.com/meszmate/xmpp-go/stanza"
)

// Stream is the transport seam between a Session and the XMPP stream
// carrying it. Sessions never see SASL, TLS, or any stream-level
// concern; they only ever call Stream (spec.md §2's "the core has no
// knowledge of the transport"). Implemented by the plugins/jingle
// adapter over plugin.InitParams.
type Stream interface {
	// Send emits <iq type="set" to="to" id="id"> wrapping jingleXML (an
	// already-encoded <jingle> element). The session, not the stream,
	// picks id (spec.md §4.2's local_sid-prefixed id scheme).
	Send(ctx context.Context, to, id string, jingleXML []byte) error
	// ReplyResult/ReplyError acknowledge an inbound request previously
	// observed with stanza id `id`. rawReceived is the full received
	// element, embedded verbatim when id is empty (spec.md §4.1
	// confirm).
	ReplyResult(ctx context.Context, to, id string, rawReceived []byte) error
	ReplyError(ctx context.Context, to, id string, stErr *stanza.StanzaError, rawReceived []byte) error
	// SendMessage emits a plain <message type="chat" to=to><body>body
	// </body></message>, used only by NewOutgoing's optional chat_message
	// (spec.md §4.1 new_outgoing: "optionally sends a plain <message>
	// body"; session.cpp's JGSession::JGSession calls sendMessage(msg)
	// before building the session-initiate). Best-effort: a failure here
	// does not abort session creation.
	SendMessage(ctx context.Context, to, body string) error
	// LocalJID is this side's full JID, used as the initiator/responder
	// attribute on outgoing stanzas.
	LocalJID() string
}
