package jingle

// Action enumerates both the outer Jingle stanza's type="" token
// (spec.md §6 Action enum) and the internal classification attached to
// a decoded session-info sub-event (spec.md §4.1.4). The two overlap
// in spec.md's own enum listing ("ringing, trying, received" appear
// both as outer wire tokens on nonconforming peers and as
// session-info child classifications); keeping one Action type for
// both mirrors that.
type Action string

// Outer, IQ-level Jingle actions (XEP-0166 §7.2, §6.8 session-info).
const (
	ActSessionInitiate  Action = "session-initiate"
	ActSessionAccept    Action = "session-accept"
	ActSessionTerminate Action = "session-terminate"
	ActSessionInfo      Action = "session-info"
	ActTransportInfo    Action = "transport-info"
	ActTransportAccept  Action = "transport-accept"
	ActTransportReject  Action = "transport-reject"
	ActTransportReplace Action = "transport-replace"
	ActContentAccept    Action = "content-accept"
	ActContentAdd       Action = "content-add"
	ActContentModify    Action = "content-modify"
	ActContentReject    Action = "content-reject"
	ActContentRemove    Action = "content-remove"
	ActSessionTransfer  Action = "session-transfer"
)

// Session-info sub-event classifications. ActDtmf is preserved as the
// literal uppercase string "DTMF" per spec.md §9's open question —
// every other token here is lowercase; do not "fix" the casing.
const (
	ActDtmf     Action = "DTMF"
	ActRinging  Action = "ringing"
	ActTrying   Action = "trying"
	ActReceived Action = "received"
	ActHold     Action = "hold"
	ActActive   Action = "active"
	ActMute     Action = "mute"
	ActTransfer Action = "transfer"
)

// Direction is which side sent the session-initiate that created a
// session.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

// State is the session lifecycle state (spec.md §4.1.1).
type State int

const (
	Idle State = iota
	Pending
	Active
	Ending
	Destroy
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Active:
		return "active"
	case Ending:
		return "ending"
	case Destroy:
		return "destroy"
	default:
		return "unknown"
	}
}

// contentEncodeFlags is the action -> encoding-flags table from
// spec.md §4.1 (send_content). Only content/transport-carrying
// actions appear here; session-initiate/session-accept always use
// the "full" shape (description+transport+candidates+auth) per
// spec.md's new_outgoing/accept contracts and are not looked up here.
var contentEncodeFlags = map[Action]encodeFlags{
	ActContentAdd:       {description: true, transport: true, candidates: true, auth: true},
	ActTransportInfo:    {transport: true, candidates: true, auth: true},
	ActTransportReplace: {description: true, transport: true, auth: true},
	ActTransportAccept:  {description: true, transport: true},
	ActTransportReject:  {description: true, transport: true},
	ActContentAccept:    {description: true, transport: true},
	ActContentModify:    {description: true, transport: true},
	ActContentReject:    {minimal: true},
	ActContentRemove:    {minimal: true},
}

// acceptRule says, for one (state, action), which directions of the
// *incoming* event are legal. A direction not present in the set is
// rejected with bad-request.
type acceptRule struct {
	outgoing bool
	incoming bool
}

var anyDirection = acceptRule{outgoing: true, incoming: true}

// acceptanceTable implements spec.md §4.1.2. The map is keyed by
// State then Action; an action absent from a state's map is rejected.
// "direction" here means the Session's direction (who sent the
// original session-initiate), since that determines which peer is
// allowed to send session-accept.
var acceptanceTable = map[State]map[Action]acceptRule{
	Idle: {
		ActSessionInitiate: {incoming: true},
	},
	Pending: {
		ActSessionAccept:    {outgoing: true}, // session is outgoing; incoming session-accept is an error
		ActSessionTerminate: anyDirection,
		ActSessionInfo:      anyDirection,
		ActTransportInfo:    anyDirection,
		ActTransportAccept:  anyDirection,
		ActTransportReject:  anyDirection,
		ActTransportReplace: anyDirection,
		ActContentAccept:    anyDirection,
		ActContentAdd:       anyDirection,
		ActContentModify:    anyDirection,
		ActContentReject:    anyDirection,
		ActContentRemove:    anyDirection,
	},
	Active: {
		ActSessionTerminate: anyDirection,
		ActSessionInfo:      anyDirection,
		ActTransportInfo:    anyDirection,
		ActTransportAccept:  anyDirection,
		ActTransportReject:  anyDirection,
		ActTransportReplace: anyDirection,
		ActContentAccept:    anyDirection,
		ActContentAdd:       anyDirection,
		ActContentModify:    anyDirection,
		ActContentReject:    anyDirection,
		ActContentRemove:    anyDirection,
		ActSessionTransfer:  anyDirection,
	},
}

// infoSubActionAcceptance implements spec.md §4.1.2's carve-out for the
// session-info sub-actions (dtmf/transfer/hold/active/mute/ringing/
// trying/received): the outer wire action for all of these is always
// ActSessionInfo (see acceptanceTable above), so legality has to be
// re-checked against the decoded sub-action, not the outer one —
// exactly the switch on the decoded child that session.cpp:887-929
// performs rather than a blanket session-info allowance. Consulted only
// when DecodedJingle.InfoAction is non-empty.
var infoSubActionAcceptance = map[State]map[Action]acceptRule{
	Pending: {
		ActDtmf:     anyDirection,
		ActRinging:  anyDirection,
		ActTrying:   anyDirection,
		ActReceived: anyDirection,
		ActHold:     anyDirection,
		ActActive:   anyDirection,
		ActMute:     anyDirection,
		ActTransfer: anyDirection,
	},
	Active: {
		ActDtmf:     anyDirection,
		ActTrying:   anyDirection,
		ActReceived: anyDirection,
		ActHold:     anyDirection,
		ActActive:   anyDirection,
		ActMute:     anyDirection,
		ActTransfer: anyDirection,
		// ActRinging deliberately absent: spec.md §4.1.2 says Active
		// accepts "everything except session-accept, session-initiate,
		// ringing".
	},
}

// requiresConfirmation reports whether an accepted incoming action
// must be confirmed by the application via Session.ConfirmResult or
// Session.ConfirmError, rather than being auto-confirmed with
// iq/result (spec.md §4.1.3 step 3).
func requiresConfirmation(a Action) bool {
	switch a {
	case ActContentAccept, ActContentAdd, ActContentModify, ActContentReject, ActContentRemove,
		ActTransportInfo, ActTransportAccept, ActTransportReject, ActTransportReplace,
		ActSessionInitiate, ActSessionTransfer,
		ActDtmf, ActRinging, ActTrying, ActReceived, ActHold, ActActive, ActMute:
		return true
	default:
		return false
	}
}
