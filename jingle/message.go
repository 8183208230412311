package jingle

import "encoding/xml"

// Jingle Message Initiation (XEP-0353) envelopes. These are message-
// level siblings of the IQ-level Jingle actions this package's Session
// state machine drives; they exist so a caller can offer call-waking
// push/ring semantics ahead of a session-initiate, but spec.md's state
// machine has no notion of them, so they are kept as standalone value
// objects rather than wired into Session (see SPEC_FULL.md §7).

// Propose is sent to invite a peer to a session before any jingle sid
// exists (XEP-0353 §4.1).
type Propose struct {
	XMLName      xml.Name      `xml:"urn:xmpp:jingle-message:0 propose"`
	ID           string        `xml:"id,attr"`
	Descriptions []ProposeDesc `xml:"description"`
}

// ProposeDesc names one application format being proposed, e.g.
// media="audio" under the RTP description namespace.
type ProposeDesc struct {
	XMLName xml.Name `xml:"description"`
	Media   string   `xml:"media,attr,omitempty"`
	NS      string   `xml:"xmlns,attr"`
}

type Retract struct {
	XMLName xml.Name `xml:"urn:xmpp:jingle-message:0 retract"`
	ID      string   `xml:"id,attr"`
}

type Accept struct {
	XMLName xml.Name `xml:"urn:xmpp:jingle-message:0 accept"`
	ID      string   `xml:"id,attr"`
}

type Reject struct {
	XMLName xml.Name `xml:"urn:xmpp:jingle-message:0 reject"`
	ID      string   `xml:"id,attr"`
}

type Proceed struct {
	XMLName xml.Name `xml:"urn:xmpp:jingle-message:0 proceed"`
	ID      string   `xml:"id,attr"`
}

// NewPropose builds a propose envelope for one audio description.
func NewPropose(id string, descriptionNS string) Propose {
	return Propose{ID: id, Descriptions: []ProposeDesc{{Media: rtpMediaAttr, NS: descriptionNS}}}
}

func NewRetract(id string) Retract { return Retract{ID: id} }
func NewAccept(id string) Accept   { return Accept{ID: id} }
func NewReject(id string) Reject   { return Reject{ID: id} }
func NewProceed(id string) Proceed { return Proceed{ID: id} }
