package jingle

import (
	"encoding/xml"
	"fmt"
)

// Creator and Senders enumerate the <content> attributes (spec.md §3).
type Creator int

const (
	CreatorInitiator Creator = iota
	CreatorResponder
)

func (c Creator) String() string {
	if c == CreatorResponder {
		return "responder"
	}
	return "initiator"
}

func parseCreator(s string) (Creator, error) {
	switch s {
	case "", "initiator":
		return CreatorInitiator, nil
	case "responder":
		return CreatorResponder, nil
	default:
		return 0, fmt.Errorf("jingle: invalid creator %q", s)
	}
}

type Senders int

const (
	SendersBoth Senders = iota
	SendersInitiator
	SendersResponder
)

func (s Senders) String() string {
	switch s {
	case SendersInitiator:
		return "initiator"
	case SendersResponder:
		return "responder"
	default:
		return "both"
	}
}

func parseSenders(s string) (Senders, error) {
	switch s {
	case "", "both":
		return SendersBoth, nil
	case "initiator":
		return SendersInitiator, nil
	case "responder":
		return SendersResponder, nil
	default:
		return 0, fmt.Errorf("jingle: invalid senders %q", s)
	}
}

// SessionContent is one negotiated media stream within a session
// (spec.md §3's Entity of the same name).
type SessionContent struct {
	Name             string
	Creator          Creator
	Senders          Senders
	Disposition      string
	RtpMedia         RtpMediaList
	LocalCandidates  RtpCandidates
	RemoteCandidates RtpCandidates
}

// encodeFlags controls which children of <content> are emitted; see
// the action -> encoding-flags table in spec.md §4.1 (send_content)
// and §9's "two static tables" design note.
type encodeFlags struct {
	description bool
	transport   bool
	candidates  bool
	auth        bool
	minimal     bool
}

// xmlContent mirrors the teacher's plugins/jingle.Content shape
// (raw innerxml capture) so description/transport can be built up
// from already-marshaled child elements without re-deriving XML
// escaping rules for attributes here.
type xmlContent struct {
	XMLName     xml.Name `xml:"content"`
	Creator     string   `xml:"creator,attr"`
	Name        string   `xml:"name,attr"`
	Senders     string   `xml:"senders,attr,omitempty"`
	Disposition string   `xml:"disposition,attr,omitempty"`
	Inner       []byte   `xml:",innerxml"`
}

// rtpMediaAttr is the RTP description's media="" attribute value.
// This implementation only negotiates audio content; a future video
// content would extend this.
const rtpMediaAttr = "audio"

// toXML renders one <content> element according to flags.
func (c SessionContent) toXML(flags encodeFlags) ([]byte, error) {
	out := xmlContent{
		Creator: c.Creator.String(),
		Name:    c.Name,
	}
	if c.Senders != SendersBoth {
		out.Senders = c.Senders.String()
	}
	if c.Disposition != "" {
		out.Disposition = c.Disposition
	}

	if !flags.minimal {
		if flags.description {
			if desc := c.RtpMedia.toXML(rtpMediaAttr); desc != nil {
				b, err := xml.Marshal(desc)
				if err != nil {
					return nil, err
				}
				out.Inner = append(out.Inner, b...)
			}
		}
		if flags.transport {
			if t := c.LocalCandidates.toXML(flags.candidates, flags.auth); t != nil {
				b, err := xml.Marshal(t)
				if err != nil {
					return nil, err
				}
				out.Inner = append(out.Inner, b...)
			}
		}
	}

	return xml.Marshal(out)
}
