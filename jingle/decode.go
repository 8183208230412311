package jingle

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/meszmate/xmpp-go/internal/ns"
	"github.com/meszmate/xmpp-go/stanza"
)

// xmlJingleHeader captures only the <jingle> element's attributes;
// its children are walked manually by decodeJingle so that per-content
// soft errors can be handled as spec.md §4.1.4 requires (skip just
// that content, not the whole stanza).
type xmlJingleHeader struct {
	XMLName   xml.Name `xml:"urn:xmpp:jingle:1 jingle"`
	Action    string   `xml:"type,attr"`
	Initiator string   `xml:"initiator,attr"`
	Responder string   `xml:"responder,attr"`
	SID       string   `xml:"sid,attr"`
}

// peekJingleAttr extracts a single attribute off the <iq>'s <jingle>
// child without fully decoding the stanza. Used for FIFO preemption
// and engine-level sid routing, both of which need to classify an
// event cheaply before Session.GetEvent does the real decode.
func peekJingleAttr(raw []byte, attr string) (string, bool) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "jingle" {
			continue
		}
		for _, a := range start.Attr {
			if a.Name.Local == attr {
				return a.Value, true
			}
		}
		return "", false
	}
}

// DecodedJingle is the parsed, validated form of an incoming
// <iq><jingle> stanza (spec.md §4.1.4).
type DecodedJingle struct {
	Action    Action
	SID       string
	Initiator string
	Responder string
	Contents  []SessionContent

	// Reason/ReasonText apply only when Action == ActSessionTerminate.
	Reason     Reason
	ReasonText string

	// InfoAction/DtmfDigits apply only when Action == ActSessionInfo.
	// InfoAction is "" for an empty session-info (a ping).
	InfoAction Action
	DtmfDigits string

	// TransferTo/TransferSID apply only when Action == ActSessionTransfer
	// (XEP-0251 §4): the JID being transferred to, and optionally the
	// sid of an existing session to attach to.
	TransferTo  string
	TransferSID string
}

// DecodeJingleIQ decodes the <jingle> child of an inbound <iq
// type="set">. It returns a protocol error (already suitable for
// Session.Confirm) when the stanza is malformed, and fatal=true when
// the whole stanza must be dropped rather than just one content.
func DecodeJingleIQ(raw []byte) (decoded *DecodedJingle, protoErr *stanza.StanzaError, fatal bool) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var jingleStart *xml.StartElement
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, errBadRequest("missing jingle element"), true
		}
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == "jingle" {
			s := start
			jingleStart = &s
			break
		}
	}

	var hdr xmlJingleHeader
	for _, a := range jingleStart.Attr {
		switch a.Name.Local {
		case "type":
			hdr.Action = a.Value
		case "initiator":
			hdr.Initiator = a.Value
		case "responder":
			hdr.Responder = a.Value
		case "sid":
			hdr.SID = a.Value
		}
	}

	action, ok := recognizedAction(hdr.Action)
	if !ok {
		return nil, errServiceUnavailable(fmt.Sprintf("unrecognized jingle action %q", hdr.Action)), true
	}

	out := &DecodedJingle{
		Action:    action,
		SID:       hdr.SID,
		Initiator: hdr.Initiator,
		Responder: hdr.Responder,
	}

	switch action {
	case ActSessionTerminate:
		reason, text, rerr := decodeTerminateBody(dec)
		if rerr != nil {
			return nil, errBadRequest(rerr.Error()), false
		}
		out.Reason = reason
		out.ReasonText = text
		return out, nil, false

	case ActSessionInfo:
		infoAction, digits, perr := decodeSessionInfoBody(dec)
		if perr != nil {
			return nil, perr, false
		}
		out.InfoAction = infoAction
		out.DtmfDigits = digits
		return out, nil, false

	case ActSessionInitiate, ActSessionAccept,
		ActTransportInfo, ActTransportAccept, ActTransportReject, ActTransportReplace,
		ActContentAccept, ActContentAdd, ActContentModify, ActContentReject, ActContentRemove:
		contents, perr, hardFatal := decodeContents(dec)
		if perr != nil {
			return nil, perr, hardFatal
		}
		out.Contents = contents
		return out, nil, false

	case ActSessionTransfer:
		to, sid, terr := decodeTransferBody(dec)
		if terr != nil {
			return nil, errBadRequest(terr.Error()), false
		}
		out.TransferTo = to
		out.TransferSID = sid
		return out, nil, false

	default:
		return nil, errServiceUnavailable("action not handled by this implementation"), true
	}
}

func recognizedAction(s string) (Action, bool) {
	switch Action(s) {
	case ActSessionInitiate, ActSessionAccept, ActSessionTerminate, ActSessionInfo,
		ActTransportInfo, ActTransportAccept, ActTransportReject, ActTransportReplace,
		ActContentAccept, ActContentAdd, ActContentModify, ActContentReject, ActContentRemove,
		ActSessionTransfer:
		return Action(s), true
	default:
		return "", false
	}
}

// decodeTerminateBody walks the remaining <jingle> children looking
// for <reason>, auto-confirming per spec.md §4.1.4 ("auto-confirm
// here; final event bypasses the usual auto-confirm path" is handled
// by the caller, not here — this only parses).
func decodeTerminateBody(dec *xml.Decoder) (Reason, string, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", "", nil
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "reason" {
			if err := dec.Skip(); err != nil {
				return "", "", err
			}
			continue
		}
		inner, err := captureInner(dec, start)
		if err != nil {
			return "", "", err
		}
		return decodeReason(inner)
	}
}

// captureInner reads tokens until the matching end element for start,
// returning the raw bytes of everything in between (not including the
// start/end tags of start itself).
func captureInner(dec *xml.Decoder, start xml.StartElement) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if err := enc.EncodeToken(t.Copy()); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if depth == 0 {
				if err := enc.Flush(); err != nil {
					return nil, err
				}
				return buf.Bytes(), nil
			}
			depth--
			if err := enc.EncodeToken(t); err != nil {
				return nil, err
			}
		default:
			if err := enc.EncodeToken(tok); err != nil {
				return nil, err
			}
		}
	}
}

// decodeTransferBody parses the <transfer> child of a session-transfer
// jingle action (XEP-0251 §4: attrs "to" and, for attended transfer,
// "sid").
func decodeTransferBody(dec *xml.Decoder) (to, sid string, err error) {
	for {
		tok, terr := dec.Token()
		if terr != nil {
			return "", "", nil
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "transfer" {
			if err := dec.Skip(); err != nil {
				return "", "", err
			}
			continue
		}
		for _, a := range start.Attr {
			switch a.Name.Local {
			case "to":
				to = a.Value
			case "sid":
				sid = a.Value
			}
		}
		if err := dec.Skip(); err != nil {
			return "", "", err
		}
		return to, sid, nil
	}
}

var sessionInfoNamespace = map[string]string{
	"dtmf":     ns.JingleDTMF,
	"transfer": ns.JingleTransfer,
	"hold":     ns.JingleRTPInfo,
	"active":   ns.JingleRTPInfo,
	"mute":     ns.JingleRTPInfo,
	"ringing":  ns.JingleRTPInfo,
	"trying":   ns.JingleRawUDPInfo,
	"received": ns.JingleRawUDPInfo,
}

// decodeSessionInfoBody implements spec.md §4.1.4's session-info
// rules: empty body is a ping (InfoAction==""); otherwise exactly one
// recognized child, with dtmf codes aggregated across all <dtmf>
// children into one string.
func decodeSessionInfoBody(dec *xml.Decoder) (Action, string, *stanza.StanzaError) {
	var infoAction Action
	var dtmfCodes strings.Builder
	sawAny := false

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawAny = true

		wantNS, recognized := sessionInfoNamespace[start.Name.Local]
		if !recognized || start.Name.Space != wantNS {
			if err := dec.Skip(); err != nil {
				return "", "", errInternalServerError(err.Error())
			}
			return "", "", errFeatureNotImplemented(fmt.Sprintf("unsupported session-info child %q", start.Name.Local))
		}

		if start.Name.Local == "dtmf" {
			for _, a := range start.Attr {
				if a.Name.Local == "code" {
					dtmfCodes.WriteString(a.Value)
				}
			}
			infoAction = ActDtmf
			if err := dec.Skip(); err != nil {
				return "", "", errInternalServerError(err.Error())
			}
			continue
		}

		infoAction = Action(start.Name.Local)
		if err := dec.Skip(); err != nil {
			return "", "", errInternalServerError(err.Error())
		}
	}

	if !sawAny {
		return "", "", nil // ping
	}
	if infoAction == ActDtmf && dtmfCodes.Len() == 0 {
		return "", "", errBadRequest("dtmf session-info with no codes")
	}
	return infoAction, dtmfCodes.String(), nil
}

// decodeContents walks the <jingle>'s <content> children. A hard
// parse error on any content drops the whole stanza (fatal=true); a
// recoverable per-content error skips just that content (spec.md
// §4.1.4).
func decodeContents(dec *xml.Decoder) ([]SessionContent, *stanza.StanzaError, bool) {
	var out []SessionContent
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "content" {
			if err := dec.Skip(); err != nil {
				return nil, errInternalServerError(err.Error()), true
			}
			continue
		}

		content, perr, fatal := decodeOneContent(dec, start)
		if perr != nil {
			if fatal {
				return nil, perr, true
			}
			continue
		}
		out = append(out, content)
	}
	return out, nil, false
}

func decodeOneContent(dec *xml.Decoder, start xml.StartElement) (SessionContent, *stanza.StanzaError, bool) {
	var c SessionContent
	var name, creatorAttr, sendersAttr, disposition string
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "name":
			name = a.Value
		case "creator":
			creatorAttr = a.Value
		case "senders":
			sendersAttr = a.Value
		case "disposition":
			disposition = a.Value
		}
	}
	if name == "" {
		if err := dec.Skip(); err != nil {
			return c, errInternalServerError(err.Error()), true
		}
		return c, errNotAcceptable("content missing name"), true
	}
	creator, cerr := parseCreator(creatorAttr)
	if cerr != nil {
		if err := dec.Skip(); err != nil {
			return c, errInternalServerError(err.Error()), true
		}
		return c, errNotAcceptable(cerr.Error()), true
	}
	senders, serr := parseSenders(sendersAttr)
	if serr != nil {
		if err := dec.Skip(); err != nil {
			return c, errInternalServerError(err.Error()), true
		}
		return c, errNotAcceptable(serr.Error()), true
	}

	c.Name = name
	c.Creator = creator
	c.Senders = senders
	c.Disposition = disposition
	c.RtpMedia = RtpMediaList{Media: MediaMissing}

	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return c, errInternalServerError(err.Error()), true
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "description":
				rml, derr := rtpMediaListFromXML(dec, t)
				if derr != nil {
					return c, errNotAcceptable(derr.Error()), false
				}
				c.RtpMedia = rml
			case "transport":
				rc, terr := rtpCandidatesFromXML(dec, t)
				if terr != nil {
					return c, errNotAcceptable(terr.Error()), false
				}
				c.RemoteCandidates = rc
			default:
				depth++
				if err := dec.Skip(); err != nil {
					return c, errInternalServerError(err.Error()), true
				}
				depth--
			}
		case xml.EndElement:
			if depth == 0 {
				return c, nil, false
			}
		}
	}
}
