package jingle

import (
	"bytes"
	"encoding/xml"
)

// Reason is the <reason> child keyword of a session-terminate (and,
// per XEP-0167 §8, occasionally other termination-adjacent stanzas).
// See spec.md §6 Reason enum.
type Reason string

const (
	ReasonBusy                    Reason = "busy"
	ReasonDecline                 Reason = "decline"
	ReasonConnectivityError       Reason = "connectivity-error"
	ReasonMediaError              Reason = "media-error"
	ReasonUnsupportedTransports   Reason = "unsupported-transports"
	ReasonNoError                 Reason = "no-error"
	ReasonSuccess                 Reason = "success"
	ReasonUnsupportedApplications Reason = "unsupported-applications"
	ReasonAlternativeSession      Reason = "alternative-session"
	ReasonGeneralError            Reason = "general-error"
	ReasonTransferred             Reason = "transferred"
)

type xmlReason struct {
	XMLName xml.Name `xml:"reason"`
	Inner   []byte   `xml:",innerxml"`
}

// toXML renders a <reason> element with the keyword as a bare child
// element (e.g. <success/>) and an optional <text>.
func encodeReason(r Reason, text string) ([]byte, error) {
	inner := []byte("<" + string(r) + "/>")
	if text != "" {
		tb, err := xml.Marshal(struct {
			XMLName xml.Name `xml:"text"`
			Text    string   `xml:",chardata"`
		}{Text: text})
		if err != nil {
			return nil, err
		}
		inner = append(inner, tb...)
	}
	out := xmlReason{Inner: inner}
	return xml.Marshal(out)
}

// decodeReason extracts the reason keyword (the first non-"text"
// child element name) and optional <text> body, per spec.md §4.1.4.
func decodeReason(raw []byte) (reason Reason, text string, err error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	for {
		tok, derr := dec.Token()
		if derr != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local == "text" {
			var t struct {
				Text string `xml:",chardata"`
			}
			if derr := dec.DecodeElement(&t, &start); derr != nil {
				return "", "", derr
			}
			text = t.Text
			continue
		}
		if reason == "" {
			reason = Reason(start.Name.Local)
			if derr := dec.Skip(); derr != nil {
				return "", "", derr
			}
		}
	}
	return reason, text, nil
}
