package jingle

import (
	"bytes"
	"encoding/xml"

	"github.com/meszmate/xmpp-go/internal/ns"
)

// encodeJingleElement builds the outer <jingle> element. contentsXML
// are already-marshaled <content> elements (see SessionContent.toXML);
// extraXML is an already-marshaled, caller-supplied element appended
// after the contents (spec.md §4.1 new_outgoing's optional `extra`
// child; session.cpp's addJingleChild(xml, extra) adds it the same
// way), or nil; reasonXML is an already-marshaled <reason> element or
// nil.
func encodeJingleElement(action Action, sid, initiator, responder string, contentsXML [][]byte, extraXML []byte, reasonXML []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	start := xml.StartElement{
		Name: xml.Name{Space: ns.Jingle, Local: "jingle"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "type"}, Value: string(action)},
			{Name: xml.Name{Local: "sid"}, Value: sid},
		},
	}
	if initiator != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "initiator"}, Value: initiator})
	}
	if responder != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "responder"}, Value: responder})
	}

	if err := enc.EncodeToken(start); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	for _, c := range contentsXML {
		buf.Write(c)
	}
	if extraXML != nil {
		buf.Write(extraXML)
	}
	if reasonXML != nil {
		buf.Write(reasonXML)
	}
	enc = xml.NewEncoder(&buf)
	if err := enc.EncodeToken(xml.EndElement{Name: start.Name}); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeSessionInfo builds a <jingle action="session-info"> carrying
// either no child (ping) or exactly one recognized child.
func encodeSessionInfoElement(sid, initiator string, infoAction Action, dtmfDigits string) ([]byte, error) {
	var inner []byte
	switch infoAction {
	case "":
		// ping: no child
	case ActDtmf:
		var buf bytes.Buffer
		for _, r := range dtmfDigits {
			b, err := xml.Marshal(struct {
				XMLName xml.Name `xml:"urn:xmpp:jingle:dtmf:0 dtmf"`
				Code    string   `xml:"code,attr"`
			}{Code: string(r)})
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		inner = buf.Bytes()
	default:
		b, err := xml.Marshal(struct {
			XMLName xml.Name
		}{XMLName: xml.Name{Space: sessionInfoNamespace[string(infoAction)], Local: string(infoAction)}})
		if err != nil {
			return nil, err
		}
		inner = b
	}
	return encodeJingleElement(ActSessionInfo, sid, initiator, "", [][]byte{inner}, nil, nil)
}
