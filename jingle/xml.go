package jingle

import (
	"encoding/xml"

	"github.com/meszmate/xmpp-go/internal/ns"
)

// Media classifies an RtpMediaList's description element.
type Media int

const (
	// MediaAudio means the content carried a recognized RTP description.
	MediaAudio Media = iota
	// MediaUnknown means a description element was present with an
	// unrecognized namespace.
	MediaUnknown
	// MediaMissing means the content had no description element at all.
	MediaMissing
)

// RtpMedia is one payload-type entry of an RTP description.
type RtpMedia struct {
	ID        int
	Name      string
	Clockrate int
	Channels  int
	Synonym   string
	Params    []Parameter
}

// Parameter is a single payload-type parameter, order-preserving.
type Parameter struct {
	Name  string
	Value string
}

// Crypto is one SDES crypto line (XEP-0167 §2.2 / RFC 4568).
type Crypto struct {
	Suite         string
	KeyParams     string
	SessionParams string
	Tag           string
}

// RtpMediaList is the per-content RTP description (XEP-0167) plus its
// associated SDES crypto lines.
type RtpMediaList struct {
	Media           Media
	Payloads        []RtpMedia
	CryptoMandatory bool
	CryptoLocal     []Crypto
	CryptoRemote    []Crypto
}

// xmlPayloadType and xmlParameter mirror the wire shape of
// <payload-type>/<parameter> for marshal/unmarshal without forcing a
// particular Go-side field order.
type xmlParameter struct {
	XMLName xml.Name `xml:"parameter"`
	Name    string   `xml:"name,attr"`
	Value   string   `xml:"value,attr"`
}

type xmlPayloadType struct {
	XMLName    xml.Name       `xml:"payload-type"`
	ID         int            `xml:"id,attr"`
	Name       string         `xml:"name,attr,omitempty"`
	Clockrate  int            `xml:"clockrate,attr,omitempty"`
	Channels   int            `xml:"channels,attr,omitempty"`
	Parameters []xmlParameter `xml:"parameter"`
}

type xmlCrypto struct {
	XMLName       xml.Name `xml:"crypto"`
	Suite         string   `xml:"crypto-suite,attr"`
	KeyParams     string   `xml:"key-params,attr"`
	SessionParams string   `xml:"session-params,attr,omitempty"`
	Tag           string   `xml:"tag,attr"`
}

type xmlCryptoRequired struct {
	XMLName xml.Name `xml:"crypto-required"`
}

type xmlDescription struct {
	XMLName      xml.Name `xml:"urn:xmpp:jingle:apps:rtp:1 description"`
	Media        string             `xml:"media,attr"`
	CryptoReq    *xmlCryptoRequired `xml:"crypto-required,omitempty"`
	PayloadTypes []xmlPayloadType   `xml:"payload-type"`
	Crypto       []xmlCrypto      `xml:"crypto"`
}

// toXML encodes the description element for outgoing local candidates
// (CryptoLocal is what gets offered on the wire). When rml.Media is
// not MediaAudio, no element is written.
func (rml RtpMediaList) toXML(mediaAttr string) *xmlDescription {
	if rml.Media != MediaAudio {
		return nil
	}
	desc := &xmlDescription{Media: mediaAttr}
	if rml.CryptoMandatory {
		desc.CryptoReq = &xmlCryptoRequired{}
	}
	for _, p := range rml.Payloads {
		pt := xmlPayloadType{
			ID:        p.ID,
			Name:      p.Name,
			Clockrate: p.Clockrate,
			Channels:  p.Channels,
		}
		for _, param := range p.Params {
			pt.Parameters = append(pt.Parameters, xmlParameter{Name: param.Name, Value: param.Value})
		}
		desc.PayloadTypes = append(desc.PayloadTypes, pt)
	}
	for _, c := range rml.CryptoLocal {
		desc.Crypto = append(desc.Crypto, xmlCrypto{
			Suite:         c.Suite,
			KeyParams:     c.KeyParams,
			SessionParams: c.SessionParams,
			Tag:           c.Tag,
		})
	}
	return desc
}

// rtpMediaListFromXML decodes a <description> found inside a
// <content>. If its namespace doesn't match ns.JingleRTP the media is
// marked MediaUnknown and no payloads are parsed (spec.md §4.1.4).
func rtpMediaListFromXML(dec *xml.Decoder, start xml.StartElement) (RtpMediaList, error) {
	if start.Name.Space != ns.JingleRTP {
		if err := dec.Skip(); err != nil {
			return RtpMediaList{}, err
		}
		return RtpMediaList{Media: MediaUnknown}, nil
	}
	var desc xmlDescription
	if err := dec.DecodeElement(&desc, &start); err != nil {
		return RtpMediaList{}, err
	}
	rml := RtpMediaList{
		Media:           MediaAudio,
		CryptoMandatory: desc.CryptoReq != nil,
	}
	for _, pt := range desc.PayloadTypes {
		m := RtpMedia{
			ID:        pt.ID,
			Name:      pt.Name,
			Clockrate: pt.Clockrate,
			Channels:  pt.Channels,
		}
		for _, p := range pt.Parameters {
			m.Params = append(m.Params, Parameter{Name: p.Name, Value: p.Value})
		}
		rml.Payloads = append(rml.Payloads, m)
	}
	for _, c := range desc.Crypto {
		rml.CryptoRemote = append(rml.CryptoRemote, Crypto{
			Suite:         c.Suite,
			KeyParams:     c.KeyParams,
			SessionParams: c.SessionParams,
			Tag:           c.Tag,
		})
	}
	return rml, nil
}
