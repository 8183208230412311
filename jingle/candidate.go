package jingle

import (
	"encoding/xml"

	"github.com/meszmate/xmpp-go/internal/ns"
)

// TransportType distinguishes the two transport flavours this spec
// supports, plus the "present but unrecognized" case.
type TransportType int

const (
	TransportUnknown TransportType = iota
	TransportICEUDP
	TransportRawUDP
)

// RtpCandidate is one transport candidate. Not every field applies to
// every TransportType: Raw-UDP only ever sets ID (not Foundation) and
// never Network/Priority/Protocol/CandType (see spec.md §3).
type RtpCandidate struct {
	Foundation string
	ID         string
	Component  int
	Generation int
	Address    string
	Port       int

	// ICE-UDP only:
	Network  int
	Priority int
	Protocol string
	CandType string
}

// RtpCandidates is the per-content, per-direction transport payload:
// an ufrag/pwd pair (ICE-UDP only) plus an ordered candidate list.
type RtpCandidates struct {
	Transport  TransportType
	Password   string
	Ufrag      string
	Candidates []RtpCandidate

	// Fingerprint is the optional XEP-0320 DTLS-SRTP fingerprint
	// carried on an ICE-UDP transport element. A supplemented
	// feature kept from the teacher's plugins/jingle stub; see
	// SPEC_FULL.md §7.
	FingerprintHash  string
	FingerprintSetup string
	FingerprintValue string
}

type xmlICECandidate struct {
	XMLName    xml.Name `xml:"candidate"`
	Component  int      `xml:"component,attr"`
	Foundation string   `xml:"foundation,attr"`
	Generation int      `xml:"generation,attr"`
	IP         string   `xml:"ip,attr"`
	Network    int      `xml:"network,attr,omitempty"`
	Port       int      `xml:"port,attr"`
	Priority   int      `xml:"priority,attr"`
	Protocol   string   `xml:"protocol,attr"`
	Type       string   `xml:"type,attr"`
}

type xmlFingerprint struct {
	XMLName xml.Name `xml:"urn:xmpp:jingle:apps:dtls:0 fingerprint"`
	Hash    string   `xml:"hash,attr"`
	Setup   string   `xml:"setup,attr"`
	Value   string   `xml:",chardata"`
}

type xmlICETransport struct {
	XMLName     xml.Name `xml:"urn:xmpp:jingle:transports:ice-udp:1 transport"`
	Ufrag       string   `xml:"ufrag,attr,omitempty"`
	Pwd         string   `xml:"pwd,attr,omitempty"`
	Candidates  []xmlICECandidate `xml:"candidate"`
	Fingerprint *xmlFingerprint   `xml:"fingerprint,omitempty"`
}

type xmlRawCandidate struct {
	XMLName    xml.Name `xml:"candidate"`
	Component  int      `xml:"component,attr"`
	Generation int      `xml:"generation,attr"`
	ID         string   `xml:"id,attr"`
	IP         string   `xml:"ip,attr"`
	Port       int      `xml:"port,attr"`
}

type xmlRawTransport struct {
	XMLName    xml.Name          `xml:"urn:xmpp:jingle:transports:raw-udp:1 transport"`
	Candidates []xmlRawCandidate `xml:"candidate"`
}

// toXML renders the transport element. includeCandidates and
// includeAuth implement the per-action encoding-flags table in
// spec.md §4.1 (send_content). A TransportUnknown value renders
// nothing, matching the round-trip invariant in spec.md §8.
func (c RtpCandidates) toXML(includeCandidates, includeAuth bool) any {
	switch c.Transport {
	case TransportICEUDP:
		t := &xmlICETransport{}
		if includeAuth {
			t.Ufrag = c.Ufrag
			t.Pwd = c.Password
		}
		if c.FingerprintHash != "" {
			t.Fingerprint = &xmlFingerprint{
				Hash:  c.FingerprintHash,
				Setup: c.FingerprintSetup,
				Value: c.FingerprintValue,
			}
		}
		if includeCandidates {
			for _, cand := range c.Candidates {
				t.Candidates = append(t.Candidates, xmlICECandidate{
					Component:  cand.Component,
					Foundation: cand.Foundation,
					Generation: cand.Generation,
					IP:         cand.Address,
					Network:    cand.Network,
					Port:       cand.Port,
					Priority:   cand.Priority,
					Protocol:   cand.Protocol,
					Type:       cand.CandType,
				})
			}
		}
		return t
	case TransportRawUDP:
		t := &xmlRawTransport{}
		if includeCandidates {
			for _, cand := range c.Candidates {
				t.Candidates = append(t.Candidates, xmlRawCandidate{
					Component:  cand.Component,
					Generation: cand.Generation,
					ID:         cand.ID,
					IP:         cand.Address,
					Port:       cand.Port,
				})
			}
		}
		return t
	default:
		return nil
	}
}

// rtpCandidatesFromXML decodes a <transport> element given its
// observed namespace.
func rtpCandidatesFromXML(dec *xml.Decoder, start xml.StartElement) (RtpCandidates, error) {
	switch start.Name.Space {
	case ns.JingleICEUDP:
		var t xmlICETransport
		if err := dec.DecodeElement(&t, &start); err != nil {
			return RtpCandidates{}, err
		}
		rc := RtpCandidates{
			Transport: TransportICEUDP,
			Password:  t.Pwd,
			Ufrag:     t.Ufrag,
		}
		if t.Fingerprint != nil {
			rc.FingerprintHash = t.Fingerprint.Hash
			rc.FingerprintSetup = t.Fingerprint.Setup
			rc.FingerprintValue = t.Fingerprint.Value
		}
		for _, cand := range t.Candidates {
			rc.Candidates = append(rc.Candidates, RtpCandidate{
				Foundation: cand.Foundation,
				Component:  cand.Component,
				Generation: cand.Generation,
				Address:    cand.IP,
				Port:       cand.Port,
				Network:    cand.Network,
				Priority:   cand.Priority,
				Protocol:   cand.Protocol,
				CandType:   cand.Type,
			})
		}
		return rc, nil
	case ns.JingleRawUDP:
		var t xmlRawTransport
		if err := dec.DecodeElement(&t, &start); err != nil {
			return RtpCandidates{}, err
		}
		rc := RtpCandidates{Transport: TransportRawUDP}
		for _, cand := range t.Candidates {
			rc.Candidates = append(rc.Candidates, RtpCandidate{
				ID:         cand.ID,
				Component:  cand.Component,
				Generation: cand.Generation,
				Address:    cand.IP,
				Port:       cand.Port,
			})
		}
		return rc, nil
	default:
		if err := dec.Skip(); err != nil {
			return RtpCandidates{}, err
		}
		return RtpCandidates{Transport: TransportUnknown}, nil
	}
}
