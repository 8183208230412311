package jingle

import (
	"bytes"
	"encoding/xml"
	"testing"
)

func sampleContent() SessionContent {
	return SessionContent{
		Name:    "audio-content",
		Creator: CreatorInitiator,
		Senders: SendersBoth,
		RtpMedia: RtpMediaList{
			Media: MediaAudio,
			Payloads: []RtpMedia{
				{ID: 0, Name: "PCMU", Clockrate: 8000, Params: []Parameter{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}},
				{ID: 8, Name: "PCMA", Clockrate: 8000},
			},
			CryptoLocal: []Crypto{{Suite: "AES_CM_128_HMAC_SHA1_80", KeyParams: "inline:abc", Tag: "1"}},
		},
		LocalCandidates: RtpCandidates{
			Transport: TransportICEUDP,
			Password:  "pwd1234567890123456789",
			Ufrag:     "ufrag123",
			Candidates: []RtpCandidate{
				{Foundation: "1", Component: 1, Generation: 0, Address: "1.2.3.4", Port: 5000, Network: 1, Priority: 12345, Protocol: "udp", CandType: "host"},
			},
		},
	}
}

// parseContentFromXML decodes a single <content> element, mirroring
// the path decodeOneContent takes inside decodeContents.
func parseContentFromXML(t *testing.T, raw []byte) SessionContent {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	start, ok := tok.(xml.StartElement)
	if !ok {
		t.Fatalf("expected start element, got %T", tok)
	}
	c, perr, fatal := decodeOneContent(dec, start)
	if perr != nil {
		t.Fatalf("decodeOneContent error: %v (fatal=%v)", perr, fatal)
	}
	return c
}

func TestSessionContentRoundTrip(t *testing.T) {
	t.Parallel()
	c := sampleContent()
	raw, err := c.toXML(fullContentFlags)
	if err != nil {
		t.Fatalf("toXML: %v", err)
	}

	got := parseContentFromXML(t, raw)

	if got.Name != c.Name || got.Creator != c.Creator || got.Senders != c.Senders {
		t.Fatalf("attrs mismatch: got %+v want %+v", got, c)
	}
	if got.RtpMedia.Media != MediaAudio || len(got.RtpMedia.Payloads) != 2 {
		t.Fatalf("payloads mismatch: %+v", got.RtpMedia)
	}
	if got.RtpMedia.Payloads[0].ID != 0 || got.RtpMedia.Payloads[0].Name != "PCMU" {
		t.Fatalf("payload 0 mismatch: %+v", got.RtpMedia.Payloads[0])
	}
	if len(got.RtpMedia.Payloads[0].Params) != 2 ||
		got.RtpMedia.Payloads[0].Params[0] != (Parameter{Name: "a", Value: "1"}) ||
		got.RtpMedia.Payloads[0].Params[1] != (Parameter{Name: "b", Value: "2"}) {
		t.Fatalf("parameter order not preserved: %+v", got.RtpMedia.Payloads[0].Params)
	}
	if len(got.RtpMedia.CryptoRemote) != 1 || got.RtpMedia.CryptoRemote[0].Suite != "AES_CM_128_HMAC_SHA1_80" {
		t.Fatalf("crypto mismatch: %+v", got.RtpMedia.CryptoRemote)
	}

	// Local candidates are the offered side; after a round trip through
	// the wire they come back as RemoteCandidates on the decoding end.
	if got.RemoteCandidates.Transport != TransportICEUDP {
		t.Fatalf("transport mismatch: %v", got.RemoteCandidates.Transport)
	}
	if got.RemoteCandidates.Ufrag != c.LocalCandidates.Ufrag || got.RemoteCandidates.Password != c.LocalCandidates.Password {
		t.Fatalf("ice auth mismatch: got %+v want %+v", got.RemoteCandidates, c.LocalCandidates)
	}
	if len(got.RemoteCandidates.Candidates) != 1 || got.RemoteCandidates.Candidates[0].Address != "1.2.3.4" {
		t.Fatalf("candidate mismatch: %+v", got.RemoteCandidates.Candidates)
	}
}

func TestSessionContentMinimalOmitsChildren(t *testing.T) {
	t.Parallel()
	c := sampleContent()
	raw, err := c.toXML(encodeFlags{minimal: true})
	if err != nil {
		t.Fatalf("toXML: %v", err)
	}
	got := parseContentFromXML(t, raw)
	if got.RtpMedia.Media != MediaMissing {
		t.Fatalf("expected missing description in minimal shape, got %v", got.RtpMedia.Media)
	}
	if got.RemoteCandidates.Transport != TransportUnknown {
		t.Fatalf("expected no transport in minimal shape, got %v", got.RemoteCandidates.Transport)
	}
}

func TestRtpCandidatesRoundTripRawUDP(t *testing.T) {
	t.Parallel()
	c := RtpCandidates{
		Transport: TransportRawUDP,
		Candidates: []RtpCandidate{
			{ID: "c1", Component: 1, Generation: 0, Address: "9.9.9.9", Port: 40000},
		},
	}
	x := c.toXML(true, true)
	b, err := xml.Marshal(x)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	dec := xml.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	start := tok.(xml.StartElement)
	got, err := rtpCandidatesFromXML(dec, start)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Transport != TransportRawUDP {
		t.Fatalf("transport = %v", got.Transport)
	}
	if len(got.Candidates) != 1 || got.Candidates[0].ID != "c1" || got.Candidates[0].Address != "9.9.9.9" {
		t.Fatalf("candidates mismatch: %+v", got.Candidates)
	}
}

func TestRtpCandidatesUnknownTransportEmitsNothing(t *testing.T) {
	t.Parallel()
	c := RtpCandidates{Transport: TransportUnknown}
	if x := c.toXML(true, true); x != nil {
		t.Fatalf("expected nil for unknown transport, got %#v", x)
	}
}

func TestReasonEncodeDecode(t *testing.T) {
	t.Parallel()
	raw, err := encodeReason(ReasonSuccess, "bye")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// encodeReason returns the full <reason>...</reason> element;
	// decodeReason (like decodeTerminateBody) operates on its inner
	// bytes, so strip the wrapper the same way the decoder path does.
	dec := xml.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	start := tok.(xml.StartElement)
	inner, err := captureInner(dec, start)
	if err != nil {
		t.Fatalf("captureInner: %v", err)
	}

	reason, text, err := decodeReason(inner)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reason != ReasonSuccess || text != "bye" {
		t.Fatalf("got reason=%q text=%q", reason, text)
	}
}
