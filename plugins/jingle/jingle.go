// Package jingle wires the jingle package's session engine into this
// module's plugin.Plugin/plugin.InitParams machinery (SPEC_FULL.md
// §8). It holds no Jingle protocol logic of its own: every session
// lifecycle rule, stanza encoding, and decision table lives in
// jingle.Engine/jingle.Session. This package only adapts InitParams'
// four callbacks into a jingle.Stream and turns inbound raw stanza
// bytes into jingle.RawEvent values the engine can route.
package jingle

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"sync"

	"github.com/meszmate/xmpp-go/internal/ns"
	core "github.com/meszmate/xmpp-go/jingle"
	"github.com/meszmate/xmpp-go/plugin"
	"github.com/meszmate/xmpp-go/stanza"
)

const Name = "jingle"

// Plugin adapts a jingle.Engine to this module's plugin lifecycle. One
// Plugin instance corresponds to one XMPP stream (the same scope
// InitParams itself is handed out at), so its Engine and the single
// Stream it builds in Initialize are shared by every Session dialed or
// accepted on that stream.
type Plugin struct {
	mu     sync.Mutex
	engine *core.Engine
	stream core.Stream
	params plugin.InitParams
}

// New creates an unconfigured Jingle plugin; engine options (e.g.
// core.WithStanzaTimeout) can be supplied since most callers construct
// one per connection rather than reusing a package-level default.
func New(opts ...core.EngineOption) *Plugin {
	return &Plugin{engine: core.NewEngine(opts...)}
}

func (p *Plugin) Name() string    { return Name }
func (p *Plugin) Version() string { return "1.0.0" }

func (p *Plugin) Initialize(_ context.Context, params plugin.InitParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params = params
	p.stream = &streamAdapter{params: params}
	return nil
}

func (p *Plugin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.engine.Sessions() {
		_ = s.Hangup(context.Background(), core.ReasonGeneralError, "plugin closing")
	}
	return nil
}

func (p *Plugin) Dependencies() []string { return nil }

// Engine exposes the underlying engine for direct use (GetEvent
// polling, introspection) by code that holds the plugin.
func (p *Plugin) Engine() *core.Engine {
	return p.engine
}

// Dial starts an outgoing call (spec.md §4.1 new_outgoing) over this
// plugin's stream. extra is an already-marshaled element appended to the
// outgoing <jingle> (nil for none); chatMessage, if non-empty, is sent as
// a plain <message> body ahead of the session-initiate.
func (p *Plugin) Dial(ctx context.Context, callee string, contents []core.SessionContent, extra []byte, chatMessage string) (*core.Session, error) {
	p.mu.Lock()
	stream := p.stream
	p.mu.Unlock()
	if stream == nil {
		return nil, fmt.Errorf("jingle: plugin not initialized")
	}
	return p.engine.NewOutgoing(ctx, stream, p.params.LocalJID(), callee, contents, extra, chatMessage)
}

// HandleRaw feeds one inbound stanza (already read off the wire, in
// the same raw-bytes shape InitParams.SendRaw writes) into the
// engine. It reports whether the stanza was a Jingle-addressed IQ that
// some session consumed or that started a new incoming session; a
// false return means the caller should route the stanza elsewhere
// (disco, ping, roster, ...).
func (p *Plugin) HandleRaw(ctx context.Context, raw []byte) bool {
	p.mu.Lock()
	stream := p.stream
	p.mu.Unlock()
	if stream == nil {
		return false
	}
	ev, ok := decodeRawEvent(raw)
	if !ok {
		return false
	}
	return p.engine.HandleRaw(ctx, stream, ev)
}

// streamAdapter implements jingle.Stream purely in terms of the four
// InitParams callbacks (SPEC_FULL.md §8): it never touches SASL, TLS,
// or stanza I/O directly, matching the core's "stream is an external
// collaborator" boundary (spec.md §2).
type streamAdapter struct {
	params plugin.InitParams
}

func (a *streamAdapter) Send(ctx context.Context, to, id string, jingleXML []byte) error {
	raw, err := encodeIQSet(a.params.LocalJID(), to, id, jingleXML)
	if err != nil {
		return err
	}
	return a.params.SendRaw(ctx, raw)
}

func (a *streamAdapter) ReplyResult(ctx context.Context, to, id string, rawReceived []byte) error {
	raw, err := encodeIQResult(a.params.LocalJID(), to, id, rawReceived)
	if err != nil {
		return err
	}
	return a.params.SendRaw(ctx, raw)
}

func (a *streamAdapter) ReplyError(ctx context.Context, to, id string, stErr *stanza.StanzaError, rawReceived []byte) error {
	raw, err := encodeIQError(a.params.LocalJID(), to, id, stErr, rawReceived)
	if err != nil {
		return err
	}
	return a.params.SendRaw(ctx, raw)
}

func (a *streamAdapter) SendMessage(ctx context.Context, to, body string) error {
	raw, err := encodeMessage(a.params.LocalJID(), to, body)
	if err != nil {
		return err
	}
	return a.params.SendRaw(ctx, raw)
}

func (a *streamAdapter) LocalJID() string {
	return a.params.LocalJID()
}

// encodeIQSet builds <iq type="set" from=.. to=.. id=..>payload</iq>,
// using the manual EncodeToken idiom this module already uses for
// conditional element shapes (stanza.StanzaError.MarshalXML).
func encodeIQSet(from, to, id string, payload []byte) ([]byte, error) {
	return encodeIQ(from, to, id, stanza.IQSet, payload, nil)
}

func encodeIQResult(from, to, id string, rawReceived []byte) ([]byte, error) {
	var payload []byte
	if id == "" {
		// spec.md §4.1 confirm: no id on the received stanza means the
		// whole received element is embedded in the response.
		payload = rawReceived
	}
	return encodeIQ(from, to, id, stanza.IQResult, payload, nil)
}

func encodeIQError(from, to, id string, stErr *stanza.StanzaError, rawReceived []byte) ([]byte, error) {
	var payload []byte
	if id == "" {
		payload = rawReceived
	}
	return encodeIQ(from, to, id, stanza.IQError, payload, stErr)
}

func encodeIQ(from, to, id, typ string, payload []byte, stErr *stanza.StanzaError) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	start := xml.StartElement{
		Name: xml.Name{Space: ns.Client, Local: "iq"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "type"}, Value: typ}},
	}
	if id != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "id"}, Value: id})
	}
	if from != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "from"}, Value: from})
	}
	if to != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "to"}, Value: to})
	}
	if err := enc.EncodeToken(start); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.Write(payload)
	if stErr != nil {
		eb, err := xml.Marshal(stErr)
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
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

// encodeMessage builds <message type="chat" from=.. to=..><body>body
// </body></message>, used only by NewOutgoing's optional chat_message
// (session.cpp's JGSession constructor calls sendMessage(msg) before
// building the session-initiate).
func encodeMessage(from, to, body string) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	start := xml.StartElement{
		Name: xml.Name{Space: ns.Client, Local: "message"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "type"}, Value: "chat"}},
	}
	if from != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "from"}, Value: from})
	}
	if to != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "to"}, Value: to})
	}
	if err := enc.EncodeToken(start); err != nil {
		return nil, err
	}
	bodyStart := xml.StartElement{Name: xml.Name{Local: "body"}}
	if err := enc.EncodeToken(bodyStart); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(xml.CharData(body)); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(xml.EndElement{Name: bodyStart.Name}); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(xml.EndElement{Name: start.Name}); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeRawEvent classifies one inbound stanza into a jingle.RawEvent.
// Only <iq> stanzas carrying a <jingle> child, or IQ responses whose
// id some session is awaiting, are meaningful here; everything else
// returns ok=false so the caller tries other plugins.
func decodeRawEvent(raw []byte) (core.RawEvent, bool) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return core.RawEvent{}, false
	}
	start, ok := tok.(xml.StartElement)
	if !ok || start.Name.Local != "iq" {
		return core.RawEvent{}, false
	}

	var from, to, id, typ string
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "from":
			from = a.Value
		case "to":
			to = a.Value
		case "id":
			id = a.Value
		case "type":
			typ = a.Value
		}
	}

	switch typ {
	case stanza.IQSet:
		if !containsJingleChild(raw) {
			return core.RawEvent{}, false
		}
		return core.RawEvent{Kind: core.RawJingleSet, From: from, To: to, StanzaID: id, Raw: raw}, true
	case stanza.IQResult:
		return core.RawEvent{Kind: core.RawIQResult, From: from, To: to, StanzaID: id, Raw: raw}, true
	case stanza.IQError:
		cond, text := decodeErrorChild(raw)
		return core.RawEvent{Kind: core.RawIQError, From: from, To: to, StanzaID: id, Raw: raw, ErrorCond: cond, ErrorText: text}, true
	default:
		return core.RawEvent{}, false
	}
}

func containsJingleChild(raw []byte) bool {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	for {
		tok, err := dec.Token()
		if err != nil {
			return false
		}
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == "jingle" && start.Name.Space == ns.Jingle {
			return true
		}
	}
}

func decodeErrorChild(raw []byte) (cond, text string) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	inError := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return cond, text
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local == "error" {
			inError = true
			continue
		}
		if !inError {
			continue
		}
		if start.Name.Local == "text" {
			var t struct {
				Text string `xml:",chardata"`
			}
			_ = dec.DecodeElement(&t, &start)
			text = t.Text
			continue
		}
		if cond == "" {
			cond = start.Name.Local
		}
	}
}
