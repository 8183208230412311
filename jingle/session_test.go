package jingle

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/meszmate/xmpp-go/stanza"
)

// fakeStream is the test double for jingle.Stream: it records every
// outbound stanza so tests can correlate responses by id, and lets
// Send/confirm calls be made to fail on demand.
type fakeStream struct {
	local    string
	sent     []sentRecord
	results  []string
	errors   []string
	failNext bool
}

type sentRecord struct {
	to  string
	id  string
	raw []byte
}

func (f *fakeStream) Send(ctx context.Context, to, id string, jingleXML []byte) error {
	if f.failNext {
		f.failNext = false
		return context.DeadlineExceeded
	}
	f.sent = append(f.sent, sentRecord{to: to, id: id, raw: jingleXML})
	return nil
}

func (f *fakeStream) ReplyResult(ctx context.Context, to, id string, rawReceived []byte) error {
	f.results = append(f.results, id)
	return nil
}

func (f *fakeStream) ReplyError(ctx context.Context, to, id string, stErr *stanza.StanzaError, rawReceived []byte) error {
	f.errors = append(f.errors, id)
	return nil
}

func (f *fakeStream) SendMessage(ctx context.Context, to, body string) error {
	f.sent = append(f.sent, sentRecord{to: to, id: "", raw: []byte(body)})
	return nil
}

func (f *fakeStream) LocalJID() string { return f.local }

func (f *fakeStream) lastSent() sentRecord {
	return f.sent[len(f.sent)-1]
}

func newTestEngine(timeout time.Duration) *Engine {
	return NewEngine(WithStanzaTimeout(timeout))
}

// TestOutgoingCallAcceptedThenHangup is spec.md §8 scenario 1.
func TestOutgoingCallAcceptedThenHangup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine := newTestEngine(time.Minute)
	stream := &fakeStream{local: "caller@example.com/r1"}

	content := sampleContent()
	sess, err := engine.NewOutgoing(ctx, stream, "", "callee@example.com", []SessionContent{content}, nil, "")
	if err != nil {
		t.Fatalf("NewOutgoing: %v", err)
	}
	if sess.State() != Pending {
		t.Fatalf("state after initiate = %v, want Pending", sess.State())
	}
	initiateSend := stream.lastSent()

	// Peer acknowledges the initiate with iq/result; this is dropped
	// silently since the stanza was sent with notify=false.
	engine.Dispatch(RawEvent{
		Kind: RawIQResult, From: "callee@example.com", To: stream.local, StanzaID: initiateSend.id,
	})
	if ev := sess.GetEvent(ctx, time.Now()); ev != nil {
		t.Fatalf("unexpected event after silent iq/result: %+v", ev)
	}

	// Peer sends session-accept with matching content.
	contentXML, err := content.toXML(fullContentFlags)
	if err != nil {
		t.Fatalf("content toXML: %v", err)
	}
	acceptRaw, err := encodeJingleElement(ActSessionAccept, sess.sid, sess.initiatorJID(), sess.responderJID(), [][]byte{contentXML}, nil, nil)
	if err != nil {
		t.Fatalf("encode session-accept: %v", err)
	}
	if ok := engine.Dispatch(RawEvent{
		Kind: RawJingleSet, From: "callee@example.com", To: stream.local, StanzaID: "peer-acc-1", Raw: acceptRaw,
	}); !ok {
		t.Fatalf("engine failed to dispatch session-accept to the session")
	}

	ev := sess.GetEvent(ctx, time.Now())
	if ev == nil || ev.Kind != EvAccept {
		t.Fatalf("expected EvAccept, got %+v", ev)
	}
	if sess.State() != Active {
		t.Fatalf("state after accept = %v, want Active", sess.State())
	}
	sess.EventTerminated()

	if ev := sess.GetEvent(ctx, time.Now()); ev != nil {
		t.Fatalf("expected no further event before hangup, got %+v", ev)
	}

	if err := sess.Hangup(ctx, ReasonSuccess, ""); err != nil {
		t.Fatalf("hangup: %v", err)
	}
	if sess.State() != Ending {
		t.Fatalf("state after hangup = %v, want Ending", sess.State())
	}
	terminateSend := stream.lastSent()
	if !bytes.Contains(terminateSend.raw, []byte("<success/>")) {
		t.Fatalf("terminate stanza missing <success/> reason: %s", terminateSend.raw)
	}

	// Peer's response to the terminate drives the session to Destroy.
	engine.Dispatch(RawEvent{
		Kind: RawIQResult, From: "callee@example.com", To: stream.local, StanzaID: terminateSend.id,
	})
	ev = sess.GetEvent(ctx, time.Now())
	if ev == nil || ev.Kind != EvDestroy {
		t.Fatalf("expected EvDestroy after terminate response, got %+v", ev)
	}
	if sess.State() != Destroy {
		t.Fatalf("state after terminate response = %v, want Destroy", sess.State())
	}
	if len(engine.Sessions()) != 0 {
		t.Fatalf("engine still holds a reference after Destroy")
	}
}

// TestIncomingInitiateMissingNameIsFatal is spec.md §8 scenario 2.
func TestIncomingInitiateMissingNameIsFatal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine := newTestEngine(time.Minute)
	stream := &fakeStream{local: "callee@example.com"}

	badContent := []byte(`<content creator="initiator"><description xmlns="urn:xmpp:jingle:apps:rtp:1" media="audio"/></content>`)
	raw, err := encodeJingleElement(ActSessionInitiate, "sid-bad", "caller@example.com", "", [][]byte{badContent}, nil, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	sess, started := engine.DispatchNewIncoming(ctx, stream, RawEvent{
		Kind: RawJingleSet, From: "caller@example.com", To: "callee@example.com", StanzaID: "init-1", Raw: raw,
	})
	if !started {
		t.Fatalf("expected a new incoming session to start")
	}

	ev := sess.GetEvent(ctx, time.Now())
	if ev == nil || ev.Kind != EvDestroy {
		t.Fatalf("expected EvDestroy, got %+v", ev)
	}
	if len(stream.errors) != 1 {
		t.Fatalf("expected one iq/error reply, got %d", len(stream.errors))
	}
	if sess.State() != Destroy {
		t.Fatalf("state = %v, want Destroy", sess.State())
	}
}

// TestSessionInfoPingAutoConfirmed is spec.md §8 scenario 3.
func TestSessionInfoPingAutoConfirmed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess, stream, engine := newActiveIncomingSession(t)
	_ = engine

	raw, err := encodeJingleElement(ActSessionInfo, sess.sid, sess.initiatorJID(), "", nil, nil, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	sess.AcceptEvent(RawEvent{Kind: RawJingleSet, From: sess.remoteJID, To: sess.localJID, StanzaID: "ping-1", Raw: raw}, sess.sid)

	if ev := sess.GetEvent(ctx, time.Now()); ev != nil {
		t.Fatalf("ping should not surface an event, got %+v", ev)
	}
	if len(stream.results) != 1 || stream.results[0] != "ping-1" {
		t.Fatalf("expected auto-confirm of ping-1, got %+v", stream.results)
	}
}

// TestDtmfAggregation is spec.md §8 scenario 4.
func TestDtmfAggregation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess, _, engine := newActiveIncomingSession(t)
	_ = engine

	raw, err := encodeSessionInfoElement(sess.sid, sess.initiatorJID(), ActDtmf, "123")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	sess.AcceptEvent(RawEvent{Kind: RawJingleSet, From: sess.remoteJID, To: sess.localJID, StanzaID: "dtmf-1", Raw: raw}, sess.sid)

	ev := sess.GetEvent(ctx, time.Now())
	if ev == nil || ev.Kind != EvDtmf || ev.Text != "123" {
		t.Fatalf("expected EvDtmf text=123, got %+v", ev)
	}
}

// TestRingingRejectedInActive covers spec.md §4.1.2: "Active: everything
// except session-accept, session-initiate, ringing". Ringing arrives as
// a session-info sub-action, so the outer action alone can't carry this
// rule.
func TestRingingRejectedInActive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess, stream, engine := newActiveIncomingSession(t)
	_ = engine

	raw, err := encodeSessionInfoElement(sess.sid, sess.initiatorJID(), ActRinging, "")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	sess.AcceptEvent(RawEvent{Kind: RawJingleSet, From: sess.remoteJID, To: sess.localJID, StanzaID: "ringing-1", Raw: raw}, sess.sid)

	if ev := sess.GetEvent(ctx, time.Now()); ev != nil {
		t.Fatalf("illegal ringing should not surface an event, got %+v", ev)
	}
	if len(stream.errors) != 1 || stream.errors[0] != "ringing-1" {
		t.Fatalf("expected bad-request error reply for ringing-1, got %+v", stream.errors)
	}
	if sess.State() != Active {
		t.Fatalf("illegal ringing in Active must not be fatal, state=%v", sess.State())
	}
}

// TestTimeoutOnNonNotifyInfo is spec.md §8 scenario 5.
func TestTimeoutOnNonNotifyInfo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess, stream, _ := newActiveIncomingSession(t)

	if _, err := sess.SendInfo(ctx, []byte("<hold xmlns=\"urn:xmpp:jingle:apps:rtp:info:1\"/>"), false); err != nil {
		t.Fatalf("send_info: %v", err)
	}

	// Simulate the deadline having already passed.
	ev := sess.GetEvent(ctx, time.Now().Add(time.Hour))
	if ev == nil || ev.Kind != EvTerminated || ev.Text != "timeout" {
		t.Fatalf("expected EvTerminated(timeout), got %+v", ev)
	}
	if sess.State() != Ending && sess.State() != Destroy {
		t.Fatalf("hangup should have been driven by the timeout, state=%v", sess.State())
	}
	terminate := stream.lastSent()
	if !bytes.Contains(terminate.raw, []byte("<"+string(ReasonGeneralError)+"/>")) {
		t.Fatalf("expected general-error reason on timeout-driven terminate, got %s", terminate.raw)
	}
}

// TestResponderSubstitution is spec.md §8 scenario 6.
func TestResponderSubstitution(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine := newTestEngine(time.Minute)
	stream := &fakeStream{local: "a@h/caller"}

	content := sampleContent()
	sess, err := engine.NewOutgoing(ctx, stream, "", "a@h/r1", []SessionContent{content}, nil, "")
	if err != nil {
		t.Fatalf("NewOutgoing: %v", err)
	}

	contentXML, _ := content.toXML(fullContentFlags)
	acceptRaw, err := encodeJingleElement(ActSessionAccept, sess.sid, sess.initiatorJID(), "a@h/r2", [][]byte{contentXML}, nil, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if ok := engine.Dispatch(RawEvent{Kind: RawJingleSet, From: "a@h/r1", To: stream.local, StanzaID: "acc-1", Raw: acceptRaw}); !ok {
		t.Fatalf("dispatch failed")
	}
	ev := sess.GetEvent(ctx, time.Now())
	if ev == nil || ev.Kind != EvAccept {
		t.Fatalf("expected EvAccept, got %+v", ev)
	}
	if sess.remoteJID != "a@h/r2" {
		t.Fatalf("remoteJID = %q, want a@h/r2 after responder substitution", sess.remoteJID)
	}
	sess.EventTerminated()

	if _, err := sess.SendInfo(ctx, []byte("<hold xmlns=\"urn:xmpp:jingle:apps:rtp:info:1\"/>"), false); err != nil {
		t.Fatalf("send_info: %v", err)
	}
	if stream.lastSent().to != "a@h/r2" {
		t.Fatalf("subsequent send went to %q, want a@h/r2", stream.lastSent().to)
	}
}

// newActiveIncomingSession builds an incoming session already in
// Active state, for tests that only care about in-call behavior.
func newActiveIncomingSession(t *testing.T) (*Session, *fakeStream, *Engine) {
	t.Helper()
	ctx := context.Background()
	engine := newTestEngine(100 * time.Millisecond)
	stream := &fakeStream{local: "callee@example.com"}

	content := sampleContent()
	contentXML, err := content.toXML(fullContentFlags)
	if err != nil {
		t.Fatalf("content toXML: %v", err)
	}
	initRaw, err := encodeJingleElement(ActSessionInitiate, "sid-active", "caller@example.com", "", [][]byte{contentXML}, nil, nil)
	if err != nil {
		t.Fatalf("encode initiate: %v", err)
	}
	sess, started := engine.DispatchNewIncoming(ctx, stream, RawEvent{
		Kind: RawJingleSet, From: "caller@example.com", To: "callee@example.com", StanzaID: "init-1", Raw: initRaw,
	})
	if !started {
		t.Fatalf("expected new incoming session")
	}
	ev := sess.GetEvent(ctx, time.Now())
	if ev == nil || ev.Kind != EvAction || ev.Action != ActSessionInitiate {
		t.Fatalf("expected EvAction(session-initiate), got %+v", ev)
	}
	sess.EventTerminated()

	if err := sess.Accept(ctx, []SessionContent{content}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if sess.State() != Active {
		t.Fatalf("state after accept = %v, want Active", sess.State())
	}
	return sess, stream, engine
}
