package jingle

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/meszmate/xmpp-go/stanza"
)

var fullContentFlags = encodeFlags{description: true, transport: true, candidates: true, auth: true}

// Session is the per-call state machine (spec.md §4.1). All public
// methods acquire the session's reentrant mutex; get_event may call
// hangup internally while already holding it.
type Session struct {
	mu reentrantMutex

	engine *Engine // non-owning; used only to drop the registry entry on destroy
	stream Stream

	direction Direction
	localJID  string
	remoteJID string
	sid       string
	localSID  string
	seq       atomic.Uint64

	state State

	pending pendingTable
	queue   eventQueue

	lastEvent   *JingleEvent
	destroyed   bool
	timeout     time.Duration

	log *slog.Logger
}

// newSession wires the shared bookkeeping common to both construction
// paths; callers set direction/state/sid/remoteJID afterward.
func newSession(engine *Engine, stream Stream, localSID string, timeout time.Duration, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		engine:   engine,
		stream:   stream,
		localSID: localSID,
		timeout:  timeout,
		log:      log,
	}
}

func (s *Session) nextStanzaID() string {
	return fmt.Sprintf("%s_%d", s.localSID, s.seq.Add(1))
}

// initiatorJID is the JID of the side that sent session-initiate
// (spec.md §3 invariant); responderJID is the other side. Both are
// derived from direction rather than stored twice.
func (s *Session) initiatorJID() string {
	if s.direction == Outgoing {
		return s.localJID
	}
	return s.remoteJID
}

func (s *Session) responderJID() string {
	if s.direction == Outgoing {
		return s.remoteJID
	}
	return s.localJID
}

// SID is the peer-visible session id.
func (s *Session) SID() string {
	id := newCallerID()
	s.mu.lock(id)
	defer s.mu.unlock(id)
	return s.sid
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	id := newCallerID()
	s.mu.lock(id)
	defer s.mu.unlock(id)
	return s.state
}

// NewOutgoing creates a session in Idle, allocates identity, and sends
// session-initiate (spec.md §4.1 new_outgoing(engine, stream, caller,
// callee, contents, extra?, chat_message?)). caller is this side's own
// JID (session.cpp's callerJID); extra is an already-marshaled element
// appended as an additional child of the outgoing <jingle> (nil for
// none); chatMessage, if non-empty, is sent as a plain <message> body
// ahead of the initiate, best-effort, exactly as session.cpp's
// constructor does before building the initiate stanza. On send
// failure the session transitions directly to Destroy.
func NewOutgoing(ctx context.Context, engine *Engine, stream Stream, caller, callee string, contents []SessionContent, extra []byte, chatMessage string, timeout time.Duration, log *slog.Logger) (*Session, error) {
	sid := engine.CreateSessionID()
	localSID := engine.CreateSessionID()
	s := newSession(engine, stream, localSID, timeout, log)
	s.direction = Outgoing
	s.sid = sid
	if caller != "" {
		s.localJID = caller
	} else {
		s.localJID = stream.LocalJID()
	}
	s.remoteJID = callee

	if chatMessage != "" {
		if err := stream.SendMessage(ctx, s.remoteJID, chatMessage); err != nil {
			s.log.Warn("jingle: chat message accompanying session-initiate failed", "sid", s.sid, "err", err)
		}
	}

	contentsXML, err := encodeContents(contents, fullContentFlags)
	if err != nil {
		s.state = Destroy
		return nil, err
	}
	jingleXML, err := encodeJingleElement(ActSessionInitiate, s.sid, s.localJID, "", contentsXML, extra, nil)
	if err != nil {
		s.state = Destroy
		return nil, err
	}

	id := s.nextStanzaID()
	if err := stream.Send(ctx, s.remoteJID, id, jingleXML); err != nil {
		s.state = Destroy
		return nil, err
	}
	s.pending.append(SentStanza{ID: id, Deadline: time.Now().Add(s.timeout), Notify: false})
	s.state = Pending
	engine.register(s)
	return s, nil
}

// newIncoming is called by Engine.Dispatch when a session-initiate
// creates a brand new session.
func newIncoming(engine *Engine, stream Stream, localSID, sid, from, to string, timeout time.Duration, log *slog.Logger) *Session {
	s := newSession(engine, stream, localSID, timeout, log)
	s.direction = Incoming
	s.sid = sid
	s.localJID = to
	s.remoteJID = from
	s.state = Idle
	return s
}

func encodeContents(contents []SessionContent, flags encodeFlags) ([][]byte, error) {
	out := make([][]byte, 0, len(contents))
	for _, c := range contents {
		b, err := c.toXML(flags)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Accept emits session-accept (incoming, Pending only).
func (s *Session) Accept(ctx context.Context, contents []SessionContent) error {
	id := newCallerID()
	s.mu.lock(id)
	defer s.mu.unlock(id)

	if s.direction != Incoming || s.state != Pending {
		return fmt.Errorf("jingle: accept invalid in state %s direction %v", s.state, s.direction)
	}

	contentsXML, err := encodeContents(contents, fullContentFlags)
	if err != nil {
		return err
	}
	jingleXML, err := encodeJingleElement(ActSessionAccept, s.sid, s.initiatorJID(), s.responderJID(), contentsXML, nil, nil)
	if err != nil {
		return err
	}
	stanzaID := s.nextStanzaID()
	if err := s.stream.Send(ctx, s.remoteJID, stanzaID, jingleXML); err != nil {
		return err
	}
	s.pending.append(SentStanza{ID: stanzaID, Deadline: time.Now().Add(s.timeout), Notify: false})
	s.state = Active
	return nil
}

// Hangup clears pending stanzas and emits session-terminate (spec.md
// §4.1 hangup). Valid in Pending or Active only.
func (s *Session) Hangup(ctx context.Context, reason Reason, text string) error {
	id := newCallerID()
	return s.hangupLocked(ctx, id, reason, text)
}

// hangupLocked is the reentrant-safe inner form get_event's timeout
// path calls while already holding the lock (spec.md §9 "Mutex
// reentrancy").
func (s *Session) hangupLocked(ctx context.Context, callerID callerID, reason Reason, text string) error {
	s.mu.lock(callerID)
	defer s.mu.unlock(callerID)

	if s.state != Pending && s.state != Active {
		return fmt.Errorf("jingle: hangup invalid in state %s", s.state)
	}

	s.pending.clear()
	reasonXML, err := encodeReason(reason, text)
	if err != nil {
		return err
	}
	jingleXML, err := encodeJingleElement(ActSessionTerminate, s.sid, s.initiatorJID(), "", nil, nil, reasonXML)
	if err != nil {
		return err
	}
	stanzaID := s.nextStanzaID()
	if sendErr := s.stream.Send(ctx, s.remoteJID, stanzaID, jingleXML); sendErr != nil {
		// A failed terminate still moves us to Ending; there is
		// nothing further to await.
		s.state = Ending
		return sendErr
	}
	s.pending.append(SentStanza{ID: stanzaID, Deadline: time.Now().Add(s.timeout), Notify: false})
	s.state = Ending
	return nil
}

// SendContent implements send_content (spec.md §4.1): content/
// transport verbs encoded per the contentEncodeFlags table. Always
// no-notify unless wantNotify is set.
func (s *Session) SendContent(ctx context.Context, action Action, contents []SessionContent, wantNotify bool) (string, error) {
	id := newCallerID()
	s.mu.lock(id)
	defer s.mu.unlock(id)

	if !s.acceptOutgoing(action) {
		return "", fmt.Errorf("jingle: send_content action %q invalid in state %s", action, s.state)
	}

	flags, ok := contentEncodeFlags[action]
	if !ok {
		return "", fmt.Errorf("jingle: send_content unknown action %q", action)
	}
	contentsXML, err := encodeContents(contents, flags)
	if err != nil {
		return "", err
	}
	jingleXML, err := encodeJingleElement(action, s.sid, s.initiatorJID(), "", contentsXML, nil, nil)
	if err != nil {
		return "", err
	}
	return s.sendNoCRLock(ctx, jingleXML, wantNotify)
}

// SendInfo wraps payloadXML (an already-encoded session-info child) in
// a session-info action.
func (s *Session) SendInfo(ctx context.Context, payloadXML []byte, wantNotify bool) (string, error) {
	id := newCallerID()
	s.mu.lock(id)
	defer s.mu.unlock(id)

	if !s.acceptOutgoing(ActSessionInfo) {
		return "", fmt.Errorf("jingle: send_info invalid in state %s", s.state)
	}
	jingleXML, err := encodeJingleElement(ActSessionInfo, s.sid, s.initiatorJID(), "", [][]byte{payloadXML}, nil, nil)
	if err != nil {
		return "", err
	}
	return s.sendNoCRLock(ctx, jingleXML, wantNotify)
}

// SendDtmf emits session-info with one <dtmf code="d"/> per digit
// (XEP-0181).
func (s *Session) SendDtmf(ctx context.Context, digits string, wantNotify bool) (string, error) {
	id := newCallerID()
	s.mu.lock(id)
	defer s.mu.unlock(id)

	if !s.acceptOutgoing(ActSessionInfo) {
		return "", fmt.Errorf("jingle: send_dtmf invalid in state %s", s.state)
	}
	jingleXML, err := encodeSessionInfoElement(s.sid, s.initiatorJID(), ActDtmf, digits)
	if err != nil {
		return "", err
	}
	return s.sendNoCRLock(ctx, jingleXML, wantNotify)
}

// sendNoCRLock sends an already-built <jingle> element; caller must
// already hold the mutex. Broken out since send_content/send_info/
// send_dtmf share the pending-table bookkeeping.
func (s *Session) sendNoCRLock(ctx context.Context, jingleXML []byte, wantNotify bool) (string, error) {
	stanzaID := s.nextStanzaID()
	if err := s.stream.Send(ctx, s.remoteJID, stanzaID, jingleXML); err != nil {
		if !wantNotify {
			// a non-notify send failing on the wire must still drive
			// the session to Destroy eventually; get_event's response
			// handling only fires for responses it knows about, so we
			// terminate immediately rather than leaving the session
			// wedged (spec.md §7 "transport errors").
			s.pending.clear()
			s.state = Destroy
		}
		return "", err
	}
	s.pending.append(SentStanza{ID: stanzaID, Deadline: time.Now().Add(s.timeout), Notify: wantNotify})
	return stanzaID, nil
}

// acceptOutgoing reports whether this session's direction may send
// `action` given its current state (mirrors acceptanceTable, but from
// the local, not peer, perspective: Pending/Active both generally
// allow content/transport/info verbs once a session exists).
func (s *Session) acceptOutgoing(action Action) bool {
	switch s.state {
	case Pending, Active:
		return true
	default:
		return false
	}
}

// ConfirmResult responds iq/result to a previously received request
// (spec.md §4.1 confirm, error-absent case). Always no-notify: this
// acknowledgement is fire-and-forget.
func (s *Session) ConfirmResult(ctx context.Context, to, stanzaID string, rawReceived []byte) error {
	id := newCallerID()
	s.mu.lock(id)
	defer s.mu.unlock(id)
	return s.stream.ReplyResult(ctx, to, stanzaID, rawReceived)
}

// ConfirmError responds iq/error to a previously received request
// (spec.md §4.1 confirm, error case).
func (s *Session) ConfirmError(ctx context.Context, to, stanzaID string, stErr *stanza.StanzaError, rawReceived []byte) error {
	id := newCallerID()
	s.mu.lock(id)
	defer s.mu.unlock(id)
	return s.stream.ReplyError(ctx, to, stanzaID, stErr, rawReceived)
}

// GetEvent is the application-driven tick (spec.md §4.1.3). It returns
// nil when there is nothing to report: the previous event is still
// outstanding, the session is destroyed, the FIFO is empty and no
// pending stanza has timed out.
func (s *Session) GetEvent(ctx context.Context, now time.Time) *JingleEvent {
	callerID := newCallerID()
	s.mu.lock(callerID)
	defer s.mu.unlock(callerID)

	if s.lastEvent != nil {
		return nil
	}
	if s.state == Destroy {
		return nil
	}

	for {
		raw, ok := s.queue.dequeue()
		if !ok {
			break
		}
		if ev := s.processRaw(ctx, callerID, raw); ev != nil {
			s.lastEvent = ev
			s.maybeFinalize(ev)
			return ev
		}
	}

	if head, expired := s.pending.headIfExpired(now); expired {
		var ev *JingleEvent
		if head.Notify {
			ev = &JingleEvent{Kind: EvResultTimeout, StanzaID: head.ID}
		} else {
			ev = &JingleEvent{Kind: EvTerminated, Text: "timeout"}
			// spec.md §8 scenario 5 requires the session-terminate sent
			// here to carry reason general-error. spec.md §9's open
			// question flags the source's own hangup(false,"Timeout")
			// as a bool->enum coercion bug; ReasonGeneralError is the
			// explicit, correct reason rather than a reproduction of
			// that coercion (see DESIGN.md).
			_ = s.hangupLocked(ctx, callerID, ReasonGeneralError, "timeout")
		}
		s.lastEvent = ev
		s.maybeFinalize(ev)
		return ev
	}

	return nil
}

// maybeFinalize transitions to Destroy once a terminal event has been
// produced (spec.md §4.1.3 step 5).
func (s *Session) maybeFinalize(ev *JingleEvent) {
	if ev.Kind == EvDestroy || ev.Kind == EvTerminated {
		s.state = Destroy
		if !s.destroyed {
			s.destroyed = true
			if s.engine != nil {
				s.engine.unregister(s)
			}
		}
	}
}

// EventTerminated must be called by the application after observing a
// JingleEvent, releasing last_event so get_event may proceed (spec.md
// §7 "the application must call event_terminated").
func (s *Session) EventTerminated() {
	id := newCallerID()
	s.mu.lock(id)
	defer s.mu.unlock(id)
	s.lastEvent = nil
}

// processRaw handles one dequeued RawEvent, returning a JingleEvent
// when one should be surfaced, or nil to keep draining the FIFO
// (spec.md §4.1.3 step 3).
func (s *Session) processRaw(ctx context.Context, callerID callerID, raw RawEvent) *JingleEvent {
	switch raw.Kind {
	case RawJingleSet:
		return s.processJingleSet(ctx, callerID, raw)
	case RawIQResult, RawIQError, RawWriteFail:
		return s.processResponse(ctx, callerID, raw)
	case RawStreamTerminated:
		s.log.Warn("jingle: transport hiccup", "sid", s.sid)
		return nil
	case RawStreamDestroyed:
		return &JingleEvent{Kind: EvTerminated, Text: "noconn"}
	default:
		return nil
	}
}

func (s *Session) processJingleSet(ctx context.Context, callerID callerID, raw RawEvent) *JingleEvent {
	decoded, protoErr, fatal := DecodeJingleIQ(raw.Raw)
	if protoErr != nil {
		_ = s.stream.ReplyError(ctx, raw.From, raw.StanzaID, protoErr, raw.Raw)
		// Idle means this was meant to be (or claims to be) the
		// session-initiate that brings the session into existence; any
		// malformed opener is unrecoverable regardless of how the
		// decoder classified the error.
		if fatal || s.state == Idle {
			return &JingleEvent{Kind: EvDestroy, Text: "failure"}
		}
		return nil
	}

	if decoded.Action == ActSessionInfo && decoded.InfoAction == "" {
		// ping: auto-confirm and surface nothing (spec.md §4.1.3 step 3).
		_ = s.stream.ReplyResult(ctx, raw.From, raw.StanzaID, raw.Raw)
		return nil
	}

	if decoded.Action == ActSessionTerminate {
		s.pending.clear()
		_ = s.stream.ReplyResult(ctx, raw.From, raw.StanzaID, raw.Raw)
		return &JingleEvent{Kind: EvDestroy, Reason: decoded.Reason, Text: decoded.ReasonText}
	}

	// The legality check must run against the state as it stood before
	// this event, not after — session-initiate/session-accept below
	// mutate state only once the table has cleared them.
	rule, stateOK := acceptanceTable[s.state][decoded.Action]
	legal := stateOK && ((s.direction == Outgoing && rule.outgoing) || (s.direction == Incoming && rule.incoming))
	if legal && decoded.Action == ActSessionInfo && decoded.InfoAction != "" {
		// session-info's outer action is always ActSessionInfo, so the
		// real per-sub-action legality (e.g. "ringing" is an error in
		// Active) is a second lookup keyed on the decoded child.
		subRule, subOK := infoSubActionAcceptance[s.state][decoded.InfoAction]
		legal = subOK && ((s.direction == Outgoing && subRule.outgoing) || (s.direction == Incoming && subRule.incoming))
	}
	if !legal {
		_ = s.stream.ReplyError(ctx, raw.From, raw.StanzaID, errBadRequest(fmt.Sprintf("action %q not legal in state %s", decoded.Action, s.state)), raw.Raw)
		if s.state == Idle {
			return &JingleEvent{Kind: EvDestroy, Text: "failure"}
		}
		return nil
	}

	if decoded.Action == ActSessionInitiate {
		s.localJID = raw.To
		s.remoteJID = raw.From
		s.state = Pending
	}
	if decoded.Action == ActSessionAccept {
		if decoded.Responder != "" && decoded.Responder != s.remoteJID {
			s.remoteJID = decoded.Responder
		}
		s.state = Active
	}

	evAction := decoded.Action
	ev := &JingleEvent{
		Kind:     EvAction,
		Action:   evAction,
		StanzaID: raw.StanzaID,
		Raw:      raw.Raw,
		Contents: decoded.Contents,
		Text:     decoded.DtmfDigits,
	}
	if decoded.Action == ActSessionInfo {
		ev.Action = decoded.InfoAction
		if decoded.InfoAction == ActDtmf {
			ev.Kind = EvDtmf
		}
	}
	if decoded.Action == ActSessionAccept {
		ev.Kind = EvAccept
	}

	if !requiresConfirmation(ev.Action) {
		_ = s.stream.ReplyResult(ctx, raw.From, raw.StanzaID, raw.Raw)
	}
	return ev
}

func (s *Session) processResponse(ctx context.Context, callerID callerID, raw RawEvent) *JingleEvent {
	entry, ok := s.pending.matchAndRemove(raw.StanzaID)
	if !ok {
		return nil
	}

	if s.state == Ending {
		return &JingleEvent{Kind: EvDestroy}
	}
	if s.state == Pending && s.direction == Outgoing && !entry.Notify &&
		(raw.Kind == RawIQError || raw.Kind == RawWriteFail) {
		return &JingleEvent{Kind: EvTerminated, ErrText: raw.ErrorText}
	}

	if entry.Notify {
		switch raw.Kind {
		case RawIQResult:
			return &JingleEvent{Kind: EvResultOk, StanzaID: raw.StanzaID, Raw: raw.Raw}
		case RawIQError:
			return &JingleEvent{Kind: EvResultError, StanzaID: raw.StanzaID, ErrText: raw.ErrorText}
		case RawWriteFail:
			return &JingleEvent{Kind: EvResultWriteFail, StanzaID: raw.StanzaID, ErrText: raw.ErrorText}
		}
	}
	return nil
}

// AcceptEvent is the engine's addressing filter (spec.md §4.1
// accept_event): if sid is non-empty it must match this session's
// sid; otherwise the raw event's stanza id must be prefixed by
// local_sid. to/from must match local_jid/remote_jid exactly in every
// case.
func (s *Session) AcceptEvent(raw RawEvent, sid string) bool {
	id := newCallerID()
	s.mu.lock(id)
	defer s.mu.unlock(id)

	if sid != "" {
		if sid != s.sid {
			return false
		}
	} else if !stanzaIDHasPrefix(raw.StanzaID, s.localSID) {
		return false
	}
	if raw.To != s.localJID || raw.From != s.remoteJID {
		return false
	}
	s.queue.enqueue(raw)
	return true
}

func stanzaIDHasPrefix(id, prefix string) bool {
	return len(id) > len(prefix) && id[:len(prefix)] == prefix && id[len(prefix)] == '_'
}
