package jingle

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EngineOption configures an Engine, matching the functional-options
// idiom this module's root package uses for ServerOption/ClientOption.
type EngineOption func(*Engine)

// WithStanzaTimeout sets the deadline added to "now" at send time for
// any stanza that awaits a response (spec.md §4.3 stanza_timeout).
func WithStanzaTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.stanzaTimeout = d }
}

// WithDebugLogger sets the debug sink used by the engine and every
// session it creates (spec.md §6 "a debug sink").
func WithDebugLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

const defaultStanzaTimeout = 30 * time.Second

// Engine is the registry/façade described in spec.md §4.3: it owns no
// session state itself, only the bookkeeping needed to allocate
// session ids and route inbound events to the right Session. It is
// deliberately minimal per spec.md §6 ("the engine registry... out of
// scope" for the core itself) but lives here since SPEC_FULL.md §4.3
// asks for it alongside the rest of the façade.
type Engine struct {
	mu            sync.RWMutex
	bySID         map[string]*Session
	byLocalSID    map[string]*Session
	stanzaTimeout time.Duration
	log           *slog.Logger
}

// NewEngine builds an Engine with the given options.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		bySID:         make(map[string]*Session),
		byLocalSID:    make(map[string]*Session),
		stanzaTimeout: defaultStanzaTimeout,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateSessionID allocates a unique identifier for either a
// peer-visible sid or a process-local local_sid (spec.md §4.3); both
// use the same uuid-based scheme.
func (e *Engine) CreateSessionID() string {
	return uuid.NewString()
}

// register adds a freshly constructed session to both indexes. Called
// by Session.NewOutgoing after it has already sent session-initiate,
// and by Engine.Dispatch when an inbound session-initiate creates a
// new incoming session.
func (e *Engine) register(s *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bySID[s.sid] = s
	e.byLocalSID[s.localSID] = s
}

// unregister removes a session from both indexes; called once a
// session reaches Destroy (spec.md §4.1.3 step 5).
func (e *Engine) unregister(s *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.bySID, s.sid)
	delete(e.byLocalSID, s.localSID)
}

// Sessions returns a snapshot of every currently registered session.
func (e *Engine) Sessions() []*Session {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Session, 0, len(e.bySID))
	for _, s := range e.bySID {
		out = append(out, s)
	}
	return out
}

// NewOutgoing creates and registers an outgoing session (spec.md §4.1
// new_outgoing), wired to this engine's stanza_timeout and debug
// logger. extra and chatMessage are the spec's optional `extra`/
// `chat_message` parameters; pass nil/"" when neither is needed.
func (e *Engine) NewOutgoing(ctx context.Context, stream Stream, caller, callee string, contents []SessionContent, extra []byte, chatMessage string) (*Session, error) {
	return NewOutgoing(ctx, e, stream, caller, callee, contents, extra, chatMessage, e.stanzaTimeout, e.log)
}

// Dispatch implements spec.md §4.3's inbound routing: prefer a session
// whose sid matches the event's jingle sid attribute (Jingle-set
// events only), otherwise try every session whose local_sid prefixes
// the event's stanza id. The chosen session's own AcceptEvent performs
// the final to/from addressing check; Dispatch tries the next
// candidate if that check fails, and reports false if nothing
// accepts it.
func (e *Engine) Dispatch(raw RawEvent) bool {
	if sid, ok := raw.jingleSID(); ok && sid != "" {
		e.mu.RLock()
		s, found := e.bySID[sid]
		e.mu.RUnlock()
		if found && s.AcceptEvent(raw, sid) {
			return true
		}
	}

	e.mu.RLock()
	candidates := make([]*Session, 0, 1)
	for localSID, s := range e.byLocalSID {
		if strings.HasPrefix(raw.StanzaID, localSID) {
			candidates = append(candidates, s)
		}
	}
	e.mu.RUnlock()

	for _, s := range candidates {
		if s.AcceptEvent(raw, "") {
			return true
		}
	}
	return false
}

// HandleRaw is the single entry point a Stream-side adapter calls for
// every inbound event: it tries Dispatch against existing sessions
// first, then falls back to DispatchNewIncoming for a session-initiate
// that starts a brand new incoming session. It reports whether the
// event was consumed by (or started) a session.
func (e *Engine) HandleRaw(ctx context.Context, stream Stream, raw RawEvent) bool {
	if e.Dispatch(raw) {
		return true
	}
	_, ok := e.DispatchNewIncoming(ctx, stream, raw)
	return ok
}

// DispatchNewIncoming handles the one case Dispatch can't: a
// session-initiate that doesn't yet correspond to any registered
// session. It decodes just enough of the stanza to learn the sid, the
// addressing, and whether it is in fact a session-initiate; on success
// it registers and returns the new session plus the already-enqueued
// event so the caller's next GetEvent observes it.
func (e *Engine) DispatchNewIncoming(ctx context.Context, stream Stream, raw RawEvent) (*Session, bool) {
	if raw.Kind != RawJingleSet {
		return nil, false
	}
	action, _ := peekJingleAttr(raw.Raw, "type")
	if Action(action) != ActSessionInitiate {
		return nil, false
	}
	sid, ok := raw.jingleSID()
	if !ok || sid == "" {
		return nil, false
	}

	e.mu.RLock()
	_, exists := e.bySID[sid]
	e.mu.RUnlock()
	if exists {
		return nil, false
	}

	localSID := e.CreateSessionID()
	s := newIncoming(e, stream, localSID, sid, raw.From, raw.To, e.stanzaTimeout, e.log)
	if !s.AcceptEvent(raw, sid) {
		return nil, false
	}
	e.register(s)
	return s, true
}
