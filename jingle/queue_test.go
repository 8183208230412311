package jingle

import "testing"

func TestEventQueueFIFOOrder(t *testing.T) {
	t.Parallel()
	var q eventQueue
	q.enqueue(RawEvent{Kind: RawIQResult, StanzaID: "1"})
	q.enqueue(RawEvent{Kind: RawIQResult, StanzaID: "2"})

	e, ok := q.dequeue()
	if !ok || e.StanzaID != "1" {
		t.Fatalf("first dequeue = %+v, want id 1", e)
	}
	e, ok = q.dequeue()
	if !ok || e.StanzaID != "2" {
		t.Fatalf("second dequeue = %+v, want id 2", e)
	}
	if _, ok := q.dequeue(); ok {
		t.Fatalf("expected empty queue")
	}
}

func TestEventQueueTerminalPreemption(t *testing.T) {
	t.Parallel()
	var q eventQueue
	q.enqueue(RawEvent{Kind: RawIQResult, StanzaID: "ordinary-1"})
	q.enqueue(RawEvent{Kind: RawIQResult, StanzaID: "ordinary-2"})
	q.enqueue(RawEvent{Kind: RawStreamDestroyed, StanzaID: "urgent"})

	e, ok := q.dequeue()
	if !ok || e.StanzaID != "urgent" {
		t.Fatalf("terminal event did not jump the queue: got %+v", e)
	}
	e, _ = q.dequeue()
	if e.StanzaID != "ordinary-1" {
		t.Fatalf("expected ordinary-1 next, got %+v", e)
	}
}

func TestEventQueueSessionTerminateIsTerminal(t *testing.T) {
	t.Parallel()
	raw, err := encodeJingleElement(ActSessionTerminate, "sid1", "a@b", "", nil, nil, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var q eventQueue
	q.enqueue(RawEvent{Kind: RawIQResult, StanzaID: "ordinary"})
	q.enqueue(RawEvent{Kind: RawJingleSet, Raw: raw, StanzaID: "terminate"})

	e, _ := q.dequeue()
	if e.StanzaID != "terminate" {
		t.Fatalf("session-terminate should preempt, got %+v", e)
	}
}
