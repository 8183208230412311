package jingle

import (
	"testing"
	"time"
)

func TestPendingTableAppendMatchRemove(t *testing.T) {
	t.Parallel()
	var tbl pendingTable
	now := time.Now()
	tbl.append(SentStanza{ID: "a_1", Deadline: now.Add(time.Minute), Notify: true})
	tbl.append(SentStanza{ID: "a_2", Deadline: now.Add(time.Minute), Notify: false})

	if tbl.len() != 2 {
		t.Fatalf("len = %d, want 2", tbl.len())
	}

	entry, ok := tbl.matchAndRemove("a_1")
	if !ok || entry.ID != "a_1" || !entry.Notify {
		t.Fatalf("matchAndRemove(a_1) = %+v, %v", entry, ok)
	}
	if tbl.len() != 1 {
		t.Fatalf("len after remove = %d, want 1", tbl.len())
	}

	if _, ok := tbl.matchAndRemove("missing"); ok {
		t.Fatalf("matchAndRemove(missing) should fail")
	}
}

func TestPendingTableHeadIfExpired(t *testing.T) {
	t.Parallel()
	var tbl pendingTable
	past := time.Now().Add(-time.Second)
	future := time.Now().Add(time.Hour)
	tbl.append(SentStanza{ID: "old", Deadline: past})
	tbl.append(SentStanza{ID: "new", Deadline: future})

	entry, expired := tbl.headIfExpired(time.Now())
	if !expired || entry.ID != "old" {
		t.Fatalf("headIfExpired = %+v, %v, want old/true", entry, expired)
	}
	if tbl.len() != 1 {
		t.Fatalf("len after expiry pop = %d, want 1", tbl.len())
	}

	if _, expired := tbl.headIfExpired(time.Now()); expired {
		t.Fatalf("remaining entry should not be expired yet")
	}
}

func TestPendingTableClear(t *testing.T) {
	t.Parallel()
	var tbl pendingTable
	tbl.append(SentStanza{ID: "a", Deadline: time.Now().Add(time.Minute)})
	tbl.append(SentStanza{ID: "b", Deadline: time.Now().Add(time.Minute)})
	tbl.clear()
	if tbl.len() != 0 {
		t.Fatalf("len after clear = %d, want 0", tbl.len())
	}
}
