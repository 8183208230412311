package jingle

import "testing"

func TestAcceptanceTableIdleOnlyAcceptsIncomingInitiate(t *testing.T) {
	t.Parallel()
	rule, ok := acceptanceTable[Idle][ActSessionInitiate]
	if !ok || !rule.incoming || rule.outgoing {
		t.Fatalf("Idle/session-initiate = %+v, %v, want incoming-only", rule, ok)
	}
	if _, ok := acceptanceTable[Idle][ActSessionInfo]; ok {
		t.Fatalf("Idle should not accept session-info")
	}
}

func TestAcceptanceTablePendingSessionAcceptOutgoingOnly(t *testing.T) {
	t.Parallel()
	rule, ok := acceptanceTable[Pending][ActSessionAccept]
	if !ok || !rule.outgoing || rule.incoming {
		t.Fatalf("Pending/session-accept = %+v, %v, want outgoing-only", rule, ok)
	}
}

func TestAcceptanceTableActiveRejectsSessionAccept(t *testing.T) {
	t.Parallel()
	if _, ok := acceptanceTable[Active][ActSessionAccept]; ok {
		t.Fatalf("Active should reject session-accept")
	}
	if _, ok := acceptanceTable[Active][ActSessionInitiate]; ok {
		t.Fatalf("Active should reject session-initiate")
	}
}

func TestInfoSubActionAcceptanceActiveRejectsRinging(t *testing.T) {
	t.Parallel()
	if _, ok := infoSubActionAcceptance[Active][ActRinging]; ok {
		t.Fatalf("Active should reject session-info/ringing")
	}
	if rule, ok := infoSubActionAcceptance[Pending][ActRinging]; !ok || !rule.incoming || !rule.outgoing {
		t.Fatalf("Pending/session-info/ringing = %+v, %v, want both directions", rule, ok)
	}
}

func TestContentEncodeFlagsTable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		action Action
		want   encodeFlags
	}{
		{ActContentAdd, encodeFlags{description: true, transport: true, candidates: true, auth: true}},
		{ActTransportInfo, encodeFlags{transport: true, candidates: true, auth: true}},
		{ActTransportReplace, encodeFlags{description: true, transport: true, auth: true}},
		{ActTransportAccept, encodeFlags{description: true, transport: true}},
		{ActContentAccept, encodeFlags{description: true, transport: true}},
		{ActContentReject, encodeFlags{minimal: true}},
		{ActContentRemove, encodeFlags{minimal: true}},
	}
	for _, tt := range tests {
		got, ok := contentEncodeFlags[tt.action]
		if !ok {
			t.Fatalf("missing encode flags for %q", tt.action)
		}
		if got != tt.want {
			t.Errorf("contentEncodeFlags[%q] = %+v, want %+v", tt.action, got, tt.want)
		}
	}
}

func TestRequiresConfirmation(t *testing.T) {
	t.Parallel()
	mustConfirm := []Action{ActContentAdd, ActTransportInfo, ActSessionInitiate, ActDtmf, ActRinging, ActSessionTransfer}
	for _, a := range mustConfirm {
		if !requiresConfirmation(a) {
			t.Errorf("requiresConfirmation(%q) = false, want true", a)
		}
	}
	autoConfirmed := []Action{ActSessionAccept, ActSessionTerminate}
	for _, a := range autoConfirmed {
		if requiresConfirmation(a) {
			t.Errorf("requiresConfirmation(%q) = true, want false", a)
		}
	}
}

func TestDtmfActionTokenLiteralUppercase(t *testing.T) {
	t.Parallel()
	// spec.md §9 open question: preserved literally, not "fixed" to lowercase.
	if ActDtmf != "DTMF" {
		t.Fatalf("ActDtmf = %q, want literal \"DTMF\"", ActDtmf)
	}
}
