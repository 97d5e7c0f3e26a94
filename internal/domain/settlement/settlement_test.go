package settlement

import "testing"

func TestProposalCanTransition(t *testing.T) {
	allowed := []struct{ from, to ProposalStatus }{
		{ProposalStatusDraft, ProposalStatusProposed},
		{ProposalStatusProposed, ProposalStatusAccepted},
		{ProposalStatusProposed, ProposalStatusRejected},
		{ProposalStatusDraft, ProposalStatusWithdrawn},
		{ProposalStatusProposed, ProposalStatusWithdrawn},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to ProposalStatus }{
		{ProposalStatusDraft, ProposalStatusAccepted},
		{ProposalStatusDraft, ProposalStatusRejected},
		{ProposalStatusAccepted, ProposalStatusWithdrawn},
		{ProposalStatusRejected, ProposalStatusProposed},
		{ProposalStatusWithdrawn, ProposalStatusProposed},
		{ProposalStatusAccepted, ProposalStatusRejected},
		{ProposalStatusProposed, ProposalStatusDraft},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestProposalIsTerminal(t *testing.T) {
	for _, st := range []ProposalStatus{ProposalStatusDraft, ProposalStatusProposed} {
		p := Proposal{Status: st}
		if p.IsTerminal() {
			t.Fatalf("expected %s to be non-terminal", st)
		}
	}
	for _, st := range []ProposalStatus{ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusWithdrawn} {
		p := Proposal{Status: st}
		if !p.IsTerminal() {
			t.Fatalf("expected %s to be terminal", st)
		}
	}
}

func TestNewVerificationCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code, err := NewVerificationCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != 12 {
			t.Fatalf("expected 12-char code, got %q", code)
		}
		if _, ok := seen[code]; ok {
			t.Fatalf("duplicate code generated: %q", code)
		}
		seen[code] = struct{}{}
	}
}
