package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAccess "github.com/mediahub/mediahub/internal/application/access"
	appActivity "github.com/mediahub/mediahub/internal/application/activity"
	activitymocks "github.com/mediahub/mediahub/internal/domain/activity/mocks"
	"github.com/mediahub/mediahub/internal/domain/apperr"
	"github.com/mediahub/mediahub/internal/domain/dispute"
	disputemocks "github.com/mediahub/mediahub/internal/domain/dispute/mocks"
	mediationmocks "github.com/mediahub/mediahub/internal/domain/mediation/mocks"
	"github.com/mediahub/mediahub/internal/domain/party"
	partymocks "github.com/mediahub/mediahub/internal/domain/party/mocks"
	"github.com/mediahub/mediahub/internal/domain/settlement"
	settlementmocks "github.com/mediahub/mediahub/internal/domain/settlement/mocks"
)

type fixture struct {
	svc         *Service
	repo        *settlementmocks.MemoryRepository
	disputeRepo *disputemocks.MemoryRepository
	partyRepo   *partymocks.MemoryRepository

	owner     uuid.UUID
	member    uuid.UUID
	disputeID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:        settlementmocks.NewMemoryRepository(),
		disputeRepo: disputemocks.NewMemoryRepository(),
		partyRepo:   partymocks.NewMemoryRepository(),
		owner:       uuid.New(),
		member:      uuid.New(),
	}
	logger := zerolog.Nop()
	activitySvc := appActivity.NewService(activitymocks.NewMemoryRepository(), logger)
	accessSvc := appAccess.NewService(f.disputeRepo, f.partyRepo, mediationmocks.NewMemoryRepository(), logger)
	f.svc = NewService(f.repo, f.disputeRepo, accessSvc, activitySvc, logger)

	ctx := context.Background()
	now := time.Now().UTC()
	d := &dispute.Dispute{
		DisputeID: uuid.New(),
		OwnerID:   f.owner,
		Title:     "boundary fence",
		Status:    dispute.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.disputeRepo.Create(ctx, d); err != nil {
		t.Fatalf("create dispute: %v", err)
	}
	f.disputeID = d.DisputeID

	memberID := f.member
	if err := f.partyRepo.Create(ctx, &party.Party{
		PartyID:   uuid.New(),
		DisputeID: d.DisputeID,
		UserID:    &memberID,
		Email:     "member@example.com",
		Status:    party.StatusActive,
	}); err != nil {
		t.Fatalf("create party: %v", err)
	}
	return f
}

func (f *fixture) acceptedProposal(t *testing.T) *settlement.Proposal {
	t.Helper()
	ctx := context.Background()
	p, err := f.svc.CreateProposal(ctx, f.disputeID, f.owner, "split the fence cost 50/50")
	if err != nil {
		t.Fatalf("CreateProposal: %v", err)
	}
	if _, err := f.svc.Submit(ctx, p.ProposalID, f.owner); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	p, err = f.svc.Respond(ctx, p.ProposalID, f.member, true)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	return p
}

func TestProposalLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreateProposal(ctx, f.disputeID, f.owner, "  split the fence cost 50/50  ")
	if err != nil {
		t.Fatalf("CreateProposal: %v", err)
	}
	if p.Status != settlement.ProposalStatusDraft {
		t.Fatalf("status = %s, want DRAFT", p.Status)
	}
	if p.Terms != "split the fence cost 50/50" {
		t.Fatalf("terms = %q, want trimmed", p.Terms)
	}

	if _, err := f.svc.UpdateTerms(ctx, p.ProposalID, f.owner, "owner pays 60%"); err != nil {
		t.Fatalf("UpdateTerms: %v", err)
	}

	submitted, err := f.svc.Submit(ctx, p.ProposalID, f.owner)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if submitted.Status != settlement.ProposalStatusProposed {
		t.Fatalf("status = %s, want PROPOSED", submitted.Status)
	}

	// The proposal is frozen once submitted.
	if _, err := f.svc.UpdateTerms(ctx, p.ProposalID, f.owner, "new terms"); !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("edit after submit err = %v, want INVALID_TRANSITION", err)
	}

	accepted, err := f.svc.Respond(ctx, p.ProposalID, f.member, true)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if accepted.Status != settlement.ProposalStatusAccepted {
		t.Fatalf("status = %s, want ACCEPTED", accepted.Status)
	}

	if _, err := f.svc.Respond(ctx, p.ProposalID, f.member, false); !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("respond twice err = %v, want INVALID_TRANSITION", err)
	}
}

func TestProposalRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("terms required", func(t *testing.T) {
		if _, err := f.svc.CreateProposal(ctx, f.disputeID, f.owner, "  "); !apperr.IsKind(err, apperr.KindInvalid) {
			t.Fatalf("err = %v, want INVALID_PARAM", err)
		}
	})

	t.Run("stranger cannot propose", func(t *testing.T) {
		if _, err := f.svc.CreateProposal(ctx, f.disputeID, uuid.New(), "terms"); !apperr.IsKind(err, apperr.KindForbidden) {
			t.Fatalf("err = %v, want FORBIDDEN", err)
		}
	})

	t.Run("author cannot respond", func(t *testing.T) {
		p, err := f.svc.CreateProposal(ctx, f.disputeID, f.owner, "terms")
		if err != nil {
			t.Fatalf("CreateProposal: %v", err)
		}
		if _, err := f.svc.Submit(ctx, p.ProposalID, f.owner); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if _, err := f.svc.Respond(ctx, p.ProposalID, f.owner, true); !apperr.IsKind(err, apperr.KindForbidden) {
			t.Fatalf("err = %v, want FORBIDDEN", err)
		}
	})

	t.Run("only author submits", func(t *testing.T) {
		p, err := f.svc.CreateProposal(ctx, f.disputeID, f.owner, "terms")
		if err != nil {
			t.Fatalf("CreateProposal: %v", err)
		}
		if _, err := f.svc.Submit(ctx, p.ProposalID, f.member); !apperr.IsKind(err, apperr.KindForbidden) {
			t.Fatalf("err = %v, want FORBIDDEN", err)
		}
	})

	t.Run("withdraw before response", func(t *testing.T) {
		p, err := f.svc.CreateProposal(ctx, f.disputeID, f.owner, "terms")
		if err != nil {
			t.Fatalf("CreateProposal: %v", err)
		}
		w, err := f.svc.Withdraw(ctx, p.ProposalID, f.owner)
		if err != nil {
			t.Fatalf("Withdraw: %v", err)
		}
		if w.Status != settlement.ProposalStatusWithdrawn {
			t.Fatalf("status = %s, want WITHDRAWN", w.Status)
		}
	})
}

func TestCreateProposalOnResolvedDispute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := f.disputeRepo.UpdateStatus(ctx, f.disputeID, dispute.StatusResolved, nil, &now, now); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	// Resolution does not seal the dispute; the settlement that formalizes
	// the mediated outcome comes after it.
	p, err := f.svc.CreateProposal(ctx, f.disputeID, f.owner, "builder finishes within 30 days")
	if err != nil {
		t.Fatalf("CreateProposal on resolved dispute: %v", err)
	}
	if p.Status != settlement.ProposalStatusDraft {
		t.Fatalf("status = %s, want DRAFT", p.Status)
	}
}

func TestCreateProposalOnClosedDispute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := f.disputeRepo.UpdateStatus(ctx, f.disputeID, dispute.StatusClosed, nil, nil, now); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	_, err := f.svc.CreateProposal(ctx, f.disputeID, f.owner, "terms")
	if !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("err = %v, want INVALID_TRANSITION", err)
	}
}

func TestSignatureOnlyOnAcceptedProposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreateProposal(ctx, f.disputeID, f.owner, "terms")
	if err != nil {
		t.Fatalf("CreateProposal: %v", err)
	}
	if _, err := f.svc.CreateSignature(ctx, p.ProposalID, f.member); !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("sign draft err = %v, want INVALID_TRANSITION", err)
	}
}

func TestSignatureLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.acceptedProposal(t)

	sig, err := f.svc.CreateSignature(ctx, p.ProposalID, f.member)
	if err != nil {
		t.Fatalf("CreateSignature: %v", err)
	}
	if len(sig.VerificationCode) != 12 {
		t.Fatalf("code = %q, want 12-char code", sig.VerificationCode)
	}
	if sig.IsVerified() {
		t.Fatal("new signature must start unverified")
	}

	if _, err := f.svc.CreateSignature(ctx, p.ProposalID, f.member); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("double sign err = %v, want CONFLICT", err)
	}

	// Wrong code mutates nothing.
	if _, err := f.svc.VerifySignature(ctx, sig.SignatureID, f.member, "000000000000"); !apperr.IsKind(err, apperr.KindInvalid) {
		t.Fatalf("wrong code err = %v, want INVALID_PARAM", err)
	}
	stored, err := f.repo.GetSignatureByID(ctx, sig.SignatureID)
	if err != nil {
		t.Fatalf("GetSignatureByID: %v", err)
	}
	if stored.IsVerified() {
		t.Fatal("wrong code verified the signature")
	}

	// Only the signer may verify, even with the right code.
	if _, err := f.svc.VerifySignature(ctx, sig.SignatureID, f.owner, sig.VerificationCode); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("non-signer err = %v, want FORBIDDEN", err)
	}

	verified, err := f.svc.VerifySignature(ctx, sig.SignatureID, f.member, sig.VerificationCode)
	if err != nil {
		t.Fatalf("VerifySignature: %v", err)
	}
	if !verified.IsVerified() {
		t.Fatal("signature not verified")
	}
	firstVerifiedAt := *verified.VerifiedAt

	// Replay is a no-op that reports the stored state.
	again, err := f.svc.VerifySignature(ctx, sig.SignatureID, f.member, "ignored")
	if err != nil {
		t.Fatalf("VerifySignature replay: %v", err)
	}
	if again.VerifiedAt == nil || !again.VerifiedAt.Equal(firstVerifiedAt) {
		t.Fatal("replay changed VerifiedAt")
	}
}

func TestBothPartiesSign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.acceptedProposal(t)

	if _, err := f.svc.CreateSignature(ctx, p.ProposalID, f.member); err != nil {
		t.Fatalf("member sign: %v", err)
	}
	if _, err := f.svc.CreateSignature(ctx, p.ProposalID, f.owner); err != nil {
		t.Fatalf("owner sign: %v", err)
	}

	sigs, err := f.svc.ListSignatures(ctx, p.ProposalID, f.owner)
	if err != nil {
		t.Fatalf("ListSignatures: %v", err)
	}
	if len(sigs) != 2 {
		t.Fatalf("len(sigs) = %d, want 2", len(sigs))
	}
}
