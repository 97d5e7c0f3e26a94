package party

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
)

type fixture struct {
	svc         *Service
	repo        *partymocks.MemoryRepository
	disputeRepo *disputemocks.MemoryRepository
}

func newFixture() *fixture {
	f := &fixture{
		repo:        partymocks.NewMemoryRepository(),
		disputeRepo: disputemocks.NewMemoryRepository(),
	}
	logger := zerolog.Nop()
	activitySvc := appActivity.NewService(activitymocks.NewMemoryRepository(), logger)
	accessSvc := appAccess.NewService(f.disputeRepo, f.repo, mediationmocks.NewMemoryRepository(), logger)
	f.svc = NewService(f.repo, f.disputeRepo, accessSvc, activitySvc, logger)
	return f
}

func (f *fixture) addDispute(t *testing.T, ownerID uuid.UUID, status dispute.Status) uuid.UUID {
	t.Helper()
	d := &dispute.Dispute{
		DisputeID: uuid.New(),
		OwnerID:   ownerID,
		Title:     "unpaid invoice",
		Status:    status,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := f.disputeRepo.Create(context.Background(), d); err != nil {
		t.Fatalf("create dispute: %v", err)
	}
	return d.DisputeID
}

func TestInviteOwnerOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := uuid.New()
	disputeID := f.addDispute(t, owner, dispute.StatusPending)

	_, err := f.svc.Invite(ctx, InviteInput{DisputeID: disputeID, ActorID: uuid.New(), Email: "bob@example.com"})
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("stranger invite err = %v, want FORBIDDEN", err)
	}

	p, err := f.svc.Invite(ctx, InviteInput{DisputeID: disputeID, ActorID: owner, Email: "Bob@Example.COM", Role: "respondent"})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if p.Email != "bob@example.com" {
		t.Fatalf("email = %q, want normalized lower-case", p.Email)
	}
	if p.Status != party.StatusInvited {
		t.Fatalf("status = %s, want INVITED", p.Status)
	}
	if p.InviteCode == "" {
		t.Fatal("invite code not assigned")
	}
}

func TestInviteDuplicateEmailConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := uuid.New()
	disputeID := f.addDispute(t, owner, dispute.StatusPending)

	if _, err := f.svc.Invite(ctx, InviteInput{DisputeID: disputeID, ActorID: owner, Email: "bob@example.com"}); err != nil {
		t.Fatalf("first invite: %v", err)
	}
	_, err := f.svc.Invite(ctx, InviteInput{DisputeID: disputeID, ActorID: owner, Email: "bob@example.com"})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("duplicate invite err = %v, want CONFLICT", err)
	}
}

func TestInviteTerminalDispute(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	disputeID := f.addDispute(t, owner, dispute.StatusClosed)

	_, err := f.svc.Invite(context.Background(), InviteInput{DisputeID: disputeID, ActorID: owner, Email: "bob@example.com"})
	if !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("err = %v, want INVALID_TRANSITION", err)
	}
}

func TestAcceptInviteBindsUserOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := uuid.New()
	disputeID := f.addDispute(t, owner, dispute.StatusPending)

	invited, err := f.svc.Invite(ctx, InviteInput{DisputeID: disputeID, ActorID: owner, Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}

	userID := uuid.New()
	accepted, err := f.svc.AcceptInvite(ctx, invited.InviteCode, userID)
	if err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}
	if accepted.Status != party.StatusActive {
		t.Fatalf("status = %s, want ACTIVE", accepted.Status)
	}
	if accepted.UserID == nil || *accepted.UserID != userID {
		t.Fatal("user not bound to party")
	}

	// Consumed codes cannot be replayed, even by the same user.
	if _, err := f.svc.AcceptInvite(ctx, invited.InviteCode, uuid.New()); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("replay err = %v, want CONFLICT", err)
	}
	stored, err := f.repo.GetByID(ctx, invited.PartyID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if *stored.UserID != userID {
		t.Fatal("replay changed the bound user")
	}
}

func TestAcceptInviteUnknownCode(t *testing.T) {
	f := newFixture()
	_, err := f.svc.AcceptInvite(context.Background(), "deadbeef", uuid.New())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestGetByCodePreview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := uuid.New()
	disputeID := f.addDispute(t, owner, dispute.StatusPending)

	invited, err := f.svc.Invite(ctx, InviteInput{DisputeID: disputeID, ActorID: owner, Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}

	got, err := f.svc.GetByCode(ctx, invited.InviteCode)
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if got.PartyID != invited.PartyID {
		t.Fatalf("PartyID = %s, want %s", got.PartyID, invited.PartyID)
	}

	if _, err := f.svc.GetByCode(ctx, "deadbeef"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("unknown code err = %v, want NOT_FOUND", err)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := uuid.New()
	disputeID := f.addDispute(t, owner, dispute.StatusPending)

	p, err := f.svc.Invite(ctx, InviteInput{DisputeID: disputeID, ActorID: owner, Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}

	if err := f.svc.Remove(ctx, p.PartyID, uuid.New()); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("stranger remove err = %v, want FORBIDDEN", err)
	}
	if err := f.svc.Remove(ctx, p.PartyID, owner); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := f.svc.Remove(ctx, p.PartyID, owner); err != nil {
		t.Fatalf("second Remove: %v", err)
	}

	stored, err := f.repo.GetByID(ctx, p.PartyID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != party.StatusRemoved {
		t.Fatalf("status = %s, want REMOVED", stored.Status)
	}
}

func TestRemovedEmailCanBeReinvited(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := uuid.New()
	disputeID := f.addDispute(t, owner, dispute.StatusPending)

	p, err := f.svc.Invite(ctx, InviteInput{DisputeID: disputeID, ActorID: owner, Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if err := f.svc.Remove(ctx, p.PartyID, owner); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := f.svc.Invite(ctx, InviteInput{DisputeID: disputeID, ActorID: owner, Email: "bob@example.com"}); err != nil {
		t.Fatalf("re-invite after removal: %v", err)
	}
}
