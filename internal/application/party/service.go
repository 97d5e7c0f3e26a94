package party

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAccess "github.com/mediahub/mediahub/internal/application/access"
	appActivity "github.com/mediahub/mediahub/internal/application/activity"
	"github.com/mediahub/mediahub/internal/domain/activity"
	"github.com/mediahub/mediahub/internal/domain/apperr"
	"github.com/mediahub/mediahub/internal/domain/dispute"
	"github.com/mediahub/mediahub/internal/domain/party"
	"github.com/mediahub/mediahub/internal/domain/user"
)

// codeAttempts bounds the invitation-code collision retry loop. Codes carry
// 128 bits of entropy; the loop exists to uphold the global uniqueness
// invariant against the store rather than assume it.
const codeAttempts = 5

// Service manages dispute parties: invitations, acceptance, and removal.
type Service struct {
	repo        party.Repository
	disputeRepo dispute.Repository
	accessSvc   *appAccess.Service
	activitySvc *appActivity.Service
	logger      zerolog.Logger
}

// NewService creates a party registry service.
func NewService(repo party.Repository, disputeRepo dispute.Repository, accessSvc *appAccess.Service, activitySvc *appActivity.Service, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		disputeRepo: disputeRepo,
		accessSvc:   accessSvc,
		activitySvc: activitySvc,
		logger:      logger.With().Str("service", "party").Logger(),
	}
}

// InviteInput invites a counterparty by email.
type InviteInput struct {
	DisputeID uuid.UUID
	ActorID   uuid.UUID
	Email     string
	Role      string
}

// Invite creates an INVITED party with a globally unique invitation code.
// Only the dispute owner may invite.
func (s *Service) Invite(ctx context.Context, in InviteInput) (*party.Party, error) {
	email := party.NormalizeEmail(in.Email)
	if err := user.ValidateEmail(email); err != nil {
		return nil, apperr.Invalid("%s", err.Error())
	}

	d, err := s.disputeRepo.GetByID(ctx, in.DisputeID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("dispute not found: %s", in.DisputeID)
	}
	if !s.accessSvc.IsOwner(ctx, in.ActorID, in.DisputeID) {
		return nil, apperr.Forbidden("only the owner may invite parties to dispute %s", in.DisputeID)
	}
	if d.IsTerminal() {
		return nil, apperr.InvalidTransition("dispute %s is %s", d.DisputeID, d.Status)
	}

	existing, err := s.repo.GetActiveByEmail(ctx, in.DisputeID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("%s is already a party of dispute %s", email, in.DisputeID)
	}

	code, err := s.uniqueInviteCode(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &party.Party{
		PartyID:    uuid.New(),
		DisputeID:  in.DisputeID,
		Email:      email,
		Role:       party.ParseRole(in.Role),
		InviteCode: code,
		Status:     party.StatusInvited,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	if err := s.activitySvc.Record(ctx, in.DisputeID, &in.ActorID, activity.TypePartyInvited, map[string]interface{}{
		"partyId": p.PartyID,
		"email":   p.Email,
		"role":    p.Role,
	}); err != nil {
		return nil, err
	}

	s.logger.Info().Str("party_id", p.PartyID.String()).Str("dispute_id", in.DisputeID.String()).Msg("party invited")
	return p, nil
}

// AcceptInvite binds a user to the invited party row and activates it. A
// consumed code cannot be replayed; the second call returns Conflict and the
// bound user is unchanged.
func (s *Service) AcceptInvite(ctx context.Context, code string, userID uuid.UUID) (*party.Party, error) {
	if userID == uuid.Nil {
		return nil, apperr.Invalid("user is required")
	}
	p, err := s.repo.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("unknown invitation code")
	}
	if p.Status != party.StatusInvited {
		return nil, apperr.Conflict("invitation already consumed")
	}

	p.UserID = &userID
	p.Status = party.StatusActive
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if err := s.activitySvc.Record(ctx, p.DisputeID, &userID, activity.TypePartyJoined, map[string]interface{}{
		"partyId": p.PartyID,
		"email":   p.Email,
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// Remove soft-removes a party. Only the dispute owner may remove.
func (s *Service) Remove(ctx context.Context, partyID, actorID uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, partyID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("party not found: %s", partyID)
	}
	if !s.accessSvc.IsOwner(ctx, actorID, p.DisputeID) {
		return apperr.Forbidden("only the owner may remove parties from dispute %s", p.DisputeID)
	}
	if p.Status == party.StatusRemoved {
		return nil
	}

	p.Status = party.StatusRemoved
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}

	return s.activitySvc.Record(ctx, p.DisputeID, &actorID, activity.TypePartyRemoved, map[string]interface{}{
		"partyId": p.PartyID,
		"email":   p.Email,
	})
}

// ListByDispute returns all party rows of a dispute after an access check.
func (s *Service) ListByDispute(ctx context.Context, disputeID, actorID uuid.UUID) ([]*party.Party, error) {
	d, err := s.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("dispute not found: %s", disputeID)
	}
	if !s.accessSvc.CanAct(ctx, actorID, disputeID) {
		return nil, apperr.Forbidden("not a participant of dispute %s", disputeID)
	}
	return s.repo.ListByDispute(ctx, disputeID)
}

// GetByCode looks up a pending invitation so an invitee can preview it.
func (s *Service) GetByCode(ctx context.Context, code string) (*party.Party, error) {
	p, err := s.repo.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("unknown invitation code")
	}
	return p, nil
}

func (s *Service) uniqueInviteCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := party.NewInviteCode()
		if err != nil {
			return "", err
		}
		exists, err := s.repo.InviteCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", apperr.Conflict("could not generate a unique invitation code")
}
