package access

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mediahub/mediahub/internal/domain/dispute"
	"github.com/mediahub/mediahub/internal/domain/mediation"
	"github.com/mediahub/mediahub/internal/domain/party"
)

// Service answers "may actor X act on dispute Y" for the owner, party, and
// mediator roles. Every check is a pure lookup; lookup failures degrade to
// false so callers decide whether false means 403 or an empty result.
type Service struct {
	disputeRepo   dispute.Repository
	partyRepo     party.Repository
	mediationRepo mediation.Repository
	logger        zerolog.Logger
}

// NewService creates the access-control service.
func NewService(disputeRepo dispute.Repository, partyRepo party.Repository, mediationRepo mediation.Repository, logger zerolog.Logger) *Service {
	return &Service{
		disputeRepo:   disputeRepo,
		partyRepo:     partyRepo,
		mediationRepo: mediationRepo,
		logger:        logger.With().Str("service", "access").Logger(),
	}
}

// IsOwner reports whether userID filed the dispute.
func (s *Service) IsOwner(ctx context.Context, userID, disputeID uuid.UUID) bool {
	d, err := s.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		s.logger.Warn().Err(err).Str("dispute_id", disputeID.String()).Msg("owner lookup failed")
		return false
	}
	return d != nil && d.OwnerID == userID
}

// IsParty reports whether userID is an active party on the dispute.
func (s *Service) IsParty(ctx context.Context, userID, disputeID uuid.UUID) bool {
	p, err := s.partyRepo.GetActiveByUser(ctx, disputeID, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("dispute_id", disputeID.String()).Msg("party lookup failed")
		return false
	}
	return p != nil
}

// IsMediator reports whether userID mediates the dispute's open session.
func (s *Service) IsMediator(ctx context.Context, userID, disputeID uuid.UUID) bool {
	sess, err := s.mediationRepo.GetOpenSessionByDispute(ctx, disputeID)
	if err != nil {
		s.logger.Warn().Err(err).Str("dispute_id", disputeID.String()).Msg("mediator lookup failed")
		return false
	}
	return sess != nil && sess.MediatorID != nil && *sess.MediatorID == userID
}

// PartyByUser returns the active party row binding userID to the dispute, or
// nil when there is none.
func (s *Service) PartyByUser(ctx context.Context, disputeID, userID uuid.UUID) (*party.Party, error) {
	return s.partyRepo.GetActiveByUser(ctx, disputeID, userID)
}

// CanAct is the composition rule used by every manager: owner, active party,
// or mediator of the dispute's open session.
func (s *Service) CanAct(ctx context.Context, userID, disputeID uuid.UUID) bool {
	return s.IsOwner(ctx, userID, disputeID) ||
		s.IsParty(ctx, userID, disputeID) ||
		s.IsMediator(ctx, userID, disputeID)
}
