package dispute

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAccess "github.com/mediahub/mediahub/internal/application/access"
	appActivity "github.com/mediahub/mediahub/internal/application/activity"
	"github.com/mediahub/mediahub/internal/domain/activity"
	"github.com/mediahub/mediahub/internal/domain/apperr"
	"github.com/mediahub/mediahub/internal/domain/dispute"
	"github.com/mediahub/mediahub/internal/domain/party"
)

// Service owns the dispute entity and its lifecycle state machine. Status
// moves PENDING → ACTIVE → MEDIATION → RESOLVED, with CLOSED reachable from
// any non-resolved state. Mediation transitions are driven by the session
// coordinator through StartMediation/CompleteMediation, never by field edits.
type Service struct {
	repo        dispute.Repository
	partyRepo   party.Repository
	accessSvc   *appAccess.Service
	activitySvc *appActivity.Service
	logger      zerolog.Logger
}

// NewService creates a dispute lifecycle service.
func NewService(repo dispute.Repository, partyRepo party.Repository, accessSvc *appAccess.Service, activitySvc *appActivity.Service, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		partyRepo:   partyRepo,
		accessSvc:   accessSvc,
		activitySvc: activitySvc,
		logger:      logger.With().Str("service", "dispute").Logger(),
	}
}

// CreateInput files a new dispute.
type CreateInput struct {
	OwnerID            uuid.UUID
	Title              string
	Description        string
	PartiesDescription string
	Type               string
	Documents          []string
}

// Create files a dispute in PENDING state on behalf of its owner.
func (s *Service) Create(ctx context.Context, in CreateInput) (*dispute.Dispute, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Invalid("title is required")
	}
	if in.OwnerID == uuid.Nil {
		return nil, apperr.Invalid("owner is required")
	}

	now := time.Now().UTC()
	d := &dispute.Dispute{
		DisputeID:          uuid.New(),
		OwnerID:            in.OwnerID,
		Title:              title,
		Description:        strings.TrimSpace(in.Description),
		PartiesDescription: strings.TrimSpace(in.PartiesDescription),
		Type:               dispute.ParseType(in.Type),
		Status:             dispute.StatusPending,
		Documents:          in.Documents,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	if err := s.activitySvc.Record(ctx, d.DisputeID, &in.OwnerID, activity.TypeDisputeCreated, map[string]interface{}{
		"title": d.Title,
		"type":  d.Type,
	}); err != nil {
		return nil, err
	}

	s.logger.Info().Str("dispute_id", d.DisputeID.String()).Msg("dispute created")
	return d, nil
}

// Get returns a dispute after verifying the actor may see it.
func (s *Service) Get(ctx context.Context, disputeID, actorID uuid.UUID) (*dispute.Dispute, error) {
	d, err := s.repo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("dispute not found: %s", disputeID)
	}
	if !s.accessSvc.CanAct(ctx, actorID, disputeID) {
		return nil, apperr.Forbidden("not a participant of dispute %s", disputeID)
	}
	return d, nil
}

// UpdateInput patches mutable dispute fields. Nil pointers leave fields
// untouched. Status accepts only the PENDING → ACTIVE step; every other
// transition has a dedicated operation.
type UpdateInput struct {
	DisputeID          uuid.UUID
	ActorID            uuid.UUID
	Title              *string
	Description        *string
	PartiesDescription *string
	Documents          []string
	AIAnalysis         []byte
	Status             *string
}

// Update applies field edits by the owner, an active party, or the assigned
// mediator.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*dispute.Dispute, error) {
	d, err := s.repo.GetByID(ctx, in.DisputeID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("dispute not found: %s", in.DisputeID)
	}
	if !s.accessSvc.CanAct(ctx, in.ActorID, in.DisputeID) {
		return nil, apperr.Forbidden("not a participant of dispute %s", in.DisputeID)
	}
	if d.IsTerminal() {
		return nil, apperr.InvalidTransition("dispute %s is %s", d.DisputeID, d.Status)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.Invalid("title cannot be empty")
		}
		d.Title = title
	}
	if in.Description != nil {
		d.Description = strings.TrimSpace(*in.Description)
	}
	if in.PartiesDescription != nil {
		d.PartiesDescription = strings.TrimSpace(*in.PartiesDescription)
	}
	if in.Documents != nil {
		d.Documents = in.Documents
	}
	if len(in.AIAnalysis) > 0 {
		d.AIAnalysis = in.AIAnalysis
	}
	if in.Status != nil {
		next := dispute.Status(strings.ToUpper(strings.TrimSpace(*in.Status)))
		if next != dispute.StatusActive || !dispute.CanTransition(d.Status, next) {
			return nil, apperr.InvalidTransition("cannot move dispute from %s to %s", d.Status, next)
		}
		d.Status = next
	}

	d.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	if err := s.activitySvc.Record(ctx, d.DisputeID, &in.ActorID, activity.TypeDisputeUpdated, map[string]interface{}{
		"status": d.Status,
	}); err != nil {
		return nil, err
	}
	return d, nil
}

// Close archives a dispute. Only the owner may close, from any non-resolved
// state.
func (s *Service) Close(ctx context.Context, disputeID, actorID uuid.UUID) (*dispute.Dispute, error) {
	d, err := s.repo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("dispute not found: %s", disputeID)
	}
	if !s.accessSvc.IsOwner(ctx, actorID, disputeID) {
		return nil, apperr.Forbidden("only the owner may close dispute %s", disputeID)
	}
	if !dispute.CanTransition(d.Status, dispute.StatusClosed) {
		return nil, apperr.InvalidTransition("cannot close dispute in %s", d.Status)
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, disputeID, dispute.StatusClosed, d.ActiveSessionID, nil, now); err != nil {
		return nil, err
	}
	d.Status = dispute.StatusClosed
	d.UpdatedAt = now

	if err := s.activitySvc.Record(ctx, disputeID, &actorID, activity.TypeDisputeClosed, nil); err != nil {
		return nil, err
	}
	return d, nil
}

// StartMediation marks the dispute as under mediation and stores the session
// reference. Called by the session coordinator, which has already verified
// ownership; the transition itself is still validated here.
func (s *Service) StartMediation(ctx context.Context, disputeID, sessionID uuid.UUID) (*dispute.Dispute, error) {
	d, err := s.repo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("dispute not found: %s", disputeID)
	}
	if d.Status != dispute.StatusMediation && !dispute.CanTransition(d.Status, dispute.StatusMediation) {
		return nil, apperr.InvalidTransition("cannot start mediation on dispute in %s", d.Status)
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, disputeID, dispute.StatusMediation, &sessionID, nil, now); err != nil {
		return nil, err
	}
	d.Status = dispute.StatusMediation
	d.ActiveSessionID = &sessionID
	d.UpdatedAt = now
	return d, nil
}

// CompleteMediation resolves the dispute when a session closes with a
// summary. Only a dispute still in MEDIATION is resolved; anything else is an
// idempotent no-op so a completed session cannot resolve twice or regress a
// closed dispute.
func (s *Service) CompleteMediation(ctx context.Context, disputeID uuid.UUID) (*dispute.Dispute, error) {
	d, err := s.repo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("dispute not found: %s", disputeID)
	}
	if d.Status != dispute.StatusMediation {
		return d, nil
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, disputeID, dispute.StatusResolved, d.ActiveSessionID, &now, now); err != nil {
		return nil, err
	}
	d.Status = dispute.StatusResolved
	d.ResolvedAt = &now
	d.UpdatedAt = now

	if err := s.activitySvc.Record(ctx, disputeID, nil, activity.TypeDisputeResolved, nil); err != nil {
		return nil, err
	}
	s.logger.Info().Str("dispute_id", disputeID.String()).Msg("dispute resolved")
	return d, nil
}

// ListByOwner returns disputes filed by the user.
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*dispute.Dispute, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByOwner(ctx, ownerID, limit, offset)
}

// ListForUser returns disputes the user owns plus those they joined as a
// party.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*dispute.Dispute, error) {
	owned, err := s.ListByOwner(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	memberIDs, err := s.partyRepo.ListDisputeIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(owned))
	for _, d := range owned {
		seen[d.DisputeID] = struct{}{}
	}
	missing := make([]uuid.UUID, 0, len(memberIDs))
	for _, id := range memberIDs {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return owned, nil
	}
	joined, err := s.repo.ListByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	return append(owned, joined...), nil
}
