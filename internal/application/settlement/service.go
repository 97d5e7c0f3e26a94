package settlement

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
	"github.com/mediahub/mediahub/internal/domain/settlement"
)

// Service manages settlement proposals and their signatures.
type Service struct {
	repo        settlement.Repository
	disputeRepo dispute.Repository
	accessSvc   *appAccess.Service
	activitySvc *appActivity.Service
	logger      zerolog.Logger
}

// NewService creates a settlement service.
func NewService(
	repo settlement.Repository,
	disputeRepo dispute.Repository,
	accessSvc *appAccess.Service,
	activitySvc *appActivity.Service,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:        repo,
		disputeRepo: disputeRepo,
		accessSvc:   accessSvc,
		activitySvc: activitySvc,
		logger:      logger.With().Str("service", "settlement").Logger(),
	}
}

// CreateProposal drafts a proposal on a dispute that is not closed. Any
// dispute participant may author one; resolved disputes still accept
// proposals so the mediated outcome can be put into terms.
func (s *Service) CreateProposal(ctx context.Context, disputeID, authorID uuid.UUID, terms string) (*settlement.Proposal, error) {
	terms = strings.TrimSpace(terms)
	if terms == "" {
		return nil, apperr.Invalid("terms are required")
	}

	d, err := s.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("dispute not found: %s", disputeID)
	}
	// A resolved dispute still takes proposals: the settlement formalizes
	// the mediated outcome. Only a closed dispute is sealed.
	if d.Status == dispute.StatusClosed {
		return nil, apperr.InvalidTransition("cannot propose a settlement on a %s dispute", d.Status)
	}
	if !s.accessSvc.CanAct(ctx, authorID, disputeID) {
		return nil, apperr.Forbidden("not a participant of dispute %s", disputeID)
	}

	now := time.Now().UTC()
	p := &settlement.Proposal{
		ProposalID: uuid.New(),
		DisputeID:  disputeID,
		AuthorID:   authorID,
		Terms:      terms,
		Status:     settlement.ProposalStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateProposal(ctx, p); err != nil {
		return nil, err
	}

	if err := s.activitySvc.Record(ctx, disputeID, &authorID, activity.TypeProposalCreated, map[string]interface{}{
		"proposalId": p.ProposalID,
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateTerms rewrites the terms of a draft. Only the author may edit, and
// only while the proposal is still a draft.
func (s *Service) UpdateTerms(ctx context.Context, proposalID, actorID uuid.UUID, terms string) (*settlement.Proposal, error) {
	terms = strings.TrimSpace(terms)
	if terms == "" {
		return nil, apperr.Invalid("terms are required")
	}

	p, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != actorID {
		return nil, apperr.Forbidden("only the author may edit proposal %s", proposalID)
	}
	if p.Status != settlement.ProposalStatusDraft {
		return nil, apperr.InvalidTransition("cannot edit a %s proposal", p.Status)
	}

	p.Terms = terms
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateProposal(ctx, p); err != nil {
		return nil, err
	}

	if err := s.activitySvc.Record(ctx, p.DisputeID, &actorID, activity.TypeProposalUpdated, map[string]interface{}{
		"proposalId": p.ProposalID,
		"action":     "terms_updated",
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// Submit moves a draft to PROPOSED, opening it for the counterparty's
// response. Only the author may submit.
func (s *Service) Submit(ctx context.Context, proposalID, actorID uuid.UUID) (*settlement.Proposal, error) {
	p, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != actorID {
		return nil, apperr.Forbidden("only the author may submit proposal %s", proposalID)
	}
	return s.transition(ctx, p, actorID, settlement.ProposalStatusProposed, "submitted")
}

// Respond records the counterparty's decision on a PROPOSED proposal. The
// author cannot respond to their own proposal.
func (s *Service) Respond(ctx context.Context, proposalID, actorID uuid.UUID, accept bool) (*settlement.Proposal, error) {
	p, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !s.accessSvc.CanAct(ctx, actorID, p.DisputeID) {
		return nil, apperr.Forbidden("not a participant of dispute %s", p.DisputeID)
	}
	if p.AuthorID == actorID {
		return nil, apperr.Forbidden("the author cannot respond to their own proposal")
	}

	to := settlement.ProposalStatusRejected
	action := "rejected"
	if accept {
		to = settlement.ProposalStatusAccepted
		action = "accepted"
	}
	return s.transition(ctx, p, actorID, to, action)
}

// Withdraw retracts a proposal before it has been answered. Only the author
// may withdraw.
func (s *Service) Withdraw(ctx context.Context, proposalID, actorID uuid.UUID) (*settlement.Proposal, error) {
	p, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != actorID {
		return nil, apperr.Forbidden("only the author may withdraw proposal %s", proposalID)
	}
	return s.transition(ctx, p, actorID, settlement.ProposalStatusWithdrawn, "withdrawn")
}

// Get returns one proposal after an access check.
func (s *Service) Get(ctx context.Context, proposalID, actorID uuid.UUID) (*settlement.Proposal, error) {
	p, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !s.accessSvc.CanAct(ctx, actorID, p.DisputeID) {
		return nil, apperr.Forbidden("not a participant of dispute %s", p.DisputeID)
	}
	return p, nil
}

// ListByDispute returns all proposals attached to a dispute.
func (s *Service) ListByDispute(ctx context.Context, disputeID, actorID uuid.UUID) ([]*settlement.Proposal, error) {
	if !s.accessSvc.CanAct(ctx, actorID, disputeID) {
		return nil, apperr.Forbidden("not a participant of dispute %s", disputeID)
	}
	return s.repo.ListProposalsByDispute(ctx, disputeID)
}

// CreateSignature attaches a pending signature to an ACCEPTED proposal. One
// signature per signer per proposal; a second attempt is a conflict.
func (s *Service) CreateSignature(ctx context.Context, proposalID, signerID uuid.UUID) (*settlement.Signature, error) {
	p, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !s.accessSvc.CanAct(ctx, signerID, p.DisputeID) {
		return nil, apperr.Forbidden("not a participant of dispute %s", p.DisputeID)
	}
	if p.Status != settlement.ProposalStatusAccepted {
		return nil, apperr.InvalidTransition("only an accepted proposal can be signed, got %s", p.Status)
	}

	existing, err := s.repo.GetSignatureBySigner(ctx, proposalID, signerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("signer %s already signed proposal %s", signerID, proposalID)
	}

	code, err := settlement.NewVerificationCode()
	if err != nil {
		return nil, err
	}
	sig := &settlement.Signature{
		SignatureID:      uuid.New(),
		ProposalID:       proposalID,
		SignerID:         signerID,
		VerificationCode: code,
		SignedAt:         time.Now().UTC(),
	}
	if err := s.repo.CreateSignature(ctx, sig); err != nil {
		return nil, err
	}

	if err := s.activitySvc.Record(ctx, p.DisputeID, &signerID, activity.TypeSignatureCreated, map[string]interface{}{
		"proposalId":  p.ProposalID,
		"signatureId": sig.SignatureID,
	}); err != nil {
		return nil, err
	}
	return sig, nil
}

// VerifySignature confirms a signature with its verification code. Only the
// signer may verify. A wrong code changes nothing; verifying an already
// verified signature is a no-op that reports the stored state.
func (s *Service) VerifySignature(ctx context.Context, signatureID, actorID uuid.UUID, code string) (*settlement.Signature, error) {
	sig, err := s.repo.GetSignatureByID(ctx, signatureID)
	if err != nil {
		return nil, err
	}
	if sig == nil {
		return nil, apperr.NotFound("signature not found: %s", signatureID)
	}
	if sig.SignerID != actorID {
		return nil, apperr.Forbidden("only the signer may verify signature %s", signatureID)
	}
	if sig.IsVerified() {
		return sig, nil
	}
	if code != sig.VerificationCode {
		return nil, apperr.Invalid("verification code does not match")
	}

	now := time.Now().UTC()
	if err := s.repo.MarkSignatureVerified(ctx, signatureID, now); err != nil {
		return nil, err
	}
	sig.VerifiedAt = &now

	p, err := s.repo.GetProposalByID(ctx, sig.ProposalID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		if err := s.activitySvc.Record(ctx, p.DisputeID, &actorID, activity.TypeSignatureVerified, map[string]interface{}{
			"proposalId":  sig.ProposalID,
			"signatureId": sig.SignatureID,
		}); err != nil {
			return nil, err
		}
	}
	return sig, nil
}

// ListSignatures returns all signatures attached to a proposal.
func (s *Service) ListSignatures(ctx context.Context, proposalID, actorID uuid.UUID) ([]*settlement.Signature, error) {
	p, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !s.accessSvc.CanAct(ctx, actorID, p.DisputeID) {
		return nil, apperr.Forbidden("not a participant of dispute %s", p.DisputeID)
	}
	return s.repo.ListSignaturesByProposal(ctx, proposalID)
}

func (s *Service) getProposal(ctx context.Context, proposalID uuid.UUID) (*settlement.Proposal, error) {
	p, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("proposal not found: %s", proposalID)
	}
	return p, nil
}

func (s *Service) transition(ctx context.Context, p *settlement.Proposal, actorID uuid.UUID, to settlement.ProposalStatus, action string) (*settlement.Proposal, error) {
	if !settlement.CanTransition(p.Status, to) {
		return nil, apperr.InvalidTransition("proposal cannot move from %s to %s", p.Status, to)
	}
	p.Status = to
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateProposal(ctx, p); err != nil {
		return nil, err
	}

	if err := s.activitySvc.Record(ctx, p.DisputeID, &actorID, activity.TypeProposalUpdated, map[string]interface{}{
		"proposalId": p.ProposalID,
		"action":     action,
	}); err != nil {
		return nil, err
	}
	s.logger.Info().Str("proposal_id", p.ProposalID.String()).Str("status", string(to)).Msg("proposal transitioned")
	return p, nil
}
