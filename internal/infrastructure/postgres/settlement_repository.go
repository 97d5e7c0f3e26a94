package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediahub/mediahub/internal/domain/settlement"
)

// SettlementRepository implements settlement.Repository.
type SettlementRepository struct {
	pool *pgxpool.Pool
}

func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{pool: pool}
}

func (r *SettlementRepository) CreateProposal(ctx context.Context, p *settlement.Proposal) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO settlement_proposals
		(proposal_id, dispute_id, author_id, terms, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, p.ProposalID, p.DisputeID, p.AuthorID, p.Terms, p.Status, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *SettlementRepository) GetProposalByID(ctx context.Context, proposalID uuid.UUID) (*settlement.Proposal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, proposal_id, dispute_id, author_id, terms, status, created_at, updated_at
		FROM settlement_proposals WHERE proposal_id=$1
	`, proposalID)
	return scanProposal(row)
}

func (r *SettlementRepository) UpdateProposal(ctx context.Context, p *settlement.Proposal) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE settlement_proposals
		SET terms=$1, status=$2, updated_at=$3
		WHERE proposal_id=$4
	`, p.Terms, p.Status, p.UpdatedAt, p.ProposalID)
	return err
}

func (r *SettlementRepository) ListProposalsByDispute(ctx context.Context, disputeID uuid.UUID) ([]*settlement.Proposal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, proposal_id, dispute_id, author_id, terms, status, created_at, updated_at
		FROM settlement_proposals WHERE dispute_id=$1
		ORDER BY created_at DESC
	`, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var proposals []*settlement.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

func (r *SettlementRepository) CreateSignature(ctx context.Context, sig *settlement.Signature) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO settlement_signatures
		(signature_id, proposal_id, signer_id, verification_code, signed_at, verified_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, sig.SignatureID, sig.ProposalID, sig.SignerID, sig.VerificationCode, sig.SignedAt, sig.VerifiedAt)
	return err
}

func (r *SettlementRepository) GetSignatureByID(ctx context.Context, signatureID uuid.UUID) (*settlement.Signature, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, signature_id, proposal_id, signer_id, verification_code, signed_at, verified_at
		FROM settlement_signatures WHERE signature_id=$1
	`, signatureID)
	return scanSignature(row)
}

func (r *SettlementRepository) GetSignatureBySigner(ctx context.Context, proposalID uuid.UUID, signerID uuid.UUID) (*settlement.Signature, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, signature_id, proposal_id, signer_id, verification_code, signed_at, verified_at
		FROM settlement_signatures WHERE proposal_id=$1 AND signer_id=$2
	`, proposalID, signerID)
	return scanSignature(row)
}

func (r *SettlementRepository) MarkSignatureVerified(ctx context.Context, signatureID uuid.UUID, verifiedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE settlement_signatures SET verified_at=$1 WHERE signature_id=$2 AND verified_at IS NULL
	`, verifiedAt, signatureID)
	return err
}

func (r *SettlementRepository) ListSignaturesByProposal(ctx context.Context, proposalID uuid.UUID) ([]*settlement.Signature, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, signature_id, proposal_id, signer_id, verification_code, signed_at, verified_at
		FROM settlement_signatures WHERE proposal_id=$1
		ORDER BY signed_at ASC
	`, proposalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var signatures []*settlement.Signature
	for rows.Next() {
		sig, err := scanSignature(rows)
		if err != nil {
			return nil, err
		}
		signatures = append(signatures, sig)
	}
	return signatures, rows.Err()
}

func scanProposal(row pgx.Row) (*settlement.Proposal, error) {
	var p settlement.Proposal
	if err := row.Scan(&p.ID, &p.ProposalID, &p.DisputeID, &p.AuthorID, &p.Terms, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func scanSignature(row pgx.Row) (*settlement.Signature, error) {
	var s settlement.Signature
	var verifiedAt *time.Time
	if err := row.Scan(&s.ID, &s.SignatureID, &s.ProposalID, &s.SignerID, &s.VerificationCode, &s.SignedAt, &verifiedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.VerifiedAt = verifiedAt
	return &s, nil
}
