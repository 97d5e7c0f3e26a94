package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediahub/mediahub/internal/domain/party"
)

// PartyRepository implements party.Repository.
type PartyRepository struct {
	pool *pgxpool.Pool
}

func NewPartyRepository(pool *pgxpool.Pool) *PartyRepository {
	return &PartyRepository{pool: pool}
}

func (r *PartyRepository) Create(ctx context.Context, p *party.Party) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO parties
		(party_id, dispute_id, user_id, email, role, invite_code, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, p.PartyID, p.DisputeID, p.UserID, p.Email, p.Role, p.InviteCode, p.Status, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *PartyRepository) GetByID(ctx context.Context, partyID uuid.UUID) (*party.Party, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, party_id, dispute_id, user_id, email, role, invite_code, status, created_at, updated_at
		FROM parties WHERE party_id=$1
	`, partyID)
	return scanParty(row)
}

func (r *PartyRepository) GetByInviteCode(ctx context.Context, code string) (*party.Party, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, party_id, dispute_id, user_id, email, role, invite_code, status, created_at, updated_at
		FROM parties WHERE invite_code=$1
	`, code)
	return scanParty(row)
}

func (r *PartyRepository) GetActiveByEmail(ctx context.Context, disputeID uuid.UUID, email string) (*party.Party, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, party_id, dispute_id, user_id, email, role, invite_code, status, created_at, updated_at
		FROM parties WHERE dispute_id=$1 AND email=$2 AND status<>'REMOVED'
		ORDER BY created_at DESC LIMIT 1
	`, disputeID, email)
	return scanParty(row)
}

func (r *PartyRepository) GetActiveByUser(ctx context.Context, disputeID uuid.UUID, userID uuid.UUID) (*party.Party, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, party_id, dispute_id, user_id, email, role, invite_code, status, created_at, updated_at
		FROM parties WHERE dispute_id=$1 AND user_id=$2 AND status='ACTIVE'
		ORDER BY created_at DESC LIMIT 1
	`, disputeID, userID)
	return scanParty(row)
}

func (r *PartyRepository) Update(ctx context.Context, p *party.Party) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE parties
		SET user_id=$1, email=$2, role=$3, status=$4, updated_at=$5
		WHERE party_id=$6
	`, p.UserID, p.Email, p.Role, p.Status, p.UpdatedAt, p.PartyID)
	return err
}

func (r *PartyRepository) ListByDispute(ctx context.Context, disputeID uuid.UUID) ([]*party.Party, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, party_id, dispute_id, user_id, email, role, invite_code, status, created_at, updated_at
		FROM parties WHERE dispute_id=$1
		ORDER BY created_at ASC
	`, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var parties []*party.Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

func (r *PartyRepository) ListDisputeIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT dispute_id FROM parties WHERE user_id=$1 AND status='ACTIVE'
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PartyRepository) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM parties WHERE invite_code=$1)`, code)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanParty(row pgx.Row) (*party.Party, error) {
	var p party.Party
	var userID *uuid.UUID
	if err := row.Scan(&p.ID, &p.PartyID, &p.DisputeID, &userID, &p.Email, &p.Role, &p.InviteCode, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.UserID = userID
	return &p, nil
}
