package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediahub/mediahub/internal/domain/mediation"
)

// MediationRepository implements mediation.Repository.
type MediationRepository struct {
	pool *pgxpool.Pool
}

func NewMediationRepository(pool *pgxpool.Pool) *MediationRepository {
	return &MediationRepository{pool: pool}
}

func (r *MediationRepository) CreateSession(ctx context.Context, s *mediation.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO mediation_sessions
		(session_id, dispute_id, code, mediator_id, ai_assistance, status, summary, recommendations, scheduled_at, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, s.SessionID, s.DisputeID, s.Code, s.MediatorID, s.AIAssistance, s.Status, s.Summary, s.Recommendations, s.ScheduledAt, s.CompletedAt)
	return err
}

func (r *MediationRepository) GetSessionByID(ctx context.Context, sessionID uuid.UUID) (*mediation.Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, session_id, dispute_id, code, mediator_id, ai_assistance, status, summary, recommendations, scheduled_at, completed_at
		FROM mediation_sessions WHERE session_id=$1
	`, sessionID)
	return scanMediationSession(row)
}

func (r *MediationRepository) GetOpenSessionByDispute(ctx context.Context, disputeID uuid.UUID) (*mediation.Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, session_id, dispute_id, code, mediator_id, ai_assistance, status, summary, recommendations, scheduled_at, completed_at
		FROM mediation_sessions WHERE dispute_id=$1 AND status<>'COMPLETED'
		ORDER BY scheduled_at DESC LIMIT 1
	`, disputeID)
	return scanMediationSession(row)
}

func (r *MediationRepository) UpdateSessionStatus(ctx context.Context, sessionID uuid.UUID, status mediation.SessionStatus) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE mediation_sessions SET status=$1 WHERE session_id=$2
	`, status, sessionID)
	return err
}

func (r *MediationRepository) CompleteSession(ctx context.Context, sessionID uuid.UUID, summary, recommendations string, completedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE mediation_sessions
		SET status='COMPLETED', summary=$1, recommendations=$2, completed_at=$3
		WHERE session_id=$4
	`, summary, nullIfEmpty(recommendations), completedAt, sessionID)
	return err
}

func (r *MediationRepository) ListSessionsByDispute(ctx context.Context, disputeID uuid.UUID) ([]*mediation.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, dispute_id, code, mediator_id, ai_assistance, status, summary, recommendations, scheduled_at, completed_at
		FROM mediation_sessions WHERE dispute_id=$1
		ORDER BY scheduled_at DESC
	`, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []*mediation.Session
	for rows.Next() {
		s, err := scanMediationSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *MediationRepository) CreateMessage(ctx context.Context, m *mediation.Message) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO mediation_messages
		(message_id, session_id, user_id, role, content, sentiment, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, m.MessageID, m.SessionID, m.UserID, m.Role, m.Content, m.Sentiment, m.CreatedAt)
	return err
}

func (r *MediationRepository) ListMessages(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]*mediation.Message, error) {
	query := `
		SELECT id, message_id, session_id, user_id, role, content, sentiment, created_at
		FROM mediation_messages WHERE session_id=$1
		ORDER BY id ASC
	`
	args := []interface{}{sessionID}
	if limit > 0 {
		query += " LIMIT $2 OFFSET $3"
		args = append(args, limit, offset)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []*mediation.Message
	for rows.Next() {
		m, err := scanMediationMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func scanMediationSession(row pgx.Row) (*mediation.Session, error) {
	var s mediation.Session
	var mediatorID *uuid.UUID
	var summary, recommendations *string
	var completedAt *time.Time
	if err := row.Scan(&s.ID, &s.SessionID, &s.DisputeID, &s.Code, &mediatorID, &s.AIAssistance, &s.Status, &summary, &recommendations, &s.ScheduledAt, &completedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.MediatorID = mediatorID
	s.Summary = summary
	s.Recommendations = recommendations
	s.CompletedAt = completedAt
	return &s, nil
}

func scanMediationMessage(row pgx.Row) (*mediation.Message, error) {
	var m mediation.Message
	var userID *uuid.UUID
	var sentiment *string
	if err := row.Scan(&m.ID, &m.MessageID, &m.SessionID, &userID, &m.Role, &m.Content, &sentiment, &m.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	m.UserID = userID
	m.Sentiment = sentiment
	return &m, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
