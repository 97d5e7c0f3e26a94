package party

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for dispute parties. Removal is a soft
// status change; rows are never deleted.
type Repository interface {
	Create(ctx context.Context, p *Party) error
	GetByID(ctx context.Context, partyID uuid.UUID) (*Party, error)
	GetByInviteCode(ctx context.Context, code string) (*Party, error)
	GetActiveByEmail(ctx context.Context, disputeID uuid.UUID, email string) (*Party, error)
	GetActiveByUser(ctx context.Context, disputeID uuid.UUID, userID uuid.UUID) (*Party, error)
	Update(ctx context.Context, p *Party) error
	ListByDispute(ctx context.Context, disputeID uuid.UUID) ([]*Party, error)
	ListDisputeIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	InviteCodeExists(ctx context.Context, code string) (bool, error)
}
