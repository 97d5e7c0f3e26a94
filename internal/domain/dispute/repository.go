package dispute

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence for disputes. Disputes are never physically
// deleted; archival happens through the CLOSED status.
type Repository interface {
	Create(ctx context.Context, d *Dispute) error
	GetByID(ctx context.Context, disputeID uuid.UUID) (*Dispute, error)
	Update(ctx context.Context, d *Dispute) error
	UpdateStatus(ctx context.Context, disputeID uuid.UUID, status Status, activeSessionID *uuid.UUID, resolvedAt *time.Time, updatedAt time.Time) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Dispute, error)
	ListByIDs(ctx context.Context, disputeIDs []uuid.UUID) ([]*Dispute, error)
}
