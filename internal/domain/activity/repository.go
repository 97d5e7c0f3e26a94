package activity

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for the append-only activity log. There is
// no update or delete; Create is the only write.
type Repository interface {
	Create(ctx context.Context, a *Activity) error
	ListByDispute(ctx context.Context, disputeID uuid.UUID, limit, offset int) ([]*Activity, error)
	ListAllByDispute(ctx context.Context, disputeID uuid.UUID) ([]*Activity, error)
}
