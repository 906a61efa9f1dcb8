package interfaces

import (
	"context"
	"time"

	"character-game-server/shared/models"

	"github.com/google/uuid"
)

// GameEventRepository is the persistence surface for game events.
// Events are never hard-deleted; terminal rows stay for history.
type GameEventRepository interface {
	// Insert materializes a candidate as a pending event. Returns
	// models.ErrDuplicateNaturalKey when an unresolved event with the same
	// natural key already exists (enforced by a partial unique index, so it
	// holds under concurrent scheduler runs too).
	Insert(ctx context.Context, event *models.GameEvent) error

	// GetByID returns the event or models.ErrEventNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.GameEvent, error)

	// ListUnresolved returns all non-terminal events for the scope,
	// regardless of scheduled time. Used by the scheduler for natural-key dedup.
	ListUnresolved(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]*models.GameEvent, error)

	// ListPendingAndActive returns events eligible for promotion or display,
	// ordered by priority weight descending then scheduled_time ascending.
	ListPendingAndActive(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]*models.GameEvent, error)

	// TransitionStatus performs the conditional update
	// "status = to WHERE id = $1 AND status = from". Returns false when the
	// guard did not match, i.e. the event is absent or in another state.
	// completedAt is set only for transitions into completed.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.EventStatus, completedAt *time.Time) (bool, error)

	// CancelByDomainRecord cancels every non-terminal event produced from the
	// deactivated domain record. Returns the number of cancelled rows.
	CancelByDomainRecord(ctx context.Context, domainRecordID string) (int64, error)
}
