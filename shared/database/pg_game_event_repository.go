package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"character-game-server/shared/interfaces"
	"character-game-server/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	insertGameEventQuery = `
        INSERT INTO game_events
            (id, user_id, family_member_id, event_type, event_data,
             scheduled_time, valid_until, priority, status, natural_key,
             domain_record_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `

	getGameEventByIDQuery = `
        SELECT id, user_id, family_member_id, event_type, event_data,
               scheduled_time, valid_until, priority, status, natural_key,
               domain_record_id, completed_at, created_at, updated_at
        FROM game_events
        WHERE id = $1
    `

	listUnresolvedQuery = `
        SELECT id, user_id, family_member_id, event_type, event_data,
               scheduled_time, valid_until, priority, status, natural_key,
               domain_record_id, completed_at, created_at, updated_at
        FROM game_events
        WHERE user_id = $1
          AND ($2::uuid IS NULL OR family_member_id = $2)
          AND status IN ('pending', 'active')
    `

	listPendingAndActiveQuery = `
        SELECT id, user_id, family_member_id, event_type, event_data,
               scheduled_time, valid_until, priority, status, natural_key,
               domain_record_id, completed_at, created_at, updated_at
        FROM game_events
        WHERE user_id = $1
          AND ($2::uuid IS NULL OR family_member_id = $2)
          AND status IN ('pending', 'active')
        ORDER BY
            CASE priority
                WHEN 'urgent' THEN 4
                WHEN 'high' THEN 3
                WHEN 'normal' THEN 2
                ELSE 1
            END DESC,
            scheduled_time ASC
    `

	// Условный переход: гвард по текущему статусу прямо в WHERE,
	// чтобы гонки решались на стороне БД одной атомарной записью.
	transitionStatusQuery = `
        UPDATE game_events
        SET status = $3, completed_at = COALESCE($4, completed_at), updated_at = NOW()
        WHERE id = $1 AND status = $2
    `

	// Отмена строго по равенству идентификатора исходной записи:
	// шаблонный поиск по натуральному ключу цеплял бы чужие события.
	cancelByDomainRecordQuery = `
        UPDATE game_events
        SET status = 'cancelled', updated_at = NOW()
        WHERE domain_record_id = $1
          AND status IN ('pending', 'active')
    `
)

// pgGameEventRepository реализует GameEventRepository поверх PostgreSQL.
type pgGameEventRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.GameEventRepository = (*pgGameEventRepository)(nil)

// NewPgGameEventRepository создает репозиторий игровых событий.
func NewPgGameEventRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.GameEventRepository {
	return &pgGameEventRepository{
		db:     db,
		logger: logger.Named("PgGameEventRepo"),
	}
}

// Insert материализует событие в статусе pending. Дубликат натурального
// ключа среди нетерминальных строк ловится частичным уникальным индексом.
func (r *pgGameEventRepository) Insert(ctx context.Context, event *models.GameEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Status == "" {
		event.Status = models.EventStatusPending
	}

	logFields := []zap.Field{
		zap.String("eventID", event.ID.String()),
		zap.String("naturalKey", event.NaturalKey),
	}
	r.logger.Debug("Inserting game event", logFields...)

	_, err := r.db.Exec(ctx, insertGameEventQuery,
		event.ID, event.UserID, event.FamilyMemberID, event.EventType, event.EventData,
		event.ScheduledTime, event.ValidUntil, event.Priority, event.Status, event.NaturalKey,
		event.DomainRecordID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			r.logger.Debug("Duplicate natural key, event already scheduled", logFields...)
			return models.ErrDuplicateNaturalKey
		}
		r.logger.Error("Failed to insert game event", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to insert game event: %w", err)
	}

	return nil
}

// GetByID возвращает событие по идентификатору.
func (r *pgGameEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GameEvent, error) {
	var event models.GameEvent
	err := pgxscan.Get(ctx, r.db, &event, getGameEventByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrEventNotFound
		}
		r.logger.Error("Failed to get game event", zap.String("eventID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get game event: %w", err)
	}
	return &event, nil
}

// ListUnresolved возвращает все нетерминальные события области.
func (r *pgGameEventRepository) ListUnresolved(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]*models.GameEvent, error) {
	var events []*models.GameEvent
	err := pgxscan.Select(ctx, r.db, &events, listUnresolvedQuery, userID, familyMemberID)
	if err != nil {
		r.logger.Error("Failed to list unresolved events", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list unresolved events: %w", err)
	}
	return events, nil
}

// ListPendingAndActive возвращает события для показа/повышения,
// отсортированные по приоритету и времени.
func (r *pgGameEventRepository) ListPendingAndActive(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]*models.GameEvent, error) {
	var events []*models.GameEvent
	err := pgxscan.Select(ctx, r.db, &events, listPendingAndActiveQuery, userID, familyMemberID)
	if err != nil {
		r.logger.Error("Failed to list pending/active events", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list pending/active events: %w", err)
	}
	return events, nil
}

// TransitionStatus выполняет условный переход статуса. false без ошибки
// означает, что гвард не совпал: событие отсутствует или уже в другом статусе.
func (r *pgGameEventRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.EventStatus, completedAt *time.Time) (bool, error) {
	commandTag, err := r.db.Exec(ctx, transitionStatusQuery, id, from, to, completedAt)
	if err != nil {
		r.logger.Error("Failed to transition event status",
			zap.String("eventID", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(err))
		return false, fmt.Errorf("failed to transition event status: %w", err)
	}
	return commandTag.RowsAffected() > 0, nil
}

// CancelByDomainRecord отменяет все нетерминальные события деактивированной
// доменной записи (совпадение domain_record_id).
func (r *pgGameEventRepository) CancelByDomainRecord(ctx context.Context, domainRecordID string) (int64, error) {
	commandTag, err := r.db.Exec(ctx, cancelByDomainRecordQuery, domainRecordID)
	if err != nil {
		r.logger.Error("Failed to cancel events by domain record",
			zap.String("domainRecordID", domainRecordID), zap.Error(err))
		return 0, fmt.Errorf("failed to cancel events by domain record: %w", err)
	}
	return commandTag.RowsAffected(), nil
}
