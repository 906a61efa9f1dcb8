package mocks

import (
	"context"
	"time"

	"character-game-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock GameEventRepository
type GameEventRepository struct {
	mock.Mock
}

func (m *GameEventRepository) Insert(ctx context.Context, event *models.GameEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
func (m *GameEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GameEvent, error) {
	args := m.Called(ctx, id)
	ev, _ := args.Get(0).(*models.GameEvent)
	return ev, args.Error(1)
}
func (m *GameEventRepository) ListUnresolved(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]*models.GameEvent, error) {
	args := m.Called(ctx, userID, familyMemberID)
	events, _ := args.Get(0).([]*models.GameEvent)
	return events, args.Error(1)
}
func (m *GameEventRepository) ListPendingAndActive(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]*models.GameEvent, error) {
	args := m.Called(ctx, userID, familyMemberID)
	events, _ := args.Get(0).([]*models.GameEvent)
	return events, args.Error(1)
}
func (m *GameEventRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.EventStatus, completedAt *time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, completedAt)
	return args.Bool(0), args.Error(1)
}
func (m *GameEventRepository) CancelByDomainRecord(ctx context.Context, domainRecordID string) (int64, error) {
	args := m.Called(ctx, domainRecordID)
	return args.Get(0).(int64), args.Error(1)
}

// Mock ProgressionRepository
type ProgressionRepository struct {
	mock.Mock
}

func (m *ProgressionRepository) Get(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) (*models.ProgressionState, error) {
	args := m.Called(ctx, userID, familyMemberID)
	state, _ := args.Get(0).(*models.ProgressionState)
	return state, args.Error(1)
}
func (m *ProgressionRepository) Upsert(ctx context.Context, state *models.ProgressionState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}
func (m *ProgressionRepository) ListScores(ctx context.Context, by models.LeaderboardType) ([]models.LeaderboardEntry, error) {
	args := m.Called(ctx, by)
	entries, _ := args.Get(0).([]models.LeaderboardEntry)
	return entries, args.Error(1)
}

// Mock IntimacyRepository
type IntimacyRepository struct {
	mock.Mock
}

func (m *IntimacyRepository) Get(ctx context.Context, userID uuid.UUID, familyMemberID uuid.UUID) (*models.IntimacyState, error) {
	args := m.Called(ctx, userID, familyMemberID)
	state, _ := args.Get(0).(*models.IntimacyState)
	return state, args.Error(1)
}
func (m *IntimacyRepository) Upsert(ctx context.Context, state *models.IntimacyState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// Mock DomainSourceRepository
type DomainSourceRepository struct {
	mock.Mock
}

func (m *DomainSourceRepository) DueMedicationDoses(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID, until time.Time) ([]models.MedicationDose, error) {
	args := m.Called(ctx, userID, familyMemberID, until)
	doses, _ := args.Get(0).([]models.MedicationDose)
	return doses, args.Error(1)
}
func (m *DomainSourceRepository) LatestFeedingRecords(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]models.FeedingRecord, error) {
	args := m.Called(ctx, userID, familyMemberID)
	records, _ := args.Get(0).([]models.FeedingRecord)
	return records, args.Error(1)
}
func (m *DomainSourceRepository) UpcomingCareSchedules(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID, now time.Time, reminderWindow time.Duration) ([]models.CareSchedule, error) {
	args := m.Called(ctx, userID, familyMemberID, now, reminderWindow)
	schedules, _ := args.Get(0).([]models.CareSchedule)
	return schedules, args.Error(1)
}
func (m *DomainSourceRepository) ActiveHealthAlerts(ctx context.Context, at time.Time) ([]models.HealthAlert, error) {
	args := m.Called(ctx, at)
	alerts, _ := args.Get(0).([]models.HealthAlert)
	return alerts, args.Error(1)
}
func (m *DomainSourceRepository) FamilyProfiles(ctx context.Context, userID uuid.UUID, familyMemberID *uuid.UUID) ([]models.FamilyProfile, error) {
	args := m.Called(ctx, userID, familyMemberID)
	profiles, _ := args.Get(0).([]models.FamilyProfile)
	return profiles, args.Error(1)
}

// Mock Cache
type Cache struct {
	mock.Mock
}

func (m *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	value, _ := args.Get(0).([]byte)
	return value, args.Error(1)
}
func (m *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}
func (m *Cache) Invalidate(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// Mock GameNotificationPublisher
type GameNotificationPublisher struct {
	mock.Mock
}

func (m *GameNotificationPublisher) PublishGameNotification(ctx context.Context, payload models.GameNotificationPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
