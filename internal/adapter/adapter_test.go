package adapter

import (
	"context"
	"testing"
	"time"

	"character-game-server/internal/config"
	"character-game-server/shared/interfaces/mocks"
	"character-game-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func TestMedicationAdapter(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()
	rules := config.DefaultGameRules()

	t.Run("Overdue dose beyond grace window is urgent", func(t *testing.T) {
		sources := new(mocks.DomainSourceRepository)
		a := NewMedicationAdapter(sources, rules, zap.NewNop())
		a.now = fixedClock

		doseTime := testNow.Add(-time.Hour) // за пределами 30-минутного грейса
		sources.On("DueMedicationDoses", ctx, userID, (*uuid.UUID)(nil), testNow).Return([]models.MedicationDose{
			{PrescriptionID: "rx-1", UserID: userID, MedicationName: "타이레놀", DoseTime: doseTime, Active: true},
		}, nil).Once()

		candidates, err := a.GenerateCandidates(ctx, userID, nil)
		assert.NoError(t, err)
		assert.Len(t, candidates, 1)
		assert.Equal(t, models.PriorityUrgent, candidates[0].Priority)
		assert.Equal(t, models.EventTypeMedication, candidates[0].EventType)
		assert.Equal(t, doseTime, candidates[0].ScheduledTime)
		assert.NotEmpty(t, candidates[0].NaturalKey)
		assert.Equal(t, "rx-1", candidates[0].DomainRecordID)
		sources.AssertExpectations(t)
	})

	t.Run("Dose inside grace window is high", func(t *testing.T) {
		sources := new(mocks.DomainSourceRepository)
		a := NewMedicationAdapter(sources, rules, zap.NewNop())
		a.now = fixedClock

		doseTime := testNow.Add(-10 * time.Minute)
		sources.On("DueMedicationDoses", ctx, userID, (*uuid.UUID)(nil), testNow).Return([]models.MedicationDose{
			{PrescriptionID: "rx-1", UserID: userID, MedicationName: "타이레놀", DoseTime: doseTime, Active: true},
		}, nil).Once()

		candidates, err := a.GenerateCandidates(ctx, userID, nil)
		assert.NoError(t, err)
		assert.Len(t, candidates, 1)
		assert.Equal(t, models.PriorityHigh, candidates[0].Priority)
	})

	t.Run("Inactive prescriptions are skipped", func(t *testing.T) {
		sources := new(mocks.DomainSourceRepository)
		a := NewMedicationAdapter(sources, rules, zap.NewNop())
		a.now = fixedClock

		sources.On("DueMedicationDoses", ctx, userID, (*uuid.UUID)(nil), testNow).Return([]models.MedicationDose{
			{PrescriptionID: "rx-1", UserID: userID, MedicationName: "타이레놀", DoseTime: testNow, Active: false},
		}, nil).Once()

		candidates, err := a.GenerateCandidates(ctx, userID, nil)
		assert.NoError(t, err)
		assert.Empty(t, candidates)
	})
}

func TestFeedingAdapter(t *testing.T) {
	userID := uuid.New()
	babyID := uuid.New()
	ctx := context.Background()
	rules := config.DefaultGameRules()

	t.Run("Candidate scheduled at last feeding plus cycle", func(t *testing.T) {
		sources := new(mocks.DomainSourceRepository)
		a := NewFeedingAdapter(sources, rules, zap.NewNop())
		a.now = fixedClock

		last := testNow.Add(-2 * time.Hour)
		sources.On("LatestFeedingRecords", ctx, userID, (*uuid.UUID)(nil)).Return([]models.FeedingRecord{
			{RecordID: "feed-1", UserID: userID, FamilyMemberID: babyID, FamilyMemberName: "지우", LastFeedingTime: last, CycleHours: 3},
		}, nil).Once()

		candidates, err := a.GenerateCandidates(ctx, userID, nil)
		assert.NoError(t, err)
		assert.Len(t, candidates, 1)
		assert.Equal(t, last.Add(3*time.Hour), candidates[0].ScheduledTime)
		assert.Equal(t, models.PriorityNormal, candidates[0].Priority) // еще не время
		assert.Equal(t, babyID, *candidates[0].FamilyMemberID)
		assert.Equal(t, "feed-1", candidates[0].DomainRecordID)
	})

	t.Run("Overdue feeding is high priority", func(t *testing.T) {
		sources := new(mocks.DomainSourceRepository)
		a := NewFeedingAdapter(sources, rules, zap.NewNop())
		a.now = fixedClock

		last := testNow.Add(-5 * time.Hour)
		sources.On("LatestFeedingRecords", ctx, userID, (*uuid.UUID)(nil)).Return([]models.FeedingRecord{
			{RecordID: "feed-1", UserID: userID, FamilyMemberID: babyID, FamilyMemberName: "지우", LastFeedingTime: last, CycleHours: 3},
		}, nil).Once()

		candidates, err := a.GenerateCandidates(ctx, userID, nil)
		assert.NoError(t, err)
		assert.Len(t, candidates, 1)
		assert.Equal(t, models.PriorityHigh, candidates[0].Priority)
	})

	t.Run("Same last feeding always yields the same natural key", func(t *testing.T) {
		sources := new(mocks.DomainSourceRepository)
		a := NewFeedingAdapter(sources, rules, zap.NewNop())
		a.now = fixedClock

		last := testNow.Add(-2 * time.Hour)
		records := []models.FeedingRecord{
			{RecordID: "feed-1", UserID: userID, FamilyMemberID: babyID, FamilyMemberName: "지우", LastFeedingTime: last, CycleHours: 3},
		}
		sources.On("LatestFeedingRecords", ctx, userID, (*uuid.UUID)(nil)).Return(records, nil).Twice()

		first, err := a.GenerateCandidates(ctx, userID, nil)
		assert.NoError(t, err)
		second, err := a.GenerateCandidates(ctx, userID, nil)
		assert.NoError(t, err)
		assert.Equal(t, first[0].NaturalKey, second[0].NaturalKey)
	})
}

func TestCareScheduleAdapter(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()
	rules := config.DefaultGameRules()
	window := time.Duration(rules.ReminderWindowDays) * 24 * time.Hour

	newAdapter := func(sources *mocks.DomainSourceRepository) *CareScheduleAdapter {
		a := NewCareScheduleAdapter(sources, rules, zap.NewNop())
		a.now = fixedClock
		return a
	}

	cases := []struct {
		name     string
		dueDate  time.Time
		kind     models.CareScheduleKind
		wantPrio models.EventPriority
		wantType models.EventType
	}{
		{"overdue checkup is urgent", testNow.Add(-48 * time.Hour), models.CareScheduleCheckup, models.PriorityUrgent, models.EventTypeHealthCheckup},
		{"due in two days is high", testNow.Add(2 * 24 * time.Hour), models.CareScheduleVaccination, models.PriorityHigh, models.EventTypeVaccination},
		{"due in ten days is normal", testNow.Add(10 * 24 * time.Hour), models.CareScheduleVaccination, models.PriorityNormal, models.EventTypeVaccination},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sources := new(mocks.DomainSourceRepository)
			a := newAdapter(sources)

			sources.On("UpcomingCareSchedules", ctx, userID, (*uuid.UUID)(nil), testNow, window).Return([]models.CareSchedule{
				{ScheduleID: "sched-1", UserID: userID, Kind: tc.kind, Title: "정기 검진", DueDate: tc.dueDate},
			}, nil).Once()

			candidates, err := a.GenerateCandidates(ctx, userID, nil)
			assert.NoError(t, err)
			assert.Len(t, candidates, 1)
			assert.Equal(t, tc.wantPrio, candidates[0].Priority)
			assert.Equal(t, tc.wantType, candidates[0].EventType)
			assert.Equal(t, "sched-1", candidates[0].DomainRecordID)
		})
	}
}

func TestKCDCAlertAdapter(t *testing.T) {
	userID := uuid.New()
	childID := uuid.New()
	ctx := context.Background()
	rules := config.DefaultGameRules()

	issued := testNow.Add(-6 * time.Hour)

	t.Run("Severity maps to priority and profiles filter by age and region", func(t *testing.T) {
		sources := new(mocks.DomainSourceRepository)
		a := NewKCDCAlertAdapter(sources, rules, zap.NewNop())
		a.now = fixedClock

		sources.On("ActiveHealthAlerts", ctx, testNow).Return([]models.HealthAlert{
			{AlertID: "al-1", Title: "독감 유행", Severity: models.SeverityCritical, Region: "seoul", MinAge: 0, MaxAge: 6, IssuedAt: issued},
			{AlertID: "al-2", Title: "미세먼지 주의", Severity: models.SeverityWarning, Region: "busan", IssuedAt: issued},
			{AlertID: "al-3", Title: "예방 수칙 안내", Severity: models.SeverityInfo, Region: "", IssuedAt: issued},
		}, nil).Once()
		sources.On("FamilyProfiles", ctx, userID, (*uuid.UUID)(nil)).Return([]models.FamilyProfile{
			{UserID: userID, FamilyMemberID: &childID, DisplayName: "지우", Age: 3, Region: "seoul"},
		}, nil).Once()

		candidates, err := a.GenerateCandidates(ctx, userID, nil)
		assert.NoError(t, err)
		// al-2 отфильтровано по региону; al-1 и al-3 проходят
		assert.Len(t, candidates, 2)

		byAlert := map[string]models.EventPriority{}
		for _, c := range candidates {
			payload, err := models.DecodePayload(models.EventTypeKCDCAlert, c.EventData)
			assert.NoError(t, err)
			byAlert[payload.Alert.AlertID] = c.Priority
			assert.Equal(t, payload.Alert.AlertID, c.DomainRecordID)
		}
		assert.Equal(t, models.PriorityUrgent, byAlert["al-1"])
		assert.Equal(t, models.PriorityNormal, byAlert["al-3"])
	})

	t.Run("No profile lookup when there are no alerts", func(t *testing.T) {
		sources := new(mocks.DomainSourceRepository)
		a := NewKCDCAlertAdapter(sources, rules, zap.NewNop())
		a.now = fixedClock

		sources.On("ActiveHealthAlerts", ctx, testNow).Return([]models.HealthAlert{}, nil).Once()

		candidates, err := a.GenerateCandidates(ctx, userID, nil)
		assert.NoError(t, err)
		assert.Empty(t, candidates)
		sources.AssertNotCalled(t, "FamilyProfiles", mock.Anything, mock.Anything, mock.Anything)
	})
}
