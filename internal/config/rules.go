package config

import (
	"fmt"
	"log"
	"time"

	"character-game-server/shared/models"

	"github.com/ilyakaznacheev/cleanenv"
)

// Reward - награда за завершение события одного приоритета.
type Reward struct {
	Experience int `yaml:"experience"`
	Points     int `yaml:"points"`
}

// RewardOverride - точечная награда для пары (тип события, приоритет).
// Перекрывает таблицу по приоритету.
type RewardOverride struct {
	EventType  models.EventType     `yaml:"event_type"`
	Priority   models.EventPriority `yaml:"priority"`
	Experience int                  `yaml:"experience"`
	Points     int                  `yaml:"points"`
}

// BadgeUnlock - коллекционная награда, открываемая на конкретном уровне.
type BadgeUnlock struct {
	Level int    `yaml:"level"`
	Badge string `yaml:"badge"`
}

// IntimacyRules - дельты и пороги шкалы близости.
type IntimacyRules struct {
	HealthHelpDelta             int   `yaml:"health_help_delta" env:"INTIMACY_HEALTH_HELP_DELTA" env-default:"10"`
	ChallengeParticipationDelta int   `yaml:"challenge_participation_delta" env:"INTIMACY_CHALLENGE_DELTA" env-default:"5"`
	DailyInteractionDelta       int   `yaml:"daily_interaction_delta" env:"INTIMACY_DAILY_DELTA" env-default:"2"`
	MaxScore                    int   `yaml:"max_score" env:"INTIMACY_MAX_SCORE" env-default:"100"`
	LevelThresholds             []int `yaml:"level_thresholds"` // Нижние границы уровней, по возрастанию
}

// GameRules - все настраиваемые таблицы игрового ядра. Точные значения -
// предмет договоренности с продуктом, поэтому они вынесены в файл, а не
// зашиты по коду.
type GameRules struct {
	// Награды по приоритету события
	RewardUrgent Reward `yaml:"reward_urgent"`
	RewardHigh   Reward `yaml:"reward_high"`
	RewardNormal Reward `yaml:"reward_normal"`
	RewardLow    Reward `yaml:"reward_low"`

	// Точечные награды по (тип, приоритет), перекрывают таблицу выше
	RewardOverrides []RewardOverride `yaml:"reward_overrides"`

	// Бонус за сам факт повышения уровня
	LevelUpBonusPoints int `yaml:"level_up_bonus_points" env:"LEVEL_UP_BONUS_POINTS" env-default:"50"`

	// Открытие коллекционных наград по уровням
	BadgeUnlocks []BadgeUnlock `yaml:"badge_unlocks"`

	// Окна планировщика
	MedicationGraceMinutes int `yaml:"medication_grace_minutes" env:"MEDICATION_GRACE_MINUTES" env-default:"30"`
	ReminderWindowDays     int `yaml:"reminder_window_days" env:"REMINDER_WINDOW_DAYS" env-default:"14"`

	// Окна валидности активных событий, в часах (0 = без истечения)
	ValidityHoursMedication int `yaml:"validity_hours_medication" env:"VALIDITY_HOURS_MEDICATION" env-default:"6"`
	ValidityHoursFeeding    int `yaml:"validity_hours_feeding" env:"VALIDITY_HOURS_FEEDING" env-default:"4"`
	ValidityHoursCheckup    int `yaml:"validity_hours_checkup" env:"VALIDITY_HOURS_CHECKUP" env-default:"48"`
	ValidityHoursAlert      int `yaml:"validity_hours_alert" env:"VALIDITY_HOURS_ALERT" env-default:"72"`
	ValidityHoursLifecycle  int `yaml:"validity_hours_lifecycle" env:"VALIDITY_HOURS_LIFECYCLE" env-default:"24"`

	Intimacy IntimacyRules `yaml:"intimacy"`

	// TTL кэшей, в секундах. Список событий не кэшируется: его чтение
	// выполняет ленивые переходы статусов, кэш бы их откладывал.
	CacheTTLProgressionSeconds int `yaml:"cache_ttl_progression_seconds" env:"CACHE_TTL_PROGRESSION" env-default:"30"`
	CacheTTLLeaderboardSeconds int `yaml:"cache_ttl_leaderboard_seconds" env:"CACHE_TTL_LEADERBOARD" env-default:"60"`
}

// RewardFor возвращает награду за завершение события. Ключ таблицы -
// пара (тип, приоритет): сначала проверяются точечные переопределения,
// затем общая таблица по приоритету.
func (r *GameRules) RewardFor(eventType models.EventType, priority models.EventPriority) Reward {
	for _, o := range r.RewardOverrides {
		if o.EventType == eventType && o.Priority == priority {
			return Reward{Experience: o.Experience, Points: o.Points}
		}
	}
	switch priority {
	case models.PriorityUrgent:
		return r.RewardUrgent
	case models.PriorityHigh:
		return r.RewardHigh
	case models.PriorityNormal:
		return r.RewardNormal
	case models.PriorityLow:
		return r.RewardLow
	}
	return Reward{}
}

// ValidityWindow возвращает окно валидности для типа события.
func (r *GameRules) ValidityWindow(eventType models.EventType) time.Duration {
	hours := 0
	switch eventType {
	case models.EventTypeMedication:
		hours = r.ValidityHoursMedication
	case models.EventTypeBabyFeeding:
		hours = r.ValidityHoursFeeding
	case models.EventTypeHealthCheckup, models.EventTypeVaccination:
		hours = r.ValidityHoursCheckup
	case models.EventTypeKCDCAlert:
		hours = r.ValidityHoursAlert
	case models.EventTypeLifecycleEvent:
		hours = r.ValidityHoursLifecycle
	}
	return time.Duration(hours) * time.Hour
}

// DefaultGameRules возвращает правила со значениями по умолчанию.
// Используется в тестах и как fallback, когда файла правил нет.
func DefaultGameRules() *GameRules {
	return &GameRules{
		RewardUrgent:       Reward{Experience: 30, Points: 15},
		RewardHigh:         Reward{Experience: 20, Points: 10},
		RewardNormal:       Reward{Experience: 10, Points: 5},
		RewardLow:          Reward{Experience: 5, Points: 2},
		LevelUpBonusPoints: 50,
		BadgeUnlocks: []BadgeUnlock{
			{Level: 2, Badge: "badge_sprout"},
			{Level: 5, Badge: "badge_caretaker"},
			{Level: 10, Badge: "badge_guardian"},
			{Level: 20, Badge: "badge_family_hero"},
		},
		MedicationGraceMinutes:  30,
		ReminderWindowDays:      14,
		ValidityHoursMedication: 6,
		ValidityHoursFeeding:    4,
		ValidityHoursCheckup:    48,
		ValidityHoursAlert:      72,
		ValidityHoursLifecycle:  24,
		Intimacy: IntimacyRules{
			HealthHelpDelta:             10,
			ChallengeParticipationDelta: 5,
			DailyInteractionDelta:       2,
			MaxScore:                    100,
			LevelThresholds:             []int{0, 20, 40, 60, 80},
		},
		CacheTTLProgressionSeconds: 30,
		CacheTTLLeaderboardSeconds: 60,
	}
}

// LoadGameRules читает файл правил; при его отсутствии берет значения
// по умолчанию с возможным переопределением из переменных окружения.
func LoadGameRules(rulesPath string) (*GameRules, error) {
	rules := DefaultGameRules()

	if err := cleanenv.ReadConfig(rulesPath, rules); err != nil {
		log.Printf("Предупреждение: не удалось прочитать файл правил '%s': %v. Используются значения по умолчанию + env.", rulesPath, err)
		if err := cleanenv.ReadEnv(rules); err != nil {
			return nil, fmt.Errorf("ошибка загрузки игровых правил: %w", err)
		}
	}

	if rules.Intimacy.MaxScore <= 0 {
		return nil, fmt.Errorf("некорректные правила: intimacy max_score должен быть > 0")
	}
	if len(rules.Intimacy.LevelThresholds) == 0 {
		return nil, fmt.Errorf("некорректные правила: пустые пороги уровней близости")
	}

	return rules, nil
}
