package handler

import (
	"net/http"
	"strconv"

	"character-game-server/internal/config"
	"character-game-server/internal/scheduler"
	"character-game-server/internal/service"
	"character-game-server/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GameHandler обрабатывает HTTP запросы игрового ядра.
type GameHandler struct {
	eventService       *service.GameEventService
	progressionService *service.ProgressionService
	intimacyService    *service.IntimacyService
	leaderboardService *service.LeaderboardService
	scheduler          *scheduler.Scheduler // может быть nil (планирование выключено)
	jwtSecret          string
	interServiceSecret string
	logger             *zap.Logger
}

// NewGameHandler создает новый GameHandler.
func NewGameHandler(
	eventService *service.GameEventService,
	progressionService *service.ProgressionService,
	intimacyService *service.IntimacyService,
	leaderboardService *service.LeaderboardService,
	cfg *config.Config,
	logger *zap.Logger,
) *GameHandler {
	return &GameHandler{
		eventService:       eventService,
		progressionService: progressionService,
		intimacyService:    intimacyService,
		leaderboardService: leaderboardService,
		jwtSecret:          cfg.JWTSecret,
		interServiceSecret: cfg.InterServiceSecret,
		logger:             logger.Named("GameHandler"),
	}
}

// WithScheduler включает проход планирования на чтении списка событий.
// Проход идемпотентен, поэтому его безопасно запускать на каждом запросе.
func (h *GameHandler) WithScheduler(s *scheduler.Scheduler) *GameHandler {
	h.scheduler = s
	return h
}

// refreshSchedule - best-effort проход планировщика перед чтением.
// Сбой прохода не блокирует выдачу уже материализованных событий.
func (h *GameHandler) refreshSchedule(c *gin.Context, userID uuid.UUID, familyMemberID *uuid.UUID) {
	if h.scheduler == nil {
		return
	}
	if _, err := h.scheduler.Run(c.Request.Context(), userID, familyMemberID); err != nil {
		h.logger.Warn("Scheduler pass failed", zap.Stringer("userID", userID), zap.Error(err))
	}
}

// RegisterRoutes регистрирует маршруты игрового сервиса.
func (h *GameHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.health)

	gameGroup := router.Group("/api/game")
	gameGroup.Use(h.AuthMiddleware())
	{
		gameGroup.GET("/events", h.listActiveEvents)
		gameGroup.POST("/events/:id/complete", h.completeEvent)
		gameGroup.GET("/progression", h.getProgression)
		gameGroup.GET("/leaderboard", h.getLeaderboard)
		gameGroup.POST("/interactions", h.recordInteraction)
		gameGroup.GET("/character", h.getCharacterSnapshot)
	}

	internalGroup := router.Group("/internal/game")
	internalGroup.Use(h.InternalAuthMiddleware())
	{
		// Платформа дергает эти маршруты: отмена событий деактивированной
		// записи, начисление опыта за health score, постановка жизненных событий
		internalGroup.POST("/records/:record_id/cancel", h.cancelEventsForRecord)
		internalGroup.POST("/health-scores", h.addHealthScoreExperience)
		internalGroup.POST("/lifecycle-events", h.enqueueLifecycleEvent)
	}
}

// InternalAuthMiddleware закрывает внутренние маршруты статическим секретом.
func (h *GameHandler) InternalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.interServiceSecret == "" || c.GetHeader("X-Internal-Service-Token") != h.interServiceSecret {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Code:    models.ErrCodeTokenInvalid,
				Message: "Missing or invalid internal service token",
			})
			return
		}
		c.Next()
	}
}

func (h *GameHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// familyMemberIDFromQuery разбирает опциональный параметр family_member_id.
func familyMemberIDFromQuery(c *gin.Context) (*uuid.UUID, error) {
	raw := c.Query("family_member_id")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, models.ErrInvalidInput
	}
	return &id, nil
}

// listActiveEvents возвращает активные события области вместе с репликами.
func (h *GameHandler) listActiveEvents(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	familyMemberID, err := familyMemberIDFromQuery(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.refreshSchedule(c, userID, familyMemberID)

	events, err := h.eventService.GetActiveEvents(c.Request.Context(), userID, familyMemberID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := ActiveEventsListResponse{Events: make([]ActiveEventResponse, 0, len(events))}
	for _, ev := range events {
		line := h.eventService.ResolveDialogue(ev)
		resp.Events = append(resp.Events, toActiveEventResponse(ev, line))
	}
	c.JSON(http.StatusOK, resp)
}

// completeEvent завершает активное событие и возвращает начисленную награду.
func (h *GameHandler) completeEvent(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	result, err := h.eventService.CompleteEvent(c.Request.Context(), eventID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// Снимок прогрессии устарел после награды
	h.progressionService.InvalidateScope(c.Request.Context(), result.Event.UserID, result.Event.FamilyMemberID)

	c.JSON(http.StatusOK, toCompleteEventResponse(result))
}

// getProgression возвращает прогрессию области с производными полями уровня.
func (h *GameHandler) getProgression(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	familyMemberID, err := familyMemberIDFromQuery(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	view, err := h.progressionService.GetProgressionState(c.Request.Context(), userID, familyMemberID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// getLeaderboard возвращает таблицу лидеров по опыту или очкам.
func (h *GameHandler) getLeaderboard(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	by := models.LeaderboardType(c.DefaultQuery("type", string(models.LeaderboardExperience)))

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			handleServiceError(c, models.ErrInvalidInput)
			return
		}
		limit = parsed
	}

	// Текущий участник: область самого пользователя либо выбранного члена семьи.
	// include_me=false убирает строку current_user из ответа.
	participantID := ""
	if c.DefaultQuery("include_me", "true") != "false" {
		familyMemberID, err := familyMemberIDFromQuery(c)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		participantID = userID.String()
		if familyMemberID != nil {
			participantID = familyMemberID.String()
		}
	}

	view, err := h.leaderboardService.GetLeaderboard(c.Request.Context(), by, limit, participantID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// recordInteraction записывает взаимодействие и возвращает новую близость.
func (h *GameHandler) recordInteraction(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	var req RecordInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	state, err := h.intimacyService.RecordInteraction(c.Request.Context(), userID, req.FamilyMemberID, req.InteractionType)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toIntimacyResponse(state))
}

// getCharacterSnapshot собирает сводку персонажа для главного экрана:
// прогрессия, близость и самая срочная реплика из активных событий.
func (h *GameHandler) getCharacterSnapshot(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	familyMemberID, err := familyMemberIDFromQuery(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	progression, err := h.progressionService.GetProgressionState(c.Request.Context(), userID, familyMemberID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	events, err := h.eventService.GetActiveEvents(c.Request.Context(), userID, familyMemberID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	snapshot := CharacterSnapshotResponse{
		Progression:      progression,
		ActiveEventCount: len(events),
		Emotion:          models.EmotionHappy, // Без дел персонаж доволен
	}
	if len(events) > 0 {
		// События уже отсортированы по срочности
		line := h.eventService.ResolveDialogue(events[0])
		snapshot.Emotion = line.Emotion
		snapshot.Dialogue = line.Message
	}

	if familyMemberID != nil {
		intimacy, err := h.intimacyService.GetIntimacyState(c.Request.Context(), userID, *familyMemberID)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		snapshot.Intimacy = toIntimacyResponse(intimacy)
	}

	c.JSON(http.StatusOK, snapshot)
}

// cancelEventsForRecord - внутренний маршрут отмены событий деактивированной
// доменной записи (например, назначение лекарства удалено).
func (h *GameHandler) cancelEventsForRecord(c *gin.Context) {
	recordID := c.Param("record_id")
	if recordID == "" {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	cancelled, err := h.eventService.CancelEventsForRecord(c.Request.Context(), recordID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": cancelled})
}

// addHealthScoreExperience - внутренний маршрут: платформа сообщает свежий
// health score, сервис конвертирует его в опыт.
func (h *GameHandler) addHealthScoreExperience(c *gin.Context) {
	var req HealthScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	view, err := h.progressionService.AddHealthScoreExperience(c.Request.Context(), req.UserID, req.FamilyMemberID, req.HealthScore)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// enqueueLifecycleEvent - внутренний маршрут постановки жизненного события
// (день рождения, годовщина). Повторная постановка того же события - no-op.
func (h *GameHandler) enqueueLifecycleEvent(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Code:    models.ErrCodeInternal,
			Message: "Scheduling is disabled",
		})
		return
	}

	var req LifecycleEventRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Category.IsValid() {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	if err := h.scheduler.EnqueueLifecycleEvent(c.Request.Context(), req.UserID, req.FamilyMemberID, req.Category, req.Title, req.Date); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled"})
}
