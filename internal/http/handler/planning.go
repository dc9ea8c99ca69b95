package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NadavGB86/event-pragmetizer-oss/common/id"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/brain"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/http/dto"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/service"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/store"
)

type PlanningHandler struct {
	planning service.PlanningService
}

func NewPlanningHandler(planning service.PlanningService) *PlanningHandler {
	return &PlanningHandler{planning: planning}
}

func (h *PlanningHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	sess, err := h.planning.Create(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToSessionResponse(sess))
}

func (h *PlanningHandler) Get(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	sess, err := h.planning.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err, "failed to load session")
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionResponse(sess))
}

func (h *PlanningHandler) Delete(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	if err := h.planning.Delete(c.Request.Context(), sessionID); err != nil {
		writeError(c, err, "failed to delete session")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PlanningHandler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid message request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.planning.SendMessage(ctx, sessionID, req.Content, brain.GuidanceMode(req.Mode))
	if err != nil {
		writeError(c, err, "failed to send message")
		return
	}

	c.JSON(http.StatusOK, dto.ToMessageResponse(res))
}

func (h *PlanningHandler) UpdateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	var update dto.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&update); err != nil {
		slog.WarnContext(ctx, "invalid profile update", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.planning.UpdateProfile(ctx, sessionID, update.ProfileUpdate)
	if err != nil {
		writeError(c, err, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileResponse(res))
}

func (h *PlanningHandler) Readiness(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	verdict, err := h.planning.Readiness(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err, "failed to assess readiness")
		return
	}

	c.JSON(http.StatusOK, verdict)
}

func (h *PlanningHandler) Synthesis(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	req, err := h.planning.Synthesis(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err, "failed to build synthesis request")
		return
	}

	c.JSON(http.StatusOK, req)
}

func (h *PlanningHandler) GeneratePlans(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	res, err := h.planning.GeneratePlans(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err, "failed to generate plans")
		return
	}

	c.JSON(http.StatusOK, dto.ToGenerationResponse(res))
}

func (h *PlanningHandler) SelectPlan(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	var req dto.SelectPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid select request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.planning.SelectPlan(ctx, sessionID, req.EvaluationID)
	if err != nil {
		writeError(c, err, "failed to select plan")
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *PlanningHandler) RefinePlan(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	var req dto.RefinePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid refine request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.planning.RefinePlan(ctx, sessionID, req.Instruction)
	if err != nil {
		writeError(c, err, "failed to refine plan")
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *PlanningHandler) Advisory(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	adv, err := h.planning.Advisory(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err, "failed to load advisory")
		return
	}

	c.JSON(http.StatusOK, adv)
}

func (h *PlanningHandler) Export(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	state, err := h.planning.Export(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err, "failed to export session")
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *PlanningHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()

	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	sess, err := h.planning.Import(ctx, raw)
	if err != nil {
		writeError(c, err, "failed to import session")
		return
	}

	c.JSON(http.StatusCreated, dto.ToSessionResponse(sess))
}

func (h *PlanningHandler) Evaluate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid evaluate request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ToEvaluateResponse(h.planning.Evaluate(ctx, req.Profile, req.Plans)))
}

func sessionParam(c *gin.Context) (int64, bool) {
	sessionID, err := id.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return 0, false
	}
	return sessionID, true
}

// writeError maps service errors to status codes. Anything unrecognised is a
// 500 with the generic message; the cause is only logged.
func writeError(c *gin.Context, err error, message string) {
	ctx := c.Request.Context()

	var notReady *service.NotReadyError
	switch {
	case errors.As(err, &notReady):
		c.JSON(http.StatusConflict, dto.NotReadyResponse{
			Error:           service.ErrNotReady.Error(),
			MissingCritical: notReady.Readiness.MissingCritical,
			MissingOptional: notReady.Readiness.MissingOptional,
		})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, service.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoSelectedPlan),
		errors.Is(err, service.ErrPlanChanged):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, brain.ErrEmptyInstruction),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrUnsupportedVersion):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(ctx, message, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}
