package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"decision-engine/internal/event"
	"decision-engine/internal/models"
	"decision-engine/internal/services"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ClaimHandler struct {
	workflow  *services.ClaimWorkflow
	publisher *event.Publisher
}

func NewClaimHandler(workflow *services.ClaimWorkflow, publisher *event.Publisher) *ClaimHandler {
	return &ClaimHandler{
		workflow:  workflow,
		publisher: publisher,
	}
}

func (h *ClaimHandler) Register(app *fiber.App) {
	protectedGr := app.Group("decision/protected/api/v1")

	claimGroup := protectedGr.Group("/claims")
	claimGroup.Post("/", h.SubmitClaim)                           // POST /claims
	claimGroup.Get("/:id", h.GetClaim)                            // GET /claims/:id
	claimGroup.Get("/:id/sla", h.GetSLAStatus)                    // GET /claims/:id/sla
	claimGroup.Post("/:id/transition", h.TransitionClaim)         // POST /claims/:id/transition
	claimGroup.Post("/:id/assign-surveyor", h.AssignSurveyor)     // POST /claims/:id/assign-surveyor
	claimGroup.Post("/:id/settlement", h.CreateSettlement)        // POST /claims/:id/settlement
	claimGroup.Put("/assessments/:id", h.RecordAssessment)        // PUT /claims/assessments/:id
}

// SubmitClaim registers a new claim in SUBMITTED state
func (h *ClaimHandler) SubmitClaim(c fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(
			models.ErrorResponse("UNAUTHORIZED", "User ID and role are required"))
	}

	var req models.SubmitClaimRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if req.PolicyID == uuid.Nil || req.CustomerID == uuid.Nil || req.InsuranceTypeID == uuid.Nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_BODY", "policy_id, customer_id and insurance_type_id are required"))
	}

	claim, err := h.workflow.SubmitClaim(c.Context(), actor, req)
	if err != nil {
		return respondClaimError(c, "Failed to submit claim", err)
	}

	if h.publisher != nil {
		evt := event.ClaimEvent{
			EventType:   "CLAIM_SUBMITTED",
			ClaimID:     claim.ID,
			ClaimNumber: claim.ClaimNumber,
			CustomerID:  claim.CustomerID,
			NewStatus:   string(claim.Status),
			ChangedBy:   actor.ID,
			OccurredAt:  time.Now(),
		}
		if err := h.publisher.PublishClaimEvent(c.Context(), evt); err != nil {
			slog.Error("Failed to publish claim event", "claim_id", claim.ID, "error", err)
		}
	}

	return c.Status(http.StatusCreated).JSON(models.SuccessResponse(claim))
}

// GetClaim retrieves a claim with its full status history
func (h *ClaimHandler) GetClaim(c fiber.Ctx) error {
	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_UUID", "Invalid claim ID format"))
	}

	claim, history, err := h.workflow.GetClaim(c.Context(), claimID)
	if err != nil {
		return respondClaimError(c, "Failed to retrieve claim", err)
	}

	return c.Status(http.StatusOK).JSON(models.SuccessResponse(map[string]interface{}{
		"claim":   claim,
		"history": history,
	}))
}

// GetSLAStatus computes the claim's SLA view
func (h *ClaimHandler) GetSLAStatus(c fiber.Ctx) error {
	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_UUID", "Invalid claim ID format"))
	}

	status, err := h.workflow.GetSLAStatus(c.Context(), claimID)
	if err != nil {
		return respondClaimError(c, "Failed to compute SLA status", err)
	}

	return c.Status(http.StatusOK).JSON(models.SuccessResponse(status))
}

// TransitionClaim moves a claim to a new status
func (h *ClaimHandler) TransitionClaim(c fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(
			models.ErrorResponse("UNAUTHORIZED", "User ID and role are required"))
	}

	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_UUID", "Invalid claim ID format"))
	}

	var req models.TransitionClaimRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if req.NewStatus == "" {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_BODY", "new_status is required"))
	}

	result, err := h.workflow.Transition(c.Context(), claimID, req.NewStatus, actor, req.Reason, req.ApprovedAmount, requestMeta(c))
	if err != nil {
		return respondClaimError(c, "Failed to transition claim", err)
	}

	h.publishTransition(c, result)

	return c.Status(http.StatusOK).JSON(models.SuccessResponse(result))
}

// AssignSurveyor creates a pending assessment for a claim under review
func (h *ClaimHandler) AssignSurveyor(c fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(
			models.ErrorResponse("UNAUTHORIZED", "User ID and role are required"))
	}

	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_UUID", "Invalid claim ID format"))
	}

	var req models.AssignSurveyorRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if req.SurveyorID == "" {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_BODY", "surveyor_id is required"))
	}

	assessment, err := h.workflow.AssignSurveyor(c.Context(), claimID, req.SurveyorID, req.AssessmentDate, actor, requestMeta(c))
	if err != nil {
		return respondClaimError(c, "Failed to assign surveyor", err)
	}

	return c.Status(http.StatusCreated).JSON(models.SuccessResponse(assessment))
}

// RecordAssessment completes an assessment with the surveyor's findings
func (h *ClaimHandler) RecordAssessment(c fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(
			models.ErrorResponse("UNAUTHORIZED", "User ID and role are required"))
	}

	assessmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_UUID", "Invalid assessment ID format"))
	}

	var req models.RecordAssessmentRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if req.LossAmount < 0 {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_BODY", "loss_amount cannot be negative"))
	}

	assessment, err := h.workflow.RecordAssessment(c.Context(), assessmentID, req, actor, requestMeta(c))
	if err != nil {
		return respondClaimError(c, "Failed to record assessment", err)
	}

	return c.Status(http.StatusOK).JSON(models.SuccessResponse(assessment))
}

// CreateSettlement records a pending settlement for an approved claim
func (h *ClaimHandler) CreateSettlement(c fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(
			models.ErrorResponse("UNAUTHORIZED", "User ID and role are required"))
	}

	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_UUID", "Invalid claim ID format"))
	}

	var req models.CreateSettlementRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_BODY", "Invalid request body"))
	}

	settlement, err := h.workflow.CreateSettlement(c.Context(), claimID, actor, req)
	if err != nil {
		return respondClaimError(c, "Failed to create settlement", err)
	}

	return c.Status(http.StatusCreated).JSON(models.SuccessResponse(settlement))
}

func (h *ClaimHandler) publishTransition(c fiber.Ctx, result *models.TransitionClaimResponse) {
	if h.publisher == nil || result.Claim == nil || result.History == nil {
		return
	}

	evt := event.ClaimEvent{
		EventType:   "CLAIM_" + string(result.Claim.Status),
		ClaimID:     result.Claim.ID,
		ClaimNumber: result.Claim.ClaimNumber,
		CustomerID:  result.Claim.CustomerID,
		OldStatus:   string(result.History.OldStatus),
		NewStatus:   string(result.History.NewStatus),
		ChangedBy:   result.History.ChangedBy,
		Reason:      result.History.Reason,
		OccurredAt:  time.Now(),
	}
	switch result.Claim.Status {
	case models.ClaimApproved:
		evt.Amount = result.Claim.AmountApproved
	case models.ClaimSettled:
		evt.Amount = result.Claim.AmountSettled
	}

	if err := h.publisher.PublishClaimEvent(c.Context(), evt); err != nil {
		slog.Error("Failed to publish claim event", "claim_id", result.Claim.ID, "error", err)
	}
}

func requireActor(c fiber.Ctx) (services.Actor, bool) {
	userID := c.Get("X-User-ID")
	role := models.Role(c.Get("X-User-Role"))
	if userID == "" || role.Rank() < 0 {
		return services.Actor{}, false
	}
	return services.Actor{ID: userID, Role: role}, true
}

func requestMeta(c fiber.Ctx) *models.RequestMeta {
	return &models.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
}

func respondClaimError(c fiber.Ctx, logMsg string, err error) error {
	var (
		validationErr   *services.ValidationError
		transitionErr   *services.InvalidTransitionError
		invalidStateErr *services.InvalidStateError
		unauthorizedErr *services.UnauthorizedError
		preconditionErr *services.PreconditionError
	)
	switch {
	case errors.As(err, &validationErr):
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("VALIDATION_FAILED", validationErr.Error()))
	case errors.As(err, &transitionErr):
		return c.Status(http.StatusConflict).JSON(
			models.ErrorResponse("INVALID_TRANSITION", transitionErr.Error()))
	case errors.As(err, &invalidStateErr):
		return c.Status(http.StatusConflict).JSON(
			models.ErrorResponse("INVALID_STATE", invalidStateErr.Error()))
	case errors.As(err, &unauthorizedErr):
		return c.Status(http.StatusForbidden).JSON(
			models.ErrorResponse("FORBIDDEN", unauthorizedErr.Error()))
	case errors.As(err, &preconditionErr):
		return c.Status(http.StatusUnprocessableEntity).JSON(
			models.ErrorResponse("PRECONDITION_FAILED", preconditionErr.Error()))
	}

	if isNotFound(err) {
		return c.Status(http.StatusNotFound).JSON(
			models.ErrorResponse("NOT_FOUND", "Resource not found"))
	}

	slog.Error(logMsg, "error", err)
	return c.Status(http.StatusInternalServerError).JSON(
		models.ErrorResponse("INTERNAL_ERROR", logMsg))
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
