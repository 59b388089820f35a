package handlers

import (
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

type QuoteHandler struct {
	quoteService *services.QuoteService
	publisher    *event.Publisher
}

func NewQuoteHandler(quoteService *services.QuoteService, publisher *event.Publisher) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		publisher:    publisher,
	}
}

func (h *QuoteHandler) Register(app *fiber.App) {
	protectedGr := app.Group("decision/protected/api/v1")

	quoteGroup := protectedGr.Group("/quotes")
	quoteGroup.Post("/generate", h.GenerateQuotes)            // POST /quotes/generate
	quoteGroup.Post("/:id/accept", h.AcceptQuote)             // POST /quotes/:id/accept
	quoteGroup.Get("/compare/:application_id", h.CompareQuotes) // GET /quotes/compare/:application_id
}

// GenerateQuotes prices an approved application against every active insurer
func (h *QuoteHandler) GenerateQuotes(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			models.ErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	var req models.GenerateQuotesRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if req.ApplicationID == uuid.Nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_BODY", "application_id is required"))
	}

	result, err := h.quoteService.GenerateQuotes(c.Context(), req.ApplicationID, req.CoverageIDs, req.AddonIDs, userID)
	if err != nil {
		return respondQuoteError(c, "Failed to generate quotes", err)
	}

	if h.publisher != nil && len(result.Quotes) > 0 {
		publishErr := h.publisher.PublishQuoteEvent(c.Context(), event.QuoteEvent{
			EventType:     event.QuoteEventGenerated,
			ApplicationID: result.ApplicationID,
			CustomerID:    result.Quotes[0].CustomerID,
			TotalQuotes:   result.TotalQuotes,
			OccurredAt:    time.Now(),
		})
		if publishErr != nil {
			slog.Error("Failed to publish quote event", "application_id", result.ApplicationID, "error", publishErr)
		}
	}

	return c.Status(http.StatusCreated).JSON(models.SuccessResponse(result))
}

// AcceptQuote accepts a generated, unexpired quote
func (h *QuoteHandler) AcceptQuote(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			models.ErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	quoteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_UUID", "Invalid quote ID format"))
	}

	quote, err := h.quoteService.AcceptQuote(c.Context(), quoteID)
	if err != nil {
		return respondQuoteError(c, "Failed to accept quote", err)
	}

	if h.publisher != nil {
		premium := quote.TotalPremium
		publishErr := h.publisher.PublishQuoteEvent(c.Context(), event.QuoteEvent{
			EventType:     event.QuoteEventAccepted,
			ApplicationID: quote.ApplicationID,
			CustomerID:    quote.CustomerID,
			QuoteID:       &quote.ID,
			QuoteNumber:   quote.QuoteNumber,
			TotalPremium:  &premium,
			OccurredAt:    time.Now(),
		})
		if publishErr != nil {
			slog.Error("Failed to publish quote event", "quote_id", quote.ID, "error", publishErr)
		}
	}

	return c.Status(http.StatusOK).JSON(models.SuccessResponse(quote))
}

// CompareQuotes returns recommendations plus all quotes for an application
func (h *QuoteHandler) CompareQuotes(c fiber.Ctx) error {
	applicationID, err := uuid.Parse(c.Params("application_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("INVALID_UUID", "Invalid application ID format"))
	}

	result, err := h.quoteService.CompareQuotes(c.Context(), applicationID)
	if err != nil {
		return respondQuoteError(c, "Failed to compare quotes", err)
	}

	return c.Status(http.StatusOK).JSON(models.SuccessResponse(result))
}

func respondQuoteError(c fiber.Ctx, logMsg string, err error) error {
	var (
		validationErr   *services.ValidationError
		invalidStateErr *services.InvalidStateError
		preconditionErr *services.PreconditionError
		expiredErr      *services.ExpiredError
	)
	switch {
	case errors.As(err, &validationErr):
		return c.Status(http.StatusBadRequest).JSON(
			models.ErrorResponse("VALIDATION_FAILED", validationErr.Error()))
	case errors.As(err, &invalidStateErr):
		return c.Status(http.StatusConflict).JSON(
			models.ErrorResponse("INVALID_STATE", invalidStateErr.Error()))
	case errors.As(err, &preconditionErr):
		return c.Status(http.StatusUnprocessableEntity).JSON(
			models.ErrorResponse("PRECONDITION_FAILED", preconditionErr.Error()))
	case errors.As(err, &expiredErr):
		return c.Status(http.StatusGone).JSON(
			models.ErrorResponse("EXPIRED", expiredErr.Error()))
	}

	if isNotFound(err) {
		return c.Status(http.StatusNotFound).JSON(
			models.ErrorResponse("NOT_FOUND", "Resource not found"))
	}

	slog.Error(logMsg, "error", err)
	return c.Status(http.StatusInternalServerError).JSON(
		models.ErrorResponse("INTERNAL_ERROR", logMsg))
}
