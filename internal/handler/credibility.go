package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/crediforum/crediforum-go/internal/middleware"
	"github.com/crediforum/crediforum-go/internal/model"
	"github.com/crediforum/crediforum-go/internal/service"
)

// recentEventsLimit caps how many audit events the read endpoint returns.
const recentEventsLimit = 50

type CredibilityHandler struct {
	users *service.UserService
	audit *service.AuditService
}

func NewCredibilityHandler(users *service.UserService, audit *service.AuditService) *CredibilityHandler {
	return &CredibilityHandler{users: users, audit: audit}
}

// Get handles GET /api/credibility
// Without query parameters it returns the top-50 leaderboard; with ?userId=
// it returns that user's credibility detail including their top posts.
func (h *CredibilityHandler) Get(c fiber.Ctx) error {
	if userID := c.Query("userId"); userID != "" {
		userID, errMsg := middleware.ValidateUserID(userID)
		if errMsg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
		}

		detail, err := h.users.CredibilityDetail(c.Context(), userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "User not found")
			}
			return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch credibility data")
		}
		return c.JSON(detail)
	}

	entries, err := h.users.Leaderboard(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch credibility data")
	}
	return c.JSON(entries)
}

// GetEvents handles GET /api/credibility/events
// Returns the most recent scoring decisions. The sink is best-effort, so a
// read failure degrades to an empty list rather than an error.
func (h *CredibilityHandler) GetEvents(c fiber.Ctx) error {
	events, err := h.audit.Recent(c.Context(), recentEventsLimit)
	if err != nil {
		middleware.Logger.Warn().Err(err).Msg("audit: read events failed")
		return c.JSON([]model.AuditEvent{})
	}
	return c.JSON(events)
}
