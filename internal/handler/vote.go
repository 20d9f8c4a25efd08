package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/crediforum/crediforum-go/internal/middleware"
	"github.com/crediforum/crediforum-go/internal/model"
	"github.com/crediforum/crediforum-go/internal/service"
)

type VoteHandler struct {
	svc *service.VoteService
}

func NewVoteHandler(svc *service.VoteService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Apply handles PATCH /api/votes
func (h *VoteHandler) Apply(c fiber.Ctx) error {
	var req model.VoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	postID, errMsg := middleware.ValidatePostID(req.PostID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.PostID = postID

	if errMsg := middleware.ValidateVoteType(req.VoteType); errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_VOTE_TYPE", errMsg)
	}

	voterID := middleware.PrincipalID(c)
	if voterID == "" {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}

	resp, err := h.svc.ApplyVote(c.Context(), voterID, req.PostID, req.VoteType)
	if err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			return middleware.ErrorResponse(c, fiber.StatusTooManyRequests, "RATE_LIMITED",
				"Please wait a few seconds before voting again")
		}
		// Missing voter or post deliberately collapses into the generic
		// failure so entity existence is not leaked through the vote API.
		Metrics.VoteFailures.Inc()
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR",
			"Could not apply your vote at this time. Please try again later")
	}

	return c.JSON(resp)
}
