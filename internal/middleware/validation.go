package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/crediforum/crediforum-go/internal/model"
)

// Field length limits matching database schema constraints.
const (
	MaxPostIDLen = 32 // posts.id VARCHAR(32), cuid-style
	MaxUserIDLen = 32 // users.id VARCHAR(32)
	MaxSlugLen   = 48 // communities.slug VARCHAR(48)
)

var (
	// idRe matches cuid-style identifiers: lowercase alphanumeric.
	idRe = regexp.MustCompile(`^[a-z0-9]+$`)
	// slugRe matches community slugs: lowercase alphanumeric plus dash/underscore.
	slugRe = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidatePostID checks that a post ID is well-formed and within DB limits.
func ValidatePostID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "postId is required"
	}
	if len(id) > MaxPostIDLen {
		return "", "postId must be at most 32 characters"
	}
	if !idRe.MatchString(id) {
		return "", "postId contains invalid characters"
	}
	return id, ""
}

// ValidateUserID checks that a user ID is well-formed.
func ValidateUserID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "userId is required"
	}
	if len(id) > MaxUserIDLen {
		return "", "userId must be at most 32 characters"
	}
	if !idRe.MatchString(id) {
		return "", "userId contains invalid characters"
	}
	return id, ""
}

// ValidateSlug checks that a community slug is well-formed.
func ValidateSlug(slug string) (string, string) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		return "", "slug is required"
	}
	if len(slug) > MaxSlugLen {
		return "", "slug must be at most 48 characters"
	}
	if !slugRe.MatchString(slug) {
		return "", "slug contains invalid characters"
	}
	return slug, ""
}

// ValidateVoteType checks that a vote direction is UP or DOWN.
func ValidateVoteType(t model.VoteType) string {
	if !t.Valid() {
		return "voteType must be UP or DOWN"
	}
	return ""
}
