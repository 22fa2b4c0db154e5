package analytics

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhub-ng/api/model"
	"github.com/learnhub-ng/api/services"
	"github.com/learnhub-ng/api/utils/middleware"
	"github.com/learnhub-ng/api/utils/response"
	"github.com/learnhub-ng/api/utils/validation"
)

// AnalyticsHandler serves learning analytics and engagement tracking
type AnalyticsHandler struct {
	analytics  *services.AnalyticsService
	engagement *services.EngagementService
	validator  *validation.Validator
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *services.AnalyticsService, engagement *services.EngagementService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics:  analytics,
		engagement: engagement,
		validator:  validation.NewValidator(),
	}
}

// TrackEngagementRequest is the body of POST /analytics/engagement/:contentType/:contentId
type TrackEngagementRequest struct {
	Action string `json:"action" validate:"required,oneof=view download complete"`
	Rating int    `json:"rating,omitempty"`
}

// GetLearningAnalytics handles GET /api/v1/analytics/learning for the
// authenticated user.
func (h *AnalyticsHandler) GetLearningAnalytics(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	report, err := h.analytics.GetUserLearningAnalytics(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch learning analytics")
	}

	return response.Success(c, report)
}

// GetContentEngagement handles GET /api/v1/analytics/engagement/:contentType/:contentId
func (h *AnalyticsHandler) GetContentEngagement(c *fiber.Ctx) error {
	contentType, contentID, err := parseContentParams(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	report, err := h.analytics.GetContentEngagement(c.Context(), contentType, contentID)
	if err != nil {
		if errors.Is(err, services.ErrContentNotFound) {
			return response.NotFound(c, "Content not found")
		}
		return response.InternalServerError(c, "Failed to fetch engagement report")
	}

	return response.Success(c, report)
}

// TrackEngagement handles POST /api/v1/analytics/engagement/:contentType/:contentId.
// A rating may ride along with any action; out-of-range ratings are ignored.
func (h *AnalyticsHandler) TrackEngagement(c *fiber.Ctx) error {
	contentType, contentID, err := parseContentParams(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req TrackEngagementRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var delta services.EngagementDelta
	switch req.Action {
	case "view":
		delta.Views = 1
	case "download":
		delta.Downloads = 1
	case "complete":
		delta.Completions = 1
	}

	if err := h.engagement.RecordEngagement(c.Context(), contentType, contentID, delta); err != nil {
		return response.InternalServerError(c, "Failed to track engagement")
	}

	if req.Rating != 0 {
		if err := h.engagement.RecordRating(c.Context(), contentType, contentID, req.Rating); err != nil {
			return response.InternalServerError(c, "Failed to record rating")
		}
	}

	h.analytics.InvalidateEngagementReport(c.Context(), contentType, contentID)

	return response.SuccessWithMessage(c, "Engagement tracked", nil)
}

// RateContentRequest is the body of POST /analytics/engagement/:contentType/:contentId/rating
type RateContentRequest struct {
	Rating int `json:"rating" validate:"required"`
}

// RateContent handles POST /api/v1/analytics/engagement/:contentType/:contentId/rating.
// The rating service drops out-of-range values without erroring, so a stale
// client never sees its sync blocked by a bad rating.
func (h *AnalyticsHandler) RateContent(c *fiber.Ctx) error {
	contentType, contentID, err := parseContentParams(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req RateContentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := h.engagement.RecordRating(c.Context(), contentType, contentID, req.Rating); err != nil {
		return response.InternalServerError(c, "Failed to record rating")
	}

	h.analytics.InvalidateEngagementReport(c.Context(), contentType, contentID)

	return response.SuccessWithMessage(c, "Rating recorded", nil)
}

func parseContentParams(c *fiber.Ctx) (model.ContentType, uint, error) {
	contentType := model.ContentType(c.Params("contentType"))
	if !contentType.Valid() {
		return "", 0, errors.New("invalid content type")
	}

	contentID, err := strconv.ParseUint(c.Params("contentId"), 10, 32)
	if err != nil || contentID == 0 {
		return "", 0, errors.New("invalid content id")
	}

	return contentType, uint(contentID), nil
}
