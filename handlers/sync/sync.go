package sync

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhub-ng/api/model"
	"github.com/learnhub-ng/api/services"
	"github.com/learnhub-ng/api/utils/middleware"
	"github.com/learnhub-ng/api/utils/response"
	"github.com/learnhub-ng/api/utils/validation"
	"gorm.io/gorm"
)

// SyncHandler exposes the offline activity sync and content versioning endpoints
type SyncHandler struct {
	db        *gorm.DB
	service   *services.OfflineSyncService
	validator *validation.Validator
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(db *gorm.DB, service *services.OfflineSyncService) *SyncHandler {
	return &SyncHandler{
		db:        db,
		service:   service,
		validator: validation.NewValidator(),
	}
}

// BatchSyncRequest is the body of POST /sync/batch
type BatchSyncRequest struct {
	Activities []services.ActivityInput `json:"activities" validate:"required,min=1,dive"`
}

// CreateVersionRequest is the body of POST /sync/version/:contentType/:contentId
type CreateVersionRequest struct {
	Changes []string `json:"changes" validate:"required,min=1,dive,required"`
}

// SyncUserActivities handles POST /api/v1/sync/user
func (h *SyncHandler) SyncUserActivities(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	result, err := h.service.SyncUserActivities(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to sync activities")
	}

	return response.SuccessWithMessage(c,
		fmt.Sprintf("Sync completed: %d activities synced, %d failed", result.Synced, result.Failed),
		result)
}

// BatchSyncActivities handles POST /api/v1/sync/batch
func (h *SyncHandler) BatchSyncActivities(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req BatchSyncRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.service.BatchSyncActivities(c.Context(), userID, req.Activities)
	if err != nil {
		if errors.Is(err, services.ErrEmptyBatch) {
			return response.BadRequest(c, "Activities array is required")
		}
		return response.InternalServerError(c, "Failed to sync activities")
	}

	return response.SuccessWithMessage(c,
		fmt.Sprintf("Batch sync completed: %d activities synced, %d failed", result.Synced, result.Failed),
		result)
}

// CheckContentUpdates handles GET /api/v1/sync/updates
func (h *SyncHandler) CheckContentUpdates(c *fiber.Ctx) error {
	contentID, err := strconv.ParseUint(c.Query("content_id"), 10, 32)
	if err != nil || contentID == 0 {
		return response.BadRequest(c, "Content ID is required")
	}

	contentType := model.ContentType(c.Query("content_type"))
	if !contentType.Valid() {
		return response.BadRequest(c, "Invalid content type")
	}

	clientHash := c.Query("version_hash")

	result, err := h.service.CheckContentUpdates(c.Context(), contentType, uint(contentID), clientHash)
	if err != nil {
		return response.InternalServerError(c, "Failed to check content updates")
	}

	return response.Success(c, result)
}

// CreateContentVersion handles POST /api/v1/sync/version/:contentType/:contentId
func (h *SyncHandler) CreateContentVersion(c *fiber.Ctx) error {
	contentType := model.ContentType(c.Params("contentType"))
	if !contentType.Valid() {
		return response.BadRequest(c, "Invalid content type")
	}

	contentID, err := strconv.ParseUint(c.Params("contentId"), 10, 32)
	if err != nil || contentID == 0 {
		return response.BadRequest(c, "Invalid content id")
	}

	var req CreateVersionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var createdBy *uint
	if userID, ok := middleware.GetUserID(c); ok {
		createdBy = &userID
	}

	version, err := h.service.CreateContentVersion(c.Context(), contentType, uint(contentID), req.Changes, createdBy)
	if err != nil {
		if errors.Is(err, services.ErrContentNotFound) {
			return response.NotFound(c, "Content not found")
		}
		return response.InternalServerError(c, "Failed to create content version")
	}

	return response.SuccessWithMessage(c, "Content version created", version)
}
