package content

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhub-ng/api/model"
	"github.com/learnhub-ng/api/services"
	"github.com/learnhub-ng/api/utils/middleware"
	"github.com/learnhub-ng/api/utils/response"
	"github.com/learnhub-ng/api/utils/validation"
	"gorm.io/gorm"
)

// ContentHandler serves the community-contributed content library
type ContentHandler struct {
	db        *gorm.DB
	library   *services.ContentLibraryService
	validator *validation.Validator
}

// NewContentHandler creates a new content handler
func NewContentHandler(db *gorm.DB, library *services.ContentLibraryService) *ContentHandler {
	return &ContentHandler{
		db:        db,
		library:   library,
		validator: validation.NewValidator(),
	}
}

// VoteRequest is the body of POST /content/:id/vote
type VoteRequest struct {
	Vote model.VoteKind `json:"vote" validate:"required,oneof=up down"`
}

// ListContent handles GET /api/v1/content with filters, search, sorting and
// pagination.
func (h *ContentHandler) ListContent(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	query := h.db.Model(&model.UploadedContent{})

	if search := validation.SanitizeString(c.Query("search")); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ? OR tags::text ILIKE ?", pattern, pattern, pattern)
	}
	if subject := c.Query("subject"); subject != "" {
		query = query.Where("subject = ?", subject)
	}
	if grade := c.Query("grade_level"); grade != "" {
		query = query.Where("grade_levels::text LIKE ?", "%\""+validation.SanitizeString(grade)+"\"%")
	}
	if kind := c.Query("content_type"); kind != "" {
		query = query.Where("content_kind = ?", kind)
	}
	if format := c.Query("format"); format != "" {
		query = query.Where("format = ?", format)
	}
	if language := c.Query("language"); language != "" {
		query = query.Where("language = ?", language)
	}

	switch c.Query("sort") {
	case "popular":
		query = query.Order("views DESC")
	case "most_downloaded":
		query = query.Order("download_count DESC")
	case "highest_rated":
		query = query.Order("upvotes DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count content")
	}

	var contents []model.UploadedContent
	err := query.Offset((page - 1) * limit).Limit(limit).Find(&contents).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch content")
	}

	return response.Paginated(c, contents, response.CalculatePagination(page, limit, total))
}

// GetContent handles GET /api/v1/content/:id and counts the view
func (h *ContentHandler) GetContent(c *fiber.Ctx) error {
	contentID, err := parseContentID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid content id")
	}

	content, err := h.library.GetContent(c.Context(), contentID)
	if err != nil {
		return h.libraryError(c, err)
	}
	return response.Success(c, content)
}

// CreateContent handles POST /api/v1/content
func (h *ContentHandler) CreateContent(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var input services.ContentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(input); err != nil {
		return response.ValidationError(c, err)
	}

	content, err := h.library.CreateContent(c.Context(), userID, input)
	if err != nil {
		return response.InternalServerError(c, "Failed to create content")
	}
	return response.Created(c, content)
}

// UpdateContent handles PUT /api/v1/content/:id
func (h *ContentHandler) UpdateContent(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	contentID, err := parseContentID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid content id")
	}

	var update services.ContentUpdate
	if err := c.BodyParser(&update); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(update); err != nil {
		return response.ValidationError(c, err)
	}

	content, err := h.library.UpdateContent(c.Context(), userID, contentID, update)
	if err != nil {
		return h.libraryError(c, err)
	}
	return response.SuccessWithMessage(c, "Content updated successfully", content)
}

// DeleteContent handles DELETE /api/v1/content/:id
func (h *ContentHandler) DeleteContent(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	contentID, err := parseContentID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid content id")
	}

	if err := h.library.DeleteContent(c.Context(), userID, contentID); err != nil {
		return h.libraryError(c, err)
	}
	return response.SuccessWithMessage(c, "Content deleted successfully", nil)
}

// VoteContent handles POST /api/v1/content/:id/vote
func (h *ContentHandler) VoteContent(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	contentID, err := parseContentID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid content id")
	}

	var req VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	summary, err := h.library.VoteContent(c.Context(), userID, contentID, req.Vote)
	if err != nil {
		return h.libraryError(c, err)
	}
	return response.SuccessWithMessage(c, "Vote recorded successfully", summary)
}

// DownloadContent handles GET /api/v1/content/:id/download
func (h *ContentHandler) DownloadContent(c *fiber.Ctx) error {
	contentID, err := parseContentID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid content id")
	}

	info, err := h.library.DownloadContent(c.Context(), contentID)
	if err != nil {
		return h.libraryError(c, err)
	}
	return response.SuccessWithMessage(c, "Content ready for download", info)
}

func (h *ContentHandler) libraryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrContentNotFound):
		return response.NotFound(c, "Content not found")
	case errors.Is(err, services.ErrCommentNotFound):
		return response.NotFound(c, "Comment not found")
	case errors.Is(err, services.ErrNotOwner):
		return response.Forbidden(c, "Not authorized to modify this resource")
	case errors.Is(err, services.ErrNotDownloadable):
		return response.Forbidden(c, "This content is not downloadable")
	case errors.Is(err, services.ErrInvalidVote):
		return response.BadRequest(c, "Vote must be up or down")
	case errors.Is(err, services.ErrParentCommentWrong):
		return response.BadRequest(c, "Parent comment does not belong to this content")
	default:
		return response.InternalServerError(c, "Request failed")
	}
}

func parseContentID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid content id")
	}
	return uint(id), nil
}
