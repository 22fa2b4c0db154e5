package content

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhub-ng/api/utils/middleware"
	"github.com/learnhub-ng/api/utils/response"
)

// AddCommentRequest is the body of POST /content/:id/comments
type AddCommentRequest struct {
	Text     string `json:"text" validate:"required,max=1000"`
	ParentID *uint  `json:"parent_id"`
}

// UpdateCommentRequest is the body of PUT /comments/:id
type UpdateCommentRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// AddComment handles POST /api/v1/content/:id/comments
func (h *ContentHandler) AddComment(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	contentID, err := parseContentID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid content id")
	}

	var req AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	comment, err := h.library.AddComment(c.Context(), userID, contentID, req.Text, req.ParentID)
	if err != nil {
		return h.libraryError(c, err)
	}
	return response.Created(c, comment)
}

// ListComments handles GET /api/v1/content/:id/comments. Without a parent_id
// query it returns the top-level thread; with parent_id it returns replies.
func (h *ContentHandler) ListComments(c *fiber.Ctx) error {
	contentID, err := parseContentID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid content id")
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var parentID *uint
	onlyTopLevel := true
	if raw := c.Query("parent_id"); raw != "" && raw != "null" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid parent_id")
		}
		id := uint(parsed)
		parentID = &id
		onlyTopLevel = false
	}

	comments, total, err := h.library.ListComments(c.Context(), contentID, parentID, onlyTopLevel, (page-1)*limit, limit)
	if err != nil {
		return h.libraryError(c, err)
	}

	return response.Paginated(c, comments, response.CalculatePagination(page, limit, total))
}

// UpdateComment handles PUT /api/v1/comments/:id
func (h *ContentHandler) UpdateComment(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	commentID, err := parseContentID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid comment id")
	}

	var req UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	comment, err := h.library.UpdateComment(c.Context(), userID, commentID, req.Text)
	if err != nil {
		return h.libraryError(c, err)
	}
	return response.SuccessWithMessage(c, "Comment updated successfully", comment)
}

// DeleteComment handles DELETE /api/v1/comments/:id
func (h *ContentHandler) DeleteComment(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	commentID, err := parseContentID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid comment id")
	}

	if err := h.library.DeleteComment(c.Context(), userID, commentID); err != nil {
		return h.libraryError(c, err)
	}
	return response.SuccessWithMessage(c, "Comment deleted successfully", nil)
}
