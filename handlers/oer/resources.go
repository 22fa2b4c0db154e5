package oer

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhub-ng/api/model"
	"github.com/learnhub-ng/api/services/storage"
	"github.com/learnhub-ng/api/utils/response"
	"github.com/learnhub-ng/api/utils/validation"
	"gorm.io/gorm"
)

const downloadURLExpiry = 15 * time.Minute

// OERHandler serves the open educational resource catalog and mirrored
// file downloads.
type OERHandler struct {
	db     *gorm.DB
	spaces *storage.SpacesClient // nil when object storage is not configured
}

// NewOERHandler creates a new OER handler
func NewOERHandler(db *gorm.DB, spaces *storage.SpacesClient) *OERHandler {
	return &OERHandler{db: db, spaces: spaces}
}

// ListResources handles GET /api/v1/oer with search, filters and pagination
func (h *OERHandler) ListResources(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.db.Model(&model.OERResource{})

	if search := validation.SanitizeString(c.Query("search")); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if provider := c.Query("provider"); provider != "" {
		query = query.Where("provider = ?", provider)
	}
	if resourceType := c.Query("type"); resourceType != "" {
		query = query.Where("type = ?", resourceType)
	}
	if language := c.Query("language"); language != "" {
		query = query.Where("language = ?", language)
	}
	if subject := c.Query("subject"); subject != "" {
		query = query.Where("subjects::text LIKE ?", "%\""+validation.SanitizeString(subject)+"\"%")
	}
	if topicCode := c.Query("nerdc_topic_code"); topicCode != "" {
		query = query.Where("nerdc_topic_code = ?", topicCode)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count resources")
	}

	var resources []model.OERResource
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&resources).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch resources")
	}

	return response.Paginated(c, resources, response.CalculatePagination(page, limit, total))
}

// GetResource handles GET /api/v1/oer/:id
func (h *OERHandler) GetResource(c *fiber.Ctx) error {
	resource, err := h.loadResource(c)
	if err != nil {
		return h.resourceError(c, err)
	}
	return response.Success(c, resource)
}

// GetDownloadURL handles GET /api/v1/oer/:id/download-url. Mirrored files get a
// presigned storage URL; everything else falls back to the provider URL.
func (h *OERHandler) GetDownloadURL(c *fiber.Ctx) error {
	resource, err := h.loadResource(c)
	if err != nil {
		return h.resourceError(c, err)
	}

	downloadURL := resource.URL
	mirrored := false

	if resource.FileKey != "" && h.spaces != nil {
		url, err := h.spaces.PresignedDownloadURL(resource.FileKey, downloadURLExpiry)
		if err != nil {
			return response.InternalServerError(c, "Failed to generate download URL")
		}
		downloadURL = url
		mirrored = true
	}

	return response.Success(c, fiber.Map{
		"download_url": downloadURL,
		"mirrored":     mirrored,
	})
}

// UploadFile handles POST /api/v1/oer/:id/file. It mirrors a resource file
// into object storage and records the storage key on the resource.
func (h *OERHandler) UploadFile(c *fiber.Ctx) error {
	if h.spaces == nil {
		return response.ServiceUnavailable(c, "Object storage is not configured")
	}

	resource, err := h.loadResource(c)
	if err != nil {
		return h.resourceError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "File is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(file); err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("oer/%d/%s", resource.ID, fileHeader.Filename)
	if _, err := h.spaces.UploadFile(c.Context(), key, &buf, contentType); err != nil {
		return response.InternalServerError(c, "Failed to upload file")
	}

	if err := h.db.Model(resource).Update("file_key", key).Error; err != nil {
		return response.InternalServerError(c, "Failed to update resource")
	}

	return response.SuccessWithMessage(c, "File mirrored successfully", fiber.Map{
		"file_key": key,
	})
}

var errInvalidResourceID = errors.New("invalid resource id")

func (h *OERHandler) loadResource(c *fiber.Ctx) (*model.OERResource, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return nil, errInvalidResourceID
	}

	var resource model.OERResource
	if err := h.db.First(&resource, uint(id)).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

func (h *OERHandler) resourceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errInvalidResourceID):
		return response.BadRequest(c, "Invalid resource id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NotFound(c, "Resource not found")
	default:
		return response.InternalServerError(c, "Failed to fetch resource")
	}
}
