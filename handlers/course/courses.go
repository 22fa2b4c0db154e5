package course

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhub-ng/api/model"
	"github.com/learnhub-ng/api/utils/response"
	"github.com/learnhub-ng/api/utils/validation"
	"gorm.io/gorm"
)

// CourseHandler serves the unified course catalog
type CourseHandler struct {
	db *gorm.DB
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{db: db}
}

// ListCourses handles GET /api/v1/courses with search, filters and pagination
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.db.Model(&model.UnifiedCourse{}).Where("approved = ?", true)

	if search := validation.SanitizeString(c.Query("search")); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if language := c.Query("language"); language != "" {
		query = query.Where("language = ?", language)
	}
	if level := c.Query("level"); level != "" {
		query = query.Where("level = ?", level)
	}
	if source := c.Query("source"); source != "" {
		query = query.Where("source = ?", source)
	}
	if tag := c.Query("curriculum_tag"); tag != "" {
		query = query.Where("curriculum_tags::text LIKE ?", "%\""+validation.SanitizeString(tag)+"\"%")
	}
	if subject := c.Query("subject"); subject != "" {
		query = query.Where("subjects::text LIKE ?", "%\""+validation.SanitizeString(subject)+"\"%")
	}
	if topicCode := c.Query("nerdc_topic_code"); topicCode != "" {
		query = query.Where("nerdc_topic_code = ?", topicCode)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	var courses []model.UnifiedCourse
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&courses).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Paginated(c, courses, response.CalculatePagination(page, limit, total))
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return response.BadRequest(c, "Invalid course id")
	}

	var course model.UnifiedCourse
	if err := h.db.First(&course, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}
