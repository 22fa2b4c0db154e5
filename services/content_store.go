package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/learnhub-ng/api/model"
	"gorm.io/gorm"
)

// contentTables maps the content type tag onto its catalog table. Every
// cross-catalog operation goes through this table instead of inspecting
// types at runtime.
var contentTables = map[model.ContentType]string{
	model.ContentTypeCourse:   model.UnifiedCourse{}.TableName(),
	model.ContentTypeOER:      model.OERResource{}.TableName(),
	model.ContentTypeUploaded: model.UploadedContent{}.TableName(),
}

// ContentInfo is the catalog-independent view of a content item used by the
// activity processor and the analytics reports.
type ContentInfo struct {
	ID             uint     `json:"id"`
	Title          string   `json:"title"`
	NERDCTopicCode string   `json:"nerdc_topic_code,omitempty"`
	CurriculumTags []string `json:"curriculum_tags,omitempty"`
	DownloadCount  int64    `json:"download_count"`
}

// ContentStore resolves content references tagged with a ContentType against
// the unified course and OER catalogs.
type ContentStore struct {
	db *gorm.DB
}

// NewContentStore creates a new content store
func NewContentStore(db *gorm.DB) *ContentStore {
	return &ContentStore{db: db}
}

// Get fetches the catalog-independent view of a content item.
// Returns ErrContentNotFound / ErrInvalidContentType as appropriate.
func (s *ContentStore) Get(ctx context.Context, contentType model.ContentType, contentID uint) (*ContentInfo, error) {
	switch contentType {
	case model.ContentTypeCourse:
		var course model.UnifiedCourse
		if err := s.db.WithContext(ctx).First(&course, contentID).Error; err != nil {
			return nil, wrapNotFound(err, contentType, contentID)
		}
		return &ContentInfo{
			ID:             course.ID,
			Title:          course.Title,
			NERDCTopicCode: course.NERDCTopicCode,
			CurriculumTags: decodeStringList(course.CurriculumTags),
			DownloadCount:  course.DownloadCount,
		}, nil

	case model.ContentTypeOER:
		var resource model.OERResource
		if err := s.db.WithContext(ctx).First(&resource, contentID).Error; err != nil {
			return nil, wrapNotFound(err, contentType, contentID)
		}
		return &ContentInfo{
			ID:             resource.ID,
			Title:          resource.Title,
			NERDCTopicCode: resource.NERDCTopicCode,
			CurriculumTags: decodeStringList(resource.CurriculumTags),
			DownloadCount:  resource.DownloadCount,
		}, nil

	case model.ContentTypeUploaded:
		// Contributed content carries free-form tags, not curriculum codes
		var content model.UploadedContent
		if err := s.db.WithContext(ctx).First(&content, contentID).Error; err != nil {
			return nil, wrapNotFound(err, contentType, contentID)
		}
		return &ContentInfo{
			ID:            content.ID,
			Title:         content.Title,
			DownloadCount: content.DownloadCount,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidContentType, contentType)
	}
}

// Snapshot serializes the full current state of a content row. The version
// ledger hashes this to detect content drift.
func (s *ContentStore) Snapshot(ctx context.Context, contentType model.ContentType, contentID uint) ([]byte, error) {
	switch contentType {
	case model.ContentTypeCourse:
		var course model.UnifiedCourse
		if err := s.db.WithContext(ctx).First(&course, contentID).Error; err != nil {
			return nil, wrapNotFound(err, contentType, contentID)
		}
		return json.Marshal(course)

	case model.ContentTypeOER:
		var resource model.OERResource
		if err := s.db.WithContext(ctx).First(&resource, contentID).Error; err != nil {
			return nil, wrapNotFound(err, contentType, contentID)
		}
		return json.Marshal(resource)

	case model.ContentTypeUploaded:
		var content model.UploadedContent
		if err := s.db.WithContext(ctx).First(&content, contentID).Error; err != nil {
			return nil, wrapNotFound(err, contentType, contentID)
		}
		return json.Marshal(content)

	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidContentType, contentType)
	}
}

// IncrementDownloadCount bumps the all-time download counter on the content
// row. The increment happens in SQL so concurrent downloads cannot lose
// updates.
func (s *ContentStore) IncrementDownloadCount(ctx context.Context, contentType model.ContentType, contentID uint) error {
	table, ok := contentTables[contentType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidContentType, contentType)
	}

	result := s.db.WithContext(ctx).Table(table).
		Where("id = ?", contentID).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("failed to increment download count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %d", ErrContentNotFound, contentType, contentID)
	}
	return nil
}

func wrapNotFound(err error, contentType model.ContentType, contentID uint) error {
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("%w: %s %d", ErrContentNotFound, contentType, contentID)
	}
	return fmt.Errorf("failed to fetch %s %d: %w", contentType, contentID, err)
}

func decodeStringList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}
