package services

import (
	"context"
	"fmt"
	"time"

	"github.com/learnhub-ng/api/model"
	"gorm.io/gorm"
)

// EngagementDelta carries additive counter updates for one engagement bucket.
// Zero fields are left untouched.
type EngagementDelta struct {
	Views       int64
	Downloads   int64
	Completions int64
}

// EngagementService maintains the per-day, per-content engagement buckets.
// Counter increments are pushed down into SQL; that field-level atomicity is
// the only concurrency control here (no application-level locking).
type EngagementService struct {
	db *gorm.DB
}

// NewEngagementService creates a new engagement service
func NewEngagementService(db *gorm.DB) *EngagementService {
	return &EngagementService{db: db}
}

// DayOf truncates a timestamp to UTC midnight. All engagement buckets are
// keyed on this day value.
func DayOf(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// RecordEngagement adds the delta to today's bucket for the content item,
// creating the bucket on the first event of the day.
func (s *EngagementService) RecordEngagement(ctx context.Context, contentType model.ContentType, contentID uint, delta EngagementDelta) error {
	if !contentType.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidContentType, contentType)
	}

	updates := map[string]interface{}{}
	if delta.Views != 0 {
		updates["views"] = gorm.Expr("views + ?", delta.Views)
	}
	if delta.Downloads != 0 {
		updates["downloads"] = gorm.Expr("downloads + ?", delta.Downloads)
	}
	if delta.Completions != 0 {
		updates["completions"] = gorm.Expr("completions + ?", delta.Completions)
	}
	if len(updates) == 0 {
		return nil
	}

	bucket, err := s.findOrCreateBucket(ctx, contentType, contentID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(&model.ContentEngagement{}).
		Where("id = ?", bucket.ID).
		UpdateColumns(updates).Error; err != nil {
		return fmt.Errorf("failed to update engagement bucket: %w", err)
	}
	return nil
}

// RecordRating folds a 1-5 rating into today's running average for the
// content item. Out-of-range ratings are dropped silently so a bad rating
// never fails the caller's primary operation.
func (s *EngagementService) RecordRating(ctx context.Context, contentType model.ContentType, contentID uint, rating int) error {
	if !contentType.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidContentType, contentType)
	}
	if rating < 1 || rating > 5 {
		return nil
	}

	bucket, err := s.findOrCreateBucket(ctx, contentType, contentID)
	if err != nil {
		return err
	}

	newAvg := (bucket.AvgRating*float64(bucket.RatingCount) + float64(rating)) / float64(bucket.RatingCount+1)

	if err := s.db.WithContext(ctx).Model(&model.ContentEngagement{}).
		Where("id = ?", bucket.ID).
		UpdateColumns(map[string]interface{}{
			"avg_rating":   newAvg,
			"rating_count": bucket.RatingCount + 1,
		}).Error; err != nil {
		return fmt.Errorf("failed to record rating: %w", err)
	}
	return nil
}

// DailyEngagement returns the engagement buckets for a content item since
// the given day, oldest first.
func (s *EngagementService) DailyEngagement(ctx context.Context, contentType model.ContentType, contentID uint, since time.Time) ([]model.ContentEngagement, error) {
	var buckets []model.ContentEngagement
	err := s.db.WithContext(ctx).
		Where("content_id = ? AND content_type = ? AND date >= ?", contentID, contentType, DayOf(since)).
		Order("date ASC").
		Find(&buckets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch engagement buckets: %w", err)
	}
	return buckets, nil
}

func (s *EngagementService) findOrCreateBucket(ctx context.Context, contentType model.ContentType, contentID uint) (*model.ContentEngagement, error) {
	today := DayOf(time.Now())

	bucket := model.ContentEngagement{
		ContentID:   contentID,
		ContentType: contentType,
		Date:        today,
	}
	err := s.db.WithContext(ctx).
		Where("content_id = ? AND content_type = ? AND date = ?", contentID, contentType, today).
		FirstOrCreate(&bucket).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find or create engagement bucket: %w", err)
	}
	return &bucket, nil
}
