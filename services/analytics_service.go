package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/learnhub-ng/api/model"
	"github.com/learnhub-ng/api/utils/cache"
	"gorm.io/gorm"
)

const engagementReportCacheTTL = 10 * time.Minute

// AnalyticsService builds learning and engagement reports on top of the
// records written by the activity processor.
type AnalyticsService struct {
	db         *gorm.DB
	content    *ContentStore
	engagement *EngagementService
	cache      *cache.RedisCache
}

// NewAnalyticsService creates a new analytics service. The cache is optional;
// without it every report is rebuilt from the database.
func NewAnalyticsService(db *gorm.DB, content *ContentStore, engagement *EngagementService, redisCache *cache.RedisCache) *AnalyticsService {
	return &AnalyticsService{
		db:         db,
		content:    content,
		engagement: engagement,
		cache:      redisCache,
	}
}

// ActivityTypeAverage is the per-activity-type score summary for a user
type ActivityTypeAverage struct {
	ActivityType model.OutcomeActivityType `json:"activity_type"`
	AvgScore     float64                   `json:"avg_score"`
	Count        int64                     `json:"count"`
}

// UserLearningReport summarizes a user's recent learning activity
type UserLearningReport struct {
	RecentOutcomes []model.LearningOutcome `json:"recent_outcomes"`
	AverageScores  []ActivityTypeAverage   `json:"average_scores"`
}

// GetUserLearningAnalytics returns the user's ten most recent outcomes and
// average percentages grouped by activity type.
func (s *AnalyticsService) GetUserLearningAnalytics(ctx context.Context, userID uint) (*UserLearningReport, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: %d", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	report := &UserLearningReport{}

	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("activity_date DESC").
		Limit(10).
		Find(&report.RecentOutcomes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent outcomes: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&model.LearningOutcome{}).
		Select("activity_type, AVG(percentage) AS avg_score, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("activity_type").
		Scan(&report.AverageScores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate scores: %w", err)
	}

	return report, nil
}

// EngagementTotals sums the counters across a report window
type EngagementTotals struct {
	Views       int64 `json:"views"`
	Downloads   int64 `json:"downloads"`
	Completions int64 `json:"completions"`
}

// RatingSummary aggregates daily rating averages across a report window
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// ContentEngagementReport is the 30-day engagement view of one content item
type ContentEngagementReport struct {
	DailyEngagement []model.ContentEngagement `json:"daily_engagement"`
	Totals          EngagementTotals          `json:"totals"`
	CompletionRate  float64                   `json:"completion_rate"`
	Rating          RatingSummary             `json:"rating"`
}

// GetContentEngagement builds the last-30-days engagement report for a
// content item. The rating average is the plain mean of the daily averages,
// matching how clients already chart it.
func (s *AnalyticsService) GetContentEngagement(ctx context.Context, contentType model.ContentType, contentID uint) (*ContentEngagementReport, error) {
	cacheKey := engagementReportCacheKey(contentType, contentID)
	if s.cache != nil {
		var cached ContentEngagementReport
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	// Validate content exists
	if _, err := s.content.Get(ctx, contentType, contentID); err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -30)
	buckets, err := s.engagement.DailyEngagement(ctx, contentType, contentID, since)
	if err != nil {
		return nil, err
	}

	report := &ContentEngagementReport{DailyEngagement: buckets}

	var ratingSum float64
	for _, day := range buckets {
		report.Totals.Views += day.Views
		report.Totals.Downloads += day.Downloads
		report.Totals.Completions += day.Completions
		ratingSum += day.AvgRating
		report.Rating.Count += day.RatingCount
	}

	if report.Totals.Views > 0 {
		report.CompletionRate = float64(report.Totals.Completions) / float64(report.Totals.Views) * 100
	}
	if len(buckets) > 0 {
		report.Rating.Average = ratingSum / float64(len(buckets))
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, report, engagementReportCacheTTL); err != nil {
			log.Printf("Failed to cache engagement report for %s %d: %v", contentType, contentID, err)
		}
	}

	return report, nil
}

// InvalidateEngagementReport drops the cached report for a content item so
// the next read reflects a fresh engagement write.
func (s *AnalyticsService) InvalidateEngagementReport(ctx context.Context, contentType model.ContentType, contentID uint) {
	if s.cache == nil {
		return
	}
	key := engagementReportCacheKey(contentType, contentID)
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Printf("Failed to invalidate engagement report cache %s: %v", key, err)
	}
}

func engagementReportCacheKey(contentType model.ContentType, contentID uint) string {
	return fmt.Sprintf("engagement_report:%s:%d", contentType, contentID)
}
