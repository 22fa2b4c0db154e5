package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/learnhub-ng/api/model"
)

func TestDayOfTruncatesToUTCMidnight(t *testing.T) {
	lagos := time.FixedZone("WAT", 60*60)
	stamp := time.Date(2026, 3, 14, 0, 30, 0, 0, lagos) // 23:30 UTC the previous day

	day := DayOf(stamp)
	want := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Errorf("expected %v, got %v", want, day)
	}
}

func TestRecordEngagementReusesDailyBucket(t *testing.T) {
	db := newTestDB(t)
	service := NewEngagementService(db)
	course := createTestCourse(t, db)

	ctx := context.Background()
	if err := service.RecordEngagement(ctx, model.ContentTypeCourse, course.ID, EngagementDelta{Views: 1}); err != nil {
		t.Fatalf("RecordEngagement failed: %v", err)
	}
	if err := service.RecordEngagement(ctx, model.ContentTypeCourse, course.ID, EngagementDelta{Views: 1, Downloads: 1}); err != nil {
		t.Fatalf("RecordEngagement failed: %v", err)
	}

	var buckets []model.ContentEngagement
	if err := db.Find(&buckets).Error; err != nil {
		t.Fatalf("failed to load buckets: %v", err)
	}
	if len(buckets) != 1 {
		t.Fatalf("expected a single bucket for the day, got %d", len(buckets))
	}
	if buckets[0].Views != 2 || buckets[0].Downloads != 1 {
		t.Errorf("expected views=2 downloads=1, got views=%d downloads=%d", buckets[0].Views, buckets[0].Downloads)
	}
	if !buckets[0].Date.Equal(DayOf(time.Now())) {
		t.Errorf("bucket date %v is not today's UTC midnight", buckets[0].Date)
	}
}

func TestRecordEngagementZeroDeltaIsNoop(t *testing.T) {
	db := newTestDB(t)
	service := NewEngagementService(db)
	course := createTestCourse(t, db)

	if err := service.RecordEngagement(context.Background(), model.ContentTypeCourse, course.ID, EngagementDelta{}); err != nil {
		t.Fatalf("RecordEngagement failed: %v", err)
	}

	var count int64
	db.Model(&model.ContentEngagement{}).Count(&count)
	if count != 0 {
		t.Errorf("zero delta must not create a bucket, found %d", count)
	}
}

func TestRecordRatingRunningAverage(t *testing.T) {
	db := newTestDB(t)
	service := NewEngagementService(db)
	course := createTestCourse(t, db)

	ctx := context.Background()
	if err := service.RecordRating(ctx, model.ContentTypeCourse, course.ID, 4); err != nil {
		t.Fatalf("RecordRating failed: %v", err)
	}
	if err := service.RecordRating(ctx, model.ContentTypeCourse, course.ID, 5); err != nil {
		t.Fatalf("RecordRating failed: %v", err)
	}

	var bucket model.ContentEngagement
	if err := db.First(&bucket).Error; err != nil {
		t.Fatalf("expected a bucket: %v", err)
	}
	if bucket.RatingCount != 2 {
		t.Errorf("expected rating count 2, got %d", bucket.RatingCount)
	}
	if math.Abs(bucket.AvgRating-4.5) > 1e-9 {
		t.Errorf("expected average 4.5, got %v", bucket.AvgRating)
	}
}

func TestRecordRatingOutOfRangeIgnored(t *testing.T) {
	db := newTestDB(t)
	service := NewEngagementService(db)
	course := createTestCourse(t, db)

	ctx := context.Background()
	for _, rating := range []int{0, 6, -3} {
		if err := service.RecordRating(ctx, model.ContentTypeCourse, course.ID, rating); err != nil {
			t.Fatalf("out-of-range rating %d must not error: %v", rating, err)
		}
	}

	var count int64
	db.Model(&model.ContentEngagement{}).Count(&count)
	if count != 0 {
		t.Errorf("out-of-range ratings must not create buckets, found %d", count)
	}

	if err := service.RecordRating(ctx, model.ContentTypeCourse, course.ID, 3); err != nil {
		t.Fatalf("RecordRating failed: %v", err)
	}
	if err := service.RecordRating(ctx, model.ContentTypeCourse, course.ID, 9); err != nil {
		t.Fatalf("RecordRating failed: %v", err)
	}

	var bucket model.ContentEngagement
	if err := db.First(&bucket).Error; err != nil {
		t.Fatalf("expected a bucket: %v", err)
	}
	if bucket.RatingCount != 1 || bucket.AvgRating != 3 {
		t.Errorf("expected count=1 avg=3 after ignoring 9, got count=%d avg=%v", bucket.RatingCount, bucket.AvgRating)
	}
}

func TestRecordEngagementInvalidType(t *testing.T) {
	db := newTestDB(t)
	service := NewEngagementService(db)

	err := service.RecordEngagement(context.Background(), model.ContentType("lesson"), 1, EngagementDelta{Views: 1})
	if err == nil {
		t.Fatal("expected an error for invalid content type")
	}
}
