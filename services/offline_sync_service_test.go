package services

import (
	"context"
	"errors"
	"testing"

	"github.com/learnhub-ng/api/model"
	"gorm.io/gorm"
)

func TestSubmitActivitiesEmptyBatch(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)
	user := createTestUser(t, db)

	_, err := service.SubmitActivities(context.Background(), user.ID, nil)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}

	var count int64
	db.Model(&model.OfflineActivity{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no activities persisted, found %d", count)
	}
}

func TestSubmitActivitiesReassignsForeignUser(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)
	user := createTestUser(t, db)
	course := createTestCourse(t, db)

	activities, err := service.SubmitActivities(context.Background(), user.ID, []ActivityInput{
		{
			UserID:       user.ID + 42,
			ActivityType: model.ActivityTypeContentView,
			ContentID:    course.ID,
			ContentType:  model.ContentTypeCourse,
		},
	})
	if err != nil {
		t.Fatalf("SubmitActivities failed: %v", err)
	}

	if activities[0].UserID != user.ID {
		t.Errorf("expected activity reassigned to user %d, got %d", user.ID, activities[0].UserID)
	}
	if activities[0].SyncStatus != model.SyncStatusPending {
		t.Errorf("expected pending status, got %s", activities[0].SyncStatus)
	}
}

func TestQuizAttemptScoring(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)
	user := createTestUser(t, db)
	course := createTestCourse(t, db)

	result, err := service.BatchSyncActivities(context.Background(), user.ID, []ActivityInput{
		{
			ActivityType: model.ActivityTypeQuizAttempt,
			ContentID:    course.ID,
			ContentType:  model.ContentTypeCourse,
			Details:      quizDetails(10),
		},
	})
	if err != nil {
		t.Fatalf("BatchSyncActivities failed: %v", err)
	}
	if result.Synced != 1 || result.Failed != 0 {
		t.Fatalf("expected 1 synced / 0 failed, got %d / %d", result.Synced, result.Failed)
	}

	var outcome model.LearningOutcome
	if err := db.First(&outcome).Error; err != nil {
		t.Fatalf("expected a learning outcome: %v", err)
	}
	if outcome.Score != 7 {
		t.Errorf("expected score 7 for 10 answers, got %v", outcome.Score)
	}
	if outcome.MaxScore != 10 {
		t.Errorf("expected max score 10, got %v", outcome.MaxScore)
	}
	if outcome.Percentage != 70 {
		t.Errorf("expected percentage 70, got %v", outcome.Percentage)
	}
	if outcome.CompetencyLevel != model.CompetencyAdvanced {
		t.Errorf("expected advanced competency at 70%%, got %s", outcome.CompetencyLevel)
	}
	if outcome.Topic != course.Title {
		t.Errorf("expected topic %q, got %q", course.Title, outcome.Topic)
	}
	if outcome.CurriculumTag != "NERDC" {
		t.Errorf("expected first curriculum tag NERDC, got %q", outcome.CurriculumTag)
	}
	if outcome.NERDCCompetencyCode != course.NERDCTopicCode {
		t.Errorf("expected competency code %q, got %q", course.NERDCTopicCode, outcome.NERDCCompetencyCode)
	}

	var activity model.OfflineActivity
	if err := db.First(&activity).Error; err != nil {
		t.Fatalf("failed to load activity: %v", err)
	}
	if activity.SyncStatus != model.SyncStatusSynced {
		t.Errorf("expected synced status, got %s", activity.SyncStatus)
	}
	if activity.SyncedAt == nil {
		t.Error("expected synced_at to be set")
	}

	var bucket model.ContentEngagement
	if err := db.First(&bucket).Error; err != nil {
		t.Fatalf("expected an engagement bucket: %v", err)
	}
	if bucket.Completions != 1 {
		t.Errorf("expected 1 completion, got %d", bucket.Completions)
	}
}

func TestQuizAttemptWithoutAnswersFails(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)
	user := createTestUser(t, db)
	course := createTestCourse(t, db)

	result, err := service.BatchSyncActivities(context.Background(), user.ID, []ActivityInput{
		{
			ActivityType: model.ActivityTypeQuizAttempt,
			ContentID:    course.ID,
			ContentType:  model.ContentTypeCourse,
		},
	})
	if err != nil {
		t.Fatalf("batch-level error on item failure: %v", err)
	}
	if result.Synced != 0 || result.Failed != 1 {
		t.Fatalf("expected 0 synced / 1 failed, got %d / %d", result.Synced, result.Failed)
	}

	var activity model.OfflineActivity
	if err := db.First(&activity).Error; err != nil {
		t.Fatalf("failed to load activity: %v", err)
	}
	if activity.SyncStatus != model.SyncStatusFailed {
		t.Errorf("expected failed status, got %s", activity.SyncStatus)
	}
	if activity.SyncedAt != nil {
		t.Error("failed activity must not carry a synced_at timestamp")
	}
}

func TestQuizAttemptMissingContentFails(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)
	user := createTestUser(t, db)

	result, err := service.BatchSyncActivities(context.Background(), user.ID, []ActivityInput{
		{
			ActivityType: model.ActivityTypeQuizAttempt,
			ContentID:    9999,
			ContentType:  model.ContentTypeCourse,
			Details:      quizDetails(4),
		},
	})
	if err != nil {
		t.Fatalf("batch-level error on item failure: %v", err)
	}
	if result.Failed != 1 {
		t.Fatalf("expected 1 failed, got %d", result.Failed)
	}

	var outcomes int64
	db.Model(&model.LearningOutcome{}).Count(&outcomes)
	if outcomes != 0 {
		t.Errorf("expected no learning outcome for missing content, found %d", outcomes)
	}
}

func TestUnknownActivityTypeFails(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)
	user := createTestUser(t, db)
	course := createTestCourse(t, db)

	activity := model.OfflineActivity{
		UserID:       user.ID,
		ActivityType: model.ActivityType("badge_earned"),
		ContentID:    course.ID,
		ContentType:  model.ContentTypeCourse,
		SyncStatus:   model.SyncStatusPending,
	}
	if err := db.Create(&activity).Error; err != nil {
		t.Fatalf("failed to seed activity: %v", err)
	}

	result, err := service.SyncUserActivities(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("SyncUserActivities failed: %v", err)
	}
	if result.Synced != 0 || result.Failed != 1 {
		t.Fatalf("expected 0 synced / 1 failed, got %d / %d", result.Synced, result.Failed)
	}

	db.First(&activity, activity.ID)
	if activity.SyncStatus != model.SyncStatusFailed {
		t.Errorf("expected failed status for unknown type, got %s", activity.SyncStatus)
	}
}

func TestBatchFailureIsolation(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)
	user := createTestUser(t, db)
	course := createTestCourse(t, db)

	result, err := service.BatchSyncActivities(context.Background(), user.ID, []ActivityInput{
		{
			ActivityType: model.ActivityTypeContentView,
			ContentID:    course.ID,
			ContentType:  model.ContentTypeCourse,
		},
		{
			// No answers, fails processing
			ActivityType: model.ActivityTypeQuizAttempt,
			ContentID:    course.ID,
			ContentType:  model.ContentTypeCourse,
		},
		{
			ActivityType: model.ActivityTypeDownload,
			ContentID:    course.ID,
			ContentType:  model.ContentTypeCourse,
		},
	})
	if err != nil {
		t.Fatalf("BatchSyncActivities failed: %v", err)
	}
	if result.Synced != 2 || result.Failed != 1 {
		t.Fatalf("expected 2 synced / 1 failed, got %d / %d", result.Synced, result.Failed)
	}

	var statuses []model.OfflineActivity
	if err := db.Order("id ASC").Find(&statuses).Error; err != nil {
		t.Fatalf("failed to load activities: %v", err)
	}
	want := []model.SyncStatus{model.SyncStatusSynced, model.SyncStatusFailed, model.SyncStatusSynced}
	for i, activity := range statuses {
		if activity.SyncStatus != want[i] {
			t.Errorf("activity %d: expected %s, got %s", i, want[i], activity.SyncStatus)
		}
	}
}

func TestDownloadIncrementsAllTimeCounter(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)
	user := createTestUser(t, db)
	resource := createTestOER(t, db)

	result, err := service.BatchSyncActivities(context.Background(), user.ID, []ActivityInput{
		{
			ActivityType: model.ActivityTypeDownload,
			ContentID:    resource.ID,
			ContentType:  model.ContentTypeOER,
			Details:      model.ActivityDetails{DownloadCompleted: true},
		},
	})
	if err != nil {
		t.Fatalf("BatchSyncActivities failed: %v", err)
	}
	if result.Synced != 1 {
		t.Fatalf("expected 1 synced, got %d", result.Synced)
	}

	db.First(resource, resource.ID)
	if resource.DownloadCount != 1 {
		t.Errorf("expected all-time download count 1, got %d", resource.DownloadCount)
	}

	var bucket model.ContentEngagement
	if err := db.First(&bucket).Error; err != nil {
		t.Fatalf("expected an engagement bucket: %v", err)
	}
	if bucket.Downloads != 1 {
		t.Errorf("expected 1 download in today's bucket, got %d", bucket.Downloads)
	}
}

func TestContentViewCountsView(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)
	user := createTestUser(t, db)
	course := createTestCourse(t, db)

	_, err := service.BatchSyncActivities(context.Background(), user.ID, []ActivityInput{
		{
			ActivityType: model.ActivityTypeContentView,
			ContentID:    course.ID,
			ContentType:  model.ContentTypeCourse,
			Details:      model.ActivityDetails{ViewDuration: 120},
		},
	})
	if err != nil {
		t.Fatalf("BatchSyncActivities failed: %v", err)
	}

	var bucket model.ContentEngagement
	if err := db.First(&bucket).Error; err != nil {
		t.Fatalf("expected an engagement bucket: %v", err)
	}
	if bucket.Views != 1 {
		t.Errorf("expected 1 view, got %d", bucket.Views)
	}
}

func TestCheckContentUpdatesNoVersions(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)
	course := createTestCourse(t, db)

	check, err := service.CheckContentUpdates(context.Background(), model.ContentTypeCourse, course.ID, "")
	if err != nil {
		t.Fatalf("CheckContentUpdates failed: %v", err)
	}
	if check.NeedsUpdate {
		t.Error("content without versions must never need an update")
	}
}

func TestCheckContentUpdatesEmptyClientHash(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)
	course := createTestCourse(t, db)

	version, err := service.CreateContentVersion(context.Background(), model.ContentTypeCourse, course.ID, []string{"initial import"}, nil)
	if err != nil {
		t.Fatalf("CreateContentVersion failed: %v", err)
	}

	check, err := service.CheckContentUpdates(context.Background(), model.ContentTypeCourse, course.ID, "")
	if err != nil {
		t.Fatalf("CheckContentUpdates failed: %v", err)
	}
	if !check.NeedsUpdate {
		t.Error("client without a hash must be told to update")
	}
	if check.LatestVersionHash != version.VersionHash {
		t.Errorf("expected latest hash %q, got %q", version.VersionHash, check.LatestVersionHash)
	}
}

func TestCheckContentUpdatesHashComparison(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)
	course := createTestCourse(t, db)

	version, err := service.CreateContentVersion(context.Background(), model.ContentTypeCourse, course.ID, []string{"initial import"}, nil)
	if err != nil {
		t.Fatalf("CreateContentVersion failed: %v", err)
	}

	check, err := service.CheckContentUpdates(context.Background(), model.ContentTypeCourse, course.ID, version.VersionHash)
	if err != nil {
		t.Fatalf("CheckContentUpdates failed: %v", err)
	}
	if check.NeedsUpdate {
		t.Error("matching hash must not need an update")
	}

	check, err = service.CheckContentUpdates(context.Background(), model.ContentTypeCourse, course.ID, "deadbeef")
	if err != nil {
		t.Fatalf("CheckContentUpdates failed: %v", err)
	}
	if !check.NeedsUpdate {
		t.Error("stale hash must need an update")
	}
}

func TestCreateContentVersionSequence(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)
	course := createTestCourse(t, db)

	first, err := service.CreateContentVersion(context.Background(), model.ContentTypeCourse, course.ID, []string{"initial import"}, nil)
	if err != nil {
		t.Fatalf("CreateContentVersion failed: %v", err)
	}
	if first.VersionNumber != 1 {
		t.Errorf("expected first version number 1, got %d", first.VersionNumber)
	}

	if err := db.Model(course).Update("title", "Senior Secondary Physics (Revised)").Error; err != nil {
		t.Fatalf("failed to update course: %v", err)
	}

	second, err := service.CreateContentVersion(context.Background(), model.ContentTypeCourse, course.ID, []string{"title revised"}, nil)
	if err != nil {
		t.Fatalf("CreateContentVersion failed: %v", err)
	}
	if second.VersionNumber != 2 {
		t.Errorf("expected second version number 2, got %d", second.VersionNumber)
	}
	if second.VersionHash == first.VersionHash {
		t.Error("expected a different hash after the content changed")
	}
}

func TestCreateContentVersionMissingContent(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)

	_, err := service.CreateContentVersion(context.Background(), model.ContentTypeCourse, 9999, []string{"x"}, nil)
	if !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

func TestSyncedCountRequiresStatusWrite(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)
	user := createTestUser(t, db)
	course := createTestCourse(t, db)

	_, err := service.SubmitActivities(context.Background(), user.ID, []ActivityInput{
		{
			ActivityType: model.ActivityTypeContentView,
			ContentID:    course.ID,
			ContentType:  model.ContentTypeCourse,
		},
	})
	if err != nil {
		t.Fatalf("SubmitActivities failed: %v", err)
	}

	// Reject only the write that flips the status to synced, so the
	// failure-path write still lands
	err = db.Callback().Update().Before("gorm:update").Register("reject_synced_write", func(tx *gorm.DB) {
		if dest, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			if dest["sync_status"] == model.SyncStatusSynced {
				tx.AddError(errors.New("simulated status write failure"))
			}
		}
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}

	result, err := service.SyncUserActivities(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("SyncUserActivities failed: %v", err)
	}
	if result.Synced != 0 || result.Failed != 1 {
		t.Fatalf("expected 0 synced / 1 failed when the status write is lost, got %d / %d", result.Synced, result.Failed)
	}

	var activity model.OfflineActivity
	if err := db.First(&activity).Error; err != nil {
		t.Fatalf("failed to load activity: %v", err)
	}
	if activity.SyncStatus == model.SyncStatusSynced {
		t.Errorf("activity must not read synced when the status write failed, got %s", activity.SyncStatus)
	}
	if activity.SyncedAt != nil {
		t.Error("activity must not carry a synced_at timestamp")
	}
}

func TestCheckContentUpdatesInvalidType(t *testing.T) {
	db := newTestDB(t)
	service := newSyncServiceForTest(db)

	_, err := service.CheckContentUpdates(context.Background(), model.ContentType("lesson"), 1, "")
	if !errors.Is(err, ErrInvalidContentType) {
		t.Fatalf("expected ErrInvalidContentType, got %v", err)
	}
}
