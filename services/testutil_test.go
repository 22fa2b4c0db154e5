package services

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/learnhub-ng/api/model"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a named in-memory SQLite database so every connection in
// the pool sees the same data.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.UnifiedCourse{},
		&model.OERResource{},
		&model.UploadedContent{},
		&model.ContentVote{},
		&model.Comment{},
		&model.OfflineActivity{},
		&model.ContentVersion{},
		&model.LearningOutcome{},
		&model.ContentEngagement{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()

	user := model.User{
		Email:        fmt.Sprintf("%s@test.learnhub.ng", t.Name()),
		PasswordHash: "not-a-real-hash",
		Name:         "Test Student",
		Role:         model.RoleStudent,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

func createTestCourse(t *testing.T, db *gorm.DB) *model.UnifiedCourse {
	t.Helper()

	course := model.UnifiedCourse{
		OriginalID:     "moodle-test-1",
		Title:          "Senior Secondary Physics",
		ShortTitle:     "SS Physics",
		Source:         model.CourseSourceMoodle,
		Level:          model.CourseLevelSecondary,
		Language:       "en",
		NERDCTopicCode: "NERDC.PHY.SS2.01",
		CurriculumTags: mustJSONList(t, []string{"NERDC", "WAEC"}),
		Subjects:       mustJSONList(t, []string{"Physics"}),
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("failed to create test course: %v", err)
	}
	return &course
}

func createTestOER(t *testing.T, db *gorm.DB) *model.OERResource {
	t.Helper()

	resource := model.OERResource{
		Title:    "Fractions Practice Quiz",
		Provider: "Siyavula",
		URL:      "https://example.org/fractions",
		Type:     model.OERTypeQuiz,
		Language: "en",
		License:  "CC BY",
	}
	if err := db.Create(&resource).Error; err != nil {
		t.Fatalf("failed to create test resource: %v", err)
	}
	return &resource
}

func mustJSONList(t *testing.T, v []string) datatypes.JSON {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal test fixture: %v", err)
	}
	return datatypes.JSON(b)
}

func quizDetails(answers int) model.ActivityDetails {
	details := model.ActivityDetails{}
	for i := 0; i < answers; i++ {
		details.QuizAnswers = append(details.QuizAnswers, model.QuizAnswer{
			QuestionID:     fmt.Sprintf("q%d", i+1),
			SelectedOption: "a",
		})
	}
	return details
}

func newSyncServiceForTest(db *gorm.DB) *OfflineSyncService {
	content := NewContentStore(db)
	engagement := NewEngagementService(db)
	return NewOfflineSyncService(db, content, engagement, nil)
}
