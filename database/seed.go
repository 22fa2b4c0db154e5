package database

import (
	"encoding/json"
	"log"

	"github.com/learnhub-ng/api/model"
	"github.com/learnhub-ng/api/utils/auth"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seed populates an empty database with a demo admin user and a small
// starter catalog so the API is browsable before the first LMS sync runs.
func Seed(db *gorm.DB) error {
	var userCount int64
	if err := db.Model(&model.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	if userCount == 0 {
		hash, err := auth.HashPassword("admin12345")
		if err != nil {
			return err
		}

		admin := model.User{
			Email:        "admin@learnhub.ng",
			PasswordHash: hash,
			Name:         "Platform Admin",
			Role:         model.RoleAdmin,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		log.Println("Seeded admin user:", admin.Email)
	}

	var courseCount int64
	if err := db.Model(&model.UnifiedCourse{}).Count(&courseCount).Error; err != nil {
		return err
	}

	if courseCount == 0 {
		courses := []model.UnifiedCourse{
			{
				OriginalID:     "moodle-101",
				Title:          "Senior Secondary Mathematics",
				ShortTitle:     "SS Maths",
				Description:    "Algebra, geometry and trigonometry aligned with the SS1-SS3 syllabus.",
				Source:         model.CourseSourceMoodle,
				Level:          model.CourseLevelSecondary,
				Language:       "en",
				NERDCTopicCode: "NERDC.MTH.SS1",
				CurriculumTags: mustJSON([]string{"NERDC", "WAEC"}),
				Subjects:       mustJSON([]string{"Mathematics"}),
			},
			{
				OriginalID:     "edx-cs50-ng",
				Title:          "Introduction to Computer Science",
				ShortTitle:     "Intro CS",
				Description:    "Foundations of computing for first-year university students.",
				Source:         model.CourseSourceOpenedX,
				Level:          model.CourseLevelUniversity,
				Language:       "en",
				Subjects:       mustJSON([]string{"Computer Science"}),
				CurriculumTags: mustJSON([]string{"NERDC"}),
			},
		}
		if err := db.Create(&courses).Error; err != nil {
			return err
		}
		log.Printf("Seeded %d unified courses", len(courses))
	}

	var oerCount int64
	if err := db.Model(&model.OERResource{}).Count(&oerCount).Error; err != nil {
		return err
	}

	if oerCount == 0 {
		resources := []model.OERResource{
			{
				Title:          "Photosynthesis Explained",
				Description:    "Short explainer video on photosynthesis for SS2 Biology.",
				Provider:       "Khan Academy",
				URL:            "https://www.khanacademy.org/science/biology/photosynthesis",
				Type:           model.OERTypeVideo,
				Language:       "en",
				License:        "CC BY-NC-SA",
				Subjects:       mustJSON([]string{"Biology"}),
				CurriculumTags: mustJSON([]string{"NERDC", "NECO"}),
				NERDCTopicCode: "NERDC.BIO.SS2.04",
			},
			{
				Title:       "Hausa Reading Primer",
				Description: "Beginner reading exercises in Hausa.",
				Provider:    "African Storybook",
				URL:         "https://www.africanstorybook.org/hausa-primer",
				Type:        model.OERTypeText,
				Language:    "ha",
				License:     "CC BY",
				Subjects:    mustJSON([]string{"Languages"}),
			},
		}
		if err := db.Create(&resources).Error; err != nil {
			return err
		}
		log.Printf("Seeded %d OER resources", len(resources))
	}

	return nil
}

func mustJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(b)
}
