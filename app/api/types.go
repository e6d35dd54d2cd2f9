package api

import (
	"time"

	"github.com/lysyi3m/course-comb/app/catalog"
	"github.com/lysyi3m/course-comb/app/course"
	"github.com/lysyi3m/course-comb/app/database"
	"github.com/lysyi3m/course-comb/app/tasks"
)

type GeneratorInterface interface {
	Run(courses []*course.Course, buildDate time.Time) (string, error)
}

var _ GeneratorInterface = (*catalog.Generator)(nil)

type Handler struct {
	sourceRepo  database.SourceRepository
	courseRepo  database.CourseRepository
	generator   GeneratorInterface
	sanitizer   *catalog.Sanitizer
	matcher     *catalog.Matcher
	configCache *catalog.ConfigCache
	filterer    *catalog.Filterer
	scheduler   tasks.TaskSchedulerInterface
}

type courseSummary struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	Level          string `json:"level"`
	Thumbnail      string `json:"thumbnail"`
	Duration       string `json:"duration"`
	UpdatedAt      string `json:"updatedAt"`
	InstructorName string `json:"instructorName"`
	TopicCount     int    `json:"topicCount"`
	LessonCount    int    `json:"lessonCount"`
}

func newCourseSummary(c *course.Course) courseSummary {
	return courseSummary{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		Category:       c.Category,
		Level:          c.Level,
		Thumbnail:      c.Thumbnail,
		Duration:       c.Duration,
		UpdatedAt:      c.UpdatedAt,
		InstructorName: c.Instructor.Name,
		TopicCount:     len(c.Topics),
		LessonCount:    c.LessonCount(),
	}
}

// courseDetail shadows the embedded LongDescription with its sanitized form.
type courseDetail struct {
	*course.Course
	LongDescription     string `json:"longDescription"`
	LongDescriptionText string `json:"longDescriptionText"`
	LessonCount         int    `json:"lessonCount"`
}
