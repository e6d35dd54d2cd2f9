package database

import (
	"time"

	"github.com/lysyi3m/course-comb/app/course"
)

type CourseEntry struct {
	Course      *course.Course
	DocumentURL string

	ContentHash  string
	IsFiltered   bool
	FilterReason string
}

type SourceRepository interface {
	GetSource(sourceName string) (*Source, error)
	GetSourceCount() (int, error)

	UpsertSource(sourceName, sourceURL, sourceType string) error
	UpdateFetchStatus(sourceName string, fetchedAt time.Time, nextFetch time.Time, lastError string) error
}

type CourseRepository interface {
	GetCourse(courseID string) (*StoredCourse, error)
	GetVisibleCourses(limit int) ([]StoredCourse, error)
	GetAllCourses(sourceName string) ([]StoredCourse, error)
	GetCourseCount() (int, error)
	GetCourseStats(sourceName string) (int, int, int, error)

	UpsertCourse(sourceName string, entry CourseEntry) (bool, error)
	UpdateCourseFilterStatus(courseID string, isFiltered bool, reason string) error
}
