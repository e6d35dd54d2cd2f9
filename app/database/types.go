package database

import (
	"time"

	"github.com/lysyi3m/course-comb/app/course"
)

type Source struct {
	Name          string // Configuration source identifier derived from filename
	URL           string
	Type          string // document or catalog
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type StoredCourse struct {
	Course       *course.Course
	SourceName   string
	DocumentURL  string
	ContentHash  string
	IsFiltered   bool
	FilterReason string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
