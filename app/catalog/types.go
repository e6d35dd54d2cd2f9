package catalog

import (
	"github.com/lysyi3m/course-comb/app/course"
)

// Source types

const (
	SourceTypeDocument = "document" // url points at a single course document
	SourceTypeCatalog  = "catalog"  // url points at an RSS/Atom feed listing course documents
)

type Entry struct {
	Course      *course.Course
	DocumentURL string

	ContentHash  string
	IsFiltered   bool
	FilterReason string
}

type DocumentRef struct {
	URL   string
	Title string
	GUID  string
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Type     string         `yaml:"type"`
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	MaxCourses      int  `yaml:"max_courses"`      // documents fetched per catalog run
	Timeout         int  `yaml:"timeout"`          // seconds
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
