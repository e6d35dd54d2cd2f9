package catalog

import (
	"fmt"
	"strings"

	"github.com/lysyi3m/course-comb/app/course"
)

var filterFields = map[string]bool{
	"title":       true,
	"description": true,
	"category":    true,
	"level":       true,
	"instructor":  true,
}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

func (f *Filterer) Run(entries []Entry, sourceConfig *Config) []Entry {
	filtered := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		entry.IsFiltered, entry.FilterReason = f.applyFilters(entry.Course, sourceConfig.Filters)
		filtered = append(filtered, entry)
	}

	return filtered
}

func (f *Filterer) applyFilters(c *course.Course, filters []ConfigFilter) (bool, string) {
	if c == nil {
		return false, ""
	}

	for _, filter := range filters {
		value := f.getFieldValue(c, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(fold(value), fold(pattern))
}

func (f *Filterer) getFieldValue(c *course.Course, field string) string {
	switch field {
	case "title":
		return c.Title
	case "description":
		return c.Description
	case "category":
		return c.Category
	case "level":
		return c.Level
	case "instructor":
		return c.Instructor.Name
	default:
		return ""
	}
}
