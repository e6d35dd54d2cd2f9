package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/lysyi3m/course-comb/app/course"
)

// fold lowercases s and strips combining marks so "Résumé" matches "resume".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Query selects courses for a listing. Empty fields match everything.
type Query struct {
	Text     string
	Category string
	Level    string
}

func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Text) == "" && q.Category == "" && q.Level == ""
}

type Matcher struct{}

func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match reports whether c satisfies q. Every whitespace-separated term of
// q.Text must appear in the title, description, category or instructor name;
// category and level compare whole values.
func (m *Matcher) Match(c *course.Course, q Query) bool {
	if c == nil {
		return false
	}

	if q.Category != "" && fold(c.Category) != fold(q.Category) {
		return false
	}
	if q.Level != "" && fold(c.Level) != fold(q.Level) {
		return false
	}

	terms := strings.Fields(fold(q.Text))
	if len(terms) == 0 {
		return true
	}

	haystack := fold(strings.Join([]string{c.Title, c.Description, c.Category, c.Instructor.Name}, " "))
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}

	return true
}

// Filter returns the courses matching q, keeping their order.
func (m *Matcher) Filter(courses []*course.Course, q Query) []*course.Course {
	if q.IsEmpty() {
		return courses
	}

	matched := make([]*course.Course, 0, len(courses))
	for _, c := range courses {
		if m.Match(c, q) {
			matched = append(matched, c)
		}
	}
	return matched
}
