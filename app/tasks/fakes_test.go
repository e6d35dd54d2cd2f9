package tasks

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/course-comb/app/database"
)

type fakeSourceRepo struct {
	mu      sync.Mutex
	sources map[string]*database.Source
}

func newFakeSourceRepo() *fakeSourceRepo {
	return &fakeSourceRepo{sources: make(map[string]*database.Source)}
}

func (r *fakeSourceRepo) GetSource(sourceName string) (*database.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sources[sourceName], nil
}

func (r *fakeSourceRepo) GetSourceCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sources), nil
}

func (r *fakeSourceRepo) UpsertSource(sourceName, sourceURL, sourceType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	source, ok := r.sources[sourceName]
	if !ok {
		source = &database.Source{Name: sourceName, CreatedAt: time.Now()}
		r.sources[sourceName] = source
	}
	source.URL = sourceURL
	source.Type = sourceType
	return nil
}

func (r *fakeSourceRepo) UpdateFetchStatus(sourceName string, fetchedAt time.Time, nextFetch time.Time, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	source, ok := r.sources[sourceName]
	if !ok {
		return fmt.Errorf("source not found: %s", sourceName)
	}
	source.LastFetchedAt = &fetchedAt
	source.NextFetchAt = &nextFetch
	source.LastError = lastError
	return nil
}

type fakeCourseRepo struct {
	mu      sync.Mutex
	courses map[string]*database.StoredCourse
	order   []string
	failIDs map[string]bool // UpsertCourse fails for these course ids
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{
		courses: make(map[string]*database.StoredCourse),
		failIDs: make(map[string]bool),
	}
}

func (r *fakeCourseRepo) GetCourse(courseID string) (*database.StoredCourse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.courses[courseID], nil
}

func (r *fakeCourseRepo) GetVisibleCourses(limit int) ([]database.StoredCourse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []database.StoredCourse
	for _, id := range r.order {
		if stored := r.courses[id]; !stored.IsFiltered {
			result = append(result, *stored)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *fakeCourseRepo) GetAllCourses(sourceName string) ([]database.StoredCourse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []database.StoredCourse
	for _, id := range r.order {
		if stored := r.courses[id]; stored.SourceName == sourceName {
			result = append(result, *stored)
		}
	}
	return result, nil
}

func (r *fakeCourseRepo) GetCourseCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.courses), nil
}

func (r *fakeCourseRepo) GetCourseStats(sourceName string) (int, int, int, error) {
	all, _ := r.GetAllCourses(sourceName)
	filtered := 0
	for _, stored := range all {
		if stored.IsFiltered {
			filtered++
		}
	}
	return len(all), len(all) - filtered, filtered, nil
}

func (r *fakeCourseRepo) UpsertCourse(sourceName string, entry database.CourseEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failIDs[entry.Course.ID] {
		return false, fmt.Errorf("failed to upsert course %s: database is locked", entry.Course.ID)
	}
	existing, ok := r.courses[entry.Course.ID]
	changed := !ok || existing.ContentHash != entry.ContentHash
	if !ok {
		r.order = append(r.order, entry.Course.ID)
	}
	r.courses[entry.Course.ID] = &database.StoredCourse{
		Course:       entry.Course,
		SourceName:   sourceName,
		DocumentURL:  entry.DocumentURL,
		ContentHash:  entry.ContentHash,
		IsFiltered:   entry.IsFiltered,
		FilterReason: entry.FilterReason,
	}
	return changed, nil
}

func (r *fakeCourseRepo) UpdateCourseFilterStatus(courseID string, isFiltered bool, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.courses[courseID]
	if !ok {
		return fmt.Errorf("course not found: %s", courseID)
	}
	stored.IsFiltered = isFiltered
	stored.FilterReason = reason
	return nil
}

const validDocument = `<course>
  <id>%s</id>
  <title>%s</title>
  <category>Web Development</category>
  <level>Beginner</level>
  <instructor><name>Jane Smith</name></instructor>
  <topics>
    <topic>
      <id>topic1</id>
      <title>Basics</title>
      <lessons>
        <lesson><id>lesson1</id><title>Intro</title><videoUrl>https://youtu.be/dQw4w9WgXcQ</videoUrl></lesson>
      </lessons>
    </topic>
  </topics>
</course>`

const malformedDocument = `<course>
  <id>broken</id>
  <title>Broken Course</title>
  <instructor><name>Jane Smith</name></instructor>
  <topics></topics>
</course>`

const nonFiniteRatingDocument = `<course>
  <id>%s</id>
  <title>Unrated Course</title>
  <instructor><name>Jane Smith</name></instructor>
  <topics>
    <topic><id>topic1</id><title>Basics</title><lessons>
      <lesson><id>lesson1</id><title>Intro</title></lesson>
    </lessons></topic>
  </topics>
  <relatedCourses>
    <course><id>other</id><title>Other</title><rating>NaN</rating></course>
  </relatedCourses>
</course>`

// writeFile writes content under dir and returns its file:// URL
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return "file://" + path
}
