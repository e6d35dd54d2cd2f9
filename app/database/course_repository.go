package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lysyi3m/course-comb/app/course"
)

const courseColumns = `id, source_name, document_url, document, content_hash,
	is_filtered, filter_reason, created_at, updated_at`

type CourseRepositoryImpl struct {
	db *DB
}

func NewCourseRepository(db *DB) *CourseRepositoryImpl {
	return &CourseRepositoryImpl{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (StoredCourse, error) {
	var stored StoredCourse
	var document, createdAt, updatedAt string
	var courseID string

	err := row.Scan(
		&courseID, &stored.SourceName, &stored.DocumentURL, &document, &stored.ContentHash,
		&stored.IsFiltered, &stored.FilterReason, &createdAt, &updatedAt,
	)
	if err != nil {
		return StoredCourse{}, err
	}

	var c course.Course
	if err := json.Unmarshal([]byte(document), &c); err != nil {
		return StoredCourse{}, fmt.Errorf("failed to decode course %s: %w", courseID, err)
	}
	stored.Course = &c

	if stored.CreatedAt, err = parseTime(createdAt); err != nil {
		return StoredCourse{}, err
	}
	if stored.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return StoredCourse{}, err
	}

	return stored, nil
}

func (r *CourseRepositoryImpl) queryCourses(query string, args ...any) ([]StoredCourse, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []StoredCourse
	for rows.Next() {
		stored, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course row: %w", err)
		}
		courses = append(courses, stored)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}

	return courses, nil
}

// UpsertCourse stores a normalized course and reports whether its content
// changed. An unchanged course only has its filter status refreshed.
func (r *CourseRepositoryImpl) UpsertCourse(sourceName string, entry CourseEntry) (bool, error) {
	c := entry.Course
	if c == nil || c.ID == "" {
		return false, fmt.Errorf("course id is required")
	}

	var existingHash, existingSource string
	err := r.db.QueryRow(`SELECT content_hash, source_name FROM courses WHERE id = ?`, c.ID).
		Scan(&existingHash, &existingSource)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to check existing course: %w", err)
	}

	if err == nil && existingHash == entry.ContentHash && existingSource == sourceName {
		if err := r.UpdateCourseFilterStatus(c.ID, entry.IsFiltered, entry.FilterReason); err != nil {
			return false, err
		}
		return false, nil
	}

	document, err := json.Marshal(c)
	if err != nil {
		return false, fmt.Errorf("failed to encode course: %w", err)
	}

	now := formatTime(time.Now())
	_, err = r.db.Exec(`
		INSERT INTO courses (
			id, source_name, document_url, title, category, level, instructor_name,
			topic_count, lesson_count, document, content_hash,
			is_filtered, filter_reason, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			source_name = excluded.source_name,
			document_url = excluded.document_url,
			title = excluded.title,
			category = excluded.category,
			level = excluded.level,
			instructor_name = excluded.instructor_name,
			topic_count = excluded.topic_count,
			lesson_count = excluded.lesson_count,
			document = excluded.document,
			content_hash = excluded.content_hash,
			is_filtered = excluded.is_filtered,
			filter_reason = excluded.filter_reason,
			updated_at = excluded.updated_at
	`, c.ID, sourceName, entry.DocumentURL, c.Title, c.Category, c.Level, c.Instructor.Name,
		len(c.Topics), c.LessonCount(), string(document), entry.ContentHash,
		entry.IsFiltered, entry.FilterReason, now, now)
	if err != nil {
		return false, fmt.Errorf("failed to upsert course: %w", err)
	}

	return true, nil
}

// GetCourse returns nil without error when the course is unknown
func (r *CourseRepositoryImpl) GetCourse(courseID string) (*StoredCourse, error) {
	row := r.db.QueryRow(`SELECT `+courseColumns+` FROM courses WHERE id = ?`, courseID)

	stored, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return &stored, nil
}

// GetVisibleCourses returns non-filtered courses ordered by title. A
// non-positive limit returns every visible course.
func (r *CourseRepositoryImpl) GetVisibleCourses(limit int) ([]StoredCourse, error) {
	if limit <= 0 {
		limit = -1
	}

	courses, err := r.queryCourses(`
		SELECT `+courseColumns+`
		FROM courses
		WHERE is_filtered = 0
		ORDER BY title, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get visible courses: %w", err)
	}

	return courses, nil
}

// GetAllCourses returns every course of a source, filtered ones included
func (r *CourseRepositoryImpl) GetAllCourses(sourceName string) ([]StoredCourse, error) {
	courses, err := r.queryCourses(`
		SELECT `+courseColumns+`
		FROM courses
		WHERE source_name = ?
		ORDER BY title, id
	`, sourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to get all courses: %w", err)
	}

	return courses, nil
}

func (r *CourseRepositoryImpl) GetCourseCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM courses").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get course count: %w", err)
	}
	return count, nil
}

// GetCourseStats returns total, visible and filtered course counts for a source
func (r *CourseRepositoryImpl) GetCourseStats(sourceName string) (total, visible, filtered int, err error) {
	err = r.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN is_filtered = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_filtered = 1 THEN 1 ELSE 0 END), 0)
		FROM courses
		WHERE source_name = ?
	`, sourceName).Scan(&total, &visible, &filtered)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get course stats: %w", err)
	}

	return total, visible, filtered, nil
}

func (r *CourseRepositoryImpl) UpdateCourseFilterStatus(courseID string, isFiltered bool, reason string) error {
	_, err := r.db.Exec(`
		UPDATE courses
		SET is_filtered = ?, filter_reason = ?
		WHERE id = ?
	`, isFiltered, reason, courseID)
	if err != nil {
		return fmt.Errorf("failed to update course filter status: %w", err)
	}

	return nil
}
