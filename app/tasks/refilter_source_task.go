package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/course-comb/app/catalog"
	"github.com/lysyi3m/course-comb/app/database"
)

type RefilterSourceTask struct {
	Task
	SourceConfig *catalog.Config
	filterer     *catalog.Filterer
	courseRepo   database.CourseRepository
}

func NewRefilterSourceTask(sourceName string, sourceConfig *catalog.Config, filterer *catalog.Filterer, courseRepo database.CourseRepository) *RefilterSourceTask {
	return &RefilterSourceTask{
		Task:         NewTask(TaskTypeRefilterSource, sourceName),
		SourceConfig: sourceConfig,
		filterer:     filterer,
		courseRepo:   courseRepo,
	}
}

func (t *RefilterSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	stored, err := t.courseRepo.GetAllCourses(t.SourceName)
	if err != nil {
		return fmt.Errorf("failed to get source courses: %w", err)
	}

	entries := make([]catalog.Entry, len(stored))
	for i, s := range stored {
		entries[i] = catalog.Entry{
			Course:      s.Course,
			DocumentURL: s.DocumentURL,
			ContentHash: s.ContentHash,
		}
	}

	filtered := t.filterer.Run(entries, t.SourceConfig)

	updatedCount := 0
	errorCount := 0

	for i, entry := range filtered {
		original := stored[i]
		if original.IsFiltered == entry.IsFiltered && original.FilterReason == entry.FilterReason {
			continue
		}

		err := t.courseRepo.UpdateCourseFilterStatus(original.Course.ID, entry.IsFiltered, entry.FilterReason)
		if err != nil {
			slog.Error("Failed to update course filter status", "course_id", original.Course.ID, "error", err)
			errorCount++
		} else {
			updatedCount++
		}
	}

	slog.Info("Task completed",
		"type", "RefilterSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"success", updatedCount,
		"errors", errorCount)

	return nil
}
