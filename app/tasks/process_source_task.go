package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/course-comb/app/catalog"
	"github.com/lysyi3m/course-comb/app/course"
	"github.com/lysyi3m/course-comb/app/database"
)

type ProcessSourceTask struct {
	Task
	SourceConfig *catalog.Config
	fetcher      *Fetcher
	discoverer   *catalog.Discoverer
	filterer     *catalog.Filterer
	sourceRepo   database.SourceRepository
	courseRepo   database.CourseRepository
}

func NewProcessSourceTask(sourceName string, sourceConfig *catalog.Config, fetcher *Fetcher, discoverer *catalog.Discoverer, filterer *catalog.Filterer, sourceRepo database.SourceRepository, courseRepo database.CourseRepository) *ProcessSourceTask {
	return &ProcessSourceTask{
		Task:         NewTask(TaskTypeProcessSource, sourceName),
		SourceConfig: sourceConfig,
		fetcher:      fetcher,
		discoverer:   discoverer,
		filterer:     filterer,
		sourceRepo:   sourceRepo,
		courseRepo:   courseRepo,
	}
}

func (t *ProcessSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	fetchedAt := time.Now().UTC()
	nextFetch := fetchedAt.Add(time.Duration(t.SourceConfig.Settings.RefreshInterval) * time.Second)

	var entries []catalog.Entry
	var documentCount, failedCount int
	var err error

	switch t.SourceConfig.Type {
	case catalog.SourceTypeCatalog:
		entries, documentCount, failedCount, err = t.collectCatalog(ctx)
	default:
		documentCount = 1
		var entry catalog.Entry
		entry, err = t.collectDocument(ctx, t.SourceConfig.URL)
		entries = []catalog.Entry{entry}
	}

	if err != nil {
		if statusErr := t.sourceRepo.UpdateFetchStatus(t.SourceName, fetchedAt, nextFetch, err.Error()); statusErr != nil {
			slog.Warn("Failed to record fetch status", "source", t.SourceName, "error", statusErr)
		}
		return err
	}

	filtered := t.filterer.Run(entries, t.SourceConfig)

	changedCount, filteredCount, storeFailed, err := t.storeEntries(filtered)
	if err != nil && t.SourceConfig.Type != catalog.SourceTypeCatalog {
		if statusErr := t.sourceRepo.UpdateFetchStatus(t.SourceName, fetchedAt, nextFetch, err.Error()); statusErr != nil {
			slog.Warn("Failed to record fetch status", "source", t.SourceName, "error", statusErr)
		}
		return fmt.Errorf("failed to store course: %w", err)
	}
	failedCount += storeFailed

	lastError := ""
	if failedCount > 0 {
		lastError = fmt.Sprintf("%d of %d course documents failed", failedCount, documentCount)
	}

	err = t.sourceRepo.UpdateFetchStatus(t.SourceName, fetchedAt, nextFetch, lastError)
	if err != nil {
		return fmt.Errorf("failed to update fetch status: %w", err)
	}

	slog.Info("Task completed",
		"type", "ProcessSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"documents", documentCount,
		"failed", failedCount,
		"filtered", filteredCount,
		"changed", changedCount)

	return nil
}

func (t *ProcessSourceTask) timeout() time.Duration {
	return time.Duration(t.SourceConfig.Settings.Timeout) * time.Second
}

func (t *ProcessSourceTask) collectDocument(ctx context.Context, documentURL string) (catalog.Entry, error) {
	data, err := t.fetcher.Fetch(ctx, documentURL, t.timeout())
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("failed to fetch course document: %w", err)
	}

	c, err := course.Parse(data)
	if err != nil {
		return catalog.Entry{}, err
	}

	hash, err := catalog.ContentHash(c)
	if err != nil {
		return catalog.Entry{}, err
	}

	return catalog.Entry{Course: c, DocumentURL: documentURL, ContentHash: hash}, nil
}

// collectCatalog fetches every document listed by the catalog feed. A broken
// document is logged and counted; only a failure to read the catalog itself
// fails the task.
func (t *ProcessSourceTask) collectCatalog(ctx context.Context) ([]catalog.Entry, int, int, error) {
	data, err := t.fetcher.Fetch(ctx, t.SourceConfig.URL, t.timeout())
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	refs, err := t.discoverer.Run(data)
	if err != nil {
		return nil, 0, 0, err
	}

	if limit := t.SourceConfig.Settings.MaxCourses; limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}

	entries := make([]catalog.Entry, 0, len(refs))
	failed := 0

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, 0, 0, err
		}

		entry, err := t.collectDocument(ctx, ref.URL)
		if err != nil {
			slog.Warn("Skipping course document", "source", t.SourceName, "url", ref.URL, "malformed", course.IsMalformed(err), "error", err)
			failed++
			continue
		}
		entries = append(entries, entry)
	}

	return entries, len(refs), failed, nil
}

// storeEntries upserts every entry. A failed upsert is logged and counted
// so the remaining entries are still stored; the first such error is
// returned alongside the counts.
func (t *ProcessSourceTask) storeEntries(entries []catalog.Entry) (int, int, int, error) {
	changedCount := 0
	filteredCount := 0
	failedCount := 0
	var firstErr error

	for _, entry := range entries {
		changed, err := t.courseRepo.UpsertCourse(t.SourceName, database.CourseEntry{
			Course:       entry.Course,
			DocumentURL:  entry.DocumentURL,
			ContentHash:  entry.ContentHash,
			IsFiltered:   entry.IsFiltered,
			FilterReason: entry.FilterReason,
		})
		if err != nil {
			slog.Warn("Failed to store course", "source", t.SourceName, "course", entry.Course.ID, "url", entry.DocumentURL, "error", err)
			failedCount++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if changed {
			changedCount++
		}
		if entry.IsFiltered {
			filteredCount++
		}
	}

	return changedCount, filteredCount, failedCount, firstErr
}
