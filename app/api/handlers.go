package api

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/course-comb/app/catalog"
	"github.com/lysyi3m/course-comb/app/course"
	"github.com/lysyi3m/course-comb/app/database"
	"github.com/lysyi3m/course-comb/app/tasks"
)

const maxNormalizeBody = 10 << 20

func NewHandler(configCache *catalog.ConfigCache, sourceRepo database.SourceRepository,
	courseRepo database.CourseRepository, filterer *catalog.Filterer,
	scheduler tasks.TaskSchedulerInterface, generator GeneratorInterface) *Handler {
	return &Handler{
		sourceRepo:  sourceRepo,
		courseRepo:  courseRepo,
		generator:   generator,
		sanitizer:   catalog.NewSanitizer(),
		matcher:     catalog.NewMatcher(),
		configCache: configCache,
		filterer:    filterer,
		scheduler:   scheduler,
	}
}

func (h *Handler) visibleCourses(c *gin.Context) ([]*course.Course, bool) {
	stored, err := h.courseRepo.GetVisibleCourses(0)
	if err != nil {
		slog.Error("Database error", "operation", "get_visible_courses", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}

	courses := make([]*course.Course, len(stored))
	for i, s := range stored {
		courses[i] = s.Course
	}
	return courses, true
}

func (h *Handler) ListCourses(c *gin.Context) {
	courses, ok := h.visibleCourses(c)
	if !ok {
		return
	}

	query := catalog.Query{
		Text:     c.Query("q"),
		Category: c.Query("category"),
		Level:    c.Query("level"),
	}
	courses = h.matcher.Filter(courses, query)

	summaries := make([]courseSummary, len(courses))
	for i, item := range courses {
		summaries[i] = newCourseSummary(item)
	}

	c.JSON(http.StatusOK, gin.H{
		"courses": summaries,
		"total":   len(summaries),
	})
}

func (h *Handler) GetCourse(c *gin.Context) {
	id := c.Param("id")

	stored, err := h.courseRepo.GetCourse(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_course", "course", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if stored == nil || stored.IsFiltered {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	c.Header("X-Last-Updated", stored.UpdatedAt.Format(time.RFC3339))
	c.JSON(http.StatusOK, courseDetail{
		Course:              stored.Course,
		LongDescription:     h.sanitizer.RichText(stored.Course.LongDescription),
		LongDescriptionText: h.sanitizer.PlainText(stored.Course.LongDescription),
		LessonCount:         stored.Course.LessonCount(),
	})
}

func (h *Handler) GetCoursesRSS(c *gin.Context) {
	courses, ok := h.visibleCourses(c)
	if !ok {
		return
	}

	rss, err := h.generator.Run(courses, time.Now())
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(courses)))
	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
		health["sources"] = sourceCount
	}
	if courseCount, err := h.courseRepo.GetCourseCount(); err == nil {
		health["courses"] = courseCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListSources(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	sources := make([]map[string]interface{}, 0, len(configs))

	for _, name := range names {
		sourceConfig := configs[name]
		sourceInfo := map[string]interface{}{
			"name":             sourceConfig.Name,
			"url":              sourceConfig.URL,
			"type":             sourceConfig.Type,
			"enabled":          sourceConfig.Settings.Enabled,
			"max_courses":      sourceConfig.Settings.MaxCourses,
			"refresh_interval": (time.Duration(sourceConfig.Settings.RefreshInterval) * time.Second).String(),
			"filters":          len(sourceConfig.Filters),
		}

		if source, err := h.sourceRepo.GetSource(name); err == nil && source != nil {
			sourceInfo["last_fetched_at"] = source.LastFetchedAt
			sourceInfo["next_fetch_at"] = source.NextFetchAt
			sourceInfo["last_error"] = source.LastError
		}

		if total, _, _, err := h.courseRepo.GetCourseStats(name); err == nil {
			sourceInfo["course_count"] = total
		}

		sources = append(sources, sourceInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *Handler) APIGetSourceDetails(c *gin.Context) {
	name := c.Param("name")

	sourceConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	source, err := h.sourceRepo.GetSource(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_source", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if source == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found in database"})
		return
	}

	details := map[string]interface{}{
		"name":             name,
		"url":              sourceConfig.URL,
		"type":             sourceConfig.Type,
		"enabled":          sourceConfig.Settings.Enabled,
		"max_courses":      sourceConfig.Settings.MaxCourses,
		"refresh_interval": (time.Duration(sourceConfig.Settings.RefreshInterval) * time.Second).String(),
		"timeout":          (time.Duration(sourceConfig.Settings.Timeout) * time.Second).String(),
		"filters":          sourceConfig.Filters,
	}

	details["database"] = map[string]interface{}{
		"last_fetched_at": source.LastFetchedAt,
		"next_fetch_at":   source.NextFetchAt,
		"last_error":      source.LastError,
		"created_at":      source.CreatedAt,
		"updated_at":      source.UpdatedAt,
	}

	if total, visible, filtered, err := h.courseRepo.GetCourseStats(name); err == nil {
		details["courses"] = map[string]interface{}{
			"total":    total,
			"visible":  visible,
			"filtered": filtered,
		}
	}

	c.JSON(http.StatusOK, details)
}

func (h *Handler) APIReloadSource(c *gin.Context) {
	name := c.Param("name")

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	source, err := h.sourceRepo.GetSource(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_source", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if source == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found in database"})
		return
	}

	sourceConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	syncTask := tasks.NewSyncSourceConfigTask(name, sourceConfig, h.sourceRepo)
	if err := h.scheduler.EnqueueTask(syncTask); err != nil {
		slog.Error("Error enqueueing sync task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	refilterTask := tasks.NewRefilterSourceTask(name, sourceConfig, h.filterer, h.courseRepo)
	if err := h.scheduler.EnqueueTask(refilterTask); err != nil {
		slog.Error("Error enqueueing refilter task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue refilter task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Configuration reloaded and tasks enqueued successfully",
		"source": gin.H{
			"name": name,
			"url":  sourceConfig.URL,
			"type": sourceConfig.Type,
		},
		"tasks": []gin.H{
			{"id": syncTask.ID, "type": syncTask.Type},
			{"id": refilterTask.ID, "type": refilterTask.Type},
		},
	})
}

// APINormalize normalizes a posted course document and returns the record
// without sanitizing longDescription.
func (h *Handler) APINormalize(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxNormalizeBody)

	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	normalized, err := course.Parse(data)
	if err != nil {
		var malformed *course.MalformedDocumentError
		if errors.As(err, &malformed) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": malformed.Reason,
				"path":  malformed.Path,
			})
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid course document",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, normalized)
}
