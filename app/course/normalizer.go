package course

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lysyi3m/course-comb/app/markup"
)

// Parse parses a course document and normalizes it.
func Parse(data []byte) (*Course, error) {
	root, err := markup.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse course document: %w", err)
	}

	return Normalize(root)
}

// Normalize converts a parsed document rooted at a course element into a
// Course. It has no side effects and never returns a partial Course: every
// schema violation is reported as a *MalformedDocumentError.
func Normalize(doc *markup.Node) (*Course, error) {
	root := doc.Group("course")
	if root.Len() != 1 {
		return nil, malformed("", "missing course root")
	}

	node := root.Items()[0]
	if !node.HasChildren() && len(node.Attrs) == 0 {
		return nil, malformed("", "missing course root")
	}

	id, err := requiredField(node, "", "id")
	if err != nil {
		return nil, err
	}

	title, err := requiredField(node, "", "title")
	if err != nil {
		return nil, err
	}

	instructor, err := normalizeInstructor(node)
	if err != nil {
		return nil, err
	}

	course := &Course{
		ID:              id,
		Title:           title,
		Description:     optionalField(node, "description"),
		LongDescription: optionalField(node, "longDescription"),
		Category:        optionalField(node, "category"),
		Level:           optionalField(node, "level"),
		Thumbnail:       optionalField(node, "thumbnail"),
		Duration:        optionalField(node, "duration"),
		UpdatedAt:       optionalField(node, "updatedAt"),
		Instructor:      instructor,
	}

	topicNodes, ok := asSequence(group(node, "topics", "topic"), true)
	if !ok {
		return nil, malformed("", "empty topic list")
	}

	course.Topics = make([]Topic, 0, len(topicNodes))
	for i, topicNode := range topicNodes {
		topic, err := normalizeTopic(topicNode, fmt.Sprintf("topic[%d]", i))
		if err != nil {
			return nil, err
		}
		course.Topics = append(course.Topics, topic)
	}

	relatedNodes, _ := asSequence(group(node, "relatedCourses", "course"), false)

	course.RelatedCourses = make([]RelatedCourse, 0, len(relatedNodes))
	for i, relatedNode := range relatedNodes {
		related, err := normalizeRelatedCourse(relatedNode, fmt.Sprintf("relatedCourse[%d]", i))
		if err != nil {
			return nil, err
		}
		course.RelatedCourses = append(course.RelatedCourses, related)
	}

	return course, nil
}

// asSequence resolves the one-or-many ambiguity of a repeated element group.
// It reports false only when the group is required and holds no entries.
func asSequence[T any](g markup.OneOrMany[T], required bool) ([]T, bool) {
	items := g.Items()
	if len(items) == 0 {
		return nil, !required
	}
	return items, true
}

// group returns the repeated item elements held by a container element, e.g.
// <topics><topic/>...</topics>.
func group(parent *markup.Node, container, item string) markup.OneOrMany[*markup.Node] {
	holder, ok := parent.Child(container)
	if !ok {
		return markup.OneOrMany[*markup.Node]{}
	}
	return holder.Group(item)
}

func normalizeInstructor(node *markup.Node) (Instructor, error) {
	instructorNode, ok := node.Child("instructor")
	if !ok || !instructorNode.HasChildren() {
		return Instructor{}, missingField("", "instructor")
	}

	name, err := requiredField(instructorNode, "instructor", "name")
	if err != nil {
		return Instructor{}, err
	}

	return Instructor{
		Name:   name,
		Title:  optionalField(instructorNode, "title"),
		Bio:    optionalField(instructorNode, "bio"),
		Avatar: optionalField(instructorNode, "avatar"),
	}, nil
}

func normalizeTopic(node *markup.Node, path string) (Topic, error) {
	id, err := requiredField(node, path, "id")
	if err != nil {
		return Topic{}, err
	}

	title, err := requiredField(node, path, "title")
	if err != nil {
		return Topic{}, err
	}

	lessonNodes, ok := asSequence(group(node, "lessons", "lesson"), true)
	if !ok {
		return Topic{}, malformed(path, "empty lesson list")
	}

	lessons := make([]Lesson, 0, len(lessonNodes))
	for i, lessonNode := range lessonNodes {
		lesson, err := normalizeLesson(lessonNode, joinPath(path, fmt.Sprintf("lesson[%d]", i)))
		if err != nil {
			return Topic{}, err
		}
		lessons = append(lessons, lesson)
	}

	return Topic{
		ID:          id,
		Title:       title,
		Description: optionalField(node, "description"),
		Duration:    optionalField(node, "duration"),
		Lessons:     lessons,
	}, nil
}

func normalizeLesson(node *markup.Node, path string) (Lesson, error) {
	id, err := requiredField(node, path, "id")
	if err != nil {
		return Lesson{}, err
	}

	title, err := requiredField(node, path, "title")
	if err != nil {
		return Lesson{}, err
	}

	videoURL := optionalField(node, "videoUrl")

	return Lesson{
		ID:        id,
		Title:     title,
		Duration:  optionalField(node, "duration"),
		VideoURL:  videoURL,
		YouTubeID: ExtractYouTubeID(videoURL),
	}, nil
}

func normalizeRelatedCourse(node *markup.Node, path string) (RelatedCourse, error) {
	id, err := requiredField(node, path, "id")
	if err != nil {
		return RelatedCourse{}, err
	}

	title, err := requiredField(node, path, "title")
	if err != nil {
		return RelatedCourse{}, err
	}

	related := RelatedCourse{
		ID:         id,
		Title:      title,
		Thumbnail:  optionalField(node, "thumbnail"),
		Instructor: relatedInstructorName(node),
	}

	if raw := optionalField(node, "rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) {
			return RelatedCourse{}, invalidField(path, "rating", raw)
		}
		related.Rating = rating
	}

	if raw := optionalField(node, "reviewCount"); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil || count < 0 {
			return RelatedCourse{}, invalidField(path, "reviewCount", raw)
		}
		related.ReviewCount = count
	}

	return related, nil
}

// relatedInstructorName accepts both the flattened <instructor>Name</instructor>
// form and a full instructor block.
func relatedInstructorName(node *markup.Node) string {
	instructorNode, ok := node.Child("instructor")
	if !ok {
		return ""
	}
	if name, ok := instructorNode.Field("name"); ok {
		return name
	}
	return instructorNode.Value()
}

func requiredField(node *markup.Node, path, name string) (string, error) {
	value, ok := node.Field(name)
	if !ok || value == "" {
		return "", missingField(path, name)
	}
	return value, nil
}

func optionalField(node *markup.Node, name string) string {
	value, _ := node.Field(name)
	return value
}
