package course

import (
	"strconv"

	"github.com/lysyi3m/course-comb/app/markup"
)

// groupShape selects how a repeated group with exactly one entry is
// represented in a built document.
type groupShape int

const (
	bareSingle groupShape = iota
	oneElementSlice
)

// buildDocument is the inverse of Normalize: it produces the parsed tree a
// markup parser would return for c.
func buildDocument(c *Course, shape groupShape) *markup.Node {
	node := markup.NewNode("course")
	addText(node, "id", c.ID)
	addText(node, "title", c.Title)
	addText(node, "description", c.Description)
	addText(node, "longDescription", c.LongDescription)
	addText(node, "category", c.Category)
	addText(node, "level", c.Level)
	addText(node, "thumbnail", c.Thumbnail)
	addText(node, "duration", c.Duration)
	addText(node, "updatedAt", c.UpdatedAt)

	instructor := markup.NewNode("instructor")
	addText(instructor, "name", c.Instructor.Name)
	addText(instructor, "title", c.Instructor.Title)
	addText(instructor, "bio", c.Instructor.Bio)
	addText(instructor, "avatar", c.Instructor.Avatar)
	node.Add(instructor)

	topics := make([]*markup.Node, 0, len(c.Topics))
	for _, topic := range c.Topics {
		topics = append(topics, buildTopic(topic, shape))
	}
	node.Add(buildGroup("topics", topics, shape))

	related := make([]*markup.Node, 0, len(c.RelatedCourses))
	for _, rc := range c.RelatedCourses {
		rcNode := markup.NewNode("course")
		addText(rcNode, "id", rc.ID)
		addText(rcNode, "title", rc.Title)
		addText(rcNode, "thumbnail", rc.Thumbnail)
		addText(rcNode, "instructor", rc.Instructor)
		addText(rcNode, "rating", strconv.FormatFloat(rc.Rating, 'f', -1, 64))
		addText(rcNode, "reviewCount", strconv.Itoa(rc.ReviewCount))
		related = append(related, rcNode)
	}
	if len(related) > 0 {
		node.Add(buildGroup("relatedCourses", related, shape))
	}

	return markup.NewNode(markup.DocumentName).Add(node)
}

func buildTopic(topic Topic, shape groupShape) *markup.Node {
	node := markup.NewNode("topic")
	addText(node, "id", topic.ID)
	addText(node, "title", topic.Title)
	addText(node, "description", topic.Description)
	addText(node, "duration", topic.Duration)

	lessons := make([]*markup.Node, 0, len(topic.Lessons))
	for _, lesson := range topic.Lessons {
		lessonNode := markup.NewNode("lesson")
		addText(lessonNode, "id", lesson.ID)
		addText(lessonNode, "title", lesson.Title)
		addText(lessonNode, "duration", lesson.Duration)
		addText(lessonNode, "videoUrl", lesson.VideoURL)
		lessons = append(lessons, lessonNode)
	}
	node.Add(buildGroup("lessons", lessons, shape))

	return node
}

func buildGroup(container string, items []*markup.Node, shape groupShape) *markup.Node {
	holder := markup.NewNode(container)
	if len(items) == 1 && shape == oneElementSlice {
		holder.Children[items[0].Name] = markup.Many(items...)
		return holder
	}
	for _, item := range items {
		holder.Add(item)
	}
	return holder
}

func addText(parent *markup.Node, name, value string) {
	child := markup.NewNode(name)
	child.Text = value
	parent.Add(child)
}

// courseNode returns the course element of a built document so tests can
// damage it.
func courseNode(doc *markup.Node) *markup.Node {
	node, _ := doc.Child("course")
	return node
}

func sampleCourse() *Course {
	return &Course{
		ID:              "course3",
		Title:           "Complete Mobile Development Course",
		Description:     "Learn everything about Mobile Development from basics to advanced concepts.",
		LongDescription: "<p>This comprehensive course takes you from beginner to advanced.</p><ul><li>Build real-world projects</li></ul>",
		Category:        "Mobile Development",
		Level:           "Advanced",
		Thumbnail:       "/placeholder.svg?height=720&width=1280",
		Duration:        "13 hours",
		UpdatedAt:       "Last updated March 2023",
		Instructor: Instructor{
			Name:   "Alex Johnson",
			Title:  "Senior Mobile Development Specialist",
			Bio:    "Alex Johnson is an experienced Mobile Development professional.",
			Avatar: "/placeholder.svg?height=200&width=200",
		},
		Topics: []Topic{
			{
				ID:          "topic1",
				Title:       "React Native",
				Description: "Learn all about React Native in Mobile Development.",
				Duration:    "120 min",
				Lessons: []Lesson{
					{ID: "lesson11", Title: "Topic 1 Lesson 1: React Native Fundamentals", Duration: "15 min", VideoURL: "https://www.youtube.com/watch?v=hY7m5jjJ9mM", YouTubeID: "hY7m5jjJ9mM"},
					{ID: "lesson12", Title: "Topic 1 Lesson 2: React Native Fundamentals", Duration: "20 min", VideoURL: "https://youtu.be/QH2-TGUlwu4", YouTubeID: "QH2-TGUlwu4"},
					{ID: "lesson13", Title: "Topic 1 Lesson 3: React Native Fundamentals", Duration: "25 min", VideoURL: "https://cdn.example.com/lessons/13.mp4"},
				},
			},
			{
				ID:          "topic2",
				Title:       "Flutter",
				Description: "Learn all about Flutter in Mobile Development.",
				Duration:    "150 min",
				Lessons: []Lesson{
					{ID: "lesson21", Title: "Topic 2 Lesson 1: Flutter Fundamentals", Duration: "15 min", VideoURL: "https://www.youtube.com/embed/J---aiyznGQ", YouTubeID: "J---aiyznGQ"},
				},
			},
		},
		RelatedCourses: []RelatedCourse{
			{ID: "course4", Title: "UI/UX Design Masterclass", Thumbnail: "/placeholder.svg?height=400&width=600", Instructor: "Sarah Williams", Rating: 4.6, ReviewCount: 512},
			{ID: "course5", Title: "Cloud Computing Masterclass", Thumbnail: "/placeholder.svg?height=400&width=600", Instructor: "Michael Brown", Rating: 4.1, ReviewCount: 130},
		},
	}
}
