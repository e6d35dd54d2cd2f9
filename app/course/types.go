package course

// Course is the canonical record produced from a course document.
//
// LongDescription is the document's embedded rich-text block, passed through
// unescaped and unsanitized. Anything rendering it as markup must sanitize it
// first or trust the document source.
type Course struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	LongDescription string          `json:"longDescription"`
	Category        string          `json:"category"`
	Level           string          `json:"level"`
	Thumbnail       string          `json:"thumbnail"`
	Duration        string          `json:"duration"`
	UpdatedAt       string          `json:"updatedAt"`
	Instructor      Instructor      `json:"instructor"`
	Topics          []Topic         `json:"topics"`
	RelatedCourses  []RelatedCourse `json:"relatedCourses"`
}

type Instructor struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Bio    string `json:"bio"`
	Avatar string `json:"avatar"`
}

type Topic struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Lessons     []Lesson `json:"lessons"`
}

type Lesson struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	VideoURL string `json:"videoUrl"`
	// YouTubeID is empty when VideoURL is not a recognized YouTube URL.
	YouTubeID string `json:"youtubeId,omitempty"`
}

// RelatedCourse is a flattened cross-reference, not a full Course.
type RelatedCourse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Thumbnail   string  `json:"thumbnail"`
	Instructor  string  `json:"instructor"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
}

// LessonCount returns the number of lessons across all topics.
func (c *Course) LessonCount() int {
	count := 0
	for _, topic := range c.Topics {
		count += len(topic.Lessons)
	}
	return count
}

// FirstLesson returns the lesson a player opens by default.
func (c *Course) FirstLesson() (Lesson, bool) {
	for _, topic := range c.Topics {
		if len(topic.Lessons) > 0 {
			return topic.Lessons[0], true
		}
	}
	return Lesson{}, false
}
