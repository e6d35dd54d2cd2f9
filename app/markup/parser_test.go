package markup

import (
	"errors"
	"strings"
	"testing"
)

func TestParseSingleAndRepeatedChildren(t *testing.T) {
	data := `<?xml version="1.0"?>
<course>
  <id>course1</id>
  <topics>
    <topic><id>t1</id></topic>
  </topics>
  <relatedCourses>
    <course><id>r1</id></course>
    <course><id>r2</id></course>
    <course><id>r3</id></course>
  </relatedCourses>
</course>`

	root, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	course, ok := root.Child("course")
	if !ok {
		t.Fatal("Expected course root element")
	}

	if id, _ := course.Field("id"); id != "course1" {
		t.Errorf("Expected id 'course1', got '%s'", id)
	}

	topics, _ := course.Child("topics")
	topicGroup := topics.Group("topic")
	if !topicGroup.IsSingle() {
		t.Errorf("Expected a single topic to be stored as Single, got %d items", topicGroup.Len())
	}

	related, _ := course.Child("relatedCourses")
	relatedGroup := related.Group("course")
	if relatedGroup.IsSingle() || relatedGroup.Len() != 3 {
		t.Fatalf("Expected 3 related courses stored as Many, got %d", relatedGroup.Len())
	}

	for i, want := range []string{"r1", "r2", "r3"} {
		if got, _ := relatedGroup.Items()[i].Field("id"); got != want {
			t.Errorf("Expected related course %d to be '%s', got '%s'", i, want, got)
		}
	}
}

func TestParseTrimsTextAndMergesCDATA(t *testing.T) {
	data := `<course>
  <title>
     Go Basics
  </title>
  <longDescription>
    <![CDATA[
      <p>Rich <b>text</b></p>
    ]]>
  </longDescription>
</course>`

	root, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	course, _ := root.Child("course")

	if title, _ := course.Field("title"); title != "Go Basics" {
		t.Errorf("Expected trimmed title 'Go Basics', got '%s'", title)
	}

	if desc, _ := course.Field("longDescription"); desc != "<p>Rich <b>text</b></p>" {
		t.Errorf("Expected CDATA content to be preserved, got '%s'", desc)
	}
}

func TestParseKeepsInnerMarkupOfRichElements(t *testing.T) {
	data := `<course><longDescription><p>First</p><p>Second</p></longDescription></course>`

	root, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	course, _ := root.Child("course")
	desc, ok := course.Field("longDescription")
	if !ok {
		t.Fatal("Expected longDescription field")
	}

	if !strings.Contains(desc, "<p>First</p>") || !strings.Contains(desc, "<p>Second</p>") {
		t.Errorf("Expected inner markup to be kept, got '%s'", desc)
	}
}

func TestParseSerializesInnerMarkupOnDemand(t *testing.T) {
	data := `<course><topics><topic><id>t1</id></topic></topics><longDescription><p>Body</p></longDescription></course>`

	root, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	course, _ := root.Child("course")
	topics, _ := course.Child("topics")
	desc, _ := course.Child("longDescription")

	for _, n := range []*Node{course, topics, desc} {
		if n.Inner != "" {
			t.Errorf("Expected no inner markup on %s before Value, got '%s'", n.Name, n.Inner)
		}
	}

	if got := desc.Value(); got != "<p>Body</p>" {
		t.Errorf("Expected inner markup '<p>Body</p>', got '%s'", got)
	}
	if desc.Inner != "<p>Body</p>" {
		t.Errorf("Expected inner markup to be kept after Value, got '%s'", desc.Inner)
	}
	if topics.Inner != "" {
		t.Errorf("Expected untouched container to stay unserialized, got '%s'", topics.Inner)
	}
}

func TestParseAttributesAsFieldFallback(t *testing.T) {
	data := `<course id="course9"><lesson id="l1"><title>Intro</title></lesson></course>`

	root, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	course, _ := root.Child("course")
	if id, ok := course.Field("id"); !ok || id != "course9" {
		t.Errorf("Expected attribute id 'course9', got '%s' (found=%v)", id, ok)
	}

	lesson, _ := course.Child("lesson")
	if id, _ := lesson.Field("id"); id != "l1" {
		t.Errorf("Expected lesson attribute id 'l1', got '%s'", id)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"whitespace", "   \n  "},
		{"no root element", "just some text"},
		{"unclosed element", "<course><id>1</id>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatalf("Expected error for %q", tt.data)
			}
			if !errors.Is(err, ErrInvalidMarkup) {
				t.Errorf("Expected ErrInvalidMarkup, got: %v", err)
			}
		})
	}
}

func TestOneOrManyShapes(t *testing.T) {
	var absent OneOrMany[int]
	if !absent.IsAbsent() || absent.Len() != 0 || absent.Items() != nil {
		t.Error("Expected zero value to be absent and empty")
	}
	if _, ok := absent.First(); ok {
		t.Error("Expected First on absent group to report false")
	}

	single := Single(7)
	if !single.IsSingle() || single.Len() != 1 {
		t.Errorf("Expected single group of length 1, got %d", single.Len())
	}
	if v, ok := single.First(); !ok || v != 7 {
		t.Errorf("Expected First to return 7, got %d", v)
	}

	grown := single.Append(8).Append(9)
	if grown.IsSingle() || grown.Len() != 3 {
		t.Fatalf("Expected appended group of length 3, got %d", grown.Len())
	}
	items := grown.Items()
	for i, want := range []int{7, 8, 9} {
		if items[i] != want {
			t.Errorf("Expected item %d to be %d, got %d", i, want, items[i])
		}
	}

	empty := Many[int]()
	if empty.IsAbsent() || empty.Len() != 0 {
		t.Error("Expected empty Many to be present with length 0")
	}
}
