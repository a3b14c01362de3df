package generation

import (
	"fmt"
	"strings"

	"edubot/store"
)

// sourceContentLimit bounds how much lecture content is embedded in a
// slide-from-lecture prompt, to respect prompt-size limits.
const sourceContentLimit = 2000

// fallbackContentLimit bounds how much raw model prose is copied into a
// skeleton when extraction fails entirely.
const fallbackContentLimit = 200

// LectureOutline is the structured outline schema the model is asked to
// produce for a lecture.
type LectureOutline struct {
	Title      string    `json:"title"`
	Subject    string    `json:"subject"`
	Grade      string    `json:"grade"`
	Duration   string    `json:"duration"`
	Objectives []string  `json:"objectives"`
	Outline    []Section `json:"outline"`
	Resources  []string  `json:"resources"`
	Assessment string    `json:"assessment"`
}

type Section struct {
	Section  string  `json:"section"`
	Duration string  `json:"duration"`
	Topics   []Topic `json:"topics"`
}

type Topic struct {
	MainTopic string     `json:"main_topic"`
	Subtopics []Subtopic `json:"subtopics"`
}

type Subtopic struct {
	Subtitle   string   `json:"subtitle"`
	Content    string   `json:"content"`
	Activities []string `json:"activities"`
}

// SlideRequest is the structured record extracted from a free-text
// slide-creation message.
type SlideRequest struct {
	Title            string `json:"title"`
	Subject          string `json:"subject"`
	PresentationType string `json:"presentation_type"`
	Duration         int    `json:"duration"`
	Requirements     string `json:"requirements"`
}

// OutlinePrompt builds the system prompt asking for a structured lecture
// outline matching the LectureOutline schema.
func OutlinePrompt() string {
	return `You are an education expert. Create a detailed lecture outline based on the user's request.

Return JSON in exactly this format:
{
    "title": "lecture title",
    "subject": "subject",
    "grade": "grade level (elementary/middle/high/university)",
    "duration": "duration (minutes)",
    "objectives": ["objective 1", "objective 2", "..."],
    "outline": [
        {
            "section": "Part I: Section name",
            "duration": "15 minutes",
            "topics": [
                {
                    "main_topic": "Major heading 1",
                    "subtopics": [
                        {
                            "subtitle": "Minor heading 1.1",
                            "content": "Detailed content...",
                            "activities": ["activity 1", "activity 2"]
                        }
                    ]
                }
            ]
        }
    ],
    "resources": ["resource 1", "resource 2"],
    "assessment": "assessment method"
}

Make the outline detailed and appropriate for the request.`
}

// OutlineSkeleton builds the last-resort outline: one generic section whose
// content is a bounded prefix of the raw model text.
func OutlineSkeleton(raw string) LectureOutline {
	content := raw
	if len(content) > fallbackContentLimit {
		content = content[:fallbackContentLimit] + "..."
	}
	return LectureOutline{
		Title:      "Requested lecture",
		Subject:    "General",
		Grade:      "elementary",
		Duration:   "45 minutes",
		Objectives: []string{"Understand the core content"},
		Outline: []Section{{
			Section:  "Main part",
			Duration: "30 minutes",
			Topics: []Topic{{
				MainTopic: "Main content",
				Subtopics: []Subtopic{{
					Subtitle:   "Details",
					Content:    content,
					Activities: []string{"Discussion", "Practice"},
				}},
			}},
		}},
		Resources:  []string{"Reference material"},
		Assessment: "Assessed via exercises",
	}
}

// SlideRequestPrompt builds the system prompt asking the model to extract
// slide-creation parameters from a free-text message.
func SlideRequestPrompt() string {
	return `Extract the information needed to create a slide deck from the user's request.

Return JSON in this format:
{
    "title": "slide deck title",
    "subject": "subject",
    "presentation_type": "lecture/workshop/seminar/conference",
    "duration": 45,
    "requirements": "detailed content requirements"
}`
}

// SlideRequestSkeleton is the fallback when the slide request cannot be
// extracted: the message itself becomes the requirements.
func SlideRequestSkeleton(message string) SlideRequest {
	return SlideRequest{
		Title:            "Requested slides",
		Subject:          "General",
		PresentationType: "lecture",
		Requirements:     message,
	}
}

// LecturePrompt builds the prompt for full free-text lecture content.
func LecturePrompt(req Request) string {
	grade := req.Grade
	if grade == "" {
		grade = "unspecified"
	}
	return fmt.Sprintf(`You are an education expert. Write a detailed lecture with these requirements:

Title: %s
Subject: %s
Grade level: %s
Requirements: %s

The lecture needs:
1. Clear learning objectives
2. Detailed content, section by section
3. Suitable teaching methods
4. Exercises and review questions
5. Reference materials

Write the lecture in full, professionally.`, req.Title, req.Subject, grade, req.Requirements)
}

// DeckPrompt builds the prompt for a flat slide deck.
func DeckPrompt(req Request) string {
	presType := req.PresentationType
	if presType == "" {
		presType = "lecture"
	}
	duration := req.Duration
	if duration == 0 {
		duration = 45
	}
	return fmt.Sprintf(`You are an educational slide designer. Create slide content with these requirements:

Title: %s
Subject: %s
Presentation type: %s
Duration: %d minutes
Requirements: %s

Create 10-15 slides covering:
1. A title slide
2. An objectives slide
3. Main content slides (8-10 slides)
4. A summary slide
5. A Q&A slide

Each slide uses this JSON format:
{
    "title": "Slide title",
    "content": "Slide content",
    "slide_type": "title/content/image/conclusion",
    "notes": "Speaker notes for the teacher"
}

Return an array of slides in that format.`, req.Title, req.Subject, presType, duration, req.Requirements)
}

// DeckFromLecturePrompt builds the prompt deriving a slide deck from
// existing lecture content. The source content is truncated to a bounded
// prefix so the prompt stays within size limits.
func DeckFromLecturePrompt(src SourceContent) string {
	content := src.Content
	if len(content) > sourceContentLimit {
		content = content[:sourceContentLimit] + "..."
	}
	return fmt.Sprintf(`Create presentation slides from the following lecture content:

Lecture title: %s
Subject: %s
Content: %s

Options:
- Introduction slide: %t
- Conclusion slide: %t
- Question slides: %t
- Style: %s

Create 8-12 slides using this JSON format:
[
    {
        "title": "Slide title",
        "content": "Slide content",
        "slide_type": "title/content/conclusion/question",
        "notes": "Notes"
    }
]`, src.Title, src.Subject, content, src.IncludeIntro, src.IncludeConclusion, src.IncludeQuestions, src.Style)
}

// DeckSkeleton is the last-resort slide deck: one content slide carrying
// the raw model text.
func DeckSkeleton(title, raw string) []store.SlideContent {
	return []store.SlideContent{{
		Title:     title,
		Content:   strings.TrimSpace(raw),
		SlideType: "content",
		Notes:     "Automatically generated content",
	}}
}
