package classify

import "strings"

// FeedbackKind is the closed set of feedback_type values the reports know.
type FeedbackKind int

const (
	FeedbackUnrecognized FeedbackKind = iota
	FeedbackGeneral
	FeedbackApp
	FeedbackFlashcard
	FeedbackQuiz
	FeedbackContent
)

// DefaultFeedbackType is stored when an event carries no feedback_type.
const DefaultFeedbackType = "general"

// FeedbackKindOf maps a stored feedback_type case-insensitively.
func FeedbackKindOf(feedbackType string) FeedbackKind {
	switch strings.ToLower(strings.TrimSpace(feedbackType)) {
	case DefaultFeedbackType:
		return FeedbackGeneral
	case "app_feedback":
		return FeedbackApp
	case "flashcard_feedback":
		return FeedbackFlashcard
	case "quiz_feedback":
		return FeedbackQuiz
	case "content_feedback":
		return FeedbackContent
	default:
		return FeedbackUnrecognized
	}
}

// SessionContext buckets SESSION_END events by properties.context.
type SessionContext int

const (
	ContextOther SessionContext = iota
	ContextStudySet
	ContextQuiz
	ContextFlashcards
)

// SessionContexts lists every context in display order.
var SessionContexts = []SessionContext{ContextStudySet, ContextQuiz, ContextFlashcards, ContextOther}

// SessionContextOf maps properties.context; anything unknown is ContextOther.
func SessionContextOf(context string) SessionContext {
	switch strings.ToLower(strings.TrimSpace(context)) {
	case "study_set":
		return ContextStudySet
	case "quiz":
		return ContextQuiz
	case "flashcards":
		return ContextFlashcards
	default:
		return ContextOther
	}
}

func (c SessionContext) String() string {
	switch c {
	case ContextStudySet:
		return "study_set"
	case ContextQuiz:
		return "quiz"
	case ContextFlashcards:
		return "flashcards"
	default:
		return "other"
	}
}

// Label is the human-readable name used on the dashboard.
func (c SessionContext) Label() string {
	switch c {
	case ContextStudySet:
		return "Study sets"
	case ContextQuiz:
		return "Quizzes"
	case ContextFlashcards:
		return "Flashcards"
	default:
		return "Other"
	}
}

// FeedbackCategory is the tag shown next to app feedback (details.category).
type FeedbackCategory int

const (
	CategoryOther FeedbackCategory = iota
	CategoryBug
	CategoryFeature
	CategoryContent
	CategoryUX
	CategoryTechnical
)

// FeedbackCategoryOf maps details.category.
func FeedbackCategoryOf(category string) FeedbackCategory {
	switch category {
	case "bug":
		return CategoryBug
	case "feature":
		return CategoryFeature
	case "content":
		return CategoryContent
	case "ux":
		return CategoryUX
	case "technical":
		return CategoryTechnical
	default:
		return CategoryOther
	}
}

func (c FeedbackCategory) String() string {
	switch c {
	case CategoryBug:
		return "Bug"
	case CategoryFeature:
		return "Feature request"
	case CategoryContent:
		return "Content"
	case CategoryUX:
		return "UX"
	case CategoryTechnical:
		return "Technical"
	default:
		return "Other"
	}
}
