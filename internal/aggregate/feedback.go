package aggregate

import (
	"time"

	"github.com/PratikDhanave/lexie-analytics/internal/classify"
	"github.com/PratikDhanave/lexie-analytics/internal/models"
)

const appFeedbackLimit = 5

// Content rating labels, in display order.
const (
	RatingFlashcards    = "Flashcards"
	RatingQuizQuestions = "Quiz questions"
	RatingStudySet      = "Study set"
	RatingHomeworkHelp  = "Homework help"
)

var ratingOrderLabels = []string{RatingFlashcards, RatingQuizQuestions, RatingStudySet, RatingHomeworkHelp}

// FeedbackItem is one feedback row prepared for display.
type FeedbackItem struct {
	Timestamp    time.Time
	FeedbackType string
	Kind         classify.FeedbackKind
	Category     classify.FeedbackCategory
	Text         string
	IsPositive   *bool
	Screenshot   string
}

// ContentRating counts thumbs up/down for one content area.
// Unrated rows count as negative.
type ContentRating struct {
	Label    string
	Positive int
	Negative int
	Total    int
}

// FeedbackReport backs the feedback page.
type FeedbackReport struct {
	// Recent is every row passed in, in input order (newest first from the store).
	Recent         []FeedbackItem
	AppFeedback    []FeedbackItem
	AppTotal       int
	ContentRatings []ContentRating
}

// ComputeFeedbackReport splits feedback rows into app feedback and content ratings.
func ComputeFeedbackReport(rows []models.FeedbackRecord) FeedbackReport {
	var rep FeedbackReport
	ratings := map[string]*ContentRating{}

	for _, row := range rows {
		item := toFeedbackItem(row)
		rep.Recent = append(rep.Recent, item)

		if item.Kind == classify.FeedbackApp {
			rep.AppTotal++
			if len(rep.AppFeedback) < appFeedbackLimit {
				rep.AppFeedback = append(rep.AppFeedback, item)
			}
		}

		label := contentRatingLabel(item.Kind, row.Details)
		if label == "" {
			continue
		}
		cr, ok := ratings[label]
		if !ok {
			cr = &ContentRating{Label: label}
			ratings[label] = cr
		}
		if row.IsPositive != nil && *row.IsPositive {
			cr.Positive++
		} else {
			cr.Negative++
		}
		cr.Total++
	}

	for _, label := range ratingOrderLabels {
		if cr, ok := ratings[label]; ok {
			rep.ContentRatings = append(rep.ContentRatings, *cr)
		}
	}
	return rep
}

func toFeedbackItem(row models.FeedbackRecord) FeedbackItem {
	return FeedbackItem{
		Timestamp:    row.Timestamp,
		FeedbackType: row.FeedbackType,
		Kind:         classify.FeedbackKindOf(row.FeedbackType),
		Category:     classify.FeedbackCategoryOf(propString(row.Details, "category")),
		Text:         propString(row.Details, "feedback_text"),
		IsPositive:   row.IsPositive,
		Screenshot:   models.Deref(row.Screenshot),
	}
}

func contentRatingLabel(kind classify.FeedbackKind, details map[string]any) string {
	switch kind {
	case classify.FeedbackFlashcard:
		return RatingFlashcards
	case classify.FeedbackQuiz:
		return RatingQuizQuestions
	case classify.FeedbackContent:
		if propString(details, "category") == "homework" {
			return RatingHomeworkHelp
		}
		return RatingStudySet
	default:
		return ""
	}
}
