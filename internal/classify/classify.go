// Package classify decides where an ingested event is persisted and maps the
// free-form string tags used by clients onto closed enumerations.
package classify

import (
	"strings"

	"github.com/PratikDhanave/lexie-analytics/internal/models"
)

// Kind is the persistence target of an event.
type Kind int

const (
	KindAnalytics Kind = iota
	KindFeedback
)

func (k Kind) String() string {
	if k == KindFeedback {
		return "feedback"
	}
	return "analytics"
}

// Event type tags that always denote feedback.
const (
	TypeFeedbackSubmitted = "FEEDBACK_SUBMITTED"
	TypeContentFeedback   = "CONTENT_FEEDBACK"
)

// Event type tags read by the aggregation engine.
const (
	TypeScreenView      = "SCREEN_VIEW"
	TypeFeatureUse      = "FEATURE_USE"
	TypeActiveWeek      = "ACTIVE_WEEK"
	TypeSessionEnd      = "SESSION_END"
	TypeStudySetCreated = "STUDY_SET_CREATED"
)

// Classify returns KindFeedback when the type tag is a feedback tag or when
// properties.feedback_type is truthy; KindAnalytics otherwise.
func Classify(ev models.Event) Kind {
	if strings.EqualFold(ev.Type, TypeFeedbackSubmitted) || strings.EqualFold(ev.Type, TypeContentFeedback) {
		return KindFeedback
	}
	if Truthy(ev.Properties["feedback_type"]) {
		return KindFeedback
	}
	return KindAnalytics
}

// Truthy reports whether a decoded JSON value counts as set:
// nil, false, "", and 0 do not.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	default:
		return true
	}
}

// String returns v when it is a string, "" otherwise.
func String(v any) string {
	s, _ := v.(string)
	return s
}
