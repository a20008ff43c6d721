package validation

import (
	"quizdraft/internal/domain"
	"regexp"
	"strings"
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLessonID validates the lesson identifier path parameter
func (v *Validator) ValidateLessonID(lessonID string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(lessonID) == "" {
		errors = append(errors, domain.NewMissingFieldError("lesson_id"))
		return errors
	}
	if !isValidIdentifier(lessonID) {
		errors = append(errors, domain.NewInvalidFormatError("lesson_id", lessonID))
	}

	return errors
}

// ValidateLocalID validates a node's local identifier path parameter
func (v *Validator) ValidateLocalID(localID string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(localID) == "" {
		errors = append(errors, domain.NewMissingFieldError("local_id"))
		return errors
	}
	if !isValidIdentifier(localID) {
		errors = append(errors, domain.NewInvalidFormatError("local_id", localID))
	}

	return errors
}

// ValidateReorderRequest validates the reorder request parameters
func (v *Validator) ValidateReorderRequest(scope string, from, to int) domain.ValidationErrors {
	var errors domain.ValidationErrors

	switch scope {
	case "sections", "questions", "options":
	default:
		errors = append(errors, domain.NewInvalidFormatError("scope", scope))
	}
	if from < 0 {
		errors = append(errors, domain.NewOutOfRangeError("from", from, 0, maxSiblings))
	}
	if to < 0 {
		errors = append(errors, domain.NewOutOfRangeError("to", to, 0, maxSiblings))
	}

	return errors
}

// ValidateQuestionKind validates the kind of a new question
func (v *Validator) ValidateQuestionKind(kind string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(kind) == "" {
		errors = append(errors, domain.NewMissingFieldError("kind"))
		return errors
	}
	switch domain.QuestionKind(kind) {
	case domain.SingleChoice, domain.MultiChoice, domain.TrueFalse:
	default:
		errors = append(errors, domain.NewInvalidFormatError("kind", kind))
	}

	return errors
}

const maxSiblings = 500

// Helper functions for validation

// isValidIdentifier accepts the identifiers the CMS and the draft layer
// hand out: numeric IDs, slugs, and ULIDs.
func isValidIdentifier(s string) bool {
	if len(s) == 0 || len(s) > 64 {
		return false
	}
	validIdentifier := regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	return validIdentifier.MatchString(s)
}
