package domain

import (
	"fmt"
	"strings"
)

// Validate checks a question's structural correctness. Rules are applied in
// order and the first failure wins.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.PromptText) == "" {
		return NewValidationError("Question text is required")
	}
	if len(q.Options) < 2 {
		return NewValidationError("At least 2 options are required")
	}

	valid := 0
	correct := 0
	for i := range q.Options {
		if !q.Options[i].HasText() {
			continue
		}
		valid++
		if q.Options[i].IsCorrect {
			correct++
		}
	}
	if valid < 2 {
		return NewValidationError("At least 2 valid options are required")
	}

	switch q.Kind {
	case SingleChoice, TrueFalse:
		if correct != 1 {
			return NewValidationError("Exactly one correct answer is required for this question type")
		}
	case MultiChoice:
		if correct < q.MinCorrect {
			return NewValidationError(fmt.Sprintf("At least %d correct answers are required", q.MinCorrect))
		}
		// MaxCorrect of zero means unbounded upstream; only enforce a
		// positive ceiling.
		if q.MaxCorrect > 0 && correct > q.MaxCorrect {
			return NewValidationError(fmt.Sprintf("At most %d correct answers are allowed", q.MaxCorrect))
		}
	}
	return nil
}

// ValidateForSave gates the reconciliation pass. It fails when the draft
// has no questions at all, or when any question in any section fails
// validation; no network calls may be issued in either case.
func (d *Draft) ValidateForSave() error {
	if d.QuestionCount() == 0 {
		return NewError(CodeValidation, "At least one question is required before saving", nil)
	}
	for si := range d.Sections {
		s := &d.Sections[si]
		for qi := range s.Questions {
			if err := s.Questions[qi].Validate(); err != nil {
				msg := fmt.Sprintf("Question %d in section %q: %s", qi+1, s.Name, err.Error())
				return NewError(CodeValidation, msg, err).
					WithContext("section_local_id", s.LocalID).
					WithContext("question_local_id", s.Questions[qi].LocalID)
			}
		}
	}
	return nil
}
