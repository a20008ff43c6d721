package domain

import (
	"fmt"
	"sort"
	"strings"

	"quizdraft/internal/util"
)

// QuestionKind identifies how a question is answered and scored.
type QuestionKind string

const (
	SingleChoice QuestionKind = "single-choice"
	MultiChoice  QuestionKind = "multi-choice"
	TrueFalse    QuestionKind = "true-false"
)

// Fixed option texts for true-false questions. The pair is seeded at
// question creation and is neither removable nor text-editable.
const (
	TrueOptionText  = "True"
	FalseOptionText = "False"
)

// AnswerOption is one selectable choice belonging to a question. RemoteID is
// empty until the option has been persisted to the CMS; its presence marks
// the option as an update target on the next save.
type AnswerOption struct {
	LocalID   string
	RemoteID  string
	Text      string
	IsCorrect bool
}

// HasText reports whether the option carries non-blank text. Only options
// with text are persisted.
func (o *AnswerOption) HasText() bool {
	return strings.TrimSpace(o.Text) != ""
}

// Question is a single assessment item. Options are owned exclusively by
// their question; visual option order is positional, not a stored field.
type Question struct {
	LocalID          string
	RemoteID         string
	Title            string
	Kind             QuestionKind
	PromptText       string
	OrderIndex       int
	TimeLimitSeconds int
	Required         bool
	MinCorrect       int
	MaxCorrect       int
	PointsAwarded    int
	MaxPoints        int
	Options          []AnswerOption
}

// Section is a named grouping of questions within one quiz draft.
type Section struct {
	LocalID     string
	RemoteID    string
	Name        string
	Description string
	OrderIndex  int
	Questions   []Question
}

// Draft is the in-memory tree for one lesson's quiz. All durable state
// lives behind the CMS; the draft only tracks what the next save must
// reconcile.
type Draft struct {
	LessonID string
	Sections []Section
}

// NewQuestion creates a question with a fresh local identifier and the
// minimum option set for its kind. True-false questions get the fixed
// True/False pair; choice questions start with two blank options.
func NewQuestion(kind QuestionKind) Question {
	q := Question{
		LocalID:    util.NewULID(),
		Kind:       kind,
		MinCorrect: 1,
		MaxPoints:  1,
	}
	if kind == TrueFalse {
		q.Options = []AnswerOption{
			{LocalID: util.NewULID(), Text: TrueOptionText, IsCorrect: true},
			{LocalID: util.NewULID(), Text: FalseOptionText},
		}
	} else {
		q.Options = []AnswerOption{
			{LocalID: util.NewULID(), IsCorrect: true},
			{LocalID: util.NewULID()},
		}
	}
	return q
}

// NewSection creates an empty section with a fresh local identifier.
func NewSection(name string) Section {
	return Section{
		LocalID: util.NewULID(),
		Name:    name,
	}
}

// NewDraft seeds a draft for a lesson with exactly one empty section named
// from the deterministic template.
func NewDraft(lessonID string) *Draft {
	d := &Draft{LessonID: lessonID}
	d.Sections = append(d.Sections, NewSection("Quiz Section 1"))
	d.Reindex()
	return d
}

// HydrateDraft maps a remote section tree into the local draft shape.
// Local identifiers are taken from the remote identifier when available so
// re-render keys stay stable across reloads. An empty remote tree yields
// the seeded single-section draft.
func HydrateDraft(lessonID string, remote []Section) *Draft {
	if len(remote) == 0 {
		return NewDraft(lessonID)
	}
	d := &Draft{LessonID: lessonID}
	d.Sections = make([]Section, len(remote))
	copy(d.Sections, remote)
	sort.SliceStable(d.Sections, func(i, j int) bool {
		return d.Sections[i].OrderIndex < d.Sections[j].OrderIndex
	})
	for si := range d.Sections {
		s := &d.Sections[si]
		s.LocalID = localIDFor(s.LocalID, s.RemoteID)
		sort.SliceStable(s.Questions, func(i, j int) bool {
			return s.Questions[i].OrderIndex < s.Questions[j].OrderIndex
		})
		for qi := range s.Questions {
			q := &s.Questions[qi]
			q.LocalID = localIDFor(q.LocalID, q.RemoteID)
			for oi := range q.Options {
				o := &q.Options[oi]
				o.LocalID = localIDFor(o.LocalID, o.RemoteID)
			}
		}
	}
	d.Reindex()
	return d
}

func localIDFor(localID, remoteID string) string {
	if localID != "" {
		return localID
	}
	if remoteID != "" {
		return remoteID
	}
	return util.NewULID()
}

// Reindex rewrites every order index to the dense 0..n-1 positional
// sequence. Called after any structural mutation so siblings always carry
// contiguous ranks.
func (d *Draft) Reindex() {
	for si := range d.Sections {
		d.Sections[si].OrderIndex = si
		for qi := range d.Sections[si].Questions {
			d.Sections[si].Questions[qi].OrderIndex = qi
		}
	}
}

// AddSection appends a new empty section named from the template and
// returns it.
func (d *Draft) AddSection() *Section {
	s := NewSection(fmt.Sprintf("Quiz Section %d", len(d.Sections)+1))
	d.Sections = append(d.Sections, s)
	d.Reindex()
	return &d.Sections[len(d.Sections)-1]
}

// RemoveSection drops the section with the given local identifier. The
// remote counterpart, if any, is purged on the next save's delete pass.
func (d *Draft) RemoveSection(localID string) error {
	for i := range d.Sections {
		if d.Sections[i].LocalID == localID {
			d.Sections = append(d.Sections[:i], d.Sections[i+1:]...)
			d.Reindex()
			return nil
		}
	}
	return NewNotFoundError(fmt.Sprintf("Section not found: %s", localID))
}

// UpdateSection sets a section's name and description.
func (d *Draft) UpdateSection(localID, name, description string) error {
	s := d.FindSection(localID)
	if s == nil {
		return NewNotFoundError(fmt.Sprintf("Section not found: %s", localID))
	}
	s.Name = name
	s.Description = description
	return nil
}

// AddQuestion appends a new question of the given kind to a section.
func (d *Draft) AddQuestion(sectionLocalID string, kind QuestionKind) (*Question, error) {
	switch kind {
	case SingleChoice, MultiChoice, TrueFalse:
	default:
		return nil, NewInvalidInputError(fmt.Sprintf("Unknown question kind: %s", kind))
	}
	s := d.FindSection(sectionLocalID)
	if s == nil {
		return nil, NewNotFoundError(fmt.Sprintf("Section not found: %s", sectionLocalID))
	}
	s.Questions = append(s.Questions, NewQuestion(kind))
	d.Reindex()
	return &s.Questions[len(s.Questions)-1], nil
}

// RemoveQuestion drops the question with the given local identifier from
// whichever section owns it.
func (d *Draft) RemoveQuestion(localID string) error {
	for si := range d.Sections {
		s := &d.Sections[si]
		for qi := range s.Questions {
			if s.Questions[qi].LocalID == localID {
				s.Questions = append(s.Questions[:qi], s.Questions[qi+1:]...)
				d.Reindex()
				return nil
			}
		}
	}
	return NewNotFoundError(fmt.Sprintf("Question not found: %s", localID))
}

// QuestionUpdate carries the editable question fields. Nil pointers leave
// the current value untouched.
type QuestionUpdate struct {
	Title            *string
	Kind             *QuestionKind
	PromptText       *string
	TimeLimitSeconds *int
	Required         *bool
	MinCorrect       *int
	MaxCorrect       *int
	PointsAwarded    *int
	MaxPoints        *int
}

// UpdateQuestion applies a partial update. Changing the kind to or from
// true-false resets the option set, since the fixed True/False pair is not
// compatible with free-text options.
func (d *Draft) UpdateQuestion(localID string, upd QuestionUpdate) error {
	q := d.FindQuestion(localID)
	if q == nil {
		return NewNotFoundError(fmt.Sprintf("Question not found: %s", localID))
	}
	if upd.Kind != nil && *upd.Kind != q.Kind {
		switch *upd.Kind {
		case SingleChoice, MultiChoice, TrueFalse:
		default:
			return NewInvalidInputError(fmt.Sprintf("Unknown question kind: %s", *upd.Kind))
		}
		crossesTrueFalse := q.Kind == TrueFalse || *upd.Kind == TrueFalse
		q.Kind = *upd.Kind
		if crossesTrueFalse {
			q.Options = NewQuestion(q.Kind).Options
		}
	}
	if upd.Title != nil {
		q.Title = *upd.Title
	}
	if upd.PromptText != nil {
		q.PromptText = *upd.PromptText
	}
	if upd.TimeLimitSeconds != nil {
		q.TimeLimitSeconds = *upd.TimeLimitSeconds
	}
	if upd.Required != nil {
		q.Required = *upd.Required
	}
	if upd.MinCorrect != nil {
		q.MinCorrect = *upd.MinCorrect
	}
	if upd.MaxCorrect != nil {
		q.MaxCorrect = *upd.MaxCorrect
	}
	if upd.PointsAwarded != nil {
		q.PointsAwarded = *upd.PointsAwarded
	}
	if upd.MaxPoints != nil {
		q.MaxPoints = *upd.MaxPoints
	}
	return nil
}

// AddOption appends a blank option to a question. True-false questions keep
// their fixed pair.
func (d *Draft) AddOption(questionLocalID string) (*AnswerOption, error) {
	q := d.FindQuestion(questionLocalID)
	if q == nil {
		return nil, NewNotFoundError(fmt.Sprintf("Question not found: %s", questionLocalID))
	}
	if q.Kind == TrueFalse {
		return nil, NewError(CodeOptionImmutable, "True-false questions have a fixed option pair", nil)
	}
	q.Options = append(q.Options, AnswerOption{LocalID: util.NewULID()})
	return &q.Options[len(q.Options)-1], nil
}

// RemoveOption drops an option. A question must retain at least two options
// at all times, and the true-false pair is never removable.
func (d *Draft) RemoveOption(optionLocalID string) error {
	q, oi := d.findOption(optionLocalID)
	if q == nil {
		return NewNotFoundError(fmt.Sprintf("Option not found: %s", optionLocalID))
	}
	if q.Kind == TrueFalse {
		return NewError(CodeOptionImmutable, "True-false questions have a fixed option pair", nil)
	}
	if len(q.Options) <= 2 {
		return NewError(CodeOptionFloor, "At least 2 options are required", nil)
	}
	q.Options = append(q.Options[:oi], q.Options[oi+1:]...)
	return nil
}

// OptionUpdate carries the editable option fields.
type OptionUpdate struct {
	Text      *string
	IsCorrect *bool
}

// UpdateOption applies a partial update. The text of a true-false option is
// immutable; its correctness flag is not.
func (d *Draft) UpdateOption(optionLocalID string, upd OptionUpdate) error {
	q, oi := d.findOption(optionLocalID)
	if q == nil {
		return NewNotFoundError(fmt.Sprintf("Option not found: %s", optionLocalID))
	}
	o := &q.Options[oi]
	if upd.Text != nil {
		if q.Kind == TrueFalse {
			return NewError(CodeOptionImmutable, "True-false option text cannot be edited", nil)
		}
		o.Text = *upd.Text
	}
	if upd.IsCorrect != nil {
		o.IsCorrect = *upd.IsCorrect
	}
	return nil
}

// FindSection returns the section with the given local identifier, or nil.
func (d *Draft) FindSection(localID string) *Section {
	for i := range d.Sections {
		if d.Sections[i].LocalID == localID {
			return &d.Sections[i]
		}
	}
	return nil
}

// FindQuestion returns the question with the given local identifier, or nil.
func (d *Draft) FindQuestion(localID string) *Question {
	for si := range d.Sections {
		for qi := range d.Sections[si].Questions {
			if d.Sections[si].Questions[qi].LocalID == localID {
				return &d.Sections[si].Questions[qi]
			}
		}
	}
	return nil
}

func (d *Draft) findOption(localID string) (*Question, int) {
	for si := range d.Sections {
		for qi := range d.Sections[si].Questions {
			q := &d.Sections[si].Questions[qi]
			for oi := range q.Options {
				if q.Options[oi].LocalID == localID {
					return q, oi
				}
			}
		}
	}
	return nil, -1
}

// QuestionCount returns the number of questions across all sections.
func (d *Draft) QuestionCount() int {
	n := 0
	for i := range d.Sections {
		n += len(d.Sections[i].Questions)
	}
	return n
}

// Clone returns a deep copy of the draft. Handlers snapshot the tree before
// releasing the session lock so readers never observe a half-applied
// mutation.
func (d *Draft) Clone() *Draft {
	out := &Draft{LessonID: d.LessonID}
	out.Sections = make([]Section, len(d.Sections))
	for si, s := range d.Sections {
		cs := s
		cs.Questions = make([]Question, len(s.Questions))
		for qi, q := range s.Questions {
			cq := q
			cq.Options = make([]AnswerOption, len(q.Options))
			copy(cq.Options, q.Options)
			cs.Questions[qi] = cq
		}
		out.Sections[si] = cs
	}
	return out
}
