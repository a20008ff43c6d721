package dto

// AnswerOptionResponse represents one option of a draft question.
type AnswerOptionResponse struct {
	LocalID   string `json:"local_id"`
	RemoteID  string `json:"remote_id,omitempty"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionResponse represents one draft question.
type QuestionResponse struct {
	LocalID          string                 `json:"local_id"`
	RemoteID         string                 `json:"remote_id,omitempty"`
	Title            string                 `json:"title"`
	Kind             string                 `json:"kind"`
	PromptText       string                 `json:"prompt_text"`
	OrderIndex       int                    `json:"order_index"`
	TimeLimitSeconds int                    `json:"time_limit_seconds"`
	Required         bool                   `json:"required"`
	MinCorrect       int                    `json:"min_correct"`
	MaxCorrect       int                    `json:"max_correct"`
	PointsAwarded    int                    `json:"points_awarded"`
	MaxPoints        int                    `json:"max_points"`
	Options          []AnswerOptionResponse `json:"options"`
}

// SectionResponse represents one draft section.
type SectionResponse struct {
	LocalID     string             `json:"local_id"`
	RemoteID    string             `json:"remote_id,omitempty"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	OrderIndex  int                `json:"order_index"`
	Questions   []QuestionResponse `json:"questions"`
}

// DraftResponse is the full draft tree for one lesson.
type DraftResponse struct {
	LessonID string            `json:"lesson_id"`
	Sections []SectionResponse `json:"sections"`
}

// UpdateSectionRequest carries a section metadata edit.
type UpdateSectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AddQuestionRequest selects the kind for a new question.
type AddQuestionRequest struct {
	Kind string `json:"kind"`
}

// UpdateQuestionRequest carries a partial question edit; absent fields are
// left untouched.
type UpdateQuestionRequest struct {
	Title            *string `json:"title,omitempty"`
	Kind             *string `json:"kind,omitempty"`
	PromptText       *string `json:"prompt_text,omitempty"`
	TimeLimitSeconds *int    `json:"time_limit_seconds,omitempty"`
	Required         *bool   `json:"required,omitempty"`
	MinCorrect       *int    `json:"min_correct,omitempty"`
	MaxCorrect       *int    `json:"max_correct,omitempty"`
	PointsAwarded    *int    `json:"points_awarded,omitempty"`
	MaxPoints        *int    `json:"max_points,omitempty"`
}

// UpdateOptionRequest carries a partial option edit.
type UpdateOptionRequest struct {
	Text      *string `json:"text,omitempty"`
	IsCorrect *bool   `json:"is_correct,omitempty"`
}

// ReorderRequest relocates one element within a sibling array. Scope is
// "sections", "questions" (ParentLocalID names the section) or "options"
// (ParentLocalID names the question).
type ReorderRequest struct {
	Scope         string `json:"scope"`
	ParentLocalID string `json:"parent_local_id,omitempty"`
	From          int    `json:"from"`
	To            int    `json:"to"`
}

// ReorderResponse reports whether the drop landed on a valid target.
type ReorderResponse struct {
	Moved bool           `json:"moved"`
	Draft *DraftResponse `json:"draft"`
}

// ProgressEntryResponse is one row of the save progress list.
type ProgressEntryResponse struct {
	NodeID      string `json:"node_id"`
	NodeKind    string `json:"node_kind"`
	DisplayName string `json:"display_name"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// SaveResponse aggregates one save run.
type SaveResponse struct {
	Success  bool           `json:"success"`
	Created  int            `json:"created"`
	Updated  int            `json:"updated"`
	Deleted  int            `json:"deleted"`
	Failures []NodeFailure  `json:"failures,omitempty"`
	Draft    *DraftResponse `json:"draft"`
}

// NodeFailure identifies a node whose persistence call failed.
type NodeFailure struct {
	NodeID      string `json:"node_id"`
	NodeKind    string `json:"node_kind"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
