package domain

import "context"

// QuizStore is the boundary to the external CMS. All durable quiz state
// lives behind it; the reconciliation engine only sees created/updated
// entities or an error per call.
//
// Create calls return the remote identifier assigned by the store. Fetched
// sections come back in the domain shape with RemoteID set and LocalID
// empty; hydration assigns local identifiers.
type QuizStore interface {
	// EnsureLesson creates the parent content item when it does not exist
	// yet and returns its remote identifier.
	EnsureLesson(ctx context.Context, lessonID string) (string, error)

	// FetchSections returns the full remote tree (sections with nested
	// questions and options) for a lesson.
	FetchSections(ctx context.Context, lessonID string) ([]Section, error)

	CreateSection(ctx context.Context, lessonRemoteID string, s *Section) (string, error)
	UpdateSection(ctx context.Context, s *Section) error
	DeleteSection(ctx context.Context, remoteID string) error

	CreateQuestion(ctx context.Context, sectionRemoteID string, q *Question) (string, error)
	UpdateQuestion(ctx context.Context, sectionRemoteID string, q *Question) error
	DeleteQuestion(ctx context.Context, remoteID string) error

	CreateOption(ctx context.Context, questionRemoteID string, o *AnswerOption) (string, error)
	UpdateOption(ctx context.Context, o *AnswerOption) error
	DeleteOption(ctx context.Context, remoteID string) error
}
