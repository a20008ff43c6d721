package service

import (
	"context"

	"quizdraft/internal/domain"

	"go.uber.org/zap"
)

// NodeFailure records one node whose persistence call failed during a save
// run. The node keeps its previous remote state and the next save attempt
// reconciles it again.
type NodeFailure struct {
	NodeID      string   `json:"node_id"`
	NodeKind    NodeKind `json:"node_kind"`
	DisplayName string   `json:"display_name"`
	Error       string   `json:"error"`
}

// SaveOutcome aggregates one reconciliation run.
type SaveOutcome struct {
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Deleted  int           `json:"deleted"`
	Failures []NodeFailure `json:"failures,omitempty"`
}

// Succeeded reports whether every persistence call went through.
func (o *SaveOutcome) Succeeded() bool {
	return len(o.Failures) == 0
}

// Reconciler walks the local draft tree top-down and synchronizes it
// against the CMS: creates for nodes without a remote identifier, updates
// for nodes with one, and deletions for remote nodes no longer present in
// the draft. Processing is strictly sequential so a child is never created
// before its parent's remote identifier is known and per-node progress
// stays deterministic.
type Reconciler struct {
	store  domain.QuizStore
	logger *zap.Logger
}

// NewReconciler creates a reconciler over the given store.
func NewReconciler(store domain.QuizStore, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

// Save validates the draft, ensures the parent content item exists, then
// persists the tree section by section against the snapshot of the remote
// tree. Individual node failures are recorded and do not abort sibling
// processing; a validation failure or a parent-creation failure aborts the
// whole run before any sibling work happens. The draft is mutated in
// place: every successful create writes the assigned remote identifier
// back into its node.
func (r *Reconciler) Save(ctx context.Context, draft *domain.Draft, snapshot []domain.Section, progress *ProgressReporter) (*SaveOutcome, error) {
	if err := draft.ValidateForSave(); err != nil {
		return nil, err
	}

	lessonRemoteID, err := r.store.EnsureLesson(ctx, draft.LessonID)
	if err != nil {
		return nil, domain.NewParentCreateError(draft.LessonID, err)
	}

	// Sibling ranks are rederived as the dense positional sequence
	// immediately before persisting.
	draft.Reindex()

	outcome := &SaveOutcome{}
	for si := range draft.Sections {
		r.saveSection(ctx, lessonRemoteID, &draft.Sections[si], snapshot, progress, outcome)
	}
	r.deleteOrphanSections(ctx, draft, snapshot, outcome)

	progress.Finish()

	if !outcome.Succeeded() {
		return outcome, domain.NewError(domain.CodeSaveFailed, "Some changes could not be saved", nil)
	}
	return outcome, nil
}

func (r *Reconciler) saveSection(ctx context.Context, lessonRemoteID string, s *domain.Section, snapshot []domain.Section, progress *ProgressReporter, outcome *SaveOutcome) {
	progress.Begin(s.LocalID, NodeSection, s.Name)
	if s.RemoteID == "" {
		remoteID, err := r.store.CreateSection(ctx, lessonRemoteID, s)
		if err != nil {
			r.logger.Error("Failed to create section",
				zap.String("section", s.Name),
				zap.Error(err))
			progress.Fail(s.LocalID, err)
			outcome.Failures = append(outcome.Failures, NodeFailure{
				NodeID: s.LocalID, NodeKind: NodeSection, DisplayName: s.Name, Error: err.Error(),
			})
			// Questions cannot be linked without the section's remote
			// identifier; they stay create-pending for the next save.
			return
		}
		s.RemoteID = remoteID
		outcome.Created++
		progress.Succeed(s.LocalID)
	} else {
		// Metadata edits of already-persisted sections are re-sent on
		// every save; there is no dirty-tracking.
		if err := r.store.UpdateSection(ctx, s); err != nil {
			r.logger.Error("Failed to update section",
				zap.String("section", s.Name),
				zap.String("remote_id", s.RemoteID),
				zap.Error(err))
			progress.Fail(s.LocalID, err)
			outcome.Failures = append(outcome.Failures, NodeFailure{
				NodeID: s.LocalID, NodeKind: NodeSection, DisplayName: s.Name, Error: err.Error(),
			})
			// The section still exists remotely, so its children are
			// processed regardless.
		} else {
			outcome.Updated++
			progress.Succeed(s.LocalID)
		}
	}

	for qi := range s.Questions {
		r.saveQuestion(ctx, s.RemoteID, &s.Questions[qi], snapshot, progress, outcome)
	}
	r.deleteOrphanQuestions(ctx, s, snapshot, outcome)
}

func (r *Reconciler) saveQuestion(ctx context.Context, sectionRemoteID string, q *domain.Question, snapshot []domain.Section, progress *ProgressReporter, outcome *SaveOutcome) {
	name := q.Title
	if name == "" {
		name = q.PromptText
	}
	progress.Begin(q.LocalID, NodeQuestion, name)
	if q.RemoteID == "" {
		remoteID, err := r.store.CreateQuestion(ctx, sectionRemoteID, q)
		if err != nil {
			r.logger.Error("Failed to create question",
				zap.String("question", name),
				zap.Error(err))
			progress.Fail(q.LocalID, err)
			outcome.Failures = append(outcome.Failures, NodeFailure{
				NodeID: q.LocalID, NodeKind: NodeQuestion, DisplayName: name, Error: err.Error(),
			})
			// Options need the question's remote identifier.
			return
		}
		q.RemoteID = remoteID
		outcome.Created++
		progress.Succeed(q.LocalID)
	} else {
		if err := r.store.UpdateQuestion(ctx, sectionRemoteID, q); err != nil {
			r.logger.Error("Failed to update question",
				zap.String("question", name),
				zap.String("remote_id", q.RemoteID),
				zap.Error(err))
			progress.Fail(q.LocalID, err)
			outcome.Failures = append(outcome.Failures, NodeFailure{
				NodeID: q.LocalID, NodeKind: NodeQuestion, DisplayName: name, Error: err.Error(),
			})
		} else {
			outcome.Updated++
			progress.Succeed(q.LocalID)
		}
	}

	for oi := range q.Options {
		o := &q.Options[oi]
		// Only options with text are persisted; a blank row is a UI
		// placeholder, not an entity.
		if !o.HasText() {
			continue
		}
		r.saveOption(ctx, q.RemoteID, o, progress, outcome)
	}
	r.deleteOrphanOptions(ctx, q, snapshot, outcome)
}

func (r *Reconciler) saveOption(ctx context.Context, questionRemoteID string, o *domain.AnswerOption, progress *ProgressReporter, outcome *SaveOutcome) {
	progress.Begin(o.LocalID, NodeOption, o.Text)
	if o.RemoteID == "" {
		remoteID, err := r.store.CreateOption(ctx, questionRemoteID, o)
		if err != nil {
			r.logger.Error("Failed to create option",
				zap.String("option", o.Text),
				zap.Error(err))
			progress.Fail(o.LocalID, err)
			outcome.Failures = append(outcome.Failures, NodeFailure{
				NodeID: o.LocalID, NodeKind: NodeOption, DisplayName: o.Text, Error: err.Error(),
			})
			return
		}
		o.RemoteID = remoteID
		outcome.Created++
	} else {
		if err := r.store.UpdateOption(ctx, o); err != nil {
			r.logger.Error("Failed to update option",
				zap.String("option", o.Text),
				zap.String("remote_id", o.RemoteID),
				zap.Error(err))
			progress.Fail(o.LocalID, err)
			outcome.Failures = append(outcome.Failures, NodeFailure{
				NodeID: o.LocalID, NodeKind: NodeOption, DisplayName: o.Text, Error: err.Error(),
			})
			return
		}
		outcome.Updated++
	}
	progress.Succeed(o.LocalID)
}

// deleteOrphanOptions purges remote options of one question that are no
// longer referenced by the draft. An option blanked by the user drops out
// of the non-empty-text set and is deleted here. Cleanup errors are logged
// and swallowed: the local entity is already gone and the next save will
// retry the diff.
func (r *Reconciler) deleteOrphanOptions(ctx context.Context, q *domain.Question, snapshot []domain.Section, outcome *SaveOutcome) {
	if q.RemoteID == "" {
		return
	}
	live := make(map[string]bool)
	for i := range q.Options {
		if q.Options[i].RemoteID != "" && q.Options[i].HasText() {
			live[q.Options[i].RemoteID] = true
		}
	}
	for _, snap := range snapshotQuestionOptions(snapshot, q.RemoteID) {
		if live[snap.RemoteID] {
			continue
		}
		if err := r.store.DeleteOption(ctx, snap.RemoteID); err != nil {
			r.logger.Warn("Failed to delete orphaned option",
				zap.String("remote_id", snap.RemoteID),
				zap.Error(err))
			continue
		}
		outcome.Deleted++
	}
}

func (r *Reconciler) deleteOrphanQuestions(ctx context.Context, s *domain.Section, snapshot []domain.Section, outcome *SaveOutcome) {
	if s.RemoteID == "" {
		return
	}
	live := make(map[string]bool)
	for i := range s.Questions {
		if s.Questions[i].RemoteID != "" {
			live[s.Questions[i].RemoteID] = true
		}
	}
	for _, snap := range snapshotSectionQuestions(snapshot, s.RemoteID) {
		if live[snap.RemoteID] {
			continue
		}
		if err := r.store.DeleteQuestion(ctx, snap.RemoteID); err != nil {
			r.logger.Warn("Failed to delete orphaned question",
				zap.String("remote_id", snap.RemoteID),
				zap.Error(err))
			continue
		}
		outcome.Deleted++
	}
}

func (r *Reconciler) deleteOrphanSections(ctx context.Context, draft *domain.Draft, snapshot []domain.Section, outcome *SaveOutcome) {
	live := make(map[string]bool)
	for i := range draft.Sections {
		if draft.Sections[i].RemoteID != "" {
			live[draft.Sections[i].RemoteID] = true
		}
	}
	for i := range snapshot {
		if snapshot[i].RemoteID == "" || live[snapshot[i].RemoteID] {
			continue
		}
		if err := r.store.DeleteSection(ctx, snapshot[i].RemoteID); err != nil {
			r.logger.Warn("Failed to delete orphaned section",
				zap.String("remote_id", snapshot[i].RemoteID),
				zap.Error(err))
			continue
		}
		outcome.Deleted++
	}
}

func snapshotSectionQuestions(snapshot []domain.Section, sectionRemoteID string) []domain.Question {
	for i := range snapshot {
		if snapshot[i].RemoteID == sectionRemoteID {
			return snapshot[i].Questions
		}
	}
	return nil
}

func snapshotQuestionOptions(snapshot []domain.Section, questionRemoteID string) []domain.AnswerOption {
	for i := range snapshot {
		for j := range snapshot[i].Questions {
			if snapshot[i].Questions[j].RemoteID == questionRemoteID {
				return snapshot[i].Questions[j].Options
			}
		}
	}
	return nil
}
