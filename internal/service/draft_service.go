package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"quizdraft/internal/cache"
	"quizdraft/internal/config"
	"quizdraft/internal/domain"
	"quizdraft/internal/dto"
	"quizdraft/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DraftService defines the draft authoring operations exposed to the HTTP
// surface. One draft per lesson is held in memory; the CMS stays the sole
// system of record.
type DraftService interface {
	LoadDraft(ctx context.Context, lessonID string) (*dto.DraftResponse, error)
	AddSection(ctx context.Context, lessonID string) (*dto.DraftResponse, error)
	UpdateSection(ctx context.Context, lessonID, localID string, req dto.UpdateSectionRequest) (*dto.DraftResponse, error)
	RemoveSection(ctx context.Context, lessonID, localID string) (*dto.DraftResponse, error)
	AddQuestion(ctx context.Context, lessonID, sectionLocalID string, req dto.AddQuestionRequest) (*dto.DraftResponse, error)
	UpdateQuestion(ctx context.Context, lessonID, localID string, req dto.UpdateQuestionRequest) (*dto.DraftResponse, error)
	RemoveQuestion(ctx context.Context, lessonID, localID string) (*dto.DraftResponse, error)
	AddOption(ctx context.Context, lessonID, questionLocalID string) (*dto.DraftResponse, error)
	UpdateOption(ctx context.Context, lessonID, localID string, req dto.UpdateOptionRequest) (*dto.DraftResponse, error)
	RemoveOption(ctx context.Context, lessonID, localID string) (*dto.DraftResponse, error)
	Reorder(ctx context.Context, lessonID string, req dto.ReorderRequest) (*dto.ReorderResponse, error)
	Save(ctx context.Context, lessonID string) (*dto.SaveResponse, error)
	Progress(ctx context.Context, lessonID string) ([]dto.ProgressEntryResponse, error)
}

const defaultSectionsTTL = 5 * time.Minute

type draftSession struct {
	mu       sync.Mutex
	draft    *domain.Draft
	progress *ProgressReporter
	saving   bool
}

type draftService struct {
	store      domain.QuizStore
	cache      domain.Cache
	cfg        *config.Config
	reconciler *Reconciler

	sfGroup  singleflight.Group
	mu       sync.Mutex
	sessions map[string]*draftSession
}

// NewDraftService creates the draft service over a CMS store and a
// response cache.
func NewDraftService(store domain.QuizStore, responseCache domain.Cache, cfg *config.Config) DraftService {
	return &draftService{
		store:      store,
		cache:      responseCache,
		cfg:        cfg,
		reconciler: NewReconciler(store, logger.Get()),
		sessions:   make(map[string]*draftSession),
	}
}

func (s *draftService) session(lessonID string) *draftSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[lessonID]
	if !ok {
		sess = &draftSession{progress: NewProgressReporter(0)}
		s.sessions[lessonID] = sess
	}
	return sess
}

// LoadDraft hydrates the lesson's draft from the remote tree, seeding a
// single empty section when the lesson has no quiz yet. Reloading an
// already-loaded lesson returns the in-memory draft unchanged.
func (s *draftService) LoadDraft(ctx context.Context, lessonID string) (*dto.DraftResponse, error) {
	sess := s.session(lessonID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.draft != nil {
		return toDraftResponse(sess.draft), nil
	}

	remote, err := s.fetchSections(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	sess.draft = domain.HydrateDraft(lessonID, remote)
	return toDraftResponse(sess.draft), nil
}

// fetchSections reads the remote tree through the response cache,
// collapsing concurrent fetches for the same lesson.
func (s *draftService) fetchSections(ctx context.Context, lessonID string) ([]domain.Section, error) {
	cacheKey := cache.GenerateCacheKey("drafts", "sections", lessonID)

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		var sections []domain.Section
		if err := json.Unmarshal([]byte(cached), &sections); err == nil {
			return sections, nil
		}
		logger.Get().Warn("Discarding undecodable cached section tree",
			zap.String("lesson_id", lessonID))
	} else if err != domain.ErrCacheMiss {
		logger.Get().Error("Failed to read section tree from cache",
			zap.String("lesson_id", lessonID),
			zap.Error(err))
	}

	res, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		sections, fetchErr := s.store.FetchSections(ctx, lessonID)
		if fetchErr != nil {
			return nil, fetchErr
		}
		if encoded, encErr := json.Marshal(sections); encErr == nil {
			ttl := s.cfg.ParseTTLStringOrDefault(s.cfg.Cache.SectionsTTL, defaultSectionsTTL)
			if cacheErr := s.cache.Set(ctx, cacheKey, string(encoded), ttl); cacheErr != nil {
				logger.Get().Error("Failed to cache section tree",
					zap.String("lesson_id", lessonID),
					zap.Error(cacheErr))
			}
		}
		return sections, nil
	})
	if err != nil {
		return nil, err
	}
	sections, ok := res.([]domain.Section)
	if !ok {
		return nil, domain.NewInternalError("unexpected type from singleflight fetch", nil)
	}
	return sections, nil
}

// mutate runs fn against the lesson's loaded draft under the session lock.
// Mutations are rejected while a save is running; the save trigger has
// exclusive use of the tree until it finishes.
func (s *draftService) mutate(lessonID string, fn func(d *domain.Draft) error) (*dto.DraftResponse, error) {
	sess := s.session(lessonID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.draft == nil {
		return nil, domain.NewDraftNotFoundError(lessonID)
	}
	if sess.saving {
		return nil, domain.NewSaveInProgressError(lessonID)
	}
	if err := fn(sess.draft); err != nil {
		return nil, err
	}
	return toDraftResponse(sess.draft), nil
}

func (s *draftService) AddSection(ctx context.Context, lessonID string) (*dto.DraftResponse, error) {
	return s.mutate(lessonID, func(d *domain.Draft) error {
		d.AddSection()
		return nil
	})
}

func (s *draftService) UpdateSection(ctx context.Context, lessonID, localID string, req dto.UpdateSectionRequest) (*dto.DraftResponse, error) {
	return s.mutate(lessonID, func(d *domain.Draft) error {
		return d.UpdateSection(localID, req.Name, req.Description)
	})
}

func (s *draftService) RemoveSection(ctx context.Context, lessonID, localID string) (*dto.DraftResponse, error) {
	return s.mutate(lessonID, func(d *domain.Draft) error {
		return d.RemoveSection(localID)
	})
}

func (s *draftService) AddQuestion(ctx context.Context, lessonID, sectionLocalID string, req dto.AddQuestionRequest) (*dto.DraftResponse, error) {
	return s.mutate(lessonID, func(d *domain.Draft) error {
		_, err := d.AddQuestion(sectionLocalID, domain.QuestionKind(req.Kind))
		return err
	})
}

func (s *draftService) UpdateQuestion(ctx context.Context, lessonID, localID string, req dto.UpdateQuestionRequest) (*dto.DraftResponse, error) {
	return s.mutate(lessonID, func(d *domain.Draft) error {
		upd := domain.QuestionUpdate{
			Title:            req.Title,
			PromptText:       req.PromptText,
			TimeLimitSeconds: req.TimeLimitSeconds,
			Required:         req.Required,
			MinCorrect:       req.MinCorrect,
			MaxCorrect:       req.MaxCorrect,
			PointsAwarded:    req.PointsAwarded,
			MaxPoints:        req.MaxPoints,
		}
		if req.Kind != nil {
			kind := domain.QuestionKind(*req.Kind)
			upd.Kind = &kind
		}
		return d.UpdateQuestion(localID, upd)
	})
}

func (s *draftService) RemoveQuestion(ctx context.Context, lessonID, localID string) (*dto.DraftResponse, error) {
	return s.mutate(lessonID, func(d *domain.Draft) error {
		return d.RemoveQuestion(localID)
	})
}

func (s *draftService) AddOption(ctx context.Context, lessonID, questionLocalID string) (*dto.DraftResponse, error) {
	return s.mutate(lessonID, func(d *domain.Draft) error {
		_, err := d.AddOption(questionLocalID)
		return err
	})
}

func (s *draftService) UpdateOption(ctx context.Context, lessonID, localID string, req dto.UpdateOptionRequest) (*dto.DraftResponse, error) {
	return s.mutate(lessonID, func(d *domain.Draft) error {
		return d.UpdateOption(localID, domain.OptionUpdate{
			Text:      req.Text,
			IsCorrect: req.IsCorrect,
		})
	})
}

func (s *draftService) RemoveOption(ctx context.Context, lessonID, localID string) (*dto.DraftResponse, error) {
	return s.mutate(lessonID, func(d *domain.Draft) error {
		return d.RemoveOption(localID)
	})
}

func (s *draftService) Reorder(ctx context.Context, lessonID string, req dto.ReorderRequest) (*dto.ReorderResponse, error) {
	moved := false
	resp, err := s.mutate(lessonID, func(d *domain.Draft) error {
		switch req.Scope {
		case "sections":
			moved = d.MoveSection(req.From, req.To)
			return nil
		case "questions":
			var err error
			moved, err = d.MoveQuestion(req.ParentLocalID, req.From, req.To)
			return err
		case "options":
			var err error
			moved, err = d.MoveOption(req.ParentLocalID, req.From, req.To)
			return err
		default:
			return domain.NewInvalidInputError("Unknown reorder scope: " + req.Scope)
		}
	})
	if err != nil {
		return nil, err
	}
	return &dto.ReorderResponse{Moved: moved, Draft: resp}, nil
}

// Save runs the reconciliation pass for a lesson. Only one save per lesson
// may run at a time; the trigger is rejected until the current run
// completes. The remote snapshot used for the delete diff is fetched fresh
// from the CMS, and the lesson's cache entry is cleared after the run.
func (s *draftService) Save(ctx context.Context, lessonID string) (*dto.SaveResponse, error) {
	sess := s.session(lessonID)

	sess.mu.Lock()
	if sess.draft == nil {
		sess.mu.Unlock()
		return nil, domain.NewDraftNotFoundError(lessonID)
	}
	if sess.saving {
		sess.mu.Unlock()
		return nil, domain.NewSaveInProgressError(lessonID)
	}
	// Validation gates the run before any network traffic.
	if err := sess.draft.ValidateForSave(); err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	sess.saving = true
	draft := sess.draft
	sess.mu.Unlock()

	defer func() {
		sess.mu.Lock()
		sess.saving = false
		sess.mu.Unlock()
	}()

	snapshot, err := s.store.FetchSections(ctx, lessonID)
	if err != nil {
		return nil, domain.NewCMSError("Failed to fetch remote tree for save", err)
	}

	outcome, err := s.reconciler.Save(ctx, draft, snapshot, sess.progress)

	// Every write path clears the lesson's cached read.
	cacheKey := cache.GenerateCacheKey("drafts", "sections", lessonID)
	if cacheErr := s.cache.Delete(ctx, cacheKey); cacheErr != nil {
		logger.Get().Warn("Failed to clear section tree cache after save",
			zap.String("lesson_id", lessonID),
			zap.Error(cacheErr))
	}

	if outcome == nil {
		return nil, err
	}
	resp := &dto.SaveResponse{
		Success: outcome.Succeeded(),
		Created: outcome.Created,
		Updated: outcome.Updated,
		Deleted: outcome.Deleted,
		Draft:   toDraftResponse(draft),
	}
	for _, failure := range outcome.Failures {
		resp.Failures = append(resp.Failures, dto.NodeFailure{
			NodeID:      failure.NodeID,
			NodeKind:    string(failure.NodeKind),
			DisplayName: failure.DisplayName,
			Error:       failure.Error,
		})
	}
	// A partial failure surfaces both the outcome and the error so the
	// caller can report per-node results.
	return resp, err
}

func (s *draftService) Progress(ctx context.Context, lessonID string) ([]dto.ProgressEntryResponse, error) {
	sess := s.session(lessonID)
	entries := sess.progress.Snapshot()
	out := make([]dto.ProgressEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, dto.ProgressEntryResponse{
			NodeID:      entry.NodeID,
			NodeKind:    string(entry.NodeKind),
			DisplayName: entry.DisplayName,
			Status:      string(entry.Status),
			Error:       entry.Error,
		})
	}
	return out, nil
}

func toDraftResponse(d *domain.Draft) *dto.DraftResponse {
	resp := &dto.DraftResponse{
		LessonID: d.LessonID,
		Sections: make([]dto.SectionResponse, 0, len(d.Sections)),
	}
	for si := range d.Sections {
		s := &d.Sections[si]
		section := dto.SectionResponse{
			LocalID:     s.LocalID,
			RemoteID:    s.RemoteID,
			Name:        s.Name,
			Description: s.Description,
			OrderIndex:  s.OrderIndex,
			Questions:   make([]dto.QuestionResponse, 0, len(s.Questions)),
		}
		for qi := range s.Questions {
			q := &s.Questions[qi]
			question := dto.QuestionResponse{
				LocalID:          q.LocalID,
				RemoteID:         q.RemoteID,
				Title:            q.Title,
				Kind:             string(q.Kind),
				PromptText:       q.PromptText,
				OrderIndex:       q.OrderIndex,
				TimeLimitSeconds: q.TimeLimitSeconds,
				Required:         q.Required,
				MinCorrect:       q.MinCorrect,
				MaxCorrect:       q.MaxCorrect,
				PointsAwarded:    q.PointsAwarded,
				MaxPoints:        q.MaxPoints,
				Options:          make([]dto.AnswerOptionResponse, 0, len(q.Options)),
			}
			for oi := range q.Options {
				o := &q.Options[oi]
				question.Options = append(question.Options, dto.AnswerOptionResponse{
					LocalID:   o.LocalID,
					RemoteID:  o.RemoteID,
					Text:      o.Text,
					IsCorrect: o.IsCorrect,
				})
			}
			section.Questions = append(section.Questions, question)
		}
		resp.Sections = append(resp.Sections, section)
	}
	return resp
}
