package service

import (
	"context"
	"encoding/json"
	"testing"

	"quizdraft/internal/cache"
	"quizdraft/internal/config"
	"quizdraft/internal/domain"
	"quizdraft/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{Backend: "memory", SectionsTTL: "5m"},
	}
}

func remoteTree() []domain.Section {
	return []domain.Section{
		{
			RemoteID: "sec-1",
			Name:     "Quiz Section 1",
			Questions: []domain.Question{
				{
					RemoteID:   "qq-1",
					Title:      "Capitals",
					Kind:       domain.SingleChoice,
					PromptText: "What is the capital of France?",
					Options: []domain.AnswerOption{
						{RemoteID: "op-1", Text: "Paris", IsCorrect: true},
						{RemoteID: "op-2", Text: "London"},
					},
				},
			},
		},
	}
}

func TestDraftService_LoadDraftSeedsEmptyLesson(t *testing.T) {
	store := new(MockQuizStore)
	store.On("FetchSections", mock.Anything, "lesson-1").Return([]domain.Section{}, nil).Once()

	svc := NewDraftService(store, cache.NewMemoryCache(), testConfig())
	resp, err := svc.LoadDraft(context.Background(), "lesson-1")

	assert.NoError(t, err)
	assert.Equal(t, "lesson-1", resp.LessonID)
	assert.Len(t, resp.Sections, 1)
	assert.Equal(t, "Quiz Section 1", resp.Sections[0].Name)
	assert.Empty(t, resp.Sections[0].Questions)
	store.AssertExpectations(t)
}

func TestDraftService_LoadDraftHydratesRemoteTree(t *testing.T) {
	store := new(MockQuizStore)
	store.On("FetchSections", mock.Anything, "lesson-1").Return(remoteTree(), nil).Once()

	svc := NewDraftService(store, cache.NewMemoryCache(), testConfig())
	resp, err := svc.LoadDraft(context.Background(), "lesson-1")

	assert.NoError(t, err)
	assert.Len(t, resp.Sections, 1)
	assert.Equal(t, "sec-1", resp.Sections[0].RemoteID)
	// Local identifiers derive from remote ones so render keys survive
	// reloads.
	assert.Equal(t, "sec-1", resp.Sections[0].LocalID)
	assert.Equal(t, "Paris", resp.Sections[0].Questions[0].Options[0].Text)

	// A second load returns the in-memory draft without refetching.
	_, err = svc.LoadDraft(context.Background(), "lesson-1")
	assert.NoError(t, err)
	store.AssertNumberOfCalls(t, "FetchSections", 1)
}

func TestDraftService_LoadDraftUsesCachedTree(t *testing.T) {
	store := new(MockQuizStore)
	memCache := cache.NewMemoryCache()
	encoded, _ := json.Marshal(remoteTree())
	_ = memCache.Set(context.Background(), cache.GenerateCacheKey("drafts", "sections", "lesson-1"), string(encoded), 0)

	svc := NewDraftService(store, memCache, testConfig())
	resp, err := svc.LoadDraft(context.Background(), "lesson-1")

	assert.NoError(t, err)
	assert.Equal(t, "sec-1", resp.Sections[0].RemoteID)
	store.AssertNotCalled(t, "FetchSections", mock.Anything, mock.Anything)
}

func TestDraftService_MutationsRequireLoadedDraft(t *testing.T) {
	svc := NewDraftService(new(MockQuizStore), cache.NewMemoryCache(), testConfig())

	_, err := svc.AddSection(context.Background(), "lesson-unknown")

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeDraftNotFound, domainErr.Code)
}

func TestDraftService_MutationFlow(t *testing.T) {
	store := new(MockQuizStore)
	store.On("FetchSections", mock.Anything, "lesson-1").Return([]domain.Section{}, nil)

	svc := NewDraftService(store, cache.NewMemoryCache(), testConfig())
	ctx := context.Background()
	loaded, err := svc.LoadDraft(ctx, "lesson-1")
	assert.NoError(t, err)

	resp, err := svc.AddSection(ctx, "lesson-1")
	assert.NoError(t, err)
	assert.Len(t, resp.Sections, 2)
	assert.Equal(t, "Quiz Section 2", resp.Sections[1].Name)

	sectionID := loaded.Sections[0].LocalID
	resp, err = svc.AddQuestion(ctx, "lesson-1", sectionID, dto.AddQuestionRequest{Kind: "true-false"})
	assert.NoError(t, err)
	q := resp.Sections[0].Questions[0]
	assert.Equal(t, "true-false", q.Kind)
	assert.Equal(t, "True", q.Options[0].Text)
	assert.True(t, q.Options[0].IsCorrect)

	prompt := "Is Paris the capital of France?"
	resp, err = svc.UpdateQuestion(ctx, "lesson-1", q.LocalID, dto.UpdateQuestionRequest{PromptText: &prompt})
	assert.NoError(t, err)
	assert.Equal(t, prompt, resp.Sections[0].Questions[0].PromptText)

	// True-false options cannot gain siblings.
	_, err = svc.AddOption(ctx, "lesson-1", q.LocalID)
	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeOptionImmutable, domainErr.Code)

	resp, err = svc.RemoveQuestion(ctx, "lesson-1", q.LocalID)
	assert.NoError(t, err)
	assert.Empty(t, resp.Sections[0].Questions)
}

func TestDraftService_ReorderSections(t *testing.T) {
	store := new(MockQuizStore)
	store.On("FetchSections", mock.Anything, "lesson-1").Return([]domain.Section{}, nil)

	svc := NewDraftService(store, cache.NewMemoryCache(), testConfig())
	ctx := context.Background()
	_, err := svc.LoadDraft(ctx, "lesson-1")
	assert.NoError(t, err)
	_, err = svc.AddSection(ctx, "lesson-1")
	assert.NoError(t, err)

	resp, err := svc.Reorder(ctx, "lesson-1", dto.ReorderRequest{Scope: "sections", From: 1, To: 0})
	assert.NoError(t, err)
	assert.True(t, resp.Moved)
	assert.Equal(t, "Quiz Section 2", resp.Draft.Sections[0].Name)
	assert.Equal(t, 0, resp.Draft.Sections[0].OrderIndex)
	assert.Equal(t, 1, resp.Draft.Sections[1].OrderIndex)

	// Out-of-range moves are reported, not errored.
	resp, err = svc.Reorder(ctx, "lesson-1", dto.ReorderRequest{Scope: "sections", From: 5, To: 0})
	assert.NoError(t, err)
	assert.False(t, resp.Moved)

	_, err = svc.Reorder(ctx, "lesson-1", dto.ReorderRequest{Scope: "chapters", From: 0, To: 1})
	assert.Error(t, err)
}

func TestDraftService_SaveValidatesBeforeAnyNetworkCall(t *testing.T) {
	store := new(MockQuizStore)
	store.On("FetchSections", mock.Anything, "lesson-1").Return([]domain.Section{}, nil).Once()

	svc := NewDraftService(store, cache.NewMemoryCache(), testConfig())
	ctx := context.Background()
	_, err := svc.LoadDraft(ctx, "lesson-1")
	assert.NoError(t, err)

	// The seeded draft has no questions yet.
	_, err = svc.Save(ctx, "lesson-1")
	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeValidation, domainErr.Code)
	// Only the initial load hit the store.
	store.AssertNumberOfCalls(t, "FetchSections", 1)
	store.AssertNotCalled(t, "EnsureLesson", mock.Anything, mock.Anything)
}

func TestDraftService_SavePersistsAndClearsCache(t *testing.T) {
	store := new(MockQuizStore)
	store.On("FetchSections", mock.Anything, "lesson-1").Return([]domain.Section{}, nil)
	store.On("EnsureLesson", mock.Anything, "lesson-1").Return("lesson-7", nil)
	store.On("CreateSection", mock.Anything, "lesson-7", mock.Anything).Return("sec-1", nil)
	store.On("CreateQuestion", mock.Anything, "sec-1", mock.Anything).Return("qq-1", nil)
	store.On("CreateOption", mock.Anything, "qq-1", mock.Anything).Return("op-1", nil).Once()
	store.On("CreateOption", mock.Anything, "qq-1", mock.Anything).Return("op-2", nil).Once()

	memCache := cache.NewMemoryCache()
	svc := NewDraftService(store, memCache, testConfig())
	ctx := context.Background()
	loaded, err := svc.LoadDraft(ctx, "lesson-1")
	assert.NoError(t, err)

	sectionID := loaded.Sections[0].LocalID
	resp, err := svc.AddQuestion(ctx, "lesson-1", sectionID, dto.AddQuestionRequest{Kind: "single-choice"})
	assert.NoError(t, err)
	q := resp.Sections[0].Questions[0]

	prompt := "What is the capital of France?"
	_, err = svc.UpdateQuestion(ctx, "lesson-1", q.LocalID, dto.UpdateQuestionRequest{PromptText: &prompt})
	assert.NoError(t, err)
	paris := "Paris"
	_, err = svc.UpdateOption(ctx, "lesson-1", q.Options[0].LocalID, dto.UpdateOptionRequest{Text: &paris})
	assert.NoError(t, err)
	london := "London"
	_, err = svc.UpdateOption(ctx, "lesson-1", q.Options[1].LocalID, dto.UpdateOptionRequest{Text: &london})
	assert.NoError(t, err)

	saveResp, err := svc.Save(ctx, "lesson-1")
	assert.NoError(t, err)
	assert.True(t, saveResp.Success)
	assert.Equal(t, 4, saveResp.Created)
	assert.Empty(t, saveResp.Failures)
	assert.Equal(t, "sec-1", saveResp.Draft.Sections[0].RemoteID)

	// The lesson's cached read was invalidated by the write path.
	assert.Equal(t, 0, memCache.Len())

	// A follow-up save re-sends the persisted tree as updates.
	store.On("UpdateSection", mock.Anything, mock.Anything).Return(nil)
	store.On("UpdateQuestion", mock.Anything, "sec-1", mock.Anything).Return(nil)
	store.On("UpdateOption", mock.Anything, mock.Anything).Return(nil)
	saveResp, err = svc.Save(ctx, "lesson-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, saveResp.Created)
	assert.Equal(t, 4, saveResp.Updated)
	assert.Equal(t, 0, saveResp.Deleted)
}

func TestDraftService_ProgressReflectsLastRun(t *testing.T) {
	store := new(MockQuizStore)
	store.On("FetchSections", mock.Anything, "lesson-1").Return([]domain.Section{}, nil)
	store.On("EnsureLesson", mock.Anything, "lesson-1").Return("lesson-7", nil)
	store.On("CreateSection", mock.Anything, "lesson-7", mock.Anything).Return("sec-1", nil)
	store.On("CreateQuestion", mock.Anything, "sec-1", mock.Anything).Return("qq-1", nil)
	store.On("CreateOption", mock.Anything, "qq-1", mock.Anything).Return("op-1", nil)

	svc := NewDraftService(store, cache.NewMemoryCache(), testConfig())
	ctx := context.Background()
	loaded, _ := svc.LoadDraft(ctx, "lesson-1")
	resp, err := svc.AddQuestion(ctx, "lesson-1", loaded.Sections[0].LocalID, dto.AddQuestionRequest{Kind: "true-false"})
	assert.NoError(t, err)
	q := resp.Sections[0].Questions[0]
	prompt := "Is water wet?"
	_, err = svc.UpdateQuestion(ctx, "lesson-1", q.LocalID, dto.UpdateQuestionRequest{PromptText: &prompt})
	assert.NoError(t, err)

	_, err = svc.Save(ctx, "lesson-1")
	assert.NoError(t, err)

	entries, err := svc.Progress(ctx, "lesson-1")
	assert.NoError(t, err)
	// Section, question, and the fixed True/False pair.
	assert.Len(t, entries, 4)
	for _, entry := range entries {
		assert.Equal(t, "succeeded", entry.Status)
	}
}
