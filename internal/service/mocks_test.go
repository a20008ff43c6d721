package service

import (
	"context"
	"sync"
	"time"

	"quizdraft/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockQuizStore ---

// MockQuizStore mocks the CMS store. Every call is also appended to Calls
// so tests can assert parent-before-child write ordering.
type MockQuizStore struct {
	mock.Mock

	mu    sync.Mutex
	Calls []string
}

func (m *MockQuizStore) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockQuizStore) EnsureLesson(ctx context.Context, lessonID string) (string, error) {
	m.record("EnsureLesson:" + lessonID)
	args := m.Called(ctx, lessonID)
	return args.String(0), args.Error(1)
}

func (m *MockQuizStore) FetchSections(ctx context.Context, lessonID string) ([]domain.Section, error) {
	m.record("FetchSections:" + lessonID)
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Section), args.Error(1)
}

func (m *MockQuizStore) CreateSection(ctx context.Context, lessonRemoteID string, section *domain.Section) (string, error) {
	m.record("CreateSection:" + section.Name)
	args := m.Called(ctx, lessonRemoteID, section)
	return args.String(0), args.Error(1)
}

func (m *MockQuizStore) UpdateSection(ctx context.Context, section *domain.Section) error {
	m.record("UpdateSection:" + section.RemoteID)
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockQuizStore) DeleteSection(ctx context.Context, remoteID string) error {
	m.record("DeleteSection:" + remoteID)
	args := m.Called(ctx, remoteID)
	return args.Error(0)
}

func (m *MockQuizStore) CreateQuestion(ctx context.Context, sectionRemoteID string, question *domain.Question) (string, error) {
	m.record("CreateQuestion:" + question.Title)
	args := m.Called(ctx, sectionRemoteID, question)
	return args.String(0), args.Error(1)
}

func (m *MockQuizStore) UpdateQuestion(ctx context.Context, sectionRemoteID string, question *domain.Question) error {
	m.record("UpdateQuestion:" + question.RemoteID)
	args := m.Called(ctx, sectionRemoteID, question)
	return args.Error(0)
}

func (m *MockQuizStore) DeleteQuestion(ctx context.Context, remoteID string) error {
	m.record("DeleteQuestion:" + remoteID)
	args := m.Called(ctx, remoteID)
	return args.Error(0)
}

func (m *MockQuizStore) CreateOption(ctx context.Context, questionRemoteID string, option *domain.AnswerOption) (string, error) {
	m.record("CreateOption:" + option.Text)
	args := m.Called(ctx, questionRemoteID, option)
	return args.String(0), args.Error(1)
}

func (m *MockQuizStore) UpdateOption(ctx context.Context, option *domain.AnswerOption) error {
	m.record("UpdateOption:" + option.RemoteID)
	args := m.Called(ctx, option)
	return args.Error(0)
}

func (m *MockQuizStore) DeleteOption(ctx context.Context, remoteID string) error {
	m.record("DeleteOption:" + remoteID)
	args := m.Called(ctx, remoteID)
	return args.Error(0)
}

// --- MockCache ---

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
