package cms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"quizdraft/internal/config"
	"quizdraft/internal/domain"

	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.CMSConfig{BaseURL: server.URL, APIToken: "secret-token"}, server.Client())
}

func TestClientEnsureLesson_ExistingLesson(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/lessons/lesson-1", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id": 7, "slug": "lesson-1"}`))
	})

	id, err := client.EnsureLesson(context.Background(), "lesson-1")

	assert.NoError(t, err)
	assert.Equal(t, "7", id)
}

func TestClientEnsureLesson_CreatesMissingLesson(t *testing.T) {
	var createBody map[string]map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPost:
			assert.Equal(t, "/api/lessons", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&createBody))
			w.Write([]byte(`{"data": {"id": 8, "attributes": {"slug": "lesson-1"}}}`))
		}
	})

	id, err := client.EnsureLesson(context.Background(), "lesson-1")

	assert.NoError(t, err)
	assert.Equal(t, "8", id)
	// Writes go out wrapped in the data envelope.
	assert.Equal(t, "lesson-1", createBody["data"]["slug"])
}

func TestClientFetchSections(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/lessons/lesson-1/quiz-sections", r.URL.Path)
		assert.Equal(t, "questions.answer_options", r.URL.Query().Get("populate"))
		w.Write([]byte(`[{"id": 3, "name": "Quiz Section 1", "questions": []}]`))
	})

	sections, err := client.FetchSections(context.Background(), "lesson-1")

	assert.NoError(t, err)
	assert.Len(t, sections, 1)
	assert.Equal(t, "3", sections[0].RemoteID)
}

func TestClientFetchSections_NotFoundMeansEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	sections, err := client.FetchSections(context.Background(), "lesson-1")

	assert.NoError(t, err)
	assert.Nil(t, sections)
}

func TestClientCreateSection(t *testing.T) {
	var body map[string]json.RawMessage
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/quiz-sections", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"id": 31}`))
	})

	section := &domain.Section{Name: "Quiz Section 1", OrderIndex: 2}
	id, err := client.CreateSection(context.Background(), "7", section)

	assert.NoError(t, err)
	assert.Equal(t, "31", id)
	var payload sectionBody
	assert.NoError(t, json.Unmarshal(body["data"], &payload))
	assert.Equal(t, "Quiz Section 1", payload.Name)
	assert.Equal(t, 2, payload.OrderIndex)
	assert.Equal(t, "7", payload.Lesson)
}

func TestClientCreateQuestion_LinksSection(t *testing.T) {
	var body map[string]json.RawMessage
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/quiz-questions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"id": 11}`))
	})

	q := &domain.Question{Title: "Capitals", Kind: domain.SingleChoice, PromptText: "What is the capital of France?"}
	id, err := client.CreateQuestion(context.Background(), "31", q)

	assert.NoError(t, err)
	assert.Equal(t, "11", id)
	var payload questionBody
	assert.NoError(t, json.Unmarshal(body["data"], &payload))
	assert.Equal(t, "single-choice", payload.Kind)
	assert.Equal(t, "31", payload.Section)
}

func TestClientUpdateOption(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/answer-options/21", r.URL.Path)
		w.Write([]byte(`{"id": 21}`))
	})

	err := client.UpdateOption(context.Background(), &domain.AnswerOption{RemoteID: "21", Text: "Paris", IsCorrect: true})

	assert.NoError(t, err)
}

func TestClientDelete_NotFoundIsTolerated(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	assert.NoError(t, client.DeleteSection(context.Background(), "31"))
	assert.NoError(t, client.DeleteQuestion(context.Background(), "11"))
	assert.NoError(t, client.DeleteOption(context.Background(), "21"))
}

func TestClientErrorStatusBecomesDomainError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.EnsureLesson(context.Background(), "lesson-1")

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeCMSUnavailable, domainErr.Code)
}
