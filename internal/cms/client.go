package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quizdraft/internal/config"
	"quizdraft/internal/domain"
)

// Client is the typed wrapper around the headless CMS REST API. It
// implements domain.QuizStore; every call is a single request/response
// round trip and the caller decides what a failure means.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

var _ domain.QuizStore = (*Client)(nil)

// NewClient creates a CMS client from configuration. A nil httpClient gets
// a default with the configured timeout.
func NewClient(cfg config.CMSConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiToken:   cfg.APIToken,
		httpClient: httpClient,
	}
}

var errNotFound = errors.New("cms: not found")

// do issues one request. Write payloads are wrapped in the {"data":{...}}
// envelope the CMS expects; the raw response body is returned for the
// normalization boundary to parse.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		wrapped, err := json.Marshal(map[string]interface{}{"data": payload})
		if err != nil {
			return nil, domain.NewInternalError("Failed to encode CMS request", err)
		}
		body = bytes.NewReader(wrapped)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, domain.NewInternalError("Failed to build CMS request", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewCMSError(fmt.Sprintf("CMS request failed: %s %s", method, path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}
	if resp.StatusCode >= 300 {
		return nil, domain.NewCMSError(
			fmt.Sprintf("CMS returned status %d for %s %s", resp.StatusCode, method, path), nil)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewCMSError("Failed to read CMS response", err)
	}
	return raw, nil
}

type lessonBody struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type sectionBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index"`
	Lesson      string `json:"lesson,omitempty"`
}

type questionBody struct {
	Title            string `json:"title"`
	Kind             string `json:"kind"`
	PromptText       string `json:"prompt_text"`
	OrderIndex       int    `json:"order_index"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
	Required         bool   `json:"required"`
	MinCorrect       int    `json:"min_correct"`
	MaxCorrect       int    `json:"max_correct"`
	PointsAwarded    int    `json:"points_awarded"`
	MaxPoints        int    `json:"max_points"`
	Section          string `json:"quiz_section,omitempty"`
}

type optionBody struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
	Question  string `json:"quiz_question,omitempty"`
}

// EnsureLesson returns the remote identifier of the parent content item,
// creating it when the CMS does not know it yet.
func (c *Client) EnsureLesson(ctx context.Context, lessonID string) (string, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/lessons/"+lessonID, nil)
	if err == nil {
		return normalizeID(raw, "lesson")
	}
	if !errors.Is(err, errNotFound) {
		return "", err
	}
	raw, err = c.do(ctx, http.MethodPost, "/api/lessons", lessonBody{Slug: lessonID, Title: lessonID})
	if err != nil {
		return "", err
	}
	return normalizeID(raw, "lesson")
}

// FetchSections returns the full remote tree for a lesson: sections with
// nested questions and answer options.
func (c *Client) FetchSections(ctx context.Context, lessonID string) ([]domain.Section, error) {
	path := "/api/lessons/" + lessonID + "/quiz-sections?populate=questions.answer_options"
	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return normalizeSectionList(raw)
}

func (c *Client) CreateSection(ctx context.Context, lessonRemoteID string, s *domain.Section) (string, error) {
	raw, err := c.do(ctx, http.MethodPost, "/api/quiz-sections", sectionBody{
		Name:        s.Name,
		Description: s.Description,
		OrderIndex:  s.OrderIndex,
		Lesson:      lessonRemoteID,
	})
	if err != nil {
		return "", err
	}
	return normalizeID(raw, "section")
}

func (c *Client) UpdateSection(ctx context.Context, s *domain.Section) error {
	_, err := c.do(ctx, http.MethodPut, "/api/quiz-sections/"+s.RemoteID, sectionBody{
		Name:        s.Name,
		Description: s.Description,
		OrderIndex:  s.OrderIndex,
	})
	return err
}

func (c *Client) DeleteSection(ctx context.Context, remoteID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/quiz-sections/"+remoteID, nil)
	if errors.Is(err, errNotFound) {
		return nil
	}
	return err
}

func (c *Client) CreateQuestion(ctx context.Context, sectionRemoteID string, q *domain.Question) (string, error) {
	raw, err := c.do(ctx, http.MethodPost, "/api/quiz-questions", c.questionBody(sectionRemoteID, q))
	if err != nil {
		return "", err
	}
	return normalizeID(raw, "question")
}

func (c *Client) UpdateQuestion(ctx context.Context, sectionRemoteID string, q *domain.Question) error {
	_, err := c.do(ctx, http.MethodPut, "/api/quiz-questions/"+q.RemoteID, c.questionBody(sectionRemoteID, q))
	return err
}

func (c *Client) DeleteQuestion(ctx context.Context, remoteID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/quiz-questions/"+remoteID, nil)
	if errors.Is(err, errNotFound) {
		return nil
	}
	return err
}

func (c *Client) CreateOption(ctx context.Context, questionRemoteID string, o *domain.AnswerOption) (string, error) {
	raw, err := c.do(ctx, http.MethodPost, "/api/answer-options", optionBody{
		Text:      o.Text,
		IsCorrect: o.IsCorrect,
		Question:  questionRemoteID,
	})
	if err != nil {
		return "", err
	}
	return normalizeID(raw, "option")
}

func (c *Client) UpdateOption(ctx context.Context, o *domain.AnswerOption) error {
	_, err := c.do(ctx, http.MethodPut, "/api/answer-options/"+o.RemoteID, optionBody{
		Text:      o.Text,
		IsCorrect: o.IsCorrect,
	})
	return err
}

func (c *Client) DeleteOption(ctx context.Context, remoteID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/answer-options/"+remoteID, nil)
	if errors.Is(err, errNotFound) {
		return nil
	}
	return err
}

func (c *Client) questionBody(sectionRemoteID string, q *domain.Question) questionBody {
	return questionBody{
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
		Section:          sectionRemoteID,
	}
}
