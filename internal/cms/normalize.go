package cms

import (
	"encoding/json"
	"fmt"
	"strconv"

	"quizdraft/internal/domain"
)

// The CMS is not consistent about response shapes: depending on the
// endpoint and populate depth an entity arrives either flattened
// ({"id":7,"name":...}) or nested ({"data":{"id":7,"attributes":{...}}}),
// and relation collections arrive either as a bare array or wrapped in
// {"data":[...]}. Everything below is the single normalization boundary
// that turns those shapes into the fixed domain structs; the flexible
// shape must never leak past this file.

func newParseError(entity string, cause error) *domain.DomainError {
	return domain.NewError(domain.CodeCMSBadResponse,
		fmt.Sprintf("Unexpected CMS payload for %s", entity), cause)
}

// unwrapData strips a single {"data": ...} envelope when present.
func unwrapData(raw json.RawMessage) json.RawMessage {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		return envelope.Data
	}
	return raw
}

// flattenEntity merges {"id":N,"attributes":{...}} into one field map and
// also accepts the already-flat shape.
func flattenEntity(raw json.RawMessage) (map[string]json.RawMessage, error) {
	raw = unwrapData(raw)
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if attrs, ok := fields["attributes"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(attrs, &inner); err != nil {
			return nil, err
		}
		for k, v := range inner {
			if _, exists := fields[k]; !exists {
				fields[k] = v
			}
		}
		delete(fields, "attributes")
	}
	return fields, nil
}

// collectionItems accepts either a bare JSON array or a {"data":[...]}
// wrapper and returns the raw items. An absent field yields nil.
func collectionItems(raw json.RawMessage) ([]json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	raw = unwrapData(raw)
	if string(raw) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// idString renders the CMS identifier, which arrives as either a JSON
// number or a string, into the canonical string form used for remote IDs.
func idString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("missing id")
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String(), nil
	}
	return "", fmt.Errorf("unrecognized id shape: %s", string(raw))
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func intField(fields map[string]json.RawMessage, key string) int {
	raw, ok := fields[key]
	if !ok {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	i, err := strconv.Atoi(n.String())
	if err != nil {
		return 0
	}
	return i
}

func boolField(fields map[string]json.RawMessage, key string) bool {
	raw, ok := fields[key]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}

// normalizeOption parses one answer option payload.
func normalizeOption(raw json.RawMessage) (domain.AnswerOption, error) {
	fields, err := flattenEntity(raw)
	if err != nil {
		return domain.AnswerOption{}, newParseError("answer option", err)
	}
	id, err := idString(fields["id"])
	if err != nil {
		return domain.AnswerOption{}, newParseError("answer option", err)
	}
	return domain.AnswerOption{
		RemoteID:  id,
		Text:      stringField(fields, "text"),
		IsCorrect: boolField(fields, "is_correct"),
	}, nil
}

// normalizeQuestion parses one question payload with its nested options.
func normalizeQuestion(raw json.RawMessage) (domain.Question, error) {
	fields, err := flattenEntity(raw)
	if err != nil {
		return domain.Question{}, newParseError("question", err)
	}
	id, err := idString(fields["id"])
	if err != nil {
		return domain.Question{}, newParseError("question", err)
	}
	q := domain.Question{
		RemoteID:         id,
		Title:            stringField(fields, "title"),
		Kind:             domain.QuestionKind(stringField(fields, "kind")),
		PromptText:       stringField(fields, "prompt_text"),
		OrderIndex:       intField(fields, "order_index"),
		TimeLimitSeconds: intField(fields, "time_limit_seconds"),
		Required:         boolField(fields, "required"),
		MinCorrect:       intField(fields, "min_correct"),
		MaxCorrect:       intField(fields, "max_correct"),
		PointsAwarded:    intField(fields, "points_awarded"),
		MaxPoints:        intField(fields, "max_points"),
	}
	items, err := collectionItems(fields["answer_options"])
	if err != nil {
		return domain.Question{}, newParseError("question options", err)
	}
	for _, item := range items {
		option, err := normalizeOption(item)
		if err != nil {
			return domain.Question{}, err
		}
		q.Options = append(q.Options, option)
	}
	return q, nil
}

// normalizeSection parses one section payload with its nested questions.
func normalizeSection(raw json.RawMessage) (domain.Section, error) {
	fields, err := flattenEntity(raw)
	if err != nil {
		return domain.Section{}, newParseError("section", err)
	}
	id, err := idString(fields["id"])
	if err != nil {
		return domain.Section{}, newParseError("section", err)
	}
	s := domain.Section{
		RemoteID:    id,
		Name:        stringField(fields, "name"),
		Description: stringField(fields, "description"),
		OrderIndex:  intField(fields, "order_index"),
	}
	items, err := collectionItems(fields["questions"])
	if err != nil {
		return domain.Section{}, newParseError("section questions", err)
	}
	for _, item := range items {
		question, err := normalizeQuestion(item)
		if err != nil {
			return domain.Section{}, err
		}
		s.Questions = append(s.Questions, question)
	}
	return s, nil
}

// normalizeSectionList parses the fetch-all response for a lesson.
func normalizeSectionList(raw json.RawMessage) ([]domain.Section, error) {
	items, err := collectionItems(raw)
	if err != nil {
		return nil, newParseError("section list", err)
	}
	sections := make([]domain.Section, 0, len(items))
	for _, item := range items {
		section, err := normalizeSection(item)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return sections, nil
}

// normalizeID parses a create/update response down to the assigned
// identifier.
func normalizeID(raw json.RawMessage, entity string) (string, error) {
	fields, err := flattenEntity(raw)
	if err != nil {
		return "", newParseError(entity, err)
	}
	id, err := idString(fields["id"])
	if err != nil {
		return "", newParseError(entity, err)
	}
	return id, nil
}
