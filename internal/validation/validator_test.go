package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLessonID(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateLessonID("lesson-1"))
	assert.Empty(t, v.ValidateLessonID("01HZXM8D7T0000000000000000"))

	assert.Len(t, v.ValidateLessonID(""), 1)
	assert.Len(t, v.ValidateLessonID("   "), 1)
	assert.Len(t, v.ValidateLessonID("bad/id"), 1)
}

func TestValidateReorderRequest(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateReorderRequest("sections", 0, 3))
	assert.Empty(t, v.ValidateReorderRequest("options", 2, 0))

	assert.Len(t, v.ValidateReorderRequest("chapters", 0, 1), 1)
	assert.Len(t, v.ValidateReorderRequest("questions", -1, -2), 2)
}

func TestValidateQuestionKind(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateQuestionKind("single-choice"))
	assert.Empty(t, v.ValidateQuestionKind("multi-choice"))
	assert.Empty(t, v.ValidateQuestionKind("true-false"))

	assert.Len(t, v.ValidateQuestionKind(""), 1)
	assert.Len(t, v.ValidateQuestionKind("essay"), 1)
}
