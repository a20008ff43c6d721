package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoveSection(t *testing.T) {
	d := NewDraft("lesson-1")
	d.AddSection()
	d.AddSection()

	assert.True(t, d.MoveSection(2, 0))
	assert.Equal(t, "Quiz Section 3", d.Sections[0].Name)
	assert.Equal(t, "Quiz Section 1", d.Sections[1].Name)
	assert.Equal(t, "Quiz Section 2", d.Sections[2].Name)
	// Order indexes are rederived as the dense positional sequence.
	for i := range d.Sections {
		assert.Equal(t, i, d.Sections[i].OrderIndex)
	}
}

func TestMoveSectionOutOfRangeIsNoOp(t *testing.T) {
	d := NewDraft("lesson-1")
	d.AddSection()

	assert.False(t, d.MoveSection(0, 5))
	assert.False(t, d.MoveSection(-1, 0))
	assert.Equal(t, "Quiz Section 1", d.Sections[0].Name)
}

func TestMoveQuestion(t *testing.T) {
	d := NewDraft("lesson-1")
	sectionID := d.Sections[0].LocalID
	q1, _ := d.AddQuestion(sectionID, SingleChoice)
	firstID := q1.LocalID
	d.AddQuestion(sectionID, SingleChoice)
	d.AddQuestion(sectionID, SingleChoice)

	moved, err := d.MoveQuestion(sectionID, 0, 2)
	assert.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, firstID, d.Sections[0].Questions[2].LocalID)
	for i := range d.Sections[0].Questions {
		assert.Equal(t, i, d.Sections[0].Questions[i].OrderIndex)
	}

	moved, err = d.MoveQuestion(sectionID, 7, 0)
	assert.NoError(t, err)
	assert.False(t, moved)

	_, err = d.MoveQuestion("missing", 0, 1)
	assert.Error(t, err)
}

func TestMoveOption(t *testing.T) {
	d := NewDraft("lesson-1")
	q, _ := d.AddQuestion(d.Sections[0].LocalID, SingleChoice)
	d.AddOption(q.LocalID)
	paris := "Paris"
	london := "London"
	berlin := "Berlin"
	d.UpdateOption(q.Options[0].LocalID, OptionUpdate{Text: &paris})
	d.UpdateOption(q.Options[1].LocalID, OptionUpdate{Text: &london})
	d.UpdateOption(q.Options[2].LocalID, OptionUpdate{Text: &berlin})

	moved, err := d.MoveOption(q.LocalID, 2, 0)
	assert.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, "Berlin", q.Options[0].Text)
	assert.Equal(t, "Paris", q.Options[1].Text)
	assert.Equal(t, "London", q.Options[2].Text)

	_, err = d.MoveOption("missing", 0, 1)
	assert.Error(t, err)
}
