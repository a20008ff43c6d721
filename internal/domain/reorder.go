package domain

import "fmt"

// moveIndex relocates the element at src to dst within a slice of length n,
// shifting the elements in between. Returns false for any out-of-range
// index; dropping outside a valid target leaves the array unchanged.
func moveIndex[T any](items []T, src, dst int) bool {
	n := len(items)
	if src < 0 || src >= n || dst < 0 || dst >= n {
		return false
	}
	if src == dst {
		return true
	}
	moved := items[src]
	if src < dst {
		copy(items[src:], items[src+1:dst+1])
	} else {
		copy(items[dst+1:], items[dst:src])
	}
	items[dst] = moved
	return true
}

// MoveSection relocates a section within the draft and rederives every
// sibling's order index.
func (d *Draft) MoveSection(src, dst int) bool {
	if !moveIndex(d.Sections, src, dst) {
		return false
	}
	d.Reindex()
	return true
}

// MoveQuestion relocates a question within its section.
func (d *Draft) MoveQuestion(sectionLocalID string, src, dst int) (bool, error) {
	s := d.FindSection(sectionLocalID)
	if s == nil {
		return false, NewNotFoundError(fmt.Sprintf("Section not found: %s", sectionLocalID))
	}
	if !moveIndex(s.Questions, src, dst) {
		return false, nil
	}
	d.Reindex()
	return true, nil
}

// MoveOption relocates an option within its question. Option order is
// positional, so no stored index needs rederiving.
func (d *Draft) MoveOption(questionLocalID string, src, dst int) (bool, error) {
	q := d.FindQuestion(questionLocalID)
	if q == nil {
		return false, NewNotFoundError(fmt.Sprintf("Question not found: %s", questionLocalID))
	}
	return moveIndex(q.Options, src, dst), nil
}
