package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionToggleIsIdempotentInPairs(t *testing.T) {
	s := NewSelection()
	s.Add("a")

	assert.True(t, s.Toggle("b"))
	assert.False(t, s.Toggle("b"))
	assert.False(t, s.Has("b"))

	assert.False(t, s.Toggle("a"))
	assert.True(t, s.Toggle("a"))
	assert.Equal(t, []string{"a"}, s.IDs())
}

func TestSelectionVisibleScope(t *testing.T) {
	s := NewSelection()
	s.Add("hidden")

	s.SelectAll([]string{"a", "b", "a"})
	assert.Equal(t, []string{"hidden", "a", "b"}, s.IDs())
	assert.True(t, s.AllSelected([]string{"a", "b"}))
	assert.False(t, s.AllSelected(nil))

	s.DeselectAll([]string{"a", "b"})
	assert.Equal(t, []string{"hidden"}, s.IDs())

	s.Add("")
	assert.Equal(t, 1, s.Len())
	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestSelectionRetainKeepsOrder(t *testing.T) {
	s := NewSelection()
	s.SelectAll([]string{"a", "b", "c", "d"})

	s.Retain(func(id string) bool { return id != "b" && id != "d" })

	assert.Equal(t, []string{"a", "c"}, s.IDs())
	assert.False(t, s.Has("b"))
	assert.Equal(t, 2, s.Len())
}
