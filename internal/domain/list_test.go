package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestList_AddWord(t *testing.T) {
	l := NewList("list-1", "Verbs", "", time.Now())

	assert.True(t, l.AddWord("word-1"))
	assert.True(t, l.AddWord("word-2"))
	assert.False(t, l.AddWord("word-1"), "duplicate id is not added")

	assert.Equal(t, []string{"word-1", "word-2"}, l.WordIDs)
}

func TestList_RemoveWord(t *testing.T) {
	l := NewList("list-1", "Verbs", "", time.Now())
	l.AddWord("word-1")
	l.AddWord("word-2")
	l.AddWord("word-3")

	assert.True(t, l.RemoveWord("word-2"))
	assert.False(t, l.RemoveWord("word-9"))
	assert.Equal(t, []string{"word-1", "word-3"}, l.WordIDs)
	assert.False(t, l.ContainsWord("word-2"))
}

func TestNewList_Empty(t *testing.T) {
	l := NewList("list-1", "  Travel ", "phrases", time.Now())

	assert.Equal(t, "Travel", l.Name)
	assert.False(t, l.IsDefault)
	assert.NotNil(t, l.WordIDs)
	assert.Empty(t, l.WordIDs)
}
