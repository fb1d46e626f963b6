package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocabkeep/vocabkeep/internal/domain"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"no markup", "lasting a short time", "lasting a short time"},
		{"empty", "", ""},
		{"inline tags", "<i>ephemeral</i> beauty", "ephemeral beauty"},
		{"entities", "<span>salt &amp; pepper</span>", "salt & pepper"},
		{"blocks", "<p>first</p><p>second</p>", "first second"},
		{"line break", "one<br>two", "one two"},
		{"angle bracket without tag", "a < b", "a < b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plainText(tt.in))
		})
	}
}

func TestHTMLToMarkdown(t *testing.T) {
	assert.Equal(t, "plain meaning", htmlToMarkdown("plain meaning"))
	assert.Equal(t, "lasting a **very** short time", htmlToMarkdown("<p>lasting a <b>very</b> short time</p>"))
}

func TestCleanEntry(t *testing.T) {
	e := domain.DictionaryEntry{
		Word:          "<b>Ephemeral</b>",
		Pronunciation: "<span>/ɪˈfɛm(ə)rəl/</span>",
		Definitions: []domain.Definition{{
			PartOfSpeech: "<i>adjective</i>",
			Meaning:      "<p>lasting a <em>very</em> short time</p>",
			Examples:     []string{"<i>fame</i> is ephemeral"},
		}},
		Synonyms: []string{"<a href=\"#fleeting\">fleeting</a>"},
		Antonyms: []string{"permanent"},
	}

	cleanEntry(&e)

	assert.Equal(t, "Ephemeral", e.Word)
	assert.Equal(t, "/ɪˈfɛm(ə)rəl/", e.Pronunciation)
	require.Len(t, e.Definitions, 1)
	assert.Equal(t, "adjective", e.Definitions[0].PartOfSpeech)
	assert.Equal(t, "lasting a *very* short time", e.Definitions[0].Meaning)
	assert.Equal(t, []string{"fame is ephemeral"}, e.Definitions[0].Examples)
	assert.Equal(t, []string{"fleeting"}, e.Synonyms)
	assert.Equal(t, []string{"permanent"}, e.Antonyms)
}

func TestNewFromEntries_CleansHTML(t *testing.T) {
	d, err := NewFromEntries([]domain.DictionaryEntry{{
		Word:        "<b>laconic</b>",
		Definitions: []domain.Definition{{Meaning: "<p>using <b>few</b> words</p>"}},
	}}, nil, nil)
	require.NoError(t, err)

	entry, err := d.Lookup(t.Context(), "laconic")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "using **few** words", entry.Definitions[0].Meaning)
}
