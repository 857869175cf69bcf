package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteFieldsValidate(t *testing.T) {
	assert.NoError(t, NoteFields{Title: "groceries"}.Validate())
	assert.NoError(t, NoteFields{Title: "groceries", Status: StatusDone}.Validate())

	assert.Error(t, NoteFields{}.Validate())
	assert.Error(t, NoteFields{Title: strings.Repeat("x", 201)}.Validate())
	assert.Error(t, NoteFields{Title: "groceries", Status: "FINISHED"}.Validate())

	// the length limit counts runes, not bytes
	assert.NoError(t, NoteFields{Title: strings.Repeat("ä", 200)}.Validate())
}

func TestNoteStatusValidate(t *testing.T) {
	for _, status := range []NoteStatus{StatusOpen, StatusInProgress, StatusDone, StatusArchived} {
		assert.NoError(t, status.Validate())
	}
	assert.Error(t, NoteStatus("").Validate())
	assert.Error(t, NoteStatus("open").Validate())
}

func TestNoteJSONUsesServerFieldNames(t *testing.T) {
	raw := `{"id":"n1","title":"groceries","content":"milk","status":"IN_PROGRESS","owner":"alice"}`
	var note Note
	require.NoError(t, json.Unmarshal([]byte(raw), &note))
	assert.Equal(t, "n1", note.ID)
	assert.Equal(t, StatusInProgress, note.Status)
	assert.Equal(t, "alice", note.Owner)
}
