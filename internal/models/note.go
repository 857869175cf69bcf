package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

const maxTitleLength = 200

// NoteStatus is the workflow state of a note
type NoteStatus string

const StatusOpen NoteStatus = "OPEN"
const StatusInProgress NoteStatus = "IN_PROGRESS"
const StatusDone NoteStatus = "DONE"
const StatusArchived NoteStatus = "ARCHIVED"

func (n NoteStatus) MarshalText() (data []byte, err error) {
	return []byte(n), nil
}

func (n *NoteStatus) UnmarshalText(data []byte) error {
	*n = NoteStatus(string(data))
	return nil
}

func (n NoteStatus) Validate() error {
	switch n {
	case StatusOpen, StatusInProgress, StatusDone, StatusArchived:
		return nil
	}
	return fmt.Errorf("unrecognized note status %q", string(n))
}

// Note is a single note as returned by the notes service. ID, timestamps and
// Owner are assigned by the server and ignored on writes.
type Note struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Status    NoteStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Owner     string     `json:"owner"`
}

// NoteFields is the writable subset of a note used for create and update
// calls. An empty Status defaults to OPEN on the server.
type NoteFields struct {
	Title   string     `json:"title"`
	Content string     `json:"content,omitempty"`
	Status  NoteStatus `json:"status,omitempty"`
}

func (n NoteFields) Validate() error {
	if n.Title == "" {
		return fmt.Errorf("a note requires a title")
	}
	if utf8.RuneCountInString(n.Title) > maxTitleLength {
		return fmt.Errorf("a note title cannot be longer than %d characters", maxTitleLength)
	}
	if n.Status != "" {
		return n.Status.Validate()
	}
	return nil
}
