// Package notes is the typed surface over the note CRUD endpoints.
package notes

import (
	"context"
	"fmt"
	"net/url"

	"github.com/noteshq/notesctl/internal/apiclient"
	"github.com/noteshq/notesctl/internal/models"
)

const notesPath = "/notes/"

type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

func notePath(id string) string {
	return notesPath + url.PathEscape(id) + "/"
}

// List returns the caller's notes, most recently updated first.
func (c *Client) List(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	err := c.api.Get(ctx, notesPath, &notes)
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) Create(ctx context.Context, fields models.NoteFields) (models.Note, error) {
	if err := fields.Validate(); err != nil {
		return models.Note{}, err
	}
	var note models.Note
	err := c.api.Post(ctx, notesPath, fields, &note)
	if err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func (c *Client) Get(ctx context.Context, id string) (models.Note, error) {
	if id == "" {
		return models.Note{}, fmt.Errorf("a note ID is required")
	}
	var note models.Note
	err := c.api.Get(ctx, notePath(id), &note)
	if err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func (c *Client) Update(ctx context.Context, id string, fields models.NoteFields) (models.Note, error) {
	if id == "" {
		return models.Note{}, fmt.Errorf("a note ID is required")
	}
	if err := fields.Validate(); err != nil {
		return models.Note{}, err
	}
	var note models.Note
	err := c.api.Put(ctx, notePath(id), fields, &note)
	if err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("a note ID is required")
	}
	return c.api.Delete(ctx, notePath(id))
}
