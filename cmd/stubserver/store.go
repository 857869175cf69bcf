package main

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/noteshq/notesctl/internal/models"
	"gopkg.in/yaml.v3"
)

// noteStore keeps every user's notes in memory. The stub server has no
// durability, restarting it starts from the seed again.
type noteStore struct {
	lock      sync.RWMutex
	passwords map[string]string
	notes     map[string]map[string]models.Note
}

func newNoteStore() *noteStore {
	return &noteStore{passwords: map[string]string{}, notes: map[string]map[string]models.Note{}}
}

func (s *noteStore) addUser(username string, password string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.passwords[username] = password
	if s.notes[username] == nil {
		s.notes[username] = map[string]models.Note{}
	}
}

func (s *noteStore) checkCredentials(username string, password string) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	stored, found := s.passwords[username]
	return found && stored == password
}

func (s *noteStore) list(username string) []models.Note {
	s.lock.RLock()
	defer s.lock.RUnlock()
	output := []models.Note{}
	for _, note := range s.notes[username] {
		output = append(output, note)
	}
	// most recently updated first, matching the real service's ordering
	sort.Slice(output, func(i, j int) bool { return output[i].UpdatedAt.After(output[j].UpdatedAt) })
	return output
}

func (s *noteStore) create(username string, fields models.NoteFields) models.Note {
	s.lock.Lock()
	defer s.lock.Unlock()
	now := time.Now().UTC()
	status := fields.Status
	if status == "" {
		status = models.StatusOpen
	}
	note := models.Note{
		ID:        uuid.NewString(),
		Title:     fields.Title,
		Content:   fields.Content,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
		Owner:     username,
	}
	if s.notes[username] == nil {
		s.notes[username] = map[string]models.Note{}
	}
	s.notes[username][note.ID] = note
	return note
}

func (s *noteStore) get(username string, id string) (models.Note, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	note, found := s.notes[username][id]
	return note, found
}

func (s *noteStore) update(username string, id string, fields models.NoteFields) (models.Note, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	note, found := s.notes[username][id]
	if !found {
		return models.Note{}, false
	}
	note.Title = fields.Title
	note.Content = fields.Content
	if fields.Status != "" {
		note.Status = fields.Status
	}
	note.UpdatedAt = time.Now().UTC()
	s.notes[username][id] = note
	return note, true
}

func (s *noteStore) remove(username string, id string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, found := s.notes[username][id]
	if found {
		delete(s.notes[username], id)
	}
	return found
}

type seedNote struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
	Status  string `yaml:"status"`
}

type seedUser struct {
	Username string     `yaml:"username"`
	Password string     `yaml:"password"`
	Notes    []seedNote `yaml:"notes"`
}

type seedFile struct {
	Users []seedUser `yaml:"users"`
}

// loadSeed populates the store from a YAML file of demo users and notes.
func (s *noteStore) loadSeed(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("cannot parse the seed file %s: %w", path, err)
	}
	for _, user := range seed.Users {
		if user.Username == "" || user.Password == "" {
			return fmt.Errorf("every seed user requires a username and a password")
		}
		s.addUser(user.Username, user.Password)
		for _, note := range user.Notes {
			fields := models.NoteFields{Title: note.Title, Content: note.Content, Status: models.NoteStatus(note.Status)}
			if err := fields.Validate(); err != nil {
				return fmt.Errorf("invalid seed note for user %s: %w", user.Username, err)
			}
			s.create(user.Username, fields)
		}
	}
	return nil
}
