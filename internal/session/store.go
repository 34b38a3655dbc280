// Package session provides the in-memory session store and its durable
// JSON mirror.
package session

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/gemchat/internal/models"
)

// Message represents a single turn in a conversation. Messages are
// immutable once created, except for the in-place content overwrite while
// a stream folds into a model message.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "model"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSession represents one persisted conversation, independent of any
// live model context.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages"`
}

const storeVersion = 1

// storeFile is the on-disk envelope for the full session list
type storeFile struct {
	Version  int            `json:"version"`
	Sessions []*ChatSession `json:"sessions"`
}

// Store owns every ChatSession. The in-memory state is authoritative;
// every mutation re-serializes the full list to disk, and a write failure
// is logged only.
type Store struct {
	mu       sync.RWMutex
	path     string
	sessions []*ChatSession // insertion order
}

// NewStore creates a session store backed by the file at path. A missing
// file starts empty; a corrupt file is logged and also starts empty.
func NewStore(path string) *Store {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("session: failed to read %s: %v (starting empty)", path, err)
		}
		return s
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Printf("session: failed to parse %s: %v (starting empty)", path, err)
		return s
	}

	s.sessions = file.Sessions
	return s
}

// GetSessionsPath returns the default sessions file path
func GetSessionsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".gemchat", "sessions.json"), nil
}

// DefaultStore creates a store at the default sessions location
func DefaultStore() (*Store, error) {
	path, err := GetSessionsPath()
	if err != nil {
		return nil, err
	}
	return NewStore(path), nil
}

// List returns copies of all sessions, most recently updated first.
func (s *Store) List() []*ChatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ChatSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, cloneSession(sess))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	return out
}

// Get returns a copy of the session with the given id
func (s *Store) Get(id string) (*ChatSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess := s.find(id)
	if sess == nil {
		return nil, false
	}
	return cloneSession(sess), true
}

// Create adds a new empty session titled "New Chat" and returns a copy
func (s *Store) Create() *ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &ChatSession{
		ID:        uuid.NewString(),
		Title:     models.DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []Message{},
	}
	s.sessions = append(s.sessions, sess)
	s.persistLocked()

	return cloneSession(sess)
}

// Append adds a message to the session and returns the stored copy.
// Appending to a deleted session returns an error; a stream that outlives
// its session stops folding at that point.
func (s *Store) Append(id, role, content string) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(id)
	if sess == nil {
		return nil, fmt.Errorf("session not found: %s", id)
	}

	msg := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	sess.Messages = append(sess.Messages, msg)
	touch(sess)
	s.persistLocked()

	return &msg, nil
}

// UpdateContent overwrites a message's content, used while streaming.
// Updates against a missing session or message are silent no-ops so a
// fire-and-forget completion racing a delete cannot fail.
func (s *Store) UpdateContent(id, messageID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(id)
	if sess == nil {
		return
	}

	for i := range sess.Messages {
		if sess.Messages[i].ID == messageID {
			sess.Messages[i].Content = content
			touch(sess)
			s.persistLocked()
			return
		}
	}
}

// Rename sets the session title. It does not refresh UpdatedAt: a title
// generated in the background must not reorder the session list. Renaming
// a missing session is a silent no-op.
func (s *Store) Rename(id, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(id)
	if sess == nil {
		return
	}

	sess.Title = title
	s.persistLocked()
}

// Delete removes a session
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sess := range s.sessions {
		if sess.ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			s.persistLocked()
			return nil
		}
	}

	return fmt.Errorf("session not found: %s", id)
}

// Clear removes every session
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	s.persistLocked()
}

// find returns the stored session by id. Caller must hold s.mu.
func (s *Store) find(id string) *ChatSession {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// touch refreshes UpdatedAt, keeping it monotonically non-decreasing
func touch(sess *ChatSession) {
	if now := time.Now(); now.After(sess.UpdatedAt) {
		sess.UpdatedAt = now
	}
}

// persistLocked mirrors the full session list to disk. Caller must hold
// s.mu. Failures are logged; memory stays authoritative.
func (s *Store) persistLocked() {
	data, err := json.MarshalIndent(storeFile{Version: storeVersion, Sessions: s.sessions}, "", "  ")
	if err != nil {
		log.Printf("session: failed to marshal sessions: %v", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		log.Printf("session: failed to create directory: %v", err)
		return
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		log.Printf("session: failed to write %s: %v", s.path, err)
	}
}

func cloneSession(sess *ChatSession) *ChatSession {
	out := *sess
	out.Messages = make([]Message, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	return &out
}
