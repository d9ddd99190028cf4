package server

import (
	"github.com/google/uuid"
	"github.com/they4kman/sweepengine/game"
	"sync"
)

// Session is one game in progress. Boards are not safe for concurrent use,
// so every access goes through Do.
type Session struct {
	ID string

	mu    sync.Mutex
	board *game.Board
}

// Do runs fn with exclusive access to the session's board.
func (session *Session) Do(fn func(board *game.Board) error) error {
	session.mu.Lock()
	defer session.mu.Unlock()
	return fn(session.board)
}

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: map[string]*Session{},
	}
}

// Create stores board under a fresh random id.
func (m *MemoryStore) Create(board *game.Board) *Session {
	session := &Session{ID: uuid.NewString(), board: board}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return session
}

func (m *MemoryStore) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	return session, ok
}

func (m *MemoryStore) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
