package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"mjcf-editor/internal/editor/store"
)

// ============================================================
// Session Manager
// ============================================================

var ErrUnknownSession = errors.New("unknown session")

// Manager hands out one Store per editing session.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*store.Store
	opts     store.Options
	onOpen   func(id string, s *store.Store)
	onClose  func(id string)
}

func NewManager(opts store.Options) *Manager {
	return &Manager{
		sessions: make(map[string]*store.Store),
		opts:     opts,
	}
}

// OnLifecycle registers hooks run when a session opens or closes.
func (m *Manager) OnLifecycle(open func(id string, s *store.Store), closed func(id string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOpen = open
	m.onClose = closed
}

// Open creates a session with an empty scene and returns its id.
func (m *Manager) Open() (string, *store.Store) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	s := store.New(m.opts)
	m.sessions[id] = s
	if m.onOpen != nil {
		m.onOpen(id, s)
	}
	return id, s
}

func (m *Manager) Resolve(id string) (*store.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return s, nil
}

// Close ends a session and drops its store.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrUnknownSession
	}
	delete(m.sessions, id)
	if m.onClose != nil {
		m.onClose(id)
	}
	return nil
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
