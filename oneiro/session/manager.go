package session

import (
	"sync"

	"github.com/google/uuid"
)

// Manager is the in-memory registry of live sessions. Sessions are created
// when a user starts entering a dream and discarded when they navigate away;
// durable storage is the recorder's concern.
type Manager struct {
	analyzer  Analyzer
	responder Responder
	recorder  Recorder
	cfg       Config

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(analyzer Analyzer, responder Responder, recorder Recorder, cfg Config) *Manager {
	return &Manager{
		analyzer:  analyzer,
		responder: responder,
		recorder:  recorder,
		cfg:       cfg,
		sessions:  make(map[string]*Session),
	}
}

// Create registers a new session for the given user.
func (m *Manager) Create(userID int) *Session {
	s := New(uuid.New().String(), userID, m.analyzer, m.responder, m.recorder, m.cfg)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close discards a session: active capture stops and late external results
// are dropped.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}
