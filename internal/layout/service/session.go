package service

import (
	"errors"
	"log"
	"sync"
	"time"

	"floor-layout/internal/layout/editor"
	"floor-layout/internal/layout/gateway"
	"floor-layout/internal/layout/models"

	"github.com/google/uuid"
)

// ============================================================
// Editor Sessions
// ============================================================

var ErrSessionNotFound = errors.New("session not found")

// Session - один открытый редактор этажа. События одной сессии
// обрабатываются строго последовательно.
type Session struct {
	ID        string
	FloorID   string
	CreatedAt time.Time

	mu         sync.Mutex
	controller *editor.Controller
	inbox      *Inbox
	dispatcher *gateway.Dispatcher
}

// Do выполняет fn под замком сессии. Если fn вернул коммит, он уходит
// в диспетчер асинхронно, без ожидания ответа.
func (s *Session) Do(fn func(c *editor.Controller) (*models.Commit, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	commit, err := fn(s.controller)
	if err != nil {
		return err
	}
	if commit != nil {
		s.dispatcher.Dispatch(*commit, s.inbox)
	}
	return nil
}

// View выполняет fn под замком сессии только для чтения.
func (s *Session) View(fn func(c *editor.Controller)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.controller)
}

func (s *Session) Inbox() *Inbox { return s.inbox }

type SessionManager struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	opts       editor.Options
	dispatcher *gateway.Dispatcher
}

func NewSessionManager(opts editor.Options, dispatcher *gateway.Dispatcher) *SessionManager {
	return &SessionManager{
		sessions:   make(map[string]*Session),
		opts:       opts,
		dispatcher: dispatcher,
	}
}

// Open создаёт сессию редактора, засеянную столами этажа.
func (m *SessionManager) Open(floor models.Floor, tables []models.Entity) *Session {
	c := editor.New(m.opts)
	c.Load(floor, tables)

	s := &Session{
		ID:         uuid.NewString(),
		FloorID:    floor.ID,
		CreatedAt:  time.Now(),
		controller: c,
		inbox:      NewInbox(inboxCapacity),
		dispatcher: m.dispatcher,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	log.Printf("[SESSION] opened %s for floor %s (%d tables)", s.ID, floor.ID, len(tables))
	return s
}

func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	log.Printf("[SESSION] closed %s", id)
	return nil
}

// ForFloor возвращает открытые сессии этажа.
func (m *SessionManager) ForFloor(floorID string) []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*Session
	for _, s := range m.sessions {
		if s.FloorID == floorID {
			out = append(out, s)
		}
	}
	return out
}
