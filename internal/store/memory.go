package store

import (
	"context"
	"sort"
	"sync"

	"github.com/balkashynov/studytrack/internal/models"
)

// sequence hands out monotonic ids starting at 1
type sequence struct {
	last uint
}

// Next returns the next id
func (s *sequence) Next() uint {
	s.last++
	return s.last
}

// Memory is an in-process Store backed by maps. State is lost when the
// process exits.
type Memory struct {
	mu sync.RWMutex

	sessions map[uint]models.Session
	pauses   map[uint]models.Pause
	records  map[uint]models.ManualRecord

	sessionIDs sequence
	pauseIDs   sequence
	recordIDs  sequence
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[uint]models.Session),
		pauses:   make(map[uint]models.Pause),
		records:  make(map[uint]models.ManualRecord),
	}
}

func (m *Memory) CreateSession(_ context.Context, sess *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess.ID = m.sessionIDs.Next()
	m.sessions[sess.ID] = *sess
	return nil
}

func (m *Memory) GetSession(_ context.Context, id uint) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (m *Memory) GetActiveSession(_ context.Context, userID uint) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sess := range m.sortedSessions() {
		if sess.UserID == userID && sess.Status.Live() {
			found := sess
			return &found, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListSessionsByUser(_ context.Context, userID uint) ([]models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Session
	for _, sess := range m.sortedSessions() {
		if sess.UserID == userID {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (m *Memory) UpdateSession(_ context.Context, sess *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sess.ID]; !ok {
		return ErrNotFound
	}
	m.sessions[sess.ID] = *sess
	return nil
}

func (m *Memory) CreatePause(_ context.Context, pause *models.Pause) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pause.ID = m.pauseIDs.Next()
	m.pauses[pause.ID] = *pause
	return nil
}

func (m *Memory) ListPausesBySession(_ context.Context, sessionID uint) ([]models.Pause, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Pause
	for _, pause := range m.pauses {
		if pause.SessionID == sessionID {
			out = append(out, pause)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetOpenPause(ctx context.Context, sessionID uint) (*models.Pause, error) {
	pauses, err := m.ListPausesBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, pause := range pauses {
		if pause.Open() {
			found := pause
			return &found, nil
		}
	}
	return nil, nil
}

func (m *Memory) UpdatePause(_ context.Context, pause *models.Pause) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pauses[pause.ID]; !ok {
		return ErrNotFound
	}
	m.pauses[pause.ID] = *pause
	return nil
}

func (m *Memory) CreateManualRecord(_ context.Context, rec *models.ManualRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = m.recordIDs.Next()
	m.records[rec.ID] = *rec
	return nil
}

func (m *Memory) GetManualRecord(_ context.Context, id uint) (*models.ManualRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *Memory) ListManualRecordsByUser(_ context.Context, userID uint) ([]models.ManualRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.ManualRecord
	for _, rec := range m.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpdateManualRecord(_ context.Context, rec *models.ManualRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.ID]; !ok {
		return ErrNotFound
	}
	m.records[rec.ID] = *rec
	return nil
}

func (m *Memory) DeleteManualRecord(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

// InTx holds the store lock while fn works on a private copy, and publishes
// the copy only when fn succeeds.
func (m *Memory) InTx(_ context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.clone()
	if err := fn(work); err != nil {
		return err
	}

	m.sessions, m.pauses, m.records = work.sessions, work.pauses, work.records
	m.sessionIDs, m.pauseIDs, m.recordIDs = work.sessionIDs, work.pauseIDs, work.recordIDs
	return nil
}

// clone copies the state into a new Memory with its own lock; callers hold m.mu
func (m *Memory) clone() *Memory {
	c := NewMemory()
	for id, sess := range m.sessions {
		c.sessions[id] = sess
	}
	for id, pause := range m.pauses {
		c.pauses[id] = pause
	}
	for id, rec := range m.records {
		c.records[id] = rec
	}
	c.sessionIDs, c.pauseIDs, c.recordIDs = m.sessionIDs, m.pauseIDs, m.recordIDs
	return c
}

// Close is a no-op for the in-memory store
func (m *Memory) Close() error {
	return nil
}

// sortedSessions returns sessions ordered by id; callers hold m.mu
func (m *Memory) sortedSessions() []models.Session {
	out := make([]models.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
