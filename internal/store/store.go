// Package store holds study sessions, pauses and manual records.
//
// Backends only persist and query; business rules live in the tracking
// package.
package store

import (
	"context"
	"errors"

	"github.com/balkashynov/studytrack/internal/models"
)

// ErrNotFound is returned when a requested entity doesn't exist
var ErrNotFound = errors.New("not found")

// Store is the capability set shared by every backend. Create methods
// assign the entity id; Update and Delete return ErrNotFound for an
// unknown id instead of silently doing nothing.
type Store interface {
	CreateSession(ctx context.Context, sess *models.Session) error
	GetSession(ctx context.Context, id uint) (*models.Session, error)
	// GetActiveSession returns the user's active or paused session, or nil when there is none.
	GetActiveSession(ctx context.Context, userID uint) (*models.Session, error)
	ListSessionsByUser(ctx context.Context, userID uint) ([]models.Session, error)
	UpdateSession(ctx context.Context, sess *models.Session) error

	CreatePause(ctx context.Context, pause *models.Pause) error
	ListPausesBySession(ctx context.Context, sessionID uint) ([]models.Pause, error)
	// GetOpenPause returns the session's unclosed pause, or nil when there is none.
	GetOpenPause(ctx context.Context, sessionID uint) (*models.Pause, error)
	UpdatePause(ctx context.Context, pause *models.Pause) error

	CreateManualRecord(ctx context.Context, rec *models.ManualRecord) error
	GetManualRecord(ctx context.Context, id uint) (*models.ManualRecord, error)
	ListManualRecordsByUser(ctx context.Context, userID uint) ([]models.ManualRecord, error)
	UpdateManualRecord(ctx context.Context, rec *models.ManualRecord) error
	DeleteManualRecord(ctx context.Context, id uint) error

	// InTx runs fn against a transactional view of the store. Writes made
	// through tx are kept only when fn returns nil. fn must not use the
	// outer store.
	InTx(ctx context.Context, fn func(tx Store) error) error

	Close() error
}
