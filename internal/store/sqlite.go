package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/studytrack/internal/models"
)

// MemoryDSN opens a private in-memory sqlite database
const MemoryDSN = ":memory:"

// SQLite is a Store persisted through gorm on a sqlite database
type SQLite struct {
	db *gorm.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database at path and runs migrations
func OpenSQLite(path string) (*SQLite, error) {
	if path != MemoryDSN {
		// Ensure the directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	// Every pooled connection to :memory: would see its own empty database
	sqlDB.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// DefaultPath returns the path to the CLI's sqlite database file
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".studytrack", "studytrack.db"), nil
}

// runMigrations creates/updates the database schema
func (s *SQLite) runMigrations() error {
	return s.db.AutoMigrate(
		&models.Session{},
		&models.Pause{},
		&models.ManualRecord{},
	)
}

// Close closes the database connection
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLite) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&SQLite{db: tx})
	})
}

func (s *SQLite) CreateSession(ctx context.Context, sess *models.Session) error {
	sess.ID = 0
	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SQLite) GetSession(ctx context.Context, id uint) (*models.Session, error) {
	var sess models.Session
	if err := s.db.WithContext(ctx).First(&sess, id).Error; err != nil {
		return nil, translate(err)
	}
	return &sess, nil
}

func (s *SQLite) GetActiveSession(ctx context.Context, userID uint) (*models.Session, error) {
	var sess models.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []string{string(models.StatusActive), string(models.StatusPaused)}).
		Order("id ASC").
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // No active session is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("query active session: %w", err)
	}
	return &sess, nil
}

func (s *SQLite) ListSessionsByUser(ctx context.Context, userID uint) ([]models.Session, error) {
	var sessions []models.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *SQLite) UpdateSession(ctx context.Context, sess *models.Session) error {
	res := s.db.WithContext(ctx).
		Model(&models.Session{ID: sess.ID}).
		Select("*").
		Updates(sess)
	return rowsOrNotFound(res, "update session")
}

func (s *SQLite) CreatePause(ctx context.Context, pause *models.Pause) error {
	pause.ID = 0
	if err := s.db.WithContext(ctx).Create(pause).Error; err != nil {
		return fmt.Errorf("insert pause: %w", err)
	}
	return nil
}

func (s *SQLite) ListPausesBySession(ctx context.Context, sessionID uint) ([]models.Pause, error) {
	var pauses []models.Pause
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&pauses).Error
	if err != nil {
		return nil, fmt.Errorf("list pauses: %w", err)
	}
	return pauses, nil
}

func (s *SQLite) GetOpenPause(ctx context.Context, sessionID uint) (*models.Pause, error) {
	var pause models.Pause
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND ended_at IS NULL", sessionID).
		Order("id ASC").
		First(&pause).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query open pause: %w", err)
	}
	return &pause, nil
}

func (s *SQLite) UpdatePause(ctx context.Context, pause *models.Pause) error {
	res := s.db.WithContext(ctx).
		Model(&models.Pause{ID: pause.ID}).
		Select("*").
		Updates(pause)
	return rowsOrNotFound(res, "update pause")
}

func (s *SQLite) CreateManualRecord(ctx context.Context, rec *models.ManualRecord) error {
	rec.ID = 0
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("insert manual record: %w", err)
	}
	return nil
}

func (s *SQLite) GetManualRecord(ctx context.Context, id uint) (*models.ManualRecord, error) {
	var rec models.ManualRecord
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (s *SQLite) ListManualRecordsByUser(ctx context.Context, userID uint) ([]models.ManualRecord, error) {
	var records []models.ManualRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list manual records: %w", err)
	}
	return records, nil
}

func (s *SQLite) UpdateManualRecord(ctx context.Context, rec *models.ManualRecord) error {
	res := s.db.WithContext(ctx).
		Model(&models.ManualRecord{ID: rec.ID}).
		Select("*").
		Updates(rec)
	return rowsOrNotFound(res, "update manual record")
}

func (s *SQLite) DeleteManualRecord(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.ManualRecord{}, id)
	return rowsOrNotFound(res, "delete manual record")
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func rowsOrNotFound(res *gorm.DB, op string) error {
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
