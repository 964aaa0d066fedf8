// Package tracking implements study time tracking: the live session state
// machine, manual time records and the history/statistics reports.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/balkashynov/studytrack/internal/logger"
	"github.com/balkashynov/studytrack/internal/metrics"
	"github.com/balkashynov/studytrack/internal/models"
	"github.com/balkashynov/studytrack/internal/store"
)

// Service enforces the time tracking rules on top of a store.
// Operations are serialized so check-then-write sequences cannot interleave.
type Service struct {
	mu sync.Mutex

	store   store.Store
	limits  Limits
	now     func() time.Time
	loc     *time.Location
	logger  *logger.Logger
	metrics *metrics.Recorder
}

// Option customizes a Service
type Option func(*Service)

// WithLimits overrides the default limits
func WithLimits(l Limits) Option {
	return func(s *Service) { s.limits = l }
}

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone that decides which calendar day an instant belongs to
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics enables prometheus counters
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service over st
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		limits: DefaultLimits(),
		now:    time.Now,
		loc:    time.Local,
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limits returns the limits in effect
func (s *Service) Limits() Limits {
	return s.limits
}

// Location returns the time zone used for calendar dates
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

// reject counts and logs a business rule violation before returning it
func (s *Service) reject(err error, keysAndValues ...interface{}) error {
	code := Code(err)
	s.metrics.BusinessError(code)
	s.logger.Debug("operation rejected", append(keysAndValues, "code", code, "error", err.Error())...)
	return err
}

func (s *Service) loadSession(ctx context.Context, id uint) (*models.Session, error) {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, s.reject(ErrSessionNotFound, "session_id", id)
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

func (s *Service) loadRecord(ctx context.Context, id uint) (*models.ManualRecord, error) {
	rec, err := s.store.GetManualRecord(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, s.reject(ErrRecordNotFound, "record_id", id)
		}
		return nil, fmt.Errorf("loading manual record: %w", err)
	}
	return rec, nil
}
