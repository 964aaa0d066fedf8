package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/balkashynov/studytrack/internal/models"
	"github.com/balkashynov/studytrack/internal/parser"
	"github.com/balkashynov/studytrack/internal/store"
)

// SessionDetail is a session together with its pauses
type SessionDetail struct {
	Session      models.Session `json:"session"`
	Pauses       []models.Pause `json:"pauses"`
	PauseMinutes int            `json:"pauseMinutes"`
}

// EditSessionInput corrects a finished session after the fact
type EditSessionInput struct {
	SessionID    uint
	Reason       string
	NewEnd       *time.Time
	NewSubjectID *uint
}

// StartSession opens a new active session. A user can only have one live session.
func (s *Service) StartSession(ctx context.Context, userID, subjectID uint) (*models.Session, error) {
	verr := &ValidationError{}
	if userID == 0 {
		verr.add("userId", "must be a positive integer")
	}
	if subjectID == 0 {
		verr.add("subjectId", "must be a positive integer")
	}
	if err := verr.err(); err != nil {
		return nil, s.reject(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.store.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checking active session: %w", err)
	}
	if active != nil {
		return nil, s.reject(ErrActiveSessionExists, "user_id", userID, "session_id", active.ID)
	}

	sess := &models.Session{
		UserID:    userID,
		SubjectID: subjectID,
		StartedAt: s.clock(),
		Status:    models.StatusActive,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.metrics.Transition("start")
	s.logger.Info("session started", "session_id", sess.ID, "user_id", userID, "subject_id", subjectID)
	return sess, nil
}

// PauseSession opens a pause on an active session
func (s *Service) PauseSession(ctx context.Context, sessionID uint) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.StatusActive {
		return nil, s.reject(fmt.Errorf("%w: only active sessions can be paused", ErrInvalidStatus), "session_id", sessionID, "status", sess.Status)
	}

	now := s.clock()
	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.CreatePause(ctx, &models.Pause{SessionID: sess.ID, StartedAt: now}); err != nil {
			return fmt.Errorf("creating pause: %w", err)
		}
		sess.Status = models.StatusPaused
		if err := tx.UpdateSession(ctx, sess); err != nil {
			return fmt.Errorf("updating session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Transition("pause")
	s.logger.Info("session paused", "session_id", sess.ID)
	return sess, nil
}

// ResumeSession closes the open pause and reactivates the session.
//
// When the pause outlasted MaxPauseMinutes the session is interrupted
// instead: the pause is closed, the session is persisted as interrupted
// with reason "timeout", and the interrupted session is returned together
// with ErrPauseTimeout.
func (s *Service) ResumeSession(ctx context.Context, sessionID uint) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.StatusPaused {
		return nil, s.reject(fmt.Errorf("%w: only paused sessions can be resumed", ErrInvalidStatus), "session_id", sessionID, "status", sess.Status)
	}

	now := s.clock()
	pauseMinutes := 0
	timedOut := false
	err = s.store.InTx(ctx, func(tx store.Store) error {
		open, err := tx.GetOpenPause(ctx, sess.ID)
		if err != nil {
			return fmt.Errorf("loading open pause: %w", err)
		}

		if open != nil {
			pauseMinutes = parser.MinutesBetween(open.StartedAt, now)
			open.EndedAt = &now
			open.DurationMinutes = &pauseMinutes
			if err := tx.UpdatePause(ctx, open); err != nil {
				return fmt.Errorf("closing pause: %w", err)
			}

			if pauseMinutes > s.limits.MaxPauseMinutes {
				timedOut = true
				return interruptOnTimeout(ctx, tx, sess, now)
			}
		}

		sess.Status = models.StatusActive
		if err := tx.UpdateSession(ctx, sess); err != nil {
			return fmt.Errorf("updating session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if timedOut {
		s.metrics.Transition("timeout")
		s.logger.Warn("session interrupted after pause timeout", "session_id", sess.ID, "pause_minutes", pauseMinutes)
		return sess, s.reject(ErrPauseTimeout, "session_id", sess.ID)
	}

	s.metrics.Transition("resume")
	s.logger.Info("session resumed", "session_id", sess.ID)
	return sess, nil
}

// interruptOnTimeout ends a session whose pause ran too long. The open pause
// must already be closed within the same transaction.
func interruptOnTimeout(ctx context.Context, tx store.Store, sess *models.Session, now time.Time) error {
	pauses, err := tx.ListPausesBySession(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("listing pauses: %w", err)
	}

	total := parser.MinutesBetween(sess.StartedAt, now) - store.PauseMinutes(pauses)
	if total < 0 {
		total = 0
	}
	reason := models.InterruptionTimeout

	sess.Status = models.StatusInterrupted
	sess.EndedAt = &now
	sess.TotalDurationMinutes = &total
	sess.InterruptionReason = &reason
	if err := tx.UpdateSession(ctx, sess); err != nil {
		return fmt.Errorf("interrupting session: %w", err)
	}
	return nil
}

// FinishSession completes an active session, recording its duration minus paused time
func (s *Service) FinishSession(ctx context.Context, sessionID uint) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.StatusActive {
		return nil, s.reject(fmt.Errorf("%w: only active sessions can be finished", ErrInvalidStatus), "session_id", sessionID, "status", sess.Status)
	}

	pauses, err := s.store.ListPausesBySession(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("listing pauses: %w", err)
	}

	now := s.clock()
	effective := parser.MinutesBetween(sess.StartedAt, now) - store.PauseMinutes(pauses)
	if effective < s.limits.MinSessionMinutes {
		return nil, s.reject(ErrSessionTooShort, "session_id", sessionID, "effective_minutes", effective)
	}

	sess.Status = models.StatusCompleted
	sess.EndedAt = &now
	sess.TotalDurationMinutes = &effective
	if err := s.store.UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}

	s.metrics.Transition("finish")
	s.logger.Info("session finished", "session_id", sess.ID, "total_minutes", effective)
	return sess, nil
}

// EditCompletedSession corrects the end time or subject of a completed or
// interrupted session within SessionEditWindow of its start.
func (s *Service) EditCompletedSession(ctx context.Context, in EditSessionInput) (*models.Session, error) {
	verr := &ValidationError{}
	if !validEditReason(in.Reason) {
		verr.add("reason", "must be one of %s, %s, %s", models.EditInterruptionCorrection, models.EditTimeAdjustment, models.EditSubjectCorrection)
	}
	if in.NewSubjectID != nil && *in.NewSubjectID == 0 {
		verr.add("newSubjectId", "must be a positive integer")
	}
	if err := verr.err(); err != nil {
		return nil, s.reject(err, "session_id", in.SessionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.loadSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if now.Sub(sess.StartedAt) > s.limits.SessionEditWindow {
		return nil, s.reject(fmt.Errorf("%w: sessions can only be edited within %s of their start", ErrEditPeriodExpired, s.limits.SessionEditWindow), "session_id", sess.ID)
	}
	if !sess.Status.Closed() {
		return nil, s.reject(fmt.Errorf("%w: only completed or interrupted sessions can be edited", ErrInvalidStatus), "session_id", sess.ID, "status", sess.Status)
	}

	if in.NewEnd != nil {
		newEnd := in.NewEnd.In(s.loc)
		if !newEnd.After(sess.StartedAt) {
			return nil, s.reject(&ValidationError{Fields: []FieldError{{Field: "newEnd", Message: "must be after the session start"}}}, "session_id", sess.ID)
		}
		if newEnd.After(now) {
			return nil, s.reject(&ValidationError{Fields: []FieldError{{Field: "newEnd", Message: "cannot be in the future"}}}, "session_id", sess.ID)
		}

		pauses, err := s.store.ListPausesBySession(ctx, sess.ID)
		if err != nil {
			return nil, fmt.Errorf("listing pauses: %w", err)
		}
		effective := parser.MinutesBetween(sess.StartedAt, newEnd) - store.PauseMinutes(pauses)
		if effective < 0 {
			return nil, s.reject(&ValidationError{Fields: []FieldError{{Field: "newEnd", Message: "leaves less time than the recorded pauses"}}}, "session_id", sess.ID)
		}

		sess.EndedAt = &newEnd
		sess.TotalDurationMinutes = &effective
	}

	if in.NewSubjectID != nil {
		subjectID := *in.NewSubjectID
		sess.SubjectID = subjectID
	}

	reason := in.Reason
	sess.EditReason = &reason
	sess.EditedAt = &now
	if err := s.store.UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}

	s.metrics.Transition("edit")
	s.logger.Info("session edited", "session_id", sess.ID, "reason", in.Reason)
	return sess, nil
}

// ActiveSession returns the user's live (active or paused) session
func (s *Service) ActiveSession(ctx context.Context, userID uint) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.store.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading active session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// SessionDetail returns a session with its pauses
func (s *Service) SessionDetail(ctx context.Context, sessionID uint) (*SessionDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	pauses, err := s.store.ListPausesBySession(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("listing pauses: %w", err)
	}
	if pauses == nil {
		pauses = []models.Pause{}
	}

	return &SessionDetail{
		Session:      *sess,
		Pauses:       pauses,
		PauseMinutes: store.PauseMinutes(pauses),
	}, nil
}

// EffectiveElapsed is the study time of a session at now: wall-clock time
// since start minus closed pauses and the running part of an open pause.
func EffectiveElapsed(sess models.Session, pauses []models.Pause, now time.Time) time.Duration {
	end := now
	if sess.EndedAt != nil {
		end = *sess.EndedAt
	}

	elapsed := end.Sub(sess.StartedAt)
	for _, p := range pauses {
		pauseEnd := end
		if p.EndedAt != nil {
			pauseEnd = *p.EndedAt
		}
		elapsed -= pauseEnd.Sub(p.StartedAt)
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func validEditReason(reason string) bool {
	switch reason {
	case models.EditInterruptionCorrection, models.EditTimeAdjustment, models.EditSubjectCorrection:
		return true
	}
	return false
}

// IsNotFound reports whether err is any of the lookup failures
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
