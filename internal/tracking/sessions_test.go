package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/studytrack/internal/models"
	"github.com/balkashynov/studytrack/internal/store"
)

var morning = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestStartSession(t *testing.T) {
	withBackends(t, morning, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		sess, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)
		assert.NotZero(t, sess.ID)
		assert.Equal(t, models.StatusActive, sess.Status)
		assert.True(t, sess.StartedAt.Equal(morning))
		assert.Nil(t, sess.EndedAt)
		assert.Nil(t, sess.TotalDurationMinutes)
		assert.Nil(t, sess.InterruptionReason)

		_, err = svc.StartSession(ctx, 1, 6)
		assert.ErrorIs(t, err, ErrActiveSessionExists)

		// paused sessions still count as live
		_, err = svc.PauseSession(ctx, sess.ID)
		require.NoError(t, err)
		_, err = svc.StartSession(ctx, 1, 6)
		assert.ErrorIs(t, err, ErrActiveSessionExists)

		other, err := svc.StartSession(ctx, 2, 5)
		require.NoError(t, err)
		assert.NotEqual(t, sess.ID, other.ID)
	})
}

func TestStartSession_InvalidIDs(t *testing.T) {
	svc := NewService(nil)

	_, err := svc.StartSession(context.Background(), 0, 0)
	require.ErrorIs(t, err, ErrInvalidInput)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestStartSession_AfterFinish(t *testing.T) {
	withBackends(t, morning, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		sess, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)
		clock.Advance(30 * time.Minute)
		_, err = svc.FinishSession(ctx, sess.ID)
		require.NoError(t, err)

		next, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)
		assert.NotEqual(t, sess.ID, next.ID)
	})
}

func TestSession_PauseResumeFinishScenario(t *testing.T) {
	withBackends(t, morning, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		sess, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)

		paused, err := svc.PauseSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPaused, paused.Status)

		detail, err := svc.SessionDetail(ctx, sess.ID)
		require.NoError(t, err)
		require.Len(t, detail.Pauses, 1)
		assert.True(t, detail.Pauses[0].Open())

		clock.Advance(10 * time.Minute)
		resumed, err := svc.ResumeSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, resumed.Status)

		detail, err = svc.SessionDetail(ctx, sess.ID)
		require.NoError(t, err)
		require.Len(t, detail.Pauses, 1)
		require.NotNil(t, detail.Pauses[0].DurationMinutes)
		assert.Equal(t, 10, *detail.Pauses[0].DurationMinutes)
		assert.Equal(t, 10, detail.PauseMinutes)

		clock.Advance(5 * time.Minute)
		finished, err := svc.FinishSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, finished.Status)
		require.NotNil(t, finished.EndedAt)
		assert.True(t, finished.EndedAt.Equal(morning.Add(15*time.Minute)))
		require.NotNil(t, finished.TotalDurationMinutes)
		assert.Equal(t, 5, *finished.TotalDurationMinutes)
	})
}

func TestSession_MultiplePauses(t *testing.T) {
	withBackends(t, morning, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		sess, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)

		for _, pause := range []time.Duration{7 * time.Minute, 13 * time.Minute} {
			clock.Advance(20 * time.Minute)
			_, err = svc.PauseSession(ctx, sess.ID)
			require.NoError(t, err)
			clock.Advance(pause)
			_, err = svc.ResumeSession(ctx, sess.ID)
			require.NoError(t, err)
		}

		clock.Advance(20*time.Minute + 45*time.Second)
		finished, err := svc.FinishSession(ctx, sess.ID)
		require.NoError(t, err)
		// 80m45s elapsed, 20m paused, floored to the minute
		assert.Equal(t, 60, *finished.TotalDurationMinutes)
	})
}

func TestPauseSession_Errors(t *testing.T) {
	withBackends(t, morning, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		_, err := svc.PauseSession(ctx, 999)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.True(t, IsNotFound(err))

		sess, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)
		_, err = svc.PauseSession(ctx, sess.ID)
		require.NoError(t, err)

		_, err = svc.PauseSession(ctx, sess.ID)
		assert.ErrorIs(t, err, ErrInvalidStatus)

		detail, err := svc.SessionDetail(ctx, sess.ID)
		require.NoError(t, err)
		assert.Len(t, detail.Pauses, 1, "a rejected pause must not open another pause")
	})
}

func TestResumeSession_Errors(t *testing.T) {
	withBackends(t, morning, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		_, err := svc.ResumeSession(ctx, 999)
		assert.ErrorIs(t, err, ErrSessionNotFound)

		sess, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)
		_, err = svc.ResumeSession(ctx, sess.ID)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestResumeSession_PauseTimeout(t *testing.T) {
	withBackends(t, morning, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		sess, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)
		clock.Advance(30 * time.Minute)
		_, err = svc.PauseSession(ctx, sess.ID)
		require.NoError(t, err)

		clock.Advance(24*time.Hour + time.Minute)
		interrupted, err := svc.ResumeSession(ctx, sess.ID)
		require.ErrorIs(t, err, ErrPauseTimeout)
		require.NotNil(t, interrupted)
		assert.Equal(t, models.StatusInterrupted, interrupted.Status)
		require.NotNil(t, interrupted.InterruptionReason)
		assert.Equal(t, models.InterruptionTimeout, *interrupted.InterruptionReason)
		require.NotNil(t, interrupted.EndedAt)
		assert.True(t, interrupted.EndedAt.Equal(clock.Now()))
		require.NotNil(t, interrupted.TotalDurationMinutes)
		assert.Equal(t, 30, *interrupted.TotalDurationMinutes)

		// the interruption is persisted even though the call failed
		detail, err := svc.SessionDetail(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInterrupted, detail.Session.Status)
		require.Len(t, detail.Pauses, 1)
		assert.False(t, detail.Pauses[0].Open())
		assert.Equal(t, 1441, *detail.Pauses[0].DurationMinutes)

		_, err = svc.ActiveSession(ctx, 1)
		assert.ErrorIs(t, err, ErrSessionNotFound)

		_, err = svc.StartSession(ctx, 1, 5)
		assert.NoError(t, err)
	})
}

func TestResumeSession_PauseAtLimit(t *testing.T) {
	withBackends(t, morning, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		sess, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)
		_, err = svc.PauseSession(ctx, sess.ID)
		require.NoError(t, err)

		clock.Advance(24*time.Hour + 59*time.Second)
		resumed, err := svc.ResumeSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, resumed.Status)
	})
}

func TestFinishSession_TooShort(t *testing.T) {
	withBackends(t, morning, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		sess, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)

		clock.Advance(59 * time.Second)
		_, err = svc.FinishSession(ctx, sess.ID)
		require.ErrorIs(t, err, ErrSessionTooShort)

		active, err := svc.ActiveSession(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, active.Status)

		clock.Advance(31 * time.Second)
		finished, err := svc.FinishSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, *finished.TotalDurationMinutes)
	})
}

func TestFinishSession_Errors(t *testing.T) {
	withBackends(t, morning, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		_, err := svc.FinishSession(ctx, 42)
		assert.ErrorIs(t, err, ErrSessionNotFound)

		sess, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)
		clock.Advance(10 * time.Minute)
		_, err = svc.PauseSession(ctx, sess.ID)
		require.NoError(t, err)

		_, err = svc.FinishSession(ctx, sess.ID)
		assert.ErrorIs(t, err, ErrInvalidStatus)

		_, err = svc.ResumeSession(ctx, sess.ID)
		require.NoError(t, err)
		_, err = svc.FinishSession(ctx, sess.ID)
		require.NoError(t, err)

		_, err = svc.FinishSession(ctx, sess.ID)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestEditCompletedSession(t *testing.T) {
	withBackends(t, morning, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		sess, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)
		clock.Advance(20 * time.Minute)
		_, err = svc.PauseSession(ctx, sess.ID)
		require.NoError(t, err)
		clock.Advance(10 * time.Minute)
		_, err = svc.ResumeSession(ctx, sess.ID)
		require.NoError(t, err)
		clock.Advance(90 * time.Minute)
		_, err = svc.FinishSession(ctx, sess.ID)
		require.NoError(t, err)

		clock.Advance(2 * time.Hour)
		edited, err := svc.EditCompletedSession(ctx, EditSessionInput{
			SessionID:    sess.ID,
			Reason:       models.EditTimeAdjustment,
			NewEnd:       timePtr(morning.Add(70 * time.Minute)),
			NewSubjectID: uintPtr(8),
		})
		require.NoError(t, err)
		assert.Equal(t, 60, *edited.TotalDurationMinutes)
		assert.True(t, edited.EndedAt.Equal(morning.Add(70*time.Minute)))
		assert.Equal(t, uint(8), edited.SubjectID)
		assert.Equal(t, models.StatusCompleted, edited.Status)
		require.NotNil(t, edited.EditReason)
		assert.Equal(t, models.EditTimeAdjustment, *edited.EditReason)
		require.NotNil(t, edited.EditedAt)
		assert.True(t, edited.EditedAt.Equal(clock.Now()))

		detail, err := svc.SessionDetail(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, uint(8), detail.Session.SubjectID)
		assert.Equal(t, 60, *detail.Session.TotalDurationMinutes)

		subjectOnly, err := svc.EditCompletedSession(ctx, EditSessionInput{
			SessionID:    sess.ID,
			Reason:       models.EditSubjectCorrection,
			NewSubjectID: uintPtr(9),
		})
		require.NoError(t, err)
		assert.Equal(t, uint(9), subjectOnly.SubjectID)
		assert.Equal(t, 60, *subjectOnly.TotalDurationMinutes)
	})
}

func TestEditCompletedSession_Rejections(t *testing.T) {
	withBackends(t, morning, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		live, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)

		_, err = svc.EditCompletedSession(ctx, EditSessionInput{SessionID: live.ID, Reason: models.EditTimeAdjustment})
		assert.ErrorIs(t, err, ErrInvalidStatus)

		clock.Advance(time.Hour)
		_, err = svc.FinishSession(ctx, live.ID)
		require.NoError(t, err)

		_, err = svc.EditCompletedSession(ctx, EditSessionInput{SessionID: live.ID, Reason: "because"})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = svc.EditCompletedSession(ctx, EditSessionInput{SessionID: 999, Reason: models.EditTimeAdjustment})
		assert.ErrorIs(t, err, ErrSessionNotFound)

		_, err = svc.EditCompletedSession(ctx, EditSessionInput{
			SessionID: live.ID,
			Reason:    models.EditTimeAdjustment,
			NewEnd:    timePtr(morning.Add(-time.Minute)),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = svc.EditCompletedSession(ctx, EditSessionInput{
			SessionID: live.ID,
			Reason:    models.EditTimeAdjustment,
			NewEnd:    timePtr(clock.Now().Add(time.Minute)),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = svc.EditCompletedSession(ctx, EditSessionInput{
			SessionID:    live.ID,
			Reason:       models.EditSubjectCorrection,
			NewSubjectID: uintPtr(0),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)

		clock.Set(morning.Add(24*time.Hour + time.Minute))
		_, err = svc.EditCompletedSession(ctx, EditSessionInput{SessionID: live.ID, Reason: models.EditTimeAdjustment})
		assert.ErrorIs(t, err, ErrEditPeriodExpired)
	})
}

func TestEditCompletedSession_Interrupted(t *testing.T) {
	st := store.NewMemory()
	clock := newClock(morning.Add(3 * time.Hour))
	svc := NewService(st, WithClock(clock.Now), WithLocation(time.UTC))
	ctx := context.Background()

	end := morning.Add(time.Hour)
	reason := models.InterruptionSystemError
	sess := &models.Session{
		UserID:               1,
		SubjectID:            5,
		StartedAt:            morning,
		EndedAt:              &end,
		Status:               models.StatusInterrupted,
		TotalDurationMinutes: intPtr(60),
		InterruptionReason:   &reason,
	}
	require.NoError(t, st.CreateSession(ctx, sess))

	edited, err := svc.EditCompletedSession(ctx, EditSessionInput{
		SessionID: sess.ID,
		Reason:    models.EditInterruptionCorrection,
		NewEnd:    timePtr(morning.Add(2 * time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, 120, *edited.TotalDurationMinutes)
	assert.Equal(t, models.StatusInterrupted, edited.Status)
}

func TestEditCompletedSession_TimedOutSessionIsPastWindow(t *testing.T) {
	withBackends(t, morning, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		sess, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)
		_, err = svc.PauseSession(ctx, sess.ID)
		require.NoError(t, err)

		clock.Advance(24*time.Hour + time.Minute)
		_, err = svc.ResumeSession(ctx, sess.ID)
		require.ErrorIs(t, err, ErrPauseTimeout)

		_, err = svc.EditCompletedSession(ctx, EditSessionInput{SessionID: sess.ID, Reason: models.EditInterruptionCorrection})
		assert.ErrorIs(t, err, ErrEditPeriodExpired)
	})
}

func TestActiveSession(t *testing.T) {
	withBackends(t, morning, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		_, err := svc.ActiveSession(ctx, 1)
		assert.ErrorIs(t, err, ErrSessionNotFound)

		sess, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)

		active, err := svc.ActiveSession(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, active.ID)

		_, err = svc.ActiveSession(ctx, 2)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestSessionDetail_NoPauses(t *testing.T) {
	withBackends(t, morning, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		sess, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)

		detail, err := svc.SessionDetail(ctx, sess.ID)
		require.NoError(t, err)
		assert.NotNil(t, detail.Pauses)
		assert.Empty(t, detail.Pauses)
		assert.Zero(t, detail.PauseMinutes)

		_, err = svc.SessionDetail(ctx, 999)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestEffectiveElapsed(t *testing.T) {
	start := morning
	closedEnd := start.Add(10 * time.Minute)
	sess := models.Session{StartedAt: start}
	pauses := []models.Pause{
		{StartedAt: start.Add(5 * time.Minute), EndedAt: &closedEnd},
		{StartedAt: start.Add(20 * time.Minute)},
	}

	now := start.Add(30 * time.Minute)
	// 30m elapsed, 5m closed pause, 10m open pause
	assert.Equal(t, 15*time.Minute, EffectiveElapsed(sess, pauses, now))

	assert.Equal(t, 5*time.Minute, EffectiveElapsed(sess, pauses[:1], start.Add(10*time.Minute)))

	ended := start.Add(12 * time.Minute)
	sess.EndedAt = &ended
	assert.Equal(t, 7*time.Minute, EffectiveElapsed(sess, pauses[:1], now))

	assert.Equal(t, time.Duration(0), EffectiveElapsed(models.Session{StartedAt: now}, nil, start))
}
