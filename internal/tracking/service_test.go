package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/balkashynov/studytrack/internal/logger"
	"github.com/balkashynov/studytrack/internal/store"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	now time.Time
}

func newClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
func (c *fakeClock) Set(t time.Time)         { c.now = t }

// withBackends runs fn with a service over every store implementation
func withBackends(t *testing.T, start time.Time, fn func(t *testing.T, svc *Service, clock *fakeClock)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		clock := newClock(start)
		fn(t, NewService(store.NewMemory(), WithClock(clock.Now), WithLocation(time.UTC)), clock)
	})

	t.Run("sqlite", func(t *testing.T) {
		st, err := store.OpenSQLite(store.MemoryDSN)
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })

		clock := newClock(start)
		fn(t, NewService(st, WithClock(clock.Now), WithLocation(time.UTC)), clock)
	})
}

func uintPtr(v uint) *uint           { return &v }
func strPtr(v string) *string        { return &v }
func timePtr(v time.Time) *time.Time { return &v }
func intPtr(v int) *int              { return &v }

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrSessionNotFound, CodeNotFound},
		{ErrRecordNotFound, CodeNotFound},
		{ErrInvalidStatus, CodeInvalidStatus},
		{ErrActiveSessionExists, CodeActiveSessionExists},
		{ErrSessionTooShort, CodeSessionTooShort},
		{ErrPauseTimeout, CodePauseTimeout},
		{ErrTimeOverlap, CodeTimeOverlap},
		{ErrDailyLimitExceeded, CodeDailyLimitExceeded},
		{ErrEditPeriodExpired, CodeEditPeriodExpired},
		{&ValidationError{Fields: []FieldError{{Field: "x", Message: "bad"}}}, CodeValidation},
		{errors.New("disk on fire"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}

	assert.True(t, IsBusinessError(ErrTimeOverlap))
	assert.False(t, IsBusinessError(errors.New("boom")))
	assert.False(t, IsBusinessError(nil))
}

func TestValidationError_Message(t *testing.T) {
	verr := &ValidationError{}
	assert.NoError(t, verr.err())

	verr.add("startTime", "must be in HH:MM format")
	verr.add("endTime", "must be after %s", "startTime")

	err := verr.err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "invalid input: startTime: must be in HH:MM format; endTime: must be after startTime", err.Error())
}

func TestService_LogsRejections(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	clock := newClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := NewService(store.NewMemory(), WithClock(clock.Now), WithLocation(time.UTC), WithLogger(logger.FromZap(zap.New(core))))
	ctx := context.Background()

	_, err := svc.StartSession(ctx, 1, 5)
	require.NoError(t, err)
	_, err = svc.StartSession(ctx, 1, 6)
	require.ErrorIs(t, err, ErrActiveSessionExists)

	assert.Equal(t, 1, logs.FilterMessage("session started").Len())
	rejected := logs.FilterMessage("operation rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, CodeActiveSessionExists, rejected[0].ContextMap()["code"])
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(store.NewMemory())
	assert.Equal(t, DefaultLimits(), svc.Limits())
	assert.Equal(t, time.Local, svc.Location())

	custom := DefaultLimits()
	custom.DailyCapMinutes = 60
	svc = NewService(store.NewMemory(), WithLimits(custom), WithLocation(nil), WithLogger(nil))
	assert.Equal(t, 60, svc.Limits().DailyCapMinutes)
	assert.Equal(t, time.Local, svc.Location())
}
