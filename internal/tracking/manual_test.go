package tracking

import (
	"context"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noon = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func manualInput(date, start, end string) ManualRecordInput {
	return ManualRecordInput{UserID: 1, SubjectID: 3, StudyDate: date, StartTime: start, EndTime: end}
}

func TestCreateManualRecord(t *testing.T) {
	withBackends(t, noon, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		in := manualInput("2025-03-09", "08:00", "09:00")
		in.Description = strPtr("linear algebra")
		rec, err := svc.CreateManualRecord(ctx, in)
		require.NoError(t, err)
		assert.NotZero(t, rec.ID)
		assert.Equal(t, 60, rec.DurationMinutes)
		assert.True(t, rec.CreatedAt.Equal(noon))
		assert.Nil(t, rec.UpdatedAt)

		got, err := svc.ManualRecord(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "2025-03-09", got.StudyDate)
		assert.Equal(t, "08:00", got.StartTime)
		assert.Equal(t, "09:00", got.EndTime)
		require.NotNil(t, got.Description)
		assert.Equal(t, "linear algebra", *got.Description)

		_, err = svc.ManualRecord(ctx, 999)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestCreateManualRecord_Overlap(t *testing.T) {
	withBackends(t, noon, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		_, err := svc.CreateManualRecord(ctx, manualInput("2025-03-09", "08:00", "09:00"))
		require.NoError(t, err)

		_, err = svc.CreateManualRecord(ctx, manualInput("2025-03-09", "08:30", "09:30"))
		assert.ErrorIs(t, err, ErrTimeOverlap)

		_, err = svc.CreateManualRecord(ctx, manualInput("2025-03-09", "07:00", "10:00"))
		assert.ErrorIs(t, err, ErrTimeOverlap)

		// touching intervals do not overlap
		_, err = svc.CreateManualRecord(ctx, manualInput("2025-03-09", "09:00", "10:00"))
		assert.NoError(t, err)
		_, err = svc.CreateManualRecord(ctx, manualInput("2025-03-09", "07:00", "08:00"))
		assert.NoError(t, err)

		// other users and other dates are independent
		other := manualInput("2025-03-09", "08:00", "09:00")
		other.UserID = 2
		_, err = svc.CreateManualRecord(ctx, other)
		assert.NoError(t, err)
		_, err = svc.CreateManualRecord(ctx, manualInput("2025-03-08", "08:00", "09:00"))
		assert.NoError(t, err)
	})
}

func TestCreateManualRecord_OverlapsLiveSession(t *testing.T) {
	withBackends(t, noon.Add(-2*time.Hour), func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		_, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)
		clock.Set(noon)

		_, err = svc.CreateManualRecord(ctx, manualInput("2025-03-10", "10:30", "11:00"))
		assert.ErrorIs(t, err, ErrTimeOverlap)

		_, err = svc.CreateManualRecord(ctx, manualInput("2025-03-10", "09:00", "10:00"))
		assert.NoError(t, err)
	})
}

func TestCreateManualRecord_DailyCap(t *testing.T) {
	withBackends(t, noon, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		_, err := svc.CreateManualRecord(ctx, manualInput("2025-03-09", "00:00", "06:00"))
		require.NoError(t, err)
		// exactly 720 minutes passes
		_, err = svc.CreateManualRecord(ctx, manualInput("2025-03-09", "06:00", "12:00"))
		require.NoError(t, err)

		_, err = svc.CreateManualRecord(ctx, manualInput("2025-03-09", "12:00", "12:15"))
		assert.ErrorIs(t, err, ErrDailyLimitExceeded)
	})
}

func TestCreateManualRecord_DailyCapCountsSessions(t *testing.T) {
	withBackends(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		sess, err := svc.StartSession(ctx, 1, 5)
		require.NoError(t, err)
		clock.Advance(11*time.Hour + 30*time.Minute)
		_, err = svc.FinishSession(ctx, sess.ID)
		require.NoError(t, err)

		clock.Set(noon)
		_, err = svc.CreateManualRecord(ctx, manualInput("2025-03-09", "12:00", "13:00"))
		assert.ErrorIs(t, err, ErrDailyLimitExceeded)

		_, err = svc.CreateManualRecord(ctx, manualInput("2025-03-09", "12:00", "12:59"))
		assert.ErrorIs(t, err, ErrDailyLimitExceeded)

		_, err = svc.CreateManualRecord(ctx, manualInput("2025-03-09", "12:00", "12:30"))
		assert.NoError(t, err)
	})
}

func TestManualRecordInput_Validate(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	limits := DefaultLimits()

	tests := []struct {
		name   string
		mutate func(in *ManualRecordInput)
		field  string
	}{
		{"missing user", func(in *ManualRecordInput) { in.UserID = 0 }, "userId"},
		{"missing subject", func(in *ManualRecordInput) { in.SubjectID = 0 }, "subjectId"},
		{"bad date", func(in *ManualRecordInput) { in.StudyDate = "10/03/2025" }, "studyDate"},
		{"impossible date", func(in *ManualRecordInput) { in.StudyDate = "2025-02-30" }, "studyDate"},
		{"future date", func(in *ManualRecordInput) { in.StudyDate = "2025-03-11" }, "studyDate"},
		{"older than a year", func(in *ManualRecordInput) { in.StudyDate = "2024-03-09" }, "studyDate"},
		{"bad start", func(in *ManualRecordInput) { in.StartTime = "8:00" }, "startTime"},
		{"bad end", func(in *ManualRecordInput) { in.EndTime = "24:00" }, "endTime"},
		{"end before start", func(in *ManualRecordInput) { in.StartTime, in.EndTime = "10:00", "09:00" }, "endTime"},
		{"too short", func(in *ManualRecordInput) { in.StartTime, in.EndTime = "09:00", "09:14" }, "endTime"},
		{"too long", func(in *ManualRecordInput) { in.StartTime, in.EndTime = "08:00", "20:01" }, "endTime"},
		{"long description", func(in *ManualRecordInput) { in.Description = strPtr(strings.Repeat("a", 501)) }, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := manualInput("2025-03-09", "09:00", "10:00")
			tt.mutate(&in)

			_, err := in.Validate(limits, today)
			require.ErrorIs(t, err, ErrInvalidInput)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestManualRecordInput_ValidateBounds(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	limits := DefaultLimits()

	accepted := []ManualRecordInput{
		manualInput("2025-03-10", "09:00", "09:15"),
		manualInput("2024-03-10", "08:00", "20:00"),
	}
	want := []int{15, 720}

	for i, in := range accepted {
		in.Description = strPtr(strings.Repeat("é", 500))
		duration, err := in.Validate(limits, today)
		require.NoError(t, err)
		assert.Equal(t, want[i], duration)
	}
}

func TestUpdateManualRecord(t *testing.T) {
	withBackends(t, noon, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		rec, err := svc.CreateManualRecord(ctx, manualInput("2025-03-09", "08:00", "09:00"))
		require.NoError(t, err)

		clock.Advance(time.Hour)
		in := manualInput("2025-03-09", "08:30", "10:00")
		in.SubjectID = 4
		in.UserID = 77
		in.Description = strPtr("moved")
		updated, err := svc.UpdateManualRecord(ctx, rec.ID, in)
		require.NoError(t, err)
		assert.Equal(t, 90, updated.DurationMinutes)
		assert.Equal(t, uint(4), updated.SubjectID)
		assert.Equal(t, uint(1), updated.UserID, "owner never changes")
		require.NotNil(t, updated.UpdatedAt)
		assert.True(t, updated.UpdatedAt.Equal(clock.Now()))
		assert.True(t, updated.CreatedAt.Equal(noon))

		got, err := svc.ManualRecord(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "08:30", got.StartTime)
		assert.Equal(t, "10:00", got.EndTime)
		assert.Equal(t, "moved", *got.Description)

		_, err = svc.UpdateManualRecord(ctx, 999, in)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestUpdateManualRecord_Overlap(t *testing.T) {
	withBackends(t, noon, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		first, err := svc.CreateManualRecord(ctx, manualInput("2025-03-09", "08:00", "09:00"))
		require.NoError(t, err)
		_, err = svc.CreateManualRecord(ctx, manualInput("2025-03-09", "10:00", "11:00"))
		require.NoError(t, err)

		_, err = svc.UpdateManualRecord(ctx, first.ID, manualInput("2025-03-09", "09:30", "10:30"))
		assert.ErrorIs(t, err, ErrTimeOverlap)

		// overlapping only itself is fine
		_, err = svc.UpdateManualRecord(ctx, first.ID, manualInput("2025-03-09", "08:15", "09:15"))
		assert.NoError(t, err)
	})
}

func TestUpdateManualRecord_EditWindow(t *testing.T) {
	withBackends(t, noon, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		rec, err := svc.CreateManualRecord(ctx, manualInput("2025-03-09", "08:00", "09:00"))
		require.NoError(t, err)

		clock.Advance(3 * 24 * time.Hour)
		_, err = svc.UpdateManualRecord(ctx, rec.ID, manualInput("2025-03-09", "08:00", "09:30"))
		require.NoError(t, err)

		clock.Set(noon.Add(7 * 24 * time.Hour))
		_, err = svc.UpdateManualRecord(ctx, rec.ID, manualInput("2025-03-09", "08:00", "09:45"))
		require.NoError(t, err)

		// measured from creation, not from the last update
		clock.Advance(time.Minute)
		_, err = svc.UpdateManualRecord(ctx, rec.ID, manualInput("2025-03-09", "08:00", "10:00"))
		assert.ErrorIs(t, err, ErrEditPeriodExpired)
	})
}

func TestUpdateManualRecord_DailyCap(t *testing.T) {
	withBackends(t, noon, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		full, err := svc.CreateManualRecord(ctx, manualInput("2025-03-09", "00:00", "12:00"))
		require.NoError(t, err)
		other, err := svc.CreateManualRecord(ctx, manualInput("2025-03-08", "08:00", "09:00"))
		require.NoError(t, err)

		// its own minutes are not counted twice
		_, err = svc.UpdateManualRecord(ctx, full.ID, manualInput("2025-03-09", "01:00", "13:00"))
		assert.NoError(t, err)

		_, err = svc.UpdateManualRecord(ctx, other.ID, manualInput("2025-03-09", "14:00", "15:00"))
		assert.ErrorIs(t, err, ErrDailyLimitExceeded)

		_, err = svc.UpdateManualRecord(ctx, full.ID, manualInput("2025-03-08", "10:00", "21:00"))
		assert.NoError(t, err)
	})
}

func TestDeleteManualRecord(t *testing.T) {
	withBackends(t, noon, func(t *testing.T, svc *Service, clock *fakeClock) {
		ctx := context.Background()

		rec, err := svc.CreateManualRecord(ctx, manualInput("2025-03-09", "08:00", "09:00"))
		require.NoError(t, err)

		// deletion has no window
		clock.Advance(30 * 24 * time.Hour)
		require.NoError(t, svc.DeleteManualRecord(ctx, rec.ID))

		_, err = svc.ManualRecord(ctx, rec.ID)
		assert.ErrorIs(t, err, ErrRecordNotFound)

		err = svc.DeleteManualRecord(ctx, rec.ID)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestToday(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, ny), today(time.Date(2025, 3, 9, 22, 15, 0, 0, ny)))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), today(noon))
}
