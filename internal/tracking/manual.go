package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/balkashynov/studytrack/internal/models"
	"github.com/balkashynov/studytrack/internal/store"
)

// CreateManualRecord stores a retroactive study block after checking
// overlaps and the daily cap.
func (s *Service) CreateManualRecord(ctx context.Context, in ManualRecordInput) (*models.ManualRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	duration, err := in.Validate(s.limits, today(now))
	if err != nil {
		return nil, s.reject(err, "user_id", in.UserID)
	}

	if err := s.checkPlacement(ctx, in, 0, duration, 0, now); err != nil {
		return nil, err
	}

	rec := &models.ManualRecord{
		UserID:          in.UserID,
		SubjectID:       in.SubjectID,
		StudyDate:       in.StudyDate,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		DurationMinutes: duration,
		Description:     in.Description,
		CreatedAt:       now,
	}
	if err := s.store.CreateManualRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating manual record: %w", err)
	}

	s.metrics.ManualRecord("create")
	s.logger.Info("manual record created", "record_id", rec.ID, "user_id", rec.UserID, "date", rec.StudyDate, "minutes", duration)
	return rec, nil
}

// UpdateManualRecord replaces the editable fields of a record. The edit
// window is measured from the record's creation, not its last update.
func (s *Service) UpdateManualRecord(ctx context.Context, id uint, in ManualRecordInput) (*models.ManualRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.loadRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if now.Sub(rec.CreatedAt) > s.limits.ManualEditWindow {
		return nil, s.reject(fmt.Errorf("%w: manual records can only be edited within %s of creation", ErrEditPeriodExpired, s.limits.ManualEditWindow), "record_id", id)
	}

	// the owner never changes
	in.UserID = rec.UserID
	duration, err := in.Validate(s.limits, today(now))
	if err != nil {
		return nil, s.reject(err, "record_id", id)
	}

	ownMinutes := 0
	if rec.StudyDate == in.StudyDate {
		ownMinutes = rec.DurationMinutes
	}
	if err := s.checkPlacement(ctx, in, rec.ID, duration, ownMinutes, now); err != nil {
		return nil, err
	}

	rec.SubjectID = in.SubjectID
	rec.StudyDate = in.StudyDate
	rec.StartTime = in.StartTime
	rec.EndTime = in.EndTime
	rec.DurationMinutes = duration
	rec.Description = in.Description
	rec.UpdatedAt = &now
	if err := s.store.UpdateManualRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("updating manual record: %w", err)
	}

	s.metrics.ManualRecord("update")
	s.logger.Info("manual record updated", "record_id", rec.ID, "date", rec.StudyDate, "minutes", duration)
	return rec, nil
}

// DeleteManualRecord removes a record. Deletion has no time window.
func (s *Service) DeleteManualRecord(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.loadRecord(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteManualRecord(ctx, id); err != nil {
		return fmt.Errorf("deleting manual record: %w", err)
	}

	s.metrics.ManualRecord("delete")
	s.logger.Info("manual record deleted", "record_id", id)
	return nil
}

// ManualRecord looks up a single record
func (s *Service) ManualRecord(ctx context.Context, id uint) (*models.ManualRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadRecord(ctx, id)
}

// checkPlacement rejects blocks that overlap existing time or push the
// date over the daily cap. ownMinutes is subtracted from the date's total
// when an existing record is being edited in place.
func (s *Service) checkPlacement(ctx context.Context, in ManualRecordInput, excludeID uint, duration, ownMinutes int, now time.Time) error {
	overlap, err := store.HasTimeOverlap(ctx, s.store, store.OverlapQuery{
		UserID:          in.UserID,
		Date:            in.StudyDate,
		Start:           in.StartTime,
		End:             in.EndTime,
		ExcludeRecordID: excludeID,
		Now:             now,
		Location:        s.loc,
	})
	if err != nil {
		return fmt.Errorf("checking overlap: %w", err)
	}
	if overlap {
		return s.reject(ErrTimeOverlap, "user_id", in.UserID, "date", in.StudyDate, "start", in.StartTime, "end", in.EndTime)
	}

	total, err := store.TotalStudyMinutesForDate(ctx, s.store, in.UserID, in.StudyDate, s.loc)
	if err != nil {
		return fmt.Errorf("summing daily minutes: %w", err)
	}
	if total-ownMinutes+duration > s.limits.DailyCapMinutes {
		return s.reject(fmt.Errorf("%w: %d of %d minutes already recorded on %s", ErrDailyLimitExceeded, total-ownMinutes, s.limits.DailyCapMinutes, in.StudyDate),
			"user_id", in.UserID, "date", in.StudyDate)
	}
	return nil
}

// today truncates now to midnight in its own location
func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
