package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MatthijsVer/company-manager/internal/domain/entities"
)

// TimeEntryRepository handles time entry data operations
type TimeEntryRepository struct {
	db *gorm.DB
}

// NewTimeEntryRepository creates a new time entry repository
func NewTimeEntryRepository(db *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

// FindMeetingEntry retrieves the meeting-derived time entry of a user for a
// meeting, if one exists
func (r *TimeEntryRepository) FindMeetingEntry(ctx context.Context, userID, meetingID uuid.UUID) (*entities.TimeEntry, error) {
	return FindMeetingEntry(r.db.WithContext(ctx), userID, meetingID)
}

// FindMeetingEntry runs the idempotency lookup on an arbitrary gorm handle
// so the commit transaction can reuse it. The notes tag is checked alongside
// the meeting_id column so entries written before the column existed are
// still recognized.
func FindMeetingEntry(db *gorm.DB, userID, meetingID uuid.UUID) (*entities.TimeEntry, error) {
	var entry entities.TimeEntry
	tag := entities.MeetingTag(meetingID)
	if err := db.
		Where("user_id = ?", userID).
		Where("meeting_id = ? OR notes LIKE ?", meetingID, "%"+tag+"%").
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}
