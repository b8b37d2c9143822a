package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MatthijsVer/company-manager/internal/domain/entities"
)

// MeetingRepository handles meeting and transcript segment data operations
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// GetDB exposes the underlying gorm handle for transactional callers
func (r *MeetingRepository) GetDB() *gorm.DB {
	return r.db
}

// CreateMeeting creates a new meeting
func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Create(meeting).Error
}

// GetMeetingByID retrieves a meeting by ID within an organization
func (r *MeetingRepository) GetMeetingByID(ctx context.Context, orgID, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

// UpdateMeetingStatus updates only the status of a meeting
func (r *MeetingRepository) UpdateMeetingStatus(ctx context.Context, id uuid.UUID, status entities.MeetingStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// UpdateMeeting persists the full meeting record
func (r *MeetingRepository) UpdateMeeting(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Save(meeting).Error
}

// ReplaceSegments swaps the full segment set of a meeting in one
// transaction. Segments are never partially overwritten: delete all, insert
// all.
func (r *MeetingRepository) ReplaceSegments(ctx context.Context, meetingID uuid.UUID, segments []entities.TranscriptSegment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", meetingID).
			Delete(&entities.TranscriptSegment{}).Error; err != nil {
			return err
		}
		if len(segments) == 0 {
			return nil
		}
		return tx.Create(&segments).Error
	})
}

// GetSegments returns the segments of a meeting ordered by start time
func (r *MeetingRepository) GetSegments(ctx context.Context, meetingID uuid.UUID) ([]entities.TranscriptSegment, error) {
	var segments []entities.TranscriptSegment
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("start_sec ASC").
		Find(&segments).Error; err != nil {
		return nil, err
	}
	return segments, nil
}
