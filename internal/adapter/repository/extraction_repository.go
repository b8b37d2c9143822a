package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MatthijsVer/company-manager/internal/domain/entities"
)

// ExtractionRepository handles meeting extraction data operations
type ExtractionRepository struct {
	db *gorm.DB
}

// NewExtractionRepository creates a new extraction repository
func NewExtractionRepository(db *gorm.DB) *ExtractionRepository {
	return &ExtractionRepository{db: db}
}

// GetByMeetingID retrieves the extraction for a meeting
func (r *ExtractionRepository) GetByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.MeetingExtraction, error) {
	var extraction entities.MeetingExtraction
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		First(&extraction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &extraction, nil
}

// Upsert creates the extraction for a meeting or overwrites the existing
// one; at most one extraction exists per meeting
func (r *ExtractionRepository) Upsert(ctx context.Context, extraction *entities.MeetingExtraction) error {
	if extraction == nil {
		return errors.New("extraction cannot be nil")
	}
	return UpsertExtraction(r.db.WithContext(ctx), extraction)
}

// UpsertExtraction performs the upsert on an arbitrary gorm handle so the
// commit transaction can reuse it
func UpsertExtraction(db *gorm.DB, extraction *entities.MeetingExtraction) error {
	var existing entities.MeetingExtraction
	err := db.Where("meeting_id = ?", extraction.MeetingID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(extraction).Error
	}
	if err != nil {
		return err
	}

	return db.Model(&entities.MeetingExtraction{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"summary":    extraction.Summary,
			"decisions":  extraction.Decisions,
			"payload":    extraction.Payload,
			"status":     extraction.Status,
			"updated_at": time.Now(),
		}).Error
}
