package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MatthijsVer/company-manager/internal/domain/entities"
)

// DocumentRepository handles organization document data operations
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// GetByID retrieves a document by ID within an organization
func (r *DocumentRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*entities.OrganizationDocument, error) {
	var doc entities.OrganizationDocument
	if err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// FindMinutesByMeetingID retrieves the minutes document for a meeting, if
// one exists
func (r *DocumentRepository) FindMinutesByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.OrganizationDocument, error) {
	return FindMinutesDocument(r.db.WithContext(ctx), meetingID)
}

// FindMinutesDocument runs the minutes lookup on an arbitrary gorm handle so
// the commit transaction can reuse it
func FindMinutesDocument(db *gorm.DB, meetingID uuid.UUID) (*entities.OrganizationDocument, error) {
	var doc entities.OrganizationDocument
	if err := db.
		Where("category = ? AND meeting_id = ?", entities.DocumentCategoryMeetingMinutes, meetingID).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// UpsertCompanyLink idempotently links a document to a company
func UpsertCompanyLink(db *gorm.DB, documentID, companyID uuid.UUID) error {
	link := entities.DocumentCompanyLink{
		DocumentID: documentID,
		CompanyID:  companyID,
	}
	return db.
		Where("document_id = ? AND company_id = ?", documentID, companyID).
		FirstOrCreate(&link).Error
}
