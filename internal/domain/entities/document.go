package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DocumentCategoryMeetingMinutes marks minutes documents produced by the
// commit pipeline
const DocumentCategoryMeetingMinutes = "meeting_minutes"

// OrganizationDocument is a stored document. Minutes documents carry a
// unique meeting_id so repeated commits update the same document in place;
// the metadata JSON repeats the meeting id for consumers of the artifact.
type OrganizationDocument struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	OrganizationID uuid.UUID      `json:"organization_id" gorm:"type:uuid;not null;index"`
	MeetingID      *uuid.UUID     `json:"meeting_id,omitempty" gorm:"type:uuid;uniqueIndex"`
	Category       string         `json:"category" gorm:"type:varchar(50);not null;index"`
	Title          string         `json:"title" gorm:"type:varchar(255)"`
	FileURL        string         `json:"file_url,omitempty" gorm:"type:text"`
	FileSize       int            `json:"file_size"`
	Metadata       datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedBy      uuid.UUID      `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (OrganizationDocument) TableName() string {
	return "organization_documents"
}

// DocumentCompanyLink joins a document to a company, idempotent per
// (document, company)
type DocumentCompanyLink struct {
	DocumentID uuid.UUID `json:"document_id" gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID `json:"company_id" gorm:"type:uuid;primaryKey"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (DocumentCompanyLink) TableName() string {
	return "document_company_links"
}
