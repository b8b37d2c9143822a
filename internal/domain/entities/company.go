package entities

import (
	"time"

	"github.com/google/uuid"
)

// Company is unique per (organization, slug) and per (organization, name),
// which is what company resolution relies on
type Company struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:idx_companies_org_slug;uniqueIndex:idx_companies_org_name"`
	Name           string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_companies_org_name"`
	Slug           string    `json:"slug" gorm:"type:varchar(255);not null;uniqueIndex:idx_companies_org_slug"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Company) TableName() string {
	return "companies"
}

// NewCompany creates a company with a pre-computed slug
func NewCompany(orgID uuid.UUID, name, slug string) *Company {
	return &Company{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           name,
		Slug:           slug,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

// CompanyContact is a lightweight contact under a company, unique per
// (company, email) for auto-creation dedup
type CompanyContact struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID uuid.UUID `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_contacts_company_email"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_contacts_company_email"`
	Name      string    `json:"name,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (CompanyContact) TableName() string {
	return "company_contacts"
}

// NewCompanyContact creates a contact under a company
func NewCompanyContact(companyID uuid.UUID, email string) *CompanyContact {
	return &CompanyContact{
		ID:        uuid.New(),
		CompanyID: companyID,
		Email:     email,
		CreatedAt: time.Now(),
	}
}

// CompanyNoteCategoryMeetingSummary marks notes appended by the commit
// pipeline. Notes are additive: repeated commits append repeated notes.
const CompanyNoteCategoryMeetingSummary = "meeting_summary"

// CompanyNote is a free-text note attached to a company
type CompanyNote struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	CompanyID uuid.UUID  `json:"company_id" gorm:"type:uuid;not null;index"`
	MeetingID *uuid.UUID `json:"meeting_id,omitempty" gorm:"type:uuid;index"`
	Category  string     `json:"category" gorm:"type:varchar(50);not null"`
	Body      string     `json:"body" gorm:"type:text;not null"`
	CreatedBy uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (CompanyNote) TableName() string {
	return "company_notes"
}
