package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MatthijsVer/company-manager/internal/domain/entities"
)

// CompanyRepository handles company and contact data operations
type CompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// FindByID retrieves a company by id within an organization. An id from
// another organization is a miss, not an error.
func (r *CompanyRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*entities.Company, error) {
	var company entities.Company
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

// FindBySlug retrieves a company by slug within an organization
func (r *CompanyRepository) FindBySlug(ctx context.Context, orgID uuid.UUID, slug string) (*entities.Company, error) {
	var company entities.Company
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND slug = ?", orgID, strings.ToLower(slug)).
		First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

// FindByName retrieves a company by name (case-insensitive) within an
// organization
func (r *CompanyRepository) FindByName(ctx context.Context, orgID uuid.UUID, name string) (*entities.Company, error) {
	var company entities.Company
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND LOWER(name) = LOWER(?)", orgID, name).
		First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

// ListSlugs returns all company slugs in an organization, used to
// disambiguate auto-created slugs
func (r *CompanyRepository) ListSlugs(ctx context.Context, orgID uuid.UUID) ([]string, error) {
	var slugs []string
	if err := r.db.WithContext(ctx).
		Model(&entities.Company{}).
		Where("organization_id = ?", orgID).
		Pluck("slug", &slugs).Error; err != nil {
		return nil, err
	}
	return slugs, nil
}

// CreateCompany creates a new company
func (r *CompanyRepository) CreateCompany(ctx context.Context, company *entities.Company) error {
	if company == nil {
		return errors.New("company cannot be nil")
	}
	return r.db.WithContext(ctx).Create(company).Error
}

// FindContact retrieves a contact by (company, email) on an arbitrary gorm
// handle so the commit transaction can reuse it
func FindContact(db *gorm.DB, companyID uuid.UUID, email string) (*entities.CompanyContact, error) {
	var contact entities.CompanyContact
	if err := db.
		Where("company_id = ? AND LOWER(email) = LOWER(?)", companyID, email).
		First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}
