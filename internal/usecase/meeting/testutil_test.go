package meeting

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MatthijsVer/company-manager/internal/adapter/repository"
	"github.com/MatthijsVer/company-manager/internal/domain/entities"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Company{},
		&entities.CompanyContact{},
		&entities.CompanyNote{},
		&entities.Meeting{},
		&entities.TranscriptSegment{},
		&entities.MeetingExtraction{},
		&entities.Task{},
		&entities.TimeEntry{},
		&entities.OrganizationDocument{},
		&entities.DocumentCompanyLink{},
	))
	return db
}

func newTestResolver(db *gorm.DB) *Resolver {
	return NewResolver(repository.NewCompanyRepository(db), repository.NewUserRepository(db))
}

func seedCompany(t *testing.T, db *gorm.DB, orgID uuid.UUID, name, slug string) *entities.Company {
	t.Helper()
	company := entities.NewCompany(orgID, name, slug)
	require.NoError(t, db.Create(company).Error)
	return company
}

func seedUser(t *testing.T, db *gorm.DB, orgID uuid.UUID, email string) *entities.User {
	t.Helper()
	user := &entities.User{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Email:          email,
		Name:           "Test User",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedMeeting(t *testing.T, db *gorm.DB, orgID uuid.UUID, companyID *uuid.UUID) *entities.Meeting {
	t.Helper()
	meeting := entities.NewMeeting(orgID, uuid.New(), "Weekly sync")
	meeting.CompanyID = companyID
	meeting.Status = entities.MeetingStatusTranscribed
	require.NoError(t, db.Create(meeting).Error)
	return meeting
}

func seedSegments(t *testing.T, db *gorm.DB, meetingID uuid.UUID, spans ...[2]float64) {
	t.Helper()
	for _, span := range spans {
		seg := entities.NewTranscriptSegment(meetingID, nil, "some words", span[0], span[1])
		require.NoError(t, db.Create(seg).Error)
	}
}

func timePtr(tm time.Time) *time.Time {
	return &tm
}
