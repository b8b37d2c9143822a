package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

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
		&entities.Meeting{},
		&entities.TranscriptSegment{},
		&entities.MeetingExtraction{},
		&entities.TimeEntry{},
		&entities.OrganizationDocument{},
		&entities.DocumentCompanyLink{},
	))
	return db
}

func TestGetMeetingByID_ScopedToOrganization(t *testing.T) {
	db := newTestDB(t)
	repo := NewMeetingRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	meeting := entities.NewMeeting(orgID, uuid.New(), "Sync")
	require.NoError(t, repo.CreateMeeting(ctx, meeting))

	found, err := repo.GetMeetingByID(ctx, orgID, meeting.ID)
	require.NoError(t, err)
	require.NotNil(t, found)

	// Another organization cannot see the meeting; not-found is nil, not
	// an error.
	other, err := repo.GetMeetingByID(ctx, uuid.New(), meeting.ID)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestReplaceSegments_SwapsWholeSet(t *testing.T) {
	db := newTestDB(t)
	repo := NewMeetingRepository(db)
	ctx := context.Background()

	meetingID := uuid.New()
	first := []entities.TranscriptSegment{
		*entities.NewTranscriptSegment(meetingID, nil, "old one", 0, 1),
		*entities.NewTranscriptSegment(meetingID, nil, "old two", 1, 2),
	}
	require.NoError(t, repo.ReplaceSegments(ctx, meetingID, first))

	second := []entities.TranscriptSegment{
		*entities.NewTranscriptSegment(meetingID, nil, "new only", 5, 9),
	}
	require.NoError(t, repo.ReplaceSegments(ctx, meetingID, second))

	segments, err := repo.GetSegments(ctx, meetingID)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "new only", segments[0].Text)
}

func TestUpsertExtraction_OverwritesInPlace(t *testing.T) {
	db := newTestDB(t)
	repo := NewExtractionRepository(db)
	ctx := context.Background()

	meetingID := uuid.New()
	first := entities.NewMeetingExtraction(meetingID, entities.ExtractionStatusPreview)
	first.Summary = "draft"
	require.NoError(t, repo.Upsert(ctx, first))

	second := entities.NewMeetingExtraction(meetingID, entities.ExtractionStatusFinal)
	second.Summary = "committed"
	require.NoError(t, repo.Upsert(ctx, second))

	var count int64
	require.NoError(t, db.Model(&entities.MeetingExtraction{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	stored, err := repo.GetByMeetingID(ctx, meetingID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, first.ID, stored.ID, "row identity survives the upsert")
	assert.Equal(t, "committed", stored.Summary)
	assert.Equal(t, entities.ExtractionStatusFinal, stored.Status)
}

func TestFindMeetingEntry_MatchesColumnOrNotesTag(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := uuid.New()
	meetingID := uuid.New()

	// Legacy entry: no meeting_id column value, only the notes tag.
	legacy := &entities.TimeEntry{
		ID:              uuid.New(),
		OrganizationID:  uuid.New(),
		UserID:          userID,
		Notes:           "Meeting: Sync " + entities.MeetingTag(meetingID),
		DurationSeconds: 60,
	}
	require.NoError(t, db.Create(legacy).Error)

	found, err := NewTimeEntryRepository(db).FindMeetingEntry(ctx, userID, meetingID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, legacy.ID, found.ID)

	// A different meeting's tag does not match.
	none, err := NewTimeEntryRepository(db).FindMeetingEntry(ctx, userID, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestUpsertCompanyLink_Idempotent(t *testing.T) {
	db := newTestDB(t)
	docID := uuid.New()
	companyID := uuid.New()

	require.NoError(t, UpsertCompanyLink(db, docID, companyID))
	require.NoError(t, UpsertCompanyLink(db, docID, companyID))

	var count int64
	require.NoError(t, db.Model(&entities.DocumentCompanyLink{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCompanyLookups_FoldCase(t *testing.T) {
	db := newTestDB(t)
	repo := NewCompanyRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	company := entities.NewCompany(orgID, "Acme Corp", "acme")
	require.NoError(t, repo.CreateCompany(ctx, company))

	bySlug, err := repo.FindBySlug(ctx, orgID, "ACME")
	require.NoError(t, err)
	require.NotNil(t, bySlug)

	byName, err := repo.FindByName(ctx, orgID, "acme corp")
	require.NoError(t, err)
	require.NotNil(t, byName)

	missing, err := repo.FindByName(ctx, orgID, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindCompanyByID_ScopedToOrganization(t *testing.T) {
	db := newTestDB(t)
	repo := NewCompanyRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	company := entities.NewCompany(orgID, "Acme Corp", "acme")
	require.NoError(t, repo.CreateCompany(ctx, company))

	found, err := repo.FindByID(ctx, orgID, company.ID)
	require.NoError(t, err)
	require.NotNil(t, found)

	foreign, err := repo.FindByID(ctx, uuid.New(), company.ID)
	require.NoError(t, err)
	assert.Nil(t, foreign, "other organizations cannot resolve the id")
}
