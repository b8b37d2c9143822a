package meeting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MatthijsVer/company-manager/internal/adapter/repository"
	"github.com/MatthijsVer/company-manager/internal/domain/entities"
	"github.com/MatthijsVer/company-manager/internal/usecase/extraction"
)

func newTestCoordinator(db *gorm.DB) *Coordinator {
	meetings := repository.NewMeetingRepository(db)
	return NewCoordinator(db, meetings, newTestResolver(db), nil, nil, nil, nil)
}

type fakePreviewCache struct {
	invalidated []uuid.UUID
}

func (f *fakePreviewCache) SetPreview(context.Context, uuid.UUID, *entities.AggregatedExtraction, string) error {
	return nil
}

func (f *fakePreviewCache) GetPreview(context.Context, uuid.UUID) (*entities.AggregatedExtraction, string, error) {
	return nil, "", nil
}

func (f *fakePreviewCache) InvalidatePreview(_ context.Context, meetingID uuid.UUID) error {
	f.invalidated = append(f.invalidated, meetingID)
	return nil
}

func TestCommit_PersistsEverythingInOnePass(t *testing.T) {
	db := newTestDB(t)
	orgID := uuid.New()
	company := seedCompany(t, db, orgID, "Acme Corp", "acme")
	user := seedUser(t, db, orgID, "jordan@example.com")

	meeting := seedMeeting(t, db, orgID, &company.ID)
	started := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	meeting.StartedAt = timePtr(started)
	meeting.EndedAt = timePtr(started.Add(45 * time.Minute))
	require.NoError(t, db.Save(meeting).Error)
	seedSegments(t, db, meeting.ID, [2]float64{0, 100})

	input := CommitInput{
		Summary:       "Quarterly recap.",
		DecisionsText: "Ship in September\nDrop the legacy importer",
		Tasks: []entities.ExtractedTask{
			{Name: "Send proposal", AssigneeEmail: "jordan@example.com", Priority: "HIGH", DueDate: "2026-09-01"},
			{Name: "Send proposal", AssigneeEmail: "jordan@example.com", Priority: "HIGH", DueDate: "2026-09-01"}, // duplicate
			{Name: "Intro call", AssigneeEmail: "newperson@acme.com"},
			{Name: "   "}, // blank, dropped
		},
		CreateMinutes:      true,
		AutoCreateContacts: true,
	}

	result, err := newTestCoordinator(db).Commit(context.Background(), orgID, meeting.ID, input)
	require.NoError(t, err)

	assert.Equal(t, 2, result.CreatedTasks)
	assert.Equal(t, 1, result.CreatedContacts)
	assert.Equal(t, 0, result.CreatedCompanies)
	assert.True(t, result.TimeEntryCreated)
	assert.True(t, result.MinutesCreated)

	// Tasks carry the resolved references and the meeting back-link.
	var tasks []entities.Task
	require.NoError(t, db.Order("name").Find(&tasks).Error)
	require.Len(t, tasks, 2)
	proposal := tasks[1]
	assert.Equal(t, "Send proposal", proposal.Name)
	require.NotNil(t, proposal.AssignedToID)
	assert.Equal(t, user.ID, *proposal.AssignedToID)
	require.NotNil(t, proposal.CompanyID)
	assert.Equal(t, company.ID, *proposal.CompanyID)
	require.NotNil(t, proposal.MeetingID)
	assert.Equal(t, meeting.ID, *proposal.MeetingID)
	assert.Equal(t, entities.TaskPriorityHigh, proposal.Priority)

	// The unknown assignee became a contact under the meeting's company.
	var contact entities.CompanyContact
	require.NoError(t, db.First(&contact).Error)
	assert.Equal(t, company.ID, contact.CompanyID)
	assert.Equal(t, "newperson@acme.com", contact.Email)

	// The extraction is stored as final.
	var ext entities.MeetingExtraction
	require.NoError(t, db.Where("meeting_id = ?", meeting.ID).First(&ext).Error)
	assert.Equal(t, entities.ExtractionStatusFinal, ext.Status)
	assert.Equal(t, "Quarterly recap.", ext.Summary)

	// The summary landed as a company note.
	var note entities.CompanyNote
	require.NoError(t, db.First(&note).Error)
	assert.Equal(t, entities.CompanyNoteCategoryMeetingSummary, note.Category)
	assert.Equal(t, "Quarterly recap.", note.Body)

	// The meeting is processed.
	var stored entities.Meeting
	require.NoError(t, db.First(&stored, "id = ?", meeting.ID).Error)
	assert.Equal(t, entities.MeetingStatusProcessed, stored.Status)

	// One billable 45 minute time entry, tagged with the meeting.
	var entry entities.TimeEntry
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, 2700, entry.DurationSeconds)
	assert.True(t, entry.Billable)
	assert.Contains(t, entry.Notes, entities.MeetingTag(meeting.ID))
	require.NotNil(t, entry.MeetingID)
	assert.Equal(t, meeting.ID, *entry.MeetingID)

	// One minutes document with its self-referential file URL, linked to
	// the company.
	var doc entities.OrganizationDocument
	require.NoError(t, db.First(&doc).Error)
	assert.Equal(t, entities.DocumentCategoryMeetingMinutes, doc.Category)
	assert.Equal(t, fmt.Sprintf("/v1/documents/%s/file", doc.ID), doc.FileURL)
	require.NotNil(t, result.MinutesDocumentID)
	assert.Equal(t, doc.ID, *result.MinutesDocumentID)

	var link entities.DocumentCompanyLink
	require.NoError(t, db.First(&link).Error)
	assert.Equal(t, doc.ID, link.DocumentID)
	assert.Equal(t, company.ID, link.CompanyID)
}

func TestCommit_SecondCommitIsIdempotentWhereItMustBe(t *testing.T) {
	db := newTestDB(t)
	orgID := uuid.New()
	company := seedCompany(t, db, orgID, "Acme Corp", "acme")
	meeting := seedMeeting(t, db, orgID, &company.ID)
	seedSegments(t, db, meeting.ID, [2]float64{0, 90})

	input := CommitInput{
		Summary:       "Recap.",
		Tasks:         []entities.ExtractedTask{{Name: "Task"}},
		CreateMinutes: true,
	}

	coord := newTestCoordinator(db)
	first, err := coord.Commit(context.Background(), orgID, meeting.ID, input)
	require.NoError(t, err)
	second, err := coord.Commit(context.Background(), orgID, meeting.ID, input)
	require.NoError(t, err)

	assert.True(t, first.TimeEntryCreated)
	assert.False(t, second.TimeEntryCreated)
	assert.Equal(t, first.TimeEntryID, second.TimeEntryID)
	assert.True(t, first.MinutesCreated)
	assert.False(t, second.MinutesCreated)
	assert.Equal(t, *first.MinutesDocumentID, *second.MinutesDocumentID)

	var entryCount, docCount, noteCount, taskCount int64
	require.NoError(t, db.Model(&entities.TimeEntry{}).Count(&entryCount).Error)
	require.NoError(t, db.Model(&entities.OrganizationDocument{}).Count(&docCount).Error)
	require.NoError(t, db.Model(&entities.CompanyNote{}).Count(&noteCount).Error)
	require.NoError(t, db.Model(&entities.Task{}).Count(&taskCount).Error)

	assert.EqualValues(t, 1, entryCount, "time entry must not duplicate")
	assert.EqualValues(t, 1, docCount, "minutes document must not duplicate")
	assert.EqualValues(t, 2, noteCount, "notes are additive by design")
	assert.EqualValues(t, 2, taskCount, "tasks are created per commit")
}

func TestCommit_DurationFallsBackToSegmentSpan(t *testing.T) {
	db := newTestDB(t)
	orgID := uuid.New()
	meeting := seedMeeting(t, db, orgID, nil)
	seedSegments(t, db, meeting.ID, [2]float64{0.5, 60}, [2]float64{60, 120.9})

	_, err := newTestCoordinator(db).Commit(context.Background(), orgID, meeting.ID, CommitInput{
		Tasks: []entities.ExtractedTask{{Name: "Task"}},
	})
	require.NoError(t, err)

	var entry entities.TimeEntry
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, 120, entry.DurationSeconds)
}

func TestCommit_DurationFloor(t *testing.T) {
	db := newTestDB(t)
	orgID := uuid.New()
	meeting := seedMeeting(t, db, orgID, nil)

	_, err := newTestCoordinator(db).Commit(context.Background(), orgID, meeting.ID, CommitInput{
		Tasks: []entities.ExtractedTask{{Name: "Task"}},
	})
	require.NoError(t, err)

	var entry entities.TimeEntry
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, 60, entry.DurationSeconds)
}

func TestCommit_WithoutCompany(t *testing.T) {
	db := newTestDB(t)
	orgID := uuid.New()
	meeting := seedMeeting(t, db, orgID, nil)

	result, err := newTestCoordinator(db).Commit(context.Background(), orgID, meeting.ID, CommitInput{
		Summary: "Internal sync.",
		Tasks: []entities.ExtractedTask{
			{Name: "Task", AssigneeEmail: "stranger@example.com"},
		},
		AutoCreateContacts: true,
	})
	require.NoError(t, err)

	// Without a company there is nowhere to attach a note or a contact.
	assert.Equal(t, 0, result.CreatedContacts)
	var noteCount int64
	require.NoError(t, db.Model(&entities.CompanyNote{}).Count(&noteCount).Error)
	assert.Zero(t, noteCount)

	var entry entities.TimeEntry
	require.NoError(t, db.First(&entry).Error)
	assert.False(t, entry.Billable)
	assert.Nil(t, entry.CompanyID)
}

func TestCommit_AutoCreatesCompaniesInsideTransaction(t *testing.T) {
	db := newTestDB(t)
	orgID := uuid.New()
	meeting := seedMeeting(t, db, orgID, nil)

	result, err := newTestCoordinator(db).Commit(context.Background(), orgID, meeting.ID, CommitInput{
		Tasks: []entities.ExtractedTask{
			{Name: "Task", CompanyName: "Brand New Co"},
		},
		AutoCreateCompanies: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedCompanies)

	var company entities.Company
	require.NoError(t, db.First(&company).Error)
	assert.Equal(t, "Brand New Co", company.Name)
	assert.Equal(t, "brand-new-co", company.Slug)

	var task entities.Task
	require.NoError(t, db.First(&task).Error)
	require.NotNil(t, task.CompanyID)
	assert.Equal(t, company.ID, *task.CompanyID)
}

func TestCommit_RunsStrictExtractionWhenBodyIsEmpty(t *testing.T) {
	db := newTestDB(t)
	orgID := uuid.New()
	meeting := seedMeeting(t, db, orgID, nil)
	seedSegments(t, db, meeting.ID, [2]float64{0, 30})

	llm := &stubLLM{result: entities.ChunkExtraction{
		Summary:   "Extracted recap.",
		Decisions: []string{"Ship it"},
		Tasks:     []entities.ExtractedTask{{Name: "Follow up"}},
	}}
	coord := NewCoordinator(db, repository.NewMeetingRepository(db), newTestResolver(db),
		extraction.NewService(llm, nil), nil, nil, nil)

	result, err := coord.Commit(context.Background(), orgID, meeting.ID, CommitInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedTasks)

	var ext entities.MeetingExtraction
	require.NoError(t, db.Where("meeting_id = ?", meeting.ID).First(&ext).Error)
	assert.Equal(t, entities.ExtractionStatusFinal, ext.Status)
	assert.Equal(t, "Extracted recap.", ext.Summary)
	assert.Equal(t, "Ship it", ext.Decisions)
	assert.NotEmpty(t, ext.Payload)

	var task entities.Task
	require.NoError(t, db.First(&task).Error)
	assert.Equal(t, "Follow up", task.Name)
}

func TestCommit_StrictExtractionFailureWritesNothing(t *testing.T) {
	db := newTestDB(t)
	orgID := uuid.New()
	meeting := seedMeeting(t, db, orgID, nil)
	seedSegments(t, db, meeting.ID, [2]float64{0, 30})

	llm := &stubLLM{err: errors.New("model down")}
	coord := NewCoordinator(db, repository.NewMeetingRepository(db), newTestResolver(db),
		extraction.NewService(llm, nil), nil, nil, nil)

	_, err := coord.Commit(context.Background(), orgID, meeting.ID, CommitInput{})
	require.Error(t, err)

	var taskCount, entryCount int64
	require.NoError(t, db.Model(&entities.Task{}).Count(&taskCount).Error)
	require.NoError(t, db.Model(&entities.TimeEntry{}).Count(&entryCount).Error)
	assert.Zero(t, taskCount)
	assert.Zero(t, entryCount)

	var stored entities.Meeting
	require.NoError(t, db.First(&stored, "id = ?", meeting.ID).Error)
	assert.Equal(t, entities.MeetingStatusTranscribed, stored.Status, "status must not advance")
}

func TestCommit_InvalidatesPreviewCache(t *testing.T) {
	db := newTestDB(t)
	orgID := uuid.New()
	meeting := seedMeeting(t, db, orgID, nil)

	cache := &fakePreviewCache{}
	coord := NewCoordinator(db, repository.NewMeetingRepository(db), newTestResolver(db),
		nil, cache, nil, nil)

	_, err := coord.Commit(context.Background(), orgID, meeting.ID, CommitInput{
		Tasks: []entities.ExtractedTask{{Name: "Task"}},
	})
	require.NoError(t, err)
	require.Len(t, cache.invalidated, 1)
	assert.Equal(t, meeting.ID, cache.invalidated[0])
}

func TestCommit_MeetingNotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := newTestCoordinator(db).Commit(context.Background(), uuid.New(), uuid.New(), CommitInput{})
	require.Error(t, err)
	assert.True(t, strings.Contains(strings.ToLower(err.Error()), "not found"))
}
