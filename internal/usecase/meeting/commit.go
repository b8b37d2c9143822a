package meeting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "github.com/MatthijsVer/company-manager/errors"
	"github.com/MatthijsVer/company-manager/internal/adapter/repository"
	"github.com/MatthijsVer/company-manager/internal/domain/entities"
	"github.com/MatthijsVer/company-manager/internal/usecase/extraction"
)

// minTimeEntrySeconds is the floor duration for a meeting-derived time
// entry when neither explicit timestamps nor transcript segments give a
// usable span
const minTimeEntrySeconds = 60

// CommitInput carries the resolved-to-be extraction output the caller wants
// persisted for a meeting
type CommitInput struct {
	Summary             string
	DecisionsText       string
	Tasks               []entities.ExtractedTask
	CreateMinutes       bool
	AutoCreateCompanies bool
	AutoCreateContacts  bool
	MinutesHTML         string
	Payload             json.RawMessage
}

// isEmpty reports whether the caller supplied no extraction content of
// their own
func (in CommitInput) isEmpty() bool {
	return len(in.Tasks) == 0 &&
		strings.TrimSpace(in.Summary) == "" &&
		strings.TrimSpace(in.DecisionsText) == ""
}

// CommitResult summarizes what one commit created or reused
type CommitResult struct {
	CreatedTasks       int        `json:"created_tasks"`
	CreatedContacts    int        `json:"created_contacts"`
	CreatedCompanies   int        `json:"created_companies"`
	MinutesDocumentID  *uuid.UUID `json:"minutes_document_id,omitempty"`
	MinutesDocumentURL string     `json:"minutes_document_url,omitempty"`
	MinutesCreated     bool       `json:"minutes_created"`
	TimeEntryID        uuid.UUID  `json:"time_entry_id"`
	TimeEntryCreated   bool       `json:"time_entry_created"`
}

// MinutesStore persists rendered minutes bytes outside the database
type MinutesStore interface {
	UploadMinutes(ctx context.Context, documentID uuid.UUID, html []byte) error
}

// Coordinator executes the all-or-nothing commit of a meeting extraction:
// tasks, auto-created companies and contacts, the extraction upsert, an
// additive company note, the processed status, an idempotent time entry and
// an idempotent minutes document. Any step failing rolls the whole
// transaction back, which also leaves the meeting status untouched so a
// retry is safe.
type Coordinator struct {
	db        *gorm.DB
	meetings  *repository.MeetingRepository
	resolver  *Resolver
	extractor *extraction.Service
	cache     PreviewCache
	storage   MinutesStore
	logger    *zap.Logger
}

// NewCoordinator constructs a commit coordinator. extractor, cache and
// storage may be nil when the corresponding integration is not configured;
// without an extractor an empty commit body is committed as-is, and without
// an object store minutes bytes live only in the document row's rendered
// form.
func NewCoordinator(db *gorm.DB, meetings *repository.MeetingRepository, resolver *Resolver, extractor *extraction.Service, cache PreviewCache, storage MinutesStore, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		db:        db,
		meetings:  meetings,
		resolver:  resolver,
		extractor: extractor,
		cache:     cache,
		storage:   storage,
		logger:    logger,
	}
}

// Commit persists the extraction output for a meeting in one transaction
// and returns the result summary. Committing an already-processed meeting
// again is legal: the time entry, minutes document and extraction row are
// reused or overwritten, never duplicated.
func (c *Coordinator) Commit(ctx context.Context, orgID, meetingID uuid.UUID, in CommitInput) (*CommitResult, error) {
	meeting, err := c.meetings.GetMeetingByID(ctx, orgID, meetingID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if meeting == nil {
		return nil, apperrors.ErrMeetingNotFound(meetingID.String())
	}

	segments, err := c.meetings.GetSegments(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	// An empty commit body means "commit what the model extracts": the
	// strict extraction runs over the stored transcript and its result is
	// persisted. Any chunk failing aborts the commit before anything is
	// written.
	if in.isEmpty() && c.extractor != nil {
		if len(segments) == 0 {
			return nil, apperrors.ErrEmptyTranscript(meetingID.String())
		}
		agg, err := c.extractor.ExtractStrict(ctx, extraction.FlattenSegments(segments))
		if err != nil {
			return nil, apperrors.ErrExtractionFailed(err)
		}
		in.Summary = agg.Summary
		in.DecisionsText = strings.Join(agg.Decisions, "\n")
		in.Tasks = agg.Tasks
		if payload, err := json.Marshal(agg); err == nil {
			in.Payload = payload
		}
	}

	// Upstream already deduplicates, but the coordinator re-validates: the
	// task set must be free of duplicates and blank names before it is
	// persisted.
	tasks := extraction.DedupTasks(in.Tasks)

	// Resolution reads happen before the transaction opens.
	resolution, err := c.resolver.Resolve(ctx, meeting, tasks, in.AutoCreateCompanies)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	var minutesHTML string
	if in.CreateMinutes {
		minutesHTML = in.MinutesHTML
		if minutesHTML == "" {
			minutesHTML, err = RenderMinutes(meeting, in.Summary, in.DecisionsText, resolution.Tasks)
			if err != nil {
				return nil, apperrors.ErrInternal(err)
			}
		}
	}

	result := &CommitResult{}

	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := c.createCompanies(tx, resolution.NewCompanies, result); err != nil {
			return err
		}
		if err := c.createTasks(tx, meeting, resolution.Tasks, result); err != nil {
			return err
		}
		if in.AutoCreateContacts {
			if err := c.createContacts(tx, resolution.Tasks, result); err != nil {
				return err
			}
		}
		if err := c.upsertExtraction(tx, meeting, in); err != nil {
			return err
		}
		if err := c.appendCompanyNote(tx, meeting, in.Summary); err != nil {
			return err
		}

		if err := tx.Model(&entities.Meeting{}).
			Where("id = ?", meeting.ID).
			Updates(map[string]interface{}{
				"status":     entities.MeetingStatusProcessed,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to mark meeting processed: %w", err)
		}

		if err := c.ensureTimeEntry(tx, meeting, segments, result); err != nil {
			return err
		}
		if in.CreateMinutes {
			if err := c.ensureMinutesDocument(tx, meeting, minutesHTML, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.ErrCommitFailed(err)
	}

	// The cached preview is stale the moment the final extraction lands.
	if c.cache != nil {
		if err := c.cache.InvalidatePreview(ctx, meeting.ID); err != nil && c.logger != nil {
			c.logger.Warn("failed to invalidate preview cache",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err),
			)
		}
	}

	// Object storage cannot join the database transaction; the upload is
	// best-effort and the document row stays authoritative. A re-commit
	// re-uploads.
	if in.CreateMinutes && c.storage != nil && result.MinutesDocumentID != nil {
		if err := c.storage.UploadMinutes(ctx, *result.MinutesDocumentID, []byte(minutesHTML)); err != nil && c.logger != nil {
			c.logger.Warn("failed to upload minutes artifact",
				zap.String("document_id", result.MinutesDocumentID.String()),
				zap.Error(err),
			)
		}
	}

	if c.logger != nil {
		c.logger.Info("meeting extraction committed",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Int("created_tasks", result.CreatedTasks),
			zap.Int("created_contacts", result.CreatedContacts),
			zap.Int("created_companies", result.CreatedCompanies),
			zap.Bool("time_entry_created", result.TimeEntryCreated),
			zap.Bool("minutes_created", result.MinutesCreated),
		)
	}

	return result, nil
}

func (c *Coordinator) createCompanies(tx *gorm.DB, companies []*entities.Company, result *CommitResult) error {
	for _, company := range companies {
		if err := tx.Create(company).Error; err != nil {
			return fmt.Errorf("failed to create company %q: %w", company.Name, err)
		}
		result.CreatedCompanies++
	}
	return nil
}

func (c *Coordinator) createTasks(tx *gorm.DB, meeting *entities.Meeting, resolved []ResolvedTask, result *CommitResult) error {
	var tasks []*entities.Task
	for _, rt := range resolved {
		name := strings.TrimSpace(rt.Source.Name)
		if name == "" {
			continue
		}

		task := entities.NewTask(meeting.OrganizationID, meeting.CreatedBy, name)
		task.Description = rt.Source.Description
		task.CompanyID = rt.CompanyID
		task.AssignedToID = rt.AssignedToID
		task.DueDate = rt.DueDate
		task.Priority = rt.Priority
		meetingID := meeting.ID
		task.MeetingID = &meetingID

		if len(rt.Source.Labels) > 0 {
			labels, err := json.Marshal(rt.Source.Labels)
			if err != nil {
				return fmt.Errorf("failed to serialize labels for task %q: %w", name, err)
			}
			task.Labels = datatypes.JSON(labels)
		}
		tasks = append(tasks, task)
	}

	if err := repository.CreateTasks(tx, tasks); err != nil {
		return fmt.Errorf("failed to create tasks: %w", err)
	}
	result.CreatedTasks = len(tasks)
	return nil
}

// createContacts creates a contact for every unresolved assignee email
// under the task's resolved company. Check-then-create rather than upsert:
// contact identity needs the company scope, which is only known after
// resolution.
func (c *Coordinator) createContacts(tx *gorm.DB, resolved []ResolvedTask, result *CommitResult) error {
	type contactKey struct {
		companyID uuid.UUID
		email     string
	}
	seen := make(map[contactKey]struct{})

	for _, rt := range resolved {
		if !rt.NeedsContact() {
			continue
		}
		email := strings.ToLower(strings.TrimSpace(rt.Source.AssigneeEmail))
		key := contactKey{companyID: *rt.CompanyID, email: email}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		existing, err := repository.FindContact(tx, key.companyID, email)
		if err != nil {
			return fmt.Errorf("failed to look up contact %q: %w", email, err)
		}
		if existing != nil {
			continue
		}

		contact := entities.NewCompanyContact(key.companyID, email)
		if err := tx.Create(contact).Error; err != nil {
			return fmt.Errorf("failed to create contact %q: %w", email, err)
		}
		result.CreatedContacts++
	}
	return nil
}

func (c *Coordinator) upsertExtraction(tx *gorm.DB, meeting *entities.Meeting, in CommitInput) error {
	ext := entities.NewMeetingExtraction(meeting.ID, entities.ExtractionStatusFinal)
	ext.Summary = in.Summary
	ext.Decisions = in.DecisionsText
	if len(in.Payload) > 0 {
		ext.Payload = datatypes.JSON(in.Payload)
	}
	if err := repository.UpsertExtraction(tx, ext); err != nil {
		return fmt.Errorf("failed to upsert extraction: %w", err)
	}
	return nil
}

// appendCompanyNote adds a meeting_summary note when the meeting has a
// company and the summary is non-empty. Notes are intentionally additive;
// repeated commits append repeated notes.
func (c *Coordinator) appendCompanyNote(tx *gorm.DB, meeting *entities.Meeting, summary string) error {
	if strings.TrimSpace(summary) == "" || meeting.CompanyID == nil {
		return nil
	}
	meetingID := meeting.ID
	note := &entities.CompanyNote{
		ID:        uuid.New(),
		CompanyID: *meeting.CompanyID,
		MeetingID: &meetingID,
		Category:  entities.CompanyNoteCategoryMeetingSummary,
		Body:      summary,
		CreatedBy: meeting.CreatedBy,
		CreatedAt: time.Now(),
	}
	if err := tx.Create(note).Error; err != nil {
		return fmt.Errorf("failed to append company note: %w", err)
	}
	return nil
}

// ensureTimeEntry creates the single meeting-derived time entry unless one
// already exists. Duration prefers the meeting's explicit span, then the
// span of the transcript segments, then the 60 second floor.
func (c *Coordinator) ensureTimeEntry(tx *gorm.DB, meeting *entities.Meeting, segments []entities.TranscriptSegment, result *CommitResult) error {
	existing, err := repository.FindMeetingEntry(tx, meeting.CreatedBy, meeting.ID)
	if err != nil {
		return fmt.Errorf("failed to look up time entry: %w", err)
	}
	if existing != nil {
		result.TimeEntryID = existing.ID
		result.TimeEntryCreated = false
		return nil
	}

	duration := meeting.DurationSeconds()
	if duration <= 0 {
		duration = segmentSpanSeconds(segments)
	}
	if duration <= 0 {
		duration = minTimeEntrySeconds
	}

	startedAt := time.Now()
	if meeting.StartedAt != nil {
		startedAt = *meeting.StartedAt
	}

	meetingID := meeting.ID
	entry := &entities.TimeEntry{
		ID:              uuid.New(),
		OrganizationID:  meeting.OrganizationID,
		UserID:          meeting.CreatedBy,
		CompanyID:       meeting.CompanyID,
		MeetingID:       &meetingID,
		Notes:           fmt.Sprintf("Meeting: %s %s", meeting.Title, entities.MeetingTag(meeting.ID)),
		DurationSeconds: duration,
		Billable:        meeting.CompanyID != nil,
		StartedAt:       startedAt,
		CreatedAt:       time.Now(),
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create time entry: %w", err)
	}

	result.TimeEntryID = entry.ID
	result.TimeEntryCreated = true
	return nil
}

// ensureMinutesDocument updates the existing minutes document in place, or
// creates one and then patches its file URL — the URL embeds the document's
// own id, so it can only be written once the id exists.
func (c *Coordinator) ensureMinutesDocument(tx *gorm.DB, meeting *entities.Meeting, html string, result *CommitResult) error {
	doc, err := repository.FindMinutesDocument(tx, meeting.ID)
	if err != nil {
		return fmt.Errorf("failed to look up minutes document: %w", err)
	}

	if doc != nil {
		if err := tx.Model(&entities.OrganizationDocument{}).
			Where("id = ?", doc.ID).
			Updates(map[string]interface{}{
				"file_size":  len(html),
				"updated_at": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to update minutes document: %w", err)
		}
		docID := doc.ID
		result.MinutesDocumentID = &docID
		result.MinutesDocumentURL = doc.FileURL
		result.MinutesCreated = false
	} else {
		meetingID := meeting.ID
		metadata, err := json.Marshal(map[string]string{"meetingId": meetingID.String()})
		if err != nil {
			return fmt.Errorf("failed to serialize minutes metadata: %w", err)
		}

		doc = &entities.OrganizationDocument{
			ID:             uuid.New(),
			OrganizationID: meeting.OrganizationID,
			MeetingID:      &meetingID,
			Category:       entities.DocumentCategoryMeetingMinutes,
			Title:          fmt.Sprintf("Meeting minutes: %s", meeting.Title),
			FileSize:       len(html),
			Metadata:       datatypes.JSON(metadata),
			CreatedBy:      meeting.CreatedBy,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("failed to create minutes document: %w", err)
		}

		fileURL := fmt.Sprintf("/v1/documents/%s/file", doc.ID)
		if err := tx.Model(&entities.OrganizationDocument{}).
			Where("id = ?", doc.ID).
			Update("file_url", fileURL).Error; err != nil {
			return fmt.Errorf("failed to set minutes document URL: %w", err)
		}

		docID := doc.ID
		result.MinutesDocumentID = &docID
		result.MinutesDocumentURL = fileURL
		result.MinutesCreated = true
	}

	if meeting.CompanyID != nil {
		if err := repository.UpsertCompanyLink(tx, *result.MinutesDocumentID, *meeting.CompanyID); err != nil {
			return fmt.Errorf("failed to link minutes document to company: %w", err)
		}
	}
	return nil
}

// segmentSpanSeconds derives a duration from the span of the transcript
// segment timestamps
func segmentSpanSeconds(segments []entities.TranscriptSegment) int {
	if len(segments) == 0 {
		return 0
	}
	minStart := segments[0].StartSec
	maxEnd := segments[0].EndSec
	for _, seg := range segments[1:] {
		if seg.StartSec < minStart {
			minStart = seg.StartSec
		}
		if seg.EndSec > maxEnd {
			maxEnd = seg.EndSec
		}
	}
	span := int(maxEnd - minStart)
	if span < 0 {
		return 0
	}
	return span
}
