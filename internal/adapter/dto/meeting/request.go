package meeting

import (
	"time"

	"github.com/MatthijsVer/company-manager/internal/domain/entities"
)

// CreateMeetingRequest is the payload for POST /meetings
type CreateMeetingRequest struct {
	Title        string     `json:"title" validate:"required,max=255"`
	CompanyID    string     `json:"companyId,omitempty" validate:"omitempty,uuid"`
	RecordingURL string     `json:"recordingUrl,omitempty" validate:"omitempty,url"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`
}

// TaskInput is one task in a commit payload. Loose fields (priority, due
// date, company references) are normalized during resolution rather than
// rejected here; only the name is mandatory.
type TaskInput struct {
	Name          string   `json:"name" validate:"required"`
	CompanyID     string   `json:"companyId,omitempty"`
	Description   string   `json:"description,omitempty"`
	DueDate       string   `json:"dueDate,omitempty"`
	AssigneeEmail string   `json:"assigneeEmail,omitempty" validate:"omitempty,email"`
	Priority      string   `json:"priority,omitempty"`
	CompanySlug   string   `json:"companySlug,omitempty"`
	CompanyName   string   `json:"companyName,omitempty"`
	Labels        []string `json:"labels,omitempty"`
}

// ToExtractedTask converts the input to the domain task shape
func (t TaskInput) ToExtractedTask() entities.ExtractedTask {
	return entities.ExtractedTask{
		Name:          t.Name,
		CompanyID:     t.CompanyID,
		Description:   t.Description,
		DueDate:       t.DueDate,
		AssigneeEmail: t.AssigneeEmail,
		Priority:      t.Priority,
		CompanySlug:   t.CompanySlug,
		CompanyName:   t.CompanyName,
		Labels:        t.Labels,
	}
}

// CommitExtractionRequest is the payload for POST /meetings/:id/extraction/commit.
// The caller submits the (possibly edited) extraction they want persisted.
type CommitExtractionRequest struct {
	Summary             string      `json:"summary,omitempty"`
	DecisionsText       string      `json:"decisionsText,omitempty"`
	Tasks               []TaskInput `json:"tasks" validate:"dive"`
	CreateMinutes       bool        `json:"createMinutes,omitempty"`
	AutoCreateCompanies bool        `json:"autoCreateCompanies,omitempty"`
	AutoCreateContacts  bool        `json:"autoCreateContacts,omitempty"`
	MinutesHTML         string      `json:"minutesHtml,omitempty"`
}

// ToExtractedTasks converts the request's task list to the domain shape
func (r CommitExtractionRequest) ToExtractedTasks() []entities.ExtractedTask {
	tasks := make([]entities.ExtractedTask, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		tasks = append(tasks, t.ToExtractedTask())
	}
	return tasks
}
