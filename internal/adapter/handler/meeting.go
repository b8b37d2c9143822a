package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MatthijsVer/company-manager/errors"
	dto "github.com/MatthijsVer/company-manager/internal/adapter/dto/meeting"
	"github.com/MatthijsVer/company-manager/internal/adapter/repository"
	"github.com/MatthijsVer/company-manager/internal/domain/entities"
	meetingUsecase "github.com/MatthijsVer/company-manager/internal/usecase/meeting"
)

// Meeting handles meeting lifecycle HTTP requests
type Meeting struct {
	meetings *repository.MeetingRepository
	tasks    *repository.TaskRepository
	pipeline *meetingUsecase.Pipeline
	logger   *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetings *repository.MeetingRepository, tasks *repository.TaskRepository, pipeline *meetingUsecase.Pipeline, logger *zap.Logger) *Meeting {
	return &Meeting{
		meetings: meetings,
		tasks:    tasks,
		pipeline: pipeline,
		logger:   logger,
	}
}

// Create handles POST /meetings
// @Summary      Create a meeting
// @Description  Registers a recorded meeting for processing
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      meeting.CreateMeetingRequest  true  "Meeting creation request"
// @Success      201      {object}  meeting.MeetingResponse
// @Router       /meetings [post]
func (h *Meeting) Create(c echo.Context) error {
	var req dto.CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(c, h.logger, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(c, h.logger, errors.ErrInvalidArgument(err.Error()))
	}

	orgID, userID, err := callerScope(c)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	meeting := entities.NewMeeting(orgID, userID, req.Title)
	meeting.RecordingURL = req.RecordingURL
	meeting.StartedAt = req.StartedAt
	meeting.EndedAt = req.EndedAt
	if req.CompanyID != "" {
		companyID, parseErr := uuid.Parse(req.CompanyID)
		if parseErr != nil {
			return HandleError(c, h.logger, errors.ErrInvalidArgument("invalid companyId"))
		}
		meeting.CompanyID = &companyID
	}

	if err := h.meetings.CreateMeeting(c.Request().Context(), meeting); err != nil {
		return HandleError(c, h.logger, errors.ErrInternal(err))
	}

	return HandleSuccess(c, http.StatusCreated, dto.NewMeetingResponse(meeting, nil))
}

// Get handles GET /meetings/:id
// @Summary      Get a meeting
// @Description  Returns a meeting with its transcript segments
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  meeting.MeetingResponse
// @Router       /meetings/{id} [get]
func (h *Meeting) Get(c echo.Context) error {
	orgID, _, meetingID, err := requestScope(c)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	meeting, segments, err := h.pipeline.GetMeeting(c.Request().Context(), orgID, meetingID)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	return HandleSuccess(c, http.StatusOK, dto.NewMeetingResponse(meeting, segments))
}

// Tasks handles GET /meetings/:id/tasks
// @Summary      List meeting tasks
// @Description  Returns the tasks committed from a meeting's extraction
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {array}   meeting.TaskResponse
// @Router       /meetings/{id}/tasks [get]
func (h *Meeting) Tasks(c echo.Context) error {
	orgID, _, meetingID, err := requestScope(c)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	// The meeting lookup enforces the organization scope; tasks are keyed
	// by meeting id only.
	meeting, err := h.meetings.GetMeetingByID(c.Request().Context(), orgID, meetingID)
	if err != nil {
		return HandleError(c, h.logger, errors.ErrInternal(err))
	}
	if meeting == nil {
		return HandleError(c, h.logger, errors.ErrMeetingNotFound(meetingID.String()))
	}

	tasks, err := h.tasks.ListByMeeting(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(c, h.logger, errors.ErrInternal(err))
	}

	return HandleSuccess(c, http.StatusOK, dto.NewTaskListResponse(tasks))
}

// Transcribe handles POST /meetings/:id/transcribe
// @Summary      Transcribe a meeting
// @Description  Sends the meeting recording to the transcription provider and stores the transcript
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  meeting.MeetingResponse
// @Router       /meetings/{id}/transcribe [post]
func (h *Meeting) Transcribe(c echo.Context) error {
	orgID, _, meetingID, err := requestScope(c)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	meeting, err := h.pipeline.Transcribe(c.Request().Context(), orgID, meetingID)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	return HandleSuccess(c, http.StatusOK, dto.NewMeetingResponse(meeting, nil))
}
