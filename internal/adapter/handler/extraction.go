package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MatthijsVer/company-manager/errors"
	dto "github.com/MatthijsVer/company-manager/internal/adapter/dto/meeting"
	"github.com/MatthijsVer/company-manager/internal/domain/entities"
	meetingUsecase "github.com/MatthijsVer/company-manager/internal/usecase/meeting"
)

// Extraction handles extraction preview and commit HTTP requests
type Extraction struct {
	pipeline    *meetingUsecase.Pipeline
	coordinator *meetingUsecase.Coordinator
	logger      *zap.Logger
}

// NewExtractionHandler creates a new extraction handler
func NewExtractionHandler(pipeline *meetingUsecase.Pipeline, coordinator *meetingUsecase.Coordinator, logger *zap.Logger) *Extraction {
	return &Extraction{
		pipeline:    pipeline,
		coordinator: coordinator,
		logger:      logger,
	}
}

// Preview handles POST /meetings/:id/extraction/preview
// @Summary      Preview extraction
// @Description  Runs a permissive extraction over the meeting transcript without persisting anything the user has to keep
// @Tags         Extraction
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  meeting.PreviewResponse
// @Router       /meetings/{id}/extraction/preview [post]
func (h *Extraction) Preview(c echo.Context) error {
	orgID, _, meetingID, err := requestScope(c)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	result, err := h.pipeline.Preview(c.Request().Context(), orgID, meetingID)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	return HandleSuccess(c, http.StatusOK, dto.PreviewResponse{
		Extraction: result.Extraction,
		Note:       result.Note,
		Cached:     result.Cached,
	})
}

// Get handles GET /meetings/:id/extraction
// @Summary      Get stored extraction
// @Description  Returns the stored extraction (preview or final) for a meeting
// @Tags         Extraction
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  meeting.ExtractionResponse
// @Router       /meetings/{id}/extraction [get]
func (h *Extraction) Get(c echo.Context) error {
	orgID, _, meetingID, err := requestScope(c)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	ext, err := h.pipeline.GetExtraction(c.Request().Context(), orgID, meetingID)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	return HandleSuccess(c, http.StatusOK, dto.NewExtractionResponse(ext))
}

// Commit handles POST /meetings/:id/extraction/commit
// @Summary      Commit extraction
// @Description  Persists the submitted extraction in one transaction: tasks, contacts, companies, note, time entry and minutes
// @Tags         Extraction
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true  "Meeting ID"
// @Param        request  body      meeting.CommitExtractionRequest  true  "Extraction to commit"
// @Success      200      {object}  meetingUsecase.CommitResult
// @Router       /meetings/{id}/extraction/commit [post]
func (h *Extraction) Commit(c echo.Context) error {
	orgID, _, meetingID, err := requestScope(c)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	var req dto.CommitExtractionRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(c, h.logger, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(c, h.logger, errors.ErrInvalidArgument(err.Error()))
	}

	tasks := req.ToExtractedTasks()
	payload, err := json.Marshal(entities.AggregatedExtraction{
		Summary:   req.Summary,
		Decisions: splitDecisions(req.DecisionsText),
		Tasks:     tasks,
	})
	if err != nil {
		return HandleError(c, h.logger, errors.ErrInternal(err))
	}

	input := meetingUsecase.CommitInput{
		Summary:             req.Summary,
		DecisionsText:       req.DecisionsText,
		Tasks:               tasks,
		CreateMinutes:       req.CreateMinutes,
		AutoCreateCompanies: req.AutoCreateCompanies,
		AutoCreateContacts:  req.AutoCreateContacts,
		MinutesHTML:         req.MinutesHTML,
		Payload:             payload,
	}

	result, err := h.coordinator.Commit(c.Request().Context(), orgID, meetingID, input)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	return HandleSuccess(c, http.StatusOK, result)
}

// splitDecisions breaks the decisions text into its non-blank lines
func splitDecisions(text string) []string {
	var decisions []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			decisions = append(decisions, line)
		}
	}
	return decisions
}
