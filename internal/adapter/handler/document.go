package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MatthijsVer/company-manager/errors"
	"github.com/MatthijsVer/company-manager/internal/adapter/repository"
	"github.com/MatthijsVer/company-manager/internal/infrastructure/storage"
)

// Document handles document HTTP requests
type Document struct {
	documents *repository.DocumentRepository
	storage   *storage.MinIOClient
	logger    *zap.Logger
}

// NewDocumentHandler creates a new document handler. storage may be nil
// when no object store is configured.
func NewDocumentHandler(documents *repository.DocumentRepository, storage *storage.MinIOClient, logger *zap.Logger) *Document {
	return &Document{
		documents: documents,
		storage:   storage,
		logger:    logger,
	}
}

// GetFile handles GET /documents/:id/file
// @Summary      Download a document file
// @Description  Streams the stored file of a document, e.g. the minutes HTML of a meeting
// @Tags         Documents
// @Produce      html
// @Security     BearerAuth
// @Param        id   path  string  true  "Document ID"
// @Success      200  {string}  string  "Document content"
// @Router       /documents/{id}/file [get]
func (h *Document) GetFile(c echo.Context) error {
	orgID, _, documentID, err := requestScope(c)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	doc, err := h.documents.GetByID(c.Request().Context(), orgID, documentID)
	if err != nil {
		return HandleError(c, h.logger, errors.ErrInternal(err))
	}
	if doc == nil {
		return HandleError(c, h.logger, errors.ErrNotFound("Document"))
	}
	if h.storage == nil {
		return HandleError(c, h.logger, errors.ErrStorageFailed(nil))
	}

	reader, err := h.storage.GetMinutes(c.Request().Context(), doc.ID)
	if err != nil {
		return HandleError(c, h.logger, errors.ErrStorageFailed(err))
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentType, "text/html; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response(), reader)
	return err
}
