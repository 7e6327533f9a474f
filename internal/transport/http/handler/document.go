package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"learning-yogi/internal/app"
	"learning-yogi/internal/transport/http/response"
)

// DocumentHandler exposes the document lifecycle over HTTP. Processing
// is asynchronous: upload returns as soon as the document is accepted,
// and callers poll status to observe the pipeline.
type DocumentHandler struct {
	documents    *app.DocumentService
	maxUploadLen int64
}

func NewDocumentHandler(documents *app.DocumentService, maxUploadMB int) *DocumentHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 15
	}
	return &DocumentHandler{
		documents:    documents,
		maxUploadLen: int64(maxUploadMB) << 20,
	}
}

// Upload accepts a multipart form with "file" and submits it for
// processing.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file (form field 'file')")
		return
	}
	if file.Size > h.maxUploadLen {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to open uploaded file")
		return
	}
	defer f.Close()

	doc, err := h.documents.Submit(c.Request.Context(), app.SubmitInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Reader:      f,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed")
		}
		return
	}

	response.OK(c, gin.H{
		"document_id": doc.ID,
		"status":      doc.Status,
	})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, app.ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get document failed")
		}
		return
	}
	response.OK(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	docs, err := h.documents.List(limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.documents.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, app.ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_document_id": id})
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	s := c.Query(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
