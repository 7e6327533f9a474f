package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learning-yogi/internal/app"
	"learning-yogi/internal/model"
	"learning-yogi/internal/transport/http/response"
)

type TimetableHandler struct {
	timetables *app.TimetableService
}

func NewTimetableHandler(timetables *app.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetables: timetables}
}

// UpdateTimetableRequest replaces the stored record whole. Timeblocks is
// a pointer so an absent or non-array value is rejected while an empty
// array still reaches the validator.
type UpdateTimetableRequest struct {
	TeacherName *string              `json:"teacher_name"`
	ClassName   *string              `json:"class_name"`
	Term        *string              `json:"term"`
	Year        *int                 `json:"year"`
	SavedName   *string              `json:"saved_name"`
	Timeblocks  *model.TimeBlockList `json:"timeblocks" binding:"required"`
}

type SaveAsRequest struct {
	SavedName   string               `json:"saved_name" binding:"required"`
	DocumentID  *string              `json:"document_id"`
	TeacherName *string              `json:"teacher_name"`
	ClassName   *string              `json:"class_name"`
	Term        *string              `json:"term"`
	Year        *int                 `json:"year"`
	Timeblocks  *model.TimeBlockList `json:"timeblocks" binding:"required"`
}

// GetByDocument serves the read-through cache path.
func (h *TimetableHandler) GetByDocument(c *gin.Context) {
	tt, err := h.timetables.GetByDocument(c.Request.Context(), c.Param("documentId"))
	if err != nil {
		h.writeError(c, err, "get timetable failed")
		return
	}
	response.OK(c, tt)
}

// List bypasses the per-key cache and always reads persistence.
func (h *TimetableHandler) List(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	list, err := h.timetables.List(limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list timetables failed")
		return
	}
	response.OK(c, list)
}

func (h *TimetableHandler) Update(c *gin.Context) {
	var req UpdateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "timeblocks must be a JSON array")
		return
	}

	tt, err := h.timetables.Update(c.Request.Context(), c.Param("documentId"), app.UpdateInput{
		TeacherName: req.TeacherName,
		ClassName:   req.ClassName,
		Term:        req.Term,
		Year:        req.Year,
		SavedName:   req.SavedName,
		Timeblocks:  *req.Timeblocks,
	})
	if err != nil {
		h.writeError(c, err, "update timetable failed")
		return
	}
	response.OK(c, tt)
}

func (h *TimetableHandler) SaveAs(c *gin.Context) {
	var req SaveAsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "saved_name and timeblocks array are required")
		return
	}

	tt, err := h.timetables.CreateSaveAs(c.Request.Context(), app.SaveAsInput{
		SavedName:   req.SavedName,
		DocumentID:  req.DocumentID,
		TeacherName: req.TeacherName,
		ClassName:   req.ClassName,
		Term:        req.Term,
		Year:        req.Year,
		Timeblocks:  *req.Timeblocks,
	})
	if err != nil {
		h.writeError(c, err, "save timetable failed")
		return
	}
	response.Created(c, tt)
}

func (h *TimetableHandler) writeError(c *gin.Context, err error, fallback string) {
	var vErr *app.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.ValidationFailed(c, vErr.Reasons)
	case errors.Is(err, app.ErrTimetableNotFound):
		response.Error(c, http.StatusNotFound, response.CodeTimetableNotFound, err.Error())
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
