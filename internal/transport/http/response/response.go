package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                = 0
	CodeBadRequest        = 40000
	CodeValidationFailed  = 40001
	CodeDocumentNotFound  = 40401
	CodeTimetableNotFound = 40402
	CodeInternalServer    = 50000
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, APIResponse{
		Code:    CodeOK,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}

// ValidationFailed returns the full ordered reason list alongside the
// client error.
func ValidationFailed(c *gin.Context, reasons []string) {
	c.JSON(400, APIResponse{
		Code:    CodeValidationFailed,
		Message: "timetable validation failed",
		Errors:  reasons,
	})
}
