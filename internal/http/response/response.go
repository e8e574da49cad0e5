package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/users-backend/internal/logger"
	"github.com/ignatzorin/users-backend/internal/pkg/apperror"
)

// Response — единый конверт всех JSON ответов сервиса.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Error     *ErrorInfo  `json:"error"`
	Timestamp time.Time   `json:"timestamp"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// Error отображает ошибку в конверт. Известные AppError сохраняют свой
// статус и код, всё остальное прячется за generic 500: детали драйвера
// и стеки попадают в лог, но не в ответ.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		// Клиентские ошибки без причины в лог не пишем, внутренние — всегда.
		if appErr.Cause != nil || appErr.HTTPStatus >= http.StatusInternalServerError {
			logInternal(c, err)
		}
		c.JSON(appErr.HTTPStatus, Response{
			Success: false,
			Message: appErr.Message,
			Error: &ErrorInfo{
				Code:    string(appErr.Code),
				Message: appErr.Message,
			},
			Timestamp: time.Now().UTC(),
		})
		return
	}

	logInternal(c, err)
	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Message: "внутренняя ошибка сервера",
		Error: &ErrorInfo{
			Code:    string(apperror.ErrCodeInternal),
			Message: "внутренняя ошибка сервера",
		},
		Timestamp: time.Now().UTC(),
	})
}

func BadRequest(c *gin.Context, message string) {
	errorJSON(c, http.StatusBadRequest, apperror.ErrCodeBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	errorJSON(c, http.StatusNotFound, apperror.ErrCodeNotFound, message)
}

func Unauthorized(c *gin.Context, message string) {
	errorJSON(c, http.StatusUnauthorized, apperror.ErrCodeUnauthorized, message)
}

// logInternal пишет полную ошибку (включая причину) в лог.
// AppError.Error() разворачивает Cause, так что детали драйвера
// попадают сюда, а не в ответ клиенту.
func logInternal(c *gin.Context, err error) {
	if logger.Log == nil {
		return
	}

	logger.Log.WithFields(logrus.Fields{
		"error":      err.Error(),
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("request_id"),
	}).Error("request error")
}

func errorJSON(c *gin.Context, status int, code apperror.ErrorCode, message string) {
	c.JSON(status, Response{
		Success: false,
		Message: message,
		Error: &ErrorInfo{
			Code:    string(code),
			Message: message,
		},
		Timestamp: time.Now().UTC(),
	})
}
