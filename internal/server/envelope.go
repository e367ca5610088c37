package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Path    string `json:"path,omitempty"`
}

// ExtractResponse is nested inside a successful envelope so that extraction
// failures read as business outcomes rather than transport errors.
type ExtractResponse struct {
	Success  bool   `json:"success"`
	Data     any    `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
	Provider string `json:"provider,omitempty"`
	FellBack bool   `json:"fellBack,omitempty"`
}

type UploadResponse struct {
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, Response{Success: true, Data: data})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, Response{Success: false, Error: msg})
}

// handleError renders any error returned by a handler or middleware.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			_ = c.JSON(http.StatusNotFound, Response{
				Success: false,
				Error:   "Route not found",
				Path:    c.Request().URL.RequestURI(),
			})
		default:
			msg := http.StatusText(he.Code)
			if m, ok := he.Message.(string); ok && m != "" {
				msg = m
			} else if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
			_ = c.JSON(he.Code, Response{Success: false, Error: msg})
		}
		return
	}

	status := common.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("api error",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
	}
	_ = c.JSON(status, Response{
		Success: false,
		Error:   common.PublicMessage(err, s.cfg.Production),
		Code:    common.ErrorCode(err),
	})
}
