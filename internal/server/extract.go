package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/pipeline"
)

// handleExtract answers request problems with a plain 400 envelope and
// everything past validation with the nested extraction envelope.
func (s *Server) handleExtract(c echo.Context) error {
	var req pipeline.Request
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return fail(c, http.StatusBadRequest, msgInvalidJSON)
	}

	res, err := s.deps.Extract.Extract(c.Request().Context(), req)
	if err == nil {
		return ok(c, http.StatusOK, ExtractResponse{
			Success:  true,
			Data:     res.Fields,
			Provider: string(res.Provider),
			FellBack: res.FellBack,
		})
	}

	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrInvalidInput):
		return fail(c, http.StatusBadRequest, common.PublicMessage(err, false))
	case errors.Is(err, common.ErrNotFound):
		return ok(c, http.StatusNotFound, ExtractResponse{Error: common.PublicMessage(err, false)})
	}

	msg := common.PublicMessage(err, s.cfg.Production)
	if errors.Is(err, common.ErrProvider) {
		msg = err.Error()
	}
	s.logger.Error("extraction failed", zap.String("file_id", req.FileID), zap.Error(err))
	return ok(c, http.StatusInternalServerError, ExtractResponse{Error: msg})
}
