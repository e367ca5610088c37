package server

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/common"
)

// handleUpload stores the multipart "pdf" field as a new blob.
func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile(constants.UploadFormField)
	if err != nil {
		return fail(c, http.StatusBadRequest, "No PDF file provided")
	}
	if mt, _, _ := mime.ParseMediaType(fh.Header.Get(echo.HeaderContentType)); mt != constants.PDFContentType {
		return fail(c, http.StatusBadRequest, "Only PDF files are allowed")
	}
	if fh.Size > constants.MaxUploadBytes {
		return fail(c, http.StatusBadRequest, "File too large")
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, constants.MaxUploadBytes+1))
	if err != nil {
		return err
	}
	if int64(len(data)) > constants.MaxUploadBytes {
		return fail(c, http.StatusBadRequest, "File too large")
	}

	fileID := uuid.NewString()
	up, err := s.deps.Files.Put(c.Request().Context(), fileID, data, fh.Filename, constants.PDFContentType)
	if err != nil {
		return err
	}
	s.logger.Info("upload stored", zap.String("file_id", fileID), zap.String("file_name", up.FileName), zap.Int64("bytes", up.Length))
	return ok(c, http.StatusOK, UploadResponse{FileID: up.FileID, FileName: up.FileName, Size: up.Length})
}

// handleGetUpload streams a stored PDF back.
func (s *Server) handleGetUpload(c echo.Context) error {
	rc, up, err := s.deps.Files.Open(c.Request().Context(), c.Param("id"))
	if errors.Is(err, common.ErrNotFound) {
		return fail(c, http.StatusNotFound, "File not found")
	}
	if err != nil {
		return err
	}
	defer rc.Close()

	name := up.FileName
	if name == "" {
		name = "document.pdf"
	}
	h := c.Response().Header()
	h.Set(echo.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": name}))
	h.Set(echo.HeaderContentLength, strconv.FormatInt(up.Length, 10))
	return c.Stream(http.StatusOK, constants.PDFContentType, rc)
}
