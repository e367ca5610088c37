package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/export"
	"github.com/joseph-ayodele/invoices-tracker/internal/invoices"
)

const msgInvalidJSON = "Invalid JSON body"

func (s *Server) handleListInvoices(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	res, err := s.deps.Invoices.List(c.Request().Context(), invoices.ListRequest{
		Query: c.QueryParam("q"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, res)
}

func (s *Server) handleGetInvoice(c echo.Context) error {
	doc, err := s.deps.Invoices.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, doc)
}

func (s *Server) handleCreateInvoice(c echo.Context) error {
	body, err := decodeObject(c)
	if err != nil {
		return err
	}
	doc, err := s.deps.Invoices.Create(c.Request().Context(), body)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, doc)
}

func (s *Server) handleUpdateInvoice(c echo.Context) error {
	body, err := decodeObject(c)
	if err != nil {
		return err
	}
	doc, err := s.deps.Invoices.Update(c.Request().Context(), c.Param("id"), body)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, doc)
}

func (s *Server) handleDeleteInvoice(c echo.Context) error {
	if err := s.deps.Invoices.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return ok(c, http.StatusOK, map[string]string{"message": "Invoice deleted successfully"})
}

// handleExportInvoices returns the invoices matching ?q= as an XLSX download.
func (s *Server) handleExportInvoices(c echo.Context) error {
	if s.deps.Export == nil {
		return echo.ErrNotFound
	}
	b, err := s.deps.Export.ExportInvoicesXLSX(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	name := fmt.Sprintf("invoices-%s.xlsx", s.now().UTC().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, export.ContentType, b)
}

// decodeObject reads the request body as a JSON object. An empty body is an
// empty object.
func decodeObject(c echo.Context) (map[string]any, error) {
	body := map[string]any{}
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, common.Validation(msgInvalidJSON, err)
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

