package ingest

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
)

// AllowedExt checks if a file extension is importable.
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// buildDocument shapes extracted fields into a create request body, the
// same body a client would submit after review.
func buildDocument(fileID, fileName string, fields entity.ExtractedFields) (map[string]any, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	doc["fileId"] = fileID
	doc["fileName"] = fileName
	return doc, nil
}
