package constants

import "strings"

const (
	// PDFContentType is the only content type accepted on upload.
	PDFContentType = "application/pdf"

	// MaxUploadBytes caps a single uploaded PDF.
	MaxUploadBytes int64 = 25 << 20

	// UploadChunkSize is the size of one stored blob chunk.
	UploadChunkSize = 255 << 10

	// UploadFormField is the multipart field carrying the PDF.
	UploadFormField = "pdf"
)

// AllowedExtensions holds the file extensions picked up by directory imports.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
