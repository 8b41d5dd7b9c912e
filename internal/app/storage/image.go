package storage

import (
	"net/http"
	"path/filepath"
	"strings"

	"zimage/internal/pkg/errs"
)

// MaxImageSize is the largest image accepted for export.
const MaxImageSize = 32 * 1024 * 1024

// AllowedMIMETypes defines the set of image types that may be exported.
var AllowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// ExtToMIME maps file extensions to their corresponding MIME types.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// mimeToExt is the preferred extension for each allowed type.
var mimeToExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// DetectMIME sniffs the image type from its content, falling back to the declared type when
// sniffing is inconclusive.
func DetectMIME(data []byte, declared string) string {
	sniffed := http.DetectContentType(data)
	if _, ok := AllowedMIMETypes[sniffed]; ok {
		return sniffed
	}
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = declared[:i]
	}
	return strings.ToLower(strings.TrimSpace(declared))
}

// ValidateImage checks the size and type of an image about to be exported.
func ValidateImage(size int, mimeType string) *errs.CustomError {
	if size <= 0 || size > MaxImageSize {
		return errs.NewError(errs.ErrInvalidParams, "image is empty or too large")
	}
	if _, ok := AllowedMIMETypes[strings.ToLower(mimeType)]; !ok {
		return errs.NewError(errs.ErrUnsupportedImageType, mimeType)
	}
	return nil
}

// ValidateFileName checks that a file name's extension matches mimeType.
func ValidateFileName(fileName, mimeType string) *errs.CustomError {
	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) < 2 {
		return errs.NewError(errs.ErrInvalidParams, "file name has no extension")
	}

	expected, ok := ExtToMIME[ext]
	if !ok || expected != strings.ToLower(mimeType) {
		return errs.NewError(errs.ErrUnsupportedImageType, ext)
	}
	return nil
}

// ExportName is the file name an exported job image is stored under.
func ExportName(jobID, mimeType string) string {
	ext, ok := mimeToExt[strings.ToLower(mimeType)]
	if !ok {
		ext = ".png"
	}
	return "zimage-" + jobID + ext
}
