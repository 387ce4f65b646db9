package printing

import (
	"context"
	"fmt"
	"strings"
)

// PaperSize names a supported output paper format
type PaperSize string

// Supported paper sizes
const (
	PaperSizeA4     PaperSize = "A4"
	PaperSizeLetter PaperSize = "LETTER"
)

// ParsePaperSize accepts a paper size name in any case. Empty means A4.
func ParsePaperSize(s string) (PaperSize, error) {
	switch PaperSize(strings.ToUpper(strings.TrimSpace(s))) {
	case "", PaperSizeA4:
		return PaperSizeA4, nil
	case PaperSizeLetter:
		return PaperSizeLetter, nil
	}
	return "", fmt.Errorf("unsupported paper size %q", s)
}

// Dimensions returns width and height in millimeters
func (p PaperSize) Dimensions() (width, height float64) {
	if p == PaperSizeLetter {
		return 215.9, 279.4
	}
	return 210, 297
}

// PDFRenderer converts a complete HTML document to PDF bytes
type PDFRenderer interface {
	Render(ctx context.Context, html string, paper PaperSize) ([]byte, error)
	Close() error
}

// Error codes carried by RenderError
const (
	ErrCodeInvalidHTML   = "INVALID_HTML"
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeTemplate      = "TEMPLATE_FAILED"
)

// RenderError describes a failed render
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}
