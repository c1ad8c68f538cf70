package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	mimePDF  = "application/pdf"
	mimeText = "text/plain"
)

// Format is the decoded representation chosen for an upload.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatText Format = "txt"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither PDF nor plain text.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyDocument is returned when a document decodes to no text at all.
	ErrEmptyDocument = errors.New("document contains no extractable text")
)

// File is a user-selected document held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Error reports a decode failure for a file whose format was accepted.
type Error struct {
	Name   string
	Format Format
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s (%s): %v", e.Name, e.Format, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Detect decides how a file should be decoded. A file is accepted when either its
// extension or its declared content type is PDF or plain text; the extension wins
// when both are present.
func Detect(name, contentType string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(name)), ".")) {
	case "pdf":
		return FormatPDF, nil
	case "txt":
		return FormatText, nil
	}
	switch normalizeMimeType(contentType) {
	case mimePDF:
		return FormatPDF, nil
	case mimeText:
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: name=%q type=%q", ErrUnsupportedFormat, name, contentType)
}

// Extract returns the plain text content of f. PDF pages are joined with "\n" in page order.
func Extract(ctx context.Context, f File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	format, err := Detect(f.Name, f.ContentType)
	if err != nil {
		return "", err
	}
	switch format {
	case FormatPDF:
		text, err := extractPDF(ctx, f.Data)
		if err != nil {
			return "", &Error{Name: f.Name, Format: format, Err: err}
		}
		return text, nil
	default:
		return extractText(f.Data), nil
	}
}

func extractText(data []byte) string {
	return string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
}

func extractPDF(ctx context.Context, data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", errors.New("empty pdf data")
	}
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	total := reader.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n"), nil
}

func normalizeMimeType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}
