// Package extractor turns document files into plain text. Plain text and
// markdown pass through unchanged (markdown formatting retained for better
// retrieval); PDF pages are extracted in order and joined with newlines.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tidegate/askdocs/internal/domain/entities"
)

// FileExtractor implements ports.Extractor for .txt, .md, .markdown and .pdf.
type FileExtractor struct{}

// New creates a FileExtractor.
func New() *FileExtractor {
	return &FileExtractor{}
}

// Supports reports whether ext (lower-case, with dot) is handled.
func (e *FileExtractor) Supports(ext string) bool {
	switch ext {
	case ".txt", ".md", ".markdown", ".pdf":
		return true
	}
	return false
}

// Extract reads path and returns its text content. A missing file maps to
// ErrSourceNotFound, an unknown extension to ErrUnsupportedFormat, and a
// format-level failure to ErrExtraction.
func (e *FileExtractor) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !e.Supports(ext) {
		return "", fmt.Errorf("%w: %s", entities.ErrUnsupportedFormat, ext)
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", entities.ErrSourceNotFound, path)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	if ext == ".pdf" {
		return extractPDF(path)
	}
	return extractText(path)
}

func extractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", entities.ErrExtraction, path, err)
	}
	return string(data), nil
}

// extractPDF concatenates the plain text of every page, one page per line
// group. The pdf library panics on some malformed inputs; that surfaces as
// an ErrExtraction like any other parse failure.
func extractPDF(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: pdf %s: %v", entities.ErrExtraction, path, r)
		}
	}()
	return readPDF(path)
}

func readPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening pdf %s: %v", entities.ErrExtraction, path, err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: pdf %s page %d: %v", entities.ErrExtraction, path, i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
