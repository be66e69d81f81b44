// Package extract turns uploaded lecture documents into ordered page
// records. It is a thin wrapper over binary parsing; the pipeline only
// consumes the (index, label, text) contract.
package extract

import (
	"path/filepath"
	"strings"

	"github.com/lectio/lectio/internal/apperr"
	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/textutil"
)

// Pages extracts the ordered page sequence from the document at path.
// Page text is normalized; indexes are 1-based and contiguous, and
// labels follow "Page N" / "Slide N" depending on the source format.
func Pages(path string) ([]models.Page, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return pdfPages(path)
	case ".pptx":
		return pptxSlides(path)
	default:
		return nil, apperr.Invalid("unsupported file extension %q", ext)
	}
}

// Text extracts the whole document as one normalized string, pages
// joined by newlines. Used by quiz generation, which does not need
// page boundaries.
func Text(path string) (string, error) {
	pages, err := Pages(path)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, p.Text)
	}
	return textutil.Normalize(strings.Join(parts, "\n")), nil
}
