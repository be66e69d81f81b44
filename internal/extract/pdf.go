package extract

import (
	"bytes"
	"fmt"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/textutil"
)

// pdfPages extracts per-page text via MuPDF. A page that fails text
// extraction still yields a record with empty text so indexes stay
// contiguous; the pipeline skips empty pages later.
func pdfPages(path string) ([]models.Page, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("extract: open pdf: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	pages := make([]models.Page, 0, n)
	for i := 0; i < n; i++ {
		text, err := doc.Text(i)
		if err != nil {
			text = ""
		}
		pages = append(pages, models.Page{
			Index: i + 1,
			Label: fmt.Sprintf("Page %d", i+1),
			Text:  textutil.Normalize(text),
		})
	}
	return pages, nil
}

// PDFPageCount validates the document structure and returns its page
// count without extracting any text. Used at upload time to reject
// broken files early.
func PDFPageCount(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("extract: read pdf: %w", err)
	}
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("extract: validate pdf: %w", err)
	}
	return ctx.PageCount, nil
}
