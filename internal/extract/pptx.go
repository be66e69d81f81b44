package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/textutil"
)

const (
	slidePrefix = "ppt/slides/slide"
	slideSuffix = ".xml"
)

// pptxSlides reads slide XML parts straight out of the OOXML zip
// container and collects the text runs (<a:t> elements) of each slide.
func pptxSlides(path string) ([]models.Page, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("extract: open pptx: %w", err)
	}
	defer archive.Close()

	type slideFile struct {
		num  int
		file *zip.File
	}
	var slides []slideFile
	for _, f := range archive.File {
		num, ok := slideNumber(f.Name)
		if !ok {
			continue
		}
		slides = append(slides, slideFile{num: num, file: f})
	}
	// Source order is the slide number embedded in the part name, not
	// the zip entry order.
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	pages := make([]models.Page, 0, len(slides))
	for i, s := range slides {
		text, err := slideText(s.file)
		if err != nil {
			return nil, fmt.Errorf("extract: slide %d: %w", s.num, err)
		}
		pages = append(pages, models.Page{
			Index: i + 1,
			Label: fmt.Sprintf("Slide %d", i+1),
			Text:  textutil.Normalize(text),
		})
	}
	return pages, nil
}

// slideNumber parses N from "ppt/slides/slideN.xml".
func slideNumber(name string) (int, bool) {
	if !strings.HasPrefix(name, slidePrefix) || !strings.HasSuffix(name, slideSuffix) {
		return 0, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, slidePrefix), slideSuffix)
	num, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return num, true
}

// slideText walks the slide XML token stream and joins the character
// data of every <a:t> element with newlines.
func slideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var parts []string
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				parts = append(parts, string(t))
			}
		}
	}
	return strings.Join(parts, "\n"), nil
}
