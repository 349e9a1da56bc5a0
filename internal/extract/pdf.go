// Package extract pulls the raw text and the mind-map figure out of a lecture
// handout PDF.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	rpdf "rsc.io/pdf"
)

// ErrNoText is returned when no page yields any text.
var ErrNoText = errors.New("no text extracted from pdf")

const (
	EngineNative  = "native"
	EnginePoppler = "poppler"

	RawTextFile = "raw_content.txt"
)

type Options struct {
	WorkDir    string // receives raw_content.txt and extracted_images/
	TextEngine string // native | poppler
	Thresholds Thresholds
}

// Source is everything read from the PDF.
type Source struct {
	PDFPath    string          `json:"pdf_path"`
	Pages      int             `json:"pages"`
	Text       string          `json:"-"`
	TextPath   string          `json:"text_path"`
	Candidates []Candidate     `json:"candidates"`
	MindMap    *ExtractedImage `json:"mindmap,omitempty"`
}

// PageMarker is the separator written before each page's text.
func PageMarker(n int) string { return fmt.Sprintf("=== Page %d ===", n) }

// Extract reads pdfPath. A missing mind map is not an error; a PDF without any
// text is.
func Extract(ctx context.Context, pdfPath string, opts Options, log zerolog.Logger) (*Source, error) {
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds
	}
	if err := os.MkdirAll(opts.WorkDir, 0o755); err != nil {
		return nil, err
	}

	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	doc, err := rpdf.NewReader(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	src := &Source{PDFPath: pdfPath, Pages: doc.NumPage()}
	log.Debug().Int("pages", src.Pages).Str("engine", opts.TextEngine).Msg("pdf opened")

	var pages []string
	switch opts.TextEngine {
	case EnginePoppler:
		pages, err = popplerText(pdfPath)
	default:
		pages, err = nativeText(ctx, doc, log)
	}
	if err != nil {
		return nil, err
	}
	src.Text = joinPages(pages)
	if strings.TrimSpace(stripMarkers(src.Text)) == "" {
		return nil, ErrNoText
	}
	src.TextPath = filepath.Join(opts.WorkDir, RawTextFile)
	if err := os.WriteFile(src.TextPath, []byte(src.Text), 0o644); err != nil {
		return nil, fmt.Errorf("write raw text: %w", err)
	}

	if src.Pages > 0 {
		src.Candidates, src.MindMap = findMindMap(doc, pdfPath, opts, log)
	}
	return src, nil
}

func nativeText(ctx context.Context, doc *rpdf.Reader, log zerolog.Logger) ([]string, error) {
	n := doc.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := pageText(doc.Page(i))
		if err != nil {
			log.Warn().Err(err).Int("page", i).Msg("skipping unreadable page")
		}
		pages = append(pages, t)
	}
	return pages, nil
}

func joinPages(pages []string) string {
	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(PageMarker(i + 1))
		b.WriteByte('\n')
		b.WriteString(p)
	}
	return b.String()
}

func stripMarkers(s string) string {
	var b strings.Builder
	for _, ln := range strings.Split(s, "\n") {
		if strings.HasPrefix(ln, "=== Page ") && strings.HasSuffix(ln, " ===") {
			continue
		}
		b.WriteString(ln)
	}
	return b.String()
}

// findMindMap only looks at the first page, where handouts print the map.
func findMindMap(doc *rpdf.Reader, pdfPath string, opts Options, log zerolog.Logger) ([]Candidate, *ExtractedImage) {
	const page = 1
	placed, box, err := pagePlacements(doc.Page(page))
	if err != nil {
		log.Warn().Err(err).Msg("could not locate images on first page")
		return nil, nil
	}
	cands, pick := classifyPlacements(opts.Thresholds, page, placed, box)
	for _, c := range cands {
		log.Debug().Str("image", c.Name).
			Float64("top", c.TopRatio).Float64("width", c.WidthRatio).Float64("area", c.AreaRatio).
			Bool("mindmap", c.IsMindMap).Msg("image candidate")
	}
	if pick < 0 {
		log.Info().Int("images", len(cands)).Msg("no mind map on first page")
		return cands, nil
	}

	imgs, err := pageImages(pdfPath, page)
	if err != nil {
		log.Warn().Err(err).Msg("could not read image streams")
		return cands, nil
	}
	mm, err := saveMindMap(imgs, cands[pick], opts.WorkDir)
	if err != nil {
		log.Warn().Err(err).Msg("could not save mind map")
		return cands, nil
	}
	log.Info().Str("path", mm.Path).Msg("mind map extracted")
	return cands, mm
}
