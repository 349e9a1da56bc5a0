package extract

import (
	"fmt"
	"os"
	"strings"

	"code.sajari.com/docconv/v2"
)

// popplerText extracts the whole document through pdftotext. docconv gives no
// page boundaries, so form feeds (emitted by pdftotext between pages) are used
// to recover them when present.
func popplerText(pdfPath string) ([]string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	body, _, err := docconv.ConvertPDF(f)
	if err != nil {
		return nil, fmt.Errorf("docconv: %w", err)
	}
	pages := strings.Split(body, "\f")
	for i := range pages {
		pages[i] = strings.TrimSpace(pages[i])
	}
	for len(pages) > 1 && pages[len(pages)-1] == "" {
		pages = pages[:len(pages)-1]
	}
	return pages, nil
}
