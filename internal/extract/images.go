package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ExtractedImage is an image written out of the source PDF.
type ExtractedImage struct {
	Path      string `json:"path"`
	Page      int    `json:"page"`
	Name      string `json:"name"`
	Extension string `json:"ext"`
	Rect      Rect   `json:"rect"`
}

// rawImage is one image stream decoded by pdfcpu.
type rawImage struct {
	Name string
	Ext  string
	Data []byte
}

// pageImages returns the page's images keyed by resource name.
func pageImages(pdfPath string, page int) (map[string]rawImage, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pages, err := api.ExtractImagesRaw(f, []string{fmt.Sprint(page)}, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu extract images: %w", err)
	}
	out := map[string]rawImage{}
	for _, byObj := range pages {
		for _, img := range byObj {
			if img.PageNr != 0 && img.PageNr != page {
				continue
			}
			data, err := io.ReadAll(img)
			if err != nil || len(data) == 0 {
				continue
			}
			ext := strings.ToLower(strings.TrimPrefix(img.FileType, "."))
			if ext == "" {
				ext = sniffExt(data)
			}
			if ext == "" {
				ext = "png"
			}
			out[img.Name] = rawImage{Name: img.Name, Ext: ext, Data: data}
		}
	}
	return out, nil
}

// saveMindMap writes the chosen image to <workDir>/extracted_images/mindmap.<ext>.
// When the resource name cannot be matched and the page holds exactly one
// image, that image is used.
func saveMindMap(imgs map[string]rawImage, c Candidate, workDir string) (*ExtractedImage, error) {
	img, ok := imgs[c.Name]
	if !ok && len(imgs) == 1 {
		for _, only := range imgs {
			img, ok = only, true
		}
	}
	if !ok {
		return nil, fmt.Errorf("image %q not found on page %d", c.Name, c.Page)
	}
	dir := filepath.Join(workDir, "extracted_images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	ext := img.Ext
	if ext == "jpeg" {
		ext = "jpg"
	}
	path := filepath.Join(dir, "mindmap."+ext)
	if err := writeFileAtomic(path, img.Data); err != nil {
		return nil, err
	}
	return &ExtractedImage{Path: path, Page: c.Page, Name: c.Name, Extension: ext, Rect: c.Rect}, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// sniffExt is used when pdfcpu reports no file type.
func sniffExt(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return "png"
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8}):
		return "jpg"
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return "tif"
	}
	return ""
}
