package diagram

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// fallbackFonts are tried when no font path is configured. Only single-font
// TrueType files work; .ttc collections are rejected by the parser.
var fallbackFonts = []string{
	"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
	"/usr/share/fonts/truetype/arphic/uming.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	`C:\Windows\Fonts\simhei.ttf`,
}

// Fonts hands out faces of any size from one parsed TrueType font, or the
// built-in bitmap face when none could be loaded.
type Fonts struct {
	ttf *truetype.Font
}

// LoadFonts parses path, or the first readable fallback when path is empty.
// An explicit path that cannot be parsed is an error.
func LoadFonts(path string) (*Fonts, error) {
	if path != "" {
		f, err := parseFont(path)
		if err != nil {
			return nil, err
		}
		return &Fonts{ttf: f}, nil
	}
	for _, p := range fallbackFonts {
		if f, err := parseFont(p); err == nil {
			return &Fonts{ttf: f}, nil
		}
	}
	return &Fonts{}, nil
}

func parseFont(path string) (*truetype.Font, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	f, err := truetype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return f, nil
}

// Scalable reports whether a TrueType font was loaded.
func (f *Fonts) Scalable() bool { return f != nil && f.ttf != nil }

// Face returns a new face of the given point size. truetype faces keep glyph
// caches and must not be shared between goroutines.
func (f *Fonts) Face(size float64) font.Face {
	if !f.Scalable() {
		return basicfont.Face7x13
	}
	return truetype.NewFace(f.ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
