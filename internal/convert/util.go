package convert

import (
	"path/filepath"
	"strings"
	"unicode"
)

// slugify keeps letters and digits of any script so Chinese titles survive;
// everything else collapses into single dashes.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// deckFileName names the deck after the lecture, e.g. 函数的概念_1a2b3c4d.pptx.
func deckFileName(title, runID string) string {
	name := slugify(title)
	if r := []rune(name); len(r) > 40 {
		name = strings.TrimRight(string(r[:40]), "-")
	}
	if name == "" {
		name = "courseware"
	}
	if len(runID) > 8 {
		runID = runID[:8]
	}
	if runID == "" {
		return name + ".pptx"
	}
	return name + "_" + runID + ".pptx"
}

// DefaultOutput is the deck path used when no explicit output is given.
func DefaultOutput(outDir, title, runID string) string {
	return filepath.Join(outDir, deckFileName(title, runID))
}
