package extract

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	rpdf "rsc.io/pdf"
)

// pageText returns the page's text in reading order. rsc.io/pdf reports one
// entry per glyph run, so runs are clustered into lines by baseline.
func pageText(p rpdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read page text: %v", r)
		}
	}()
	return joinRuns(p.Content().Text), nil
}

func joinRuns(runs []rpdf.Text) string {
	if len(runs) == 0 {
		return ""
	}
	sorted := make([]rpdf.Text, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var lines [][]rpdf.Text
	var cur []rpdf.Text
	lineY := sorted[0].Y
	for _, r := range sorted {
		if len(cur) > 0 && math.Abs(r.Y-lineY) > lineTolerance(r.FontSize) {
			lines = append(lines, cur)
			cur = nil
		}
		if len(cur) == 0 {
			lineY = r.Y
		}
		cur = append(cur, r)
	}
	lines = append(lines, cur)

	var b strings.Builder
	for i, line := range lines {
		sort.SliceStable(line, func(a, c int) bool { return line[a].X < line[c].X })
		if i > 0 {
			b.WriteByte('\n')
		}
		var prevEnd float64
		var prev rune
		for j, r := range line {
			if j > 0 && needsSpace(prev, r, prevEnd) {
				b.WriteByte(' ')
			}
			b.WriteString(r.S)
			prevEnd = r.X + r.W
			if rs := []rune(r.S); len(rs) > 0 {
				prev = rs[len(rs)-1]
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func lineTolerance(fontSize float64) float64 {
	return math.Max(2, fontSize*0.5)
}

// needsSpace inserts a word gap between latin runs that are visibly apart.
// CJK text carries no inter-word spaces.
func needsSpace(prev rune, next rpdf.Text, prevEnd float64) bool {
	if prev == 0 || unicode.IsSpace(prev) || strings.HasPrefix(next.S, " ") {
		return false
	}
	gap := next.X - prevEnd
	size := next.FontSize
	if size <= 0 {
		size = 10
	}
	if isCJK(prev) {
		return gap > size*0.8
	}
	return gap > size*0.15
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) ||
		(r >= 0x3000 && r <= 0x303F) || (r >= 0xFF00 && r <= 0xFFEF)
}
