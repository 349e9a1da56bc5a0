package diagram

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
)

type Options struct {
	Width, Height int
	Fonts         *Fonts // nil uses the built-in bitmap face
}

func (o Options) size(defW, defH int) (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 || h <= 0 {
		w, h = defW, defH
	}
	return w, h
}

// Pyramid draws a trophy above a stack of trapezoids, one per objective and
// widening downwards, with each objective's text to the right of its layer.
func Pyramid(objectives []string, opts Options) ([]byte, error) {
	rs, err := rows(objectives)
	if err != nil {
		return nil, err
	}
	w, h := opts.size(800, 600)
	scale := float64(w) / 800
	dc := gg.NewContext(w, h)
	dc.SetHexColor("#FFFFFF")
	dc.Clear()

	left := 50 * scale
	pw := float64(w)/3 - 100*scale
	top := 100 * scale
	ph := float64(h) - 200*scale
	cx := left + pw/2

	drawTrophy(dc, opts.Fonts, cx, top-80*scale, scale)

	layerH := ph / float64(len(rs))
	gap := 10 * scale
	textLeft := left + pw + 80*scale
	for i, r := range rs {
		yTop := top + float64(i)*layerH
		yBot := yTop + layerH - gap
		topW := pw * (0.4 + 0.3*float64(i))
		botW := pw * (0.4 + 0.3*float64(i+1))

		dc.NewSubPath()
		dc.MoveTo(cx-topW/2, yTop)
		dc.LineTo(cx+topW/2, yTop)
		dc.LineTo(cx+botW/2, yBot)
		dc.LineTo(cx-botW/2, yBot)
		dc.ClosePath()
		dc.SetHexColor(LevelColor(r.Level))
		dc.FillPreserve()
		dc.SetHexColor("#FFFFFF")
		dc.SetLineWidth(3 * scale)
		dc.Stroke()

		mid := (yTop + yBot) / 2
		dc.SetFontFace(opts.Fonts.Face(28 * scale))
		dc.SetHexColor("#FFFFFF")
		dc.DrawStringAnchored(fmt.Sprintf("%d %s", i+1, r.Level), cx, mid, 0.5, 0.5)

		// dashed leader, then a dot in the level colour
		lineStart := left + pw + 20*scale
		lineEnd := textLeft - 20*scale
		dc.SetHexColor("#CCCCCC")
		dc.SetLineWidth(2 * scale)
		dc.SetDash(10*scale, 5*scale)
		dc.DrawLine(lineStart, mid, lineEnd, mid)
		dc.Stroke()
		dc.SetDash()
		dc.SetHexColor(LevelColor(r.Level))
		dc.DrawCircle(lineEnd, mid, 5*scale)
		dc.Fill()

		dc.SetFontFace(opts.Fonts.Face(24 * scale))
		dc.SetHexColor("#333333")
		lines := wrap(dc, StripLevels(r.Text), float64(w)-textLeft-20*scale, 2)
		lh := dc.FontHeight() * 1.3
		y0 := mid - lh*float64(len(lines)-1)/2
		for j, ln := range lines {
			dc.DrawStringAnchored(ln, textLeft, y0+float64(j)*lh, 0, 0.5)
		}
	}
	return encode(dc)
}

func drawTrophy(dc *gg.Context, fonts *Fonts, cx, y, scale float64) {
	gold, edge := "#FFD700", "#FFA500"
	dc.SetLineWidth(5 * scale)
	dc.SetHexColor(gold)
	dc.DrawArc(cx-45*scale, y+25*scale, 15*scale, gg.Radians(90), gg.Radians(270))
	dc.Stroke()
	dc.DrawArc(cx+45*scale, y+25*scale, 15*scale, gg.Radians(-90), gg.Radians(90))
	dc.Stroke()

	dc.DrawEllipse(cx, y+30*scale, 40*scale, 30*scale)
	dc.SetHexColor(gold)
	dc.FillPreserve()
	dc.SetHexColor(edge)
	dc.SetLineWidth(3 * scale)
	dc.Stroke()

	dc.DrawRectangle(cx-50*scale, y+60*scale, 100*scale, 20*scale)
	dc.SetHexColor(gold)
	dc.FillPreserve()
	dc.SetHexColor(edge)
	dc.SetLineWidth(2 * scale)
	dc.Stroke()

	dc.SetFontFace(fonts.Face(36 * scale))
	dc.SetHexColor("#FFFFFF")
	dc.DrawStringAnchored("1", cx, y+30*scale, 0.5, 0.5)
}

// wrap breaks s into at most maxLines lines no wider than width. Breaking is
// per rune since Chinese text has no spaces; the last line is ellipsized.
func wrap(dc *gg.Context, s string, width float64, maxLines int) []string {
	if s == "" {
		return []string{""}
	}
	var lines []string
	var cur []rune
	for _, r := range s {
		next := append(cur, r)
		if tw, _ := dc.MeasureString(string(next)); tw > width && len(cur) > 0 {
			lines = append(lines, string(cur))
			cur = []rune{r}
			continue
		}
		cur = next
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	if maxLines > 0 && len(lines) > maxLines {
		last := []rune(lines[maxLines-1])
		if len(last) > 1 {
			last = last[:len(last)-1]
		}
		lines = append(lines[:maxLines-1], string(last)+"…")
	}
	return lines
}

func encode(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
