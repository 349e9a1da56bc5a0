package diagram

import (
	"strconv"

	"github.com/fogleman/gg"
)

// Cards draws one full-width card per objective, stacked top to bottom. The
// darker label block on the left carries the number and the level.
func Cards(objectives []string, opts Options) ([]byte, error) {
	rs, err := rows(objectives)
	if err != nil {
		return nil, err
	}
	w, h := opts.size(1920, 1080)
	sx, sy := float64(w)/1920, float64(h)/1080
	dc := gg.NewContext(w, h)
	dc.SetHexColor("#FFFFFF")
	dc.Clear()

	startY := 200 * sy
	spacing := (float64(h) - startY - 100*sy) / float64(len(rs))
	x, cw := 150*sx, 1620*sx
	label := 200 * sx
	radius := 20 * sx
	for i, r := range rs {
		y := startY + float64(i)*spacing
		ch := spacing - 40*sy
		body, dark := levelGradient(r.Level)

		dc.SetRGBA255(0, 0, 0, 50)
		dc.DrawRoundedRectangle(x+8*sx, y+8*sy, cw, ch, radius)
		dc.Fill()

		dc.DrawRoundedRectangle(x, y, cw, ch, radius)
		dc.SetHexColor(body)
		dc.FillPreserve()
		dc.SetHexColor("#FFFFFF")
		dc.SetLineWidth(4 * sx)
		dc.Stroke()

		dc.DrawRoundedRectangle(x, y, label, ch, radius)
		dc.SetHexColor(dark)
		dc.Fill()

		dc.SetHexColor("#FFFFFF")
		dc.SetFontFace(opts.Fonts.Face(min(72*sy, ch/2)))
		dc.DrawStringAnchored(strconv.Itoa(i+1), x+label/2, y+30*sy, 0.5, 0.5)
		dc.SetFontFace(opts.Fonts.Face(min(56*sy, ch/3)))
		dc.DrawStringAnchored(r.Level, x+label/2, y+ch-40*sy, 0.5, 0.5)

		dc.SetFontFace(opts.Fonts.Face(44 * sy))
		tx := x + label + 50*sx
		lines := wrap(dc, r.Text, cw-label-100*sx, 2)
		lh := dc.FontHeight() * 1.35
		ty := y + ch/2 - lh*float64(len(lines)-1)/2
		for _, ln := range lines {
			dc.DrawStringAnchored(ln, tx, ty, 0, 0.5)
			ty += lh
		}
	}
	return encode(dc)
}
