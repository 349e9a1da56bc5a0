package diagram

import (
	"strconv"

	"github.com/fogleman/gg"
)

// Stairs draws each objective as a gradient card, each step indented further
// to the right, with a numbered circle on the card's left edge.
func Stairs(objectives []string, opts Options) ([]byte, error) {
	rs, err := rows(objectives)
	if err != nil {
		return nil, err
	}
	w, h := opts.size(1920, 1080)
	sx, sy := float64(w)/1920, float64(h)/1080
	dc := gg.NewContext(w, h)
	dc.SetHexColor("#FFFFFF")
	dc.Clear()

	startY := 150 * sy
	step := (float64(h) - startY - 100*sy) / float64(len(rs))
	indent := 150 * sx
	if n := len(rs); n > 5 {
		indent = 750 * sx / float64(n)
	}
	for i, r := range rs {
		x := 200*sx + float64(i)*indent
		y := startY + float64(i)*step
		cw := 1500*sx - float64(i)*indent
		ch := step - 30*sy

		from, to := levelGradient(r.Level)
		g := gg.NewLinearGradient(x, y, x, y+ch)
		g.AddColorStop(0, mustHex(from))
		g.AddColorStop(1, mustHex(to))
		dc.SetFillStyle(g)
		dc.DrawRoundedRectangle(x, y, cw, ch, 16*sx)
		dc.Fill()

		radius := min(50*sx, ch/2)
		ccx, ccy := x-60*sx, y+ch/2
		dc.DrawCircle(ccx, ccy, radius)
		dc.SetHexColor(from)
		dc.FillPreserve()
		dc.SetHexColor("#FFFFFF")
		dc.SetLineWidth(5 * sx)
		dc.Stroke()
		dc.SetFontFace(opts.Fonts.Face(72 * sy))
		dc.DrawStringAnchored(strconv.Itoa(i+1), ccx, ccy, 0.5, 0.5)

		dc.SetHexColor("#FFFFFF")
		dc.SetFontFace(opts.Fonts.Face(56 * sy))
		dc.DrawStringAnchored(r.Level, x+40*sx, y+20*sy, 0, 1)

		dc.SetFontFace(opts.Fonts.Face(44 * sy))
		lh := dc.FontHeight() * 1.25
		ty := y + 85*sy
		for _, ln := range wrap(dc, r.Text, cw-80*sx, 2) {
			if ty+lh > y+ch {
				break
			}
			dc.DrawStringAnchored(ln, x+40*sx, ty, 0, 1)
			ty += lh
		}
	}
	return encode(dc)
}
