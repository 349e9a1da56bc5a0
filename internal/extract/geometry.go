package extract

// Rect is a rectangle in page space with a top-left origin, the way a reader
// sees the page: Y0 is the top edge, Y1 the bottom edge.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }
func (r Rect) Area() float64   { return r.Width() * r.Height() }

// matrix is a PDF affine transform [a b c d e f].
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// mul returns m × n, i.e. m applied first.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// unitSquare maps the image space unit square through m and returns its
// bounding box in PDF (bottom-left origin) coordinates.
func (m matrix) unitSquare() (minX, minY, maxX, maxY float64) {
	xs := [4]float64{}
	ys := [4]float64{}
	xs[0], ys[0] = m.apply(0, 0)
	xs[1], ys[1] = m.apply(1, 0)
	xs[2], ys[2] = m.apply(0, 1)
	xs[3], ys[3] = m.apply(1, 1)
	minX, maxX = xs[0], xs[0]
	minY, maxY = ys[0], ys[0]
	for i := 1; i < 4; i++ {
		minX = min(minX, xs[i])
		maxX = max(maxX, xs[i])
		minY = min(minY, ys[i])
		maxY = max(maxY, ys[i])
	}
	return
}

// pageBox is the page's MediaBox in PDF units.
type pageBox struct {
	LLX, LLY, URX, URY float64
}

func (b pageBox) Width() float64  { return b.URX - b.LLX }
func (b pageBox) Height() float64 { return b.URY - b.LLY }

// toTopLeft converts a bottom-left-origin box into a Rect relative to the page box.
func (b pageBox) toTopLeft(minX, minY, maxX, maxY float64) Rect {
	return Rect{
		X0: minX - b.LLX,
		Y0: b.URY - maxY,
		X1: maxX - b.LLX,
		Y1: b.URY - minY,
	}
}
