package extract

import (
	"fmt"

	rpdf "rsc.io/pdf"
)

// Placement records where an image XObject was painted on a page.
type Placement struct {
	Name  string `json:"name"` // resource name, e.g. "Im0"
	Rect  Rect   `json:"rect"`
	Order int    `json:"order"`
}

// placementTracker follows the graphics state operators that matter for image
// placement: q, Q, cm and Do.
type placementTracker struct {
	ctm    matrix
	stack  []matrix
	box    pageBox
	seen   map[string]bool
	placed []Placement
}

func newPlacementTracker(box pageBox) *placementTracker {
	return &placementTracker{ctm: identity, box: box, seen: map[string]bool{}}
}

func (t *placementTracker) save() { t.stack = append(t.stack, t.ctm) }

func (t *placementTracker) restore() {
	if n := len(t.stack); n > 0 {
		t.ctm = t.stack[n-1]
		t.stack = t.stack[:n-1]
	}
}

func (t *placementTracker) concat(m matrix) { t.ctm = m.mul(t.ctm) }

// image records an image draw. Only the first placement of each resource is
// kept, so a logo repeated across the page does not produce extra candidates.
func (t *placementTracker) image(name string) {
	if t.seen[name] {
		return
	}
	t.seen[name] = true
	minX, minY, maxX, maxY := t.ctm.unitSquare()
	t.placed = append(t.placed, Placement{
		Name:  name,
		Rect:  t.box.toTopLeft(minX, minY, maxX, maxY),
		Order: len(t.placed),
	})
}

const maxFormDepth = 4

// pagePlacements interprets the page's content streams and returns every image
// XObject drawn on it, in drawing order.
func pagePlacements(p rpdf.Page) (placed []Placement, box pageBox, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("interpret page content: %v", r)
		}
	}()
	box = mediaBox(p.V)
	t := newPlacementTracker(box)
	interpretContents(t, p.V.Key("Contents"), p.Resources(), 0)
	return t.placed, box, nil
}

func interpretContents(t *placementTracker, contents, resources rpdf.Value, depth int) {
	if contents.Kind() == rpdf.Array {
		for i := 0; i < contents.Len(); i++ {
			interpretStream(t, contents.Index(i), resources, depth)
		}
		return
	}
	interpretStream(t, contents, resources, depth)
}

func interpretStream(t *placementTracker, strm, resources rpdf.Value, depth int) {
	if strm.Kind() != rpdf.Stream {
		return
	}
	rpdf.Interpret(strm, func(stk *rpdf.Stack, op string) {
		n := stk.Len()
		args := make([]rpdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		switch op {
		case "q":
			t.save()
		case "Q":
			t.restore()
		case "cm":
			if len(args) == 6 {
				var m matrix
				for i := range m {
					m[i] = args[i].Float64()
				}
				t.concat(m)
			}
		case "Do":
			if len(args) != 1 || args[0].Kind() != rpdf.Name {
				return
			}
			name := args[0].Name()
			xobj := resources.Key("XObject").Key(name)
			switch xobj.Key("Subtype").Name() {
			case "Image":
				t.image(name)
			case "Form":
				if depth >= maxFormDepth {
					return
				}
				t.save()
				if fm := xobj.Key("Matrix"); fm.Kind() == rpdf.Array && fm.Len() == 6 {
					var m matrix
					for i := range m {
						m[i] = fm.Index(i).Float64()
					}
					t.concat(m)
				}
				formRes := xobj.Key("Resources")
				if formRes.IsNull() {
					formRes = resources
				}
				interpretStream(t, xobj, formRes, depth+1)
				t.restore()
			}
		}
	})
}

// mediaBox walks the page tree for an inherited MediaBox, defaulting to A4.
func mediaBox(page rpdf.Value) pageBox {
	for v := page; !v.IsNull(); v = v.Key("Parent") {
		mb := v.Key("MediaBox")
		if mb.Kind() == rpdf.Array && mb.Len() == 4 {
			b := pageBox{mb.Index(0).Float64(), mb.Index(1).Float64(), mb.Index(2).Float64(), mb.Index(3).Float64()}
			if b.URX < b.LLX {
				b.LLX, b.URX = b.URX, b.LLX
			}
			if b.URY < b.LLY {
				b.LLY, b.URY = b.URY, b.LLY
			}
			return b
		}
	}
	return pageBox{0, 0, 595, 842}
}
