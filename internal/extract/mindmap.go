package extract

// Thresholds bound the normalized position and size of a mind-map image.
// Lecture handouts put the mind map in the middle band of the first page,
// spanning most of the width without being a full-page figure.
type Thresholds struct {
	MinTop, MaxTop     float64 // top edge / page height
	MinWidth, MaxWidth float64 // width / page width
	MinArea, MaxArea   float64 // area / page area
}

var DefaultThresholds = Thresholds{
	MinTop: 0.35, MaxTop: 0.70,
	MinWidth: 0.50, MaxWidth: 0.95,
	MinArea: 0.08, MaxArea: 0.25,
}

// Candidate is an image placement together with its normalized metrics.
type Candidate struct {
	Placement
	Page       int     `json:"page"`
	TopRatio   float64 `json:"top_ratio"`
	WidthRatio float64 `json:"width_ratio"`
	AreaRatio  float64 `json:"area_ratio"`
	IsMindMap  bool    `json:"is_mindmap"`
}

// Classify normalizes r against the page size and applies the thresholds.
func (th Thresholds) Classify(r Rect, pageW, pageH float64) Candidate {
	c := Candidate{Placement: Placement{Rect: r}}
	if pageW <= 0 || pageH <= 0 {
		return c
	}
	c.TopRatio = r.Y0 / pageH
	c.WidthRatio = r.Width() / pageW
	c.AreaRatio = r.Area() / (pageW * pageH)
	c.IsMindMap = between(c.TopRatio, th.MinTop, th.MaxTop) &&
		between(c.WidthRatio, th.MinWidth, th.MaxWidth) &&
		between(c.AreaRatio, th.MinArea, th.MaxArea)
	return c
}

func between(v, lo, hi float64) bool { return v >= lo && v <= hi }

// classifyPlacements scores every placement; the returned index is the
// mind map (the last matching placement) or -1.
func classifyPlacements(th Thresholds, page int, placed []Placement, box pageBox) ([]Candidate, int) {
	out := make([]Candidate, 0, len(placed))
	pick := -1
	for _, p := range placed {
		c := th.Classify(p.Rect, box.Width(), box.Height())
		c.Placement = p
		c.Page = page
		if c.IsMindMap {
			pick = len(out)
		}
		out = append(out, c)
	}
	return out, pick
}
