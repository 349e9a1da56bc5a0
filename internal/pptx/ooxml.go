package pptx

import (
	"encoding/xml"
	"path"
	"strconv"
	"strings"
)

const (
	nsP   = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCT  = "http://schemas.openxmlformats.org/package/2006/content-types"

	relOfficeDoc   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relSlideMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	ctSlide = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

	// EMUPerInch is the number of English Metric Units in an inch.
	EMUPerInch = 914400
)

// Inches converts inches to EMU.
func Inches(in float64) int64 { return int64(in * EMUPerInch) }

// Rect is a shape frame in EMU.
type Rect struct {
	X, Y, CX, CY int64
}

func (r Rect) Empty() bool { return r.CX <= 0 || r.CY <= 0 }

// InchRect builds a Rect from inch values.
func InchRect(x, y, w, h float64) Rect {
	return Rect{X: Inches(x), Y: Inches(y), CX: Inches(w), CY: Inches(h)}
}

type relationships struct {
	XMLName xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Rels    []relationship `xml:"Relationship"`
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

func (r relationships) byID(id string) (relationship, bool) {
	for _, rel := range r.Rels {
		if rel.ID == id {
			return rel, true
		}
	}
	return relationship{}, false
}

func (r relationships) firstOfType(t string) (relationship, bool) {
	for _, rel := range r.Rels {
		if rel.Type == t {
			return rel, true
		}
	}
	return relationship{}, false
}

// maxID returns the highest numeric suffix of the rIdN identifiers.
func (r relationships) maxID() int {
	n := 0
	for _, rel := range r.Rels {
		if v, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId")); err == nil && v > n {
			n = v
		}
	}
	return n
}

type contentTypes struct {
	XMLName   xml.Name     `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []ctDefault  `xml:"Default"`
	Overrides []ctOverride `xml:"Override"`
}

type ctDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

func (c *contentTypes) ensureDefault(ext, ct string) {
	for _, d := range c.Defaults {
		if strings.EqualFold(d.Extension, ext) {
			return
		}
	}
	c.Defaults = append(c.Defaults, ctDefault{Extension: ext, ContentType: ct})
}

type xPresentation struct {
	Masters struct {
		IDs []struct {
			RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sldMasterId"`
	} `xml:"sldMasterIdLst"`
	Size *struct {
		CX int64 `xml:"cx,attr"`
		CY int64 `xml:"cy,attr"`
	} `xml:"sldSz"`
}

type xMaster struct {
	CSld    xCSld `xml:"cSld"`
	Layouts struct {
		IDs []struct {
			RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sldLayoutId"`
	} `xml:"sldLayoutIdLst"`
}

type xLayout struct {
	CSld xCSld `xml:"cSld"`
}

type xCSld struct {
	Name   string  `xml:"name,attr"`
	SpTree xSpTree `xml:"spTree"`
}

type xSpTree struct {
	Shapes []xShape  `xml:"sp"`
	Pics   []xPic    `xml:"pic"`
	Groups []xSpTree `xml:"grpSp"`
}

type xNonVisual struct {
	CNvPr struct {
		ID   int    `xml:"id,attr"`
		Name string `xml:"name,attr"`
	} `xml:"cNvPr"`
	NvPr struct {
		Ph *xPh `xml:"ph"`
	} `xml:"nvPr"`
}

type xPh struct {
	Type string `xml:"type,attr"`
	Idx  string `xml:"idx,attr"`
}

type xSpPr struct {
	Xfrm *struct {
		Off struct {
			X int64 `xml:"x,attr"`
			Y int64 `xml:"y,attr"`
		} `xml:"off"`
		Ext struct {
			CX int64 `xml:"cx,attr"`
			CY int64 `xml:"cy,attr"`
		} `xml:"ext"`
	} `xml:"xfrm"`
}

func (s xSpPr) rect() Rect {
	if s.Xfrm == nil {
		return Rect{}
	}
	return Rect{X: s.Xfrm.Off.X, Y: s.Xfrm.Off.Y, CX: s.Xfrm.Ext.CX, CY: s.Xfrm.Ext.CY}
}

type xShape struct {
	NvSpPr xNonVisual `xml:"nvSpPr"`
	SpPr   xSpPr      `xml:"spPr"`
}

type xPic struct {
	NvPicPr xNonVisual `xml:"nvPicPr"`
	SpPr    xSpPr      `xml:"spPr"`
}

// placeholders flattens the shape tree, groups included, in document order
// per kind: shapes first, then pictures.
func (t xSpTree) placeholders() []Placeholder {
	var out []Placeholder
	add := func(nv xNonVisual, sp xSpPr) {
		if nv.NvPr.Ph == nil {
			return
		}
		ph := Placeholder{Type: nv.NvPr.Ph.Type, Name: nv.CNvPr.Name, Rect: sp.rect()}
		if ph.Type == "" {
			ph.Type = "obj"
		}
		if nv.NvPr.Ph.Idx != "" {
			if v, err := strconv.Atoi(nv.NvPr.Ph.Idx); err == nil {
				ph.Idx = v
				ph.HasIdx = true
			}
		}
		out = append(out, ph)
	}
	for _, s := range t.Shapes {
		add(s.NvSpPr, s.SpPr)
	}
	for _, p := range t.Pics {
		add(p.NvPicPr, p.SpPr)
	}
	for _, g := range t.Groups {
		out = append(out, g.placeholders()...)
	}
	return out
}

// resolveTarget turns a relationship target into a package part name.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(path.Dir(source), target))
}

// relsPath returns the relationships part for a package part.
func relsPath(part string) string {
	if part == "" {
		return "_rels/.rels"
	}
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
