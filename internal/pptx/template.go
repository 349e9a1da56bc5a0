// Package pptx fills a PowerPoint template. It reads the first slide master's
// layouts, creates slides from them and writes a new .pptx next to the
// template's own parts.
package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrLayoutNotFound      = errors.New("layout not found")
	ErrPlaceholderNotFound = errors.New("placeholder not found")
)

// Placeholder is a placeholder shape declared by a layout.
type Placeholder struct {
	Idx    int    `json:"idx"`
	HasIdx bool   `json:"-"`
	Type   string `json:"type"` // title, ctrTitle, body, pic, obj, ...
	Name   string `json:"name"`
	Rect   Rect   `json:"-"` // resolved through the master when the layout omits it
}

// Layout is one slide layout, indexed by its position in the master.
type Layout struct {
	Index        int           `json:"index"`
	Name         string        `json:"name"`
	Part         string        `json:"part"`
	Placeholders []Placeholder `json:"placeholders"`
}

// Deck is an opened template plus the slides added to it.
type Deck struct {
	parts    map[string][]byte
	order    []string
	presPart string
	layouts  []*Layout
	width    int64
	height   int64

	slides []*Slide
	media  []*media
}

type media struct {
	part string // ppt/media/deck_imageN.ext
	ext  string
	ct   string
	data []byte
}

// Open reads a .pptx or .potx template.
func Open(path string) (*Deck, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return OpenBytes(b)
}

func OpenBytes(b []byte) (*Deck, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	d := &Deck{parts: map[string][]byte{}}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		d.parts[f.Name] = data
		d.order = append(d.order, f.Name)
	}
	if err := d.load(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Deck) readRels(part string) (relationships, error) {
	var rels relationships
	b, ok := d.parts[relsPath(part)]
	if !ok {
		return rels, nil
	}
	if err := xml.Unmarshal(b, &rels); err != nil {
		return rels, fmt.Errorf("parse %s: %w", relsPath(part), err)
	}
	return rels, nil
}

func (d *Deck) load() error {
	root, err := d.readRels("")
	if err != nil {
		return err
	}
	d.presPart = "ppt/presentation.xml"
	if rel, ok := root.firstOfType(relOfficeDoc); ok {
		d.presPart = resolveTarget("", rel.Target)
	}
	presXML, ok := d.parts[d.presPart]
	if !ok {
		return fmt.Errorf("template has no %s", d.presPart)
	}
	var pres xPresentation
	if err := xml.Unmarshal(presXML, &pres); err != nil {
		return fmt.Errorf("parse presentation: %w", err)
	}
	d.width, d.height = Inches(10), Inches(7.5)
	if pres.Size != nil && pres.Size.CX > 0 && pres.Size.CY > 0 {
		d.width, d.height = pres.Size.CX, pres.Size.CY
	}

	presRels, err := d.readRels(d.presPart)
	if err != nil {
		return err
	}
	var masterRel relationship
	if len(pres.Masters.IDs) > 0 {
		masterRel, ok = presRels.byID(pres.Masters.IDs[0].RID)
	} else {
		masterRel, ok = presRels.firstOfType(relSlideMaster)
	}
	if !ok {
		return errors.New("template has no slide master")
	}
	masterPart := resolveTarget(d.presPart, masterRel.Target)
	var master xMaster
	if err := xml.Unmarshal(d.parts[masterPart], &master); err != nil {
		return fmt.Errorf("parse %s: %w", masterPart, err)
	}
	masterPhs := master.CSld.SpTree.placeholders()

	masterRels, err := d.readRels(masterPart)
	if err != nil {
		return err
	}
	var layoutParts []string
	for _, id := range master.Layouts.IDs {
		if rel, ok := masterRels.byID(id.RID); ok {
			layoutParts = append(layoutParts, resolveTarget(masterPart, rel.Target))
		}
	}
	if len(layoutParts) == 0 {
		// masters without a layout list still carry the relationships
		for _, rel := range masterRels.Rels {
			if rel.Type == relSlideLayout {
				layoutParts = append(layoutParts, resolveTarget(masterPart, rel.Target))
			}
		}
	}

	for i, part := range layoutParts {
		b, ok := d.parts[part]
		if !ok {
			return fmt.Errorf("layout %s missing from template", part)
		}
		var lx xLayout
		if err := xml.Unmarshal(b, &lx); err != nil {
			return fmt.Errorf("parse %s: %w", part, err)
		}
		l := &Layout{Index: i, Name: lx.CSld.Name, Part: part, Placeholders: lx.CSld.SpTree.placeholders()}
		for j := range l.Placeholders {
			if l.Placeholders[j].Rect.Empty() {
				l.Placeholders[j].Rect = inheritRect(l.Placeholders[j], masterPhs)
			}
		}
		d.layouts = append(d.layouts, l)
	}
	return nil
}

// masterType maps a layout placeholder type onto the master placeholder it
// inherits from.
func masterType(t string) string {
	switch t {
	case "ctrTitle", "title":
		return "title"
	case "dt", "ftr", "sldNum":
		return t
	default:
		return "body"
	}
}

func inheritRect(ph Placeholder, master []Placeholder) Rect {
	if ph.HasIdx {
		for _, m := range master {
			if m.HasIdx && m.Idx == ph.Idx && !m.Rect.Empty() {
				return m.Rect
			}
		}
	}
	want := masterType(ph.Type)
	for _, m := range master {
		if m.Type == want && !m.Rect.Empty() {
			return m.Rect
		}
	}
	return Rect{}
}

// Layouts returns the master's layouts in order.
func (d *Deck) Layouts() []Layout {
	out := make([]Layout, len(d.layouts))
	for i, l := range d.layouts {
		out[i] = *l
	}
	return out
}

// Size returns the slide size in EMU.
func (d *Deck) Size() (width, height int64) { return d.width, d.height }

func (d *Deck) SlideCount() int { return len(d.slides) }

// fallbackLayout is used for out-of-range indices: a content layout sits at
// index 1 in the stock PowerPoint master.
const fallbackLayout = 1

// AddSlide appends a slide built from the layout at index. An index outside
// the master's layouts falls back to layout 1, or 0 for single-layout masters;
// Slide.Fallback reports it.
func (d *Deck) AddSlide(index int) (*Slide, error) {
	if len(d.layouts) == 0 {
		return nil, ErrLayoutNotFound
	}
	fallback := false
	if index < 0 || index >= len(d.layouts) {
		fallback = true
		index = fallbackLayout
		if index >= len(d.layouts) {
			index = 0
		}
	}
	s := newSlide(d, d.layouts[index])
	s.Fallback = fallback
	d.slides = append(d.slides, s)
	return s, nil
}

// Layout returns a layout by index.
func (d *Deck) Layout(index int) (Layout, error) {
	if index < 0 || index >= len(d.layouts) {
		return Layout{}, fmt.Errorf("%w: index %d of %d", ErrLayoutNotFound, index, len(d.layouts))
	}
	return *d.layouts[index], nil
}

// LayoutByName finds a layout by its case-insensitive name.
func (d *Deck) LayoutByName(name string) (Layout, error) {
	for _, l := range d.layouts {
		if strings.EqualFold(l.Name, name) {
			return *l, nil
		}
	}
	return Layout{}, fmt.Errorf("%w: %q", ErrLayoutNotFound, name)
}
