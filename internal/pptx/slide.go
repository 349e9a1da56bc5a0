package pptx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PlaceholderRef selects a layout placeholder by idx, or by type when Idx is
// nil. Type "title" also matches a centred title.
type PlaceholderRef struct {
	Idx  *int   `yaml:"idx,omitempty" json:"idx,omitempty"`
	Type string `yaml:"type,omitempty" json:"type,omitempty"`
}

func Idx(n int) PlaceholderRef { return PlaceholderRef{Idx: &n} }

func Type(t string) PlaceholderRef { return PlaceholderRef{Type: t} }

func (r PlaceholderRef) IsZero() bool { return r.Idx == nil && r.Type == "" }

func (r PlaceholderRef) String() string {
	if r.Idx != nil {
		return fmt.Sprintf("idx=%d", *r.Idx)
	}
	return "type=" + r.Type
}

// matches follows the OOXML rule that a placeholder without an idx attribute
// has idx 0, which is how PowerPoint writes titles.
func (r PlaceholderRef) matches(ph Placeholder) bool {
	if r.Idx != nil {
		if !ph.HasIdx {
			return *r.Idx == 0
		}
		return ph.Idx == *r.Idx
	}
	switch r.Type {
	case "":
		return false
	case "title":
		return ph.Type == "title" || ph.Type == "ctrTitle"
	case "body":
		return ph.Type == "body" || ph.Type == "obj"
	default:
		return ph.Type == r.Type
	}
}

// TextStyle formats a free text box.
type TextStyle struct {
	SizePt float64
	Bold   bool
	Color  string // RRGGBB
	Align  string // l, ctr, r
}

type shapeKind int

const (
	kindPlaceholder shapeKind = iota
	kindPicture
	kindTextBox
)

type shape struct {
	kind  shapeKind
	ph    Placeholder
	text  *string
	style TextStyle
	rect  Rect
	relID string
	name  string
}

// Slide is a slide under construction.
type Slide struct {
	deck     *Deck
	layout   *Layout
	Fallback bool

	background *shape
	shapes     []*shape
	imageRels  []imageRel
}

type imageRel struct {
	id string
	m  *media
}

func newSlide(d *Deck, l *Layout) *Slide {
	s := &Slide{deck: d, layout: l}
	for _, ph := range l.Placeholders {
		switch ph.Type {
		case "dt", "ftr", "sldNum", "hdr":
			continue
		}
		s.shapes = append(s.shapes, &shape{kind: kindPlaceholder, ph: ph, name: ph.Name})
	}
	return s
}

// LayoutIndex returns the index of the layout the slide was built from.
func (s *Slide) LayoutIndex() int { return s.layout.Index }

func (s *Slide) find(ref PlaceholderRef) (*shape, int) {
	for i, sh := range s.shapes {
		if sh.kind == kindPlaceholder && ref.matches(sh.ph) {
			return sh, i
		}
	}
	return nil, -1
}

// HasPlaceholder reports whether ref resolves on this slide.
func (s *Slide) HasPlaceholder(ref PlaceholderRef) bool {
	sh, _ := s.find(ref)
	return sh != nil
}

// SetText fills a placeholder. Each line of text becomes a paragraph.
func (s *Slide) SetText(ref PlaceholderRef, text string) error {
	sh, _ := s.find(ref)
	if sh == nil {
		return fmt.Errorf("%w: %s on layout %d", ErrPlaceholderNotFound, ref, s.layout.Index)
	}
	sh.text = &text
	return nil
}

// SetPicture replaces a placeholder with a picture occupying the same frame.
// The picture keeps its aspect ratio and is centred in the frame.
func (s *Slide) SetPicture(ref PlaceholderRef, img []byte) error {
	sh, i := s.find(ref)
	if sh == nil {
		return fmt.Errorf("%w: %s on layout %d", ErrPlaceholderNotFound, ref, s.layout.Index)
	}
	frame := sh.ph.Rect
	if frame.Empty() {
		frame = Rect{CX: s.deck.width, CY: s.deck.height}
	}
	pic, err := s.picture(img, fitRect(img, frame), sh.ph.Name)
	if err != nil {
		return err
	}
	s.shapes[i] = pic
	return nil
}

// AddImage places a picture at rect, on top of everything added so far.
func (s *Slide) AddImage(img []byte, rect Rect) error {
	pic, err := s.picture(img, fitRect(img, rect), "")
	if err != nil {
		return err
	}
	s.shapes = append(s.shapes, pic)
	return nil
}

// SetBackground stretches img over the whole slide, behind every shape.
func (s *Slide) SetBackground(img []byte) error {
	pic, err := s.picture(img, Rect{CX: s.deck.width, CY: s.deck.height}, "Background")
	if err != nil {
		return err
	}
	s.background = pic
	return nil
}

// AddTextBox adds a free text box.
func (s *Slide) AddTextBox(text string, rect Rect, style TextStyle) {
	s.shapes = append(s.shapes, &shape{kind: kindTextBox, text: &text, rect: rect, style: style})
}

func (s *Slide) picture(img []byte, rect Rect, name string) (*shape, error) {
	m, err := s.deck.addMedia(img)
	if err != nil {
		return nil, err
	}
	id := fmt.Sprintf("rId%d", len(s.imageRels)+2) // rId1 is the layout
	s.imageRels = append(s.imageRels, imageRel{id: id, m: m})
	return &shape{kind: kindPicture, rect: rect, relID: id, name: name}, nil
}

var imageContentTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"webp": "image/webp",
}

func (d *Deck) addMedia(img []byte) (*media, error) {
	if len(img) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	for _, m := range d.media {
		if bytes.Equal(m.data, img) {
			return m, nil
		}
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("unsupported image: %w", err)
	}
	ct, ok := imageContentTypes[format]
	if !ok {
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	m := &media{
		part: fmt.Sprintf("ppt/media/deck_image%d.%s", len(d.media)+1, format),
		ext:  format,
		ct:   ct,
		data: img,
	}
	d.media = append(d.media, m)
	return m, nil
}

// fitRect shrinks frame to the image's aspect ratio, centred.
func fitRect(img []byte, frame Rect) Rect {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 || frame.Empty() {
		return frame
	}
	imgRatio := float64(cfg.Width) / float64(cfg.Height)
	frameRatio := float64(frame.CX) / float64(frame.CY)
	out := frame
	if imgRatio > frameRatio {
		out.CY = int64(float64(frame.CX) / imgRatio)
		out.Y += (frame.CY - out.CY) / 2
	} else {
		out.CX = int64(float64(frame.CY) * imgRatio)
		out.X += (frame.CX - out.CX) / 2
	}
	return out
}

// xml renders the slide part.
func (s *Slide) xml() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sld xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">`)
	b.WriteString(`<p:cSld><p:spTree>`)
	b.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)
	id := 2
	if s.background != nil {
		writeShape(&b, s.background, id)
		id++
	}
	for _, sh := range s.shapes {
		writeShape(&b, sh, id)
		id++
	}
	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	b.WriteString(`</p:sld>`)
	return []byte(b.String())
}

func (s *Slide) relsXML() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="` + nsRel + `">`)
	fmt.Fprintf(&b, `<Relationship Id="rId1" Type="%s" Target="%s"/>`, relSlideLayout, escape(relativeFromSlides(s.layout.Part)))
	for _, r := range s.imageRels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, relImage, escape(relativeFromSlides(r.m.part)))
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

// relativeFromSlides makes a ppt/ part reachable from ppt/slides/.
func relativeFromSlides(part string) string {
	return "../" + strings.TrimPrefix(part, "ppt/")
}

var textless = map[string]bool{"pic": true, "chart": true, "tbl": true, "dgm": true, "media": true, "clipArt": true}

func writeShape(b *strings.Builder, sh *shape, id int) {
	switch sh.kind {
	case kindPlaceholder:
		name := sh.name
		if name == "" {
			name = fmt.Sprintf("Placeholder %d", id)
		}
		fmt.Fprintf(b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr>`, id, escape(name))
		b.WriteString(`<p:ph`)
		if sh.ph.Type != "obj" {
			fmt.Fprintf(b, ` type="%s"`, escape(sh.ph.Type))
		}
		if sh.ph.HasIdx {
			fmt.Fprintf(b, ` idx="%d"`, sh.ph.Idx)
		}
		b.WriteString(`/></p:nvPr></p:nvSpPr><p:spPr/>`)
		if !textless[sh.ph.Type] {
			b.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/>`)
			writeParagraphs(b, sh.text, TextStyle{})
			b.WriteString(`</p:txBody>`)
		}
		b.WriteString(`</p:sp>`)
	case kindPicture:
		name := sh.name
		if name == "" {
			name = fmt.Sprintf("Picture %d", id)
		}
		fmt.Fprintf(b, `<p:pic><p:nvPicPr><p:cNvPr id="%d" name="%s"/><p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`, id, escape(name))
		fmt.Fprintf(b, `<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`, sh.relID)
		b.WriteString(`<p:spPr>`)
		writeXfrm(b, sh.rect)
		b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`)
	case kindTextBox:
		fmt.Fprintf(b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="TextBox %d"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr><p:spPr>`, id, id)
		writeXfrm(b, sh.rect)
		b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`)
		b.WriteString(`<p:txBody><a:bodyPr wrap="square" rtlCol="0"><a:normAutofit/></a:bodyPr><a:lstStyle/>`)
		writeParagraphs(b, sh.text, sh.style)
		b.WriteString(`</p:txBody></p:sp>`)
	}
}

func writeXfrm(b *strings.Builder, r Rect) {
	fmt.Fprintf(b, `<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, r.X, r.Y, r.CX, r.CY)
}

func writeParagraphs(b *strings.Builder, text *string, st TextStyle) {
	if text == nil {
		b.WriteString(`<a:p><a:endParaRPr lang="zh-CN"/></a:p>`)
		return
	}
	lines := strings.Split(strings.ReplaceAll(*text, "\r\n", "\n"), "\n")
	for _, ln := range lines {
		b.WriteString(`<a:p>`)
		if st.Align != "" {
			fmt.Fprintf(b, `<a:pPr algn="%s"/>`, escape(st.Align))
		}
		if ln == "" {
			b.WriteString(`<a:endParaRPr lang="zh-CN"/></a:p>`)
			continue
		}
		b.WriteString(`<a:r>`)
		writeRunProps(b, st)
		fmt.Fprintf(b, `<a:t>%s</a:t></a:r></a:p>`, escape(ln))
	}
}

func writeRunProps(b *strings.Builder, st TextStyle) {
	b.WriteString(`<a:rPr lang="zh-CN" altLang="en-US"`)
	if st.SizePt > 0 {
		fmt.Fprintf(b, ` sz="%d"`, int(st.SizePt*100))
	}
	if st.Bold {
		b.WriteString(` b="1"`)
	}
	if st.Color == "" {
		b.WriteString(` dirty="0"/>`)
		return
	}
	fmt.Fprintf(b, ` dirty="0"><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:rPr>`, escape(strings.TrimPrefix(st.Color, "#")))
}
