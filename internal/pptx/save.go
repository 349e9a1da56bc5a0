package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// sectionExtRe matches the p14 section list, which names the template's own
// slide ids.
var (
	sldIDLstRe   = regexp.MustCompile(`(?s)<p:sldIdLst\s*/>|<p:sldIdLst>.*?</p:sldIdLst>`)
	anchorRe     = regexp.MustCompile(`<p:sldSz\b|<p:notesSz\b`)
	sectionExtRe = regexp.MustCompile(`(?s)<p:ext uri="\{521415D9-36F7-43E2-AB2F-B90AF26B5E84\}">.*?</p:ext>`)
	emptyExtLst  = regexp.MustCompile(`<p:extLst>\s*</p:extLst>|<p:extLst\s*/>`)
)

// firstSlideID is the smallest id PowerPoint accepts in p:sldIdLst.
const firstSlideID = 256

// Save writes the deck to path. Slides and notes that shipped with the
// template are left out; everything else is copied unchanged.
func (d *Deck) Save(path string) error {
	b, err := d.Bytes()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Bytes renders the deck as a .pptx archive.
func (d *Deck) Bytes() ([]byte, error) {
	slideParts := make([]string, len(d.slides))
	for i := range d.slides {
		slideParts[i] = fmt.Sprintf("ppt/slides/slide%d.xml", i+1)
	}

	ct, err := d.contentTypes(slideParts)
	if err != nil {
		return nil, err
	}
	presRels, rids, err := d.presentationRels(slideParts)
	if err != nil {
		return nil, err
	}
	pres, err := d.presentationXML(rids)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name string, data []byte) error {
		w, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write zip entry %s: %w", name, err)
		}
		return nil
	}

	// [Content_Types].xml goes first, as Office writes it
	if err := write("[Content_Types].xml", ct); err != nil {
		return nil, err
	}
	for _, name := range d.order {
		switch {
		case name == "[Content_Types].xml", name == d.presPart, name == relsPath(d.presPart):
			continue
		case strings.HasPrefix(name, "ppt/slides/"), strings.HasPrefix(name, "ppt/notesSlides/"):
			continue
		}
		if err := write(name, d.parts[name]); err != nil {
			return nil, err
		}
	}
	if err := write(d.presPart, pres); err != nil {
		return nil, err
	}
	if err := write(relsPath(d.presPart), presRels); err != nil {
		return nil, err
	}
	for i, s := range d.slides {
		if err := write(slideParts[i], s.xml()); err != nil {
			return nil, err
		}
		if err := write(relsPath(slideParts[i]), s.relsXML()); err != nil {
			return nil, err
		}
	}
	for _, m := range d.media {
		if err := write(m.part, m.data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Deck) contentTypes(slideParts []string) ([]byte, error) {
	var ct contentTypes
	if err := xml.Unmarshal(d.parts["[Content_Types].xml"], &ct); err != nil {
		return nil, fmt.Errorf("parse content types: %w", err)
	}
	kept := ct.Overrides[:0]
	for _, o := range ct.Overrides {
		if strings.HasPrefix(o.PartName, "/ppt/slides/") || strings.HasPrefix(o.PartName, "/ppt/notesSlides/") {
			continue
		}
		kept = append(kept, o)
	}
	ct.Overrides = kept
	for _, m := range d.media {
		ct.ensureDefault(m.ext, m.ct)
	}
	for _, p := range slideParts {
		ct.Overrides = append(ct.Overrides, ctOverride{PartName: "/" + p, ContentType: ctSlide})
	}
	return marshal(ct)
}

// presentationRels drops the template's slide relationships and appends one
// per new slide, numbered after the highest id in use.
func (d *Deck) presentationRels(slideParts []string) ([]byte, []string, error) {
	rels, err := d.readRels(d.presPart)
	if err != nil {
		return nil, nil, err
	}
	next := rels.maxID() + 1
	kept := rels.Rels[:0]
	for _, r := range rels.Rels {
		if r.Type != relSlide {
			kept = append(kept, r)
		}
	}
	rels.Rels = kept
	rids := make([]string, len(slideParts))
	for i, p := range slideParts {
		rids[i] = fmt.Sprintf("rId%d", next+i)
		rels.Rels = append(rels.Rels, relationship{
			ID:     rids[i],
			Type:   relSlide,
			Target: strings.TrimPrefix(p, "ppt/"),
		})
	}
	b, err := marshal(rels)
	return b, rids, err
}

func (d *Deck) presentationXML(rids []string) ([]byte, error) {
	var lst strings.Builder
	if len(rids) > 0 {
		lst.WriteString(`<p:sldIdLst>`)
		for i, rid := range rids {
			fmt.Fprintf(&lst, `<p:sldId id="%d" r:id="%s"/>`, firstSlideID+i, rid)
		}
		lst.WriteString(`</p:sldIdLst>`)
	}
	src := string(d.parts[d.presPart])
	src = emptyExtLst.ReplaceAllLiteralString(sectionExtRe.ReplaceAllLiteralString(src, ""), "")
	if sldIDLstRe.MatchString(src) {
		return []byte(sldIDLstRe.ReplaceAllLiteralString(src, lst.String())), nil
	}
	loc := anchorRe.FindStringIndex(src)
	if loc == nil {
		return nil, fmt.Errorf("presentation has no p:sldSz to anchor the slide list")
	}
	return []byte(src[:loc[0]] + lst.String() + src[loc[0]:]), nil
}

func marshal(v any) ([]byte, error) {
	b, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xmlHeader), b...), nil
}
