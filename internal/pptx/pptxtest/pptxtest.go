// Package pptxtest builds small but valid .pptx templates for tests.
package pptxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// NoIdx marks a placeholder without an idx attribute.
const NoIdx = -1

type Placeholder struct {
	Type string // "" is a content (obj) placeholder
	Idx  int
	Name string
	// Frame in EMU; nil inherits from the master.
	Frame *[4]int64
}

type Layout struct {
	Name         string
	Placeholders []Placeholder
}

// Slide size of generated templates, 16:9 at 13.333in.
const (
	Width  = 12192000
	Height = 6858000
)

// Title and body frames declared on the master.
var (
	MasterTitle = [4]int64{838200, 365125, 10515600, 1325563}
	MasterBody  = [4]int64{838200, 1825625, 10515600, 4351338}
)

// Template returns the bytes of a template with one master, the given
// layouts and a single sample slide built from the first layout.
func Template(layouts ...Layout) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name, body string) {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(header + body)); err != nil {
			panic(err)
		}
	}

	var ct strings.Builder
	ct.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	ct.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	ct.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	ct.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	ct.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	for i := range layouts {
		fmt.Fprintf(&ct, `<Override PartName="/ppt/slideLayouts/slideLayout%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`, i+1)
	}
	ct.WriteString(`<Override PartName="/ppt/slides/slide1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`)
	ct.WriteString(`</Types>`)
	add("[Content_Types].xml", ct.String())

	add("_rels/.rels", `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>`+
		`</Relationships>`)

	add("ppt/presentation.xml", fmt.Sprintf(`<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`+
		`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`+
		`<p:sldIdLst><p:sldId id="256" r:id="rId2"/></p:sldIdLst>`+
		`<p:sldSz cx="%d" cy="%d"/><p:notesSz cx="6858000" cy="9144000"/>`+
		`</p:presentation>`, nsA, nsR, nsP, Width, Height))
	add("ppt/_rels/presentation.xml.rels", `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>`+
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>`+
		`</Relationships>`)

	var master strings.Builder
	fmt.Fprintf(&master, `<p:sldMaster xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree>`, nsA, nsR, nsP)
	master.WriteString(sp(1, Placeholder{Type: "title", Idx: NoIdx, Name: "Title Placeholder 1", Frame: &MasterTitle}))
	master.WriteString(sp(2, Placeholder{Type: "body", Idx: 1, Name: "Text Placeholder 2", Frame: &MasterBody}))
	master.WriteString(`</p:spTree></p:cSld><p:sldLayoutIdLst>`)
	for i := range layouts {
		fmt.Fprintf(&master, `<p:sldLayoutId id="%d" r:id="rId%d"/>`, 2147483649+i, i+1)
	}
	master.WriteString(`</p:sldLayoutIdLst></p:sldMaster>`)
	add("ppt/slideMasters/slideMaster1.xml", master.String())

	var mrels strings.Builder
	mrels.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for i := range layouts {
		fmt.Fprintf(&mrels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout%d.xml"/>`, i+1, i+1)
	}
	mrels.WriteString(`</Relationships>`)
	add("ppt/slideMasters/_rels/slideMaster1.xml.rels", mrels.String())

	for i, l := range layouts {
		var b strings.Builder
		fmt.Fprintf(&b, `<p:sldLayout xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld name="%s"><p:spTree>`, nsA, nsR, nsP, l.Name)
		for j, ph := range l.Placeholders {
			b.WriteString(sp(j+2, ph))
		}
		b.WriteString(`</p:spTree></p:cSld></p:sldLayout>`)
		add(fmt.Sprintf("ppt/slideLayouts/slideLayout%d.xml", i+1), b.String())
		add(fmt.Sprintf("ppt/slideLayouts/_rels/slideLayout%d.xml.rels", i+1),
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
				`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="../slideMasters/slideMaster1.xml"/>`+
				`</Relationships>`)
	}

	add("ppt/slides/slide1.xml", fmt.Sprintf(`<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree/></p:cSld></p:sld>`, nsA, nsR, nsP))
	add("ppt/slides/_rels/slide1.xml.rels", `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`+
		`</Relationships>`)

	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Write stores Template(layouts...) under t.TempDir and returns its path.
func Write(t testing.TB, layouts ...Layout) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.pptx")
	if err := os.WriteFile(path, Template(layouts...), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Parts unzips a saved deck into a part name → content map.
func Parts(t testing.TB, b []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatal(err)
	}
	out := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		var data bytes.Buffer
		_, err = data.ReadFrom(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		out[f.Name] = data.String()
	}
	return out
}

const (
	header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	nsP    = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsA    = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

func sp(id int, ph Placeholder) string {
	var b strings.Builder
	name := ph.Name
	if name == "" {
		name = fmt.Sprintf("Placeholder %d", id)
	}
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr/><p:nvPr><p:ph`, id, name)
	if ph.Type != "" {
		fmt.Fprintf(&b, ` type="%s"`, ph.Type)
	}
	if ph.Idx != NoIdx {
		fmt.Fprintf(&b, ` idx="%d"`, ph.Idx)
	}
	b.WriteString(`/></p:nvPr></p:nvSpPr><p:spPr>`)
	if ph.Frame != nil {
		f := ph.Frame
		fmt.Fprintf(&b, `<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, f[0], f[1], f[2], f[3])
	}
	b.WriteString(`</p:spPr></p:sp>`)
	return b.String()
}

// Frame is a helper for Placeholder.Frame.
func Frame(x, y, cx, cy int64) *[4]int64 { return &[4]int64{x, y, cx, cy} }

// Courseware returns eighteen layouts whose placeholders match the default
// deck plan: numbered idx placeholders, titles and picture placeholders.
func Courseware() []Layout {
	title := Placeholder{Type: "title", Idx: NoIdx, Name: "Title"}
	title0 := Placeholder{Type: "title", Idx: 0, Name: "Title"}
	pic := Placeholder{Type: "pic", Idx: 20, Name: "Picture", Frame: Frame(6096000, 1371600, 5486400, 4572000)}
	body := func(idx int) Placeholder {
		return Placeholder{Type: "body", Idx: idx, Name: fmt.Sprintf("Text %d", idx)}
	}
	return []Layout{
		{Name: "Cover", Placeholders: []Placeholder{body(10), body(11), body(12), body(13)}},
		{Name: "Course System"},
		{Name: "Lecture Title", Placeholders: []Placeholder{title, pic}},
		{Name: "Objectives", Placeholders: []Placeholder{title, pic}},
		{Name: "Mind Map", Placeholders: []Placeholder{pic}},
		{Name: "Exam Analysis", Placeholders: []Placeholder{title0, body(11)}},
		{Name: "Section Title", Placeholders: []Placeholder{title, pic}},
		{Name: "Knowledge Point", Placeholders: []Placeholder{title0, body(12), pic}},
		{Name: "Discussion", Placeholders: []Placeholder{body(10)}},
		{Name: "Example", Placeholders: []Placeholder{body(10)}},
		{Name: "Variant", Placeholders: []Placeholder{body(10), body(11)}},
		{Name: "Stage Talk", Placeholders: []Placeholder{body(10)}},
		{Name: "Summary Transition"},
		{Name: "Summary", Placeholders: []Placeholder{pic}},
		{Name: "Quiz Transition"},
		{Name: "Quiz", Placeholders: []Placeholder{title}},
		{Name: "Homework", Placeholders: []Placeholder{body(10)}},
		{Name: "Farewell"},
	}
}

// PowerPointTitles drops the explicit idx="0" from title placeholders, the
// way PowerPoint itself writes them.
func PowerPointTitles(layouts []Layout) []Layout {
	out := make([]Layout, len(layouts))
	for i, l := range layouts {
		l.Placeholders = append([]Placeholder(nil), l.Placeholders...)
		for j, ph := range l.Placeholders {
			if ph.Type == "title" && ph.Idx == 0 {
				l.Placeholders[j].Idx = NoIdx
			}
		}
		out[i] = l
	}
	return out
}
