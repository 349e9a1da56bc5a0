package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/pdf-to-deck/internal/deck"
	"github.com/thywilljoshua/pdf-to-deck/internal/pptx"
	"github.com/thywilljoshua/pdf-to-deck/internal/pptx/pptxtest"
)

const sampleCourse = "../../internal/course/testdata/course.json"

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("PDF2DECK_AI_PROVIDER", "off")
	t.Setenv("PDF2DECK_LOG_LEVEL", "error")
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestLayoutsListsTemplate(t *testing.T) {
	tpl := pptxtest.Write(t, pptxtest.Courseware()...)
	out, _, err := run(t, "layouts", tpl)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 19)
	assert.True(t, strings.HasPrefix(lines[0], "INDEX"))
	assert.Contains(t, lines[1], "Cover")
	assert.Contains(t, lines[1], "10:body 11:body 12:body 13:body")
	assert.Contains(t, lines[6], "0:title 11:body")

	out, _, err = run(t, "layouts", "--json", tpl)
	require.NoError(t, err)
	var layouts []pptx.Layout
	require.NoError(t, json.Unmarshal([]byte(out), &layouts))
	assert.Len(t, layouts, 18)
	assert.Equal(t, "Farewell", layouts[17].Name)
}

func TestPyramidWritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "obj.png")
	_, _, err := run(t, "pyramid", "--style", "stairs", "-o", out, "识记概念", "运用方法")
	require.NoError(t, err)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")))

	_, _, err = run(t, "pyramid", "--style", "cards", "--width", "960", "--height", "540", "-o", out, "识记概念")
	require.NoError(t, err)
	b, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")))

	_, _, err = run(t, "pyramid", "--style", "cone", "-o", out, "x")
	assert.EqualError(t, err, `unknown style "cone" (pyramid|stairs|cards)`)
}

func TestBuildFromCourseJSON(t *testing.T) {
	dir := t.TempDir()
	tpl := pptxtest.Write(t, pptxtest.Courseware()...)
	deckPath := filepath.Join(dir, "lecture.pptx")

	out, _, err := run(t, "build", sampleCourse,
		"--out", dir,
		"--template", tpl,
		"--output", deckPath,
		"--cover-name", "高中语文_高一_2025寒假_小组课_张三.pdf",
	)
	require.NoError(t, err)

	var res deck.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, deckPath, res.Path)
	assert.FileExists(t, deckPath)
	assert.Equal(t, deck.Cover, res.Sections[0])

	parts := pptxtest.Parts(t, mustRead(t, deckPath))
	assert.Contains(t, parts["ppt/slides/slide1.xml"], "主讲人：张三老师")
}

func TestBuildRejectsConflictingCoverFlags(t *testing.T) {
	_, _, err := run(t, "build", sampleCourse, "--source-pdf", "a.pdf", "--cover-name", "b.pdf")
	assert.EqualError(t, err, "--source-pdf and --cover-name are mutually exclusive")
}

func TestBuildNeedsTemplate(t *testing.T) {
	t.Setenv("PDF2DECK_DECK_TEMPLATE", "")
	_, _, err := run(t, "build", sampleCourse, "--out", t.TempDir())
	assert.ErrorContains(t, err, "deck.template is required")
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}
