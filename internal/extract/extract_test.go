package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rpdf "rsc.io/pdf"
)

var a4 = pageBox{0, 0, 595, 842}

func TestTrackerPlacesImageInTopLeftSpace(t *testing.T) {
	tr := newPlacementTracker(a4)
	tr.save()
	// 400x200 image whose bottom-left corner sits at (100, 300)
	tr.concat(matrix{400, 0, 0, 200, 100, 300})
	tr.image("Im1")
	tr.restore()

	require.Len(t, tr.placed, 1)
	r := tr.placed[0].Rect
	assert.InDelta(t, 100, r.X0, 1e-9)
	assert.InDelta(t, 500, r.X1, 1e-9)
	assert.InDelta(t, 842-500, r.Y0, 1e-9)
	assert.InDelta(t, 842-300, r.Y1, 1e-9)
	assert.Equal(t, identity, tr.ctm)
}

func TestTrackerComposesNestedTransforms(t *testing.T) {
	tr := newPlacementTracker(a4)
	tr.concat(matrix{1, 0, 0, 1, 50, 60}) // translate
	tr.save()
	tr.concat(matrix{10, 0, 0, 20, 0, 0}) // scale, applied first
	tr.image("Im0")
	tr.restore()
	tr.image("Im0") // repeated draw ignored

	require.Len(t, tr.placed, 1)
	r := tr.placed[0].Rect
	assert.InDelta(t, 50, r.X0, 1e-9)
	assert.InDelta(t, 60, r.X1, 1e-9)
	assert.InDelta(t, 20, r.Height(), 1e-9)
}

func TestRestoreOnEmptyStackKeepsState(t *testing.T) {
	tr := newPlacementTracker(a4)
	tr.concat(matrix{2, 0, 0, 2, 0, 0})
	tr.restore()
	assert.Equal(t, matrix{2, 0, 0, 2, 0, 0}, tr.ctm)
}

func TestToTopLeftHonoursMediaBoxOffset(t *testing.T) {
	box := pageBox{10, 20, 610, 820}
	r := box.toTopLeft(110, 320, 210, 420)
	assert.Equal(t, Rect{X0: 100, Y0: 400, X1: 200, Y1: 500}, r)
	assert.Equal(t, 600.0, box.Width())
}

func TestClassify(t *testing.T) {
	th := DefaultThresholds
	const w, h = 600.0, 800.0

	tests := []struct {
		name string
		rect Rect
		want bool
	}{
		{"middle band figure", Rect{X0: 60, Y0: 320, X1: 480, Y1: 580}, true},
		{"header logo", Rect{X0: 20, Y0: 20, X1: 120, Y1: 80}, false},
		{"full page scan", Rect{X0: 0, Y0: 0, X1: 600, Y1: 800}, false},
		{"too narrow", Rect{X0: 200, Y0: 320, X1: 400, Y1: 700}, false},
		{"too low on page", Rect{X0: 60, Y0: 600, X1: 480, Y1: 790}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := th.Classify(tt.rect, w, h)
			assert.Equal(t, tt.want, c.IsMindMap, "top=%.2f width=%.2f area=%.2f", c.TopRatio, c.WidthRatio, c.AreaRatio)
		})
	}
	assert.False(t, th.Classify(Rect{X1: 1, Y1: 1}, 0, 0).IsMindMap)
}

func TestClassifyPlacementsLastMatchWins(t *testing.T) {
	box := pageBox{0, 0, 600, 800}
	placed := []Placement{
		{Name: "A", Rect: Rect{X0: 60, Y0: 300, X1: 480, Y1: 560}, Order: 0},
		{Name: "logo", Rect: Rect{X0: 0, Y0: 0, X1: 50, Y1: 50}, Order: 1},
		{Name: "B", Rect: Rect{X0: 60, Y0: 350, X1: 500, Y1: 600}, Order: 2},
	}
	cands, pick := classifyPlacements(DefaultThresholds, 1, placed, box)
	require.Len(t, cands, 3)
	require.Equal(t, 2, pick)
	assert.Equal(t, "B", cands[pick].Name)
	assert.Equal(t, 1, cands[pick].Page)

	_, pick = classifyPlacements(DefaultThresholds, 1, placed[1:2], box)
	assert.Equal(t, -1, pick)
}

func TestJoinRunsGroupsLinesTopToBottom(t *testing.T) {
	runs := []rpdf.Text{
		{S: "world", X: 140, Y: 700, W: 30, FontSize: 12},
		{S: "Second", X: 100, Y: 680, W: 40, FontSize: 12},
		{S: "Hello", X: 100, Y: 700.5, W: 30, FontSize: 12},
		{S: "知", X: 100, Y: 660, W: 12, FontSize: 12},
		{S: "识", X: 112, Y: 660, W: 12, FontSize: 12},
	}
	assert.Equal(t, "Hello world\nSecond\n知识", joinRuns(runs))
	assert.Empty(t, joinRuns(nil))
}

func TestJoinPagesAndMarkers(t *testing.T) {
	text := joinPages([]string{"one", "", "three"})
	assert.True(t, strings.HasPrefix(text, PageMarker(1)+"\none"))
	assert.Contains(t, text, PageMarker(3)+"\nthree")
	assert.Equal(t, "onethree", stripMarkers(text))
	assert.Empty(t, strings.TrimSpace(stripMarkers(joinPages([]string{"", ""}))))
}

func TestSaveMindMapFallsBackToOnlyImage(t *testing.T) {
	dir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\nrest")
	imgs := map[string]rawImage{"Im7": {Name: "Im7", Ext: "png", Data: png}}

	mm, err := saveMindMap(imgs, Candidate{Placement: Placement{Name: "X0"}, Page: 1}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "extracted_images", "mindmap.png"), mm.Path)
	got, err := os.ReadFile(mm.Path)
	require.NoError(t, err)
	assert.Equal(t, png, got)

	imgs["Im8"] = rawImage{Name: "Im8", Ext: "jpeg", Data: []byte{0xFF, 0xD8}}
	_, err = saveMindMap(imgs, Candidate{Placement: Placement{Name: "X0"}, Page: 1}, dir)
	assert.Error(t, err)

	mm, err = saveMindMap(imgs, Candidate{Placement: Placement{Name: "Im8"}, Page: 1}, dir)
	require.NoError(t, err)
	assert.Equal(t, "jpg", mm.Extension)
}

func TestSniffExt(t *testing.T) {
	assert.Equal(t, "png", sniffExt([]byte("\x89PNG....")))
	assert.Equal(t, "jpg", sniffExt([]byte{0xFF, 0xD8, 0xFF}))
	assert.Equal(t, "", sniffExt([]byte("GIF8")))
}
