package diagram

import (
	"bytes"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []string{
	"识记名著拓展题出题形式",
	"理解《乡土中国》《红楼梦》相关概念",
	"运用答题思路，解答名著拓展分析题",
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "识记", ParseLevel("识记名著拓展题出题形式"))
	assert.Equal(t, "运用", ParseLevel("能够运用答题思路"))
	assert.Equal(t, "理解", ParseLevel("掌握基本概念"))
	// first keyword in level order wins, not first in the sentence
	assert.Equal(t, "理解", ParseLevel("运用并理解"))
}

func TestStripLevels(t *testing.T) {
	assert.Equal(t, "名著拓展题出题形式", StripLevels("识记名著拓展题出题形式"))
	assert.Equal(t, "并", StripLevels(" 运用并理解 "))
}

func TestLevelColor(t *testing.T) {
	assert.Equal(t, "#7ED7C1", LevelColor("识记"))
	assert.Equal(t, "#00A896", LevelColor("理解"))
	assert.Equal(t, "#F39C12", LevelColor("迁移"))
	assert.Equal(t, "#00A896", LevelColor("unknown"))
	assert.Equal(t, "#00A896", LevelColor("评价"))
}

func TestStairsGradientsDifferFromPyramid(t *testing.T) {
	tests := []struct {
		level, from, to string
	}{
		{"运用", "#E74C3C", "#C0392B"},
		{"迁移", "#9B59B6", "#8E44AD"},
		{"评价", "#E67E22", "#D35400"},
		{"unknown", "#00A896", "#028090"},
	}
	for _, tt := range tests {
		from, to := levelGradient(tt.level)
		assert.Equal(t, tt.from, from, tt.level)
		assert.Equal(t, tt.to, to, tt.level)
	}
}

func TestParseHex(t *testing.T) {
	c, err := parseHex("#FFA500")
	require.NoError(t, err)
	assert.Equal(t, uint8(0xFF), c.R)
	assert.Equal(t, uint8(0xA5), c.G)
	assert.Equal(t, uint8(0x00), c.B)
	_, err = parseHex("#FFF")
	assert.Error(t, err)
}

func TestPyramid(t *testing.T) {
	b, err := Pyramid(sample, Options{})
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())

	// top-right corner is untouched canvas
	r, g, bl, _ := img.At(790, 10).RGBA()
	assert.Equal(t, [3]uint32{0xFFFF, 0xFFFF, 0xFFFF}, [3]uint32{r, g, bl})

	// first layer is centred under the trophy at x=133 and filled with the 识记 colour
	want := mustHex(LevelColor("识记"))
	r, g, bl, _ = img.At(133, 115).RGBA()
	assert.Equal(t, [3]uint32{uint32(want.R) * 0x101, uint32(want.G) * 0x101, uint32(want.B) * 0x101}, [3]uint32{r, g, bl})
}

func TestStairsCustomSize(t *testing.T) {
	b, err := Stairs(sample, Options{Width: 960, Height: 540})
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 960, cfg.Width)
	assert.Equal(t, 540, cfg.Height)
}

func TestCards(t *testing.T) {
	b, err := Cards(sample, Options{})
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 1920, img.Bounds().Dx())
	assert.Equal(t, 1080, img.Bounds().Dy())

	rgb := func(x, y int) [3]uint32 {
		r, g, bl, _ := img.At(x, y).RGBA()
		return [3]uint32{r, g, bl}
	}
	hex := func(s string) [3]uint32 {
		c := mustHex(s)
		return [3]uint32{uint32(c.R) * 0x101, uint32(c.G) * 0x101, uint32(c.B) * 0x101}
	}
	// three cards of height 220 from y=200; body right of the label, label block on the left
	body, dark := levelGradient("识记")
	assert.Equal(t, hex(body), rgb(1700, 215))
	assert.Equal(t, hex(dark), rgb(160, 300))
	body, dark = levelGradient("运用")
	assert.Equal(t, hex(body), rgb(1700, 735))
	assert.Equal(t, hex(dark), rgb(160, 820))

	// the shadow only shows past the card's right edge
	shadow := rgb(1775, 300)
	assert.Less(t, shadow[0], uint32(0xFFFF))
	assert.Greater(t, shadow[0], uint32(0x8000))
	assert.Equal(t, [3]uint32{0xFFFF, 0xFFFF, 0xFFFF}, rgb(1900, 100))
}

func TestEmptyObjectives(t *testing.T) {
	_, err := Pyramid(nil, Options{})
	assert.ErrorIs(t, err, ErrNoObjectives)
	_, err = Stairs([]string{" ", ""}, Options{})
	assert.ErrorIs(t, err, ErrNoObjectives)
	_, err = Cards(nil, Options{})
	assert.ErrorIs(t, err, ErrNoObjectives)
}

func TestWrapLimitsLines(t *testing.T) {
	dc := gg.NewContext(100, 100)
	dc.SetFontFace((&Fonts{}).Face(13))
	lines := wrap(dc, "abcdefghijklmnopqrstuvwxyz", 7*5, 3)
	require.Len(t, lines, 3)
	assert.Equal(t, "abcde", lines[0])
	assert.Equal(t, "fghij", lines[1])
	assert.Equal(t, "klmn…", lines[2])

	assert.Equal(t, []string{"ab"}, wrap(dc, "ab", 100, 2))
}

func TestLoadFontsExplicitPathMustExist(t *testing.T) {
	_, err := LoadFonts(filepath.Join(t.TempDir(), "missing.ttf"))
	assert.Error(t, err)

	var nilFonts *Fonts
	assert.False(t, nilFonts.Scalable())
	assert.NotNil(t, nilFonts.Face(12))
}
