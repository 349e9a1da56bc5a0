// Package diagram draws the learning-objectives figure locally, for decks
// built without image generation or when it fails.
package diagram

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// ErrNoObjectives is returned when there is nothing to draw.
var ErrNoObjectives = errors.New("no learning objectives to draw")

// Levels are the cognitive levels recognised in objective text, in the order
// they are matched.
var Levels = []string{"识记", "理解", "操作", "运用", "迁移", "分析", "综合", "评价"}

const DefaultLevel = "理解"

// ParseLevel returns the first level keyword contained in text.
func ParseLevel(text string) string {
	for _, l := range Levels {
		if strings.Contains(text, l) {
			return l
		}
	}
	return DefaultLevel
}

// StripLevels removes every level keyword from text.
func StripLevels(text string) string {
	for _, l := range Levels {
		text = strings.ReplaceAll(text, l, "")
	}
	return strings.TrimSpace(text)
}

// pyramidColors fills pyramid layers; levels without an entry use the
// default level's colour.
var pyramidColors = map[string]string{
	"识记": "#7ED7C1",
	"理解": "#00A896",
	"操作": "#F39C12",
	"运用": "#F39C12",
	"迁移": "#F39C12",
}

type gradient struct{ from, to string }

// stairGradients colour the stairs and cards diagrams, one hue per level.
var stairGradients = map[string]gradient{
	"识记": {"#7ED7C1", "#5BC0BE"},
	"理解": {"#00A896", "#028090"},
	"操作": {"#F39C12", "#E67E22"},
	"运用": {"#E74C3C", "#C0392B"},
	"迁移": {"#9B59B6", "#8E44AD"},
	"分析": {"#3498DB", "#2980B9"},
	"综合": {"#1ABC9C", "#16A085"},
	"评价": {"#E67E22", "#D35400"},
}

// LevelColor returns the pyramid fill colour for a level as #RRGGBB.
func LevelColor(level string) string {
	if c, ok := pyramidColors[level]; ok {
		return c
	}
	return pyramidColors[DefaultLevel]
}

func levelGradient(level string) (string, string) {
	g, ok := stairGradients[level]
	if !ok {
		g = stairGradients[DefaultLevel]
	}
	return g.from, g.to
}

func parseHex(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("bad colour %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, fmt.Errorf("bad colour %q: %w", s, err)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

func mustHex(s string) color.NRGBA {
	c, err := parseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// row is one objective ready to draw.
type row struct {
	Level string
	Text  string
}

func rows(objectives []string) ([]row, error) {
	var out []row
	for _, o := range objectives {
		if o = strings.TrimSpace(o); o == "" {
			continue
		}
		out = append(out, row{Level: ParseLevel(o), Text: o})
	}
	if len(out) == 0 {
		return nil, ErrNoObjectives
	}
	return out, nil
}
