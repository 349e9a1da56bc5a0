package imagegen

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/thywilljoshua/pdf-to-deck/internal/ai"
	"github.com/thywilljoshua/pdf-to-deck/internal/diagram"
)

// Job is one image request. Key identifies the result in Prefetch.
type Job struct {
	Key    string
	Prompt string
	Aspect ai.AspectRatio
}

type seasonEntry struct {
	key, words string
}

// seasons is ordered so that two-rune terms match before single runes.
var seasons = []seasonEntry{
	{"寒假", "winter season, snow, cool blue and white"},
	{"暑假", "summer season, sunshine, bright, warm"},
	{"春季", "spring season, cherry blossoms, fresh green, gentle"},
	{"秋季", "autumn season, maple leaves, warm orange and red"},
	{"春", "spring season, cherry blossoms, fresh green, gentle"},
	{"夏", "summer season, sunshine, bright, warm"},
	{"秋", "autumn season, maple leaves, warm orange and red"},
	{"冬", "winter season, snow, cool blue and white"},
}

const defaultSeasonWords = "minimalist, abstract, soft"

// SeasonKeywords maps a semester label such as "2025寒假" to scene keywords.
func SeasonKeywords(season string) string {
	for _, s := range seasons {
		if season == s.key {
			return s.words
		}
	}
	for _, s := range seasons {
		if strings.Contains(season, s.key) {
			return s.words
		}
	}
	return defaultSeasonWords
}

func CoverJob(subject, season string) Job {
	return Job{
		Key:    "cover",
		Aspect: ai.AspectWide,
		Prompt: fmt.Sprintf(`Elegant background for the cover page of a %s lesson. Scene: %s.
Very light pastel colours with a subtle gradient. Decoration only along the edges and corners.
The centre must stay empty and plain because the title is printed there. No text anywhere.`,
			subject, SeasonKeywords(season)),
	}
}

func LectureTitleJob(title string) Job {
	return Job{
		Key:    "lecture_title",
		Aspect: ai.AspectSquare,
		Prompt: fmt.Sprintf(`Minimalist modern illustration for the lecture "%s".
Clean, simple and academic, sized to sit beside the title text. No text.`, title),
	}
}

func ClassIntroJob(intro string) Job {
	return Job{
		Key:    "class_intro",
		Aspect: ai.AspectWide,
		Prompt: fmt.Sprintf(`Warm, inviting illustration to open a class. Topic: %s
Engaging but calm, suitable for a classroom screen. No text.`, ai.Truncate(intro, 100)),
	}
}

// KnowledgePointJob keys the job by position so equal titles stay distinct.
func KnowledgePointJob(i int, title, hint string) Job {
	return Job{
		Key:    fmt.Sprintf("kp_%d", i),
		Aspect: ai.AspectSquare,
		Prompt: fmt.Sprintf(`Simple diagram-like illustration for the concept "%s".
Hint: %s
Clean and clear, helps visualise the idea. No text.`, title, ai.Truncate(hint, 100)),
	}
}

func SummaryJob() Job {
	return Job{
		Key:    "summary",
		Aspect: ai.AspectWide,
		Prompt: "Illustration for a lesson recap slide titled 课堂总结 (本节课重点内容回顾): " +
			"organised notes, checkmarks and a lightbulb, calm colours, no text.",
	}
}

type theme struct {
	name, elements, style string
}

var objectiveThemes = []theme{
	{"学习之旅", "mountain climbing, path with milestones, treasure chest at the top, adventure map", "hand-drawn adventure map"},
	{"知识树", "tree with roots and branches, leaves for levels, fruits as achievements", "botanical illustration with hand-drawn details"},
	{"齿轮系统", "interconnected gears, arrows showing flow", "technical sketch with vintage aesthetics"},
	{"建筑蓝图", "building blocks, scaffolding, blueprint grid", "architectural sketch with hand-drawn annotations"},
	{"太空探索", "planets, rockets, stars, space station", "whimsical space doodles"},
	{"海洋深度", "ocean layers, submarine, coral reef, treasure", "nautical illustration with watercolour"},
	{"时间线", "timeline with icons, clock, calendar pages, milestone markers", "vintage timeline infographic"},
	{"书籍堆叠", "stacked books, bookmarks, reading glasses, quill pen", "literary sketch"},
}

// ObjectivesTheme picks a theme from the objectives text, so rebuilding the
// same course asks for the same picture.
func ObjectivesTheme(objectives []string) string {
	return pickTheme(objectives).name
}

func pickTheme(objectives []string) theme {
	h := fnv.New32a()
	for _, o := range objectives {
		h.Write([]byte(o))
	}
	return objectiveThemes[int(h.Sum32()%uint32(len(objectiveThemes)))]
}

func LearningObjectivesJob(objectives []string) Job {
	th := pickTheme(objectives)
	var b strings.Builder
	for i, o := range objectives {
		fmt.Fprintf(&b, "Level %d (%s): %s\n", i+1, diagram.ParseLevel(o), o)
	}
	return Job{
		Key:    "objectives",
		Aspect: ai.AspectWide,
		Prompt: fmt.Sprintf(`Hand-drawn educational poster showing a hierarchy of learning objectives.
Theme: %s. Visual elements: %s. Style: %s.
Show %d levels with a clear progression from level 1 upward, drawn with arrows and connectors.
Chinese text must be legible:
%s
Warm pastel palette, small doodles of books, pencils and stars in the margins.`,
			th.name, th.elements, th.style, len(objectives), b.String()),
	}
}
