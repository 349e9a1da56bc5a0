package deck

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/pdf-to-deck/internal/ai"
	"github.com/thywilljoshua/pdf-to-deck/internal/course"
	"github.com/thywilljoshua/pdf-to-deck/internal/diagram"
	"github.com/thywilljoshua/pdf-to-deck/internal/imagegen"
	"github.com/thywilljoshua/pdf-to-deck/internal/pptx/pptxtest"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type pngImages struct {
	img   []byte
	calls atomic.Int32
}

func (p *pngImages) GenerateImage(ctx context.Context, prompt string, aspect ai.AspectRatio) ([]byte, error) {
	p.calls.Add(1)
	return p.img, nil
}

func sampleCourse() *course.Course {
	return &course.Course{
		LectureTitle:       "函数的概念",
		LearningObjectives: course.FlexList{"识记函数的定义", "理解定义域与值域", "运用函数解决问题"},
		ClassIntro:         "从生活中的对应关系说起",
		ExamAnalysis:       "高考常以选择题形式考查",
		KnowledgePoints: []course.KnowledgePoint{
			{
				Title:          "函数的定义",
				Content:        "设A、B是非空数集",
				Discussion:     "生活中有哪些函数关系？",
				ExampleMother:  "例1 判断下列对应是否为函数",
				ExampleVariant: "变式1",
			},
			{
				Title:   "定义域",
				Content: "使解析式有意义的x的集合",
				Method:  "列不等式组求解",
			},
		},
		QuizContent: "完成出门测第1-3题",
		Homework:    "课本习题1.2",
	}
}

func TestBuildWalksAllSections(t *testing.T) {
	dir := t.TempDir()
	tmpl := pptxtest.Write(t, pptxtest.Courseware()...)
	mm := filepath.Join(dir, "mindmap.png")
	require.NoError(t, os.WriteFile(mm, pngBytes(t, 40, 20), 0o644))

	c := sampleCourse()
	c.ExtractedImages = []course.Image{{Filename: "mindmap.png", Path: mm, IsMindmap: true}}
	cover := course.ParseCoverInfo("高中数学_高一_2025寒假_小组课_张三.pdf")

	gen := &pngImages{img: pngBytes(t, 30, 30)}
	a := New(imagegen.New(gen, imagegen.Options{Concurrency: 4}, zerolog.Nop()), zerolog.Nop())

	var progressed atomic.Int32
	out := filepath.Join(dir, "deck.pptx")
	res, err := a.Build(context.Background(), c, cover, Options{
		Template: tmpl,
		Output:   out,
		Progress: func(done, total int) { progressed.Add(1) },
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		Cover, CourseSystem, LectureTitle, Objectives, MindMap, ExamAnalysis,
		KPTitle, KPContent, Discussion, ExampleMother, ExampleVariant,
		KPTitle, KPContent, ExampleVariant,
		StageTalk, SummaryTransition, Summary, QuizTransition, Quiz, Homework, Farewell,
	}, res.Sections)
	assert.Equal(t, 21, res.Slides)
	assert.Zero(t, res.LayoutFallbacks)
	// cover, lecture title, objectives, class intro and two per knowledge point;
	// the summary reuses the mind map
	assert.Equal(t, int32(8), gen.calls.Load())
	assert.Equal(t, int32(8), progressed.Load())
	assert.Equal(t, 10, res.Images)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	parts := pptxtest.Parts(t, b)
	assert.Contains(t, parts["ppt/slides/slide1.xml"], "小组课 · 寒假课堂")
	assert.Contains(t, parts["ppt/slides/slide1.xml"], "主讲人：张三老师")
	assert.Contains(t, parts["ppt/slides/slide3.xml"], "函数的概念")
	assert.Contains(t, parts["ppt/slides/slide4.xml"], "本节课学习目标")
	assert.Contains(t, parts["ppt/slides/slide6.xml"], "高考常以选择题形式考查")
	assert.Contains(t, parts["ppt/slides/slide9.xml"], "生活中有哪些函数关系？")
	assert.Contains(t, parts["ppt/slides/slide14.xml"], "列不等式组求解")
	assert.Contains(t, parts["ppt/slides/slide19.xml"], "完成出门测第1-3题")
	assert.Contains(t, parts["ppt/slides/slide20.xml"], "课本习题1.2")
	assert.Contains(t, parts["ppt/slides/_rels/slide17.xml.rels"], "../media/")
}

func TestBuildWithoutAIDrawsObjectives(t *testing.T) {
	tmpl := pptxtest.Write(t, pptxtest.Courseware()...)
	c := &course.Course{LearningObjectives: course.FlexList{"理解A", "运用B"}}
	out := filepath.Join(t.TempDir(), "deck.pptx")

	res, err := New(nil, zerolog.Nop()).Build(context.Background(), c, course.CoverInfo{}, Options{
		Template:        tmpl,
		Output:          out,
		ObjectivesStyle: StylePyramid,
	})
	require.NoError(t, err)

	// one sample knowledge point, no mind map, no examples
	assert.Equal(t, []string{
		Cover, CourseSystem, LectureTitle, Objectives, ExamAnalysis,
		KPTitle, KPContent, Discussion,
		StageTalk, SummaryTransition, Summary, QuizTransition, Quiz, Homework, Farewell,
	}, res.Sections)
	assert.Equal(t, 1, res.Images)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	parts := pptxtest.Parts(t, b)
	assert.Contains(t, parts["ppt/slides/slide3.xml"], "本节课主题")
	assert.Contains(t, parts["ppt/slides/slide5.xml"], "暂无考情分析")
	assert.Contains(t, parts["ppt/slides/slide6.xml"], "示例知识点")
	assert.Contains(t, parts["ppt/slides/slide13.xml"], "请完成讲义上的测试题")
	assert.Contains(t, parts["ppt/slides/_rels/slide4.xml.rels"], "../media/deck_image1.png")
}

func TestCardsObjectivesStyle(t *testing.T) {
	tmpl := pptxtest.Write(t, pptxtest.Courseware()...)
	c := &course.Course{LearningObjectives: course.FlexList{"理解A", " ", "运用B"}}
	out := filepath.Join(t.TempDir(), "deck.pptx")

	res, err := New(nil, zerolog.Nop()).Build(context.Background(), c, course.CoverInfo{}, Options{
		Template:        tmpl,
		Output:          out,
		ObjectivesStyle: StyleCards,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Images)

	want, err := diagram.Cards([]string{"理解A", "运用B"}, diagram.Options{})
	require.NoError(t, err)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	parts := pptxtest.Parts(t, b)
	assert.Contains(t, parts["ppt/slides/_rels/slide4.xml.rels"], "../media/deck_image1.png")
	assert.Equal(t, string(want), parts["ppt/media/deck_image1.png"])
}

func TestFailedObjectivesArtFallsBackToPyramid(t *testing.T) {
	tmpl := pptxtest.Write(t, pptxtest.Courseware()...)
	c := &course.Course{LearningObjectives: course.FlexList{"识记A"}}
	a := New(imagegen.New(ai.Noop{}, imagegen.Options{}, zerolog.Nop()), zerolog.Nop())

	res, err := a.Build(context.Background(), c, course.CoverInfo{}, Options{
		Template: tmpl,
		Output:   filepath.Join(t.TempDir(), "deck.pptx"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Images)
}

func TestMissingLayoutsFallBack(t *testing.T) {
	tmpl := pptxtest.Write(t,
		pptxtest.Layout{Name: "Title Slide"},
		pptxtest.Layout{Name: "Title and Content", Placeholders: []pptxtest.Placeholder{
			{Type: "title", Idx: pptxtest.NoIdx},
			{Idx: 1},
		}},
	)
	out := filepath.Join(t.TempDir(), "deck.pptx")
	res, err := New(nil, zerolog.Nop()).Build(context.Background(), sampleCourse(), course.CoverInfo{}, Options{
		Template:        tmpl,
		Output:          out,
		ObjectivesStyle: StyleStairs,
	})
	require.NoError(t, err)
	// only the cover and course system layouts exist at their planned index
	assert.Equal(t, res.Slides-2, res.LayoutFallbacks)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	parts := pptxtest.Parts(t, b)
	// exam analysis body has no idx 11 on the fallback layout: it becomes a text box
	exam := parts["ppt/slides/slide5.xml"]
	assert.Contains(t, exam, "高考常以选择题形式考查")
	assert.Contains(t, exam, `txBox="1"`)
}

func TestNamedLayoutWinsOverIndex(t *testing.T) {
	tmpl := pptxtest.Write(t,
		pptxtest.Layout{Name: "Title Slide"},
		pptxtest.Layout{Name: "Title and Content"},
	)
	plan := DefaultPlan()
	farewell := plan.Sections[Farewell]
	farewell.LayoutName = "title slide"
	plan.Sections[Farewell] = farewell
	quiz := plan.Sections[Quiz]
	quiz.LayoutName = "Closing"
	plan.Sections[Quiz] = quiz

	res, err := New(nil, zerolog.Nop()).Build(context.Background(), sampleCourse(), course.CoverInfo{}, Options{
		Template:        tmpl,
		Output:          filepath.Join(t.TempDir(), "deck.pptx"),
		Plan:            plan,
		ObjectivesStyle: StylePyramid,
	})
	require.NoError(t, err)
	// cover, course system and the renamed farewell resolve; an unknown name
	// keeps the index, which is out of range here
	assert.Equal(t, res.Slides-3, res.LayoutFallbacks)
}

func TestTitlesWithoutIdxFillThePlaceholder(t *testing.T) {
	tmpl := pptxtest.Write(t, pptxtest.PowerPointTitles(pptxtest.Courseware())...)
	out := filepath.Join(t.TempDir(), "deck.pptx")
	res, err := New(nil, zerolog.Nop()).Build(context.Background(), sampleCourse(), course.CoverInfo{}, Options{
		Template:        tmpl,
		Output:          out,
		ObjectivesStyle: StylePyramid,
	})
	require.NoError(t, err)
	require.Equal(t, ExamAnalysis, res.Sections[4])
	require.Equal(t, KPContent, res.Sections[6])

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	parts := pptxtest.Parts(t, b)
	exam := parts["ppt/slides/slide5.xml"]
	assert.Contains(t, exam, `<p:ph type="title"/></p:nvPr></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:r>`)
	assert.Contains(t, exam, "本节课考情")
	assert.NotContains(t, exam, `txBox="1"`)

	kp := parts["ppt/slides/slide7.xml"]
	assert.Contains(t, kp, "函数的定义")
	assert.NotContains(t, kp, `txBox="1"`)
}

func TestBuildRejectsBadInput(t *testing.T) {
	a := New(nil, zerolog.Nop())
	_, err := a.Build(context.Background(), nil, course.CoverInfo{}, Options{Output: "x.pptx"})
	assert.Error(t, err)
	_, err = a.Build(context.Background(), &course.Course{}, course.CoverInfo{}, Options{Template: "missing.pptx", Output: "x.pptx"})
	assert.Error(t, err)
}

func TestDefaultPlanCoversEverySection(t *testing.T) {
	p := DefaultPlan()
	require.NoError(t, p.Validate())
	assert.Len(t, p.Sections, len(sectionNames))
	details := p.Sections[Cover].Slot(SlotDetails)
	require.NotNil(t, details.Idx)
	assert.Equal(t, 13, *details.Idx)
	assert.Equal(t, "本节课学习目标", p.Sections[Objectives].Label(SlotTitle, ""))
	assert.Equal(t, "fallback", p.Sections[Farewell].Label(SlotTitle, "fallback"))
	require.NotNil(t, p.Sections[CourseSystem].Frame)
	assert.Equal(t, 12.0, p.Sections[CourseSystem].Frame.W)
}

func TestLoadPlanOverridesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layouts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(`
sections:
  quiz:
    layout: 4
    slots:
      title: {type: body}
`)), 0o644))

	p, err := LoadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Sections[Quiz].Layout)
	assert.Equal(t, "body", p.Sections[Quiz].Slot(SlotTitle).Type)
	assert.Equal(t, 16, p.Sections[Homework].Layout)

	require.NoError(t, os.WriteFile(path, []byte("sections:\n  bonus:\n    layout: 1\n"), 0o644))
	_, err = LoadPlan(path)
	assert.ErrorContains(t, err, `unknown section "bonus"`)

	_, err = LoadPlan(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
