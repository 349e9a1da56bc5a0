// Package deck turns a structured course into slides. It walks the fixed
// courseware sequence, creating one slide per section from the template
// layouts named in a Plan and filling them with text and images.
package deck

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/thywilljoshua/pdf-to-deck/internal/course"
	"github.com/thywilljoshua/pdf-to-deck/internal/diagram"
	"github.com/thywilljoshua/pdf-to-deck/internal/imagegen"
	"github.com/thywilljoshua/pdf-to-deck/internal/pptx"
)

// Objectives styles.
const (
	StyleAI      = "ai"
	StylePyramid = "pyramid"
	StyleStairs  = "stairs"
	StyleCards   = "cards"
)

type Options struct {
	Template string
	Output   string
	Plan     *Plan // nil uses DefaultPlan

	// CourseSystemImage is a static picture for the course system slide.
	CourseSystemImage string
	// ObjectivesStyle selects AI art or a drawn diagram for the objectives
	// slide. AI art falls back to the pyramid when no image comes back.
	ObjectivesStyle string
	Fonts           *diagram.Fonts

	// Reference canvas for plan frames, 16x9 when zero.
	CanvasWidthIn, CanvasHeightIn float64

	// Progress reports prefetched images.
	Progress func(done, total int)
}

type Result struct {
	Path     string   `json:"path"`
	Slides   int      `json:"slides"`
	Images   int      `json:"images"`
	Sections []string `json:"sections"`
	// LayoutFallbacks counts slides whose layout index was not in the template.
	LayoutFallbacks int `json:"layout_fallbacks,omitempty"`
}

type Assembler struct {
	images *imagegen.Synthesizer
	log    zerolog.Logger
}

// New returns an Assembler. A nil synthesizer produces a deck without AI art.
func New(images *imagegen.Synthesizer, log zerolog.Logger) *Assembler {
	return &Assembler{images: images, log: log}
}

func kpTitleKey(i int) string   { return fmt.Sprintf("kp_%d_title", i) }
func kpContentKey(i int) string { return fmt.Sprintf("kp_%d_content", i) }

// Build writes the deck to opts.Output.
func (a *Assembler) Build(ctx context.Context, c *course.Course, cover course.CoverInfo, opts Options) (*Result, error) {
	if c == nil {
		return nil, errors.New("no course content")
	}
	if opts.Output == "" {
		return nil, errors.New("no output path")
	}
	plan := opts.Plan
	if plan == nil {
		plan = DefaultPlan()
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	d, err := pptx.Open(opts.Template)
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", opts.Template, err)
	}
	if len(d.Layouts()) == 0 {
		return nil, fmt.Errorf("template %s: %w", opts.Template, pptx.ErrLayoutNotFound)
	}
	a.log.Info().Str("template", opts.Template).Int("layouts", len(d.Layouts())).Msg("template loaded")

	b := &build{
		a:    a,
		plan: plan,
		deck: d,
		opts: opts,
		kps:  pointsOrSample(c),
		res:  &Result{Path: opts.Output},
	}
	b.setCanvas()
	b.mindMap = readImage(c.MindMapPath(), a.log)
	b.courseSystem = readImage(opts.CourseSystemImage, a.log)

	if a.images != nil {
		jobs := b.jobs(c, cover)
		a.log.Info().Int("images", len(jobs)).Msg("requesting images")
		b.imgs = a.images.Prefetch(ctx, jobs, opts.Progress)
		a.log.Info().Int("generated", b.imgs.Count()).Int("requested", len(jobs)).Msg("images ready")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	steps := []func(*course.Course, course.CoverInfo) error{
		b.cover,
		b.courseSystemSlide,
		b.lectureTitle,
		b.objectives,
		b.mindMapSlide,
		b.examAnalysis,
		b.knowledgePoints,
		b.closing,
	}
	for _, step := range steps {
		if err := step(c, cover); err != nil {
			return nil, err
		}
	}

	if err := d.Save(opts.Output); err != nil {
		return nil, fmt.Errorf("save deck: %w", err)
	}
	b.res.Slides = d.SlideCount()
	a.log.Info().Str("path", opts.Output).Int("slides", b.res.Slides).Int("images", b.res.Images).Msg("deck saved")
	return b.res, nil
}

// pointsOrSample never returns an empty list: a course without knowledge
// points gets a single sample point.
func pointsOrSample(c *course.Course) []course.KnowledgePoint {
	if len(c.KnowledgePoints) > 0 {
		return c.KnowledgePoints
	}
	return []course.KnowledgePoint{{
		Title:   course.FlexText("示例知识点"),
		Content: course.FlexText("这是示例内容"),
	}}
}

func readImage(path string, log zerolog.Logger) []byte {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("image not readable, skipping")
		return nil
	}
	return b
}

type build struct {
	a    *Assembler
	plan *Plan
	deck *pptx.Deck
	opts Options
	kps  []course.KnowledgePoint
	imgs imagegen.Images
	res  *Result

	mindMap      []byte
	courseSystem []byte

	// EMU per reference inch
	emuX, emuY float64
}

func (b *build) setCanvas() {
	w, h := b.opts.CanvasWidthIn, b.opts.CanvasHeightIn
	if w <= 0 || h <= 0 {
		w, h = 16, 9
	}
	sw, sh := b.deck.Size()
	b.emuX, b.emuY = float64(sw)/w, float64(sh)/h
}

func (b *build) rect(x, y, w, h float64) pptx.Rect {
	return pptx.Rect{
		X:  int64(x * b.emuX),
		Y:  int64(y * b.emuY),
		CX: int64(w * b.emuX),
		CY: int64(h * b.emuY),
	}
}

func (b *build) jobs(c *course.Course, cover course.CoverInfo) []imagegen.Job {
	title := c.LectureTitle.Or(b.plan.Sections[LectureTitle].Label(SlotTitle, "本节课主题"))
	jobs := []imagegen.Job{
		imagegen.CoverJob(cover.MainSubject, cover.Semester),
		imagegen.LectureTitleJob(title),
	}
	if b.objectivesStyle() == StyleAI && len(c.Objectives()) > 0 {
		jobs = append(jobs, imagegen.LearningObjectivesJob(c.Objectives()))
	}
	if b.courseSystem == nil && !c.ClassIntro.Empty() {
		jobs = append(jobs, imagegen.ClassIntroJob(c.ClassIntro.String()))
	}
	for i, kp := range b.kps {
		kpTitle := kp.Title.Or(fmt.Sprintf("知识点%d", i+1))
		tj := imagegen.KnowledgePointJob(i, kpTitle, "")
		tj.Key = kpTitleKey(i)
		cj := imagegen.KnowledgePointJob(i, kpTitle, kp.Content.String())
		cj.Key = kpContentKey(i)
		jobs = append(jobs, tj, cj)
	}
	if b.mindMap == nil {
		jobs = append(jobs, imagegen.SummaryJob())
	}
	return jobs
}

func (b *build) objectivesStyle() string {
	switch b.opts.ObjectivesStyle {
	case StylePyramid, StyleStairs, StyleCards:
		return b.opts.ObjectivesStyle
	default:
		return StyleAI
	}
}

func (b *build) slide(name string) (*pptx.Slide, Section, error) {
	sec := b.plan.Sections[name]
	index := sec.Layout
	if sec.LayoutName != "" {
		if l, err := b.deck.LayoutByName(sec.LayoutName); err == nil {
			index = l.Index
		} else {
			b.a.log.Warn().Str("section", name).Str("layout_name", sec.LayoutName).Msg("named layout not in template, using index")
		}
	}
	s, err := b.deck.AddSlide(index)
	if err != nil {
		return nil, sec, fmt.Errorf("%s slide: %w", name, err)
	}
	if s.Fallback {
		b.res.LayoutFallbacks++
		b.a.log.Warn().Str("section", name).Int("layout", index).Int("used", s.LayoutIndex()).Msg("layout missing from template, using fallback")
	}
	b.res.Sections = append(b.res.Sections, name)
	b.a.log.Debug().Str("section", name).Int("slide", b.deck.SlideCount()).Msg("slide added")
	return s, sec, nil
}

// text fills slot with text. Title and body slots the layout does not have
// become free text boxes at the usual title and content positions; other
// slots are skipped.
func (b *build) text(s *pptx.Slide, sec Section, slot, text string) {
	ref := sec.Slot(slot)
	if ref.IsZero() {
		return
	}
	if s.HasPlaceholder(ref) {
		if err := s.SetText(ref, text); err != nil {
			b.a.log.Warn().Err(err).Str("slot", slot).Msg("fill placeholder")
		}
		return
	}
	switch slot {
	case SlotTitle:
		s.AddTextBox(text, b.rect(0.5, 0.5, 15, 1.2), pptx.TextStyle{SizePt: 40, Bold: true, Color: "000000"})
	case SlotBody:
		s.AddTextBox(text, b.rect(1, 2, 14, 6), pptx.TextStyle{SizePt: 24, Color: "000000"})
	default:
		b.a.log.Debug().Str("slot", slot).Str("ref", ref.String()).Int("layout", s.LayoutIndex()).Msg("placeholder not on layout, skipped")
		return
	}
	b.a.log.Debug().Str("slot", slot).Str("ref", ref.String()).Msg("placeholder not on layout, added text box")
}

// picture puts img into the slot's placeholder. It reports whether the image
// landed on the slide.
func (b *build) picture(s *pptx.Slide, sec Section, img []byte) bool {
	if len(img) == 0 {
		return false
	}
	ref := sec.Slot(SlotPicture)
	if ref.IsZero() || !s.HasPlaceholder(ref) {
		b.a.log.Debug().Int("layout", s.LayoutIndex()).Msg("no picture placeholder, image skipped")
		return false
	}
	if err := s.SetPicture(ref, img); err != nil {
		b.a.log.Warn().Err(err).Msg("insert picture")
		return false
	}
	b.res.Images++
	return true
}

func (b *build) cover(_ *course.Course, ci course.CoverInfo) error {
	s, sec, err := b.slide(Cover)
	if err != nil {
		return err
	}
	if bg := b.imgs.Get("cover"); bg != nil {
		if err := s.SetBackground(bg); err != nil {
			b.a.log.Warn().Err(err).Msg("cover background")
		} else {
			b.res.Images++
		}
	}
	b.text(s, sec, SlotSmallTitle, ci.SmallTitle)
	b.text(s, sec, SlotMainSubject, ci.MainSubject)
	b.text(s, sec, SlotSubtitle, ci.SubTitle)
	b.text(s, sec, SlotDetails, ci.GradeInfo+"\n"+ci.TeacherLine)
	return nil
}

func (b *build) courseSystemSlide(*course.Course, course.CoverInfo) error {
	s, sec, err := b.slide(CourseSystem)
	if err != nil {
		return err
	}
	img := b.courseSystem
	if img == nil {
		img = b.imgs.Get("class_intro")
	}
	if img == nil {
		return nil
	}
	frame := b.rect(2, 2, 12, 6)
	if f := sec.Frame; f != nil {
		frame = b.rect(f.X, f.Y, f.W, f.H)
	}
	if err := s.AddImage(img, frame); err != nil {
		b.a.log.Warn().Err(err).Msg("course system image")
		return nil
	}
	b.res.Images++
	return nil
}

func (b *build) lectureTitle(c *course.Course, _ course.CoverInfo) error {
	s, sec, err := b.slide(LectureTitle)
	if err != nil {
		return err
	}
	b.text(s, sec, SlotTitle, c.LectureTitle.Or(sec.Label(SlotTitle, "本节课主题")))
	b.picture(s, sec, b.imgs.Get("lecture_title"))
	return nil
}

func (b *build) objectives(c *course.Course, _ course.CoverInfo) error {
	s, sec, err := b.slide(Objectives)
	if err != nil {
		return err
	}
	b.text(s, sec, SlotTitle, sec.Label(SlotTitle, "本节课学习目标"))

	objs := c.Objectives()
	if len(objs) == 0 {
		objs = []string{sec.Label("empty", "暂无学习目标")}
	}
	style := b.objectivesStyle()
	if style == StyleAI && b.picture(s, sec, b.imgs.Get("objectives")) {
		return nil
	}
	if style == StyleAI {
		b.a.log.Info().Msg("objectives art unavailable, drawing pyramid")
		style = StylePyramid
	}
	img, err := b.drawObjectives(style, objs)
	if err != nil {
		b.a.log.Warn().Err(err).Str("style", style).Msg("objectives diagram")
		return nil
	}
	b.picture(s, sec, img)
	return nil
}

func (b *build) drawObjectives(style string, objs []string) ([]byte, error) {
	opts := diagram.Options{Fonts: b.opts.Fonts}
	switch style {
	case StyleStairs:
		return diagram.Stairs(objs, opts)
	case StyleCards:
		return diagram.Cards(objs, opts)
	}
	return diagram.Pyramid(objs, opts)
}

func (b *build) mindMapSlide(*course.Course, course.CoverInfo) error {
	if b.mindMap == nil {
		return nil
	}
	s, sec, err := b.slide(MindMap)
	if err != nil {
		return err
	}
	b.picture(s, sec, b.mindMap)
	return nil
}

func (b *build) examAnalysis(c *course.Course, _ course.CoverInfo) error {
	s, sec, err := b.slide(ExamAnalysis)
	if err != nil {
		return err
	}
	b.text(s, sec, SlotTitle, sec.Label(SlotTitle, "本节课考情"))
	b.text(s, sec, SlotBody, c.ExamAnalysis.Or(sec.Label(SlotBody, "暂无考情分析")))
	return nil
}

// knowledgePoints emits the per-point sub-sequence: section title, content,
// discussion (first point only), mother example and variant/method when the
// point has them.
func (b *build) knowledgePoints(*course.Course, course.CoverInfo) error {
	for i, kp := range b.kps {
		title := kp.Title.Or(fmt.Sprintf("知识点%d", i+1))

		s, sec, err := b.slide(KPTitle)
		if err != nil {
			return err
		}
		b.text(s, sec, SlotTitle, title)
		b.picture(s, sec, b.imgs.Get(kpTitleKey(i)))

		s, sec, err = b.slide(KPContent)
		if err != nil {
			return err
		}
		b.text(s, sec, SlotTitle, title)
		b.text(s, sec, SlotBody, kp.Content.Or(sec.Label(SlotBody, "暂无内容")))
		b.picture(s, sec, b.imgs.Get(kpContentKey(i)))

		if i == 0 {
			s, sec, err = b.slide(Discussion)
			if err != nil {
				return err
			}
			b.text(s, sec, SlotBody, kp.Discussion.Or(sec.Label(SlotBody, "请思考并讨论相关问题")))
		}

		if !kp.ExampleMother.Empty() {
			s, sec, err = b.slide(ExampleMother)
			if err != nil {
				return err
			}
			b.text(s, sec, SlotBody, kp.ExampleMother.String())
		}

		if !kp.ExampleVariant.Empty() || !kp.Method.Empty() {
			s, sec, err = b.slide(ExampleVariant)
			if err != nil {
				return err
			}
			b.text(s, sec, SlotBody, kp.ExampleVariant.String())
			b.text(s, sec, SlotMethod, kp.Method.String())
		}
	}
	return nil
}

// closing emits the fixed tail: stage talk, summary, quiz, homework and
// farewell.
func (b *build) closing(c *course.Course, _ course.CoverInfo) error {
	s, sec, err := b.slide(StageTalk)
	if err != nil {
		return err
	}
	b.text(s, sec, SlotBody, sec.Label(SlotBody, "请结合所学知识点，上台分享你的理解和心得"))

	if _, _, err := b.slide(SummaryTransition); err != nil {
		return err
	}

	s, sec, err = b.slide(Summary)
	if err != nil {
		return err
	}
	if !b.picture(s, sec, b.mindMap) {
		b.picture(s, sec, b.imgs.Get("summary"))
	}

	if _, _, err := b.slide(QuizTransition); err != nil {
		return err
	}

	s, sec, err = b.slide(Quiz)
	if err != nil {
		return err
	}
	b.text(s, sec, SlotTitle, c.QuizContent.Or(sec.Label(SlotTitle, "请完成讲义上的测试题")))

	s, sec, err = b.slide(Homework)
	if err != nil {
		return err
	}
	b.text(s, sec, SlotBody, c.Homework.Or(sec.Label(SlotBody, "完成对应练习题")))

	_, _, err = b.slide(Farewell)
	return err
}
