package deck

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/thywilljoshua/pdf-to-deck/internal/pptx"
)

//go:embed layouts.yaml
var defaultPlan []byte

// Section names, in deck order.
const (
	Cover             = "cover"
	CourseSystem      = "course_system"
	LectureTitle      = "lecture_title"
	Objectives        = "objectives"
	MindMap           = "mindmap"
	ExamAnalysis      = "exam_analysis"
	KPTitle           = "kp_title"
	KPContent         = "kp_content"
	Discussion        = "discussion"
	ExampleMother     = "example_mother"
	ExampleVariant    = "example_variant"
	StageTalk         = "stage_talk"
	SummaryTransition = "summary_transition"
	Summary           = "summary"
	QuizTransition    = "quiz_transition"
	Quiz              = "quiz"
	Homework          = "homework"
	Farewell          = "farewell"
)

var sectionNames = []string{
	Cover, CourseSystem, LectureTitle, Objectives, MindMap, ExamAnalysis,
	KPTitle, KPContent, Discussion, ExampleMother, ExampleVariant,
	StageTalk, SummaryTransition, Summary, QuizTransition, Quiz, Homework, Farewell,
}

// Slot names used in the plan.
const (
	SlotTitle       = "title"
	SlotBody        = "body"
	SlotPicture     = "picture"
	SlotMethod      = "method"
	SlotSmallTitle  = "small_title"
	SlotMainSubject = "main_subject"
	SlotSubtitle    = "subtitle"
	SlotDetails     = "details"
)

// Box is a frame in inches on the plan's reference canvas.
type Box struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

type Section struct {
	Layout int `yaml:"layout"`
	// LayoutName, when set, is looked up in the template first; Layout is
	// used if no layout carries that name.
	LayoutName string                         `yaml:"layout_name"`
	Slots      map[string]pptx.PlaceholderRef `yaml:"slots"`
	// Text holds fixed labels and the fallbacks for empty fields, by slot.
	Text  map[string]string `yaml:"text"`
	Frame *Box              `yaml:"frame"`
}

// Slot returns the placeholder ref for name; the zero ref when unset.
func (s Section) Slot(name string) pptx.PlaceholderRef { return s.Slots[name] }

// Label returns Text[name], or def when the plan leaves it empty.
func (s Section) Label(name, def string) string {
	if v := s.Text[name]; v != "" {
		return v
	}
	return def
}

// Plan maps every section of the courseware onto the template.
type Plan struct {
	Sections map[string]Section `yaml:"sections"`
}

// DefaultPlan returns the built-in plan.
func DefaultPlan() *Plan {
	p, err := parsePlan(defaultPlan, nil)
	if err != nil {
		panic(fmt.Sprintf("embedded layouts.yaml: %v", err))
	}
	return p
}

// LoadPlan reads a YAML plan on top of the default one. Sections present in
// the file replace the default section as a whole.
func LoadPlan(path string) (*Plan, error) {
	if path == "" {
		return DefaultPlan(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout plan: %w", err)
	}
	p, err := parsePlan(b, DefaultPlan())
	if err != nil {
		return nil, fmt.Errorf("layout plan %s: %w", path, err)
	}
	return p, nil
}

func parsePlan(b []byte, base *Plan) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	if base != nil {
		merged := *base
		merged.Sections = make(map[string]Section, len(base.Sections))
		for k, v := range base.Sections {
			merged.Sections[k] = v
		}
		for k, v := range p.Sections {
			merged.Sections[k] = v
		}
		p = merged
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that every section is present with a usable layout index.
func (p *Plan) Validate() error {
	for _, name := range sectionNames {
		s, ok := p.Sections[name]
		if !ok {
			return fmt.Errorf("section %q missing", name)
		}
		if s.Layout < 0 {
			return fmt.Errorf("section %q: negative layout index %d", name, s.Layout)
		}
	}
	for name := range p.Sections {
		if !slices.Contains(sectionNames, name) {
			return fmt.Errorf("unknown section %q", name)
		}
	}
	return nil
}
