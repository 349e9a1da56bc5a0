package convert

import (
	"github.com/rs/zerolog"

	"github.com/thywilljoshua/pdf-to-deck/internal/ai"
	"github.com/thywilljoshua/pdf-to-deck/internal/deck"
	"github.com/thywilljoshua/pdf-to-deck/internal/diagram"
	"github.com/thywilljoshua/pdf-to-deck/internal/extract"
	"github.com/thywilljoshua/pdf-to-deck/internal/imagegen"
	"github.com/thywilljoshua/pdf-to-deck/internal/storage"
)

type Result struct {
	RunID           string          `json:"run_id"`
	Source          *extract.Source `json:"source,omitempty"`
	CoursePath      string          `json:"course_json"`
	Title           string          `json:"lecture_title"`
	KnowledgePoints int             `json:"knowledge_points"`
	Deck            *deck.Result    `json:"deck,omitempty"`
	URL             string          `json:"url,omitempty"`
}

type Config struct {
	OutDir     string
	RunID      string
	TextEngine string

	// Deck output; an empty Template stops the pipeline after course.json.
	Template          string
	Output            string // default: OutDir/<title>_<run>.pptx
	Plan              *deck.Plan
	CourseSystemImage string
	ObjectivesStyle   string
	Fonts             *diagram.Fonts
	CanvasWidthIn     float64
	CanvasHeightIn    float64

	Text     ai.TextGenerator
	Images   *imagegen.Synthesizer // nil: no AI art
	Uploader *storage.Uploader     // nil: keep the deck local
	Progress func(done, total int)
	Log      zerolog.Logger
}
