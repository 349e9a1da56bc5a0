// Package convert runs the courseware pipeline: extract the PDF, structure its
// text into a course, assemble the deck and optionally publish it.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thywilljoshua/pdf-to-deck/internal/course"
	"github.com/thywilljoshua/pdf-to-deck/internal/deck"
	"github.com/thywilljoshua/pdf-to-deck/internal/extract"
	"github.com/thywilljoshua/pdf-to-deck/internal/logger"
)

// Run is the full pipeline. Without a template it stops once course.json is
// written.
func Run(ctx context.Context, pdfPath string, cfg Config) (*Result, error) {
	c, res, err := Structure(ctx, pdfPath, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Template == "" {
		return res, nil
	}
	out := cfg.Output
	if out == "" {
		out = DefaultOutput(cfg.OutDir, c.LectureTitle.String(), cfg.RunID)
	}
	dr, err := Build(ctx, c, course.ParseCoverInfo(pdfPath), out, cfg)
	if err != nil {
		return nil, err
	}
	res.Deck = dr
	if cfg.Uploader != nil {
		url, err := cfg.Uploader.Upload(ctx, dr.Path, cfg.RunID)
		if err != nil {
			return nil, fmt.Errorf("upload deck: %w", err)
		}
		res.URL = url
	}
	return res, nil
}

// Structure extracts the PDF and asks the text model for the course, writing
// raw_content.txt, the mind map and course.json into cfg.OutDir.
func Structure(ctx context.Context, pdfPath string, cfg Config) (*course.Course, *Result, error) {
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return nil, nil, err
	}
	log := cfg.Log.With().Str("pdf", filepath.Base(pdfPath)).Logger()

	log.Info().Msg("extracting pdf")
	src, err := extract.Extract(ctx, pdfPath, extract.Options{WorkDir: cfg.OutDir, TextEngine: cfg.TextEngine}, logger.Component(log, "extract"))
	if err != nil {
		return nil, nil, fmt.Errorf("extract %s: %w", pdfPath, err)
	}
	if src.MindMap != nil {
		log.Info().Str("path", src.MindMap.Path).Msg("mind map extracted")
	} else {
		log.Info().Int("candidates", len(src.Candidates)).Msg("no mind map found")
	}

	if cfg.Text == nil {
		return nil, nil, errors.New("no text model configured")
	}
	st := &course.Structurer{Model: cfg.Text, WorkDir: cfg.OutDir, Log: logger.Component(log, "course")}
	c, err := st.Structure(ctx, src.Text)
	if err != nil {
		return nil, nil, err
	}
	// only what extraction found is kept; the model cannot add images
	c.ExtractedImages = nil
	if mm := src.MindMap; mm != nil {
		c.ExtractedImages = []course.Image{{
			Page:      mm.Page,
			Filename:  filepath.Base(mm.Path),
			Path:      mm.Path,
			IsMindmap: true,
		}}
	}

	coursePath := filepath.Join(cfg.OutDir, course.FileName)
	if err := course.Save(coursePath, c); err != nil {
		return nil, nil, fmt.Errorf("save course: %w", err)
	}
	log.Info().Str("path", coursePath).Msg("course saved")

	return c, &Result{
		RunID:           cfg.RunID,
		Source:          src,
		CoursePath:      coursePath,
		Title:           c.LectureTitle.String(),
		KnowledgePoints: len(c.KnowledgePoints),
	}, nil
}

// Build assembles the deck for an already structured course.
func Build(ctx context.Context, c *course.Course, cover course.CoverInfo, out string, cfg Config) (*deck.Result, error) {
	if cfg.Template == "" {
		return nil, errors.New("no deck template configured")
	}
	a := deck.New(cfg.Images, logger.Component(cfg.Log, "deck"))
	return a.Build(ctx, c, cover, deck.Options{
		Template:          cfg.Template,
		Output:            out,
		Plan:              cfg.Plan,
		CourseSystemImage: cfg.CourseSystemImage,
		ObjectivesStyle:   cfg.ObjectivesStyle,
		Fonts:             cfg.Fonts,
		CanvasWidthIn:     cfg.CanvasWidthIn,
		CanvasHeightIn:    cfg.CanvasHeightIn,
		Progress:          cfg.Progress,
	})
}
