package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-to-deck/internal/ai"
	"github.com/thywilljoshua/pdf-to-deck/internal/config"
	"github.com/thywilljoshua/pdf-to-deck/internal/convert"
	"github.com/thywilljoshua/pdf-to-deck/internal/deck"
	"github.com/thywilljoshua/pdf-to-deck/internal/diagram"
	"github.com/thywilljoshua/pdf-to-deck/internal/imagegen"
	"github.com/thywilljoshua/pdf-to-deck/internal/logger"
	"github.com/thywilljoshua/pdf-to-deck/internal/storage"
)

type rootFlags struct {
	config    string
	logLevel  string
	logFormat string
}

// app is the per-invocation state shared by the subcommands.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	runID string
}

func (f *rootFlags) load() (*app, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	runID := uuid.NewString()
	log := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr).
		With().Str("run_id", runID).Logger()
	return &app{cfg: cfg, log: log, runID: runID}, nil
}

// pipelineFlags are the knobs shared by convert, extract and build.
type pipelineFlags struct {
	out        string
	template   string
	output     string
	layouts    string
	style      string
	textEngine string
	noImages   bool
	upload     bool
}

// apply copies explicitly set flags over the loaded configuration.
func (p *pipelineFlags) apply(cfg *config.Config) error {
	if p.out != "" {
		cfg.Output.Dir = p.out
	}
	if p.template != "" {
		cfg.Deck.Template = p.template
	}
	if p.layouts != "" {
		cfg.Deck.Layouts = p.layouts
	}
	if p.style != "" {
		cfg.Images.ObjectivesStyle = p.style
	}
	if p.textEngine != "" {
		cfg.Extract.TextEngine = p.textEngine
	}
	if p.noImages {
		cfg.Images.Enabled = false
	}
	if p.upload {
		cfg.Storage.Enabled = true
	}
	return cfg.Validate()
}

// pipeline wires models, fonts, the deck plan and the uploader into a
// convert.Config. needDeck loads the deck-side pieces as well.
func (a *app) pipeline(ctx context.Context, p *pipelineFlags, needDeck bool) (convert.Config, error) {
	cfg := a.cfg
	if err := p.apply(cfg); err != nil {
		return convert.Config{}, err
	}

	provider, err := ai.New(ctx, ai.Options{
		Provider:    cfg.AI.Provider,
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		TextModel:   cfg.AI.TextModel,
		ImageModel:  cfg.AI.ImageModel,
		Temperature: cfg.AI.Temperature,
	})
	if err != nil {
		return convert.Config{}, fmt.Errorf("ai provider: %w", err)
	}
	a.log.Debug().Str("provider", provider.Name()).Msg("model client ready")

	cc := convert.Config{
		OutDir:     cfg.Output.Dir,
		RunID:      a.runID,
		TextEngine: cfg.Extract.TextEngine,
		Output:     p.output,
		Log:        a.log,
	}
	if cfg.AIEnabled() {
		cc.Text = provider
	}
	if !needDeck {
		return cc, nil
	}

	if err := cfg.RequireTemplate(); err != nil {
		return convert.Config{}, err
	}
	plan, err := deck.LoadPlan(cfg.Deck.Layouts)
	if err != nil {
		return convert.Config{}, err
	}
	fonts, err := diagram.LoadFonts(cfg.Images.FontPath)
	if err != nil {
		return convert.Config{}, err
	}
	if !fonts.Scalable() {
		a.log.Warn().Msg("no TrueType font found, diagrams use the bitmap face")
	}
	cc.Template = cfg.Deck.Template
	cc.Plan = plan
	cc.Fonts = fonts
	cc.CourseSystemImage = cfg.Deck.CourseSystemImage
	cc.ObjectivesStyle = cfg.Images.ObjectivesStyle
	cc.CanvasWidthIn = cfg.Deck.WidthIn
	cc.CanvasHeightIn = cfg.Deck.HeightIn

	if cfg.Images.Enabled && cfg.AIEnabled() {
		cc.Images = imagegen.New(provider, imagegen.Options{
			Timeout:       cfg.Images.Timeout,
			Concurrency:   cfg.Images.Concurrency,
			RatePerSecond: cfg.Images.RatePerSecond,
		}, logger.Component(a.log, "imagegen"))
	}

	if cfg.Storage.Enabled {
		drv, err := storage.NewMinio(cfg.Storage)
		if err != nil {
			return convert.Config{}, fmt.Errorf("storage: %w", err)
		}
		cc.Uploader = storage.NewUploader(drv, cfg.Storage.Prefix, logger.Component(a.log, "storage"))
	}
	return cc, nil
}

// ui suppresses the coloured status lines when logs are machine-readable.
func (a *app) ui(cmd *cobra.Command) *ui {
	return &ui{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr(), quiet: a.cfg.Log.Format == "json"}
}
