package main

import (
	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-to-deck/internal/convert"
)

func (p *pipelineFlags) register(cmd *cobra.Command, deck bool) {
	cmd.Flags().StringVarP(&p.out, "out", "o", "", "working directory for raw_content.txt, course.json and images (overrides output.dir)")
	if deck {
		cmd.Flags().StringVarP(&p.template, "template", "t", "", "PowerPoint template (overrides deck.template)")
		cmd.Flags().StringVar(&p.output, "output", "", "deck file (default: <out>/<lecture title>_<run>.pptx)")
		cmd.Flags().StringVar(&p.layouts, "layouts", "", "YAML section-to-layout plan (overrides deck.layouts)")
		cmd.Flags().StringVar(&p.style, "objectives-style", "", "objectives slide art: ai|pyramid|stairs|cards")
		cmd.Flags().BoolVar(&p.noImages, "no-images", false, "skip AI image generation")
		cmd.Flags().BoolVar(&p.upload, "upload", false, "publish the deck to the configured bucket")
	}
}

func convertCmd(root *rootFlags) *cobra.Command {
	var p pipelineFlags

	cmd := &cobra.Command{
		Use:   "convert <pdf>",
		Short: "Convert a handout PDF into a courseware deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pdfPath := args[0]
			a, err := root.load()
			if err != nil {
				return err
			}
			conf, err := a.pipeline(cmd.Context(), &p, true)
			if err != nil {
				return err
			}
			u := a.ui(cmd)
			bar := &imageProgress{w: cmd.ErrOrStderr(), off: u.quiet}
			conf.Progress = bar.update

			res, err := convert.Run(cmd.Context(), pdfPath, conf)
			bar.finish()
			if err != nil {
				return err
			}
			if res.Source.MindMap == nil {
				u.warn("no mind map found in %s", pdfPath)
			}
			if d := res.Deck; d != nil {
				if d.LayoutFallbacks > 0 {
					u.warn("%d slides used a fallback layout", d.LayoutFallbacks)
				}
				u.success("%d slides, %d images: %s", d.Slides, d.Images, d.Path)
			}
			if res.URL != "" {
				u.info("uploaded to %s", res.URL)
			}
			return u.result(res)
		},
	}
	p.register(cmd, true)
	cmd.Flags().StringVar(&p.textEngine, "text-engine", "", "text extraction: native|poppler (overrides extract.text_engine)")
	return cmd
}
