package main

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-to-deck/internal/convert"
	"github.com/thywilljoshua/pdf-to-deck/internal/course"
)

func buildCmd(root *rootFlags) *cobra.Command {
	var p pipelineFlags
	var sourcePDF, coverName string

	cmd := &cobra.Command{
		Use:   "build <course.json>",
		Short: "Assemble a deck from an existing course.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sourcePDF != "" && coverName != "" {
				return errors.New("--source-pdf and --cover-name are mutually exclusive")
			}
			c, err := course.Load(args[0])
			if err != nil {
				return err
			}
			a, err := root.load()
			if err != nil {
				return err
			}
			if p.out == "" {
				p.out = filepath.Dir(args[0])
			}
			conf, err := a.pipeline(cmd.Context(), &p, true)
			if err != nil {
				return err
			}
			name := sourcePDF
			if coverName != "" {
				name = coverName
			}
			u := a.ui(cmd)
			bar := &imageProgress{w: cmd.ErrOrStderr(), off: u.quiet}
			conf.Progress = bar.update

			out := p.output
			if out == "" {
				out = convert.DefaultOutput(conf.OutDir, c.LectureTitle.String(), a.runID)
			}
			res, err := convert.Build(cmd.Context(), c, course.ParseCoverInfo(name), out, conf)
			bar.finish()
			if err != nil {
				return err
			}
			if conf.Uploader != nil {
				url, err := conf.Uploader.Upload(cmd.Context(), res.Path, a.runID)
				if err != nil {
					return err
				}
				u.info("uploaded to %s", url)
			}
			u.success("%d slides, %d images: %s", res.Slides, res.Images, res.Path)
			return u.result(res)
		},
	}
	p.register(cmd, true)
	cmd.Flags().StringVar(&sourcePDF, "source-pdf", "", "handout PDF whose file name fills the cover")
	cmd.Flags().StringVar(&coverName, "cover-name", "", "cover file name, e.g. 高中语文_高一_2025寒假_小组课_张三.pdf")
	return cmd
}
