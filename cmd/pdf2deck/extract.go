package main

import (
	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-to-deck/internal/convert"
)

func extractCmd(root *rootFlags) *cobra.Command {
	var p pipelineFlags

	cmd := &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Extract text and the mind map, then structure them into course.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.load()
			if err != nil {
				return err
			}
			conf, err := a.pipeline(cmd.Context(), &p, false)
			if err != nil {
				return err
			}
			_, res, err := convert.Structure(cmd.Context(), args[0], conf)
			if err != nil {
				return err
			}
			u := a.ui(cmd)
			u.success("%d knowledge points: %s", res.KnowledgePoints, res.CoursePath)
			return u.result(res)
		},
	}
	p.register(cmd, false)
	cmd.Flags().StringVar(&p.textEngine, "text-engine", "", "text extraction: native|poppler (overrides extract.text_engine)")
	return cmd
}
