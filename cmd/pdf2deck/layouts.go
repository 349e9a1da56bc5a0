package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-to-deck/internal/pptx"
)

func layoutsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "layouts <template.pptx>",
		Short: "List the template's slide layouts and their placeholders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := pptx.Open(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				u := &ui{out: cmd.OutOrStdout(), quiet: true}
				return u.result(d.Layouts())
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tNAME\tPLACEHOLDERS")
			for _, l := range d.Layouts() {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", l.Index, l.Name, describe(l.Placeholders))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print layouts as JSON")
	return cmd
}

// describe renders placeholders as idx:type pairs, e.g. "10:body 11:body".
func describe(phs []pptx.Placeholder) string {
	parts := make([]string, 0, len(phs))
	for _, ph := range phs {
		idx := "-"
		if ph.HasIdx {
			idx = fmt.Sprint(ph.Idx)
		}
		parts = append(parts, idx+":"+ph.Type)
	}
	return strings.Join(parts, " ")
}
