package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-to-deck/internal/diagram"
)

func pyramidCmd(root *rootFlags) *cobra.Command {
	var out, style string
	var width, height int

	cmd := &cobra.Command{
		Use:   "pyramid <objective>...",
		Short: "Render learning objectives as a pyramid, stairs or cards diagram",
		Long: "Render learning objectives as a PNG. A cognitive level keyword in an objective " +
			"(识记, 理解, 运用, ...) chooses the colour of its row.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.load()
			if err != nil {
				return err
			}
			fonts, err := diagram.LoadFonts(a.cfg.Images.FontPath)
			if err != nil {
				return err
			}
			opts := diagram.Options{Width: width, Height: height, Fonts: fonts}
			var png []byte
			switch style {
			case "pyramid":
				png, err = diagram.Pyramid(args, opts)
			case "stairs":
				png, err = diagram.Stairs(args, opts)
			case "cards":
				png, err = diagram.Cards(args, opts)
			default:
				return fmt.Errorf("unknown style %q (pyramid|stairs|cards)", style)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return err
			}
			a.ui(cmd).success("%s diagram: %s", style, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "objectives.png", "output PNG")
	cmd.Flags().StringVar(&style, "style", "pyramid", "diagram style: pyramid|stairs|cards")
	cmd.Flags().IntVar(&width, "width", 0, "image width in pixels (style default when 0)")
	cmd.Flags().IntVar(&height, "height", 0, "image height in pixels (style default when 0)")
	return cmd
}
