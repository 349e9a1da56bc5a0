package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ui writes human status lines to stderr and the machine result to stdout.
type ui struct {
	out   io.Writer
	err   io.Writer
	quiet bool
}

func (u *ui) line(c color.Attribute, mark, format string, args ...any) {
	if u.quiet {
		return
	}
	color.New(c).Fprintf(u.err, "%s %s\n", mark, fmt.Sprintf(format, args...))
}

func (u *ui) success(format string, args ...any) { u.line(color.FgGreen, "✓", format, args...) }
func (u *ui) warn(format string, args ...any)    { u.line(color.FgYellow, "⚠", format, args...) }
func (u *ui) info(format string, args ...any)    { u.line(color.FgCyan, "ℹ", format, args...) }

// result prints v as indented JSON.
func (u *ui) result(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(u.out, string(b))
	return err
}

// imageProgress drives a bar for image prefetch. The total is only known on
// the first callback, which may arrive from any worker goroutine.
type imageProgress struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
	w   io.Writer
	off bool
}

func (p *imageProgress) update(done, total int) {
	if p.off {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		p.bar = newBar(p.w, int64(total), "generating images")
	}
	_ = p.bar.Set(done)
}

func (p *imageProgress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

func newBar(w io.Writer, total int64, description string) *progressbar.ProgressBar {
	if w == nil {
		w = os.Stderr
	}
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}
