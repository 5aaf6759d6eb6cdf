// internal/table/text.go
package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/mwiater/evalboard/internal/util"
)

// TextOptions controls RenderText.
type TextOptions struct {
	// PromptWidth truncates the customer prompt; zero keeps it whole.
	PromptWidth int
	// WrapWidth wraps transcript lines at word boundaries; zero keeps them.
	WrapWidth int
	// NoColor disables ANSI colouring regardless of the terminal.
	NoColor bool
}

// RenderText writes v as a sequence of row blocks for terminal output.
func RenderText(w io.Writer, v View, opts TextOptions) error {
	pass := color.New(color.FgGreen)
	fail := color.New(color.FgRed)
	dim := color.New(color.Faint)
	bold := color.New(color.Bold)
	if opts.NoColor {
		for _, c := range []*color.Color{pass, fail, dim, bold} {
			c.DisableColor()
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", bold.Sprint(strings.Join(v.Headers, " | ")))
	if v.Empty() {
		fmt.Fprintf(&b, "%s\n", dim.Sprint(EmptyMessage))
		_, err := io.WriteString(w, b.String())
		return err
	}

	for i, row := range v.Rows {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %s\n", bold.Sprintf("#%d", row.TestID), row.Type)

		prompt := util.SingleLine(row.CustomerPrompt)
		if opts.PromptWidth > 0 {
			prompt = util.TruncateRunes(prompt, opts.PromptWidth)
		}
		fmt.Fprintf(&b, "  Customer Prompt: %s\n", prompt)

		b.WriteString("  Transcript:\n")
		for _, line := range util.SplitLines(util.WrapToWidth(row.Transcript, opts.WrapWidth)) {
			fmt.Fprintf(&b, "    %s\n", line)
		}
		if row.ShowHint {
			fmt.Fprintf(&b, "    %s\n", dim.Sprint("(use --full to expand)"))
		}

		if len(row.Scores) > 0 {
			parts := make([]string, 0, len(row.Scores))
			for _, s := range row.Scores {
				switch {
				case !s.Present:
					parts = append(parts, dim.Sprintf("%s %s", s.Evaluator, s.Text))
				case s.Passed:
					parts = append(parts, pass.Sprintf("%s %s", s.Evaluator, s.Text))
				default:
					parts = append(parts, fail.Sprintf("%s %s", s.Evaluator, s.Text))
				}
			}
			fmt.Fprintf(&b, "  Scores: %s\n", strings.Join(parts, "  "))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
