// Package report prints pipeline progress to the terminal.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/jsas4coding/tools-electron-app-generator/internal/pipeline"
)

var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleStart   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	styleDetail  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleBanner  = lipgloss.NewStyle().Bold(true)
)

// Console writes one line per start, skip, warning, failure and success. Intermediate
// transitions are only printed when Verbose is set.
type Console struct {
	Out     io.Writer
	Verbose bool
}

func NewConsole(out io.Writer, verbose bool) *Console {
	return &Console{Out: out, Verbose: verbose}
}

// Progress implements pipeline.Reporter.
func (c *Console) Progress(msg pipeline.ProgressMsg) {
	name := msg.App.Name
	if msg.Warning != "" {
		c.println(styleWarn.Render(fmt.Sprintf("  ! %s: %s", name, msg.Warning)))
		return
	}

	switch msg.State {
	case pipeline.StateSkipped:
		c.println(styleSkipped.Render(fmt.Sprintf("  - Skipping %s", name)))
	case pipeline.StatePending:
		c.println(styleStart.Render(fmt.Sprintf("  > Building %s...", name)))
	case pipeline.StateFailed:
		line := styleError.Render(fmt.Sprintf("  ✗ %s failed: %v", name, msg.Err))
		if msg.Path != "" {
			line += "\n" + styleDetail.Render(fmt.Sprintf("    staging kept at %s", msg.Path))
		}
		c.println(line)
	case pipeline.StateCleaned:
		c.println(styleDone.Render(fmt.Sprintf("  ✓ %s ready at %s", name, msg.Path)))
	default:
		if c.Verbose {
			c.println(styleDetail.Render(fmt.Sprintf("    %s %s %s", name, msg.State, msg.Path)))
		}
	}
}

// Summary prints the completion banner. It is always printed, whatever the outcome.
func (c *Console) Summary(sum pipeline.Summary) {
	banner := fmt.Sprintf("%d installed, %d skipped, %d failed",
		len(sum.Installed), len(sum.Skipped), len(sum.Failed))

	switch {
	case sum.Interrupted:
		c.println("\n" + styleError.Render("  Interrupted: "+banner))
	case len(sum.Failed) > 0:
		c.println("\n" + styleBanner.Render("  All apps processed: ") + styleError.Render(banner))
		for _, name := range sum.Failed {
			c.println(styleError.Render("    • " + name))
		}
	default:
		c.println("\n" + styleBanner.Render("  All apps processed: ") + styleDone.Render(banner))
	}
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.Out, s)
}
