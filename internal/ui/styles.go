// Package ui renders human-facing run output with lipgloss.
package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color modes accepted by IsColorEnabled.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Styles holds the styles of the run summary.
type Styles struct {
	Title   lipgloss.Style
	Path    lipgloss.Style
	Success lipgloss.Style
	Skipped lipgloss.Style
	Failure lipgloss.Style
	Dim     lipgloss.Style
}

// NewStyles returns colored styles, or plain ones when color is off.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &Styles{
			Title:   plain,
			Path:    plain,
			Success: plain,
			Skipped: plain,
			Failure: plain,
			Dim:     plain,
		}
	}
	return &Styles{
		Title:   lipgloss.NewStyle().Bold(true),
		Path:    lipgloss.NewStyle().Bold(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Skipped: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// IsColorEnabled reports whether output to w should be colored. In auto
// mode that requires a terminal and an unset NO_COLOR.
func IsColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}
