// Package render writes annotated documents to a terminal with Lipgloss
// styles, or as plain text when color is off.
package render

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/morozRed/jsnav/internal/annotate"
)

// Styles holds one style per item class plus chrome.
type Styles struct {
	Keyword    lipgloss.Style
	Identifier lipgloss.Style
	String     lipgloss.Style
	MethodName lipgloss.Style

	Gutter  lipgloss.Style
	Title   lipgloss.Style
	Warning lipgloss.Style
	Harmful lipgloss.Style
	Dim     lipgloss.Style

	colored bool
}

// NewStyles returns colored styles, or pass-through styles when
// colorEnabled is false.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &Styles{
			Keyword:    plain,
			Identifier: plain,
			String:     plain,
			MethodName: plain,
			Gutter:     plain,
			Title:      plain,
			Warning:    plain,
			Harmful:    plain,
			Dim:        plain,
		}
	}
	return &Styles{
		Keyword:    lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		Identifier: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		String:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		MethodName: lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),

		Gutter:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Title:   lipgloss.NewStyle().Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Harmful: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),

		colored: true,
	}
}

// ForItem returns the style of an item: its class color, underlined for
// definitions and italic for references.
func (s *Styles) ForItem(item annotate.Item) lipgloss.Style {
	var style lipgloss.Style
	switch item.Class {
	case annotate.ClassKeyword:
		style = s.Keyword
	case annotate.ClassIdentifier:
		style = s.Identifier
	case annotate.ClassString:
		style = s.String
	case annotate.ClassMethodName:
		style = s.MethodName
	}
	if !s.colored {
		return style
	}
	switch item.Role {
	case annotate.RoleMaster:
		style = style.Underline(true)
	case annotate.RoleReference:
		style = style.Italic(true)
	}
	return style
}

// paint renders text with style; without color text is returned as is so
// tabs and spacing survive.
func (s *Styles) paint(style lipgloss.Style, text string) string {
	if !s.colored {
		return text
	}
	return style.Render(text)
}

// IsColorEnabled resolves a color mode ("auto", "always", "never") for w.
// Auto enables color only on a terminal with NO_COLOR unset.
func IsColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := w.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}
