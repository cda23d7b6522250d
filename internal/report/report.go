// Package report renders a matrix result for the terminal.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spachava753/pluginmatrix/internal/models"
)

type styles struct {
	box     lipgloss.Style
	header  lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	errors  lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{box: plain, header: plain, success: plain, warning: plain, errors: plain, muted: plain}
	}
	return styles{
		box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		errors:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Render formats result as a per-version-set summary. With color disabled
// the output is plain text.
func Render(result *models.MatrixResult, color bool) string {
	s := newStyles(color)
	var sb strings.Builder

	title := "MATRIX " + result.Name
	switch {
	case result.Aborted:
		title += " (aborted)"
	case result.Cancelled:
		title += " (cancelled)"
	}
	sb.WriteString(s.header.Render(title))
	sb.WriteString("\n")
	sb.WriteString(s.muted.Render(fmt.Sprintf("%d version sets    %.2fs", len(result.VersionSets), result.TotalDurationSec)))
	sb.WriteString("\n\n")

	for _, vs := range result.VersionSets {
		sb.WriteString(renderVersionSet(s, vs))
	}

	summary := fmt.Sprintf("passed %d    failed %d    skipped %d    total %d",
		result.PassedCases, result.FailedCases, result.SkippedCases, result.TotalCases)
	if result.Passed() {
		summary = s.success.Render(summary)
	} else {
		summary = s.errors.Render(summary)
	}
	sb.WriteString(s.box.Render(summary))
	sb.WriteString("\n")
	return sb.String()
}

func renderVersionSet(s styles, vs models.VersionSetResult) string {
	var sb strings.Builder

	mark := s.success.Render("PASS")
	if !vs.Passed() {
		mark = s.errors.Render("FAIL")
	}
	fmt.Fprintf(&sb, "%s %s\n", mark, s.header.Render(vs.VersionSet.String()))

	if len(vs.Resolved) > 0 {
		names := make([]string, 0, len(vs.Resolved))
		for name := range vs.Resolved {
			names = append(names, name)
		}
		sort.Strings(names)
		var parts []string
		for _, name := range names {
			parts = append(parts, name+"@"+vs.Resolved[name])
		}
		sb.WriteString(s.muted.Render("  resolved: " + strings.Join(parts, " ")))
		sb.WriteString("\n")
	}
	for _, name := range vs.Mismatched {
		sb.WriteString(s.warning.Render(fmt.Sprintf("  ! %s resolved to %s, not %s", name, vs.Resolved[name], requested(vs.VersionSet, name))))
		sb.WriteString("\n")
	}

	if vs.InstallError != nil {
		sb.WriteString(s.errors.Render("  install failed: " + firstLine(vs.InstallError.Message)))
		sb.WriteString("\n\n")
		return sb.String()
	}

	for _, c := range vs.Cases {
		if c.Passed() {
			fmt.Fprintf(&sb, "  %s %s %s\n", s.success.Render("✓"), c.Name, s.muted.Render(c.Hash))
			continue
		}
		fmt.Fprintf(&sb, "  %s %s %s\n", s.errors.Render("✗"), c.Name, s.muted.Render(string(c.Error.Type)))
		sb.WriteString(s.errors.Render("    " + firstLine(c.Error.Message)))
		sb.WriteString("\n")
	}
	if vs.Skipped > 0 {
		sb.WriteString(s.warning.Render(fmt.Sprintf("  %d skipped", vs.Skipped)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func requested(vs models.VersionSet, name string) string {
	v, _ := vs.Version(name)
	return v
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
