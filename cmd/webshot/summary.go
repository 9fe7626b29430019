package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/webshot/pkg/config"
	"github.com/entrhq/webshot/pkg/tasks"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	nameStyle    = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	variantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// renderSummary formats the end-of-run line shown after every batch,
// failures included.
func renderSummary(profileName string, summary tasks.Summary) string {
	passed := summary.Total - summary.Failed
	line := fmt.Sprintf("%s: %s", nameStyle.Render(profileName), okStyle.Render(fmt.Sprintf("%d passed", passed)))
	if summary.Failed > 0 {
		line += ", " + failStyle.Render(fmt.Sprintf("%d failed", summary.Failed))
	}
	return line
}

// renderProfile formats one line of `webshot profiles` output.
func renderProfile(profile *config.Profile) string {
	line := nameStyle.Render(profile.Name())
	if profile.IsSubprofile() {
		line += " " + variantStyle.Render(fmt.Sprintf("(variant of %s)", profile.ParentName()))
	}
	line += " " + subtleStyle.Render(fmt.Sprintf("tasks: %s", profile.TasksDirPath()))
	return line
}
