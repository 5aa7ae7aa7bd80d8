package render

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	successColor = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
)

// Styles for summary lines.
var (
	// PassStyle marks the success verdict.
	PassStyle = lipgloss.NewStyle().Bold(true).Foreground(successColor)

	// WarnStyle marks non-fatal anomalies.
	WarnStyle = lipgloss.NewStyle().Bold(true).Foreground(warningColor)

	// FailStyle marks orchestration failures.
	FailStyle = lipgloss.NewStyle().Bold(true).Foreground(errorColor)

	// StepStyle marks progress steps.
	StepStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// Markers are stable ASCII-adjacent prefixes so automated log scraping can
// key on failure categories without stripping color codes.
const (
	PassMarker = "✓"
	WarnMarker = "⚠"
	FailMarker = "✗"
	StepMarker = "→"
)

// Pass renders a success line.
func Pass(noColor bool, text string) string {
	return marker(noColor, PassStyle, PassMarker, text)
}

// Warn renders a warning line.
func Warn(noColor bool, text string) string {
	return marker(noColor, WarnStyle, WarnMarker, text)
}

// Fail renders a failure line.
func Fail(noColor bool, text string) string {
	return marker(noColor, FailStyle, FailMarker, text)
}

// Step renders a progress line.
func Step(noColor bool, text string) string {
	return marker(noColor, StepStyle, StepMarker, text)
}

func marker(noColor bool, style lipgloss.Style, mark, text string) string {
	if noColor {
		return mark + " " + text
	}
	return style.Render(mark) + " " + text
}
