package cmd

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/geofix/internal/geo"
	"github.com/abhisek/geofix/internal/store"
)

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22C55E"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F43F5E"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F8FAFC"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6"))
)

func renderFix(s geo.Sample, elapsed time.Duration) string {
	var b strings.Builder
	b.WriteString(successStyle.Render("Fix acquired"))
	b.WriteString("\n")
	writeField(&b, "Position", fmt.Sprintf("%.6f, %.6f", s.Latitude, s.Longitude))
	writeField(&b, "Accuracy", fmt.Sprintf("±%.0f m", s.AccuracyM))
	writeField(&b, "Measured", s.Time.Local().Format(time.RFC3339))
	writeField(&b, "Took", elapsed.Round(time.Millisecond).String())
	return b.String()
}

func renderError(msg string) string {
	return errorStyle.Render("✗ " + msg)
}

func writeField(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "  %s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func renderFailures(rows []store.ProviderFailure) string {
	if len(rows) == 0 {
		return labelStyle.Render("No provider failures recorded.")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-24s  %-16s  %s", "WHEN", "CODE", "MESSAGE")))
	b.WriteString("\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-24s  %-16s  %s\n",
			r.At().Local().Format(time.RFC3339), r.Code, r.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderFixes(rows []store.Fix) string {
	if len(rows) == 0 {
		return labelStyle.Render("No resolutions recorded.")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-24s  %-22s  %-22s  %s", "RESOLVED", "OUTCOME", "POSITION", "ACCURACY")))
	b.WriteString("\n")
	for _, r := range rows {
		pos := "-"
		acc := "-"
		if r.Outcome == "fulfilled" {
			pos = fmt.Sprintf("%.5f, %.5f", r.Latitude, r.Longitude)
			acc = fmt.Sprintf("±%.0f m", r.AccuracyM)
		}
		fmt.Fprintf(&b, "%-24s  %-22s  %-22s  %s\n",
			r.ResolvedAt().Local().Format(time.RFC3339), r.Outcome, pos, acc)
	}
	return strings.TrimRight(b.String(), "\n")
}
