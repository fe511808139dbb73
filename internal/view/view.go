// Package view renders flushed profile reports for the terminal.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/NikitaCOEUR/complexprof/pkg/report"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors and styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

var columns = []string{"Total", "Max", "Min", "Count", "Ave"}

// Data is what Render displays
type Data struct {
	Source  string
	Reports []*report.Report
}

// Render renders every report of data to a string
func Render(data *Data) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("📈 Profile log: ") + valueStyle.Render(data.Source) + "\n")
	b.WriteString(titleStyle.Render("🧾 Flushes: ") + valueStyle.Render(fmt.Sprintf("%d", len(data.Reports))))

	if len(data.Reports) == 0 {
		b.WriteString("\n\n   " + subtleStyle.Render("No reports found"))
		return b.String()
	}

	for _, r := range data.Reports {
		b.WriteString("\n\n")
		b.WriteString(renderReport(r))
	}

	return b.String()
}

func renderReport(r *report.Report) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("⏱  Flushed "+strings.TrimSpace(r.FlushedAt.Format(report.StampLayout))+":") + "\n")

	if r.Empty() {
		b.WriteString("   " + subtleStyle.Render("No samples recorded"))
		return b.String()
	}

	nameWidth := len("ProveName")
	for _, row := range r.Rows {
		if w := lipgloss.Width(row.Name); w > nameWidth {
			nameWidth = w
		}
	}

	cells := make([][]string, len(r.Rows))
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for i, row := range r.Rows {
		cells[i] = []string{
			FormatDuration(row.Total),
			FormatDuration(row.Max),
			FormatDuration(row.Min),
			fmt.Sprintf("%d", row.Count),
			FormatDuration(row.Average),
		}
		for j, cell := range cells[i] {
			if len(cell) > widths[j] {
				widths[j] = len(cell)
			}
		}
	}

	nameCol := lipgloss.NewStyle().Width(nameWidth + 2)
	header := nameCol.Render("ProveName")
	for i, c := range columns {
		header += lipgloss.NewStyle().Width(widths[i] + 2).Align(lipgloss.Right).Render(c)
	}
	b.WriteString("   " + keyStyle.Render(header) + "\n")

	slowest := slowestRow(r)
	for i, row := range r.Rows {
		line := nameCol.Render(row.Name)
		for j, cell := range cells[i] {
			line += lipgloss.NewStyle().Width(widths[j] + 2).Align(lipgloss.Right).Render(cell)
		}
		if i == slowest && len(r.Rows) > 1 {
			b.WriteString("   " + warningStyle.Render(line) + "\n")
		} else {
			b.WriteString("   " + valueStyle.Render(line) + "\n")
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// slowestRow returns the index of the row with the highest average
func slowestRow(r *report.Report) int {
	idx := 0
	for i, row := range r.Rows {
		if row.Average > r.Rows[idx].Average {
			idx = i
		}
	}
	return idx
}

// FormatDuration prints a nanosecond duration with a readable unit
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.2fµs", float64(d)/float64(time.Microsecond))
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.3fs", d.Seconds())
	}
}
