package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmynk/splitchain/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3AA99F"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#575653"))
	oweStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D14D41"))
	owedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#879A39"))
)

// renderTable prints a simple bordered table.
func renderTable(title string, headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	if title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(title))
		b.WriteString("\n")
	}

	line := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < len(widths)-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	line("╭", "┬", "╮")
	b.WriteString(dimStyle.Render("│"))
	for i, h := range headers {
		b.WriteString(headerStyle.Render(fmt.Sprintf(" %-*s ", widths[i], h)))
		if i < len(headers)-1 {
			b.WriteString(dimStyle.Render("│"))
		}
	}
	b.WriteString(dimStyle.Render("│"))
	b.WriteString("\n")
	line("├", "┼", "┤")

	for _, row := range rows {
		b.WriteString(dimStyle.Render("│"))
		for i, cell := range row {
			b.WriteString(fmt.Sprintf(" %-*s ", widths[i], cell))
			if i < len(row)-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}
	line("╰", "┴", "╯")

	return b.String()
}

// formatSigned renders an amount colored by direction from the user's
// point of view.
func formatSigned(a models.Amount, dir models.Direction) string {
	if dir == models.TheyOwe {
		return owedStyle.Render("+" + models.FormatDisplay(a))
	}
	return oweStyle.Render("-" + models.FormatDisplay(a))
}
