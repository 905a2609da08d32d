package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm displays a warning box and asks a yes/no question on in.
// Only "y" or "yes" (any case) confirms; anything else, including EOF,
// declines.
func (p *Printer) Confirm(in io.Reader, title string, warnings []string, question string) bool {
	lines := []string{
		"",
		WarningTitleStyle.Render(fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, title)),
		"",
	}
	for _, warning := range warnings {
		lines = append(lines, lipgloss.NewStyle().Foreground(TextColor).Render("   • "+warning))
	}
	lines = append(lines, "")

	p.Println(ResultBoxStyle(p.width, WarningColor).Render(strings.Join(lines, "\n")))
	p.Print(WarningTitleStyle.Render(question + " [y/N]: "))

	input, err := bufio.NewReader(in).ReadString('\n')
	p.Newline()
	if err != nil && input == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}

	p.Println(MutedStyle.Render("  Operation cancelled."))
	return false
}
