package shgrid

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"shgrid/grid"
	"shgrid/style"
)

// RenderFooter renders a footer with paging on the left and the source on the right.
func RenderFooter(left, right string, width int) string {
	footerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return footerStyle.Render(left + strings.Repeat(" ", padding) + right)
}

// pagingSummary describes the current page, e.g. "page 2/5  48 rows  10/page".
func pagingSummary[T any](state grid.State[T], page, pages, limit int) string {

	if pages == 0 {
		page = -1
	}

	summary := fmt.Sprintf("page %d/%d  %d rows  %d/page", page+1, pages, state.Count, limit)
	if state.Loading {
		summary += "  " + style.MutedStyle.Render("loading…")
	}
	return summary
}
