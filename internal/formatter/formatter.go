// package formatter renders import reports and progress lines for terminal output
package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertmoss/linkhive/internal/tasks"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// RenderImportReport formats the counts from a finished import for the terminal.
func RenderImportReport(report *tasks.ImportReport) string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Import complete"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Collections created: %s\n", styles.ok.Render(fmt.Sprintf("%d", report.CollectionsCreated))))
	b.WriteString(fmt.Sprintf("  Bookmarks created:   %s\n", styles.ok.Render(fmt.Sprintf("%d", report.BookmarksCreated))))

	if report.InvalidSkipped > 0 {
		b.WriteString(fmt.Sprintf("  Invalid skipped:     %s\n", styles.warn.Render(fmt.Sprintf("%d", report.InvalidSkipped))))
	}

	b.WriteString(styles.help.Render("Metadata enrichment continues in the background."))
	b.WriteString("\n")

	return b.String()
}

// RenderProgress formats one progress line for a job.
func RenderProgress(jobID string, percentage int, status string) string {
	line := fmt.Sprintf("%s  %3d%%  %s", jobID, percentage, status)
	if status == tasks.StatusCompleted {
		return styles.ok.Render(line)
	}
	return styles.warn.Render(line)
}
