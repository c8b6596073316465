package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rahulvramesh/pchelper/internal/session"
	"github.com/rahulvramesh/pchelper/internal/utils"
)

// View renders the UI
func (m Model) View() string {
	var s strings.Builder

	// Header with padding
	header := TitleStyle.Render("🧹 PC Helper")
	s.WriteString("\n")
	s.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, header))
	s.WriteString("\n\n")

	if m.notice != "" {
		s.WriteString(lipgloss.NewStyle().Padding(0, 3).Render(NoticeStyle.Render(m.notice)))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	var content string
	switch m.state {
	case "menu":
		content = m.renderMenu()
	case "cleanup":
		content = m.renderCleanup()
	case "confirm":
		content = m.renderConfirm()
	case "cleaning":
		content = m.renderCleaning()
	case "errors":
		content = m.renderTable("Error Log", "No critical errors have been recorded")
	case "timers":
		content = m.renderTable("Timers", "No timers are configured")
	}

	// Add horizontal padding
	paddedContent := lipgloss.NewStyle().Padding(0, 3).Render(content)
	s.WriteString(paddedContent)

	if m.err != nil {
		s.WriteString("\n\n")
		errMsg := lipgloss.NewStyle().Padding(0, 3).Render(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString(errMsg)
	}

	s.WriteString("\n\n")
	return s.String()
}

func (m Model) renderMenu() string {
	var s strings.Builder

	items := []string{
		"🧹 Clean up a folder",
		"⚠️  Error log",
		"⏱  Timers",
		"❌ Exit",
	}

	s.WriteString(HeaderStyle.Render("Main Menu"))
	s.WriteString("\n\n\n")

	for i, item := range items {
		cursor := "  "
		style := lipgloss.NewStyle()

		if m.menuChoice == i {
			cursor = "▸ "
			style = SelectedStyle
		}

		s.WriteString("  " + cursor + style.Render(item) + "\n\n")
	}

	s.WriteString("\n\n")
	s.WriteString(DimStyle.Render("Use ↑/↓ or j/k to navigate, Enter to select, q to quit"))

	return s.String()
}

func (m Model) renderConfirm() string {
	var s strings.Builder

	var size int64
	for _, e := range m.pending {
		if e.SizeKnown() {
			size += e.Size
		}
	}

	s.WriteString(HeaderStyle.Render("Delete?"))
	s.WriteString("\n\n\n")
	if len(m.pending) == 1 {
		s.WriteString("  " + m.pending[0].Path)
	} else {
		s.WriteString(fmt.Sprintf("  %d items", len(m.pending)))
	}
	s.WriteString(" (" + humanize.Bytes(uint64(size)) + ")")
	s.WriteString("\n\n")
	s.WriteString("  " + WarningStyle.Render("This permanently removes them and cannot be undone."))
	s.WriteString("\n\n\n")
	s.WriteString(DimStyle.Render("y/Enter: Delete • n/ESC: Cancel"))

	return s.String()
}

func (m Model) renderCleaning() string {
	var s strings.Builder

	s.WriteString(HeaderStyle.Render("Cleaning Files..."))
	s.WriteString("\n\n\n")
	s.WriteString("  " + m.spinner.View() + " " + m.message)

	return s.String()
}

func (m Model) renderTable(title, empty string) string {
	var s strings.Builder

	s.WriteString(HeaderStyle.Render(title))
	s.WriteString("\n\n\n")
	if len(m.table.Rows()) == 0 {
		s.WriteString("  " + DimStyle.Render(empty))
	} else {
		s.WriteString(m.table.View())
	}
	s.WriteString("\n\n\n")
	s.WriteString(DimStyle.Render("Use ↑/↓ or j/k to navigate, ESC or q to go back to menu"))

	return s.String()
}

func (m Model) renderCleanup() string {
	var s strings.Builder
	snap := m.deps.View.Snapshot()

	s.WriteString(HeaderStyle.Render("📁 " + utils.TruncatePathLeft(snap.Dir, max(20, m.width-12))))
	s.WriteString("\n\n")

	s.WriteString("  " + m.renderStatus(snap))
	s.WriteString("\n")
	if strings.Contains(m.message, "✅") {
		s.WriteString("  " + SuccessStyle.Render(m.message))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	entries := snap.Entries
	if len(entries) == 0 {
		if snap.State != session.Listing {
			s.WriteString("  " + DimStyle.Render("No items found"))
		}
		s.WriteString("\n\n")
		s.WriteString(DimStyle.Render("Backspace: Parent folder • ESC: Back"))
		return s.String()
	}

	viewportHeight := m.viewportHeight()
	startIdx := clamp(m.offset, 0, len(entries)-1)
	endIdx := min(startIdx+viewportHeight, len(entries))

	// Show scroll indicator if needed
	if len(entries) > viewportHeight {
		scrollInfo := fmt.Sprintf("[%d-%d of %d items]", startIdx+1, endIdx, len(entries))
		s.WriteString("  " + DimStyle.Render(scrollInfo))
		if startIdx > 0 {
			s.WriteString(DimStyle.Render(" ↑"))
		}
		if endIdx < len(entries) {
			s.WriteString(DimStyle.Render(" ↓"))
		}
		s.WriteString("\n\n")
	}

	nameWidth := max(10, min(45, m.width-50))
	for i := startIdx; i < endIdx; i++ {
		item := entries[i]
		cursor := "  "
		style := lipgloss.NewStyle()

		if m.choice == i {
			cursor = "▸ "
			style = SelectedStyle
		}

		checkbox := "☐"
		if item.Selected {
			checkbox = "☑️"
		}

		icon := "📄"
		if item.IsDir {
			icon = "📁"
		}

		line := fmt.Sprintf("%s %s %-*s %10s  %s",
			checkbox,
			icon,
			nameWidth,
			utils.TruncatePath(item.Name, nameWidth),
			utils.FormatFileSize(item.Size),
			utils.FormatAge(item.ModTime),
		)

		s.WriteString("  " + cursor + style.Render(line) + "\n")
	}

	var totalSize int64
	for _, item := range entries {
		if item.SizeKnown() {
			totalSize += item.Size
		}
	}
	s.WriteString("\n")
	s.WriteString("  " + DimStyle.Render(fmt.Sprintf("Total: %s • Sort: %s %s", humanize.Bytes(uint64(totalSize)), snap.SortKey, snap.SortDir)))

	if n := snap.SelectedCount(); n > 0 {
		s.WriteString(" • ")
		s.WriteString(SuccessStyle.Render(fmt.Sprintf("Marked: %d items (%s)", n, humanize.Bytes(uint64(snap.SelectedSize())))))
	}
	s.WriteString("\n\n")

	s.WriteString(DimStyle.Render("↑/↓ Navigate • Enter: Open • Backspace: Parent • s: Sort • r: Reverse • Space: Mark • Shift+A: Mark All • Shift+N: Unmark All • Shift+D: Delete Marked • c: Delete • ESC: Stop/Back"))

	return s.String()
}

func (m Model) renderStatus(snap session.Snapshot) string {
	switch snap.State {
	case session.Listing:
		return m.spinner.View() + " Listing..."
	case session.SizingInProgress:
		return m.spinner.View() + fmt.Sprintf(" Sizing %d/%d ", snap.Progress.Completed, snap.Progress.Total) +
			m.progress.ViewAs(snap.Progress.Percent())
	case session.Cancelled:
		return WarningStyle.Render(fmt.Sprintf("Stopped after %d of %d items", snap.Progress.Completed, snap.Progress.Total))
	case session.Ready:
		largest := ""
		if snap.Progress.MaxSize > 0 {
			largest = " • largest " + humanize.Bytes(uint64(snap.Progress.MaxSize))
		}
		return SuccessStyle.Render(fmt.Sprintf("%d items sized%s", snap.Progress.Total, largest))
	}
	return ""
}
