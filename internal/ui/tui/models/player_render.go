package models

import (
	"fmt"
	"strings"

	"github.com/PizzaHomicide/shuchu/internal/domain"
	"github.com/PizzaHomicide/shuchu/internal/playback"
	kb "github.com/PizzaHomicide/shuchu/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/shuchu/internal/ui/tui/components"
	"github.com/PizzaHomicide/shuchu/internal/ui/tui/styles"
	"github.com/PizzaHomicide/shuchu/internal/ui/tui/util"
	"github.com/charmbracelet/lipgloss"
)

// Header, spacing and footer rows around the panels
const chromeHeight = 5

func (m *PlayerModel) mainWidth() int {
	return max(m.width-sidebarWidth, 20)
}

func (m *PlayerModel) panelHeight() int {
	return max(m.height-chromeHeight, 6)
}

// listHeight is the number of module rows the sidebar can show
func (m *PlayerModel) listHeight() int {
	// Border, progress block and search line
	return max(m.panelHeight()-7, 1)
}

// View renders the player screen
func (m *PlayerModel) View() string {
	course := m.controller.Course()

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSidebar(course),
		m.renderMain(course),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(course),
		"",
		body,
		m.renderFooter(),
	)
}

func (m *PlayerModel) renderHeader(course *domain.Course) string {
	title := "集中 Shuchu"
	if course.Title != "" {
		title += " • " + course.Title
	}
	header := styles.Header(m.width, util.TruncateString(title, max(m.width-2, 1)))

	who := "Not signed in"
	if m.user != nil {
		if user, ok := m.user.CurrentUser(); ok && user.Name != "" {
			who = "Signed in as " + user.Name
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, styles.Subtle.Render(" "+who))
}

func (m *PlayerModel) renderSidebar(course *domain.Course) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Modules"))
	b.WriteString(styles.Subtle.Render(fmt.Sprintf("  %d/%d done", course.CompletedCount(), len(course.Videos))))
	b.WriteString("\n")
	b.WriteString(m.courseBar.ViewAs(float64(course.Progress()) / 100))
	b.WriteString(styles.Subtle.Render(fmt.Sprintf(" %d%%", course.Progress())))
	b.WriteString("\n\n")

	if m.searchMode || m.searchInput.Value() != "" {
		b.WriteString(m.searchInput.View())
	} else {
		b.WriteString(styles.Subtle.Render("/ to search"))
	}
	b.WriteString("\n")

	b.WriteString(m.renderModuleList(course))

	return styles.Panel(sidebarWidth, m.panelHeight(), b.String(), m.searchMode)
}

func (m *PlayerModel) renderModuleList(course *domain.Course) string {
	if len(m.filtered) == 0 {
		if len(course.Videos) == 0 {
			return styles.Subtle.Render("This protocol has no modules")
		}
		return styles.Subtle.Render("No modules match")
	}

	visible := m.listHeight()
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.filtered))

	active := m.controller.Session().ActiveVideoIndex
	rowWidth := sidebarWidth - 4

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		index := m.filtered[i]
		rows = append(rows, m.formatModuleRow(course, index, index == active, i == m.cursor, rowWidth))
	}
	return strings.Join(rows, "\n")
}

func (m *PlayerModel) formatModuleRow(course *domain.Course, index int, active, selected bool, width int) string {
	video := course.Videos[index]

	marker := "  "
	switch {
	case active:
		marker = "▶ "
	case video.IsCompleted:
		marker = "✓ "
	}

	duration := video.Duration
	titleWidth := width - lipgloss.Width(marker) - lipgloss.Width(duration) - 1
	title := util.TruncateString(video.DisplayTitle(index), max(titleWidth, 1))
	gap := max(width-lipgloss.Width(marker)-lipgloss.Width(title)-lipgloss.Width(duration), 1)
	row := marker + title + strings.Repeat(" ", gap) + duration

	switch {
	case selected:
		return styles.Selected.Render(row)
	case active:
		return styles.Key.Render(row)
	case video.IsCompleted:
		return styles.Success.Render(row)
	default:
		return row
	}
}

func (m *PlayerModel) renderMain(course *domain.Course) string {
	s := m.controller.Session()
	width := m.mainWidth()
	contentWidth := max(width-4, 1)

	var b strings.Builder
	video := m.controller.CurrentVideo()
	if video == nil {
		b.WriteString(styles.Subtle.Render("Nothing to play"))
		return styles.Panel(width, m.panelHeight(), b.String(), false)
	}

	completed := ""
	if video.IsCompleted {
		completed = styles.Success.Render("  ✓ completed")
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(
		util.TruncateString(video.DisplayTitle(s.ActiveVideoIndex), contentWidth-lipgloss.Width(completed))))
	b.WriteString(completed)
	b.WriteString("\n")
	b.WriteString(styles.Subtle.Render(fmt.Sprintf("Module %d of %d", s.ActiveVideoIndex+1, len(course.Videos))))
	b.WriteString("\n\n")

	if s.Invalid {
		b.WriteString(styles.ErrorMsg.Render("Invalid video"))
		b.WriteString("\n")
		if m.widgetErr != nil {
			b.WriteString(styles.Subtle.Width(contentWidth).Render(m.widgetErr.Error()))
			b.WriteString("\n")
		}
		b.WriteString(styles.Subtle.Render("Pick another module to continue."))
		return styles.Panel(width, m.panelHeight(), b.String(), false)
	}

	b.WriteString(stateLabel(s))
	b.WriteString("\n\n")

	if s.ControlsVisible {
		b.WriteString(m.playbackBar.ViewAs(s.PlayedFraction))
		b.WriteString("\n")
		clock := fmt.Sprintf("%s / %s", util.FormatClock(s.ElapsedSeconds()), util.FormatClock(s.DurationSeconds))
		if s.Seeking {
			clock += styles.Warning.Render("  scrubbing, enter to jump, esc to cancel")
		}
		b.WriteString(clock)
		b.WriteString("\n\n")
		b.WriteString(volumeLabel(s))
		if s.Fullscreen {
			b.WriteString(styles.Subtle.Render("  • fullscreen"))
		}
	} else {
		b.WriteString(styles.Subtle.Render("Controls hidden. Press any key or move the mouse."))
	}

	return styles.Panel(width, m.panelHeight(), b.String(), false)
}

func stateLabel(s playback.Session) string {
	switch s.State {
	case playback.StatePlaying:
		return styles.Success.Render("▶ Playing")
	case playback.StatePaused:
		return styles.Info.Render("⏸ Paused")
	case playback.StateBuffering:
		return styles.Warning.Render("… Buffering")
	case playback.StateEnded:
		return styles.Info.Render("■ Ended")
	default:
		return styles.Subtle.Render("Ready to play, press space")
	}
}

func volumeLabel(s playback.Session) string {
	if s.Muted {
		return "Volume: " + styles.Warning.Render("muted")
	}
	return fmt.Sprintf("Volume: %.0f%%", s.Volume)
}

func (m *PlayerModel) renderFooter() string {
	if !m.controller.Session().ControlsVisible && !m.searchMode && !m.seekMode {
		return ""
	}

	switch {
	case m.searchMode:
		return components.Footer(m.width,
			components.HintFor(kb.ContextSearchMode, "Apply", kb.ActionSearchComplete),
			components.HintFor(kb.ContextSearchMode, "Clear", kb.ActionBack),
		)
	case m.seekMode:
		return components.Footer(m.width,
			components.HintFor(kb.ContextSeekMode, "Jump", kb.ActionSeekCommit),
			components.HintFor(kb.ContextSeekMode, "Cancel", kb.ActionBack),
			components.HintFor(kb.ContextSeekMode, "1%", kb.ActionSeekStepBack, kb.ActionSeekStepForward),
			components.HintFor(kb.ContextSeekMode, "10%", kb.ActionSeekJumpBack, kb.ActionSeekJumpForward),
		)
	}
	return components.Footer(m.width,
		components.HintFor(kb.ContextPlayer, "Play/Pause", kb.ActionPlayPause),
		components.HintFor(kb.ContextPlayer, "Seek", kb.ActionSeekBackward, kb.ActionSeekForward),
		components.HintFor(kb.ContextPlayer, "Next/Prev", kb.ActionNextModule, kb.ActionPrevModule),
		components.HintFor(kb.ContextPlayer, "Complete", kb.ActionToggleComplete),
		components.HintFor(kb.ContextPlayer, "Mute", kb.ActionToggleMute),
		components.HintFor(kb.ContextGlobal, "Help", kb.ActionToggleHelp),
	)
}
