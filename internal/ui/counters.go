package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/nishant0581/metacount/internal/counter"
)

// Badge states, keyed into Theme.StateColors.
const (
	stateAuto  = "auto"
	stateAtMax = "at_max"
	stateAtMin = "at_min"
	stateIdle  = "idle"
)

// counterState classifies a counter for its badge.
func counterState(c counter.Counter) string {
	switch {
	case c.AutoIncrementing:
		return stateAuto
	case !c.CanIncrement():
		return stateAtMax
	case c.Min != nil && !c.CanDecrement():
		return stateAtMin
	default:
		return stateIdle
	}
}

func stateLabel(state string) string {
	switch state {
	case stateAuto:
		return "AUTO"
	case stateAtMax:
		return "MAX"
	case stateAtMin:
		return "MIN"
	default:
		return "IDLE"
	}
}

// selectedCounter returns the counter under the cursor.
func (m Model) selectedCounter() (counter.Counter, bool) {
	if m.selectedRow < 0 || m.selectedRow >= len(m.counters) {
		return counter.Counter{}, false
	}
	return m.counters[m.selectedRow], true
}

// selectByID moves the cursor to id when present.
func (m *Model) selectByID(id string) {
	if i := counter.Find(m.counters, id); i >= 0 {
		m.selectedRow = i
	}
}

// setCounters replaces the displayed collection, keeping the cursor on the
// same counter when it still exists.
func (m *Model) setCounters(counters []counter.Counter) {
	var current string
	if c, ok := m.selectedCounter(); ok {
		current = c.ID
	}
	m.counters = counters
	if current != "" {
		m.selectByID(current)
	}
	m.clampSelection()
	m.updateHistoryViewport()
}

func (m *Model) clampSelection() {
	if m.selectedRow >= len(m.counters) {
		m.selectedRow = len(m.counters) - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

// paneWidths splits the content width between the list and the detail pane.
func (m Model) paneWidths() (list, detail int) {
	if m.width >= LayoutExtraWideWidth {
		list = m.width * 30 / 100
	} else {
		list = m.width * 40 / 100
	}
	return list, m.width - list
}

func (m *Model) initHistoryViewport() {
	m.historyViewport = viewport.New(0, 0)
}

// updateHistoryViewport refills the history pane for the selected counter,
// newest entry first.
func (m *Model) updateHistoryViewport() {
	_, detailWidth := m.paneWidths()
	m.historyViewport.Width = max(detailWidth-4, 10)

	c, ok := m.selectedCounter()
	if !ok {
		m.historyViewport.SetContent("")
		return
	}
	styles := m.theme.Styles()
	lines := make([]string, 0, len(c.History))
	for i := len(c.History) - 1; i >= 0; i-- {
		h := c.History[i]
		lines = append(lines,
			styles.FaintText.Render(h.Timestamp.Format("15:04:05"))+"  "+
				styles.Text.Render(fmt.Sprintf("%d", h.Value)))
	}
	m.historyViewport.SetContent(strings.Join(lines, "\n"))
	m.historyViewport.GotoTop()
}

// renderCounters renders the counters view with split layout (list + detail).
func (m Model) renderCounters() string {
	styles := m.theme.Styles()
	contentHeight := m.height - 2

	if len(m.counters) == 0 {
		emptyMsg := styles.MutedText.Render("No counters. Press a to add one.")
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, emptyMsg)
	}

	listWidth, detailWidth := m.paneWidths()

	listTitle := fmt.Sprintf("Counters (%d)", len(m.counters))
	listContent := m.renderCounterList(listWidth-2, m.theme.FocusBg)
	listPane := m.renderTitledBox(listTitle, listContent, listWidth, contentHeight, true)

	var detailContent string
	if c, ok := m.selectedCounter(); ok {
		detailContent = m.renderCounterDetail(c, detailWidth-4, contentHeight-2)
	}
	detailPane := m.renderTitledBox("Details", detailContent, detailWidth, contentHeight, false)

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// renderCounterList renders one row per counter.
func (m Model) renderCounterList(width int, bgColor string) string {
	lines := make([]string, 0, len(m.counters))
	for i, c := range m.counters {
		rowBg := bgColor
		if i == m.selectedRow {
			rowBg = m.theme.SelectionBg
		}
		content := m.formatCounterRow(c, width, rowBg, i == m.selectedRow)
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(rowBg)).
			Width(width).
			Render(content))
	}
	return strings.Join(lines, "\n")
}

// formatCounterRow formats "Name · Count ●". Selected rows use SelectionText
// throughout for contrast.
func (m Model) formatCounterRow(c counter.Counter, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)
	countStr := fmt.Sprintf("%d", c.Count)
	marker := " "
	if c.AutoIncrementing {
		marker = "●"
	}
	nameWidth := max(width-len(countStr)-5, 6)

	var nameStyle, sepStyle, countStyle, markerStyle lipgloss.Style
	if selected {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		nameStyle, sepStyle, countStyle, markerStyle = selText, selText, selText.Bold(true), selText
	} else {
		styles := m.theme.Styles()
		nameStyle = styles.Text
		sepStyle = styles.FaintText
		countStyle = styles.AccentText
		markerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StateColors[stateAuto]))
	}

	return bg.Render(padRight(truncate(c.Name, nameWidth), nameWidth), nameStyle) +
		bg.Render(" · ", sepStyle) +
		bg.Render(countStr, countStyle) +
		bg.Space() +
		bg.Render(marker, markerStyle)
}

// renderCounterDetail renders the detail pane body for c.
func (m Model) renderCounterDetail(c counter.Counter, width, height int) string {
	bgColor := m.theme.SurfaceAlt
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	var lines []string
	lines = append(lines,
		bg.Render(c.Name, styles.Text.Bold(true)),
		bg.Render(c.ID, styles.FaintText),
		"",
	)

	state := counterState(c)
	lines = append(lines,
		bg.Render(fmt.Sprintf("%d", c.Count), styles.AccentText.Bold(true))+
			bg.Spaces(2)+
			styles.StateStyle(state).Render(stateLabel(state)),
		"",
		bg.Label("Step", fmt.Sprintf("%d", c.Step), styles.MutedText, styles.Text)+bg.Spaces(3)+
			bg.Label("Min", formatBound(c.Min), styles.MutedText, styles.Text)+bg.Spaces(3)+
			bg.Label("Max", formatBound(c.Max), styles.MutedText, styles.Text),
	)

	pct := c.Progress()
	barWidth := min(ProgressBarWidth, max(width-8, 4))
	fill := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StateColors[state]))
	lines = append(lines,
		bg.Bar(pct, barWidth, fill, styles.FaintText)+bg.Space()+
			bg.Render(fmt.Sprintf("%3.0f%%", pct), styles.MutedText),
		"",
	)

	if strings.TrimSpace(c.Notes) != "" {
		lines = append(lines, bg.Render("Notes", styles.MutedText))
		for _, l := range strings.Split(wordwrap.String(c.Notes, max(width, 10)), "\n") {
			lines = append(lines, bg.Render(l, styles.Text))
		}
		lines = append(lines, "")
	}

	lines = append(lines, bg.Render(fmt.Sprintf("History (%d/%d)", len(c.History), counter.HistoryCapacity), styles.MutedText))

	vp := m.historyViewport
	vp.Height = max(min(height-len(lines), HistoryDisplayLimit), 1)
	lines = append(lines, vp.View())

	return strings.Join(lines, "\n")
}

// renderTitledBox renders content in a box with the title embedded in the
// top border: ┌─── Title ───┐. Focused boxes use BorderFocus and FocusBg.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).Background(lipgloss.Color(bgColorStr))
	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	lines := make([]string, 0, boxHeight+2)
	lines = append(lines, topBorder)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}
	lines = append(lines, bottomBorder)
	return strings.Join(lines, "\n")
}
