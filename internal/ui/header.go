package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("metacount", styles.Logo)}

	parts = append(parts,
		bg.Label("Counters:", fmt.Sprintf("%d", len(m.counters)), styles.MutedText, styles.Text))

	auto := m.autoCount()
	autoStyle := styles.MutedText
	if auto > 0 {
		autoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StateColors[stateAuto]))
	}
	parts = append(parts, bg.Label("Auto:", fmt.Sprintf("%d", auto), styles.MutedText, autoStyle))

	if status := m.formatMarketStatus(compact, styles, bg); status != "" {
		parts = append(parts, status)
	}

	if m.statusMsg != "" {
		maxLen := 60
		if compact {
			maxLen = 30
		}
		parts = append(parts,
			bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.statusMsg, maxLen), styles.WarningText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// formatMarketStatus summarizes the market poller, or "" when it is disabled.
func (m Model) formatMarketStatus(compact bool, styles Styles, bg BgStyle) string {
	if m.market == nil {
		return ""
	}
	snap := m.marketSnap
	switch {
	case snap.IsOffline():
		return bg.Render("● MARKET OFFLINE", styles.DangerText)
	case snap.HasData():
		status := bg.Render("● MARKET", styles.SuccessText)
		if !compact && !snap.LastUpdated.IsZero() {
			status += bg.Space() + bg.Render(humanize.RelTime(snap.LastUpdated, m.now(), "ago", "from now"), styles.MutedText)
		}
		return status
	default:
		return bg.Render("● MARKET", styles.WarningText)
	}
}

func (m Model) autoCount() int {
	n := 0
	for _, c := range m.counters {
		if c.AutoIncrementing {
			n++
		}
	}
	return n
}

// renderCommandBar renders the command hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewMarket:
		commands = []cmd{
			{"R", "Redraw"},
			{"c", "Counters"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"+/-", "Inc/Dec"},
			{"r", "Reset"},
			{"u", "Undo"},
			{"s/p/S", "Auto"},
			{"e", "Edit"},
			{"a/x", "Add/Remove"},
			{"m", "Market"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}
