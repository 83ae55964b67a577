package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nishant0581/metacount/internal/app"
	"github.com/nishant0581/metacount/internal/counter"
	"github.com/nishant0581/metacount/internal/logging"
)

var (
	listHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#719cd6"))
	listName   = lipgloss.NewStyle().Bold(true)
	listValue  = lipgloss.NewStyle().Foreground(lipgloss.Color("#dbc074"))
	listMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("#738091"))
	listBar    = lipgloss.NewStyle().Foreground(lipgloss.Color("#81b29a"))
)

const listBarWidth = 20

func newListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the stored counters",
		Long: `Print the stored counters without starting the TUI or any timers.

Examples:
  metacount list
  metacount list --backend sqlite --storage ~/counters.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, ctx, closeLog, err := logging.Setup(cmd.Context(), logging.Options{
				Debug:   root.debug,
				Console: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			counters, err := app.ListCounters(ctx, root.appOptions())
			if err != nil {
				return err
			}
			renderList(cmd.OutOrStdout(), counters)
			return nil
		},
	}
}

// renderList writes one line per counter: name, value, step, bounds and a
// progress bar.
func renderList(w io.Writer, counters []counter.Counter) {
	if len(counters) == 0 {
		_, _ = fmt.Fprintln(w, listMuted.Render("No counters stored."))
		return
	}

	nameWidth := len("NAME")
	for _, c := range counters {
		nameWidth = max(nameWidth, lipgloss.Width(c.Name))
	}
	nameWidth = min(nameWidth, 32)

	header := fmt.Sprintf("%-*s  %8s  %5s  %-15s  %s", nameWidth, "NAME", "VALUE", "STEP", "BOUNDS", "PROGRESS")
	_, _ = fmt.Fprintln(w, listHeader.Render(header))

	for _, c := range counters {
		name := c.Name
		if lipgloss.Width(name) > nameWidth {
			name = string([]rune(name)[:nameWidth-1]) + "…"
		}
		pct := c.Progress()
		filled := int(pct / 100 * listBarWidth)
		bar := listBar.Render(strings.Repeat("█", filled)) +
			listMuted.Render(strings.Repeat("░", listBarWidth-filled))

		line := listName.Render(padName(name, nameWidth)) + "  " +
			listValue.Render(fmt.Sprintf("%8d", c.Count)) + "  " +
			fmt.Sprintf("%5d", c.Step) + "  " +
			listMuted.Render(fmt.Sprintf("%-15s", formatBounds(c))) + "  " +
			bar + listMuted.Render(fmt.Sprintf(" %3.0f%%", pct))
		_, _ = fmt.Fprintln(w, line)
		if notes := strings.TrimSpace(c.Notes); notes != "" {
			_, _ = fmt.Fprintln(w, listMuted.Render("  "+notes))
		}
	}
}

func padName(name string, width int) string {
	if pad := width - lipgloss.Width(name); pad > 0 {
		return name + strings.Repeat(" ", pad)
	}
	return name
}

func formatBounds(c counter.Counter) string {
	bound := func(v *int) string {
		if v == nil {
			return "·"
		}
		return fmt.Sprintf("%d", *v)
	}
	if c.Min == nil && c.Max == nil {
		return "unbounded"
	}
	return "[" + bound(c.Min) + ", " + bound(c.Max) + "]"
}
