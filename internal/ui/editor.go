package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nishant0581/metacount/internal/counter"
)

// editField is a counter setting the editor can change.
type editField int

const (
	fieldName editField = iota
	fieldNotes
	fieldStep
	fieldMin
	fieldMax
	fieldCount
)

func (f editField) String() string {
	switch f {
	case fieldName:
		return "Name"
	case fieldNotes:
		return "Notes"
	case fieldStep:
		return "Step"
	case fieldMin:
		return "Min"
	case fieldMax:
		return "Max"
	default:
		return "?"
	}
}

func (f editField) hint() string {
	switch f {
	case fieldStep:
		return "whole number; values below 1 become 1"
	case fieldMin, fieldMax:
		return "whole number, or empty for no limit"
	default:
		return ""
	}
}

// editorState holds the open edit modal.
type editorState struct {
	active bool
	id     string
	field  editField
	input  textinput.Model
	err    string
}

func fieldValue(c counter.Counter, f editField) string {
	switch f {
	case fieldName:
		return c.Name
	case fieldNotes:
		return c.Notes
	case fieldStep:
		return fmt.Sprintf("%d", c.Step)
	case fieldMin:
		if c.Min == nil {
			return ""
		}
		return fmt.Sprintf("%d", *c.Min)
	case fieldMax:
		if c.Max == nil {
			return ""
		}
		return fmt.Sprintf("%d", *c.Max)
	default:
		return ""
	}
}

// openEditor starts editing field of c.
func (m *Model) openEditor(c counter.Counter, f editField) tea.Cmd {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = 36
	ti.SetValue(fieldValue(c, f))
	ti.CursorEnd()
	m.editor = editorState{active: true, id: c.ID, field: f, input: ti}
	return m.editor.input.Focus()
}

// cycleField moves the editor to the next or previous field, reloading the
// stored value and discarding unapplied input.
func (m *Model) cycleField(delta int) tea.Cmd {
	c, ok := m.counterByID(m.editor.id)
	if !ok {
		m.editor = editorState{}
		return nil
	}
	next := (int(m.editor.field) + delta + int(fieldCount)) % int(fieldCount)
	return m.openEditor(c, editField(next))
}

// handleEditorKey processes keyboard input while the editor is open.
func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.editor = editorState{}
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		cmd := m.cycleField(1)
		return m, cmd
	case key.Matches(msg, m.keys.PrevField):
		cmd := m.cycleField(-1)
		return m, cmd
	case key.Matches(msg, m.keys.Confirm):
		if err := m.applyEdit(); err != nil {
			m.editor.err = err.Error()
			return m, nil
		}
		m.editor = editorState{}
		m.refreshCounters()
		return m, nil
	}

	var cmd tea.Cmd
	m.editor.input, cmd = m.editor.input.Update(msg)
	m.editor.err = ""
	return m, cmd
}

// applyEdit sends the editor value to the manager. Malformed numbers are
// rejected and the stored value is left as it was.
func (m *Model) applyEdit() error {
	id := m.editor.id
	value := m.editor.input.Value()
	switch m.editor.field {
	case fieldName:
		m.svc.SetName(id, value)
	case fieldNotes:
		m.svc.SetNotes(id, value)
	case fieldStep:
		step, err := counter.ParseStep(value)
		if err != nil {
			return err
		}
		m.svc.SetStep(id, step)
	case fieldMin:
		limit, err := counter.ParseBound(value)
		if err != nil {
			return err
		}
		m.svc.SetMin(id, limit)
	case fieldMax:
		limit, err := counter.ParseBound(value)
		if err != nil {
			return err
		}
		m.svc.SetMax(id, limit)
	}
	return nil
}

// renderEditor renders the edit modal over the counters view.
func (m Model) renderEditor() string {
	styles := m.theme.Styles()

	name := m.editor.id
	if c, ok := m.counterByID(m.editor.id); ok {
		name = c.Name
	}

	tabs := make([]string, 0, int(fieldCount))
	for f := fieldName; f < fieldCount; f++ {
		if f == m.editor.field {
			tabs = append(tabs, styles.AccentText.Bold(true).Render(f.String()))
		} else {
			tabs = append(tabs, styles.FaintText.Render(f.String()))
		}
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Edit " + truncate(name, 28)))
	b.WriteString("\n")
	b.WriteString(strings.Join(tabs, styles.FaintText.Render(" · ")))
	b.WriteString("\n\n")
	b.WriteString(m.editor.input.View())
	b.WriteString("\n")
	if hint := m.editor.field.hint(); hint != "" {
		b.WriteString(styles.FaintText.Render(hint))
		b.WriteString("\n")
	}
	if m.editor.err != "" {
		b.WriteString(styles.DangerText.Render(m.editor.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("enter apply · tab next field · esc cancel"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 2).
		Width(48)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
