package ui

import (
	"reflect"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" || names[1] != "Kanagawa" || names[2] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Nightfox Kanagawa Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	cases := map[string]string{
		"Nightfox": "Kanagawa",
		"Kanagawa": "Slate",
		"Slate":    "Nightfox",
		"Unknown":  "Nightfox",
	}
	for current, want := range cases {
		if got := NextTheme(current); got != want {
			t.Fatalf("NextTheme(%s) = %q, want %q", current, got, want)
		}
	}
}

func TestGetThemeFallsBackToNightfox(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q", got)
	}
	if got := GetTheme("does-not-exist").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(unknown).Name = %q, want Nightfox", got)
	}
}

func TestThemesDefineEveryState(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, state := range []string{stateAuto, stateAtMax, stateAtMin, stateIdle} {
			if th.StateColors[state] == "" {
				t.Fatalf("theme %s has no color for %s", name, state)
			}
		}
	}
}

func TestThemesSetEveryColor(t *testing.T) {
	for _, name := range ThemeNames() {
		v := reflect.ValueOf(GetTheme(name))
		for i := 0; i < v.NumField(); i++ {
			f := v.Field(i)
			if f.Kind() == reflect.String && f.String() == "" {
				t.Fatalf("theme %s leaves %s empty", name, v.Type().Field(i).Name)
			}
		}
	}
}

func TestStateStyleFallsBackToMuted(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles()

	if got := styles.StateStyle(stateAuto).GetBackground(); got != lipgloss.Color(th.StateColors[stateAuto]) {
		t.Fatalf("StateStyle(auto) background = %v", got)
	}
	if got := styles.StateStyle("bogus").GetBackground(); got != lipgloss.Color(th.Muted) {
		t.Fatalf("StateStyle(bogus) background = %v, want %v", got, th.Muted)
	}

	// WithBackground keeps the badge palette.
	bgStyles := styles.WithBackground(th.Surface)
	if got := bgStyles.StateStyle("bogus").GetBackground(); got != lipgloss.Color(th.Muted) {
		t.Fatalf("WithBackground lost muted color: %v", got)
	}
}
