package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m SkillListModel, msgs ...tea.Msg) SkillListModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		if m, ok = next.(SkillListModel); !ok {
			t.Fatalf("Update() returned %T", next)
		}
	}
	return m
}

func TestSkillListNavigation(t *testing.T) {
	m := NewSkillListModel(fixtureEntries())

	m = send(t, m, keys("k"))
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first row: %d", m.Cursor)
	}
	m = send(t, m, keys("j"), tea.KeyMsg{Type: tea.KeyDown}, keys("j"))
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2 (clamped at last row)", m.Cursor)
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(SkillListModel)
	if m.Selected == nil || m.Selected.Slug != "docs-writer" {
		t.Fatalf("Selected = %v, want docs-writer", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestSkillListScrolling(t *testing.T) {
	m := NewSkillListModel(fixtureEntries())
	m.Height = 2

	m = send(t, m, keys("j"), keys("j"))
	if m.Offset != 1 {
		t.Errorf("Offset = %d, want 1", m.Offset)
	}
	m = send(t, m, keys("k"), keys("k"))
	if m.Offset != 0 {
		t.Errorf("Offset = %d, want 0", m.Offset)
	}
}

func TestSkillListFilter(t *testing.T) {
	m := NewSkillListModel(fixtureEntries())

	m = send(t, m, keys("/"))
	if !m.Filtering {
		t.Fatal("/ should enter filter mode")
	}
	// q is filter text while filtering, not quit.
	m = send(t, m, keys("g"), keys("t"), keys("h"), keys("q"))
	if m.Filter != "gthq" {
		t.Errorf("Filter = %q, want %q", m.Filter, "gthq")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Filter != "gth" {
		t.Errorf("Filter after backspace = %q, want %q", m.Filter, "gth")
	}
	if len(m.Visible) != 1 || m.Visible[0].Slug != "git-helper" {
		t.Errorf("Visible = %v, want [git-helper]", slugsOf(m.Visible))
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Filtering || m.Filter != "gth" {
		t.Errorf("enter should keep the filter: filtering=%v filter=%q", m.Filtering, m.Filter)
	}
	if !strings.Contains(m.View(), "filter: gth") {
		t.Error("View() should show the active filter")
	}

	m = send(t, m, keys("/"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.Filter != "" || len(m.Visible) != 3 {
		t.Errorf("esc should clear the filter: filter=%q visible=%d", m.Filter, len(m.Visible))
	}
}

func TestSkillListEmptyFilterResult(t *testing.T) {
	m := NewSkillListModel(fixtureEntries())
	m = send(t, m, keys("/"), keys("zzzz"), tea.KeyMsg{Type: tea.KeyEnter})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(SkillListModel)
	if m.Selected != nil || cmd != nil {
		t.Error("enter on an empty list should do nothing")
	}
	if !strings.Contains(m.View(), "no matches") {
		t.Error("View() should report no matches")
	}
}

func TestSkillListView(t *testing.T) {
	m := NewSkillListModel(fixtureEntries())
	view := m.View()
	for _, want := range []string{"PDF Tools", "Git Helper", "[1/3]", "Read and fill PDF forms"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
