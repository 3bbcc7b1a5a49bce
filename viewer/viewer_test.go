package viewer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/surfdeck/surfdeck/deck"
	"github.com/surfdeck/surfdeck/surface"
)

func testDeck(t *testing.T, texts ...string) *deck.Deck {
	t.Helper()
	dir := t.TempDir()
	for i, text := range texts {
		s := surface.FromText(text, 4, 2, surface.PaletteColor(surface.White), surface.PaletteColor(surface.Black))
		data, err := s.Encode()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		name := filepath.Join(dir, string(rune('a'+i))+".srf")
		if err := os.WriteFile(name, data, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	d, err := deck.Load(dir, nil)
	if err != nil {
		t.Fatalf("load deck: %v", err)
	}
	return d
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "q":
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	default:
		return tea.KeyMsg{}
	}
}

func TestUpdate_Navigation(t *testing.T) {
	d := testDeck(t, "one", "two", "thr")
	m := New(d)

	next, _ := m.Update(keyMsg("right"))
	m = next.(Model)
	if d.Position() != "2/3" {
		t.Errorf("after right: %q", d.Position())
	}

	next, _ = m.Update(keyMsg("end"))
	m = next.(Model)
	if d.Position() != "3/3" {
		t.Errorf("after end: %q", d.Position())
	}

	next, _ = m.Update(keyMsg("left"))
	m = next.(Model)
	if d.Position() != "2/3" {
		t.Errorf("after left: %q", d.Position())
	}

	next, _ = m.Update(keyMsg("home"))
	_ = next
	if d.Position() != "1/3" {
		t.Errorf("after home: %q", d.Position())
	}
}

func TestUpdate_Quit(t *testing.T) {
	m := New(testDeck(t, "one"))
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatalf("quit key should produce a command")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Errorf("expected quit message, got %T", msg)
	}
}

func TestView_ShowsCounterAndContent(t *testing.T) {
	m := New(testDeck(t, "abc"))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	m = next.(Model)

	view := m.View()
	if !strings.Contains(view, "1/1") {
		t.Errorf("view should contain the slide counter:\n%s", view)
	}
	if !strings.Contains(view, "abc") {
		t.Errorf("view should contain slide text:\n%s", view)
	}
}

func TestView_EmptyDeck(t *testing.T) {
	m := New(testDeck(t))
	if !strings.Contains(m.View(), "No content available") {
		t.Errorf("empty deck view = %q", m.View())
	}
}
