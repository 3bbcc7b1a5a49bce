package deck

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/surfdeck/surfdeck/surface"
)

func writeSlide(t *testing.T, dir, name, text string) {
	t.Helper()
	s := surface.FromText(text, 4, 2, surface.PaletteColor(surface.White), surface.PaletteColor(surface.Black))
	data, err := s.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoad_SortedNavigation(t *testing.T) {
	dir := t.TempDir()
	writeSlide(t, dir, "02-b.srf", "bbbb")
	writeSlide(t, dir, "01-a.srf", "aaaa")
	writeSlide(t, dir, "03-c.srf", "cccc")

	d, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", d.Len())
	}

	if d.Current().At(0, 0).Rune != 'a' {
		t.Errorf("first slide should sort first")
	}
	if d.Position() != "1/3" {
		t.Errorf("Position() = %q", d.Position())
	}

	if !d.Next() || d.Current().At(0, 0).Rune != 'b' {
		t.Errorf("Next should land on second slide")
	}
	d.Last()
	if d.Position() != "3/3" {
		t.Errorf("Last: Position() = %q", d.Position())
	}
	if d.Next() {
		t.Errorf("Next at end should not move")
	}
	d.First()
	if d.Prev() {
		t.Errorf("Prev at start should not move")
	}
}

func TestLoad_SkipsCorrupt(t *testing.T) {
	dir := t.TempDir()
	writeSlide(t, dir, "01-good.srf", "ok")
	if err := os.WriteFile(filepath.Join(dir, "02-bad.srf"), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	core, obs := observer.New(zap.InfoLevel)
	d, err := Load(dir, zap.New(core))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want corrupt slide skipped", d.Len())
	}
	if obs.FilterMessage("failed to load slide").Len() != 1 {
		t.Errorf("corrupt slide should be logged")
	}
}

func TestLoad_EmptyDeck(t *testing.T) {
	d, err := Load(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Current() != nil {
		t.Errorf("empty deck should have no current slide")
	}
	if d.Position() != "1/0" {
		t.Errorf("Position() = %q", d.Position())
	}
}

func TestLoad_MissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Errorf("missing directory should error")
	}
}
