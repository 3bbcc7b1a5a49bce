// Package deck loads a directory of compiled .srf surfaces as an ordered
// slide deck with cursor navigation.
package deck

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/surfdeck/surfdeck/errors"
	"github.com/surfdeck/surfdeck/surface"
)

// Deck is an ordered set of slides with a cursor.
type Deck struct {
	slides  []*surface.Surface
	names   []string
	current int
}

// Load reads every .srf file in dir, sorted by name. Slides that fail to
// decode are logged and skipped; the deck keeps going with the rest.
func Load(dir string, logger *zap.Logger) (*Deck, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindIO, err, "read deck directory")
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), surface.SurfaceExt) {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	d := &Deck{}
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Error("failed to load slide", zap.String("slide", name), zap.Error(err))
			continue
		}
		s, err := surface.Decode(data)
		if err != nil {
			logger.Error("failed to load slide", zap.String("slide", name), zap.Error(err))
			continue
		}
		d.slides = append(d.slides, s)
		d.names = append(d.names, name)
	}

	logger.Info("deck loaded", zap.String("dir", dir), zap.Int("slides", d.Len()))
	return d, nil
}

// Len returns the number of slides.
func (d *Deck) Len() int {
	return len(d.slides)
}

// Current returns the slide under the cursor, or nil for an empty deck.
func (d *Deck) Current() *surface.Surface {
	if len(d.slides) == 0 {
		return nil
	}
	return d.slides[d.current]
}

// Name returns the file name of the current slide.
func (d *Deck) Name() string {
	if len(d.names) == 0 {
		return ""
	}
	return d.names[d.current]
}

// Next advances the cursor. It reports whether the cursor moved.
func (d *Deck) Next() bool {
	if d.current+1 < len(d.slides) {
		d.current++
		return true
	}
	return false
}

// Prev moves the cursor back. It reports whether the cursor moved.
func (d *Deck) Prev() bool {
	if d.current > 0 {
		d.current--
		return true
	}
	return false
}

// First jumps to the first slide.
func (d *Deck) First() {
	d.current = 0
}

// Last jumps to the last slide.
func (d *Deck) Last() {
	if len(d.slides) > 0 {
		d.current = len(d.slides) - 1
	}
}

// Position renders the cursor as "current/total", 1-based.
func (d *Deck) Position() string {
	return fmt.Sprintf("%d/%d", d.current+1, len(d.slides))
}
