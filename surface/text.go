package surface

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/surfdeck/surfdeck/errors"
)

// Default slide geometry, matching the deck toolchain's fixed layout.
const (
	DefaultWidth  = 240
	DefaultHeight = 67
)

// SlideExt is the extension of text slide sources; SurfaceExt of the
// compiled binary surfaces.
const (
	SlideExt   = ".slide"
	SurfaceExt = ".srf"
)

// FromText renders text onto a fixed-size surface with uniform colors,
// space-padding or truncating each line as necessary.
func FromText(text string, width, height int, fg, bg Color) *Surface {
	s := New(width, height, fg, bg)
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	for row := 0; row < height && row < len(lines); row++ {
		col := 0
		for _, r := range lines[row] {
			if col >= width {
				break
			}
			s.Cells[row*width+col] = Cell{Rune: r, Fg: fg, Bg: bg}
			col++
		}
	}
	return s
}

// ConvertDir compiles every .slide file in srcDir into a .srf surface in
// outDir, skipping outputs that already exist. It returns the names of
// the surfaces written.
func ConvertDir(srcDir, outDir string, width, height int, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConvert, errors.KindIO, err, "read slide directory")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.PhaseConvert, errors.KindIO, err, "create output directory")
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SlideExt) {
			continue
		}

		outName := strings.TrimSuffix(entry.Name(), SlideExt) + SurfaceExt
		outPath := filepath.Join(outDir, outName)
		if _, err := os.Stat(outPath); err == nil {
			logger.Debug("surface up to date", zap.String("slide", entry.Name()))
			continue
		}

		name, err := ConvertFile(filepath.Join(srcDir, entry.Name()), outPath, width, height)
		if err != nil {
			return names, err
		}
		logger.Info("surface written",
			zap.String("slide", entry.Name()),
			zap.String("surface", name))
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}

// ConvertFile compiles one slide file into a surface file and returns
// the output's base name.
func ConvertFile(slidePath, outPath string, width, height int) (string, error) {
	text, err := os.ReadFile(slidePath)
	if err != nil {
		return "", errors.Wrap(errors.PhaseConvert, errors.KindIO, err, "read slide")
	}

	srf := FromText(string(text), width, height, PaletteColor(White), PaletteColor(Black))
	data, err := srf.Encode()
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", errors.Wrap(errors.PhaseConvert, errors.KindIO, err, "write surface")
	}
	return filepath.Base(outPath), nil
}
