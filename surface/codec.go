package surface

import (
	"encoding/binary"

	"github.com/surfdeck/surfdeck/errors"
)

// Binary .srf layout:
//
//	0-2   "SRF" magic
//	3     version (1)
//	4-7   uint32le width
//	8-11  uint32le height
//	12…   cells: uint32le rune, uint16le flags, fg color, bg color
//
// A color is a single palette byte 0..16, or byte 17 followed by r, g, b.

const (
	headerSize = 12
	version    = 1

	// MaxDim bounds surface dimensions; anything larger is treated as
	// corrupt input rather than a plausible slide.
	MaxDim = 4096
)

var magic = []byte("SRF")

// Decode parses a .srf buffer into a Surface.
func Decode(data []byte) (*Surface, error) {
	if len(data) < headerSize {
		return nil, errors.ShortBuffer(errors.PhaseDecode, headerSize, len(data))
	}
	if string(data[0:3]) != string(magic) {
		return nil, errors.New(errors.PhaseDecode, errors.KindBadMagic, "bad magic %q", data[0:3])
	}
	if data[3] != version {
		return nil, errors.Unsupported(errors.PhaseDecode, "unsupported version %d", data[3])
	}

	width := int(binary.LittleEndian.Uint32(data[4:8]))
	height := int(binary.LittleEndian.Uint32(data[8:12]))
	if width <= 0 || height <= 0 || width > MaxDim || height > MaxDim {
		return nil, errors.New(errors.PhaseDecode, errors.KindOverflow, "implausible size %dx%d", width, height)
	}

	// A cell is at least 8 bytes (rune, flags, two palette colors). A
	// buffer shorter than that for the claimed grid is corrupt; reject it
	// before allocating the cells.
	if need := headerSize + width*height*8; len(data) < need {
		return nil, errors.ShortBuffer(errors.PhaseDecode, need, len(data))
	}

	cells := make([]Cell, width*height)
	off := headerSize
	for i := range cells {
		if len(data)-off < 6 {
			return nil, errors.ShortBuffer(errors.PhaseDecode, off+6, len(data))
		}
		cells[i].Rune = rune(binary.LittleEndian.Uint32(data[off : off+4]))
		cells[i].Flags = binary.LittleEndian.Uint16(data[off+4 : off+6])
		off += 6

		var err error
		cells[i].Fg, off, err = decodeColor(data, off)
		if err != nil {
			return nil, err
		}
		cells[i].Bg, off, err = decodeColor(data, off)
		if err != nil {
			return nil, err
		}
	}

	return &Surface{Width: width, Height: height, Cells: cells}, nil
}

func decodeColor(data []byte, off int) (Color, int, error) {
	if off >= len(data) {
		return Color{}, off, errors.ShortBuffer(errors.PhaseDecode, off+1, len(data))
	}
	tag := data[off]
	off++

	if tag == trueColorTag {
		if len(data)-off < 3 {
			return Color{}, off, errors.ShortBuffer(errors.PhaseDecode, off+3, len(data))
		}
		c := RGB(data[off], data[off+1], data[off+2])
		return c, off + 3, nil
	}
	if tag > uint8(Transparent) {
		return Color{}, off, errors.New(errors.PhaseDecode, errors.KindInvalidData, "palette index %d out of range", tag)
	}
	return PaletteColor(Palette(tag)), off, nil
}

// Encode serializes the surface to the .srf binary form.
func (s *Surface) Encode() ([]byte, error) {
	if len(s.Cells) != s.Width*s.Height {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidData,
			"cell count %d does not match %dx%d", len(s.Cells), s.Width, s.Height)
	}

	// 8 bytes per cell plus up to 3 extra per true color.
	buf := make([]byte, 0, headerSize+len(s.Cells)*8)
	buf = append(buf, magic...)
	buf = append(buf, version)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(s.Width))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(s.Height))

	for _, c := range s.Cells {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(c.Rune))
		buf = binary.LittleEndian.AppendUint16(buf, c.Flags)
		buf = appendColor(buf, c.Fg)
		buf = appendColor(buf, c.Bg)
	}

	return buf, nil
}

func appendColor(dst []byte, c Color) []byte {
	if c.TrueColor {
		return append(dst, trueColorTag, c.R, c.G, c.B)
	}
	return append(dst, byte(c.Palette))
}
