package wasmbin

import (
	"bytes"
	"io"

	"github.com/surfdeck/surfdeck/errors"
)

// Export describes one entry of a module's export section.
type Export struct {
	Name  string
	Kind  byte
	Index uint32
}

// IsModule reports whether data starts with the core module preamble.
func IsModule(data []byte) bool {
	return len(data) >= 8 &&
		bytes.Equal(data[:4], Magic) &&
		bytes.Equal(data[4:8], Version)
}

// ScanExports parses the export section of a module binary without
// compiling it. It lets callers existence-check entry points before
// committing to instantiation.
func ScanExports(data []byte) ([]Export, error) {
	if !IsModule(data) {
		return nil, errors.New(errors.PhaseLoad, errors.KindBadMagic, "not a WebAssembly module")
	}

	r := bytes.NewReader(data[8:])
	for {
		id, err := r.ReadByte()
		if err == io.EOF {
			return nil, nil // no export section
		}
		if err != nil {
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "read section id")
		}

		size, err := ReadULEB128(r)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "read section size")
		}

		if id != SectionExport {
			if _, err := r.Seek(int64(size), io.SeekCurrent); err != nil {
				return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "skip section")
			}
			continue
		}

		count, err := ReadULEB128(r)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "read export count")
		}

		exports := make([]Export, 0, count)
		for i := uint32(0); i < count; i++ {
			name, err := readName(r)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "read export name")
			}
			kind, err := r.ReadByte()
			if err != nil {
				return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "read export kind")
			}
			idx, err := ReadULEB128(r)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "read export index")
			}
			exports = append(exports, Export{Name: name, Kind: kind, Index: idx})
		}
		return exports, nil
	}
}

// HasExportedFunc reports whether data exports a function named name.
func HasExportedFunc(data []byte, name string) bool {
	exports, err := ScanExports(data)
	if err != nil {
		return false
	}
	for _, e := range exports {
		if e.Kind == KindFunc && e.Name == name {
			return true
		}
	}
	return false
}

func readName(r *bytes.Reader) (string, error) {
	n, err := ReadULEB128(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
