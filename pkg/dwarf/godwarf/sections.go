// Package godwarf locates DWARF debug sections inside executables.
package godwarf

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/hitzhangjie/pubnames/pkg/dwarf/pubnames"
)

// GetDebugSection returns the data contents of the specified debug
// section, looking for both .debug_<name> and the zlib compressed
// .zdebug_<name>. A missing section is reported as pubnames.ErrNoSuchSection.
func GetDebugSection(f *elf.File, name string) ([]byte, error) {
	sec := f.Section(".debug_" + name)
	if sec != nil {
		// SHF_COMPRESSED sections are inflated by debug/elf
		return sec.Data()
	}

	sec = f.Section(".zdebug_" + name)
	if sec == nil {
		return nil, fmt.Errorf("could not find .debug_%s section: %w", name, pubnames.ErrNoSuchSection)
	}

	b, err := sec.Data()
	if err != nil {
		return nil, err
	}
	return decompressMaybe(b)
}

// decompressMaybe inflates a .zdebug_ payload: "ZLIB", 8-byte big endian
// uncompressed size, zlib stream. Anything else is returned untouched.
func decompressMaybe(b []byte) ([]byte, error) {
	if len(b) < 12 || string(b[:4]) != "ZLIB" {
		// not compressed
		return b, nil
	}

	dlen := binary.BigEndian.Uint64(b[4:12])
	r, err := zlib.NewReader(bytes.NewReader(b[12:]))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	dbuf := bytes.NewBuffer(make([]byte, 0, int(min(dlen, uint64(len(b))*32))))
	if _, err := io.Copy(dbuf, r); err != nil {
		return nil, err
	}
	if uint64(dbuf.Len()) != dlen {
		return nil, fmt.Errorf("zdebug section size mismatch: header %d, inflated %d", dlen, dbuf.Len())
	}
	return dbuf.Bytes(), nil
}

// ELFLocator serves debug sections of an ELF file.
type ELFLocator struct {
	file *elf.File
}

// NewELFLocator returns a locator over f, f stays owned by the caller.
func NewELFLocator(f *elf.File) *ELFLocator {
	return &ELFLocator{file: f}
}

// Section implements pubnames.SectionLocator.
func (l *ELFLocator) Section(name string) ([]byte, error) {
	return GetDebugSection(l.file, name)
}

// ByteOrder returns the byte order of the ELF file.
func (l *ELFLocator) ByteOrder() binary.ByteOrder {
	return l.file.ByteOrder
}

// MapLocator serves sections the caller already holds in memory, keyed by
// name without the .debug_ prefix.
type MapLocator map[string][]byte

// Section implements pubnames.SectionLocator.
func (m MapLocator) Section(name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("could not find .debug_%s section: %w", name, pubnames.ErrNoSuchSection)
	}
	return data, nil
}
