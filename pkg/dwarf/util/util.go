// Package util contains the byte-level readers shared by the DWARF
// section parsers.
package util

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// dwarf64Escape is the initial length value announcing a 64-bit DWARF unit,
// see DWARFv4 7.4 32-bit and 64-bit DWARF formats.
const dwarf64Escape = 0xffffffff

// reservedLength is the lowest initial length value DWARF reserves for
// extensions, values from here up to dwarf64Escape carry no length.
const reservedLength = 0xfffffff0

// ErrReservedLength is returned for an initial length in the reserved range
// 0xfffffff0-0xfffffffe.
var ErrReservedLength = errors.New("reserved initial length")

// ReadInitialLength reads a unit's initial length field.
//
// A 4-byte value of 0xffffffff is followed by the real 8-byte length and
// switches the unit to the 64-bit DWARF format, in which case dwarf64 is
// true and every offset in the unit is 8 bytes wide. Any other value of
// 0xfffffff0 or above is rejected with ErrReservedLength.
func ReadInitialLength(buf *bytes.Buffer, order binary.ByteOrder) (length uint64, dwarf64 bool, err error) {
	length, err = ReadUintRaw(buf, order, 4)
	if err != nil {
		return 0, false, err
	}
	if length >= reservedLength && length != dwarf64Escape {
		return 0, false, fmt.Errorf("%w %#x", ErrReservedLength, length)
	}
	if length != dwarf64Escape {
		return length, false, nil
	}
	length, err = ReadUintRaw(buf, order, 8)
	if err != nil {
		return 0, true, err
	}
	return length, true, nil
}

// OffsetSize returns the width of offset fields in the given format.
func OffsetSize(dwarf64 bool) int {
	if dwarf64 {
		return 8
	}
	return 4
}

// ReadUintRaw reads an unsigned value of `size` bytes from reader.
//
// A short read is reported as io.ErrUnexpectedEOF, never io.EOF, since
// callers only ask for a value they expect to be there.
func ReadUintRaw(reader io.Reader, order binary.ByteOrder, size int) (uint64, error) {
	switch size {
	case 2:
		var n uint16
		if err := binary.Read(reader, order, &n); err != nil {
			return 0, shortRead(err)
		}
		return uint64(n), nil
	case 4:
		var n uint32
		if err := binary.Read(reader, order, &n); err != nil {
			return 0, shortRead(err)
		}
		return uint64(n), nil
	case 8:
		var n uint64
		if err := binary.Read(reader, order, &n); err != nil {
			return 0, shortRead(err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("value size %d not supported", size)
}

// ParseString reads a NUL-terminated string, the NUL is consumed but not
// returned. Bytes are passed through as is.
func ParseString(buf *bytes.Buffer) (string, error) {
	str, err := buf.ReadString(0x0)
	if err != nil {
		return "", io.ErrUnexpectedEOF
	}
	return str[:len(str)-1], nil
}

func shortRead(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
