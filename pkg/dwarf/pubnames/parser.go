package pubnames

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hitzhangjie/pubnames/pkg/dwarf/util"
)

// supportedVersion is the only name-table version defined by DWARF 2-4.
const supportedVersion = 2

type parsefunc func(*parseContext) parsefunc

// parseContext context which helps parsing the sets stored in
// .debug_pubnames or .debug_pubtypes
type parseContext struct {
	section Section
	order   binary.ByteOrder

	data    []byte
	buf     *bytes.Buffer
	table   *Table
	unit    *Unit
	unitEnd uint64
	err     error
}

// Parse decodes a complete name-table section into a Table.
//
// The section is a sequence of sets, each one a header followed by
// (die_offset, name) pairs and closed by a zero die_offset. The next set
// always starts where the header's unit_length says the current one ends.
// An empty section yields an empty table. Any malformed set fails the
// whole parse with a *ParseError, no partial table is returned.
func Parse(data []byte, order binary.ByteOrder, section Section) (*Table, error) {
	pctx := &parseContext{
		section: section,
		order:   order,
		data:    data,
		buf:     bytes.NewBuffer(data),
		table:   newTable(),
	}

	for fn := parselength; fn != nil; {
		fn = fn(pctx)
	}

	if pctx.err != nil {
		return nil, pctx.err
	}
	return pctx.table, nil
}

// offset returns the cursor position within the section
func (ctx *parseContext) offset() uint64 {
	return uint64(len(ctx.data) - ctx.buf.Len())
}

func (ctx *parseContext) fail(kind ErrorKind, offset uint64, err error) parsefunc {
	ctx.err = &ParseError{Section: ctx.section.String(), Kind: kind, Offset: offset, Err: err}
	return nil
}

// parselength parse the unit_length of the next set
func parselength(ctx *parseContext) parsefunc {
	if ctx.buf.Len() == 0 {
		return nil
	}

	start := ctx.offset()
	// a reserved length claims an end far beyond any section, it is
	// reported as running out of data like any other overlong unit.
	length, dwarf64, err := util.ReadInitialLength(ctx.buf, ctx.order)
	if err != nil {
		return ctx.fail(UnexpectedEndOfData, start, err)
	}

	begin := ctx.offset()
	if length > math.MaxUint64-begin {
		return ctx.fail(ArithmeticOverflow, start, fmt.Errorf("unit length %#x", length))
	}

	ctx.unit = &Unit{Offset: start, Length: length, Dwarf64: dwarf64}
	ctx.unitEnd = begin + length
	return parseheader
}

// parseheader parse version, debug_info_offset and debug_info_length
func parseheader(ctx *parseContext) parsefunc {
	off := ctx.offset()
	version, err := util.ReadUintRaw(ctx.buf, ctx.order, 2)
	if err != nil {
		return ctx.fail(UnexpectedEndOfData, off, err)
	}
	if version != supportedVersion {
		return ctx.fail(UnsupportedVersion, off, fmt.Errorf("version %d", version))
	}

	size := util.OffsetSize(ctx.unit.Dwarf64)

	off = ctx.offset()
	infoOffset, err := util.ReadUintRaw(ctx.buf, ctx.order, size)
	if err != nil {
		return ctx.fail(UnexpectedEndOfData, off, err)
	}

	lenOff := ctx.offset()
	infoLength, err := util.ReadUintRaw(ctx.buf, ctx.order, size)
	if err != nil {
		return ctx.fail(UnexpectedEndOfData, lenOff, err)
	}
	if infoLength > math.MaxUint64-infoOffset {
		return ctx.fail(ArithmeticOverflow, off, fmt.Errorf("debug_info range %#x+%#x", infoOffset, infoLength))
	}

	ctx.unit.Version = uint16(version)
	ctx.unit.InfoOffset = infoOffset
	ctx.unit.InfoLength = infoLength
	ctx.table.addUnit(ctx.unit)

	return parseentry
}

// parseentry parse one (die_offset, name) pair of the current set
func parseentry(ctx *parseContext) parsefunc {
	off := ctx.offset()
	dieOffset, err := util.ReadUintRaw(ctx.buf, ctx.order, util.OffsetSize(ctx.unit.Dwarf64))
	if err != nil {
		return ctx.fail(UnexpectedEndOfData, off, err)
	}

	// ZERO terminator, no name follows
	if dieOffset == 0 {
		return nextunit
	}
	if dieOffset > math.MaxUint64-ctx.unit.InfoOffset {
		return ctx.fail(ArithmeticOverflow, off, fmt.Errorf("die offset %#x", dieOffset))
	}

	off = ctx.offset()
	name, err := util.ParseString(ctx.buf)
	if err != nil {
		return ctx.fail(UnexpectedEndOfData, off, err)
	}

	ctx.table.addEntry(ctx.unit, name, dieOffset)
	return parseentry
}

// nextunit moves the cursor to the end declared by the set header, which
// wins over wherever the terminator was found.
func nextunit(ctx *parseContext) parsefunc {
	if ctx.unitEnd >= uint64(len(ctx.data)) {
		return nil
	}
	ctx.buf = bytes.NewBuffer(ctx.data[ctx.unitEnd:])
	return parselength
}
