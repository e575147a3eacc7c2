package pubnames

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntry struct {
	offset uint64
	name   string
}

type testUnit struct {
	dwarf64    bool
	infoOffset uint64
	infoLength uint64
	entries    []testEntry
	padding    []byte // bytes after the terminator that unit_length still covers
}

// span is the [begin, end) range of a unit's entry list, terminator included
type span struct {
	begin, end int
}

func putUint(w *bytes.Buffer, order binary.ByteOrder, size int, v uint64) {
	b := make([]byte, size)
	switch size {
	case 2:
		order.PutUint16(b, uint16(v))
	case 4:
		order.PutUint32(b, uint32(v))
	case 8:
		order.PutUint64(b, v)
	}
	w.Write(b)
}

// buildSection encodes units the way a producer lays out .debug_pubnames
func buildSection(order binary.ByteOrder, units ...testUnit) ([]byte, []span) {
	var (
		out   bytes.Buffer
		spans []span
	)
	for _, u := range units {
		size := 4
		if u.dwarf64 {
			size = 8
		}

		var body bytes.Buffer
		putUint(&body, order, 2, supportedVersion)
		putUint(&body, order, size, u.infoOffset)
		putUint(&body, order, size, u.infoLength)
		headerLen := body.Len()
		for _, e := range u.entries {
			putUint(&body, order, size, e.offset)
			body.WriteString(e.name)
			body.WriteByte(0)
		}
		putUint(&body, order, size, 0)
		entriesEnd := body.Len()
		body.Write(u.padding)

		if u.dwarf64 {
			putUint(&out, order, 4, 0xffffffff)
			putUint(&out, order, 8, uint64(body.Len()))
		} else {
			putUint(&out, order, 4, uint64(body.Len()))
		}
		base := out.Len()
		spans = append(spans, span{begin: base + headerLen, end: base + entriesEnd})
		out.Write(body.Bytes())
	}
	return out.Bytes(), spans
}

func genUnits(n, m int, dwarf64 bool) []testUnit {
	var units []testUnit
	for i := 0; i < n; i++ {
		u := testUnit{
			dwarf64:    dwarf64,
			infoOffset: uint64(i) * 0x1000,
			infoLength: 0x800 + uint64(i),
		}
		for j := 0; j < m; j++ {
			u.entries = append(u.entries, testEntry{
				offset: uint64(0x10 + j*0x20),
				name:   fmt.Sprintf("pkg%d.sym%d", i, j),
			})
		}
		units = append(units, u)
	}
	return units
}

func TestParse_SingleName(t *testing.T) {
	data := []byte{
		0x19, 0, 0, 0, // unit_length
		2, 0, // version
		0, 0, 0, 0, // debug_info_offset
		0x50, 0, 0, 0, // debug_info_length
		0x10, 0, 0, 0, // die offset
		'f', 'o', 'o', 0,
		0, 0, 0, 0, // terminator
	}

	table, err := Parse(data, binary.LittleEndian, PubNames)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	name, dieOffset, cuOffset := table.Entries()[0].NameAndOffsets()
	assert.Equal(t, "foo", name)
	assert.Equal(t, uint64(0x10), dieOffset)
	assert.Equal(t, uint64(0), cuOffset)

	require.Len(t, table.Units(), 1)
	assert.Equal(t, uint64(0x50), table.Units()[0].InfoLength)
}

func TestParse_UnitPastSectionEnd(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{
			// declared end lies 3 bytes past the section, the list is complete
			name: "complete entry list",
			data: []byte{
				0x19, 0, 0, 0,
				2, 0,
				0, 0, 0, 0,
				0x50, 0, 0, 0,
				0x10, 0, 0, 0,
				'f', 'o', 'o', 0,
				0, 0, 0, 0,
			},
		},
		{
			name: "incomplete header",
			data: []byte{
				0x40, 0, 0, 0,
				2, 0,
				0, 0, 0, 0,
				0x50, 0,
			},
			err: ErrUnexpectedEndOfData,
		},
		{
			name: "reserved length",
			data: []byte{
				0xf0, 0xff, 0xff, 0xff,
				2, 0,
				0, 0, 0, 0,
				0x50, 0, 0, 0,
				0x10, 0, 0, 0,
				'f', 'o', 'o', 0,
				0, 0, 0, 0,
			},
			err: ErrUnexpectedEndOfData,
		},
		{
			name: "reserved length below escape",
			data: []byte{0xfe, 0xff, 0xff, 0xff, 2, 0},
			err:  ErrUnexpectedEndOfData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse(tt.data, binary.LittleEndian, PubNames)
			if tt.err == nil {
				require.NoError(t, err)
				assert.Equal(t, 1, table.Len())
				return
			}
			assert.Nil(t, table)
			require.ErrorIs(t, err, tt.err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.LessOrEqual(t, perr.Offset, uint64(len(tt.data)))
		})
	}
}

func TestEntry_NameAndOffsets(t *testing.T) {
	data, _ := buildSection(binary.LittleEndian,
		testUnit{infoOffset: 0x0, infoLength: 0x100, entries: []testEntry{{0x10, "a"}}},
		testUnit{infoOffset: 0x100, infoLength: 0x80, entries: []testEntry{{0x18, "b"}}},
	)
	table, err := Parse(data, binary.LittleEndian, PubNames)
	require.NoError(t, err)

	b := table.Entries()[1]
	name, global, cu := b.NameAndOffsets()
	assert.Equal(t, "b", name)
	assert.Equal(t, uint64(0x118), global)
	assert.Equal(t, b.GlobalDieOffset(), global)
	assert.Equal(t, b.DieOffset()+b.CUOffset(), global)
	assert.Equal(t, uint64(0x100), cu)
}

func TestTable_ResultsAreCopies(t *testing.T) {
	data, _ := buildSection(binary.LittleEndian, genUnits(2, 3, false)...)
	table, err := Parse(data, binary.LittleEndian, PubNames)
	require.NoError(t, err)

	entries := table.Entries()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() > entries[j].Name() })
	assert.Equal(t, "pkg0.sym0", table.Entries()[0].Name())

	units := table.Units()
	units[0], units[1] = units[1], units[0]
	assert.Equal(t, uint64(0), table.Units()[0].InfoOffset)

	unitEntries := table.Units()[1].Entries()
	unitEntries[0] = nil
	assert.NotNil(t, table.Units()[1].Entries()[0])

	found := table.Lookup("pkg1.sym2")
	require.Len(t, found, 1)
	found[0] = nil
	assert.NotNil(t, table.Lookup("pkg1.sym2")[0])
}

func TestParse_Empty(t *testing.T) {
	for _, data := range [][]byte{nil, {}} {
		table, err := Parse(data, binary.LittleEndian, PubTypes)
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
		assert.Empty(t, table.Units())
	}
}

func TestParse_Units(t *testing.T) {
	tests := []struct {
		name    string
		n, m    int
		dwarf64 bool
		order   binary.ByteOrder
	}{
		{"1x1", 1, 1, false, binary.LittleEndian},
		{"3x4", 3, 4, false, binary.LittleEndian},
		{"5x2 big endian", 5, 2, false, binary.BigEndian},
		{"3x4 dwarf64", 3, 4, true, binary.LittleEndian},
		{"4x0", 4, 0, false, binary.LittleEndian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := genUnits(tt.n, tt.m, tt.dwarf64)
			data, _ := buildSection(tt.order, units...)

			table, err := Parse(data, tt.order, PubNames)
			require.NoError(t, err)
			require.Equal(t, tt.n*tt.m, table.Len())
			require.Len(t, table.Units(), tt.n)

			idx := 0
			for i, u := range units {
				assert.Equal(t, tt.dwarf64, table.Units()[i].Dwarf64)
				for _, want := range u.entries {
					got := table.Entries()[idx]
					assert.Equal(t, want.name, got.Name())
					assert.Equal(t, want.offset, got.DieOffset())
					assert.Equal(t, u.infoOffset, got.CUOffset())
					assert.Same(t, table.Units()[i], got.Unit())
					idx++
				}
			}
		})
	}
}

func TestParse_CUOffsetPerUnit(t *testing.T) {
	data, _ := buildSection(binary.LittleEndian, genUnits(3, 3, false)...)
	table, err := Parse(data, binary.LittleEndian, PubNames)
	require.NoError(t, err)

	seen := map[uint64]bool{}
	for _, u := range table.Units() {
		require.NotEmpty(t, u.Entries())
		cu := u.Entries()[0].CUOffset()
		for _, e := range u.Entries() {
			assert.Equal(t, cu, e.CUOffset())
		}
		assert.False(t, seen[cu], "cu offset %#x shared by two units", cu)
		seen[cu] = true
	}
}

func TestParse_EmptyEntryList(t *testing.T) {
	units := []testUnit{
		{infoOffset: 0x0, infoLength: 0x40, padding: []byte{0xde, 0xad, 0xbe}},
		{infoOffset: 0x40, infoLength: 0x40, entries: []testEntry{{0x2a, "main.main"}}},
	}
	data, _ := buildSection(binary.LittleEndian, units...)

	table, err := Parse(data, binary.LittleEndian, PubNames)
	require.NoError(t, err)
	require.Len(t, table.Units(), 2)
	assert.Empty(t, table.Units()[0].Entries())
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "main.main", table.Entries()[0].Name())
	assert.Equal(t, uint64(0x40), table.Entries()[0].CUOffset())
}

func TestParse_DeclaredLengthWins(t *testing.T) {
	// trailing garbage inside the declared length is skipped, not decoded
	units := []testUnit{
		{infoOffset: 0x0, infoLength: 0x10, entries: []testEntry{{0x0b, "a"}}, padding: []byte{0x41, 0x42, 0, 0, 0, 0}},
		{infoOffset: 0x10, infoLength: 0x10, entries: []testEntry{{0x0b, "b"}}},
	}
	data, _ := buildSection(binary.LittleEndian, units...)

	table, err := Parse(data, binary.LittleEndian, PubNames)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "a", table.Entries()[0].Name())
	assert.Equal(t, "b", table.Entries()[1].Name())
	assert.Equal(t, uint64(0x10), table.Entries()[1].CUOffset())
}

func TestParse_Dwarf64MatchesDwarf32(t *testing.T) {
	data32, _ := buildSection(binary.LittleEndian, genUnits(2, 3, false)...)
	data64, _ := buildSection(binary.LittleEndian, genUnits(2, 3, true)...)

	t32, err := Parse(data32, binary.LittleEndian, PubNames)
	require.NoError(t, err)
	t64, err := Parse(data64, binary.LittleEndian, PubNames)
	require.NoError(t, err)

	require.Equal(t, t32.Len(), t64.Len())
	for i := range t32.Entries() {
		n32, d32, c32 := t32.Entries()[i].NameAndOffsets()
		n64, d64, c64 := t64.Entries()[i].NameAndOffsets()
		assert.Equal(t, n32, n64)
		assert.Equal(t, d32, d64)
		assert.Equal(t, c32, c64)
	}
	for _, u := range t64.Units() {
		assert.True(t, u.Dwarf64)
	}
}

func TestParse_Truncated(t *testing.T) {
	for _, dwarf64 := range []bool{false, true} {
		data, spans := buildSection(binary.LittleEndian, genUnits(3, 2, dwarf64)...)

		for _, sp := range spans {
			for cut := sp.begin; cut < sp.end; cut++ {
				table, err := Parse(data[:cut], binary.LittleEndian, PubNames)
				require.Errorf(t, err, "dwarf64=%v cut=%d", dwarf64, cut)
				assert.Nil(t, table)
				assert.ErrorIs(t, err, ErrUnexpectedEndOfData)

				var perr *ParseError
				require.True(t, errors.As(err, &perr))
				assert.Equal(t, UnexpectedEndOfData, perr.Kind)
				assert.LessOrEqual(t, perr.Offset, uint64(cut))
			}
		}
	}
}

func TestParse_TruncatedHeader(t *testing.T) {
	data, spans := buildSection(binary.LittleEndian, genUnits(1, 1, false)...)
	for cut := 1; cut < spans[0].begin; cut++ {
		_, err := Parse(data[:cut], binary.LittleEndian, PubNames)
		assert.ErrorIs(t, err, ErrUnexpectedEndOfData, "cut=%d", cut)
	}
}

func TestParse_UnsupportedVersion(t *testing.T) {
	data, _ := buildSection(binary.LittleEndian, genUnits(2, 1, false)...)
	data = append([]byte(nil), data...)
	data[4] = 3

	table, err := Parse(data, binary.LittleEndian, PubTypes)
	assert.Nil(t, table)
	require.ErrorIs(t, err, ErrUnsupportedVersion)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, uint64(4), perr.Offset)
	assert.Equal(t, "pubtypes", perr.Section)
	assert.Contains(t, err.Error(), ".debug_pubtypes")
	assert.Contains(t, err.Error(), "0x4")
}

func TestParse_ArithmeticOverflow(t *testing.T) {
	t.Run("unit length", func(t *testing.T) {
		var buf bytes.Buffer
		putUint(&buf, binary.LittleEndian, 4, 0xffffffff)
		putUint(&buf, binary.LittleEndian, 8, 0xfffffffffffffff8)
		putUint(&buf, binary.LittleEndian, 2, 2)

		_, err := Parse(buf.Bytes(), binary.LittleEndian, PubNames)
		assert.ErrorIs(t, err, ErrArithmeticOverflow)
	})

	t.Run("debug_info range", func(t *testing.T) {
		data, _ := buildSection(binary.LittleEndian, testUnit{
			dwarf64:    true,
			infoOffset: 0xfffffffffffffff0,
			infoLength: 0x20,
		})
		_, err := Parse(data, binary.LittleEndian, PubNames)
		assert.ErrorIs(t, err, ErrArithmeticOverflow)
	})

	t.Run("die offset", func(t *testing.T) {
		data, _ := buildSection(binary.LittleEndian, testUnit{
			dwarf64:    true,
			infoOffset: 0xfffffffffffffff0,
			infoLength: 0x8,
			entries:    []testEntry{{0x20, "x"}},
		})
		_, err := Parse(data, binary.LittleEndian, PubNames)
		assert.ErrorIs(t, err, ErrArithmeticOverflow)
	})
}

func TestParse_RawNames(t *testing.T) {
	raw := "caf\xc3\xa9\xff"
	data, _ := buildSection(binary.LittleEndian, testUnit{entries: []testEntry{{0x1, raw}}})

	table, err := Parse(data, binary.LittleEndian, PubNames)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, raw, table.Entries()[0].Name())
}

func TestParse_NamesOutliveSection(t *testing.T) {
	data, _ := buildSection(binary.LittleEndian, genUnits(1, 2, false)...)
	table, err := Parse(data, binary.LittleEndian, PubNames)
	require.NoError(t, err)

	for i := range data {
		data[i] = 0
	}
	assert.Equal(t, "pkg0.sym0", table.Entries()[0].Name())
	assert.Equal(t, "pkg0.sym1", table.Entries()[1].Name())
}
