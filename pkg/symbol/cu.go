package symbol

import (
	"debug/dwarf"
	"sort"

	"github.com/pkg/errors"

	"github.com/hitzhangjie/pubnames/pkg/dwarf/pubnames"
)

// CompileUnit compilation unit as seen by the name tables, the names and
// types of all sets pointing at the same .debug_info offset.
//
// see DWARFv4 3.1.1 normal and partial compilation unit entries
type CompileUnit struct {
	Offset uint64 // offset of the unit header in .debug_info
	Length uint64
	Names  []*pubnames.Entry
	Types  []*pubnames.Entry

	entry *dwarf.Entry
}

// Name returns DW_AT_name of the unit, empty when .debug_info is unavailable.
func (c *CompileUnit) Name() string {
	if c.entry == nil {
		return ""
	}
	name, _ := c.entry.Val(dwarf.AttrName).(string)
	return name
}

// CompileUnits groups the entries of both name tables by compilation unit,
// ordered by .debug_info offset.
func (bi *BinaryInfo) CompileUnits() ([]*CompileUnit, error) {
	byOffset := map[uint64]*CompileUnit{}

	for _, sec := range []pubnames.Section{pubnames.PubNames, pubnames.PubTypes} {
		units, err := bi.Reader(sec).Units()
		if err != nil {
			return nil, errors.Wrapf(err, "load %s of %s", sec, bi.name())
		}
		for _, u := range units {
			cu, ok := byOffset[u.InfoOffset]
			if !ok {
				cu = &CompileUnit{Offset: u.InfoOffset, Length: u.InfoLength}
				byOffset[u.InfoOffset] = cu
			}
			if sec == pubnames.PubTypes {
				cu.Types = append(cu.Types, u.Entries()...)
			} else {
				cu.Names = append(cu.Names, u.Entries()...)
			}
		}
	}

	cus := make([]*CompileUnit, 0, len(byOffset))
	for _, cu := range byOffset {
		cus = append(cus, cu)
	}
	sort.Slice(cus, func(i, j int) bool { return cus[i].Offset < cus[j].Offset })

	if bi.dwarf != nil {
		if err := bi.attachUnitEntries(cus); err != nil {
			return nil, err
		}
	}
	return cus, nil
}

// attachUnitEntries finds the DW_TAG_compile_unit DIE of every unit, the DIE
// follows the unit header so it lies within [Offset, Offset+Length).
func (bi *BinaryInfo) attachUnitEntries(cus []*CompileUnit) error {
	rd := bi.dwarf.Reader()
	for {
		entry, err := rd.Next()
		if err != nil {
			return errors.Wrap(err, "read .debug_info")
		}
		if entry == nil { // reaches the end
			return nil
		}
		if entry.Tag == dwarf.TagCompileUnit || entry.Tag == dwarf.TagPartialUnit {
			off := uint64(entry.Offset)
			i := sort.Search(len(cus), func(i int) bool { return cus[i].Offset+cus[i].Length > off })
			if i < len(cus) && cus[i].Offset <= off {
				cus[i].entry = entry
			}
		}
		rd.SkipChildren()
	}
}
