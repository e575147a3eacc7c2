package pubnames

// Section selects which name-table section is read.
type Section int

const (
	PubNames Section = iota // .debug_pubnames, global objects and functions
	PubTypes                // .debug_pubtypes, global types
)

// String returns the section name without the .debug_ prefix, the form
// SectionLocator implementations are asked for.
func (s Section) String() string {
	if s == PubTypes {
		return "pubtypes"
	}
	return "pubnames"
}

// Unit is the header of one name-table set, each set indexes the names
// of exactly one compilation unit in .debug_info.
//
// see DWARFv4 6.1.1 lookup by name
type Unit struct {
	Offset     uint64 // offset of this header in the name-table section
	Length     uint64 // unit_length, excluding the length field itself
	Version    uint16
	Dwarf64    bool
	InfoOffset uint64 // debug_info_offset of the indexed compilation unit
	InfoLength uint64 // debug_info_length of the indexed compilation unit

	entries []*Entry
}

// Entries returns the names of this unit in file order. The slice is a
// copy, reordering it leaves the unit untouched.
func (u *Unit) Entries() []*Entry {
	return copyEntries(u.entries)
}

// Entry is one name of a name-table set.
type Entry struct {
	name      string
	dieOffset uint64
	unit      *Unit
}

// Name returns the name as stored in the section.
func (e *Entry) Name() string {
	return e.name
}

// DieOffset returns the offset of the named DIE relative to its compilation
// unit, add CUOffset to get the offset within .debug_info.
func (e *Entry) DieOffset() uint64 {
	return e.dieOffset
}

// CUOffset returns the .debug_info offset of the compilation unit the
// entry's set indexes. It is not the position of the set's header in the
// name-table section, that one is UnitOffset.
func (e *Entry) CUOffset() uint64 {
	return e.unit.InfoOffset
}

// UnitOffset returns the offset of the owning set's header within the
// name-table section.
func (e *Entry) UnitOffset() uint64 {
	return e.unit.Offset
}

// GlobalDieOffset returns the offset of the named DIE within .debug_info.
func (e *Entry) GlobalDieOffset() uint64 {
	return e.unit.InfoOffset + e.dieOffset
}

// NameAndOffsets bundles the name, the DIE offset within .debug_info
// (GlobalDieOffset, not the CU relative DieOffset) and CUOffset.
func (e *Entry) NameAndOffsets() (name string, globalDieOffset, cuOffset uint64) {
	return e.name, e.GlobalDieOffset(), e.unit.InfoOffset
}

// Unit returns the set header the entry belongs to.
func (e *Entry) Unit() *Unit {
	return e.unit
}

// Table holds every entry of a name-table section in file order. It is
// immutable once built, the slices it hands out are copies.
type Table struct {
	units   []*Unit
	entries []*Entry
	byName  map[string][]*Entry
}

func newTable() *Table {
	return &Table{byName: make(map[string][]*Entry)}
}

func (t *Table) addUnit(u *Unit) {
	t.units = append(t.units, u)
}

func (t *Table) addEntry(u *Unit, name string, dieOffset uint64) {
	e := &Entry{name: name, dieOffset: dieOffset, unit: u}
	u.entries = append(u.entries, e)
	t.entries = append(t.entries, e)
	t.byName[name] = append(t.byName[name], e)
}

// Units returns the set headers in file order.
func (t *Table) Units() []*Unit {
	return append([]*Unit(nil), t.units...)
}

// Entries returns all entries, units in file order then entries in unit order.
func (t *Table) Entries() []*Entry {
	return copyEntries(t.entries)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup returns the entries named `name` in file order, a name may be
// listed by more than one compilation unit.
func (t *Table) Lookup(name string) []*Entry {
	return copyEntries(t.byName[name])
}

func copyEntries(entries []*Entry) []*Entry {
	if len(entries) == 0 {
		return nil
	}
	return append([]*Entry(nil), entries...)
}
