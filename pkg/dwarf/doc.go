// Package dwarf groups the readers of DWARF debug sections.
//
//   - godwarf locates .debug_* and .zdebug_* sections in ELF files
//   - pubnames parses .debug_pubnames and .debug_pubtypes
//   - util holds the byte-level readers they share
//
// We only parse the name-table sections here, DIE trees are left to
// debug/dwarf.
package dwarf
