// Package pubnames reads the DWARF name-table sections .debug_pubnames and
// .debug_pubtypes.
//
// Both sections share one layout: a list of sets, one per compilation unit,
// each mapping global names to the offset of the DIE that defines them.
// Looking a name up here avoids walking the whole DIE tree of .debug_info.
// The sections are defined by DWARF versions 2 to 4, see DWARFv4 6.1.1.
//
// A Reader owns the parsed Table, names and offsets are copied out of the
// section so the table outlives the mapped image.
package pubnames
