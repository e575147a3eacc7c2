package symbol

import (
	"debug/dwarf"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/hitzhangjie/pubnames/pkg/dwarf/godwarf"
	"github.com/hitzhangjie/pubnames/pkg/dwarf/pubnames"
)

// ErrNoDebugInfo is returned when .debug_info is needed but absent.
var ErrNoDebugInfo = errors.New("no .debug_info available")

// BinaryInfo binary info
type BinaryInfo struct {
	Path     string
	Order    binary.ByteOrder
	PubNames *pubnames.Reader
	PubTypes *pubnames.Reader

	file   *elf.File   // nil when built from raw sections
	dwarf  *dwarf.Data // nil when .debug_info is absent or unreadable
	logger log.Logger
}

// Analyze opens executable `execFile` and prepares its name tables. The
// tables themselves are parsed on first use.
//
// order overrides the byte order of the ELF header when not nil.
func Analyze(execFile string, order binary.ByteOrder, logger log.Logger) (*BinaryInfo, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	file, err := elf.Open(execFile)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", execFile)
	}

	if order == nil {
		order = file.ByteOrder
	}

	bi := NewBinaryInfo(godwarf.NewELFLocator(file), order, logger)
	bi.Path = execFile
	bi.file = file

	// .debug_info is optional, it is only needed to resolve functions
	dwarfData, err := file.DWARF()
	if err != nil {
		level.Debug(logger).Log("msg", "no usable dwarf info", "file", execFile, "err", err)
	} else {
		bi.dwarf = dwarfData
	}

	level.Debug(logger).Log("msg", "analyzed binary", "file", execFile, "machine", file.Machine, "order", order)
	return bi, nil
}

// NewBinaryInfo returns a BinaryInfo over sections served by locator.
func NewBinaryInfo(locator pubnames.SectionLocator, order binary.ByteOrder, logger log.Logger) *BinaryInfo {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &BinaryInfo{
		Order:    order,
		PubNames: pubnames.NewReader(locator, pubnames.PubNames, order),
		PubTypes: pubnames.NewReader(locator, pubnames.PubTypes, order),
		logger:   logger,
	}
}

// Close releases the underlying ELF file. Both name tables are loaded
// first so they stay usable afterwards, a malformed table keeps reporting
// its parse error.
func (bi *BinaryInfo) Close() error {
	for _, r := range []*pubnames.Reader{bi.PubNames, bi.PubTypes} {
		if _, err := r.Entries(); err != nil {
			level.Debug(bi.logger).Log("msg", "name table unusable", "section", r.Section(), "err", err)
		}
	}

	if bi.file == nil {
		return nil
	}
	err := bi.file.Close()
	bi.file = nil
	return err
}

// Reader returns the reader of section `sec`.
func (bi *BinaryInfo) Reader(sec pubnames.Section) *pubnames.Reader {
	if sec == pubnames.PubTypes {
		return bi.PubTypes
	}
	return bi.PubNames
}

// Entries returns the entries of section `sec`.
func (bi *BinaryInfo) Entries(sec pubnames.Section) ([]*pubnames.Entry, error) {
	entries, err := bi.Reader(sec).Entries()
	if err != nil {
		return nil, errors.Wrapf(err, "load %s of %s", sec, bi.name())
	}
	level.Debug(bi.logger).Log("msg", "name table loaded", "section", sec, "entries", len(entries))
	return entries, nil
}

// Lookup returns the entries named `name` from .debug_pubnames followed by
// those from .debug_pubtypes.
func (bi *BinaryInfo) Lookup(name string) ([]*pubnames.Entry, error) {
	var found []*pubnames.Entry
	for _, r := range []*pubnames.Reader{bi.PubNames, bi.PubTypes} {
		entries, err := r.Lookup(name)
		if err != nil {
			return nil, errors.Wrapf(err, "lookup %q in %s of %s", name, r.Section(), bi.name())
		}
		found = append(found, entries...)
	}
	return found, nil
}

func (bi *BinaryInfo) name() string {
	if bi.Path == "" {
		return "<memory>"
	}
	return bi.Path
}

// Dump writes the entries of section `sec` as a table.
func (bi *BinaryInfo) Dump(w io.Writer, sec pubnames.Section) error {
	entries, err := bi.Entries(sec)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "NAME\tDIE\tCU\tGLOBAL\n")
	for _, e := range entries {
		name, global, cu := e.NameAndOffsets()
		fmt.Fprintf(tw, "%s\t%#x\t%#x\t%#x\n", name, e.DieOffset(), cu, global)
	}
	return tw.Flush()
}
