package symbol

import (
	"debug/dwarf"

	"github.com/pkg/errors"

	"github.com/hitzhangjie/pubnames/pkg/dwarf/pubnames"
)

// Function function
//
// see DWARFv4 3.3 subroutine and entry point entries
type Function struct {
	name     string
	lowpc    uint64
	highpc   uint64
	external bool
	offset   uint64

	entry *dwarf.Entry
}

func (f *Function) Name() string {
	return f.name
}

// LowPC returns the address of the first instruction.
func (f *Function) LowPC() uint64 {
	return f.lowpc
}

// HighPC returns the address after the last instruction.
func (f *Function) HighPC() uint64 {
	return f.highpc
}

// Offset returns the .debug_info offset of the function's DIE.
func (f *Function) Offset() uint64 {
	return f.offset
}

func (f *Function) External() bool {
	return f.external
}

func (f *Function) parseFrom(curEntry *dwarf.Entry) error {
	var (
		highpc    uint64
		highpcRel bool
	)

	for _, field := range curEntry.Field {
		switch field.Attr {
		case dwarf.AttrName:
			if val, ok := field.Val.(string); ok {
				f.name = val
			}
		case dwarf.AttrLowpc:
			if val, ok := field.Val.(uint64); ok {
				f.lowpc = val
			}
		case dwarf.AttrHighpc:
			// DWARF 4 allows high_pc as an offset from low_pc
			switch val := field.Val.(type) {
			case uint64:
				highpc = val
			case int64:
				highpc, highpcRel = uint64(val), true
			}
			if field.Class == dwarf.ClassConstant {
				highpcRel = true
			}
		case dwarf.AttrExternal:
			if val, ok := field.Val.(bool); ok {
				f.external = val
			}
		}
	}

	if highpcRel {
		highpc += f.lowpc
	}
	if highpc < f.lowpc {
		return errors.Errorf("function %s: high pc %#x below low pc %#x", f.name, highpc, f.lowpc)
	}

	f.highpc = highpc
	f.offset = uint64(curEntry.Offset)
	f.entry = curEntry
	return nil
}

// FunctionAt resolves the subprogram DIE at .debug_info offset `off`.
func (bi *BinaryInfo) FunctionAt(off uint64) (*Function, error) {
	if bi.dwarf == nil {
		return nil, ErrNoDebugInfo
	}

	rd := bi.dwarf.Reader()
	rd.Seek(dwarf.Offset(off))
	entry, err := rd.Next()
	if err != nil {
		return nil, errors.Wrapf(err, "read DIE at %#x", off)
	}
	if entry == nil {
		return nil, errors.Errorf("no DIE at %#x", off)
	}
	if entry.Tag != dwarf.TagSubprogram {
		return nil, errors.Errorf("DIE at %#x is %s, not a subprogram", off, entry.Tag)
	}

	fn := &Function{}
	if err := fn.parseFrom(entry); err != nil {
		return nil, err
	}
	return fn, nil
}

// Function resolves the function an entry of .debug_pubnames points at.
func (bi *BinaryInfo) Function(e *pubnames.Entry) (*Function, error) {
	return bi.FunctionAt(e.GlobalDieOffset())
}
