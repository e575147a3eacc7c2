package symbol

import (
	"debug/elf"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"
	"golang.org/x/arch/x86/x86asm"
)

// ReadText returns the bytes of the loaded sections at [addr, addr+size).
func (bi *BinaryInfo) ReadText(addr, size uint64) ([]byte, error) {
	if bi.file == nil {
		return nil, errors.New("no executable file loaded")
	}
	for _, sec := range bi.file.Sections {
		if sec.Type != elf.SHT_PROGBITS || sec.Flags&elf.SHF_ALLOC == 0 {
			continue
		}
		if addr < sec.Addr || addr+size > sec.Addr+sec.Size {
			continue
		}
		dat, err := sec.Data()
		if err != nil {
			return nil, errors.Wrapf(err, "read section %s", sec.Name)
		}
		begin := addr - sec.Addr
		return dat[begin : begin+size], nil
	}
	return nil, errors.Errorf("address range [%#x, %#x) not in any section", addr, addr+size)
}

// Disassemble 反汇编函数fn的前max条指令
func (bi *BinaryInfo) Disassemble(w io.Writer, fn *Function, max uint64, syntax string) error {
	if bi.file != nil && bi.file.Machine != elf.EM_X86_64 {
		return errors.Errorf("disassemble %s: unsupported machine", bi.file.Machine)
	}

	dat, err := bi.ReadText(fn.lowpc, fn.highpc-fn.lowpc)
	if err != nil {
		return err
	}
	return disassemble(w, dat, fn.lowpc, max, syntax)
}

func disassemble(w io.Writer, dat []byte, addr, max uint64, syntax string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 8, ' ', 0)

	// 反汇编这里的指令数据
	offset := uint64(0)
	count := uint64(0)

	for count < max && offset < uint64(len(dat)) {
		inst, err := x86asm.Decode(dat[offset:], 64)
		if err != nil {
			return fmt.Errorf("x86asm decode error: %v", err)
		}

		asm, err := instSyntax(inst, addr+offset, syntax)
		if err != nil {
			return fmt.Errorf("x86asm syntax error: %v", err)
		}

		end := offset + uint64(inst.Len)
		fmt.Fprintf(tw, "%#x:\t% x\t%s\n", addr+offset, dat[offset:end], asm)
		offset = end
		count++
	}
	return tw.Flush()
}

func instSyntax(inst x86asm.Inst, pc uint64, syntax string) (string, error) {
	asm := ""
	switch syntax {
	case "go":
		asm = x86asm.GoSyntax(inst, pc, nil)
	case "gnu":
		asm = x86asm.GNUSyntax(inst, pc, nil)
	case "intel":
		asm = x86asm.IntelSyntax(inst, pc, nil)
	default:
		return "", fmt.Errorf("invalid asm syntax %q", syntax)
	}
	return asm, nil
}
