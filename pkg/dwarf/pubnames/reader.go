package pubnames

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// SectionLocator finds the raw bytes of a debug section by its name without
// the .debug_ prefix, e.g. "pubnames". A missing section is reported as
// ErrNoSuchSection. Callers never modify the returned bytes.
type SectionLocator interface {
	Section(name string) ([]byte, error)
}

// State of a Reader. Unloaded moves to Loaded or Failed on the first call
// to Entries, both are final.
type State int

const (
	Unloaded State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Reader reads one name-table section on demand.
//
// The section is parsed on the first call to Entries, later calls return
// the same result without touching the section again. A Reader that
// failed to parse keeps returning the same error. It is not safe for
// concurrent use, create one Reader per goroutine instead.
type Reader struct {
	locator SectionLocator
	section Section
	order   binary.ByteOrder

	state State
	table *Table
	err   error
}

// NewReader returns an unloaded reader of `section`.
func NewReader(locator SectionLocator, section Section, order binary.ByteOrder) *Reader {
	return &Reader{
		locator: locator,
		section: section,
		order:   order,
		state:   Unloaded,
	}
}

// Section returns the section this reader reads.
func (r *Reader) Section() Section {
	return r.section
}

// State returns the reader's load state.
func (r *Reader) State() State {
	return r.state
}

// Entries returns every entry of the section in file order, parsing the
// section on first use. A missing section yields no entries and no error.
func (r *Reader) Entries() ([]*Entry, error) {
	t, err := r.load()
	if err != nil {
		return nil, err
	}
	return t.Entries(), nil
}

// Units returns the set headers of the section in file order.
func (r *Reader) Units() ([]*Unit, error) {
	t, err := r.load()
	if err != nil {
		return nil, err
	}
	return t.Units(), nil
}

// Lookup returns the entries named `name`.
func (r *Reader) Lookup(name string) ([]*Entry, error) {
	t, err := r.load()
	if err != nil {
		return nil, err
	}
	return t.Lookup(name), nil
}

func (r *Reader) load() (*Table, error) {
	switch r.state {
	case Loaded:
		return r.table, nil
	case Failed:
		return nil, r.err
	}

	data, err := r.locator.Section(r.section.String())
	if err != nil && !errors.Is(err, ErrNoSuchSection) {
		r.state, r.err = Failed, fmt.Errorf("locate .debug_%s: %w", r.section, err)
		return nil, r.err
	}

	// data is nil for a missing section, which parses to an empty table
	table, err := Parse(data, r.order, r.section)
	if err != nil {
		r.state, r.err = Failed, err
		return nil, err
	}

	r.state, r.table = Loaded, table
	return table, nil
}
