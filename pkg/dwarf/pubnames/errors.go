package pubnames

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a name-table section could not be read.
type ErrorKind int

const (
	// NoSuchSection is only produced by a SectionLocator, a Reader turns it
	// into an empty table.
	NoSuchSection ErrorKind = iota
	UnexpectedEndOfData
	UnsupportedVersion
	ArithmeticOverflow
)

var (
	ErrNoSuchSection       = errors.New("no such section")
	ErrUnexpectedEndOfData = errors.New("unexpected end of data")
	ErrUnsupportedVersion  = errors.New("unsupported version")
	ErrArithmeticOverflow  = errors.New("arithmetic overflow")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case NoSuchSection:
		return ErrNoSuchSection
	case UnexpectedEndOfData:
		return ErrUnexpectedEndOfData
	case UnsupportedVersion:
		return ErrUnsupportedVersion
	case ArithmeticOverflow:
		return ErrArithmeticOverflow
	}
	return nil
}

func (k ErrorKind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseError reports a malformed name-table section. Offset is the byte
// offset within the section where the failing read started.
type ParseError struct {
	Section string
	Kind    ErrorKind
	Offset  uint64
	Err     error
}

func (err *ParseError) Error() string {
	msg := fmt.Sprintf("parse .debug_%s: %s at offset %#x", err.Section, err.Kind, err.Offset)
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrUnexpectedEndOfData) and friends work.
func (err *ParseError) Is(target error) bool {
	return target == err.Kind.sentinel()
}

func (err *ParseError) Unwrap() error {
	return err.Err
}
