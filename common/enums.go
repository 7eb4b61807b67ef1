// Package common holds enums shared between configuration and command line
// handling so that neither has to import the other.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// OutputFmt is the requested output type.
type OutputFmt int

const (
	OutputFmtCss OutputFmt = iota
	OutputFmtYaml
	OutputFmtTree
	OutputFmtTemplate
)

var ErrInvalidOutputFmt = errors.New("not a valid OutputFmt")

var _OutputFmtNames = []string{"css", "yaml", "tree", "template"}

// OutputFmtNames returns a list of possible string values of OutputFmt.
func OutputFmtNames() []string {
	tmp := make([]string, len(_OutputFmtNames))
	copy(tmp, _OutputFmtNames)
	return tmp
}

func (o OutputFmt) String() string {
	if o.IsValid() {
		return _OutputFmtNames[o]
	}
	return fmt.Sprintf("OutputFmt(%d)", o)
}

func (o OutputFmt) IsValid() bool {
	return o >= OutputFmtCss && o <= OutputFmtTemplate
}

// ParseOutputFmt attempts to convert a string to an OutputFmt, names are case
// insensitive.
func ParseOutputFmt(name string) (OutputFmt, error) {
	for i, n := range _OutputFmtNames {
		if strings.EqualFold(n, name) {
			return OutputFmt(i), nil
		}
	}
	return OutputFmt(0), fmt.Errorf("%s is %w", name, ErrInvalidOutputFmt)
}

// MustParseOutputFmt converts a string to an OutputFmt, and panics if is not
// valid.
func MustParseOutputFmt(name string) OutputFmt {
	val, err := ParseOutputFmt(name)
	if err != nil {
		panic(err)
	}
	return val
}

func (o OutputFmt) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *OutputFmt) UnmarshalText(text []byte) error {
	v, err := ParseOutputFmt(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Ext returns file extension used when output is written to a directory.
func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtCss:
		return ".css"
	case OutputFmtYaml:
		return ".yaml"
	case OutputFmtTree, OutputFmtTemplate:
		return ".txt"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
