// Package bind implements the typed record binder (C7): mapping row columns
// to fields of a caller-supplied record type via a frozen, once-resolved
// schema descriptor of per-field setter functions.
//
// It favors small structs and explicit error returns, with no
// reflection-heavy magic beyond what's unavoidable to resolve a Go struct's
// fields once: a schema descriptor interpreted through per-field function
// pointers, built once per record type and then reused across every row, so
// there's no reflect.Value.Set call per field on the hot path once the
// setter closures exist.
package bind

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrMissingColumn is returned by Resolve (when a Required field has no
// matching header/position and allowMissingColumns is false) and by Bind
// (when a row is too short to contain a Required field's column).
var ErrMissingColumn = errors.New("required column not found")

// ErrorPolicy controls how a Binder reacts to a per-field conversion failure.
type ErrorPolicy int

const (
	// PolicySkip leaves the destination field at its zero value and continues.
	PolicySkip ErrorPolicy = iota
	// PolicyUseDefault assigns a preconfigured default value and continues.
	PolicyUseDefault
	// PolicyThrow aborts the row with an error.
	PolicyThrow
)

// Setter assigns the decoded value of one column into the record pointed to
// by dst. Field descriptors close over the destination's field offset via
// the generator that built them (see Field).
type Setter func(dst any, raw []byte) error

// Field describes one bound column: its header name (for header-based
// resolution), its 0-based row position (for position-based resolution when
// no header is available), the conversion+assignment function, the policy
// applied when conversion fails, and a default value used under
// PolicyUseDefault.
type Field struct {
	Name     string
	Position int // -1 when resolved by header name instead
	Required bool
	Set      Setter
	Policy   ErrorPolicy
	Default  Setter // invoked with raw == nil to assign the default
}

// Descriptor is the frozen, once-resolved binding schema for a record type,
// built by Resolve from a header row and a slice of Field templates.
type Descriptor struct {
	fields      []Field
	columnOrder []int // columnOrder[rowColumnIndex] = index into fields, or -1
}

// Resolve matches fields against header (by Name) and freezes the resulting
// column order. A field whose Name is absent from header falls back to its
// Position: header-name resolution first, position as the fallback.
//
// When allowMissingColumns is false, any Required field that resolves to no
// column at all is an error; when true, such a field is left unbound like an
// ordinary optional field: Bind never touches it and does not apply its
// Default.
func Resolve(header []string, fields []Field, allowMissingColumns bool) (*Descriptor, error) {
	nameIdx := make(map[string]int, len(header))
	for i, h := range header {
		nameIdx[h] = i
	}

	order := make([]int, len(header))
	for i := range order {
		order[i] = -1
	}
	matched := make([]bool, len(fields))
	for fi, f := range fields {
		col := -1
		if f.Name != "" {
			if c, ok := nameIdx[f.Name]; ok {
				col = c
			}
		}
		if col < 0 && f.Position >= 0 && f.Position < len(order) {
			col = f.Position
		}
		if col >= 0 {
			order[col] = fi
			matched[fi] = true
		}
	}
	if !allowMissingColumns {
		for fi, f := range fields {
			if f.Required && !matched[fi] {
				return nil, fmt.Errorf("%w: %q", ErrMissingColumn, f.Name)
			}
		}
	}
	return &Descriptor{fields: fields, columnOrder: order}, nil
}

// Row is the minimal surface Bind needs from a parsed row, satisfied by
// csvflow.RowView.
type Row interface {
	ColumnCount() int
	Column(i int) []byte
}

// Bind decodes row into dst using d's frozen field descriptors. It returns
// the first error encountered under PolicyThrow; PolicySkip/PolicyUseDefault
// failures are swallowed and recorded via onFieldError if non-nil.
func (d *Descriptor) Bind(row Row, dst any, onFieldError func(field string, err error)) error {
	n := row.ColumnCount()
	for col, fi := range d.columnOrder {
		if fi < 0 {
			continue
		}
		f := &d.fields[fi]
		if col >= n {
			if f.Required {
				return fmt.Errorf("%w: %q", ErrMissingColumn, f.Name)
			}
			continue
		}
		raw := row.Column(col)
		if err := f.Set(dst, raw); err != nil {
			switch f.Policy {
			case PolicyThrow:
				return fmt.Errorf("field %q: %w", f.Name, err)
			case PolicyUseDefault:
				if f.Default != nil {
					_ = f.Default(dst, nil)
				}
				fallthrough
			default: // PolicySkip
				if onFieldError != nil {
					onFieldError(f.Name, err)
				}
			}
		}
	}
	return nil
}

// -- typed conversion helpers, reused by generated Setters --
//
// Conversion leans on strconv and time.Parse rather than hand-rolling
// numeric or time parsing.

// StringSetter assigns the raw bytes verbatim (copied) into *string at f.
func StringSetter(f func(any) *string) Setter {
	return func(dst any, raw []byte) error {
		if raw == nil {
			return nil
		}
		*f(dst) = string(raw)
		return nil
	}
}

// IntSetter parses raw as a base-10 integer into *int64 at f.
func IntSetter(f func(any) *int64) Setter {
	return func(dst any, raw []byte) error {
		if raw == nil {
			return nil
		}
		v, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return err
		}
		*f(dst) = v
		return nil
	}
}

// FloatSetter parses raw as a float64 into *float64 at f.
func FloatSetter(f func(any) *float64) Setter {
	return func(dst any, raw []byte) error {
		if raw == nil {
			return nil
		}
		v, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return err
		}
		*f(dst) = v
		return nil
	}
}

// BoolSetter parses raw via strconv.ParseBool into *bool at f.
func BoolSetter(f func(any) *bool) Setter {
	return func(dst any, raw []byte) error {
		if raw == nil {
			return nil
		}
		v, err := strconv.ParseBool(string(raw))
		if err != nil {
			return err
		}
		*f(dst) = v
		return nil
	}
}

// TimeSetter parses raw using layout into *time.Time at f.
func TimeSetter(layout string, f func(any) *time.Time) Setter {
	return func(dst any, raw []byte) error {
		if raw == nil {
			return nil
		}
		v, err := time.Parse(layout, string(raw))
		if err != nil {
			return err
		}
		*f(dst) = v
		return nil
	}
}
