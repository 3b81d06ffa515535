package csvflow

import (
	"github.com/csvflow/csvflow/internal/bind"
	"github.com/csvflow/csvflow/internal/dispatch"
)

// ErrorPolicy controls how SchemaRegistry.Bind reacts to a per-field
// conversion failure. Re-exported from internal/bind so callers never need
// to import an internal package.
type ErrorPolicy = bind.ErrorPolicy

const (
	PolicySkip       = bind.PolicySkip
	PolicyUseDefault = bind.PolicyUseDefault
	PolicyThrow      = bind.PolicyThrow
)

// FieldSetter converts and assigns one column's raw bytes into a destination record.
type FieldSetter = bind.Setter

// FieldDescriptor describes one bound column of a registered schema.
type FieldDescriptor = bind.Field

// ErrMissingColumn is returned by Register (when a Required field has no
// matching header/position and allowMissingColumns is false) and by Bind
// (when a row is too short to contain a Required field's column).
var ErrMissingColumn = bind.ErrMissingColumn

// UnmatchedPolicy controls what SchemaRegistry.Bind does when a row's
// discriminator matches no registered schema.
type UnmatchedPolicy int

const (
	// UnmatchedThrow returns ErrUnknownSchema (the default).
	UnmatchedThrow UnmatchedPolicy = iota
	// UnmatchedSkip silently reports ok=false, err=nil.
	UnmatchedSkip
	// UnmatchedFallback invokes the registry's FallbackFunc instead of erroring.
	UnmatchedFallback
)

// FallbackFunc handles a row whose discriminator matched no registered
// schema, under UnmatchedFallback. columns is the row's raw column values
// and rowNum is a 1-based count of rows seen by Bind so far (including this one).
type FallbackFunc func(discriminator string, columns []string, rowNum int) error

// SchemaRegistry combines the multi-schema dispatcher (C6) and the typed
// record binder (C7): rows are routed to the schema registered for their
// discriminator column, then bound field-by-field via that schema's frozen
// Descriptor. It composes internal/dispatch and internal/bind to support
// multiple concurrent record shapes in one input stream.
type SchemaRegistry struct {
	dispatcher  *dispatch.Dispatcher
	descriptors []*bind.Descriptor
	policy      UnmatchedPolicy
	fallback    FallbackFunc
	rowNum      int
}

// NewSchemaRegistry returns an empty registry whose unmatched-row policy
// defaults to UnmatchedThrow.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{dispatcher: dispatch.NewDispatcher()}
}

// SetUnmatchedPolicy changes how Bind reacts to an unrecognised discriminator.
func (s *SchemaRegistry) SetUnmatchedPolicy(p UnmatchedPolicy) { s.policy = p }

// SetFallback installs the factory invoked under UnmatchedFallback.
func (s *SchemaRegistry) SetFallback(f FallbackFunc) { s.fallback = f }

// Register associates discriminator with a schema resolved from header and
// fields. Discriminator matching is case-insensitive (DESIGN.md Open
// Question 3). When allowMissingColumns is false, a Required field absent
// from header (by both name and position) is rejected here rather than
// silently dropped at Bind time.
func (s *SchemaRegistry) Register(discriminator string, header []string, fields []FieldDescriptor, allowMissingColumns bool) error {
	desc, err := bind.Resolve(header, fields, allowMissingColumns)
	if err != nil {
		return err
	}
	s.descriptors = append(s.descriptors, desc)
	idx := len(s.descriptors) - 1
	s.dispatcher.Register(dispatch.FoldString(discriminator), idx)
	return nil
}

// Bind resolves the schema registered for discriminator and binds row into
// dst using it. ok is false if no schema matches discriminator; what happens
// then (error, silent skip, or a caller-supplied fallback) follows the
// registry's UnmatchedPolicy.
func (s *SchemaRegistry) Bind(discriminator []byte, row RowView, dst any, onFieldError func(string, error)) (ok bool, err error) {
	s.rowNum++
	folded := dispatch.FoldString(string(discriminator))
	_, idx, found := s.dispatcher.LookupBytes([]byte(folded))
	if !found {
		switch s.policy {
		case UnmatchedSkip:
			return false, nil
		case UnmatchedFallback:
			if s.fallback != nil {
				return false, s.fallback(string(discriminator), row.Clone().Fields(), s.rowNum)
			}
			return false, nil
		default: // UnmatchedThrow
			return false, ErrUnknownSchema
		}
	}
	return true, s.descriptors[idx].Bind(row, dst, onFieldError)
}

// Len reports how many schemas are registered.
func (s *SchemaRegistry) Len() int { return s.dispatcher.Len() }
