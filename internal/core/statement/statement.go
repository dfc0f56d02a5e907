// Package statement provides reusable compiled queries with parameter slots.
package statement

import (
	"fmt"

	"github.com/satishbabariya/tds-go/internal/core/errdefs"
	"github.com/satishbabariya/tds-go/internal/core/query/compiler"
	"github.com/satishbabariya/tds-go/internal/core/query/domain"
	"github.com/satishbabariya/tds-go/internal/core/query/generator"
)

// Statement is a query compiled once and executed many times with different
// parameter values. Slots that were never set are sent as null.
type Statement struct {
	text   string
	query  *domain.CompiledQuery
	params []domain.Value
	set    []bool
}

// New compiles text into a Statement with one unset slot per placeholder.
func New(text string) *Statement {
	q := compiler.Compile(text)
	return &Statement{
		text:   text,
		query:  q,
		params: make([]domain.Value, q.ParamCount()),
		set:    make([]bool, q.ParamCount()),
	}
}

// Text returns the source text.
func (s *Statement) Text() string { return s.text }

// Query returns the compiled query.
func (s *Statement) Query() *domain.CompiledQuery { return s.query }

// ParamCount returns the number of placeholders.
func (s *Statement) ParamCount() int { return len(s.params) }

// SetParam binds the placeholder at position i (zero based).
func (s *Statement) SetParam(i int, v any) error {
	if i < 0 || i >= len(s.params) {
		return fmt.Errorf("%w: index %d out of range [0, %d)", errdefs.ErrParameterCount, i, len(s.params))
	}
	val, err := domain.From(v)
	if err != nil {
		return fmt.Errorf("failed to bind parameter %d: %w", i, err)
	}
	s.params[i] = val
	s.set[i] = true
	return nil
}

// SetNamed binds every placeholder written as :name.
func (s *Statement) SetNamed(name string, v any) error {
	idx := s.query.ParamIndex(name)
	if len(idx) == 0 {
		return fmt.Errorf("%w: %q", errdefs.ErrUnknownParameter, name)
	}
	val, err := domain.From(v)
	if err != nil {
		return fmt.Errorf("failed to bind parameter %q: %w", name, err)
	}
	for _, i := range idx {
		s.params[i] = val
		s.set[i] = true
	}
	return nil
}

// IsSet reports whether slot i has been bound.
func (s *Statement) IsSet(i int) bool {
	return i >= 0 && i < len(s.set) && s.set[i]
}

// Clear unbinds every slot.
func (s *Statement) Clear() {
	for i := range s.params {
		s.params[i] = domain.Null()
		s.set[i] = false
	}
}

// Params returns a copy of the bound values. Unset slots are null.
func (s *Statement) Params() []domain.Value {
	out := make([]domain.Value, len(s.params))
	copy(out, s.params)
	return out
}

// SQL generates the literal SQL for the current bindings.
func (s *Statement) SQL() (string, error) {
	return generator.Generate(s.query, s.params)
}
