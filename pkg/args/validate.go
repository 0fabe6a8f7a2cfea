package args

import (
	"errors"
	"fmt"
)

// ErrInvalidSchema is wrapped by every SchemaError.
var ErrInvalidSchema = errors.New("invalid argument schema")

// SchemaError describes the first parameter that breaks a structural rule.
type SchemaError struct {
	Index  int
	Name   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("parameter %d (%q): %s", e.Index, e.Name, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrInvalidSchema }

// Validate checks the structural rules of a schema, scanning left to right:
//   - at most one Variadic parameter;
//   - no Optional or Restricted parameter after a Variadic one;
//   - no Required parameter once an Optional or Restricted one was seen.
//
// Reaching a Variadic parameter does not clear the optional flag, so
// "a b:1 c..." is valid while "a b:1 c... d" is not.
//
// Names must also be non-empty and unique, and a Restricted parameter needs
// at least one allowed value.
func Validate(s Schema) error {
	var optionalSeen, variadicSeen bool
	names := make(map[string]bool, len(s))

	for i, p := range s {
		if p == nil {
			return &SchemaError{Index: i, Reason: "nil parameter"}
		}
		name := p.ParamName()
		if name == "" {
			return &SchemaError{Index: i, Reason: "empty name"}
		}
		if names[name] {
			return &SchemaError{Index: i, Name: name, Reason: "duplicate name"}
		}
		names[name] = true

		switch p := p.(type) {
		case Optional:
			if variadicSeen {
				return &SchemaError{Index: i, Name: name, Reason: "optional parameter after variadic"}
			}
			optionalSeen = true
		case Restricted:
			if variadicSeen {
				return &SchemaError{Index: i, Name: name, Reason: "optional parameter after variadic"}
			}
			if len(p.Allowed) == 0 {
				return &SchemaError{Index: i, Name: name, Reason: "restricted parameter without allowed values"}
			}
			if p.HasDefault && !p.Allows(p.Default) {
				return &SchemaError{Index: i, Name: name, Reason: "default is not an allowed value"}
			}
			optionalSeen = true
		case Variadic:
			if variadicSeen {
				return &SchemaError{Index: i, Name: name, Reason: "second variadic parameter"}
			}
			variadicSeen = true
		case Required:
			if optionalSeen {
				return &SchemaError{Index: i, Name: name, Reason: "required parameter after optional"}
			}
		}
	}
	return nil
}
