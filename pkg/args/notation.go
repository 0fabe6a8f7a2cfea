package args

import (
	"fmt"
	"strings"
)

// Usage renders the schema in the notation accepted by Parse, parameters
// separated by single spaces.
func Usage(s Schema) string {
	parts := make([]string, 0, len(s))
	for _, p := range s {
		parts = append(parts, usage(p))
	}
	return strings.Join(parts, " ")
}

func usage(p Param) string {
	switch p := p.(type) {
	case Optional:
		return p.Name + ":" + p.Default
	case Restricted:
		u := p.Name + ":{" + strings.Join(p.Allowed, "|") + "}"
		if p.HasDefault {
			u += "=" + p.Default
		}
		return u
	case Variadic:
		return p.Name + "..."
	default:
		return p.ParamName()
	}
}

// Parse reads a whitespace-separated schema declaration and validates it.
//
//	name            Required
//	name:default    Optional (an empty default is allowed: "name:")
//	name:{a|b}      Restricted, no default
//	name:{a|b}=a    Restricted with default
//	name...         Variadic
func Parse(decl string) (Schema, error) {
	fields := strings.Fields(decl)
	s := make(Schema, 0, len(fields))
	for i, f := range fields {
		p, err := parseParam(f)
		if err != nil {
			return nil, fmt.Errorf("parse parameter %d %q: %w", i, f, err)
		}
		s = append(s, p)
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// MustParse is like Parse but panics on error. Use it for schemas declared
// in code.
func MustParse(decl string) Schema {
	s, err := Parse(decl)
	if err != nil {
		panic(fmt.Sprintf("args: %v", err))
	}
	return s
}

func parseParam(f string) (Param, error) {
	name, rest, hasColon := strings.Cut(f, ":")
	if name == "" {
		return nil, fmt.Errorf("missing name: %w", ErrInvalidSchema)
	}
	if !hasColon {
		if base, ok := strings.CutSuffix(name, "..."); ok {
			if base == "" {
				return nil, fmt.Errorf("missing name: %w", ErrInvalidSchema)
			}
			return Variadic{Name: base}, nil
		}
		return Required{Name: name}, nil
	}

	if !strings.HasPrefix(rest, "{") {
		return Optional{Name: name, Default: rest}, nil
	}

	set, after, closed := strings.Cut(rest[1:], "}")
	if !closed {
		return nil, fmt.Errorf("unterminated value set: %w", ErrInvalidSchema)
	}
	r := Restricted{Name: name, Allowed: strings.Split(set, "|")}
	switch {
	case after == "":
	case strings.HasPrefix(after, "="):
		r.Default = after[1:]
		r.HasDefault = true
	default:
		return nil, fmt.Errorf("unexpected %q after value set: %w", after, ErrInvalidSchema)
	}
	return r, nil
}
