// Package args describes the positional parameters of a chat command and
// aligns whitespace-separated tokens onto them.
//
// A schema is an ordered list of parameters. Four kinds exist:
//
//	Required{Name: "title"}                            title
//	Optional{Name: "lastName", Default: "User"}        lastName:User
//	Restricted{Name: "die", Allowed: []string{...}}    die:{d4|d6}  or  die:{d4|d6}=d6
//	Variadic{Name: "words"}                            words...
//
// The right-hand column is the notation accepted by Parse and produced by
// Usage, so schemas can be declared compactly:
//
//	schema := args.MustParse("title lastName:User words...")
//	values, ok := args.Align(schema, strings.Fields("Sir Bob how are you"))
//	// values: title=Sir lastName=Bob words=[how are you]
package args

import (
	"slices"
	"strings"
)

// Param is one position in a command's argument list. The concrete kinds
// are Required, Optional, Restricted and Variadic; no other package can add
// a kind.
type Param interface {
	ParamName() string
	param()
}

// Required must receive a token.
type Required struct {
	Name string
}

// Optional takes the next token if there is one and Default otherwise.
type Optional struct {
	Name    string
	Default string
}

// Restricted only accepts values listed in Allowed. A single allowed value
// acts as a scalar restriction. Without a default the parameter cannot be
// omitted.
type Restricted struct {
	Name       string
	Allowed    []string
	Default    string
	HasDefault bool
}

// Variadic captures zero or more tokens, in order.
type Variadic struct {
	Name string
}

func (p Required) ParamName() string   { return p.Name }
func (p Optional) ParamName() string   { return p.Name }
func (p Restricted) ParamName() string { return p.Name }
func (p Variadic) ParamName() string   { return p.Name }

func (Required) param()   {}
func (Optional) param()   {}
func (Restricted) param() {}
func (Variadic) param()   {}

// OneOf returns a Restricted parameter without a default.
func OneOf(name string, allowed ...string) Restricted {
	return Restricted{Name: name, Allowed: allowed}
}

// OneOfDefault returns a Restricted parameter that falls back to def when
// omitted.
func OneOfDefault(name, def string, allowed ...string) Restricted {
	return Restricted{Name: name, Allowed: allowed, Default: def, HasDefault: true}
}

// Allows reports whether v is one of the allowed values.
func (p Restricted) Allows(v string) bool {
	return slices.Contains(p.Allowed, v)
}

// Schema is an ordered parameter list.
type Schema []Param

// MinTokens is the number of Required parameters. Restricted parameters are
// not counted even without a default; Align still rejects them when absent.
func (s Schema) MinTokens() int {
	n := 0
	for _, p := range s {
		if _, ok := p.(Required); ok {
			n++
		}
	}
	return n
}

// VariadicIndex returns the index of the variadic parameter, or -1.
func (s Schema) VariadicIndex() int {
	for i, p := range s {
		if _, ok := p.(Variadic); ok {
			return i
		}
	}
	return -1
}

// Values maps parameter names to aligned values: a string for Required,
// Optional and Restricted parameters, a []string for Variadic ones.
type Values map[string]any

// String returns the scalar value of name, or "" when absent.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// List returns the captured tokens of a variadic parameter.
func (v Values) List(name string) []string {
	l, _ := v[name].([]string)
	return l
}

// Joined returns the captured tokens of a variadic parameter joined by a
// single space.
func (v Values) Joined(name string) string {
	return strings.Join(v.List(name), " ")
}
