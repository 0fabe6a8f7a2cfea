package args

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestValidateAccepts(t *testing.T) {
	for _, decl := range []string{
		"",
		"a b c",
		"a:1 b:2",
		"a b c:3 d:4",
		"a...",
		"a b c...",
		"a b... c",
		"a... b c",
		"a b c:3 d:4 e...",
		"a:1 b...",
		"die:{d4|d6}=d6 count:1",
	} {
		t.Run(decl, func(t *testing.T) {
			_, err := Parse(decl)
			require.NoError(t, err)
		})
	}
}

func TestValidateRejects(t *testing.T) {
	for _, tc := range []struct {
		name   string
		schema Schema
		index  int
	}{
		{"two variadics", Schema{Variadic{"a"}, Required{"b"}, Variadic{"c"}}, 2},
		{"required after optional", Schema{Required{"a"}, Optional{Name: "b"}, Required{"c"}}, 2},
		{"optional after variadic", Schema{Variadic{"a"}, Optional{Name: "b"}}, 1},
		{"restricted after variadic", Schema{Variadic{"a"}, OneOf("b", "x")}, 1},
		{"required after restricted", Schema{OneOf("a", "x"), Required{"b"}}, 1},
		{"required after optional and variadic", Schema{Optional{Name: "a"}, Variadic{"b"}, Required{"c"}}, 2},
		{"duplicate name", Schema{Required{"a"}, Required{"a"}}, 1},
		{"empty name", Schema{Required{""}}, 0},
		{"empty restriction", Schema{Restricted{Name: "a"}}, 0},
		{"default outside restriction", Schema{OneOfDefault("a", "z", "x", "y")}, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.schema)
			require.ErrorIs(t, err, ErrInvalidSchema)

			var se *SchemaError
			require.True(t, errors.As(err, &se))
			require.Equal(t, tc.index, se.Index)
		})
	}
}

func TestAlign(t *testing.T) {
	for _, tc := range []struct {
		decl   string
		tokens string
		want   Values
	}{
		{"a b c...", "1", nil},
		{"a b c...", "1 2", Values{"a": "1", "b": "2", "c": []string{}}},
		{"a b c...", "1 2 3 4 5", Values{"a": "1", "b": "2", "c": []string{"3", "4", "5"}}},
		{"a b c... d e", "1 2 3", nil},
		{"a b c... d e", "1 2 3 4", Values{"a": "1", "b": "2", "c": []string{}, "d": "3", "e": "4"}},
		{"a b c... d e", "1 2 3 4 5 6 7", Values{"a": "1", "b": "2", "c": []string{"3", "4", "5"}, "d": "6", "e": "7"}},
		{"a... b", "1", Values{"a": []string{}, "b": "1"}},
		{"a...", "", Values{"a": []string{}}},
		{"a b:2", "1", Values{"a": "1", "b": "2"}},
		{"a b:2", "1 3", Values{"a": "1", "b": "3"}},
		{"a:1 b:2", "", Values{"a": "1", "b": "2"}},
		{"a b", "1 2 3", nil},
		{"", "", Values{}},
		{"", "x", nil},
		{"a:1 b...", "", Values{"a": "1", "b": []string{}}},
		{"a:1 b...", "x y z", Values{"a": "x", "b": []string{"y", "z"}}},
		{"die:{d4|d6}=d6", "", Values{"die": "d6"}},
		{"die:{d4|d6}=d6", "d4", Values{"die": "d4"}},
		{"die:{d4|d6}=d6", "d20", nil},
		{"mode:{on|off}", "", nil},
		{"mode:{on}", "on", Values{"mode": "on"}},
		{"a b c:3 d:4 e...", "1", nil},
		{"a b c:3 d:4 e...", "1 2", Values{"a": "1", "b": "2", "c": "3", "d": "4", "e": []string{}}},
		{"a b c:3 d:4 e...", "1 2 x", Values{"a": "1", "b": "2", "c": "x", "d": "4", "e": []string{}}},
		{"a b c:3 d:4 e...", "1 2 x y z", Values{"a": "1", "b": "2", "c": "x", "d": "y", "e": []string{"z"}}},
	} {
		t.Run(tc.decl+"/"+tc.tokens, func(t *testing.T) {
			got, ok := Align(MustParse(tc.decl), strings.Fields(tc.tokens))
			if tc.want == nil {
				require.False(t, ok)
				require.Nil(t, got)
				return
			}
			require.True(t, ok)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Align mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAlignConservesTokens(t *testing.T) {
	schema := MustParse("a b c... d e")
	for n := schema.MinTokens(); n < 12; n++ {
		tokens := make([]string, n)
		for i := range tokens {
			tokens[i] = string(rune('a' + i))
		}
		got, ok := Align(schema, tokens)
		require.True(t, ok)

		rebuilt := []string{got.String("a"), got.String("b")}
		rebuilt = append(rebuilt, got.List("c")...)
		rebuilt = append(rebuilt, got.String("d"), got.String("e"))
		require.Equal(t, tokens, rebuilt)
	}
}

func TestAlignDoesNotAliasTokens(t *testing.T) {
	tokens := []string{"x", "y", "z"}
	got, ok := Align(MustParse("a..."), tokens)
	require.True(t, ok)

	tokens[0] = "changed"
	require.Equal(t, []string{"x", "y", "z"}, got.List("a"))
}

func TestUsageRoundTrip(t *testing.T) {
	for _, decl := range []string{
		"arg1 arg2 arg3:3",
		"arg1 arg2...",
		"title lastName:User words...",
		"die:{d4|d6|d8}=d6 count:1",
		"mode:{on|off}",
		"a b... c",
	} {
		require.Equal(t, decl, Usage(MustParse(decl)))
	}
}

func TestParseErrors(t *testing.T) {
	for _, decl := range []string{
		":x",
		"...",
		"a:{x|y",
		"a:{x|y}z",
		"a... b:1",
	} {
		t.Run(decl, func(t *testing.T) {
			_, err := Parse(decl)
			require.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
	require.Panics(t, func() { MustParse("a... b...") })
}

func TestValuesAccessors(t *testing.T) {
	v := Values{"s": "x", "l": []string{"a", "b"}}
	require.Equal(t, "x", v.String("s"))
	require.Equal(t, "", v.String("l"))
	require.Equal(t, []string{"a", "b"}, v.List("l"))
	require.Nil(t, v.List("s"))
	require.Equal(t, "a b", v.Joined("l"))
}
