package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLeaves answers --name tests from a table and records every call.
type fakeLeaves struct {
	results map[string]bool
	calls   []string
}

func (f *fakeLeaves) leaf(_ context.Context, pred Predicate) (bool, error) {
	f.calls = append(f.calls, pred.Value())
	return f.results[pred.Value()], nil
}

func eval(t *testing.T, expr string, results map[string]bool) (bool, []string) {
	t.Helper()
	e, err := Parse(strings.Fields(expr))
	require.NoError(t, err)
	f := &fakeLeaves{results: results}
	got, err := e.Eval(context.Background(), f.leaf)
	require.NoError(t, err)
	return got, f.calls
}

func TestEvalLiterals(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{"--true", true},
		{"--false", false},
		{"--true --false", false},
		{"--false --true", true},
		{"--true --and --true", true},
		{"--true --and --false", false},
		{"--false --and --true", false},
		{"--false --or --true", true},
		{"--false --or --false", false},
		{"--true --or --false", true},
		{"--not --true", false},
		{"--not --false", true},
		{"--not --not --true", true},
		{"( --false )", false},
		{"( --true --and --false ) --or --true", true},
		{"--true --and ( --false --or --true )", true},
		{"--false --or ( --true --and --false )", false},
		// No precedence: --and scopes over everything to its right.
		{"--true --and --false --or --true", true},
		{"--false --or --true --and --false", false},
		// --not ignores the carried value.
		{"--true --not --true", false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, _ := eval(t, tt.expr, nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalShortCircuit(t *testing.T) {
	results := map[string]bool{"hit": true, "miss": false}

	tests := []struct {
		expr  string
		want  bool
		calls []string
	}{
		{"--name miss --and --name hit", false, []string{"miss"}},
		{"--name hit --and --name miss", false, []string{"hit", "miss"}},
		{"--name hit --or --name miss", true, []string{"hit"}},
		{"--name miss --or --name hit", true, []string{"miss", "hit"}},
		{"--false --and ( --name hit )", false, nil},
		{"--name miss --not --name hit", false, []string{"miss", "hit"}},
		{"--name hit --name miss", false, []string{"hit", "miss"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, calls := eval(t, tt.expr, results)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.calls, calls)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"", ErrEmptyExpression},
		{")", ErrStrayParen},
		{"--true )", ErrStrayParen},
		{"( --true", ErrUnmatchedParen},
		{"( ( --true )", ErrUnmatchedParen},
		{"( )", ErrEmptyGroup},
		{"--true --and ( )", ErrEmptyGroup},
		{"--true --and", ErrMissingOperand},
		{"--true --or", ErrMissingOperand},
		{"--not", ErrMissingOperand},
		{"( --true --and )", ErrMissingOperand},
		{"--name", ErrMissingOperand},
		{"--true --and --type", ErrMissingOperand},
		{"--regex", ErrMissingOperand},
		{"--bogus", ErrUnknownToken},
		{"--true name", ErrUnknownToken},
		{"--type x", ErrInvalidTypeMask},
		{"--regex ([", ErrInvalidRegex},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Parse(strings.Fields(tt.expr))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestParseErrorsBeforeLeaves(t *testing.T) {
	// The bad regex sits after a leaf that would otherwise run first.
	_, err := Parse([]string{"--name", "a", "--or", "--regex", "(["})
	require.ErrorIs(t, err, ErrInvalidRegex)
}

func TestLeafValueMayLookLikeToken(t *testing.T) {
	got, calls := eval(t, "--name ) --or --name --and", map[string]bool{"--and": true})
	assert.True(t, got)
	assert.Equal(t, []string{")", "--and"}, calls)
}

func TestExprString(t *testing.T) {
	e, err := Parse(strings.Fields("--name a --and --not ( --type d --or --true )"))
	require.NoError(t, err)

	assert.Equal(t, "--name a --and { --not { ( --type d --or { --true } ) } }", e.String())
	leaves := e.Leaves()
	require.Len(t, leaves, 2)
	assert.Equal(t, PredicateName, leaves[0].Kind())
	assert.Equal(t, PredicateTypeMask, leaves[1].Kind())
}

func TestParseAll(t *testing.T) {
	e, err := Parse([]string{"--all", "--and", "--not", "--name", "x"})
	require.NoError(t, err)
	assert.Equal(t, "--all --and { --not { --name x } }", e.String())
	leaves := e.Leaves()
	require.Len(t, leaves, 2)
	assert.Equal(t, PredicateAll, leaves[0].Kind())
}

func TestEvalPropagatesLeafError(t *testing.T) {
	e, err := Parse([]string{"--name", "a", "--or", "--true"})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = e.Eval(context.Background(), func(context.Context, Predicate) (bool, error) {
		return false, boom
	})
	require.ErrorIs(t, err, boom)
}
