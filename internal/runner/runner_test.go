package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skipmatch/internal/history"
	"skipmatch/internal/matcher"
)

func matcherPredicate() Predicate {
	m := matcher.New()
	return func(_ context.Context, left, right string) (bool, error) {
		return m.Equivalent(left, right)
	}
}

func boolPtr(b bool) *bool { return &b }

func TestLoadCases(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cases.yaml")
		body := `cases:
  - left: a5
    right: a00005
    want: true
  - left: b
    right: "1"
    want: false
  - left: abc
    right: abc
`
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))

		cases, err := LoadCases(path)
		require.NoError(t, err)
		require.Len(t, cases, 3)
		assert.Equal(t, "a5", cases[0].Left)
		require.NotNil(t, cases[0].Want)
		assert.True(t, *cases[0].Want)
		assert.Nil(t, cases[2].Want)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cases.yaml")
		require.NoError(t, os.WriteFile(path, []byte("cases: []\n"), 0644))
		_, err := LoadCases(path)
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCases(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestRun_VerdictsAndOrder(t *testing.T) {
	cases := []Case{
		{Left: "a5", Right: "a00005"},
		{Left: "a5", Right: "a6"},
		{Left: "1", Right: "01"},
		{Left: "abc", Right: "123"},
		{Left: "", Right: "0"},
	}
	r := New(matcherPredicate(), WithConcurrency(3))

	results, err := r.Run(context.Background(), cases)
	require.NoError(t, err)
	require.Len(t, results, len(cases))

	want := []bool{true, false, true, false, true}
	for i, res := range results {
		assert.Equal(t, cases[i], res.Case, "results keep input order")
		require.NoError(t, res.Err)
		assert.Equal(t, want[i], res.Equivalent)
		assert.NotEmpty(t, res.ID)
	}
}

func TestRun_MismatchFlagging(t *testing.T) {
	cases := []Case{
		{Left: "a5", Right: "a00005", Want: boolPtr(true)},
		{Left: "a5", Right: "a00005", Want: boolPtr(false)}, // wrong expectation
		{Left: "A!", Right: "a", Want: boolPtr(true)},       // invalid input with expectation
		{Left: "a5", Right: "a6"},                           // no expectation, no flag
	}
	r := New(matcherPredicate())

	results, err := r.Run(context.Background(), cases)
	require.NoError(t, err)

	assert.False(t, results[0].Mismatch)
	assert.True(t, results[1].Mismatch)
	assert.True(t, results[2].Mismatch)
	require.Error(t, results[2].Err)
	assert.ErrorIs(t, results[2].Err, matcher.ErrInvalidCharacter)
	assert.False(t, results[3].Mismatch)

	s := Summarize(results)
	assert.Equal(t, Summary{Total: 4, Equivalent: 2, Errors: 1, Mismatches: 2}, s)
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(matcherPredicate())
	_, err := r.Run(ctx, []Case{{Left: "a", Right: "a"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_JournalsToHistory(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	r := New(matcherPredicate(),
		WithHistory(store, matcher.DefaultWindow),
		WithSource("matcher"))

	cases := []Case{
		{Left: "a5", Right: "a00005"},
		{Left: "b", Right: "1"},
		{Left: "A", Right: "a"}, // errors are not journaled
	}
	_, err = r.Run(context.Background(), cases)
	require.NoError(t, err)

	st, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, history.Stats{Total: 2, Equivalent: 1}, st)

	recent, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	for _, c := range recent {
		assert.Equal(t, "matcher", c.Source)
		assert.Equal(t, matcher.DefaultWindow, c.Window)
	}
}

func TestWithConcurrency_Clamped(t *testing.T) {
	r := New(matcherPredicate(), WithConcurrency(0))
	results, err := r.Run(context.Background(), []Case{{Left: "a", Right: "a"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Equivalent)
}
