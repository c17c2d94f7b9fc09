package combine_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/propwatch/propwatch/combine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manual is a hand-cranked stream for driving the combinator from tests.
type manual struct {
	sub   combine.Subscriber[any]
	stops int
}

func (m *manual) source() combine.Source[any] {
	return func(sub combine.Subscriber[any]) func() {
		m.sub = sub
		return func() { m.stops++ }
	}
}

func join(values []any) string {
	var s string
	for _, v := range values {
		s += fmt.Sprint(v)
	}
	return s
}

func TestLatestGatesOnAllInputs(t *testing.T) {
	a, b, c := &manual{}, &manual{}, &manual{}

	var got []string
	stop := combine.Latest(join, a.source(), b.source(), c.source())(combine.Subscriber[string]{
		Next: func(v string) { got = append(got, v) },
	})
	defer stop()

	a.sub.Next(1)
	b.sub.Next(2)
	assert.Empty(t, got, "no emission until every input has produced a value")

	c.sub.Next(3)
	require.Equal(t, []string{"123"}, got)

	// Each later emission reuses the cached latest of the other inputs.
	b.sub.Next(9)
	assert.Equal(t, []string{"123", "193"}, got)
	a.sub.Next(0)
	assert.Equal(t, []string{"123", "193", "093"}, got)
}

func TestLatestRepeatedValueFromOneInput(t *testing.T) {
	a, b := &manual{}, &manual{}

	var got []string
	stop := combine.Latest(join, a.source(), b.source())(combine.Subscriber[string]{
		Next: func(v string) { got = append(got, v) },
	})
	defer stop()

	a.sub.Next(1)
	a.sub.Next(1)
	b.sub.Next(2)
	a.sub.Next(1)
	// The combinator never value-filters; that's façade policy.
	assert.Equal(t, []string{"12", "12"}, got)
}

func TestLatestErrorTearsDownAllInputs(t *testing.T) {
	a, b := &manual{}, &manual{}
	boom := errors.New("boom")

	var got []string
	var failed error
	stop := combine.Latest(join, a.source(), b.source())(combine.Subscriber[string]{
		Next: func(v string) { got = append(got, v) },
		Err:  func(err error) { failed = err },
	})
	defer stop()

	a.sub.Next(1)
	b.sub.Err(boom)

	require.ErrorIs(t, failed, boom)
	assert.Equal(t, 1, a.stops)
	assert.Equal(t, 1, b.stops)

	// A straggler firing after the error is dropped.
	a.sub.Next(2)
	assert.Empty(t, got)

	// Stopping after an error must not double-stop the inputs.
	stop()
	assert.Equal(t, 1, a.stops)
}

func TestLatestCompletesOnlyWhenAllComplete(t *testing.T) {
	a, b := &manual{}, &manual{}

	done := 0
	stop := combine.Latest(join, a.source(), b.source())(combine.Subscriber[string]{
		Done: func() { done++ },
	})
	defer stop()

	a.sub.Done()
	assert.Equal(t, 0, done)
	b.sub.Done()
	assert.Equal(t, 1, done)
}

func TestLatestStopIsIdempotent(t *testing.T) {
	a, b := &manual{}, &manual{}

	var got []string
	stop := combine.Latest(join, a.source(), b.source())(combine.Subscriber[string]{
		Next: func(v string) { got = append(got, v) },
	})

	stop()
	stop()
	assert.Equal(t, 1, a.stops)
	assert.Equal(t, 1, b.stops)

	a.sub.Next(1)
	b.sub.Next(2)
	assert.Empty(t, got)
}

func TestLatestContractViolationsPanic(t *testing.T) {
	require.Panics(t, func() { combine.Latest[string](nil) })
	require.Panics(t, func() { combine.Latest(join) })
}

func TestLatest2TypedWrapper(t *testing.T) {
	a, b := &manual{}, &manual{}

	typedA := func(sub combine.Subscriber[int]) func() {
		return a.source()(combine.Subscriber[any]{
			Next: func(v any) { sub.Next(v.(int)) },
		})
	}
	typedB := func(sub combine.Subscriber[string]) func() {
		return b.source()(combine.Subscriber[any]{
			Next: func(v any) { sub.Next(v.(string)) },
		})
	}

	var got []string
	stop := combine.Latest2(typedA, typedB, func(n int, s string) string {
		return fmt.Sprintf("%d-%s", n, s)
	})(combine.Subscriber[string]{
		Next: func(v string) { got = append(got, v) },
	})
	defer stop()

	a.sub.Next(1)
	b.sub.Next("x")
	a.sub.Next(2)
	assert.Equal(t, []string{"1-x", "2-x"}, got)
}
