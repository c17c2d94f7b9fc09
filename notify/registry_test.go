package notify_test

import (
	"reflect"
	"testing"

	"github.com/propwatch/propwatch/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plain struct {
	Value int
}

type stubStrategy struct {
	name          string
	score         int
	affinityCalls int
	subscribes    int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Affinity(t reflect.Type, timing notify.Timing) int {
	s.affinityCalls++
	return s.score
}

func (s *stubStrategy) Subscribe(sender any, property string, timing notify.Timing, fire func()) (func(), error) {
	s.subscribes++
	return func() {}, nil
}

func TestSelectPrefersHigherAffinity(t *testing.T) {
	reg := notify.DefaultRegistry()

	s, err := reg.Select(reflect.TypeOf(&person{}), notify.After)
	require.NoError(t, err)
	assert.Equal(t, "property-notifier", s.Name())

	s, err = reg.Select(reflect.TypeOf(&person{}), notify.Before)
	require.NoError(t, err)
	assert.Equal(t, "property-notifier", s.Name())
}

func TestSelectFallsBackToSingleShot(t *testing.T) {
	reg := notify.DefaultRegistry()

	s, err := reg.Select(reflect.TypeOf(&plain{}), notify.After)
	require.NoError(t, err)
	assert.Equal(t, "single-shot", s.Name())
}

func TestSelectRegistrationOrderBreaksTies(t *testing.T) {
	first := &stubStrategy{name: "first", score: 5}
	second := &stubStrategy{name: "second", score: 5}
	reg := notify.NewRegistry(first, second)

	s, err := reg.Select(reflect.TypeOf(&plain{}), notify.After)
	require.NoError(t, err)
	assert.Equal(t, "first", s.Name())
}

func TestSelectCachesPerTypeAndTiming(t *testing.T) {
	stub := &stubStrategy{name: "stub", score: 5}
	reg := notify.NewRegistry(stub)

	tt := reflect.TypeOf(&plain{})
	_, err := reg.Select(tt, notify.After)
	require.NoError(t, err)
	_, err = reg.Select(tt, notify.After)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.affinityCalls)

	_, err = reg.Select(tt, notify.Before)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.affinityCalls)
}

func TestSelectNoStrategy(t *testing.T) {
	// No single-shot fallback registered: a plain struct has no mechanism,
	// and a Changer-only type has none for before-change timing.
	reg := notify.NewRegistry(notify.NotifierStrategy())

	_, err := reg.Select(reflect.TypeOf(&plain{}), notify.After)
	require.ErrorIs(t, err, notify.ErrNoStrategy)
}

func TestOnFallbackAdvisory(t *testing.T) {
	reg := notify.DefaultRegistry()

	var advised []string
	reg.OnFallback = func(tt reflect.Type, timing notify.Timing, chosen notify.Strategy) {
		advised = append(advised, chosen.Name())
	}

	_, err := reg.Select(reflect.TypeOf(&plain{}), notify.After)
	require.NoError(t, err)
	assert.Equal(t, []string{"single-shot"}, advised)

	// The notifier band is not advisory.
	_, err = reg.Select(reflect.TypeOf(&person{}), notify.After)
	require.NoError(t, err)
	assert.Len(t, advised, 1)

	fb, err := reg.Fallback(reflect.TypeOf(&plain{}), notify.After)
	require.NoError(t, err)
	assert.True(t, fb)
	fb, err = reg.Fallback(reflect.TypeOf(&person{}), notify.After)
	require.NoError(t, err)
	assert.False(t, fb)
}

func TestRegisterDuplicateName(t *testing.T) {
	reg := notify.NewRegistry(notify.SingleShotStrategy())
	err := reg.Register(notify.SingleShotStrategy())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single-shot")
}

func TestForTypeOutranksNotifier(t *testing.T) {
	target := reflect.TypeOf(&person{})
	typed := notify.ForType("person-direct", target, []notify.Timing{notify.After},
		func(sender any, property string, timing notify.Timing, fire func()) (func(), error) {
			return func() {}, nil
		})
	reg := notify.NewRegistry(typed, notify.NotifierStrategy(), notify.SingleShotStrategy())

	s, err := reg.Select(target, notify.After)
	require.NoError(t, err)
	assert.Equal(t, "person-direct", s.Name())

	// The typed strategy declared after-timing only, so before falls back
	// to the generic notifier mechanism.
	s, err = reg.Select(target, notify.Before)
	require.NoError(t, err)
	assert.Equal(t, "property-notifier", s.Name())

	// Other types never match exact-type strategies.
	s, err = reg.Select(reflect.TypeOf(&plain{}), notify.After)
	require.NoError(t, err)
	assert.Equal(t, "single-shot", s.Name())
}

func TestSingleShotFiresExactlyOnce(t *testing.T) {
	fires := 0
	stop, err := notify.SingleShotStrategy().Subscribe(&plain{}, "Value", notify.After, func() { fires++ })
	require.NoError(t, err)
	defer stop()
	assert.Equal(t, 1, fires)
}
