package notify

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// ErrNoStrategy reports that every registered strategy scored zero for a
// requested (type, timing) pair. This is a configuration error on the
// integrating side, not a runtime data condition.
var ErrNoStrategy = errors.New("notify: no registered strategy can observe this type and timing")

type resolveKey struct {
	t      reflect.Type
	timing Timing
}

type resolution struct {
	strategy Strategy
	fallback bool
}

// Registry holds an ordered list of strategies and resolves the best one per
// (type, timing) pair: strictly highest affinity wins, ties go to the
// earlier registration. Resolutions are cached for the registry's lifetime;
// cache writes are last-write-wins and recomputation races are harmless, so
// concurrent Select calls need no external locking. Register all strategies
// before the first Select.
type Registry struct {
	strategies []Strategy
	names      mapset.Set[string]
	cache      sync.Map // resolveKey -> resolution

	// OnFallback, when set, is called whenever a resolution lands on the
	// lowest-affinity (no-notification) band, once per cached resolution.
	// It is advisory only: callers decide whether that deserves a warning
	// or a hard failure.
	OnFallback func(t reflect.Type, timing Timing, chosen Strategy)
}

// NewRegistry builds a registry from the given strategies, in ranking order.
// It panics on duplicate strategy names, which indicate wiring mistakes.
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{names: mapset.NewSet[string]()}
	for _, s := range strategies {
		r.MustRegister(s)
	}
	return r
}

// DefaultRegistry carries the built-in mechanisms: the property-notifier
// mid band and the single-shot fallback.
func DefaultRegistry() *Registry {
	return NewRegistry(NotifierStrategy(), SingleShotStrategy())
}

// Register appends a strategy. Earlier registrations win affinity ties.
func (r *Registry) Register(s Strategy) error {
	if s == nil {
		return errors.New("notify: nil strategy")
	}
	if !r.names.Add(s.Name()) {
		return fmt.Errorf("notify: strategy %q already registered", s.Name())
	}
	r.strategies = append(r.strategies, s)
	return nil
}

func (r *Registry) MustRegister(s Strategy) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

// Select returns the best strategy for observing timing-mutations on values
// of type t, or ErrNoStrategy when nothing scores above zero.
func (r *Registry) Select(t reflect.Type, timing Timing) (Strategy, error) {
	key := resolveKey{t: t, timing: timing}
	if cached, ok := r.cache.Load(key); ok {
		return cached.(resolution).strategy, nil
	}

	var (
		best      Strategy
		bestScore int
	)
	for _, s := range r.strategies {
		if score := s.Affinity(t, timing); score > bestScore {
			best, bestScore = s, score
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: type %v, timing %s", ErrNoStrategy, t, timing)
	}

	res := resolution{strategy: best, fallback: bestScore <= AffinityFallback}
	r.cache.Store(key, res)
	if res.fallback && r.OnFallback != nil {
		r.OnFallback(t, timing, best)
	}
	return best, nil
}

// Fallback reports whether observing (t, timing) would land on the
// lowest-affinity band, without subscribing anything. Validation tooling
// uses this to warn ahead of time.
func (r *Registry) Fallback(t reflect.Type, timing Timing) (bool, error) {
	if _, err := r.Select(t, timing); err != nil {
		return false, err
	}
	cached, _ := r.cache.Load(resolveKey{t: t, timing: timing})
	return cached.(resolution).fallback, nil
}
