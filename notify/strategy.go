package notify

import (
	"fmt"
	"reflect"
)

// Affinity bands for the built-in strategies. A score of zero means the
// strategy cannot observe the type/timing combination at all.
const (
	AffinityNone     = 0
	AffinityFallback = 1
	AffinityNotifier = 10
	AffinityExact    = 20
)

// SubscribeFunc attaches to sender's notification mechanism for one property
// and invokes fire on every raw mutation event.
type SubscribeFunc func(sender any, property string, timing Timing, fire func()) (stop func(), err error)

// Strategy is one way of observing property mutations on some family of
// types. Affinity scores how well it fits a (type, timing) pair; Subscribe
// attaches the raw event feed.
type Strategy interface {
	Name() string
	Affinity(t reflect.Type, timing Timing) int
	Subscribe(sender any, property string, timing Timing, fire func()) (stop func(), err error)
}

var (
	changerType    = reflect.TypeOf((*Changer)(nil)).Elem()
	preChangerType = reflect.TypeOf((*PreChanger)(nil)).Elem()
)

type notifierStrategy struct{}

// NotifierStrategy observes any type implementing Changer (after timing) or
// PreChanger (before timing). A type that only implements Changer scores
// zero for before: there is no honest way to emulate a before-mutation
// notification from an after-mutation one.
func NotifierStrategy() Strategy {
	return notifierStrategy{}
}

func (notifierStrategy) Name() string { return "property-notifier" }

func (notifierStrategy) Affinity(t reflect.Type, timing Timing) int {
	if t == nil {
		return AffinityNone
	}
	if timing == Before {
		if t.Implements(preChangerType) {
			return AffinityNotifier
		}
		return AffinityNone
	}
	if t.Implements(changerType) {
		return AffinityNotifier
	}
	return AffinityNone
}

func (notifierStrategy) Subscribe(sender any, property string, timing Timing, fire func()) (func(), error) {
	h := func(name string) {
		if name == property || name == "" {
			fire()
		}
	}
	if timing == Before {
		pc, ok := sender.(PreChanger)
		if !ok {
			return nil, fmt.Errorf("notify: %T does not broadcast before-change notifications", sender)
		}
		return pc.SubscribeChanging(h), nil
	}
	c, ok := sender.(Changer)
	if !ok {
		return nil, fmt.Errorf("notify: %T does not broadcast change notifications", sender)
	}
	return c.SubscribeChanged(h), nil
}

type singleShotStrategy struct{}

// SingleShotStrategy is the universal fallback for types with no mutation
// notification at all. Its subscription fires exactly once, synchronously,
// inside Subscribe, and then never again; later mutations of the sender go
// unseen.
func SingleShotStrategy() Strategy {
	return singleShotStrategy{}
}

func (singleShotStrategy) Name() string { return "single-shot" }

func (singleShotStrategy) Affinity(t reflect.Type, timing Timing) int {
	if t == nil {
		return AffinityNone
	}
	return AffinityFallback
}

func (singleShotStrategy) Subscribe(sender any, property string, timing Timing, fire func()) (func(), error) {
	fire()
	return func() {}, nil
}

type exactTypeStrategy struct {
	name      string
	target    reflect.Type
	before    bool
	after     bool
	subscribe SubscribeFunc
}

// ForType builds a strategy matched by exact type identity, outranking the
// generic notifier mechanism for that one type. timings lists the timings it
// supports; every other (type, timing) pair scores zero.
func ForType(name string, target reflect.Type, timings []Timing, subscribe SubscribeFunc) Strategy {
	if target == nil || subscribe == nil {
		panic("notify: ForType requires a target type and subscribe func")
	}
	s := &exactTypeStrategy{name: name, target: target, subscribe: subscribe}
	for _, t := range timings {
		if t == Before {
			s.before = true
		} else {
			s.after = true
		}
	}
	return s
}

func (s *exactTypeStrategy) Name() string { return s.name }

func (s *exactTypeStrategy) Affinity(t reflect.Type, timing Timing) int {
	if t != s.target {
		return AffinityNone
	}
	if timing == Before && !s.before {
		return AffinityNone
	}
	if timing == After && !s.after {
		return AffinityNone
	}
	return AffinityExact
}

func (s *exactTypeStrategy) Subscribe(sender any, property string, timing Timing, fire func()) (func(), error) {
	return s.subscribe(sender, property, timing, fire)
}
