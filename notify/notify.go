// Package notify picks how to observe property mutations on a given object.
//
// Observable objects broadcast named-property mutation events through the
// Changer / PreChanger interfaces, most easily by embedding an Emitter.
// A Registry ranks pluggable strategies by affinity for a (type, timing)
// pair and hands the chain engine the best one.
package notify

import "sync"

// Timing selects whether an observation reports values before or after a
// mutation is applied.
type Timing uint8

const (
	After Timing = iota
	Before
)

func (t Timing) String() string {
	if t == Before {
		return "before"
	}
	return "after"
}

// Changer is implemented by objects that broadcast after-mutation
// notifications for named properties. An empty property name means
// "everything may have changed".
type Changer interface {
	SubscribeChanged(fn func(property string)) (stop func())
}

// PreChanger is the before-mutation counterpart of Changer. The notification
// fires while the property still holds its old value.
type PreChanger interface {
	SubscribeChanging(fn func(property string)) (stop func())
}

type changeHandler struct {
	fn func(string)
}

// Emitter is an embeddable broadcaster implementing Changer and PreChanger.
// Notifications fan out synchronously on the calling goroutine.
//
// The zero value is ready to use:
//
//	type Person struct {
//		notify.Emitter
//		name string
//	}
//
//	func (p *Person) Name() string { return p.name }
//
//	func (p *Person) SetName(v string) {
//		if p.name == v {
//			return
//		}
//		p.NotifyChanging("Name")
//		p.name = v
//		p.NotifyChanged("Name")
//	}
type Emitter struct {
	mu       sync.Mutex
	changed  []*changeHandler
	changing []*changeHandler
}

func (e *Emitter) SubscribeChanged(fn func(property string)) (stop func()) {
	return e.subscribe(&e.changed, fn)
}

func (e *Emitter) SubscribeChanging(fn func(property string)) (stop func()) {
	return e.subscribe(&e.changing, fn)
}

func (e *Emitter) subscribe(list *[]*changeHandler, fn func(string)) (stop func()) {
	h := &changeHandler{fn: fn}
	e.mu.Lock()
	*list = append(*list, h)
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, got := range *list {
			if got == h {
				*list = append((*list)[:i], (*list)[i+1:]...)
				return
			}
		}
	}
}

// NotifyChanged reports that the named property now holds a new value.
func (e *Emitter) NotifyChanged(property string) {
	e.notify(&e.changed, property)
}

// NotifyChanging reports that the named property is about to change.
func (e *Emitter) NotifyChanging(property string) {
	e.notify(&e.changing, property)
}

func (e *Emitter) notify(list *[]*changeHandler, property string) {
	// Fire against a snapshot so handlers can unsubscribe (or subscribe)
	// while being notified.
	e.mu.Lock()
	snapshot := make([]*changeHandler, len(*list))
	copy(snapshot, *list)
	e.mu.Unlock()

	for _, h := range snapshot {
		h.fn(property)
	}
}
