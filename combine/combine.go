// Package combine merges several long-lived value streams into one
// synchronized stream of latest values.
package combine

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// Subscriber receives the emissions of a Source. Any of the callbacks may
// be nil.
type Subscriber[T any] struct {
	Next func(T)
	Err  func(error)
	Done func()
}

// Source is a subscribable value stream: calling it attaches the subscriber
// and returns a teardown func. Sources may emit synchronously during the
// call itself.
type Source[T any] func(sub Subscriber[T]) (stop func())

// Latest combines K input streams: it caches the most recent value of each
// input, stays silent until every input has produced at least one value,
// and from then on applies selector to the K cached values on every single
// input emission.
//
// The combined stream completes only once all inputs complete. The first
// input error tears down every input subscription and terminates the
// combined stream with that error. Stopping the combined subscription stops
// all K inputs exactly once; double-stop is a no-op.
//
// An empty source list or nil selector is a contract violation and panics.
func Latest[R any](selector func(values []any) R, sources ...Source[any]) Source[R] {
	if selector == nil {
		panic("combine: nil selector")
	}
	if len(sources) == 0 {
		panic("combine: no input sources")
	}

	return func(out Subscriber[R]) (stop func()) {
		c := &combiner[R]{
			out:      out,
			selector: selector,
			latest:   make([]any, len(sources)),
			pending:  mapset.NewSet[int](),
			done:     mapset.NewSet[int](),
		}
		for i := range sources {
			c.pending.Add(i)
		}

		for i, src := range sources {
			i := i
			st := src(Subscriber[any]{
				Next: func(v any) { c.next(i, v) },
				Err:  c.fail,
				Done: func() { c.complete(i) },
			})

			c.mu.Lock()
			if c.closed {
				// An earlier synchronous error already tore the
				// combination down; this input never joins it.
				c.mu.Unlock()
				if st != nil {
					st()
				}
				continue
			}
			c.stops = append(c.stops, st)
			c.mu.Unlock()
		}

		var once sync.Once
		return func() {
			once.Do(c.teardown)
		}
	}
}

type combiner[R any] struct {
	mu       sync.Mutex
	out      Subscriber[R]
	selector func([]any) R
	latest   []any
	pending  mapset.Set[int]
	done     mapset.Set[int]
	stops    []func()
	closed   bool
}

func (c *combiner[R]) next(i int, v any) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.latest[i] = v
	c.pending.Remove(i)
	ready := c.pending.Cardinality() == 0
	var values []any
	if ready {
		values = make([]any, len(c.latest))
		copy(values, c.latest)
	}
	c.mu.Unlock()

	if ready && c.out.Next != nil {
		c.out.Next(c.selector(values))
	}
}

func (c *combiner[R]) fail(err error) {
	stops := c.close()
	if stops == nil {
		return
	}
	for _, st := range stops {
		if st != nil {
			st()
		}
	}
	if c.out.Err != nil {
		c.out.Err(err)
	}
}

func (c *combiner[R]) complete(i int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.done.Add(i)
	if c.done.Cardinality() < len(c.latest) {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	stops := c.close()
	if stops == nil {
		return
	}
	for _, st := range stops {
		if st != nil {
			st()
		}
	}
	if c.out.Done != nil {
		c.out.Done()
	}
}

func (c *combiner[R]) teardown() {
	for _, st := range c.close() {
		if st != nil {
			st()
		}
	}
}

// close marks the combination finished and hands back the input teardowns,
// or nil if someone else already closed it.
func (c *combiner[R]) close() []func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	stops := c.stops
	c.stops = nil
	return stops
}

// erase adapts a typed source to the any-valued form Latest consumes.
func erase[T any](s Source[T]) Source[any] {
	return func(sub Subscriber[any]) func() {
		return s(Subscriber[T]{
			Next: func(v T) {
				if sub.Next != nil {
					sub.Next(v)
				}
			},
			Err:  sub.Err,
			Done: sub.Done,
		})
	}
}

// as recovers a typed value from an any-valued emission; nil defaults come
// back as T's zero value.
func as[T any](v any) T {
	t, _ := v.(T)
	return t
}
