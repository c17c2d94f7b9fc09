// Package chain walks observation paths against live object graphs, keeping
// exactly one notifier subscription per link and re-subscribing downstream
// whenever an upstream link's value is replaced.
//
// Everything here runs synchronously on whatever goroutine raises the
// underlying mutation notification. The engine has no scheduler and no
// locks of its own: it assumes each object's notifications are already
// serialized, which is the usual single-writer UI-state arrangement.
package chain

import (
	"fmt"
	"reflect"

	"github.com/propwatch/propwatch/notify"
	"github.com/propwatch/propwatch/pathspec"
)

// ObservedChange is one delivery from a chain subscription: the object that
// owns the fired segment, the observed path, and the segment's current
// value.
type ObservedChange[T any] struct {
	Sender any
	Path   string
	Value  T
}

// Options shape one chain subscription.
type Options struct {
	// Timing selects before- or after-mutation observation.
	Timing notify.Timing

	// EmitInitial delivers the chain's current value synchronously during
	// Subscribe, before any mutation fires. A chain that is broken at
	// subscribe time simply skips this emission.
	EmitInitial bool

	// RequireNonNil suppresses the default (nil-leaf) emission for broken
	// chains; consumers then only ever see real leaf values.
	RequireNonNil bool
}

// Engine subscribes observation chains using the strategies of one
// registry.
type Engine struct {
	registry *notify.Registry
}

func New(registry *notify.Registry) *Engine {
	if registry == nil {
		panic("chain: nil registry")
	}
	return &Engine{registry: registry}
}

func (e *Engine) Registry() *notify.Registry {
	return e.registry
}

// Subscribe attaches fn to the live value of path under root.
//
// Nil root, empty path or nil fn are contract violations and panic. A
// capability mismatch on the root type (no strategy with nonzero affinity)
// is returned as an error; the caller decides whether to fail or to retry
// against a registry with a fallback.
//
// The returned stop func tears down every live notifier subscription in the
// chain and is idempotent. No emission is delivered after the first stop,
// even if an underlying notifier fires again.
func (e *Engine) Subscribe(root any, path *pathspec.Path, opts Options, fn func(ObservedChange[any])) (stop func(), err error) {
	if path == nil || path.Len() == 0 {
		panic("chain: empty path")
	}
	if isNil(root) {
		panic("chain: nil root")
	}
	if fn == nil {
		panic("chain: nil observer func")
	}

	head, err := e.newLink(root, path.Segments(), path.String(), opts, fn)
	if err != nil {
		return nil, err
	}

	if opts.EmitInitial {
		if owner, leaf, ok := walk(root, path.Segments()); ok {
			fn(ObservedChange[any]{Sender: owner, Path: path.String(), Value: leaf})
		}
		// A broken chain has no initial value; that is not an error.
	}

	head.arm()
	stopped := false
	return func() {
		if stopped {
			return
		}
		stopped = true
		head.dispose()
	}, nil
}

// link is one live notifier subscription: it observes segments[0] on sender
// and exclusively owns at most one downstream link for the rest of the
// chain. When its segment fires, the old downstream link is disposed before
// a new one is built against the segment's new value.
type link struct {
	engine   *Engine
	opts     Options
	pathDesc string
	segments []pathspec.Segment
	sender   any
	deliver  func(ObservedChange[any])

	unsub  func()
	child  *link
	armed  bool
	closed bool
}

// newLink subscribes sender's notifier for segments[0] and, for deeper
// chains, recursively attaches the downstream link for the segment's
// current value. The link starts unarmed: raw events that fire inside
// Subscribe itself (single-shot strategies do this) are absorbed, since the
// setup walk already accounts for the current value.
func (e *Engine) newLink(sender any, segments []pathspec.Segment, pathDesc string, opts Options, deliver func(ObservedChange[any])) (*link, error) {
	l := &link{
		engine:   e,
		opts:     opts,
		pathDesc: pathDesc,
		segments: segments,
		sender:   sender,
		deliver:  deliver,
	}

	strategy, err := e.registry.Select(reflect.TypeOf(sender), opts.Timing)
	if err != nil {
		return nil, fmt.Errorf("chain: observing %s on %T: %w", segments[0], sender, err)
	}
	unsub, err := strategy.Subscribe(sender, segments[0].String(), opts.Timing, l.onFire)
	if err != nil {
		return nil, fmt.Errorf("chain: observing %s on %T: %w", segments[0], sender, err)
	}
	l.unsub = unsub

	if len(segments) > 1 {
		if v, ok := readSegment(sender, segments[0]); ok && !isNil(v) {
			child, err := e.newLink(v, segments[1:], pathDesc, opts, deliver)
			if err != nil {
				l.dispose()
				return nil, err
			}
			l.child = child
		}
	}
	return l, nil
}

func (l *link) arm() {
	l.armed = true
	if l.child != nil {
		l.child.arm()
	}
}

func (l *link) onFire() {
	if l.closed || !l.armed {
		return
	}

	if len(l.segments) == 1 {
		v, ok := readSegment(l.sender, l.segments[0])
		if !ok {
			l.emitDefault()
			return
		}
		l.deliver(ObservedChange[any]{Sender: l.sender, Path: l.pathDesc, Value: v})
		return
	}

	// Intermediate replacement: the single owned downstream slot is
	// disposed before anything new is subscribed, so no listener survives
	// on the stale value. Re-subscription happens even when the new
	// instance produces the same leaf value; only façade-level distinct
	// filtering suppresses duplicate values.
	if l.child != nil {
		l.child.dispose()
		l.child = nil
	}

	v, ok := readSegment(l.sender, l.segments[0])
	if !ok || isNil(v) {
		l.emitDefault()
		return
	}

	child, err := l.engine.newLink(v, l.segments[1:], l.pathDesc, l.opts, l.deliver)
	if err == nil {
		l.child = child
		child.arm()
	}
	// A mid-chain capability mismatch cannot be raised on the firing
	// goroutine; the current leaf value is still delivered, later leaf
	// mutations on this instance just go unobserved.

	if owner, leaf, ok := walk(v, l.segments[1:]); ok {
		l.deliver(ObservedChange[any]{Sender: owner, Path: l.pathDesc, Value: leaf})
	} else {
		l.emitDefault()
	}
}

func (l *link) emitDefault() {
	if l.opts.RequireNonNil {
		return
	}
	l.deliver(ObservedChange[any]{Sender: nil, Path: l.pathDesc, Value: nil})
}

func (l *link) dispose() {
	if l.closed {
		return
	}
	l.closed = true
	if l.child != nil {
		l.child.dispose()
		l.child = nil
	}
	if l.unsub != nil {
		l.unsub()
	}
}
