// Package observe is the front door: it turns a root object plus one or
// more path expressions into live value callbacks, layering initial-emission
// and distinct-value policy on top of the chain engine and the combinator.
package observe

import (
	"reflect"

	"github.com/propwatch/propwatch/chain"
	"github.com/propwatch/propwatch/combine"
	"github.com/propwatch/propwatch/notify"
	"github.com/propwatch/propwatch/pathspec"
)

// Observer bundles the strategy registry, a parse cache and the chain
// engine. Build one at startup and share it; all methods are safe for
// concurrent use once the registry is configured.
type Observer struct {
	engine *chain.Engine
	parser *pathspec.Parser
}

func New(registry *notify.Registry) *Observer {
	return &Observer{
		engine: chain.New(registry),
		parser: pathspec.NewParser(),
	}
}

// Default builds an observer over the built-in strategy registry.
func Default() *Observer {
	return New(notify.DefaultRegistry())
}

func (o *Observer) Engine() *chain.Engine {
	return o.engine
}

func (o *Observer) Registry() *notify.Registry {
	return o.engine.Registry()
}

func (o *Observer) Parser() *pathspec.Parser {
	return o.parser
}

// Options are the two orthogonal façade knobs plus the broken-chain policy
// passed through to the engine.
type Options struct {
	// SkipInitial suppresses the synchronous current-value emission;
	// only mutation-driven emissions are delivered.
	SkipInitial bool

	// Distinct suppresses a delivered emission whose value equals the
	// previously delivered one (value equality, not identity).
	Distinct bool

	// RequireNonNil drops the nil-leaf default emissions a broken chain
	// would otherwise produce.
	RequireNonNil bool
}

// Changed observes expr under root with after-mutation timing.
func Changed[T any](o *Observer, root any, expr string, opts Options, fn func(T)) (stop func(), err error) {
	path, err := o.parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return observeParsed(o, root, path, notify.After, opts, fn)
}

// Changing observes expr under root with before-mutation timing. Types
// whose notification mechanism cannot report before-change yield a
// capability-mismatch error rather than an emulated substitute.
func Changing[T any](o *Observer, root any, expr string, opts Options, fn func(T)) (stop func(), err error) {
	path, err := o.parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return observeParsed(o, root, path, notify.Before, opts, fn)
}

// ChangedPath is Changed for callers that already hold a normalized path,
// such as generated binding code.
func ChangedPath[T any](o *Observer, root any, path *pathspec.Path, opts Options, fn func(T)) (stop func(), err error) {
	return observeParsed(o, root, path, notify.After, opts, fn)
}

// ChangingPath is the before-timing counterpart of ChangedPath.
func ChangingPath[T any](o *Observer, root any, path *pathspec.Path, opts Options, fn func(T)) (stop func(), err error) {
	return observeParsed(o, root, path, notify.Before, opts, fn)
}

// ChangedName observes a single property by name, with no expression
// parsing involved.
func ChangedName[T any](o *Observer, root any, name string, opts Options, fn func(T)) (stop func(), err error) {
	return observeParsed(o, root, pathspec.Named(name), notify.After, opts, fn)
}

// ChangingName is the before-timing counterpart of ChangedName.
func ChangingName[T any](o *Observer, root any, name string, opts Options, fn func(T)) (stop func(), err error) {
	return observeParsed(o, root, pathspec.Named(name), notify.Before, opts, fn)
}

func observeParsed[T any](o *Observer, root any, path *pathspec.Path, timing notify.Timing, opts Options, fn func(T)) (func(), error) {
	if fn == nil {
		panic("observe: nil callback")
	}
	d := &distinctFilter{}
	return o.engine.Subscribe(root, path, chain.Options{
		Timing:        timing,
		EmitInitial:   !opts.SkipInitial,
		RequireNonNil: opts.RequireNonNil,
	}, func(oc chain.ObservedChange[any]) {
		if opts.Distinct && !d.pass(oc.Value) {
			return
		}
		v, _ := oc.Value.(T)
		fn(v)
	})
}

// All observes K independent paths under one root and delivers a combined
// value on every underlying change, once every path has produced at least
// one value. SkipInitial and Distinct act on the combined stream, never on
// the individual inputs, so a change on any one path still produces exactly
// one combined emission reflecting all current values.
func All[R any](o *Observer, root any, exprs []string, opts Options, selector func(values []any) R, fn func(R)) (stop func(), err error) {
	if fn == nil {
		panic("observe: nil callback")
	}
	if len(exprs) == 0 {
		panic("observe: no paths to combine")
	}

	sources := make([]combine.Source[any], 0, len(exprs))
	for _, expr := range exprs {
		path, err := o.parser.Parse(expr)
		if err != nil {
			return nil, err
		}
		sources = append(sources, o.pathSource(root, path, notify.After, opts.RequireNonNil))
	}

	var (
		combined = combine.Latest(selector, sources...)
		skip     = opts.SkipInitial
		d        = &distinctFilter{}
		setupErr error
	)
	stop = combined(combine.Subscriber[R]{
		Next: func(v R) {
			if skip {
				skip = false
				return
			}
			if opts.Distinct && !d.pass(v) {
				return
			}
			fn(v)
		},
		Err: func(err error) { setupErr = err },
	})
	if setupErr != nil {
		stop()
		return nil, setupErr
	}
	return stop, nil
}

// Source exposes one observed path as a typed combinator input, for use
// with the generated combine.LatestN wrappers.
func Source[T any](o *Observer, root any, expr string) (combine.Source[T], error) {
	path, err := o.parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	erased := o.pathSource(root, path, notify.After, false)
	return func(sub combine.Subscriber[T]) func() {
		return erased(combine.Subscriber[any]{
			Next: func(v any) {
				if sub.Next != nil {
					t, _ := v.(T)
					sub.Next(t)
				}
			},
			Err:  sub.Err,
			Done: sub.Done,
		})
	}, nil
}

// pathSource adapts a chain subscription to the combinator's stream shape.
// Chain subscriptions are long-lived and never complete on their own; a
// subscribe-time failure surfaces as a stream error so the combinator can
// tear the whole combination down.
func (o *Observer) pathSource(root any, path *pathspec.Path, timing notify.Timing, requireNonNil bool) combine.Source[any] {
	return func(sub combine.Subscriber[any]) func() {
		stop, err := o.engine.Subscribe(root, path, chain.Options{
			Timing:        timing,
			EmitInitial:   true,
			RequireNonNil: requireNonNil,
		}, func(oc chain.ObservedChange[any]) {
			if sub.Next != nil {
				sub.Next(oc.Value)
			}
		})
		if err != nil {
			if sub.Err != nil {
				sub.Err(err)
			}
			return func() {}
		}
		return stop
	}
}

type distinctFilter struct {
	seen bool
	prev any
}

func (d *distinctFilter) pass(v any) bool {
	if d.seen && reflect.DeepEqual(d.prev, v) {
		return false
	}
	d.seen = true
	d.prev = v
	return true
}
