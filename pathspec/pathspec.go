package pathspec

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zclconf/go-cty/cty"
)

// Segment is one step of an observation path: a named member read, a
// constant-keyed indexer read, or a length read. Segments are ordered
// root-to-leaf; the first segment resolves against the root object, each
// later one against the value produced by the segment before it.
type Segment struct {
	// Name of the member to read. Empty for indexer and length segments.
	Name string

	// Indexer marks a constant-keyed indexer read; Index holds its keys.
	Indexer bool
	Index   []cty.Value

	// Length marks a length read, rewritten from a len(...) call.
	Length bool

	// Declaring and Value are filled in by Path.Resolve. They stay nil for
	// paths that are only ever walked dynamically.
	Declaring reflect.Type
	Value     reflect.Type
}

func (s Segment) String() string {
	switch {
	case s.Length:
		return "len"
	case s.Indexer:
		var sb strings.Builder
		for _, k := range s.Index {
			sb.WriteByte('[')
			sb.WriteString(indexKeyString(k))
			sb.WriteByte(']')
		}
		return sb.String()
	default:
		return s.Name
	}
}

func indexKeyString(k cty.Value) string {
	switch k.Type() {
	case cty.String:
		return fmt.Sprintf("%q", k.AsString())
	case cty.Number:
		return k.AsBigFloat().Text('f', -1)
	default:
		return k.GoString()
	}
}

// Path is a non-empty, ordered chain of segments.
type Path struct {
	segments []Segment
	expr     string
}

// Segments returns the root-to-leaf segment list. Callers must not mutate it.
func (p *Path) Segments() []Segment {
	return p.segments
}

func (p *Path) Len() int {
	return len(p.segments)
}

// Expr returns the source expression the path was parsed from, or the
// canonical form for paths built directly from segments.
func (p *Path) Expr() string {
	return p.expr
}

// String renders the canonical dotted form, e.g. `Orders[0].Customer.Name`.
func (p *Path) String() string {
	var sb strings.Builder
	for i, seg := range p.segments {
		if i > 0 && !seg.Indexer {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.String())
	}
	return sb.String()
}

// Fingerprint is a stable hash of the canonical form, for consumers that
// key their own per-path caches.
func (p *Path) Fingerprint() uint64 {
	return xxhash.Sum64String(p.String())
}

// FromSegments builds a path from an already-normalized segment list, the
// entry point for callers that statically know their path. It panics on an
// empty list, which is a contract violation rather than a data error.
func FromSegments(segments ...Segment) *Path {
	if len(segments) == 0 {
		panic("pathspec: empty segment list")
	}
	p := &Path{segments: segments}
	p.expr = p.String()
	return p
}

// Named builds a single-segment path for one property name.
func Named(name string) *Path {
	return FromSegments(Segment{Name: name})
}

// Resolve statically validates the path against a root type and returns a
// copy with Declaring/Value types filled in. The receiver is not mutated, so
// cached parse results stay shareable. Resolution stops without error when
// it reaches an interface-typed step, since the concrete type is only known
// at runtime.
func (p *Path) Resolve(root reflect.Type) (*Path, error) {
	if root == nil {
		panic("pathspec: nil root type")
	}
	out := &Path{expr: p.expr, segments: make([]Segment, len(p.segments))}
	copy(out.segments, p.segments)

	t := root
	for i := range out.segments {
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() == reflect.Interface {
			return out, nil
		}
		seg := &out.segments[i]
		seg.Declaring = t

		vt, err := segmentValueType(t, *seg)
		if err != nil {
			return nil, fmt.Errorf("pathspec: segment %d (%s): %w", i, seg.String(), err)
		}
		seg.Value = vt
		t = vt
	}
	return out, nil
}

func segmentValueType(t reflect.Type, seg Segment) (reflect.Type, error) {
	switch {
	case seg.Length:
		switch t.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.String, reflect.Chan:
			return reflect.TypeOf(int(0)), nil
		default:
			return nil, fmt.Errorf("len() of non-collection type %s", t)
		}
	case seg.Indexer:
		switch t.Kind() {
		case reflect.Slice, reflect.Array:
			if seg.Index[0].Type() != cty.Number {
				return nil, fmt.Errorf("%s index must be a number, got %s", t.Kind(), seg.Index[0].Type().FriendlyName())
			}
			return t.Elem(), nil
		case reflect.Map:
			return t.Elem(), nil
		case reflect.String:
			return reflect.TypeOf(byte(0)), nil
		default:
			return nil, fmt.Errorf("type %s does not support indexing", t)
		}
	default:
		if t.Kind() == reflect.Struct {
			if f, ok := t.FieldByName(seg.Name); ok {
				if !f.IsExported() {
					return nil, fmt.Errorf("unexported member %q cannot be observed from outside its package", seg.Name)
				}
				return f.Type, nil
			}
		}
		// Zero-arg single-return getters are the one recognized method
		// accessor shape.
		if m, ok := methodByName(t, seg.Name); ok {
			return m, nil
		}
		return nil, fmt.Errorf("type %s has no member %q", t, seg.Name)
	}
}

func methodByName(t reflect.Type, name string) (reflect.Type, bool) {
	for _, rcv := range []reflect.Type{t, reflect.PointerTo(t)} {
		if m, ok := rcv.MethodByName(name); ok {
			mt := m.Func.Type()
			if mt.NumIn() == 1 && mt.NumOut() == 1 {
				return mt.Out(0), true
			}
		}
	}
	return nil, false
}
