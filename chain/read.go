package chain

import (
	"fmt"
	"reflect"

	"github.com/propwatch/propwatch/pathspec"
	"github.com/zclconf/go-cty/cty"
)

// isNil reports whether v is nil-ish for chain purposes: a nil interface or
// a nil pointer/map/slice/chan/func boxed in one.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// readSegment evaluates one segment against its sender. ok is false for any
// broken read: nil sender, missing member, out-of-range index, absent map
// key. Broken reads are data conditions, never panics.
func readSegment(sender any, seg pathspec.Segment) (value any, ok bool) {
	if isNil(sender) {
		return nil, false
	}
	rv := reflect.ValueOf(sender)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch {
	case seg.Length:
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.String, reflect.Chan:
			return rv.Len(), true
		}
		return nil, false

	case seg.Indexer:
		return readIndex(rv, seg.Index[0])

	default:
		if rv.Kind() == reflect.Struct {
			if f, found := rv.Type().FieldByName(seg.Name); found && f.IsExported() {
				return rv.FieldByName(seg.Name).Interface(), true
			}
		}
		// Recognized method accessor shape: zero-arg, single-return getter.
		if m := reflect.ValueOf(sender).MethodByName(seg.Name); m.IsValid() {
			if mt := m.Type(); mt.NumIn() == 0 && mt.NumOut() == 1 {
				return m.Call(nil)[0].Interface(), true
			}
		}
		return nil, false
	}
}

func readIndex(rv reflect.Value, key cty.Value) (any, bool) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.String:
		i, ok := indexInt(key)
		if !ok || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true

	case reflect.Map:
		kv, ok := mapKey(rv.Type().Key(), key)
		if !ok {
			return nil, false
		}
		elem := rv.MapIndex(kv)
		if !elem.IsValid() {
			return nil, false
		}
		return elem.Interface(), true

	default:
		return nil, false
	}
}

func indexInt(key cty.Value) (int, bool) {
	if key.Type() != cty.Number {
		return 0, false
	}
	i, accuracy := key.AsBigFloat().Int64()
	if accuracy != 0 {
		return 0, false
	}
	return int(i), true
}

// mapKey converts a constant path key into the map's key type.
func mapKey(t reflect.Type, key cty.Value) (reflect.Value, bool) {
	switch key.Type() {
	case cty.String:
		if t.Kind() == reflect.String {
			return reflect.ValueOf(key.AsString()).Convert(t), true
		}
	case cty.Number:
		if i, ok := indexInt(key); ok && reflect.TypeOf(i).ConvertibleTo(t) {
			kv := reflect.ValueOf(i).Convert(t)
			if kv.Type() == t {
				return kv, true
			}
		}
	}
	return reflect.Value{}, false
}

// walk evaluates a full segment list from root, returning the owner of the
// final segment alongside the leaf value. ok is false as soon as any read
// breaks.
func walk(root any, segments []pathspec.Segment) (owner, leaf any, ok bool) {
	owner = root
	for i, seg := range segments {
		v, readOK := readSegment(owner, seg)
		if !readOK {
			return nil, nil, false
		}
		if i == len(segments)-1 {
			return owner, v, true
		}
		if isNil(v) {
			return nil, nil, false
		}
		owner = v
	}
	return nil, nil, false
}

// Get synchronously evaluates the whole path from root. ok is false when
// the chain is broken anywhere along the way.
func Get(root any, path *pathspec.Path) (value any, ok bool) {
	if path == nil || path.Len() == 0 {
		panic("chain: empty path")
	}
	_, leaf, ok := walk(root, path.Segments())
	return leaf, ok
}

// Set writes value through the path. Unlike reads, a broken chain is an
// error here: a write has no safe default target. The final segment must be
// a settable struct field (reached through pointers), a map element, a slice
// element, or a property with a matching Set<Name> method.
func Set(root any, path *pathspec.Path, value any) error {
	if path == nil || path.Len() == 0 {
		panic("chain: empty path")
	}
	if isNil(root) {
		panic("chain: nil root")
	}

	segments := path.Segments()
	owner := root
	for i, seg := range segments[:len(segments)-1] {
		v, ok := readSegment(owner, seg)
		if !ok || isNil(v) {
			return fmt.Errorf("chain: cannot set %s: chain broken at segment %d (%s)", path, i, seg)
		}
		owner = v
	}
	return setSegment(owner, segments[len(segments)-1], path, value)
}

func setSegment(owner any, seg pathspec.Segment, path *pathspec.Path, value any) error {
	if seg.Length {
		return fmt.Errorf("chain: cannot set %s: length reads are not assignable", path)
	}

	rv := reflect.ValueOf(owner)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return fmt.Errorf("chain: cannot set %s: nil final link", path)
		}
		rv = rv.Elem()
	}

	if seg.Indexer {
		return setIndex(rv, seg, path, value)
	}

	// Setter methods are preferred over direct field writes so notifying
	// types still broadcast the mutation.
	if m := reflect.ValueOf(owner).MethodByName("Set" + seg.Name); m.IsValid() {
		if mt := m.Type(); mt.NumIn() == 1 && mt.NumOut() == 0 {
			in, err := convertAssign(mt.In(0), value, path)
			if err != nil {
				return err
			}
			m.Call([]reflect.Value{in})
			return nil
		}
	}

	if rv.Kind() == reflect.Struct {
		if f, found := rv.Type().FieldByName(seg.Name); found && f.IsExported() {
			fv := rv.FieldByName(seg.Name)
			if !fv.CanSet() {
				return fmt.Errorf("chain: cannot set %s: field %s is not addressable (pass a pointer root)", path, seg.Name)
			}
			in, err := convertAssign(fv.Type(), value, path)
			if err != nil {
				return err
			}
			fv.Set(in)
			return nil
		}
	}
	return fmt.Errorf("chain: cannot set %s: no settable member %q on %T", path, seg.Name, owner)
}

func setIndex(rv reflect.Value, seg pathspec.Segment, path *pathspec.Path, value any) error {
	key := seg.Index[0]
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		i, ok := indexInt(key)
		if !ok || i < 0 || i >= rv.Len() {
			return fmt.Errorf("chain: cannot set %s: index %s out of range", path, seg)
		}
		ev := rv.Index(i)
		if !ev.CanSet() {
			return fmt.Errorf("chain: cannot set %s: element is not addressable", path)
		}
		in, err := convertAssign(ev.Type(), value, path)
		if err != nil {
			return err
		}
		ev.Set(in)
		return nil

	case reflect.Map:
		kv, ok := mapKey(rv.Type().Key(), key)
		if !ok {
			return fmt.Errorf("chain: cannot set %s: key %s does not fit map key type", path, seg)
		}
		in, err := convertAssign(rv.Type().Elem(), value, path)
		if err != nil {
			return err
		}
		rv.SetMapIndex(kv, in)
		return nil

	default:
		return fmt.Errorf("chain: cannot set %s: %s is not indexable", path, rv.Type())
	}
}

func convertAssign(t reflect.Type, value any, path *pathspec.Path) (reflect.Value, error) {
	if value == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("chain: cannot set %s: nil is not assignable to %s", path, t)
	}
	vv := reflect.ValueOf(value)
	if vv.Type().AssignableTo(t) {
		return vv, nil
	}
	if vv.Type().ConvertibleTo(t) {
		return vv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("chain: cannot set %s: %T is not assignable to %s", path, value, t)
}
