package pathspec

import (
	"fmt"
	"go/token"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

const defaultCacheSize = 64

// Parser normalizes path expressions into segment lists. Each distinct
// expression is parsed once; results are cached by content hash and shared,
// which is safe because parsed paths are immutable.
type Parser struct {
	mu    sync.RWMutex
	cache map[uint64]cacheEntry
}

type cacheEntry struct {
	expr string
	path *Path
}

func NewParser() *Parser {
	return &Parser{cache: make(map[uint64]cacheEntry, defaultCacheSize)}
}

// Parse normalizes an expression like `Address.City` or `Orders[0].Total`
// into a root-to-leaf path. Two rewrites apply: `len(x)` becomes a length
// segment on x, and `unwrap(x)` is stripped without contributing a segment.
// Everything else beyond member and constant-keyed indexer reads is rejected
// with an error naming the offending construct.
func (p *Parser) Parse(expr string) (*Path, error) {
	key := xxhash.Sum64String(expr)

	p.mu.RLock()
	e, ok := p.cache[key]
	p.mu.RUnlock()
	if ok && e.expr == expr {
		return e.path, nil
	}

	path, err := parseExpr(expr)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[key] = cacheEntry{expr: expr, path: path}
	p.mu.Unlock()
	return path, nil
}

var defaultParser = NewParser()

// Parse parses through a process-wide shared parser.
func Parse(expr string) (*Path, error) {
	return defaultParser.Parse(expr)
}

// MustParse is Parse for statically known expressions; it panics on error.
func MustParse(expr string) *Path {
	p, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func parseExpr(expr string) (*Path, error) {
	syn, diags := hclsyntax.ParseExpression([]byte(expr), "path", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("pathspec: parse %q: %w", expr, diags)
	}
	segs, err := flatten(syn)
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("pathspec: %q contains no observable segments", expr)
	}
	return &Path{segments: segs, expr: expr}, nil
}

func reject(e hclsyntax.Expression, format string, args ...any) error {
	return fmt.Errorf("pathspec: %s: %s", e.Range(), fmt.Sprintf(format, args...))
}

func flatten(e hclsyntax.Expression) ([]Segment, error) {
	switch e := e.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		return traversalSegments(nil, e.Traversal)

	case *hclsyntax.RelativeTraversalExpr:
		base, err := flatten(e.Source)
		if err != nil {
			return nil, err
		}
		return traversalSegments(base, e.Traversal)

	case *hclsyntax.IndexExpr:
		// The hclsyntax parser folds constant bracket keys into the
		// traversal itself; a standalone IndexExpr means the key was an
		// arbitrary expression. Accept it only if it still evaluates with
		// no scope at all.
		base, err := flatten(e.Collection)
		if err != nil {
			return nil, err
		}
		key, diags := e.Key.Value(nil)
		if diags.HasErrors() || !key.IsKnown() {
			return nil, reject(e.Key, "indexer argument must be a compile-time constant")
		}
		return append(base, Segment{Indexer: true, Index: []cty.Value{key}}), nil

	case *hclsyntax.FunctionCallExpr:
		switch e.Name {
		case "len":
			if len(e.Args) != 1 {
				return nil, reject(e, "len() takes exactly one argument")
			}
			base, err := flatten(e.Args[0])
			if err != nil {
				return nil, err
			}
			return append(base, Segment{Length: true}), nil
		case "unwrap":
			// Nullable-unwrap marker: asserts the operand is set but does
			// not read anything itself.
			if len(e.Args) != 1 {
				return nil, reject(e, "unwrap() takes exactly one argument")
			}
			return flatten(e.Args[0])
		default:
			return nil, reject(e, "method call %q is not a recognized read-only accessor", e.Name)
		}

	case *hclsyntax.ParenthesesExpr:
		return flatten(e.Expression)

	case *hclsyntax.BinaryOpExpr:
		return nil, reject(e, "operator expressions are not observable")
	case *hclsyntax.UnaryOpExpr:
		return nil, reject(e, "operator expressions are not observable")
	case *hclsyntax.ConditionalExpr:
		return nil, reject(e, "conditional expressions are not observable")
	case *hclsyntax.TemplateExpr:
		return nil, reject(e, "string templates are not observable")
	case *hclsyntax.SplatExpr:
		return nil, reject(e, "splat expressions are not observable")
	case *hclsyntax.LiteralValueExpr:
		return nil, reject(e, "literal values are not observable")
	default:
		return nil, reject(e, "unsupported expression shape %T", e)
	}
}

func traversalSegments(base []Segment, traversal hcl.Traversal) ([]Segment, error) {
	segs := base
	for _, step := range traversal {
		switch step := step.(type) {
		case hcl.TraverseRoot:
			if err := checkExported(step.Name, step.SrcRange); err != nil {
				return nil, err
			}
			segs = append(segs, Segment{Name: step.Name})
		case hcl.TraverseAttr:
			if err := checkExported(step.Name, step.SrcRange); err != nil {
				return nil, err
			}
			segs = append(segs, Segment{Name: step.Name})
		case hcl.TraverseIndex:
			if err := checkIndexKey(step.Key, step.SrcRange); err != nil {
				return nil, err
			}
			segs = append(segs, Segment{Indexer: true, Index: []cty.Value{step.Key}})
		default:
			return nil, fmt.Errorf("pathspec: %s: unsupported traversal step %T", step.SourceRange(), step)
		}
	}
	return segs, nil
}

func checkExported(name string, rng hcl.Range) error {
	if !token.IsExported(name) {
		return fmt.Errorf("pathspec: %s: unexported member %q cannot be observed from outside its package", rng, name)
	}
	return nil
}

func checkIndexKey(key cty.Value, rng hcl.Range) error {
	switch key.Type() {
	case cty.Number, cty.String:
		return nil
	default:
		return fmt.Errorf("pathspec: %s: indexer key must be a number or string, got %s", rng, key.Type().FriendlyName())
	}
}
