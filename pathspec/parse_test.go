package pathspec_test

import (
	"reflect"
	"testing"

	"github.com/propwatch/propwatch/pathspec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleMember(t *testing.T) {
	p, err := pathspec.Parse("Name")
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())
	assert.Equal(t, "Name", p.Segments()[0].Name)
	assert.Equal(t, "Name", p.String())
}

func TestParseChainedMembers(t *testing.T) {
	p, err := pathspec.Parse("Address.City.Zip")
	require.NoError(t, err)
	require.Equal(t, 3, p.Len())
	assert.Equal(t, "Address", p.Segments()[0].Name)
	assert.Equal(t, "City", p.Segments()[1].Name)
	assert.Equal(t, "Zip", p.Segments()[2].Name)
}

func TestParseConstantIndexers(t *testing.T) {
	p, err := pathspec.Parse(`Orders[0].Total`)
	require.NoError(t, err)
	require.Equal(t, 3, p.Len())
	assert.True(t, p.Segments()[1].Indexer)
	assert.Equal(t, "Orders[0].Total", p.String())

	p, err = pathspec.Parse(`Tags["home"]`)
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())
	assert.True(t, p.Segments()[1].Indexer)
	assert.Equal(t, `Tags["home"]`, p.String())
}

func TestParseLenRewrite(t *testing.T) {
	p, err := pathspec.Parse("len(Items)")
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())
	assert.Equal(t, "Items", p.Segments()[0].Name)
	assert.True(t, p.Segments()[1].Length)
}

func TestParseUnwrapStripped(t *testing.T) {
	p, err := pathspec.Parse("unwrap(Address).City")
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())
	assert.Equal(t, "Address", p.Segments()[0].Name)
	assert.Equal(t, "City", p.Segments()[1].Name)
}

func TestParseRejections(t *testing.T) {
	cases := map[string]string{
		"Items[i]":         "constant",
		"Fetch()":          "accessor",
		"A + B":            "operator",
		"-A":               "operator",
		"A ? B : C":        "conditional",
		"5":                "literal",
		"name":             "unexported",
		"Address.city":     "unexported",
		"len(Items, More)": "one argument",
	}
	for expr, want := range cases {
		_, err := pathspec.Parse(expr)
		require.Error(t, err, "expected %q to be rejected", expr)
		assert.Contains(t, err.Error(), want, "error for %q should name the construct", expr)
	}
}

func TestParseCacheReturnsSharedPath(t *testing.T) {
	parser := pathspec.NewParser()
	a, err := parser.Parse("Address.City")
	require.NoError(t, err)
	b, err := parser.Parse("Address.City")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestFingerprintStable(t *testing.T) {
	a := pathspec.MustParse("Address.City")
	b := pathspec.MustParse("Address.City")
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), pathspec.MustParse("Address.Zip").Fingerprint())
}

func TestFromSegmentsPanicsOnEmpty(t *testing.T) {
	require.Panics(t, func() { pathspec.FromSegments() })
}

type resolveAddr struct {
	City string
}

type resolveRoot struct {
	Addr  *resolveAddr
	Items []int
	Tags  map[string]string
}

func (r *resolveRoot) First() int { return r.Items[0] }

func TestResolveFillsTypes(t *testing.T) {
	rootT := reflect.TypeOf(&resolveRoot{})

	p, err := pathspec.MustParse("Addr.City").Resolve(rootT)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(resolveRoot{}), p.Segments()[0].Declaring)
	assert.Equal(t, reflect.TypeOf(&resolveAddr{}), p.Segments()[0].Value)
	assert.Equal(t, reflect.TypeOf(""), p.Segments()[1].Value)

	p, err = pathspec.MustParse("Items[0]").Resolve(rootT)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(0), p.Segments()[1].Value)

	p, err = pathspec.MustParse("len(Items)").Resolve(rootT)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(0), p.Segments()[1].Value)

	// Zero-arg getters are the one recognized method accessor shape.
	p, err = pathspec.MustParse("First").Resolve(rootT)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(0), p.Segments()[0].Value)
}

func TestResolveDoesNotMutateReceiver(t *testing.T) {
	p := pathspec.MustParse("Addr.City")
	_, err := p.Resolve(reflect.TypeOf(&resolveRoot{}))
	require.NoError(t, err)
	assert.Nil(t, p.Segments()[0].Value, "cached paths must stay unresolved")
}

func TestResolveRejections(t *testing.T) {
	rootT := reflect.TypeOf(&resolveRoot{})

	_, err := pathspec.MustParse("Missing").Resolve(rootT)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")

	_, err = pathspec.MustParse("len(Addr)").Resolve(rootT)
	require.Error(t, err)

	_, err = pathspec.MustParse(`Items["x"]`).Resolve(rootT)
	require.Error(t, err)
}
