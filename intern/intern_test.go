package intern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternIdempotent(t *testing.T) {
	in := New()
	a := in.Intern([]byte("http://example.org/Person"), FlagIRI, 0)
	b := in.Intern([]byte("http://example.org/Person"), FlagIRI, 0)
	assert.Equal(t, a, b)
	assert.True(t, a.Equal(b))
	assert.Equal(t, 1, in.Len())
}

func TestInternDistinctBytesDistinctRefs(t *testing.T) {
	in := New()
	a := in.Intern([]byte("alice"), FlagLiteral, 0)
	b := in.Intern([]byte("bob"), FlagLiteral, 0)
	assert.False(t, a.Equal(b))
}

func TestResolveRoundTrip(t *testing.T) {
	in := New()
	ref := in.Intern([]byte("http://example.org/knows"), FlagIRI, 0)
	got, ok := in.Resolve(ref)
	require.True(t, ok)
	assert.Equal(t, "http://example.org/knows", string(got))
}

func TestResolveUnknownRef(t *testing.T) {
	in := New()
	_, ok := in.Resolve(StringRef{Hash: 42, Length: 3})
	assert.False(t, ok)
}

func TestInternBytewiseEquivalence(t *testing.T) {
	in := New()
	pairs := []struct{ a, b string }{
		{"x", "x"},
		{"", ""},
		{"http://a", "http://b"},
	}
	for _, p := range pairs {
		ra := in.Intern([]byte(p.a), FlagLiteral, 0)
		rb := in.Intern([]byte(p.b), FlagLiteral, 0)
		if p.a == p.b {
			assert.Truef(t, ra.Equal(rb), "%q == %q should intern equal", p.a, p.b)
		} else {
			assert.Falsef(t, ra.Equal(rb), "%q != %q should intern distinct", p.a, p.b)
		}
	}
}
