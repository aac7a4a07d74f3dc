package nodepath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		want     string
	}{
		{"nil", nil, "/"},
		{"empty", []string{}, "/"},
		{"single", []string{"one"}, "/one"},
		{"nested", []string{"one", "two", "three"}, "/one/two/three"},
		{"empty segment kept", []string{"a", "", "b"}, "/a//b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.segments))
		})
	}
}

func TestResolve_RoundTrip(t *testing.T) {
	for _, segs := range [][]string{
		{"one"},
		{"one", "two"},
		{"with space", "ünïcode", "a.b"},
		{"a", "", "b"},
	} {
		p := Resolve(segs)
		require.True(t, strings.HasPrefix(p, "/"))
		assert.Equal(t, segs, strings.Split(p[1:], "/"))
	}
}

func TestFromWildcard(t *testing.T) {
	assert.Equal(t, "/", FromWildcard(""))
	assert.Equal(t, "/one/two", FromWildcard("one/two"))
	assert.Equal(t, "/one/two/", FromWildcard("one/two/"))
}

func TestChild(t *testing.T) {
	assert.Equal(t, "/a", Child("/", "a"))
	assert.Equal(t, "/a/b", Child("/a", "b"))
}

func TestParentAndBase(t *testing.T) {
	assert.Equal(t, "/", Parent("/"))
	assert.Equal(t, "/", Parent("/a"))
	assert.Equal(t, "/a", Parent("/a/b"))
	assert.Equal(t, "", Base("/"))
	assert.Equal(t, "b", Base("/a/b"))
}

func TestAncestors(t *testing.T) {
	assert.Empty(t, Ancestors("/"))
	assert.Empty(t, Ancestors("/a"))
	assert.Equal(t, []string{"/a", "/a/b"}, Ancestors("/a/b/c"))
}

func TestValidate(t *testing.T) {
	for _, ok := range []string{"/", "/a", "/a/b", "/a.b/c-d"} {
		assert.NoError(t, Validate(ok), ok)
	}
	for _, bad := range []string{"", "a", "/a/", "/a//b", "/a/./b", "/..", "/a\x00"} {
		err := Validate(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}
