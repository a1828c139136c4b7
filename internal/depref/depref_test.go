package depref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestSplitPackageRef(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		user, pkg, err := SplitPackageRef("ypsh/hello-world")
		require.NoError(t, err)
		assert.Equal(t, "ypsh", user)
		assert.Equal(t, "hello-world", pkg)
	})

	t.Run("trims whitespace around halves", func(t *testing.T) {
		user, pkg, err := SplitPackageRef(" ypsh / hello-world ")
		require.NoError(t, err)
		assert.Equal(t, "ypsh", user)
		assert.Equal(t, "hello-world", pkg)
	})

	t.Run("missing slash", func(t *testing.T) {
		_, _, err := SplitPackageRef("nopackage")
		require.Error(t, err)
	})

	t.Run("empty halves", func(t *testing.T) {
		_, _, err := SplitPackageRef("/pkg")
		require.Error(t, err)
		_, _, err = SplitPackageRef("user/")
		require.Error(t, err)
	})
}

func TestParseExtended(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Ref
	}{
		{"bare", "a/b", Ref{User: "a", Package: "b"}},
		{"bare with version", "a/b@v1", Ref{User: "a", Package: "b", Version: "v1"}},
		{"source qualified", "src:a/b", Ref{Source: "src", User: "a", Package: "b"}},
		{"source and version", "src:a/b@v2", Ref{Source: "src", User: "a", Package: "b", Version: "v2"}},
		{"colon followed by user/pkg is a source prefix", "go:lang/tool", Ref{Source: "go", User: "lang", Package: "tool"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseExtended(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("colon with no slash in rest falls back to bare ref", func(t *testing.T) {
		// Since "pkg:nouser" has no '/' after the colon, the colon is not
		// treated as a source separator and the whole string is parsed
		// as a bare ref, which then fails because it has no '/' at all.
		_, err := ParseExtended("pkg:nouser")
		require.Error(t, err)
	})
}

func TestParseDepEntryString(t *testing.T) {
	ref, err := ParseDepEntry(gjson.Parse(`"a/b@v1"`))
	require.NoError(t, err)
	assert.Equal(t, Ref{User: "a", Package: "b", Version: "v1"}, ref)
}

func TestParseDepEntryObject(t *testing.T) {
	ref, err := ParseDepEntry(gjson.Parse(`{"package":"a/b","version":"v2","source":"other"}`))
	require.NoError(t, err)
	assert.Equal(t, Ref{Source: "other", User: "a", Package: "b", Version: "v2"}, ref)
}

func TestParseDepEntryObjectMissingPackage(t *testing.T) {
	_, err := ParseDepEntry(gjson.Parse(`{"version":"v2"}`))
	require.Error(t, err)
}

func TestLedgerKey(t *testing.T) {
	assert.Equal(t, "yopr:ypsh/hello-world", LedgerKey("yopr", "ypsh", "hello-world"))
}
