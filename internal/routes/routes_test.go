package routes

import (
	"testing"

	"github.com/solidprinciples/solid/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerate(t *testing.T) {
	all := Enumerate()
	require.Len(t, all, 3+5+55)

	assert.Equal(t, KindHome, all[0].Kind)
	assert.Equal(t, KindAbout, all[1].Kind)
	assert.Equal(t, KindNotFound, all[2].Kind)

	paths := make(map[string]bool, len(all))
	files := make(map[string]bool, len(all))
	for _, r := range all {
		assert.False(t, paths[r.Path()], "duplicate path %s", r.Path())
		assert.False(t, files[r.File()], "duplicate file %s", r.File())
		paths[r.Path()] = true
		files[r.File()] = true
	}

	for _, pair := range Pairs() {
		assert.True(t, paths[ForExample(pair.Principle, pair.Language).Path()])
	}
	for _, p := range registry.Principles() {
		assert.True(t, paths["/code-example/"+string(p.Slug)])
	}
}

func TestPairs(t *testing.T) {
	pairs := Pairs()
	require.Len(t, pairs, 55)
	assert.Equal(t, Pair{Principle: registry.SingleResponsibility, Language: registry.Pseudocode}, pairs[0])
	assert.Equal(t, Pair{Principle: registry.DependencyInversion, Language: registry.Rust}, pairs[54])
}

func TestRoutePathAndFile(t *testing.T) {
	tests := []struct {
		route Route
		path  string
		file  string
	}{
		{Home(), "/", "index.html"},
		{About(), "/about", "about/index.html"},
		{NotFound(), "/404", "404.html"},
		{ForPrinciple(registry.OpenClosed), "/code-example/open-closed-principle", "code-example/open-closed-principle/index.html"},
		{ForExample(registry.LiskovSubstitution, registry.CSharp), "/code-example/liskov-substitution-principle/csharp", "code-example/liskov-substitution-principle/csharp/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.path, tt.route.Path())
			assert.Equal(t, tt.file, tt.route.File())
		})
	}

	assert.Equal(t, registry.Pseudocode, ForPrinciple(registry.OpenClosed).Language)
	assert.Equal(t, registry.Pseudocode, Home().Language)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		path    string
		want    Route
		wantErr error
	}{
		{path: "/", want: Home()},
		{path: "", want: Home()},
		{path: "/about", want: About()},
		{path: "/about/", want: About()},
		{path: "/404", want: NotFound()},
		{path: "/code-example/single-responsibility", want: ForPrinciple(registry.SingleResponsibility)},
		{path: "/code-example/single-responsibility/python", want: ForExample(registry.SingleResponsibility, registry.Python)},
		{path: "/code-example/single-responsibility/python/", want: ForExample(registry.SingleResponsibility, registry.Python)},
		{path: "/code-example/single-responsibility/haskell", want: NotFound(), wantErr: registry.ErrUnknownLanguage},
		{path: "/code-example/interace-segregation-principle", want: NotFound(), wantErr: registry.ErrUnknownPrinciple},
		{path: "/code-example/interace-segregation-principle/go", want: NotFound(), wantErr: registry.ErrUnknownPrinciple},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Match(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchUnknownShape(t *testing.T) {
	for _, p := range []string{"/code-example", "/code-example/single-responsibility/go/extra", "/wiki/main"} {
		got, err := Match(p)
		assert.Error(t, err, p)
		assert.Equal(t, KindNotFound, got.Kind, p)
	}
}

func TestMatchRoundTrip(t *testing.T) {
	for _, r := range Enumerate() {
		got, err := Match(r.Path())
		require.NoError(t, err, r.Path())
		assert.Equal(t, r, got)
	}
}
