package resolver

import (
	"testing"
	"testing/fstest"

	"github.com/solidprinciples/solid/internal/content"
	"github.com/solidprinciples/solid/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embeddedResolver(t *testing.T) *Resolver {
	t.Helper()
	store, err := content.LoadEmbedded()
	require.NoError(t, err)
	return New(store)
}

// sparseResolver serves a store that only has single-responsibility content,
// like the early snapshots of the site.
func sparseResolver(t *testing.T) *Resolver {
	t.Helper()
	fsys := fstest.MapFS{
		"pages.yaml": {Data: []byte(`pages:
  home: {title: home}
  principle: {title: principle}
  example: {title: example}
  about: {title: about}
  not_found: {title: not found}
`)},
		"examples/single-responsibility/python/without.txt": {Data: []byte("class UserManager:\n    pass\n")},
		"examples/single-responsibility/python/with.txt":    {Data: []byte("class User:\n    pass\n")},
	}
	store, err := content.Load(fsys)
	require.NoError(t, err)
	return New(store)
}

func TestResolveUnknownPrinciple(t *testing.T) {
	r := embeddedResolver(t)

	for _, lang := range []string{"python", "rust", "haskell", ""} {
		t.Run(lang, func(t *testing.T) {
			got, err := r.Resolve("yagni", lang)
			assert.ErrorIs(t, err, registry.ErrUnknownPrinciple)
			assert.True(t, got.IsEmpty())
		})
	}
}

func TestResolveUnknownLanguage(t *testing.T) {
	r := embeddedResolver(t)

	for _, p := range registry.Principles() {
		t.Run(string(p.Slug), func(t *testing.T) {
			_, err := r.Resolve(string(p.Slug), "haskell")
			assert.ErrorIs(t, err, registry.ErrUnknownLanguage)
			assert.NotErrorIs(t, err, registry.ErrUnknownPrinciple)
		})
	}
}

func TestResolveSingleResponsibilityPython(t *testing.T) {
	r := embeddedResolver(t)

	got, err := r.Resolve("single-responsibility", "python")
	require.NoError(t, err)

	assert.Contains(t, got.Without, "class UserManager")
	assert.Contains(t, got.Without, "def create_user")
	assert.Contains(t, got.Without, "def save_to_database")

	assert.Contains(t, got.With, "class User:")
	assert.Contains(t, got.With, "class UserCreator:")
	assert.Contains(t, got.With, "class UserDatabase:")
}

func TestResolveDependencyInversionRust(t *testing.T) {
	r := embeddedResolver(t)

	got, err := r.Resolve("dependency-inversion-principle", "rust")
	require.NoError(t, err)
	require.False(t, got.IsEmpty())

	assert.Contains(t, got.With, "trait Switchable")
	assert.NotContains(t, got.Without, "trait ")
	assert.Contains(t, got.Without, "struct ")
}

func TestResolveIsIdempotent(t *testing.T) {
	r := embeddedResolver(t)

	for _, p := range registry.Principles() {
		for _, l := range registry.Languages() {
			first, err1 := r.Resolve(string(p.Slug), string(l.Slug))
			second, err2 := r.Resolve(string(p.Slug), string(l.Slug))
			require.NoError(t, err1)
			require.NoError(t, err2)
			assert.Equal(t, first, second)
			assert.False(t, first.IsEmpty(), "%s/%s", p.Slug, l.Slug)
		}
	}
}

func TestResolveMissingCell(t *testing.T) {
	r := sparseResolver(t)

	got, err := r.Resolve("open-closed-principle", "go")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.Equal(t, content.CodeExample{}, got)

	got, err = r.Resolve("single-responsibility", "rust")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	got, err = r.Resolve("single-responsibility", "python")
	require.NoError(t, err)
	assert.Contains(t, got.With, "class User")

	_, err = r.Resolve("single-responsibility", "haskell")
	assert.ErrorIs(t, err, registry.ErrUnknownLanguage)
}

func TestNewPanicsOnNilStore(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}
