// Package resolver maps untrusted principle and language slugs to code
// examples.
//
// Policy:
//   - a principle slug outside the registry fails with registry.ErrUnknownPrinciple,
//     whatever the language;
//   - a language slug outside the registry fails with registry.ErrUnknownLanguage;
//   - a valid pair without authored content resolves to the empty example.
package resolver

import (
	"github.com/solidprinciples/solid/internal/content"
	"github.com/solidprinciples/solid/internal/registry"
)

// Store is the lookup the resolver needs from a content snapshot.
type Store interface {
	Lookup(p registry.Principle, l registry.Language) (content.CodeExample, bool)
}

// Resolver resolves slugs against one immutable content snapshot. It holds no
// mutable state and is safe for concurrent use.
type Resolver struct {
	store Store
}

// New creates a resolver over store.
func New(store Store) *Resolver {
	if store == nil {
		panic("resolver: store cannot be nil")
	}
	return &Resolver{store: store}
}

// Resolve validates both slugs and returns the example for the pair.
func (r *Resolver) Resolve(principleSlug, languageSlug string) (content.CodeExample, error) {
	p, err := registry.ParsePrinciple(principleSlug)
	if err != nil {
		return content.CodeExample{}, err
	}
	l, err := registry.ParseLanguage(languageSlug)
	if err != nil {
		return content.CodeExample{}, err
	}
	return r.ResolvePair(p, l), nil
}

// ResolvePair looks up an already validated pair. Missing entries resolve to
// the empty example.
func (r *Resolver) ResolvePair(p registry.Principle, l registry.Language) content.CodeExample {
	example, ok := r.store.Lookup(p, l)
	if !ok {
		return content.CodeExample{}
	}
	return example
}
