// Package registry defines the closed sets of SOLID principles and example
// languages served by the site.
//
// Both sets are fixed at compile time. Lookup tables are built once during
// package initialization and never change afterwards, so every function in
// this package is safe for concurrent use.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrUnknownPrinciple is returned when a slug is not one of the five principles.
	ErrUnknownPrinciple = errors.New("unknown principle")
	// ErrUnknownLanguage is returned when a slug is not one of the supported languages.
	ErrUnknownLanguage = errors.New("unknown language")
)

// Principle is the URL slug of a SOLID principle.
type Principle string

const (
	SingleResponsibility Principle = "single-responsibility"
	OpenClosed           Principle = "open-closed-principle"
	LiskovSubstitution   Principle = "liskov-substitution-principle"
	InterfaceSegregation Principle = "interface-segregation-principle"
	DependencyInversion  Principle = "dependency-inversion-principle"
)

// Language is the URL slug of an example language.
type Language string

const (
	Pseudocode Language = "pseudocode"
	JavaScript Language = "javascript"
	Java       Language = "java"
	Python     Language = "python"
	CSharp     Language = "csharp"
	PHP        Language = "php"
	CPP        Language = "cpp"
	Go         Language = "go"
	Swift      Language = "swift"
	Ruby       Language = "ruby"
	Rust       Language = "rust"
)

// DefaultLanguage is shown when a route does not name a language.
const DefaultLanguage = Pseudocode

// PrincipleInfo describes one principle.
type PrincipleInfo struct {
	Slug    Principle `json:"slug"`
	Name    string    `json:"name"`
	Acronym string    `json:"acronym"`
	Tagline string    `json:"tagline"`
}

// LanguageInfo describes one example language.
type LanguageInfo struct {
	Slug Language `json:"slug"`
	// Label is the human readable tab label.
	Label string `json:"label"`
	// Lexer is the highlighter tag used for code panels.
	Lexer string `json:"lexer"`
}

var principles = []PrincipleInfo{
	{
		Slug:    SingleResponsibility,
		Acronym: "SRP",
		Tagline: "A class should do one thing and therefore it should have only a single reason to change.",
	},
	{
		Slug:    OpenClosed,
		Acronym: "OCP",
		Tagline: "Classes should be open for extension and closed to modification.",
	},
	{
		Slug:    LiskovSubstitution,
		Acronym: "LSP",
		Tagline: "Objects of a superclass shall be replaceable with objects of its subclasses without breaking the application.",
	},
	{
		Slug:    InterfaceSegregation,
		Acronym: "ISP",
		Tagline: "Clients should not be forced to depend upon interfaces that they do not use.",
	},
	{
		Slug:    DependencyInversion,
		Acronym: "DIP",
		Tagline: "High-level modules should not depend on low-level modules. Both should depend on abstractions. Abstractions should not depend on details. Details should depend on abstractions.",
	},
}

var languages = []LanguageInfo{
	{Slug: Pseudocode, Label: "pseudocode", Lexer: "plaintext"},
	{Slug: JavaScript, Label: "javascript", Lexer: "javascript"},
	{Slug: Java, Label: "java", Lexer: "java"},
	{Slug: Python, Label: "python", Lexer: "python"},
	{Slug: CSharp, Label: "csharp", Lexer: "csharp"},
	{Slug: PHP, Label: "php", Lexer: "php"},
	{Slug: CPP, Label: "cpp", Lexer: "cpp"},
	{Slug: Go, Label: "go", Lexer: "go"},
	{Slug: Swift, Label: "swift", Lexer: "swift"},
	{Slug: Ruby, Label: "ruby", Lexer: "ruby"},
	{Slug: Rust, Label: "rust", Lexer: "rust"},
}

var (
	principleIndex = make(map[Principle]int, len(principles))
	languageIndex  = make(map[Language]int, len(languages))
)

func init() {
	title := cases.Title(language.English)
	for i := range principles {
		principles[i].Name = title.String(strings.ReplaceAll(string(principles[i].Slug), "-", " "))
		principleIndex[principles[i].Slug] = i
	}
	for i, l := range languages {
		languageIndex[l.Slug] = i
	}
}

// Principles returns the five principles in S, O, L, I, D order.
// The returned slice is a copy.
func Principles() []PrincipleInfo {
	out := make([]PrincipleInfo, len(principles))
	copy(out, principles)
	return out
}

// Languages returns the supported languages, pseudocode first.
// The returned slice is a copy.
func Languages() []LanguageInfo {
	out := make([]LanguageInfo, len(languages))
	copy(out, languages)
	return out
}

// ParsePrinciple validates slug against the principle set.
func ParsePrinciple(slug string) (Principle, error) {
	p := Principle(slug)
	if _, ok := principleIndex[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPrinciple, slug)
	}
	return p, nil
}

// ParseLanguage validates slug against the language set.
func ParseLanguage(slug string) (Language, error) {
	l := Language(slug)
	if _, ok := languageIndex[l]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, slug)
	}
	return l, nil
}

// DisplayName returns the human readable name of a principle slug.
func DisplayName(slug string) (string, error) {
	info, err := LookupPrinciple(slug)
	if err != nil {
		return "", err
	}
	return info.Name, nil
}

// LookupPrinciple returns the full description of a principle slug.
func LookupPrinciple(slug string) (PrincipleInfo, error) {
	i, ok := principleIndex[Principle(slug)]
	if !ok {
		return PrincipleInfo{}, fmt.Errorf("%w: %q", ErrUnknownPrinciple, slug)
	}
	return principles[i], nil
}

// LookupLanguage returns the full description of a language slug.
func LookupLanguage(slug string) (LanguageInfo, error) {
	i, ok := languageIndex[Language(slug)]
	if !ok {
		return LanguageInfo{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, slug)
	}
	return languages[i], nil
}

// Info returns the description of p. p must be valid.
func (p Principle) Info() PrincipleInfo {
	return principles[principleIndex[p]]
}

// Valid reports whether p is one of the five principles.
func (p Principle) Valid() bool {
	_, ok := principleIndex[p]
	return ok
}

// Info returns the description of l. l must be valid.
func (l Language) Info() LanguageInfo {
	return languages[languageIndex[l]]
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	_, ok := languageIndex[l]
	return ok
}
