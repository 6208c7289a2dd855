// Package tags provides the tag vocabulary and normalization layer used by
// tag-based retrieval: canonical forms, synonym resolution, related-tag
// expansion, and overlap scoring between tag sets.
package tags

import (
	"strings"

	"golang.org/x/text/cases"
)

var fold = cases.Fold()

// canonicalize folds, trims, and reduces a token to its first
// whitespace-delimited word, mirroring NormalizeTag. Vocabulary entries go
// through it on the way in so every canonical form is a fixed point of
// normalization.
func canonicalize(s string) string {
	s = strings.TrimSpace(fold.String(s))
	if i := strings.IndexFunc(s, isSpace); i >= 0 {
		s = s[:i]
	}
	return s
}

// Definition describes one canonical tag and its neighborhood.
type Definition struct {
	Canonical string
	Synonyms  []string
	Related   []string
}

// Vocabulary maps canonical tags to their synonyms and related tags. All
// strings are case-folded on the way in, so lookups are case-insensitive.
// A Vocabulary is configured at startup and read-only afterwards; it is safe
// for concurrent readers once construction is done.
type Vocabulary struct {
	definitions map[string]*Definition
	synonyms    map[string]string // synonym -> canonical
}

// NewVocabulary creates an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		definitions: make(map[string]*Definition),
		synonyms:    make(map[string]string),
	}
}

// AddTag upserts a canonical tag with its synonyms and related tags.
// Calling it twice with the same canonical form merges the sets, so the
// operation is idempotent. Every synonym resolves to exactly one canonical
// tag; a later AddTag re-points a previously claimed synonym. Multi-word
// inputs are reduced to their first token, so a canonical form can never
// resolve to something normalization would split apart again.
func (v *Vocabulary) AddTag(canonical string, synonyms, related []string) {
	canonical = canonicalize(canonical)
	if canonical == "" {
		return
	}

	def, ok := v.definitions[canonical]
	if !ok {
		def = &Definition{Canonical: canonical}
		v.definitions[canonical] = def
	}
	// The canonical form always resolves to itself.
	v.synonyms[canonical] = canonical

	for _, s := range synonyms {
		s = canonicalize(s)
		if s == "" || s == canonical {
			continue
		}
		if !contains(def.Synonyms, s) {
			def.Synonyms = append(def.Synonyms, s)
		}
		v.synonyms[s] = canonical
	}
	for _, r := range related {
		r = canonicalize(r)
		if r == "" || r == canonical {
			continue
		}
		if !contains(def.Related, r) {
			def.Related = append(def.Related, r)
		}
	}
}

// Resolve maps a folded token to its canonical tag. The second return value
// reports whether the token is known to the vocabulary.
func (v *Vocabulary) Resolve(token string) (string, bool) {
	canonical, ok := v.synonyms[fold.String(token)]
	return canonical, ok
}

// Definition returns the definition for a canonical tag, if present.
func (v *Vocabulary) Definition(canonical string) (Definition, bool) {
	def, ok := v.definitions[fold.String(canonical)]
	if !ok {
		return Definition{}, false
	}
	return *def, true
}

// Related returns the related tags of a canonical tag, or nil when the tag
// is unknown.
func (v *Vocabulary) Related(canonical string) []string {
	def, ok := v.definitions[fold.String(canonical)]
	if !ok {
		return nil
	}
	out := make([]string, len(def.Related))
	copy(out, def.Related)
	return out
}

// Len returns the number of canonical tags.
func (v *Vocabulary) Len() int {
	return len(v.definitions)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// DefaultVocabulary seeds the concepts that show up constantly in coding
// sessions. Callers extend it with AddTag for project-specific terms.
func DefaultVocabulary() *Vocabulary {
	v := NewVocabulary()
	v.AddTag("api", []string{"endpoint", "rest", "route"}, []string{"http", "auth"})
	v.AddTag("auth", []string{"authentication", "authorization", "login"}, []string{"api", "security"})
	v.AddTag("database", []string{"db", "sql", "storage"}, []string{"cache", "migration"})
	v.AddTag("cache", []string{"caching", "memoization"}, []string{"database", "performance"})
	v.AddTag("test", []string{"testing", "unittest", "spec"}, []string{"ci", "refactor"})
	v.AddTag("config", []string{"configuration", "settings", "env"}, []string{"deploy"})
	v.AddTag("deploy", []string{"deployment", "release", "rollout"}, []string{"config", "ci"})
	v.AddTag("error", []string{"bug", "failure", "exception"}, []string{"logging", "test"})
	v.AddTag("logging", []string{"logs", "log"}, []string{"error", "observability"})
	v.AddTag("performance", []string{"perf", "latency", "optimization"}, []string{"cache"})
	v.AddTag("refactor", []string{"refactoring", "cleanup"}, []string{"test"})
	v.AddTag("ci", []string{"pipeline", "build"}, []string{"deploy", "test"})
	return v
}
