package tags

import (
	"sort"
	"strings"
)

// Overlap is the result of scoring a query tag set against an item tag set.
type Overlap struct {
	// MatchedTags are the expanded tags present on both sides, sorted.
	MatchedTags []string
	// Jaccard is intersection-over-union of the expanded sets. Diagnostic
	// only; ranking uses OverlapScore.
	Jaccard float64
	// OverlapScore is |matched| / |expanded query|. Recall-oriented: an item
	// covering the full query intent scores 1.0 regardless of its own extra
	// tags.
	OverlapScore float64
	// MatchCount is len(MatchedTags).
	MatchCount int
}

// Normalizer canonicalizes and expands tag sets against a vocabulary.
type Normalizer struct {
	vocab          *Vocabulary
	includeRelated bool
}

// NewNormalizer creates a normalizer over the given vocabulary. A nil
// vocabulary is treated as empty: every tag normalizes to itself.
func NewNormalizer(vocab *Vocabulary, opts ...Option) *Normalizer {
	if vocab == nil {
		vocab = NewVocabulary()
	}
	o := applyOptions(opts...)
	return &Normalizer{
		vocab:          vocab,
		includeRelated: o.includeRelated,
	}
}

// NormalizeTag folds and trims a tag and resolves it to its canonical form.
// Multi-word tags keep only their first whitespace-delimited token
// ("kafka consumer" becomes "kafka"); the remainder is discarded. That is a
// known lossy simplification, kept because every overlap score in the system
// is calibrated against it. Unknown tokens pass through folded.
// NormalizeTag is idempotent.
func (n *Normalizer) NormalizeTag(tag string) string {
	tag = strings.TrimSpace(fold.String(tag))
	if tag == "" {
		return ""
	}
	if i := strings.IndexFunc(tag, isSpace); i >= 0 {
		tag = tag[:i]
	}
	if canonical, ok := n.vocab.Resolve(tag); ok {
		return canonical
	}
	return tag
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// ExpandTags normalizes every input tag and unions in its canonical form,
// its synonyms, and, when related-tag expansion is enabled, its related
// tags. The result is a set: for every input t, NormalizeTag(t) is a member.
func (n *Normalizer) ExpandTags(input []string) map[string]struct{} {
	expanded := make(map[string]struct{}, len(input)*2)
	for _, raw := range input {
		canonical := n.NormalizeTag(raw)
		if canonical == "" {
			continue
		}
		expanded[canonical] = struct{}{}

		def, ok := n.vocab.Definition(canonical)
		if !ok {
			continue
		}
		for _, s := range def.Synonyms {
			expanded[s] = struct{}{}
		}
		if n.includeRelated {
			for _, r := range def.Related {
				expanded[r] = struct{}{}
			}
		}
	}
	return expanded
}

// Overlap expands both tag sets and scores how well the item covers the
// query. A zero-valued Overlap means no common tags.
func (n *Normalizer) Overlap(queryTags, itemTags []string) Overlap {
	queryExpanded := n.ExpandTags(queryTags)
	itemExpanded := n.ExpandTags(itemTags)
	if len(queryExpanded) == 0 || len(itemExpanded) == 0 {
		return Overlap{}
	}

	matched := make([]string, 0, len(queryExpanded))
	for t := range queryExpanded {
		if _, ok := itemExpanded[t]; ok {
			matched = append(matched, t)
		}
	}
	sort.Strings(matched)

	unionSize := len(queryExpanded) + len(itemExpanded) - len(matched)

	return Overlap{
		MatchedTags:  matched,
		Jaccard:      float64(len(matched)) / float64(unionSize),
		OverlapScore: float64(len(matched)) / float64(len(queryExpanded)),
		MatchCount:   len(matched),
	}
}
