// Package store holds the in-process context item collection and the
// session → activity → task hierarchy recorded during a coding session.
// It follows single-writer/many-reader discipline: inserts and hierarchy
// pointer updates take the writer lock, scans read an immutable snapshot.
package store

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/promptctx/promptctx/schema"
)

var ErrInvalidCategory = errors.New("store: invalid item category")

// Store is an append-only collection of context items. Items are never
// mutated or deleted individually; Clear drops the whole collection.
type Store struct {
	mu     sync.RWMutex
	items  []schema.ContextItem
	seq    uint64
	logger *slog.Logger

	sessions map[string]*sessionNode
}

// New creates an empty store.
func New(opts ...Option) *Store {
	o := applyOptions(opts...)
	return &Store{
		logger:   o.logger.With("component", "context_store"),
		sessions: make(map[string]*sessionNode),
	}
}

// AddItem appends one immutable context item and returns its ID. Item IDs
// are ULIDs assigned under the writer lock, so lexicographic ID order equals
// insertion order.
func (s *Store) AddItem(category schema.Category, content string, tags []string, opts ...ItemOption) (string, error) {
	if !category.Valid() {
		return "", ErrInvalidCategory
	}

	io := applyItemOptions(opts...)

	s.mu.Lock()
	defer s.mu.Unlock()

	item := schema.ContextItem{
		ID:         ulid.Make().String(),
		Category:   category,
		Content:    content,
		Tags:       cloneStrings(tags),
		Timestamp:  time.Now().UTC(),
		ActivityID: io.activityID,
		TaskID:     io.taskID,
		Metadata:   io.metadata,
		Embedding:  io.embedding,
		Seq:        s.seq,
	}
	s.seq++
	s.items = append(s.items, item)

	return item.ID, nil
}

// Items returns a snapshot of all items, optionally filtered by category.
// The returned slice is a copy; callers may scan it without holding any
// lock.
func (s *Store) Items(categories ...schema.Category) []schema.ContextItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(categories) == 0 {
		out := make([]schema.ContextItem, len(s.items))
		copy(out, s.items)
		return out
	}

	want := make(map[schema.Category]struct{}, len(categories))
	for _, c := range categories {
		want[c] = struct{}{}
	}

	var out []schema.ContextItem
	for _, item := range s.items {
		if _, ok := want[item.Category]; ok {
			out = append(out, item)
		}
	}
	return out
}

// ItemsByTags returns items carrying at least one of the given tags,
// compared verbatim. Retrieval strategies do their own normalization; this
// is the raw collaborator surface.
func (s *Store) ItemsByTags(tags []string) []schema.ContextItem {
	if len(tags) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[t] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schema.ContextItem
	for _, item := range s.items {
		for _, t := range item.Tags {
			if _, ok := want[t]; ok {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear drops every item and the whole hierarchy.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.seq = 0
	s.sessions = make(map[string]*sessionNode)
	s.logger.Info("Context store cleared")
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
