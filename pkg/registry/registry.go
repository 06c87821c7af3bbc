// Package registry produces the ordered list of documents offered for selection.
//
// Two strategies exist. Static holds a hand-authored list in declaration
// order and never changes after construction. Dynamic lists a storage
// backend on every call, keeps keys with a fixed suffix, sorts them and
// strips the suffix to form display names. Neither mutates a listing in
// place: each List call returns a fresh slice.
package registry

import (
	"context"
	"fmt"

	"github.com/anams/page-server/pkg/document"
)

// Entry pairs a display name with the document it selects
type Entry struct {
	Name string      `json:"name"`
	ID   document.ID `json:"id"`
}

// Registry lists the documents available for selection
type Registry interface {
	// List returns the current entries in presentation order. An empty
	// result is valid; callers surface it as a configuration warning.
	List(ctx context.Context) []Entry

	// Mode names the strategy ("static" or "dynamic")
	Mode() string
}

// Lookup returns the entry for id, if listed
func Lookup(entries []Entry, id document.ID) (Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Static is a fixed registry in declaration order
type Static struct {
	entries []Entry
}

// NewStatic validates entries and returns a registry over a private copy.
// Empty names default to the ID. Invalid or duplicate IDs are rejected.
func NewStatic(entries []Entry) (*Static, error) {
	seen := make(map[document.ID]struct{}, len(entries))
	out := make([]Entry, 0, len(entries))
	for i, e := range entries {
		if err := document.ValidateID(e.ID); err != nil {
			return nil, fmt.Errorf("entry %d (%q): %w", i, e.Name, err)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("entry %d: duplicate document id %q", i, e.ID)
		}
		seen[e.ID] = struct{}{}
		if e.Name == "" {
			e.Name = string(e.ID)
		}
		out = append(out, e)
	}
	return &Static{entries: out}, nil
}

// List returns a copy of the entries
func (s *Static) List(ctx context.Context) []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	recordSize(s.Mode(), len(out))
	return out
}

// Mode returns "static"
func (s *Static) Mode() string {
	return "static"
}
