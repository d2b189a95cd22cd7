// Package store holds the in-memory record tables shared by the matching and
// digest pipelines. Tables live for the process lifetime only; nothing is
// persisted.
//
// Mutations follow a whole-table-replace discipline: getters hand out copies
// of the table slice, callers build a new table and write it back in one call.
// The mutex only guards against a concurrent embedding; the CLI itself runs
// operations strictly sequentially.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Table names the record tables the store owns.
type Table string

const (
	TableOrganisations Table = "organisations"
	TablePersonas      Table = "personas"
	TableSubsidies     Table = "subsidies"
	TableMatches       Table = "matches"
	TableDigests       Table = "digests"
	TablePrompts       Table = "prompts"
)

var ErrNoActivePrompt = errors.New("no active prompt template")

// Store owns all table contents. No other component keeps a private copy that
// can drift, except short-lived working copies inside a single operation.
type Store struct {
	mu sync.Mutex

	organisations []*Organisation
	personas      []*Persona
	subsidies     []*Subsidy
	matches       Matches
	digests       []*Digest
	prompts       []*PromptTemplate

	// activePromptID is the single global active-template slot. Zero means
	// no template is active.
	activePromptID int
}

// Empty returns a store with no records at all. Mostly for tests.
func Empty() *Store {
	return &Store{}
}

func (s *Store) Organisations() []*Organisation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Organisation, len(s.organisations))
	copy(out, s.organisations)
	return out
}

func (s *Store) ReplaceOrganisations(rows []*Organisation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organisations = append([]*Organisation(nil), rows...)
}

func (s *Store) Personas() []*Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Persona, len(s.personas))
	copy(out, s.personas)
	return out
}

func (s *Store) ReplacePersonas(rows []*Persona) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.personas = append([]*Persona(nil), rows...)
}

func (s *Store) Subsidies() []*Subsidy {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Subsidy, len(s.subsidies))
	copy(out, s.subsidies)
	return out
}

func (s *Store) ReplaceSubsidies(rows []*Subsidy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subsidies = append([]*Subsidy(nil), rows...)
}

func (s *Store) Matches() Matches {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(Matches, len(s.matches))
	copy(out, s.matches)
	return out
}

// ReplaceMatches overwrites the whole match table. There is no incremental
// merge: every recompute run replaces everything.
func (s *Store) ReplaceMatches(rows Matches) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append(Matches(nil), rows...)
}

func (s *Store) Digests() []*Digest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Digest, len(s.digests))
	copy(out, s.digests)
	return out
}

// AppendDigest adds one digest row. Digests are append-only; existing rows
// are never touched.
func (s *Store) AppendDigest(d *Digest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.digests = append(s.digests, d)
}

func (s *Store) Prompts() []*PromptTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*PromptTemplate, len(s.prompts))
	copy(out, s.prompts)
	return out
}

func (s *Store) ReplacePrompts(rows []*PromptTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append([]*PromptTemplate(nil), rows...)
}

// NextID allocates the next integer id for the given table: current maximum
// plus one, starting at 1 on an empty table.
func (s *Store) NextID(table Table) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	max := 0
	bump := func(id int) {
		if id > max {
			max = id
		}
	}

	switch table {
	case TableOrganisations:
		for _, r := range s.organisations {
			bump(r.ID)
		}
	case TablePersonas:
		for _, r := range s.personas {
			bump(r.ID)
		}
	case TableSubsidies:
		for _, r := range s.subsidies {
			bump(r.ID)
		}
	case TableMatches:
		for _, r := range s.matches {
			bump(r.ID)
		}
	case TableDigests:
		for _, r := range s.digests {
			bump(r.ID)
		}
	case TablePrompts:
		for _, r := range s.prompts {
			bump(r.ID)
		}
	}

	return max + 1
}

// ActivePrompt returns a copy of the currently active prompt template, or nil
// when no template is active or the active id points at a deleted record.
func (s *Store) ActivePrompt() *PromptTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activePromptID == 0 {
		return nil
	}
	for _, p := range s.prompts {
		if p.ID == s.activePromptID {
			record := *p
			record.Active = true
			return &record
		}
	}
	return nil
}

// SetActivePrompt points the active-template slot at the given prompt id.
func (s *Store) SetActivePrompt(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.prompts {
		if p.ID == id {
			s.activePromptID = id
			return nil
		}
	}
	return fmt.Errorf("prompt template with id %d not found", id)
}

// UpdateActivePromptText replaces the active template's text and bumps its
// last-modified timestamp. The active id itself does not change.
func (s *Store) UpdateActivePromptText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activePromptID == 0 {
		return ErrNoActivePrompt
	}
	for _, p := range s.prompts {
		if p.ID == s.activePromptID {
			p.Template = text
			p.LastModified = time.Now()
			return nil
		}
	}
	return ErrNoActivePrompt
}
