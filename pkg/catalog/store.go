package catalog

import (
	"sync"
	"time"

	"github.com/genbi-ai/genbi-engine/pkg/models"
)

// Store holds the active catalog snapshot. Refresh builds a whole new
// catalog and swaps the pointer atomically, so in-flight readers keep
// the snapshot they started with; business-context appends are the
// only in-place mutations and are serialized by the store's lock.
type Store struct {
	mu          sync.RWMutex
	cat         *models.Catalog
	version     string
	lastUpdated time.Time
}

// NewStore creates an empty store.
func NewStore(version string) *Store {
	return &Store{version: version}
}

// Snapshot returns the current catalog, or nil before the first Swap.
func (s *Store) Snapshot() *models.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat
}

// Swap replaces the catalog wholesale and stamps the update time.
func (s *Store) Swap(cat *models.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cat = cat
	s.lastUpdated = time.Now()
}

// Built reports whether a non-empty catalog is loaded.
func (s *Store) Built() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat != nil && s.cat.TableCount() > 0
}

// Version returns the snapshot schema version.
func (s *Store) Version() string { return s.version }

// LastUpdated returns the time of the last swap or append.
func (s *Store) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// AddBusinessMetric registers a named metric expression.
func (s *Store) AddBusinessMetric(name, sqlExpression string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cat == nil {
		return
	}
	s.cat.BusinessMetrics[name] = sqlExpression
	s.lastUpdated = time.Now()
}

// AddBusinessDimension registers a named dimension column reference.
func (s *Store) AddBusinessDimension(name, columnRef string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cat == nil {
		return
	}
	s.cat.BusinessDimensions[name] = columnRef
	s.lastUpdated = time.Now()
}

// AddCommonJoin registers a reusable join fragment.
func (s *Store) AddCommonJoin(name, joinSQL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cat == nil {
		return
	}
	s.cat.CommonJoins[name] = joinSQL
	s.lastUpdated = time.Now()
}

// AddBusinessRule appends a business rule.
func (s *Store) AddBusinessRule(rule string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cat == nil {
		return
	}
	s.cat.BusinessRules = append(s.cat.BusinessRules, rule)
	s.lastUpdated = time.Now()
}

// AddGlossaryTerm defines a business term.
func (s *Store) AddGlossaryTerm(term, definition string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cat == nil {
		return
	}
	s.cat.Glossary[term] = definition
	s.lastUpdated = time.Now()
}
