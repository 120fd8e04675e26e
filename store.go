// Package estore implements an in-memory transactional entity/relational
// store: a condition/query engine, a schema registry with
// foreign-key and many-to-many tracking, a versioned table store, a
// transaction coordinator, and a relationship resolver, fronted by a
// per-type Repository façade. Store is the top-level handle that wires all
// of these together, playing the role *gorm.DB plays as the single object
// an application holds onto.
package estore

import (
	"context"
	"fmt"
	"sync"

	"github.com/estore/estore/entity"
	"github.com/estore/estore/memtable"
	"github.com/estore/estore/repository"
	"github.com/estore/estore/resolver"
	"github.com/estore/estore/schema"
	"github.com/estore/estore/txn"
)

// Store is the process-wide handle Open hands back: the
// schema registry, the versioned table store, the transaction coordinator
// and the relationship resolver, plus one Repository per registered entity
// type.
type Store struct {
	config   *Config
	registry *schema.Registry
	tables   *memtable.Store
	resolve  *resolver.Resolver
	coord    *txn.Coordinator

	mu    sync.RWMutex
	repos map[string]*repository.Repository
}

// Open constructs a Store from opts, applied over a default Config the way
// gorm's Open applies ConfigOption over a default gorm.Config.
func Open(opts ...ConfigOption) *Store {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	registry := schema.NewRegistry(cfg.NamingStrategy)
	tables := memtable.NewStore(registry)
	resolve := resolver.New(registry, tables)
	coord := txn.NewCoordinator(tables)

	s := &Store{
		config:   cfg,
		registry: registry,
		tables:   tables,
		resolve:  resolve,
		coord:    coord,
		repos:    make(map[string]*repository.Repository),
	}
	return s
}

// Register declares an entity type and returns the typed Of[T] façade for
// it. factory must construct a zero-valued T for repository reads to
// populate. Any populate.tables rows configured for this table are stored
// immediately, since that's the earliest point this schema's field types
// are known.
func Register[T entity.Entity](s *Store, def schema.Definition, factory func() T) (repository.Of[T], error) {
	sc, err := s.registry.Register(def)
	if err != nil {
		return repository.Of[T]{}, err
	}
	if s.config.Populate.GenerateTables {
		for _, jt := range s.registry.AllRelationshipTables() {
			s.tables.EnsureTable(jt.Name)
		}
	}

	repo := repository.New(sc, s.registry, s.tables, s.resolve, s.coord, func() entity.Entity { return factory() }, s.config.Logger, s.config.NowFunc)

	s.mu.Lock()
	s.repos[sc.Name] = repo
	s.mu.Unlock()

	for _, row := range s.config.Populate.Tables[sc.Table] {
		if _, err := repo.StoreFromJSON(context.Background(), row); err != nil {
			return repository.Of[T]{}, fmt.Errorf("estore: populate %s: %w", sc.Table, err)
		}
	}

	return repository.Generic[T](repo), nil
}

// Repository returns the untyped façade for a registered entity type by
// name, for callers that don't have (or don't want) a generic T handle.
func (s *Store) Repository(entityType string) (*repository.Repository, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.repos[entityType]
	return r, ok
}

// Adapter returns the adapter.Adapter backing a registered entity type's
// reads and writes — the same contract a real relational driver would
// satisfy in place of the in-memory store.
func (s *Store) Adapter(entityType string) (Adapter, bool) {
	r, ok := s.Repository(entityType)
	if !ok {
		return nil, false
	}
	return r.Backend(), true
}

// Transaction opens a new transaction on this store's coordinator.
func (s *Store) Transaction() *txn.Transaction {
	return s.coord.Open()
}

// Execute runs block as tx's body, committing on success or rolling back on
// failure.
func (s *Store) Execute(tx *txn.Transaction, block func(*txn.Transaction) error) error {
	return s.coord.Execute(tx, block)
}

// WithTransaction opens a transaction, runs block, and commits/aborts it in
// one call ("auto-commit"), used explicitly rather than implicitly by a
// caller that wants several operations in one transaction.
func (s *Store) WithTransaction(block func(*txn.Transaction) error) error {
	tx := s.Transaction()
	return s.coord.Execute(tx, block)
}
