package txn

import (
	"sort"
	"sync"

	"github.com/estore/estore/memtable"
)

// versionStore is the subset of *memtable.Store the coordinator drives;
// kept as an interface purely to make this package unit-testable without a
// real Store.
type versionStore interface {
	Versions() map[string]int
	Consolidate(snapshot map[string]int)
	Rollback(snapshot map[string]int)
}

type pendingConsolidate struct {
	id       int64
	snapshot map[string]int
}

// Coordinator is the single process-wide transaction coordinator for one
// Store. It owns the "currently executing" slot: at
// most one transaction's block may run at a time, and entering Execute
// while another is already running fails with NestedError.
type Coordinator struct {
	mu        sync.Mutex
	store     versionStore
	nextID    int64
	open      map[int64]*Transaction
	pending   []pendingConsolidate
	executing *Transaction
}

func NewCoordinator(store *memtable.Store) *Coordinator {
	return &Coordinator{store: store, open: make(map[int64]*Transaction)}
}

// Open snapshots the store's table versions and registers a new open
// transaction.
func (c *Coordinator) Open() *Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	tx := newTransaction(c.nextID, c.store.Versions(), c)
	c.open[tx.id] = tx
	return tx
}

// Execute runs block with tx installed as the currently-executing
// transaction, then commits on success or rolls back on failure — either
// because block returned an error, or because block itself called Abort on
// tx.
func (c *Coordinator) Execute(tx *Transaction, block func(*Transaction) error) error {
	if err := c.enter(tx); err != nil {
		return err
	}
	defer c.leave()

	err := block(tx)

	tx.mu.Lock()
	aborted := tx.state == StateAborted
	reason := tx.reason
	tx.mu.Unlock()
	if aborted {
		return &AbortedError{Reason: reason}
	}
	if err != nil {
		c.rollback(tx, err.Error())
		return err
	}
	return c.Commit(tx)
}

// AutoCommit wraps a single operation issued with no active transaction:
// open, run, commit in one step.
func (c *Coordinator) AutoCommit(op func(*Transaction) error) error {
	tx := c.Open()
	return c.Execute(tx, op)
}

func (c *Coordinator) enter(tx *Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.executing != nil {
		return &NestedError{}
	}
	c.executing = tx
	return nil
}

func (c *Coordinator) leave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.executing = nil
}

// Commit collapses tx's snapshot into the store if it is the last open
// transaction, or enqueues it onto the FIFO pending-consolidate queue
// otherwise; the queue is flushed in ascending transaction-id order by the
// commit that leaves no transaction open. Abort and rollback do not flush
// it: when an aborted transaction was the last one open, the queued
// snapshots stay pending until the next such commit.
func (c *Coordinator) Commit(tx *Transaction) error {
	tx.mu.Lock()
	switch tx.state {
	case StateAborted:
		reason := tx.reason
		tx.mu.Unlock()
		return &AbortedError{Reason: reason}
	case StateOpen:
		tx.state = StateCommitting
	default:
		tx.mu.Unlock()
		return &InvalidError{}
	}
	tx.mu.Unlock()

	c.mu.Lock()
	delete(c.open, tx.id)
	c.pending = append(c.pending, pendingConsolidate{id: tx.id, snapshot: tx.snapshot})
	var toFlush []pendingConsolidate
	if len(c.open) == 0 {
		toFlush = c.pending
		c.pending = nil
	}
	c.mu.Unlock()

	tx.mu.Lock()
	tx.state = StateCommitted
	tx.mu.Unlock()

	if toFlush != nil {
		sort.Slice(toFlush, func(i, j int) bool { return toFlush[i].id < toFlush[j].id })
		for _, p := range toFlush {
			c.store.Consolidate(p.snapshot)
		}
	}
	return nil
}

// Abort is the direct equivalent of calling abort(reason) from inside a
// running block: it rolls the store back to tx's open-time snapshot
// immediately and marks tx aborted, so the eventual Execute return sees the
// aborted state rather than attempting to commit.
func (c *Coordinator) Abort(tx *Transaction, reason string) error {
	tx.mu.Lock()
	if tx.state != StateOpen && tx.state != StateCommitting {
		tx.mu.Unlock()
		return &InvalidError{}
	}
	tx.state = StateAborted
	tx.reason = reason
	tx.mu.Unlock()

	c.mu.Lock()
	delete(c.open, tx.id)
	c.mu.Unlock()

	c.store.Rollback(tx.snapshot)
	return &AbortedError{Reason: reason}
}

func (c *Coordinator) rollback(tx *Transaction, reason string) {
	tx.mu.Lock()
	tx.state = StateAborted
	tx.reason = reason
	tx.mu.Unlock()

	c.mu.Lock()
	delete(c.open, tx.id)
	c.mu.Unlock()

	c.store.Rollback(tx.snapshot)
}

// Current returns the transaction presently executing, if any — used by
// repository-level operations to detect whether they're running inside an
// explicit transaction or need to auto-commit.
func (c *Coordinator) Current() *Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.executing
}
