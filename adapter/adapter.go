// Package adapter defines the backend contract the repository layer is
// written against, so an in-memory store and a real relational driver are
// interchangeable without that package depending on either concrete type.
// repository.memAdapter is the only implementation in this module; a real
// driver would satisfy the same interface against a pooled SQL connection.
package adapter

import (
	"github.com/estore/estore/condition"
	"github.com/estore/estore/value"
)

// Conn, Tx and Ctx are opaque backend handles: a pooled connection, the
// transaction coordinator's Transaction token, and whatever per-transaction
// state the backend needs to carry between statements. The in-memory
// adapter uses trivial values for all three; a real SQL adapter would use
// *sql.DB/*sql.Tx.
type (
	Conn any
	Tx   any
	Ctx  any
)

// Row pairs a stored record with its id — a value.Record never carries its
// own id inline, so any call that returns rows has to hand the id back
// alongside the record rather than inside it.
type Row struct {
	ID     any
	Record value.Record
}

// Adapter is the backend contract the core repository layer is written
// entirely against, so the in-memory store and a real relational-database
// driver are interchangeable. Only the in-memory implementation
// (repository.memAdapter) is in scope here — a real driver is an external
// collaborator whose shape this interface merely documents.
type Adapter interface {
	CreateConnection() (Conn, error)
	CloseConnection(Conn) error
	IsValid(Conn) bool

	OpenTransaction(Tx) (Ctx, error)
	CloseTransaction(Tx, Ctx) error
	// CancelTransaction rolls back if the backend can, reporting whether it
	// did; cause is the error that triggered the abort.
	CancelTransaction(Tx, Ctx, error) bool

	Get(entityName, table string, id any, tx Tx, ctx Ctx) (Row, bool, error)
	Count(entityName, table string, q *condition.Query, params condition.Params, tx Tx, ctx Ctx) (int, error)
	Select(entityName, table string, q *condition.Query, params condition.Params, tx Tx, ctx Ctx) ([]Row, error)
	Insert(entityName, table string, row value.Record, tx Tx, ctx Ctx) (any, error)
	Update(entityName, table string, id any, row value.Record, tx Tx, ctx Ctx) error
	Delete(entityName, table string, id any, tx Tx, ctx Ctx) (value.Record, bool, error)
	InsertRelationship(table string, sourceID, targetID any, tx Tx, ctx Ctx) error
}
