package estore

import "github.com/estore/estore/adapter"

// Conn, Tx, Ctx, Row and Adapter live in the adapter package so the
// repository layer can depend on the backend contract without importing
// this package back; these aliases keep the familiar estore.Adapter
// spelling at the facade. repository.memAdapter is the implementation
// every Repository is actually built with — see Store.Adapter.
type (
	Conn    = adapter.Conn
	Tx      = adapter.Tx
	Ctx     = adapter.Ctx
	Row     = adapter.Row
	Adapter = adapter.Adapter
)
