package memtable

import "fmt"

// UnknownTableError reports a put/get/delete against a table with no
// registered schema and no relationship-table auto-create exemption. The
// repository layer passes it on unchanged; the root package's own
// UnknownTableError is a separate type that is not built from this one.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table: %s", e.Table)
}
