package txn

import "fmt"

// AbortedError reports a transaction that was explicitly aborted, carrying
// the caller-supplied reason. The root Store's Execute and WithTransaction
// return it unchanged; the root TransactionAbortedError is a separate type.
type AbortedError struct {
	Reason string
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("transaction aborted: %s", e.Reason)
}

// NestedError reports an attempt to open a transaction while one is already
// executing on this goroutine's logical call stack.
type NestedError struct{}

func (e *NestedError) Error() string { return "nested transaction" }

// InvalidError reports an operation issued against a transaction that is no
// longer open (already committed or aborted).
type InvalidError struct{}

func (e *InvalidError) Error() string { return "invalid transaction" }
