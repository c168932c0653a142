// Package yield provides the status value every thaum component reports
// outcomes through.
//
// A Yield carries a State ordered by severity:
//
//	ok < partial < fail < trap
//
// plus advisory Intent, the Origin that produced it, and two opaque payload
// slots (Code, Info) whose meaning belongs to the call site.
//
// # Merging
//
// Batch callers do not stop at the first failure. They fold outcomes with
// Merge, which keeps the more severe yield whole (all five fields) and
// otherwise keeps the left operand:
//
//	var out yield.Yield
//	out.Merge(ledger.Retire(a))
//	out.Merge(tree.Detach(b))
//	if out.IsFailure() {
//	    log.Printf("batch failed: %s", out)
//	}
//
// Yields are plain values. Nothing in this package allocates or panics.
package yield
