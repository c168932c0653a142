// Package script runs YAML scripts of ledger and ownership operations and
// checks their outcomes.
//
// # Script Format
//
//	name: transitive_ownership
//	description: "Chain three entities and try to close the loop"
//	steps:
//	  - op: create
//	    as: e1
//	  - op: create
//	    as: e2
//	  - op: attach
//	    parent: e1
//	    child: e2
//	  - op: attach
//	    parent: e2
//	    child: e1
//	    expect: { state: fail, code: 3 }
//	  - op: owns
//	    parent: e1
//	    child: e2
//	    expect: { holds: true }
//	assertions:
//	  - type: final
//	    state: fail
//	    code: 3
//
// Ops: create (binds a label with "as"), retire, exists (entity), attach,
// owns (parent, child), detach (child), and fault, which panics with an
// error value ("error") or a plain value ("value") to exercise fault
// containment.
//
// Labels are NFC-normalized. A label that was never bound resolves to the
// nil entity, which is how scripts exercise invalid-endpoint handling.
// Handles bound by create are never refreshed, so a label keeps pointing at
// the version it was created with and goes stale after retire.
//
// Scripts are validated against an embedded CUE schema before decoding.
//
// # Execution
//
// Every step runs inside ward.Contain against a fresh ledger and tree. Each
// step is stamped with a logical sequence number and every step yield is
// folded into Result.Final with yield.Merge, so the most severe outcome of
// the whole run is reported along with its code.
package script
