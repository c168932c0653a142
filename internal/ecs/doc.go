// Package ecs tracks entity lifecycle and ownership without any knowledge
// of what an entity holds.
//
// # Entities
//
// An Entity is an (ID, Generation) handle. IDs start at 1 and are never
// reused; 0 is the nil entity. Retiring an entity advances the generation
// stored in the Ledger, so every handle issued before retirement stops
// matching and reads as stale. Retired ids keep their slot.
//
// # Ownership
//
// A Tree records child → parent edges. Attach refuses nil endpoints,
// self-ownership, cycles and children that already have a parent. The
// tree stores handles by value and never consults a Ledger; whether an
// owner or child is still alive is the caller's concern.
//
// # Concurrency
//
// Ledger and Tree are single-writer values with no internal locking.
// Callers sharing one across goroutines must guard each instance with
// their own mutex.
//
// # Result codes
//
//	Ledger.Retire  fail/1  entity not found
//	Tree.Attach    fail/2  invalid endpoints
//	Tree.Attach    fail/3  cycle rejected
//	Tree.Attach    fail/5  child already owned
//	Tree.Detach    partial/4  no parent to detach
package ecs
