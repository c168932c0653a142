package ecs

import "github.com/roach88/thaum/internal/yield"

// CodeNotFound is returned by Retire when no record matches the handle.
const CodeNotFound uint32 = 1

// Ledger is the authoritative record of which ids exist and at which
// generation. The zero Ledger is empty and ready to use.
type Ledger struct {
	// generations[id-1] is the current generation of id.
	generations []uint64
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Create allocates the next id at generation 1.
func (l *Ledger) Create() Entity {
	l.generations = append(l.generations, 1)
	return Entity{ID: uint64(len(l.generations)), Generation: 1}
}

// Retire invalidates e by advancing the generation stored for its id.
// The id keeps its slot and is not handed out again.
//
// Returns fail/CodeNotFound if e was never created or is already stale.
func (l *Ledger) Retire(e Entity) yield.Yield {
	if !l.Exists(e) {
		return yield.New(yield.StateFail).WithCode(CodeNotFound)
	}
	l.generations[e.ID-1]++
	return yield.OK()
}

// Exists reports whether e matches the stored record exactly.
func (l *Ledger) Exists(e Entity) bool {
	if e.ID == 0 || e.ID > uint64(len(l.generations)) {
		return false
	}
	return l.generations[e.ID-1] == e.Generation
}

// Current returns the handle currently stored for id. The second result is
// false when id was never allocated.
func (l *Ledger) Current(id uint64) (Entity, bool) {
	if id == 0 || id > uint64(len(l.generations)) {
		return Nil, false
	}
	return Entity{ID: id, Generation: l.generations[id-1]}, true
}

// Len returns the number of records, retired ones included.
func (l *Ledger) Len() int {
	return len(l.generations)
}
