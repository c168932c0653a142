package ecs

import "fmt"

// Entity identifies one version of a ledger slot.
type Entity struct {
	ID         uint64 `json:"id"`
	Generation uint64 `json:"generation"`
}

// Nil is the zero handle. It never denotes an entity.
var Nil Entity

// Valid reports whether e has a non-zero id. It says nothing about
// liveness; use Ledger.Exists for that.
func (e Entity) Valid() bool {
	return e.ID != 0
}

// String renders e as "id@generation", or "nil" for the zero id.
func (e Entity) String() string {
	if !e.Valid() {
		return "nil"
	}
	return fmt.Sprintf("%d@%d", e.ID, e.Generation)
}
