package ecs

import (
	"slices"

	"github.com/roach88/thaum/internal/yield"
)

// Result codes returned by Tree operations.
const (
	CodeInvalidEndpoints uint32 = 2
	CodeCycle            uint32 = 3
	CodeNoParent         uint32 = 4
	CodeAlreadyOwned     uint32 = 5
)

// Tree is a child → parent ownership relation with no cycles and at most
// one parent per child. The zero Tree is not usable; call NewTree.
type Tree struct {
	parent   map[Entity]Entity
	children map[Entity][]Entity // attach order
}

// NewTree returns an empty ownership tree.
func NewTree() *Tree {
	return &Tree{
		parent:   make(map[Entity]Entity),
		children: make(map[Entity][]Entity),
	}
}

// Owns reports whether parent is an ancestor of child, walking up from
// child one edge at a time. The walk stops at a root or at the nil entity.
func (t *Tree) Owns(parent, child Entity) bool {
	cur := child
	for cur.Valid() {
		p, ok := t.parent[cur]
		if !ok {
			return false
		}
		if p == parent {
			return true
		}
		cur = p
	}
	return false
}

// Attach makes parent own child.
//
// Checks run in order and the first failure is returned:
//   - fail/CodeInvalidEndpoints: either side is nil, or parent == child
//   - fail/CodeCycle: child already owns parent
//   - fail/CodeAlreadyOwned: child has a parent; Detach it first
func (t *Tree) Attach(parent, child Entity) yield.Yield {
	if !parent.Valid() || !child.Valid() || parent == child {
		return yield.New(yield.StateFail).WithCode(CodeInvalidEndpoints)
	}
	if t.Owns(child, parent) {
		return yield.New(yield.StateFail).WithCode(CodeCycle)
	}
	if _, owned := t.parent[child]; owned {
		return yield.New(yield.StateFail).WithCode(CodeAlreadyOwned)
	}

	t.parent[child] = parent
	t.children[parent] = append(t.children[parent], child)
	return yield.OK()
}

// Detach removes child's parent edge. A child with no parent yields
// partial/CodeNoParent: the caller's desired end state already holds.
func (t *Tree) Detach(child Entity) yield.Yield {
	p, ok := t.parent[child]
	if !ok {
		return yield.New(yield.StatePartial).WithCode(CodeNoParent)
	}

	delete(t.parent, child)
	siblings := slices.DeleteFunc(t.children[p], func(e Entity) bool { return e == child })
	if len(siblings) == 0 {
		delete(t.children, p)
	} else {
		t.children[p] = siblings
	}
	return yield.OK()
}

// Parent returns child's direct parent.
func (t *Tree) Parent(child Entity) (Entity, bool) {
	p, ok := t.parent[child]
	return p, ok
}

// Children returns the direct children of parent in attach order.
// The returned slice is a copy.
func (t *Tree) Children(parent Entity) []Entity {
	return slices.Clone(t.children[parent])
}

// Len returns the number of edges.
func (t *Tree) Len() int {
	return len(t.parent)
}
