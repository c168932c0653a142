package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/thaum/internal/yield"
)

var notFound = yield.New(yield.StateFail).WithCode(CodeNotFound)

func TestEntity_Valid(t *testing.T) {
	assert.False(t, Nil.Valid())
	assert.False(t, Entity{Generation: 3}.Valid(), "generation alone does not make a handle valid")
	assert.True(t, Entity{ID: 1}.Valid())
}

func TestEntity_String(t *testing.T) {
	assert.Equal(t, "nil", Nil.String())
	assert.Equal(t, "7@2", Entity{ID: 7, Generation: 2}.String())
}

func TestLedger_CreateAllocatesSequentialIDs(t *testing.T) {
	l := NewLedger()

	for i := uint64(1); i <= 5; i++ {
		e := l.Create()
		assert.Equal(t, Entity{ID: i, Generation: 1}, e)
		assert.True(t, l.Exists(e))
	}
	assert.Equal(t, 5, l.Len())
}

func TestLedger_ZeroValueIsUsable(t *testing.T) {
	var l Ledger
	e := l.Create()
	assert.Equal(t, Entity{ID: 1, Generation: 1}, e)
}

func TestLedger_RetireInvalidatesHandle(t *testing.T) {
	l := NewLedger()
	e := l.Create()

	require.Equal(t, yield.OK(), l.Retire(e))
	assert.False(t, l.Exists(e))

	// Second retire with the now-stale handle.
	assert.Equal(t, notFound, l.Retire(e))
}

func TestLedger_RetireKeepsSlot(t *testing.T) {
	l := NewLedger()
	e := l.Create()
	l.Retire(e)

	assert.Equal(t, 1, l.Len())
	cur, ok := l.Current(e.ID)
	require.True(t, ok)
	assert.Equal(t, Entity{ID: 1, Generation: 2}, cur)
	assert.True(t, l.Exists(cur), "the advanced record still matches its own handle")
}

func TestLedger_IDsNeverRecycled(t *testing.T) {
	l := NewLedger()
	a := l.Create()
	l.Retire(a)
	b := l.Create()

	assert.Equal(t, uint64(2), b.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestLedger_RetireUnknown(t *testing.T) {
	l := NewLedger()
	e := l.Create()

	tests := []struct {
		name string
		e    Entity
	}{
		{"nil", Nil},
		{"never created", Entity{ID: 99, Generation: 1}},
		{"future generation", Entity{ID: e.ID, Generation: 2}},
		{"zero generation", Entity{ID: e.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, notFound, l.Retire(tt.e))
			assert.False(t, l.Exists(tt.e))
		})
	}
	assert.True(t, l.Exists(e), "failed retires leave the record untouched")
}

func TestLedger_RetireOnlyTouchesMatchingID(t *testing.T) {
	l := NewLedger()
	a := l.Create()
	b := l.Create()

	l.Retire(a)
	assert.True(t, l.Exists(b))
}

func TestLedger_Current(t *testing.T) {
	l := NewLedger()
	_, ok := l.Current(0)
	assert.False(t, ok)
	_, ok = l.Current(1)
	assert.False(t, ok)

	e := l.Create()
	cur, ok := l.Current(1)
	require.True(t, ok)
	assert.Equal(t, e, cur)
}
