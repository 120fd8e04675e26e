package memtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estore/estore/value"
)

type fakeChecker struct {
	known      map[string]bool
	relation   map[string]bool
}

func (f *fakeChecker) KnownTable(table string) bool        { return f.known[table] }
func (f *fakeChecker) IsRelationshipTable(table string) bool { return f.relation[table] }

func newTestStore() *Store {
	return NewStore(&fakeChecker{known: map[string]bool{"users": true}, relation: map[string]bool{}})
}

func TestPutAndGet(t *testing.T) {
	s := newTestStore()

	id, v, err := s.Put("users", nil, value.Record{"name": value.NewText("Ada")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, 1, v)

	row, ok := s.Get("users", id)
	require.True(t, ok)
	assert.Equal(t, "Ada", row["name"].Text())
}

func TestPutUnknownTableRejected(t *testing.T) {
	s := newTestStore()
	_, _, err := s.Put("ghosts", nil, value.Record{})
	require.Error(t, err)
	var target *UnknownTableError
	assert.ErrorAs(t, err, &target)
}

func TestPutRelationshipTableAutoCreates(t *testing.T) {
	s := NewStore(&fakeChecker{known: map[string]bool{}, relation: map[string]bool{"join__rel": true}})
	id, _, err := s.Put("join__rel", nil, value.Record{})
	require.NoError(t, err)
	assert.NotNil(t, id)
}

func TestPutExplicitIDBumpsCounter(t *testing.T) {
	s := newTestStore()
	_, _, err := s.Put("users", int64(10), value.Record{"name": value.NewText("Ada")})
	require.NoError(t, err)

	id, _, err := s.Put("users", nil, value.Record{"name": value.NewText("Bob")})
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}

func TestDeleteAndEntries(t *testing.T) {
	s := newTestStore()
	id1, _, _ := s.Put("users", nil, value.Record{"name": value.NewText("Ada")})
	id2, _, _ := s.Put("users", nil, value.Record{"name": value.NewText("Bob")})

	entries := s.Entries("users")
	require.Len(t, entries, 2)

	rec, ok := s.Delete("users", id1)
	require.True(t, ok)
	assert.Equal(t, "Ada", rec["name"].Text())

	entries = s.Entries("users")
	require.Len(t, entries, 1)
	assert.Equal(t, id2, entries[0].ID)
}

func TestEntriesUnknownTable(t *testing.T) {
	s := newTestStore()
	assert.Nil(t, s.Entries("nobody_wrote_here"))
}

func TestVersionsConsolidateRollback(t *testing.T) {
	s := newTestStore()
	_, _, err := s.Put("users", nil, value.Record{"name": value.NewText("Ada")})
	require.NoError(t, err)

	snapshot := s.Versions()
	id2, _, err := s.Put("users", nil, value.Record{"name": value.NewText("Bob")})
	require.NoError(t, err)

	s.Rollback(snapshot)
	_, ok := s.Get("users", id2)
	assert.False(t, ok)

	id3, _, err := s.Put("users", nil, value.Record{"name": value.NewText("Cid")})
	require.NoError(t, err)

	s.Consolidate(s.Versions())
	_, ok = s.Get("users", id3)
	assert.True(t, ok)
}

func TestEnsureTable(t *testing.T) {
	s := newTestStore()
	s.EnsureTable("precreated")
	entries := s.Entries("precreated")
	assert.Empty(t, entries)
}
