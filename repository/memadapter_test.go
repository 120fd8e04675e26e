package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estore/estore/adapter"
	"github.com/estore/estore/condition"
	"github.com/estore/estore/schema"
	"github.com/estore/estore/value"
)

func TestMemAdapterCRUD(t *testing.T) {
	h := newHarness()
	postDef := schema.Definition{
		Name:   "Post",
		Fields: []schema.Field{{Name: "Title", Type: schema.Text}},
	}
	post, err := h.reg.Register(postDef)
	require.NoError(t, err)

	a := newMemAdapter(h.store, h.res, h.reg)
	var _ adapter.Adapter = a

	id, err := a.Insert(post.Name, post.Table, value.Record{"Title": value.NewText("hello")}, nil, nil)
	require.NoError(t, err)

	row, ok, err := a.Get(post.Name, post.Table, id, nil, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", row.Record["Title"].Text())

	n, err := a.Count(post.Name, post.Table, nil, condition.Params{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, a.Update(post.Name, post.Table, id, value.Record{"Title": value.NewText("updated")}, nil, nil))
	row, ok, err = a.Get(post.Name, post.Table, id, nil, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "updated", row.Record["Title"].Text())

	q, err := condition.Compile(`Title == "updated"`)
	require.NoError(t, err)
	rows, err := a.Select(post.Name, post.Table, q, condition.Params{}, nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rec, ok, err := a.Delete(post.Name, post.Table, id, nil, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "updated", rec["Title"].Text())

	_, ok, err = a.Get(post.Name, post.Table, id, nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemAdapterInsertRelationship(t *testing.T) {
	h, _, tag, user := setupSchemas(t)
	a := newMemAdapter(h.store, h.res, h.reg)

	userEntity := newRow(user)
	require.NoError(t, userEntity.SetField("Name", value.NewText("Ada")))
	userID, err := h.repo(user).Store(context.Background(), userEntity)
	require.NoError(t, err)

	tagEntity := newRow(tag)
	require.NoError(t, tagEntity.SetField("Label", value.NewText("go")))
	tagID, err := h.repo(tag).Store(context.Background(), tagEntity)
	require.NoError(t, err)

	rel, ok := user.Relationships["Tags"]
	require.True(t, ok)
	require.NoError(t, a.InsertRelationship(rel.JoinTable.Name, userID, tagID, nil, nil))

	rows := h.store.Entries(rel.JoinTable.Name)
	require.Len(t, rows, 1)
}
