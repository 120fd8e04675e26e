package estore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estore/estore/condition"
	"github.com/estore/estore/schema"
	"github.com/estore/estore/txn"
	"github.com/estore/estore/value"
)

// genEntity is a minimal Entity backed directly by a schema and a row,
// used the same way across every root-level test so none of them need a
// generated struct type.
type genEntity struct {
	s   *schema.Schema
	row value.Record
	id  value.Value
}

func newGenEntity(s *schema.Schema) *genEntity { return &genEntity{s: s, row: value.Record{}} }

func (e *genEntity) EntityType() string { return e.s.Name }

func (e *genEntity) EntityID() any {
	if e.id.IsNull() {
		return nil
	}
	return e.id.Raw()
}

func (e *genEntity) Fields() []string {
	names := make([]string, len(e.s.Fields))
	for i, f := range e.s.Fields {
		names[i] = f.Name
	}
	return names
}

func (e *genEntity) GetField(name string) (value.Value, bool) {
	if name == e.s.IDField {
		return e.id, true
	}
	v, ok := e.row[name]
	return v, ok
}

func (e *genEntity) SetField(name string, v value.Value) error {
	if name == e.s.IDField {
		e.id = v
		return nil
	}
	e.row[name] = v
	return nil
}

func (e *genEntity) FieldType(name string) (schema.FieldType, bool) {
	f, ok := e.s.LookupField(name)
	if !ok {
		return "", false
	}
	return f.Type, true
}

func (e *genEntity) ToJSON() map[string]any {
	out := map[string]any{e.s.IDField: e.id.ToJSON()}
	for _, f := range e.s.Fields {
		if v, ok := e.row[f.Name]; ok {
			out[f.Name] = v.ToJSON()
		}
	}
	return out
}

func userDef() schema.Definition {
	return schema.Definition{
		Name: "User",
		Fields: []schema.Field{
			{Name: "Name", Type: schema.Text, Constraint: schema.Constraint{Required: true}},
		},
	}
}

func TestOpenRegisterStoreAndSelect(t *testing.T) {
	s := Open()

	users, err := Register(s, userDef(), func() *genEntity { return newGenEntity(mustSchema(s, "User")) })
	require.NoError(t, err)

	ctx := context.Background()
	e := newGenEntity(mustSchema(s, "User"))
	require.NoError(t, e.SetField("Name", value.NewText("Ada")))
	_, err = users.Store(ctx, e)
	require.NoError(t, err)

	all, err := users.Select(ctx, nil, condition.Params{}, ResolutionRules{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	v, _ := all[0].GetField("Name")
	assert.Equal(t, "Ada", v.Text())
}

func mustSchema(s *Store, name string) *schema.Schema {
	sc, ok := s.registry.ByName(name)
	if !ok {
		panic("schema not registered: " + name)
	}
	return sc
}

func TestRegisterDuplicateFails(t *testing.T) {
	s := Open()
	_, err := Register(s, userDef(), func() *genEntity { return newGenEntity(mustSchema(s, "User")) })
	require.NoError(t, err)

	_, err = Register(s, userDef(), func() *genEntity { return newGenEntity(mustSchema(s, "User")) })
	assert.Error(t, err)
}

func TestRepositoryLookup(t *testing.T) {
	s := Open()
	_, err := Register(s, userDef(), func() *genEntity { return newGenEntity(mustSchema(s, "User")) })
	require.NoError(t, err)

	repo, ok := s.Repository("User")
	require.True(t, ok)
	assert.NotNil(t, repo)

	_, ok = s.Repository("Ghost")
	assert.False(t, ok)
}

func TestAdapterLookup(t *testing.T) {
	s := Open()
	_, err := Register(s, userDef(), func() *genEntity { return newGenEntity(mustSchema(s, "User")) })
	require.NoError(t, err)

	a, ok := s.Adapter("User")
	require.True(t, ok)
	assert.NotNil(t, a)

	_, ok = s.Adapter("Ghost")
	assert.False(t, ok)
}

func TestWithTransactionCommitsAcrossOperations(t *testing.T) {
	s := Open()
	users, err := Register(s, userDef(), func() *genEntity { return newGenEntity(mustSchema(s, "User")) })
	require.NoError(t, err)

	ctx := context.Background()
	err = s.WithTransaction(func(tx *txn.Transaction) error {
		e1 := newGenEntity(mustSchema(s, "User"))
		require.NoError(t, e1.SetField("Name", value.NewText("Ada")))
		if _, err := users.Store(ctx, e1); err != nil {
			return err
		}
		e2 := newGenEntity(mustSchema(s, "User"))
		require.NoError(t, e2.SetField("Name", value.NewText("Bob")))
		_, err := users.Store(ctx, e2)
		return err
	})
	require.NoError(t, err)

	all, err := users.Select(ctx, nil, condition.Params{}, ResolutionRules{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	s := Open()
	users, err := Register(s, userDef(), func() *genEntity { return newGenEntity(mustSchema(s, "User")) })
	require.NoError(t, err)

	ctx := context.Background()
	wantErr := assert.AnError
	err = s.WithTransaction(func(tx *txn.Transaction) error {
		e := newGenEntity(mustSchema(s, "User"))
		require.NoError(t, e.SetField("Name", value.NewText("Ada")))
		if _, err := users.Store(ctx, e); err != nil {
			return err
		}
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	all, err := users.Select(ctx, nil, condition.Params{}, ResolutionRules{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPopulateTablesSeedsOnRegister(t *testing.T) {
	s := Open(WithPopulate(PopulateConfig{
		Tables: map[string][]map[string]any{
			"users": {
				{"Name": "Ada"},
				{"Name": "Bob"},
			},
		},
	}))
	users, err := Register(s, userDef(), func() *genEntity { return newGenEntity(mustSchema(s, "User")) })
	require.NoError(t, err)

	all, err := users.Select(context.Background(), nil, condition.Params{}, ResolutionRules{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestContextRoundTrip(t *testing.T) {
	s := Open()
	ctx := WithContext(context.Background(), s)

	got, err := FromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = FromContext(context.Background())
	require.ErrorIs(t, err, ErrStoreNotFoundInContext)
}
