package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estore/estore/condition"
	"github.com/estore/estore/entity"
	"github.com/estore/estore/memtable"
	"github.com/estore/estore/resolver"
	"github.com/estore/estore/schema"
	"github.com/estore/estore/txn"
	"github.com/estore/estore/value"
)

// harness bundles the shared registry/store/resolver/coordinator every
// repository in a test needs, along with a Repository per registered
// schema, built from a generic rowEntity factory.
type harness struct {
	reg   *schema.Registry
	store *memtable.Store
	res   *resolver.Resolver
	coord *txn.Coordinator
}

func newHarness() *harness {
	reg := schema.NewRegistry(nil)
	store := memtable.NewStore(reg)
	res := resolver.New(reg, store)
	coord := txn.NewCoordinator(store)
	return &harness{reg: reg, store: store, res: res, coord: coord}
}

func (h *harness) repo(s *schema.Schema) *Repository {
	factory := func() entity.Entity { return &rowEntity{schema: s, row: value.Record{}} }
	return New(s, h.reg, h.store, h.res, h.coord, factory, nil, nil)
}

func setupSchemas(t *testing.T) (*harness, *schema.Schema, *schema.Schema, *schema.Schema) {
	t.Helper()
	h := newHarness()

	teamDef := schema.Definition{
		Name:   "Team",
		Fields: []schema.Field{{Name: "Name", Type: schema.Text}},
	}
	team, err := h.reg.Register(teamDef)
	require.NoError(t, err)

	tagDef := schema.Definition{
		Name:   "Tag",
		Fields: []schema.Field{{Name: "Label", Type: schema.Text}},
	}
	tag, err := h.reg.Register(tagDef)
	require.NoError(t, err)

	userDef := schema.Definition{
		Name: "User",
		Fields: []schema.Field{
			{Name: "Name", Type: schema.Text, Constraint: schema.Constraint{Required: true, Unique: true}},
			{Name: "Team", Type: schema.Ref, RefTarget: "Team"},
			{Name: "Tags", Type: schema.RefList, RefTarget: "Tag"},
		},
	}
	user, err := h.reg.Register(userDef)
	require.NoError(t, err)

	return h, team, tag, user
}

func newRow(s *schema.Schema) *rowEntity {
	return &rowEntity{schema: s, row: value.Record{}}
}

func TestStoreAndSelectByID(t *testing.T) {
	h, team, _, user := setupSchemas(t)
	teamRepo := h.repo(team)
	userRepo := h.repo(user)
	ctx := context.Background()

	teamEntity := newRow(team)
	require.NoError(t, teamEntity.SetField("Name", value.NewText("Core")))
	teamID, err := teamRepo.Store(ctx, teamEntity)
	require.NoError(t, err)

	userEntity := newRow(user)
	require.NoError(t, userEntity.SetField("Name", value.NewText("Ada")))
	require.NoError(t, userEntity.SetField("Team", value.NewID(teamID)))
	userID, err := userRepo.Store(ctx, userEntity)
	require.NoError(t, err)

	got, err := userRepo.SelectByID(ctx, userID, entity.ResolutionRules{})
	require.NoError(t, err)
	require.NotNil(t, got)
	nameVal, _ := got.GetField("Name")
	assert.Equal(t, "Ada", nameVal.Text())

	teamVal, _ := got.GetField("Team")
	rec, ok := resolver.UnwrapRef(teamVal)
	require.True(t, ok)
	assert.Equal(t, "Core", rec["Name"].Text())
}

func TestStoreRequiresRequiredField(t *testing.T) {
	h, _, _, user := setupSchemas(t)
	userRepo := h.repo(user)

	e := newRow(user)
	_, err := userRepo.Store(context.Background(), e)
	require.Error(t, err)
}

func TestStoreEnforcesUnique(t *testing.T) {
	h, _, _, user := setupSchemas(t)
	userRepo := h.repo(user)
	ctx := context.Background()

	e1 := newRow(user)
	require.NoError(t, e1.SetField("Name", value.NewText("Ada")))
	_, err := userRepo.Store(ctx, e1)
	require.NoError(t, err)

	e2 := newRow(user)
	require.NoError(t, e2.SetField("Name", value.NewText("Ada")))
	_, err = userRepo.Store(ctx, e2)
	require.Error(t, err)
}

func TestStoreNestedNewRef(t *testing.T) {
	h, team, _, user := setupSchemas(t)
	userRepo := h.repo(user)
	ctx := context.Background()

	nestedTeam := value.Record{"Name": value.NewText("Core")}
	e := newRow(user)
	require.NoError(t, e.SetField("Name", value.NewText("Ada")))
	e.row["Team"] = value.NewRecordList([]value.Record{nestedTeam})

	userID, err := userRepo.Store(ctx, e)
	require.NoError(t, err)

	got, err := userRepo.SelectByID(ctx, userID, entity.ResolutionRules{})
	require.NoError(t, err)
	teamVal, _ := got.GetField("Team")
	rec, ok := resolver.UnwrapRef(teamVal)
	require.True(t, ok)
	assert.Equal(t, "Core", rec["Name"].Text())
	assert.Equal(t, 1, h.repo(team).Length())
}

func TestStoreAndResolveRefList(t *testing.T) {
	h, _, tag, user := setupSchemas(t)
	tagRepo := h.repo(tag)
	userRepo := h.repo(user)
	ctx := context.Background()

	tag1 := newRow(tag)
	require.NoError(t, tag1.SetField("Label", value.NewText("go")))
	tag1ID, err := tagRepo.Store(ctx, tag1)
	require.NoError(t, err)

	tag2 := newRow(tag)
	require.NoError(t, tag2.SetField("Label", value.NewText("db")))
	tag2ID, err := tagRepo.Store(ctx, tag2)
	require.NoError(t, err)

	e := newRow(user)
	require.NoError(t, e.SetField("Name", value.NewText("Ada")))
	e.row["Tags"] = value.NewIDList([]any{tag1ID, tag2ID})
	userID, err := userRepo.Store(ctx, e)
	require.NoError(t, err)

	got, err := userRepo.SelectByID(ctx, userID, entity.ResolutionRules{EagerAll: true})
	require.NoError(t, err)
	tagsVal, _ := got.GetField("Tags")
	assert.Len(t, tagsVal.Records(), 2)
}

func TestSelectAndCountWithQuery(t *testing.T) {
	h, _, _, user := setupSchemas(t)
	userRepo := h.repo(user)
	ctx := context.Background()

	for _, name := range []string{"Ada", "Bob", "Cid"} {
		e := newRow(user)
		require.NoError(t, e.SetField("Name", value.NewText(name)))
		_, err := userRepo.Store(ctx, e)
		require.NoError(t, err)
	}

	q, err := condition.Compile("Name == 'Bob'")
	require.NoError(t, err)

	results, err := userRepo.Select(ctx, q, condition.Params{}, entity.ResolutionRules{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	v, _ := results[0].GetField("Name")
	assert.Equal(t, "Bob", v.Text())

	n, err := userRepo.Count(nil, condition.Params{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDeleteBlockedByReference(t *testing.T) {
	h, team, _, user := setupSchemas(t)
	teamRepo := h.repo(team)
	userRepo := h.repo(user)
	ctx := context.Background()

	teamEntity := newRow(team)
	require.NoError(t, teamEntity.SetField("Name", value.NewText("Core")))
	teamID, err := teamRepo.Store(ctx, teamEntity)
	require.NoError(t, err)

	userEntity := newRow(user)
	require.NoError(t, userEntity.SetField("Name", value.NewText("Ada")))
	require.NoError(t, userEntity.SetField("Team", value.NewID(teamID)))
	_, err = userRepo.Store(ctx, userEntity)
	require.NoError(t, err)

	_, err = teamRepo.Delete(ctx, nil, condition.Params{})
	require.Error(t, err)
	var target *resolver.DeleteConstraintError
	require.ErrorAs(t, err, &target)
}

func TestDeleteEntityCascade(t *testing.T) {
	h, team, _, user := setupSchemas(t)
	teamRepo := h.repo(team)
	userRepo := h.repo(user)
	ctx := context.Background()

	teamEntity := newRow(team)
	require.NoError(t, teamEntity.SetField("Name", value.NewText("Core")))
	teamID, err := teamRepo.Store(ctx, teamEntity)
	require.NoError(t, err)
	teamEntity.SetField("id", value.NewID(teamID))

	userEntity := newRow(user)
	require.NoError(t, userEntity.SetField("Name", value.NewText("Ada")))
	require.NoError(t, userEntity.SetField("Team", value.NewID(teamID)))
	_, err = userRepo.Store(ctx, userEntity)
	require.NoError(t, err)

	deleted, err := teamRepo.DeleteEntityCascade(ctx, teamEntity)
	require.NoError(t, err)
	assert.Len(t, deleted, 2)
	assert.Equal(t, 0, teamRepo.Length())
	assert.Equal(t, 0, userRepo.Length())
}

func TestDeleteEntityCascadeOutgoing(t *testing.T) {
	h := newHarness()

	addressDef := schema.Definition{
		Name:   "Address",
		Fields: []schema.Field{{Name: "City", Type: schema.Text}},
	}
	address, err := h.reg.Register(addressDef)
	require.NoError(t, err)

	roleDef := schema.Definition{
		Name:   "Role",
		Fields: []schema.Field{{Name: "Label", Type: schema.Text}},
	}
	role, err := h.reg.Register(roleDef)
	require.NoError(t, err)

	userDef := schema.Definition{
		Name: "User",
		Fields: []schema.Field{
			{Name: "Name", Type: schema.Text},
			{Name: "Roles", Type: schema.RefList, RefTarget: "Role"},
			{Name: "Address", Type: schema.Ref, RefTarget: "Address"},
		},
	}
	user, err := h.reg.Register(userDef)
	require.NoError(t, err)

	addressRepo := h.repo(address)
	roleRepo := h.repo(role)
	userRepo := h.repo(user)
	ctx := context.Background()

	roleEntity := newRow(role)
	require.NoError(t, roleEntity.SetField("Label", value.NewText("admin")))
	roleID, err := roleRepo.Store(ctx, roleEntity)
	require.NoError(t, err)

	addressEntity := newRow(address)
	require.NoError(t, addressEntity.SetField("City", value.NewText("Springfield")))
	addressID, err := addressRepo.Store(ctx, addressEntity)
	require.NoError(t, err)

	userEntity := newRow(user)
	require.NoError(t, userEntity.SetField("Name", value.NewText("Ada")))
	require.NoError(t, userEntity.SetField("Address", value.NewID(addressID)))
	require.NoError(t, userEntity.SetField("Roles", value.NewIDList([]any{roleID})))
	userID, err := userRepo.Store(ctx, userEntity)
	require.NoError(t, err)
	userEntity.SetField("id", value.NewID(userID))

	deleted, err := userRepo.DeleteEntityCascade(ctx, userEntity)
	require.NoError(t, err)
	assert.Len(t, deleted, 3)

	assert.Equal(t, 0, userRepo.Length())
	assert.Equal(t, 0, addressRepo.Length())
	// the role itself is shared and untouched; only the join row is gone.
	assert.Equal(t, 1, roleRepo.Length())
}

func TestSoftDeleteSkipsReadsAndStampsColumn(t *testing.T) {
	reg := schema.NewRegistry(nil)
	postDef := schema.Definition{
		Name:            "Post",
		SoftDeleteField: "DeletedAt",
		Fields: []schema.Field{
			{Name: "Title", Type: schema.Text},
			{Name: "DeletedAt", Type: schema.Timestamp},
		},
	}
	post, err := reg.Register(postDef)
	require.NoError(t, err)

	store := memtable.NewStore(reg)
	res := resolver.New(reg, store)
	coord := txn.NewCoordinator(store)
	factory := func() entity.Entity { return &rowEntity{schema: post, row: value.Record{}} }
	postRepo := New(post, reg, store, res, coord, factory, nil, nil)
	ctx := context.Background()

	e := newRow(post)
	require.NoError(t, e.SetField("Title", value.NewText("hello")))
	id, err := postRepo.Store(ctx, e)
	require.NoError(t, err)

	deleted, err := postRepo.Delete(ctx, nil, condition.Params{})
	require.NoError(t, err)
	require.Len(t, deleted, 1)

	// The row still physically exists...
	assert.Equal(t, 1, postRepo.Length())

	// ...but a default read no longer sees it.
	got, err := postRepo.SelectByID(ctx, id, entity.ResolutionRules{})
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := postRepo.Count(nil, condition.Params{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// IncludeSoftDeleted opts back in.
	got, err = postRepo.SelectByID(ctx, id, entity.ResolutionRules{IncludeSoftDeleted: true})
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestOfGenericRoundTrip(t *testing.T) {
	h, _, _, user := setupSchemas(t)
	userRepo := Generic[*rowEntity](h.repo(user))
	ctx := context.Background()

	e := newRow(user)
	require.NoError(t, e.SetField("Name", value.NewText("Ada")))
	_, err := userRepo.Store(ctx, e)
	require.NoError(t, err)

	all, err := userRepo.Select(ctx, nil, condition.Params{}, entity.ResolutionRules{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	v, _ := all[0].GetField("Name")
	assert.Equal(t, "Ada", v.Text())
}

func TestStoreFromJSON(t *testing.T) {
	h, _, _, user := setupSchemas(t)
	userRepo := h.repo(user)
	ctx := context.Background()

	m := map[string]any{
		"Name": "Ada",
		"Team": map[string]any{"Name": "Core"},
	}
	e, err := userRepo.StoreFromJSON(ctx, m)
	require.NoError(t, err)
	require.NotNil(t, e)

	got, err := userRepo.SelectByID(ctx, e.EntityID(), entity.ResolutionRules{})
	require.NoError(t, err)
	teamVal, _ := got.GetField("Team")
	rec, ok := resolver.UnwrapRef(teamVal)
	require.True(t, ok)
	assert.Equal(t, "Core", rec["Name"].Text())
}
