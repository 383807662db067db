package grantgraph

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/CUBRID/cubrid-sub018/sql/authgateway"
	"github.com/CUBRID/cubrid-sub018/sql/authscope"
	"github.com/CUBRID/cubrid-sub018/sql/autherrors"
	"github.com/CUBRID/cubrid-sub018/sql/catalog"
	"github.com/CUBRID/cubrid-sub018/sql/principal"
	"github.com/CUBRID/cubrid-sub018/sql/privcache"
	"github.com/CUBRID/cubrid-sub018/sql/privilege"
)

func newEngineFixture(t *testing.T, owner catalog.PrincipalRef) (*Engine, *sqlx.DB) {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE ` + authgateway.AuthTable + ` (
		grantor TEXT, grantee TEXT, object_type INTEGER, object_of TEXT, auth_type TEXT, is_grantable INTEGER
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE ` + principal.MemberTable + ` (group_id TEXT, member_id TEXT)`)
	require.NoError(t, err)

	scope := authscope.New()
	gw := authgateway.New(db, scope, nil)
	dir := principal.New(scope, nil)
	cache := privcache.New(privcache.NewIndexAllocator())

	e := New(gw, dir, cache, scope)
	e.OwnerOf = func(ctx context.Context, object catalog.ObjectRef) (catalog.PrincipalRef, error) {
		return owner, nil
	}
	return e, db
}

func ref(name string) catalog.PrincipalRef {
	return catalog.PrincipalRef{ID: uuid.New(), Name: name}
}

func TestScenario1RevokeCascadesToSubgrant(t *testing.T) {
	owner := ref("O")
	a := ref("A")
	b := ref("B")
	table := catalog.ObjectRef{Kind: catalog.KindClass, ID: uuid.New(), Name: "T"}

	e, db := newEngineFixture(t, owner)
	ctx := context.Background()

	// Seed O's own privilege cache so the grant-privilege checks pass:
	// O is the owner, so granting GRANT OPTION requires O to already
	// hold SELECT with grant option on T.
	_, err := e.cache.UpdateCache(owner.ID, table.ID, func() (privilege.CacheBits, error) {
		return privilege.Pack(privilege.All, privilege.All), nil
	})
	require.NoError(t, err)

	require.NoError(t, e.Grant(ctx, db, owner, a, table, privilege.Select, true))
	require.NoError(t, e.Grant(ctx, db, a, b, table, privilege.Select, false))

	// Sanity: B currently holds SELECT through A's grant.
	bBits, err := e.effectiveBits(ctx, db, b, table)
	require.NoError(t, err)
	require.True(t, bBits.Has(privilege.Select))

	require.NoError(t, e.Revoke(ctx, db, owner, a, table, privilege.Select))

	aAO := e.authObjectFor(a)
	require.Empty(t, aAO.grants, "A's grant entry from O must be gone")
	bAO := e.authObjectFor(b)
	require.Empty(t, bAO.grants, "B's grant entry from A must cascade away")

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM `+authgateway.AuthTable))
	require.Equal(t, 0, count, "every auth row for T must be gone")
}

func TestScenario2GrantWithoutGrantOptionFails(t *testing.T) {
	owner := ref("O")
	a := ref("A")
	b := ref("B")
	table := catalog.ObjectRef{Kind: catalog.KindClass, ID: uuid.New(), Name: "T"}

	e, db := newEngineFixture(t, owner)
	ctx := context.Background()

	_, err := e.cache.UpdateCache(owner.ID, table.ID, func() (privilege.CacheBits, error) {
		return privilege.Pack(privilege.All, privilege.All), nil
	})
	require.NoError(t, err)

	require.NoError(t, e.Grant(ctx, db, owner, a, table, privilege.Select, false))

	err = e.Grant(ctx, db, a, b, table, privilege.Select, false)
	require.Error(t, err)
	require.True(t, autherrors.ErrNoGrantOption.Is(err))
}

func TestGrantToSelfIsNoOp(t *testing.T) {
	owner := ref("O")
	table := catalog.ObjectRef{Kind: catalog.KindClass, ID: uuid.New(), Name: "T"}
	e, db := newEngineFixture(t, owner)

	require.NoError(t, e.Grant(context.Background(), db, owner, owner, table, privilege.Select, true))
	require.Empty(t, e.authObjectFor(owner).grants)
}

func TestGrantOnOwnerIsRejected(t *testing.T) {
	owner := ref("O")
	a := ref("A")
	table := catalog.ObjectRef{Kind: catalog.KindClass, ID: uuid.New(), Name: "T"}
	e, db := newEngineFixture(t, owner)
	ctx := context.Background()

	_, err := e.cache.UpdateCache(a.ID, table.ID, func() (privilege.CacheBits, error) {
		return privilege.Pack(privilege.All, privilege.All), nil
	})
	require.NoError(t, err)

	err = e.Grant(ctx, db, a, owner, table, privilege.Select, false)
	require.True(t, autherrors.ErrCantGrantOwner.Is(err))
}

func TestRevokeUnheldPrivilegeReturnsGrantNotFound(t *testing.T) {
	owner := ref("O")
	a := ref("A")
	table := catalog.ObjectRef{Kind: catalog.KindClass, ID: uuid.New(), Name: "T"}
	e, db := newEngineFixture(t, owner)
	ctx := context.Background()

	_, err := e.cache.UpdateCache(owner.ID, table.ID, func() (privilege.CacheBits, error) {
		return privilege.Pack(privilege.All, privilege.All), nil
	})
	require.NoError(t, err)

	err = e.Revoke(ctx, db, owner, a, table, privilege.Select)
	require.True(t, autherrors.ErrGrantNotFound.Is(err))
}

// TestGrantSurvivesAcrossEngineInstances exercises the real
// hydrate-from-catalog path (hydrate.go), not a pre-seeded cache: two
// separate Engine values share one underlying database the way
// cmd/authctl.newApp constructs a brand-new Engine on every CLI
// invocation, and the second instance must recover the first's grant
// from the catalog alone (spec.md §2, §8 Scenarios 1/2).
func TestGrantSurvivesAcrossEngineInstances(t *testing.T) {
	owner := ref("OWNER")
	grantee := ref("GRANTEE")
	table := catalog.ObjectRef{Kind: catalog.KindClass, ID: uuid.New(), Name: "T"}

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE ` + authgateway.AuthTable + ` (
		grantor TEXT, grantee TEXT, object_type INTEGER, object_of TEXT, auth_type TEXT, is_grantable INTEGER
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE ` + principal.MemberTable + ` (group_id TEXT, member_id TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE ` + principal.UserTable + ` (
		id TEXT PRIMARY KEY, name TEXT NOT NULL UNIQUE, is_group INTEGER NOT NULL, comment TEXT NOT NULL DEFAULT ''
	)`)
	require.NoError(t, err)
	for _, p := range []catalog.PrincipalRef{owner, grantee} {
		_, err := db.Exec(`INSERT INTO `+principal.UserTable+` (id, name, is_group, comment) VALUES (?, ?, 0, '')`,
			p.ID.String(), p.Name)
		require.NoError(t, err)
	}

	scope := authscope.New()
	gw := authgateway.New(db, scope, nil)
	dir := principal.New(scope, nil)
	ctx := context.Background()

	ownerOfFn := func(ctx context.Context, object catalog.ObjectRef) (catalog.PrincipalRef, error) {
		return owner, nil
	}
	resolveFn := func(ctx context.Context, kind catalog.ObjectKind, name string) (catalog.ObjectRef, error) {
		return table, nil
	}

	first := New(gw, dir, privcache.New(privcache.NewIndexAllocator()), scope)
	first.OwnerOf = ownerOfFn
	first.Resolve = resolveFn
	_, err = first.cache.UpdateCache(owner.ID, table.ID, func() (privilege.CacheBits, error) {
		return privilege.Pack(privilege.All, privilege.All), nil
	})
	require.NoError(t, err)
	require.NoError(t, first.Grant(ctx, db, owner, grantee, table, privilege.Select, false))

	second := New(gw, dir, privcache.New(privcache.NewIndexAllocator()), scope)
	second.OwnerOf = ownerOfFn
	second.Resolve = resolveFn

	bits, err := second.effectiveBits(ctx, db, grantee, table)
	require.NoError(t, err)
	require.True(t, bits.Has(privilege.Select), "second engine must rehydrate grantee's SELECT from the catalog")

	_, err = second.cache.UpdateCache(owner.ID, table.ID, func() (privilege.CacheBits, error) {
		return privilege.Pack(privilege.All, privilege.All), nil
	})
	require.NoError(t, err)
	require.NoError(t, second.Revoke(ctx, db, owner, grantee, table, privilege.Select))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM `+authgateway.AuthTable))
	require.Equal(t, 0, count, "the second engine's revoke must clear the row the first engine persisted")
}

func TestGrantingSameBitTwiceIsIdempotent(t *testing.T) {
	owner := ref("O")
	a := ref("A")
	table := catalog.ObjectRef{Kind: catalog.KindClass, ID: uuid.New(), Name: "T"}
	e, db := newEngineFixture(t, owner)
	ctx := context.Background()

	_, err := e.cache.UpdateCache(owner.ID, table.ID, func() (privilege.CacheBits, error) {
		return privilege.Pack(privilege.All, privilege.All), nil
	})
	require.NoError(t, err)

	require.NoError(t, e.Grant(ctx, db, owner, a, table, privilege.Select, true))
	require.NoError(t, e.Grant(ctx, db, owner, a, table, privilege.Select, true))

	require.Len(t, e.authObjectFor(a).grants, 1)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM `+authgateway.AuthTable+` WHERE auth_type = 'SELECT'`))
	require.Equal(t, 1, count)
}
