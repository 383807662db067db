package authgateway

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/CUBRID/cubrid-sub018/sql/authscope"
	"github.com/CUBRID/cubrid-sub018/sql/catalog"
	"github.com/CUBRID/cubrid-sub018/sql/privilege"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE ` + AuthTable + ` (
		grantor TEXT NOT NULL,
		grantee TEXT NOT NULL,
		object_type INTEGER NOT NULL,
		object_of TEXT NOT NULL,
		auth_type TEXT NOT NULL,
		is_grantable INTEGER NOT NULL
	)`)
	require.NoError(t, err)
	return db
}

func newFixture(t *testing.T) (*Gateway, *sqlx.DB) {
	db := openTestDB(t)
	return New(db, authscope.New(), nil), db
}

func testObject(name string) catalog.ObjectRef {
	return catalog.ObjectRef{Kind: catalog.KindClass, ID: uuid.New(), Name: name}
}

func TestInsertAuthCreatesOneRowPerBit(t *testing.T) {
	g, db := newFixture(t)
	ctx := context.Background()
	owner := catalog.PrincipalRef{Name: "DBA"}
	alice := catalog.PrincipalRef{Name: "ALICE"}
	obj := testObject("EMPLOYEES")

	err := g.InsertAuth(ctx, db, owner, alice, obj, privilege.Select|privilege.Insert, privilege.Select)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM `+AuthTable))
	require.Equal(t, 2, count)

	var grantable bool
	require.NoError(t, db.Get(&grantable, `SELECT is_grantable FROM `+AuthTable+` WHERE auth_type = 'SELECT'`))
	require.True(t, grantable)
	require.NoError(t, db.Get(&grantable, `SELECT is_grantable FROM `+AuthTable+` WHERE auth_type = 'INSERT'`))
	require.False(t, grantable)
}

func TestUpdateAuthCreatesRowWhenAbsent(t *testing.T) {
	g, db := newFixture(t)
	ctx := context.Background()
	owner := catalog.PrincipalRef{Name: "DBA"}
	bob := catalog.PrincipalRef{Name: "BOB"}
	obj := testObject("ORDERS")

	err := g.UpdateAuth(ctx, db, owner, bob, obj, privilege.Update, privilege.Update)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM `+AuthTable+` WHERE auth_type = 'UPDATE'`))
	require.Equal(t, 1, count)
}

func TestUpdateAuthOverwritesExistingGrantable(t *testing.T) {
	g, db := newFixture(t)
	ctx := context.Background()
	owner := catalog.PrincipalRef{Name: "DBA"}
	bob := catalog.PrincipalRef{Name: "BOB"}
	obj := testObject("ORDERS")

	require.NoError(t, g.InsertAuth(ctx, db, owner, bob, obj, privilege.Update, 0))
	require.NoError(t, g.UpdateAuth(ctx, db, owner, bob, obj, privilege.Update, privilege.Update))

	var grantable bool
	require.NoError(t, db.Get(&grantable, `SELECT is_grantable FROM `+AuthTable+` WHERE auth_type = 'UPDATE'`))
	require.True(t, grantable)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM `+AuthTable+` WHERE auth_type = 'UPDATE'`))
	require.Equal(t, 1, count, "update must not duplicate the row")
}

func TestDeleteAuthRemovesOnlyRequestedBits(t *testing.T) {
	g, db := newFixture(t)
	ctx := context.Background()
	owner := catalog.PrincipalRef{Name: "DBA"}
	carol := catalog.PrincipalRef{Name: "CAROL"}
	obj := testObject("INVOICES")

	require.NoError(t, g.InsertAuth(ctx, db, owner, carol, obj, privilege.Select|privilege.Delete, 0))
	require.NoError(t, g.DeleteAuth(ctx, db, owner, carol, obj, privilege.Delete))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM `+AuthTable))
	require.Equal(t, 1, count)
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM `+AuthTable+` WHERE auth_type = 'SELECT'`))
	require.Equal(t, 1, count)
}

func TestDeleteAuthOfDroppingUserRemovesEveryGrantToThem(t *testing.T) {
	g, db := newFixture(t)
	ctx := context.Background()
	owner := catalog.PrincipalRef{Name: "DBA"}
	dave := catalog.PrincipalRef{Name: "DAVE"}

	require.NoError(t, g.InsertAuth(ctx, db, owner, dave, testObject("A"), privilege.Select, 0))
	require.NoError(t, g.InsertAuth(ctx, db, owner, dave, testObject("B"), privilege.Insert, 0))

	require.NoError(t, g.DeleteAuthOfDroppingUser(ctx, db, dave))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM `+AuthTable+` WHERE grantee = 'DAVE'`))
	require.Equal(t, 0, count)
}

func TestRevokeAllPrivilegesOfObjectFansOutPerGrantee(t *testing.T) {
	g, db := newFixture(t)
	ctx := context.Background()
	owner := catalog.PrincipalRef{Name: "DBA"}
	obj := testObject("CATALOG_SECRET")

	require.NoError(t, g.InsertAuth(ctx, db, owner, catalog.PrincipalRef{Name: "ALICE"}, obj, privilege.Select|privilege.Insert, 0))
	require.NoError(t, g.InsertAuth(ctx, db, owner, catalog.PrincipalRef{Name: "BOB"}, obj, privilege.Select, 0))

	seen := map[string]privilege.Kind{}
	revoke := func(_ context.Context, grantee catalog.PrincipalRef, object catalog.ObjectRef, mask privilege.Kind) error {
		require.Equal(t, obj.Name, object.Name)
		seen[grantee.Name] = mask
		return nil
	}

	require.NoError(t, g.RevokeAllPrivilegesOfObject(ctx, db, owner, obj, revoke))
	require.Equal(t, privilege.Select|privilege.Insert, seen["ALICE"])
	require.Equal(t, privilege.Select, seen["BOB"])
}
