// Package authgateway implements the Auth Row Gateway (spec.md §4.1):
// translating individual privilege edges to/from the _db_auth catalog
// table using the catalog's own SQL engine, under the internal-query
// scope from sql/authscope.
//
// The gateway is driver-agnostic (constructed over a *sqlx.DB), matching
// the teacher's preference for depending on sqlx rather than hand-rolled
// SQL string building (see corbaltcode-go-libraries, which drives both
// Postgres and sqlite through the same sqlx.DB-shaped code).
package authgateway

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/CUBRID/cubrid-sub018/sql/authscope"
	"github.com/CUBRID/cubrid-sub018/sql/autherrors"
	"github.com/CUBRID/cubrid-sub018/sql/catalog"
	"github.com/CUBRID/cubrid-sub018/sql/privilege"
)

// AuthTable is the catalog table name from spec.md §6.
const AuthTable = "_db_auth"

// Gateway is the process-wide handle to the auth catalog table. It is
// safe for concurrent use: every method opens its own statement and
// closes it (or its rows) before returning, and the scope teardown
// always re-enables authorization checks, even on error paths.
type Gateway struct {
	db    *sqlx.DB
	scope *authscope.Scope
	log   *logrus.Entry
}

// New wires a Gateway to an already-migrated catalog database and the
// session's internal-query scope.
func New(db *sqlx.DB, scope *authscope.Scope, log *logrus.Entry) *Gateway {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Gateway{db: db, scope: scope, log: log}
}

// Execer is the subset of *sqlx.Tx the gateway needs; satisfied by a
// real transaction or (in tests) a bare *sqlx.DB.
type Execer interface {
	sqlx.ExecerContext
	sqlx.QueryerContext
	Rebind(query string) string
}

// InsertAuth creates one row per bit set in mask, with is_grantable set
// from the corresponding bit of grantable. Atomicity per bit: on the
// first failure it stops and returns, leaving rollback of partial
// effects to the enclosing transaction (spec.md §4.1).
func (g *Gateway) InsertAuth(ctx context.Context, tx Execer, grantor, grantee catalog.PrincipalRef, object catalog.ObjectRef, mask, grantable privilege.Kind) error {
	end := g.scope.Begin()
	defer end()

	for _, kind := range privilege.OrderedKinds() {
		if mask&kind == 0 {
			continue
		}
		row := catalog.AuthRow{
			Grantor:     grantor.Name,
			Grantee:     grantee.Name,
			ObjectType:  int(object.Kind),
			ObjectOf:    object.Name,
			AuthType:    privilege.Label(kind),
			IsGrantable: grantable&kind != 0,
		}
		query := tx.Rebind(fmt.Sprintf(
			`INSERT INTO %s (grantor, grantee, object_type, object_of, auth_type, is_grantable) VALUES (?, ?, ?, ?, ?, ?)`,
			AuthTable))
		if _, err := tx.ExecContext(ctx, query, row.Grantor, row.Grantee, row.ObjectType, row.ObjectOf, row.AuthType, row.IsGrantable); err != nil {
			g.log.WithError(err).WithField("auth_type", row.AuthType).Warn("insert_auth failed")
			return autherrors.ErrAccessError.New(AuthTable)
		}
	}
	return nil
}

// UpdateAuth locates the existing row for each bit set in mask and
// overwrites its is_grantable field, creating the row if absent
// (spec.md §4.1).
func (g *Gateway) UpdateAuth(ctx context.Context, tx Execer, grantor, grantee catalog.PrincipalRef, object catalog.ObjectRef, mask, grantable privilege.Kind) error {
	end := g.scope.Begin()
	defer end()

	for _, kind := range privilege.OrderedKinds() {
		if mask&kind == 0 {
			continue
		}
		label := privilege.Label(kind)
		found, err := g.locate(ctx, tx, grantor, grantee, object, label)
		if err != nil {
			return err
		}
		grantableBit := grantable&kind != 0
		if !found {
			query := tx.Rebind(fmt.Sprintf(
				`INSERT INTO %s (grantor, grantee, object_type, object_of, auth_type, is_grantable) VALUES (?, ?, ?, ?, ?, ?)`,
				AuthTable))
			if _, err := tx.ExecContext(ctx, query, grantor.Name, grantee.Name, int(object.Kind), object.Name, label, grantableBit); err != nil {
				return autherrors.ErrAccessError.New(AuthTable)
			}
			continue
		}
		query := tx.Rebind(fmt.Sprintf(
			`UPDATE %s SET is_grantable = ? WHERE grantee = ? AND grantor = ? AND object_of = ? AND auth_type = ?`,
			AuthTable))
		if _, err := tx.ExecContext(ctx, query, grantableBit, grantee.Name, grantor.Name, object.Name, label); err != nil {
			return autherrors.ErrAccessError.New(AuthTable)
		}
	}
	return nil
}

// DeleteAuth locates and deletes the row for each bit set in mask.
// Missing rows are not themselves errors at this layer; callers that
// require existence check beforehand (spec.md §4.1).
func (g *Gateway) DeleteAuth(ctx context.Context, tx Execer, grantor, grantee catalog.PrincipalRef, object catalog.ObjectRef, mask privilege.Kind) error {
	end := g.scope.Begin()
	defer end()

	for _, kind := range privilege.OrderedKinds() {
		if mask&kind == 0 {
			continue
		}
		query := tx.Rebind(fmt.Sprintf(
			`DELETE FROM %s WHERE grantee = ? AND grantor = ? AND object_of = ? AND auth_type = ?`,
			AuthTable))
		if _, err := tx.ExecContext(ctx, query, grantee.Name, grantor.Name, object.Name, privilege.Label(kind)); err != nil {
			return autherrors.ErrAccessError.New(AuthTable)
		}
	}
	return nil
}

// DeleteAuthOfDroppingUser removes every row whose grantee is the given
// principal. Idempotent: absence of matching rows is locally recovered,
// not surfaced (spec.md §7 "Locally recovered").
func (g *Gateway) DeleteAuthOfDroppingUser(ctx context.Context, tx Execer, user catalog.PrincipalRef) error {
	end := g.scope.Begin()
	defer end()

	query := tx.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE grantee = ?`, AuthTable))
	_, err := tx.ExecContext(ctx, query, user.Name)
	if err != nil {
		return autherrors.ErrAccessError.New(AuthTable)
	}
	return nil
}

// DeleteAuthOfDroppingObject removes every row whose object resolves
// (by kind-specific sub-query) to the named object (spec.md §4.1).
func (g *Gateway) DeleteAuthOfDroppingObject(ctx context.Context, tx Execer, kind catalog.ObjectKind, name string) error {
	end := g.scope.Begin()
	defer end()

	var subquery string
	switch kind {
	case catalog.KindClass:
		subquery = `SELECT unique_name FROM _db_class WHERE unique_name = ?`
	case catalog.KindProcedure:
		subquery = `SELECT sp_name FROM _db_stored_procedure WHERE sp_name = ?`
	default:
		return autherrors.ErrGeneric.New("unsupported object kind for delete_auth_of_dropping_object")
	}

	query := tx.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE object_type = ? AND object_of IN (%s)`, AuthTable, subquery))
	_, err := tx.ExecContext(ctx, query, int(kind), name)
	if err != nil {
		return autherrors.ErrAccessError.New(AuthTable)
	}
	return nil
}

// ReadAuthForGrantee returns every row with the given grantee, used by
// the Grant Graph Engine to rehydrate a principal's in-memory
// authorization object the first time a process touches it (spec.md
// §2, "populated on first miss... reads via the Auth Row Gateway").
func (g *Gateway) ReadAuthForGrantee(ctx context.Context, tx Execer, grantee catalog.PrincipalRef) ([]catalog.AuthRow, error) {
	end := g.scope.Begin()
	defer end()

	var rows []catalog.AuthRow
	query := tx.Rebind(fmt.Sprintf(
		`SELECT grantor, grantee, object_type, object_of, auth_type, is_grantable FROM %s WHERE grantee = ?`,
		AuthTable))
	if err := sqlx.SelectContext(ctx, tx, &rows, query, grantee.Name); err != nil {
		return nil, autherrors.ErrAccessError.New(AuthTable)
	}
	return rows, nil
}

// ReadAuthForObject returns every row targeting object (matched by
// kind and stored name), used to discover which grantees hold a grant
// on it before a cross-principal scan such as revoke's dependent-grant
// sweep (spec.md §4.4 step 6), so that scan sees rows a prior process
// already persisted, not just this process's in-memory state.
func (g *Gateway) ReadAuthForObject(ctx context.Context, tx Execer, object catalog.ObjectRef) ([]catalog.AuthRow, error) {
	end := g.scope.Begin()
	defer end()

	var rows []catalog.AuthRow
	query := tx.Rebind(fmt.Sprintf(
		`SELECT grantor, grantee, object_type, object_of, auth_type, is_grantable FROM %s WHERE object_type = ? AND object_of = ?`,
		AuthTable))
	if err := sqlx.SelectContext(ctx, tx, &rows, query, int(object.Kind), object.Name); err != nil {
		return nil, autherrors.ErrAccessError.New(AuthTable)
	}
	return rows, nil
}

// RevokeFunc issues one revoke through the Grant Graph Engine; passed in
// by the caller to avoid a circular package dependency between
// sql/authgateway and sql/grantgraph (the engine already depends on the
// gateway for insert/update/delete).
type RevokeFunc func(ctx context.Context, grantee catalog.PrincipalRef, object catalog.ObjectRef, mask privilege.Kind) error

// RevokeAllPrivilegesOfObject iterates every row granted by the object's
// owner on the object and issues the corresponding revoke through revoke.
// Used on ownership change and on object drop (spec.md §4.1).
func (g *Gateway) RevokeAllPrivilegesOfObject(ctx context.Context, tx Execer, owner catalog.PrincipalRef, object catalog.ObjectRef, revoke RevokeFunc) error {
	end := g.scope.Begin()
	defer end()

	query := tx.Rebind(fmt.Sprintf(
		`SELECT grantee, auth_type FROM %s WHERE grantor = ? AND object_of = ?`, AuthTable))
	rows, err := tx.QueryxContext(ctx, query, owner.Name, object.Name)
	if err != nil {
		return autherrors.ErrAccessError.New(AuthTable)
	}
	defer rows.Close()

	byGrantee := map[string]privilege.Kind{}
	for rows.Next() {
		var grantee, authType string
		if err := rows.Scan(&grantee, &authType); err != nil {
			return autherrors.ErrCorrupted.New(AuthTable)
		}
		kind, ok := privilege.FromLabel(authType)
		if !ok {
			return autherrors.ErrCorrupted.New(AuthTable)
		}
		byGrantee[grantee] |= kind
	}
	if err := rows.Err(); err != nil {
		return autherrors.ErrAccessError.New(AuthTable)
	}

	for grantee, mask := range byGrantee {
		if err := revoke(ctx, catalog.PrincipalRef{Name: grantee}, object, mask); err != nil {
			return err
		}
	}
	return nil
}

// locate runs the candidate-key lookup from spec.md §4.1: WHERE clauses
// on grantee.name, grantor.name, object-ref, and privilege-kind. It must
// return exactly one row if present; more than one indicates a
// corrupted catalog (duplicate candidate key, which §3 forbids).
func (g *Gateway) locate(ctx context.Context, tx Execer, grantor, grantee catalog.PrincipalRef, object catalog.ObjectRef, authType string) (bool, error) {
	query := tx.Rebind(fmt.Sprintf(
		`SELECT COUNT(*) FROM %s WHERE grantee = ? AND grantor = ? AND object_of = ? AND auth_type = ?`, AuthTable))
	var count int
	if err := sqlx.GetContext(ctx, tx, &count, query, grantee.Name, grantor.Name, object.Name, authType); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, autherrors.ErrAccessError.New(AuthTable)
	}
	switch count {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, autherrors.ErrGeneric.New("duplicate auth row candidate key")
	}
}
