package catalog

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/CUBRID/cubrid-sub018/sql/autherrors"
)

// ClassTable, ProcedureTable, and ViewTable are the catalog tables
// backing object resolution (spec.md §6).
const (
	ClassTable     = "_db_class"
	ProcedureTable = "_db_stored_procedure"
	ViewTable      = "_db_view"
)

// Execer is the subset of *sqlx.Tx the resolver needs.
type Execer interface {
	sqlx.ExecerContext
	sqlx.QueryerContext
	Rebind(query string) string
}

// classRow mirrors just enough of _db_class / _db_stored_procedure /
// _db_view to resolve an ObjectRef's stable id and owner.
type classRow struct {
	ID    string `db:"id"`
	Owner string `db:"owner_name"`
}

// Resolver answers object-reference questions against the migrated
// catalog tables: the "object reference resolution" half of this
// package's mandate (spec.md §3, §6), complementing the plain row
// shapes (ObjectRef, PrincipalRef, AuthRow) declared above.
//
// A Resolver is stateless; callers supply the transaction/connection on
// every call, matching sql/authgateway and sql/principal's Execer
// convention.
type Resolver struct{}

// NewResolver constructs a Resolver. It carries no state of its own.
func NewResolver() *Resolver { return &Resolver{} }

func normalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func parseRowID(raw string, table string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, autherrors.ErrCorrupted.New(table)
	}
	return id, nil
}

// ResolveClass resolves a class name to its ObjectRef, trying the class
// table first and falling back to the view table (views are classes
// with an attached query spec in the original model).
func (r *Resolver) ResolveClass(ctx context.Context, tx Execer, name string) (ObjectRef, error) {
	normalized := normalizeName(name)

	var row classRow
	query := tx.Rebind(`SELECT id, owner_name FROM ` + ClassTable + ` WHERE unique_name = ?`)
	err := sqlx.GetContext(ctx, tx, &row, query, normalized)
	if err == nil {
		id, perr := parseRowID(row.ID, ClassTable)
		if perr != nil {
			return ObjectRef{}, perr
		}
		return ObjectRef{Kind: KindClass, ID: id, Name: normalized}, nil
	}
	if err != sql.ErrNoRows {
		return ObjectRef{}, autherrors.ErrAccessError.New(ClassTable)
	}

	query = tx.Rebind(`SELECT id, owner_name FROM ` + ViewTable + ` WHERE view_name = ?`)
	err = sqlx.GetContext(ctx, tx, &row, query, normalized)
	if err == nil {
		id, perr := parseRowID(row.ID, ViewTable)
		if perr != nil {
			return ObjectRef{}, perr
		}
		return ObjectRef{Kind: KindClass, ID: id, Name: normalized}, nil
	}
	if err != sql.ErrNoRows {
		return ObjectRef{}, autherrors.ErrAccessError.New(ClassTable)
	}
	return ObjectRef{}, autherrors.ErrClassDoesNotExist.New(normalized)
}

// ResolveProcedure resolves a stored-procedure name to its ObjectRef.
func (r *Resolver) ResolveProcedure(ctx context.Context, tx Execer, name string) (ObjectRef, error) {
	normalized := normalizeName(name)
	var row classRow
	query := tx.Rebind(`SELECT id, owner_name FROM ` + ProcedureTable + ` WHERE sp_name = ?`)
	if err := sqlx.GetContext(ctx, tx, &row, query, normalized); err != nil {
		if err == sql.ErrNoRows {
			return ObjectRef{}, autherrors.ErrMissingClass.New(normalized)
		}
		return ObjectRef{}, autherrors.ErrAccessError.New(ProcedureTable)
	}
	id, err := parseRowID(row.ID, ProcedureTable)
	if err != nil {
		return ObjectRef{}, err
	}
	return ObjectRef{Kind: KindProcedure, ID: id, Name: normalized}, nil
}

// ResolveByKind resolves a catalog object by its stored kind and name,
// used by sql/grantgraph to rebuild an ObjectRef from the (object_type,
// object_of) pair recorded on an auth row when rehydrating the grant
// graph from the catalog.
func (r *Resolver) ResolveByKind(ctx context.Context, tx Execer, kind ObjectKind, name string) (ObjectRef, error) {
	switch kind {
	case KindProcedure:
		return r.ResolveProcedure(ctx, tx, name)
	default:
		return r.ResolveClass(ctx, tx, name)
	}
}

// OwnerOf resolves object's declared owner, checked by the object's own
// catalog row rather than recomputed from grants (spec.md §3 "owner").
func (r *Resolver) OwnerOf(ctx context.Context, tx Execer, object ObjectRef) (PrincipalRef, error) {
	var table string
	var nameCol string
	switch object.Kind {
	case KindClass:
		table, nameCol = ClassTable, "unique_name"
	case KindProcedure:
		table, nameCol = ProcedureTable, "sp_name"
	default:
		return PrincipalRef{}, autherrors.ErrGeneric.New("unsupported object kind")
	}

	var owner string
	query := tx.Rebind(`SELECT owner_name FROM ` + table + ` WHERE ` + nameCol + ` = ?`)
	if err := sqlx.GetContext(ctx, tx, &owner, query, object.Name); err != nil {
		if object.Kind == KindClass && err == sql.ErrNoRows {
			query = tx.Rebind(`SELECT owner_name FROM ` + ViewTable + ` WHERE view_name = ?`)
			if verr := sqlx.GetContext(ctx, tx, &owner, query, object.Name); verr == nil {
				return PrincipalRef{Name: owner}, nil
			}
		}
		if err == sql.ErrNoRows {
			return PrincipalRef{}, autherrors.ErrMissingClass.New(object.Name)
		}
		return PrincipalRef{}, autherrors.ErrAccessError.New(table)
	}
	return PrincipalRef{Name: owner}, nil
}

// ViewDefinition returns the stored query text for a view name, used by
// sql/validator to walk view-reference cycles (spec.md §4.5, §8
// scenario 4).
func (r *Resolver) ViewDefinition(ctx context.Context, tx Execer, name string) (string, bool, error) {
	var spec string
	query := tx.Rebind(`SELECT query_spec FROM ` + ViewTable + ` WHERE view_name = ?`)
	if err := sqlx.GetContext(ctx, tx, &spec, query, normalizeName(name)); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, autherrors.ErrAccessError.New(ViewTable)
	}
	return spec, true, nil
}

// Partitions lists the sub-classes whose partition_of column names
// object, used by sql/grantgraph's fan-out over partitioned classes
// (spec.md §4.4, "operations against a partitioned class propagate to
// every partition").
func (r *Resolver) Partitions(ctx context.Context, tx Execer, object ObjectRef) ([]ObjectRef, error) {
	if object.Kind != KindClass {
		return nil, nil
	}
	query := tx.Rebind(`SELECT id, unique_name FROM ` + ClassTable + ` WHERE partition_of = ?`)
	rows, err := tx.QueryxContext(ctx, query, object.Name)
	if err != nil {
		return nil, autherrors.ErrAccessError.New(ClassTable)
	}
	defer rows.Close()

	var out []ObjectRef
	for rows.Next() {
		var rawID, name string
		if err := rows.Scan(&rawID, &name); err != nil {
			return nil, autherrors.ErrCorrupted.New(ClassTable)
		}
		id, perr := parseRowID(rawID, ClassTable)
		if perr != nil {
			return nil, perr
		}
		out = append(out, ObjectRef{Kind: KindClass, ID: id, Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, autherrors.ErrAccessError.New(ClassTable)
	}
	return out, nil
}

// CreateClass inserts a new class row with a freshly minted id, used by
// the authctl CLI's object-registration helpers and by tests that need
// a resolvable ObjectRef.
func (r *Resolver) CreateClass(ctx context.Context, tx Execer, name string, owner PrincipalRef, partitionOf string) (ObjectRef, error) {
	normalized := normalizeName(name)
	id := uuid.New()
	var partition interface{}
	if partitionOf != "" {
		partition = normalizeName(partitionOf)
	}
	query := tx.Rebind(`INSERT INTO ` + ClassTable + ` (id, unique_name, owner_name, partition_of) VALUES (?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, query, id.String(), normalized, owner.Name, partition); err != nil {
		return ObjectRef{}, autherrors.ErrGeneric.New("duplicate class name " + normalized)
	}
	return ObjectRef{Kind: KindClass, ID: id, Name: normalized}, nil
}

// CreateProcedure inserts a new stored-procedure row.
func (r *Resolver) CreateProcedure(ctx context.Context, tx Execer, name string, owner PrincipalRef) (ObjectRef, error) {
	normalized := normalizeName(name)
	id := uuid.New()
	query := tx.Rebind(`INSERT INTO ` + ProcedureTable + ` (id, sp_name, owner_name) VALUES (?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, query, id.String(), normalized, owner.Name); err != nil {
		return ObjectRef{}, autherrors.ErrGeneric.New("duplicate procedure name " + normalized)
	}
	return ObjectRef{Kind: KindProcedure, ID: id, Name: normalized}, nil
}

// ListClassNames returns every registered class and view name, used by
// cmd/authctl to suggest a likely intended name when resolution fails.
func (r *Resolver) ListClassNames(ctx context.Context, tx Execer) ([]string, error) {
	var names []string
	query := tx.Rebind(`SELECT unique_name FROM ` + ClassTable + ` UNION SELECT view_name FROM ` + ViewTable)
	if err := sqlx.SelectContext(ctx, tx, &names, query); err != nil {
		return nil, autherrors.ErrAccessError.New(ClassTable)
	}
	return names, nil
}

// ListProcedureNames returns every registered stored-procedure name.
func (r *Resolver) ListProcedureNames(ctx context.Context, tx Execer) ([]string, error) {
	var names []string
	query := tx.Rebind(`SELECT sp_name FROM ` + ProcedureTable)
	if err := sqlx.SelectContext(ctx, tx, &names, query); err != nil {
		return nil, autherrors.ErrAccessError.New(ProcedureTable)
	}
	return names, nil
}

// AnyOwnedBy reports whether owner's name appears as the owner_name of
// any class, view, or stored procedure, used by sql/principal.DropPrincipal
// to enforce "forbidden if the principal owns any schema object"
// (spec.md §4.2).
func (r *Resolver) AnyOwnedBy(ctx context.Context, tx Execer, owner string) (bool, error) {
	normalized := normalizeName(owner)
	for _, table := range []string{ClassTable, ViewTable, ProcedureTable} {
		var count int
		query := tx.Rebind(`SELECT COUNT(*) FROM ` + table + ` WHERE owner_name = ?`)
		if err := sqlx.GetContext(ctx, tx, &count, query, normalized); err != nil {
			return false, autherrors.ErrAccessError.New(table)
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

// PrincipalExists reports whether a principal with the given name is
// registered, used by sql/validator.ValidateGrantees.
func (r *Resolver) PrincipalExists(ctx context.Context, tx Execer, name string) bool {
	var count int
	query := tx.Rebind(`SELECT COUNT(*) FROM _db_user WHERE name = ?`)
	if err := sqlx.GetContext(ctx, tx, &count, query, normalizeName(name)); err != nil {
		return false
	}
	return count > 0
}
