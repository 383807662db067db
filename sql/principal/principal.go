// Package principal implements the Principal Directory (spec.md §4.2):
// resolving principal names to stable handles, maintaining group
// membership, and the membership closure used by the Grant Graph
// Engine to decide whether one principal can act through another's
// group memberships.
//
// Grounded on the original engine's au_find_user / au_add_member /
// au_drop_member / au_drop_user shape (authenticate_user_access.cpp):
// a fast path for the session's own principal before falling back to a
// catalog query.
package principal

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/CUBRID/cubrid-sub018/sql/authgateway"
	"github.com/CUBRID/cubrid-sub018/sql/authscope"
	"github.com/CUBRID/cubrid-sub018/sql/autherrors"
	"github.com/CUBRID/cubrid-sub018/sql/catalog"
	"github.com/CUBRID/cubrid-sub018/sql/privcache"
)

// UserTable and MemberTable are the catalog tables backing the
// directory (spec.md §6).
const (
	UserTable   = "_db_user"
	MemberTable = "_db_member"
)

// Principal is one row of the directory: a name, its stable id, whether
// it is usable as a group (i.e. can have members), and its comment.
type Principal struct {
	ID      uuid.UUID `db:"id"`
	Name    string    `db:"name"`
	IsGroup bool      `db:"is_group"`
	Comment string    `db:"comment"`
}

func (p Principal) Ref() catalog.PrincipalRef {
	return catalog.PrincipalRef{ID: p.ID, Name: p.Name}
}

// Execer is the subset of *sqlx.Tx the directory needs.
type Execer interface {
	sqlx.ExecerContext
	sqlx.QueryerContext
	Rebind(query string) string
}

// Directory resolves and mutates principals. fastPath caches the
// session's own principal, the overwhelmingly common lookup target,
// avoiding a catalog round trip for it (mirroring au_find_user's
// check against Au_user before querying _db_user).
type Directory struct {
	scope    *authscope.Scope
	fastPath *Principal
}

// New constructs a Directory. session, if non-nil, is cached as the
// fast-path principal; pass nil when no session principal is known yet
// (e.g. during bootstrap).
func New(scope *authscope.Scope, session *Principal) *Directory {
	return &Directory{scope: scope, fastPath: session}
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// FindPrincipal resolves name to its stable handle. Names are matched
// case-insensitively against the uppercased stored form (spec.md §3).
func (d *Directory) FindPrincipal(ctx context.Context, tx Execer, name string) (catalog.PrincipalRef, error) {
	normalized := normalize(name)
	if d.fastPath != nil && d.fastPath.Name == normalized {
		return d.fastPath.Ref(), nil
	}

	end := d.scope.Begin()
	defer end()

	var p Principal
	query := tx.Rebind(`SELECT id, name, is_group, comment FROM ` + UserTable + ` WHERE name = ?`)
	if err := sqlx.GetContext(ctx, tx, &p, query, normalized); err != nil {
		if err == sql.ErrNoRows {
			return catalog.PrincipalRef{}, autherrors.ErrInvalidUser.New(name)
		}
		return catalog.PrincipalRef{}, autherrors.ErrAccessError.New(UserTable)
	}
	return p.Ref(), nil
}

// FindByID resolves a principal's stable id back to its handle, used
// by the Grant Graph Engine to name a group id returned from GroupsOf
// when rehydrating that group's authorization object from the catalog.
func (d *Directory) FindByID(ctx context.Context, tx Execer, id uuid.UUID) (catalog.PrincipalRef, error) {
	if d.fastPath != nil && d.fastPath.ID == id {
		return d.fastPath.Ref(), nil
	}

	end := d.scope.Begin()
	defer end()

	var p Principal
	query := tx.Rebind(`SELECT id, name, is_group, comment FROM ` + UserTable + ` WHERE id = ?`)
	if err := sqlx.GetContext(ctx, tx, &p, query, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return catalog.PrincipalRef{}, autherrors.ErrInvalidUser.New(id.String())
		}
		return catalog.PrincipalRef{}, autherrors.ErrAccessError.New(UserTable)
	}
	return p.Ref(), nil
}

// IsAdministrative reports whether who is DBA itself or a direct or
// transitive member of DBA (spec.md §4.2's "administrative membership").
func (d *Directory) IsAdministrative(ctx context.Context, tx Execer, who catalog.PrincipalRef) (bool, error) {
	if who.Name == catalog.DistinguishedDBA {
		return true, nil
	}
	dba, err := d.FindPrincipal(ctx, tx, catalog.DistinguishedDBA)
	if err != nil {
		return false, err
	}
	groups, err := d.GroupsOf(ctx, tx, who)
	if err != nil {
		return false, err
	}
	for _, g := range groups {
		if g == dba.ID {
			return true, nil
		}
	}
	return false, nil
}

// Login and Logout record that a session has started or ended acting
// as a principal, simulating the original engine's au_login/au_logout
// session bookkeeping (referenced by spec.md §4.2's active-session
// check) in the absence of a persistent server process: this CLI tool
// has no long-lived connection to mark "currently logged in," so it
// keeps a durable counter instead.
func (d *Directory) Login(ctx context.Context, tx Execer, who catalog.PrincipalRef) error {
	end := d.scope.Begin()
	defer end()

	query := tx.Rebind(`UPDATE ` + UserTable + ` SET active_sessions = active_sessions + 1 WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, query, who.ID.String()); err != nil {
		return autherrors.ErrAccessError.New(UserTable)
	}
	return nil
}

func (d *Directory) Logout(ctx context.Context, tx Execer, who catalog.PrincipalRef) error {
	end := d.scope.Begin()
	defer end()

	query := tx.Rebind(`UPDATE ` + UserTable + ` SET active_sessions = active_sessions - 1 WHERE id = ? AND active_sessions > 0`)
	if _, err := tx.ExecContext(ctx, query, who.ID.String()); err != nil {
		return autherrors.ErrAccessError.New(UserTable)
	}
	return nil
}

// IsActive reports whether any session is currently logged in as who
// (spec.md §4.2's USER_IS_ACTIVE / NOT_ALLOW_TO_DROP_ACTIVE_USER check).
func (d *Directory) IsActive(ctx context.Context, tx Execer, who catalog.PrincipalRef) (bool, error) {
	end := d.scope.Begin()
	defer end()

	var sessions int
	query := tx.Rebind(`SELECT active_sessions FROM ` + UserTable + ` WHERE id = ?`)
	if err := sqlx.GetContext(ctx, tx, &sessions, query, who.ID.String()); err != nil {
		if err == sql.ErrNoRows {
			return false, autherrors.ErrInvalidUser.New(who.Name)
		}
		return false, autherrors.ErrAccessError.New(UserTable)
	}
	return sessions > 0, nil
}

// FindForDrop resolves name for a DROP USER / DROP GROUP statement,
// rejecting the two distinguished principals which can never be
// dropped, requiring caller to hold administrative membership, and
// refusing to proceed while a session is logged in as the target
// (spec.md §4.2).
func (d *Directory) FindForDrop(ctx context.Context, tx Execer, caller catalog.PrincipalRef, name string) (catalog.PrincipalRef, error) {
	normalized := normalize(name)
	if normalized == catalog.DistinguishedDBA || normalized == catalog.DistinguishedPublic {
		return catalog.PrincipalRef{}, autherrors.ErrCantDropUser.New(normalized)
	}

	admin, err := d.IsAdministrative(ctx, tx, caller)
	if err != nil {
		return catalog.PrincipalRef{}, err
	}
	if !admin {
		return catalog.PrincipalRef{}, autherrors.ErrDBAOnly.New("drop_principal")
	}

	who, err := d.FindPrincipal(ctx, tx, name)
	if err != nil {
		return catalog.PrincipalRef{}, err
	}

	active, err := d.IsActive(ctx, tx, who)
	if err != nil {
		return catalog.PrincipalRef{}, err
	}
	if active {
		return catalog.PrincipalRef{}, autherrors.ErrNotAllowToDropActiveUser.New(who.Name)
	}
	return who, nil
}

// ListNames returns every registered principal name, used by
// cmd/authctl to suggest a likely intended name when FindPrincipal
// fails.
func (d *Directory) ListNames(ctx context.Context, tx Execer) ([]string, error) {
	var names []string
	query := tx.Rebind(`SELECT name FROM ` + UserTable)
	if err := sqlx.SelectContext(ctx, tx, &names, query); err != nil {
		return nil, autherrors.ErrAccessError.New(UserTable)
	}
	return names, nil
}

// AddPrincipal creates a new principal row. The name is normalized and
// must be unique within the length and uniqueness constraints of
// spec.md §3. Every newly created principal, other than PUBLIC itself,
// is made a direct member of PUBLIC (spec.md §3, §4.2's add_principal).
func (d *Directory) AddPrincipal(ctx context.Context, tx Execer, name string, isGroup bool, comment string, maxNameLength int) (catalog.PrincipalRef, error) {
	normalized := normalize(name)
	if maxNameLength > 0 && len(normalized) > maxNameLength {
		return catalog.PrincipalRef{}, autherrors.ErrUserNameTooLong.New(normalized, maxNameLength)
	}

	end := d.scope.Begin()
	defer end()

	id := uuid.New()
	query := tx.Rebind(`INSERT INTO ` + UserTable + ` (id, name, is_group, comment) VALUES (?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, query, id.String(), normalized, isGroup, comment); err != nil {
		return catalog.PrincipalRef{}, autherrors.ErrGeneric.New("duplicate principal name " + normalized)
	}
	created := catalog.PrincipalRef{ID: id, Name: normalized}

	if normalized != catalog.DistinguishedPublic {
		public, err := d.FindPrincipal(ctx, tx, catalog.DistinguishedPublic)
		if err != nil {
			return catalog.PrincipalRef{}, err
		}
		memberQuery := tx.Rebind(`INSERT INTO ` + MemberTable + ` (group_id, member_id) VALUES (?, ?)`)
		if _, err := tx.ExecContext(ctx, memberQuery, public.ID.String(), id.String()); err != nil {
			return catalog.PrincipalRef{}, autherrors.ErrAccessError.New(MemberTable)
		}
	}
	return created, nil
}

// SetComment updates a principal's free-text comment.
func (d *Directory) SetComment(ctx context.Context, tx Execer, who catalog.PrincipalRef, comment string) error {
	end := d.scope.Begin()
	defer end()

	query := tx.Rebind(`UPDATE ` + UserTable + ` SET comment = ? WHERE id = ?`)
	_, err := tx.ExecContext(ctx, query, comment, who.ID.String())
	if err != nil {
		return autherrors.ErrAccessError.New(UserTable)
	}
	return nil
}

// AddMember adds member to group, rejecting the change if it would
// create a membership cycle (spec.md §4.2, §8 scenario 3): a group
// cannot end up, directly or transitively, a member of itself.
func (d *Directory) AddMember(ctx context.Context, tx Execer, group, member catalog.PrincipalRef) error {
	if group.ID == member.ID {
		return autherrors.ErrMemberCausesCycles.New(member.Name, group.Name)
	}

	end := d.scope.Begin()
	defer end()

	// A cycle forms exactly when member is one of the groups that group
	// already belongs to, directly or transitively.
	closure, err := d.groupClosure(ctx, tx, group)
	if err != nil {
		return err
	}
	for _, ancestor := range closure {
		if ancestor == member.ID {
			return autherrors.ErrMemberCausesCycles.New(member.Name, group.Name)
		}
	}

	query := tx.Rebind(`INSERT INTO ` + MemberTable + ` (group_id, member_id) VALUES (?, ?)`)
	if _, err := tx.ExecContext(ctx, query, group.ID.String(), member.ID.String()); err != nil {
		return autherrors.ErrGeneric.New("member already present")
	}
	return nil
}

// DropMember removes a direct membership edge. Removing a non-existent
// edge is locally recovered, not an error (spec.md §7).
func (d *Directory) DropMember(ctx context.Context, tx Execer, group, member catalog.PrincipalRef) error {
	end := d.scope.Begin()
	defer end()

	query := tx.Rebind(`DELETE FROM ` + MemberTable + ` WHERE group_id = ? AND member_id = ?`)
	_, err := tx.ExecContext(ctx, query, group.ID.String(), member.ID.String())
	if err != nil {
		return autherrors.ErrAccessError.New(MemberTable)
	}
	return nil
}

// GroupsOf returns the transitive closure of groups the given
// principal belongs to, directly or through intermediate groups. Used
// by sql/grantgraph when computing a principal's effective privilege
// bits from its groups' grant entries, and by IsAdministrative.
func (d *Directory) GroupsOf(ctx context.Context, tx Execer, who catalog.PrincipalRef) ([]uuid.UUID, error) {
	end := d.scope.Begin()
	defer end()
	return d.groupClosure(ctx, tx, who)
}

// groupClosure performs a breadth-first walk of the membership graph,
// starting at who's direct groups. Internal: callers must already hold
// the internal-query scope.
func (d *Directory) groupClosure(ctx context.Context, tx Execer, who catalog.PrincipalRef) ([]uuid.UUID, error) {
	visited := map[uuid.UUID]bool{who.ID: true}
	frontier := []uuid.UUID{who.ID}
	var closure []uuid.UUID

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]

		query := tx.Rebind(`SELECT group_id FROM ` + MemberTable + ` WHERE member_id = ?`)
		rows, err := tx.QueryxContext(ctx, query, current.String())
		if err != nil {
			return nil, autherrors.ErrAccessError.New(MemberTable)
		}
		var next []string
		for rows.Next() {
			var groupID string
			if err := rows.Scan(&groupID); err != nil {
				rows.Close()
				return nil, autherrors.ErrCorrupted.New(MemberTable)
			}
			next = append(next, groupID)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, autherrors.ErrAccessError.New(MemberTable)
		}
		rows.Close()

		for _, raw := range next {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, autherrors.ErrCorrupted.New(MemberTable)
			}
			if visited[id] {
				continue
			}
			visited[id] = true
			closure = append(closure, id)
			frontier = append(frontier, id)
		}
	}
	return closure, nil
}

// OwnedObjectsChecker reports whether who owns any schema object,
// injected so the directory stays free of a dependency on the class
// catalog (mirrors grantgraph.OwnerResolver's reasoning). Bound to
// catalog.Resolver.AnyOwnedBy by cmd/authctl.
type OwnedObjectsChecker func(ctx context.Context, who catalog.PrincipalRef) (bool, error)

// DropPrincipal removes a principal entirely: its memberships (both as
// member and as group), every auth row granted to it (rows it granted
// to others are not removed), and its privilege-cache entries, via the Auth Row Gateway and Privilege Cache
// (spec.md §4.2, "drop_principal").
//
// caller must already have passed FindForDrop's administrative and
// active-session checks; DropPrincipal re-enforces the invariants that
// depend only on who and not on session state: DBA, PUBLIC, and
// caller's own identity can never be dropped, nor can a principal that
// still owns a schema object.
func (d *Directory) DropPrincipal(ctx context.Context, tx authgateway.Execer, gw *authgateway.Gateway, cache *privcache.Cache, ownsObjects OwnedObjectsChecker, caller, who catalog.PrincipalRef) error {
	if who.Name == catalog.DistinguishedDBA || who.Name == catalog.DistinguishedPublic {
		return autherrors.ErrCantDropUser.New(who.Name)
	}
	if who.ID == caller.ID {
		return autherrors.ErrCantDropUser.New(who.Name)
	}
	if ownsObjects != nil {
		owns, err := ownsObjects(ctx, who)
		if err != nil {
			return err
		}
		if owns {
			return autherrors.ErrUserHasDatabaseObjects.New(who.Name)
		}
	}

	end := d.scope.Begin()
	defer end()

	if err := gw.DeleteAuthOfDroppingUser(ctx, tx, who); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM `+MemberTable+` WHERE group_id = ? OR member_id = ?`), who.ID.String(), who.ID.String()); err != nil {
		return autherrors.ErrAccessError.New(MemberTable)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM `+UserTable+` WHERE id = ?`), who.ID.String()); err != nil {
		return autherrors.ErrAccessError.New(UserTable)
	}

	if cache != nil {
		cache.RemoveUserCacheReferences(who.ID)
	}
	return nil
}
