package validator

import (
	"context"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/CUBRID/cubrid-sub018/sql/autherrors"
	"github.com/CUBRID/cubrid-sub018/sql/catalog"
	"github.com/CUBRID/cubrid-sub018/sql/privilege"
)

// ParsedGrant is the authorization-relevant content of a GRANT or
// REVOKE statement, extracted from pg_query_go's parse tree.
type ParsedGrant struct {
	IsGrant         bool
	Privileges      []string
	ObjectName      string
	Grantees        []string
	WithGrantOption bool
}

// ParseGrantStatement parses exactly one GRANT or REVOKE statement
// (spec.md §6 "SQL surface") into its privilege list, target object,
// and grantee list.
func ParseGrantStatement(sql string) (*ParsedGrant, error) {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return nil, autherrors.ErrGeneric.New(err.Error())
	}
	if len(result.GetStmts()) != 1 {
		return nil, autherrors.ErrGeneric.New("expected exactly one GRANT/REVOKE statement")
	}
	grant := result.GetStmts()[0].GetStmt().GetGrantStmt()
	if grant == nil {
		return nil, autherrors.ErrGeneric.New("not a GRANT/REVOKE statement")
	}

	out := &ParsedGrant{IsGrant: grant.GetIsGrant(), WithGrantOption: grant.GetGrantOption()}
	for _, p := range grant.GetPrivileges() {
		if ap := p.GetAccessPriv(); ap != nil {
			out.Privileges = append(out.Privileges, strings.ToUpper(ap.GetPrivName()))
		}
	}
	for _, o := range grant.GetObjects() {
		if rv := o.GetRangeVar(); rv != nil {
			out.ObjectName = strings.ToUpper(rv.GetRelname())
		}
		if s := o.GetString_(); s != nil {
			out.ObjectName = strings.ToUpper(s.GetSval())
		}
	}
	for _, g := range grant.GetGrantees() {
		if rs := g.GetRoleSpec(); rs != nil {
			out.Grantees = append(out.Grantees, strings.ToUpper(rs.GetRolename()))
		}
	}
	return out, nil
}

// ValidateGrantees requires every grantee named in a GRANT/REVOKE
// statement to resolve to an existing principal (spec.md §4.5
// "GRANT/REVOKE validation": "each grantee must exist").
func (v *Validator) ValidateGrantees(ctx context.Context, grantees []string) error {
	for _, g := range grantees {
		if !v.Catalog.PrincipalExists(ctx, g) {
			return autherrors.ErrInvalidUser.New(g)
		}
	}
	return nil
}

// ValidatePrivilegeKinds requires every privilege label in a GRANT/
// REVOKE statement to be admissible for the target object's class
// (spec.md §4.5 "privilege kinds must match the object kind").
func ValidatePrivilegeKinds(labels []string, class privilege.ObjectClass) error {
	admissible := privilege.Admissible(class)
	for _, label := range labels {
		kind, ok := privilege.FromLabel(label)
		if !ok {
			return autherrors.ErrGeneric.New("unknown privilege label " + label)
		}
		if admissible&kind == 0 {
			return autherrors.ErrAuthorizationFailure.New(label)
		}
	}
	return nil
}

// ClassOf maps an object kind to the privilege class used for
// admissibility checks (spec.md §3 "A class of object determines which
// kinds are admissible").
func ClassOf(kind catalog.ObjectKind) privilege.ObjectClass {
	if kind == catalog.KindProcedure {
		return privilege.ClassProcedure
	}
	return privilege.ClassTableOrView
}
