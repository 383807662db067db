package validator

import (
	"context"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/CUBRID/cubrid-sub018/sql/autherrors"
)

// ValidateViewColumnCount requires a CREATE/ALTER VIEW's declared
// column list (if any) to match the query spec's select-list arity
// (spec.md §4.5 "require column counts to match").
func (v *Validator) ValidateViewColumnCount(declaredColumns, selectListLen int) error {
	if declaredColumns != 0 && declaredColumns != selectListLen {
		return autherrors.ErrIllegalLHS.New(declaredColumns, selectListLen)
	}
	return nil
}

// DetectCyclicView walks every table reference in querySQL, following
// view definitions transitively, to find whether viewName ends up
// referencing itself (spec.md §4.5 "detect cyclic view references by
// recursively parsing and walking each referenced view's spec";
// §8 scenario 4).
func (v *Validator) DetectCyclicView(ctx context.Context, viewName, querySQL string) error {
	visited := map[string]bool{strings.ToUpper(viewName): true}
	return v.walkViewRefs(ctx, querySQL, visited, strings.ToUpper(viewName))
}

func (v *Validator) walkViewRefs(ctx context.Context, sql string, visited map[string]bool, origin string) error {
	refs, err := extractFromClauseTables(sql)
	if err != nil {
		return autherrors.ErrGeneric.New(err.Error())
	}
	for _, name := range refs {
		upper := strings.ToUpper(name)
		if upper == origin {
			return autherrors.ErrCyclicReferenceViewSpec.New(origin, name)
		}
		if visited[upper] {
			continue
		}
		def, isView, err := v.Catalog.ViewDefinition(ctx, upper)
		if err != nil {
			return autherrors.ErrAccessError.New(upper)
		}
		if !isView {
			continue
		}
		visited[upper] = true
		if err := v.walkViewRefs(ctx, def, visited, origin); err != nil {
			return err
		}
	}
	return nil
}

// extractFromClauseTables parses a SELECT statement and returns the
// plain table names in its top-level FROM clause. Only one level of
// FROM is inspected — the statement shapes this module validates are
// view-spec query bodies of the `SELECT ... FROM ...` form described
// in spec.md §4.5, not arbitrarily nested subqueries.
func extractFromClauseTables(sql string) ([]string, error) {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, raw := range result.GetStmts() {
		sel := raw.GetStmt().GetSelectStmt()
		if sel == nil {
			continue
		}
		for _, node := range sel.GetFromClause() {
			if rv := node.GetRangeVar(); rv != nil {
				names = append(names, rv.GetRelname())
			}
		}
	}
	return names, nil
}
