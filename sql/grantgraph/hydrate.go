package grantgraph

import (
	"context"

	"github.com/google/uuid"

	"github.com/CUBRID/cubrid-sub018/sql/authgateway"
	"github.com/CUBRID/cubrid-sub018/sql/autherrors"
	"github.com/CUBRID/cubrid-sub018/sql/catalog"
	"github.com/CUBRID/cubrid-sub018/sql/privilege"
)

// ensureHydrated loads ao's full grant set from the auth catalog table
// the first time this process touches it (spec.md §2, "populated on
// first miss by the Grant Graph Engine, which in turn reads via the
// Auth Row Gateway"). A no-op once hydrated, if the engine has no
// gateway or no Resolve function (grantgraph_test.go's fixture sets no
// Resolve and seeds the privilege cache instead), or if ao's principal
// has no name.
func (e *Engine) ensureHydrated(ctx context.Context, tx Tx, ao *authObject) error {
	ao.mu.Lock()
	defer ao.mu.Unlock()
	if ao.hydrated {
		return nil
	}
	ao.hydrated = true
	if e.gateway == nil || e.Resolve == nil || ao.self.Name == "" {
		return nil
	}

	rows, err := e.gateway.ReadAuthForGrantee(ctx, tx, ao.self)
	if err != nil {
		return err
	}

	type key struct {
		object  catalog.ObjectRef
		grantor uuid.UUID
	}
	granted := map[key]privilege.Kind{}
	grantable := map[key]privilege.Kind{}
	grantors := map[key]catalog.PrincipalRef{}

	for _, row := range rows {
		kind, ok := privilege.FromLabel(row.AuthType)
		if !ok {
			return autherrors.ErrCorrupted.New(authgateway.AuthTable)
		}
		object, err := e.Resolve(ctx, catalog.ObjectKind(row.ObjectType), row.ObjectOf)
		if err != nil {
			return err
		}
		grantor, err := e.directory.FindPrincipal(ctx, tx, row.Grantor)
		if err != nil {
			return err
		}
		k := key{object: object, grantor: grantor.ID}
		granted[k] |= kind
		if row.IsGrantable {
			grantable[k] |= kind
		}
		grantors[k] = grantor
	}

	for k, mask := range granted {
		bits := privilege.Pack(mask, grantable[k])
		ao.grants = append(ao.grants, &GrantEntry{Object: k.object, Grantor: grantors[k], Bits: bits})
	}
	return nil
}

// ensureObjectHydrated discovers, via a direct catalog scan, every
// grantee that holds a row on object and hydrates each one's
// authObject, so a subsequent edgesForObject sees grants persisted by
// any prior process, not just ones this engine instance has already
// touched (spec.md §4.4 step 6's "scanning every principal").
func (e *Engine) ensureObjectHydrated(ctx context.Context, tx Tx, object catalog.ObjectRef) error {
	if e.gateway == nil || e.Resolve == nil {
		return nil
	}

	rows, err := e.gateway.ReadAuthForObject(ctx, tx, object)
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, row := range rows {
		if seen[row.Grantee] {
			continue
		}
		seen[row.Grantee] = true
		grantee, err := e.directory.FindPrincipal(ctx, tx, row.Grantee)
		if err != nil {
			return err
		}
		ao := e.authObjectFor(grantee)
		if err := e.ensureHydrated(ctx, tx, ao); err != nil {
			return err
		}
	}
	return nil
}
