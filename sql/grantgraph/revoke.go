package grantgraph

import (
	"context"

	"github.com/google/uuid"

	"github.com/CUBRID/cubrid-sub018/internal/bitset"
	"github.com/CUBRID/cubrid-sub018/sql/autherrors"
	"github.com/CUBRID/cubrid-sub018/sql/catalog"
	"github.com/CUBRID/cubrid-sub018/sql/privilege"
)

// Revoke implements spec.md §4.4 "revoke(grantee, object,
// privilege-mask)", including recursive revocation of dependent
// grants via the transient mark-and-sweep pass over the grant graph.
func (e *Engine) Revoke(ctx context.Context, tx Tx, caller, grantee catalog.PrincipalRef, object catalog.ObjectRef, mask privilege.Kind) error {
	// Step 1: partitioned-class fan-out, identical to Grant.
	if e.Partitions != nil {
		subs, err := e.Partitions(ctx, object)
		if err != nil {
			return err
		}
		if len(subs) > 0 {
			return e.fanOut(ctx, tx, subs, func(sub catalog.ObjectRef) error {
				return e.Revoke(ctx, tx, caller, grantee, sub, mask)
			})
		}
	}

	// Step 2: cannot revoke from self or from the object's owner.
	if grantee.ID == caller.ID {
		return autherrors.ErrCantRevokeSelf.New()
	}
	var owner catalog.PrincipalRef
	if e.OwnerOf != nil {
		o, err := e.OwnerOf(ctx, object)
		if err != nil {
			return err
		}
		owner = o
		if owner.ID == grantee.ID {
			return autherrors.ErrCantRevokeOwner.New(object.Name)
		}
	}

	// Step 3: the caller must hold every bit and its grant option.
	callerBits, err := e.effectiveBits(ctx, tx, caller, object)
	if err != nil {
		return err
	}
	if err := checkPrivilege(callerBits, mask, object.Name); err != nil {
		return err
	}

	// Step 4: locate the entry caller granted to grantee. Hydrate every
	// grantee with a catalog row on object first, so the scan sees rows
	// a prior process already persisted (spec.md §4.4 step 6).
	if err := e.ensureObjectHydrated(ctx, tx, object); err != nil {
		return err
	}
	edgesBefore := e.edgesForObject(object)
	var target *edge
	for i := range edgesBefore {
		if edgesBefore[i].grantor.ID == caller.ID && edgesBefore[i].grantee.ID == grantee.ID {
			target = &edgesBefore[i]
			break
		}
	}
	if target == nil {
		return autherrors.ErrGrantNotFound.New(privilege.Label(mask), object.Name, grantee.Name)
	}

	// Step 5: ALL substitutes the entry's actual current bits.
	if mask == privilege.All {
		mask = target.entry.Bits.Basic()
	}

	// Steps 6-7: collect dependent grants and mark which remain legal.
	legal := legalSet(edgesBefore, owner, caller.ID, grantee.ID, mask)
	var toRevoke []edge
	for _, ed := range edgesBefore {
		if ed.grantor.ID == caller.ID && ed.grantee.ID == grantee.ID {
			continue // the caller's own entry is handled separately below
		}
		if !bitset.Intersects(ed.entry.Bits.Basic(), mask) {
			continue
		}
		if legal[ed.grantee.ID] {
			continue
		}
		toRevoke = append(toRevoke, ed)
	}

	// Step 8: lock every affected authorization object up front, in a
	// fixed order, before mutating any of them.
	affected := map[uuid.UUID]struct{}{grantee.ID: {}}
	for _, ed := range toRevoke {
		affected[ed.grantee.ID] = struct{}{}
	}
	locked := make(map[uuid.UUID]*authObject, len(affected))
	for _, id := range sortedIDs(affected) {
		ao := e.lockByID(id)
		locked[id] = ao
	}
	defer func() {
		for _, ao := range locked {
			ao.mu.Unlock()
		}
	}()

	// Steps 9-10: clear bits on not-legal nodes and persist via the gateway.
	for _, ed := range toRevoke {
		ao := locked[ed.grantee.ID]
		live := ao.find(ed.entry.Object, ed.entry.Grantor)
		if live == nil {
			continue
		}
		cleared := live.Bits.Clear(mask)
		if cleared.IsZero() {
			ao.removeEntry(ed.entry.Object, ed.entry.Grantor)
		} else {
			live.Bits = cleared
		}
		if err := e.gateway.DeleteAuth(ctx, tx, ed.grantor, ed.grantee, object, mask); err != nil {
			return err
		}
	}

	granteeAO := locked[grantee.ID]
	live := granteeAO.find(object, caller)
	if live != nil {
		cleared := live.Bits.Clear(mask)
		if cleared.IsZero() {
			granteeAO.removeEntry(object, caller)
		} else {
			live.Bits = cleared
		}
	}
	if err := e.gateway.DeleteAuth(ctx, tx, caller, grantee, object, mask); err != nil {
		return err
	}

	// Step 11: invalidate the cache and bump the schema version.
	e.cache.ResetCacheForClass(object.ID)
	e.bumpVersion()
	return nil
}

func (e *Engine) lockByID(id uuid.UUID) *authObject {
	e.mu.RLock()
	ao, ok := e.objects[id]
	e.mu.RUnlock()
	if !ok {
		// Should not happen: the id came from edgesForObject, which only
		// ever reports principals already registered in e.objects.
		ao = e.authObjectFor(catalog.PrincipalRef{ID: id})
	}
	ao.mu.Lock()
	return ao
}

// legalSet performs the mark-and-sweep reachability pass of spec.md
// §4.4 step 7: starting from the object's owner, follow grant-option
// edges that cover every bit in mask, ignoring the edge being revoked
// (caller -> grantee), to find every principal that remains legally
// entitled to the privilege.
func legalSet(edges []edge, owner catalog.PrincipalRef, excludeGrantor, excludeGrantee uuid.UUID, mask privilege.Kind) map[uuid.UUID]bool {
	legal := map[uuid.UUID]bool{owner.ID: true}
	for changed := true; changed; {
		changed = false
		for _, ed := range edges {
			if ed.grantor.ID == excludeGrantor && ed.grantee.ID == excludeGrantee {
				continue
			}
			if legal[ed.grantee.ID] || !legal[ed.grantor.ID] {
				continue
			}
			if !bitset.Has(ed.entry.Bits.GrantOption(), mask) {
				continue
			}
			legal[ed.grantee.ID] = true
			changed = true
		}
	}
	return legal
}
