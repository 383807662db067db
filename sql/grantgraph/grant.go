package grantgraph

import (
	"context"
	"sync/atomic"

	"github.com/CUBRID/cubrid-sub018/internal/bitset"
	"github.com/CUBRID/cubrid-sub018/sql/autherrors"
	"github.com/CUBRID/cubrid-sub018/sql/catalog"
	"github.com/CUBRID/cubrid-sub018/sql/privilege"
)

// Grant implements spec.md §4.4 "grant(grantee, object, privilege-mask,
// grantable?)". caller is the principal issuing the GRANT statement.
func (e *Engine) Grant(ctx context.Context, tx Tx, caller, grantee catalog.PrincipalRef, object catalog.ObjectRef, mask privilege.Kind, grantable bool) error {
	// Step 1: partitioned-class fan-out under a savepoint.
	if e.Partitions != nil {
		subs, err := e.Partitions(ctx, object)
		if err != nil {
			return err
		}
		if len(subs) > 0 {
			return e.fanOut(ctx, tx, subs, func(sub catalog.ObjectRef) error {
				return e.Grant(ctx, tx, caller, grantee, sub, mask, grantable)
			})
		}
	}

	// Step 2: granting to self is vacuously true.
	if grantee.ID == caller.ID {
		return nil
	}

	// Step 3: cannot grant on an object to its own owner.
	if e.OwnerOf != nil {
		owner, err := e.OwnerOf(ctx, object)
		if err != nil {
			return err
		}
		if owner.ID == grantee.ID {
			return autherrors.ErrCantGrantOwner.New(object.Name)
		}
	}

	// Step 4: the caller must already hold every bit and its grant option.
	callerBits, err := e.effectiveBits(ctx, tx, caller, object)
	if err != nil {
		return err
	}
	if err := checkPrivilege(callerBits, mask, object.Name); err != nil {
		return err
	}

	// Steps 5-7: hydrate and write-lock the grantee's authorization
	// object, locate or create the entry, and persist the delta through
	// the gateway.
	ao := e.authObjectFor(grantee)
	if err := e.ensureHydrated(ctx, tx, ao); err != nil {
		return err
	}
	ao.mu.Lock()
	defer ao.mu.Unlock()

	entry := ao.find(object, caller)
	var current privilege.Kind
	if entry != nil {
		current = entry.Bits.Basic()
	}

	insertBits := bitset.Added(current, mask)
	updateBits := bitset.Intersect(mask, current)

	var grantableAll privilege.Kind
	if grantable {
		grantableAll = mask
	}

	if insertBits != 0 {
		if err := e.gateway.InsertAuth(ctx, tx, caller, grantee, object, insertBits, grantableMaskFor(insertBits, grantableAll)); err != nil {
			return err
		}
	}
	if updateBits != 0 {
		if err := e.gateway.UpdateAuth(ctx, tx, caller, grantee, object, updateBits, grantableMaskFor(updateBits, grantableAll)); err != nil {
			return err
		}
	}

	newBasic := current | mask
	var newGrantOption privilege.Kind
	if entry != nil {
		newGrantOption = entry.Bits.GrantOption()
	}
	newGrantOption |= grantableAll
	newBits := privilege.Pack(newBasic, newGrantOption)

	if entry != nil {
		entry.Bits = newBits
	} else {
		ao.grants = append(ao.grants, &GrantEntry{Object: object, Grantor: caller, Bits: newBits})
	}

	// Step 8: invalidate the cache and bump the schema version.
	e.cache.ResetCacheForClass(object.ID)
	e.bumpVersion()
	return nil
}

func (e *Engine) bumpVersion() {
	atomic.AddInt64(&e.version, 1)
}

// fanOut runs op over every sub-partition inside a single savepoint,
// rolling back to it on any failure other than a lock-manager abort
// (which means the enclosing transaction is already gone).
func (e *Engine) fanOut(ctx context.Context, tx Tx, subs []catalog.ObjectRef, op func(catalog.ObjectRef) error) error {
	name := e.nextSavepointName()
	if err := Savepoint(ctx, tx, name); err != nil {
		return err
	}
	for _, sub := range subs {
		if err := op(sub); err != nil {
			if !autherrors.ErrLockUnilaterallyAborted.Is(err) {
				_ = RollbackTo(ctx, tx, name)
			}
			return err
		}
	}
	return Release(ctx, tx, name)
}
