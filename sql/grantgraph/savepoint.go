package grantgraph

import "context"

// Savepoint, RollbackTo, and Release wrap the three SQL statements that
// bracket a partitioned GRANT/REVOKE fan-out (spec.md §4.4 step 1, §5
// "partition fan-out is bracketed by a savepoint"). Grounded on the
// teacher's transactional-DDL-apply style: plain SQL issued through the
// same Tx the rest of the operation uses, no driver-specific API.
func Savepoint(ctx context.Context, tx Tx, name string) error {
	_, err := tx.ExecContext(ctx, "SAVEPOINT "+name)
	return err
}

func RollbackTo(ctx context.Context, tx Tx, name string) error {
	_, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name)
	return err
}

func Release(ctx context.Context, tx Tx, name string) error {
	_, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
	return err
}
