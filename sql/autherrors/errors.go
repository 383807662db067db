// Package autherrors declares the closed set of error kinds the
// authorization core can return. Operations in sql/authgateway,
// sql/principal, sql/privcache, sql/grantgraph, and sql/validator return
// either a nil error or one of these kinds (optionally wrapped), so callers
// can dispatch with errors.Is / Kind.Is instead of string matching. Two
// exceptions pass errors through unchanged: sql/grantgraph's savepoint
// helpers return the driver's error, and privcache.UpdateCache returns
// whatever its compute callback returns.
package autherrors

import "gopkg.in/src-d/go-errors.v1"

var (
	// Resolution
	ErrInvalidUser      = errors.NewKind("invalid user %s")
	ErrUserIsNotInDB    = errors.NewKind("user %s is not in the database")
	ErrClassDoesNotExist = errors.NewKind("class %s does not exist")
	ErrIsNotAClass      = errors.NewKind("%s is not a class")
	ErrMissingClass     = errors.NewKind("missing catalog class %s")

	// Authorization
	ErrSelectFailure       = errors.NewKind("select privilege failure on %s")
	ErrInsertFailure       = errors.NewKind("insert privilege failure on %s")
	ErrUpdateFailure       = errors.NewKind("update privilege failure on %s")
	ErrDeleteFailure       = errors.NewKind("delete privilege failure on %s")
	ErrAlterFailure        = errors.NewKind("alter privilege failure on %s")
	ErrIndexFailure        = errors.NewKind("index privilege failure on %s")
	ErrExecuteFailure      = errors.NewKind("execute privilege failure on %s")
	ErrNoGrantOption       = errors.NewKind("no grant option for %s on %s")
	ErrAuthorizationFailure = errors.NewKind("authorization failure on %s")
	ErrDBAOnly             = errors.NewKind("only the DBA group may perform %s")
	ErrNotOwner            = errors.NewKind("%s is not the owner of %s")
	ErrAccessError         = errors.NewKind("access error reading %s")
	ErrCorrupted           = errors.NewKind("corrupted authorization state for %s")

	// Grant/revoke semantics
	ErrCantGrantOwner          = errors.NewKind("cannot grant on %s to its own owner")
	ErrCantRevokeOwner         = errors.NewKind("cannot revoke on %s from its own owner")
	ErrCantRevokeSelf          = errors.NewKind("cannot revoke privileges from self")
	ErrGrantNotFound           = errors.NewKind("no grant of %s on %s found for %s")
	ErrMemberNotFound          = errors.NewKind("%s is not a member of %s")
	ErrMemberCausesCycles      = errors.NewKind("adding %s to %s would create a membership cycle")
	ErrCantAddMember           = errors.NewKind("cannot add %s as a member of %s")
	ErrCantDropUser            = errors.NewKind("cannot drop user %s")
	ErrUserHasDatabaseObjects  = errors.NewKind("user %s owns database objects and cannot be dropped")
	ErrNotAllowToDropActiveUser = errors.NewKind("user %s has an active session and cannot be dropped")
	ErrUserNameTooLong         = errors.NewKind("user name %s exceeds the maximum length of %d")
	ErrCommentOverflow         = errors.NewKind("comment exceeds the maximum length of %d")

	// Semantic (partition / union / assignment / order-by / index-expression)
	ErrPartitionRangeError     = errors.NewKind("partition %s has an out-of-order RANGE bound")
	ErrInvalidPartitionSize    = errors.NewKind("partition count %d exceeds the maximum of %d")
	ErrPartitionDuplicateValue = errors.NewKind("value %v is duplicated across LIST partitions")
	ErrIllegalLHS              = errors.NewKind("assignment arity mismatch: %d targets, %d values")
	ErrSortSpecRangeErr        = errors.NewKind("ORDER BY position %d is out of range for a %d-column select list")
	ErrUnionIncompatibleTypes  = errors.NewKind("arm %d of the set operation is not union-compatible with arm %d")
	ErrCyclicReferenceViewSpec = errors.NewKind("view %s cyclically references itself through %s")
	ErrFunctionIndexArity      = errors.NewKind("a function index may have at most one expression column")
	ErrFilterIndexNotCovered   = errors.NewKind("filter index predicate does not reference a covered column")

	// Fatal
	ErrGeneric              = errors.NewKind("internal error: %s")
	ErrOutOfMemory          = errors.NewKind("out of memory")
	ErrLockUnilaterallyAborted = errors.NewKind("transaction aborted by the lock manager")
)
