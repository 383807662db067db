// Package catalog defines the identifiers and row shapes shared by the
// gateway, principal directory, and grant graph: object references,
// principal handles, and the on-disk auth row (spec.md §3, §6).
package catalog

import "github.com/google/uuid"

// ObjectKind distinguishes the two object kinds a grant can target.
// The ground values are fixed by the on-disk schema (spec.md §6,
// "Object-type ground values") and are deliberately NOT a freely growable
// enum per the Open Question in spec.md §9: do not reinterpret them
// until a higher-level spec update authorizes it.
type ObjectKind int

const (
	KindClass     ObjectKind = 0
	KindProcedure ObjectKind = 5
)

func (k ObjectKind) String() string {
	switch k {
	case KindClass:
		return "CLASS"
	case KindProcedure:
		return "PROCEDURE"
	default:
		return "UNKNOWN"
	}
}

// ObjectRef identifies a privilege target: a (kind, handle) pair. For
// classes the handle is the persistent object id; for procedures it is
// resolved by qualified name before use (spec.md §3 "Object reference").
type ObjectRef struct {
	Kind ObjectKind
	ID   uuid.UUID
	Name string
}

// PrincipalRef is a stable handle to a principal, distinct from its
// (mutable-only-at-creation-time) uppercased name.
type PrincipalRef struct {
	ID   uuid.UUID
	Name string
}

// DistinguishedDBA and DistinguishedPublic are the two distinguished
// principal names from spec.md §3. Both are stored uppercased, matching
// every other principal name.
const (
	DistinguishedDBA    = "DBA"
	DistinguishedPublic = "PUBLIC"
)

// AuthRow is the persistent serialization of a single granted privilege
// edge, matching the _db_auth schema in spec.md §6.
type AuthRow struct {
	Grantor      string `db:"grantor"`
	Grantee      string `db:"grantee"`
	ObjectType   int    `db:"object_type"`
	ObjectOf     string `db:"object_of"`
	AuthType     string `db:"auth_type"`
	IsGrantable  bool   `db:"is_grantable"`
}
