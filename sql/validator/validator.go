// Package validator implements the authorization-adjacent portion of
// the Semantic Validator (spec.md §4.5): name resolution, ownership
// checks, and the view/partition/assignment/order-by/union rules that
// the Grant Graph Engine and Auth Row Gateway depend on at statement
// compile time.
//
// Statement parsing uses github.com/pganalyze/pg_query_go/v6, the same
// library the retrieved pack uses for DDL diffing, rather than a
// hand-written recursive-descent parser: GRANT/REVOKE text and view
// query bodies are parsed into pg_query_go's protobuf AST and walked
// with its generated Get* accessors. PARTITION BY clauses are not
// parsed here; partition rules are checked on an already-built
// PartitionSpec.
package validator

import (
	"context"

	"github.com/CUBRID/cubrid-sub018/sql/autherrors"
	"github.com/CUBRID/cubrid-sub018/sql/catalog"
)

// Config bounds the validator's boundary checks (spec.md §8
// "Boundaries"), passed in rather than hard-coded so tests can probe
// the edges directly.
type Config struct {
	MaxPartitions     int
	MaxCommentLength  int
	MaxUserNameLength int
}

// Option configures a Config; the teacher's functional-options style
// (see auth.NewNativeFile) rather than a builder type.
type Option func(*Config)

func WithMaxPartitions(n int) Option          { return func(c *Config) { c.MaxPartitions = n } }
func WithMaxCommentLength(n int) Option       { return func(c *Config) { c.MaxCommentLength = n } }
func WithMaxUserNameLength(n int) Option      { return func(c *Config) { c.MaxUserNameLength = n } }

func NewConfig(opts ...Option) Config {
	c := Config{MaxPartitions: 1024, MaxCommentLength: 2048, MaxUserNameLength: 32}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Catalog is the read-only surface the validator needs from the
// database's own catalog: class resolution, ownership, and view
// definition text. Implemented by the engine's real catalog accessor;
// stubbed directly in tests.
type Catalog interface {
	ResolveClass(ctx context.Context, name string) (catalog.ObjectRef, error)
	OwnerOf(ctx context.Context, object catalog.ObjectRef) (catalog.PrincipalRef, error)
	ViewDefinition(ctx context.Context, name string) (sql string, isView bool, err error)
	PrincipalExists(ctx context.Context, name string) bool
}

// Validator bundles the config and catalog accessor used by every
// check in this package.
type Validator struct {
	Config  Config
	Catalog Catalog
}

func New(cfg Config, cat Catalog) *Validator {
	return &Validator{Config: cfg, Catalog: cat}
}

// ResolveName resolves an object reference by name, surfacing
// kind-specific resolution errors (spec.md §4.5 "Name resolution").
func (v *Validator) ResolveName(ctx context.Context, name string) (catalog.ObjectRef, error) {
	ref, err := v.Catalog.ResolveClass(ctx, name)
	if err != nil {
		return catalog.ObjectRef{}, autherrors.ErrClassDoesNotExist.New(name)
	}
	return ref, nil
}

// CheckOwnership verifies that caller owns object or is a member of
// the administrative principal (spec.md §4.5 "Ownership check on DDL").
func (v *Validator) CheckOwnership(ctx context.Context, caller catalog.PrincipalRef, object catalog.ObjectRef, callerIsDBA bool) error {
	if callerIsDBA {
		return nil
	}
	owner, err := v.Catalog.OwnerOf(ctx, object)
	if err != nil {
		return autherrors.ErrAccessError.New(object.Name)
	}
	if owner.ID != caller.ID {
		return autherrors.ErrNotOwner.New(caller.Name, object.Name)
	}
	return nil
}
