package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/CUBRID/cubrid-sub018/internal/similartext"
	"github.com/CUBRID/cubrid-sub018/sql/autherrors"
	"github.com/CUBRID/cubrid-sub018/sql/catalog"
	"github.com/CUBRID/cubrid-sub018/sql/grantgraph"
	"github.com/CUBRID/cubrid-sub018/sql/principal"
	"github.com/CUBRID/cubrid-sub018/sql/privilege"
)

// txCatalog adapts a catalog.Resolver bound to one live transaction to
// the validator.Catalog interface, so sql/validator never has to know
// about sqlx or transactions.
type txCatalog struct {
	resolver *catalog.Resolver
	tx       catalog.Execer
}

func (c txCatalog) ResolveClass(ctx context.Context, name string) (catalog.ObjectRef, error) {
	return c.resolver.ResolveClass(ctx, c.tx, name)
}

func (c txCatalog) OwnerOf(ctx context.Context, object catalog.ObjectRef) (catalog.PrincipalRef, error) {
	return c.resolver.OwnerOf(ctx, c.tx, object)
}

func (c txCatalog) ViewDefinition(ctx context.Context, name string) (string, bool, error) {
	return c.resolver.ViewDefinition(ctx, c.tx, name)
}

func (c txCatalog) PrincipalExists(ctx context.Context, name string) bool {
	return c.resolver.PrincipalExists(ctx, c.tx, name)
}

// partitionListerFor and ownerResolverFor bind a catalog.Resolver to one
// transaction as the function-typed dependencies sql/grantgraph.Engine
// expects, avoiding a direct import cycle between grantgraph and catalog's
// SQL-backed resolution.
func partitionListerFor(resolver *catalog.Resolver, tx catalog.Execer) grantgraph.PartitionLister {
	return func(ctx context.Context, object catalog.ObjectRef) ([]catalog.ObjectRef, error) {
		return resolver.Partitions(ctx, tx, object)
	}
}

func ownerResolverFor(resolver *catalog.Resolver, tx catalog.Execer) grantgraph.OwnerResolver {
	return func(ctx context.Context, object catalog.ObjectRef) (catalog.PrincipalRef, error) {
		return resolver.OwnerOf(ctx, tx, object)
	}
}

func objectResolverFor(resolver *catalog.Resolver, tx catalog.Execer) grantgraph.ObjectResolver {
	return func(ctx context.Context, kind catalog.ObjectKind, name string) (catalog.ObjectRef, error) {
		return resolver.ResolveByKind(ctx, tx, kind, name)
	}
}

// resolveObject resolves a user-supplied object name under the given
// kind label ("class" or "procedure") to its ObjectRef. On a
// not-found error, it enriches the message with a "maybe you mean"
// suggestion drawn from the registered names of the same kind.
func resolveObject(ctx context.Context, resolver *catalog.Resolver, tx catalog.Execer, kindLabel, name string) (catalog.ObjectRef, error) {
	if strings.EqualFold(kindLabel, "procedure") || strings.EqualFold(kindLabel, "proc") {
		ref, err := resolver.ResolveProcedure(ctx, tx, name)
		if err != nil {
			if names, lerr := resolver.ListProcedureNames(ctx, tx); lerr == nil {
				return ref, fmt.Errorf("%w%s", err, similartext.Find(names, name))
			}
		}
		return ref, err
	}

	ref, err := resolver.ResolveClass(ctx, tx, name)
	if err != nil {
		if names, lerr := resolver.ListClassNames(ctx, tx); lerr == nil {
			return ref, fmt.Errorf("%w%s", err, similartext.Find(names, name))
		}
	}
	return ref, err
}

// findPrincipalWithSuggestion resolves name the same way
// directory.FindPrincipal does, enriching a not-found error with a
// "maybe you mean" suggestion drawn from every registered principal.
func findPrincipalWithSuggestion(ctx context.Context, directory *principal.Directory, tx principal.Execer, name string) (catalog.PrincipalRef, error) {
	ref, err := directory.FindPrincipal(ctx, tx, name)
	if err != nil {
		if names, lerr := directory.ListNames(ctx, tx); lerr == nil {
			return ref, fmt.Errorf("%w%s", err, similartext.Find(names, name))
		}
	}
	return ref, err
}

// parsePrivilegeList parses a comma-separated privilege list, accepting
// the literal "ALL" as shorthand for privilege.All.
func parsePrivilegeList(raw string) (privilege.Kind, []string, error) {
	var mask privilege.Kind
	var labels []string
	for _, part := range strings.Split(raw, ",") {
		label := strings.ToUpper(strings.TrimSpace(part))
		if label == "" {
			continue
		}
		if label == "ALL" {
			return privilege.All, []string{"SELECT", "INSERT", "UPDATE", "DELETE", "ALTER", "INDEX", "EXECUTE"}, nil
		}
		kind, ok := privilege.FromLabel(label)
		if !ok {
			return 0, nil, autherrors.ErrGeneric.New("unknown privilege " + label)
		}
		mask |= kind
		labels = append(labels, label)
	}
	if mask == 0 {
		return 0, nil, autherrors.ErrGeneric.New("no privileges named")
	}
	return mask, labels, nil
}
