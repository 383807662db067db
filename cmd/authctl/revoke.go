package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var revokeObjectKind string

var revokeCmd = &cobra.Command{
	Use:   "revoke <privileges> <object> <grantee>...",
	Short: "Revoke privileges on a class or procedure from one or more principals",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runRevoke,
}

func init() {
	revokeCmd.Flags().StringVar(&revokeObjectKind, "kind", "class", "object kind: class or procedure")
}

func runRevoke(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	objectName, granteeNames := args[1], args[2:]
	ctx := cmd.Context()

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	caller, err := a.caller(ctx, tx)
	if err != nil {
		return err
	}

	object, err := resolveObject(ctx, a.resolver, tx, revokeObjectKind, objectName)
	if err != nil {
		return err
	}

	mask, labels, err := parsePrivilegeList(args[0])
	if err != nil {
		return err
	}

	a.engine.Partitions = partitionListerFor(a.resolver, tx)
	a.engine.OwnerOf = ownerResolverFor(a.resolver, tx)
	a.engine.Resolve = objectResolverFor(a.resolver, tx)

	for _, name := range granteeNames {
		grantee, err := findPrincipalWithSuggestion(ctx, a.directory, tx, name)
		if err != nil {
			return err
		}
		if err := a.engine.Revoke(ctx, tx, caller, grantee, object, mask); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	fmt.Printf("revoked %s on %s from %s\n", strings.Join(labels, ","), object.Name, strings.Join(granteeNames, ", "))
	return nil
}
