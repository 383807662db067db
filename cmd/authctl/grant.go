package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CUBRID/cubrid-sub018/sql/validator"
)

var (
	grantObjectKind string
	grantWithOption bool
)

var grantCmd = &cobra.Command{
	Use:   "grant <privileges> <object> <grantee>...",
	Short: "Grant privileges on a class or procedure to one or more principals",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runGrant,
}

func init() {
	grantCmd.Flags().StringVar(&grantObjectKind, "kind", "class", "object kind: class or procedure")
	grantCmd.Flags().BoolVar(&grantWithOption, "with-grant-option", false, "grant with the WITH GRANT OPTION bit set")
}

func runGrant(cmd *cobra.Command, args []string) error {
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

	object, err := resolveObject(ctx, a.resolver, tx, grantObjectKind, objectName)
	if err != nil {
		return err
	}

	mask, labels, err := parsePrivilegeList(args[0])
	if err != nil {
		return err
	}
	if err := validator.ValidatePrivilegeKinds(labels, validator.ClassOf(object.Kind)); err != nil {
		return err
	}

	v := validator.New(validator.NewConfig(), txCatalog{a.resolver, tx})
	if err := v.ValidateGrantees(ctx, granteeNames); err != nil {
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
		if err := a.engine.Grant(ctx, tx, caller, grantee, object, mask, grantWithOption); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	fmt.Printf("granted %s on %s to %s\n", strings.Join(labels, ","), object.Name, strings.Join(granteeNames, ", "))
	return nil
}
