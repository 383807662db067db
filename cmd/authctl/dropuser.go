package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CUBRID/cubrid-sub018/sql/catalog"
)

var dropUserCmd = &cobra.Command{
	Use:   "drop-user <name>",
	Short: "Drop a principal, removing its memberships and every auth row granted to it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDropUser,
}

func runDropUser(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

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

	who, err := a.directory.FindForDrop(ctx, tx, caller, args[0])
	if err != nil {
		return err
	}

	ownsObjects := func(ctx context.Context, p catalog.PrincipalRef) (bool, error) {
		return a.resolver.AnyOwnedBy(ctx, tx, p.Name)
	}
	if err := a.directory.DropPrincipal(ctx, tx, a.gateway, a.cache, ownsObjects, caller, who); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	fmt.Printf("dropped principal %s\n", who.Name)
	return nil
}
