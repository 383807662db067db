package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dropMemberCmd = &cobra.Command{
	Use:   "drop-member <group> <member>",
	Short: "Remove a direct membership edge between a group and a member",
	Args:  cobra.ExactArgs(2),
	RunE:  runDropMember,
}

func runDropMember(cmd *cobra.Command, args []string) error {
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

	group, err := findPrincipalWithSuggestion(ctx, a.directory, tx, args[0])
	if err != nil {
		return err
	}
	member, err := findPrincipalWithSuggestion(ctx, a.directory, tx, args[1])
	if err != nil {
		return err
	}
	if err := a.directory.DropMember(ctx, tx, group, member); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	fmt.Printf("dropped %s as a member of %s\n", member.Name, group.Name)
	return nil
}
