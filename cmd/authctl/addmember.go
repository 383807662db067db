package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addMemberCmd = &cobra.Command{
	Use:   "add-member <group> <member>",
	Short: "Add a principal as a member of a group, rejecting changes that would create a membership cycle",
	Args:  cobra.ExactArgs(2),
	RunE:  runAddMember,
}

func runAddMember(cmd *cobra.Command, args []string) error {
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
	if err := a.directory.AddMember(ctx, tx, group, member); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	fmt.Printf("added %s as a member of %s\n", member.Name, group.Name)
	return nil
}
