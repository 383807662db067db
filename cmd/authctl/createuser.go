package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CUBRID/cubrid-sub018/sql/validator"
)

var (
	createUserIsGroup bool
	createUserComment string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user <name>",
	Short: "Create a new principal (user or group)",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateUser,
}

func init() {
	createUserCmd.Flags().BoolVar(&createUserIsGroup, "group", false, "create a group principal instead of a user")
	createUserCmd.Flags().StringVar(&createUserComment, "comment", "", "free-text comment stored with the principal")
}

func runCreateUser(cmd *cobra.Command, args []string) error {
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

	cfg := validator.NewConfig()
	ref, err := a.directory.AddPrincipal(ctx, tx, args[0], createUserIsGroup, createUserComment, cfg.MaxUserNameLength)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	fmt.Printf("created principal %s (%s)\n", ref.Name, ref.ID)
	return nil
}
