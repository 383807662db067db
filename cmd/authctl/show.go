package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CUBRID/cubrid-sub018/sql/showmeta"
)

var showArgs []string

var showCmd = &cobra.Command{
	Use:   "show <command words...>",
	Short: `Run a SHOW introspection command, e.g. "show volume header --arg volume_id=0"`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringArrayVar(&showArgs, "arg", nil, "key=value argument, repeatable")
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	caller, err := a.directory.FindPrincipal(ctx, a.db, asUser)
	if err != nil {
		return err
	}

	registry := showmeta.DefaultRegistry()
	showType := showmeta.ShowType(strings.ToUpper(strings.Join(args, " ")))
	meta, err := registry.Lookup(showType)
	if err != nil {
		return err
	}

	admin, err := a.directory.IsAdministrative(ctx, a.db, caller)
	if err != nil {
		return err
	}
	if err := meta.Authorize(admin); err != nil {
		return err
	}

	argMap := make(map[string]string, len(showArgs))
	for _, kv := range showArgs {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("malformed --arg %q, want key=value", kv)
		}
		argMap[parts[0]] = parts[1]
	}
	if err := meta.CheckArgs(argMap); err != nil {
		return err
	}
	if meta.SemanticCheck != nil {
		if err := meta.SemanticCheck(ctx, argMap); err != nil {
			return err
		}
	}

	fmt.Printf("%s\n", meta.Type)
	for _, col := range meta.Columns {
		fmt.Printf("  %s\n", col.Name)
	}
	if len(meta.OrderBy) > 0 {
		var parts []string
		for _, ob := range meta.OrderBy {
			if ob.Desc {
				parts = append(parts, ob.Column+" DESC")
			} else {
				parts = append(parts, ob.Column)
			}
		}
		fmt.Printf("order by: %s\n", strings.Join(parts, ", "))
	}
	return nil
}
