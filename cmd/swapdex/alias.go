package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var alias string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the indexes bound to an alias",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				indices, err := a.swaps.Resolve(cmd.Context(), alias)
				if err != nil {
					return fmt.Errorf("resolve %s: %w", alias, err)
				}
				if len(indices) == 0 {
					return fmt.Errorf("alias %q is not bound", alias)
				}
				cmd.Println(strings.Join(indices, "\n"))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&alias, "alias", "", "alias to resolve")
	_ = cmd.MarkFlagRequired("alias")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var alias string
	var refresh bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete every index bound to an alias",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				deleted, err := a.swaps.DeleteAlias(cmd.Context(), alias, refresh)
				if err != nil {
					return fmt.Errorf("delete %s: %w", alias, err)
				}
				cmd.Printf("%s deleted=%t\n", alias, deleted)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&alias, "alias", "", "alias whose indexes are deleted")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refresh each index before deleting it")
	_ = cmd.MarkFlagRequired("alias")
	return cmd
}
